package suggestion_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/roleaudit/internal/suggestion"
)

const (
	testSubtestNameTemplateConstant = "%d_%s"
	testSlurmRolePathConstant       = "/repository/roles/slurm"
	testSlurmGPURolePathConstant    = "/repository/roles/slurm_gpu/tasks/main.yml"
	testNFSRolePathConstant         = "/repository/roles/nfs"
	testCreatedDateConstant         = "2024-03-09"
)

type fixedClock struct {
	instant time.Time
}

func (clock fixedClock) Now() time.Time {
	return clock.instant
}

func newTestStore() *suggestion.Store {
	return suggestion.NewStore(fixedClock{instant: time.Date(2024, time.March, 9, 10, 30, 0, 0, time.UTC)})
}

func testFinding(category suggestion.Category, priority suggestion.Priority, title string, filePaths ...string) suggestion.Finding {
	return suggestion.Finding{
		Category:    category,
		Title:       title,
		Description: title + " description",
		FilePaths:   filePaths,
		Priority:    priority,
		Remediation: suggestion.Remediation{Kind: suggestion.RemediationKindManual},
	}
}

func TestStoreAssignsDenseIdentifiers(testInstance *testing.T) {
	store := newTestStore()
	for findingIndex := 0; findingIndex < 5; findingIndex++ {
		store.Add(testFinding(suggestion.CategoryTesting, suggestion.PriorityLow, fmt.Sprintf("finding %d", findingIndex), testNFSRolePathConstant))
	}

	stored := store.All()
	require.Len(testInstance, stored, 5)
	for storedIndex, storedSuggestion := range stored {
		require.Equal(testInstance, storedIndex+1, storedSuggestion.ID)
		require.Equal(testInstance, testCreatedDateConstant, storedSuggestion.CreatedDate)
	}
}

func TestStoreReturnsCopies(testInstance *testing.T) {
	store := newTestStore()
	store.Add(testFinding(suggestion.CategoryStructure, suggestion.PriorityMedium, "structure", testSlurmRolePathConstant))

	firstView := store.All()
	firstView[0].FilePaths[0] = "mutated"
	firstView[0].Title = "mutated"

	secondView := store.All()
	require.Equal(testInstance, testSlurmRolePathConstant, secondView[0].FilePaths[0])
	require.Equal(testInstance, "structure", secondView[0].Title)
}

func TestFilterBehaviors(testInstance *testing.T) {
	store := newTestStore()
	store.Add(testFinding(suggestion.CategoryDocumentation, suggestion.PriorityHigh, "docs slurm", testSlurmRolePathConstant))
	store.Add(testFinding(suggestion.CategorySecurity, suggestion.PriorityCritical, "secret slurm_gpu", testSlurmGPURolePathConstant))
	store.Add(testFinding(suggestion.CategorySecurity, suggestion.PriorityCritical, "secret nfs", testNFSRolePathConstant))

	testCases := []struct {
		name           string
		options        suggestion.FilterOptions
		expectedTitles []string
	}{
		{
			name:           "no_filters",
			options:        suggestion.FilterOptions{},
			expectedTitles: []string{"docs slurm", "secret slurm_gpu", "secret nfs"},
		},
		{
			name:           "category_exact_match",
			options:        suggestion.FilterOptions{Category: suggestion.CategorySecurity},
			expectedTitles: []string{"secret slurm_gpu", "secret nfs"},
		},
		{
			name:           "role_substring_match",
			options:        suggestion.FilterOptions{Role: "slurm"},
			expectedTitles: []string{"docs slurm", "secret slurm_gpu"},
		},
		{
			name:           "role_and_category",
			options:        suggestion.FilterOptions{Role: "slurm", Category: suggestion.CategorySecurity},
			expectedTitles: []string{"secret slurm_gpu"},
		},
		{
			name:           "no_match",
			options:        suggestion.FilterOptions{Category: suggestion.CategoryMaintenance},
			expectedTitles: []string{},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			filtered := suggestion.Filter(store.All(), testCase.options)
			titles := make([]string, 0, len(filtered))
			for _, filteredSuggestion := range filtered {
				if len(testCase.options.Category) > 0 {
					require.Equal(testInstance, testCase.options.Category, filteredSuggestion.Category)
				}
				titles = append(titles, filteredSuggestion.Title)
			}
			require.Equal(testInstance, testCase.expectedTitles, titles)
			require.Equal(testInstance, 3, store.Len())
		})
	}
}

func TestGroupByCategoryOrdersBySeverity(testInstance *testing.T) {
	store := newTestStore()
	store.Add(testFinding(suggestion.CategoryTesting, suggestion.PriorityMedium, "testing medium"))
	store.Add(testFinding(suggestion.CategoryStructure, suggestion.PriorityLow, "structure low"))
	store.Add(testFinding(suggestion.CategoryTesting, suggestion.Priority("urgent"), "testing unknown"))
	store.Add(testFinding(suggestion.CategoryTesting, suggestion.PriorityHigh, "testing high"))
	store.Add(testFinding(suggestion.CategoryStructure, suggestion.PriorityCritical, "structure critical"))
	store.Add(testFinding(suggestion.CategoryTesting, suggestion.PriorityHigh, "testing high second"))

	groups := suggestion.GroupByCategory(store.All())
	require.Len(testInstance, groups, 2)

	require.Equal(testInstance, suggestion.CategoryTesting, groups[0].Category)
	testingTitles := make([]string, 0, len(groups[0].Suggestions))
	for _, grouped := range groups[0].Suggestions {
		testingTitles = append(testingTitles, grouped.Title)
	}
	require.Equal(testInstance, []string{"testing high", "testing high second", "testing medium", "testing unknown"}, testingTitles)

	require.Equal(testInstance, suggestion.CategoryStructure, groups[1].Category)
	require.Equal(testInstance, "structure critical", groups[1].Suggestions[0].Title)

	for _, group := range groups {
		for memberIndex := 1; memberIndex < len(group.Suggestions); memberIndex++ {
			require.LessOrEqual(testInstance, group.Suggestions[memberIndex-1].Priority.Rank(), group.Suggestions[memberIndex].Priority.Rank())
		}
	}
}

func TestParseCategory(testInstance *testing.T) {
	testCases := []struct {
		name             string
		rawValue         string
		expectedCategory suggestion.Category
		expectError      bool
	}{
		{name: "exact", rawValue: "security", expectedCategory: suggestion.CategorySecurity},
		{name: "mixed_case", rawValue: " Best_Practices ", expectedCategory: suggestion.CategoryBestPractices},
		{name: "legacy_alias", rawValue: "role_completeness", expectedCategory: suggestion.CategoryStructure},
		{name: "unknown", rawValue: "performance", expectError: true},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			category, parseError := suggestion.ParseCategory(testCase.rawValue)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedCategory, category)
			require.Contains(testInstance, suggestion.CategoryNames(), string(category))
		})
	}
}

func TestCategoryLabelsFallBackToRawText(testInstance *testing.T) {
	labels := suggestion.DefaultCategoryLabels()
	require.Equal(testInstance, "Security enhancements", labels.Label(suggestion.CategorySecurity))
	require.Equal(testInstance, "performance", labels.Label(suggestion.Category("performance")))
}
