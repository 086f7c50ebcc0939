package report_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/roleaudit/internal/report"
	"github.com/temirov/roleaudit/internal/suggestion"
)

const (
	testSubtestNameTemplateConstant = "%d_%s"
	testRepositoryRootConstant      = "/srv/ansible-hpc"
	testProjectNameConstant         = "ansible-hpc"
)

type fixedClock struct{}

func (fixedClock) Now() time.Time {
	return time.Date(2024, time.March, 9, 14, 5, 6, 0, time.UTC)
}

func sampleSuggestions() []suggestion.Suggestion {
	store := suggestion.NewStore(fixedClock{})
	store.Add(suggestion.Finding{
		Category:    suggestion.CategoryTesting,
		Title:       "Add Molecule tests for 'slurm' role",
		Description: "The 'slurm' role doesn't have Molecule tests.",
		FilePaths:   []string{filepath.Join(testRepositoryRootConstant, "roles", "slurm")},
		Priority:    suggestion.PriorityMedium,
		Remediation: suggestion.Remediation{Kind: suggestion.RemediationKindManual},
	})
	store.Add(suggestion.Finding{
		Category:    suggestion.CategorySecurity,
		Title:       "Potential sensitive information in 'roles/slurm/defaults/main.yml'",
		Description: "Found potential hardcoded sensitive information.",
		FilePaths:   []string{filepath.Join(testRepositoryRootConstant, "roles", "slurm", "defaults", "main.yml")},
		Priority:    suggestion.PriorityCritical,
		Remediation: suggestion.Remediation{Kind: suggestion.RemediationKindManual},
	})
	store.Add(suggestion.Finding{
		Category:    suggestion.CategoryTesting,
		Title:       "Add tests for 'slurm' role",
		Description: "The 'slurm' role doesn't have dedicated tests.",
		FilePaths:   []string{filepath.Join(testRepositoryRootConstant, "roles", "slurm")},
		Priority:    suggestion.PriorityHigh,
		Remediation: suggestion.Remediation{Kind: suggestion.RemediationKindManual},
	})
	return store.All()
}

func render(testInstance *testing.T, format report.Format, colorize bool, suggestions []suggestion.Suggestion) string {
	testInstance.Helper()
	renderer, rendererError := report.NewRenderer(format, report.Options{
		RepositoryRoot: testRepositoryRootConstant,
		ProjectName:    testProjectNameConstant,
		Clock:          fixedClock{},
		Colorize:       colorize,
	})
	require.NoError(testInstance, rendererError)

	var output bytes.Buffer
	require.NoError(testInstance, renderer.Render(&output, suggestions))
	return output.String()
}

func TestEmptyViewPrintsSingleMessage(testInstance *testing.T) {
	for formatIndex, formatName := range report.Formats() {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, formatIndex, formatName), func(testInstance *testing.T) {
			format, parseError := report.ParseFormat(formatName)
			require.NoError(testInstance, parseError)

			output := render(testInstance, format, true, nil)
			require.Equal(testInstance, report.NoSuggestionsMessage+"\n", output)
		})
	}
}

func TestConsoleRendering(testInstance *testing.T) {
	output := render(testInstance, report.FormatConsole, false, sampleSuggestions())

	expected := strings.Join([]string{
		"",
		"=== ansible-hpc Repository Analysis Results ===",
		"",
		"Found 3 potential improvements:",
		"",
		"",
		"== Test coverage (2) ==",
		"",
		"[HIGH] Add tests for 'slurm' role",
		"  The 'slurm' role doesn't have dedicated tests.",
		"  Files: " + filepath.Join("roles", "slurm"),
		"",
		"[MEDIUM] Add Molecule tests for 'slurm' role",
		"  The 'slurm' role doesn't have Molecule tests.",
		"  Files: " + filepath.Join("roles", "slurm"),
		"",
		"",
		"== Security enhancements (1) ==",
		"",
		"[CRITICAL] Potential sensitive information in 'roles/slurm/defaults/main.yml'",
		"  Found potential hardcoded sensitive information.",
		"  Files: " + filepath.Join("roles", "slurm", "defaults", "main.yml"),
		"",
		"",
	}, "\n")
	require.Equal(testInstance, expected, output)
}

func TestConsoleRenderingColorizesPriorities(testInstance *testing.T) {
	colored := render(testInstance, report.FormatConsole, true, sampleSuggestions())
	plain := render(testInstance, report.FormatConsole, false, sampleSuggestions())

	require.Contains(testInstance, colored, "\x1b[")
	require.NotContains(testInstance, plain, "\x1b[")
}

func TestJSONRendering(testInstance *testing.T) {
	output := render(testInstance, report.FormatJSON, true, sampleSuggestions())

	var document struct {
		AnalysisDate     string                  `json:"analysis_date"`
		TotalSuggestions int                     `json:"total_suggestions"`
		Suggestions      []suggestion.Suggestion `json:"suggestions"`
	}
	require.NoError(testInstance, json.Unmarshal([]byte(output), &document))
	require.Equal(testInstance, "2024-03-09 14:05:06", document.AnalysisDate)
	require.Equal(testInstance, 3, document.TotalSuggestions)
	require.Equal(testInstance, sampleSuggestions(), document.Suggestions)
	require.Contains(testInstance, output, "\n  \"analysis_date\"")
	require.NotContains(testInstance, output, "\x1b[")
}

func TestMarkdownRendering(testInstance *testing.T) {
	output := render(testInstance, report.FormatMarkdown, true, sampleSuggestions())

	require.True(testInstance, strings.HasPrefix(output, "# ansible-hpc Repository Analysis Results\n\n*Analysis Date: 2024-03-09 14:05:06*\n\nFound **3** potential improvements.\n\n"))
	require.Contains(testInstance, output, "## Test coverage (2)\n\n### Add tests for 'slurm' role\n\n**Priority:** HIGH\n\n")
	require.Contains(testInstance, output, "**Files:**\n\n- `"+filepath.Join("roles", "slurm", "defaults", "main.yml")+"`\n")
	require.Less(testInstance, strings.Index(output, "## Test coverage"), strings.Index(output, "## Security enhancements"))
	require.NotContains(testInstance, output, "\x1b[")
}

func TestUnknownCategoryRendersRawText(testInstance *testing.T) {
	unknown := []suggestion.Suggestion{{
		ID:          1,
		Category:    suggestion.Category("performance"),
		Title:       "Tune forks",
		Description: "Increase forks.",
		Priority:    suggestion.Priority("urgent"),
	}}

	output := render(testInstance, report.FormatConsole, true, unknown)
	require.Contains(testInstance, output, "== performance (1) ==")
	require.Contains(testInstance, output, "[URGENT] Tune forks")
}

func TestParseFormat(testInstance *testing.T) {
	testCases := []struct {
		name           string
		rawValue       string
		expectedFormat report.Format
		expectError    bool
	}{
		{name: "console", rawValue: "console", expectedFormat: report.FormatConsole},
		{name: "mixed_case_json", rawValue: " JSON ", expectedFormat: report.FormatJSON},
		{name: "markdown", rawValue: "markdown", expectedFormat: report.FormatMarkdown},
		{name: "unsupported", rawValue: "html", expectError: true},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			format, parseError := report.ParseFormat(testCase.rawValue)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedFormat, format)
		})
	}
}
