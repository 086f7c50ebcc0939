package suggestion

import (
	"fmt"
	"strings"
	"time"
)

const (
	categoryStructureValueConstant           = "structure"
	categoryDocumentationValueConstant       = "documentation"
	categoryBestPracticesValueConstant       = "best_practices"
	categoryTestingValueConstant             = "testing"
	categorySecurityValueConstant            = "security"
	categoryMaintenanceValueConstant         = "maintenance"
	legacyStructureCategoryAliasConstant     = "role_completeness"
	unknownCategoryErrorTemplateConstant     = "unsupported category %q"
	unknownPriorityRankConstant              = 4
	createdDateLayoutConstant                = "2006-01-02"
	remediationKindReadmeValueConstant       = "readme_skeleton"
	remediationKindExternalizeValueConstant  = "externalize_value"
	remediationKindRoleSkeletonValueConstant = "role_skeleton"
	remediationKindManualValueConstant       = "manual"
)

// Category identifies the taxonomy bucket a suggestion belongs to.
type Category string

// Supported categories.
const (
	CategoryStructure     Category = Category(categoryStructureValueConstant)
	CategoryDocumentation Category = Category(categoryDocumentationValueConstant)
	CategoryBestPractices Category = Category(categoryBestPracticesValueConstant)
	CategoryTesting       Category = Category(categoryTestingValueConstant)
	CategorySecurity      Category = Category(categorySecurityValueConstant)
	CategoryMaintenance   Category = Category(categoryMaintenanceValueConstant)
)

var knownCategories = []Category{
	CategoryStructure,
	CategoryDocumentation,
	CategoryBestPractices,
	CategoryTesting,
	CategorySecurity,
	CategoryMaintenance,
}

// CategoryNames returns the category set as plain strings.
func CategoryNames() []string {
	names := make([]string, 0, len(knownCategories))
	for _, category := range knownCategories {
		names = append(names, string(category))
	}
	return names
}

// ParseCategory resolves user input into a Category. The legacy role_completeness
// name resolves to CategoryStructure.
func ParseCategory(rawValue string) (Category, error) {
	normalized := strings.ToLower(strings.TrimSpace(rawValue))
	if normalized == legacyStructureCategoryAliasConstant {
		return CategoryStructure, nil
	}
	for _, category := range knownCategories {
		if string(category) == normalized {
			return category, nil
		}
	}
	return "", fmt.Errorf(unknownCategoryErrorTemplateConstant, rawValue)
}

// Priority ranks a suggestion by severity.
type Priority string

// Supported priorities, most severe first.
const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

var priorityRanks = map[Priority]int{
	PriorityCritical: 0,
	PriorityHigh:     1,
	PriorityMedium:   2,
	PriorityLow:      3,
}

// Rank returns the sort position of the priority; lower is more severe and
// values outside the closed set sort after PriorityLow.
func (priority Priority) Rank() int {
	if rank, exists := priorityRanks[priority]; exists {
		return rank
	}
	return unknownPriorityRankConstant
}

// Label returns the upper-cased tag used by reporters and prompts.
func (priority Priority) Label() string {
	return strings.ToUpper(string(priority))
}

// RemediationKind selects the draft template used by the remediation planner.
type RemediationKind string

// Supported remediation kinds.
const (
	RemediationKindReadmeSkeleton   RemediationKind = RemediationKind(remediationKindReadmeValueConstant)
	RemediationKindExternalizeValue RemediationKind = RemediationKind(remediationKindExternalizeValueConstant)
	RemediationKindRoleSkeleton     RemediationKind = RemediationKind(remediationKindRoleSkeletonValueConstant)
	RemediationKindManual           RemediationKind = RemediationKind(remediationKindManualValueConstant)
)

// Remediation is stamped onto a suggestion by the rule that produced it.
type Remediation struct {
	Kind     RemediationKind `json:"kind"`
	Subjects []string        `json:"subjects,omitempty"`
}

// HasSubject reports whether the remediation names the subject.
func (remediation Remediation) HasSubject(subject string) bool {
	for _, candidate := range remediation.Subjects {
		if candidate == subject {
			return true
		}
	}
	return false
}

// Finding is the output of a single rule before it receives an identifier.
type Finding struct {
	Category    Category
	Title       string
	Description string
	FilePaths   []string
	Priority    Priority
	Remediation Remediation
}

// Suggestion is one detected improvement opportunity.
type Suggestion struct {
	ID          int         `json:"id"`
	Category    Category    `json:"category"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	FilePaths   []string    `json:"file_paths"`
	Priority    Priority    `json:"priority"`
	CreatedDate string      `json:"created_date"`
	Remediation Remediation `json:"remediation"`
}

func (suggestion Suggestion) clone() Suggestion {
	duplicated := suggestion
	duplicated.FilePaths = append([]string{}, suggestion.FilePaths...)
	if suggestion.Remediation.Subjects != nil {
		duplicated.Remediation.Subjects = append([]string{}, suggestion.Remediation.Subjects...)
	}
	return duplicated
}

// Clock abstracts time-dependent functionality for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the standard library.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// CategoryLabels maps categories to human-readable headings.
type CategoryLabels map[Category]string

// DefaultCategoryLabels returns the stock heading table.
func DefaultCategoryLabels() CategoryLabels {
	return CategoryLabels{
		CategoryStructure:     "Role structure completeness",
		CategoryDocumentation: "Documentation improvements",
		CategoryBestPractices: "Ansible best practices",
		CategoryTesting:       "Test coverage",
		CategorySecurity:      "Security enhancements",
		CategoryMaintenance:   "Maintenance and updates",
	}
}

// Label returns the heading for a category, falling back to its raw text.
func (labels CategoryLabels) Label(category Category) string {
	if label, exists := labels[category]; exists && len(label) > 0 {
		return label
	}
	return string(category)
}
