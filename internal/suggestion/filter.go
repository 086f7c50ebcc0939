package suggestion

import (
	"sort"
	"strings"
)

// FilterOptions narrows a suggestion view. Empty fields match everything.
type FilterOptions struct {
	Category Category
	Role     string
}

// Group holds the suggestions of one category in display order.
type Group struct {
	Category    Category
	Suggestions []Suggestion
}

// Filter returns a new slice with the suggestions matching the options.
//
// The category matches by exact equality. The role matches when it is a
// substring of any file path, so "slurm" also matches paths under "slurm_gpu".
func Filter(suggestions []Suggestion, options FilterOptions) []Suggestion {
	filtered := make([]Suggestion, 0, len(suggestions))
	for _, candidate := range suggestions {
		if len(options.Category) > 0 && candidate.Category != options.Category {
			continue
		}
		if len(options.Role) > 0 && !referencesRole(candidate, options.Role) {
			continue
		}
		filtered = append(filtered, candidate.clone())
	}
	return filtered
}

func referencesRole(candidate Suggestion, role string) bool {
	for _, filePath := range candidate.FilePaths {
		if strings.Contains(filePath, role) {
			return true
		}
	}
	return false
}

// GroupByCategory partitions suggestions by category in first-seen order and
// stable-sorts each group from most to least severe.
func GroupByCategory(suggestions []Suggestion) []Group {
	var groups []Group
	groupIndexes := make(map[Category]int)

	for _, candidate := range suggestions {
		groupIndex, exists := groupIndexes[candidate.Category]
		if !exists {
			groupIndex = len(groups)
			groupIndexes[candidate.Category] = groupIndex
			groups = append(groups, Group{Category: candidate.Category})
		}
		groups[groupIndex].Suggestions = append(groups[groupIndex].Suggestions, candidate.clone())
	}

	for groupIndex := range groups {
		members := groups[groupIndex].Suggestions
		sort.SliceStable(members, func(first int, second int) bool {
			return members[first].Priority.Rank() < members[second].Priority.Rank()
		})
	}

	return groups
}
