// Package flags provides helpers for binding shared flags to Cobra commands.
package flags

import (
	"strings"

	"github.com/spf13/cobra"
)

const (
	// RepositoryRootFlagName exposes the shared repository root flag name.
	RepositoryRootFlagName = "repository-root"
	// RepositoryRootFlagUsage describes the shared repository root flag purpose.
	RepositoryRootFlagUsage = "Path to the repository root to audit"
	// CategoryFlagName exposes the shared category filter flag name.
	CategoryFlagName = "category"
	// RoleFlagName exposes the shared role filter flag name.
	RoleFlagName = "role"
	// RoleFlagUsage describes the shared role filter flag purpose.
	RoleFlagUsage = "Only include suggestions whose file paths mention this role"
	// DryRunFlagName exposes the shared dry-run flag name.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the shared dry-run flag purpose.
	DryRunFlagUsage = "Write prompts only, without drafting improvements"
)

// FilterFlagValues stores suggestion filter flag values.
type FilterFlagValues struct {
	Category string
	Role     string
}

// BindFilterFlags attaches the category and role filter flags to the provided command.
// The category usage lists the accepted categories.
func BindFilterFlags(command *cobra.Command, categories []string) {
	if command == nil {
		return
	}

	command.Flags().String(CategoryFlagName, "", FormatChoiceUsage("", categories, "Only include suggestions of this category"))
	command.Flags().String(RoleFlagName, "", RoleFlagUsage)
}

// ReadFilterFlags returns the trimmed filter values bound by BindFilterFlags.
func ReadFilterFlags(command *cobra.Command) (FilterFlagValues, error) {
	if command == nil {
		return FilterFlagValues{}, nil
	}

	categoryValue, categoryError := command.Flags().GetString(CategoryFlagName)
	if categoryError != nil {
		return FilterFlagValues{}, categoryError
	}
	roleValue, roleError := command.Flags().GetString(RoleFlagName)
	if roleError != nil {
		return FilterFlagValues{}, roleError
	}

	return FilterFlagValues{
		Category: strings.TrimSpace(categoryValue),
		Role:     strings.TrimSpace(roleValue),
	}, nil
}
