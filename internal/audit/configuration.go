package audit

import (
	"strings"

	"github.com/temirov/roleaudit/internal/rules"
)

const (
	configurationProjectNameKeyConstant         = "project_name"
	configurationRulesKeyConstant               = "rules"
	configurationStandardDirectoriesKeyConstant = "standard_directories"
	configurationRootReadmeSectionsKeyConstant  = "root_readme_sections"
	configurationRoleReadmeSectionsKeyConstant  = "role_readme_sections"
)

// Configuration captures the settings shared by every inspection.
type Configuration struct {
	ProjectName         string   `mapstructure:"project_name"`
	Rules               []string `mapstructure:"rules"`
	StandardDirectories []string `mapstructure:"standard_directories"`
	RootReadmeSections  []string `mapstructure:"root_readme_sections"`
	RoleReadmeSections  []string `mapstructure:"role_readme_sections"`
}

// DefaultConfiguration enables every rule with the stock conventions.
func DefaultConfiguration() Configuration {
	ruleDefaults := rules.DefaultConfiguration()
	return Configuration{
		ProjectName:         "",
		Rules:               ruleDefaults.EnabledRules,
		StandardDirectories: ruleDefaults.StandardDirectories,
		RootReadmeSections:  ruleDefaults.RootReadmeSections,
		RoleReadmeSections:  ruleDefaults.RoleReadmeSections,
	}
}

// DefaultConfigurationValues produces Viper defaults for inspection settings.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		rootKey + "." + configurationProjectNameKeyConstant:         defaults.ProjectName,
		rootKey + "." + configurationRulesKeyConstant:               defaults.Rules,
		rootKey + "." + configurationStandardDirectoriesKeyConstant: defaults.StandardDirectories,
		rootKey + "." + configurationRootReadmeSectionsKeyConstant:  defaults.RootReadmeSections,
		rootKey + "." + configurationRoleReadmeSectionsKeyConstant:  defaults.RoleReadmeSections,
	}
}

// RuleConfiguration converts the settings into the rule engine configuration.
func (configuration Configuration) RuleConfiguration() rules.Configuration {
	return rules.Configuration{
		EnabledRules:        append([]string{}, configuration.Rules...),
		StandardDirectories: append([]string{}, configuration.StandardDirectories...),
		RootReadmeSections:  append([]string{}, configuration.RootReadmeSections...),
		RoleReadmeSections:  append([]string{}, configuration.RoleReadmeSections...),
	}
}

func (configuration Configuration) sanitize() Configuration {
	sanitized := configuration
	sanitized.ProjectName = strings.TrimSpace(configuration.ProjectName)
	return sanitized
}
