package rules

import (
	"fmt"
	"strings"
)

const unknownRuleErrorTemplateConstant = "unknown rule %q"

// Rule family names accepted by Configuration.EnabledRules.
const (
	RuleNameStructure     = "structure"
	RuleNameDocumentation = "documentation"
	RuleNameBestPractices = "best_practices"
	RuleNameTesting       = "testing"
	RuleNameSecurity      = "security"
	RuleNameMaintenance   = "maintenance"
)

// Configuration tunes the rule set. It is passed explicitly into NewEngine.
type Configuration struct {
	EnabledRules        []string
	StandardDirectories []string
	RootReadmeSections  []string
	RoleReadmeSections  []string
}

// DefaultConfiguration returns the stock rule configuration with every rule enabled.
func DefaultConfiguration() Configuration {
	return Configuration{
		EnabledRules:        RuleNames(),
		StandardDirectories: []string{"defaults", "handlers", "meta", "tasks", "templates", "vars"},
		RootReadmeSections:  []string{"Requirements", "Installation", "Usage"},
		RoleReadmeSections:  []string{"Requirements", "Role Variables", "Dependencies", "Example Playbook"},
	}
}

// RuleNames lists every rule family in evaluation order.
func RuleNames() []string {
	return []string{
		RuleNameStructure,
		RuleNameDocumentation,
		RuleNameBestPractices,
		RuleNameTesting,
		RuleNameSecurity,
		RuleNameMaintenance,
	}
}

// sanitize trims whitespace, drops blanks, and applies defaults to unset lists.
func (configuration Configuration) sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := Configuration{
		EnabledRules:        lowercaseList(sanitizeList(configuration.EnabledRules)),
		StandardDirectories: sanitizeList(configuration.StandardDirectories),
		RootReadmeSections:  sanitizeList(configuration.RootReadmeSections),
		RoleReadmeSections:  sanitizeList(configuration.RoleReadmeSections),
	}
	if len(sanitized.EnabledRules) == 0 {
		sanitized.EnabledRules = defaults.EnabledRules
	}
	if len(sanitized.StandardDirectories) == 0 {
		sanitized.StandardDirectories = defaults.StandardDirectories
	}
	if len(sanitized.RootReadmeSections) == 0 {
		sanitized.RootReadmeSections = defaults.RootReadmeSections
	}
	if len(sanitized.RoleReadmeSections) == 0 {
		sanitized.RoleReadmeSections = defaults.RoleReadmeSections
	}
	return sanitized
}

func (configuration Configuration) validate() error {
	knownNames := make(map[string]struct{})
	for _, ruleName := range RuleNames() {
		knownNames[ruleName] = struct{}{}
	}
	for _, ruleName := range configuration.EnabledRules {
		if _, known := knownNames[ruleName]; !known {
			return fmt.Errorf(unknownRuleErrorTemplateConstant, ruleName)
		}
	}
	return nil
}

func sanitizeList(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for index := range raw {
		trimmed := strings.TrimSpace(raw[index])
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}

func lowercaseList(values []string) []string {
	for index := range values {
		values[index] = strings.ToLower(values[index])
	}
	return values
}
