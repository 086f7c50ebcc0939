package remediate

import (
	"strings"

	"github.com/temirov/roleaudit/internal/credentials"
	"github.com/temirov/roleaudit/internal/remediation"
)

const (
	configurationOutputDirectoryKeyConstant = "output_dir"
	configurationEngineKeyConstant          = "engine"
	configurationModelKeyConstant           = "model"
	configurationMaxTokensKeyConstant       = "max_tokens"
	configurationTokenVariablesKeyConstant  = "token_variables"
	configurationDryRunKeyConstant          = "dry_run"
)

// Configuration captures persistent settings for the remediate command.
type Configuration struct {
	OutputDirectory string   `mapstructure:"output_dir"`
	Engine          string   `mapstructure:"engine"`
	Model           string   `mapstructure:"model"`
	MaxTokens       int64    `mapstructure:"max_tokens"`
	TokenVariables  []string `mapstructure:"token_variables"`
	DryRun          bool     `mapstructure:"dry_run"`
}

// DefaultConfiguration returns baseline configuration values for the remediate command.
func DefaultConfiguration() Configuration {
	return Configuration{
		OutputDirectory: "",
		Engine:          string(remediation.EngineTemplate),
		Model:           remediation.DefaultAnthropicModel,
		MaxTokens:       remediation.DefaultAnthropicMaxTokens,
		TokenVariables:  credentials.DefaultTokenVariables(),
		DryRun:          false,
	}
}

// DefaultConfigurationValues produces Viper defaults for the remediate command.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		rootKey + "." + configurationOutputDirectoryKeyConstant: defaults.OutputDirectory,
		rootKey + "." + configurationEngineKeyConstant:          defaults.Engine,
		rootKey + "." + configurationModelKeyConstant:           defaults.Model,
		rootKey + "." + configurationMaxTokensKeyConstant:       defaults.MaxTokens,
		rootKey + "." + configurationTokenVariablesKeyConstant:  defaults.TokenVariables,
		rootKey + "." + configurationDryRunKeyConstant:          defaults.DryRun,
	}
}

func (configuration Configuration) sanitize() Configuration {
	sanitized := configuration
	sanitized.OutputDirectory = strings.TrimSpace(configuration.OutputDirectory)
	sanitized.Engine = strings.TrimSpace(configuration.Engine)
	if len(sanitized.Engine) == 0 {
		sanitized.Engine = string(remediation.EngineTemplate)
	}
	sanitized.Model = strings.TrimSpace(configuration.Model)

	tokenVariables := make([]string, 0, len(configuration.TokenVariables))
	for _, variableName := range configuration.TokenVariables {
		trimmedName := strings.TrimSpace(variableName)
		if len(trimmedName) > 0 {
			tokenVariables = append(tokenVariables, trimmedName)
		}
	}
	sanitized.TokenVariables = tokenVariables
	return sanitized
}
