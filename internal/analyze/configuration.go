package analyze

import (
	"strings"

	"github.com/temirov/roleaudit/internal/report"
)

const (
	configurationFormatKeyConstant     = "format"
	configurationOutputFileKeyConstant = "output_file"
	configurationGitHubKeyConstant     = "github"
	configurationColorKeyConstant      = "color"
)

// Configuration captures persistent settings for the analyze command.
type Configuration struct {
	Format     string `mapstructure:"format"`
	OutputFile string `mapstructure:"output_file"`
	GitHub     bool   `mapstructure:"github"`
	Color      bool   `mapstructure:"color"`
}

// DefaultConfiguration returns baseline configuration values for the analyze command.
func DefaultConfiguration() Configuration {
	return Configuration{
		Format:     string(report.FormatConsole),
		OutputFile: "",
		GitHub:     false,
		Color:      true,
	}
}

// DefaultConfigurationValues produces Viper defaults for the analyze command.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		rootKey + "." + configurationFormatKeyConstant:     defaults.Format,
		rootKey + "." + configurationOutputFileKeyConstant: defaults.OutputFile,
		rootKey + "." + configurationGitHubKeyConstant:     defaults.GitHub,
		rootKey + "." + configurationColorKeyConstant:      defaults.Color,
	}
}

func (configuration Configuration) sanitize() Configuration {
	sanitized := configuration
	sanitized.Format = strings.TrimSpace(configuration.Format)
	if len(sanitized.Format) == 0 {
		sanitized.Format = string(report.FormatConsole)
	}
	sanitized.OutputFile = strings.TrimSpace(configuration.OutputFile)
	return sanitized
}
