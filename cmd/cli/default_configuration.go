package cli

import (
	"bytes"
	_ "embed"
)

// defaultConfigurationContent holds the settings every run starts from. Keep it
// in sync with the DefaultConfigurationValues of each command package.
//
//go:embed default_config.yaml
var defaultConfigurationContent []byte

// EmbeddedDefaultConfiguration returns a copy of the embedded defaults and their format.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return bytes.Clone(defaultConfigurationContent), configurationTypeConstant
}
