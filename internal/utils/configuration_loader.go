package utils

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	listValueSeparatorConstant                  = ","
	configurationMissingErrorTemplateConstant   = "configuration file %s does not exist"
	configurationReadErrorTemplateConstant      = "failed to read configuration: %w"
	configurationUnmarshalErrorTemplateConstant = "failed to parse configuration: %w"
	embeddedConfigurationErrorTemplateConstant  = "failed to merge embedded configuration: %w"
	// ConfigurationSourceEmbedded marks settings taken from the compiled-in defaults.
	ConfigurationSourceEmbedded = "embedded"
	// ConfigurationSourceFile marks settings taken from a configuration file.
	ConfigurationSourceFile = "file"
)

var environmentKeyReplacer = strings.NewReplacer(".", "_")

// ConfigurationLoader layers embedded defaults, a configuration file, and
// prefixed environment variables into one configuration value.
type ConfigurationLoader struct {
	configurationName string
	configurationType string
	environmentPrefix string
	searchPaths       []string
	embeddedData      []byte
	embeddedType      string
}

// LoadedConfiguration describes where the resolved settings came from.
type LoadedConfiguration struct {
	ConfigFileUsed string
	Sources        []string
}

// NewConfigurationLoader creates a loader that looks for configurationName in searchPaths.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	return &ConfigurationLoader{
		configurationName: configurationName,
		configurationType: configurationType,
		environmentPrefix: environmentPrefix,
		searchPaths:       append([]string(nil), searchPaths...),
	}
}

// SetEmbeddedConfiguration registers data merged underneath any configuration file.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(configurationData []byte, configurationType string) {
	if loader == nil {
		return
	}
	loader.embeddedData = bytes.Clone(configurationData)
	loader.embeddedType = strings.TrimSpace(configurationType)
}

// LoadConfiguration decodes the layered settings into targetConfiguration.
// Precedence from lowest to highest: defaultValues, embedded data, the
// configuration file (explicit path or first match in the search paths), environment.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, targetConfiguration any) (LoadedConfiguration, error) {
	viperInstance := viper.New()
	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	var metadata LoadedConfiguration

	if len(loader.embeddedData) > 0 {
		if mergeError := loader.mergeEmbedded(viperInstance); mergeError != nil {
			return LoadedConfiguration{}, mergeError
		}
		metadata.Sources = append(metadata.Sources, ConfigurationSourceEmbedded)
	}

	fileUsed, fileError := loader.mergeFile(viperInstance, strings.TrimSpace(configurationFilePath))
	if fileError != nil {
		return LoadedConfiguration{}, fileError
	}
	if len(fileUsed) > 0 {
		metadata.ConfigFileUsed = fileUsed
		metadata.Sources = append(metadata.Sources, ConfigurationSourceFile)
	}

	viperInstance.SetEnvPrefix(loader.environmentPrefix)
	viperInstance.SetEnvKeyReplacer(environmentKeyReplacer)
	viperInstance.AutomaticEnv()

	if unmarshalError := viperInstance.Unmarshal(targetConfiguration, viper.DecodeHook(configurationDecodeHook())); unmarshalError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationUnmarshalErrorTemplateConstant, unmarshalError)
	}

	return metadata, nil
}

func (loader *ConfigurationLoader) mergeEmbedded(viperInstance *viper.Viper) error {
	embeddedType := loader.embeddedType
	if len(embeddedType) == 0 {
		embeddedType = loader.configurationType
	}
	viperInstance.SetConfigType(embeddedType)
	if mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.embeddedData)); mergeError != nil {
		return fmt.Errorf(embeddedConfigurationErrorTemplateConstant, mergeError)
	}
	return nil
}

// mergeFile returns the path of the merged file, or an empty string when the
// search paths hold no configuration file.
func (loader *ConfigurationLoader) mergeFile(viperInstance *viper.Viper, explicitPath string) (string, error) {
	viperInstance.SetConfigType(loader.configurationType)

	if len(explicitPath) > 0 {
		if _, statError := os.Stat(explicitPath); errors.Is(statError, fs.ErrNotExist) {
			return "", fmt.Errorf(configurationMissingErrorTemplateConstant, explicitPath)
		}
		viperInstance.SetConfigFile(explicitPath)
	} else {
		viperInstance.SetConfigName(loader.configurationName)
		for _, searchPath := range loader.searchPaths {
			viperInstance.AddConfigPath(searchPath)
		}
	}

	if readError := viperInstance.MergeInConfig(); readError != nil {
		var notFoundError viper.ConfigFileNotFoundError
		if errors.As(readError, &notFoundError) {
			return "", nil
		}
		return "", fmt.Errorf(configurationReadErrorTemplateConstant, readError)
	}
	return viperInstance.ConfigFileUsed(), nil
}

// configurationDecodeHook lets comma-separated environment values populate list settings.
func configurationDecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(listValueSeparatorConstant),
		mapstructure.TextUnmarshallerHookFunc(),
	)
}
