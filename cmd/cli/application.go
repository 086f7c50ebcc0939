package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/roleaudit/internal/analyze"
	"github.com/temirov/roleaudit/internal/audit"
	"github.com/temirov/roleaudit/internal/remediate"
	"github.com/temirov/roleaudit/internal/utils"
	"github.com/temirov/roleaudit/internal/utils/flags"
)

const (
	applicationNameConstant                  = "roleaudit"
	applicationShortDescriptionConstant      = "Audit Ansible repositories and plan improvements"
	applicationLongDescriptionConstant       = "roleaudit inspects an Ansible repository for structure, documentation, testing, security, and maintenance gaps, reports them, and writes remediation prompts."
	configFileFlagNameConstant               = "config"
	configFileFlagUsageConstant              = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                 = "log-level"
	logLevelFlagUsageConstant                = "Override the configured log level."
	logFormatFlagNameConstant                = "log-format"
	logFormatFlagUsageConstant               = "Override the configured log format (structured or console)."
	commonConfigurationKeyConstant           = "common"
	commonLogLevelConfigKeyConstant          = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant         = commonConfigurationKeyConstant + ".log_format"
	commonRepositoryRootConfigKeyConstant    = commonConfigurationKeyConstant + ".repository_root"
	environmentPrefixConstant                = "ROLEAUDIT"
	configurationNameConstant                = "config"
	configurationTypeConstant                = "yaml"
	configurationInitializedMessageConstant  = "configuration initialized"
	configurationLogLevelFieldConstant       = "log_level"
	configurationLogFormatFieldConstant      = "log_format"
	configurationFileFieldConstant           = "config_file"
	configurationRepositoryRootFieldConstant = "repository_root"
	configurationLoadErrorTemplateConstant   = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant      = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant          = "unable to flush logger: %w"
	defaultConfigurationSearchPathConstant   = "."
	defaultRepositoryRootConstant            = "."
	toolsConfigurationKeyConstant            = "tools"
	auditConfigurationKeyConstant            = toolsConfigurationKeyConstant + ".audit"
	analyzeConfigurationKeyConstant          = toolsConfigurationKeyConstant + ".analyze"
	remediateConfigurationKeyConstant        = toolsConfigurationKeyConstant + ".remediate"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores settings shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel       string `mapstructure:"log_level"`
	LogFormat      string `mapstructure:"log_format"`
	RepositoryRoot string `mapstructure:"repository_root"`
}

// ApplicationToolsConfiguration holds configuration for CLI subcommands.
type ApplicationToolsConfiguration struct {
	Audit     audit.Configuration     `mapstructure:"audit"`
	Analyze   analyze.Configuration   `mapstructure:"analyze"`
	Remediate remediate.Configuration `mapstructure:"remediate"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand             *cobra.Command
	configurationLoader     *utils.ConfigurationLoader
	loggerFactory           *utils.LoggerFactory
	logger                  *zap.Logger
	configuration           ApplicationConfiguration
	configurationMetadata   utils.LoadedConfiguration
	configurationFilePath   string
	logLevelFlagValue       string
	logFormatFlagValue      string
	repositoryRootFlagValue string
	commandContextAccessor  utils.CommandContextAccessor
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		configurationSearchPaths(),
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.repositoryRootFlagValue, flags.RepositoryRootFlagName, "", flags.RepositoryRootFlagUsage)

	analyzeBuilder := analyze.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() analyze.Configuration {
			return application.configuration.Tools.Analyze
		},
		AuditConfigurationProvider: func() audit.Configuration {
			return application.configuration.Tools.Audit
		},
	}
	analyzeCommand, analyzeBuildError := analyzeBuilder.Build()
	if analyzeBuildError == nil {
		cobraCommand.AddCommand(analyzeCommand)
	}

	remediateBuilder := remediate.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() remediate.Configuration {
			return application.configuration.Tools.Remediate
		},
		AuditConfigurationProvider: func() audit.Configuration {
			return application.configuration.Tools.Audit
		},
	}
	remediateCommand, remediateBuildError := remediateBuilder.Build()
	if remediateBuildError == nil {
		cobraCommand.AddCommand(remediateCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// RootCommand exposes the root Cobra command.
func (application *Application) RootCommand() *cobra.Command {
	return application.rootCommand
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func configurationSearchPaths() []string {
	searchPaths := []string{defaultConfigurationSearchPathConstant}
	if userConfigurationDirectory, directoryError := os.UserConfigDir(); directoryError == nil {
		searchPaths = append(searchPaths, filepath.Join(userConfigurationDirectory, applicationNameConstant))
	}
	return searchPaths
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:       string(utils.LogLevelWarn),
		commonLogFormatConfigKeyConstant:      string(utils.LogFormatConsole),
		commonRepositoryRootConfigKeyConstant: defaultRepositoryRootConstant,
	}
	for configurationKey, configurationValue := range audit.DefaultConfigurationValues(auditConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range analyze.DefaultConfigurationValues(analyzeConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range remediate.DefaultConfigurationValues(remediateConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	if application.persistentFlagChanged(command, flags.RepositoryRootFlagName) {
		application.configuration.Common.RepositoryRoot = application.repositoryRootFlagValue
	}
	if len(strings.TrimSpace(application.configuration.Common.RepositoryRoot)) == 0 {
		application.configuration.Common.RepositoryRoot = defaultRepositoryRootConstant
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.String(configurationRepositoryRootFieldConstant, application.configuration.Common.RepositoryRoot),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		updatedContext = application.commandContextAccessor.WithRepositoryRoot(
			updatedContext,
			application.configuration.Common.RepositoryRoot,
		)
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
