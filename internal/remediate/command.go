package remediate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/roleaudit/internal/audit"
	"github.com/temirov/roleaudit/internal/credentials"
	"github.com/temirov/roleaudit/internal/filesystem"
	"github.com/temirov/roleaudit/internal/remediation"
	"github.com/temirov/roleaudit/internal/suggestion"
	"github.com/temirov/roleaudit/internal/utils"
	"github.com/temirov/roleaudit/internal/utils/flags"
	pathutils "github.com/temirov/roleaudit/internal/utils/path"
)

const (
	commandUseConstant                      = "remediate"
	commandShortDescriptionConstant         = "Write improvement prompts and drafts for suggestions"
	commandLongDescriptionConstant          = "remediate analyzes the repository and writes a prompt file and, unless --dry-run is set, an improvement draft for every matching suggestion."
	unexpectedArgumentsErrorMessageConstant = "remediate does not accept positional arguments"
	commandExecutionErrorTemplateConstant   = "remediate failed: %w"
	invalidEngineErrorTemplateConstant      = "invalid engine: %w"
	invalidCategoryErrorTemplateConstant    = "invalid category: %w"
	missingTokenErrorTemplateConstant       = "the %s engine requires --token or one of: %s"
	tokenVariablesSeparatorConstant         = ", "
	outputDirectoryFlagNameConstant         = "output-dir"
	outputDirectoryFlagDescriptionConstant  = "Directory for prompts and drafts (default <repository-root>/" + DefaultOutputDirectoryName + ")"
	tokenFlagNameConstant                   = "token"
	tokenFlagDescriptionConstant            = "API token for the anthropic engine"
	engineFlagNameConstant                  = "engine"
	engineFlagDescriptionConstant           = "Draft synthesis engine"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current remediate configuration.
type ConfigurationProvider func() Configuration

// AuditConfigurationProvider returns the inspection settings shared with other commands.
type AuditConfigurationProvider func() audit.Configuration

// FileSystem combines the operations needed to inspect a repository and write artifacts.
type FileSystem interface {
	audit.FileSystem
	remediation.FileSystem
}

// CommandBuilder assembles the remediate command.
type CommandBuilder struct {
	LoggerProvider             LoggerProvider
	ConfigurationProvider      ConfigurationProvider
	AuditConfigurationProvider AuditConfigurationProvider
	FileSystem                 FileSystem
	Clock                      suggestion.Clock
	IdentifierGenerator        remediation.IdentifierGenerator
	EnvironmentLookup          credentials.LookupFunc
	RequestOptions             []option.RequestOption
}

// Build constructs the remediate command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	flags.BindFilterFlags(command, suggestion.CategoryNames())
	command.Flags().String(outputDirectoryFlagNameConstant, "", outputDirectoryFlagDescriptionConstant)
	command.Flags().String(tokenFlagNameConstant, "", tokenFlagDescriptionConstant)
	command.Flags().String(engineFlagNameConstant, "", flags.FormatChoiceUsage(string(remediation.EngineTemplate), remediation.Engines(), engineFlagDescriptionConstant))
	command.Flags().Bool(flags.DryRunFlagName, false, flags.DryRunFlagUsage)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New(unexpectedArgumentsErrorMessageConstant)
	}

	options, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()
	fileSystem := builder.resolveFileSystem()

	inspector, inspectorError := audit.NewService(fileSystem, builder.resolveAuditConfiguration(), builder.Clock, logger)
	if inspectorError != nil {
		return inspectorError
	}

	service, serviceError := NewService(Dependencies{
		Inspector:           inspector,
		FileSystem:          fileSystem,
		Clock:               builder.Clock,
		IdentifierGenerator: builder.IdentifierGenerator,
		RequestOptions:      builder.RequestOptions,
		OutputWriter:        command.OutOrStdout(),
		Logger:              logger,
	})
	if serviceError != nil {
		return serviceError
	}

	if _, executionError := service.Run(command.Context(), options); executionError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, executionError)
	}
	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (Options, error) {
	configuration := builder.resolveConfiguration()

	filterValues, filterFlagsError := flags.ReadFilterFlags(command)
	if filterFlagsError != nil {
		return Options{}, filterFlagsError
	}
	var parsedCategory suggestion.Category
	if len(filterValues.Category) > 0 {
		category, categoryParseError := suggestion.ParseCategory(filterValues.Category)
		if categoryParseError != nil {
			return Options{}, fmt.Errorf(invalidCategoryErrorTemplateConstant, categoryParseError)
		}
		parsedCategory = category
	}

	outputDirectoryValue := configuration.OutputDirectory
	if command.Flags().Changed(outputDirectoryFlagNameConstant) {
		outputDirectoryFlagValue, outputDirectoryFlagError := command.Flags().GetString(outputDirectoryFlagNameConstant)
		if outputDirectoryFlagError != nil {
			return Options{}, outputDirectoryFlagError
		}
		outputDirectoryValue = strings.TrimSpace(outputDirectoryFlagValue)
	}
	outputDirectoryValue = pathutils.NewHomeExpander().Expand(outputDirectoryValue)

	engineValue := configuration.Engine
	if command.Flags().Changed(engineFlagNameConstant) {
		engineFlagValue, engineFlagError := command.Flags().GetString(engineFlagNameConstant)
		if engineFlagError != nil {
			return Options{}, engineFlagError
		}
		engineValue = engineFlagValue
	}
	parsedEngine, engineParseError := remediation.ParseEngine(engineValue)
	if engineParseError != nil {
		return Options{}, fmt.Errorf(invalidEngineErrorTemplateConstant, engineParseError)
	}

	dryRunValue := configuration.DryRun
	if command.Flags().Changed(flags.DryRunFlagName) {
		dryRunFlagValue, dryRunFlagError := command.Flags().GetBool(flags.DryRunFlagName)
		if dryRunFlagError != nil {
			return Options{}, dryRunFlagError
		}
		dryRunValue = dryRunFlagValue
	}

	tokenFlagValue, tokenFlagError := command.Flags().GetString(tokenFlagNameConstant)
	if tokenFlagError != nil {
		return Options{}, tokenFlagError
	}
	tokenValue, _ := credentials.ResolveToken(tokenFlagValue, configuration.TokenVariables, builder.EnvironmentLookup)
	if parsedEngine == remediation.EngineAnthropic && !dryRunValue && len(tokenValue) == 0 {
		tokenVariables := configuration.TokenVariables
		if len(tokenVariables) == 0 {
			tokenVariables = credentials.DefaultTokenVariables()
		}
		return Options{}, fmt.Errorf(missingTokenErrorTemplateConstant, parsedEngine, strings.Join(tokenVariables, tokenVariablesSeparatorConstant))
	}

	repositoryRoot, _ := utils.NewCommandContextAccessor().RepositoryRoot(command.Context())

	return Options{
		RepositoryRoot: repositoryRoot,
		Filter: suggestion.FilterOptions{
			Category: parsedCategory,
			Role:     filterValues.Role,
		},
		OutputDirectory: outputDirectoryValue,
		DryRun:          dryRunValue,
		Engine:          parsedEngine,
		Token:           tokenValue,
		Model:           configuration.Model,
		MaxTokens:       configuration.MaxTokens,
	}, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	configuration := DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	return configuration.sanitize()
}

func (builder *CommandBuilder) resolveAuditConfiguration() audit.Configuration {
	if builder.AuditConfigurationProvider == nil {
		return audit.DefaultConfiguration()
	}
	return builder.AuditConfigurationProvider()
}

func (builder *CommandBuilder) resolveFileSystem() FileSystem {
	if builder.FileSystem == nil {
		return filesystem.OSFileSystem{}
	}
	return builder.FileSystem
}
