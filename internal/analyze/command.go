package analyze

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/temirov/roleaudit/internal/audit"
	"github.com/temirov/roleaudit/internal/filesystem"
	"github.com/temirov/roleaudit/internal/report"
	"github.com/temirov/roleaudit/internal/suggestion"
	"github.com/temirov/roleaudit/internal/utils"
	"github.com/temirov/roleaudit/internal/utils/flags"
	pathutils "github.com/temirov/roleaudit/internal/utils/path"
)

const (
	commandUseConstant                      = "analyze"
	commandShortDescriptionConstant         = "Analyze the repository and list improvement suggestions"
	commandLongDescriptionConstant          = "analyze inspects roles, playbooks, and documentation of an Ansible repository and reports improvement suggestions grouped by category."
	unexpectedArgumentsErrorMessageConstant = "analyze does not accept positional arguments"
	commandExecutionErrorTemplateConstant   = "analyze failed: %w"
	invalidFormatErrorTemplateConstant      = "invalid format: %w"
	invalidCategoryErrorTemplateConstant    = "invalid category: %w"
	formatFlagNameConstant                  = "format"
	formatFlagDescriptionConstant           = "Output format"
	outputFileFlagNameConstant              = "output-file"
	outputFileFlagDescriptionConstant       = "Write the report to this file instead of standard output"
	gitHubFlagNameConstant                  = "github"
	gitHubFlagDescriptionConstant           = "Print guidance for turning suggestions into GitHub issues"
	noColorFlagNameConstant                 = "no-color"
	noColorFlagDescriptionConstant          = "Disable colored console output"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current analyze configuration.
type ConfigurationProvider func() Configuration

// AuditConfigurationProvider returns the inspection settings shared with other commands.
type AuditConfigurationProvider func() audit.Configuration

// TerminalDetector reports whether writer is attached to a terminal.
type TerminalDetector func(writer io.Writer) bool

// FileSystem combines the operations needed to inspect a repository and save reports.
type FileSystem interface {
	audit.FileSystem
	FileWriter
}

// CommandBuilder assembles the analyze command.
type CommandBuilder struct {
	LoggerProvider             LoggerProvider
	ConfigurationProvider      ConfigurationProvider
	AuditConfigurationProvider AuditConfigurationProvider
	FileSystem                 FileSystem
	Clock                      suggestion.Clock
	TerminalDetector           TerminalDetector
}

// Build constructs the analyze command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(formatFlagNameConstant, "", flags.FormatChoiceUsage(string(report.FormatConsole), report.Formats(), formatFlagDescriptionConstant))
	flags.BindFilterFlags(command, suggestion.CategoryNames())
	command.Flags().String(outputFileFlagNameConstant, "", outputFileFlagDescriptionConstant)
	command.Flags().Bool(gitHubFlagNameConstant, false, gitHubFlagDescriptionConstant)
	command.Flags().Bool(noColorFlagNameConstant, false, noColorFlagDescriptionConstant)

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

	service, serviceError := NewService(inspector, fileSystem, builder.Clock, command.OutOrStdout(), logger)
	if serviceError != nil {
		return serviceError
	}

	if executionError := service.Run(options); executionError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, executionError)
	}
	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (Options, error) {
	configuration := builder.resolveConfiguration()

	formatValue := configuration.Format
	if command.Flags().Changed(formatFlagNameConstant) {
		formatFlagValue, formatFlagError := command.Flags().GetString(formatFlagNameConstant)
		if formatFlagError != nil {
			return Options{}, formatFlagError
		}
		formatValue = formatFlagValue
	}
	parsedFormat, formatParseError := report.ParseFormat(formatValue)
	if formatParseError != nil {
		return Options{}, fmt.Errorf(invalidFormatErrorTemplateConstant, formatParseError)
	}

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

	outputFileValue := configuration.OutputFile
	if command.Flags().Changed(outputFileFlagNameConstant) {
		outputFileFlagValue, outputFileFlagError := command.Flags().GetString(outputFileFlagNameConstant)
		if outputFileFlagError != nil {
			return Options{}, outputFileFlagError
		}
		outputFileValue = strings.TrimSpace(outputFileFlagValue)
	}
	outputFileValue = pathutils.NewHomeExpander().Expand(outputFileValue)

	gitHubValue := configuration.GitHub
	if command.Flags().Changed(gitHubFlagNameConstant) {
		gitHubFlagValue, gitHubFlagError := command.Flags().GetBool(gitHubFlagNameConstant)
		if gitHubFlagError != nil {
			return Options{}, gitHubFlagError
		}
		gitHubValue = gitHubFlagValue
	}

	noColorValue, noColorFlagError := command.Flags().GetBool(noColorFlagNameConstant)
	if noColorFlagError != nil {
		return Options{}, noColorFlagError
	}
	colorize := configuration.Color && !noColorValue && builder.resolveTerminalDetector()(command.OutOrStdout())

	repositoryRoot, _ := utils.NewCommandContextAccessor().RepositoryRoot(command.Context())

	return Options{
		RepositoryRoot: repositoryRoot,
		Filter: suggestion.FilterOptions{
			Category: parsedCategory,
			Role:     filterValues.Role,
		},
		Format:     parsedFormat,
		OutputFile: outputFileValue,
		GitHub:     gitHubValue,
		Colorize:   colorize,
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

func (builder *CommandBuilder) resolveTerminalDetector() TerminalDetector {
	if builder.TerminalDetector == nil {
		return isTerminalWriter
	}
	return builder.TerminalDetector
}

func isTerminalWriter(writer io.Writer) bool {
	file, isFile := writer.(*os.File)
	if !isFile {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
