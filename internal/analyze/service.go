package analyze

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/roleaudit/internal/audit"
	"github.com/temirov/roleaudit/internal/report"
	"github.com/temirov/roleaudit/internal/suggestion"
)

const (
	outputFilePermissionsConstant      = fs.FileMode(0o644)
	outputWriterMissingMessageConstant = "analyze output writer must be provided"
	inspectorMissingMessageConstant    = "analyze inspector must be provided"
	outputFileWriteErrorTemplate       = "unable to write report to %s: %w"
	reportRenderErrorTemplate          = "unable to render report: %w"
	reportWrittenMessageConstant       = "report written"
	logFieldOutputFileConstant         = "output_file"
	logFieldFormatConstant             = "format"
)

// gitHubGuidanceLines describe the manual steps for turning suggestions into issues.
var gitHubGuidanceLines = []string{
	"\nGitHub integration is not yet implemented.",
	"To create GitHub issues, you would need to:",
	"1. Set up GitHub API authentication",
	"2. Use the GitHub API to create issues based on suggestions",
	"3. Track created issues to avoid duplicates",
	"\nConsider using the GitHub CLI or PyGithub library for implementation.",
}

// Inspector runs one repository inspection.
type Inspector interface {
	Inspect(request audit.Request) (audit.Result, error)
}

// FileWriter persists rendered reports.
type FileWriter interface {
	WriteFile(path string, data []byte, permissions fs.FileMode) error
}

// Options configures one analyze execution.
type Options struct {
	RepositoryRoot string
	Filter         suggestion.FilterOptions
	Format         report.Format
	OutputFile     string
	GitHub         bool
	Colorize       bool
}

// Service renders the filtered suggestions of an inspection.
type Service struct {
	inspector    Inspector
	fileWriter   FileWriter
	clock        suggestion.Clock
	outputWriter io.Writer
	logger       *zap.Logger
}

// NewService constructs a Service.
func NewService(inspector Inspector, fileWriter FileWriter, clock suggestion.Clock, outputWriter io.Writer, logger *zap.Logger) (*Service, error) {
	if inspector == nil {
		return nil, errors.New(inspectorMissingMessageConstant)
	}
	if outputWriter == nil {
		return nil, errors.New(outputWriterMissingMessageConstant)
	}
	if clock == nil {
		clock = suggestion.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		inspector:    inspector,
		fileWriter:   fileWriter,
		clock:        clock,
		outputWriter: outputWriter,
		logger:       logger,
	}, nil
}

// Run inspects the repository and writes the report either to the output
// writer or, when an output file is set, to that file without colors.
func (service *Service) Run(options Options) error {
	result, inspectError := service.inspector.Inspect(audit.Request{
		RepositoryRoot: options.RepositoryRoot,
		Filter:         options.Filter,
	})
	if inspectError != nil {
		return inspectError
	}

	writeToFile := len(strings.TrimSpace(options.OutputFile)) > 0
	renderer, rendererError := report.NewRenderer(options.Format, report.Options{
		RepositoryRoot: result.RepositoryRoot,
		ProjectName:    result.ProjectName,
		Labels:         suggestion.DefaultCategoryLabels(),
		Clock:          service.clock,
		Colorize:       options.Colorize && !writeToFile,
	})
	if rendererError != nil {
		return rendererError
	}

	if writeToFile {
		if writeError := service.writeReportFile(renderer, result.Suggestions, options); writeError != nil {
			return writeError
		}
	} else if renderError := renderer.Render(service.outputWriter, result.Suggestions); renderError != nil {
		return fmt.Errorf(reportRenderErrorTemplate, renderError)
	}

	if options.GitHub && len(result.Suggestions) > 0 {
		return service.writeGitHubGuidance()
	}
	return nil
}

func (service *Service) writeReportFile(renderer report.Renderer, suggestions []suggestion.Suggestion, options Options) error {
	var buffer bytes.Buffer
	if renderError := renderer.Render(&buffer, suggestions); renderError != nil {
		return fmt.Errorf(reportRenderErrorTemplate, renderError)
	}
	if service.fileWriter == nil {
		return fmt.Errorf(outputFileWriteErrorTemplate, options.OutputFile, errors.New(outputWriterMissingMessageConstant))
	}
	if writeError := service.fileWriter.WriteFile(options.OutputFile, buffer.Bytes(), outputFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(outputFileWriteErrorTemplate, options.OutputFile, writeError)
	}
	service.logger.Info(
		reportWrittenMessageConstant,
		zap.String(logFieldOutputFileConstant, options.OutputFile),
		zap.String(logFieldFormatConstant, string(options.Format)),
	)
	return nil
}

func (service *Service) writeGitHubGuidance() error {
	for _, guidanceLine := range gitHubGuidanceLines {
		if _, writeError := fmt.Fprintln(service.outputWriter, guidanceLine); writeError != nil {
			return writeError
		}
	}
	return nil
}
