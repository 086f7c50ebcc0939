package remediate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/temirov/roleaudit/internal/audit"
	"github.com/temirov/roleaudit/internal/remediation"
	"github.com/temirov/roleaudit/internal/suggestion"
)

const (
	// DefaultOutputDirectoryName is created under the repository root when no output directory is set.
	DefaultOutputDirectoryName = "copilot_improvements"

	noSuggestionsMessageConstant       = "No suggestions found."
	inspectorMissingMessageConstant    = "remediate inspector must be provided"
	fileSystemMissingMessageConstant   = "remediate file system must be provided"
	outputWriterMissingMessageConstant = "remediate output writer must be provided"
	unsupportedEngineTemplateConstant  = "unsupported engine %q"
	planErrorTemplateConstant          = "unable to write remediation artifacts: %w"
)

// Inspector runs one repository inspection.
type Inspector interface {
	Inspect(request audit.Request) (audit.Result, error)
}

// Options configures one remediate execution.
type Options struct {
	RepositoryRoot  string
	Filter          suggestion.FilterOptions
	OutputDirectory string
	DryRun          bool
	Engine          remediation.Engine
	Token           string
	Model           string
	MaxTokens       int64
}

// Dependencies carries the collaborators of a Service.
type Dependencies struct {
	Inspector           Inspector
	FileSystem          remediation.FileSystem
	Clock               suggestion.Clock
	IdentifierGenerator remediation.IdentifierGenerator
	RequestOptions      []option.RequestOption
	OutputWriter        io.Writer
	Logger              *zap.Logger
}

// Service plans remediation artifacts for the filtered view of an inspection.
type Service struct {
	dependencies Dependencies
}

// NewService constructs a Service.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Inspector == nil {
		return nil, errors.New(inspectorMissingMessageConstant)
	}
	if dependencies.FileSystem == nil {
		return nil, errors.New(fileSystemMissingMessageConstant)
	}
	if dependencies.OutputWriter == nil {
		return nil, errors.New(outputWriterMissingMessageConstant)
	}
	if dependencies.Clock == nil {
		dependencies.Clock = suggestion.SystemClock{}
	}
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	return &Service{dependencies: dependencies}, nil
}

// Run inspects the repository and writes prompts, drafts, and the manifest.
// An empty view prints a notice and writes nothing.
func (service *Service) Run(executionContext context.Context, options Options) (remediation.Manifest, error) {
	result, inspectError := service.dependencies.Inspector.Inspect(audit.Request{
		RepositoryRoot: options.RepositoryRoot,
		Filter:         options.Filter,
	})
	if inspectError != nil {
		return remediation.Manifest{}, inspectError
	}

	if len(result.Suggestions) == 0 {
		_, writeError := fmt.Fprintln(service.dependencies.OutputWriter, noSuggestionsMessageConstant)
		return remediation.Manifest{}, writeError
	}

	outputDirectory := options.OutputDirectory
	if len(outputDirectory) == 0 {
		outputDirectory = filepath.Join(result.RepositoryRoot, DefaultOutputDirectoryName)
	}

	synthesizer, synthesizerError := service.resolveSynthesizer(result, options)
	if synthesizerError != nil {
		return remediation.Manifest{}, synthesizerError
	}

	planner := remediation.NewPlanner(remediation.Dependencies{
		FileSystem:          service.dependencies.FileSystem,
		PromptBuilder:       remediation.NewPromptBuilder(result.RepositoryRoot, result.ProjectName, service.dependencies.FileSystem),
		Synthesizer:         synthesizer,
		Clock:               service.dependencies.Clock,
		IdentifierGenerator: service.dependencies.IdentifierGenerator,
		OutputWriter:        service.dependencies.OutputWriter,
		Logger:              service.dependencies.Logger,
	})

	manifest, planError := planner.Plan(executionContext, result.Suggestions, remediation.PlanOptions{
		OutputDirectory: outputDirectory,
		DryRun:          options.DryRun,
		Engine:          options.Engine,
	})
	if planError != nil {
		return manifest, fmt.Errorf(planErrorTemplateConstant, planError)
	}
	return manifest, nil
}

// resolveSynthesizer returns nil for dry runs so no engine is ever contacted.
func (service *Service) resolveSynthesizer(result audit.Result, options Options) (remediation.Synthesizer, error) {
	if options.DryRun {
		return nil, nil
	}

	templateSynthesizer := remediation.NewTemplateSynthesizer(result.RepositoryRoot, result.ProjectName)
	switch options.Engine {
	case remediation.EngineTemplate, "":
		return templateSynthesizer, nil
	case remediation.EngineAnthropic:
		return remediation.NewAnthropicSynthesizer(
			remediation.AnthropicConfiguration{
				Token:          options.Token,
				Model:          options.Model,
				MaxTokens:      options.MaxTokens,
				RequestOptions: service.dependencies.RequestOptions,
			},
			templateSynthesizer,
			service.dependencies.Logger,
		)
	default:
		return nil, fmt.Errorf(unsupportedEngineTemplateConstant, options.Engine)
	}
}
