package remediation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/temirov/roleaudit/internal/suggestion"
)

const (
	promptFileNameTemplate          = "prompt_%d.md"
	draftFileNameTemplate           = "improvement_%d.md"
	manifestFileNameConstant        = "manifest.json"
	manifestDateLayoutConstant      = "2006-01-02 15:04:05"
	manifestIndentConstant          = "  "
	directoryPermissionsConstant    = fs.FileMode(0o755)
	artifactPermissionsConstant     = fs.FileMode(0o644)
	generatingMessageTemplate       = "Generating improvements for %d suggestions...\n"
	processingMessageTemplate       = "\nProcessing suggestion %d/%d: %s\n"
	draftSavedMessageTemplate       = "Improvement saved to: %s\n"
	dryRunSavedMessageTemplate      = "Dry run: Prompt saved to %s\n"
	outputDirectoryRequiredMessage  = "remediation output directory must be provided"
	synthesizerRequiredMessage      = "draft synthesizer must be provided for a non dry run"
	createDirectoryErrorTemplate    = "unable to create output directory %s: %w"
	writeArtifactErrorTemplate      = "unable to write %s: %w"
	synthesizeErrorTemplate         = "unable to synthesize draft for suggestion %d: %w"
	encodeManifestErrorTemplate     = "unable to encode manifest: %w"
	plannerStartedMessageConstant   = "remediation planning started"
	plannerCompletedMessageConstant = "remediation planning completed"
	logFieldOutputDirectoryConstant = "output_directory"
	logFieldDryRunConstant          = "dry_run"
	logFieldSuggestionCountConstant = "suggestions"
	logFieldRunIDConstant           = "run_id"
	logFieldEngineConstant          = "engine"
)

// FileSystem exposes the file operations the planner needs.
type FileSystem interface {
	FileReader
	MkdirAll(path string, permissions fs.FileMode) error
	WriteFile(path string, data []byte, permissions fs.FileMode) error
}

// IdentifierGenerator produces run identifiers.
type IdentifierGenerator func() string

// PlanOptions configures one planning batch.
type PlanOptions struct {
	OutputDirectory string
	DryRun          bool
	Engine          Engine
}

// ManifestEntry records the artifacts written for one suggestion.
type ManifestEntry struct {
	Ordinal      int    `json:"ordinal"`
	SuggestionID int    `json:"suggestion_id"`
	Title        string `json:"title"`
	PromptFile   string `json:"prompt_file"`
	DraftFile    string `json:"draft_file,omitempty"`
}

// Manifest summarizes a planning batch.
type Manifest struct {
	RunID     string          `json:"run_id"`
	CreatedAt string          `json:"created_at"`
	DryRun    bool            `json:"dry_run"`
	Engine    Engine          `json:"engine,omitempty"`
	Artifacts []ManifestEntry `json:"artifacts"`
}

// Dependencies carries the collaborators of a Planner.
type Dependencies struct {
	FileSystem          FileSystem
	PromptBuilder       PromptBuilder
	Synthesizer         Synthesizer
	Clock               suggestion.Clock
	IdentifierGenerator IdentifierGenerator
	OutputWriter        io.Writer
	Logger              *zap.Logger
}

// Planner writes prompt and draft artifacts for a suggestion view.
type Planner struct {
	fileSystem          FileSystem
	promptBuilder       PromptBuilder
	synthesizer         Synthesizer
	clock               suggestion.Clock
	identifierGenerator IdentifierGenerator
	outputWriter        io.Writer
	logger              *zap.Logger
}

// NewPlanner constructs a Planner, defaulting optional collaborators.
func NewPlanner(dependencies Dependencies) *Planner {
	planner := &Planner{
		fileSystem:          dependencies.FileSystem,
		promptBuilder:       dependencies.PromptBuilder,
		synthesizer:         dependencies.Synthesizer,
		clock:               dependencies.Clock,
		identifierGenerator: dependencies.IdentifierGenerator,
		outputWriter:        dependencies.OutputWriter,
		logger:              dependencies.Logger,
	}
	if planner.clock == nil {
		planner.clock = suggestion.SystemClock{}
	}
	if planner.identifierGenerator == nil {
		planner.identifierGenerator = uuid.NewString
	}
	if planner.outputWriter == nil {
		planner.outputWriter = io.Discard
	}
	if planner.logger == nil {
		planner.logger = zap.NewNop()
	}
	return planner
}

// Plan writes prompt_<n>.md for every suggestion, improvement_<n>.md unless the
// run is a dry run, and finally manifest.json. Ordinals follow the order of the
// supplied view starting at 1.
func (planner *Planner) Plan(executionContext context.Context, suggestions []suggestion.Suggestion, options PlanOptions) (Manifest, error) {
	if len(options.OutputDirectory) == 0 {
		return Manifest{}, errors.New(outputDirectoryRequiredMessage)
	}
	if !options.DryRun && planner.synthesizer == nil {
		return Manifest{}, errors.New(synthesizerRequiredMessage)
	}
	if mkdirError := planner.fileSystem.MkdirAll(options.OutputDirectory, directoryPermissionsConstant); mkdirError != nil {
		return Manifest{}, fmt.Errorf(createDirectoryErrorTemplate, options.OutputDirectory, mkdirError)
	}

	manifest := Manifest{
		RunID:     planner.identifierGenerator(),
		CreatedAt: planner.clock.Now().Format(manifestDateLayoutConstant),
		DryRun:    options.DryRun,
		Artifacts: make([]ManifestEntry, 0, len(suggestions)),
	}
	if !options.DryRun {
		manifest.Engine = options.Engine
	}

	planner.logger.Info(
		plannerStartedMessageConstant,
		zap.String(logFieldRunIDConstant, manifest.RunID),
		zap.String(logFieldOutputDirectoryConstant, options.OutputDirectory),
		zap.Bool(logFieldDryRunConstant, options.DryRun),
		zap.Int(logFieldSuggestionCountConstant, len(suggestions)),
	)
	fmt.Fprintf(planner.outputWriter, generatingMessageTemplate, len(suggestions))

	for suggestionIndex, item := range suggestions {
		ordinal := suggestionIndex + 1
		fmt.Fprintf(planner.outputWriter, processingMessageTemplate, ordinal, len(suggestions), item.Title)

		prompt := planner.promptBuilder.Build(item)
		promptPath := filepath.Join(options.OutputDirectory, fmt.Sprintf(promptFileNameTemplate, ordinal))
		if writeError := planner.fileSystem.WriteFile(promptPath, []byte(prompt), artifactPermissionsConstant); writeError != nil {
			return manifest, fmt.Errorf(writeArtifactErrorTemplate, promptPath, writeError)
		}

		entry := ManifestEntry{
			Ordinal:      ordinal,
			SuggestionID: item.ID,
			Title:        item.Title,
			PromptFile:   filepath.Base(promptPath),
		}

		if options.DryRun {
			fmt.Fprintf(planner.outputWriter, dryRunSavedMessageTemplate, promptPath)
			manifest.Artifacts = append(manifest.Artifacts, entry)
			continue
		}

		draft, synthesizeError := planner.synthesizer.Synthesize(executionContext, item, prompt)
		if synthesizeError != nil {
			return manifest, fmt.Errorf(synthesizeErrorTemplate, item.ID, synthesizeError)
		}
		draftPath := filepath.Join(options.OutputDirectory, fmt.Sprintf(draftFileNameTemplate, ordinal))
		if writeError := planner.fileSystem.WriteFile(draftPath, []byte(draft), artifactPermissionsConstant); writeError != nil {
			return manifest, fmt.Errorf(writeArtifactErrorTemplate, draftPath, writeError)
		}
		fmt.Fprintf(planner.outputWriter, draftSavedMessageTemplate, draftPath)

		entry.DraftFile = filepath.Base(draftPath)
		manifest.Artifacts = append(manifest.Artifacts, entry)
	}

	manifestContent, encodeError := json.MarshalIndent(manifest, "", manifestIndentConstant)
	if encodeError != nil {
		return manifest, fmt.Errorf(encodeManifestErrorTemplate, encodeError)
	}
	manifestPath := filepath.Join(options.OutputDirectory, manifestFileNameConstant)
	if writeError := planner.fileSystem.WriteFile(manifestPath, append(manifestContent, '\n'), artifactPermissionsConstant); writeError != nil {
		return manifest, fmt.Errorf(writeArtifactErrorTemplate, manifestPath, writeError)
	}

	planner.logger.Info(
		plannerCompletedMessageConstant,
		zap.String(logFieldRunIDConstant, manifest.RunID),
		zap.String(logFieldEngineConstant, string(manifest.Engine)),
		zap.Int(logFieldSuggestionCountConstant, len(manifest.Artifacts)),
	)
	return manifest, nil
}
