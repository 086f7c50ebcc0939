package report

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/temirov/roleaudit/internal/suggestion"
)

// Format identifies an output rendering.
type Format string

// Supported output formats.
const (
	FormatConsole  Format = "console"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

const (
	// NoSuggestionsMessage is printed in place of any payload when the view is empty.
	NoSuggestionsMessage = "No improvement suggestions found."

	analysisDateLayoutConstant     = "2006-01-02 15:04:05"
	unsupportedFormatErrorTemplate = "unsupported output format %q (expected one of: %s)"
	rendererWriterMissingMessage   = "report writer must be provided"
	formatListSeparatorConstant    = ", "
	filePathsSeparatorConstant     = ", "
)

// Formats lists the supported output format names.
func Formats() []string {
	return []string{string(FormatConsole), string(FormatJSON), string(FormatMarkdown)}
}

// ParseFormat converts a raw name into a Format.
func ParseFormat(rawValue string) (Format, error) {
	normalized := Format(strings.ToLower(strings.TrimSpace(rawValue)))
	switch normalized {
	case FormatConsole, FormatJSON, FormatMarkdown:
		return normalized, nil
	default:
		return "", fmt.Errorf(unsupportedFormatErrorTemplate, rawValue, strings.Join(Formats(), formatListSeparatorConstant))
	}
}

// Options carries the presentation settings shared by all renderers.
type Options struct {
	RepositoryRoot string
	ProjectName    string
	Labels         suggestion.CategoryLabels
	Clock          suggestion.Clock
	Colorize       bool
}

// Renderer writes a suggestion view to a writer.
type Renderer interface {
	Render(writer io.Writer, suggestions []suggestion.Suggestion) error
}

// NewRenderer returns the renderer for the format.
func NewRenderer(format Format, options Options) (Renderer, error) {
	normalized := options.normalize()
	switch format {
	case FormatConsole:
		return consoleRenderer{options: normalized}, nil
	case FormatJSON:
		return jsonRenderer{options: normalized}, nil
	case FormatMarkdown:
		return markdownRenderer{options: normalized}, nil
	default:
		return nil, fmt.Errorf(unsupportedFormatErrorTemplate, format, strings.Join(Formats(), formatListSeparatorConstant))
	}
}

func (options Options) normalize() Options {
	normalized := options
	if normalized.Labels == nil {
		normalized.Labels = suggestion.DefaultCategoryLabels()
	}
	if normalized.Clock == nil {
		normalized.Clock = suggestion.SystemClock{}
	}
	if len(strings.TrimSpace(normalized.ProjectName)) == 0 {
		normalized.ProjectName = filepath.Base(filepath.Clean(normalized.RepositoryRoot))
	}
	return normalized
}

func (options Options) relativePath(reportablePath string) string {
	if len(options.RepositoryRoot) == 0 {
		return reportablePath
	}
	relativePath, relativeError := filepath.Rel(options.RepositoryRoot, reportablePath)
	if relativeError != nil {
		return reportablePath
	}
	return relativePath
}

func (options Options) relativePaths(reportablePaths []string) []string {
	relativePaths := make([]string, 0, len(reportablePaths))
	for _, reportablePath := range reportablePaths {
		relativePaths = append(relativePaths, options.relativePath(reportablePath))
	}
	return relativePaths
}

// writeEmptyNotice prints the empty-view message and reports whether it did.
func writeEmptyNotice(writer io.Writer, suggestions []suggestion.Suggestion) (bool, error) {
	if writer == nil {
		return false, errors.New(rendererWriterMissingMessage)
	}
	if len(suggestions) > 0 {
		return false, nil
	}
	_, writeError := fmt.Fprintln(writer, NoSuggestionsMessage)
	return true, writeError
}
