package remediation

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/temirov/roleaudit/internal/suggestion"
)

const (
	promptHeadingTemplate      = "# %s Repository Improvement\n\n"
	promptSuggestionTemplate   = "## Suggestion: %s\n\n"
	promptPriorityTemplate     = "**Priority:** %s\n\n"
	promptCategoryTemplate     = "**Category:** %s\n\n"
	promptDescriptionTemplate  = "%s\n\n"
	promptFilesHeadingConstant = "**Files to modify:**\n"
	promptFileEntryTemplate    = "- `%s`\n"
	promptFileContentTemplate  = "\n```\n%s\n```\n\n"
	promptFileErrorTemplate    = "\nError reading file: %v\n\n"
	promptTaskHeadingConstant  = "\n## Task\n\n"
	promptTaskBodyTemplate     = "Please implement the suggested improvement for the %s repository. Provide the complete modified file(s) with your changes.\n\n"
)

// FileReader exposes the file operations the prompt builder needs.
type FileReader interface {
	Stat(path string) (fs.FileInfo, error)
	ReadFile(path string) ([]byte, error)
}

// PromptBuilder renders the Markdown prompt for a suggestion, inlining the
// content of every referenced regular file.
type PromptBuilder struct {
	repositoryRoot string
	projectName    string
	fileReader     FileReader
}

// NewPromptBuilder constructs a PromptBuilder. An empty project name defaults
// to the base name of the repository root.
func NewPromptBuilder(repositoryRoot string, projectName string, fileReader FileReader) PromptBuilder {
	if len(strings.TrimSpace(projectName)) == 0 {
		projectName = filepath.Base(filepath.Clean(repositoryRoot))
	}
	return PromptBuilder{repositoryRoot: repositoryRoot, projectName: projectName, fileReader: fileReader}
}

// Build renders the prompt.
func (builder PromptBuilder) Build(item suggestion.Suggestion) string {
	var prompt strings.Builder
	fmt.Fprintf(&prompt, promptHeadingTemplate, builder.projectName)
	fmt.Fprintf(&prompt, promptSuggestionTemplate, item.Title)
	fmt.Fprintf(&prompt, promptPriorityTemplate, item.Priority.Label())
	fmt.Fprintf(&prompt, promptCategoryTemplate, item.Category)
	fmt.Fprintf(&prompt, promptDescriptionTemplate, item.Description)

	prompt.WriteString(promptFilesHeadingConstant)
	for _, filePath := range item.FilePaths {
		fmt.Fprintf(&prompt, promptFileEntryTemplate, builder.relativePath(filePath))

		fileInfo, statError := builder.fileReader.Stat(filePath)
		if statError != nil || !fileInfo.Mode().IsRegular() {
			continue
		}
		content, readError := builder.fileReader.ReadFile(filePath)
		if readError != nil {
			fmt.Fprintf(&prompt, promptFileErrorTemplate, readError)
			continue
		}
		fmt.Fprintf(&prompt, promptFileContentTemplate, string(content))
	}

	prompt.WriteString(promptTaskHeadingConstant)
	fmt.Fprintf(&prompt, promptTaskBodyTemplate, builder.projectName)
	return prompt.String()
}

func (builder PromptBuilder) relativePath(filePath string) string {
	relativePath, relativeError := filepath.Rel(builder.repositoryRoot, filePath)
	if relativeError != nil {
		return filePath
	}
	return relativePath
}
