package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/temirov/roleaudit/internal/suggestion"
)

const (
	markdownTitleTemplate        = "# %s Repository Analysis Results\n\n"
	markdownDateTemplate         = "*Analysis Date: %s*\n\n"
	markdownSummaryTemplate      = "Found **%d** potential improvements.\n\n"
	markdownGroupHeaderTemplate  = "## %s (%d)\n\n"
	markdownItemTitleTemplate    = "### %s\n\n"
	markdownPriorityTemplate     = "**Priority:** %s\n\n"
	markdownDescriptionTemplate  = "%s\n\n"
	markdownFilesHeadingConstant = "**Files:**\n\n"
	markdownFileEntryTemplate    = "- `%s`\n"
)

type markdownRenderer struct {
	options Options
}

func (renderer markdownRenderer) Render(writer io.Writer, suggestions []suggestion.Suggestion) error {
	if empty, emptyError := writeEmptyNotice(writer, suggestions); empty || emptyError != nil {
		return emptyError
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, markdownTitleTemplate, renderer.options.ProjectName)
	fmt.Fprintf(&builder, markdownDateTemplate, renderer.options.Clock.Now().Format(analysisDateLayoutConstant))
	fmt.Fprintf(&builder, markdownSummaryTemplate, len(suggestions))

	for _, group := range suggestion.GroupByCategory(suggestions) {
		fmt.Fprintf(&builder, markdownGroupHeaderTemplate, renderer.options.Labels.Label(group.Category), len(group.Suggestions))
		for _, item := range group.Suggestions {
			fmt.Fprintf(&builder, markdownItemTitleTemplate, item.Title)
			fmt.Fprintf(&builder, markdownPriorityTemplate, item.Priority.Label())
			fmt.Fprintf(&builder, markdownDescriptionTemplate, item.Description)
			builder.WriteString(markdownFilesHeadingConstant)
			for _, relativePath := range renderer.options.relativePaths(item.FilePaths) {
				fmt.Fprintf(&builder, markdownFileEntryTemplate, relativePath)
			}
			builder.WriteString("\n")
		}
	}

	_, writeError := io.WriteString(writer, builder.String())
	return writeError
}
