package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/temirov/roleaudit/internal/suggestion"
)

const (
	consoleBannerTemplate      = "\n=== %s Repository Analysis Results ===\n\n"
	consoleSummaryTemplate     = "Found %d potential improvements:\n\n"
	consoleGroupHeaderTemplate = "\n== %s (%d) ==\n\n"
	consoleItemTitleTemplate   = "%s %s\n"
	consoleDescriptionTemplate = "  %s\n"
	consoleFilesTemplate       = "  Files: %s\n\n"
	consolePriorityTemplate    = "[%s]"
)

type consoleRenderer struct {
	options Options
}

func (renderer consoleRenderer) Render(writer io.Writer, suggestions []suggestion.Suggestion) error {
	if empty, emptyError := writeEmptyNotice(writer, suggestions); empty || emptyError != nil {
		return emptyError
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, consoleBannerTemplate, renderer.options.ProjectName)
	fmt.Fprintf(&builder, consoleSummaryTemplate, len(suggestions))

	for _, group := range suggestion.GroupByCategory(suggestions) {
		fmt.Fprintf(&builder, consoleGroupHeaderTemplate, renderer.options.Labels.Label(group.Category), len(group.Suggestions))
		for _, item := range group.Suggestions {
			fmt.Fprintf(&builder, consoleItemTitleTemplate, renderer.priorityTag(item.Priority), item.Title)
			fmt.Fprintf(&builder, consoleDescriptionTemplate, item.Description)
			fmt.Fprintf(&builder, consoleFilesTemplate, strings.Join(renderer.options.relativePaths(item.FilePaths), filePathsSeparatorConstant))
		}
	}

	_, writeError := io.WriteString(writer, builder.String())
	return writeError
}

func (renderer consoleRenderer) priorityTag(priority suggestion.Priority) string {
	tag := fmt.Sprintf(consolePriorityTemplate, priority.Label())
	printer := priorityColor(priority)
	if printer == nil {
		return tag
	}
	if renderer.options.Colorize {
		printer.EnableColor()
	} else {
		printer.DisableColor()
	}
	return printer.Sprint(tag)
}

func priorityColor(priority suggestion.Priority) *color.Color {
	switch priority {
	case suggestion.PriorityCritical:
		return color.New(color.FgRed, color.Bold)
	case suggestion.PriorityHigh:
		return color.New(color.FgRed)
	case suggestion.PriorityMedium:
		return color.New(color.FgYellow)
	case suggestion.PriorityLow:
		return color.New(color.FgCyan)
	default:
		return nil
	}
}
