package flags

import (
	"fmt"
	"strings"
)

const (
	choiceSeparatorLiteral  = "|"
	choicePlaceholderFormat = "`<%s>`"
)

// FormatChoiceUsage renders the accepted values of a flag as "`<a|B|c>` description",
// upper-casing the default so help output shows what an omitted flag means.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	defaultKey := strings.ToLower(strings.TrimSpace(defaultChoice))

	rendered := make([]string, 0, len(choices))
	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		switch {
		case len(trimmedChoice) == 0:
			continue
		case len(defaultKey) > 0 && strings.ToLower(trimmedChoice) == defaultKey:
			rendered = append(rendered, strings.ToUpper(trimmedChoice))
		default:
			rendered = append(rendered, trimmedChoice)
		}
	}

	placeholder := fmt.Sprintf(choicePlaceholderFormat, strings.Join(rendered, choiceSeparatorLiteral))
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return placeholder
	}
	return placeholder + " " + trimmedDescription
}
