package report

import (
	"encoding/json"
	"io"

	"github.com/temirov/roleaudit/internal/suggestion"
)

const jsonIndentConstant = "  "

type jsonDocument struct {
	AnalysisDate     string                  `json:"analysis_date"`
	TotalSuggestions int                     `json:"total_suggestions"`
	Suggestions      []suggestion.Suggestion `json:"suggestions"`
}

type jsonRenderer struct {
	options Options
}

func (renderer jsonRenderer) Render(writer io.Writer, suggestions []suggestion.Suggestion) error {
	if empty, emptyError := writeEmptyNotice(writer, suggestions); empty || emptyError != nil {
		return emptyError
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", jsonIndentConstant)
	encoder.SetEscapeHTML(false)
	return encoder.Encode(jsonDocument{
		AnalysisDate:     renderer.options.Clock.Now().Format(analysisDateLayoutConstant),
		TotalSuggestions: len(suggestions),
		Suggestions:      suggestions,
	})
}
