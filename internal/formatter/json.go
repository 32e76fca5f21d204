package formatter

import (
	"encoding/json"
	"time"

	"github.com/yildizm/rentcheck/internal/analysis"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

// JSONOutput is the document written by the JSON formatter
type JSONOutput struct {
	Document       string                `json:"document"`
	Generated      *time.Time            `json:"generated,omitempty"`
	Summary        analysis.Summary      `json:"summary"`
	Contradictions []ContradictionOutput `json:"contradictions"`
}

// ContradictionOutput is one finding with display values resolved. Clause
// keys match the service's own record keys.
type ContradictionOutput struct {
	Index      int     `json:"index"`
	ClauseOne  string  `json:"Clause 1"`
	ClauseTwo  string  `json:"Clause 2"`
	Confidence float64 `json:"Confidence"`
	Percent    string  `json:"percent"`
}

func (f *jsonFormatter) Format(report *Report) ([]byte, error) {
	output := &JSONOutput{
		Document:       documentName(report),
		Summary:        summary(report),
		Contradictions: []ContradictionOutput{},
	}
	if report != nil && !report.Generated.IsZero() {
		generated := report.Generated
		output.Generated = &generated
	}

	for _, row := range rows(report) {
		output.Contradictions = append(output.Contradictions, ContradictionOutput{
			Index:      row.Index,
			ClauseOne:  row.ClauseOne,
			ClauseTwo:  row.ClauseTwo,
			Confidence: row.Confidence,
			Percent:    row.Percent,
		})
	}

	return json.MarshalIndent(output, "", "  ")
}
