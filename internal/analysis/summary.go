package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// HighConfidenceThreshold marks findings worth calling out
const HighConfidenceThreshold = 0.75

// Summary aggregates display confidences of a result
type Summary struct {
	Pairs          int     `json:"pairs"`
	MeanConfidence float64 `json:"mean_confidence"`
	MaxConfidence  float64 `json:"max_confidence"`
	HighConfidence int     `json:"high_confidence"`
}

// Summarize computes aggregate figures over a result. An empty result yields
// the zero Summary.
func Summarize(result *Result) Summary {
	if result.Empty() {
		return Summary{}
	}

	values := make([]float64, len(result.Contradictions))
	high := 0
	for i, record := range result.Contradictions {
		values[i] = record.DisplayConfidence()
		if values[i] >= HighConfidenceThreshold {
			high++
		}
	}

	return Summary{
		Pairs:          len(values),
		MeanConfidence: stat.Mean(values, nil),
		MaxConfidence:  floats.Max(values),
		HighConfidence: high,
	}
}
