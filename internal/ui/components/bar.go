package components

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ConfidenceBar renders a fixed-width horizontal bar proportional to a
// confidence in [0,1]
type ConfidenceBar struct {
	Width  int
	Filled lipgloss.Style
	Empty  lipgloss.Style
}

// NewConfidenceBar creates a bar with unstyled segments
func NewConfidenceBar(width int) ConfidenceBar {
	return ConfidenceBar{
		Width:  width,
		Filled: lipgloss.NewStyle(),
		Empty:  lipgloss.NewStyle(),
	}
}

// FilledCells returns how many cells are filled for a confidence
func (b ConfidenceBar) FilledCells(confidence float64) int {
	if b.Width <= 0 || math.IsNaN(confidence) || confidence <= 0 {
		return 0
	}
	if confidence >= 1 {
		return b.Width
	}
	return int(math.Round(confidence * float64(b.Width)))
}

// Render renders the bar
func (b ConfidenceBar) Render(confidence float64) string {
	filled := b.FilledCells(confidence)
	empty := b.Width - filled
	if empty < 0 {
		empty = 0
	}

	return b.Filled.Render(strings.Repeat("█", filled)) + b.Empty.Render(strings.Repeat("░", empty))
}
