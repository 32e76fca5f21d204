package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/yildizm/rentcheck/internal/analysis"
)

// Report is what gets rendered: the analyzed document and its findings
type Report struct {
	Document  string
	Result    *analysis.Result
	Generated time.Time
}

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(report *Report) ([]byte, error)
}

// New returns the formatter for a format name
func New(format string, color bool) (Formatter, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSON(), nil
	case "markdown", "md":
		return NewMarkdown(), nil
	case "csv":
		return NewCSV(), nil
	case "text", "terminal", "":
		return NewTerminal(color), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: text, json, markdown, csv)", format)
	}
}
