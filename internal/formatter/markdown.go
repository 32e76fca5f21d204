package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/rentcheck/internal/analysis"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct{}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{}
}

func (f *markdownFormatter) Format(report *Report) ([]byte, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# Conflicting Clauses: %s\n\n", escapeMarkdown(documentName(report))))
	if report != nil && !report.Generated.IsZero() {
		b.WriteString(fmt.Sprintf("Generated: %s\n\n", report.Generated.Format("2006-01-02 15:04:05")))
	}

	rows := rows(report)
	if len(rows) == 0 {
		b.WriteString(emptyMessage + "\n")
		return []byte(b.String()), nil
	}

	f.writeSummaryTable(&b, summary(report))
	f.writeContradictionTable(&b, rows)

	return []byte(b.String()), nil
}

func (f *markdownFormatter) writeSummaryTable(b *strings.Builder, s analysis.Summary) {
	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	b.WriteString(fmt.Sprintf("| Pairs | %d |\n", s.Pairs))
	b.WriteString(fmt.Sprintf("| High confidence | %d |\n", s.HighConfidence))
	b.WriteString(fmt.Sprintf("| Mean confidence | %s |\n", analysis.FormatPercent(s.MeanConfidence)))
	b.WriteString(fmt.Sprintf("| Highest confidence | %s |\n\n", analysis.FormatPercent(s.MaxConfidence)))
}

func (f *markdownFormatter) writeContradictionTable(b *strings.Builder, rows []analysis.Row) {
	b.WriteString("## Contradictions\n\n")
	b.WriteString("| # | Clause 1 | Clause 2 | Confidence |\n")
	b.WriteString("|---|----------|----------|------------|\n")
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n",
			row.Index, escapeMarkdown(row.ClauseOne), escapeMarkdown(row.ClauseTwo), row.Percent))
	}
}

// escapeMarkdown keeps clause text inside a single table cell
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\r\n", "<br>")
	return strings.ReplaceAll(s, "\n", "<br>")
}
