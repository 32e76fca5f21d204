package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/rentcheck/internal/analysis"
	"github.com/yildizm/rentcheck/internal/emoji"
)

// terminalFormatter formats output as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts *termfmt.TerminalOptions
}

// NewTerminal creates a new terminal formatter with optional color support
func NewTerminal(color bool) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = !emoji.IsEmojiDisabled()
	return &terminalFormatter{opts: opts}
}

func (f *terminalFormatter) Format(report *Report) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b, documentName(report))

	rows := rows(report)
	if len(rows) == 0 {
		b.WriteString(emoji.GetEmoji("clean") + " " + emptyMessage + "\n")
		return []byte(b.String()), nil
	}

	f.writeSummary(&b, summary(report))
	f.writeContradictions(&b, rows)

	return []byte(b.String()), nil
}

func (f *terminalFormatter) writeHeader(b *strings.Builder, document string) {
	header := "Conflicting Clauses: " + document
	headerLen := len([]rune(header))

	b.WriteString("╔" + strings.Repeat("═", headerLen+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", headerLen+2) + "╝\n\n")
}

func (f *terminalFormatter) writeSummary(b *strings.Builder, s analysis.Summary) {
	b.WriteString(termfmt.GetEmoji("statistics", f.opts) + " Summary\n")

	items := []termfmt.TreeItem{
		{Label: "Pairs", Value: fmt.Sprintf("%d", s.Pairs)},
		{Label: "High confidence", Value: fmt.Sprintf("%d", s.HighConfidence)},
		{Label: "Mean confidence", Value: analysis.FormatPercent(s.MeanConfidence)},
		{Label: "Highest confidence", Value: analysis.FormatPercent(s.MaxConfidence), Last: true},
	}
	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

func (f *terminalFormatter) writeContradictions(b *strings.Builder, rows []analysis.Row) {
	b.WriteString(emoji.GetEmoji("document") + " Contradictions\n")

	items := make([]termfmt.TreeItem, 0, len(rows))
	for i, row := range rows {
		marker := emoji.ConfidenceEmoji(row.Confidence, analysis.HighConfidenceThreshold)
		items = append(items, termfmt.TreeItem{
			Label: fmt.Sprintf("#%d %s", row.Index, marker),
			Value: termfmt.CreateConfidenceBar(row.Confidence, f.opts) + " " + row.Percent,
			Children: []termfmt.TreeItem{
				{Label: analysis.KeyClauseOne, Value: row.ClauseOne},
				{Label: analysis.KeyClauseTwo, Value: row.ClauseTwo, Last: true},
			},
			Last: i == len(rows)-1,
		})
	}
	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n")
}
