package formatter

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yildizm/rentcheck/internal/analysis"
	"github.com/yildizm/rentcheck/internal/emoji"
)

func sampleReport(t *testing.T) *Report {
	t.Helper()
	result, err := analysis.Decode([]byte(`{"contradictions":[
		{"Clause 1":"Rent is due on the 1st","Clause 2":"Rent is due on the 5th","Confidence":0.87},
		{"Clause 1":"Pets are allowed | with deposit","Clause 2":null,"Confidence":0.4}
	]}`))
	require.NoError(t, err)
	return &Report{
		Document:  "lease.pdf",
		Result:    result,
		Generated: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func emptyReport() *Report {
	return &Report{Document: "lease.pdf", Result: &analysis.Result{Contradictions: []analysis.ContradictionRecord{}}}
}

func TestNew(t *testing.T) {
	for _, name := range []string{"", "text", "terminal", "json", "markdown", "md", "csv", "JSON"} {
		f, err := New(name, false)
		assert.NoError(t, err, name)
		assert.NotNil(t, f, name)
	}

	_, err := New("xml", false)
	assert.Error(t, err)
}

func TestTerminalFormatter(t *testing.T) {
	emoji.SetEmojiDisabled(true)
	t.Cleanup(func() { emoji.SetEmojiDisabled(false) })

	out, err := NewTerminal(false).Format(sampleReport(t))
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, "Conflicting Clauses: lease.pdf")
	assert.Contains(t, text, "Rent is due on the 1st")
	assert.Contains(t, text, "Rent is due on the 5th")
	assert.Contains(t, text, "87.00%")
	assert.Contains(t, text, "40.00%")
	assert.Contains(t, text, analysis.NotAvailable)
	assert.Less(t, strings.Index(text, "#1"), strings.Index(text, "#2"))
}

func TestTerminalFormatterEmpty(t *testing.T) {
	out, err := NewTerminal(false).Format(emptyReport())
	require.NoError(t, err)
	assert.Contains(t, string(out), emptyMessage)
	assert.NotContains(t, string(out), "Clause 1")
}

func TestJSONFormatter(t *testing.T) {
	out, err := NewJSON().Format(sampleReport(t))
	require.NoError(t, err)

	var decoded JSONOutput
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "lease.pdf", decoded.Document)
	require.Len(t, decoded.Contradictions, 2)
	assert.Equal(t, 1, decoded.Contradictions[0].Index)
	assert.Equal(t, "87.00%", decoded.Contradictions[0].Percent)
	assert.Equal(t, analysis.NotAvailable, decoded.Contradictions[1].ClauseTwo)
	assert.Equal(t, 2, decoded.Summary.Pairs)
	assert.Contains(t, string(out), `"Clause 1"`)
}

func TestJSONFormatterEmptyListIsArray(t *testing.T) {
	out, err := NewJSON().Format(emptyReport())
	require.NoError(t, err)
	assert.Contains(t, string(out), `"contradictions": []`)
}

func TestMarkdownFormatter(t *testing.T) {
	out, err := NewMarkdown().Format(sampleReport(t))
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, "# Conflicting Clauses: lease.pdf")
	assert.Contains(t, text, "Generated: 2026-01-02 03:04:05")
	assert.Contains(t, text, "| # | Clause 1 | Clause 2 | Confidence |")
	assert.Contains(t, text, "| 1 | Rent is due on the 1st | Rent is due on the 5th | 87.00% |")
	assert.Contains(t, text, `Pets are allowed \| with deposit`)

	out, err = NewMarkdown().Format(emptyReport())
	require.NoError(t, err)
	assert.Contains(t, string(out), emptyMessage)
}

func TestCSVFormatter(t *testing.T) {
	out, err := NewCSV().Format(sampleReport(t))
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"#", "Clause 1", "Clause 2", "Confidence", "Percent"}, records[0])
	assert.Equal(t, []string{"1", "Rent is due on the 1st", "Rent is due on the 5th", "0.8700", "87.00%"}, records[1])
	assert.Equal(t, analysis.NotAvailable, records[2][2])
}
