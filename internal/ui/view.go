package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/yildizm/rentcheck/internal/analysis"
	"github.com/yildizm/rentcheck/internal/emoji"
	"github.com/yildizm/rentcheck/internal/ui/components"
	"github.com/yildizm/rentcheck/internal/upload"
)

const (
	appTitle       = "Rent Agreement Analyzer"
	uploadHeading  = "Upload Rent Agreement"
	resultHeading  = "Conflicting Clauses"
	processingText = "Processing file, please wait..."
	noFindingsText = "No contradictions found."
	barWidth       = 10
)

// Frame carries the pieces of the screen owned by the interactive model
type Frame struct {
	Picker  string
	Spinner string
	Help    string
	Width   int

	// Queued names a file waiting for the current upload to finish
	Queued string
}

// View renders workflow state. It holds no state of its own.
type View struct {
	styles *Styles
	bar    components.ConfidenceBar
}

// NewView creates a view using the given styles
func NewView(styles *Styles) *View {
	bar := components.NewConfidenceBar(barWidth)
	if !IsColorDisabled() {
		bar.Filled = styles.BarFill
		bar.Empty = styles.BarTrack
	}
	return &View{styles: styles, bar: bar}
}

// Render renders the screen for a state. Exactly one of the phase-specific
// sections is shown.
func (v *View) Render(state upload.State, frame Frame) string {
	sections := []string{v.styles.Title.Render(emoji.GetEmoji("document") + " " + appTitle)}

	switch state.Phase {
	case upload.PhaseUploading:
		sections = append(sections, v.renderUploading(state, frame))
	case upload.PhaseError:
		sections = append(sections, v.renderAlert(state.Message))
	case upload.PhaseSuccess:
		sections = append(sections, v.renderSelection(state, frame), v.RenderResult(state.Result, frame.Width))
	default:
		sections = append(sections, v.renderSelection(state, frame))
	}

	if frame.Help != "" {
		sections = append(sections, frame.Help)
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderSelection(state upload.State, frame Frame) string {
	var b strings.Builder
	b.WriteString(v.styles.Header.Render(uploadHeading) + "\n")

	if state.FileName != "" {
		b.WriteString(fmt.Sprintf("%s Selected: %s\n", emoji.GetEmoji("target"), state.FileName))
	} else {
		b.WriteString(v.styles.Muted.Render("No file selected") + "\n")
	}
	if frame.Queued != "" {
		b.WriteString(v.styles.Info.Render(queuedLine(frame.Queued)) + "\n")
	}

	if frame.Picker != "" {
		b.WriteString("\n" + frame.Picker + "\n")
	}

	return v.styles.Box.Render(strings.TrimRight(b.String(), "\n"))
}

func (v *View) renderUploading(state upload.State, frame Frame) string {
	line := processingText
	if frame.Spinner != "" {
		line = frame.Spinner + " " + line
	}

	body := v.styles.Info.Render(line)
	if state.FileName != "" {
		body += "\n" + v.styles.Muted.Render(emoji.GetEmoji("upload")+" "+state.FileName)
	}
	if frame.Queued != "" {
		body += "\n" + v.styles.Muted.Render(queuedLine(frame.Queued))
	}
	return v.styles.Box.Render(body)
}

func queuedLine(name string) string {
	return fmt.Sprintf("Next: %s (press s to analyze)", name)
}

func (v *View) renderAlert(message string) string {
	if message == "" {
		message = analysis.MsgUploadFailed
	}

	body := lipgloss.JoinVertical(lipgloss.Center,
		v.styles.Error.Render(emoji.GetEmoji("error")+" "+message),
		"",
		v.styles.Button.Render("[ OK ]"),
		v.styles.Muted.Render("press enter to continue"),
	)
	return v.styles.Alert.Render(body)
}

// RenderResult renders the findings table, or a notice when there are none
func (v *View) RenderResult(result *analysis.Result, width int) string {
	rows := analysis.Rows(result)
	if len(rows) == 0 {
		return v.styles.Success.Render(emoji.GetEmoji("clean") + " " + noFindingsText)
	}

	styles := v.styles
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.TableBorder).
		Headers("#", analysis.KeyClauseOne, analysis.KeyClauseTwo, analysis.KeyConfidence).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.TableHeader
			}
			return styles.TableCell
		})

	for _, row := range rows {
		t.Row(
			strconv.Itoa(row.Index),
			row.ClauseOne,
			row.ClauseTwo,
			v.bar.Render(row.Confidence)+" "+row.Percent,
		)
	}

	if width > 0 {
		t.Width(width)
	}

	s := analysis.Summarize(result)
	footer := styles.Muted.Render(fmt.Sprintf("%d pairs, %d high confidence, highest %s",
		s.Pairs, s.HighConfidence, analysis.FormatPercent(s.MaxConfidence)))

	return lipgloss.JoinVertical(lipgloss.Left,
		styles.Header.Render(emoji.GetEmoji("conflict")+" "+resultHeading),
		t.Render(),
		footer,
	)
}
