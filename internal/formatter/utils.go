package formatter

import (
	"strings"

	"github.com/yildizm/rentcheck/internal/analysis"
)

// emptyMessage is shown when the service found nothing
const emptyMessage = "No contradictions found."

func rows(report *Report) []analysis.Row {
	if report == nil {
		return nil
	}
	return analysis.Rows(report.Result)
}

func summary(report *Report) analysis.Summary {
	if report == nil {
		return analysis.Summary{}
	}
	return analysis.Summarize(report.Result)
}

func documentName(report *Report) string {
	if report == nil || strings.TrimSpace(report.Document) == "" {
		return "document"
	}
	return report.Document
}
