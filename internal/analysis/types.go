package analysis

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Wire keys used by the analysis service. The clause keys contain a space
// and must be kept as-is.
const (
	KeyContradictions = "contradictions"
	KeyClauseOne      = "Clause 1"
	KeyClauseTwo      = "Clause 2"
	KeyConfidence     = "Confidence"
)

// NotAvailable is displayed in place of missing clause text.
const NotAvailable = "N/A"

// ContradictionRecord is a pair of clauses the service judged mutually
// inconsistent. Fields are nil when the service omitted them or sent a value
// of the wrong type.
type ContradictionRecord struct {
	ClauseOne  *string  `json:"Clause 1,omitempty"`
	ClauseTwo  *string  `json:"Clause 2,omitempty"`
	Confidence *float64 `json:"Confidence,omitempty"`
}

// UnmarshalJSON decodes a record without failing on missing or mistyped
// members.
func (r *ContradictionRecord) UnmarshalJSON(data []byte) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}

	r.ClauseOne = decodeString(members[KeyClauseOne])
	r.ClauseTwo = decodeString(members[KeyClauseTwo])
	r.Confidence = decodeNumber(members[KeyConfidence])
	return nil
}

// ClauseOneText returns the first clause or NotAvailable.
func (r ContradictionRecord) ClauseOneText() string {
	return clauseText(r.ClauseOne)
}

// ClauseTwoText returns the second clause or NotAvailable.
func (r ContradictionRecord) ClauseTwoText() string {
	return clauseText(r.ClauseTwo)
}

// DisplayConfidence returns the confidence used for display. Absent or
// out-of-range values become 0.
func (r ContradictionRecord) DisplayConfidence() float64 {
	if r.Confidence == nil {
		return 0
	}
	c := *r.Confidence
	if math.IsNaN(c) || c < 0 || c > 1 {
		return 0
	}
	return c
}

// Result is the decoded body of a successful analysis response.
type Result struct {
	Contradictions []ContradictionRecord `json:"contradictions"`
}

// Empty reports whether the service found no contradictions.
func (r *Result) Empty() bool {
	return r == nil || len(r.Contradictions) == 0
}

// Row is one display line of a result table.
type Row struct {
	Index      int
	ClauseOne  string
	ClauseTwo  string
	Confidence float64
	Percent    string
}

// Rows projects a result into display rows, 1-indexed, in received order.
func Rows(result *Result) []Row {
	if result.Empty() {
		return nil
	}

	rows := make([]Row, 0, len(result.Contradictions))
	for i, record := range result.Contradictions {
		confidence := record.DisplayConfidence()
		rows = append(rows, Row{
			Index:      i + 1,
			ClauseOne:  record.ClauseOneText(),
			ClauseTwo:  record.ClauseTwoText(),
			Confidence: confidence,
			Percent:    FormatPercent(confidence),
		})
	}
	return rows
}

// FormatPercent renders a confidence in [0,1] as a percentage with two
// decimals, e.g. 0.87 -> "87.00%".
func FormatPercent(confidence float64) string {
	return decimal.NewFromFloat(confidence).Shift(2).StringFixed(2) + "%"
}

// Decode parses a response body. The body must be a JSON object whose
// contradictions member is an array of objects; any other shape yields a
// shape validation error.
func Decode(body []byte) (*Result, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, NewShapeError("response body is not a JSON object", err)
	}
	if envelope == nil {
		return nil, NewShapeError("response body is null", nil)
	}

	raw, ok := envelope[KeyContradictions]
	if !ok {
		detail := "response has no contradictions field"
		if msg := serviceMessage(envelope); msg != "" {
			detail += ": service said " + msg
		}
		return nil, NewShapeError(detail, nil)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, NewShapeError("contradictions is not an array", err)
	}

	result := &Result{Contradictions: make([]ContradictionRecord, 0, len(items))}
	for _, item := range items {
		var record ContradictionRecord
		if !isObject(item) {
			// Entries carry no data of their own; they render as N/A
			result.Contradictions = append(result.Contradictions, record)
			continue
		}
		if err := json.Unmarshal(item, &record); err != nil {
			return nil, NewShapeError("contradiction entry could not be decoded", err)
		}
		result.Contradictions = append(result.Contradictions, record)
	}

	return result, nil
}

// ServiceMessage extracts a human readable message from an error body. The
// service reports errors either as {"error": "..."} or {"detail": "..."}.
func ServiceMessage(body []byte) string {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return serviceMessage(envelope)
}

func serviceMessage(envelope map[string]json.RawMessage) string {
	for _, key := range []string{"error", "detail", "message"} {
		if s := decodeString(envelope[key]); s != nil {
			if msg := strings.TrimSpace(*s); msg != "" {
				return msg
			}
		}
	}
	return ""
}

func clauseText(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return NotAvailable
	}
	return *s
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func decodeString(raw json.RawMessage) *string {
	if isNull(raw) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

func decodeNumber(raw json.RawMessage) *float64 {
	if isNull(raw) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	return &f
}
