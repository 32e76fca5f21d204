package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{"single pair", `{"contradictions":[{"Clause 1":"A","Clause 2":"B","Confidence":0.87}]}`, 1, false},
		{"empty list", `{"contradictions":[]}`, 0, false},
		{"extra members ignored", `{"contradictions":[{"Clause 1":"A"}],"model":"x"}`, 1, false},
		{"missing field", `{"result":[]}`, 0, true},
		{"service error body", `{"error":"Unsupported file format"}`, 0, true},
		{"not an array", `{"contradictions":"none"}`, 0, true},
		{"null contradictions", `{"contradictions":null}`, 0, true},
		{"non-object entries", `{"contradictions":[1,null]}`, 2, false},
		{"array body", `[{"Clause 1":"A"}]`, 0, true},
		{"null body", `null`, 0, true},
		{"not json", `<html>oops</html>`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Decode([]byte(tt.body))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrShapeValidation))
				assert.Equal(t, MsgUnsupportedFile, UserMessage(err))
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Len(t, result.Contradictions, tt.want)
		})
	}
}

func TestDecodeKeepsRecordsAlongsideNonObjectEntries(t *testing.T) {
	result, err := Decode([]byte(`{"contradictions":[{"Clause 1":"A","Clause 2":"B","Confidence":0.9},null,"x"]}`))
	require.NoError(t, err)

	rows := Rows(result)
	require.Len(t, rows, 3)
	assert.Equal(t, "A", rows[0].ClauseOne)
	assert.Equal(t, "90.00%", rows[0].Percent)
	for _, row := range rows[1:] {
		assert.Equal(t, NotAvailable, row.ClauseOne)
		assert.Equal(t, NotAvailable, row.ClauseTwo)
		assert.Zero(t, row.Confidence)
		assert.Equal(t, "0.00%", row.Percent)
	}
}

func TestDecodeKeepsServiceTextInDetail(t *testing.T) {
	_, err := Decode([]byte(`{"error":"Only PDF, DOCX and TXT are supported"}`))

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Contains(t, e.Detail, "Only PDF, DOCX and TXT are supported")
	assert.Equal(t, MsgUnsupportedFile, e.UserMessage())
}

func TestRecordDisplayValues(t *testing.T) {
	result, err := Decode([]byte(`{"contradictions":[
		{"Clause 1":"Rent is due on the 1st","Clause 2":"Rent is due on the 5th","Confidence":0.91},
		{"Clause 1":null,"Clause 2":"   ","Confidence":"high"},
		{"Clause 2":42,"Confidence":1.7},
		{"Clause 1":"x","Clause 2":"y","Confidence":-0.2}
	]}`))
	require.NoError(t, err)
	require.Len(t, result.Contradictions, 4)

	first := result.Contradictions[0]
	assert.Equal(t, "Rent is due on the 1st", first.ClauseOneText())
	assert.Equal(t, "Rent is due on the 5th", first.ClauseTwoText())
	assert.InDelta(t, 0.91, first.DisplayConfidence(), 1e-9)

	second := result.Contradictions[1]
	assert.Equal(t, NotAvailable, second.ClauseOneText())
	assert.Equal(t, NotAvailable, second.ClauseTwoText())
	assert.Nil(t, second.Confidence)
	assert.Zero(t, second.DisplayConfidence())

	third := result.Contradictions[2]
	assert.Equal(t, NotAvailable, third.ClauseOneText())
	assert.Equal(t, NotAvailable, third.ClauseTwoText())
	assert.Zero(t, third.DisplayConfidence())

	assert.Zero(t, result.Contradictions[3].DisplayConfidence())
}

func TestFormatPercent(t *testing.T) {
	tests := map[float64]string{
		0:      "0.00%",
		0.87:   "87.00%",
		0.5:    "50.00%",
		0.1234: "12.34%",
		0.9999: "99.99%",
		1:      "100.00%",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatPercent(in), "input %v", in)
	}
}

func TestRowsPreserveOrder(t *testing.T) {
	result, err := Decode([]byte(`{"contradictions":[
		{"Clause 1":"first","Clause 2":"a","Confidence":0.2},
		{"Clause 1":"second","Clause 2":"b","Confidence":0.9},
		{"Clause 1":"third","Clause 2":"c","Confidence":0.5}
	]}`))
	require.NoError(t, err)

	rows := Rows(result)
	require.Len(t, rows, 3)
	for i, want := range []string{"first", "second", "third"} {
		assert.Equal(t, i+1, rows[i].Index)
		assert.Equal(t, want, rows[i].ClauseOne)
	}
	assert.Equal(t, "90.00%", rows[1].Percent)

	assert.Nil(t, Rows(&Result{}))
	assert.Nil(t, Rows(nil))
}

func TestSummarize(t *testing.T) {
	result, err := Decode([]byte(`{"contradictions":[
		{"Confidence":0.2},
		{"Confidence":0.9},
		{"Confidence":0.8},
		{"Confidence":null}
	]}`))
	require.NoError(t, err)

	s := Summarize(result)
	assert.Equal(t, 4, s.Pairs)
	assert.InDelta(t, 0.475, s.MeanConfidence, 1e-9)
	assert.InDelta(t, 0.9, s.MaxConfidence, 1e-9)
	assert.Equal(t, 2, s.HighConfidence)

	assert.Equal(t, Summary{}, Summarize(&Result{Contradictions: []ContradictionRecord{}}))
}

func TestServiceMessage(t *testing.T) {
	assert.Equal(t, "bad", ServiceMessage([]byte(`{"error":"bad"}`)))
	assert.Equal(t, "Only PDF files", ServiceMessage([]byte(`{"detail":"Only PDF files"}`)))
	assert.Equal(t, "", ServiceMessage([]byte(`{"detail":[{"loc":["body","file"]}]}`)))
	assert.Equal(t, "", ServiceMessage([]byte(`Internal Server Error`)))
}
