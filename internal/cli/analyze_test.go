package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yildizm/rentcheck/internal/analysis"
	"github.com/yildizm/rentcheck/internal/config"
	"github.com/yildizm/rentcheck/internal/upload"
)

func TestShouldUseTUIMode(t *testing.T) {
	tests := []struct {
		name           string
		noTUI          bool
		outputFormat   string
		verbose        bool
		outputFile     string
		expectedResult bool
	}{
		{name: "should use TUI - all conditions met", outputFormat: "text", expectedResult: true},
		{name: "should use TUI - default format", outputFormat: "", expectedResult: true},
		{name: "should not use TUI - no-tui flag set", noTUI: true, outputFormat: "text"},
		{name: "should not use TUI - json output", outputFormat: "json"},
		{name: "should not use TUI - verbose mode", outputFormat: "text", verbose: true},
		{name: "should not use TUI - output file", outputFormat: "text", outputFile: "report.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldNoTUI, oldVerbose, oldOutputFmt, oldOutputFile := analyzeNoTUI, verbose, outputFmt, analyzeOutputFile
			oldGlobal := globalConfig
			defer func() {
				analyzeNoTUI, verbose, outputFmt, analyzeOutputFile = oldNoTUI, oldVerbose, oldOutputFmt, oldOutputFile
				globalConfig = oldGlobal
			}()

			analyzeNoTUI = tt.noTUI
			verbose = tt.verbose
			outputFmt = tt.outputFormat
			analyzeOutputFile = tt.outputFile
			globalConfig = nil

			assert.Equal(t, tt.expectedResult, shouldUseTUIMode())
		})
	}
}

// newTestSession points a session at a stub service
func newTestSession(t *testing.T, handler http.HandlerFunc) *session {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.Service.URL = srv.URL

	sess, err := newSession(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(sess.Close)
	return sess
}

func writeDocument(t *testing.T, name, content string) upload.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	file, err := upload.OpenFile(path)
	require.NoError(t, err)
	return file
}

func withOutput(t *testing.T, format string) string {
	t.Helper()
	oldFmt, oldFile := outputFmt, analyzeOutputFile
	t.Cleanup(func() { outputFmt, analyzeOutputFile = oldFmt, oldFile })

	outputFmt = format
	analyzeOutputFile = filepath.Join(t.TempDir(), "report.out")
	return analyzeOutputFile
}

func TestRunPlainWritesReport(t *testing.T) {
	sess := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, analysis.UploadPath, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"contradictions":[{"Clause 1":"Rent is due on the 1st","Clause 2":"Rent is due on the 5th","Confidence":0.87}]}`))
	})
	outPath := withOutput(t, "json")
	file := writeDocument(t, "lease.txt", "Rent is due on the 1st. Rent is due on the 5th.")

	var stderr bytes.Buffer
	require.NoError(t, runPlain(context.Background(), sess, &file, &stderr))
	assert.Contains(t, stderr.String(), "lease.txt")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Clause 1": "Rent is due on the 1st"`)
	assert.Contains(t, string(data), `"percent": "87.00%"`)
	assert.Equal(t, upload.PhaseSuccess, sess.ctrl.State().Phase)
}

func TestRunPlainWithoutFile(t *testing.T) {
	calls := 0
	sess := newTestSession(t, func(w http.ResponseWriter, r *http.Request) { calls++ })
	outPath := withOutput(t, "json")

	var stderr bytes.Buffer
	err := runPlain(context.Background(), sess, nil, &stderr)
	assert.ErrorIs(t, err, ErrReported)
	assert.Contains(t, stderr.String(), analysis.MsgNoFileSelected)
	assert.Zero(t, calls)
	assert.NoFileExists(t, outPath)
}

func TestRunPlainReportsServiceFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, message: analysis.MsgUploadFailed},
		{name: "service message", status: http.StatusBadRequest, body: `{"error":"File is empty"}`, message: "File is empty"},
		{name: "wrong shape", status: http.StatusOK, body: `{"error":"unsupported"}`, message: analysis.MsgUnsupportedFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			withOutput(t, "json")
			file := writeDocument(t, "lease.pdf", "%PDF-1.4")

			var stderr bytes.Buffer
			err := runPlain(context.Background(), sess, &file, &stderr)
			assert.ErrorIs(t, err, ErrReported)
			assert.Contains(t, stderr.String(), tt.message)
			assert.Equal(t, upload.PhaseError, sess.ctrl.State().Phase)
		})
	}
}

func TestRunPlainWarnsOnUnadvisedExtension(t *testing.T) {
	sess := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"contradictions":[]}`))
	})
	withOutput(t, "text")
	file := writeDocument(t, "lease.odt", "content")

	var stderr bytes.Buffer
	require.NoError(t, runPlain(context.Background(), sess, &file, &stderr))
	assert.Contains(t, stderr.String(), "may reject it")
}

func TestValidateFilePath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "lease.pdf")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	assert.NoError(t, validateFilePath(file))
	assert.Error(t, validateFilePath(""))
	assert.Error(t, validateFilePath(dir))
	assert.ErrorContains(t, validateFilePath(filepath.Join(dir, "missing.pdf")), "does not exist")
}

func TestWriteOutputBytesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")

	require.NoError(t, writeOutputBytesToFile([]byte("first"), path))
	require.NoError(t, writeOutputBytesToFile([]byte("second"), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	assert.Error(t, validateOutputFilePath(""))
	assert.Error(t, validateOutputFilePath(t.TempDir()))
}
