package ui

import (
	"context"
	"errors"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yildizm/rentcheck/internal/analysis"
	"github.com/yildizm/rentcheck/internal/upload"
)

type stubAnalyzer struct {
	calls  int
	result *analysis.Result
	err    error
}

func (s *stubAnalyzer) Analyze(_ context.Context, _ string, content io.Reader) (*analysis.Result, error) {
	s.calls++
	_, _ = io.ReadAll(content)
	return s.result, s.err
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func newTestApp(t *testing.T, analyzer upload.Analyzer) (*App, *upload.Controller) {
	t.Helper()
	ctrl := upload.New(analyzer)
	app := NewApp(context.Background(), ctrl, Options{StartDir: t.TempDir()})
	return app, ctrl
}

// drain runs a command and returns the first upload outcome it produces
func drain(t *testing.T, cmd tea.Cmd) (uploadFinishedMsg, bool) {
	t.Helper()
	if cmd == nil {
		return uploadFinishedMsg{}, false
	}
	switch msg := cmd().(type) {
	case uploadFinishedMsg:
		return msg, true
	case tea.BatchMsg:
		for _, c := range msg {
			if done, ok := drain(t, c); ok {
				return done, true
			}
		}
	}
	return uploadFinishedMsg{}, false
}

func TestSubmitWithoutFileShowsAlert(t *testing.T) {
	stub := &stubAnalyzer{}
	app, ctrl := newTestApp(t, stub)

	_, cmd := app.Update(runeKey('s'))
	assert.Nil(t, cmd)

	state := ctrl.State()
	assert.Equal(t, upload.PhaseError, state.Phase)
	assert.Equal(t, analysis.MsgNoFileSelected, state.Message)
	assert.Contains(t, app.View(), analysis.MsgNoFileSelected)
	assert.Zero(t, stub.calls)
}

func TestAlertOnlyAcceptsDismiss(t *testing.T) {
	app, ctrl := newTestApp(t, &stubAnalyzer{})
	app.Update(runeKey('s'))
	require.Equal(t, upload.PhaseError, ctrl.State().Phase)

	_, cmd := app.Update(runeKey('s'))
	assert.Nil(t, cmd)
	assert.Equal(t, upload.PhaseError, ctrl.State().Phase)

	app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, upload.PhaseIdle, ctrl.State().Phase)
	assert.NotContains(t, app.View(), analysis.MsgNoFileSelected)
}

func TestUploadLifecycle(t *testing.T) {
	result, err := analysis.Decode([]byte(`{"contradictions":[{"Clause 1":"Rent is due on the 1st","Clause 2":"Rent is due on the 5th","Confidence":0.87}]}`))
	require.NoError(t, err)
	stub := &stubAnalyzer{result: result}
	app, ctrl := newTestApp(t, stub)

	app.Update(fileLoadedMsg{file: upload.File{Name: "lease.pdf", Content: []byte("pdf")}})
	assert.Equal(t, "lease.pdf", ctrl.State().FileName)

	_, cmd := app.Update(runeKey('s'))
	require.NotNil(t, cmd)
	assert.Equal(t, upload.PhaseUploading, ctrl.State().Phase)
	assert.Contains(t, app.View(), processingText)

	// Further submissions and selections are ignored while uploading
	_, again := app.Update(runeKey('s'))
	assert.Nil(t, again)
	app.Update(fileLoadedMsg{file: upload.File{Name: "other.pdf"}})
	assert.Equal(t, "lease.pdf", ctrl.State().FileName)

	done, ok := drain(t, cmd)
	require.True(t, ok)
	assert.Equal(t, 1, stub.calls)

	app.Update(done)
	state := ctrl.State()
	require.Equal(t, upload.PhaseSuccess, state.Phase)

	view := app.View()
	assert.Contains(t, view, "Rent is due on the 1st")
	assert.Contains(t, view, "Rent is due on the 5th")
	assert.Contains(t, view, "87.00%")
}

func TestUploadFailureShowsMessage(t *testing.T) {
	stub := &stubAnalyzer{err: analysis.NewTransportError(500, "", nil)}
	app, ctrl := newTestApp(t, stub)

	app.Update(fileLoadedMsg{file: upload.File{Name: "lease.pdf"}})
	_, cmd := app.Update(runeKey('s'))
	done, ok := drain(t, cmd)
	require.True(t, ok)
	app.Update(done)

	assert.Equal(t, upload.PhaseError, ctrl.State().Phase)
	assert.Contains(t, app.View(), analysis.MsgUploadFailed)

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	state := ctrl.State()
	assert.Equal(t, upload.PhaseIdle, state.Phase)
	assert.Empty(t, state.FileName)
}

func TestStaleCompletionIgnored(t *testing.T) {
	app, ctrl := newTestApp(t, &stubAnalyzer{result: &analysis.Result{}})
	app.Update(fileLoadedMsg{file: upload.File{Name: "lease.pdf"}})
	app.Update(runeKey('s'))

	app.Update(uploadFinishedMsg{attemptID: "not-current", err: errors.New("late")})
	assert.Equal(t, upload.PhaseUploading, ctrl.State().Phase)
}

func TestFileReadFailure(t *testing.T) {
	app, ctrl := newTestApp(t, &stubAnalyzer{})
	app.Update(fileLoadedMsg{err: errors.New("permission denied")})

	state := ctrl.State()
	assert.Equal(t, upload.PhaseError, state.Phase)
	assert.Equal(t, msgReadFailed, state.Message)
}

func TestAutoSubmitInitialFile(t *testing.T) {
	stub := &stubAnalyzer{result: &analysis.Result{Contradictions: []analysis.ContradictionRecord{}}}
	ctrl := upload.New(stub)
	file := upload.File{Name: "lease.txt", Content: []byte("text")}
	app := NewApp(context.Background(), ctrl, Options{StartDir: t.TempDir(), Initial: &file, AutoSubmit: true})

	cmd := app.Init()
	assert.Equal(t, upload.PhaseUploading, ctrl.State().Phase)

	done, ok := drain(t, cmd)
	require.True(t, ok)
	app.Update(done)

	assert.Equal(t, upload.PhaseSuccess, ctrl.State().Phase)
	assert.Contains(t, app.View(), noFindingsText)
}

func TestQuitCancelsInFlightUpload(t *testing.T) {
	app, _ := newTestApp(t, &stubAnalyzer{})
	app.Update(fileLoadedMsg{file: upload.File{Name: "lease.pdf"}})
	app.Update(runeKey('s'))

	_, cmd := app.Update(runeKey('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Error(t, app.ctx.Err())
	assert.Empty(t, app.View())
}

func TestPickDuringUploadIsQueued(t *testing.T) {
	stub := &stubAnalyzer{result: &analysis.Result{}}
	app, ctrl := newTestApp(t, stub)

	app.Update(fileLoadedMsg{file: upload.File{Name: "lease.pdf", Content: []byte("a")}})
	_, cmd := app.Update(runeKey('s'))
	require.Equal(t, upload.PhaseUploading, ctrl.State().Phase)

	// The picker's read finishes after the upload started
	app.Update(fileLoadedMsg{file: upload.File{Name: "addendum.pdf", Content: []byte("b")}})
	assert.Equal(t, "lease.pdf", ctrl.State().FileName)
	assert.Contains(t, app.View(), "Next: addendum.pdf")

	done, ok := drain(t, cmd)
	require.True(t, ok)
	app.Update(done)

	// The finished result stays visible alongside the queued file
	require.Equal(t, upload.PhaseSuccess, ctrl.State().Phase)
	assert.Contains(t, app.View(), noFindingsText)
	assert.Contains(t, app.View(), "Next: addendum.pdf")

	_, cmd = app.Update(runeKey('s'))
	require.NotNil(t, cmd)
	state := ctrl.State()
	assert.Equal(t, upload.PhaseUploading, state.Phase)
	assert.Equal(t, "addendum.pdf", state.FileName)
	assert.NotContains(t, app.View(), "Next:")
}

func TestQueuedPickAppliedAfterDismiss(t *testing.T) {
	stub := &stubAnalyzer{err: analysis.NewTransportError(500, "", nil)}
	app, ctrl := newTestApp(t, stub)

	app.Update(fileLoadedMsg{file: upload.File{Name: "lease.pdf"}})
	_, cmd := app.Update(runeKey('s'))
	app.Update(fileLoadedMsg{file: upload.File{Name: "addendum.pdf"}})

	done, ok := drain(t, cmd)
	require.True(t, ok)
	app.Update(done)
	require.Equal(t, upload.PhaseError, ctrl.State().Phase)

	// The alert still needs acknowledging
	app.Update(runeKey('s'))
	assert.Equal(t, upload.PhaseError, ctrl.State().Phase)

	app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	state := ctrl.State()
	assert.Equal(t, upload.PhaseIdle, state.Phase)
	assert.Equal(t, "addendum.pdf", state.FileName)
}
