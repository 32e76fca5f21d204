package ui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yildizm/rentcheck/internal/analysis"
	"github.com/yildizm/rentcheck/internal/logger"
	"github.com/yildizm/rentcheck/internal/upload"
)

// msgReadFailed is shown when a picked file cannot be read
const msgReadFailed = "Could not read the selected file."

// Options configures the interactive app
type Options struct {
	// StartDir is where the file picker opens
	StartDir string

	// Initial preselects a document
	Initial *upload.File

	// AutoSubmit submits Initial as soon as the app starts
	AutoSubmit bool

	Logger *logger.Logger
}

type keyMap struct {
	Submit  key.Binding
	Dismiss key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Submit, k.Dismiss}, {k.Help, k.Quit}}
}

var keys = keyMap{
	Submit:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "submit")),
	Dismiss: key.NewBinding(key.WithKeys("enter", "esc", "o"), key.WithHelp("enter", "dismiss error")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// uploadFinishedMsg delivers the outcome of one attempt
type uploadFinishedMsg struct {
	attemptID string
	result    *analysis.Result
	err       error
}

// fileLoadedMsg delivers a picked file read from disk
type fileLoadedMsg struct {
	file upload.File
	err  error
}

// App is the Bubble Tea model for the upload screen
type App struct {
	ctrl    *upload.Controller
	view    *View
	picker  filepicker.Model
	spinner spinner.Model
	help    help.Model
	log     *logger.Logger

	// queued holds a file picked while an upload was running
	queued *upload.File

	autoSubmit bool
	width      int
	height     int
	quitting   bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the interactive model around a controller
func NewApp(ctx context.Context, ctrl *upload.Controller, opts Options) *App {
	styles := GetStyles()

	fp := filepicker.New()
	fp.AllowedTypes = upload.AcceptedExtensions
	if opts.StartDir != "" {
		fp.CurrentDirectory = opts.StartDir
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	log := opts.Logger
	if log == nil {
		log = logger.Nop("ui")
	}

	if opts.Initial != nil {
		if err := ctrl.SelectFile(*opts.Initial); err != nil {
			log.Warn("could not preselect %s: %v", opts.Initial.Name, err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)

	return &App{
		ctrl:       ctrl,
		view:       NewView(styles),
		picker:     fp,
		spinner:    s,
		help:       help.New(),
		log:        log,
		autoSubmit: opts.AutoSubmit && opts.Initial != nil,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Init starts the file picker, and the upload when auto-submit is set
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.picker.Init()}
	if a.autoSubmit {
		cmds = append(cmds, a.submit())
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width

	case tea.KeyMsg:
		return a.handleKey(msg)

	case spinner.TickMsg:
		if a.ctrl.State().Phase != upload.PhaseUploading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case uploadFinishedMsg:
		a.ctrl.Complete(msg.attemptID, msg.result, msg.err)
		return a, nil

	case fileLoadedMsg:
		a.handleFileLoaded(msg)
		return a, nil
	}

	var cmd tea.Cmd
	a.picker, cmd = a.picker.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		a.cancel()
		a.quitting = true
		return a, tea.Quit
	}

	switch a.ctrl.State().Phase {
	case upload.PhaseUploading:
		// Input is locked until the attempt completes
		return a, nil
	case upload.PhaseError:
		if key.Matches(msg, keys.Dismiss) {
			if err := a.ctrl.DismissError(); err != nil {
				a.log.Debug("dismiss: %v", err)
			} else {
				a.applyQueued()
			}
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, keys.Submit):
		a.applyQueued()
		return a, a.submit()
	case key.Matches(msg, keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return a, nil
	}

	var cmd tea.Cmd
	a.picker, cmd = a.picker.Update(msg)

	if ok, path := a.picker.DidSelectFile(msg); ok {
		return a, tea.Batch(cmd, loadFile(path))
	}
	if ok, path := a.picker.DidSelectDisabledFile(msg); ok {
		a.log.Debug("%s is not an accepted document type", path)
	}

	return a, cmd
}

func (a *App) handleFileLoaded(msg fileLoadedMsg) {
	if msg.err != nil {
		a.log.Warn("%v", msg.err)
		if err := a.ctrl.Fail(analysis.NewUserInputError(msgReadFailed)); err != nil {
			a.log.Debug("read failure ignored: %v", err)
		}
		return
	}

	if err := a.ctrl.SelectFile(msg.file); err != nil {
		if errors.Is(err, upload.ErrSubmitInProgress) {
			file := msg.file
			a.queued = &file
			a.log.Info("%s queued until the current upload finishes", file.Name)
			return
		}
		a.log.Debug("selection of %s ignored: %v", msg.file.Name, err)
		return
	}
	a.queued = nil
}

// applyQueued selects a file picked during an upload. The result or alert
// of that upload stays on screen until the user submits or dismisses.
func (a *App) applyQueued() {
	if a.queued == nil {
		return
	}
	if err := a.ctrl.SelectFile(*a.queued); err != nil {
		a.log.Debug("queued selection of %s ignored: %v", a.queued.Name, err)
		return
	}
	a.queued = nil
}

// submit begins an attempt and returns the command that performs it
func (a *App) submit() tea.Cmd {
	attempt, err := a.ctrl.Begin()
	if err != nil {
		if errors.Is(err, upload.ErrSubmitInProgress) || errors.Is(err, upload.ErrUnacknowledged) {
			a.log.Debug("submit ignored: %v", err)
		}
		return nil
	}

	return tea.Batch(a.spinner.Tick, a.analyze(attempt))
}

func (a *App) analyze(attempt upload.Attempt) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		result, err := a.ctrl.Analyze(ctx, attempt)
		return uploadFinishedMsg{attemptID: attempt.ID, result: result, err: err}
	}
}

func loadFile(path string) tea.Cmd {
	return func() tea.Msg {
		file, err := upload.OpenFile(path)
		return fileLoadedMsg{file: file, err: err}
	}
}

// View renders the app
func (a *App) View() string {
	if a.quitting {
		return ""
	}

	state := a.ctrl.State()
	frame := Frame{
		Spinner: a.spinner.View(),
		Width:   a.width,
	}
	if a.queued != nil {
		frame.Queued = a.queued.Name
	}
	if state.Phase == upload.PhaseIdle || state.Phase == upload.PhaseSuccess {
		frame.Picker = a.picker.View()
		frame.Help = a.help.View(keys)
	}

	return a.view.Render(state, frame)
}

// State exposes the workflow state for callers that outlive the program
func (a *App) State() upload.State {
	return a.ctrl.State()
}

// Run starts the interactive program and blocks until the user quits
func Run(ctx context.Context, ctrl *upload.Controller, opts Options) error {
	app := NewApp(ctx, ctrl, opts)
	defer app.cancel()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
