// Package upload owns the document submission workflow: file selection, the
// single in-flight upload, and the outcome shown to the user.
package upload

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/yildizm/rentcheck/internal/analysis"
	"github.com/yildizm/rentcheck/internal/logger"
)

// Phase is the workflow state
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseUploading
	PhaseError
	PhaseSuccess
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseUploading:
		return "uploading"
	case PhaseError:
		return "error"
	case PhaseSuccess:
		return "success"
	default:
		return "unknown"
	}
}

var (
	// ErrSubmitInProgress is returned when an action would interfere with
	// the in-flight upload. The state is left unchanged.
	ErrSubmitInProgress = errors.New("an upload is already in progress")

	// ErrUnacknowledged is returned when submitting before the current
	// error has been dismissed.
	ErrUnacknowledged = errors.New("the current error must be dismissed first")

	// ErrNotInError is returned by DismissError outside the error phase.
	ErrNotInError = errors.New("there is no error to dismiss")
)

// Analyzer submits a document to the analysis service
type Analyzer interface {
	Analyze(ctx context.Context, filename string, content io.Reader) (*analysis.Result, error)
}

// State is a snapshot of the workflow. Message is set only in PhaseError and
// Result only in PhaseSuccess.
type State struct {
	Phase     Phase
	Message   string
	Result    *analysis.Result
	FileName  string
	AttemptID string
}

// Attempt identifies one submission
type Attempt struct {
	ID   string
	File File
}

// Controller drives the submission workflow. It is owned by a single event
// loop and is not safe for concurrent use; only Analyze may run elsewhere.
type Controller struct {
	analyzer Analyzer
	log      *logger.Logger
	newID    func() string

	phase   Phase
	message string
	result  *analysis.Result
	file    *File
	attempt string
}

// Option customizes a Controller
type Option func(*Controller)

// WithLogger sets the controller logger
func WithLogger(log *logger.Logger) Option {
	return func(c *Controller) {
		c.log = log
	}
}

// WithIDGenerator replaces the attempt id source
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) {
		c.newID = fn
	}
}

// New creates an idle controller
func New(analyzer Analyzer, opts ...Option) *Controller {
	c := &Controller{
		analyzer: analyzer,
		log:      logger.Nop("upload"),
		newID:    uuid.NewString,
		phase:    PhaseIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current snapshot
func (c *Controller) State() State {
	s := State{
		Phase:     c.phase,
		Message:   c.message,
		Result:    c.result,
		AttemptID: c.attempt,
	}
	if c.file != nil {
		s.FileName = c.file.Name
	}
	return s
}

// Selected returns the selected file, if any
func (c *Controller) Selected() (File, bool) {
	if c.file == nil {
		return File{}, false
	}
	return *c.file, true
}

// SelectFile replaces the selected file. A previous result or error is
// discarded and the workflow returns to idle.
func (c *Controller) SelectFile(f File) error {
	if c.phase == PhaseUploading {
		return ErrSubmitInProgress
	}

	if !f.Advised() {
		c.log.Warn("%s is not a %v document; the service may reject it", f.Name, AcceptedExtensions)
	}

	c.file = &f
	c.transition(PhaseIdle, "", nil)
	return nil
}

// Begin starts a submission. Without a selected file the workflow moves to
// the error phase and the returned error carries the user message; no request
// is made. Guard errors (ErrSubmitInProgress, ErrUnacknowledged) leave the
// state unchanged.
func (c *Controller) Begin() (Attempt, error) {
	switch c.phase {
	case PhaseUploading:
		c.log.Debug("submit ignored: attempt %s still running", c.attempt)
		return Attempt{}, ErrSubmitInProgress
	case PhaseError:
		return Attempt{}, ErrUnacknowledged
	}

	if c.file == nil {
		err := analysis.NewUserInputError(analysis.MsgNoFileSelected)
		c.transition(PhaseError, err.UserMessage(), nil)
		return Attempt{}, err
	}

	c.attempt = c.newID()
	c.transition(PhaseUploading, "", nil)
	c.log.DebugWithFields("upload started", []logger.Field{
		logger.F("attempt", c.attempt),
		logger.F("file", c.file.Name),
		logger.F("bytes", c.file.Size()),
	})

	return Attempt{ID: c.attempt, File: *c.file}, nil
}

// Analyze performs the service call for an attempt. It does not touch the
// workflow state and may run off the owning loop.
func (c *Controller) Analyze(ctx context.Context, attempt Attempt) (*analysis.Result, error) {
	return c.analyzer.Analyze(ctx, attempt.File.Name, bytes.NewReader(attempt.File.Content))
}

// Complete records the outcome of an attempt. Outcomes for anything other
// than the current in-flight attempt are dropped and false is returned.
func (c *Controller) Complete(attemptID string, result *analysis.Result, err error) bool {
	if c.phase != PhaseUploading || attemptID != c.attempt {
		c.log.Debug("dropping stale completion for attempt %s", attemptID)
		return false
	}

	switch {
	case err != nil:
		c.log.WarnWithFields("upload failed", []logger.Field{
			logger.F("attempt", attemptID),
			logger.F("kind", analysis.KindOf(err)),
			logger.Error(err),
		})
		c.transition(PhaseError, analysis.UserMessage(err), nil)
	case result == nil:
		c.transition(PhaseError, analysis.MsgUnsupportedFile, nil)
	default:
		c.log.InfoWithFields("upload finished", []logger.Field{
			logger.F("attempt", attemptID),
			logger.Count(len(result.Contradictions)),
		})
		c.transition(PhaseSuccess, "", result)
	}
	return true
}

// Submit runs a whole attempt synchronously
func (c *Controller) Submit(ctx context.Context) error {
	attempt, err := c.Begin()
	if err != nil {
		return err
	}

	result, err := c.Analyze(ctx, attempt)
	c.Complete(attempt.ID, result, err)
	return err
}

// Fail moves the workflow to the error phase with the message for err. It is
// refused while an upload is running.
func (c *Controller) Fail(err error) error {
	if c.phase == PhaseUploading {
		return ErrSubmitInProgress
	}
	c.transition(PhaseError, analysis.UserMessage(err), nil)
	return nil
}

// DismissError acknowledges the current error. The selected file is cleared
// and the workflow returns to idle.
func (c *Controller) DismissError() error {
	if c.phase != PhaseError {
		return ErrNotInError
	}
	c.file = nil
	c.transition(PhaseIdle, "", nil)
	return nil
}

func (c *Controller) transition(to Phase, message string, result *analysis.Result) {
	if c.phase != to {
		c.log.Debug("state %s -> %s", c.phase, to)
	}
	c.phase = to
	c.message = message
	c.result = result
	if to == PhaseIdle {
		c.attempt = ""
	}
}
