package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/yildizm/rentcheck/internal/analysis"
	"github.com/yildizm/rentcheck/internal/emoji"
	"github.com/yildizm/rentcheck/internal/formatter"
	"github.com/yildizm/rentcheck/internal/logger"
	"github.com/yildizm/rentcheck/internal/upload"
)

var watchInterval time.Duration

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-analyze a rent agreement whenever it changes",
		Long: `Watch a rent agreement and upload it again every time it is saved.

The document is analyzed once on start. Saves that arrive faster than
--interval are coalesced, and a save made during an upload is analyzed
as soon as that upload finishes.`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().DurationVar(&watchInterval, "interval", 2*time.Second, "minimum time between uploads")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := GetGlobalConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flag("interval") != nil && cmd.Flag("interval").Changed {
		cfg.Watch.MinInterval = watchInterval
	}

	closeLogs := setupLogging(cfg, false)
	defer func() { _ = closeLogs() }()

	if err := validateWatchFilePath(args[0]); err != nil {
		return fmt.Errorf("invalid file path: %w", err)
	}
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("cannot resolve %s: %w", args[0], err)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd.Context()), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := newSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	f, err := formatter.New(getOutputFormat(), useColor())
	if err != nil {
		return err
	}

	// Editors often replace the file on save, so watch its directory
	watcher, err := createWatcher(filepath.Dir(path))
	if err != nil {
		return err
	}
	defer cleanupWatcher(watcher)

	fmt.Fprintf(os.Stderr, "%s Watching %s (press Ctrl+C to stop)\n", emoji.GetEmoji("watch"), path)

	w := newDocumentWatcher(sess.ctrl, path, cfg.Watch.MinInterval, f, os.Stdout)
	return w.run(ctx, watcher.Events, watcher.Errors)
}

// uploadOutcome carries a finished attempt back to the watch loop
type uploadOutcome struct {
	attemptID string
	result    *analysis.Result
	err       error
}

// documentWatcher re-submits one document on change. Only the loop goroutine
// touches the controller; uploads report back through done.
type documentWatcher struct {
	ctrl    *upload.Controller
	path    string
	limiter *rate.Limiter
	format  formatter.Formatter
	out     io.Writer
	log     *logger.Logger

	done    chan uploadOutcome
	retry   <-chan time.Time
	pending bool
}

func newDocumentWatcher(ctrl *upload.Controller, path string, interval time.Duration, f formatter.Formatter, out io.Writer) *documentWatcher {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}

	return &documentWatcher{
		ctrl:    ctrl,
		path:    filepath.Clean(path),
		limiter: rate.NewLimiter(limit, 1),
		format:  f,
		out:     out,
		log:     newLogger("watch"),
		done:    make(chan uploadOutcome, 1),
	}
}

func (w *documentWatcher) run(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) error {
	w.limiter.Allow()
	w.submit(ctx)

	for {
		select {
		case <-ctx.Done():
			if isVerbose() {
				fmt.Fprintf(os.Stderr, "\nReceived interrupt signal, stopping...\n")
			}
			return nil

		case event, ok := <-events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			w.handleChange(ctx)

		case err, ok := <-errs:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.log.Warn("watcher error: %v", err)

		case <-w.retry:
			w.retry = nil
			if w.pending {
				w.pending = false
				w.submit(ctx)
			}

		case outcome := <-w.done:
			if !w.ctrl.Complete(outcome.attemptID, outcome.result, outcome.err) {
				continue
			}
			w.report()
			if w.pending && w.retry == nil {
				w.pending = false
				w.submit(ctx)
			}
		}
	}
}

// relevant reports whether an event changed the watched document
func (w *documentWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func (w *documentWatcher) handleChange(ctx context.Context) {
	if w.retry != nil {
		// A throttled upload is already scheduled
		w.pending = true
		return
	}

	if !w.limiter.Allow() {
		w.pending = true
		delay := w.limiter.Reserve().Delay()
		w.log.Debug("change to %s throttled for %s", w.path, delay)
		w.retry = time.After(delay)
		return
	}

	w.submit(ctx)
}

// submit reads the document and starts an attempt in the background
func (w *documentWatcher) submit(ctx context.Context) {
	file, err := upload.OpenFile(w.path)
	if err != nil {
		w.log.Warn("cannot read %s: %v", w.path, err)
		return
	}

	if err := w.ctrl.SelectFile(file); err != nil {
		if errors.Is(err, upload.ErrSubmitInProgress) {
			w.pending = true
			w.log.Debug("upload in flight, %s will be re-submitted", file.Name)
		}
		return
	}

	attempt, err := w.ctrl.Begin()
	if err != nil {
		w.log.Debug("submit ignored: %v", err)
		return
	}

	fmt.Fprintf(w.out, "[%s] %s Uploading %s...\n", time.Now().Format("15:04:05"), emoji.GetEmoji("upload"), file.Name)

	go func() {
		result, err := w.ctrl.Analyze(ctx, attempt)
		w.done <- uploadOutcome{attemptID: attempt.ID, result: result, err: err}
	}()
}

func (w *documentWatcher) report() {
	state := w.ctrl.State()

	switch state.Phase {
	case upload.PhaseSuccess:
		output, err := w.format.Format(&formatter.Report{
			Document:  state.FileName,
			Result:    state.Result,
			Generated: time.Now(),
		})
		if err != nil {
			w.log.Error("failed to format results: %v", err)
			return
		}
		_, _ = w.out.Write(output)

	case upload.PhaseError:
		fmt.Fprintf(w.out, "[%s] %s %s\n", time.Now().Format("15:04:05"), emoji.GetEmoji("error"), state.Message)
		// Printing the message is the acknowledgement here
		if err := w.ctrl.DismissError(); err != nil {
			w.log.Debug("dismiss: %v", err)
		}
	}
}

// cleanupWatcher safely closes watcher with error logging
func cleanupWatcher(watcher *fsnotify.Watcher) {
	if err := watcher.Close(); err != nil && isVerbose() {
		fmt.Fprintf(os.Stderr, "Warning: failed to close watcher: %v\n", err)
	}
}

// createWatcher creates a watcher on a directory
func createWatcher(dir string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(dir); err != nil {
		cleanupWatcher(watcher)
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return watcher, nil
}

// validateWatchFilePath validates that a file path is safe to watch
func validateWatchFilePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("cannot watch directory, must be a file")
	}

	return nil
}
