package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/yildizm/rentcheck/internal/config"
	"github.com/yildizm/rentcheck/internal/emoji"
	"github.com/yildizm/rentcheck/internal/formatter"
	"github.com/yildizm/rentcheck/internal/ui"
	"github.com/yildizm/rentcheck/internal/upload"
)

var (
	analyzeTimeout    time.Duration
	analyzeNoTUI      bool
	analyzeOutputFile string
	analyzeStartDir   string
)

func newAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Upload a rent agreement and list contradicting clauses",
		Long: `Upload a rent agreement to the analysis service and show the pairs of
clauses it found to contradict each other.

Without a file the interactive UI opens a file picker. Supported documents
are PDF, DOCX and TXT.

Examples:
  rentcheck analyze
  rentcheck analyze lease.pdf
  rentcheck analyze --no-tui lease.docx
  rentcheck analyze -o json --output-file report.json lease.pdf`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().DurationVar(&analyzeTimeout, "timeout", 120*time.Second, "upload timeout")
	cmd.Flags().BoolVar(&analyzeNoTUI, "no-tui", false, "disable terminal UI, output to stdout")
	cmd.Flags().StringVar(&analyzeOutputFile, "output-file", "", "save output to file instead of stdout")
	cmd.Flags().StringVar(&analyzeStartDir, "dir", ".", "directory the file picker starts in")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := GetGlobalConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Use config timeout unless the flag was given
	if cmd.Flag("timeout") != nil && cmd.Flag("timeout").Changed {
		cfg.Service.Timeout = analyzeTimeout
	}

	interactive := shouldUseTUIMode()
	closeLogs := setupLogging(cfg, interactive)
	defer func() { _ = closeLogs() }()

	ctx, stop := signal.NotifyContext(commandContext(cmd.Context()), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := newSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	var initial *upload.File
	if len(args) == 1 {
		if err := validateFilePath(args[0]); err != nil {
			return err
		}
		file, err := upload.OpenFile(args[0])
		if err != nil {
			return err
		}
		initial = &file
	}

	if interactive {
		return runInteractive(ctx, cfg, sess, initial)
	}
	return runPlain(ctx, sess, initial, os.Stderr)
}

func runInteractive(ctx context.Context, cfg *config.Config, sess *session, initial *upload.File) error {
	if !ui.SetThemeByName(cfg.Output.Theme) {
		sess.log.Warn("unknown theme %q, using default", cfg.Output.Theme)
	}

	return ui.Run(ctx, sess.ctrl, ui.Options{
		StartDir:   analyzeStartDir,
		Initial:    initial,
		AutoSubmit: true,
		Logger:     newLogger("ui"),
	})
}

// runPlain performs one attempt and prints the report. Failures are shown as
// the user-facing message on stderr.
func runPlain(ctx context.Context, sess *session, initial *upload.File, stderr io.Writer) error {
	if initial != nil {
		if err := sess.ctrl.SelectFile(*initial); err != nil {
			return err
		}
		if !initial.Advised() {
			fmt.Fprintf(stderr, "%s %s is not a PDF, DOCX or TXT file; the service may reject it\n",
				emoji.GetEmoji("warning"), initial.Name)
		}
		fmt.Fprintf(stderr, "%s Uploading %s...\n", emoji.GetEmoji("upload"), initial.Name)
	}

	if err := sess.ctrl.Submit(ctx); err != nil {
		sess.log.Debug("submit: %v", err)
	}

	state := sess.ctrl.State()
	if state.Phase != upload.PhaseSuccess {
		red := color.New(color.FgRed, color.Bold)
		_, _ = red.Fprintf(stderr, "%s %s\n", emoji.GetEmoji("error"), state.Message)
		return ErrReported
	}

	f, err := formatter.New(getOutputFormat(), useColor() && analyzeOutputFile == "")
	if err != nil {
		return err
	}

	output, err := f.Format(&formatter.Report{
		Document:  state.FileName,
		Result:    state.Result,
		Generated: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	return handleOutputDestination(output)
}

// shouldUseTUIMode determines if TUI mode should be used
func shouldUseTUIMode() bool {
	return !analyzeNoTUI && getOutputFormat() == "text" && !isVerbose() && analyzeOutputFile == ""
}

func handleOutputDestination(output []byte) error {
	if analyzeOutputFile != "" {
		if err := validateOutputFilePath(analyzeOutputFile); err != nil {
			return fmt.Errorf("invalid output file path: %w", err)
		}

		if err := writeOutputBytesToFile(output, analyzeOutputFile); err != nil {
			return fmt.Errorf("failed to write output to file: %w", err)
		}

		if isVerbose() {
			fmt.Fprintf(os.Stderr, "Output saved to: %s\n", analyzeOutputFile)
		}
	} else {
		fmt.Print(string(output))
	}

	return nil
}

func validateFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", cleanPath)
		}
		return fmt.Errorf("cannot access file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", cleanPath)
	}

	return nil
}

func validateOutputFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty file path")
	}
	if info, err := os.Stat(filepath.Clean(path)); err == nil && info.IsDir() {
		return fmt.Errorf("path is a directory: %s", path)
	}
	return nil
}

// writeOutputBytesToFile writes output to a file with proper error handling
func writeOutputBytesToFile(output []byte, filePath string) error {
	cleanPath := filepath.Clean(filePath)

	file, err := os.Create(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close output file: %v\n", closeErr)
		}
	}()

	if _, err := file.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	// Sync to ensure data is written
	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync output file: %w", err)
	}

	return nil
}
