package cli

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/yildizm/rentcheck/internal/analysis"
	"github.com/yildizm/rentcheck/internal/config"
	"github.com/yildizm/rentcheck/internal/logger"
	"github.com/yildizm/rentcheck/internal/tracing"
	"github.com/yildizm/rentcheck/internal/upload"
)

const shutdownTimeout = 5 * time.Second

// session holds the collaborators shared by commands that talk to the service
type session struct {
	ctrl     *upload.Controller
	client   *analysis.Client
	log      *logger.Logger
	shutdown tracing.ShutdownFunc
}

func newLogger(component string) *logger.Logger {
	return logger.NewWithCallback(component, isVerbose)
}

// setupLogging routes log output. The terminal UI owns the screen, so in
// interactive mode only the log file (if any) receives lines.
func setupLogging(cfg *config.Config, interactive bool) func() error {
	return logger.Configure(logger.Options{
		Console:    !interactive,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
}

func newSession(ctx context.Context, cfg *config.Config) (*session, error) {
	log := newLogger("cli")

	shutdown, err := tracing.Init(ctx, cfg.Tracing, buildVersion, newLogger("tracing"))
	if err != nil {
		// Tracing is optional; uploads still work without it
		log.Warn("tracing unavailable: %v", err)
	}

	client, err := analysis.NewClient(analysis.ClientConfig{
		BaseURL: cfg.Service.URL,
		Timeout: cfg.Service.Timeout,
	}, analysis.WithLogger(newLogger("client")))
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	log.Debug("using analysis service at %s", client.Endpoint())

	return &session{
		ctrl:     upload.New(client, upload.WithLogger(newLogger("upload"))),
		client:   client,
		log:      log,
		shutdown: shutdown,
	}, nil
}

// Close flushes pending spans
func (s *session) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.shutdown(ctx); err != nil {
		s.log.Debug("tracing shutdown: %v", err)
	}
}

// configureColor applies the color mode to every colored writer
func configureColor(mode string) {
	switch strings.ToLower(mode) {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		// fatih/color already honors NO_COLOR and non-terminal stdout
		if os.Getenv("NO_COLOR") != "" {
			color.NoColor = true
		}
	}
}

func useColor() bool {
	return !color.NoColor
}

// commandContext returns the command's context, or Background when run
// outside Execute
func commandContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
