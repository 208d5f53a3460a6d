// Package hooks bridges sweep engine events to the CLI's progress surface.
package hooks

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/attrsweep/attrsweep/pkg/sweeper"
)

// ProgressBar is the minimal surface the hooks need from a progress
// renderer. Decoupled from the concrete library for tests.
type ProgressBar interface {
	Add(num int) error
	Describe(description string)
	Close() error
}

// NoOpProgressBar is the null renderer used for non-TTY runs.
type NoOpProgressBar struct{}

func (n *NoOpProgressBar) Add(num int) error { return nil }

func (n *NoOpProgressBar) Describe(description string) {}

func (n *NoOpProgressBar) Close() error { return nil }

// CLIHooks implements sweeper.Hooks, advancing a progress bar as the
// worker pool emits outcome records. Sampling probes also arrive here; the
// CLI installs the bar only for the full pass, so they advance nothing.
type CLIHooks struct {
	logger *slog.Logger
	mu     sync.Mutex
	bar    ProgressBar
	errs   int
}

// NewCLIHooks creates hooks with no progress bar attached.
func NewCLIHooks(loggerHandler slog.Handler) *CLIHooks {
	if loggerHandler == nil {
		loggerHandler = slog.NewTextHandler(io.Discard, nil)
	}
	return &CLIHooks{
		logger: slog.New(loggerHandler).With(slog.String("component", "hooks")),
		bar:    &NoOpProgressBar{},
	}
}

// AttachProgress installs a progress renderer. Safe to call between the
// sampling pass and the full pass.
func (h *CLIHooks) AttachProgress(bar ProgressBar) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if bar == nil {
		bar = &NoOpProgressBar{}
	}
	h.bar = bar
}

// OnFileDiscovered implements sweeper.Hooks.
func (h *CLIHooks) OnFileDiscovered(path string) error { return nil }

// OnFileProcessed implements sweeper.Hooks.
func (h *CLIHooks) OnFileProcessed(rec sweeper.OutcomeRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.bar.Add(1); err != nil {
		h.logger.Debug("Progress bar update failed", slog.String("error", err.Error()))
	}
	if rec.Action == sweeper.ActionError {
		h.errs++
		h.logger.Warn("File operation failed",
			slog.String("path", rec.Path), slog.String("error", rec.Err))
	}
	return nil
}

// OnRunComplete implements sweeper.Hooks.
func (h *CLIHooks) OnRunComplete(report sweeper.Report) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.bar.Close(); err != nil {
		h.logger.Debug("Progress bar close failed", slog.String("error", err.Error()))
	}
	h.bar = &NoOpProgressBar{}
	return nil
}

// NewTerminalProgress builds the standard progress renderer for the full
// pass. total may be -1 for an indeterminate spinner.
func NewTerminalProgress(total int, out io.Writer, description string) ProgressBar {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionThrottle(65*time.Millisecond),
	)
	return &schollzBar{bar: bar}
}

// schollzBar adapts *progressbar.ProgressBar to the ProgressBar interface.
type schollzBar struct {
	bar *progressbar.ProgressBar
}

func (s *schollzBar) Add(num int) error { return s.bar.Add(num) }

func (s *schollzBar) Describe(description string) { s.bar.Describe(description) }

func (s *schollzBar) Close() error { return s.bar.Close() }
