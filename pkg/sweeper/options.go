package sweeper

import (
	"log/slog"
	"math/rand"

	"github.com/attrsweep/attrsweep/pkg/sweeper/attr"
)

// Hooks defines callbacks for progress updates during a sweep. The engine
// never formats user-visible output itself; it only notifies.
// Implementations MUST be thread-safe as methods are called concurrently.
type Hooks interface {
	// OnFileDiscovered is called by the walker for every dispatched
	// candidate.
	OnFileDiscovered(path string) error
	// OnFileProcessed is called once per OutcomeRecord, from sampling and
	// from the worker pool.
	OnFileProcessed(rec OutcomeRecord) error
	// OnRunComplete is called with the final report after Run drains.
	OnRunComplete(report Report) error
}

// NoOpHooks provides a default, do-nothing implementation of Hooks.
type NoOpHooks struct{}

func (h *NoOpHooks) OnFileDiscovered(path string) error { return nil }

func (h *NoOpHooks) OnFileProcessed(rec OutcomeRecord) error { return nil }

func (h *NoOpHooks) OnRunComplete(report Report) error { return nil }

// Options holds all configuration for a sweep run.
type Options struct {
	// --- Core ---
	RootDir    string   `mapstructure:"dir"`       // Required: target directory
	Categories []string `mapstructure:"ext"`       // Required: suffix categories, caller order wins ties
	Attribute  string   `mapstructure:"attribute"` // Override attribute name ("" = platform default)

	// --- Behavior & Control ---
	DryRun      bool        `mapstructure:"dry-run"`
	OnErrorMode OnErrorMode `mapstructure:"onError"`
	Verbose     bool        `mapstructure:"verbose"`

	// --- Estimation policy ---
	SampleSize int  `mapstructure:"sample-size"`
	MinSample  int  `mapstructure:"min-sample"`
	MaxFiles   int  `mapstructure:"max-files"`
	NoSample   bool `mapstructure:"no-sample"` // Skip estimation, go straight to the full pass

	// --- Performance ---
	Concurrency int `mapstructure:"concurrency"` // Resolved worker count (0 = caller resolves)

	// --- Presentation (consumed by the CLI layer only) ---
	OutputFormat   OutputFormat `mapstructure:"output-format"`
	AssumeYes      bool         `mapstructure:"yes"`
	NoProgress     bool         `mapstructure:"no-progress"`
	ProfileName    string       `mapstructure:"-"`
	ConfigFilePath string       `mapstructure:"-"`
	AppVersion     string       `mapstructure:"-"`

	// --- Injected dependencies ---
	Logger     slog.Handler  `mapstructure:"-"` // Logging backend (nil = discard)
	EventHooks Hooks         `mapstructure:"-"` // Callback interface (nil = NoOpHooks)
	Accessor   attr.Accessor `mapstructure:"-"` // Attribute store access (nil = XattrAccessor)
	RandSource rand.Source   `mapstructure:"-"` // Sampling randomness (nil = time-seeded), for tests
}
