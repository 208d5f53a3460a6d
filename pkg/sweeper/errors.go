package sweeper

import "errors"

// Exported error variables returned by the engine's entry points. Per-file
// failures are never surfaced through these; they are captured as
// OutcomeRecords with ActionError and recovered locally.
var (
	// ErrConfigValidation indicates invalid inputs to the engine's own API:
	// nonexistent root directory, empty category list, negative concurrency
	// or sample sizes. Always returned synchronously before any processing.
	ErrConfigValidation = errors.New("invalid configuration options provided")

	// ErrWalkFailed indicates the directory walk itself failed critically,
	// typically a permission error on the root directory.
	ErrWalkFailed = errors.New("directory walk failed")

	// ErrRunActive indicates Run was invoked while a previous run on the
	// same engine had not drained.
	ErrRunActive = errors.New("a run is already in progress")
)
