package sweeper

// Action is the closed set of per-file outcomes produced by the sampling
// probe loop and the worker pool.
type Action string

const (
	// ActionSkipped means the file did not carry the override attribute.
	ActionSkipped Action = "skipped"
	// ActionCleared means the override attribute was present and removed.
	ActionCleared Action = "cleared"
	// ActionWouldClear means the override attribute was present but left in
	// place because the run is a dry run.
	ActionWouldClear Action = "would-clear"
	// ActionError means the probe or removal failed for this file.
	ActionError Action = "error"
)

// Confidence is a coarse classification of sample size relative to the
// population. Purely informational; it never gates correctness.
type Confidence string

const (
	ConfidenceHigh          Confidence = "high"      // sample >= 10% of population
	ConfidenceMedium        Confidence = "medium"    // sample >= 5%
	ConfidenceLow           Confidence = "low"       // sample >= 1%
	ConfidenceVeryLow       Confidence = "very-low"  // sample < 1%
	ConfidenceNotComputable Confidence = "undefined" // empty sample
)

// OnErrorMode defines worker pool behavior when a file operation fails.
type OnErrorMode string

const (
	OnErrorContinue OnErrorMode = "continue"
	OnErrorStop     OnErrorMode = "stop"
)

// OutputFormat defines the format of the final summary printed by the CLI.
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// CandidatePath is a file discovered by the walker together with the suffix
// category it matched. Immutable once produced.
type CandidatePath struct {
	Path     string
	Category string
}

// OutcomeRecord is the result of processing one candidate. Exactly one
// record is produced per processed file, including failures.
type OutcomeRecord struct {
	Path        string `json:"path"`
	Category    string `json:"category"`
	HadOverride bool   `json:"hadOverride"`
	Action      Action `json:"action"`
	Err         string `json:"error,omitempty"`
}

// SampleResult summarizes one sampling pass over the candidate population.
type SampleResult struct {
	Population              int            `json:"population"`
	PopulationByCategory    map[string]int `json:"populationByCategory"`
	SampledCount            int            `json:"sampledCount"`
	HitCount                int            `json:"hitCount"`
	ErrorCount              int            `json:"errorCount"`
	HitRatePercent          float64        `json:"hitRatePercent"`
	EstimatedPopulationHits int            `json:"estimatedPopulationHits"`
	Confidence              Confidence     `json:"confidence"`
}
