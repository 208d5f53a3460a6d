package sweeper

// Constants defining default values for configuration options. Used when
// setting up viper defaults in the CLI configuration loading process.
const (
	// DefaultConcurrency of 0 lets the caller resolve a worker count from
	// the host (see config.ResolveConcurrency).
	DefaultConcurrency = 0
	// DefaultSampleSize is the total number of files drawn across all
	// categories during the estimation pass.
	DefaultSampleSize = 400
	// DefaultMinSample is the smallest sample size on which a zero hit
	// count is trusted enough to skip the full pass. An empirical policy
	// value, not an invariant.
	DefaultMinSample = 50
	// DefaultMaxFiles is the estimated-hit ceiling above which the run
	// requires operator confirmation.
	DefaultMaxFiles = 10000
	// DefaultOnErrorMode is the worker pool behavior on per-file failure.
	DefaultOnErrorMode = OnErrorContinue
	// DefaultOutputFormat is the format of the final summary.
	DefaultOutputFormat = OutputFormatText
	// DefaultDryRun leaves file metadata untouched unless explicitly
	// disabled.
	DefaultDryRun = false
)

// Confidence classification thresholds: sample size as a fraction of the
// population.
const (
	confidenceHighRatio   = 0.10
	confidenceMediumRatio = 0.05
	confidenceLowRatio    = 0.01
)

// ReportSchemaVersion identifies the JSON report structure.
const ReportSchemaVersion = "1.0"
