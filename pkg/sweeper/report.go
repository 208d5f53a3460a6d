package sweeper

import "time"

// Report summarizes the result of a single sweep run. Queryable at any
// time; finalized after Run drains.
type Report struct {
	Summary    ReportSummary     `json:"summary"`
	Categories []CategoryMetrics `json:"categories"`
	Total      CategoryMetrics   `json:"total"`
}

// ReportSummary contains run-level context for a sweep.
type ReportSummary struct {
	RunID           string    `json:"runId"`
	RootDir         string    `json:"rootDir"`
	Attribute       string    `json:"attribute"`
	Categories      []string  `json:"categories"`
	DryRun          bool      `json:"dryRun"`
	Concurrency     int       `json:"concurrency"`
	Cancelled       bool      `json:"cancelled"`
	DurationSeconds float64   `json:"durationSeconds"`
	Timestamp       time.Time `json:"timestamp"`
	SchemaVersion   string    `json:"schemaVersion"`
}
