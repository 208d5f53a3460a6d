package sweeper

import (
	"sync"
	"time"
)

// CategoryMetrics accumulates per-category counters for one run. Owned
// exclusively by the Aggregator; mutated only through its API.
type CategoryMetrics struct {
	Category          string    `json:"category"`
	FilesSeen         int       `json:"filesSeen"`
	FilesWithOverride int       `json:"filesWithOverride"`
	FilesCleared      int       `json:"filesCleared"`
	Errors            int       `json:"errors"`
	StartedAt         time.Time `json:"startedAt"`
	FinishedAt        time.Time `json:"finishedAt,omitempty"`
	FilesPerSecond    float64   `json:"filesPerSecond"`
}

// Aggregator turns per-worker partial results into a correct global count
// under concurrent execution. Accumulation is commutative: the totals are
// independent of worker completion order. It is the only shared mutable
// state in the pipeline; all access goes through the mutex.
type Aggregator struct {
	mu    sync.Mutex
	order []string
	byCat map[string]*CategoryMetrics
	clock func() time.Time
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		byCat: make(map[string]*CategoryMetrics),
		clock: time.Now,
	}
}

// Start records a start timestamp for a category. A second Start for the
// same category resets its accounting.
func (a *Aggregator) Start(category string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, seen := a.byCat[category]; !seen {
		a.order = append(a.order, category)
	}
	a.byCat[category] = &CategoryMetrics{Category: category, StartedAt: a.clock()}
}

// Accumulate folds one outcome record into its category's counters.
// Records for a category that was never started implicitly start it, so a
// partial report stays internally consistent.
func (a *Aggregator) Accumulate(category string, rec OutcomeRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	m, ok := a.byCat[category]
	if !ok {
		m = &CategoryMetrics{Category: category, StartedAt: a.clock()}
		a.order = append(a.order, category)
		a.byCat[category] = m
	}
	m.FilesSeen++
	if rec.HadOverride {
		m.FilesWithOverride++
	}
	switch rec.Action {
	case ActionCleared, ActionWouldClear:
		m.FilesCleared++
	case ActionError:
		m.Errors++
	}
}

// Finish records an end timestamp and freezes the category's rate.
func (a *Aggregator) Finish(category string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	m, ok := a.byCat[category]
	if !ok {
		return
	}
	m.FinishedAt = a.clock()
	if elapsed := m.FinishedAt.Sub(m.StartedAt).Seconds(); elapsed > 0 {
		m.FilesPerSecond = float64(m.FilesSeen) / elapsed
	}
}

// Categories returns a copy of the per-category metrics in Start order.
func (a *Aggregator) Categories() []CategoryMetrics {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]CategoryMetrics, 0, len(a.order))
	for _, c := range a.order {
		out = append(out, *a.byCat[c])
	}
	return out
}

// Total computes the grand total across categories. filesCleared <=
// filesWithOverride <= filesSeen holds for the total whenever it holds
// per category.
func (a *Aggregator) Total() CategoryMetrics {
	a.mu.Lock()
	defer a.mu.Unlock()
	total := CategoryMetrics{Category: "total"}
	var earliest, latest time.Time
	for _, c := range a.order {
		m := a.byCat[c]
		total.FilesSeen += m.FilesSeen
		total.FilesWithOverride += m.FilesWithOverride
		total.FilesCleared += m.FilesCleared
		total.Errors += m.Errors
		if earliest.IsZero() || m.StartedAt.Before(earliest) {
			earliest = m.StartedAt
		}
		if m.FinishedAt.After(latest) {
			latest = m.FinishedAt
		}
	}
	total.StartedAt = earliest
	total.FinishedAt = latest
	if !earliest.IsZero() && !latest.IsZero() {
		if elapsed := latest.Sub(earliest).Seconds(); elapsed > 0 {
			total.FilesPerSecond = float64(total.FilesSeen) / elapsed
		}
	}
	return total
}
