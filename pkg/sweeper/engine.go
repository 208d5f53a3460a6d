package sweeper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/attrsweep/attrsweep/pkg/sweeper/attr"
)

// Engine orchestrates the scan/estimate/reset pipeline: sampling, the
// bounded worker pool, and metrics aggregation.
type Engine struct {
	opts       *Options
	logger     *slog.Logger
	accessor   attr.Accessor
	walker     *Walker
	sampler    *Sampler
	aggregator *Aggregator

	runID     string
	running   atomic.Bool
	cancelled atomic.Bool
	startTime time.Time
	duration  atomic.Int64 // nanoseconds, stamped when a run drains
}

// NewEngine validates options and wires dependencies. Configuration errors
// are returned synchronously; no work is scheduled here.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Logger == nil {
		opts.Logger = slog.NewTextHandler(io.Discard, nil)
	}
	if opts.EventHooks == nil {
		opts.EventHooks = &NoOpHooks{}
	}
	logger := slog.New(opts.Logger).With(slog.String("component", "engine"))

	if err := validateRoot(opts.RootDir); err != nil {
		return nil, err
	}
	if len(opts.Categories) == 0 {
		return nil, fmt.Errorf("%w: category list cannot be empty", ErrConfigValidation)
	}
	if opts.Concurrency < 0 {
		return nil, fmt.Errorf("%w: concurrency cannot be negative (%d)", ErrConfigValidation, opts.Concurrency)
	}
	if opts.SampleSize < 0 || opts.MinSample < 0 || opts.MaxFiles < 0 {
		return nil, fmt.Errorf("%w: sampling parameters cannot be negative", ErrConfigValidation)
	}
	if opts.Concurrency == 0 {
		// The caller normally resolves a worker count from the host; a bare
		// engine degrades to strictly sequential processing.
		opts.Concurrency = 1
	}
	if opts.OnErrorMode == "" {
		opts.OnErrorMode = DefaultOnErrorMode
	}
	if opts.Accessor == nil {
		opts.Accessor = attr.NewXattrAccessor(opts.Attribute)
	}
	opts.Attribute = opts.Accessor.Attribute()
	if opts.RandSource == nil {
		opts.RandSource = rand.NewSource(time.Now().UnixNano())
	}

	walker, err := NewWalker(&opts, opts.Logger)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		opts:       &opts,
		logger:     logger,
		accessor:   opts.Accessor,
		walker:     walker,
		aggregator: NewAggregator(),
		runID:      uuid.NewString(),
	}
	e.sampler = NewSampler(walker, e.accessor, opts.EventHooks, opts.RandSource, opts.Logger)
	return e, nil
}

// Sample runs the estimation pass. It probes a bounded random subset of the
// population and never mutates any file.
func (e *Engine) Sample(ctx context.Context, sampleSize int) (SampleResult, error) {
	return e.sampler.Sample(ctx, sampleSize)
}

// Run starts the full pass and returns a stream of outcome records. The
// returned channel is closed when every dispatched candidate has produced
// exactly one record or the context is cancelled. Configuration problems
// are the only synchronous errors; per-file failures arrive as records
// with ActionError.
//
// Callers needing stream order must buffer and re-sort; workers complete
// independently and no ordering between them is guaranteed.
func (e *Engine) Run(ctx context.Context) (<-chan OutcomeRecord, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, ErrRunActive
	}
	e.startTime = time.Now()
	e.cancelled.Store(false)
	e.logger.Info("Starting sweep",
		slog.String("root", e.opts.RootDir),
		slog.Int("concurrency", e.opts.Concurrency),
		slog.Bool("dryRun", e.opts.DryRun),
		slog.String("attribute", e.opts.Attribute))

	runCtx, cancel := context.WithCancel(ctx)

	for _, c := range e.walker.categories {
		e.aggregator.Start(c)
	}

	candidates := make(chan CandidatePath, e.opts.Concurrency)
	records := make(chan OutcomeRecord, e.opts.Concurrency)

	walkDone := make(chan error, 1)
	go func() {
		walkDone <- e.walker.Walk(runCtx, candidates)
	}()

	var wg sync.WaitGroup
	for i := 0; i < e.opts.Concurrency; i++ {
		wg.Add(1)
		go e.worker(runCtx, cancel, i, &wg, candidates, records)
	}

	go func() {
		wg.Wait()
		if walkErr := <-walkDone; walkErr != nil {
			e.logger.Warn("Walk ended early", slog.String("error", walkErr.Error()))
		}
		if runCtx.Err() != nil {
			e.cancelled.Store(true)
		}
		cancel()
		for _, c := range e.walker.categories {
			e.aggregator.Finish(c)
		}
		e.duration.Store(int64(time.Since(e.startTime)))
		e.running.Store(false)
		// Finalize before closing the stream so a caller that drains it can
		// read a settled report immediately.
		close(records)
		report := e.Report()
		e.logger.Info("Sweep finished",
			slog.Int("seen", report.Total.FilesSeen),
			slog.Int("withOverride", report.Total.FilesWithOverride),
			slog.Int("cleared", report.Total.FilesCleared),
			slog.Int("errors", report.Total.Errors),
			slog.Bool("cancelled", report.Summary.Cancelled),
			slog.Duration("duration", time.Since(e.startTime)))
		if hookErr := e.opts.EventHooks.OnRunComplete(report); hookErr != nil {
			e.logger.Warn("OnRunComplete hook failed", slog.String("error", hookErr.Error()))
		}
	}()

	return records, nil
}

// worker pulls candidates until the queue drains or the run is cancelled.
// Every pulled candidate yields exactly one record, failures included.
func (e *Engine) worker(ctx context.Context, cancel context.CancelFunc, id int, wg *sync.WaitGroup, candidates <-chan CandidatePath, records chan<- OutcomeRecord) {
	defer wg.Done()
	logger := e.logger.With(slog.Int("workerID", id))
	logger.Debug("Worker started")
	for {
		select {
		case cand, ok := <-candidates:
			if !ok {
				logger.Debug("Worker shutting down (queue drained)")
				return
			}
			rec := e.processCandidate(cand)
			e.aggregator.Accumulate(cand.Category, rec)
			if hookErr := e.opts.EventHooks.OnFileProcessed(rec); hookErr != nil {
				logger.Warn("OnFileProcessed hook failed",
					slog.String("path", rec.Path), slog.String("error", hookErr.Error()))
			}
			if rec.Action == ActionError && e.opts.OnErrorMode == OnErrorStop {
				logger.Info("Halting on first failure",
					slog.String("path", rec.Path), slog.String("error", rec.Err))
				cancel()
			}
			select {
			case records <- rec:
			case <-ctx.Done():
				// Consumer stopped; the aggregator already holds the record
				// so the partial report stays consistent.
				return
			}
		case <-ctx.Done():
			logger.Debug("Worker shutting down (cancelled)")
			return
		}
	}
}

// processCandidate performs the check-and-clear for one file. The clear is
// a single atomic host operation, so cancellation never leaves it half
// applied.
func (e *Engine) processCandidate(cand CandidatePath) OutcomeRecord {
	rec := OutcomeRecord{Path: cand.Path, Category: cand.Category}
	has, err := e.accessor.HasOverride(cand.Path)
	if err != nil {
		rec.Action = ActionError
		rec.Err = err.Error()
		return rec
	}
	if !has {
		rec.Action = ActionSkipped
		return rec
	}
	rec.HadOverride = true
	if e.opts.DryRun {
		rec.Action = ActionWouldClear
		return rec
	}
	if err := e.accessor.ClearOverride(cand.Path); err != nil {
		rec.Action = ActionError
		rec.Err = err.Error()
		return rec
	}
	rec.Action = ActionCleared
	return rec
}

// Report compiles the current aggregation. Safe to call at any time; the
// result is final once the stream returned by Run has closed.
func (e *Engine) Report() Report {
	return Report{
		Summary: ReportSummary{
			RunID:           e.runID,
			RootDir:         e.opts.RootDir,
			Attribute:       e.opts.Attribute,
			Categories:      append([]string(nil), e.walker.categories...),
			DryRun:          e.opts.DryRun,
			Concurrency:     e.opts.Concurrency,
			Cancelled:       e.cancelled.Load(),
			DurationSeconds: time.Duration(e.duration.Load()).Seconds(),
			Timestamp:       time.Now().UTC(),
			SchemaVersion:   ReportSchemaVersion,
		},
		Categories: e.aggregator.Categories(),
		Total:      e.aggregator.Total(),
	}
}
