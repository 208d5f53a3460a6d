package sweeper

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Walker traverses the root directory and produces suffix-matched candidate
// paths. Each call to Walk or CountByCategory performs a fresh traversal;
// the sequence is restartable but not resumable.
type Walker struct {
	root       string
	categories []string // normalized, caller order preserved
	hooks      Hooks
	logger     *slog.Logger
}

// NewWalker creates a Walker rooted at opts.RootDir for opts.Categories.
func NewWalker(opts *Options, loggerHandler slog.Handler) (*Walker, error) {
	logger := slog.New(loggerHandler).With(slog.String("component", "walker"))
	if len(opts.Categories) == 0 {
		return nil, fmt.Errorf("%w: category list cannot be empty", ErrConfigValidation)
	}
	normalized := make([]string, 0, len(opts.Categories))
	for _, c := range opts.Categories {
		n := NormalizeCategory(c)
		if n == "" {
			return nil, fmt.Errorf("%w: blank category %q", ErrConfigValidation, c)
		}
		normalized = append(normalized, n)
	}
	return &Walker{
		root:       opts.RootDir,
		categories: normalized,
		hooks:      opts.EventHooks,
		logger:     logger,
	}, nil
}

// NormalizeCategory strips a leading dot and lowercases a suffix category.
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(category), "."))
}

// matchCategory returns the first category (in caller-supplied order) whose
// suffix matches the file name, or "" when none match.
func (w *Walker) matchCategory(name string) string {
	lower := strings.ToLower(name)
	for _, c := range w.categories {
		if strings.HasSuffix(lower, "."+c) {
			return c
		}
	}
	return ""
}

// Walk streams candidates into out, closing it when the traversal ends.
// Memory use is bounded by the channel capacity, never by population size.
// A cancelled context stops the traversal and is returned as ctx.Err().
func (w *Walker) Walk(ctx context.Context, out chan<- CandidatePath) error {
	return w.walk(ctx, out, true)
}

// walk implements Walk. Discovery hooks fire only when notify is set, so
// counting and sampling passes stay invisible to progress consumers.
func (w *Walker) walk(ctx context.Context, out chan<- CandidatePath, notify bool) error {
	defer close(out)
	w.logger.Debug("Starting directory walk", slog.String("root", w.root))
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Unreadable root is fatal; anything below it is logged and
			// skipped so one bad subtree cannot abort the run.
			if path == w.root {
				return fmt.Errorf("%w: cannot read root %q: %v", ErrWalkFailed, path, walkErr)
			}
			w.logger.Warn("Error accessing path during walk",
				slog.String("path", path), slog.String("error", walkErr.Error()))
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			w.logger.Debug("Skipping irregular file", slog.String("path", path))
			return nil
		}
		category := w.matchCategory(d.Name())
		if category == "" {
			return nil
		}
		absPath, absErr := filepath.Abs(path)
		if absErr != nil {
			w.logger.Warn("Could not resolve absolute path",
				slog.String("path", path), slog.String("error", absErr.Error()))
			return nil
		}
		if notify && w.hooks != nil {
			if hookErr := w.hooks.OnFileDiscovered(absPath); hookErr != nil {
				w.logger.Warn("OnFileDiscovered hook failed",
					slog.String("path", absPath), slog.String("error", hookErr.Error()))
			}
		}
		select {
		case out <- CandidatePath{Path: absPath, Category: category}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			w.logger.Info("Directory walk cancelled", slog.String("reason", err.Error()))
			return err
		}
		w.logger.Error("Directory walk failed", slog.String("error", err.Error()))
		if errors.Is(err, ErrWalkFailed) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrWalkFailed, err)
	}
	w.logger.Debug("Directory walk completed")
	return nil
}

// CountByCategory performs one traversal and returns per-category candidate
// counts plus the total, without materializing any paths.
func (w *Walker) CountByCategory(ctx context.Context) (map[string]int, int, error) {
	counts := make(map[string]int, len(w.categories))
	for _, c := range w.categories {
		counts[c] = 0
	}
	total := 0
	ch := make(chan CandidatePath, 64)
	walkErr := make(chan error, 1)
	go func() {
		walkErr <- w.walk(ctx, ch, false)
	}()
	for cand := range ch {
		counts[cand.Category]++
		total++
	}
	if err := <-walkErr; err != nil {
		return nil, 0, err
	}
	return counts, total, nil
}

// validateRoot checks that the root directory exists and is a directory.
func validateRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: cannot access root directory %q: %v", ErrConfigValidation, root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: root path %q is not a directory", ErrConfigValidation, root)
	}
	return nil
}
