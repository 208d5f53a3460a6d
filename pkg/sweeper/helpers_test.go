package sweeper_test

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/attrsweep/attrsweep/pkg/sweeper"
)

// fakeAccessor is a deterministic in-memory attr.Accessor. Overrides are
// keyed by absolute path; per-path errors simulate vanished files and
// permission failures.
type fakeAccessor struct {
	mu        sync.Mutex
	overrides map[string]bool
	probeErrs map[string]error
	clearErrs map[string]error
	probes    int
	clears    int
}

func newFakeAccessor() *fakeAccessor {
	return &fakeAccessor{
		overrides: make(map[string]bool),
		probeErrs: make(map[string]error),
		clearErrs: make(map[string]error),
	}
}

func (f *fakeAccessor) setOverride(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overrides[path] = true
}

func (f *fakeAccessor) HasOverride(path string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes++
	if err := f.probeErrs[path]; err != nil {
		return false, err
	}
	return f.overrides[path], nil
}

func (f *fakeAccessor) ClearOverride(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
	if err := f.clearErrs[path]; err != nil {
		return err
	}
	delete(f.overrides, path)
	return nil
}

func (f *fakeAccessor) Attribute() string { return "user.test" }

func (f *fakeAccessor) overrideCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.overrides)
}

// recordingHooks captures every hook invocation for inspection.
type recordingHooks struct {
	mu         sync.Mutex
	discovered []string
	processed  []sweeper.OutcomeRecord
	reports    []sweeper.Report
}

func (h *recordingHooks) OnFileDiscovered(path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.discovered = append(h.discovered, path)
	return nil
}

func (h *recordingHooks) OnFileProcessed(rec sweeper.OutcomeRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.processed = append(h.processed, rec)
	return nil
}

func (h *recordingHooks) OnRunComplete(report sweeper.Report) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reports = append(h.reports, report)
	return nil
}

func (h *recordingHooks) processedByCategory() map[string]int {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := map[string]int{}
	for _, rec := range h.processed {
		out[rec.Category]++
	}
	return out
}

// createFiles writes n empty files named like prefix000.ext under dir and
// returns their absolute paths in creation order.
func createFiles(t *testing.T, dir, prefix, ext string, n int) []string {
	t.Helper()
	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, fmt.Sprintf("%s%04d.%s", prefix, i, ext))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		abs, err := filepath.Abs(path)
		require.NoError(t, err)
		paths = append(paths, abs)
	}
	return paths
}

// testOptions builds Options wired for deterministic tests: discard
// logging, seeded randomness, sequential by default.
func testOptions(root string, accessor *fakeAccessor, categories ...string) sweeper.Options {
	return sweeper.Options{
		RootDir:     root,
		Categories:  categories,
		Concurrency: 1,
		Accessor:    accessor,
		RandSource:  rand.NewSource(1),
		Logger:      slog.NewTextHandler(io.Discard, nil),
	}
}

// drainRecords collects every record from a run stream.
func drainRecords(records <-chan sweeper.OutcomeRecord) []sweeper.OutcomeRecord {
	var out []sweeper.OutcomeRecord
	for rec := range records {
		out = append(out, rec)
	}
	return out
}

// assertCounterInvariant checks filesCleared <= filesWithOverride <=
// filesSeen for one metrics entry.
func assertCounterInvariant(t *testing.T, m sweeper.CategoryMetrics) {
	t.Helper()
	require.LessOrEqual(t, m.FilesCleared, m.FilesWithOverride, "category %s", m.Category)
	require.LessOrEqual(t, m.FilesWithOverride, m.FilesSeen, "category %s", m.Category)
}
