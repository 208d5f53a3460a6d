package sweeper_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attrsweep/attrsweep/pkg/sweeper"
)

func sampleOver(t *testing.T, opts sweeper.Options, size int) sweeper.SampleResult {
	t.Helper()
	engine, err := sweeper.NewEngine(opts)
	require.NoError(t, err)
	result, err := engine.Sample(context.Background(), size)
	require.NoError(t, err)
	return result
}

func TestSample_SizeIsMinOfRequestAndPopulation(t *testing.T) {
	root := t.TempDir()
	createFiles(t, root, "doc", "pdf", 200)
	accessor := newFakeAccessor()

	result := sampleOver(t, testOptions(root, accessor, "pdf"), 50)
	assert.Equal(t, 50, result.SampledCount)
	assert.Equal(t, 200, result.Population)

	result = sampleOver(t, testOptions(root, accessor, "pdf"), 500)
	assert.Equal(t, 200, result.SampledCount)
}

func TestSample_SizeExactAcrossCategories(t *testing.T) {
	root := t.TempDir()
	createFiles(t, root, "doc", "pdf", 60)
	createFiles(t, root, "sheet", "xlsx", 40)

	hooks := &recordingHooks{}
	opts := testOptions(root, newFakeAccessor(), "pdf", "xlsx")
	opts.EventHooks = hooks

	result := sampleOver(t, opts, 50)
	assert.Equal(t, 50, result.SampledCount)

	// Proportional allocation: 60% of the sample from pdf, 40% from xlsx.
	perCategory := hooks.processedByCategory()
	assert.Equal(t, 30, perCategory["pdf"])
	assert.Equal(t, 20, perCategory["xlsx"])
}

func TestSample_TinyCategoryStillSampled(t *testing.T) {
	root := t.TempDir()
	createFiles(t, root, "doc", "pdf", 500)
	createFiles(t, root, "sheet", "xlsx", 2)

	hooks := &recordingHooks{}
	opts := testOptions(root, newFakeAccessor(), "pdf", "xlsx")
	opts.EventHooks = hooks

	sampleOver(t, opts, 10)
	perCategory := hooks.processedByCategory()
	assert.GreaterOrEqual(t, perCategory["xlsx"], 1, "every populated category gets at least one probe")
}

func TestSample_EmptyPopulation(t *testing.T) {
	opts := testOptions(t.TempDir(), newFakeAccessor(), "pdf")
	result := sampleOver(t, opts, 100)

	assert.Equal(t, 0, result.Population)
	assert.Equal(t, 0, result.SampledCount)
	assert.Equal(t, 0, result.HitCount)
	assert.Equal(t, float64(0), result.HitRatePercent)
	assert.Equal(t, 0, result.EstimatedPopulationHits)
	assert.Equal(t, sweeper.ConfidenceNotComputable, result.Confidence)
}

// A clean sample of sufficient size across two categories justifies
// skipping the full pass outright.
func TestSample_CleanSampleSkipsFullPass(t *testing.T) {
	root := t.TempDir()
	createFiles(t, root, "doc", "pdf", 600)
	createFiles(t, root, "sheet", "xlsx", 400)

	result := sampleOver(t, testOptions(root, newFakeAccessor(), "pdf", "xlsx"), 100)
	assert.Equal(t, 100, result.SampledCount)
	assert.Equal(t, 0, result.HitCount)
	assert.Equal(t, 0, result.EstimatedPopulationHits)
	assert.True(t, sweeper.ShouldSkipFullPass(result, 50))
}

func TestSample_AllOverridesEstimatesFullPopulation(t *testing.T) {
	root := t.TempDir()
	accessor := newFakeAccessor()
	for _, path := range createFiles(t, root, "doc", "pdf", 80) {
		accessor.setOverride(path)
	}

	result := sampleOver(t, testOptions(root, accessor, "pdf"), 20)
	assert.Equal(t, 20, result.SampledCount)
	assert.Equal(t, 20, result.HitCount)
	assert.Equal(t, float64(100), result.HitRatePercent)
	assert.Equal(t, 80, result.EstimatedPopulationHits)
}

// One override among 122 files, sampled exhaustively: the estimate rounds
// to exactly the count a subsequent full run observes.
func TestSample_SingleHitEstimateMatchesFullRun(t *testing.T) {
	root := t.TempDir()
	accessor := newFakeAccessor()
	paths := createFiles(t, root, "doc", "pdf", 122)
	accessor.setOverride(paths[37])

	opts := testOptions(root, accessor, "pdf")
	result := sampleOver(t, opts, 150)
	assert.Equal(t, 122, result.SampledCount)
	assert.Equal(t, 1, result.HitCount)
	assert.InDelta(t, 0.82, result.HitRatePercent, 0.01)
	assert.Equal(t, 1, result.EstimatedPopulationHits)

	engine, err := sweeper.NewEngine(opts)
	require.NoError(t, err)
	records, err := engine.Run(context.Background())
	require.NoError(t, err)
	cleared := 0
	for _, rec := range drainRecords(records) {
		if rec.Action == sweeper.ActionCleared {
			cleared++
		}
	}
	assert.Equal(t, result.EstimatedPopulationHits, cleared)
}

func TestSample_NeverMutates(t *testing.T) {
	root := t.TempDir()
	accessor := newFakeAccessor()
	for _, path := range createFiles(t, root, "doc", "pdf", 30) {
		accessor.setOverride(path)
	}

	sampleOver(t, testOptions(root, accessor, "pdf"), 30)
	assert.Equal(t, 30, accessor.overrideCount(), "sampling must not clear overrides")
}

func TestSample_NoDuplicateProbesWithinPass(t *testing.T) {
	root := t.TempDir()
	accessor := newFakeAccessor()
	createFiles(t, root, "doc", "pdf", 100)

	result := sampleOver(t, testOptions(root, accessor, "pdf"), 40)
	assert.Equal(t, result.SampledCount, accessor.probes)
}

func TestSample_ConfidenceClassification(t *testing.T) {
	root := t.TempDir()
	createFiles(t, root, "doc", "pdf", 1000)
	opts := testOptions(root, newFakeAccessor(), "pdf")

	tests := []struct {
		size int
		want sweeper.Confidence
	}{
		{100, sweeper.ConfidenceHigh},
		{50, sweeper.ConfidenceMedium},
		{10, sweeper.ConfidenceLow},
		{5, sweeper.ConfidenceVeryLow},
	}
	for _, tt := range tests {
		result := sampleOver(t, opts, tt.size)
		require.Equal(t, tt.size, result.SampledCount)
		assert.Equal(t, tt.want, result.Confidence, "sample size %d", tt.size)
	}
}

func TestSample_ProbeErrorsCounted(t *testing.T) {
	root := t.TempDir()
	accessor := newFakeAccessor()
	paths := createFiles(t, root, "doc", "pdf", 10)
	accessor.probeErrs[paths[3]] = assert.AnError

	result := sampleOver(t, testOptions(root, accessor, "pdf"), 20)
	assert.Equal(t, 10, result.SampledCount)
	assert.Equal(t, 1, result.ErrorCount)
	assert.Equal(t, 0, result.HitCount)
}
