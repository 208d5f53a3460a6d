package sweeper

// ShouldSkipFullPass reports whether the sample justifies skipping the full
// pass entirely. Only a sufficiently large sample with zero hits does; a
// sample smaller than minSample is inconclusive and the full pass proceeds
// even when it happened to observe no hits.
//
// Pure decision logic: no I/O, deterministic given its inputs.
func ShouldSkipFullPass(result SampleResult, minSample int) bool {
	return result.SampledCount >= minSample && result.HitCount == 0
}

// RequiresConfirmation reports whether the estimated number of files to
// touch exceeds the caller's configured ceiling. The caller is expected to
// obtain explicit operator consent before continuing; the consent mechanism
// lives outside this package.
func RequiresConfirmation(result SampleResult, maxFiles int) bool {
	return result.EstimatedPopulationHits > maxFiles
}
