package sweeper

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"github.com/attrsweep/attrsweep/pkg/sweeper/attr"
)

// Sampler draws a bounded random subset of candidates, probes each for the
// override attribute, and computes an observed hit rate with a confidence
// classification. It decides cheaply whether a full pass is worth running.
type Sampler struct {
	walker   *Walker
	accessor attr.Accessor
	hooks    Hooks
	rng      *rand.Rand
	logger   *slog.Logger
}

// NewSampler creates a Sampler over the given walker and accessor.
func NewSampler(walker *Walker, accessor attr.Accessor, hooks Hooks, src rand.Source, loggerHandler slog.Handler) *Sampler {
	return &Sampler{
		walker:   walker,
		accessor: accessor,
		hooks:    hooks,
		rng:      rand.New(src),
		logger:   slog.New(loggerHandler).With(slog.String("component", "sampler")),
	}
}

// Sample performs the estimation pass. The sub-sample for each category is
// proportional to its share of the population, at least one file, and never
// more than the category's population; a sub-sample meeting the population
// reads the whole category deterministically instead of randomizing.
// Selection is uniform without replacement via per-category reservoirs
// (algorithm R), so memory stays bounded by the sample size rather than the
// population size.
func (s *Sampler) Sample(ctx context.Context, totalSampleSize int) (SampleResult, error) {
	counts, total, err := s.walker.CountByCategory(ctx)
	if err != nil {
		return SampleResult{}, err
	}
	result := SampleResult{
		Population:           total,
		PopulationByCategory: counts,
		Confidence:           ConfidenceNotComputable,
	}
	if total == 0 || totalSampleSize <= 0 {
		s.logger.Debug("Nothing to sample",
			slog.Int("population", total), slog.Int("requested", totalSampleSize))
		return result, nil
	}

	targets := allocateSampleSizes(counts, total, totalSampleSize)
	reservoirs, err := s.drawReservoirs(ctx, targets)
	if err != nil {
		return SampleResult{}, err
	}

	for category, paths := range reservoirs {
		for _, path := range paths {
			rec := OutcomeRecord{Path: path, Category: category, Action: ActionSkipped}
			has, probeErr := s.accessor.HasOverride(path)
			switch {
			case probeErr != nil:
				rec.Action = ActionError
				rec.Err = probeErr.Error()
				result.ErrorCount++
			case has:
				rec.HadOverride = true
				result.HitCount++
			}
			result.SampledCount++
			if s.hooks != nil {
				if hookErr := s.hooks.OnFileProcessed(rec); hookErr != nil {
					s.logger.Warn("OnFileProcessed hook failed",
						slog.String("path", path), slog.String("error", hookErr.Error()))
				}
			}
			select {
			case <-ctx.Done():
				return SampleResult{}, ctx.Err()
			default:
			}
		}
	}

	if result.SampledCount > 0 {
		result.HitRatePercent = 100 * float64(result.HitCount) / float64(result.SampledCount)
		result.EstimatedPopulationHits = int(math.Floor(
			float64(total) * float64(result.HitCount) / float64(result.SampledCount)))
		result.Confidence = classifyConfidence(result.SampledCount, total)
	}
	s.logger.Debug("Sampling pass complete",
		slog.Int("population", total),
		slog.Int("sampled", result.SampledCount),
		slog.Int("hits", result.HitCount),
		slog.Float64("hitRatePercent", result.HitRatePercent),
		slog.Int("estimatedHits", result.EstimatedPopulationHits),
		slog.String("confidence", string(result.Confidence)))
	return result, nil
}

// allocateSampleSizes computes the proportional per-category sub-sample:
// max(1, floor(total × categoryPopulation / totalPopulation)), capped at
// the category population. Flooring leaves a remainder, which is handed
// out by largest fractional share to categories with spare population so
// the overall sample size is exactly min(requested, population) whenever
// the request covers at least one file per category.
func allocateSampleSizes(counts map[string]int, totalPopulation, totalSampleSize int) map[string]int {
	type allocation struct {
		category string
		fraction float64
	}
	targets := make(map[string]int, len(counts))
	remainders := make([]allocation, 0, len(counts))
	allocated := 0
	for category, population := range counts {
		if population == 0 {
			continue
		}
		exact := float64(totalSampleSize) * float64(population) / float64(totalPopulation)
		share := int(math.Floor(exact))
		if share < 1 {
			share = 1
		}
		if share > population {
			share = population
		}
		targets[category] = share
		allocated += share
		remainders = append(remainders, allocation{category, exact - math.Floor(exact)})
	}
	want := totalSampleSize
	if want > totalPopulation {
		want = totalPopulation
	}
	sort.Slice(remainders, func(i, j int) bool {
		if remainders[i].fraction != remainders[j].fraction {
			return remainders[i].fraction > remainders[j].fraction
		}
		return remainders[i].category < remainders[j].category
	})
	for allocated < want {
		grew := false
		for _, r := range remainders {
			if allocated >= want {
				break
			}
			if targets[r.category] < counts[r.category] {
				targets[r.category]++
				allocated++
				grew = true
			}
		}
		if !grew {
			break
		}
	}
	return targets
}

// drawReservoirs performs one walk, maintaining an algorithm R reservoir of
// the target size per category. Each file is considered at most once, so
// selection is without replacement.
func (s *Sampler) drawReservoirs(ctx context.Context, targets map[string]int) (map[string][]string, error) {
	reservoirs := make(map[string][]string, len(targets))
	seen := make(map[string]int, len(targets))
	ch := make(chan CandidatePath, 64)
	walkErr := make(chan error, 1)
	go func() {
		walkErr <- s.walker.walk(ctx, ch, false)
	}()
	for cand := range ch {
		k, wanted := targets[cand.Category]
		if !wanted {
			continue
		}
		seen[cand.Category]++
		res := reservoirs[cand.Category]
		if len(res) < k {
			reservoirs[cand.Category] = append(res, cand.Path)
			continue
		}
		if j := s.rng.Intn(seen[cand.Category]); j < k {
			res[j] = cand.Path
		}
	}
	if err := <-walkErr; err != nil {
		return nil, err
	}
	return reservoirs, nil
}

// classifyConfidence labels the sample size relative to its population.
func classifyConfidence(sampled, population int) Confidence {
	ratio := float64(sampled) / float64(population)
	switch {
	case ratio >= confidenceHighRatio:
		return ConfidenceHigh
	case ratio >= confidenceMediumRatio:
		return ConfidenceMedium
	case ratio >= confidenceLowRatio:
		return ConfidenceLow
	default:
		return ConfidenceVeryLow
	}
}
