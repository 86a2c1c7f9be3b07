// Package scoring computes the Normalized Mean Squared Error between a
// predicted series and the benchmark series.
package scoring

import (
	"math"

	"github.com/tidemark/challenge-judge/internal/contracts"
)

// Sentinel is the fixed worst score: length mismatches, decode failures
// and deduplicated-out entries all receive it.
const Sentinel = 1.0

// Score returns the NMSE of predicted against benchmark: the summed
// squared deviation normalized by the benchmark's own squared magnitude.
// Zero means a perfect match; larger is worse. Any length mismatch,
// including an empty predicted series, returns the Sentinel.
func Score(benchmark contracts.BenchmarkSeries, predicted []float64) float64 {
	if len(predicted) != len(benchmark) {
		return Sentinel
	}

	var num, den float64
	for i, p := range benchmark {
		diff := p.Value - predicted[i]
		num += diff * diff
		den += p.Value * p.Value
	}

	if den == 0 {
		if num == 0 {
			return 0
		}
		return Sentinel
	}

	nmse := num / den
	if math.IsNaN(nmse) || math.IsInf(nmse, 0) {
		// A non-finite score would poison the sort.
		return Sentinel
	}

	return nmse
}
