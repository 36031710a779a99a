// Package stats provides the numeric helpers the pipeline needs: median,
// weighted mean, quantile bucket assignment, and weighted least squares.
package stats

import (
	"sort"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat"
)

// Median returns the median of xs, averaging the middle pair on even
// length. Returns an error on empty input — a median is never computed
// over zero values.
func Median(xs []float64) (float64, error) {
	if len(xs) == 0 {
		return 0, eris.New("stats: median of empty slice")
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2], nil
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2, nil
}

// WeightedMean returns the weight-weighted average of xs. Returns an
// error when the total weight is zero, so callers can report the group as
// undefined instead of dividing by zero.
func WeightedMean(xs, weights []float64) (float64, error) {
	if len(xs) != len(weights) {
		return 0, eris.Errorf("stats: weighted mean length mismatch: %d values, %d weights", len(xs), len(weights))
	}
	var sum, wsum float64
	for i, x := range xs {
		sum += x * weights[i]
		wsum += weights[i]
	}
	if wsum == 0 {
		return 0, eris.New("stats: weighted mean with zero total weight")
	}
	return sum / wsum, nil
}

// Buckets assigns each value to one of len(labels) equal-probability
// quantile buckets with right-closed bins (a value equal to a cut point
// lands in the lower bucket). Cut points are gonum LinInterp quantile
// estimates; other estimators place borderline values differently on
// small samples. Returns the per-value labels.
func Buckets(xs []float64, labels []string) ([]string, error) {
	if len(labels) < 2 {
		return nil, eris.New("stats: buckets need at least two labels")
	}
	if len(xs) == 0 {
		return nil, nil
	}

	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	k := len(labels)
	cuts := make([]float64, k-1)
	for i := 1; i < k; i++ {
		cuts[i-1] = stat.Quantile(float64(i)/float64(k), stat.LinInterp, sorted, nil)
	}

	out := make([]string, len(xs))
	for i, x := range xs {
		// First cut >= x. A value equal to a cut lands in the lower
		// bucket, keeping the bins right-closed.
		idx := sort.SearchFloat64s(cuts, x)
		out[i] = labels[min(idx, k-1)]
	}
	return out, nil
}
