// Package reduce provides the shared statistic reducers used by the
// aggregator, pivoter, and normalizer. Keeping a single set of
// implementations avoids duplicated numeric formulas across components.
package reduce

import (
	"fmt"
	"math"
	"sort"

	"github.com/tabshift/tabshift/pkg/types"
)

// Statistic is a named reduction over a collection of values.
type Statistic string

const (
	StatSum   Statistic = "sum"
	StatMean  Statistic = "mean"
	StatCount Statistic = "count"
	StatMin   Statistic = "min"
	StatMax   Statistic = "max"
	StatStd   Statistic = "std"
)

// Statistics lists the supported statistic names.
func Statistics() []Statistic {
	return []Statistic{StatSum, StatMean, StatCount, StatMin, StatMax, StatStd}
}

// ParseStatistic converts a statistic name to a Statistic.
func ParseStatistic(name string) (Statistic, error) {
	switch Statistic(name) {
	case StatSum, StatMean, StatCount, StatMin, StatMax, StatStd:
		return Statistic(name), nil
	default:
		return "", fmt.Errorf("unknown statistic: %q", name)
	}
}

// Accumulator reduces a stream of scalar values into one statistic.
// Null values are ignored by every statistic. Numeric statistics also
// skip non-numeric values; count counts every non-null value.
//
// Mean and variance use Welford's online algorithm, so a single
// accumulation pass stays numerically stable on large or offset-heavy
// inputs.
type Accumulator struct {
	stat    Statistic
	nonNull int64 // non-null values of any kind (count)
	n       int64 // numeric values
	mean    float64
	m2      float64 // sum of squared deviations from the running mean
	sum     float64
	min     float64
	max     float64
}

// NewAccumulator creates an empty accumulator for the given statistic.
func NewAccumulator(stat Statistic) *Accumulator {
	return &Accumulator{stat: stat}
}

// Add accumulates a single value.
func (a *Accumulator) Add(v interface{}) {
	if v == nil {
		return
	}
	a.nonNull++

	f, ok := types.ToFloat(v)
	if !ok {
		return
	}

	a.n++
	a.sum += f
	if a.n == 1 {
		a.min = f
		a.max = f
	} else {
		if f < a.min {
			a.min = f
		}
		if f > a.max {
			a.max = f
		}
	}

	delta := f - a.mean
	a.mean += delta / float64(a.n)
	a.m2 += delta * (f - a.mean)
}

// Result returns the final value of the statistic, or nil where the
// statistic defines a null fallback: mean/min/max with zero numeric
// values, std with fewer than two. Sum of zero values is 0 and count of
// zero values is 0.
func (a *Accumulator) Result() interface{} {
	switch a.stat {
	case StatSum:
		return a.sum
	case StatCount:
		return float64(a.nonNull)
	case StatMean:
		if a.n == 0 {
			return nil
		}
		return a.mean
	case StatMin:
		if a.n == 0 {
			return nil
		}
		return a.min
	case StatMax:
		if a.n == 0 {
			return nil
		}
		return a.max
	case StatStd:
		if a.n < 2 {
			return nil
		}
		return math.Sqrt(a.m2 / float64(a.n-1))
	}
	return nil
}

// Two-pass reductions over collected numeric values, used by the
// normalizer which must compute column statistics before rewriting any
// cell.

// Sum returns the sum of xs.
func Sum(xs []float64) float64 {
	var total float64
	for _, x := range xs {
		total += x
	}
	return total
}

// Mean returns the arithmetic mean of xs; false when xs is empty.
func Mean(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	return Sum(xs) / float64(len(xs)), true
}

// Min returns the smallest value in xs; false when xs is empty.
func Min(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m, true
}

// Max returns the largest value in xs; false when xs is empty.
func Max(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m, true
}

// PopulationStd returns the population standard deviation (divide by n);
// false when xs is empty.
func PopulationStd(xs []float64) (float64, bool) {
	m2, n, ok := sumSquaredDeviations(xs)
	if !ok {
		return 0, false
	}
	return math.Sqrt(m2 / float64(n)), true
}

// SampleStd returns the sample standard deviation (divide by n-1);
// false when xs has fewer than two values.
func SampleStd(xs []float64) (float64, bool) {
	m2, n, ok := sumSquaredDeviations(xs)
	if !ok || n < 2 {
		return 0, false
	}
	return math.Sqrt(m2 / float64(n-1)), true
}

func sumSquaredDeviations(xs []float64) (m2 float64, n int, ok bool) {
	if len(xs) == 0 {
		return 0, 0, false
	}
	var mean float64
	for i, x := range xs {
		delta := x - mean
		mean += delta / float64(i+1)
		m2 += delta * (x - mean)
	}
	return m2, len(xs), true
}

// Median returns the median of xs; false when xs is empty.
func Median(xs []float64) (float64, bool) {
	return Quantile(xs, 0.5)
}

// Quantile returns the q-quantile of xs (0 <= q <= 1) using linear
// interpolation between closest ranks; false when xs is empty.
func Quantile(xs []float64, q float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	if q < 0 {
		q = 0
	}
	if q > 1 {
		q = 1
	}

	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo], true
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac, true
}
