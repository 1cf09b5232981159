// Package normalizer rescales numeric columns in place using one of
// three statistical methods: min_max, z_score, or robust.
package normalizer

import (
	"fmt"

	"github.com/tabshift/tabshift/internal/errors"
	"github.com/tabshift/tabshift/internal/transform/reduce"
	"github.com/tabshift/tabshift/internal/transform/schema"
	"github.com/tabshift/tabshift/pkg/types"
)

// Method selects the rescaling formula.
type Method string

const (
	MethodMinMax Method = "min_max"
	MethodZScore Method = "z_score"
	MethodRobust Method = "robust"
)

// Methods lists the supported normalization methods.
func Methods() []Method {
	return []Method{MethodMinMax, MethodZScore, MethodRobust}
}

// ParseMethod validates a normalization method name.
func ParseMethod(name string) (Method, error) {
	switch Method(name) {
	case MethodMinMax, MethodZScore, MethodRobust:
		return Method(name), nil
	default:
		return "", fmt.Errorf("unknown normalization method: %q", name)
	}
}

// ColumnStats reports per-column statistics before and after rescaling.
type ColumnStats struct {
	OriginalMean   float64 `json:"original_mean"`
	OriginalStd    float64 `json:"original_std"`
	NormalizedMean float64 `json:"normalized_mean"`
	NormalizedStd  float64 `json:"normalized_std"`
}

// Output is the normalization result: the full table with only the
// requested columns rescaled, plus per-column statistics.
type Output struct {
	Data    types.Table
	Columns []string
	Stats   map[string]ColumnStats
}

// Normalize returns a new table with the listed columns rescaled by the
// given method. Null and non-numeric cells in a normalized column pass
// through unchanged; all other columns and the row count are untouched.
// Column statistics are computed in a first pass over all non-null
// numeric values before any cell is rewritten.
func Normalize(data types.Table, columns []string, method Method) (*Output, error) {
	sch := schema.Infer(data)

	values := make(map[string][]float64, len(columns))
	for _, col := range columns {
		if !sch.HasColumn(col) {
			return nil, errors.Validation(errors.CodeUnknownColumn,
				"column %q not found in data", col).WithDetail("column", col)
		}
		var xs []float64
		for _, rec := range data {
			if f, ok := types.ToFloat(rec.Get(col)); ok {
				xs = append(xs, f)
			}
		}
		if len(xs) == 0 {
			return nil, errors.Validation(errors.CodeNonNumericColumn,
				"column %q contains no numeric values", col).WithDetail("column", col)
		}
		values[col] = xs
	}

	out := data.Clone()
	stats := make(map[string]ColumnStats, len(columns))

	for _, col := range columns {
		xs := values[col]
		rescale, err := scaler(method, xs)
		if err != nil {
			return nil, err
		}

		var normalized []float64
		for _, rec := range out {
			f, ok := types.ToFloat(rec.Get(col))
			if !ok {
				continue
			}
			v := rescale(f)
			rec[col] = v
			normalized = append(normalized, v)
		}

		stats[col] = columnStats(xs, normalized)
	}

	return &Output{Data: out, Columns: sch.Columns, Stats: stats}, nil
}

// scaler builds the rescaling function for one column from its collected
// numeric values. Zero spread (max==min, std==0, or IQR==0) maps every
// value to 0 instead of dividing by zero.
func scaler(method Method, xs []float64) (func(float64) float64, error) {
	switch method {
	case MethodMinMax:
		lo, _ := reduce.Min(xs)
		hi, _ := reduce.Max(xs)
		spread := hi - lo
		if spread == 0 {
			return zero, nil
		}
		return func(x float64) float64 { return (x - lo) / spread }, nil

	case MethodZScore:
		mean, _ := reduce.Mean(xs)
		std, _ := reduce.PopulationStd(xs)
		if std == 0 {
			return zero, nil
		}
		return func(x float64) float64 { return (x - mean) / std }, nil

	case MethodRobust:
		median, _ := reduce.Median(xs)
		q1, _ := reduce.Quantile(xs, 0.25)
		q3, _ := reduce.Quantile(xs, 0.75)
		iqr := q3 - q1
		if iqr == 0 {
			return zero, nil
		}
		return func(x float64) float64 { return (x - median) / iqr }, nil

	default:
		return nil, errors.Validation(errors.CodeUnknownMethod,
			"unknown normalization method: %q", method)
	}
}

func zero(float64) float64 { return 0 }

func columnStats(original, normalized []float64) ColumnStats {
	var cs ColumnStats
	cs.OriginalMean, _ = reduce.Mean(original)
	cs.OriginalStd, _ = reduce.SampleStd(original)
	cs.NormalizedMean, _ = reduce.Mean(normalized)
	cs.NormalizedStd, _ = reduce.SampleStd(normalized)
	return cs
}
