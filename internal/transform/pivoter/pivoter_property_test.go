package pivoter

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/tabshift/tabshift/internal/transform/aggregator"
	"github.com/tabshift/tabshift/internal/transform/reduce"
	"github.com/tabshift/tabshift/pkg/types"
)

// TestProperty_PivotMatchesAggregate validates the reshape round trip:
// pivoting and aggregating by (index, pivot) reduce the same cells with
// the same statistic, so every filled pivot cell must equal the sum the
// aggregator computes for that (index, pivot) pair, and the filled cell
// count must equal the aggregator's group count.
func TestProperty_PivotMatchesAggregate(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("filled cells reproduce per-group sums", prop.ForAll(
		func(idxKeys []int8, pvtKeys []int8, values []float64) bool {
			n := len(idxKeys)
			if len(pvtKeys) < n {
				n = len(pvtKeys)
			}
			if len(values) < n {
				n = len(values)
			}
			if n == 0 {
				return true
			}

			data := make(types.Table, n)
			for i := 0; i < n; i++ {
				data[i] = types.Record{
					"idx": float64(idxKeys[i]),
					"pvt": float64(pvtKeys[i]),
					"v":   values[i],
				}
			}

			pivoted, err := Pivot(data, "idx", "pvt", "v", reduce.StatSum)
			if err != nil {
				return false
			}

			agg, err := aggregator.Aggregate(data, []string{"idx", "pvt"},
				map[string]types.StatisticList{"v": {"sum"}})
			if err != nil {
				return false
			}

			expected := make(map[string]interface{}, len(agg.Data))
			for _, rec := range agg.Data {
				key := types.CanonicalKey(rec["idx"]) + "|" + types.Stringify(rec["pvt"])
				expected[key] = rec["v"]
			}

			filled := 0
			for _, rec := range pivoted.Data {
				idxKey := types.CanonicalKey(rec["idx"])
				for _, col := range pivoted.Columns[1:] {
					cell := rec[col]
					if cell == nil {
						continue
					}
					filled++
					want, ok := expected[idxKey+"|"+col]
					if !ok || want != cell {
						return false
					}
				}
			}
			return filled == agg.Groups
		},
		gen.SliceOf(gen.Int8()),
		gen.SliceOf(gen.Int8()),
		gen.SliceOf(gen.Float64Range(-1e6, 1e6)),
	))

	properties.TestingRun(t)
}
