// Package aggregator groups records by key columns and reduces value
// columns with named statistics.
package aggregator

import (
	"github.com/tabshift/tabshift/internal/errors"
	"github.com/tabshift/tabshift/internal/transform/reduce"
	"github.com/tabshift/tabshift/internal/transform/schema"
	"github.com/tabshift/tabshift/pkg/types"
)

// aggPair is one (column, statistic) reduction with its output column name.
type aggPair struct {
	column  string
	stat    reduce.Statistic
	outName string
}

// bucket holds the records sharing one group-key tuple.
type bucket struct {
	keyValues []interface{}
	accs      []*reduce.Accumulator
	rows      int64
}

// Output is the aggregation result: one row per distinct group-key tuple
// in first-seen order.
type Output struct {
	Data    types.Table
	Columns []string
	Groups  int
}

// Aggregate partitions records into buckets keyed by the tuple of group_by
// values (a missing column contributes a null key component) and reduces
// each aggregation column within every bucket. An empty aggregations map
// counts rows per group into a `count` column.
func Aggregate(data types.Table, groupBy []string, aggregations map[string]types.StatisticList) (*Output, error) {
	if len(groupBy) == 0 {
		return nil, errors.Validation(errors.CodeEmptyGroupBy, "group_by must not be empty")
	}

	sch := schema.Infer(data)
	pairs, err := resolvePairs(sch, aggregations)
	if err != nil {
		return nil, err
	}
	if len(aggregations) > 0 && len(pairs) == 0 {
		return nil, errors.Validation(errors.CodeMissingParameter,
			"no valid aggregation functions specified")
	}

	buckets := make(map[string]*bucket)
	var order []string

	for _, rec := range data {
		keyVals := make([]interface{}, len(groupBy))
		for i, col := range groupBy {
			keyVals[i] = rec.Get(col)
		}
		key := types.GroupKey(keyVals)

		b, exists := buckets[key]
		if !exists {
			b = &bucket{keyValues: keyVals}
			for _, p := range pairs {
				b.accs = append(b.accs, reduce.NewAccumulator(p.stat))
			}
			buckets[key] = b
			order = append(order, key)
		}

		b.rows++
		for i, p := range pairs {
			b.accs[i].Add(rec.Get(p.column))
		}
	}

	columns := make([]string, 0, len(groupBy)+len(pairs)+1)
	columns = append(columns, groupBy...)
	if len(pairs) == 0 {
		columns = append(columns, "count")
	} else {
		for _, p := range pairs {
			columns = append(columns, p.outName)
		}
	}

	rows := make(types.Table, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		rec := make(types.Record, len(columns))
		for i, col := range groupBy {
			rec[col] = b.keyValues[i]
		}
		if len(pairs) == 0 {
			rec["count"] = float64(b.rows)
		} else {
			for i, p := range pairs {
				rec[p.outName] = b.accs[i].Result()
			}
		}
		rows = append(rows, rec)
	}

	return &Output{Data: rows, Columns: columns, Groups: len(order)}, nil
}

// resolvePairs validates the aggregations map against the schema and
// flattens it into ordered (column, statistic) pairs. A column with one
// statistic keeps its own name; a column with several gets column_stat
// names. Pair order follows schema column order so output is
// deterministic regardless of map iteration.
func resolvePairs(sch schema.Schema, aggregations map[string]types.StatisticList) ([]aggPair, error) {
	var pairs []aggPair
	for _, col := range sch.Columns {
		stats, ok := aggregations[col]
		if !ok {
			continue
		}
		for _, name := range stats {
			stat, err := reduce.ParseStatistic(name)
			if err != nil {
				return nil, errors.Validation(errors.CodeUnknownStatistic,
					"unknown statistic %q for column %q", name, col)
			}
			outName := col
			if len(stats) > 1 {
				outName = col + "_" + name
			}
			pairs = append(pairs, aggPair{column: col, stat: stat, outName: outName})
		}
	}

	// Anything left over references a column absent from every record.
	for col := range aggregations {
		if !sch.HasColumn(col) {
			return nil, errors.Validation(errors.CodeUnknownColumn,
				"aggregation column %q not found in data", col).WithDetail("column", col)
		}
	}

	return pairs, nil
}
