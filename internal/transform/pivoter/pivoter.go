// Package pivoter reshapes long-form records into a wide table keyed by
// an index column and a spread column.
package pivoter

import (
	"github.com/tabshift/tabshift/internal/errors"
	"github.com/tabshift/tabshift/internal/transform/reduce"
	"github.com/tabshift/tabshift/internal/transform/schema"
	"github.com/tabshift/tabshift/pkg/types"
)

// Output is the pivot result: one row per distinct index value, one
// column per distinct pivot value (plus the index column itself), both
// in first-seen order.
type Output struct {
	Data    types.Table
	Columns []string
}

// Pivot groups records by (index value, pivot value), reduces each
// group's values column with the statistic, and spreads the pivot
// values into columns. A cell whose (index, pivot) combination never
// occurred in the input is null. Records with a null index or pivot
// value do not participate. A pivot value whose string form matches the
// index column name would clobber the index cell and is rejected.
func Pivot(data types.Table, index, pivotColumns, values string, aggfunc reduce.Statistic) (*Output, error) {
	sch := schema.Infer(data)
	for _, col := range []string{index, pivotColumns, values} {
		if !sch.HasColumn(col) {
			return nil, errors.Validation(errors.CodeUnknownColumn,
				"column %q not found in data", col).WithDetail("column", col)
		}
	}
	if aggfunc == reduce.StatStd {
		return nil, errors.Validation(errors.CodeUnknownStatistic,
			"statistic %q is not supported for pivot", aggfunc)
	}

	type indexRow struct {
		value interface{}
		cells map[string]*reduce.Accumulator // pivot column name → cell accumulator
	}

	rowsByKey := make(map[string]*indexRow)
	var rowOrder []string

	seenPivot := make(map[string]bool)
	var pivotOrder []string

	for _, rec := range data {
		idxVal := rec.Get(index)
		pvtVal := rec.Get(pivotColumns)
		if idxVal == nil || pvtVal == nil {
			continue
		}

		idxKey := types.CanonicalKey(idxVal)
		row, ok := rowsByKey[idxKey]
		if !ok {
			row = &indexRow{value: idxVal, cells: make(map[string]*reduce.Accumulator)}
			rowsByKey[idxKey] = row
			rowOrder = append(rowOrder, idxKey)
		}

		colName := types.Stringify(pvtVal)
		if colName == index {
			return nil, errors.Validation(errors.CodeColumnCollision,
				"pivot value %q collides with the index column name", colName)
		}
		if !seenPivot[colName] {
			seenPivot[colName] = true
			pivotOrder = append(pivotOrder, colName)
		}

		acc, ok := row.cells[colName]
		if !ok {
			acc = reduce.NewAccumulator(aggfunc)
			row.cells[colName] = acc
		}
		acc.Add(rec.Get(values))
	}

	columns := make([]string, 0, len(pivotOrder)+1)
	columns = append(columns, index)
	columns = append(columns, pivotOrder...)

	out := make(types.Table, 0, len(rowOrder))
	for _, idxKey := range rowOrder {
		row := rowsByKey[idxKey]
		rec := make(types.Record, len(columns))
		rec[index] = row.value
		for _, colName := range pivotOrder {
			if acc, ok := row.cells[colName]; ok {
				rec[colName] = acc.Result()
			} else {
				rec[colName] = nil
			}
		}
		out = append(out, rec)
	}

	return &Output{Data: out, Columns: columns}, nil
}
