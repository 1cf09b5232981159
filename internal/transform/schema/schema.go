// Package schema derives column names and numeric-column detection from a
// record set. Schemas are inferred per request and never stored.
package schema

import (
	"sort"

	"github.com/tabshift/tabshift/pkg/types"
)

// Schema describes the columns of a table: their first-seen order and
// which of them hold numeric values.
type Schema struct {
	// Columns lists every column name appearing in the table, in the
	// order each was first seen while scanning records top to bottom.
	Columns []string

	numeric map[string]bool
	present map[string]bool
}

// Infer scans a table and derives its schema. A column counts as numeric
// when it has at least one non-null occurrence and every non-null
// occurrence is numeric.
func Infer(data types.Table) Schema {
	s := Schema{
		numeric: make(map[string]bool),
		present: make(map[string]bool),
	}

	// nonNull tracks whether a numeric verdict is backed by actual values:
	// a column that is null everywhere is not numeric.
	nonNull := make(map[string]bool)

	for _, rec := range data {
		// Go maps do not preserve insertion order, so column order is
		// made deterministic by sorting within each record; across
		// records it remains first-seen.
		cols := make([]string, 0, len(rec))
		for col := range rec {
			cols = append(cols, col)
		}
		sort.Strings(cols)

		for _, col := range cols {
			v := rec[col]
			if !s.present[col] {
				s.present[col] = true
				s.numeric[col] = true
				s.Columns = append(s.Columns, col)
			}
			if v == nil {
				continue
			}
			nonNull[col] = true
			if !types.IsNumeric(v) {
				s.numeric[col] = false
			}
		}
	}

	for col := range s.numeric {
		if !nonNull[col] {
			s.numeric[col] = false
		}
	}

	return s
}

// HasColumn reports whether the column appears in any record.
func (s Schema) HasColumn(name string) bool {
	return s.present[name]
}

// IsNumeric reports whether the column is numeric across all of its
// non-null occurrences.
func (s Schema) IsNumeric(name string) bool {
	return s.numeric[name]
}

// NumericColumns returns the numeric columns in schema order.
func (s Schema) NumericColumns() []string {
	var cols []string
	for _, c := range s.Columns {
		if s.numeric[c] {
			cols = append(cols, c)
		}
	}
	return cols
}
