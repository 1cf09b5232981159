// Package types provides core data types for the tabshift engine.
package types

// Record represents a single data row: a mapping from column name to a
// scalar value. After JSON decoding, values are float64, string, bool,
// or nil. Records in one table need not share identical column sets;
// transformations that reference a missing column treat it as null.
type Record map[string]interface{}

// Table is an ordered sequence of records.
type Table []Record

// Get returns the value for column, or nil when the column is absent.
func (r Record) Get(column string) interface{} {
	return r[column]
}

// Has reports whether the record carries an entry for column,
// even if that entry is null.
func (r Record) Has(column string) bool {
	_, ok := r[column]
	return ok
}

// Clone returns a copy of the record.
func (r Record) Clone() Record {
	cp := make(Record, len(r))
	for k, v := range r {
		cp[k] = v
	}
	return cp
}

// Clone returns a deep copy of the table: each record is copied so the
// caller can rewrite cells without mutating the original.
func (t Table) Clone() Table {
	cp := make(Table, len(t))
	for i, r := range t {
		cp[i] = r.Clone()
	}
	return cp
}
