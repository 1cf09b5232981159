package source

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/tabshift/tabshift/pkg/types"
)

// SQLiteSource loads a dataset by running a query against a SQLite
// database file.
type SQLiteSource struct {
	Path  string
	Query string
}

// NewSQLiteSource creates a SQLite source.
func NewSQLiteSource(path, query string) *SQLiteSource {
	return &SQLiteSource{Path: path, Query: query}
}

// Load opens the database, runs the query, and converts the result set
// into a table.
func (s *SQLiteSource) Load(ctx context.Context) (types.Table, error) {
	db, err := sql.Open("sqlite3", s.Path)
	if err != nil {
		return nil, loadErr(s.Path, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, s.Query)
	if err != nil {
		return nil, loadErr(s.Path, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, loadErr(s.Path, err)
	}

	var tuples [][]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, loadErr(s.Path, err)
		}
		tuples = append(tuples, values)
	}
	if err := rows.Err(); err != nil {
		return nil, loadErr(s.Path, err)
	}

	return rowsToTable(columns, tuples), nil
}
