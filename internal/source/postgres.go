package source

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tabshift/tabshift/pkg/types"
)

// PostgresSource loads a dataset by running a query against a Postgres
// database using pgx v5.
type PostgresSource struct {
	DSN   string
	Query string
}

// NewPostgresSource creates a Postgres source.
func NewPostgresSource(dsn, query string) *PostgresSource {
	return &PostgresSource{DSN: dsn, Query: query}
}

// Load connects, runs the query, and converts the result set into a
// table. The pool is closed before returning.
func (p *PostgresSource) Load(ctx context.Context) (types.Table, error) {
	pool, err := pgxpool.New(ctx, p.DSN)
	if err != nil {
		return nil, loadErr("postgres", err)
	}
	defer pool.Close()

	rows, err := pool.Query(ctx, p.Query)
	if err != nil {
		return nil, loadErr("postgres", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	var tuples [][]interface{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, loadErr("postgres", err)
		}
		tuples = append(tuples, values)
	}
	if err := rows.Err(); err != nil {
		return nil, loadErr("postgres", err)
	}

	return rowsToTable(columns, tuples), nil
}
