// Package source loads datasets into tables from files, databases, and
// object storage so they can be fed to the transformation engine.
package source

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tabshift/tabshift/internal/errors"
	"github.com/tabshift/tabshift/pkg/types"
)

// Source loads a dataset as a table of records.
type Source interface {
	// Load reads the full dataset. Row order follows the underlying
	// source.
	Load(ctx context.Context) (types.Table, error)
}

// decodeTable parses a JSON document holding either a bare array of
// records or an object with a "data" key.
func decodeTable(raw []byte) (types.Table, error) {
	var table types.Table
	if err := json.Unmarshal(raw, &table); err == nil {
		return table, nil
	}

	var wrapped struct {
		Data types.Table `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, errors.Source(errors.CodeLoadFailed, "dataset is not a JSON record array", err)
	}
	if wrapped.Data == nil {
		return nil, errors.Source(errors.CodeLoadFailed, "dataset is not a JSON record array", nil)
	}
	return wrapped.Data, nil
}

// normalizeDBValue converts driver-specific scan values into the JSON
// value kinds the engine works with.
func normalizeDBValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(val)
	case int64:
		return float64(val)
	case int32:
		return float64(val)
	case int:
		return float64(val)
	case float32:
		return float64(val)
	default:
		return val
	}
}

// rowsToTable builds records from column names and row value tuples.
func rowsToTable(columns []string, rows [][]interface{}) types.Table {
	table := make(types.Table, 0, len(rows))
	for _, row := range rows {
		rec := make(types.Record, len(columns))
		for i, col := range columns {
			if i < len(row) {
				rec[col] = normalizeDBValue(row[i])
			}
		}
		table = append(table, rec)
	}
	return table
}

// loadErr wraps a backend failure as a source error.
func loadErr(what string, err error) error {
	return errors.Source(errors.CodeLoadFailed, fmt.Sprintf("failed to load %s", what), err)
}
