// Package storage provides object storage abstractions for fetching
// dataset objects.
package storage

import (
	"context"
	"errors"
)

// Common errors for storage operations.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrFetchFailed    = errors.New("fetch failed")
	ErrPutFailed      = errors.New("put failed")
)

// ObjectFetcher abstracts read access to object storage holding
// datasets. Implementations include S3 and the local filesystem.
type ObjectFetcher interface {
	// Fetch reads the full content of an object.
	// Returns ErrObjectNotFound if the object does not exist.
	Fetch(ctx context.Context, objectPath string) ([]byte, error)

	// Exists checks if an object exists in storage.
	Exists(ctx context.Context, objectPath string) (bool, error)
}

// ObjectStore extends ObjectFetcher with write access, used by the CLI
// to publish transformed datasets.
type ObjectStore interface {
	ObjectFetcher

	// Put writes the full content of an object, replacing any existing
	// object at that path.
	Put(ctx context.Context, objectPath string, data []byte) error
}
