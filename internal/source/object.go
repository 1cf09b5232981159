package source

import (
	"context"
	"strings"

	"github.com/golang/snappy"
	"github.com/tabshift/tabshift/internal/storage"
	"github.com/tabshift/tabshift/pkg/types"
)

// ObjectSource loads a dataset from object storage. Objects with a
// .snappy suffix are decompressed before parsing.
type ObjectSource struct {
	Fetcher storage.ObjectFetcher
	Path    string
}

// NewObjectSource creates a source backed by an object fetcher.
func NewObjectSource(fetcher storage.ObjectFetcher, path string) *ObjectSource {
	return &ObjectSource{Fetcher: fetcher, Path: path}
}

// Load fetches and parses the object.
func (o *ObjectSource) Load(ctx context.Context) (types.Table, error) {
	raw, err := o.Fetcher.Fetch(ctx, o.Path)
	if err != nil {
		return nil, loadErr(o.Path, err)
	}

	if strings.HasSuffix(o.Path, ".snappy") {
		raw, err = snappy.Decode(nil, raw)
		if err != nil {
			return nil, loadErr(o.Path, err)
		}
	}

	return decodeTable(raw)
}
