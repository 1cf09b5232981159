package source

import (
	"context"
	"os"
	"strings"

	"github.com/golang/snappy"
	"github.com/tabshift/tabshift/pkg/types"
)

// FileSource loads a dataset from a JSON file on the local filesystem.
// Files with a .snappy extension are decompressed before parsing.
type FileSource struct {
	Path string
}

// NewFileSource creates a file source for the given path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Load reads and parses the file.
func (f *FileSource) Load(ctx context.Context) (types.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, loadErr(f.Path, err)
	}

	if strings.HasSuffix(f.Path, ".snappy") {
		raw, err = snappy.Decode(nil, raw)
		if err != nil {
			return nil, loadErr(f.Path, err)
		}
	}

	return decodeTable(raw)
}

// EncodeSnappy compresses a serialized dataset for compact storage.
func EncodeSnappy(data []byte) []byte {
	return snappy.Encode(nil, data)
}
