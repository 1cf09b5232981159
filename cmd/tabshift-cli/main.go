// Package main implements the tabshift command line tool. It loads a
// dataset from a file, database, or object storage, runs one
// transformation, and writes the result.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/tabshift/tabshift/internal/source"
	"github.com/tabshift/tabshift/internal/storage"
	"github.com/tabshift/tabshift/internal/transform"
	"github.com/tabshift/tabshift/pkg/types"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		input       string
		query       string
		transType   string
		paramsJSON  string
		output      string
		compress    bool
		s3Region    string
		s3Endpoint  string
		timeout     time.Duration
		showVersion bool
	)

	flag.StringVar(&input, "input", "", "Dataset location: file path, sqlite:PATH, postgres://DSN, or s3://bucket/key")
	flag.StringVar(&query, "query", "", "SQL query for database inputs")
	flag.StringVar(&transType, "type", "", "Transformation type: aggregate, filter, normalize, pivot")
	flag.StringVar(&paramsJSON, "params", "{}", "Transformation parameters as JSON")
	flag.StringVar(&output, "output", "", "Result destination: file path or s3://bucket/key (default stdout)")
	flag.BoolVar(&compress, "compress", false, "Snappy-compress the output")
	flag.StringVar(&s3Region, "s3-region", "", "AWS region for s3:// inputs and outputs")
	flag.StringVar(&s3Endpoint, "s3-endpoint", "", "Custom S3 endpoint (MinIO, LocalStack)")
	flag.DurationVar(&timeout, "timeout", time.Minute, "Overall operation timeout")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "tabshift-cli - Run one table transformation from the command line\n\n")
		fmt.Fprintf(os.Stderr, "Usage: tabshift-cli -input DATASET -type TYPE -params JSON [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  tabshift-cli -input sales.json -type aggregate -params '{\"group_by\":[\"region\"],\"aggregations\":{\"amount\":\"sum\"}}'\n")
		fmt.Fprintf(os.Stderr, "  tabshift-cli -input sqlite:warehouse.db -query 'SELECT * FROM sales' -type filter -params '{\"conditions\":[{\"field\":\"amount\",\"operator\":\"gt\",\"value\":100}]}'\n")
		fmt.Fprintf(os.Stderr, "  tabshift-cli -input s3://datasets/sales.json.snappy -type normalize -params '{\"columns\":[\"amount\"]}' -output result.json\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("tabshift-cli version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	if input == "" || transType == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := run(ctx, input, query, transType, paramsJSON, output, compress, s3Region, s3Endpoint); err != nil {
		log.Fatalf("tabshift-cli: %v", err)
	}
}

func run(ctx context.Context, input, query, transType, paramsJSON, output string, compress bool, s3Region, s3Endpoint string) error {
	src, err := buildSource(ctx, input, query, s3Region, s3Endpoint)
	if err != nil {
		return err
	}

	data, err := src.Load(ctx)
	if err != nil {
		return err
	}

	t, err := types.ParseTransformationType(transType)
	if err != nil {
		return err
	}
	params, err := types.DecodeParameters(t, json.RawMessage(paramsJSON))
	if err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}

	result, err := transform.Execute(types.TransformationRequest{
		Data:   data,
		Type:   t,
		Params: params,
	})
	if err != nil {
		return err
	}

	log.Printf("%s: %d rows in, %d rows out (%.2fms)",
		t, len(data), len(result.Data), result.ProcessingTimeMS)

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	encoded = append(encoded, '\n')

	return writeOutput(ctx, output, encoded, compress, s3Region, s3Endpoint)
}

// buildSource picks a dataset loader from the input location syntax.
func buildSource(ctx context.Context, input, query, s3Region, s3Endpoint string) (source.Source, error) {
	switch {
	case strings.HasPrefix(input, "sqlite:"):
		if query == "" {
			return nil, fmt.Errorf("sqlite input requires -query")
		}
		return source.NewSQLiteSource(strings.TrimPrefix(input, "sqlite:"), query), nil

	case strings.HasPrefix(input, "postgres://") || strings.HasPrefix(input, "postgresql://"):
		if query == "" {
			return nil, fmt.Errorf("postgres input requires -query")
		}
		return source.NewPostgresSource(input, query), nil

	case strings.HasPrefix(input, "s3://"):
		bucket, key, err := splitS3URL(input)
		if err != nil {
			return nil, err
		}
		store, err := storage.NewS3Store(ctx, bucket, storage.S3Config{
			Region:       s3Region,
			Endpoint:     s3Endpoint,
			UsePathStyle: s3Endpoint != "",
		})
		if err != nil {
			return nil, err
		}
		return source.NewObjectSource(store, key), nil

	default:
		return source.NewFileSource(input), nil
	}
}

// writeOutput sends the encoded result to stdout, a local file, or S3.
func writeOutput(ctx context.Context, output string, encoded []byte, compress bool, s3Region, s3Endpoint string) error {
	if compress || strings.HasSuffix(output, ".snappy") {
		encoded = source.EncodeSnappy(encoded)
	}

	switch {
	case output == "":
		_, err := os.Stdout.Write(encoded)
		return err

	case strings.HasPrefix(output, "s3://"):
		bucket, key, err := splitS3URL(output)
		if err != nil {
			return err
		}
		store, err := storage.NewS3Store(ctx, bucket, storage.S3Config{
			Region:       s3Region,
			Endpoint:     s3Endpoint,
			UsePathStyle: s3Endpoint != "",
		})
		if err != nil {
			return err
		}
		return store.Put(ctx, key, encoded)

	default:
		return os.WriteFile(output, encoded, 0644)
	}
}

func splitS3URL(raw string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(raw, "s3://")
	idx := strings.Index(rest, "/")
	if idx <= 0 || idx == len(rest)-1 {
		return "", "", fmt.Errorf("invalid s3 URL %q, want s3://bucket/key", raw)
	}
	return rest[:idx], rest[idx+1:], nil
}
