// Package main implements the tabshift HTTP service binary.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/tabshift/tabshift/internal/app"
	"github.com/tabshift/tabshift/internal/config"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		configFile  string
		addr        string
		maxRows     int
		concurrency int
		showVersion bool
		showHelp    bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&addr, "addr", "", "HTTP listen address")
	flag.IntVar(&maxRows, "max-rows", 0, "Maximum rows accepted per request")
	flag.IntVar(&concurrency, "batch-concurrency", 0, "Parallel batch item limit")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showHelp, "help", false, "Show help message")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "tabshift - In-Memory Table Transformation Service\n\n")
		fmt.Fprintf(os.Stderr, "Usage: tabshift [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  tabshift --addr :8080\n")
		fmt.Fprintf(os.Stderr, "  tabshift --config /etc/tabshift/config.yaml\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  TABSHIFT_HTTP_ADDR          HTTP listen address\n")
		fmt.Fprintf(os.Stderr, "  TABSHIFT_MAX_ROWS           Maximum rows accepted per request\n")
		fmt.Fprintf(os.Stderr, "  TABSHIFT_BATCH_CONCURRENCY  Parallel batch item limit\n")
		fmt.Fprintf(os.Stderr, "  TABSHIFT_STATS_WINDOW       Usage statistics retention window\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("tabshift version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	cfg, err := loadConfig(configFile, addr, maxRows, concurrency)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	application, err := app.New(cfg, version)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	if err := application.Run(context.Background()); err != nil {
		log.Printf("Shutdown error: %v", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration from file, environment, and command line flags.
func loadConfig(configFile, addr string, maxRows, concurrency int) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	config.LoadFromEnv(cfg)

	// Command line flags take highest priority
	if addr != "" {
		cfg.HTTP.Addr = addr
	}
	if maxRows > 0 {
		cfg.Engine.MaxRows = maxRows
	}
	if concurrency > 0 {
		cfg.Engine.BatchConcurrency = concurrency
	}

	return cfg, nil
}
