// Package main is the entry point for the receipt-parser application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/thirukguru/receipt-parser/model"
	"github.com/thirukguru/receipt-parser/service/config"
	"github.com/thirukguru/receipt-parser/service/flag"
	"github.com/thirukguru/receipt-parser/service/orchestrator"
	"github.com/thirukguru/receipt-parser/service/output"
	"github.com/thirukguru/receipt-parser/shared/logger"
	"github.com/thirukguru/receipt-parser/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "db", "history", "serve", "customer", "config", "version":
			return runSubcommand(ctx, os.Args[1], os.Args[2:])
		}
	}

	flagService := flag.NewService()
	flags, err := flagService.GetParsedFlags()
	if err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	if flags.Version {
		return runVersion(ctx, flags.Output)
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg, flags)

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	logger.SetDefault(log)
	defer log.Sync() //nolint:errcheck

	return runParse(ctx, flags, cfg, log)
}

func versionInfo() model.VersionInfo {
	return model.VersionInfo{
		Version: version.Version,
		Number:  version.Number,
		String:  version.String,
		Commit:  version.Commit,
		Date:    version.Date,
	}
}

func runVersion(ctx context.Context, format string) error {
	outputService := output.NewService(format, "")
	orchestratorService := orchestrator.NewService(nil, nil, nil, outputService, versionInfo(), nil)
	return orchestratorService.Orchestrate(ctx, model.Flags{Version: true})
}

// applyFlagOverrides lets explicit command-line flags win over the config file.
func applyFlagOverrides(cfg *config.Config, flags model.Flags) {
	if flags.DBPath != "" {
		cfg.DBPath = flags.DBPath
	}
	if flags.Concurrency > 0 {
		cfg.Concurrency = flags.Concurrency
	}
	if flags.LogLevel != "" {
		cfg.LogLevel = flags.LogLevel
	}
	if flags.Verbose {
		cfg.Verbose = true
	}
	if flags.Profile != "" {
		cfg.AWS.Profile = flags.Profile
	}
	if flags.Region != "" {
		cfg.AWS.Region = flags.Region
	}
	if flags.Endpoint != "" {
		cfg.AWS.Endpoint = flags.Endpoint
	}
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	return logger.New(logger.Config{Level: level, Verbose: cfg.Verbose, JSON: cfg.LogJSON, Output: os.Stderr}), nil
}
