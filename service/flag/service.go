package flag

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/thirukguru/receipt-parser/model"
)

// NewService creates a new flag service.
func NewService() Service {
	return &service{}
}

// GetParsedFlags parses and returns the command-line flags. Positional arguments are
// receipt references, as are repeated --receipt values.
func (s *service) GetParsedFlags() (model.Flags, error) {
	receipts := pflag.StringSliceP("receipt", "i", nil, "Receipt file, s3://bucket/key or - for stdin (repeatable)")
	version := pflag.BoolP("version", "v", false, "Show version information")
	output := pflag.StringP("output", "o", "table", "Output format (table, json, or html)")
	outputFile := pflag.StringP("output-file", "f", "", "Output file path for html format (default reports/receipt-report_<time>.html)")
	store := pflag.Bool("store", false, "Persist parsed receipts in local SQLite database")
	dbPath := pflag.String("db-path", "", "Custom SQLite database path (default ~/.receipt-parser/history.db)")
	concurrency := pflag.IntP("concurrency", "c", 0, "Receipts parsed in parallel (default from config)")
	configPath := pflag.String("config-path", "", "Path to receipt-parser config file")
	logLevel := pflag.String("log-level", "", "Log level (verbose, debug, info, warn, error)")
	verbose := pflag.Bool("verbose", false, "Include caller file and function in logs")
	profile := pflag.StringP("profile", "p", "", "AWS profile used for s3:// receipts")
	region := pflag.StringP("region", "r", "", "AWS region used for s3:// receipts")
	endpoint := pflag.String("endpoint", "", "Custom S3 endpoint URL")
	noBanner := pflag.Bool("no-banner", false, "Do not print the title banner")

	pflag.Parse()

	var refs []string
	for _, r := range append(*receipts, pflag.Args()...) {
		r = strings.TrimSpace(r)
		if r != "" {
			refs = append(refs, r)
		}
	}

	flags := model.Flags{
		Receipts:    refs,
		Version:     *version,
		Output:      *output,
		OutputFile:  *outputFile,
		Store:       *store,
		DBPath:      *dbPath,
		Concurrency: *concurrency,
		ConfigPath:  *configPath,
		LogLevel:    *logLevel,
		Verbose:     *verbose,
		Profile:     *profile,
		Region:      *region,
		Endpoint:    *endpoint,
		NoBanner:    *noBanner,
	}

	return flags, nil
}
