package flag

import (
	"os"
	"testing"

	"github.com/spf13/pflag"
)

func resetFlagState(t *testing.T, args []string) func() {
	t.Helper()
	oldCommandLine := pflag.CommandLine
	oldArgs := os.Args
	pflag.CommandLine = pflag.NewFlagSet("test", pflag.ContinueOnError)
	os.Args = append([]string{"receipt-parser"}, args...)
	return func() {
		pflag.CommandLine = oldCommandLine
		os.Args = oldArgs
	}
}

func TestGetParsedFlagsAllOptions(t *testing.T) {
	cleanup := resetFlagState(t, []string{
		"--receipt", "a.bin",
		"-i", "s3://bucket/b.bin",
		"--output", "html",
		"--output-file", "report.html",
		"--store",
		"--db-path", "/tmp/history.db",
		"--concurrency", "8",
		"--config-path", "/tmp/config.yaml",
		"--log-level", "debug",
		"--verbose",
		"--profile", "prod",
		"--region", "eu-west-1",
		"--endpoint", "http://localhost:9000",
		"--no-banner",
		"c.bin",
		"-",
	})
	defer cleanup()

	svc := NewService()
	flags, err := svc.GetParsedFlags()
	if err != nil {
		t.Fatalf("GetParsedFlags failed: %v", err)
	}

	want := []string{"a.bin", "s3://bucket/b.bin", "c.bin", "-"}
	if len(flags.Receipts) != len(want) {
		t.Fatalf("unexpected receipts: %v", flags.Receipts)
	}
	for i := range want {
		if flags.Receipts[i] != want[i] {
			t.Fatalf("unexpected receipts: %v", flags.Receipts)
		}
	}
	if flags.Output != "html" || flags.OutputFile != "report.html" {
		t.Fatalf("unexpected output flags: %+v", flags)
	}
	if !flags.Store || flags.DBPath != "/tmp/history.db" || flags.Concurrency != 8 {
		t.Fatalf("unexpected storage flags: %+v", flags)
	}
	if flags.ConfigPath != "/tmp/config.yaml" || flags.LogLevel != "debug" || !flags.Verbose {
		t.Fatalf("unexpected config flags: %+v", flags)
	}
	if flags.Profile != "prod" || flags.Region != "eu-west-1" || flags.Endpoint != "http://localhost:9000" {
		t.Fatalf("unexpected aws flags: %+v", flags)
	}
	if !flags.NoBanner || flags.Version {
		t.Fatalf("unexpected banner/version flags: %+v", flags)
	}
}

func TestGetParsedFlagsDefaults(t *testing.T) {
	cleanup := resetFlagState(t, nil)
	defer cleanup()

	svc := NewService()
	flags, err := svc.GetParsedFlags()
	if err != nil {
		t.Fatalf("GetParsedFlags failed: %v", err)
	}

	if flags.Output != "table" || flags.Concurrency != 0 || flags.Store {
		t.Fatalf("unexpected defaults: %+v", flags)
	}
	if len(flags.Receipts) != 0 {
		t.Fatalf("unexpected receipts: %v", flags.Receipts)
	}
}

func TestGetParsedFlagsVersion(t *testing.T) {
	cleanup := resetFlagState(t, []string{"-v"})
	defer cleanup()

	flags, err := NewService().GetParsedFlags()
	if err != nil {
		t.Fatalf("GetParsedFlags failed: %v", err)
	}
	if !flags.Version {
		t.Fatalf("expected version flag")
	}
}
