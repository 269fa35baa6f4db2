package model

// Flags represents the command line flags of a parse run.
type Flags struct {
	Receipts    []string
	Version     bool
	Output      string
	OutputFile  string
	Store       bool
	DBPath      string
	Concurrency int
	ConfigPath  string
	LogLevel    string
	Verbose     bool
	Profile     string
	Region      string
	Endpoint    string
	NoBanner    bool
}
