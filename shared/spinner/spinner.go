package spinner

import (
	"time"

	"github.com/briandowns/spinner"
)

// DefaultSuffix is shown while receipts are being parsed.
const DefaultSuffix = " Parsing App Store receipts..."

var loader *spinner.Spinner

// StartSpinner starts the CLI loading spinner. An empty suffix uses DefaultSuffix.
func StartSpinner(suffix string) {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	loader = spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	loader.Color("yellow") //nolint:errcheck
	loader.Suffix = suffix
	loader.Start()
}

// StopSpinner stops the CLI loading spinner.
func StopSpinner() {
	if loader != nil {
		loader.Stop()
		loader = nil
	}
}
