// Package version exposes the build-time version symbols of receipt-parser.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Set via -ldflags "-X github.com/thirukguru/receipt-parser/version.Version=..." at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Number is the numeric project version (major.minor), 0 for dev builds. The minor
// component is read as a decimal fraction, so "4.10" and "4.1" both yield 4.1; compare
// Version when the distinction matters.
var Number = parseNumber(Version)

// String is the human-readable project version string.
var String = fmt.Sprintf("%s (%s, %s)", Version, Commit, Date)

func parseNumber(v string) float64 {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	parts := strings.SplitN(v, ".", 3)
	if len(parts) == 0 || parts[0] == "" {
		return 0
	}
	numeric := parts[0]
	if len(parts) > 1 {
		minor := strings.TrimRightFunc(parts[1], func(r rune) bool { return r < '0' || r > '9' })
		if minor != "" {
			numeric += "." + minor
		}
	}
	n, err := strconv.ParseFloat(numeric, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
