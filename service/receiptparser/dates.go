package receiptparser

import (
	"strings"
	"time"
)

// decodeDate reads an RFC 3339 date string. Empty dates decode to nil.
func decodeDate(value []byte) (*time.Time, error) {
	s, err := decodeString(value)
	if err != nil {
		return nil, err
	}
	return parseDate(s)
}

func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	// time.RFC3339 also accepts fractional seconds when parsing
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, newError(InvalidDate, err, "%q", s)
	}
	t = t.UTC()
	return &t, nil
}
