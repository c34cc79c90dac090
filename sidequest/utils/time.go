package utils

import (
	"errors"
	"time"
)

const wibLayout = "2006-01-02 15:04"

// wib is the fixed Asia/Jakarta offset; quest times are entered in WIB.
var wib = time.FixedZone("WIB", 7*3600)

var ErrBadTimeFormat = errors.New("wrong time format! Use: YYYY-MM-DD HH:MM (e.g: 2025-11-25 19:30)")

// ParseWIB parses a local "YYYY-MM-DD HH:MM" string as WIB and returns it
// in RFC3339 with the +07:00 offset, the form stored in the sheet.
func ParseWIB(input string) (string, error) {
	t, err := time.ParseInLocation(wibLayout, input, wib)
	if err != nil {
		return "", ErrBadTimeFormat
	}
	return t.Format(time.RFC3339), nil
}

// FormatWIB renders a stored RFC3339 timestamp back in the WIB entry
// format, for prefilled edit forms. Empty or unparseable values come back
// empty.
func FormatWIB(iso string) string {
	if iso == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return ""
	}
	return t.In(wib).Format(wibLayout)
}

// ParseEpoch converts a stored RFC3339 timestamp to epoch seconds.
// Empty or unparseable values return 0, the "unset" sentinel the status
// calculator expects.
func ParseEpoch(iso string) int64 {
	if iso == "" {
		return 0
	}
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return 0
	}
	return t.Unix()
}
