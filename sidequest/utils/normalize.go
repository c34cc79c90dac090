package utils

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName folds a community name for duplicate display checks:
// trim, NFKC normalize, lowercase.
func NormalizeName(s string) string {
	return strings.ToLower(norm.NFKC.String(strings.TrimSpace(s)))
}
