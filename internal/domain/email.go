package domain

import (
	"regexp"
	"strings"
)

// emailPattern is a deliberately loose local@domain.tld check. Real validation
// happens at the provider; this only rejects obviously malformed input.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail canonicalizes an address for use as a key. All lookups and
// writes go through this, so case variants of the same address share one
// consent record, one suppression record, and one event history.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether the address passes the basic format check.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}
