// Package digest provides the content fingerprint used for duplicate removal
// and change detection. It is a SHA-256 hex digest, stable across processes.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Content returns the hex SHA-256 of s.
func Content(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// Normalize collapses all whitespace runs to single spaces and lowercases.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Fingerprint is the digest of the normalized text.
func Fingerprint(s string) string {
	return Content(Normalize(s))
}
