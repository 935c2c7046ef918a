package utils

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

func ComputeHash(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

// Fingerprint derives a stable id from parts that have no id of their own.
// Parts are NFC normalised and trimmed so that equivalent markup hashes the same.
func Fingerprint(parts ...string) string {
	normalized := make([]string, len(parts))
	for i, p := range parts {
		normalized[i] = norm.NFC.String(strings.TrimSpace(p))
	}
	return ComputeHash([]byte(strings.Join(normalized, "\x00")))
}
