// Package utils provides small helpers shared across the application.
package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateID returns a random UUID v4 string for use as a record id.
//
// Go Learning Note — "github.com/google/uuid":
// uuid.New() creates a random (v4) UUID. Ids can be minted by any process
// without coordination, so the memory and SQLite stores never need a
// counter.
func GenerateID() string {
	return uuid.New().String()
}

// GeneratePrefixedID returns "<prefix>_" followed by the first 12 hex digits
// of a fresh UUID. It is used for ids that end up in map object ids and
// URLs, where a full UUID is noisy.
func GeneratePrefixedID(prefix string) string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return prefix + "_" + hex[:12]
}
