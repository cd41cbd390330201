// Package id generates identifiers for goals, missions and transactions.
package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// legSep separates a transfer group ID from its leg letter.
const legSep = "."

// New returns a fresh random identifier.
func New() string {
	return uuid.NewString()
}

// FormatLegID returns a leg ID like "<group>.a" (leg 0='a', 1='b', etc.).
func FormatLegID(group string, leg int) string {
	return group + legSep + string(rune('a'+leg))
}

// Group strips the leg suffix from a leg ID.
// "<group>.b" -> "<group>"; IDs without a suffix are returned unchanged.
func Group(legID string) string {
	base, _, ok := strings.Cut(legID, legSep)
	if !ok {
		return legID
	}
	return base
}

// ParseLegID splits a leg ID into its group and leg index.
func ParseLegID(legID string) (group string, leg int, err error) {
	base, suffix, ok := strings.Cut(legID, legSep)
	if !ok {
		return "", 0, fmt.Errorf("invalid leg ID %q: missing %q", legID, legSep)
	}
	if len(suffix) != 1 || suffix[0] < 'a' || suffix[0] > 'z' {
		return "", 0, fmt.Errorf("invalid leg suffix in %q", legID)
	}
	if _, err := uuid.Parse(base); err != nil {
		return "", 0, fmt.Errorf("invalid group in leg ID %q: %w", legID, err)
	}
	return base, int(suffix[0] - 'a'), nil
}
