// Package identity normalizes chat handles so every component agrees on
// what counts as the same participant.
package identity

import "strings"

// Normalize lowercases a raw handle, trims surrounding whitespace, and
// strips leading channel privilege markers (@ for ops, + for voice).
// "@Bob", "bob" and " Bob " all normalize to "bob".
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	return strings.TrimLeft(s, "@+")
}
