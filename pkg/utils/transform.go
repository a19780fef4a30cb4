package utils

import (
	"strings"
	"time"
)

// shortIDLen is how many leading characters of an identity are kept for display.
const shortIDLen = 12

// ShortID truncates a Qubic identity for display: the first 12 characters followed by "...".
// Identities that are already short are returned unchanged.
func ShortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen] + "..."
}

// Dedup trims trailing slashes and drops repeated entries, keeping first-seen order.
func Dedup(in []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, e := range in {
		e = strings.TrimRight(strings.TrimSpace(e), "/")
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}

// NowMillis returns the current unix time in milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
