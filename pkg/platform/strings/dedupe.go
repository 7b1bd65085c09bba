// Package strings provides string and list clean-up utilities.
package strings

import (
	"strings"
)

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
//
// Example:
//
//	DedupeAndTrim([]string{"  4711-3/02 ", "5611-2/01", "4711-3/02", "", "  "})
//	// Returns: []string{"4711-3/02", "5611-2/01"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}
	trimmed := make([]string, 0, len(values))
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			trimmed = append(trimmed, t)
		}
	}
	return DedupeFunc(trimmed, func(s string) string { return s })
}

// DedupeFunc keeps the first element seen for each key. Order is preserved.
func DedupeFunc[T any, K comparable](values []T, key func(T) K) []T {
	if len(values) == 0 {
		return values
	}
	seen := make(map[K]struct{}, len(values))
	result := make([]T, 0, len(values))
	for _, v := range values {
		k := key(v)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		result = append(result, v)
	}
	return result
}
