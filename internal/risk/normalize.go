package risk

import "strings"

// NormalizeCode strips every non-digit character from an activity code.
// It is total and idempotent, so rule keys and lookup keys always agree
// regardless of the dots and dashes an operator typed.
func NormalizeCode(code string) string {
	var b strings.Builder
	b.Grow(len(code))
	for i := 0; i < len(code); i++ {
		if c := code[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// IsPlaceholderCode reports whether a normalized code carries no activity:
// empty, or the all-zero filler registries return for missing secondaries.
func IsPlaceholderCode(normalized string) bool {
	return strings.Trim(normalized, "0") == ""
}
