// Package strings holds small string-slice helpers shared across stores and
// models.
package strings

import "strings"

// DedupeAndTrim trims every element, drops empties, and keeps only the first
// occurrence of each value. Input order is preserved. Program tags pass
// through this before persistence so list filters never see near-duplicate
// tags like "청년" and " 청년 ".
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	out := values[:0:0]
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
