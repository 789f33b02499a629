package utils

import "strings"

// NormalizeVIN strips every character outside [A-Za-z0-9] and
// uppercases the rest. Intended VIN length is 17 but not enforced; the
// user reviews the draft before saving.
func NormalizeVIN(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - ('a' - 'A'))
		}
	}
	return b.String()
}

// NormalizeField uppercases a free-form recognized field verbatim.
func NormalizeField(raw string) string {
	return strings.ToUpper(raw)
}
