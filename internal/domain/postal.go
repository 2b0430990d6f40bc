package domain

import "strings"

// PostalCodeDigits is the length of a complete CEP.
const PostalCodeDigits = 8

// NormalizePostalCode strips every non-digit rune.
func NormalizePostalCode(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, c := range raw {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// PostalPrefix returns the first two digits of raw after normalization.
func PostalPrefix(raw string) (string, bool) {
	code := NormalizePostalCode(raw)
	if len(code) < 2 {
		return "", false
	}
	return code[:2], true
}

// FormatPostalCode renders a complete code as 00000-000. Anything else is
// returned normalized.
func FormatPostalCode(raw string) string {
	code := NormalizePostalCode(raw)
	if len(code) != PostalCodeDigits {
		return code
	}
	return code[:5] + "-" + code[5:]
}
