// Package phone normalizes the phone identifiers that appear in scraped chat
// messages, fraud reports and consumer configuration to one canonical form.
package phone

import (
	"strings"
	"unicode"
)

// DefaultCountryCode is prepended to national numbers.
const DefaultCountryCode = "254"

// Normalize returns the canonical "+<country><subscriber>" form of raw.
// National numbers ("0712 345 678", "712345678") are assumed to be Kenyan.
// The second return value is false when raw does not look like a phone number.
func Normalize(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	plus := strings.HasPrefix(s, "+")
	var digits strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits.WriteRune(r)
		case r == '+' || r == ' ' || r == '-' || r == '.' || r == '(' || r == ')' || r == '\u00a0' || r == '\u202a' || r == '\u202c':
		default:
			return "", false
		}
	}
	d := digits.String()

	switch {
	case strings.HasPrefix(d, "00"):
		d = d[2:]
		plus = true
	case !plus && strings.HasPrefix(d, "0") && len(d) == 10:
		d = DefaultCountryCode + d[1:]
	case !plus && len(d) == 9 && (d[0] == '7' || d[0] == '1'):
		d = DefaultCountryCode + d
	case !plus && strings.HasPrefix(d, DefaultCountryCode) && len(d) == 12:
	case !plus:
		return "", false
	}

	if strings.HasPrefix(d, DefaultCountryCode) && len(d) != 12 {
		return "", false
	}
	if len(d) < 8 || len(d) > 15 {
		return "", false
	}
	return "+" + d, true
}

// Equal reports whether a and b normalize to the same number.
func Equal(a, b string) bool {
	na, ok := Normalize(a)
	if !ok {
		return false
	}
	nb, ok := Normalize(b)
	return ok && na == nb
}

// Matches reports whether identifier refers to me. Phone-like values are
// compared in canonical form; anything else (a display name, a saved contact
// label) falls back to a case-insensitive substring match.
func Matches(identifier, me string) bool {
	if identifier == "" || me == "" {
		return false
	}
	if ni, ok := Normalize(identifier); ok {
		if nm, ok := Normalize(me); ok {
			return ni == nm
		}
	}
	return strings.Contains(strings.ToLower(identifier), strings.ToLower(me))
}
