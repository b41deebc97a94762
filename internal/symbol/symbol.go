// Package symbol normalizes user-supplied A-share identifiers into canonical
// market codes of the form "sh600519" / "sz000001" / "bj430047".
package symbol

import (
	"regexp"
	"strings"
)

var (
	prefixedRe = regexp.MustCompile(`^(sh|sz|bj)([0-9]{4,6})$`)
	bareRe     = regexp.MustCompile(`^[0-9]{6}$`)
	shortRe    = regexp.MustCompile(`^[0-9]{4,5}$`)
	validRe    = regexp.MustCompile(`^(sh|sz|bj)[0-9]{6}$`)
)

// Code is a canonical market code: two-letter lowercase market prefix plus a
// six-digit numeric code. The zero value is not valid; construct via
// Normalize or MustParse.
type Code struct {
	s string
}

// Normalize maps raw input to a canonical Code. Accepted shapes:
//   - prefixed: sh600519, SZ0001 (prefix case-insensitive, digits padded to 6)
//   - bare 6-digit: 600519 (market defaults to sh)
//   - short 4-5 digit: 0001 (left-zero-padded, market defaults to sh)
//
// The Shanghai default for bare digits mirrors the upstream behavior and is
// knowingly wrong for many Shenzhen-listed codes; prefixed input is the
// precise form.
// Returns ok=false when the input is not a code at all (caller should fall
// back to name search).
func Normalize(input string) (Code, bool) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return Code{}, false
	}
	if m := prefixedRe.FindStringSubmatch(s); m != nil {
		return Code{m[1] + pad6(m[2])}, true
	}
	if bareRe.MatchString(s) {
		return Code{"sh" + s}, true
	}
	if shortRe.MatchString(s) {
		return Code{"sh" + pad6(s)}, true
	}
	return Code{}, false
}

// IsValid reports whether s is a well-formed canonical code string.
func IsValid(s string) bool {
	return validRe.MatchString(strings.ToLower(s))
}

// MustParse converts a known-valid canonical string into a Code. It panics on
// malformed input and is intended for literals in tests and defaults.
func MustParse(s string) Code {
	c, ok := Normalize(s)
	if !ok {
		panic("symbol: invalid code " + s)
	}
	return c
}

// Market returns the two-letter exchange prefix (sh, sz or bj).
func (c Code) Market() string { return c.s[:2] }

// Number returns the six-digit numeric part without the market prefix.
func (c Code) Number() string { return c.s[2:] }

// String returns the canonical lowercase form, e.g. "sh600519".
func (c Code) String() string { return c.s }

// IsZero reports whether c is the zero value.
func (c Code) IsZero() bool { return c.s == "" }

func pad6(digits string) string {
	return strings.Repeat("0", 6-len(digits)) + digits
}
