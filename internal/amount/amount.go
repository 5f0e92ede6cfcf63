// Package amount canonicalizes the heterogeneous currency strings the target
// application renders (grouping commas, currency symbols, non-breaking spaces)
// into a comparable two-decimal form.
package amount

import (
	"regexp"
	"strings"
)

// numericToken matches the first integer with an optional 1-4 digit fraction.
// The target screens never render negative totals, so signs are not accepted.
var numericToken = regexp.MustCompile(`\d+(?:\.\d{1,4})?`)

// Normalize parses free-form currency text into a canonical minor-unit decimal
// string of the form "<integer>.<2 digits>". It reports ok=false when the text
// contains no numeric token at all; callers must treat that as a distinct
// condition from a zero amount.
//
// The fractional part is truncated or zero-padded to exactly two digits, never
// rounded: "12.999" normalizes to "12.99".
func Normalize(text string) (string, bool) {
	cleaned := strings.NewReplacer(" ", "", " ", "", ",", "").Replace(text)

	token := numericToken.FindString(cleaned)
	if token == "" {
		return "", false
	}

	whole, frac, found := strings.Cut(token, ".")
	if !found {
		frac = "00"
	}
	switch {
	case len(frac) == 1:
		frac += "0"
	case len(frac) > 2:
		frac = frac[:2]
	}

	whole = strings.TrimLeft(whole, "0")
	if whole == "" {
		whole = "0"
	}

	return whole + "." + frac, true
}

// Equal compares two already-normalized amounts. Comparison is exact string
// equality; no epsilon tolerance is applied.
func Equal(a, b string) bool {
	return a == b
}
