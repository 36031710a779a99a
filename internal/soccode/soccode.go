// Package soccode normalizes and classifies SOC occupation codes as they
// appear in published survey extracts, including masked codes (trailing
// X/Y placeholders for suppressed detail) and aggregated codes (trailing
// zeros for rolled-up categories).
package soccode

import "strings"

// DefaultMaskChars are the placeholder letters IPUMS uses for suppressed
// digits in OCCSOC codes.
const DefaultMaskChars = "XY"

// Normalize trims whitespace and upper-cases a raw code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// StripMask removes the trailing run of mask characters from a normalized
// code. Characters elsewhere in the code are left alone.
func StripMask(code, maskChars string) string {
	if maskChars == "" {
		maskChars = DefaultMaskChars
	}
	return strings.TrimRight(code, maskChars)
}

// Prefix derives the lookup prefix for a code that failed exact matching.
// The trailing mask run is stripped first; if the remainder ends in a run
// of zeros, exactly one truncation applies (longest zero-run wins):
// "...000" keeps the first 3 characters, "...00" the first 4, "...0" the
// first 5. Otherwise the mask-stripped string is the prefix. The rule is
// a pure function of the code's literal form.
func Prefix(code, maskChars string) string {
	clean := StripMask(Normalize(code), maskChars)
	switch {
	case strings.HasSuffix(clean, "000"):
		return head(clean, 3)
	case strings.HasSuffix(clean, "00"):
		return head(clean, 4)
	case strings.HasSuffix(clean, "0"):
		return head(clean, 5)
	}
	return clean
}

// Kind is the surface classification of a code's literal form.
type Kind string

const (
	KindMasked     Kind = "masked"
	KindAggregated Kind = "aggregated"
	KindExact      Kind = "exact"
)

// Classify labels a code from its surface form alone: masked if it
// contains any mask character anywhere, aggregated if it ends in one or
// two zero digits, exact otherwise. This is a heuristic re-derivation,
// not match provenance — prefer the matcher's MatchRecord when available.
func Classify(code, maskChars string) Kind {
	if maskChars == "" {
		maskChars = DefaultMaskChars
	}
	c := Normalize(code)
	if strings.ContainsAny(c, maskChars) {
		return KindMasked
	}
	if strings.HasSuffix(c, "0") {
		return KindAggregated
	}
	return KindExact
}

// IsMasked reports whether the code contains any mask character.
func IsMasked(code, maskChars string) bool {
	return Classify(code, maskChars) == KindMasked
}

func head(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
