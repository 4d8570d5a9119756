// Package normalize provides contact name canonicalization and fuzzy
// similarity used when pairing settlement records against ledger records.
package normalize

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// SimilarityThreshold is the minimum ratio at which two normalized names
// are treated as referring to the same party.
const SimilarityThreshold = 0.80

// suffixVariants maps legal-suffix spellings onto a canonical form.
// Variants are matched against the trailing tokens of an already
// lowercased, whitespace-collapsed name; longer variants come first so
// "pty. limited" is rewritten whole rather than as "limited".
var suffixVariants = []struct {
	variant   string
	canonical string
}{
	{"proprietary limited", "pty ltd"},
	{"pty. limited", "pty ltd"},
	{"pty limited", "pty ltd"},
	{"pty. ltd.", "pty ltd"},
	{"pty. ltd", "pty ltd"},
	{"pty ltd.", "pty ltd"},
	{"p/l", "pty ltd"},
	{"incorporated", "inc"},
	{"limited", "ltd"},
	{"company", "co"},
	{"ltd.", "ltd"},
	{"inc.", "inc"},
	{"co.", "co"},
}

// canonicalSuffixes lists the canonical forms in stripping order. Longer
// forms come first so "pty ltd" is removed whole rather than as "ltd".
var canonicalSuffixes = []string{"pty ltd", "ltd", "inc", "co"}

// Normalize lowercases a contact name, collapses internal whitespace,
// strips trailing punctuation and rewrites legal-suffix variants to a
// canonical spelling ("ABC Pty. Limited" and "ABC P/L" both become
// "abc pty ltd").
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return ""
	}

	s = strings.Join(strings.Fields(s), " ")
	s = strings.ReplaceAll(s, " and ", " & ")
	s = strings.TrimRight(s, ".,;:")

	for _, sv := range suffixVariants {
		if rest, ok := trimSuffixFold(s, sv.variant); ok {
			s = rest + " " + sv.canonical
			break
		}
	}

	return strings.TrimSpace(s)
}

// StripSuffix removes a trailing canonical legal suffix from an already
// normalized name. "abc pty ltd" becomes "abc"; names with no legal
// suffix are returned unchanged.
func StripSuffix(normalized string) string {
	for _, suffix := range canonicalSuffixes {
		if rest, ok := trimSuffixFold(normalized, suffix); ok {
			return strings.TrimSpace(rest)
		}
	}
	return normalized
}

func trimSuffixFold(s, suffix string) (string, bool) {
	if s == suffix {
		return "", true
	}
	if strings.HasSuffix(s, " "+suffix) {
		return strings.TrimSpace(strings.TrimSuffix(s, " "+suffix)), true
	}
	return s, false
}

// Similarity returns a ratio in [0, 1] between two raw names after
// normalization, computed as 1 - levenshtein/maxlen. Two empty names are
// identical; one empty name matches nothing.
func Similarity(a, b string) float64 {
	na := Normalize(a)
	nb := Normalize(b)

	if na == nb {
		return 1.0
	}
	if na == "" || nb == "" {
		return 0.0
	}

	dist := levenshtein.ComputeDistance(na, nb)
	maxLen := len([]rune(na))
	if l := len([]rune(nb)); l > maxLen {
		maxLen = l
	}

	return 1.0 - float64(dist)/float64(maxLen)
}

// NamesMatch reports whether two raw contact names refer to the same
// party. Legal suffixes are stripped before comparison so a bank feed's
// "Disaster Recovery" matches an invoice's "Disaster Recovery Pty Ltd",
// then equality or the similarity threshold decides. Two empty names
// are identical, mirroring Similarity.
func NamesMatch(a, b string) bool {
	na := StripSuffix(Normalize(a))
	nb := StripSuffix(Normalize(b))

	if na == nb {
		return true
	}
	if na == "" || nb == "" {
		return false
	}

	dist := levenshtein.ComputeDistance(na, nb)
	maxLen := len([]rune(na))
	if l := len([]rune(nb)); l > maxLen {
		maxLen = l
	}

	return 1.0-float64(dist)/float64(maxLen) >= SimilarityThreshold
}
