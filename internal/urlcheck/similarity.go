// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package urlcheck

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// DefaultSimilarityThreshold is the minimum similarity ratio at which
// two domain labels are treated as impersonation candidates.
const DefaultSimilarityThreshold = 0.7

// Matcher compares a candidate domain label against a reference brand
// name. The zero value uses the positional heuristic at the default
// threshold.
//
// The default metric counts positional character mismatches over the
// shorter length plus the length difference. It is deliberately not
// alignment-aware: an insertion early in the string shifts every later
// character and inflates the difference count. Levenshtein mode trades
// that quirk for true edit distance; it catches shifted typosquats the
// default misses and must be enabled explicitly because it changes
// which domains get flagged.
type Matcher struct {
	Threshold      float64 // 0 means DefaultSimilarityThreshold
	UseLevenshtein bool
}

// IsSimilar reports whether candidate looks deceptively close to
// reference. Identical strings are never similar: exact whitelist hits
// are the whitelist rule's business, not an impersonation signal.
// Containment in either direction always matches ("amazonsecurity"
// contains "amazon").
func (m Matcher) IsSimilar(candidate, reference string) bool {
	if candidate == reference {
		return false
	}

	if candidate != "" && reference != "" &&
		(strings.Contains(candidate, reference) || strings.Contains(reference, candidate)) {
		return true
	}

	maxLen := len(candidate)
	if len(reference) > maxLen {
		maxLen = len(reference)
	}
	if maxLen == 0 {
		return false
	}

	threshold := m.Threshold
	if threshold == 0 {
		threshold = DefaultSimilarityThreshold
	}

	var differences int
	if m.UseLevenshtein {
		differences = fuzzy.LevenshteinDistance(candidate, reference)
	} else {
		differences = positionalDistance(candidate, reference)
	}

	similarity := 1 - float64(differences)/float64(maxLen)
	return similarity >= threshold
}

// IsSimilar applies the default Matcher.
func IsSimilar(candidate, reference string) bool {
	return Matcher{}.IsSimilar(candidate, reference)
}

func positionalDistance(a, b string) int {
	short := len(a)
	if len(b) < short {
		short = len(b)
	}

	diff := 0
	for i := 0; i < short; i++ {
		if a[i] != b[i] {
			diff++
		}
	}
	if len(a) > len(b) {
		diff += len(a) - len(b)
	} else {
		diff += len(b) - len(a)
	}
	return diff
}
