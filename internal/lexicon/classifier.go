package lexicon

import (
	"sort"
	"strings"
	"unicode"
)

// Classification partitions an ingredient list by nutrition relevance.
// Allergen detection is orthogonal: an almond is both beneficial and a
// tree-nut allergen. Ambiguous holds ingredients matching both the
// beneficial and concerning vocabularies, which are excluded from scoring.
type Classification struct {
	Beneficial []string `json:"beneficial,omitempty"`
	Concerning []string `json:"concerning,omitempty"`
	// Allergens holds family names ("milk", "tree nuts"), not the label
	// ingredients that triggered them, sorted and deduplicated.
	Allergens []string `json:"allergens,omitempty"`
	Ambiguous []string `json:"ambiguous,omitempty"`

	severities map[string]Severity
}

// ConcernSeverity returns the severity of a concerning ingredient as it
// appears in the Concerning slice.
func (c *Classification) ConcernSeverity(ingredient string) (Severity, bool) {
	sev, ok := c.severities[strings.ToLower(ingredient)]
	return sev, ok
}

// Classify matches each ingredient against the vocabularies. Matching is
// case-insensitive on word boundaries with plural tolerance, so "Enriched
// Wheat Flour" trips the wheat allergen and "Red 40 Lake" trips the
// additive, but "Sodium Benzoate" does not trip "oat". Unmatched
// ingredients belong to no set.
func Classify(ingredients []string) *Classification {
	out := &Classification{severities: make(map[string]Severity)}
	allergenSeen := make(map[string]bool)

	for _, ingredient := range ingredients {
		lower := strings.ToLower(strings.TrimSpace(ingredient))
		if lower == "" {
			continue
		}
		tokens := tokenize(lower)

		isBeneficial := matchesAny(tokens, beneficial)
		sev, isConcerning := matchConcerning(tokens)

		switch {
		case isBeneficial && isConcerning:
			out.Ambiguous = append(out.Ambiguous, ingredient)
		case isBeneficial:
			out.Beneficial = append(out.Beneficial, ingredient)
		case isConcerning:
			out.Concerning = append(out.Concerning, ingredient)
			out.severities[lower] = sev
		}

		for family, markers := range allergens {
			if allergenSeen[family] {
				continue
			}
			if matchesAny(tokens, markers) {
				allergenSeen[family] = true
			}
		}
	}

	for family := range allergenSeen {
		out.Allergens = append(out.Allergens, family)
	}
	sort.Strings(out.Allergens)

	return out
}

func matchesAny(tokens []string, entries []string) bool {
	for _, entry := range entries {
		if containsEntry(tokens, entry) {
			return true
		}
	}
	return false
}

// matchConcerning returns the highest severity among matching additive
// markers.
func matchConcerning(tokens []string) (Severity, bool) {
	var best Severity
	found := false
	for marker, sev := range concerning {
		if !containsEntry(tokens, marker) {
			continue
		}
		found = true
		if sev == SeverityHigh {
			return SeverityHigh, true
		}
		best = sev
	}
	return best, found
}

// tokenize splits a lowercased ingredient into alphanumeric words.
// "sodium benzoate (preservative)" becomes [sodium benzoate preservative].
func tokenize(lower string) []string {
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsEntry reports whether the token sequence contains the vocabulary
// entry as consecutive whole words. Single-word entries also match their
// simple plural, so "oats" matches "oat" while "benzoate" does not.
func containsEntry(tokens []string, entry string) bool {
	words := strings.Fields(entry)
	if len(words) == 0 || len(words) > len(tokens) {
		return false
	}
	for i := 0; i+len(words) <= len(tokens); i++ {
		matched := true
		for j, word := range words {
			if !wordMatch(tokens[i+j], word) {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

func wordMatch(token, word string) bool {
	return token == word || token == word+"s"
}
