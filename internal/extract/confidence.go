package extract

import (
	"strings"
)

// RejectReason explains why the evaluator discarded a tier's output
type RejectReason string

const (
	RejectTooSparse         RejectReason = "too_sparse"
	RejectLowRelevance      RejectReason = "low_relevance"
	RejectLowTierConfidence RejectReason = "low_tier_confidence"
)

// Thresholds defines configurable acceptance thresholds for raw extractions
type Thresholds struct {
	// MinTextLength rejects outputs shorter than this many characters
	MinTextLength int

	// MinKeywordDensity is the minimum fraction of tokens that must be
	// recognized nutrition vocabulary. Guards against OCR picking up
	// marketing copy instead of the nutrition panel.
	MinKeywordDensity float64

	// MinKeywordHits is the minimum absolute number of keyword tokens
	MinKeywordHits int

	// HighLabelHits / HighLabelLength gate the derived "high" label
	HighLabelHits   int
	HighLabelLength int

	// MediumLabelLength gates the derived "medium" label
	MediumLabelLength int
}

// DefaultThresholds returns the default acceptance thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinTextLength:     24,
		MinKeywordDensity: 0.05,
		MinKeywordHits:    2,
		HighLabelHits:     6,
		HighLabelLength:   200,
		MediumLabelLength: 80,
	}
}

// nutritionKeywords is the recognition vocabulary used for the relevance
// check. Matching is prefix-based on lowercased tokens so plural and
// run-together OCR forms still count.
var nutritionKeywords = []string{
	"calorie", "kcal", "energy",
	"fat", "saturated", "trans",
	"cholesterol", "sodium", "salt",
	"carbohydrate", "carbs", "fiber", "fibre",
	"sugar", "protein", "serving",
	"ingredient", "vitamin", "calcium", "iron",
	"potassium", "magnesium", "zinc", "nutrition",
}

// Verdict is the evaluator's decision for a single raw extraction
type Verdict struct {
	Accepted bool
	Reason   RejectReason
	Label    ConfidenceLabel
}

// Evaluator scores raw tier output and decides accept/reject/fallback.
// Checks combine with OR-reject semantics: any failing check rejects.
type Evaluator struct {
	thresholds Thresholds
}

// NewEvaluator creates an evaluator with default thresholds
func NewEvaluator() *Evaluator {
	return &Evaluator{thresholds: DefaultThresholds()}
}

// NewEvaluatorWithThresholds creates an evaluator with custom thresholds
func NewEvaluatorWithThresholds(t Thresholds) *Evaluator {
	return &Evaluator{thresholds: t}
}

// Evaluate decides whether a tier's output is usable. Structured hints skip
// the text heuristics: they are schema data, not OCR output.
func (e *Evaluator) Evaluate(raw *RawExtraction) Verdict {
	if raw.Hint != nil {
		return Verdict{Accepted: true, Label: ConfidenceHigh}
	}

	if raw.TierConfidence != ConfidenceNone && raw.TierConfidence.rank() < ConfidenceMedium.rank() {
		return Verdict{Accepted: false, Reason: RejectLowTierConfidence}
	}

	text := strings.TrimSpace(raw.Text)
	if len(text) < e.thresholds.MinTextLength {
		return Verdict{Accepted: false, Reason: RejectTooSparse}
	}

	tokens := strings.Fields(strings.ToLower(text))
	hits := 0
	for _, tok := range tokens {
		if isNutritionKeyword(tok) {
			hits++
		}
	}
	density := float64(hits) / float64(len(tokens))
	if hits < e.thresholds.MinKeywordHits || density < e.thresholds.MinKeywordDensity {
		return Verdict{Accepted: false, Reason: RejectLowRelevance}
	}

	return Verdict{Accepted: true, Label: e.deriveLabel(raw, len(text), hits)}
}

// deriveLabel computes the confidence label propagated into the result.
// A tier-supplied label wins; otherwise it is derived from text volume and
// keyword hits.
func (e *Evaluator) deriveLabel(raw *RawExtraction, textLen, hits int) ConfidenceLabel {
	if raw.TierConfidence != ConfidenceNone {
		return raw.TierConfidence
	}
	if hits >= e.thresholds.HighLabelHits && textLen >= e.thresholds.HighLabelLength {
		return ConfidenceHigh
	}
	if textLen > e.thresholds.MediumLabelLength {
		return ConfidenceMedium
	}
	return ConfidenceLow
}

func isNutritionKeyword(token string) bool {
	token = strings.Trim(token, ".,;:()%")
	for _, kw := range nutritionKeywords {
		if strings.HasPrefix(token, kw) {
			return true
		}
	}
	return false
}
