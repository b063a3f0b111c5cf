package extract

import (
	"context"
)

// TierKind identifies one extraction strategy in the fallback chain. The
// chain is a fixed ordered list of these, not a runtime-discovered set.
type TierKind string

const (
	TierCatalog   TierKind = "catalog_lookup"
	TierRemoteOCR TierKind = "remote_ocr"
	TierLocalOCR  TierKind = "local_ocr"
)

// ConfidenceLabel is the qualitative confidence attached to an extraction.
// It is provenance only and never feeds business values.
type ConfidenceLabel string

const (
	ConfidenceNone   ConfidenceLabel = ""
	ConfidenceLow    ConfidenceLabel = "low"
	ConfidenceMedium ConfidenceLabel = "medium"
	ConfidenceHigh   ConfidenceLabel = "high"
)

// rank orders labels for threshold comparisons; ConfidenceNone means the
// tier produced no self-assessment and is exempt from the label check.
func (c ConfidenceLabel) rank() int {
	switch c {
	case ConfidenceLow:
		return 1
	case ConfidenceMedium:
		return 2
	case ConfidenceHigh:
		return 3
	default:
		return 0
	}
}

// Request carries everything a tier may need: the normalized image for OCR
// tiers and the optional external identifier for the catalog tier.
type Request struct {
	Image       []byte
	Barcode     string
	ProductName string
}

// StructuredHint is already-structured nutrition data returned by a catalog
// lookup. When present the parser uses it directly instead of free text.
type StructuredHint struct {
	ProductName string             `json:"product_name,omitempty"`
	ServingSize string             `json:"serving_size,omitempty"`
	Nutrients   map[string]float64 `json:"nutrients"`
	Ingredients []string           `json:"ingredients,omitempty"`
	Claims      []string           `json:"claims,omitempty"`
}

// RawExtraction is the output of one tier attempt. Immutable once produced;
// discarded entirely if the evaluator rejects it.
type RawExtraction struct {
	Tier           TierKind        `json:"tier"`
	Text           string          `json:"text"`
	Hint           *StructuredHint `json:"hint,omitempty"`
	TierConfidence ConfidenceLabel `json:"tier_confidence,omitempty"`
	Label          ConfidenceLabel `json:"confidence_label"`
	ElapsedMS      int64           `json:"elapsed_ms"`
}

// Tier is one extraction strategy. Extract either yields a RawExtraction or
// a *errors.TierUnavailableError; any other error is treated as unavailable
// by the chain so a single flaky tier can never fail the whole request.
type Tier interface {
	Kind() TierKind
	Extract(ctx context.Context, req Request) (*RawExtraction, error)
}
