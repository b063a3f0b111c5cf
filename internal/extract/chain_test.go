package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "go-nutrition-scanner/internal/errors"
)

// acceptableText passes the default evaluator: long enough and dense in
// nutrition vocabulary.
const acceptableText = "Nutrition Facts\nCalories 150\nTotal Fat 5g\nSodium 300mg\nProtein 3g"

type stubTier struct {
	kind TierKind
	raw  *RawExtraction
	err  error
}

func (s stubTier) Kind() TierKind { return s.kind }

func (s stubTier) Extract(ctx context.Context, req Request) (*RawExtraction, error) {
	return s.raw, s.err
}

func TestChainFallsThroughToSecondTier(t *testing.T) {
	chain := NewChain([]Tier{
		stubTier{kind: TierCatalog, err: apperrors.NewTierUnavailable(string(TierCatalog), "product not found", nil)},
		stubTier{kind: TierRemoteOCR, raw: &RawExtraction{Tier: TierRemoteOCR, Text: acceptableText}},
	}, NewEvaluator(), time.Second)

	raw, err := chain.Run(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if raw.Tier != TierRemoteOCR {
		t.Errorf("accepted tier = %q, want %q", raw.Tier, TierRemoteOCR)
	}
	if raw.Label == ConfidenceNone {
		t.Error("accepted extraction should carry a confidence label")
	}
}

func TestChainExhaustionCarriesAttemptsInOrder(t *testing.T) {
	chain := NewChain([]Tier{
		stubTier{kind: TierCatalog, err: apperrors.NewTierUnavailable(string(TierCatalog), "product not found", nil)},
		stubTier{kind: TierRemoteOCR, err: apperrors.NewTierUnavailable(string(TierRemoteOCR), "rate limited", nil)},
		stubTier{kind: TierLocalOCR, raw: &RawExtraction{Tier: TierLocalOCR, Text: "x"}},
	}, NewEvaluator(), time.Second)

	_, err := chain.Run(context.Background(), Request{})
	var exhausted *apperrors.ExtractionExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("Run() error = %v, want ExtractionExhaustedError", err)
	}

	want := []apperrors.TierAttempt{
		{Tier: "catalog_lookup", Reason: "product not found"},
		{Tier: "remote_ocr", Reason: "rate limited"},
		{Tier: "local_ocr", Reason: "rejected: too_sparse"},
	}
	if len(exhausted.Attempts) != len(want) {
		t.Fatalf("attempts = %d, want %d", len(exhausted.Attempts), len(want))
	}
	for i, attempt := range exhausted.Attempts {
		if attempt != want[i] {
			t.Errorf("attempt[%d] = %+v, want %+v", i, attempt, want[i])
		}
	}
}

func TestChainRejectedOutputFallsThrough(t *testing.T) {
	chain := NewChain([]Tier{
		stubTier{kind: TierRemoteOCR, raw: &RawExtraction{Tier: TierRemoteOCR, Text: "lorem ipsum dolor sit amet something unrelated"}},
		stubTier{kind: TierLocalOCR, raw: &RawExtraction{Tier: TierLocalOCR, Text: acceptableText}},
	}, NewEvaluator(), time.Second)

	raw, err := chain.Run(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if raw.Tier != TierLocalOCR {
		t.Errorf("accepted tier = %q, want %q", raw.Tier, TierLocalOCR)
	}
}

func TestChainCancelledContext(t *testing.T) {
	chain := NewChain([]Tier{
		stubTier{kind: TierLocalOCR, raw: &RawExtraction{Tier: TierLocalOCR, Text: acceptableText}},
	}, NewEvaluator(), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := chain.Run(ctx, Request{})
	if !apperrors.IsType(err, apperrors.ErrorTypeTimeout) {
		t.Errorf("Run() with cancelled context = %v, want timeout error", err)
	}
}
