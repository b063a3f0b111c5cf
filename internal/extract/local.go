package extract

import (
	"context"

	"github.com/otiai10/gosseract/v2"

	apperrors "go-nutrition-scanner/internal/errors"
)

// LocalOCRTier runs Tesseract in-process via gosseract. It has no network
// dependency and sits last in the chain as the degraded-but-always-available
// fallback. Reported confidence is left empty: Tesseract's own estimate is
// not comparable with the remote tiers, so the evaluator derives one from
// the text instead.
type LocalOCRTier struct {
	language string
}

// NewLocalOCRTier creates the local Tesseract tier
func NewLocalOCRTier(language string) *LocalOCRTier {
	if language == "" {
		language = "eng"
	}
	return &LocalOCRTier{language: language}
}

func (t *LocalOCRTier) Kind() TierKind {
	return TierLocalOCR
}

func (t *LocalOCRTier) Extract(ctx context.Context, req Request) (*RawExtraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewTierUnavailable(string(TierLocalOCR), "cancelled", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.language); err != nil {
		return nil, apperrors.NewTierUnavailable(string(TierLocalOCR), "language unavailable", err)
	}
	if err := client.SetImageFromBytes(req.Image); err != nil {
		return nil, apperrors.NewTierUnavailable(string(TierLocalOCR), "image rejected", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, apperrors.NewTierUnavailable(string(TierLocalOCR), "ocr failed", err)
	}

	return &RawExtraction{
		Tier: TierLocalOCR,
		Text: text,
	}, nil
}
