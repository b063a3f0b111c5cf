package extract

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "go-nutrition-scanner/internal/errors"
	"go-nutrition-scanner/internal/logger"
)

// Chain walks a fixed, ordered list of extraction tiers and returns the
// first output the evaluator accepts. Tiers are ordered by expected
// accuracy/cost; the free local engine runs last as availability insurance.
type Chain struct {
	tiers       []Tier
	evaluator   *Evaluator
	tierTimeout time.Duration
}

// NewChain builds a chain over the given tiers, consulted in slice order
func NewChain(tiers []Tier, evaluator *Evaluator, tierTimeout time.Duration) *Chain {
	return &Chain{
		tiers:       tiers,
		evaluator:   evaluator,
		tierTimeout: tierTimeout,
	}
}

// Run consults each tier in order until one yields an accepted extraction.
// Tier unavailability (including timeout and cancellation of the tier call)
// is absorbed and logged; if every tier fails or is rejected, the terminal
// ExtractionExhaustedError carries the attempts in consultation order.
func (c *Chain) Run(ctx context.Context, req Request) (*RawExtraction, error) {
	attempts := make([]apperrors.TierAttempt, 0, len(c.tiers))

	for _, tier := range c.tiers {
		if err := ctx.Err(); err != nil {
			// Caller abandoned the request; stop consulting tiers
			return nil, apperrors.NewTimeoutError("analysis cancelled", err)
		}

		start := time.Now()
		tctx, cancel := context.WithTimeout(ctx, c.tierTimeout)
		raw, err := tier.Extract(tctx, req)
		cancel()
		elapsed := time.Since(start)

		if err != nil {
			reason := failureReason(err)
			logger.WithError(err).WithFields(logrus.Fields{
				"tier":       string(tier.Kind()),
				"elapsed_ms": elapsed.Milliseconds(),
			}).Warn("Extraction tier unavailable, falling through")
			attempts = append(attempts, apperrors.TierAttempt{
				Tier:   string(tier.Kind()),
				Reason: reason,
			})
			continue
		}

		verdict := c.evaluator.Evaluate(raw)
		if !verdict.Accepted {
			logger.WithFields(logrus.Fields{
				"tier":        string(tier.Kind()),
				"reject":      string(verdict.Reason),
				"text_length": len(raw.Text),
			}).Info("Extraction rejected by confidence evaluator")
			attempts = append(attempts, apperrors.TierAttempt{
				Tier:   string(tier.Kind()),
				Reason: "rejected: " + string(verdict.Reason),
			})
			continue
		}

		raw.Label = verdict.Label
		raw.ElapsedMS = elapsed.Milliseconds()
		logger.WithFields(logrus.Fields{
			"tier":       string(tier.Kind()),
			"confidence": string(raw.Label),
			"elapsed_ms": raw.ElapsedMS,
		}).Info("Extraction accepted")
		return raw, nil
	}

	return nil, &apperrors.ExtractionExhaustedError{Attempts: attempts}
}

func failureReason(err error) string {
	var unavailable *apperrors.TierUnavailableError
	if errors.As(err, &unavailable) {
		return unavailable.Reason
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return err.Error()
}
