package errors

import (
	"fmt"
	"strings"
)

// TierUnavailableError marks a single extraction tier as unusable for this
// request: missing credentials, network failure, quota, timeout, or a product
// lookup miss. It is absorbed by the tier chain and never crosses the
// pipeline boundary.
type TierUnavailableError struct {
	Tier   string
	Reason string
	Cause  error
}

func (e *TierUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("tier %s unavailable: %s: %v", e.Tier, e.Reason, e.Cause)
	}
	return fmt.Sprintf("tier %s unavailable: %s", e.Tier, e.Reason)
}

func (e *TierUnavailableError) Unwrap() error {
	return e.Cause
}

// NewTierUnavailable creates a tier-level failure with provenance
func NewTierUnavailable(tier, reason string, cause error) *TierUnavailableError {
	return &TierUnavailableError{Tier: tier, Reason: reason, Cause: cause}
}

// TierAttempt records one failed or rejected tier consultation, in the order
// the chain walked them.
type TierAttempt struct {
	Tier   string `json:"tier"`
	Reason string `json:"reason"`
}

// ExtractionExhaustedError is the terminal failure of the tier chain: every
// tier was unavailable or its output was rejected. It carries the per-tier
// failure reasons for the caller.
type ExtractionExhaustedError struct {
	Attempts []TierAttempt
}

func (e *ExtractionExhaustedError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %s", a.Tier, a.Reason))
	}
	return "all extraction tiers exhausted: " + strings.Join(parts, "; ")
}
