package matcher

import (
	"fmt"
)

// MatchReason identifies which signal contributed to a suggested match.
type MatchReason string

const (
	ReasonExactAmount      MatchReason = "EXACT_AMOUNT"
	ReasonCloseAmount      MatchReason = "CLOSE_AMOUNT"
	ReasonContactMatch     MatchReason = "CONTACT_MATCH"
	ReasonDateProximity    MatchReason = "DATE_PROXIMITY"
	ReasonReferenceOverlap MatchReason = "REFERENCE_OVERLAP"
)

// MatchWeights holds the score each signal contributes. Amount signals
// are mutually exclusive; date proximity scales linearly down to zero at
// MaxDateGapDays.
type MatchWeights struct {
	ExactAmount      float64 `json:"exact_amount"`
	CloseAmount      float64 `json:"close_amount"`
	ContactMatch     float64 `json:"contact_match"`
	DateProximity    float64 `json:"date_proximity"`
	ReferenceOverlap float64 `json:"reference_overlap"`
}

// Config controls scoring and assignment behavior.
type Config struct {
	Weights MatchWeights `json:"weights"`

	// MinScore is the lowest total score at which a pairing is kept as a
	// suggestion.
	MinScore float64 `json:"min_score"`

	// MaxDateGapDays is the gap at which the date signal reaches zero.
	MaxDateGapDays int `json:"max_date_gap_days"`

	// MaxScore caps the combined score.
	MaxScore float64 `json:"max_score"`
}

// DefaultConfig returns the standard scoring profile.
func DefaultConfig() *Config {
	return &Config{
		Weights: MatchWeights{
			ExactAmount:      40,
			CloseAmount:      20,
			ContactMatch:     25,
			DateProximity:    25,
			ReferenceOverlap: 15,
		},
		MinScore:       50,
		MaxDateGapDays: 7,
		MaxScore:       100,
	}
}

// StrictConfig returns a profile that only surfaces near-certain
// pairings.
func StrictConfig() *Config {
	cfg := DefaultConfig()
	cfg.MinScore = 80
	cfg.MaxDateGapDays = 3
	return cfg
}

// RelaxedConfig returns a profile that surfaces weaker candidates for
// manual triage.
func RelaxedConfig() *Config {
	cfg := DefaultConfig()
	cfg.MinScore = 30
	cfg.MaxDateGapDays = 14
	return cfg
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.MinScore < 0 {
		return fmt.Errorf("min score must not be negative, got %v", c.MinScore)
	}
	if c.MaxScore <= 0 {
		return fmt.Errorf("max score must be positive, got %v", c.MaxScore)
	}
	if c.MinScore > c.MaxScore {
		return fmt.Errorf("min score %v exceeds max score %v", c.MinScore, c.MaxScore)
	}
	if c.MaxDateGapDays <= 0 {
		return fmt.Errorf("max date gap must be positive, got %d", c.MaxDateGapDays)
	}

	w := c.Weights
	for name, v := range map[string]float64{
		"exact_amount":      w.ExactAmount,
		"close_amount":      w.CloseAmount,
		"contact_match":     w.ContactMatch,
		"date_proximity":    w.DateProximity,
		"reference_overlap": w.ReferenceOverlap,
	} {
		if v < 0 {
			return fmt.Errorf("weight %s must not be negative, got %v", name, v)
		}
	}

	if w.CloseAmount > w.ExactAmount {
		return fmt.Errorf("close amount weight %v exceeds exact amount weight %v", w.CloseAmount, w.ExactAmount)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
