// Package matcher scores settlement records against ledger records and
// assigns one-to-one pairings for reconciliation suggestions.
package matcher

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"ledger-reconciler/internal/models"
	"ledger-reconciler/internal/normalize"
)

// SuggestedMatch pairs one settlement record with one ledger record,
// along with the score and the signals that produced it.
type SuggestedMatch struct {
	Settlement *models.TransactionRecord `json:"settlement"`
	Ledger     *models.TransactionRecord `json:"ledger"`
	Score      float64                   `json:"score"`
	Reasons    []MatchReason             `json:"reasons"`
	AmountDiff decimal.Decimal           `json:"amount_diff"`
	DateGap    int                       `json:"date_gap_days"`
}

// Engine scores and assigns matches under a single configuration.
type Engine struct {
	config *Config
}

// NewEngine creates a matching engine. A nil config selects the default
// profile.
func NewEngine(config *Config) (*Engine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Engine{config: config.Clone()}, nil
}

// Score evaluates a single settlement/ledger pairing. The returned match
// carries the combined score regardless of the minimum threshold;
// callers decide whether to keep it.
func (e *Engine) Score(settlement, ledger *models.TransactionRecord) *SuggestedMatch {
	w := e.config.Weights

	match := &SuggestedMatch{
		Settlement: settlement,
		Ledger:     ledger,
	}

	sAmount := settlement.EffectiveAmount().Abs()
	lAmount := ledger.EffectiveAmount().Abs()
	match.AmountDiff = sAmount.Sub(lAmount).Abs()

	if sAmount.Equal(lAmount) {
		match.Score += w.ExactAmount
		match.Reasons = append(match.Reasons, ReasonExactAmount)
	} else if models.AmountsNearEqual(sAmount, lAmount) {
		match.Score += w.CloseAmount
		match.Reasons = append(match.Reasons, ReasonCloseAmount)
	}

	if normalize.NamesMatch(settlement.Contact, ledger.Contact) {
		match.Score += w.ContactMatch
		match.Reasons = append(match.Reasons, ReasonContactMatch)
	}

	match.DateGap = models.DaysBetween(settlement.Date, ledger.Date)
	if match.DateGap < e.config.MaxDateGapDays {
		proximity := 1.0 - float64(match.DateGap)/float64(e.config.MaxDateGapDays)
		match.Score += w.DateProximity * proximity
		match.Reasons = append(match.Reasons, ReasonDateProximity)
	}

	if referencesOverlap(settlement.Reference, ledger.Reference) {
		match.Score += w.ReferenceOverlap
		match.Reasons = append(match.Reasons, ReasonReferenceOverlap)
	}

	if match.Score > e.config.MaxScore {
		match.Score = e.config.MaxScore
	}

	return match
}

// Assign pairs settlements with ledgers one-to-one. Settlements are
// processed in ID order; each claims its best-scoring unclaimed ledger
// at or above the minimum score, ties broken by ledger ID. The result is
// sorted by score descending.
func (e *Engine) Assign(settlements, ledgers []*models.TransactionRecord) []*SuggestedMatch {
	ordered := make([]*models.TransactionRecord, len(settlements))
	copy(ordered, settlements)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	candidates := make([]*models.TransactionRecord, len(ledgers))
	copy(candidates, ledgers)
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })

	claimed := make(map[string]bool)
	matches := make([]*SuggestedMatch, 0)

	for _, settlement := range ordered {
		var best *SuggestedMatch
		for _, ledger := range candidates {
			if claimed[ledger.ID] {
				continue
			}

			scored := e.Score(settlement, ledger)
			if scored.Score < e.config.MinScore {
				continue
			}
			if best == nil || scored.Score > best.Score {
				best = scored
			}
		}

		if best != nil {
			claimed[best.Ledger.ID] = true
			matches = append(matches, best)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Settlement.ID < matches[j].Settlement.ID
	})

	return matches
}

// referencesOverlap reports whether one reference contains the other,
// case-insensitively. Empty references never overlap.
func referencesOverlap(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	if a == "" || b == "" {
		return false
	}

	return strings.Contains(a, b) || strings.Contains(b, a)
}
