package detector

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"ledger-reconciler/internal/models"
	"ledger-reconciler/internal/normalize"
)

// missingGraceDays is how old a ledger record must be before the
// absence of a settlement counterpart is flagged.
const missingGraceDays = 30

// MissingEntry is a ledger record with no plausible settlement
// counterpart past the grace period.
type MissingEntry struct {
	Record            *models.TransactionRecord  `json:"record"`
	ExpectedDirection models.SettlementDirection `json:"expected_direction"`
	DaysSinceInvoice  int                        `json:"days_since_invoice"`
	Amount            decimal.Decimal            `json:"amount"`
	Reason            string                     `json:"reason"`
}

// MissingDetector flags aged ledger records that appear to have no
// corresponding bank movement.
type MissingDetector struct {
	now func() time.Time
}

// NewMissingDetector creates a missing-entry detector. A nil clock
// defaults to the wall clock.
func NewMissingDetector(now func() time.Time) *MissingDetector {
	if now == nil {
		now = time.Now
	}
	return &MissingDetector{now: now}
}

// Detect scans eligible ledger records (status paid or authorised) for
// settlement counterparts with an exactly matching absolute amount and
// a matching counterparty. Records past the grace period with no
// counterpart are returned sorted by absolute amount descending.
func (d *MissingDetector) Detect(ledgers, settlements []*models.TransactionRecord) []*MissingEntry {
	now := d.now()
	entries := make([]*MissingEntry, 0)

	for _, ledger := range ledgers {
		if ledger == nil {
			continue
		}
		if ledger.Status != models.StatusPaid && ledger.Status != models.StatusAuthorised {
			continue
		}

		age := models.DaysBetween(ledger.Date, now)
		if age <= missingGraceDays {
			continue
		}

		if hasSettlementCounterpart(ledger, settlements) {
			continue
		}

		amount := ledger.EffectiveAmount().Abs()
		direction := ledger.Kind.ExpectedDirection()
		entries = append(entries, &MissingEntry{
			Record:            ledger,
			ExpectedDirection: direction,
			DaysSinceInvoice:  age,
			Amount:            amount,
			Reason: fmt.Sprintf("no bank movement found for %s invoice of %s, %d days old",
				ledger.Kind, amount.StringFixed(2), age),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Amount.GreaterThan(entries[j].Amount)
	})

	return entries
}

// hasSettlementCounterpart reports whether any settlement record shares
// the ledger record's absolute amount and counterparty. Two empty
// counterparty names count as a match; the amount alone decides then.
func hasSettlementCounterpart(ledger *models.TransactionRecord, settlements []*models.TransactionRecord) bool {
	amount := ledger.EffectiveAmount().Abs()

	for _, settlement := range settlements {
		if settlement == nil {
			continue
		}
		if !settlement.EffectiveAmount().Abs().Equal(amount) {
			continue
		}

		if normalize.NamesMatch(ledger.Contact, settlement.Contact) {
			return true
		}
	}

	return false
}
