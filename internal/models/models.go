// Package models defines the canonical record shapes consumed by the
// reconciliation engine, plus the small monetary and calendar utilities
// shared by every analysis stage.
//
// Records arrive from an external transaction cache already normalized to
// TransactionRecord; this package never talks to the source accounting
// platform. All monetary values are decimal.Decimal, never floats.
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind identifies what a record represents in the source platform.
// Settlement-side kinds describe actual bank movements; ledger-side kinds
// describe obligations (invoices and bills) independent of cash movement.
type MovementKind string

const (
	// Settlement-side kinds (money actually moved).
	KindReceive            MovementKind = "RECEIVE"
	KindSpend              MovementKind = "SPEND"
	KindReceiveTransfer    MovementKind = "RECEIVE-TRANSFER"
	KindSpendTransfer      MovementKind = "SPEND-TRANSFER"
	KindReceiveOverpayment MovementKind = "RECEIVE-OVERPAYMENT"
	KindSpendOverpayment   MovementKind = "SPEND-OVERPAYMENT"
	KindReceivePrepayment  MovementKind = "RECEIVE-PREPAYMENT"
	KindSpendPrepayment    MovementKind = "SPEND-PREPAYMENT"

	// Ledger-side kinds (obligations recorded in the books).
	KindPayable    MovementKind = "ACCPAY"
	KindReceivable MovementKind = "ACCREC"
)

// String returns the string representation of MovementKind
func (k MovementKind) String() string {
	return string(k)
}

// IsValid checks if the movement kind is one of the closed set
func (k MovementKind) IsValid() bool {
	switch k {
	case KindReceive, KindSpend,
		KindReceiveTransfer, KindSpendTransfer,
		KindReceiveOverpayment, KindSpendOverpayment,
		KindReceivePrepayment, KindSpendPrepayment,
		KindPayable, KindReceivable:
		return true
	}
	return false
}

// IsSettlement reports whether the kind describes an actual bank movement
func (k MovementKind) IsSettlement() bool {
	return k.IsValid() && !k.IsLedger()
}

// IsLedger reports whether the kind describes a booked obligation
func (k MovementKind) IsLedger() bool {
	return k == KindPayable || k == KindReceivable
}

// ParseMovementKind parses and validates a movement kind from string
func ParseMovementKind(s string) (MovementKind, error) {
	kind := MovementKind(strings.ToUpper(strings.TrimSpace(s)))
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid movement kind '%s'", s)
	}
	return kind, nil
}

// SettlementDirection describes which way money is expected to move to
// settle a ledger record.
type SettlementDirection string

const (
	DirectionPaymentExpected SettlementDirection = "PAYMENT_EXPECTED"
	DirectionReceiptExpected SettlementDirection = "RECEIPT_EXPECTED"
)

// ExpectedDirection returns the settlement direction implied by a ledger
// kind. For settlement kinds the answer is meaningless and an empty
// direction is returned.
func (k MovementKind) ExpectedDirection() SettlementDirection {
	switch k {
	case KindPayable:
		return DirectionPaymentExpected
	case KindReceivable:
		return DirectionReceiptExpected
	default:
		return ""
	}
}

// ReconciliationStatus is the tri-state reconciled marker carried by
// settlement records. Absent or unparseable markers map to ReconUnknown,
// which downstream classifiers must treat as outstanding.
type ReconciliationStatus int

const (
	ReconUnknown ReconciliationStatus = iota
	ReconReconciled
	ReconUnreconciled
)

// String returns the string representation of ReconciliationStatus
func (s ReconciliationStatus) String() string {
	switch s {
	case ReconReconciled:
		return "RECONCILED"
	case ReconUnreconciled:
		return "UNRECONCILED"
	default:
		return "UNKNOWN"
	}
}

// ParseReconciliationStatus maps a raw marker string to the tri-state.
// Anything unrecognized, including the empty string, is ReconUnknown.
func ParseReconciliationStatus(s string) ReconciliationStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RECONCILED", "TRUE", "YES":
		return ReconReconciled
	case "UNRECONCILED", "FALSE", "NO":
		return ReconUnreconciled
	default:
		return ReconUnknown
	}
}

// RecordStatus is the lifecycle status a record carries in the source
// platform.
type RecordStatus string

const (
	StatusAuthorised RecordStatus = "AUTHORISED"
	StatusPaid       RecordStatus = "PAID"
	StatusDraft      RecordStatus = "DRAFT"
	StatusSubmitted  RecordStatus = "SUBMITTED"
	StatusVoided     RecordStatus = "VOIDED"
	StatusDeleted    RecordStatus = "DELETED"
)

// IsValid checks if the record status is one of the closed set
func (s RecordStatus) IsValid() bool {
	switch s {
	case StatusAuthorised, StatusPaid, StatusDraft, StatusSubmitted, StatusVoided, StatusDeleted:
		return true
	}
	return false
}

// ParseRecordStatus parses and validates a lifecycle status from string
func ParseRecordStatus(s string) (RecordStatus, error) {
	status := RecordStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid record status '%s'", s)
	}
	return status, nil
}

// LineItem is a single line of a ledger record. Only the amount matters to
// the engine; it is used as an extraction fallback when the record total
// is missing.
type LineItem struct {
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}

// TransactionRecord is one financial movement, either settlement-side or
// ledger-side, as supplied by the external transaction cache. The engine
// treats records as an immutable snapshot: it never mutates them and never
// writes back to the source system.
type TransactionRecord struct {
	ID          string               `json:"id"`
	Kind        MovementKind         `json:"kind"`
	Date        time.Time            `json:"date"`
	Amount      decimal.Decimal      `json:"amount"`
	Contact     string               `json:"contact,omitempty"`
	Reference   string               `json:"reference,omitempty"`
	AccountCode string               `json:"account_code,omitempty"`
	Status      RecordStatus         `json:"status,omitempty"`
	Reconciled  ReconciliationStatus `json:"reconciled"`
	LineItems   []LineItem           `json:"line_items,omitempty"`

	// RawPayload is the untouched source document, retained for
	// traceability and deep-linking back into the source platform.
	RawPayload json.RawMessage `json:"raw_payload,omitempty"`
}

// Validate performs basic validation on the TransactionRecord
func (r *TransactionRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("record ID cannot be empty")
	}

	if !r.Kind.IsValid() {
		return fmt.Errorf("invalid movement kind: %s", r.Kind)
	}

	if r.Date.IsZero() {
		return fmt.Errorf("record date cannot be zero")
	}

	return nil
}

// EffectiveAmount returns the record total, falling back to the sum of
// line-item amounts when the top-level total is absent or zero. Records
// with neither resolve to zero rather than failing.
func (r *TransactionRecord) EffectiveAmount() decimal.Decimal {
	if !r.Amount.IsZero() {
		return r.Amount
	}

	total := decimal.Zero
	for _, li := range r.LineItems {
		total = total.Add(li.Amount)
	}
	return total
}

// AbsoluteAmount returns the absolute value of the effective amount
func (r *TransactionRecord) AbsoluteAmount() decimal.Decimal {
	return r.EffectiveAmount().Abs()
}

// String returns a string representation of the TransactionRecord
func (r *TransactionRecord) String() string {
	return fmt.Sprintf("TransactionRecord{ID: %s, Kind: %s, Amount: %s, Date: %s, Contact: %s}",
		r.ID, r.Kind, r.EffectiveAmount().String(), r.Date.Format("2006-01-02"), r.Contact)
}

// FinancialYear is a July 1 to June 30 accounting period, labeled by its
// two constituent calendar years (FY2024-25 starts 1 July 2024).
type FinancialYear struct {
	StartYear int `json:"start_year"`
}

// FinancialYearOf derives the financial year containing a date: months
// July onward belong to the FY starting that calendar year.
func FinancialYearOf(t time.Time) FinancialYear {
	year := t.Year()
	if t.Month() < time.July {
		year--
	}
	return FinancialYear{StartYear: year}
}

// ParseFinancialYear parses labels of the form "FY2024-25" or "2024-25"
func ParseFinancialYear(s string) (FinancialYear, error) {
	trimmed := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "FY")
	parts := strings.SplitN(trimmed, "-", 2)

	start, err := strconv.Atoi(parts[0])
	if err != nil || start < 1000 {
		return FinancialYear{}, fmt.Errorf("invalid financial year '%s': expected format FY2024-25", s)
	}
	if len(parts) == 2 {
		end, err := strconv.Atoi(parts[1])
		if err != nil {
			return FinancialYear{}, fmt.Errorf("invalid financial year '%s': expected format FY2024-25", s)
		}
		if end != (start+1)%100 {
			return FinancialYear{}, fmt.Errorf("invalid financial year '%s': years are not consecutive", s)
		}
	}

	return FinancialYear{StartYear: start}, nil
}

// Label returns the label form, e.g. "FY2024-25"
func (fy FinancialYear) Label() string {
	return fmt.Sprintf("FY%d-%02d", fy.StartYear, (fy.StartYear+1)%100)
}

// Start returns the first instant of the financial year (1 July, UTC)
func (fy FinancialYear) Start() time.Time {
	return time.Date(fy.StartYear, time.July, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last day of the financial year (30 June, UTC)
func (fy FinancialYear) End() time.Time {
	return time.Date(fy.StartYear+1, time.June, 30, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether a date falls inside the financial year
func (fy FinancialYear) Contains(t time.Time) bool {
	return FinancialYearOf(t) == fy
}

// Tolerance rates scale inversely with magnitude: rounding noise is
// proportionally larger on small amounts and unacceptable on large ones.
var (
	toleranceSmallCeiling = decimal.NewFromInt(1000)
	toleranceMidCeiling   = decimal.NewFromInt(50000)

	toleranceRateSmall = decimal.NewFromFloat(0.02)
	toleranceRateMid   = decimal.NewFromFloat(0.01)
	toleranceRateLarge = decimal.NewFromFloat(0.005)
)

// AmountTolerance returns the acceptable absolute difference when
// comparing two amounts of roughly the given magnitude: 2% under 1,000
// currency units, 1% up to 50,000, 0.5% above that.
func AmountTolerance(amount decimal.Decimal) decimal.Decimal {
	abs := amount.Abs()

	switch {
	case abs.LessThan(toleranceSmallCeiling):
		return abs.Mul(toleranceRateSmall)
	case abs.LessThanOrEqual(toleranceMidCeiling):
		return abs.Mul(toleranceRateMid)
	default:
		return abs.Mul(toleranceRateLarge)
	}
}

// AmountsNearEqual reports whether two amounts are within the
// magnitude-scaled tolerance of each other (compared on absolute values)
func AmountsNearEqual(a, b decimal.Decimal) bool {
	diff := a.Abs().Sub(b.Abs()).Abs()
	return diff.LessThanOrEqual(AmountTolerance(a))
}

// DaysBetween returns the absolute gap between two dates in whole days,
// ignoring time-of-day.
func DaysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)

	diff := ad.Sub(bd)
	if diff < 0 {
		diff = -diff
	}
	return int(diff.Hours() / 24)
}
