package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMovementKindIsValid(t *testing.T) {
	valid := []MovementKind{
		KindReceive, KindSpend,
		KindReceiveTransfer, KindSpendTransfer,
		KindReceiveOverpayment, KindSpendOverpayment,
		KindReceivePrepayment, KindSpendPrepayment,
		KindPayable, KindReceivable,
	}

	for _, kind := range valid {
		if !kind.IsValid() {
			t.Errorf("Expected %s to be valid", kind)
		}
	}

	invalid := []MovementKind{"", "INVOICE", "receive", "BANK"}
	for _, kind := range invalid {
		if kind.IsValid() {
			t.Errorf("Expected %s to be invalid", kind)
		}
	}
}

func TestMovementKindSides(t *testing.T) {
	tests := []struct {
		kind         MovementKind
		isSettlement bool
		isLedger     bool
	}{
		{KindReceive, true, false},
		{KindSpend, true, false},
		{KindSpendTransfer, true, false},
		{KindReceiveOverpayment, true, false},
		{KindSpendPrepayment, true, false},
		{KindPayable, false, true},
		{KindReceivable, false, true},
		{MovementKind("BOGUS"), false, false},
	}

	for _, tt := range tests {
		if got := tt.kind.IsSettlement(); got != tt.isSettlement {
			t.Errorf("%s: IsSettlement() = %v, want %v", tt.kind, got, tt.isSettlement)
		}
		if got := tt.kind.IsLedger(); got != tt.isLedger {
			t.Errorf("%s: IsLedger() = %v, want %v", tt.kind, got, tt.isLedger)
		}
	}
}

func TestExpectedDirection(t *testing.T) {
	if got := KindPayable.ExpectedDirection(); got != DirectionPaymentExpected {
		t.Errorf("ACCPAY direction = %s, want %s", got, DirectionPaymentExpected)
	}

	if got := KindReceivable.ExpectedDirection(); got != DirectionReceiptExpected {
		t.Errorf("ACCREC direction = %s, want %s", got, DirectionReceiptExpected)
	}

	if got := KindReceive.ExpectedDirection(); got != "" {
		t.Errorf("Settlement kind should have no direction, got %s", got)
	}
}

func TestParseReconciliationStatus(t *testing.T) {
	tests := []struct {
		input string
		want  ReconciliationStatus
	}{
		{"RECONCILED", ReconReconciled},
		{"reconciled", ReconReconciled},
		{"true", ReconReconciled},
		{"UNRECONCILED", ReconUnreconciled},
		{"false", ReconUnreconciled},
		{"", ReconUnknown},
		{"maybe", ReconUnknown},
		{"  YES  ", ReconReconciled},
	}

	for _, tt := range tests {
		if got := ParseReconciliationStatus(tt.input); got != tt.want {
			t.Errorf("ParseReconciliationStatus(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestParseRecordStatus(t *testing.T) {
	status, err := ParseRecordStatus("paid")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if status != StatusPaid {
		t.Errorf("Expected PAID, got %s", status)
	}

	if _, err := ParseRecordStatus("PENDING"); err == nil {
		t.Error("Expected error for unknown status")
	}
}

func TestTransactionRecordValidate(t *testing.T) {
	valid := &TransactionRecord{
		ID:     "rec-1",
		Kind:   KindSpend,
		Date:   time.Date(2025, 4, 28, 0, 0, 0, 0, time.UTC),
		Amount: decimal.NewFromFloat(2091.76),
	}

	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid record, got error: %v", err)
	}

	tests := []struct {
		name   string
		record TransactionRecord
	}{
		{"empty ID", TransactionRecord{Kind: KindSpend, Date: valid.Date}},
		{"bad kind", TransactionRecord{ID: "x", Kind: "NOPE", Date: valid.Date}},
		{"zero date", TransactionRecord{ID: "x", Kind: KindSpend}},
	}

	for _, tt := range tests {
		if err := tt.record.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestEffectiveAmountLineItemFallback(t *testing.T) {
	record := &TransactionRecord{
		ID:   "inv-1",
		Kind: KindPayable,
		Date: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		LineItems: []LineItem{
			{Description: "widgets", Amount: decimal.NewFromFloat(120.50)},
			{Description: "freight", Amount: decimal.NewFromFloat(29.50)},
		},
	}

	got := record.EffectiveAmount()
	if !got.Equal(decimal.NewFromFloat(150.00)) {
		t.Errorf("EffectiveAmount() = %s, want 150", got)
	}

	// A non-zero total wins over line items.
	record.Amount = decimal.NewFromFloat(149.99)
	if got := record.EffectiveAmount(); !got.Equal(decimal.NewFromFloat(149.99)) {
		t.Errorf("EffectiveAmount() = %s, want 149.99", got)
	}

	// Nothing at all resolves to zero.
	empty := &TransactionRecord{ID: "inv-2", Kind: KindPayable, Date: record.Date}
	if !empty.EffectiveAmount().IsZero() {
		t.Error("Expected zero effective amount for empty record")
	}
}

func TestFinancialYearOf(t *testing.T) {
	tests := []struct {
		date time.Time
		want int
	}{
		{time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), 2023},
		{time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), 2024},
		{time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), 2024},
		{time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 2024},
		{time.Date(2025, 6, 30, 23, 59, 0, 0, time.UTC), 2024},
		{time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), 2025},
	}

	for _, tt := range tests {
		if got := FinancialYearOf(tt.date); got.StartYear != tt.want {
			t.Errorf("FinancialYearOf(%s).StartYear = %d, want %d",
				tt.date.Format("2006-01-02"), got.StartYear, tt.want)
		}
	}
}

func TestFinancialYearLabel(t *testing.T) {
	tests := []struct {
		startYear int
		want      string
	}{
		{2024, "FY2024-25"},
		{2019, "FY2019-20"},
		{1999, "FY1999-00"},
	}

	for _, tt := range tests {
		fy := FinancialYear{StartYear: tt.startYear}
		if got := fy.Label(); got != tt.want {
			t.Errorf("Label() = %s, want %s", got, tt.want)
		}
	}
}

func TestParseFinancialYear(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"FY2024-25", 2024, false},
		{"fy2024-25", 2024, false},
		{"2024-25", 2024, false},
		{"FY2024", 2024, false},
		{"FY2024-26", 0, true},
		{"FY24-25", 0, true},
		{"", 0, true},
		{"garbage", 0, true},
		{"FY2024abc", 0, true},
		{"FY2024-2x", 0, true},
		{"FY 2024-25", 0, true},
	}

	for _, tt := range tests {
		fy, err := ParseFinancialYear(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFinancialYear(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFinancialYear(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if fy.StartYear != tt.want {
			t.Errorf("ParseFinancialYear(%q).StartYear = %d, want %d", tt.input, fy.StartYear, tt.want)
		}
	}
}

func TestFinancialYearBounds(t *testing.T) {
	fy := FinancialYear{StartYear: 2024}

	if got := fy.Start(); !got.Equal(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Start() = %s", got)
	}

	if got := fy.End(); !got.Equal(time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("End() = %s", got)
	}

	if !fy.Contains(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Error("Expected FY2024-25 to contain 2025-03-15")
	}

	if fy.Contains(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)) {
		t.Error("Expected FY2024-25 not to contain 2024-06-30")
	}
}

func TestAmountTolerance(t *testing.T) {
	tests := []struct {
		amount float64
		want   float64
	}{
		{100, 2.0},      // 2% under 1,000
		{999.99, 19.9998},
		{1000, 10.0},    // 1% up to 50,000
		{50000, 500.0},
		{50000.01, 250.000050}, // 0.5% above 50,000
		{200000, 1000.0},
		{-100, 2.0}, // sign is irrelevant
	}

	for _, tt := range tests {
		got := AmountTolerance(decimal.NewFromFloat(tt.amount))
		if !got.Equal(decimal.NewFromFloat(tt.want)) {
			t.Errorf("AmountTolerance(%v) = %s, want %v", tt.amount, got, tt.want)
		}
	}
}

func TestAmountsNearEqual(t *testing.T) {
	tests := []struct {
		a, b float64
		want bool
	}{
		{100, 100, true},
		{100, 101.99, true},  // within 2%
		{100, 102.01, false}, // past 2%
		{10000, 10099, true}, // within 1%
		{10000, 10101, false},
		{100, -100, true}, // absolute-value comparison
	}

	for _, tt := range tests {
		got := AmountsNearEqual(decimal.NewFromFloat(tt.a), decimal.NewFromFloat(tt.b))
		if got != tt.want {
			t.Errorf("AmountsNearEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		a, b time.Time
		want int
	}{
		{
			time.Date(2025, 4, 28, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 4, 28, 23, 59, 0, 0, time.UTC),
			0, // time-of-day is ignored
		},
		{
			time.Date(2025, 4, 28, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 4, 29, 0, 0, 0, 0, time.UTC),
			1,
		},
		{
			time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 4, 28, 0, 0, 0, 0, time.UTC),
			7, // order is irrelevant
		},
		{
			time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			1,
		},
	}

	for _, tt := range tests {
		if got := DaysBetween(tt.a, tt.b); got != tt.want {
			t.Errorf("DaysBetween(%s, %s) = %d, want %d",
				tt.a.Format("2006-01-02"), tt.b.Format("2006-01-02"), got, tt.want)
		}
	}
}
