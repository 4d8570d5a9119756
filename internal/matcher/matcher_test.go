package matcher

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"ledger-reconciler/internal/models"
)

func createTestSettlement(id string, amount float64, date time.Time, contact, reference string) *models.TransactionRecord {
	return &models.TransactionRecord{
		ID:        id,
		Kind:      models.KindSpend,
		Date:      date,
		Amount:    decimal.NewFromFloat(amount),
		Contact:   contact,
		Reference: reference,
	}
}

func createTestLedger(id string, amount float64, date time.Time, contact, reference string) *models.TransactionRecord {
	return &models.TransactionRecord{
		ID:        id,
		Kind:      models.KindPayable,
		Date:      date,
		Amount:    decimal.NewFromFloat(amount),
		Contact:   contact,
		Reference: reference,
		Status:    models.StatusAuthorised,
	}
}

func TestConfigValidation(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
	if err := StrictConfig().Validate(); err != nil {
		t.Errorf("Strict config should validate: %v", err)
	}
	if err := RelaxedConfig().Validate(); err != nil {
		t.Errorf("Relaxed config should validate: %v", err)
	}

	bad := DefaultConfig()
	bad.MinScore = -1
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for negative min score")
	}

	bad = DefaultConfig()
	bad.Weights.CloseAmount = 90
	if err := bad.Validate(); err == nil {
		t.Error("Expected error when close amount outweighs exact amount")
	}
}

func TestScoreStrongPairing(t *testing.T) {
	engine, err := NewEngine(nil)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	date := time.Date(2025, 4, 28, 0, 0, 0, 0, time.UTC)
	settlement := createTestSettlement("bt-1", 2091.76, date, "Disaster Recovery", "INV-1045")
	ledger := createTestLedger("inv-1", 2091.76, date, "Disaster Recovery Pty Ltd", "INV-1045")

	match := engine.Score(settlement, ledger)

	if match.Score < 95 {
		t.Errorf("Expected score of at least 95 for same-day exact pairing, got %v", match.Score)
	}
	if match.Score > 100 {
		t.Errorf("Score should be capped at 100, got %v", match.Score)
	}
	if !match.AmountDiff.IsZero() {
		t.Errorf("Expected zero amount diff, got %s", match.AmountDiff)
	}

	reasons := make(map[MatchReason]bool)
	for _, r := range match.Reasons {
		reasons[r] = true
	}
	for _, want := range []MatchReason{ReasonExactAmount, ReasonContactMatch, ReasonDateProximity, ReasonReferenceOverlap} {
		if !reasons[want] {
			t.Errorf("Expected reason %s to be present", want)
		}
	}
	if reasons[ReasonCloseAmount] {
		t.Error("Exact and close amount reasons are mutually exclusive")
	}
}

func TestScoreAmountSignals(t *testing.T) {
	engine, _ := NewEngine(nil)
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	exact := engine.Score(
		createTestSettlement("bt-1", 100, date, "Acme", ""),
		createTestLedger("inv-1", 100, date, "Acme", ""),
	)
	close := engine.Score(
		createTestSettlement("bt-2", 100, date, "Acme", ""),
		createTestLedger("inv-2", 101.50, date, "Acme", ""),
	)
	far := engine.Score(
		createTestSettlement("bt-3", 100, date, "Acme", ""),
		createTestLedger("inv-3", 150, date, "Acme", ""),
	)

	if exact.Score <= close.Score {
		t.Errorf("Exact amount (%v) should outscore in-tolerance amount (%v)", exact.Score, close.Score)
	}
	if close.Score <= far.Score {
		t.Errorf("In-tolerance amount (%v) should outscore mismatched amount (%v)", close.Score, far.Score)
	}
}

func TestScoreDateDecay(t *testing.T) {
	engine, _ := NewEngine(nil)
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	ledger := createTestLedger("inv-1", 100, base, "Acme", "")

	var last float64 = -1
	for gap := 7; gap >= 0; gap-- {
		settlement := createTestSettlement("bt-1", 100, base.AddDate(0, 0, gap), "Acme", "")
		score := engine.Score(settlement, ledger).Score
		if score <= last {
			t.Errorf("Score at gap %d (%v) should exceed score at gap %d (%v)", gap, score, gap+1, last)
		}
		last = score
	}

	// At and beyond the gap limit the date signal is gone.
	atLimit := engine.Score(createTestSettlement("bt-2", 100, base.AddDate(0, 0, 7), "Acme", ""), ledger)
	for _, r := range atLimit.Reasons {
		if r == ReasonDateProximity {
			t.Error("Date proximity should not contribute at the gap limit")
		}
	}
}

func TestAssignOneToOne(t *testing.T) {
	engine, _ := NewEngine(nil)
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	settlements := []*models.TransactionRecord{
		createTestSettlement("bt-1", 100, date, "Acme", ""),
		createTestSettlement("bt-2", 100, date, "Acme", ""),
	}
	ledgers := []*models.TransactionRecord{
		createTestLedger("inv-1", 100, date, "Acme", ""),
	}

	matches := engine.Assign(settlements, ledgers)

	if len(matches) != 1 {
		t.Fatalf("Expected a single match for a single ledger record, got %d", len(matches))
	}
	if matches[0].Settlement.ID != "bt-1" {
		t.Errorf("Expected lowest-ID settlement to claim the ledger record, got %s", matches[0].Settlement.ID)
	}
}

func TestAssignFiltersBelowThreshold(t *testing.T) {
	engine, _ := NewEngine(nil)
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	settlements := []*models.TransactionRecord{
		createTestSettlement("bt-1", 100, date, "Acme", ""),
	}
	ledgers := []*models.TransactionRecord{
		createTestLedger("inv-1", 999, date.AddDate(0, 0, 30), "Unrelated Party", ""),
	}

	if matches := engine.Assign(settlements, ledgers); len(matches) != 0 {
		t.Errorf("Expected no matches below the threshold, got %d", len(matches))
	}
}

func TestAssignSortedByScore(t *testing.T) {
	engine, _ := NewEngine(nil)
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	settlements := []*models.TransactionRecord{
		createTestSettlement("bt-1", 100, date.AddDate(0, 0, 3), "Acme", ""),
		createTestSettlement("bt-2", 250, date, "Widgets Ltd", "PO-9"),
	}
	ledgers := []*models.TransactionRecord{
		createTestLedger("inv-1", 100, date, "Acme", ""),
		createTestLedger("inv-2", 250, date, "Widgets Ltd", "PO-9"),
	}

	matches := engine.Assign(settlements, ledgers)

	if len(matches) != 2 {
		t.Fatalf("Expected two matches, got %d", len(matches))
	}
	if matches[0].Score < matches[1].Score {
		t.Error("Matches should be sorted by score descending")
	}
	if matches[0].Settlement.ID != "bt-2" {
		t.Errorf("Strongest pairing should come first, got %s", matches[0].Settlement.ID)
	}

	// Each ledger record appears at most once.
	seen := make(map[string]bool)
	for _, m := range matches {
		if seen[m.Ledger.ID] {
			t.Errorf("Ledger record %s assigned twice", m.Ledger.ID)
		}
		seen[m.Ledger.ID] = true
	}
}

func TestAssignDeterministic(t *testing.T) {
	engine, _ := NewEngine(nil)
	date := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	settlements := []*models.TransactionRecord{
		createTestSettlement("bt-2", 100, date, "Acme", ""),
		createTestSettlement("bt-1", 100, date, "Acme", ""),
	}
	ledgers := []*models.TransactionRecord{
		createTestLedger("inv-2", 100, date, "Acme", ""),
		createTestLedger("inv-1", 100, date, "Acme", ""),
	}

	first := engine.Assign(settlements, ledgers)
	second := engine.Assign(
		[]*models.TransactionRecord{settlements[1], settlements[0]},
		[]*models.TransactionRecord{ledgers[1], ledgers[0]},
	)

	if len(first) != len(second) {
		t.Fatalf("Assignment count changed with input order: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Settlement.ID != second[i].Settlement.ID || first[i].Ledger.ID != second[i].Ledger.ID {
			t.Errorf("Assignment %d changed with input order: %s/%s vs %s/%s",
				i, first[i].Settlement.ID, first[i].Ledger.ID,
				second[i].Settlement.ID, second[i].Ledger.ID)
		}
	}
}
