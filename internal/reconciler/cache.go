package reconciler

import (
	"context"

	"ledger-reconciler/internal/models"
)

// TransactionCache supplies the two record classes for one tenant. An
// empty years filter means all financial years.
type TransactionCache interface {
	// SettlementRecords returns bank-side movements (spend/receive and
	// their transfer, overpayment and prepayment variants).
	SettlementRecords(ctx context.Context, tenantID string, years []models.FinancialYear) ([]*models.TransactionRecord, error)

	// LedgerRecords returns invoice-side records (payables and
	// receivables).
	LedgerRecords(ctx context.Context, tenantID string, years []models.FinancialYear) ([]*models.TransactionRecord, error)
}
