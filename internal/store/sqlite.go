// Package store is the SQLite-backed transaction cache. It holds the
// canonical record snapshot that reconciliation runs read from.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"ledger-reconciler/internal/models"
	"ledger-reconciler/internal/reconciler"
	apperrors "ledger-reconciler/pkg/errors"
)

// Store provides SQLite access to cached transaction records.
type Store struct {
	db *sql.DB
}

// Compile-time check that Store satisfies the orchestrator's cache
// interface.
var _ reconciler.TransactionCache = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS transaction_records (
	id              TEXT NOT NULL,
	tenant_id       TEXT NOT NULL,
	kind            TEXT NOT NULL,
	date            TEXT NOT NULL,
	amount          TEXT NOT NULL,
	contact         TEXT NOT NULL DEFAULT '',
	reference       TEXT NOT NULL DEFAULT '',
	account_code    TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL DEFAULT '',
	reconciled      TEXT NOT NULL DEFAULT '',
	line_items_json TEXT NOT NULL DEFAULT '',
	raw_payload     TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (tenant_id, id)
);

CREATE INDEX IF NOT EXISTS idx_records_tenant_kind
	ON transaction_records (tenant_id, kind);
`

// Open opens (creating if necessary) a record cache at the given path.
// Use ":memory:" for an ephemeral cache.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryStorage, apperrors.CodeStorageUnavailable, "opening record cache failed")
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, apperrors.Wrap(err, apperrors.CategoryStorage, apperrors.CodeStorageUnavailable, "initializing record cache schema failed")
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRecords upserts a batch of records for one tenant inside a single
// transaction.
func (s *Store) SaveRecords(ctx context.Context, tenantID string, records []*models.TransactionRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CategoryStorage, apperrors.CodeStorageUnavailable, "starting cache transaction failed")
	}

	query := `
	INSERT OR REPLACE INTO transaction_records
	(id, tenant_id, kind, date, amount, contact, reference, account_code,
	 status, reconciled, line_items_json, raw_payload)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, record := range records {
		if record == nil {
			continue
		}

		var lineItems string
		if len(record.LineItems) > 0 {
			encoded, err := json.Marshal(record.LineItems)
			if err != nil {
				_ = tx.Rollback()
				return apperrors.Wrap(err, apperrors.CategoryStorage, apperrors.CodeInvalidRecord, "encoding line items failed")
			}
			lineItems = string(encoded)
		}

		_, err := tx.ExecContext(ctx, query,
			record.ID,
			tenantID,
			string(record.Kind),
			record.Date.UTC().Format(time.RFC3339),
			record.Amount.String(),
			record.Contact,
			record.Reference,
			record.AccountCode,
			string(record.Status),
			reconciledColumn(record.Reconciled),
			lineItems,
			string(record.RawPayload),
		)
		if err != nil {
			_ = tx.Rollback()
			return apperrors.Wrap(err, apperrors.CategoryStorage, apperrors.CodeStorageUnavailable, "writing record to cache failed")
		}
	}

	return tx.Commit()
}

// SettlementRecords returns bank-side movements for a tenant,
// optionally filtered to a set of financial years.
func (s *Store) SettlementRecords(ctx context.Context, tenantID string, years []models.FinancialYear) ([]*models.TransactionRecord, error) {
	return s.queryRecords(ctx, tenantID, years, false)
}

// LedgerRecords returns invoice-side records for a tenant, optionally
// filtered to a set of financial years.
func (s *Store) LedgerRecords(ctx context.Context, tenantID string, years []models.FinancialYear) ([]*models.TransactionRecord, error) {
	return s.queryRecords(ctx, tenantID, years, true)
}

func (s *Store) queryRecords(ctx context.Context, tenantID string, years []models.FinancialYear, ledgerSide bool) ([]*models.TransactionRecord, error) {
	op := "IN"
	if !ledgerSide {
		op = "NOT IN"
	}

	query := `
	SELECT id, kind, date, amount, contact, reference, account_code,
	       status, reconciled, line_items_json, raw_payload
	FROM transaction_records
	WHERE tenant_id = ? AND kind ` + op + ` ('ACCPAY', 'ACCREC')
	ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryStorage, apperrors.CodeStorageUnavailable, "reading records from cache failed")
	}
	defer rows.Close()

	records := make([]*models.TransactionRecord, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		if len(years) > 0 && !inYears(record.Date, years) {
			continue
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryStorage, apperrors.CodeStorageUnavailable, "reading records from cache failed")
	}

	return records, nil
}

func scanRecord(rows *sql.Rows) (*models.TransactionRecord, error) {
	var (
		record     models.TransactionRecord
		kind       string
		date       string
		amount     string
		status     string
		reconciled string
		lineItems  string
		rawPayload string
	)

	err := rows.Scan(&record.ID, &kind, &date, &amount, &record.Contact,
		&record.Reference, &record.AccountCode, &status, &reconciled,
		&lineItems, &rawPayload)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryStorage, apperrors.CodeInvalidRecord, "scanning cached record failed")
	}

	record.Kind = models.MovementKind(kind)

	record.Date, err = time.Parse(time.RFC3339, date)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryStorage, apperrors.CodeInvalidRecord, "parsing cached record date failed").
			WithContext("record_id", record.ID)
	}

	record.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryStorage, apperrors.CodeInvalidRecord, "parsing cached record amount failed").
			WithContext("record_id", record.ID)
	}

	if status != "" {
		record.Status = models.RecordStatus(strings.ToUpper(status))
	}
	record.Reconciled = models.ParseReconciliationStatus(reconciled)

	if lineItems != "" {
		if err := json.Unmarshal([]byte(lineItems), &record.LineItems); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CategoryStorage, apperrors.CodeInvalidRecord, "decoding cached line items failed").
				WithContext("record_id", record.ID)
		}
	}
	if rawPayload != "" {
		record.RawPayload = json.RawMessage(rawPayload)
	}

	return &record, nil
}

func reconciledColumn(status models.ReconciliationStatus) string {
	switch status {
	case models.ReconReconciled:
		return "RECONCILED"
	case models.ReconUnreconciled:
		return "UNRECONCILED"
	default:
		return ""
	}
}

func inYears(date time.Time, years []models.FinancialYear) bool {
	for _, fy := range years {
		if fy.Contains(date) {
			return true
		}
	}
	return false
}
