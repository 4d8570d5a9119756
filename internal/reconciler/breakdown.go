package reconciler

import (
	"github.com/shopspring/decimal"

	"ledger-reconciler/internal/models"
)

// UnknownAccountBucket collects records that carry no account code.
const UnknownAccountBucket = "unknown"

// BucketTotals is the count and summed absolute amount for one
// breakdown bucket.
type BucketTotals struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

func (b BucketTotals) add(amount decimal.Decimal) BucketTotals {
	return BucketTotals{Count: b.Count + 1, Amount: b.Amount.Add(amount.Abs())}
}

// findingRecords collects every record implicated in a finding, the
// input to the breakdown folds. Matches contribute their settlement
// side, mirroring the section totals; records the run raised nothing
// about stay out of the breakdowns.
func findingRecords(s *ReconciliationSummary) []*models.TransactionRecord {
	records := make([]*models.TransactionRecord, 0, len(s.Unreconciled))

	for _, item := range s.Unreconciled {
		if item.Record != nil {
			records = append(records, item.Record)
		}
	}
	for _, match := range s.SuggestedMatches {
		records = append(records, match.Settlement)
	}
	for _, group := range s.DuplicateGroups {
		records = append(records, group.Records...)
	}
	for _, entry := range s.MissingEntries {
		records = append(records, entry.Record)
	}

	return records
}

// ByAccount folds records into per-account-code totals.
func ByAccount(records []*models.TransactionRecord) map[string]BucketTotals {
	buckets := make(map[string]BucketTotals)

	for _, record := range records {
		if record == nil {
			continue
		}
		key := record.AccountCode
		if key == "" {
			key = UnknownAccountBucket
		}
		buckets[key] = buckets[key].add(record.EffectiveAmount())
	}

	return buckets
}

// ByFinancialYear folds records into per-financial-year totals, keyed
// by label ("FY2024-25").
func ByFinancialYear(records []*models.TransactionRecord) map[string]BucketTotals {
	buckets := make(map[string]BucketTotals)

	for _, record := range records {
		if record == nil {
			continue
		}
		key := models.FinancialYearOf(record.Date).Label()
		buckets[key] = buckets[key].add(record.EffectiveAmount())
	}

	return buckets
}
