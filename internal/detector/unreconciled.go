// Package detector holds the three record-set analyses that run after
// matching: unreconciled classification, duplicate grouping and
// missing-entry detection.
package detector

import (
	"ledger-reconciler/internal/models"
	"ledger-reconciler/pkg/logger"
)

// Unreconciled item status markers.
const (
	StatusUnreconciled = "UNRECONCILED"
	StatusNeedsReview  = "ERROR - manual review required"
)

// UnreconciledItem is a settlement record flagged as outstanding.
type UnreconciledItem struct {
	Record *models.TransactionRecord `json:"record"`
	Status string                    `json:"status"`
}

// Classifier flags settlement records that lack a confirmed-reconciled
// marker. Ambiguous records are always flagged; the classifier never
// defaults missing data to "reconciled".
type Classifier struct {
	logger logger.Logger
}

// NewClassifier creates an unreconciled classifier.
func NewClassifier(log logger.Logger) *Classifier {
	if log == nil {
		log = logger.GetGlobalLogger().WithComponent("classifier")
	}
	return &Classifier{logger: log}
}

// IsOutstanding reports whether a settlement record should be treated
// as unreconciled. Only an explicit confirmed-reconciled marker clears
// a record; draft and submitted raw statuses are always outstanding.
func (c *Classifier) IsOutstanding(record *models.TransactionRecord) bool {
	if record.Status == models.StatusDraft || record.Status == models.StatusSubmitted {
		return true
	}

	return record.Reconciled != models.ReconReconciled
}

// Classify returns the outstanding subset of the given settlement
// records. A record that cannot be evaluated is included with an error
// marker rather than dropped.
func (c *Classifier) Classify(records []*models.TransactionRecord) []UnreconciledItem {
	items := make([]UnreconciledItem, 0)

	for _, record := range records {
		item, ok := c.classifyOne(record)
		if ok {
			items = append(items, item)
		}
	}

	return items
}

func (c *Classifier) classifyOne(record *models.TransactionRecord) (item UnreconciledItem, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.WithField("panic", r).Error("Record classification failed, flagging for manual review")
			item = UnreconciledItem{Record: record, Status: StatusNeedsReview}
			ok = true
		}
	}()

	if record == nil {
		return UnreconciledItem{Status: StatusNeedsReview}, true
	}

	if c.IsOutstanding(record) {
		return UnreconciledItem{Record: record, Status: StatusUnreconciled}, true
	}

	return UnreconciledItem{}, false
}

// FlagAll marks every settlement record as needing review. It is the
// fallback when classification as a whole cannot run.
func FlagAll(records []*models.TransactionRecord) []UnreconciledItem {
	items := make([]UnreconciledItem, 0, len(records))
	for _, record := range records {
		items = append(items, UnreconciledItem{Record: record, Status: StatusNeedsReview})
	}
	return items
}
