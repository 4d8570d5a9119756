// Package reconciler orchestrates a full reconciliation run: fetching
// both record classes, running the four analysis stages and folding the
// results into a single summary.
package reconciler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ledger-reconciler/internal/detector"
	"ledger-reconciler/internal/matcher"
	"ledger-reconciler/internal/models"
	apperrors "ledger-reconciler/pkg/errors"
	"ledger-reconciler/pkg/logger"
)

// Request scopes one reconciliation run.
type Request struct {
	TenantID string
	Years    []models.FinancialYear
}

// Validate checks the request.
func (r *Request) Validate() error {
	if r.TenantID == "" {
		return apperrors.ValidationError(apperrors.CodeMissingField, "tenant_id", "", nil)
	}
	return nil
}

// SectionTotals is the count and summed absolute amount for one summary
// section.
type SectionTotals struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// Totals aggregates each summary section.
type Totals struct {
	Unreconciled     SectionTotals `json:"unreconciled"`
	SuggestedMatches SectionTotals `json:"suggested_matches"`
	Duplicates       SectionTotals `json:"duplicates"`
	MissingEntries   SectionTotals `json:"missing_entries"`
}

// ReconciliationSummary is the immutable result of one run. It is
// always produced; stage-level failures surface in StageErrors and in
// conservative per-record flags, never as a failed run.
type ReconciliationSummary struct {
	RunID      string    `json:"run_id"`
	TenantID   string    `json:"tenant_id"`
	AnalyzedAt time.Time `json:"analyzed_at"`

	SettlementCount int `json:"settlement_count"`
	LedgerCount     int `json:"ledger_count"`

	Unreconciled     []detector.UnreconciledItem `json:"unreconciled"`
	SuggestedMatches []*matcher.SuggestedMatch   `json:"suggested_matches"`
	DuplicateGroups  []*detector.DuplicateGroup  `json:"duplicate_groups"`
	MissingEntries   []*detector.MissingEntry    `json:"missing_entries"`

	Totals          Totals                  `json:"totals"`
	ByAccount       map[string]BucketTotals `json:"by_account"`
	ByFinancialYear map[string]BucketTotals `json:"by_financial_year"`

	StageErrors []string `json:"stage_errors,omitempty"`
}

// Orchestrator wires the cache and the four analysis stages together.
type Orchestrator struct {
	cache      TransactionCache
	engine     *matcher.Engine
	classifier *detector.Classifier
	duplicates *detector.DuplicateDetector
	missing    *detector.MissingDetector
	logger     logger.Logger

	now      func() time.Time
	newRunID func() string
}

// NewOrchestrator creates an orchestrator. A nil match config selects
// the default profile; a nil logger selects the global one.
func NewOrchestrator(cache TransactionCache, matchConfig *matcher.Config, log logger.Logger) (*Orchestrator, error) {
	if cache == nil {
		return nil, apperrors.New(apperrors.CategoryConfiguration, apperrors.CodeMissingConfig, "transaction cache is required")
	}
	if log == nil {
		log = logger.GetGlobalLogger().WithComponent("orchestrator")
	}

	engine, err := matcher.NewEngine(matchConfig)
	if err != nil {
		return nil, err
	}

	now := time.Now
	return &Orchestrator{
		cache:      cache,
		engine:     engine,
		classifier: detector.NewClassifier(log.WithComponent("classifier")),
		duplicates: detector.NewDuplicateDetector(),
		missing:    detector.NewMissingDetector(now),
		logger:     log,
		now:        now,
		newRunID:   uuid.NewString,
	}, nil
}

// setClock replaces the run clock and run-ID source, making runs
// reproducible.
func (o *Orchestrator) setClock(now func() time.Time, newRunID func() string) {
	o.now = now
	o.newRunID = newRunID
	o.missing = detector.NewMissingDetector(now)
}

// Run executes one reconciliation. The two record classes are fetched
// in parallel; each analysis stage then runs in isolation, so a failure
// in one stage degrades that section to its safest fallback instead of
// aborting the run. Only an invalid request or a fetch failure returns
// an error.
func (o *Orchestrator) Run(ctx context.Context, req *Request) (*ReconciliationSummary, error) {
	if req == nil {
		return nil, apperrors.ValidationError(apperrors.CodeMissingField, "request", nil, nil)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := o.now()
	log := o.logger.WithFields(logger.Fields{"tenant_id": req.TenantID})
	log.Info("Starting reconciliation run")

	settlements, ledgers, err := o.fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	summary := &ReconciliationSummary{
		RunID:           o.newRunID(),
		TenantID:        req.TenantID,
		AnalyzedAt:      start,
		SettlementCount: len(settlements),
		LedgerCount:     len(ledgers),
	}

	o.runStage(summary, "classify", func() {
		summary.Unreconciled = o.classifier.Classify(settlements)
	}, func() {
		summary.Unreconciled = detector.FlagAll(settlements)
	})

	o.runStage(summary, "match", func() {
		outstanding := make([]*models.TransactionRecord, 0, len(summary.Unreconciled))
		for _, item := range summary.Unreconciled {
			if item.Record != nil {
				outstanding = append(outstanding, item.Record)
			}
		}
		summary.SuggestedMatches = o.engine.Assign(outstanding, ledgers)
	}, func() {
		summary.SuggestedMatches = nil
	})

	o.runStage(summary, "duplicates", func() {
		combined := append(append([]*models.TransactionRecord{}, settlements...), ledgers...)
		summary.DuplicateGroups = o.duplicates.Detect(combined)
	}, func() {
		summary.DuplicateGroups = nil
	})

	o.runStage(summary, "missing", func() {
		summary.MissingEntries = o.missing.Detect(ledgers, settlements)
	}, func() {
		summary.MissingEntries = nil
	})

	summary.Totals = computeTotals(summary)

	findings := findingRecords(summary)
	summary.ByAccount = ByAccount(findings)
	summary.ByFinancialYear = ByFinancialYear(findings)

	log.WithFields(logger.Fields{
		"run_id":       summary.RunID,
		"unreconciled": len(summary.Unreconciled),
		"matches":      len(summary.SuggestedMatches),
		"duplicates":   len(summary.DuplicateGroups),
		"missing":      len(summary.MissingEntries),
		"duration":     o.now().Sub(start).String(),
	}).Info("Reconciliation run complete")

	return summary, nil
}

// fetch loads both record classes in parallel.
func (o *Orchestrator) fetch(ctx context.Context, req *Request) (settlements, ledgers []*models.TransactionRecord, err error) {
	var wg sync.WaitGroup
	var settlementErr, ledgerErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		settlements, settlementErr = o.cache.SettlementRecords(ctx, req.TenantID, req.Years)
	}()
	go func() {
		defer wg.Done()
		ledgers, ledgerErr = o.cache.LedgerRecords(ctx, req.TenantID, req.Years)
	}()
	wg.Wait()

	if settlementErr != nil {
		return nil, nil, apperrors.Wrap(settlementErr, apperrors.CategorySnapshot, apperrors.CodeFetchFailed, "fetching settlement records failed")
	}
	if ledgerErr != nil {
		return nil, nil, apperrors.Wrap(ledgerErr, apperrors.CategorySnapshot, apperrors.CodeFetchFailed, "fetching ledger records failed")
	}

	return settlements, ledgers, nil
}

// runStage executes one analysis stage, trapping panics. On failure the
// stage's fallback runs and the error is recorded on the summary.
func (o *Orchestrator) runStage(summary *ReconciliationSummary, name string, stage func(), fallback func()) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.WithFields(logger.Fields{"stage": name, "panic": r}).Error("Analysis stage failed, applying fallback")
			summary.StageErrors = append(summary.StageErrors, fmt.Sprintf("stage %s failed: %v", name, r))
			fallback()
		}
	}()

	stage()
}

func computeTotals(summary *ReconciliationSummary) Totals {
	var t Totals

	for _, item := range summary.Unreconciled {
		t.Unreconciled.Count++
		if item.Record != nil {
			t.Unreconciled.Amount = t.Unreconciled.Amount.Add(item.Record.EffectiveAmount().Abs())
		}
	}

	for _, match := range summary.SuggestedMatches {
		t.SuggestedMatches.Count++
		t.SuggestedMatches.Amount = t.SuggestedMatches.Amount.Add(match.Settlement.EffectiveAmount().Abs())
	}

	for _, group := range summary.DuplicateGroups {
		t.Duplicates.Count++
		t.Duplicates.Amount = t.Duplicates.Amount.Add(group.Exposure)
	}

	for _, entry := range summary.MissingEntries {
		t.MissingEntries.Count++
		t.MissingEntries.Amount = t.MissingEntries.Amount.Add(entry.Amount)
	}

	return t
}
