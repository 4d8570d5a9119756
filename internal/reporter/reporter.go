// Package reporter renders reconciliation summaries for human and
// machine consumption.
//
// Supported output formats:
//   - Console: human-readable sections for terminal display
//   - JSON: the full summary for programmatic consumption
//   - CSV: flat per-finding rows for spreadsheet triage
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"ledger-reconciler/internal/reconciler"
	apperrors "ledger-reconciler/pkg/errors"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// Section toggles
	IncludeUnreconciled   bool `json:"include_unreconciled"`
	IncludeMatches        bool `json:"include_matches"`
	IncludeDuplicates     bool `json:"include_duplicates"`
	IncludeMissingEntries bool `json:"include_missing_entries"`
	IncludeBreakdowns     bool `json:"include_breakdowns"`

	// Console formatting
	MaxItemsPerSection int `json:"max_items_per_section"`

	// CSV options
	CSVHeaders bool `json:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:                FormatConsole,
		IncludeUnreconciled:   true,
		IncludeMatches:        true,
		IncludeDuplicates:     true,
		IncludeMissingEntries: true,
		IncludeBreakdowns:     true,
		MaxItemsPerSection:    50,
		CSVHeaders:            true,
	}
}

// Reporter writes a reconciliation summary in a configured format.
type Reporter struct {
	config *ReportConfig
}

// NewReporter creates a reporter. A nil config selects the defaults.
func NewReporter(config *ReportConfig) *Reporter {
	if config == nil {
		config = DefaultReportConfig()
	}
	return &Reporter{config: config}
}

// Write renders the summary to the writer in the configured format.
func (r *Reporter) Write(w io.Writer, summary *reconciler.ReconciliationSummary) error {
	if summary == nil {
		return apperrors.ValidationError(apperrors.CodeMissingField, "summary", nil, nil)
	}

	switch r.config.Format {
	case FormatJSON:
		return r.writeJSON(w, summary)
	case FormatCSV:
		return r.writeCSV(w, summary)
	case FormatConsole:
		return r.writeConsole(w, summary)
	default:
		return apperrors.ConfigError(apperrors.CodeInvalidConfig,
			fmt.Sprintf("output format %q", r.config.Format), nil)
	}
}

func (r *Reporter) writeJSON(w io.Writer, summary *reconciler.ReconciliationSummary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(summary)
}

func (r *Reporter) writeConsole(w io.Writer, summary *reconciler.ReconciliationSummary) error {
	fmt.Fprintf(w, "Reconciliation run %s\n", summary.RunID)
	fmt.Fprintf(w, "Tenant:   %s\n", summary.TenantID)
	fmt.Fprintf(w, "Analyzed: %s\n", summary.AnalyzedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Records:  %d settlement, %d ledger\n\n",
		summary.SettlementCount, summary.LedgerCount)

	t := summary.Totals
	fmt.Fprintln(w, "Summary")
	fmt.Fprintf(w, "  Unreconciled:      %4d  (%s)\n", t.Unreconciled.Count, t.Unreconciled.Amount.StringFixed(2))
	fmt.Fprintf(w, "  Suggested matches: %4d  (%s)\n", t.SuggestedMatches.Count, t.SuggestedMatches.Amount.StringFixed(2))
	fmt.Fprintf(w, "  Duplicate groups:  %4d  (%s exposure)\n", t.Duplicates.Count, t.Duplicates.Amount.StringFixed(2))
	fmt.Fprintf(w, "  Missing entries:   %4d  (%s)\n", t.MissingEntries.Count, t.MissingEntries.Amount.StringFixed(2))

	if r.config.IncludeUnreconciled && len(summary.Unreconciled) > 0 {
		fmt.Fprintf(w, "\nUnreconciled (%d)\n", len(summary.Unreconciled))
		for i, item := range summary.Unreconciled {
			if r.truncated(w, i, len(summary.Unreconciled)) {
				break
			}
			if item.Record == nil {
				fmt.Fprintf(w, "  <missing record>  %s\n", item.Status)
				continue
			}
			fmt.Fprintf(w, "  %-12s %s  %10s  %-24s %s\n",
				item.Record.ID,
				item.Record.Date.Format("2006-01-02"),
				item.Record.EffectiveAmount().StringFixed(2),
				clip(item.Record.Contact, 24),
				item.Status)
		}
	}

	if r.config.IncludeMatches && len(summary.SuggestedMatches) > 0 {
		fmt.Fprintf(w, "\nSuggested matches (%d)\n", len(summary.SuggestedMatches))
		for i, match := range summary.SuggestedMatches {
			if r.truncated(w, i, len(summary.SuggestedMatches)) {
				break
			}
			reasons := make([]string, 0, len(match.Reasons))
			for _, reason := range match.Reasons {
				reasons = append(reasons, string(reason))
			}
			fmt.Fprintf(w, "  %-12s -> %-12s score %5.1f  [%s]\n",
				match.Settlement.ID, match.Ledger.ID, match.Score, strings.Join(reasons, ", "))
		}
	}

	if r.config.IncludeDuplicates && len(summary.DuplicateGroups) > 0 {
		fmt.Fprintf(w, "\nDuplicate groups (%d)\n", len(summary.DuplicateGroups))
		for i, group := range summary.DuplicateGroups {
			if r.truncated(w, i, len(summary.DuplicateGroups)) {
				break
			}
			ids := make([]string, 0, len(group.Records))
			for _, record := range group.Records {
				ids = append(ids, record.ID)
			}
			fmt.Fprintf(w, "  %-8s (%d%%)  exposure %10s  members: %s\n",
				group.Type, group.Confidence, group.Exposure.StringFixed(2), strings.Join(ids, ", "))
		}
	}

	if r.config.IncludeMissingEntries && len(summary.MissingEntries) > 0 {
		fmt.Fprintf(w, "\nMissing entries (%d)\n", len(summary.MissingEntries))
		for i, entry := range summary.MissingEntries {
			if r.truncated(w, i, len(summary.MissingEntries)) {
				break
			}
			fmt.Fprintf(w, "  %-12s %10s  %3d days  %s\n",
				entry.Record.ID, entry.Amount.StringFixed(2), entry.DaysSinceInvoice, entry.Reason)
		}
	}

	if r.config.IncludeBreakdowns {
		writeBreakdown(w, "By account", summary.ByAccount)
		writeBreakdown(w, "By financial year", summary.ByFinancialYear)
	}

	if len(summary.StageErrors) > 0 {
		fmt.Fprintf(w, "\nStage errors (%d)\n", len(summary.StageErrors))
		for _, stageErr := range summary.StageErrors {
			fmt.Fprintf(w, "  %s\n", stageErr)
		}
	}

	return nil
}

func (r *Reporter) writeCSV(w io.Writer, summary *reconciler.ReconciliationSummary) error {
	writer := csv.NewWriter(w)

	if r.config.CSVHeaders {
		header := []string{"section", "record_id", "date", "amount", "contact", "detail"}
		if err := writer.Write(header); err != nil {
			return err
		}
	}

	for _, item := range summary.Unreconciled {
		row := []string{"unreconciled", "", "", "", "", item.Status}
		if item.Record != nil {
			row = []string{
				"unreconciled",
				item.Record.ID,
				item.Record.Date.Format("2006-01-02"),
				item.Record.EffectiveAmount().StringFixed(2),
				item.Record.Contact,
				item.Status,
			}
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	for _, match := range summary.SuggestedMatches {
		row := []string{
			"suggested_match",
			match.Settlement.ID,
			match.Settlement.Date.Format("2006-01-02"),
			match.Settlement.EffectiveAmount().StringFixed(2),
			match.Settlement.Contact,
			fmt.Sprintf("ledger %s score %.1f", match.Ledger.ID, match.Score),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	for _, group := range summary.DuplicateGroups {
		for _, record := range group.Records {
			row := []string{
				"duplicate",
				record.ID,
				record.Date.Format("2006-01-02"),
				record.EffectiveAmount().StringFixed(2),
				record.Contact,
				fmt.Sprintf("%s confidence %d exposure %s",
					group.Type, group.Confidence, group.Exposure.StringFixed(2)),
			}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}

	for _, entry := range summary.MissingEntries {
		row := []string{
			"missing_entry",
			entry.Record.ID,
			entry.Record.Date.Format("2006-01-02"),
			entry.Amount.StringFixed(2),
			entry.Record.Contact,
			entry.Reason,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// truncated prints a truncation note once the per-section limit is
// reached.
func (r *Reporter) truncated(w io.Writer, index, total int) bool {
	limit := r.config.MaxItemsPerSection
	if limit <= 0 || index < limit {
		return false
	}
	if index == limit {
		fmt.Fprintf(w, "  ... %d more\n", total-limit)
	}
	return true
}

func writeBreakdown(w io.Writer, title string, buckets map[string]reconciler.BucketTotals) {
	if len(buckets) == 0 {
		return
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Fprintf(w, "\n%s\n", title)
	for _, key := range keys {
		totals := buckets[key]
		fmt.Fprintf(w, "  %-16s %s records  %12s\n",
			key, strconv.Itoa(totals.Count), totals.Amount.StringFixed(2))
	}
}

func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
