package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"ledger-reconciler/internal/models"
	"ledger-reconciler/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the ingest command
var (
	ingestDBPath   string
	ingestTenantID string
	ingestFile     string
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load records into the cache",
	Long: `Ingest reads a JSON array of transaction records exported from the
source accounting system and upserts them into the record cache for
later analysis.

Examples:
  reconciler ingest --db records.db --tenant acme --file records.json`,

	PreRunE: validateIngestFlags,
	RunE:    runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestDBPath, "db", "", "path to the record cache database (required)")
	ingestCmd.Flags().StringVarP(&ingestTenantID, "tenant", "t", "", "tenant identifier (required)")
	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "JSON file with an array of records (required)")

	ingestCmd.MarkFlagRequired("db")
	ingestCmd.MarkFlagRequired("tenant")
	ingestCmd.MarkFlagRequired("file")
}

func validateIngestFlags(cmd *cobra.Command, args []string) error {
	if ingestDBPath == "" {
		return fmt.Errorf("db is required")
	}
	if ingestTenantID == "" {
		return fmt.Errorf("tenant is required")
	}
	return validateFileExists(ingestFile, "records file")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	data, err := os.ReadFile(ingestFile)
	if err != nil {
		return fmt.Errorf("failed to read records file: %w", err)
	}

	var records []*models.TransactionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to decode records file: %w", err)
	}

	var invalid int
	valid := make([]*models.TransactionRecord, 0, len(records))
	for _, record := range records {
		if record == nil {
			invalid++
			continue
		}
		if err := record.Validate(); err != nil {
			invalid++
			if viper.GetBool("verbose") {
				fmt.Fprintf(os.Stderr, "Skipping invalid record %q: %v\n", record.ID, err)
			}
			continue
		}
		valid = append(valid, record)
	}

	cache, err := store.Open(ingestDBPath)
	if err != nil {
		return err
	}
	defer cache.Close()

	if err := cache.SaveRecords(ctx, ingestTenantID, valid); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Ingested %d records for tenant %s", len(valid), ingestTenantID)
	if invalid > 0 {
		fmt.Fprintf(os.Stderr, " (%d skipped as invalid)", invalid)
	}
	fmt.Fprintln(os.Stderr)

	return nil
}
