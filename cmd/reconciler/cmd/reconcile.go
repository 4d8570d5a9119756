package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"ledger-reconciler/cmd/reconciler/config"
	"ledger-reconciler/internal/reconciler"
	"ledger-reconciler/internal/reporter"
	"ledger-reconciler/internal/store"
	"ledger-reconciler/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the reconcile command
var (
	dbPath       string
	tenantID     string
	yearLabels   []string
	matchProfile string
	minScore     float64
	outputFormat string
	outputFile   string
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Analyze cached records for one tenant",
	Long: `Reconcile runs the full analysis over a tenant's cached records:
unreconciled classification, match suggestion, duplicate grouping, and
missing-entry detection.

Examples:
  # Analyze everything for a tenant
  reconciler reconcile --db records.db --tenant acme

  # Restrict to one financial year with JSON output
  reconciler reconcile --db records.db --tenant acme \
    --years FY2024-25 --output-format json --output-file report.json

  # Only surface near-certain pairings
  reconciler reconcile --db records.db --tenant acme --profile strict

  # Lower the suggestion threshold for manual triage
  reconciler reconcile --db records.db --tenant acme --min-score 30`,

	PreRunE: validateReconcileFlags,
	RunE:    runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	// Required flags
	reconcileCmd.Flags().StringVar(&dbPath, "db", "", "path to the record cache database (required)")
	reconcileCmd.Flags().StringVarP(&tenantID, "tenant", "t", "", "tenant identifier (required)")

	// Scoping flags
	reconcileCmd.Flags().StringSliceVar(&yearLabels, "years", []string{}, "financial years to include (e.g. FY2024-25), default all")

	// Matching configuration flags
	reconcileCmd.Flags().StringVar(&matchProfile, "profile", config.ProfileDefault, "matching profile: default, strict, relaxed")
	reconcileCmd.Flags().Float64Var(&minScore, "min-score", -1, "override the minimum suggestion score (0-100)")

	// Output flags
	reconcileCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	reconcileCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")

	// Mark required flags
	reconcileCmd.MarkFlagRequired("db")
	reconcileCmd.MarkFlagRequired("tenant")

	// Bind flags to viper
	viper.BindPFlag("db", reconcileCmd.Flags().Lookup("db"))
	viper.BindPFlag("tenant", reconcileCmd.Flags().Lookup("tenant"))
	viper.BindPFlag("years", reconcileCmd.Flags().Lookup("years"))
	viper.BindPFlag("profile", reconcileCmd.Flags().Lookup("profile"))
	viper.BindPFlag("min-score", reconcileCmd.Flags().Lookup("min-score"))
	viper.BindPFlag("output-format", reconcileCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", reconcileCmd.Flags().Lookup("output-file"))
}

func validateReconcileFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	dbPath = viper.GetString("db")
	tenantID = viper.GetString("tenant")
	yearLabels = viper.GetStringSlice("years")
	matchProfile = viper.GetString("profile")
	minScore = viper.GetFloat64("min-score")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")

	// Validate required flags
	if dbPath == "" {
		return fmt.Errorf("db is required")
	}
	if tenantID == "" {
		return fmt.Errorf("tenant is required")
	}

	if err := validateFileExists(dbPath, "record cache database"); err != nil {
		return err
	}

	// Validate output format
	validFormats := map[string]bool{"console": true, "json": true, "csv": true}
	if !validFormats[outputFormat] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", outputFormat)
	}

	// Validate matching settings
	validProfiles := map[string]bool{
		config.ProfileDefault: true,
		config.ProfileStrict:  true,
		config.ProfileRelaxed: true,
	}
	if !validProfiles[matchProfile] {
		return fmt.Errorf("invalid profile '%s'. Valid profiles: default, strict, relaxed", matchProfile)
	}
	if minScore > 100 {
		return fmt.Errorf("min-score cannot exceed 100")
	}

	// Validate year labels
	if _, err := config.ParseYears(yearLabels); err != nil {
		return err
	}

	// Validate output file directory exists if specified
	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	return nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	log, err := logger.NewLogger(config.CreateLoggerConfig(viper.GetBool("verbose")))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	logger.SetGlobalLogger(log)

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting reconciliation...\n")
		fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "Tenant: %s\n", tenantID)
		if len(yearLabels) > 0 {
			fmt.Fprintf(os.Stderr, "Years: %v\n", yearLabels)
		}
	}

	// Create configurations
	matchConfig, err := config.CreateMatchingConfig(matchProfile, minScore)
	if err != nil {
		return err
	}

	years, err := config.ParseYears(yearLabels)
	if err != nil {
		return err
	}

	reportConfig, err := config.CreateReportConfig(outputFormat)
	if err != nil {
		return err
	}

	// Open the record cache
	cache, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer cache.Close()

	// Run the analysis
	orchestrator, err := reconciler.NewOrchestrator(cache, matchConfig, log.WithComponent("orchestrator"))
	if err != nil {
		return err
	}

	summary, err := orchestrator.Run(ctx, &reconciler.Request{
		TenantID: tenantID,
		Years:    years,
	})
	if err != nil {
		return err
	}

	// Determine output destination
	output := os.Stdout
	if outputFile != "" {
		output, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	}

	if err := reporter.NewReporter(reportConfig).Write(output, summary); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	// Show completion message
	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nReconciliation completed.\n")
		fmt.Fprintf(os.Stderr, "Processed %d settlement and %d ledger records.\n",
			summary.SettlementCount, summary.LedgerCount)
		fmt.Fprintf(os.Stderr, "Found %d unreconciled, %d suggested matches, %d duplicate groups, %d missing entries.\n",
			len(summary.Unreconciled), len(summary.SuggestedMatches),
			len(summary.DuplicateGroups), len(summary.MissingEntries))
		if len(summary.StageErrors) > 0 {
			fmt.Fprintf(os.Stderr, "%d stage errors occurred; affected sections use conservative fallbacks.\n",
				len(summary.StageErrors))
		}
	}

	return nil
}
