package cmd

import (
	"fmt"
	"os"
	"strings"

	"ledger-reconciler/pkg/errors"
	"ledger-reconciler/pkg/logger"

	"github.com/spf13/viper"
)

// CLIErrorHandler provides user-friendly error handling for CLI operations
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
	}
}

// HandleError handles errors and provides user-friendly messages
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	// Log the error
	h.logger.WithError(err).Error("Command failed")

	// Handle ReconcilerError with detailed information
	if reconcilerErr, ok := errors.AsReconcilerError(err); ok {
		return h.handleReconcilerError(reconcilerErr)
	}

	// Handle other error types
	return h.handleGenericError(err)
}

// handleReconcilerError handles ReconcilerError with detailed context
func (h *CLIErrorHandler) handleReconcilerError(err *errors.ReconcilerError) int {
	// Print the main error message
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	// Add context information if available
	if len(err.Context) > 0 {
		fmt.Fprintf(os.Stderr, "\nContext:\n")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	// Add suggestion if available
	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "\nSuggestion: %s\n", err.Suggestion)
	}

	// Add category-specific help
	fmt.Fprintf(os.Stderr, "\n%s\n", h.getCategoryHelp(err.Category))

	// Show underlying error in verbose mode
	if h.verbose && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.GetExitCode()
}

// handleGenericError handles non-ReconcilerError types
func (h *CLIErrorHandler) handleGenericError(err error) int {
	// Check for common system errors and provide better messages
	if h.isFileNotFoundError(err) {
		fmt.Fprintf(os.Stderr, "Error: File not found\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check if the file path is correct and the file exists\n")
		return 2
	}

	if h.isPermissionError(err) {
		fmt.Fprintf(os.Stderr, "Error: Permission denied\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check file permissions and ensure you have read access\n")
		return 2
	}

	// Generic error handling
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	if h.verbose {
		fmt.Fprintf(os.Stderr, "\nFor more details, check the logs or run with --verbose flag\n")
	}

	return 1
}

// getCategoryHelp returns category-specific help text
func (h *CLIErrorHandler) getCategoryHelp(category errors.ErrorCategory) string {
	switch category {
	case errors.CategoryValidation:
		return `Validation error help:
• Check that all required fields have values
• Verify financial year labels use the FY2024-25 form
• Ensure amounts are decimal numbers without currency symbols
• Check that all values are within acceptable ranges`

	case errors.CategoryConfiguration:
		return `Configuration error help:
• Check your command-line flags and arguments
• Verify configuration file syntax if using --config
• Use 'reconciler reconcile --help' to see all available options
• Try running with default settings first`

	case errors.CategorySnapshot:
		return `Snapshot error help:
• Verify the tenant identifier is correct
• Check that records have been ingested for this tenant
• Run 'reconciler ingest' to load records into the cache`

	case errors.CategoryStorage:
		return `Storage error help:
• Check that the database path is correct and writable
• Verify the database file is not corrupted or locked
• Try re-ingesting the affected records`

	case errors.CategoryAnalysis:
		return `Analysis error help:
• Check data quality in the cached records
• Try a different matching profile (--profile strict or relaxed)
• Inspect records flagged for manual review in the report`

	default:
		return `For more help:
• Use 'reconciler --help' for general help
• Use 'reconciler reconcile --help' for command-specific help
• Check the documentation for detailed examples
• Report bugs or ask for help on the project repository`
	}
}

// Error detection helpers

func (h *CLIErrorHandler) isFileNotFoundError(err error) bool {
	return os.IsNotExist(err) || strings.Contains(err.Error(), "no such file or directory")
}

func (h *CLIErrorHandler) isPermissionError(err error) bool {
	return os.IsPermission(err) ||
		strings.Contains(err.Error(), "permission denied") ||
		strings.Contains(err.Error(), "access denied")
}
