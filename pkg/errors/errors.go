// Package errors provides structured error handling for the
// reconciliation engine with error categories, codes, and user guidance.
package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents the broad category of an error
type ErrorCategory string

const (
	CategoryValidation    ErrorCategory = "validation"
	CategoryConfiguration ErrorCategory = "configuration"
	CategorySnapshot      ErrorCategory = "snapshot"
	CategoryStorage       ErrorCategory = "storage"
	CategoryAnalysis      ErrorCategory = "analysis"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode provides specific error identification
type ErrorCode string

const (
	// Validation errors
	CodeInvalidAmount ErrorCode = "invalid_amount"
	CodeInvalidDate   ErrorCode = "invalid_date"
	CodeMissingField  ErrorCode = "missing_field"
	CodeOutOfRange    ErrorCode = "out_of_range"

	// Configuration errors
	CodeInvalidConfig  ErrorCode = "invalid_config"
	CodeMissingConfig  ErrorCode = "missing_config"
	CodeConfigConflict ErrorCode = "config_conflict"

	// Snapshot errors
	CodeFetchFailed    ErrorCode = "fetch_failed"
	CodeTenantNotFound ErrorCode = "tenant_not_found"

	// Storage errors
	CodeStorageUnavailable ErrorCode = "storage_unavailable"
	CodeInvalidRecord      ErrorCode = "invalid_record"

	// Analysis errors
	CodeStageFailed      ErrorCode = "stage_failed"
	CodeMatchingFailed   ErrorCode = "matching_failed"
	CodeDataInconsistent ErrorCode = "data_inconsistent"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// ReconcilerError is the base error type for all application errors
type ReconcilerError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *ReconcilerError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *ReconcilerError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *ReconcilerError) GetExitCode() int {
	switch e.Category {
	case CategoryValidation:
		return 2
	case CategoryConfiguration:
		return 3
	case CategorySnapshot:
		return 4
	case CategoryStorage:
		return 5
	case CategoryAnalysis, CategoryInternal:
		return 6
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *ReconcilerError) WithContext(key string, value interface{}) *ReconcilerError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *ReconcilerError) WithSuggestion(suggestion string) *ReconcilerError {
	e.Suggestion = suggestion
	return e
}

// New creates a new ReconcilerError
func New(category ErrorCategory, code ErrorCode, message string) *ReconcilerError {
	return &ReconcilerError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with ReconcilerError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *ReconcilerError {
	if err == nil {
		return nil
	}

	return &ReconcilerError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Specific error constructors

// ValidationError creates a validation-related error
func ValidationError(code ErrorCode, field string, value interface{}, err error) *ReconcilerError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidAmount:
		message = fmt.Sprintf("invalid amount in field '%s': %v", field, value)
		suggestion = "ensure amounts are valid decimal numbers (e.g., '12.34')"
	case CodeInvalidDate:
		message = fmt.Sprintf("invalid date in field '%s': %v", field, value)
		suggestion = "use date format YYYY-MM-DD"
	case CodeMissingField:
		message = fmt.Sprintf("required field '%s' is missing or empty", field)
		suggestion = "provide a value for this required field"
	case CodeOutOfRange:
		message = fmt.Sprintf("value out of range in field '%s': %v", field, value)
		suggestion = "ensure the value is within the acceptable range"
	default:
		message = fmt.Sprintf("validation error in field '%s': %v", field, value)
		suggestion = "check the field value and format"
	}

	var result *ReconcilerError
	if err != nil {
		result = Wrap(err, CategoryValidation, code, message)
	} else {
		result = New(CategoryValidation, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("field", field).
		WithContext("value", value)
}

// ConfigError creates a configuration-related error
func ConfigError(code ErrorCode, setting string, err error) *ReconcilerError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration setting: %s", setting)
		suggestion = "check the configuration value and its expected format"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "provide the setting via flag, environment variable, or config file"
	case CodeConfigConflict:
		message = fmt.Sprintf("conflicting configuration: %s", setting)
		suggestion = "remove one of the conflicting settings"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "review the configuration and try again"
	}

	var result *ReconcilerError
	if err != nil {
		result = Wrap(err, CategoryConfiguration, code, message)
	} else {
		result = New(CategoryConfiguration, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("setting", setting)
}

// SnapshotError creates an error about sourcing the record snapshot
func SnapshotError(code ErrorCode, tenantID string, err error) *ReconcilerError {
	var message string
	var suggestion string

	switch code {
	case CodeFetchFailed:
		message = fmt.Sprintf("failed to fetch records for tenant %s", tenantID)
		suggestion = "check that the record cache is reachable and populated"
	case CodeTenantNotFound:
		message = fmt.Sprintf("no records found for tenant %s", tenantID)
		suggestion = "verify the tenant identifier and that records have been ingested"
	default:
		message = fmt.Sprintf("snapshot error for tenant %s", tenantID)
		suggestion = "check the record source and try again"
	}

	var result *ReconcilerError
	if err != nil {
		result = Wrap(err, CategorySnapshot, code, message)
	} else {
		result = New(CategorySnapshot, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("tenant_id", tenantID)
}

// AnalysisError creates an error about a failed analysis stage
func AnalysisError(code ErrorCode, stage string, err error) *ReconcilerError {
	var message string
	var suggestion string

	switch code {
	case CodeStageFailed:
		message = fmt.Sprintf("analysis stage '%s' failed", stage)
		suggestion = "the run continued with a conservative fallback for this stage"
	case CodeMatchingFailed:
		message = fmt.Sprintf("matching failed in stage '%s'", stage)
		suggestion = "review the matching configuration and record data"
	case CodeDataInconsistent:
		message = fmt.Sprintf("inconsistent data detected in stage '%s'", stage)
		suggestion = "inspect the flagged records for malformed fields"
	default:
		message = fmt.Sprintf("analysis error in stage '%s'", stage)
		suggestion = "check the stage inputs and try again"
	}

	var result *ReconcilerError
	if err != nil {
		result = Wrap(err, CategoryAnalysis, code, message)
	} else {
		result = New(CategoryAnalysis, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("stage", stage)
}

// InternalError creates an internal error
func InternalError(code ErrorCode, operation string, err error) *ReconcilerError {
	message := fmt.Sprintf("unexpected error during %s", operation)
	suggestion := "this is likely a bug - please report it with the error details"

	var result *ReconcilerError
	if err != nil {
		result = Wrap(err, CategoryInternal, code, message)
	} else {
		result = New(CategoryInternal, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

// ErrorSummary provides a summary of multiple errors
type ErrorSummary struct {
	Total      int                   `json:"total"`
	ByCategory map[ErrorCategory]int `json:"by_category"`
	ByCode     map[ErrorCode]int     `json:"by_code"`
	Errors     []*ReconcilerError    `json:"errors"`
}

// NewErrorSummary creates a summary from a list of errors
func NewErrorSummary(errs []*ReconcilerError) *ErrorSummary {
	summary := &ErrorSummary{
		Total:      len(errs),
		ByCategory: make(map[ErrorCategory]int),
		ByCode:     make(map[ErrorCode]int),
		Errors:     errs,
	}

	for _, err := range errs {
		summary.ByCategory[err.Category]++
		summary.ByCode[err.Code]++
	}

	return summary
}

// Error returns a formatted error message for the summary
func (es *ErrorSummary) Error() string {
	if es.Total == 0 {
		return "no errors"
	}

	if es.Total == 1 {
		return es.Errors[0].Error()
	}

	var categories []string
	for category, count := range es.ByCategory {
		categories = append(categories, fmt.Sprintf("%s: %d", category, count))
	}

	return fmt.Sprintf("%d errors occurred (%s)", es.Total, strings.Join(categories, ", "))
}

// GetExitCode returns the highest priority exit code from all errors
func (es *ErrorSummary) GetExitCode() int {
	if es.Total == 0 {
		return 0
	}

	maxCode := 1
	for _, err := range es.Errors {
		if code := err.GetExitCode(); code > maxCode {
			maxCode = code
		}
	}

	return maxCode
}

// Utility functions

// IsReconcilerError checks if an error is a ReconcilerError
func IsReconcilerError(err error) bool {
	_, ok := err.(*ReconcilerError)
	return ok
}

// AsReconcilerError extracts a ReconcilerError from an error chain
func AsReconcilerError(err error) (*ReconcilerError, bool) {
	var reconcilerErr *ReconcilerError
	if errors.As(err, &reconcilerErr) {
		return reconcilerErr, true
	}
	return nil, false
}

// WrapIfNeeded wraps an error if it's not already a ReconcilerError
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *ReconcilerError {
	if err == nil {
		return nil
	}

	if reconcilerErr, ok := AsReconcilerError(err); ok {
		return reconcilerErr
	}

	return Wrap(err, category, code, message)
}
