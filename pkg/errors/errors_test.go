package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestNewError(t *testing.T) {
	err := New(CategoryValidation, CodeMissingField, "tenant is required")

	if err.Category != CategoryValidation {
		t.Errorf("Expected category %s, got %s", CategoryValidation, err.Category)
	}
	if err.Code != CodeMissingField {
		t.Errorf("Expected code %s, got %s", CodeMissingField, err.Code)
	}
	if err.Error() != "tenant is required" {
		t.Errorf("Unexpected message: %s", err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(cause, CategoryStorage, CodeStorageUnavailable, "cache write failed")

	if !errors.Is(err, cause) {
		t.Error("Wrapped error should match its cause")
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}

	if Wrap(nil, CategoryStorage, CodeStorageUnavailable, "ignored") != nil {
		t.Error("Wrapping nil should return nil")
	}
}

func TestErrorWithSuggestion(t *testing.T) {
	err := New(CategorySnapshot, CodeFetchFailed, "fetch failed").
		WithSuggestion("check the cache path")

	if !strings.Contains(err.Error(), "suggestion: check the cache path") {
		t.Errorf("Suggestion missing from message: %s", err.Error())
	}
}

func TestErrorWithContext(t *testing.T) {
	err := New(CategoryAnalysis, CodeStageFailed, "stage failed").
		WithContext("stage", "duplicates").
		WithContext("records", 42)

	if err.Context["stage"] != "duplicates" {
		t.Errorf("Expected stage context, got %v", err.Context["stage"])
	}
	if err.Context["records"] != 42 {
		t.Errorf("Expected records context, got %v", err.Context["records"])
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		want     int
	}{
		{CategoryValidation, 2},
		{CategoryConfiguration, 3},
		{CategorySnapshot, 4},
		{CategoryStorage, 5},
		{CategoryAnalysis, 6},
		{CategoryInternal, 6},
	}

	for _, tt := range tests {
		err := New(tt.category, CodeUnexpectedError, "test")
		if got := err.GetExitCode(); got != tt.want {
			t.Errorf("GetExitCode() for %s = %d, want %d", tt.category, got, tt.want)
		}
	}
}

func TestErrorConstructors(t *testing.T) {
	validation := ValidationError(CodeMissingField, "tenant_id", "", nil)
	if validation.Category != CategoryValidation {
		t.Errorf("Expected validation category, got %s", validation.Category)
	}
	if validation.Context["field"] != "tenant_id" {
		t.Error("Expected field context on validation error")
	}

	snapshot := SnapshotError(CodeFetchFailed, "tenant-1", errors.New("timeout"))
	if snapshot.Category != CategorySnapshot {
		t.Errorf("Expected snapshot category, got %s", snapshot.Category)
	}
	if snapshot.Context["tenant_id"] != "tenant-1" {
		t.Error("Expected tenant context on snapshot error")
	}

	analysis := AnalysisError(CodeStageFailed, "duplicates", nil)
	if analysis.Context["stage"] != "duplicates" {
		t.Error("Expected stage context on analysis error")
	}
}

func TestAsReconcilerError(t *testing.T) {
	inner := New(CategoryStorage, CodeInvalidRecord, "bad record")
	wrapped := Wrap(inner, CategoryAnalysis, CodeStageFailed, "stage failed")

	found, ok := AsReconcilerError(wrapped)
	if !ok {
		t.Fatal("Expected to find a ReconcilerError")
	}
	if found.Code != CodeStageFailed {
		t.Errorf("Expected outermost error, got code %s", found.Code)
	}

	if _, ok := AsReconcilerError(errors.New("plain")); ok {
		t.Error("Plain errors should not convert")
	}
}

func TestWrapIfNeeded(t *testing.T) {
	already := New(CategoryValidation, CodeMissingField, "missing")
	if got := WrapIfNeeded(already, CategoryInternal, CodeUnexpectedError, "ignored"); got != already {
		t.Error("Existing ReconcilerError should pass through unchanged")
	}

	plain := errors.New("plain")
	wrapped := WrapIfNeeded(plain, CategoryInternal, CodeUnexpectedError, "wrapped")
	if wrapped.Category != CategoryInternal {
		t.Errorf("Expected internal category, got %s", wrapped.Category)
	}
}

func TestErrorSummary(t *testing.T) {
	errs := []*ReconcilerError{
		New(CategoryValidation, CodeMissingField, "missing tenant"),
		New(CategoryStorage, CodeStorageUnavailable, "cache down"),
		New(CategoryStorage, CodeInvalidRecord, "bad record"),
	}

	summary := NewErrorSummary(errs)

	if summary.Total != 3 {
		t.Errorf("Expected 3 errors, got %d", summary.Total)
	}
	if summary.ByCategory[CategoryStorage] != 2 {
		t.Errorf("Expected 2 storage errors, got %d", summary.ByCategory[CategoryStorage])
	}
	if got := summary.GetExitCode(); got != 5 {
		t.Errorf("Expected exit code 5, got %d", got)
	}

	empty := NewErrorSummary(nil)
	if empty.GetExitCode() != 0 {
		t.Errorf("Empty summary should exit 0, got %d", empty.GetExitCode())
	}
}
