// Package config builds component configurations from CLI inputs.
package config

import (
	"ledger-reconciler/internal/matcher"
	"ledger-reconciler/internal/models"
	"ledger-reconciler/internal/reporter"
	apperrors "ledger-reconciler/pkg/errors"
	"ledger-reconciler/pkg/logger"
)

// Matching profiles selectable from the CLI.
const (
	ProfileDefault = "default"
	ProfileStrict  = "strict"
	ProfileRelaxed = "relaxed"
)

// CreateMatchingConfig builds a matching configuration from a named
// profile and an optional minimum-score override (a negative value
// keeps the profile's own threshold).
func CreateMatchingConfig(profile string, minScore float64) (*matcher.Config, error) {
	var cfg *matcher.Config

	switch profile {
	case ProfileDefault, "":
		cfg = matcher.DefaultConfig()
	case ProfileStrict:
		cfg = matcher.StrictConfig()
	case ProfileRelaxed:
		cfg = matcher.RelaxedConfig()
	default:
		return nil, apperrors.ConfigError(apperrors.CodeInvalidConfig,
			"profile must be one of: default, strict, relaxed", nil).
			WithContext("profile", profile)
	}

	if minScore >= 0 {
		cfg.MinScore = minScore
	}

	if err := cfg.Validate(); err != nil {
		return nil, apperrors.ConfigError(apperrors.CodeInvalidConfig, "matching configuration", err)
	}

	return cfg, nil
}

// CreateReportConfig builds a report configuration for the given output
// format.
func CreateReportConfig(format string) (*reporter.ReportConfig, error) {
	cfg := reporter.DefaultReportConfig()
	cfg.Format = reporter.OutputFormat(format)

	if !cfg.Format.IsValid() {
		return nil, apperrors.ConfigError(apperrors.CodeInvalidConfig,
			"output format must be one of: console, json, csv", nil).
			WithContext("format", format)
	}

	return cfg, nil
}

// CreateLoggerConfig builds the logger configuration for CLI usage.
func CreateLoggerConfig(verbose bool) *logger.Config {
	cfg := logger.DefaultConfig()
	if verbose {
		cfg.Level = logger.DebugLevel
	}
	return cfg
}

// ParseYears converts financial-year labels ("FY2024-25") into their
// parsed form.
func ParseYears(labels []string) ([]models.FinancialYear, error) {
	if len(labels) == 0 {
		return nil, nil
	}

	years := make([]models.FinancialYear, 0, len(labels))
	for _, label := range labels {
		fy, err := models.ParseFinancialYear(label)
		if err != nil {
			return nil, apperrors.ValidationError(apperrors.CodeInvalidDate, "years", label, err).
				WithSuggestion("use financial year labels like FY2024-25")
		}
		years = append(years, fy)
	}

	return years, nil
}
