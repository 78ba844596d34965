package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration
// field.
type FieldError struct {
	// Field is the dotted path to the field (e.g. "storage.backend").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a
// configuration.
type ValidationError struct {
	// Errors contains all validation errors found.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration. All errors are collected and
// returned together; a valid configuration returns nil.
func Validate(cfg *Config) error {
	var errs []FieldError

	switch cfg.Storage.Backend {
	case "sqlite", "memory":
	default:
		errs = append(errs, FieldError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("unknown backend %q (expected sqlite or memory)", cfg.Storage.Backend),
		})
	}
	if cfg.Storage.Backend == "sqlite" && cfg.Storage.SQLite.Path == "" {
		errs = append(errs, FieldError{
			Field:   "storage.sqlite.path",
			Message: "path is required for the sqlite backend",
		})
	}
	if cfg.Storage.SQLite.MaxOpenConns < 0 {
		errs = append(errs, FieldError{
			Field:   "storage.sqlite.max_open_conns",
			Message: "must not be negative",
		})
	}
	if cfg.Storage.SQLite.MaxIdleConns < 0 {
		errs = append(errs, FieldError{
			Field:   "storage.sqlite.max_idle_conns",
			Message: "must not be negative",
		})
	}

	if cfg.Catalog.Path == "" {
		errs = append(errs, FieldError{
			Field:   "catalog.path",
			Message: "catalog path is required",
		})
	}
	if cfg.Catalog.DebounceInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "catalog.debounce_interval",
			Message: "must not be negative",
		})
	}

	if cfg.Scoring.PartialCredit < 0 || cfg.Scoring.PartialCredit > 1 {
		errs = append(errs, FieldError{
			Field:   "scoring.partial_credit",
			Message: fmt.Sprintf("must be in [0, 1], got %v", cfg.Scoring.PartialCredit),
		})
	}

	if cfg.History.Enabled && cfg.History.Path == "" {
		errs = append(errs, FieldError{
			Field:   "history.path",
			Message: "path is required when the history ledger is enabled",
		})
	}

	if cfg.Reconcile.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Reconcile.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "reconcile.schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	switch strings.ToLower(cfg.Telemetry.Logging.Level) {
	case "debug", "info", "warn", "warning", "error", "":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown level %q", cfg.Telemetry.Logging.Level),
		})
	}
	switch strings.ToLower(cfg.Telemetry.Logging.Format) {
	case "json", "text", "":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown format %q", cfg.Telemetry.Logging.Format),
		})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}
