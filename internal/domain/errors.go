package domain

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

var (
	ErrAlreadySubmitted = errors.New("submission already submitted")
	ErrTooManyFiles     = errors.New("too many attachments")
)

// ValidationError reports a single broken construction invariant. Constructors
// combine every violation they find with multierr, so callers should use
// errors.As or Violations to inspect them.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Violations flattens a constructor error into its individual violations.
func Violations(err error) []*ValidationError {
	var out []*ValidationError
	for _, e := range multierr.Errors(err) {
		var ve *ValidationError
		if errors.As(e, &ve) {
			out = append(out, ve)
		}
	}
	return out
}

// IsValidationError reports whether err carries at least one ValidationError.
func IsValidationError(err error) bool {
	return len(Violations(err)) > 0
}

// ValidationResult is the business-rule channel: it never aborts an operation,
// callers branch on IsValid.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func NewValidationResult(errs, warnings []string) ValidationResult {
	if errs == nil {
		errs = []string{}
	}
	if warnings == nil {
		warnings = []string{}
	}
	return ValidationResult{
		IsValid:  len(errs) == 0,
		Errors:   errs,
		Warnings: warnings,
	}
}

// MergeValidationResults combines results in order. A message reported by more
// than one result appears once.
func MergeValidationResults(results ...ValidationResult) ValidationResult {
	var errs, warnings []string
	for _, r := range results {
		errs = appendUnique(errs, r.Errors...)
		warnings = appendUnique(warnings, r.Warnings...)
	}
	return NewValidationResult(errs, warnings)
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		seen := false
		for _, existing := range dst {
			if existing == v {
				seen = true
				break
			}
		}
		if !seen {
			dst = append(dst, v)
		}
	}
	return dst
}
