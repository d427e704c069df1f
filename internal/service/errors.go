package service

import (
	"errors"
	"strings"

	"assignment_service/internal/domain"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInvalidGrade     = errors.New("invalid grade")
)

// RuleViolationError is returned when a submission breaks assignment rules.
// The full validation result travels with it.
type RuleViolationError struct {
	Result domain.ValidationResult
}

func (e *RuleViolationError) Error() string {
	return "submission rejected: " + strings.Join(e.Result.Errors, "; ")
}

// GradeError carries the reasons a grading attempt was refused.
type GradeError struct {
	Result domain.GradeResult
}

func (e *GradeError) Error() string {
	return "grading rejected: " + strings.Join(e.Result.Errors, "; ")
}

func (e *GradeError) Unwrap() error { return ErrInvalidGrade }
