package domain

import (
	"math"
	"time"

	"go.uber.org/multierr"
)

const (
	DefaultDueSoonDays = 3

	day = 24 * time.Hour
)

// SpecificationParams is the plain field set of a Specification. It doubles as
// the persisted shape of the value.
type SpecificationParams struct {
	Type                AssignmentType `json:"type"`
	DueDate             time.Time      `json:"due_date"`
	MaxGrade            float64        `json:"max_grade"`
	MaxAttempts         int            `json:"max_attempts"`
	TimeLimitMinutes    *int           `json:"time_limit_minutes,omitempty"`
	WordCount           *int           `json:"word_count,omitempty"`
	Priority            Priority       `json:"priority"`
	AllowLateSubmission bool           `json:"allow_late_submission"`
	LatePenalty         *float64       `json:"late_penalty,omitempty"`
}

// Specification holds the immutable rules of one assignment.
type Specification struct {
	p SpecificationParams
}

// NewSpecification validates p and additionally requires the due date to lie
// strictly after now.
func NewSpecification(p SpecificationParams, now time.Time) (Specification, error) {
	err := validateSpecification(p)
	if !p.DueDate.After(now) {
		err = multierr.Append(err, invalid("due_date", "due date must be in the future"))
	}
	if err != nil {
		return Specification{}, err
	}
	return Specification{p: cloneSpecParams(normalizeSpecParams(p))}, nil
}

// RestoreSpecification rebuilds a stored specification. The due date may be in
// the past since the record was valid when it was created.
func RestoreSpecification(p SpecificationParams) (Specification, error) {
	if err := validateSpecification(p); err != nil {
		return Specification{}, err
	}
	return Specification{p: cloneSpecParams(normalizeSpecParams(p))}, nil
}

func normalizeSpecParams(p SpecificationParams) SpecificationParams {
	if p.Priority == "" {
		p.Priority = PriorityMedium
	}
	return p
}

func validateSpecification(p SpecificationParams) error {
	var err error
	if !p.Type.IsValid() {
		err = multierr.Append(err, invalid("type", "unknown assignment type %q", p.Type))
	}
	if p.Priority != "" && !p.Priority.IsValid() {
		err = multierr.Append(err, invalid("priority", "unknown priority %q", p.Priority))
	}
	if p.MaxGrade <= 0 {
		err = multierr.Append(err, invalid("max_grade", "max grade must be greater than 0"))
	}
	if p.MaxAttempts <= 0 {
		err = multierr.Append(err, invalid("max_attempts", "max attempts must be greater than 0"))
	}
	if p.TimeLimitMinutes != nil && *p.TimeLimitMinutes <= 0 {
		err = multierr.Append(err, invalid("time_limit_minutes", "time limit must be greater than 0"))
	}
	if p.WordCount != nil && *p.WordCount <= 0 {
		err = multierr.Append(err, invalid("word_count", "word count must be greater than 0"))
	}
	if p.LatePenalty != nil && (*p.LatePenalty < 0 || *p.LatePenalty > 100) {
		err = multierr.Append(err, invalid("late_penalty", "late penalty must be between 0 and 100"))
	}
	return err
}

func cloneSpecParams(p SpecificationParams) SpecificationParams {
	if p.TimeLimitMinutes != nil {
		v := *p.TimeLimitMinutes
		p.TimeLimitMinutes = &v
	}
	if p.WordCount != nil {
		v := *p.WordCount
		p.WordCount = &v
	}
	if p.LatePenalty != nil {
		v := *p.LatePenalty
		p.LatePenalty = &v
	}
	return p
}

func (s Specification) Params() SpecificationParams { return cloneSpecParams(s.p) }

func (s Specification) Type() AssignmentType { return s.p.Type }
func (s Specification) DueDate() time.Time { return s.p.DueDate }
func (s Specification) MaxGrade() float64 { return s.p.MaxGrade }
func (s Specification) MaxAttempts() int { return s.p.MaxAttempts }
func (s Specification) Priority() Priority { return s.p.Priority }
func (s Specification) AllowsLateSubmission() bool { return s.p.AllowLateSubmission }

func (s Specification) TimeLimitMinutes() (int, bool) {
	if s.p.TimeLimitMinutes == nil {
		return 0, false
	}
	return *s.p.TimeLimitMinutes, true
}

func (s Specification) WordCount() (int, bool) {
	if s.p.WordCount == nil {
		return 0, false
	}
	return *s.p.WordCount, true
}

func (s Specification) LatePenalty() (float64, bool) {
	if s.p.LatePenalty == nil {
		return 0, false
	}
	return *s.p.LatePenalty, true
}

// IsZero reports whether s was never constructed.
func (s Specification) IsZero() bool { return s.p.MaxGrade == 0 && s.p.MaxAttempts == 0 }

func (s Specification) IsOverdue(now time.Time) bool {
	return now.After(s.p.DueDate)
}

// DaysUntilDue rounds up to whole days and goes negative once the due date has
// passed by at least a full day.
func (s Specification) DaysUntilDue(now time.Time) int {
	return int(math.Ceil(float64(s.p.DueDate.Sub(now)) / float64(day)))
}

func (s Specification) IsDueSoon(thresholdDays int, now time.Time) bool {
	days := s.DaysUntilDue(now)
	return days >= 0 && days <= thresholdDays
}

func (s Specification) UrgencyLevel(now time.Time) UrgencyLevel {
	days := s.DaysUntilDue(now)
	switch {
	case s.IsOverdue(now) || days <= 1:
		return UrgencyCritical
	case days <= 3:
		return UrgencyHigh
	case days <= 7:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// CalculateLatePenalty returns the percentage to deduct, capped at 100.
func (s Specification) CalculateLatePenalty(daysLate int) float64 {
	if s.p.LatePenalty == nil || daysLate <= 0 {
		return 0
	}
	return math.Min(float64(daysLate)*(*s.p.LatePenalty), 100)
}

func (s Specification) IsTimeLimitExceeded(start, now time.Time) bool {
	if s.p.TimeLimitMinutes == nil {
		return false
	}
	return now.Sub(start).Minutes() > float64(*s.p.TimeLimitMinutes)
}

func (s Specification) WithDueDate(dueDate, now time.Time) (Specification, error) {
	p := s.Params()
	p.DueDate = dueDate
	return NewSpecification(p, now)
}

func (s Specification) WithMaxAttempts(maxAttempts int) (Specification, error) {
	p := s.Params()
	p.MaxAttempts = maxAttempts
	return RestoreSpecification(p)
}
