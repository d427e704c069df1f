package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

type ProgressParams struct {
	AssignmentID         uuid.UUID
	StudentID            uuid.UUID
	Status               ProgressStatus
	TimeSpent            time.Duration
	CompletionPercentage float64
	LastAccessed         time.Time
	StartedAt            *time.Time
	CompletedAt          *time.Time
}

// AssignmentProgress tracks one student's work on one assignment. It is keyed
// by (assignment, student) and is never deleted.
type AssignmentProgress struct {
	p ProgressParams
}

func NewProgress(p ProgressParams) (AssignmentProgress, error) {
	var err error
	if p.Status == "" {
		p.Status = ProgressNotStarted
	}
	if !p.Status.IsValid() {
		err = multierr.Append(err, invalid("status", "unknown status %q", p.Status))
	}
	if p.CompletionPercentage < 0 || p.CompletionPercentage > 100 {
		err = multierr.Append(err, invalid("completion_percentage", "completion percentage must be between 0 and 100"))
	}
	if p.TimeSpent < 0 {
		err = multierr.Append(err, invalid("time_spent", "time spent cannot be negative"))
	}
	if p.CompletedAt != nil {
		switch {
		case p.StartedAt == nil:
			err = multierr.Append(err, invalid("completed_at", "completed progress must have a start time"))
		case p.CompletedAt.Before(*p.StartedAt):
			err = multierr.Append(err, invalid("completed_at", "completion cannot precede start"))
		}
	}
	if p.Status == ProgressCompleted && p.CompletionPercentage != 100 {
		err = multierr.Append(err, invalid("status", "completed progress must be at 100%%"))
	}
	if err != nil {
		return AssignmentProgress{}, err
	}
	return AssignmentProgress{p: cloneProgressParams(p)}, nil
}

// StartProgress records the first interaction of a student with an assignment.
func StartProgress(assignmentID, studentID uuid.UUID, now time.Time) AssignmentProgress {
	return AssignmentProgress{p: ProgressParams{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Status:       ProgressNotStarted,
		LastAccessed: now,
	}}
}

func cloneProgressParams(p ProgressParams) ProgressParams {
	if p.StartedAt != nil {
		t := *p.StartedAt
		p.StartedAt = &t
	}
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		p.CompletedAt = &t
	}
	return p
}

func (p AssignmentProgress) Params() ProgressParams { return cloneProgressParams(p.p) }

func (p AssignmentProgress) AssignmentID() uuid.UUID { return p.p.AssignmentID }
func (p AssignmentProgress) StudentID() uuid.UUID { return p.p.StudentID }
func (p AssignmentProgress) Status() ProgressStatus { return p.p.Status }
func (p AssignmentProgress) TimeSpent() time.Duration { return p.p.TimeSpent }
func (p AssignmentProgress) CompletionPercentage() float64 { return p.p.CompletionPercentage }
func (p AssignmentProgress) LastAccessed() time.Time { return p.p.LastAccessed }

func (p AssignmentProgress) StartedAt() (time.Time, bool) {
	if p.p.StartedAt == nil {
		return time.Time{}, false
	}
	return *p.p.StartedAt, true
}

func (p AssignmentProgress) CompletedAt() (time.Time, bool) {
	if p.p.CompletedAt == nil {
		return time.Time{}, false
	}
	return *p.p.CompletedAt, true
}

func (p AssignmentProgress) IsStarted() bool { return p.p.StartedAt != nil }

func (p AssignmentProgress) touch(now time.Time) AssignmentProgress {
	next := cloneProgressParams(p.p)
	next.LastAccessed = now
	return AssignmentProgress{p: next}
}

func (p AssignmentProgress) MarkAsStarted(now time.Time) AssignmentProgress {
	if p.IsStarted() {
		return p
	}
	next := p.touch(now)
	next.p.Status = ProgressInProgress
	next.p.CompletionPercentage = math.Max(next.p.CompletionPercentage, 1)
	next.p.StartedAt = &now
	return next
}

func (p AssignmentProgress) MarkAsCompleted(now time.Time) AssignmentProgress {
	if p.p.Status == ProgressCompleted {
		return p
	}
	next := p.touch(now)
	next.p.Status = ProgressCompleted
	next.p.CompletionPercentage = 100
	if next.p.StartedAt == nil {
		next.p.StartedAt = &now
	}
	next.p.CompletedAt = &now
	return next
}

// WithProgress clamps pct to [0, 100] and derives the status from it. Only a
// completed record keeps a completion time.
func (p AssignmentProgress) WithProgress(pct float64, now time.Time) AssignmentProgress {
	pct = math.Max(0, math.Min(100, pct))

	next := p.touch(now)
	next.p.CompletionPercentage = pct
	switch {
	case pct == 0:
		next.p.Status = ProgressNotStarted
	case pct == 100:
		next.p.Status = ProgressCompleted
	default:
		next.p.Status = ProgressInProgress
	}

	if pct > 0 && next.p.StartedAt == nil {
		next.p.StartedAt = &now
	}
	switch {
	case next.p.Status != ProgressCompleted:
		next.p.CompletedAt = nil
	case p.p.Status != ProgressCompleted:
		next.p.CompletedAt = &now
	}
	return next
}

func (p AssignmentProgress) WithTimeSpent(extra time.Duration, now time.Time) AssignmentProgress {
	next := p.touch(now)
	if extra > 0 {
		next.p.TimeSpent += extra
	}
	return next
}

// MarkAsOverdue flags unfinished work whose deadline has passed.
func (p AssignmentProgress) MarkAsOverdue(now time.Time) AssignmentProgress {
	if p.p.Status == ProgressCompleted || p.p.Status == ProgressOverdue {
		return p
	}
	next := p.touch(now)
	next.p.Status = ProgressOverdue
	return next
}

func (p AssignmentProgress) EstimateRemainingTime() time.Duration {
	if p.p.CompletionPercentage == 0 {
		return 0
	}
	perPercent := float64(p.p.TimeSpent) / p.p.CompletionPercentage
	return time.Duration(perPercent * (100 - p.p.CompletionPercentage))
}
