package domain

type UserRole string

const (
	UserRoleStudent    UserRole = "student"
	UserRoleInstructor UserRole = "instructor"
	UserRoleAdmin      UserRole = "admin"
)

type AssignmentType string

const (
	AssignmentTypeQuiz       AssignmentType = "quiz"
	AssignmentTypeAssignment AssignmentType = "assignment"
	AssignmentTypeProject    AssignmentType = "project"
	AssignmentTypeDiscussion AssignmentType = "discussion"
)

func (t AssignmentType) IsValid() bool {
	switch t {
	case AssignmentTypeQuiz, AssignmentTypeAssignment,
		AssignmentTypeProject, AssignmentTypeDiscussion:
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// Rank orders priorities for sorting; higher is more pressing.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "low"
	UrgencyMedium   UrgencyLevel = "medium"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyCritical UrgencyLevel = "critical"
)

type AssignmentStatus string

const (
	AssignmentStatusDraft     AssignmentStatus = "draft"
	AssignmentStatusPublished AssignmentStatus = "published"
	AssignmentStatusArchived  AssignmentStatus = "archived"
)

func (s AssignmentStatus) IsValid() bool {
	switch s {
	case AssignmentStatusDraft, AssignmentStatusPublished, AssignmentStatusArchived:
		return true
	default:
		return false
	}
}

type DeadlineStatus string

const (
	DeadlineOverdue  DeadlineStatus = "overdue"
	DeadlineDueSoon  DeadlineStatus = "due_soon"
	DeadlineUpcoming DeadlineStatus = "upcoming"
)

type SubmissionStatus string

const (
	SubmissionStatusDraft     SubmissionStatus = "draft"
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
	SubmissionStatusGraded    SubmissionStatus = "graded"
	SubmissionStatusLate      SubmissionStatus = "late"
	SubmissionStatusReturned  SubmissionStatus = "returned"
)

func (s SubmissionStatus) IsValid() bool {
	switch s {
	case SubmissionStatusDraft, SubmissionStatusSubmitted, SubmissionStatusGraded,
		SubmissionStatusLate, SubmissionStatusReturned:
		return true
	default:
		return false
	}
}

// IsFinal reports whether the attempt has been handed in.
func (s SubmissionStatus) IsFinal() bool {
	switch s {
	case SubmissionStatusSubmitted, SubmissionStatusGraded, SubmissionStatusLate:
		return true
	default:
		return false
	}
}

type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not_started"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
	ProgressOverdue    ProgressStatus = "overdue"
)

func (s ProgressStatus) IsValid() bool {
	switch s {
	case ProgressNotStarted, ProgressInProgress, ProgressCompleted, ProgressOverdue:
		return true
	default:
		return false
	}
}

func ToSubmissionStatus(status string) (SubmissionStatus, bool) {
	s := SubmissionStatus(status)
	return s, s.IsValid()
}

func ToAssignmentStatus(status string) (AssignmentStatus, bool) {
	s := AssignmentStatus(status)
	return s, s.IsValid()
}
