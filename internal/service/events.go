package service

import (
	"time"

	"github.com/google/uuid"

	"assignment_service/internal/domain"
)

const (
	TopicAssignmentPublished = "assignment.published"
	TopicSubmissionSubmitted = "submission.submitted"
	TopicSubmissionGraded    = "submission.graded"
	TopicAssignmentReminders = "assignment-reminders"
)

type AssignmentPublishedEvent struct {
	AssignmentID uuid.UUID `json:"assignment_id"`
	CourseID     uuid.UUID `json:"course_id"`
	InstructorID uuid.UUID `json:"instructor_id"`
	Title        string    `json:"title"`
	DueDate      time.Time `json:"due_date"`
}

type SubmissionSubmittedEvent struct {
	SubmissionID  uuid.UUID `json:"submission_id"`
	AssignmentID  uuid.UUID `json:"assignment_id"`
	StudentID     uuid.UUID `json:"student_id"`
	AttemptNumber int       `json:"attempt_number"`
	SubmittedAt   time.Time `json:"submitted_at"`
	IsLate        bool      `json:"is_late"`
}

type SubmissionGradedEvent struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	AssignmentID uuid.UUID `json:"assignment_id"`
	StudentID    uuid.UUID `json:"student_id"`
	Score        float64   `json:"score"`
	Percentage   float64   `json:"percentage"`
	LatePenalty  float64   `json:"late_penalty"`
	GradedBy     uuid.UUID `json:"graded_by"`
}

type AssignmentReminderEvent struct {
	AssignmentID uuid.UUID           `json:"assignment_id"`
	CourseID     uuid.UUID           `json:"course_id"`
	Title        string              `json:"title"`
	DueDate      time.Time           `json:"due_date"`
	DaysUntilDue int                 `json:"days_until_due"`
	Urgency      domain.UrgencyLevel `json:"urgency"`
}
