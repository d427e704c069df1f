package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"assignment_service/internal/domain"
)

type AssignmentRepository interface {
	Create(ctx context.Context, a domain.Assignment) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Assignment, error)
	// Update stores a with optimistic locking on its current version and
	// returns it with the advanced version.
	Update(ctx context.Context, a domain.Assignment) (domain.Assignment, error)
	ListByCourse(ctx context.Context, courseID uuid.UUID, statuses []domain.AssignmentStatus) ([]domain.Assignment, error)
	ListPublishedDueBefore(ctx context.Context, deadline time.Time) ([]domain.Assignment, error)
}

type SubmissionRepository interface {
	Create(ctx context.Context, s domain.AssignmentSubmission) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.AssignmentSubmission, error)
	Update(ctx context.Context, s domain.AssignmentSubmission) error
	ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]domain.AssignmentSubmission, error)
	ListByStudent(ctx context.Context, assignmentID, studentID uuid.UUID) ([]domain.AssignmentSubmission, error)
}

type ProgressRepository interface {
	Get(ctx context.Context, assignmentID, studentID uuid.UUID) (domain.AssignmentProgress, error)
	Save(ctx context.Context, p domain.AssignmentProgress) error
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]domain.AssignmentProgress, error)
}

type EventPublisher interface {
	Send(ctx context.Context, topic string, message interface{}) error
}

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}
