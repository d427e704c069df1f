package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"assignment_service/internal/domain"
)

type MockAssignmentRepository struct {
	mock.Mock
}

func (m *MockAssignmentRepository) Create(ctx context.Context, a domain.Assignment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Assignment, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) Update(ctx context.Context, a domain.Assignment) (domain.Assignment, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(domain.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) ListByCourse(ctx context.Context, courseID uuid.UUID, statuses []domain.AssignmentStatus) ([]domain.Assignment, error) {
	args := m.Called(ctx, courseID, statuses)
	out, _ := args.Get(0).([]domain.Assignment)
	return out, args.Error(1)
}

func (m *MockAssignmentRepository) ListPublishedDueBefore(ctx context.Context, deadline time.Time) ([]domain.Assignment, error) {
	args := m.Called(ctx, deadline)
	out, _ := args.Get(0).([]domain.Assignment)
	return out, args.Error(1)
}

type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) Create(ctx context.Context, s domain.AssignmentSubmission) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.AssignmentSubmission, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.AssignmentSubmission), args.Error(1)
}

func (m *MockSubmissionRepository) Update(ctx context.Context, s domain.AssignmentSubmission) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSubmissionRepository) ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]domain.AssignmentSubmission, error) {
	args := m.Called(ctx, assignmentID)
	out, _ := args.Get(0).([]domain.AssignmentSubmission)
	return out, args.Error(1)
}

func (m *MockSubmissionRepository) ListByStudent(ctx context.Context, assignmentID, studentID uuid.UUID) ([]domain.AssignmentSubmission, error) {
	args := m.Called(ctx, assignmentID, studentID)
	out, _ := args.Get(0).([]domain.AssignmentSubmission)
	return out, args.Error(1)
}

type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) Get(ctx context.Context, assignmentID, studentID uuid.UUID) (domain.AssignmentProgress, error) {
	args := m.Called(ctx, assignmentID, studentID)
	return args.Get(0).(domain.AssignmentProgress), args.Error(1)
}

func (m *MockProgressRepository) Save(ctx context.Context, p domain.AssignmentProgress) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProgressRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]domain.AssignmentProgress, error) {
	args := m.Called(ctx, studentID)
	out, _ := args.Get(0).([]domain.AssignmentProgress)
	return out, args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Send(ctx context.Context, topic string, message interface{}) error {
	args := m.Called(ctx, topic, message)
	return args.Error(0)
}
