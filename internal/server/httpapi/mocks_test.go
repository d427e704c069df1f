package httpapi_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"assignment_service/internal/domain"
	"assignment_service/internal/service"
)

type MockAssignmentService struct {
	mock.Mock
}

func (m *MockAssignmentService) CreateAssignment(ctx context.Context, in service.CreateAssignmentInput) (domain.Assignment, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(domain.Assignment), args.Error(1)
}

func (m *MockAssignmentService) GetAssignment(ctx context.Context, id uuid.UUID) (domain.Assignment, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Assignment), args.Error(1)
}

func (m *MockAssignmentService) PublishAssignment(ctx context.Context, id uuid.UUID) (domain.Assignment, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Assignment), args.Error(1)
}

func (m *MockAssignmentService) ArchiveAssignment(ctx context.Context, id uuid.UUID) (domain.Assignment, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Assignment), args.Error(1)
}

func (m *MockAssignmentService) UpdateSpecification(ctx context.Context, id uuid.UUID, p domain.SpecificationParams) (domain.Assignment, error) {
	args := m.Called(ctx, id, p)
	return args.Get(0).(domain.Assignment), args.Error(1)
}

func (m *MockAssignmentService) ListAssignmentsByCourse(ctx context.Context, courseID uuid.UUID, statuses []domain.AssignmentStatus) ([]domain.Assignment, error) {
	args := m.Called(ctx, courseID, statuses)
	return args.Get(0).([]domain.Assignment), args.Error(1)
}

func (m *MockAssignmentService) DeadlineSummary(ctx context.Context, courseID uuid.UUID) (service.DeadlineSummary, error) {
	args := m.Called(ctx, courseID)
	return args.Get(0).(service.DeadlineSummary), args.Error(1)
}

func (m *MockAssignmentService) GradePreview(ctx context.Context, id uuid.UUID, scores map[string]float64) (domain.GradeResult, error) {
	args := m.Called(ctx, id, scores)
	return args.Get(0).(domain.GradeResult), args.Error(1)
}

func (m *MockAssignmentService) EstimateStudyTime(ctx context.Context, id uuid.UUID) (service.StudyTimeEstimate, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(service.StudyTimeEstimate), args.Error(1)
}

type MockSubmissionService struct {
	mock.Mock
}

func (m *MockSubmissionService) StartSubmission(ctx context.Context, assignmentID uuid.UUID, text string) (domain.AssignmentSubmission, error) {
	args := m.Called(ctx, assignmentID, text)
	return args.Get(0).(domain.AssignmentSubmission), args.Error(1)
}

func (m *MockSubmissionService) GetSubmission(ctx context.Context, id uuid.UUID) (domain.AssignmentSubmission, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.AssignmentSubmission), args.Error(1)
}

func (m *MockSubmissionService) UpdateContent(ctx context.Context, id uuid.UUID, text string) (domain.AssignmentSubmission, error) {
	args := m.Called(ctx, id, text)
	return args.Get(0).(domain.AssignmentSubmission), args.Error(1)
}

func (m *MockSubmissionService) AddAttachments(ctx context.Context, id uuid.UUID, files []domain.FileAttachment) (domain.AssignmentSubmission, error) {
	args := m.Called(ctx, id, files)
	return args.Get(0).(domain.AssignmentSubmission), args.Error(1)
}

func (m *MockSubmissionService) SubmitSubmission(ctx context.Context, id uuid.UUID) (domain.AssignmentSubmission, domain.ValidationResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.AssignmentSubmission), args.Get(1).(domain.ValidationResult), args.Error(2)
}

func (m *MockSubmissionService) GradeSubmission(ctx context.Context, id uuid.UUID, in service.GradeInput) (domain.AssignmentSubmission, domain.GradeResult, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(domain.AssignmentSubmission), args.Get(1).(domain.GradeResult), args.Error(2)
}

func (m *MockSubmissionService) ListSubmissionsByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]domain.AssignmentSubmission, error) {
	args := m.Called(ctx, assignmentID)
	return args.Get(0).([]domain.AssignmentSubmission), args.Error(1)
}

type MockProgressService struct {
	mock.Mock
}

func (m *MockProgressService) TrackProgress(ctx context.Context, assignmentID uuid.UUID, in service.TrackProgressInput) (domain.AssignmentProgress, error) {
	args := m.Called(ctx, assignmentID, in)
	return args.Get(0).(domain.AssignmentProgress), args.Error(1)
}

func (m *MockProgressService) GetProgress(ctx context.Context, assignmentID, studentID uuid.UUID) (domain.AssignmentProgress, error) {
	args := m.Called(ctx, assignmentID, studentID)
	return args.Get(0).(domain.AssignmentProgress), args.Error(1)
}

func (m *MockProgressService) Recommendations(ctx context.Context, studentID, courseID uuid.UUID) ([]service.Recommendation, error) {
	args := m.Called(ctx, studentID, courseID)
	return args.Get(0).([]service.Recommendation), args.Error(1)
}
