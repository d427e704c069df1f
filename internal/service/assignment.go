package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"assignment_service/internal/domain"
	"assignment_service/pkg/logger"
)

var ErrInvalidTransition = errors.New("invalid status transition")

type CreateAssignmentInput struct {
	Title            string                     `json:"title"`
	Description      string                     `json:"description"`
	Instructions     string                     `json:"instructions"`
	CourseID         uuid.UUID                  `json:"course_id"`
	Specification    domain.SpecificationParams `json:"specification"`
	Rubric           []domain.RubricCriterion   `json:"rubric"`
	Attachments      []domain.FileAttachment    `json:"attachments"`
	MaxFileSizeMB    int                        `json:"max_file_size_mb"`
	AllowedFileTypes []string                   `json:"allowed_file_types"`
	Tags             []string                   `json:"tags"`
}

type AssignmentService struct {
	assignmentRepo AssignmentRepository
	publisher      EventPublisher
	cache          Cache
	rules          *AssignmentDomainService
	log            *logger.Logger
	now            func() time.Time
}

func NewAssignmentService(
	assignmentRepo AssignmentRepository,
	publisher EventPublisher,
	cache Cache,
	log *logger.Logger,
) *AssignmentService {
	return &AssignmentService{
		assignmentRepo: assignmentRepo,
		publisher:      publisher,
		cache:          cache,
		rules:          NewAssignmentDomainService(),
		log:            log,
		now:            time.Now,
	}
}

// WithClock replaces the time source.
func (s *AssignmentService) WithClock(now func() time.Time) *AssignmentService {
	s.now = now
	return s
}

func (s *AssignmentService) CreateAssignment(ctx context.Context, in CreateAssignmentInput) (domain.Assignment, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return domain.Assignment{}, err
	}
	if !c.isStaff() {
		return domain.Assignment{}, ErrPermissionDenied
	}

	now := s.now()
	spec, specErr := domain.NewSpecification(in.Specification, now)
	rubric, rubricErr := domain.NewRubric(in.Rubric)
	if specErr != nil || rubricErr != nil {
		return domain.Assignment{}, multierr.Append(specErr, rubricErr)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return domain.Assignment{}, fmt.Errorf("failed to generate UUID: %w", err)
	}

	a, err := domain.NewAssignment(domain.AssignmentParams{
		ID:               id,
		Title:            in.Title,
		Description:      in.Description,
		Instructions:     in.Instructions,
		CourseID:         in.CourseID,
		InstructorID:     c.id,
		Specification:    spec,
		Rubric:           rubric,
		Status:           domain.AssignmentStatusDraft,
		Attachments:      in.Attachments,
		MaxFileSizeMB:    in.MaxFileSizeMB,
		AllowedFileTypes: in.AllowedFileTypes,
	}, in.Tags, now)
	if err != nil {
		return domain.Assignment{}, err
	}

	if err := s.assignmentRepo.Create(ctx, a); err != nil {
		return domain.Assignment{}, err
	}

	s.log.InfoContext(ctx, "assignment created",
		zap.String("assignment_id", a.ID().String()),
		zap.String("course_id", a.CourseID().String()),
	)
	return a, nil
}

func (s *AssignmentService) GetAssignment(ctx context.Context, id uuid.UUID) (domain.Assignment, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return domain.Assignment{}, err
	}

	a, err := s.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		return domain.Assignment{}, err
	}
	if !c.canView(a) {
		return domain.Assignment{}, ErrPermissionDenied
	}
	return a, nil
}

func (s *AssignmentService) managed(ctx context.Context, id uuid.UUID) (domain.Assignment, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return domain.Assignment{}, err
	}

	a, err := s.assignmentRepo.GetByID(ctx, id)
	if err != nil {
		return domain.Assignment{}, err
	}
	if !c.canManage(a) {
		return domain.Assignment{}, ErrPermissionDenied
	}
	return a, nil
}

// save persists a change that alters what students of the course should work
// on, so their cached recommendations are invalidated.
func (s *AssignmentService) save(ctx context.Context, a domain.Assignment) (domain.Assignment, error) {
	updated, err := s.assignmentRepo.Update(ctx, a)
	if err != nil {
		return domain.Assignment{}, err
	}
	bumpCourseRevision(ctx, s.cache, updated.CourseID(), s.now())
	return updated, nil
}

// PublishAssignment opens a draft for submissions and announces it.
func (s *AssignmentService) PublishAssignment(ctx context.Context, id uuid.UUID) (domain.Assignment, error) {
	a, err := s.managed(ctx, id)
	if err != nil {
		return domain.Assignment{}, err
	}
	if a.Status() != domain.AssignmentStatusDraft {
		return domain.Assignment{}, fmt.Errorf("%w: cannot publish %s assignment", ErrInvalidTransition, a.Status())
	}

	updated, err := s.save(ctx, a.WithStatus(domain.AssignmentStatusPublished, s.now()))
	if err != nil {
		return domain.Assignment{}, err
	}

	event := AssignmentPublishedEvent{
		AssignmentID: updated.ID(),
		CourseID:     updated.CourseID(),
		InstructorID: updated.InstructorID(),
		Title:        updated.Title(),
		DueDate:      updated.Specification().DueDate(),
	}
	if err := s.publisher.Send(ctx, TopicAssignmentPublished, event); err != nil {
		s.log.ErrorContext(ctx, "failed to publish assignment event",
			zap.String("assignment_id", updated.ID().String()), zap.Error(err))
	}
	return updated, nil
}

func (s *AssignmentService) ArchiveAssignment(ctx context.Context, id uuid.UUID) (domain.Assignment, error) {
	a, err := s.managed(ctx, id)
	if err != nil {
		return domain.Assignment{}, err
	}
	if a.Status() == domain.AssignmentStatusArchived {
		return domain.Assignment{}, fmt.Errorf("%w: assignment is already archived", ErrInvalidTransition)
	}
	return s.save(ctx, a.WithStatus(domain.AssignmentStatusArchived, s.now()))
}

// UpdateSpecification replaces the rules of an assignment. The new due date
// must still lie in the future.
func (s *AssignmentService) UpdateSpecification(ctx context.Context, id uuid.UUID, p domain.SpecificationParams) (domain.Assignment, error) {
	a, err := s.managed(ctx, id)
	if err != nil {
		return domain.Assignment{}, err
	}
	if a.Status() == domain.AssignmentStatusArchived {
		return domain.Assignment{}, fmt.Errorf("%w: archived assignments are read-only", ErrInvalidTransition)
	}

	now := s.now()
	spec, err := domain.NewSpecification(p, now)
	if err != nil {
		return domain.Assignment{}, err
	}
	return s.save(ctx, a.WithSpecification(spec, now))
}

// ListAssignmentsByCourse returns only published work to students, whatever
// statuses were requested.
func (s *AssignmentService) ListAssignmentsByCourse(ctx context.Context, courseID uuid.UUID, statuses []domain.AssignmentStatus) ([]domain.Assignment, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if !c.isStaff() {
		statuses = []domain.AssignmentStatus{domain.AssignmentStatusPublished}
	}
	return s.assignmentRepo.ListByCourse(ctx, courseID, statuses)
}

func (s *AssignmentService) DeadlineSummary(ctx context.Context, courseID uuid.UUID) (DeadlineSummary, error) {
	assignments, err := s.ListAssignmentsByCourse(ctx, courseID, []domain.AssignmentStatus{domain.AssignmentStatusPublished})
	if err != nil {
		return DeadlineSummary{}, err
	}
	return s.rules.DeadlineSummary(assignments, s.now()), nil
}

// GradePreview runs the rubric over scores without touching any submission.
func (s *AssignmentService) GradePreview(ctx context.Context, id uuid.UUID, scores map[string]float64) (domain.GradeResult, error) {
	a, err := s.managed(ctx, id)
	if err != nil {
		return domain.GradeResult{}, err
	}
	return a.CalculateGrade(scores), nil
}

func (s *AssignmentService) EstimateStudyTime(ctx context.Context, id uuid.UUID) (StudyTimeEstimate, error) {
	a, err := s.GetAssignment(ctx, id)
	if err != nil {
		return StudyTimeEstimate{}, err
	}
	return s.rules.EstimateStudyTime(a), nil
}
