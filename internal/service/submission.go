package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"assignment_service/internal/domain"
	"assignment_service/pkg/logger"
)

type GradeInput struct {
	Scores   map[string]float64 `json:"scores"`
	Feedback string             `json:"feedback"`
}

type SubmissionService struct {
	assignmentRepo AssignmentRepository
	submissionRepo SubmissionRepository
	progress       *ProgressService
	publisher      EventPublisher
	rules          *SubmissionDomainService
	checks         *AssignmentDomainService
	log            *logger.Logger
	now            func() time.Time
}

func NewSubmissionService(
	assignmentRepo AssignmentRepository,
	submissionRepo SubmissionRepository,
	progress *ProgressService,
	publisher EventPublisher,
	log *logger.Logger,
) *SubmissionService {
	checks := NewAssignmentDomainService()
	return &SubmissionService{
		assignmentRepo: assignmentRepo,
		submissionRepo: submissionRepo,
		progress:       progress,
		publisher:      publisher,
		rules:          NewSubmissionDomainService(checks),
		checks:         checks,
		log:            log,
		now:            time.Now,
	}
}

func (s *SubmissionService) WithClock(now func() time.Time) *SubmissionService {
	s.now = now
	return s
}

// StartSubmission opens the student's next attempt as a draft.
func (s *SubmissionService) StartSubmission(ctx context.Context, assignmentID uuid.UUID, text string) (domain.AssignmentSubmission, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return domain.AssignmentSubmission{}, err
	}
	if !c.isStudent() {
		return domain.AssignmentSubmission{}, ErrPermissionDenied
	}

	a, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return domain.AssignmentSubmission{}, err
	}
	if !c.canView(a) {
		return domain.AssignmentSubmission{}, ErrPermissionDenied
	}

	existing, err := s.submissionRepo.ListByStudent(ctx, a.ID(), c.id)
	if err != nil {
		return domain.AssignmentSubmission{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return domain.AssignmentSubmission{}, fmt.Errorf("failed to generate UUID: %w", err)
	}
	sub, err := s.rules.CreateSubmission(id, a, c.id, existing, text, s.now())
	if err != nil {
		return domain.AssignmentSubmission{}, err
	}
	if err := s.submissionRepo.Create(ctx, sub); err != nil {
		return domain.AssignmentSubmission{}, err
	}

	if err := s.progress.MarkStarted(ctx, a, c.id); err != nil {
		s.log.WarnContext(ctx, "failed to start progress",
			zap.String("assignment_id", a.ID().String()), zap.Error(err))
	}
	return sub, nil
}

// owned loads a submission together with its assignment and checks that the
// caller is the submitting student.
func (s *SubmissionService) owned(ctx context.Context, id uuid.UUID) (domain.Assignment, domain.AssignmentSubmission, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return domain.Assignment{}, domain.AssignmentSubmission{}, err
	}
	sub, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		return domain.Assignment{}, domain.AssignmentSubmission{}, err
	}
	if sub.StudentID() != c.id {
		return domain.Assignment{}, domain.AssignmentSubmission{}, ErrPermissionDenied
	}
	a, err := s.assignmentRepo.GetByID(ctx, sub.AssignmentID())
	if err != nil {
		return domain.Assignment{}, domain.AssignmentSubmission{}, err
	}
	return a, sub, nil
}

func (s *SubmissionService) GetSubmission(ctx context.Context, id uuid.UUID) (domain.AssignmentSubmission, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return domain.AssignmentSubmission{}, err
	}
	sub, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		return domain.AssignmentSubmission{}, err
	}
	if sub.StudentID() == c.id {
		return sub, nil
	}

	a, err := s.assignmentRepo.GetByID(ctx, sub.AssignmentID())
	if err != nil {
		return domain.AssignmentSubmission{}, err
	}
	if !c.canManage(a) {
		return domain.AssignmentSubmission{}, ErrPermissionDenied
	}
	return sub, nil
}

func (s *SubmissionService) UpdateContent(ctx context.Context, id uuid.UUID, text string) (domain.AssignmentSubmission, error) {
	a, sub, err := s.owned(ctx, id)
	if err != nil {
		return domain.AssignmentSubmission{}, err
	}
	updated, err := s.rules.UpdateContent(a, sub, text, s.now())
	if err != nil {
		return domain.AssignmentSubmission{}, err
	}
	if err := s.submissionRepo.Update(ctx, updated); err != nil {
		return domain.AssignmentSubmission{}, err
	}
	return updated, nil
}

// AddAttachments appends files to an editable draft. Files the assignment
// would reject on submit are refused here already.
func (s *SubmissionService) AddAttachments(ctx context.Context, id uuid.UUID, files []domain.FileAttachment) (domain.AssignmentSubmission, error) {
	a, sub, err := s.owned(ctx, id)
	if err != nil {
		return domain.AssignmentSubmission{}, err
	}

	now := s.now()
	if !s.rules.CanEditDraft(a, sub, now) {
		return domain.AssignmentSubmission{}, ErrSubmissionLocked
	}

	files = append([]domain.FileAttachment(nil), files...)
	for i, f := range files {
		if f.ExceedsSize(a.MaxFileSizeMB()) {
			return domain.AssignmentSubmission{}, &domain.ValidationError{
				Field:   fmt.Sprintf("attachments[%d]", i),
				Message: fmt.Sprintf("file %s exceeds the maximum size of %d MB", f.Name, a.MaxFileSizeMB()),
			}
		}
		if !a.IsFileTypeAllowed(f.Extension()) {
			return domain.AssignmentSubmission{}, &domain.ValidationError{
				Field:   fmt.Sprintf("attachments[%d]", i),
				Message: fmt.Sprintf("file type of %s is not allowed", f.Name),
			}
		}
		if f.ID == uuid.Nil {
			if files[i].ID, err = uuid.NewV7(); err != nil {
				return domain.AssignmentSubmission{}, fmt.Errorf("failed to generate UUID: %w", err)
			}
		}
		if files[i].UploadedAt.IsZero() {
			files[i].UploadedAt = now
		}
	}

	updated, err := sub.WithAttachments(append(sub.Attachments(), files...), now)
	if err != nil {
		return domain.AssignmentSubmission{}, err
	}
	if err := s.submissionRepo.Update(ctx, updated); err != nil {
		return domain.AssignmentSubmission{}, err
	}
	return updated, nil
}

// SubmitSubmission hands in a draft. Broken assignment rules come back as a
// *RuleViolationError and leave the draft as it was.
func (s *SubmissionService) SubmitSubmission(ctx context.Context, id uuid.UUID) (domain.AssignmentSubmission, domain.ValidationResult, error) {
	a, sub, err := s.owned(ctx, id)
	if err != nil {
		return domain.AssignmentSubmission{}, domain.ValidationResult{}, err
	}

	existing, err := s.submissionRepo.ListByStudent(ctx, a.ID(), sub.StudentID())
	if err != nil {
		return domain.AssignmentSubmission{}, domain.ValidationResult{}, err
	}
	prior := 0
	for _, other := range existing {
		if other.ID() != sub.ID() {
			prior++
		}
	}

	now := s.now()
	submitted, result, err := s.rules.Submit(a, sub, prior, now)
	if err != nil {
		return domain.AssignmentSubmission{}, result, err
	}
	if !result.IsValid {
		return sub, result, &RuleViolationError{Result: result}
	}
	if err := s.submissionRepo.Update(ctx, submitted); err != nil {
		return domain.AssignmentSubmission{}, result, err
	}

	event := SubmissionSubmittedEvent{
		SubmissionID:  submitted.ID(),
		AssignmentID:  a.ID(),
		StudentID:     submitted.StudentID(),
		AttemptNumber: submitted.AttemptNumber(),
		SubmittedAt:   now,
		IsLate:        submitted.IsLate(a.Specification().DueDate()),
	}
	if err := s.publisher.Send(ctx, TopicSubmissionSubmitted, event); err != nil {
		s.log.ErrorContext(ctx, "failed to publish submission event",
			zap.String("submission_id", submitted.ID().String()), zap.Error(err))
	}
	if _, err := s.progress.Reconcile(ctx, a, submitted.StudentID()); err != nil {
		s.log.WarnContext(ctx, "failed to reconcile progress",
			zap.String("assignment_id", a.ID().String()), zap.Error(err))
	}
	return submitted, result, nil
}

// GradeSubmission scores handed-in work. Only the assignment owner or an
// admin may grade.
func (s *SubmissionService) GradeSubmission(ctx context.Context, id uuid.UUID, in GradeInput) (domain.AssignmentSubmission, domain.GradeResult, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return domain.AssignmentSubmission{}, domain.GradeResult{}, err
	}
	sub, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		return domain.AssignmentSubmission{}, domain.GradeResult{}, err
	}
	a, err := s.assignmentRepo.GetByID(ctx, sub.AssignmentID())
	if err != nil {
		return domain.AssignmentSubmission{}, domain.GradeResult{}, err
	}
	if !c.canManage(a) {
		return domain.AssignmentSubmission{}, domain.GradeResult{}, ErrPermissionDenied
	}

	graded, result := s.rules.GradeSubmission(a, sub, in.Scores, in.Feedback, c.id, s.now())
	if !result.IsValid {
		return sub, result, &GradeError{Result: result}
	}
	if err := s.submissionRepo.Update(ctx, graded); err != nil {
		return domain.AssignmentSubmission{}, result, err
	}

	event := SubmissionGradedEvent{
		SubmissionID: graded.ID(),
		AssignmentID: a.ID(),
		StudentID:    graded.StudentID(),
		Score:        result.Score,
		Percentage:   result.Percentage,
		LatePenalty:  result.LatePenalty,
		GradedBy:     c.id,
	}
	if err := s.publisher.Send(ctx, TopicSubmissionGraded, event); err != nil {
		s.log.ErrorContext(ctx, "failed to publish grade event",
			zap.String("submission_id", graded.ID().String()), zap.Error(err))
	}
	return graded, result, nil
}

// ListSubmissionsByAssignment returns every attempt to staff and only the
// caller's own attempts to a student.
func (s *SubmissionService) ListSubmissionsByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]domain.AssignmentSubmission, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	a, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	switch {
	case c.canManage(a):
		return s.submissionRepo.ListByAssignment(ctx, a.ID())
	case c.isStudent():
		return s.submissionRepo.ListByStudent(ctx, a.ID(), c.id)
	default:
		return nil, ErrPermissionDenied
	}
}
