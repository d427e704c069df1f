package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"assignment_service/internal/domain"
	"assignment_service/internal/repository"
	"assignment_service/pkg/logger"
)

const DefaultRecommendationTTL = 5 * time.Minute

// TrackProgressInput describes one progress report from a student. Nil or zero
// fields are left untouched.
type TrackProgressInput struct {
	Percentage       *float64 `json:"percentage,omitempty"`
	TimeSpentMinutes int      `json:"time_spent_minutes,omitempty"`
	Completed        bool     `json:"completed,omitempty"`
}

type ProgressService struct {
	assignmentRepo AssignmentRepository
	submissionRepo SubmissionRepository
	progressRepo   ProgressRepository
	cache          Cache
	ttl            time.Duration
	rules          *AssignmentDomainService
	reconciler     *SubmissionDomainService
	log            *logger.Logger
	now            func() time.Time
}

func NewProgressService(
	assignmentRepo AssignmentRepository,
	submissionRepo SubmissionRepository,
	progressRepo ProgressRepository,
	cache Cache,
	ttl time.Duration,
	log *logger.Logger,
) *ProgressService {
	if ttl <= 0 {
		ttl = DefaultRecommendationTTL
	}
	rules := NewAssignmentDomainService()
	return &ProgressService{
		assignmentRepo: assignmentRepo,
		submissionRepo: submissionRepo,
		progressRepo:   progressRepo,
		cache:          cache,
		ttl:            ttl,
		rules:          rules,
		reconciler:     NewSubmissionDomainService(rules),
		log:            log,
		now:            time.Now,
	}
}

func (s *ProgressService) WithClock(now func() time.Time) *ProgressService {
	s.now = now
	return s
}

func (s *ProgressService) load(ctx context.Context, assignmentID, studentID uuid.UUID, now time.Time) (domain.AssignmentProgress, error) {
	p, err := s.progressRepo.Get(ctx, assignmentID, studentID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.StartProgress(assignmentID, studentID, now), nil
	}
	return p, err
}

func (s *ProgressService) save(ctx context.Context, a domain.Assignment, p domain.AssignmentProgress) error {
	if err := s.progressRepo.Save(ctx, p); err != nil {
		return err
	}
	s.cache.Delete(ctx, recommendationsKey(p.StudentID(), a.CourseID()))
	return nil
}

// TrackProgress records a student's own report of work on a published
// assignment.
func (s *ProgressService) TrackProgress(ctx context.Context, assignmentID uuid.UUID, in TrackProgressInput) (domain.AssignmentProgress, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return domain.AssignmentProgress{}, err
	}
	if !c.isStudent() {
		return domain.AssignmentProgress{}, ErrPermissionDenied
	}
	if in.TimeSpentMinutes < 0 {
		return domain.AssignmentProgress{}, fmt.Errorf("%w: time spent cannot be negative", ErrInvalidArgument)
	}

	a, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return domain.AssignmentProgress{}, err
	}
	if !c.canView(a) {
		return domain.AssignmentProgress{}, ErrPermissionDenied
	}

	now := s.now()
	p, err := s.load(ctx, assignmentID, c.id, now)
	if err != nil {
		return domain.AssignmentProgress{}, err
	}

	p = p.MarkAsStarted(now)
	if in.Percentage != nil {
		p = p.WithProgress(*in.Percentage, now)
	}
	if in.TimeSpentMinutes > 0 {
		p = p.WithTimeSpent(time.Duration(in.TimeSpentMinutes)*time.Minute, now)
	}
	if in.Completed {
		p = p.MarkAsCompleted(now)
	}

	if err := s.save(ctx, a, p); err != nil {
		return domain.AssignmentProgress{}, err
	}
	return p, nil
}

// MarkStarted opens progress the first time a student works on an assignment.
func (s *ProgressService) MarkStarted(ctx context.Context, a domain.Assignment, studentID uuid.UUID) error {
	now := s.now()
	p, err := s.load(ctx, a.ID(), studentID, now)
	if err != nil {
		return err
	}
	if p.IsStarted() {
		return nil
	}
	return s.save(ctx, a, p.MarkAsStarted(now))
}

// Reconcile realigns progress with the student's submissions.
func (s *ProgressService) Reconcile(ctx context.Context, a domain.Assignment, studentID uuid.UUID) (domain.AssignmentProgress, error) {
	now := s.now()
	p, err := s.load(ctx, a.ID(), studentID, now)
	if err != nil {
		return domain.AssignmentProgress{}, err
	}
	subs, err := s.submissionRepo.ListByStudent(ctx, a.ID(), studentID)
	if err != nil {
		return domain.AssignmentProgress{}, err
	}

	next := s.reconciler.ReconcileProgress(a, p, subs, now)
	if next.Status() == p.Status() {
		return p, nil
	}
	if err := s.save(ctx, a, next); err != nil {
		return domain.AssignmentProgress{}, err
	}
	return next, nil
}

func (s *ProgressService) GetProgress(ctx context.Context, assignmentID, studentID uuid.UUID) (domain.AssignmentProgress, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return domain.AssignmentProgress{}, err
	}
	if c.isStudent() && c.id != studentID {
		return domain.AssignmentProgress{}, ErrPermissionDenied
	}
	if !c.isStudent() {
		a, err := s.assignmentRepo.GetByID(ctx, assignmentID)
		if err != nil {
			return domain.AssignmentProgress{}, err
		}
		if !c.canManage(a) {
			return domain.AssignmentProgress{}, ErrPermissionDenied
		}
	}
	return s.load(ctx, assignmentID, studentID, s.now())
}

// Recommendations lists what a student should work on next within a course.
// Results are cached per student and course until progress changes, an
// assignment of the course changes, or the TTL expires.
func (s *ProgressService) Recommendations(ctx context.Context, studentID, courseID uuid.UUID) ([]Recommendation, error) {
	c, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if !(c.isStaff() || c.id == studentID) {
		return nil, ErrPermissionDenied
	}

	key := recommendationsKey(studentID, courseID)
	revision := courseRevision(ctx, s.cache, courseID)
	if data, ok := s.cache.Get(ctx, key); ok {
		if cached, fresh := decodeRecommendations(data, revision); fresh {
			return cached, nil
		}
		s.log.DebugContext(ctx, "dropping stale cache entry", zap.String("key", key))
	}

	assignments, err := s.assignmentRepo.ListByCourse(ctx, courseID, []domain.AssignmentStatus{domain.AssignmentStatusPublished})
	if err != nil {
		return nil, err
	}
	records, err := s.progressRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	progress := make(map[uuid.UUID]domain.AssignmentProgress, len(records))
	for _, p := range records {
		progress[p.AssignmentID()] = p
	}

	recs := s.rules.GenerateRecommendations(assignments, progress, s.now())
	if data, err := json.Marshal(cachedRecommendations{Revision: revision, Items: recs}); err == nil {
		s.cache.Set(ctx, key, data, s.ttl)
	}
	return recs, nil
}
