package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"assignment_service/internal/domain"
	"assignment_service/internal/service"
)

type AssignmentService interface {
	CreateAssignment(ctx context.Context, in service.CreateAssignmentInput) (domain.Assignment, error)
	GetAssignment(ctx context.Context, id uuid.UUID) (domain.Assignment, error)
	PublishAssignment(ctx context.Context, id uuid.UUID) (domain.Assignment, error)
	ArchiveAssignment(ctx context.Context, id uuid.UUID) (domain.Assignment, error)
	UpdateSpecification(ctx context.Context, id uuid.UUID, p domain.SpecificationParams) (domain.Assignment, error)
	ListAssignmentsByCourse(ctx context.Context, courseID uuid.UUID, statuses []domain.AssignmentStatus) ([]domain.Assignment, error)
	DeadlineSummary(ctx context.Context, courseID uuid.UUID) (service.DeadlineSummary, error)
	GradePreview(ctx context.Context, id uuid.UUID, scores map[string]float64) (domain.GradeResult, error)
	EstimateStudyTime(ctx context.Context, id uuid.UUID) (service.StudyTimeEstimate, error)
}

type SubmissionService interface {
	StartSubmission(ctx context.Context, assignmentID uuid.UUID, text string) (domain.AssignmentSubmission, error)
	GetSubmission(ctx context.Context, id uuid.UUID) (domain.AssignmentSubmission, error)
	UpdateContent(ctx context.Context, id uuid.UUID, text string) (domain.AssignmentSubmission, error)
	AddAttachments(ctx context.Context, id uuid.UUID, files []domain.FileAttachment) (domain.AssignmentSubmission, error)
	SubmitSubmission(ctx context.Context, id uuid.UUID) (domain.AssignmentSubmission, domain.ValidationResult, error)
	GradeSubmission(ctx context.Context, id uuid.UUID, in service.GradeInput) (domain.AssignmentSubmission, domain.GradeResult, error)
	ListSubmissionsByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]domain.AssignmentSubmission, error)
}

type ProgressService interface {
	TrackProgress(ctx context.Context, assignmentID uuid.UUID, in service.TrackProgressInput) (domain.AssignmentProgress, error)
	GetProgress(ctx context.Context, assignmentID, studentID uuid.UUID) (domain.AssignmentProgress, error)
	Recommendations(ctx context.Context, studentID, courseID uuid.UUID) ([]service.Recommendation, error)
}

type Handler struct {
	assignments AssignmentService
	submissions SubmissionService
	progress    ProgressService
	validate    *validator.Validate
	now         func() time.Time
}

func NewHandler(assignments AssignmentService, submissions SubmissionService, progress ProgressService) *Handler {
	return &Handler{
		assignments: assignments,
		submissions: submissions,
		progress:    progress,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		now:         time.Now,
	}
}

// WithClock replaces the clock used for derived deadline fields.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/assignments", func(r chi.Router) {
		r.Post("/", h.createAssignment)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getAssignment)
			r.Post("/publish", h.publishAssignment)
			r.Post("/archive", h.archiveAssignment)
			r.Put("/specification", h.updateSpecification)
			r.Post("/grade-preview", h.gradePreview)
			r.Get("/study-estimate", h.studyEstimate)
			r.Post("/submissions", h.startSubmission)
			r.Get("/submissions", h.listSubmissions)
			r.Put("/progress", h.trackProgress)
			r.Get("/progress", h.getProgress)
		})
	})

	r.Route("/courses/{course_id}", func(r chi.Router) {
		r.Get("/assignments", h.listCourseAssignments)
		r.Get("/deadlines", h.courseDeadlines)
	})

	r.Route("/submissions/{id}", func(r chi.Router) {
		r.Get("/", h.getSubmission)
		r.Put("/content", h.updateContent)
		r.Post("/attachments", h.addAttachments)
		r.Post("/submit", h.submit)
		r.Post("/grade", h.grade)
	})

	r.Get("/students/{student_id}/recommendations", h.recommendations)
}

func parseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	val := chi.URLParam(r, key)
	if val == "" {
		return uuid.Nil, fmt.Errorf("%w: missing path param %s", errBadRequest, key)
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s is not a valid id", errBadRequest, key)
	}
	return id, nil
}

// decode reads a JSON body into dst and runs its validator tags. An empty
// body leaves dst at its zero value.
func (h *Handler) decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: request body too large", errBadRequest)
		}
		return fmt.Errorf("%w: invalid request body", errBadRequest)
	}
	if err := h.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", errBadRequest, strings.Join(msgs, ", "))
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func parseStatuses(raw string) ([]domain.AssignmentStatus, error) {
	if raw == "" {
		return nil, nil
	}
	var statuses []domain.AssignmentStatus
	for _, part := range strings.Split(raw, ",") {
		s, ok := domain.ToAssignmentStatus(strings.TrimSpace(part))
		if !ok {
			return nil, fmt.Errorf("%w: unknown status %q", errBadRequest, part)
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}
