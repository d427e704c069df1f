package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"assignment_service/internal/domain"
	"assignment_service/pkg/ctxdata"
)

var now = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

type assignmentOpts struct {
	due         time.Duration
	status      domain.AssignmentStatus
	kind        domain.AssignmentType
	maxAttempts int
	criteria    int
	modify      func(p *domain.SpecificationParams)
}

func buildAssignment(t *testing.T, o assignmentOpts) domain.Assignment {
	t.Helper()
	if o.due == 0 {
		o.due = 10 * 24 * time.Hour
	}
	if o.status == "" {
		o.status = domain.AssignmentStatusPublished
	}
	if o.kind == "" {
		o.kind = domain.AssignmentTypeAssignment
	}
	if o.maxAttempts == 0 {
		o.maxAttempts = 2
	}
	if o.criteria == 0 {
		o.criteria = 2
	}

	created := now.Add(-30 * 24 * time.Hour)
	p := domain.SpecificationParams{
		Type:        o.kind,
		DueDate:     now.Add(o.due),
		MaxGrade:    100,
		MaxAttempts: o.maxAttempts,
	}
	if o.modify != nil {
		o.modify(&p)
	}
	spec, err := domain.NewSpecification(p, created)
	require.NoError(t, err)

	criteria := make([]domain.RubricCriterion, o.criteria)
	for i := range criteria {
		criteria[i] = domain.NewCriterion(fmt.Sprintf("c%d", i+1), fmt.Sprintf("Criterion %d", i+1), 100/float64(o.criteria))
	}
	rubric, err := domain.NewRubric(criteria)
	require.NoError(t, err)

	a, err := domain.NewAssignment(domain.AssignmentParams{
		ID:            uuid.New(),
		Title:         "Lab report",
		Description:   "Describe the experiment",
		Instructions:  "Use the template",
		CourseID:      uuid.New(),
		InstructorID:  uuid.New(),
		Specification: spec,
		Rubric:        rubric,
		Status:        o.status,
	}, nil, created)
	require.NoError(t, err)
	return a
}

func draftFor(t *testing.T, a domain.Assignment, studentID uuid.UUID, attempt int, text string, files ...domain.FileAttachment) domain.AssignmentSubmission {
	t.Helper()
	s, err := domain.StartSubmission(uuid.New(), a.ID(), studentID, attempt, text, now.Add(-time.Hour))
	require.NoError(t, err)
	if len(files) > 0 {
		s, err = s.WithAttachments(files, now.Add(-time.Hour))
		require.NoError(t, err)
	}
	return s
}

func file(name string, sizeMB float64) domain.FileAttachment {
	return domain.FileAttachment{
		ID:         uuid.New(),
		Name:       name,
		Size:       int64(sizeMB * 1024 * 1024),
		UploadedAt: now,
	}
}

func asStudent(id uuid.UUID) context.Context {
	return ctxdata.WithUser(context.Background(), id, string(domain.UserRoleStudent))
}

func asInstructor(id uuid.UUID) context.Context {
	return ctxdata.WithUser(context.Background(), id, string(domain.UserRoleInstructor))
}

func clock() time.Time { return now }
