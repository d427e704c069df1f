package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"assignment_service/internal/domain"
)

var baseTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func newSpec(t *testing.T, due time.Time, modify func(p *domain.SpecificationParams)) domain.Specification {
	t.Helper()
	p := domain.SpecificationParams{
		Type:        domain.AssignmentTypeAssignment,
		DueDate:     due,
		MaxGrade:    100,
		MaxAttempts: 2,
		Priority:    domain.PriorityMedium,
	}
	if modify != nil {
		modify(&p)
	}
	spec, err := domain.NewSpecification(p, baseTime)
	require.NoError(t, err)
	return spec
}

func newRubric(t *testing.T) domain.Rubric {
	t.Helper()
	rubric, err := domain.NewRubric([]domain.RubricCriterion{
		domain.NewCriterion("c1", "Content", 50),
		domain.NewCriterion("c2", "Style", 50),
	})
	require.NoError(t, err)
	return rubric
}

func newAssignment(t *testing.T, spec domain.Specification, status domain.AssignmentStatus) domain.Assignment {
	t.Helper()
	a, err := domain.NewAssignment(domain.AssignmentParams{
		ID:            uuid.New(),
		Title:         "Essay",
		Description:   "Write an essay",
		Instructions:  "At least one page",
		CourseID:      uuid.New(),
		InstructorID:  uuid.New(),
		Specification: spec,
		Rubric:        newRubric(t),
		Status:        status,
	}, []string{"writing"}, baseTime)
	require.NoError(t, err)
	return a
}
