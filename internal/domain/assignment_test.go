package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assignment_service/internal/domain"
)

func TestNewAssignment(t *testing.T) {
	spec := newSpec(t, baseTime.Add(72*time.Hour), nil)

	t.Run("defaults", func(t *testing.T) {
		a := newAssignment(t, spec, "")
		assert.Equal(t, domain.AssignmentStatusDraft, a.Status())
		assert.Equal(t, domain.DefaultMaxFileSizeMB, a.MaxFileSizeMB())
		assert.True(t, a.IsFileTypeAllowed(".PDF"))
		assert.Equal(t, 1, a.Metadata().Version)
		assert.True(t, a.Metadata().IsActive)
		assert.Equal(t, a.InstructorID(), a.Metadata().CreatedBy)
	})

	t.Run("required text fields", func(t *testing.T) {
		_, err := domain.NewAssignment(domain.AssignmentParams{
			Title:         "",
			Description:   " ",
			Instructions:  "",
			Specification: spec,
			Rubric:        newRubric(t),
		}, nil, baseTime)
		require.Error(t, err)
		assert.Len(t, domain.Violations(err), 3)
	})

	t.Run("attachment limit", func(t *testing.T) {
		files := make([]domain.FileAttachment, domain.MaxAssignmentAttachments+1)
		_, err := domain.NewAssignment(domain.AssignmentParams{
			Title:         "T",
			Description:   "D",
			Instructions:  "I",
			Specification: spec,
			Rubric:        newRubric(t),
			Attachments:   files,
		}, nil, baseTime)
		require.Error(t, err)
		assert.Equal(t, "attachments", domain.Violations(err)[0].Field)
	})

	t.Run("missing specification and rubric", func(t *testing.T) {
		_, err := domain.NewAssignment(domain.AssignmentParams{
			Title:        "T",
			Description:  "D",
			Instructions: "I",
		}, nil, baseTime)
		require.Error(t, err)
		assert.Len(t, domain.Violations(err), 2)
	})
}

func TestAssignment_DeadlineStatus(t *testing.T) {
	due := baseTime.Add(10 * 24 * time.Hour)
	a := newAssignment(t, newSpec(t, due, nil), domain.AssignmentStatusPublished)

	assert.Equal(t, domain.DeadlineUpcoming, a.DeadlineStatus(baseTime))
	assert.Equal(t, domain.DeadlineDueSoon, a.DeadlineStatus(due.Add(-72*time.Hour)))
	assert.Equal(t, domain.DeadlineOverdue, a.DeadlineStatus(due.Add(time.Minute)))
	assert.Equal(t, domain.UrgencyLow, a.UrgencyLevel(baseTime))
}

func TestAssignment_CanBeSubmitted(t *testing.T) {
	due := baseTime.Add(48 * time.Hour)
	spec := newSpec(t, due, nil)
	lateSpec := newSpec(t, due, func(p *domain.SpecificationParams) { p.AllowLateSubmission = true })

	tests := []struct {
		name   string
		a      domain.Assignment
		count  int
		now    time.Time
		expect bool
	}{
		{"published with attempts left", newAssignment(t, spec, domain.AssignmentStatusPublished), 1, baseTime, true},
		{"draft", newAssignment(t, spec, domain.AssignmentStatusDraft), 0, baseTime, false},
		{"archived", newAssignment(t, spec, domain.AssignmentStatusArchived), 0, baseTime, false},
		{"attempts exhausted", newAssignment(t, spec, domain.AssignmentStatusPublished), 2, baseTime, false},
		{"overdue without late policy", newAssignment(t, spec, domain.AssignmentStatusPublished), 0, due.Add(time.Hour), false},
		{"overdue with late policy", newAssignment(t, lateSpec, domain.AssignmentStatusPublished), 0, due.Add(time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.a.CanBeSubmitted(tt.count, tt.now))
		})
	}
}

func TestAssignment_CalculateGrade(t *testing.T) {
	a := newAssignment(t, newSpec(t, baseTime.Add(time.Hour), nil), domain.AssignmentStatusPublished)

	t.Run("valid scores", func(t *testing.T) {
		result := a.CalculateGrade(map[string]float64{"c1": 40, "c2": 45})
		require.True(t, result.IsValid)
		assert.Equal(t, 85.0, result.Score)
		assert.Equal(t, 85.0, result.Percentage)
		require.NotNil(t, result.Breakdown)
		assert.Equal(t, 85.0, result.Breakdown.OverallPercentage)
	})

	t.Run("rounds to two decimals", func(t *testing.T) {
		result := a.CalculateGrade(map[string]float64{"c1": 33.333, "c2": 0})
		require.True(t, result.IsValid)
		assert.Equal(t, 33.33, result.Score)
	})

	t.Run("invalid scores", func(t *testing.T) {
		result := a.CalculateGrade(map[string]float64{"c1": 40})
		assert.False(t, result.IsValid)
		assert.Zero(t, result.Score)
		assert.Zero(t, result.Percentage)
		assert.Nil(t, result.Breakdown)
		assert.NotEmpty(t, result.Errors)
	})
}

func TestAssignment_WithStatusIsCopyOnWrite(t *testing.T) {
	a := newAssignment(t, newSpec(t, baseTime.Add(time.Hour), nil), domain.AssignmentStatusDraft)

	later := baseTime.Add(time.Minute)
	published := a.WithStatus(domain.AssignmentStatusPublished, later)
	again := published.WithStatus(domain.AssignmentStatusPublished, later.Add(time.Minute))

	assert.Equal(t, domain.AssignmentStatusDraft, a.Status())
	assert.Equal(t, baseTime, a.Metadata().UpdatedAt)

	assert.Equal(t, domain.AssignmentStatusPublished, again.Status())
	assert.Equal(t, a.ID(), again.ID())
	assert.NotEqual(t, uuid.Nil, again.ID())
	assert.Equal(t, later.Add(time.Minute), again.Metadata().UpdatedAt)
	assert.Equal(t, a.Metadata().Version, again.Metadata().Version)
	assert.Equal(t, a.Metadata().CreatedAt, again.Metadata().CreatedAt)
}

func TestAssignment_WithSpecification(t *testing.T) {
	a := newAssignment(t, newSpec(t, baseTime.Add(time.Hour), nil), domain.AssignmentStatusDraft)
	spec := newSpec(t, baseTime.Add(240*time.Hour), func(p *domain.SpecificationParams) { p.MaxAttempts = 4 })

	updated := a.WithSpecification(spec, baseTime.Add(time.Second))
	assert.Equal(t, 4, updated.Specification().MaxAttempts())
	assert.Equal(t, 2, a.Specification().MaxAttempts())
	assert.True(t, updated.Metadata().UpdatedAt.After(a.Metadata().UpdatedAt))
}
