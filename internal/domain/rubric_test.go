package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assignment_service/internal/domain"
)

func TestNewRubric(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := domain.NewRubric(nil)
		require.Error(t, err)
	})

	t.Run("duplicate ids", func(t *testing.T) {
		_, err := domain.NewRubric([]domain.RubricCriterion{
			domain.NewCriterion("c1", "A", 10),
			domain.NewCriterion("c1", "B", 10),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate criterion id")
	})

	t.Run("invalid criterion fields", func(t *testing.T) {
		_, err := domain.NewRubric([]domain.RubricCriterion{
			{ID: "c1", Description: " ", Points: 0, Weight: -1},
		})
		require.Error(t, err)
		assert.Len(t, domain.Violations(err), 3)
	})

	t.Run("criteria are copied", func(t *testing.T) {
		criteria := []domain.RubricCriterion{domain.NewCriterion("c1", "A", 10)}
		rubric, err := domain.NewRubric(criteria)
		require.NoError(t, err)

		criteria[0].Points = 99
		rubric.Criteria()[0].Points = 77
		assert.Equal(t, 10.0, rubric.TotalPoints())
	})
}

func TestRubric_CalculateWeightedGrade(t *testing.T) {
	t.Run("equal weights", func(t *testing.T) {
		rubric := newRubric(t)
		grade := rubric.CalculateWeightedGrade(map[string]float64{"c1": 40, "c2": 45})
		assert.InDelta(t, 85.0, grade, 1e-9)
	})

	t.Run("full marks give total points", func(t *testing.T) {
		rubric, err := domain.NewRubric([]domain.RubricCriterion{
			{ID: "a", Description: "A", Points: 7, Weight: 2},
			{ID: "b", Description: "B", Points: 13, Weight: 0.5},
			{ID: "c", Description: "C", Points: 30, Weight: 1},
		})
		require.NoError(t, err)
		grade := rubric.CalculateWeightedGrade(map[string]float64{"a": 7, "b": 13, "c": 30})
		assert.InDelta(t, rubric.TotalPoints(), grade, 1e-9)
	})

	t.Run("weights shift the result", func(t *testing.T) {
		rubric, err := domain.NewRubric([]domain.RubricCriterion{
			{ID: "a", Description: "A", Points: 10, Weight: 3},
			{ID: "b", Description: "B", Points: 10, Weight: 1},
		})
		require.NoError(t, err)
		grade := rubric.CalculateWeightedGrade(map[string]float64{"a": 10, "b": 0})
		assert.InDelta(t, 15.0, grade, 1e-9)
	})

	t.Run("invalid and missing scores are skipped", func(t *testing.T) {
		rubric := newRubric(t)
		grade := rubric.CalculateWeightedGrade(map[string]float64{"c1": 25, "c2": 80})
		assert.InDelta(t, 50.0, grade, 1e-9)
	})

	t.Run("nothing scored", func(t *testing.T) {
		rubric := newRubric(t)
		assert.Equal(t, 0.0, rubric.CalculateWeightedGrade(map[string]float64{}))
	})
}

func TestRubric_ValidateScores(t *testing.T) {
	rubric := newRubric(t)

	result := rubric.ValidateScores(map[string]float64{"c1": 50, "c2": 0})
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)

	result = rubric.ValidateScores(map[string]float64{"c1": 51})
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{
		"Score for Content must be between 0 and 50",
		"Missing score for criterion: Style",
	}, result.Errors)
}

func TestRubric_DetailedBreakdown(t *testing.T) {
	rubric := newRubric(t)
	breakdown := rubric.DetailedBreakdown(map[string]float64{"c1": 40, "c2": 33})

	require.Len(t, breakdown.Criteria, 2)
	assert.Equal(t, "c1", breakdown.Criteria[0].CriterionID)
	assert.Equal(t, 80.0, breakdown.Criteria[0].Percentage)
	assert.Equal(t, 66.0, breakdown.Criteria[1].Percentage)
	assert.Equal(t, 73.0, breakdown.TotalScore)
	assert.Equal(t, 100.0, breakdown.MaxScore)
	assert.Equal(t, 73.0, breakdown.OverallPercentage)
}
