package domain

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/multierr"
)

type RubricCriterion struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Points      float64 `json:"points"`
	Weight      float64 `json:"weight"`
}

// NewCriterion builds a criterion with the default weight of 1.
func NewCriterion(id, description string, points float64) RubricCriterion {
	return RubricCriterion{ID: id, Description: description, Points: points, Weight: 1}
}

type Rubric struct {
	criteria []RubricCriterion
}

func NewRubric(criteria []RubricCriterion) (Rubric, error) {
	var err error
	if len(criteria) == 0 {
		return Rubric{}, invalid("rubric", "rubric must contain at least one criterion")
	}

	seen := make(map[string]struct{}, len(criteria))
	for i, c := range criteria {
		field := fmt.Sprintf("rubric.criteria[%d]", i)
		if strings.TrimSpace(c.ID) == "" {
			err = multierr.Append(err, invalid(field, "criterion id is required"))
		} else if _, dup := seen[c.ID]; dup {
			err = multierr.Append(err, invalid(field, "duplicate criterion id %q", c.ID))
		}
		seen[c.ID] = struct{}{}

		if strings.TrimSpace(c.Description) == "" {
			err = multierr.Append(err, invalid(field, "criterion description is required"))
		}
		if c.Points <= 0 {
			err = multierr.Append(err, invalid(field, "criterion points must be greater than 0"))
		}
		if c.Weight <= 0 {
			err = multierr.Append(err, invalid(field, "criterion weight must be greater than 0"))
		}
	}
	if err != nil {
		return Rubric{}, err
	}

	return Rubric{criteria: append([]RubricCriterion(nil), criteria...)}, nil
}

func (r Rubric) Criteria() []RubricCriterion {
	return append([]RubricCriterion(nil), r.criteria...)
}

func (r Rubric) Len() int { return len(r.criteria) }

func (r Rubric) TotalPoints() float64 {
	var total float64
	for _, c := range r.criteria {
		total += c.Points
	}
	return total
}

// CalculateWeightedGrade scales the weighted share of earned points to the
// rubric's total points. Missing and out-of-range scores are ignored.
func (r Rubric) CalculateWeightedGrade(scores map[string]float64) float64 {
	var weightedScore, totalWeight float64
	for _, c := range r.criteria {
		score, ok := scores[c.ID]
		if !ok || score < 0 || score > c.Points {
			continue
		}
		weightedScore += (score / c.Points) * c.Weight
		totalWeight += c.Weight
	}
	if totalWeight == 0 {
		return 0
	}
	return weightedScore / totalWeight * r.TotalPoints()
}

func (r Rubric) ValidateScores(scores map[string]float64) ValidationResult {
	var errs []string
	for _, c := range r.criteria {
		score, ok := scores[c.ID]
		if !ok {
			errs = append(errs, fmt.Sprintf("Missing score for criterion: %s", c.Description))
			continue
		}
		if score < 0 || score > c.Points {
			errs = append(errs, fmt.Sprintf("Score for %s must be between 0 and %g", c.Description, c.Points))
		}
	}
	return NewValidationResult(errs, nil)
}

type CriterionBreakdown struct {
	CriterionID string  `json:"criterion_id"`
	Score       float64 `json:"score"`
	MaxScore    float64 `json:"max_score"`
	Percentage  float64 `json:"percentage"`
	Weight      float64 `json:"weight"`
}

type GradeBreakdown struct {
	Criteria          []CriterionBreakdown `json:"criteria"`
	TotalScore        float64              `json:"total_score"`
	MaxScore          float64              `json:"max_score"`
	OverallPercentage float64              `json:"overall_percentage"`
}

func (r Rubric) DetailedBreakdown(scores map[string]float64) GradeBreakdown {
	breakdown := GradeBreakdown{
		Criteria: make([]CriterionBreakdown, 0, len(r.criteria)),
		MaxScore: r.TotalPoints(),
	}
	for _, c := range r.criteria {
		score := scores[c.ID]
		breakdown.TotalScore += score
		breakdown.Criteria = append(breakdown.Criteria, CriterionBreakdown{
			CriterionID: c.ID,
			Score:       score,
			MaxScore:    c.Points,
			Percentage:  math.Round(score / c.Points * 100),
			Weight:      c.Weight,
		})
	}
	if breakdown.MaxScore > 0 {
		breakdown.OverallPercentage = math.Round(breakdown.TotalScore / breakdown.MaxScore * 100)
	}
	return breakdown
}
