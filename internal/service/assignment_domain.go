package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"assignment_service/internal/domain"
)

var baseStudyMinutes = map[domain.AssignmentType]float64{
	domain.AssignmentTypeQuiz:       45,
	domain.AssignmentTypeAssignment: 120,
	domain.AssignmentTypeProject:    300,
	domain.AssignmentTypeDiscussion: 30,
}

const (
	complexRubricCriteria   = 5
	complexRubricMultiplier = 1.3
	timeLimitShare          = 0.8
	lowPriorityDays         = 7
)

type Recommendation struct {
	AssignmentID uuid.UUID       `json:"assignment_id"`
	Title        string          `json:"title"`
	Priority     domain.Priority `json:"priority"`
	Reason       string          `json:"reason"`
	DueDate      time.Time       `json:"due_date"`
	DaysUntilDue int             `json:"days_until_due"`
}

type StudyTimeEstimate struct {
	TotalMinutes       int `json:"total_minutes"`
	PreparationMinutes int `json:"preparation_minutes"`
	WorkMinutes        int `json:"work_minutes"`
	ReviewMinutes      int `json:"review_minutes"`
}

type DeadlineSummary struct {
	Overdue  int `json:"overdue"`
	DueSoon  int `json:"due_soon"`
	Upcoming int `json:"upcoming"`
}

// AssignmentDomainService holds the stateless assignment rules shared by the
// application services. It performs no I/O.
type AssignmentDomainService struct{}

func NewAssignmentDomainService() *AssignmentDomainService {
	return &AssignmentDomainService{}
}

// CalculateAssignmentPriority evaluates its rules top to bottom; the first match
// wins. A nil progress means the student has not started.
func (s *AssignmentDomainService) CalculateAssignmentPriority(a domain.Assignment, progress *domain.AssignmentProgress, now time.Time) domain.Priority {
	notStarted := progress == nil || progress.Status() == domain.ProgressNotStarted
	inProgress := progress != nil && progress.Status() == domain.ProgressInProgress

	switch {
	case a.IsDueSoon(now) && notStarted, a.IsOverdue(now):
		return domain.PriorityUrgent
	case inProgress:
		return domain.PriorityHigh
	case a.Specification().DaysUntilDue(now) > lowPriorityDays:
		return domain.PriorityLow
	default:
		return domain.PriorityMedium
	}
}

func (s *AssignmentDomainService) GenerateRecommendations(
	assignments []domain.Assignment,
	progress map[uuid.UUID]domain.AssignmentProgress,
	now time.Time,
) []Recommendation {
	recs := make([]Recommendation, 0)
	for _, a := range assignments {
		var p *domain.AssignmentProgress
		if found, ok := progress[a.ID()]; ok {
			p = &found
		}

		priority := s.CalculateAssignmentPriority(a, p, now)
		if priority != domain.PriorityUrgent && priority != domain.PriorityHigh {
			continue
		}

		recs = append(recs, Recommendation{
			AssignmentID: a.ID(),
			Title:        a.Title(),
			Priority:     priority,
			Reason:       recommendationReason(a, p, now),
			DueDate:      a.Specification().DueDate(),
			DaysUntilDue: a.Specification().DaysUntilDue(now),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Priority.Rank() != recs[j].Priority.Rank() {
			return recs[i].Priority.Rank() > recs[j].Priority.Rank()
		}
		return recs[i].DueDate.Before(recs[j].DueDate)
	})
	return recs
}

func recommendationReason(a domain.Assignment, p *domain.AssignmentProgress, now time.Time) string {
	switch {
	case a.IsOverdue(now):
		return "This assignment is overdue"
	case a.IsDueSoon(now):
		days := a.Specification().DaysUntilDue(now)
		if days <= 0 {
			return "Due today"
		}
		if days == 1 {
			return "Due in 1 day"
		}
		return fmt.Sprintf("Due in %d days", days)
	case p != nil && p.Status() == domain.ProgressInProgress:
		return "Continue where you left off"
	default:
		return "Needs your attention"
	}
}

// ValidateSubmission collects every rule the submission breaks instead of
// stopping at the first one.
func (s *AssignmentDomainService) ValidateSubmission(
	a domain.Assignment,
	submission domain.AssignmentSubmission,
	submissionCount int,
	now time.Time,
) domain.ValidationResult {
	var errs, warnings []string
	spec := a.Specification()

	if a.Status() != domain.AssignmentStatusPublished {
		errs = append(errs, "Assignment is not published")
	}
	if !a.CanBeSubmitted(submissionCount, now) {
		errs = append(errs, cannotSubmitReason(a, submissionCount, now))
	}

	if minWords, ok := spec.WordCount(); ok && !submission.Content().MeetsWordRequirement(minWords) {
		errs = append(errs, fmt.Sprintf("Submission must contain at least %d words (currently %d)",
			minWords, submission.Content().WordCount()))
	}

	files := submission.Attachments()
	for _, f := range files {
		if f.ExceedsSize(a.MaxFileSizeMB()) {
			errs = append(errs, fmt.Sprintf("File %s exceeds the maximum size of %d MB", f.Name, a.MaxFileSizeMB()))
		}
		if !a.IsFileTypeAllowed(f.Extension()) {
			errs = append(errs, fmt.Sprintf("File type of %s is not allowed", f.Name))
		}
	}
	if len(files) == 0 {
		warnings = append(warnings, "No files attached")
	}

	return domain.NewValidationResult(errs, warnings)
}

func cannotSubmitReason(a domain.Assignment, submissionCount int, now time.Time) string {
	spec := a.Specification()
	switch {
	case submissionCount >= spec.MaxAttempts():
		return fmt.Sprintf("Maximum number of attempts (%d) reached", spec.MaxAttempts())
	case a.IsOverdue(now) && !a.AllowsLateSubmission():
		return "The deadline has passed and late submissions are not allowed"
	default:
		return "Submissions are not accepted for this assignment"
	}
}

func (s *AssignmentDomainService) EstimateStudyTime(a domain.Assignment) StudyTimeEstimate {
	spec := a.Specification()
	total := baseStudyMinutes[spec.Type()]
	if a.Rubric().Len() > complexRubricCriteria {
		total *= complexRubricMultiplier
	}
	if limit, ok := spec.TimeLimitMinutes(); ok {
		total = math.Max(total, float64(limit)*timeLimitShare)
	}

	return StudyTimeEstimate{
		TotalMinutes:       int(math.Round(total)),
		PreparationMinutes: int(math.Round(total * 0.2)),
		WorkMinutes:        int(math.Round(total * 0.7)),
		ReviewMinutes:      int(math.Round(total * 0.1)),
	}
}

func (s *AssignmentDomainService) DeadlineSummary(assignments []domain.Assignment, now time.Time) DeadlineSummary {
	var summary DeadlineSummary
	for _, a := range assignments {
		switch a.DeadlineStatus(now) {
		case domain.DeadlineOverdue:
			summary.Overdue++
		case domain.DeadlineDueSoon:
			summary.DueSoon++
		default:
			summary.Upcoming++
		}
	}
	return summary
}
