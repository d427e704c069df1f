package service

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"assignment_service/internal/domain"
)

var (
	ErrSubmissionNotAllowed = errors.New("submission is not allowed for this assignment")
	ErrSubmissionLocked     = errors.New("submission can no longer be edited")
	ErrWrongAssignment      = errors.New("submission belongs to another assignment")
)

const hoursPerDay = 24

// SubmissionDomainService runs the submission workflows over entities supplied
// by the caller.
type SubmissionDomainService struct {
	assignments *AssignmentDomainService
}

func NewSubmissionDomainService(assignments *AssignmentDomainService) *SubmissionDomainService {
	return &SubmissionDomainService{assignments: assignments}
}

// CountAttempts returns how many attempts the student already has for the
// assignment.
func CountAttempts(existing []domain.AssignmentSubmission, assignmentID, studentID uuid.UUID) int {
	count := 0
	for _, s := range existing {
		if s.AssignmentID() == assignmentID && s.StudentID() == studentID {
			count++
		}
	}
	return count
}

func (s *SubmissionDomainService) NextAttemptNumber(existing []domain.AssignmentSubmission, assignmentID, studentID uuid.UUID) int {
	return CountAttempts(existing, assignmentID, studentID) + 1
}

func (s *SubmissionDomainService) CreateSubmission(
	id uuid.UUID,
	a domain.Assignment,
	studentID uuid.UUID,
	existing []domain.AssignmentSubmission,
	text string,
	now time.Time,
) (domain.AssignmentSubmission, error) {
	count := CountAttempts(existing, a.ID(), studentID)
	if !a.CanBeSubmitted(count, now) {
		return domain.AssignmentSubmission{}, ErrSubmissionNotAllowed
	}
	return domain.StartSubmission(id, a.ID(), studentID, count+1, text, now)
}

func (s *SubmissionDomainService) UpdateContent(
	a domain.Assignment,
	sub domain.AssignmentSubmission,
	text string,
	now time.Time,
) (domain.AssignmentSubmission, error) {
	if sub.AssignmentID() != a.ID() {
		return domain.AssignmentSubmission{}, ErrWrongAssignment
	}
	if !s.CanEditDraft(a, sub, now) {
		return domain.AssignmentSubmission{}, ErrSubmissionLocked
	}
	return sub.WithContent(text, now), nil
}

// CanEditDraft reports whether an attempt that has not been handed in may
// still change. The attempt budget only limits opening attempts, so the last
// allowed attempt stays editable until its deadline.
func (s *SubmissionDomainService) CanEditDraft(a domain.Assignment, sub domain.AssignmentSubmission, now time.Time) bool {
	if sub.Status().IsFinal() {
		return false
	}
	return !a.IsOverdue(now) || a.AllowsLateSubmission()
}

// Submit validates the attempt against the assignment rules and its own
// content requirements first. A failed validation is returned as a result and
// leaves the submission unchanged.
func (s *SubmissionDomainService) Submit(
	a domain.Assignment,
	sub domain.AssignmentSubmission,
	priorAttempts int,
	now time.Time,
) (domain.AssignmentSubmission, domain.ValidationResult, error) {
	if sub.AssignmentID() != a.ID() {
		return sub, domain.ValidationResult{}, ErrWrongAssignment
	}
	var minWords *int
	if n, ok := a.Specification().WordCount(); ok {
		minWords = &n
	}
	result := domain.MergeValidationResults(
		s.assignments.ValidateSubmission(a, sub, priorAttempts, now),
		sub.MeetsRequirements(minWords),
	)
	if !result.IsValid {
		return sub, result, nil
	}
	submitted, err := sub.Submit(now)
	if err != nil {
		return sub, result, err
	}
	return submitted, result, nil
}

// GradeSubmission scores the attempt through the rubric and deducts the late
// penalty per started day past the due date.
func (s *SubmissionDomainService) GradeSubmission(
	a domain.Assignment,
	sub domain.AssignmentSubmission,
	scores map[string]float64,
	feedback string,
	gradedBy uuid.UUID,
	now time.Time,
) (domain.AssignmentSubmission, domain.GradeResult) {
	if sub.AssignmentID() != a.ID() {
		return sub, domain.GradeResult{Errors: []string{"Submission does not belong to this assignment"}}
	}
	if !sub.Status().IsFinal() || sub.Status() == domain.SubmissionStatusGraded {
		return sub, domain.GradeResult{Errors: []string{"Only submitted work can be graded"}}
	}

	result := a.CalculateGrade(scores)
	if !result.IsValid {
		return sub, result
	}

	spec := a.Specification()
	if sub.IsLate(spec.DueDate()) {
		penalty := spec.CalculateLatePenalty(DaysLate(spec.DueDate(), *sub.Metadata().SubmittedAt))
		if penalty > 0 {
			result.LatePenalty = penalty
			result.Score = domain.Round2(result.Score * (1 - penalty/100))
			result.Percentage = domain.Round2(result.Score / spec.MaxGrade() * 100)
		}
	}

	graded := sub.WithGrade(domain.Grade{
		Score:        result.Score,
		MaxScore:     spec.MaxGrade(),
		Percentage:   result.Percentage,
		LatePenalty:  result.LatePenalty,
		Feedback:     feedback,
		GradedBy:     gradedBy,
		GradedAt:     now,
		RubricScores: scores,
	}, now)
	return graded, result
}

// DaysLate counts started days between the due date and the submission time.
func DaysLate(dueDate, submittedAt time.Time) int {
	if !submittedAt.After(dueDate) {
		return 0
	}
	return int(math.Ceil(submittedAt.Sub(dueDate).Hours() / hoursPerDay))
}

// ReconcileProgress aligns progress with the submissions without merging the
// two: a handed-in attempt completes the progress and a missed deadline marks
// it overdue.
func (s *SubmissionDomainService) ReconcileProgress(
	a domain.Assignment,
	progress domain.AssignmentProgress,
	submissions []domain.AssignmentSubmission,
	now time.Time,
) domain.AssignmentProgress {
	for _, sub := range submissions {
		if sub.AssignmentID() == a.ID() && sub.StudentID() == progress.StudentID() && sub.Status().IsFinal() {
			return progress.MarkAsCompleted(now)
		}
	}
	if a.IsOverdue(now) {
		return progress.MarkAsOverdue(now)
	}
	return progress
}
