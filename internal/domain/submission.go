package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

const (
	MaxSubmissionAttachments = 5
	DefaultPreviewLength     = 100
)

// CountWords counts whitespace-delimited tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

type SubmissionContent struct {
	text         string
	wordCount    int
	lastModified time.Time
}

// NewSubmissionContent rejects a word count that disagrees with a recount of
// text.
func NewSubmissionContent(text string, wordCount int, lastModified time.Time) (SubmissionContent, error) {
	if actual := CountWords(text); actual != wordCount {
		return SubmissionContent{}, invalid("content.word_count", "word count %d does not match text (%d words)", wordCount, actual)
	}
	return SubmissionContent{text: text, wordCount: wordCount, lastModified: lastModified}, nil
}

func ContentFromText(text string, now time.Time) SubmissionContent {
	return SubmissionContent{text: text, wordCount: CountWords(text), lastModified: now}
}

func (c SubmissionContent) Text() string { return c.text }
func (c SubmissionContent) WordCount() int { return c.wordCount }
func (c SubmissionContent) LastModified() time.Time { return c.lastModified }

func (c SubmissionContent) IsEmpty() bool { return strings.TrimSpace(c.text) == "" }

func (c SubmissionContent) MeetsWordRequirement(minWords int) bool {
	return c.wordCount >= minWords
}

// Preview truncates the text to maxLen characters and marks the cut with "...".
func (c SubmissionContent) Preview(maxLen int) string {
	runes := []rune(c.text)
	if maxLen < 0 || len(runes) <= maxLen {
		return c.text
	}
	return string(runes[:maxLen]) + "..."
}

func (c SubmissionContent) WithText(text string, now time.Time) SubmissionContent {
	return ContentFromText(text, now)
}

type Grade struct {
	Score        float64            `json:"score"`
	MaxScore     float64            `json:"max_score"`
	Percentage   float64            `json:"percentage"`
	LatePenalty  float64            `json:"late_penalty"`
	Feedback     string             `json:"feedback"`
	GradedBy     uuid.UUID          `json:"graded_by"`
	GradedAt     time.Time          `json:"graded_at"`
	RubricScores map[string]float64 `json:"rubric_scores"`
}

func (g Grade) clone() Grade {
	scores := make(map[string]float64, len(g.RubricScores))
	for k, v := range g.RubricScores {
		scores[k] = v
	}
	g.RubricScores = scores
	return g
}

type SubmissionMetadata struct {
	StartedAt   time.Time     `json:"started_at"`
	SubmittedAt *time.Time    `json:"submitted_at,omitempty"`
	GradedAt    *time.Time    `json:"graded_at,omitempty"`
	UpdatedAt   time.Time     `json:"updated_at"`
	TimeSpent   time.Duration `json:"time_spent"`
}

type SubmissionParams struct {
	ID            uuid.UUID
	AssignmentID  uuid.UUID
	StudentID     uuid.UUID
	Content       SubmissionContent
	Attachments   []FileAttachment
	Status        SubmissionStatus
	AttemptNumber int
	Metadata      SubmissionMetadata
	Grade         *Grade
}

type AssignmentSubmission struct {
	id            uuid.UUID
	assignmentID  uuid.UUID
	studentID     uuid.UUID
	content       SubmissionContent
	attachments   []FileAttachment
	status        SubmissionStatus
	attemptNumber int
	meta          SubmissionMetadata
	grade         *Grade
}

func NewSubmission(p SubmissionParams) (AssignmentSubmission, error) {
	var err error
	if p.AttemptNumber < 1 {
		err = multierr.Append(err, invalid("attempt_number", "attempt number must be at least 1"))
	}
	if len(p.Attachments) > MaxSubmissionAttachments {
		err = multierr.Append(err, invalid("attachments", "at most %d attachments are allowed", MaxSubmissionAttachments))
	}
	if p.Status == "" {
		p.Status = SubmissionStatusDraft
	}
	if !p.Status.IsValid() {
		err = multierr.Append(err, invalid("status", "unknown status %q", p.Status))
	}
	if p.Grade != nil && p.Status != SubmissionStatusGraded {
		err = multierr.Append(err, invalid("grade", "grade is only allowed on graded submissions"))
	}
	if p.Metadata.TimeSpent < 0 {
		err = multierr.Append(err, invalid("time_spent", "time spent cannot be negative"))
	}
	if err != nil {
		return AssignmentSubmission{}, err
	}

	s := AssignmentSubmission{
		id:            p.ID,
		assignmentID:  p.AssignmentID,
		studentID:     p.StudentID,
		content:       p.Content,
		attachments:   cloneAttachments(p.Attachments),
		status:        p.Status,
		attemptNumber: p.AttemptNumber,
		meta:          cloneSubmissionMeta(p.Metadata),
	}
	if p.Grade != nil {
		g := p.Grade.clone()
		s.grade = &g
	}
	return s, nil
}

// StartSubmission opens a draft attempt.
func StartSubmission(id, assignmentID, studentID uuid.UUID, attempt int, text string, now time.Time) (AssignmentSubmission, error) {
	return NewSubmission(SubmissionParams{
		ID:            id,
		AssignmentID:  assignmentID,
		StudentID:     studentID,
		Content:       ContentFromText(text, now),
		Status:        SubmissionStatusDraft,
		AttemptNumber: attempt,
		Metadata: SubmissionMetadata{
			StartedAt: now,
			UpdatedAt: now,
		},
	})
}

func cloneSubmissionMeta(m SubmissionMetadata) SubmissionMetadata {
	if m.SubmittedAt != nil {
		t := *m.SubmittedAt
		m.SubmittedAt = &t
	}
	if m.GradedAt != nil {
		t := *m.GradedAt
		m.GradedAt = &t
	}
	return m
}

func (s AssignmentSubmission) ID() uuid.UUID { return s.id }
func (s AssignmentSubmission) AssignmentID() uuid.UUID { return s.assignmentID }
func (s AssignmentSubmission) StudentID() uuid.UUID { return s.studentID }
func (s AssignmentSubmission) Content() SubmissionContent { return s.content }
func (s AssignmentSubmission) Status() SubmissionStatus { return s.status }
func (s AssignmentSubmission) AttemptNumber() int { return s.attemptNumber }
func (s AssignmentSubmission) Attachments() []FileAttachment { return cloneAttachments(s.attachments) }
func (s AssignmentSubmission) Metadata() SubmissionMetadata { return cloneSubmissionMeta(s.meta) }

func (s AssignmentSubmission) Grade() (Grade, bool) {
	if s.grade == nil {
		return Grade{}, false
	}
	return s.grade.clone(), true
}

// IsLate is false until the submission has been handed in.
func (s AssignmentSubmission) IsLate(dueDate time.Time) bool {
	if s.meta.SubmittedAt == nil {
		return false
	}
	return s.meta.SubmittedAt.After(dueDate)
}

func (s AssignmentSubmission) CanBeEdited(now, dueDate time.Time, maxAttempts int) bool {
	if s.status == SubmissionStatusSubmitted || s.status == SubmissionStatusGraded {
		return false
	}
	if s.attemptNumber >= maxAttempts {
		return false
	}
	return !now.After(dueDate)
}

func (s AssignmentSubmission) MeetsRequirements(minWordCount *int) ValidationResult {
	var errs, warnings []string
	if minWordCount != nil && !s.content.MeetsWordRequirement(*minWordCount) {
		errs = append(errs, fmt.Sprintf("Submission must contain at least %d words (currently %d)", *minWordCount, s.content.WordCount()))
	}
	if s.content.IsEmpty() {
		errs = append(errs, "Submission content cannot be empty")
	}
	if len(s.attachments) == 0 {
		warnings = append(warnings, "No files attached")
	}
	return NewValidationResult(errs, warnings)
}

func (s AssignmentSubmission) Submit(now time.Time) (AssignmentSubmission, error) {
	if s.status.IsFinal() {
		return AssignmentSubmission{}, ErrAlreadySubmitted
	}
	s.status = SubmissionStatusSubmitted
	s.meta = cloneSubmissionMeta(s.meta)
	s.meta.SubmittedAt = &now
	s.meta.UpdatedAt = now
	return s, nil
}

// WithGrade always moves the submission to graded.
func (s AssignmentSubmission) WithGrade(grade Grade, now time.Time) AssignmentSubmission {
	g := grade.clone()
	s.grade = &g
	s.status = SubmissionStatusGraded
	s.meta = cloneSubmissionMeta(s.meta)
	s.meta.GradedAt = &now
	s.meta.UpdatedAt = now
	return s
}

func (s AssignmentSubmission) WithContent(text string, now time.Time) AssignmentSubmission {
	s.content = s.content.WithText(text, now)
	s.meta.UpdatedAt = now
	return s
}

func (s AssignmentSubmission) WithAttachments(files []FileAttachment, now time.Time) (AssignmentSubmission, error) {
	if len(files) > MaxSubmissionAttachments {
		return AssignmentSubmission{}, fmt.Errorf("%w: at most %d allowed", ErrTooManyFiles, MaxSubmissionAttachments)
	}
	s.attachments = cloneAttachments(files)
	s.meta.UpdatedAt = now
	return s, nil
}

func (s AssignmentSubmission) WithTimeSpent(extra time.Duration, now time.Time) AssignmentSubmission {
	if extra > 0 {
		s.meta.TimeSpent += extra
	}
	s.meta.UpdatedAt = now
	return s
}

// WithStatus sets statuses driven from outside the entity, such as late or
// returned. Graded is reachable only through WithGrade.
func (s AssignmentSubmission) WithStatus(status SubmissionStatus, now time.Time) (AssignmentSubmission, error) {
	if !status.IsValid() {
		return AssignmentSubmission{}, invalid("status", "unknown status %q", status)
	}
	if status == SubmissionStatusGraded && s.grade == nil {
		return AssignmentSubmission{}, invalid("status", "graded status requires a grade")
	}
	if status != SubmissionStatusGraded {
		s.grade = nil
	}
	s.status = status
	s.meta.UpdatedAt = now
	return s, nil
}
