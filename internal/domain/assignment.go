package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

const (
	MaxAssignmentAttachments = 10
	DefaultMaxFileSizeMB     = 10
)

var DefaultAllowedFileTypes = []string{"pdf", "doc", "docx", "txt", "jpg", "jpeg", "png", "zip"}

type AssignmentMetadata struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy uuid.UUID `json:"created_by"`
	Version   int       `json:"version"`
	Tags      []string  `json:"tags"`
	IsActive  bool      `json:"is_active"`
}

type AssignmentParams struct {
	ID               uuid.UUID
	Title            string
	Description      string
	Instructions     string
	CourseID         uuid.UUID
	InstructorID     uuid.UUID
	Specification    Specification
	Rubric           Rubric
	Status           AssignmentStatus
	Attachments      []FileAttachment
	MaxFileSizeMB    int
	AllowedFileTypes []string
}

type Assignment struct {
	id               uuid.UUID
	title            string
	description      string
	instructions     string
	courseID         uuid.UUID
	instructorID     uuid.UUID
	spec             Specification
	rubric           Rubric
	status           AssignmentStatus
	attachments      []FileAttachment
	maxFileSizeMB    int
	allowedFileTypes []string
	meta             AssignmentMetadata
}

// NewAssignment creates a fresh assignment owned by its instructor. An empty
// status defaults to draft.
func NewAssignment(p AssignmentParams, tags []string, now time.Time) (Assignment, error) {
	return RestoreAssignment(p, AssignmentMetadata{
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: p.InstructorID,
		Version:   1,
		Tags:      tags,
		IsActive:  true,
	})
}

func RestoreAssignment(p AssignmentParams, meta AssignmentMetadata) (Assignment, error) {
	var err error
	if strings.TrimSpace(p.Title) == "" {
		err = multierr.Append(err, invalid("title", "title is required"))
	}
	if strings.TrimSpace(p.Description) == "" {
		err = multierr.Append(err, invalid("description", "description is required"))
	}
	if strings.TrimSpace(p.Instructions) == "" {
		err = multierr.Append(err, invalid("instructions", "instructions are required"))
	}
	if len(p.Attachments) > MaxAssignmentAttachments {
		err = multierr.Append(err, invalid("attachments", "at most %d attachments are allowed", MaxAssignmentAttachments))
	}
	if p.Specification.IsZero() {
		err = multierr.Append(err, invalid("specification", "specification is required"))
	}
	if p.Rubric.Len() == 0 {
		err = multierr.Append(err, invalid("rubric", "rubric is required"))
	}
	if p.Status == "" {
		p.Status = AssignmentStatusDraft
	}
	if !p.Status.IsValid() {
		err = multierr.Append(err, invalid("status", "unknown status %q", p.Status))
	}
	if p.MaxFileSizeMB < 0 {
		err = multierr.Append(err, invalid("max_file_size_mb", "max file size cannot be negative"))
	}
	if err != nil {
		return Assignment{}, err
	}

	if p.MaxFileSizeMB == 0 {
		p.MaxFileSizeMB = DefaultMaxFileSizeMB
	}
	fileTypes := make([]string, 0, len(p.AllowedFileTypes))
	for _, ft := range p.AllowedFileTypes {
		fileTypes = append(fileTypes, strings.ToLower(strings.TrimPrefix(ft, ".")))
	}
	if len(fileTypes) == 0 {
		fileTypes = append(fileTypes, DefaultAllowedFileTypes...)
	}
	meta.Tags = append([]string{}, meta.Tags...)

	return Assignment{
		id:               p.ID,
		title:            p.Title,
		description:      p.Description,
		instructions:     p.Instructions,
		courseID:         p.CourseID,
		instructorID:     p.InstructorID,
		spec:             p.Specification,
		rubric:           p.Rubric,
		status:           p.Status,
		attachments:      cloneAttachments(p.Attachments),
		maxFileSizeMB:    p.MaxFileSizeMB,
		allowedFileTypes: fileTypes,
		meta:             meta,
	}, nil
}

func (a Assignment) ID() uuid.UUID { return a.id }
func (a Assignment) Title() string { return a.title }
func (a Assignment) Description() string { return a.description }
func (a Assignment) Instructions() string { return a.instructions }
func (a Assignment) CourseID() uuid.UUID { return a.courseID }
func (a Assignment) InstructorID() uuid.UUID { return a.instructorID }
func (a Assignment) Specification() Specification { return a.spec }
func (a Assignment) Rubric() Rubric { return a.rubric }
func (a Assignment) Status() AssignmentStatus { return a.status }
func (a Assignment) MaxFileSizeMB() int { return a.maxFileSizeMB }
func (a Assignment) Attachments() []FileAttachment { return cloneAttachments(a.attachments) }
func (a Assignment) AllowedFileTypes() []string { return append([]string(nil), a.allowedFileTypes...) }

func (a Assignment) Metadata() AssignmentMetadata {
	m := a.meta
	m.Tags = append([]string{}, a.meta.Tags...)
	return m
}

func (a Assignment) IsFileTypeAllowed(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, ft := range a.allowedFileTypes {
		if ft == ext {
			return true
		}
	}
	return false
}

func (a Assignment) IsOverdue(now time.Time) bool { return a.spec.IsOverdue(now) }

func (a Assignment) IsDueSoon(now time.Time) bool {
	return a.spec.IsDueSoon(DefaultDueSoonDays, now)
}

func (a Assignment) UrgencyLevel(now time.Time) UrgencyLevel { return a.spec.UrgencyLevel(now) }

func (a Assignment) DeadlineStatus(now time.Time) DeadlineStatus {
	switch {
	case a.IsOverdue(now):
		return DeadlineOverdue
	case a.IsDueSoon(now):
		return DeadlineDueSoon
	default:
		return DeadlineUpcoming
	}
}

func (a Assignment) AllowsLateSubmission() bool { return a.spec.AllowsLateSubmission() }

func (a Assignment) CanBeSubmitted(submissionCount int, now time.Time) bool {
	if a.status != AssignmentStatusPublished {
		return false
	}
	if submissionCount >= a.spec.MaxAttempts() {
		return false
	}
	return !a.IsOverdue(now) || a.AllowsLateSubmission()
}

type GradeResult struct {
	Score       float64         `json:"score"`
	Percentage  float64         `json:"percentage"`
	LatePenalty float64         `json:"late_penalty,omitempty"`
	Breakdown   *GradeBreakdown `json:"breakdown,omitempty"`
	IsValid     bool            `json:"is_valid"`
	Errors      []string        `json:"errors,omitempty"`
}

func (a Assignment) CalculateGrade(scores map[string]float64) GradeResult {
	validation := a.rubric.ValidateScores(scores)
	if !validation.IsValid {
		return GradeResult{IsValid: false, Errors: validation.Errors}
	}

	score := Round2(a.rubric.CalculateWeightedGrade(scores))
	breakdown := a.rubric.DetailedBreakdown(scores)
	return GradeResult{
		Score:      score,
		Percentage: Round2(score / a.spec.MaxGrade() * 100),
		Breakdown:  &breakdown,
		IsValid:    true,
	}
}

// WithStatus returns a copy with the new status. Only UpdatedAt changes in the
// metadata; the version is advanced by the store on save.
func (a Assignment) WithStatus(status AssignmentStatus, now time.Time) Assignment {
	a.status = status
	a.meta.UpdatedAt = now
	return a
}

func (a Assignment) WithSpecification(spec Specification, now time.Time) Assignment {
	a.spec = spec
	a.meta.UpdatedAt = now
	return a
}

func (a Assignment) WithVersion(version int) Assignment {
	a.meta.Version = version
	return a
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
