package httpapi

import (
	"time"

	"github.com/google/uuid"

	"assignment_service/internal/domain"
	"assignment_service/internal/service"
)

// Request bodies are checked for shape with validator tags. Business rules
// stay with the domain constructors.

type specificationRequest struct {
	Type                string    `json:"type" validate:"required,oneof=quiz assignment project discussion"`
	DueDate             time.Time `json:"due_date" validate:"required"`
	MaxGrade            float64   `json:"max_grade" validate:"required"`
	MaxAttempts         int       `json:"max_attempts" validate:"required"`
	TimeLimitMinutes    *int      `json:"time_limit_minutes,omitempty"`
	WordCount           *int      `json:"word_count,omitempty"`
	Priority            string    `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	AllowLateSubmission bool      `json:"allow_late_submission"`
	LatePenalty         *float64  `json:"late_penalty,omitempty"`
}

func (r specificationRequest) params() domain.SpecificationParams {
	return domain.SpecificationParams{
		Type:                domain.AssignmentType(r.Type),
		DueDate:             r.DueDate,
		MaxGrade:            r.MaxGrade,
		MaxAttempts:         r.MaxAttempts,
		TimeLimitMinutes:    r.TimeLimitMinutes,
		WordCount:           r.WordCount,
		Priority:            domain.Priority(r.Priority),
		AllowLateSubmission: r.AllowLateSubmission,
		LatePenalty:         r.LatePenalty,
	}
}

type criterionRequest struct {
	ID          string  `json:"id" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Points      float64 `json:"points"`
	Weight      float64 `json:"weight"`
}

type createAssignmentRequest struct {
	Title            string               `json:"title" validate:"required,max=200"`
	Description      string               `json:"description" validate:"required"`
	Instructions     string               `json:"instructions" validate:"required"`
	CourseID         string               `json:"course_id" validate:"required,uuid"`
	Specification    specificationRequest `json:"specification"`
	Rubric           []criterionRequest   `json:"rubric" validate:"required,min=1,dive"`
	MaxFileSizeMB    int                  `json:"max_file_size_mb" validate:"gte=0"`
	AllowedFileTypes []string             `json:"allowed_file_types" validate:"omitempty,dive,required"`
	Tags             []string             `json:"tags"`
}

func (r createAssignmentRequest) input() service.CreateAssignmentInput {
	criteria := make([]domain.RubricCriterion, len(r.Rubric))
	for i, c := range r.Rubric {
		criteria[i] = domain.NewCriterion(c.ID, c.Description, c.Points)
		if c.Weight != 0 {
			criteria[i].Weight = c.Weight
		}
	}
	return service.CreateAssignmentInput{
		Title:            r.Title,
		Description:      r.Description,
		Instructions:     r.Instructions,
		CourseID:         uuid.MustParse(r.CourseID),
		Specification:    r.Specification.params(),
		Rubric:           criteria,
		MaxFileSizeMB:    r.MaxFileSizeMB,
		AllowedFileTypes: r.AllowedFileTypes,
		Tags:             r.Tags,
	}
}

type scoresRequest struct {
	Scores   map[string]float64 `json:"scores" validate:"required"`
	Feedback string             `json:"feedback"`
}

type contentRequest struct {
	Text string `json:"text"`
}

type attachmentRequest struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url" validate:"required,url"`
	Type string `json:"type"`
	Size int64  `json:"size" validate:"gte=0"`
}

type attachmentsRequest struct {
	Files []attachmentRequest `json:"files" validate:"required,min=1,max=5,dive"`
}

func (r attachmentsRequest) files() []domain.FileAttachment {
	files := make([]domain.FileAttachment, len(r.Files))
	for i, f := range r.Files {
		files[i] = domain.FileAttachment{Name: f.Name, URL: f.URL, Type: f.Type, Size: f.Size}
	}
	return files
}

type progressRequest struct {
	Percentage       *float64 `json:"percentage,omitempty"`
	TimeSpentMinutes int      `json:"time_spent_minutes" validate:"gte=0"`
	Completed        bool     `json:"completed"`
}

type assignmentResponse struct {
	ID               uuid.UUID                  `json:"id"`
	Title            string                     `json:"title"`
	Description      string                     `json:"description"`
	Instructions     string                     `json:"instructions"`
	CourseID         uuid.UUID                  `json:"course_id"`
	InstructorID     uuid.UUID                  `json:"instructor_id"`
	Specification    domain.SpecificationParams `json:"specification"`
	Rubric           []domain.RubricCriterion   `json:"rubric"`
	Status           domain.AssignmentStatus    `json:"status"`
	Attachments      []domain.FileAttachment    `json:"attachments"`
	MaxFileSizeMB    int                        `json:"max_file_size_mb"`
	AllowedFileTypes []string                   `json:"allowed_file_types"`
	Metadata         domain.AssignmentMetadata  `json:"metadata"`
	DeadlineStatus   domain.DeadlineStatus      `json:"deadline_status"`
	UrgencyLevel     domain.UrgencyLevel        `json:"urgency_level"`
	DaysUntilDue     int                        `json:"days_until_due"`
}

func toAssignmentResponse(a domain.Assignment, now time.Time) assignmentResponse {
	return assignmentResponse{
		ID:               a.ID(),
		Title:            a.Title(),
		Description:      a.Description(),
		Instructions:     a.Instructions(),
		CourseID:         a.CourseID(),
		InstructorID:     a.InstructorID(),
		Specification:    a.Specification().Params(),
		Rubric:           a.Rubric().Criteria(),
		Status:           a.Status(),
		Attachments:      a.Attachments(),
		MaxFileSizeMB:    a.MaxFileSizeMB(),
		AllowedFileTypes: a.AllowedFileTypes(),
		Metadata:         a.Metadata(),
		DeadlineStatus:   a.DeadlineStatus(now),
		UrgencyLevel:     a.UrgencyLevel(now),
		DaysUntilDue:     a.Specification().DaysUntilDue(now),
	}
}

func toAssignmentResponses(list []domain.Assignment, now time.Time) []assignmentResponse {
	out := make([]assignmentResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAssignmentResponse(a, now))
	}
	return out
}

type contentResponse struct {
	Text         string    `json:"text"`
	WordCount    int       `json:"word_count"`
	LastModified time.Time `json:"last_modified"`
	Preview      string    `json:"preview"`
}

type submissionResponse struct {
	ID            uuid.UUID                 `json:"id"`
	AssignmentID  uuid.UUID                 `json:"assignment_id"`
	StudentID     uuid.UUID                 `json:"student_id"`
	Content       contentResponse           `json:"content"`
	Attachments   []domain.FileAttachment   `json:"attachments"`
	Status        domain.SubmissionStatus   `json:"status"`
	AttemptNumber int                       `json:"attempt_number"`
	Metadata      domain.SubmissionMetadata `json:"metadata"`
	Grade         *domain.Grade             `json:"grade,omitempty"`
}

func toSubmissionResponse(s domain.AssignmentSubmission) submissionResponse {
	content := s.Content()
	resp := submissionResponse{
		ID:           s.ID(),
		AssignmentID: s.AssignmentID(),
		StudentID:    s.StudentID(),
		Content: contentResponse{
			Text:         content.Text(),
			WordCount:    content.WordCount(),
			LastModified: content.LastModified(),
			Preview:      content.Preview(domain.DefaultPreviewLength),
		},
		Attachments:   s.Attachments(),
		Status:        s.Status(),
		AttemptNumber: s.AttemptNumber(),
		Metadata:      s.Metadata(),
	}
	if g, ok := s.Grade(); ok {
		resp.Grade = &g
	}
	return resp
}

func toSubmissionResponses(list []domain.AssignmentSubmission) []submissionResponse {
	out := make([]submissionResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toSubmissionResponse(s))
	}
	return out
}

type submitResponse struct {
	Submission submissionResponse      `json:"submission"`
	Validation domain.ValidationResult `json:"validation"`
}

type gradeResponse struct {
	Submission submissionResponse `json:"submission"`
	Result     domain.GradeResult `json:"result"`
}

type progressResponse struct {
	AssignmentID              uuid.UUID             `json:"assignment_id"`
	StudentID                 uuid.UUID             `json:"student_id"`
	Status                    domain.ProgressStatus `json:"status"`
	CompletionPercentage      float64               `json:"completion_percentage"`
	TimeSpentMinutes          int                   `json:"time_spent_minutes"`
	EstimatedRemainingMinutes int                   `json:"estimated_remaining_minutes"`
	LastAccessed              time.Time             `json:"last_accessed"`
	StartedAt                 *time.Time            `json:"started_at,omitempty"`
	CompletedAt               *time.Time            `json:"completed_at,omitempty"`
}

func toProgressResponse(p domain.AssignmentProgress) progressResponse {
	params := p.Params()
	return progressResponse{
		AssignmentID:              params.AssignmentID,
		StudentID:                 params.StudentID,
		Status:                    params.Status,
		CompletionPercentage:      params.CompletionPercentage,
		TimeSpentMinutes:          int(params.TimeSpent / time.Minute),
		EstimatedRemainingMinutes: int(p.EstimateRemainingTime() / time.Minute),
		LastAccessed:              params.LastAccessed,
		StartedAt:                 params.StartedAt,
		CompletedAt:               params.CompletedAt,
	}
}
