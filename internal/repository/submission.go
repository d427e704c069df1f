package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"assignment_service/internal/domain"
)

const submissionColumns = `
	id, assignment_id, student_id, content_text, word_count, content_modified_at,
	attachments, status, attempt_number, grade, started_at, submitted_at,
	graded_at, updated_at, time_spent_seconds`

type SubmissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// encodeSubmission renders the JSON columns. grade stays a nil interface for
// ungraded work so the driver writes NULL.
func encodeSubmission(s domain.AssignmentSubmission) (files string, grade interface{}, err error) {
	raw, err := json.Marshal(s.Attachments())
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode attachments: %w", err)
	}
	if g, ok := s.Grade(); ok {
		encoded, err := json.Marshal(g)
		if err != nil {
			return "", nil, fmt.Errorf("failed to encode grade: %w", err)
		}
		grade = string(encoded)
	}
	return string(raw), grade, nil
}

func (r *SubmissionRepository) Create(ctx context.Context, s domain.AssignmentSubmission) error {
	query := `
		INSERT INTO submissions (` + submissionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	files, grade, err := encodeSubmission(s)
	if err != nil {
		return err
	}
	meta := s.Metadata()
	content := s.Content()

	_, err = r.db.ExecContext(ctx, query,
		s.ID(),
		s.AssignmentID(),
		s.StudentID(),
		content.Text(),
		content.WordCount(),
		content.LastModified(),
		files,
		s.Status(),
		s.AttemptNumber(),
		grade,
		meta.StartedAt,
		meta.SubmittedAt,
		meta.GradedAt,
		meta.UpdatedAt,
		int64(meta.TimeSpent/time.Second),
	)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) Update(ctx context.Context, s domain.AssignmentSubmission) error {
	query := `
		UPDATE submissions
		SET content_text = $1, word_count = $2, content_modified_at = $3,
		    attachments = $4, status = $5, grade = $6, submitted_at = $7,
		    graded_at = $8, updated_at = $9, time_spent_seconds = $10
		WHERE id = $11
	`

	files, grade, err := encodeSubmission(s)
	if err != nil {
		return err
	}
	meta := s.Metadata()
	content := s.Content()

	result, err := r.db.ExecContext(ctx, query,
		content.Text(),
		content.WordCount(),
		content.LastModified(),
		files,
		s.Status(),
		grade,
		meta.SubmittedAt,
		meta.GradedAt,
		meta.UpdatedAt,
		int64(meta.TimeSpent/time.Second),
		s.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update submission: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.AssignmentSubmission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`

	s, err := scanSubmission(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.AssignmentSubmission{}, ErrNotFound
		}
		return domain.AssignmentSubmission{}, fmt.Errorf("failed to get submission: %w", err)
	}
	return s, nil
}

func (r *SubmissionRepository) ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]domain.AssignmentSubmission, error) {
	query := `SELECT ` + submissionColumns + `
		FROM submissions
		WHERE assignment_id = $1
		ORDER BY student_id, attempt_number`

	return r.list(ctx, query, assignmentID)
}

func (r *SubmissionRepository) ListByStudent(ctx context.Context, assignmentID, studentID uuid.UUID) ([]domain.AssignmentSubmission, error) {
	query := `SELECT ` + submissionColumns + `
		FROM submissions
		WHERE assignment_id = $1 AND student_id = $2
		ORDER BY attempt_number`

	return r.list(ctx, query, assignmentID, studentID)
}

func (r *SubmissionRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.AssignmentSubmission, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	submissions := make([]domain.AssignmentSubmission, 0)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		submissions = append(submissions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return submissions, nil
}

func scanSubmission(row rowScanner) (domain.AssignmentSubmission, error) {
	var (
		p                     domain.SubmissionParams
		text                  string
		wordCount             int
		modifiedAt            time.Time
		status                string
		filesRaw, gradeRaw    []byte
		submittedAt, gradedAt sql.NullTime
		timeSpentSeconds      int64
	)
	err := row.Scan(
		&p.ID,
		&p.AssignmentID,
		&p.StudentID,
		&text,
		&wordCount,
		&modifiedAt,
		&filesRaw,
		&status,
		&p.AttemptNumber,
		&gradeRaw,
		&p.Metadata.StartedAt,
		&submittedAt,
		&gradedAt,
		&p.Metadata.UpdatedAt,
		&timeSpentSeconds,
	)
	if err != nil {
		return domain.AssignmentSubmission{}, err
	}

	if p.Content, err = domain.NewSubmissionContent(text, wordCount, modifiedAt); err != nil {
		return domain.AssignmentSubmission{}, fmt.Errorf("stored content of %s is invalid: %w", p.ID, err)
	}
	if err := json.Unmarshal(filesRaw, &p.Attachments); err != nil {
		return domain.AssignmentSubmission{}, fmt.Errorf("failed to decode attachments: %w", err)
	}
	if gradeRaw != nil {
		var g domain.Grade
		if err := json.Unmarshal(gradeRaw, &g); err != nil {
			return domain.AssignmentSubmission{}, fmt.Errorf("failed to decode grade: %w", err)
		}
		p.Grade = &g
	}
	if submittedAt.Valid {
		p.Metadata.SubmittedAt = &submittedAt.Time
	}
	if gradedAt.Valid {
		p.Metadata.GradedAt = &gradedAt.Time
	}
	p.Metadata.TimeSpent = time.Duration(timeSpentSeconds) * time.Second
	var ok bool
	if p.Status, ok = domain.ToSubmissionStatus(status); !ok {
		return domain.AssignmentSubmission{}, fmt.Errorf("stored status of %s is unknown: %q", p.ID, status)
	}

	return domain.NewSubmission(p)
}
