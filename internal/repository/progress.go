package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"assignment_service/internal/domain"
)

const progressColumns = `
	assignment_id, student_id, status, completion_percentage, time_spent_seconds,
	last_accessed, started_at, completed_at`

type ProgressRepository struct {
	db *sql.DB
}

func NewProgressRepository(db *sql.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Save upserts the record keyed by assignment and student.
func (r *ProgressRepository) Save(ctx context.Context, p domain.AssignmentProgress) error {
	query := `
		INSERT INTO assignment_progress (` + progressColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (assignment_id, student_id) DO UPDATE
		SET status = EXCLUDED.status,
		    completion_percentage = EXCLUDED.completion_percentage,
		    time_spent_seconds = EXCLUDED.time_spent_seconds,
		    last_accessed = EXCLUDED.last_accessed,
		    started_at = EXCLUDED.started_at,
		    completed_at = EXCLUDED.completed_at
	`

	params := p.Params()
	_, err := r.db.ExecContext(ctx, query,
		params.AssignmentID,
		params.StudentID,
		params.Status,
		params.CompletionPercentage,
		int64(params.TimeSpent/time.Second),
		params.LastAccessed,
		params.StartedAt,
		params.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

func (r *ProgressRepository) Get(ctx context.Context, assignmentID, studentID uuid.UUID) (domain.AssignmentProgress, error) {
	query := `SELECT ` + progressColumns + `
		FROM assignment_progress
		WHERE assignment_id = $1 AND student_id = $2`

	p, err := scanProgress(r.db.QueryRowContext(ctx, query, assignmentID, studentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.AssignmentProgress{}, ErrNotFound
		}
		return domain.AssignmentProgress{}, fmt.Errorf("failed to get progress: %w", err)
	}
	return p, nil
}

func (r *ProgressRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]domain.AssignmentProgress, error) {
	query := `SELECT ` + progressColumns + `
		FROM assignment_progress
		WHERE student_id = $1
		ORDER BY last_accessed DESC`

	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]domain.AssignmentProgress, 0)
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		records = append(records, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return records, nil
}

func scanProgress(row rowScanner) (domain.AssignmentProgress, error) {
	var (
		p                      domain.ProgressParams
		status                 string
		timeSpentSeconds       int64
		startedAt, completedAt sql.NullTime
	)
	err := row.Scan(
		&p.AssignmentID,
		&p.StudentID,
		&status,
		&p.CompletionPercentage,
		&timeSpentSeconds,
		&p.LastAccessed,
		&startedAt,
		&completedAt,
	)
	if err != nil {
		return domain.AssignmentProgress{}, err
	}

	p.Status = domain.ProgressStatus(status)
	p.TimeSpent = time.Duration(timeSpentSeconds) * time.Second
	if startedAt.Valid {
		p.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		p.CompletedAt = &completedAt.Time
	}
	return domain.NewProgress(p)
}
