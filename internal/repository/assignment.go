package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"assignment_service/internal/domain"
)

const assignmentColumns = `
	id, title, description, instructions, course_id, instructor_id,
	specification, rubric, status, attachments, max_file_size_mb,
	allowed_file_types, tags, is_active, created_by, version, created_at, updated_at`

type AssignmentRepository struct {
	db *sql.DB
}

func NewAssignmentRepository(db *sql.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

type assignmentDocs struct {
	spec        string
	rubric      string
	attachments string
}

func encodeAssignment(a domain.Assignment) (assignmentDocs, error) {
	spec, err := json.Marshal(a.Specification().Params())
	if err != nil {
		return assignmentDocs{}, fmt.Errorf("failed to encode specification: %w", err)
	}
	rubric, err := json.Marshal(a.Rubric().Criteria())
	if err != nil {
		return assignmentDocs{}, fmt.Errorf("failed to encode rubric: %w", err)
	}
	attachments, err := json.Marshal(a.Attachments())
	if err != nil {
		return assignmentDocs{}, fmt.Errorf("failed to encode attachments: %w", err)
	}
	return assignmentDocs{spec: string(spec), rubric: string(rubric), attachments: string(attachments)}, nil
}

func (r *AssignmentRepository) Create(ctx context.Context, a domain.Assignment) error {
	query := `
		INSERT INTO assignments (` + assignmentColumns + `, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	docs, err := encodeAssignment(a)
	if err != nil {
		return err
	}
	meta := a.Metadata()

	_, err = r.db.ExecContext(ctx, query,
		a.ID(),
		a.Title(),
		a.Description(),
		a.Instructions(),
		a.CourseID(),
		a.InstructorID(),
		docs.spec,
		docs.rubric,
		a.Status(),
		docs.attachments,
		a.MaxFileSizeMB(),
		pq.Array(a.AllowedFileTypes()),
		pq.Array(meta.Tags),
		meta.IsActive,
		meta.CreatedBy,
		meta.Version,
		meta.CreatedAt,
		meta.UpdatedAt,
		a.Specification().DueDate(),
	)
	if err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	return nil
}

// Update writes a only if the stored version still equals a's version, then
// returns a with the advanced version.
func (r *AssignmentRepository) Update(ctx context.Context, a domain.Assignment) (domain.Assignment, error) {
	query := `
		UPDATE assignments
		SET title = $1, description = $2, instructions = $3, specification = $4,
		    rubric = $5, status = $6, attachments = $7, max_file_size_mb = $8,
		    allowed_file_types = $9, tags = $10, is_active = $11, due_date = $12,
		    updated_at = $13, version = version + 1
		WHERE id = $14 AND version = $15
	`

	docs, err := encodeAssignment(a)
	if err != nil {
		return domain.Assignment{}, err
	}
	meta := a.Metadata()

	result, err := r.db.ExecContext(ctx, query,
		a.Title(),
		a.Description(),
		a.Instructions(),
		docs.spec,
		docs.rubric,
		a.Status(),
		docs.attachments,
		a.MaxFileSizeMB(),
		pq.Array(a.AllowedFileTypes()),
		pq.Array(meta.Tags),
		meta.IsActive,
		a.Specification().DueDate(),
		meta.UpdatedAt,
		a.ID(),
		meta.Version,
	)
	if err != nil {
		return domain.Assignment{}, fmt.Errorf("failed to update assignment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.Assignment{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM assignments WHERE id = $1)`, a.ID()).Scan(&exists); err != nil {
			return domain.Assignment{}, fmt.Errorf("failed to check assignment: %w", err)
		}
		if !exists {
			return domain.Assignment{}, ErrNotFound
		}
		return domain.Assignment{}, ErrOptimisticLock
	}

	return a.WithVersion(meta.Version + 1), nil
}

func (r *AssignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = $1`

	a, err := scanAssignment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Assignment{}, ErrNotFound
		}
		return domain.Assignment{}, fmt.Errorf("failed to get assignment: %w", err)
	}
	return a, nil
}

func (r *AssignmentRepository) ListByCourse(ctx context.Context, courseID uuid.UUID, statuses []domain.AssignmentStatus) ([]domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE course_id = $1`
	args := []interface{}{courseID}

	if len(statuses) > 0 {
		raw := make([]string, len(statuses))
		for i, s := range statuses {
			raw[i] = string(s)
		}
		query += ` AND status = ANY($2)`
		args = append(args, pq.Array(raw))
	}
	query += ` ORDER BY due_date`

	return r.list(ctx, query, args...)
}

// ListPublishedDueBefore returns published assignments whose deadline has not
// passed yet and falls before deadline.
func (r *AssignmentRepository) ListPublishedDueBefore(ctx context.Context, deadline time.Time) ([]domain.Assignment, error) {
	query := `SELECT ` + assignmentColumns + `
		FROM assignments
		WHERE status = $1 AND is_active AND due_date BETWEEN NOW() AND $2
		ORDER BY due_date`

	return r.list(ctx, query, domain.AssignmentStatusPublished, deadline)
}

func (r *AssignmentRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.Assignment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	assignments := make([]domain.Assignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return assignments, nil
}

func scanAssignment(row rowScanner) (domain.Assignment, error) {
	var (
		p                            domain.AssignmentParams
		meta                         domain.AssignmentMetadata
		status                       string
		specRaw, rubricRaw, filesRaw []byte
		fileTypes, tags              []string
	)
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.Instructions,
		&p.CourseID,
		&p.InstructorID,
		&specRaw,
		&rubricRaw,
		&status,
		&filesRaw,
		&p.MaxFileSizeMB,
		pq.Array(&fileTypes),
		pq.Array(&tags),
		&meta.IsActive,
		&meta.CreatedBy,
		&meta.Version,
		&meta.CreatedAt,
		&meta.UpdatedAt,
	)
	if err != nil {
		return domain.Assignment{}, err
	}

	var specParams domain.SpecificationParams
	if err := json.Unmarshal(specRaw, &specParams); err != nil {
		return domain.Assignment{}, fmt.Errorf("failed to decode specification: %w", err)
	}
	var criteria []domain.RubricCriterion
	if err := json.Unmarshal(rubricRaw, &criteria); err != nil {
		return domain.Assignment{}, fmt.Errorf("failed to decode rubric: %w", err)
	}
	if err := json.Unmarshal(filesRaw, &p.Attachments); err != nil {
		return domain.Assignment{}, fmt.Errorf("failed to decode attachments: %w", err)
	}

	if p.Specification, err = domain.RestoreSpecification(specParams); err != nil {
		return domain.Assignment{}, fmt.Errorf("stored specification of %s is invalid: %w", p.ID, err)
	}
	if p.Rubric, err = domain.NewRubric(criteria); err != nil {
		return domain.Assignment{}, fmt.Errorf("stored rubric of %s is invalid: %w", p.ID, err)
	}
	p.Status = domain.AssignmentStatus(strings.TrimSpace(status))
	p.AllowedFileTypes = fileTypes
	meta.Tags = tags

	return domain.RestoreAssignment(p, meta)
}
