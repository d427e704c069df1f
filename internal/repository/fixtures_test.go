package repository_test

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"assignment_service/internal/domain"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func sampleAssignment(t *testing.T) domain.Assignment {
	t.Helper()
	spec, err := domain.NewSpecification(domain.SpecificationParams{
		Type:        domain.AssignmentTypeProject,
		DueDate:     now.Add(14 * 24 * time.Hour),
		MaxGrade:    100,
		MaxAttempts: 2,
	}, now)
	require.NoError(t, err)
	rubric, err := domain.NewRubric([]domain.RubricCriterion{
		domain.NewCriterion("design", "Design", 60),
		domain.NewCriterion("code", "Code", 40),
	})
	require.NoError(t, err)

	a, err := domain.NewAssignment(domain.AssignmentParams{
		ID:               uuid.New(),
		Title:            "Compiler",
		Description:      "Build a compiler",
		Instructions:     "Follow the guide",
		CourseID:         uuid.New(),
		InstructorID:     uuid.New(),
		Specification:    spec,
		Rubric:           rubric,
		AllowedFileTypes: []string{"pdf", "zip"},
	}, []string{"compilers"}, now)
	require.NoError(t, err)
	return a
}

func anyArgs(n int) []driver.Value {
	args := make([]driver.Value, n)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	return args
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

var assignmentColumnNames = []string{
	"id", "title", "description", "instructions", "course_id", "instructor_id",
	"specification", "rubric", "status", "attachments", "max_file_size_mb",
	"allowed_file_types", "tags", "is_active", "created_by", "version", "created_at", "updated_at",
}

func assignmentRow(t *testing.T, a domain.Assignment) []driver.Value {
	meta := a.Metadata()
	return []driver.Value{
		a.ID().String(), a.Title(), a.Description(), a.Instructions(),
		a.CourseID().String(), a.InstructorID().String(),
		mustJSON(t, a.Specification().Params()), mustJSON(t, a.Rubric().Criteria()),
		string(a.Status()), mustJSON(t, a.Attachments()), a.MaxFileSizeMB(),
		[]byte("{pdf,zip}"), []byte("{compilers}"), meta.IsActive,
		meta.CreatedBy.String(), meta.Version, meta.CreatedAt, meta.UpdatedAt,
	}
}
