package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"assignment_service/internal/domain"
	"assignment_service/internal/repository"
	"assignment_service/internal/service"
	"assignment_service/internal/service/mocks"
	"assignment_service/pkg/logger"
)

type submissionDeps struct {
	assignments *mocks.MockAssignmentRepository
	submissions *mocks.MockSubmissionRepository
	progress    *mocks.MockProgressRepository
	publisher   *mocks.MockEventPublisher
	cache       *mocks.MockCache
	svc         *service.SubmissionService
}

func newSubmissionDeps(t *testing.T) *submissionDeps {
	t.Helper()
	ctrl := gomock.NewController(t)
	d := &submissionDeps{
		assignments: new(mocks.MockAssignmentRepository),
		submissions: new(mocks.MockSubmissionRepository),
		progress:    new(mocks.MockProgressRepository),
		publisher:   new(mocks.MockEventPublisher),
		cache:       mocks.NewMockCache(ctrl),
	}
	log := logger.NewNop()
	progress := service.NewProgressService(d.assignments, d.submissions, d.progress, d.cache, time.Minute, log).WithClock(clock)
	d.svc = service.NewSubmissionService(d.assignments, d.submissions, progress, d.publisher, log).WithClock(clock)

	t.Cleanup(func() {
		d.assignments.AssertExpectations(t)
		d.submissions.AssertExpectations(t)
		d.progress.AssertExpectations(t)
		d.publisher.AssertExpectations(t)
	})
	return d
}

func TestSubmissionService_StartSubmission(t *testing.T) {
	d := newSubmissionDeps(t)
	student := uuid.New()
	a := buildAssignment(t, assignmentOpts{})

	d.assignments.On("GetByID", mock.Anything, a.ID()).Return(a, nil)
	d.submissions.On("ListByStudent", mock.Anything, a.ID(), student).Return(nil, nil)
	d.submissions.On("Create", mock.Anything, mock.MatchedBy(func(s domain.AssignmentSubmission) bool {
		return s.AttemptNumber() == 1 && s.Status() == domain.SubmissionStatusDraft
	})).Return(nil)
	d.progress.On("Get", mock.Anything, a.ID(), student).Return(domain.AssignmentProgress{}, repository.ErrNotFound)
	d.progress.On("Save", mock.Anything, mock.MatchedBy(func(p domain.AssignmentProgress) bool {
		return p.Status() == domain.ProgressInProgress && p.IsStarted()
	})).Return(nil)
	d.cache.EXPECT().Delete(gomock.Any(), "recommendations:"+student.String()+":"+a.CourseID().String())

	sub, err := d.svc.StartSubmission(asStudent(student), a.ID(), "first draft")
	require.NoError(t, err)
	assert.Equal(t, student, sub.StudentID())
	assert.Equal(t, 2, sub.Content().WordCount())
}

func TestSubmissionService_StartSubmission_Denied(t *testing.T) {
	d := newSubmissionDeps(t)
	a := buildAssignment(t, assignmentOpts{status: domain.AssignmentStatusDraft})

	_, err := d.svc.StartSubmission(asInstructor(a.InstructorID()), a.ID(), "")
	assert.ErrorIs(t, err, service.ErrPermissionDenied)

	d.assignments.On("GetByID", mock.Anything, a.ID()).Return(a, nil)
	_, err = d.svc.StartSubmission(asStudent(uuid.New()), a.ID(), "")
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestSubmissionService_StartSubmission_AttemptsExhausted(t *testing.T) {
	d := newSubmissionDeps(t)
	student := uuid.New()
	a := buildAssignment(t, assignmentOpts{maxAttempts: 1})
	prior := draftFor(t, a, student, 1, "done")

	d.assignments.On("GetByID", mock.Anything, a.ID()).Return(a, nil)
	d.submissions.On("ListByStudent", mock.Anything, a.ID(), student).Return([]domain.AssignmentSubmission{prior}, nil)

	_, err := d.svc.StartSubmission(asStudent(student), a.ID(), "again")
	assert.ErrorIs(t, err, service.ErrSubmissionNotAllowed)
}

func TestSubmissionService_UpdateContent(t *testing.T) {
	d := newSubmissionDeps(t)
	student := uuid.New()
	a := buildAssignment(t, assignmentOpts{maxAttempts: 3})
	sub := draftFor(t, a, student, 1, "old")

	d.submissions.On("GetByID", mock.Anything, sub.ID()).Return(sub, nil)
	d.assignments.On("GetByID", mock.Anything, a.ID()).Return(a, nil)
	d.submissions.On("Update", mock.Anything, mock.Anything).Return(nil)

	updated, err := d.svc.UpdateContent(asStudent(student), sub.ID(), "a new answer")
	require.NoError(t, err)
	assert.Equal(t, "a new answer", updated.Content().Text())

	_, err = d.svc.UpdateContent(asStudent(uuid.New()), sub.ID(), "hijack")
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestSubmissionService_AddAttachments(t *testing.T) {
	d := newSubmissionDeps(t)
	student := uuid.New()
	a := buildAssignment(t, assignmentOpts{maxAttempts: 3})
	sub := draftFor(t, a, student, 1, "text")

	d.submissions.On("GetByID", mock.Anything, sub.ID()).Return(sub, nil)
	d.assignments.On("GetByID", mock.Anything, a.ID()).Return(a, nil)

	_, err := d.svc.AddAttachments(asStudent(student), sub.ID(), []domain.FileAttachment{{Name: "run.exe", Size: 10}})
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))

	d.submissions.On("Update", mock.Anything, mock.Anything).Return(nil)
	updated, err := d.svc.AddAttachments(asStudent(student), sub.ID(), []domain.FileAttachment{{Name: "report.pdf", Size: 1024}})
	require.NoError(t, err)
	files := updated.Attachments()
	require.Len(t, files, 1)
	assert.NotEqual(t, uuid.Nil, files[0].ID)
	assert.Equal(t, now, files[0].UploadedAt)
}

func TestSubmissionService_EditLastAllowedAttempt(t *testing.T) {
	d := newSubmissionDeps(t)
	student := uuid.New()
	a := buildAssignment(t, assignmentOpts{maxAttempts: 1})
	sub := draftFor(t, a, student, 1, "")

	d.submissions.On("GetByID", mock.Anything, sub.ID()).Return(sub, nil)
	d.assignments.On("GetByID", mock.Anything, a.ID()).Return(a, nil)
	d.submissions.On("Update", mock.Anything, mock.Anything).Return(nil)

	updated, err := d.svc.UpdateContent(asStudent(student), sub.ID(), "my answer")
	require.NoError(t, err)
	assert.Equal(t, "my answer", updated.Content().Text())

	withFile, err := d.svc.AddAttachments(asStudent(student), sub.ID(), []domain.FileAttachment{{Name: "report.pdf", Size: 1024}})
	require.NoError(t, err)
	require.Len(t, withFile.Attachments(), 1)
	assert.Equal(t, "report.pdf", withFile.Attachments()[0].Name)
}

func TestSubmissionService_AddAttachments_SubmittedIsLocked(t *testing.T) {
	d := newSubmissionDeps(t)
	student := uuid.New()
	a := buildAssignment(t, assignmentOpts{maxAttempts: 1})
	submitted, err := draftFor(t, a, student, 1, "done", file("a.pdf", 1)).Submit(now)
	require.NoError(t, err)

	d.submissions.On("GetByID", mock.Anything, submitted.ID()).Return(submitted, nil)
	d.assignments.On("GetByID", mock.Anything, a.ID()).Return(a, nil)

	_, err = d.svc.AddAttachments(asStudent(student), submitted.ID(), []domain.FileAttachment{{Name: "late.pdf", Size: 1024}})
	assert.ErrorIs(t, err, service.ErrSubmissionLocked)
	d.submissions.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSubmissionService_SubmitSubmission_RuleViolation(t *testing.T) {
	d := newSubmissionDeps(t)
	student := uuid.New()
	a := buildAssignment(t, assignmentOpts{modify: func(p *domain.SpecificationParams) {
		p.WordCount = intPtr(10)
	}})
	sub := draftFor(t, a, student, 1, "too short")

	d.submissions.On("GetByID", mock.Anything, sub.ID()).Return(sub, nil)
	d.assignments.On("GetByID", mock.Anything, a.ID()).Return(a, nil)
	d.submissions.On("ListByStudent", mock.Anything, a.ID(), student).Return([]domain.AssignmentSubmission{sub}, nil)

	got, result, err := d.svc.SubmitSubmission(asStudent(student), sub.ID())
	var violation *service.RuleViolationError
	require.ErrorAs(t, err, &violation)
	assert.False(t, result.IsValid)
	assert.Contains(t, violation.Result.Errors, "Submission must contain at least 10 words (currently 2)")
	assert.Contains(t, violation.Result.Warnings, "No files attached")
	assert.Equal(t, domain.SubmissionStatusDraft, got.Status())
	d.submissions.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSubmissionService_SubmitSubmission_Success(t *testing.T) {
	d := newSubmissionDeps(t)
	student := uuid.New()
	a := buildAssignment(t, assignmentOpts{})
	sub := draftFor(t, a, student, 1, "my answer", file("answer.pdf", 1))
	submitted, err := sub.Submit(now)
	require.NoError(t, err)

	d.submissions.On("GetByID", mock.Anything, sub.ID()).Return(sub, nil)
	d.assignments.On("GetByID", mock.Anything, a.ID()).Return(a, nil)
	d.submissions.On("ListByStudent", mock.Anything, a.ID(), student).Return([]domain.AssignmentSubmission{sub}, nil).Once()
	d.submissions.On("ListByStudent", mock.Anything, a.ID(), student).Return([]domain.AssignmentSubmission{submitted}, nil).Once()
	d.submissions.On("Update", mock.Anything, mock.MatchedBy(func(s domain.AssignmentSubmission) bool {
		return s.Status() == domain.SubmissionStatusSubmitted
	})).Return(nil)
	d.publisher.On("Send", mock.Anything, service.TopicSubmissionSubmitted, mock.MatchedBy(func(e service.SubmissionSubmittedEvent) bool {
		return e.SubmissionID == sub.ID() && !e.IsLate && e.AttemptNumber == 1
	})).Return(nil)

	inProgress := domain.StartProgress(a.ID(), student, now.Add(-time.Hour)).WithProgress(40, now.Add(-time.Hour))
	d.progress.On("Get", mock.Anything, a.ID(), student).Return(inProgress, nil)
	d.progress.On("Save", mock.Anything, mock.MatchedBy(func(p domain.AssignmentProgress) bool {
		return p.Status() == domain.ProgressCompleted
	})).Return(nil)
	d.cache.EXPECT().Delete(gomock.Any(), gomock.Any())

	got, result, err := d.svc.SubmitSubmission(asStudent(student), sub.ID())
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, domain.SubmissionStatusSubmitted, got.Status())
}

func TestSubmissionService_SubmitSubmission_Twice(t *testing.T) {
	d := newSubmissionDeps(t)
	student := uuid.New()
	a := buildAssignment(t, assignmentOpts{})
	submitted, err := draftFor(t, a, student, 1, "answer", file("a.pdf", 1)).Submit(now)
	require.NoError(t, err)

	d.submissions.On("GetByID", mock.Anything, submitted.ID()).Return(submitted, nil)
	d.assignments.On("GetByID", mock.Anything, a.ID()).Return(a, nil)
	d.submissions.On("ListByStudent", mock.Anything, a.ID(), student).Return([]domain.AssignmentSubmission{submitted}, nil)

	_, _, err = d.svc.SubmitSubmission(asStudent(student), submitted.ID())
	assert.ErrorIs(t, err, domain.ErrAlreadySubmitted)
}

func TestSubmissionService_GradeSubmission(t *testing.T) {
	student := uuid.New()
	a := buildAssignment(t, assignmentOpts{})
	submitted, err := draftFor(t, a, student, 1, "answer").Submit(now)
	require.NoError(t, err)

	t.Run("owner grades", func(t *testing.T) {
		d := newSubmissionDeps(t)
		d.submissions.On("GetByID", mock.Anything, submitted.ID()).Return(submitted, nil)
		d.assignments.On("GetByID", mock.Anything, a.ID()).Return(a, nil)
		d.submissions.On("Update", mock.Anything, mock.Anything).Return(nil)
		d.publisher.On("Send", mock.Anything, service.TopicSubmissionGraded, mock.MatchedBy(func(e service.SubmissionGradedEvent) bool {
			return e.Score == 90 && e.StudentID == student
		})).Return(nil)

		graded, result, err := d.svc.GradeSubmission(asInstructor(a.InstructorID()), submitted.ID(), service.GradeInput{
			Scores:   map[string]float64{"c1": 45, "c2": 45},
			Feedback: "well done",
		})
		require.NoError(t, err)
		assert.Equal(t, 90.0, result.Percentage)
		assert.Equal(t, domain.SubmissionStatusGraded, graded.Status())
	})

	t.Run("invalid scores", func(t *testing.T) {
		d := newSubmissionDeps(t)
		d.submissions.On("GetByID", mock.Anything, submitted.ID()).Return(submitted, nil)
		d.assignments.On("GetByID", mock.Anything, a.ID()).Return(a, nil)

		_, result, err := d.svc.GradeSubmission(asInstructor(a.InstructorID()), submitted.ID(), service.GradeInput{
			Scores: map[string]float64{"c1": 45},
		})
		assert.ErrorIs(t, err, service.ErrInvalidGrade)
		assert.Equal(t, []string{"Missing score for criterion: Criterion 2"}, result.Errors)
	})

	t.Run("other instructor", func(t *testing.T) {
		d := newSubmissionDeps(t)
		d.submissions.On("GetByID", mock.Anything, submitted.ID()).Return(submitted, nil)
		d.assignments.On("GetByID", mock.Anything, a.ID()).Return(a, nil)

		_, _, err := d.svc.GradeSubmission(asInstructor(uuid.New()), submitted.ID(), service.GradeInput{})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})
}

func TestSubmissionService_ListSubmissionsByAssignment(t *testing.T) {
	d := newSubmissionDeps(t)
	student := uuid.New()
	a := buildAssignment(t, assignmentOpts{})
	mine := draftFor(t, a, student, 1, "mine")
	theirs := draftFor(t, a, uuid.New(), 1, "theirs")

	d.assignments.On("GetByID", mock.Anything, a.ID()).Return(a, nil)
	d.submissions.On("ListByAssignment", mock.Anything, a.ID()).Return([]domain.AssignmentSubmission{mine, theirs}, nil)
	d.submissions.On("ListByStudent", mock.Anything, a.ID(), student).Return([]domain.AssignmentSubmission{mine}, nil)

	all, err := d.svc.ListSubmissionsByAssignment(asInstructor(a.InstructorID()), a.ID())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := d.svc.ListSubmissionsByAssignment(asStudent(student), a.ID())
	require.NoError(t, err)
	assert.Len(t, own, 1)

	_, err = d.svc.ListSubmissionsByAssignment(asInstructor(uuid.New()), a.ID())
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestRuleViolationError_Message(t *testing.T) {
	err := &service.RuleViolationError{Result: domain.NewValidationResult([]string{"a", "b"}, nil)}
	assert.Equal(t, "submission rejected: a; b", err.Error())
	assert.False(t, errors.Is(err, service.ErrInvalidGrade))
}
