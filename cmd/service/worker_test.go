package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"assignment_service/internal/domain"
	"assignment_service/internal/service"
	"assignment_service/internal/service/mocks"
	"assignment_service/pkg/logger"
)

var now = time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)

func publishedDueIn(t *testing.T, due time.Duration) domain.Assignment {
	t.Helper()
	created := now.Add(-30 * 24 * time.Hour)
	spec, err := domain.NewSpecification(domain.SpecificationParams{
		Type:        domain.AssignmentTypeQuiz,
		DueDate:     now.Add(due),
		MaxGrade:    10,
		MaxAttempts: 1,
	}, created)
	require.NoError(t, err)
	rubric, err := domain.NewRubric([]domain.RubricCriterion{domain.NewCriterion("q", "Answers", 10)})
	require.NoError(t, err)
	a, err := domain.NewAssignment(domain.AssignmentParams{
		ID:            uuid.New(),
		Title:         "Quiz",
		Description:   "Weekly quiz",
		Instructions:  "Answer all",
		CourseID:      uuid.New(),
		InstructorID:  uuid.New(),
		Specification: spec,
		Rubric:        rubric,
		Status:        domain.AssignmentStatusPublished,
	}, nil, created)
	require.NoError(t, err)
	return a
}

func newTestWorker(repo *mocks.MockAssignmentRepository, pub *mocks.MockEventPublisher) *ReminderWorker {
	w := NewReminderWorker(repo, pub, logger.NewNop(), time.Hour, 72*time.Hour)
	w.now = func() time.Time { return now }
	return w
}

func TestReminderWorker_SendsHighAndCritical(t *testing.T) {
	repo := new(mocks.MockAssignmentRepository)
	pub := new(mocks.MockEventPublisher)

	critical := publishedDueIn(t, 20*time.Hour)
	high := publishedDueIn(t, 60*time.Hour)
	medium := publishedDueIn(t, 5*24*time.Hour)

	repo.On("ListPublishedDueBefore", mock.Anything, now.Add(72*time.Hour)).
		Return([]domain.Assignment{critical, high, medium}, nil)

	pub.On("Send", mock.Anything, service.TopicAssignmentReminders, mock.MatchedBy(func(e service.AssignmentReminderEvent) bool {
		return e.AssignmentID == critical.ID() && e.Urgency == domain.UrgencyCritical && e.DaysUntilDue == 1
	})).Return(nil).Once()
	pub.On("Send", mock.Anything, service.TopicAssignmentReminders, mock.MatchedBy(func(e service.AssignmentReminderEvent) bool {
		return e.AssignmentID == high.ID() && e.Urgency == domain.UrgencyHigh && e.DaysUntilDue == 3
	})).Return(nil).Once()

	sent := newTestWorker(repo, pub).processReminders(context.Background())

	assert.Equal(t, 2, sent)
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestReminderWorker_SendFailureContinues(t *testing.T) {
	repo := new(mocks.MockAssignmentRepository)
	pub := new(mocks.MockEventPublisher)

	first := publishedDueIn(t, 10*time.Hour)
	second := publishedDueIn(t, 12*time.Hour)

	repo.On("ListPublishedDueBefore", mock.Anything, mock.Anything).Return([]domain.Assignment{first, second}, nil)
	pub.On("Send", mock.Anything, service.TopicAssignmentReminders, mock.MatchedBy(func(e service.AssignmentReminderEvent) bool {
		return e.AssignmentID == first.ID()
	})).Return(errors.New("broker down")).Once()
	pub.On("Send", mock.Anything, service.TopicAssignmentReminders, mock.MatchedBy(func(e service.AssignmentReminderEvent) bool {
		return e.AssignmentID == second.ID()
	})).Return(nil).Once()

	assert.Equal(t, 1, newTestWorker(repo, pub).processReminders(context.Background()))
	pub.AssertExpectations(t)
}

func TestReminderWorker_RepositoryError(t *testing.T) {
	repo := new(mocks.MockAssignmentRepository)
	pub := new(mocks.MockEventPublisher)

	repo.On("ListPublishedDueBefore", mock.Anything, mock.Anything).Return([]domain.Assignment(nil), errors.New("db down"))

	assert.Zero(t, newTestWorker(repo, pub).processReminders(context.Background()))
	pub.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestReminderWorker_LogsComponent(t *testing.T) {
	repo := new(mocks.MockAssignmentRepository)
	pub := new(mocks.MockEventPublisher)
	core, logs := observer.New(zapcore.DebugLevel)

	repo.On("ListPublishedDueBefore", mock.Anything, mock.Anything).Return([]domain.Assignment(nil), errors.New("db down"))

	w := NewReminderWorker(repo, pub, &logger.Logger{ZapLogger: zap.New(core)}, time.Hour, 72*time.Hour)
	w.now = func() time.Time { return now }
	w.processReminders(context.Background())

	entries := logs.FilterMessage("Failed to get assignments due soon").AllUntimed()
	require.Len(t, entries, 1)
	assert.Equal(t, "reminder_worker", entries[0].ContextMap()["component"])
}

func TestReminderWorker_StopsOnCancel(t *testing.T) {
	repo := new(mocks.MockAssignmentRepository)
	pub := new(mocks.MockEventPublisher)
	w := newTestWorker(repo, pub)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
