package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"assignment_service/internal/domain"
	"assignment_service/internal/service"
	"assignment_service/pkg/logger"
)

// ReminderWorker periodically announces published assignments whose deadline
// is close enough to be high or critical urgency.
type ReminderWorker struct {
	assignmentRepo service.AssignmentRepository
	publisher      service.EventPublisher
	logger         *logger.Logger
	interval       time.Duration
	window         time.Duration
	now            func() time.Time
}

func NewReminderWorker(
	assignmentRepo service.AssignmentRepository,
	publisher service.EventPublisher,
	logger *logger.Logger,
	interval, window time.Duration,
) *ReminderWorker {
	return &ReminderWorker{
		assignmentRepo: assignmentRepo,
		publisher:      publisher,
		logger:         logger.With(zap.String("component", "reminder_worker")),
		interval:       interval,
		window:         window,
		now:            time.Now,
	}
}

func (w *ReminderWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Reminder worker stopped")
			return
		case <-ticker.C:
			w.processReminders(ctx)
		}
	}
}

// processReminders returns how many reminders were published.
func (w *ReminderWorker) processReminders(ctx context.Context) int {
	now := w.now()
	assignments, err := w.assignmentRepo.ListPublishedDueBefore(ctx, now.Add(w.window))
	if err != nil {
		w.logger.Error("Failed to get assignments due soon", zap.Error(err))
		return 0
	}

	sent := 0
	for _, a := range assignments {
		if a.IsOverdue(now) {
			continue
		}
		urgency := a.UrgencyLevel(now)
		if urgency != domain.UrgencyCritical && urgency != domain.UrgencyHigh {
			continue
		}

		event := service.AssignmentReminderEvent{
			AssignmentID: a.ID(),
			CourseID:     a.CourseID(),
			Title:        a.Title(),
			DueDate:      a.Specification().DueDate(),
			DaysUntilDue: a.Specification().DaysUntilDue(now),
			Urgency:      urgency,
		}
		if err := w.publisher.Send(ctx, service.TopicAssignmentReminders, event); err != nil {
			w.logger.Error("Failed to send reminder",
				zap.String("assignment_id", a.ID().String()),
				zap.Error(err),
			)
			continue
		}

		sent++
		w.logger.Debug("Sent reminder",
			zap.String("assignment_id", a.ID().String()),
			zap.String("urgency", string(urgency)),
		)
	}
	return sent
}
