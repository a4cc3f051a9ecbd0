// File: internal/jobs/event_reminder.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"riverrevive_backend/internal/config"
	"riverrevive_backend/internal/event"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// reminderWindow is how far ahead the job looks for events to remind about.
const reminderWindow = 24 * time.Hour

// EventReminderJob holds dependencies for the event reminder job.
type EventReminderJob struct {
	eventService  event.Service
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewEventReminderJob creates a new EventReminderJob.
func NewEventReminderJob(
	eventService event.Service,
	logger *zap.Logger,
	cfg *config.Config,
) *EventReminderJob {
	scheduler := cron.New(cron.WithLogger(NewCronLogger(logger.Named("cron"))))

	return &EventReminderJob{
		eventService:  eventService,
		logger:        logger.Named("EventReminderJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *EventReminderJob) SetupAndStart() error {
	jobSpec := j.cfg.EventReminderJobSchedule // e.g., "@hourly", "0 * * * *"
	if jobSpec == "" {
		j.logger.Warn("Event reminder job schedule not defined (EVENT_REMINDER_JOB_SCHEDULE). Job will not run.")
		return nil // Not a fatal error, just won't run
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule event reminder job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Event reminder job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start() // Start the scheduler in the background
	return nil
}

// runJob is the actual work performed by the cron job.
func (j *EventReminderJob) runJob() {
	j.logger.Info("Starting event reminder job run...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute) // Job timeout
	defer cancel()

	remindedCount, err := j.eventService.SendUpcomingReminders(ctx, reminderWindow)
	if err != nil {
		j.logger.Error("Event reminder job run failed", zap.Error(err))
	} else {
		j.logger.Info("Event reminder job run completed", zap.Int("events_reminded", remindedCount))
	}
}

// Stop gracefully stops the cron scheduler.
func (j *EventReminderJob) Stop() {
	if j.cronScheduler != nil {
		j.logger.Info("Stopping event reminder job scheduler...")
		stopCtx := j.cronScheduler.Stop() // Returns a context that is done when the scheduler has stopped
		select {
		case <-stopCtx.Done():
			j.logger.Info("Event reminder job scheduler stopped gracefully.")
		case <-time.After(10 * time.Second): // Timeout for stopping
			j.logger.Warn("Event reminder job scheduler stop timed out.")
		}
	}
}

// --- Cron Logger Adapter ---

// cronLogger adapts zap.Logger to cron.Logger interface.
type cronLogger struct {
	zl *zap.Logger
}

// NewCronLogger creates a new cronLogger.
func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

// Info logs routine messages from cron.
func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	cl.zl.Info(msg, fields...)
}

// Error logs error messages from cron.
func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	fields = append(fields, zap.Error(err))
	cl.zl.Error(msg, fields...)
}

func (cl *cronLogger) parseKeysAndValues(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), "MISSING_VALUE"))
		}
	}
	return fields
}
