package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DevRickLin/feishu-birthday-bot/internal/biz/usecase"
	"github.com/DevRickLin/feishu-birthday-bot/internal/conf"
)

// Job names
const (
	JobReminder  = "reminder"
	JobBackup    = "backup"
	JobHeartbeat = "heartbeat"
)

// NewReminderJob scans for due entries and sends them
func NewReminderJob(at conf.ClockTime, uc *usecase.ReminderUsecase, logger *slog.Logger) *Job {
	return NewJob(JobReminder, at.Hour, at.Minute, func(ctx context.Context, now time.Time) error {
		result := uc.Run(ctx, now)
		if result.Failed > 0 {
			return fmt.Errorf("%d of %d reminders failed", result.Failed, result.Failed+result.Sent)
		}
		return nil
	}, logger)
}

// NewBackupJob writes a snapshot of the store
func NewBackupJob(at conf.ClockTime, uc *usecase.BackupUsecase, logger *slog.Logger) *Job {
	return NewJob(JobBackup, at.Hour, at.Minute, func(ctx context.Context, _ time.Time) error {
		_, err := uc.Backup(ctx)
		return err
	}, logger)
}

// NewHeartbeatJob sends the liveness message
func NewHeartbeatJob(at conf.ClockTime, uc *usecase.HeartbeatUsecase, logger *slog.Logger) *Job {
	return NewJob(JobHeartbeat, at.Hour, at.Minute, func(ctx context.Context, _ time.Time) error {
		return uc.Beat(ctx)
	}, logger)
}

// NewDailyScheduler creates the scheduler with the reminder, backup and heartbeat jobs
func NewDailyScheduler(schedule conf.ScheduleConfig, reminder *usecase.ReminderUsecase, backup *usecase.BackupUsecase, heartbeat *usecase.HeartbeatUsecase, logger *slog.Logger) *Scheduler {
	return NewScheduler(logger,
		NewReminderJob(schedule.Reminder, reminder, logger),
		NewBackupJob(schedule.Backup, backup, logger),
		NewHeartbeatJob(schedule.Heartbeat, heartbeat, logger),
	)
}
