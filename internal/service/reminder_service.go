package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"commit-tracker/internal/model"
	"commit-tracker/internal/repository"
)

// Notifier delivers one reminder message to a user's chat.
type Notifier interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// ReminderService sweeps due schedule entries and delivers reminders.
type ReminderService struct {
	scheduleRepo *repository.ScheduleRepository
	notifier     Notifier
}

func NewReminderService(scheduleRepo *repository.ScheduleRepository, notifier Notifier) *ReminderService {
	return &ReminderService{scheduleRepo: scheduleRepo, notifier: notifier}
}

// SendDue delivers reminders for every unsent schedule entry whose time has
// passed. An entry is marked sent only after successful delivery; users
// without a linked chat are left untouched for a later sweep.
func (s *ReminderService) SendDue(ctx context.Context, now time.Time) error {
	due, err := s.scheduleRepo.ListDue(ctx, now)
	if err != nil {
		return err
	}

	for _, d := range due {
		if d.User.TelegramChatID == 0 {
			log.Debug().Uint("task_id", d.Task.ID).Msg("reminder due but user has no linked chat")
			continue
		}

		text := formatReminder(d.Task, d.Schedule, now)
		if err := s.notifier.Send(ctx, d.User.TelegramChatID, text); err != nil {
			log.Error().Err(err).Uint("schedule_id", d.Schedule.ID).Msg("reminder delivery failed")
			continue
		}
		if err := s.scheduleRepo.MarkSent(ctx, d.Schedule.ID); err != nil {
			return err
		}
	}
	return nil
}

func formatReminder(task model.Task, schedule model.TaskSchedule, now time.Time) string {
	var sb strings.Builder

	icon := "🔔"
	if task.DueDate != nil && now.After(*task.DueDate) {
		icon = "⚠️"
	}

	sb.WriteString(fmt.Sprintf("%s <b>%s</b>\n", icon, html.EscapeString(strings.TrimSpace(task.Title))))
	sb.WriteString(fmt.Sprintf("🗓 Scheduled for %s\n", schedule.ScheduledDate.Format("2006-01-02 15:04")))

	if task.DueDate != nil {
		if now.After(*task.DueDate) {
			sb.WriteString(fmt.Sprintf("⏰ Due %s (<b>overdue</b>)\n", task.DueDate.Format("2006-01-02")))
		} else {
			sb.WriteString(fmt.Sprintf("⏰ Due %s\n", task.DueDate.Format("2006-01-02")))
		}
	}
	if task.Priority == model.PriorityHigh {
		sb.WriteString("🔥 High priority\n")
	}
	if task.Description != "" {
		sb.WriteString(fmt.Sprintf("📝 %s\n", html.EscapeString(strings.TrimSpace(task.Description))))
	}

	return strings.TrimSpace(sb.String())
}
