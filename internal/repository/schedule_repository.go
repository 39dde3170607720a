package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"commit-tracker/internal/model"
)

// ScheduleRepository manages task reminder entries.
type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) Create(ctx context.Context, schedule *model.TaskSchedule) error {
	if err := r.db.WithContext(ctx).Create(schedule).Error; err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// ListByTask returns a task's schedule entries ordered by their date.
func (r *ScheduleRepository) ListByTask(ctx context.Context, taskID uint) ([]model.TaskSchedule, error) {
	var schedules []model.TaskSchedule
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).
		Order("scheduled_date").
		Find(&schedules).Error; err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return schedules, nil
}

// DueReminder joins a due schedule entry with its task and owner, which is
// everything the reminder sweep needs to deliver and mark it.
type DueReminder struct {
	Schedule model.TaskSchedule
	Task     model.Task
	User     model.User
}

// ListDue returns unsent entries whose scheduled date has passed.
func (r *ScheduleRepository) ListDue(ctx context.Context, now time.Time) ([]DueReminder, error) {
	var schedules []model.TaskSchedule
	if err := r.db.WithContext(ctx).
		Where("reminder_sent = ? AND scheduled_date <= ?", false, now).
		Order("scheduled_date").
		Find(&schedules).Error; err != nil {
		return nil, fmt.Errorf("list due schedules: %w", err)
	}

	due := make([]DueReminder, 0, len(schedules))
	for _, s := range schedules {
		var task model.Task
		if err := r.db.WithContext(ctx).First(&task, s.TaskID).Error; err != nil {
			// Orphaned entries are skipped; task deletion should have
			// removed them already.
			continue
		}
		var user model.User
		if err := r.db.WithContext(ctx).First(&user, task.UserID).Error; err != nil {
			continue
		}
		due = append(due, DueReminder{Schedule: s, Task: task, User: user})
	}
	return due, nil
}

// MarkSent flips the reminder flag once delivery succeeded.
func (r *ScheduleRepository) MarkSent(ctx context.Context, scheduleID uint) error {
	if err := r.db.WithContext(ctx).Model(&model.TaskSchedule{}).
		Where("id = ?", scheduleID).
		Update("reminder_sent", true).Error; err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	return nil
}
