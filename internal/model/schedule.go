package model

import "time"

// TaskSchedule is a single reminder slot attached to a task.
// It is removed together with its task.
type TaskSchedule struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TaskID        uint      `gorm:"index" json:"task_id"`
	ScheduledDate time.Time `gorm:"index;not null" json:"scheduled_date"`
	ReminderSent  bool      `gorm:"default:false" json:"reminder_sent"`
	CreatedAt     time.Time `json:"created_at"`
}
