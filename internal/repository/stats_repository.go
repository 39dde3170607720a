package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"commit-tracker/internal/model"
)

// StatsRepository serves the chart aggregates over the task table.
type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// GroupCount is one bucket of a grouped count (by status or by priority).
type GroupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// DailyTaskStat aggregates one day of task creation.
type DailyTaskStat struct {
	Date           string `json:"date"`
	Count          int    `json:"count"`
	CompletedCount int    `json:"completed_count"`
}

// DailyProgress breaks one day of created tasks down by status.
type DailyProgress struct {
	Date            string `json:"date"`
	TotalTasks      int    `json:"total_tasks"`
	CompletedTasks  int    `json:"completed_tasks"`
	InProgressTasks int    `json:"in_progress_tasks"`
	PendingTasks    int    `json:"pending_tasks"`
}

func (r *StatsRepository) CountByStatus(ctx context.Context, userID uint, from, to *time.Time) ([]GroupCount, error) {
	return r.groupCount(ctx, "status", userID, from, to)
}

func (r *StatsRepository) CountByPriority(ctx context.Context, userID uint, from, to *time.Time) ([]GroupCount, error) {
	return r.groupCount(ctx, "priority", userID, from, to)
}

func (r *StatsRepository) groupCount(ctx context.Context, column string, userID uint, from, to *time.Time) ([]GroupCount, error) {
	q := r.db.WithContext(ctx).Model(&model.Task{}).
		Select(column + " as key, COUNT(*) as count").
		Where("user_id = ?", userID)
	if from != nil && to != nil {
		q = q.Where("created_at BETWEEN ? AND ?", *from, *to)
	}
	var rows []GroupCount
	if err := q.Group(column).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count by %s: %w", column, err)
	}
	return rows, nil
}

// DailyCounts returns per-day created/completed counts, newest first,
// capped at 30 days.
func (r *StatsRepository) DailyCounts(ctx context.Context, userID uint, from, to *time.Time) ([]DailyTaskStat, error) {
	q := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("DATE(created_at) as date, COUNT(*) as count, "+
			"SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) as completed_count", model.StatusCompleted).
		Where("user_id = ?", userID)
	if from != nil && to != nil {
		q = q.Where("created_at BETWEEN ? AND ?", *from, *to)
	}
	var rows []DailyTaskStat
	if err := q.Group("DATE(created_at)").
		Order("date DESC").
		Limit(30).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("daily counts: %w", err)
	}
	return rows, nil
}

// Progress returns per-day status breakdowns for the trailing window.
func (r *StatsRepository) Progress(ctx context.Context, userID uint, since time.Time) ([]DailyProgress, error) {
	var rows []DailyProgress
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("DATE(created_at) as date, COUNT(*) as total_tasks, "+
			"SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) as completed_tasks, "+
			"SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) as in_progress_tasks, "+
			"SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) as pending_tasks",
			model.StatusCompleted, model.StatusInProgress, model.StatusPending).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("progress stats: %w", err)
	}
	return rows, nil
}
