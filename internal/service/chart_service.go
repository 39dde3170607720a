package service

import (
	"context"
	"time"

	"commit-tracker/internal/model"
	"commit-tracker/internal/repository"
	"commit-tracker/internal/timeline"
)

// ChartService assembles the derived views: the Gantt timeline and the
// aggregate statistics.
type ChartService struct {
	taskRepo   *repository.TaskRepository
	statsRepo  *repository.StatsRepository
	commitRepo *repository.CommitRepository
}

func NewChartService(taskRepo *repository.TaskRepository, statsRepo *repository.StatsRepository, commitRepo *repository.CommitRepository) *ChartService {
	return &ChartService{taskRepo: taskRepo, statsRepo: statsRepo, commitRepo: commitRepo}
}

// TimelineView couples the task forest with its computed layout.
type TimelineView struct {
	Tasks  []model.Task    `json:"tasks"`
	Layout timeline.Layout `json:"layout"`
}

// Timeline resolves the owner's task forest and lays it out on the
// month/week grid anchored at today.
func (s *ChartService) Timeline(ctx context.Context, userID uint, today time.Time) (*TimelineView, error) {
	tasks, err := s.taskRepo.ListTree(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &TimelineView{
		Tasks:  tasks,
		Layout: timeline.Build(tasks, today),
	}, nil
}

// Stats bundles every aggregate the dashboard charts consume.
type Stats struct {
	TaskStats     []repository.GroupCount      `json:"taskStats"`
	PriorityStats []repository.GroupCount      `json:"priorityStats"`
	DailyStats    []repository.DailyTaskStat   `json:"dailyStats"`
	GitStats      []repository.DailyCommitStat `json:"gitStats"`
}

func (s *ChartService) Stats(ctx context.Context, userID uint, from, to *time.Time) (*Stats, error) {
	taskStats, err := s.statsRepo.CountByStatus(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	priorityStats, err := s.statsRepo.CountByPriority(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	dailyStats, err := s.statsRepo.DailyCounts(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	gitStats, err := s.commitRepo.DailyStats(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return &Stats{
		TaskStats:     taskStats,
		PriorityStats: priorityStats,
		DailyStats:    dailyStats,
		GitStats:      gitStats,
	}, nil
}

// Progress returns the per-day status breakdown for the trailing window.
func (s *ChartService) Progress(ctx context.Context, userID uint, days int) ([]repository.DailyProgress, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().AddDate(0, 0, -days)
	return s.statsRepo.Progress(ctx, userID, since)
}
