package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commit-tracker/internal/model"
)

func TestStatsCountByStatusAndPriority(t *testing.T) {
	db := newTestDB(t)
	taskRepo := NewTaskRepository(db)
	repo := NewStatsRepository(db)
	ctx := context.Background()
	user := seedUser(t, db, "stats@example.com")

	seed := []struct {
		status, priority string
	}{
		{model.StatusPending, model.PriorityHigh},
		{model.StatusPending, model.PriorityMedium},
		{model.StatusCompleted, model.PriorityMedium},
	}
	for i, s := range seed {
		require.NoError(t, taskRepo.Create(ctx, &model.Task{
			UserID: user.ID, Title: "t", Status: s.status, Priority: s.priority,
			CreatedAt: time.Date(2024, time.May, 1+i, 12, 0, 0, 0, time.UTC),
		}))
	}
	// Another owner's tasks never leak into the aggregates.
	other := seedUser(t, db, "stats-other@example.com")
	require.NoError(t, taskRepo.Create(ctx, &model.Task{
		UserID: other.ID, Title: "t", Status: model.StatusPending, Priority: model.PriorityLow,
	}))

	byStatus, err := repo.CountByStatus(ctx, user.ID, nil, nil)
	require.NoError(t, err)
	counts := map[string]int{}
	for _, g := range byStatus {
		counts[g.Key] = g.Count
	}
	assert.Equal(t, map[string]int{model.StatusPending: 2, model.StatusCompleted: 1}, counts)

	byPriority, err := repo.CountByPriority(ctx, user.ID, nil, nil)
	require.NoError(t, err)
	counts = map[string]int{}
	for _, g := range byPriority {
		counts[g.Key] = g.Count
	}
	assert.Equal(t, map[string]int{model.PriorityHigh: 1, model.PriorityMedium: 2}, counts)

	// Range filter narrows by creation date.
	from := time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.May, 4, 0, 0, 0, 0, time.UTC)
	narrowed, err := repo.CountByStatus(ctx, user.ID, &from, &to)
	require.NoError(t, err)
	total := 0
	for _, g := range narrowed {
		total += g.Count
	}
	assert.Equal(t, 2, total)
}

func TestStatsDailyCountsAndProgress(t *testing.T) {
	db := newTestDB(t)
	taskRepo := NewTaskRepository(db)
	repo := NewStatsRepository(db)
	ctx := context.Background()
	user := seedUser(t, db, "daily@example.com")

	day := time.Date(2024, time.May, 10, 9, 0, 0, 0, time.UTC)
	for _, status := range []string{model.StatusPending, model.StatusInProgress, model.StatusCompleted, model.StatusCompleted} {
		require.NoError(t, taskRepo.Create(ctx, &model.Task{
			UserID: user.ID, Title: "t", Status: status, Priority: model.PriorityMedium,
			CreatedAt: day,
		}))
	}

	daily, err := repo.DailyCounts(ctx, user.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, "2024-05-10", daily[0].Date)
	assert.Equal(t, 4, daily[0].Count)
	assert.Equal(t, 2, daily[0].CompletedCount)

	progress, err := repo.Progress(ctx, user.ID, day.AddDate(0, 0, -1))
	require.NoError(t, err)
	require.Len(t, progress, 1)
	assert.Equal(t, 4, progress[0].TotalTasks)
	assert.Equal(t, 2, progress[0].CompletedTasks)
	assert.Equal(t, 1, progress[0].InProgressTasks)
	assert.Equal(t, 1, progress[0].PendingTasks)
}
