package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commit-tracker/internal/model"
	"commit-tracker/internal/repository"
)

type fakeNotifier struct {
	sent []string
	fail bool
}

func (f *fakeNotifier) Send(_ context.Context, _ int64, text string) error {
	if f.fail {
		return errors.New("chat unreachable")
	}
	f.sent = append(f.sent, text)
	return nil
}

func TestReminderSendDue(t *testing.T) {
	db := newSyncTestDB(t)
	user := &model.User{Email: "reminder@example.com", PasswordHash: "x", TelegramChatID: 42}
	require.NoError(t, db.Create(user).Error)

	taskRepo := repository.NewTaskRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	ctx := context.Background()

	due := time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC)
	overdue := due.AddDate(0, 0, -1)
	task := &model.Task{
		UserID: user.ID, Title: "Review <PR>", Description: "final pass",
		Status: model.StatusPending, Priority: model.PriorityHigh, DueDate: &overdue,
	}
	require.NoError(t, taskRepo.Create(ctx, task))
	schedule := &model.TaskSchedule{TaskID: task.ID, ScheduledDate: due.Add(-time.Hour)}
	require.NoError(t, scheduleRepo.Create(ctx, schedule))

	notifier := &fakeNotifier{}
	svc := NewReminderService(scheduleRepo, notifier)

	require.NoError(t, svc.SendDue(ctx, due))
	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0], "Review &lt;PR&gt;", "task title is HTML-escaped")
	assert.Contains(t, notifier.sent[0], "overdue")
	assert.Contains(t, notifier.sent[0], "High priority")

	// Already-sent entries are not delivered again.
	require.NoError(t, svc.SendDue(ctx, due))
	assert.Len(t, notifier.sent, 1)
}

func TestReminderDeliveryFailureLeavesEntryUnsent(t *testing.T) {
	db := newSyncTestDB(t)
	user := &model.User{Email: "retry@example.com", PasswordHash: "x", TelegramChatID: 7}
	require.NoError(t, db.Create(user).Error)

	taskRepo := repository.NewTaskRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	ctx := context.Background()

	now := time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC)
	task := &model.Task{UserID: user.ID, Title: "Flaky", Status: model.StatusPending, Priority: model.PriorityMedium}
	require.NoError(t, taskRepo.Create(ctx, task))
	require.NoError(t, scheduleRepo.Create(ctx, &model.TaskSchedule{TaskID: task.ID, ScheduledDate: now.Add(-time.Minute)}))

	notifier := &fakeNotifier{fail: true}
	svc := NewReminderService(scheduleRepo, notifier)
	require.NoError(t, svc.SendDue(ctx, now), "delivery failures are logged, not returned")

	// The entry survives for the next sweep.
	notifier.fail = false
	require.NoError(t, svc.SendDue(ctx, now))
	assert.Len(t, notifier.sent, 1)
}

func TestReminderSkipsUsersWithoutChat(t *testing.T) {
	db := newSyncTestDB(t)
	user := &model.User{Email: "nochat@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)

	taskRepo := repository.NewTaskRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	ctx := context.Background()

	now := time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC)
	task := &model.Task{UserID: user.ID, Title: "Quiet", Status: model.StatusPending, Priority: model.PriorityMedium}
	require.NoError(t, taskRepo.Create(ctx, task))
	require.NoError(t, scheduleRepo.Create(ctx, &model.TaskSchedule{TaskID: task.ID, ScheduledDate: now.Add(-time.Minute)}))

	notifier := &fakeNotifier{}
	svc := NewReminderService(scheduleRepo, notifier)
	require.NoError(t, svc.SendDue(ctx, now))
	assert.Empty(t, notifier.sent)

	// Still unsent, so linking a chat later delivers it.
	due, err := scheduleRepo.ListDue(ctx, now)
	require.NoError(t, err)
	assert.Len(t, due, 1)
}
