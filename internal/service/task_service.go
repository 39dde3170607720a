package service

import (
	"context"
	"strings"
	"time"

	"commit-tracker/internal/apperror"
	"commit-tracker/internal/model"
	"commit-tracker/internal/repository"
)

const maxTitleLength = 500

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title         string
	Description   string
	Priority      string
	ParentID      *uint
	StartDate     *time.Time
	EndDate       *time.Time
	DueDate       *time.Time
	Progress      int
	ScheduledDate *time.Time
}

// TaskService wraps task-related business logic.
type TaskService struct {
	taskRepo     *repository.TaskRepository
	scheduleRepo *repository.ScheduleRepository
}

func NewTaskService(taskRepo *repository.TaskRepository, scheduleRepo *repository.ScheduleRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo, scheduleRepo: scheduleRepo}
}

func (s *TaskService) CreateTask(ctx context.Context, userID uint, input TaskInput) (*model.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperror.Validationf("title is required")
	}
	if len(title) > maxTitleLength {
		return nil, apperror.Validationf("title exceeds %d characters", maxTitleLength)
	}

	priority := input.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !model.ValidPriority(priority) {
		return nil, apperror.Validationf("unknown priority %q", priority)
	}
	if input.Progress < 0 || input.Progress > 100 {
		return nil, apperror.Validationf("progress must be between 0 and 100")
	}

	task := model.Task{
		UserID:      userID,
		ParentID:    input.ParentID,
		Title:       title,
		Description: input.Description,
		Status:      model.StatusPending,
		Priority:    priority,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		DueDate:     input.DueDate,
		Progress:    input.Progress,
	}

	if input.ParentID != nil {
		// Parent must exist and belong to the same owner.
		if _, err := s.taskRepo.FindByID(ctx, userID, *input.ParentID); err != nil {
			if err == apperror.ErrNotFound {
				return nil, apperror.Validationf("parent task %d not found", *input.ParentID)
			}
			return nil, err
		}
	}

	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}

	if input.ScheduledDate != nil {
		schedule := model.TaskSchedule{TaskID: task.ID, ScheduledDate: *input.ScheduledDate}
		if err := s.scheduleRepo.Create(ctx, &schedule); err != nil {
			return nil, err
		}
	}

	return &task, nil
}

func (s *TaskService) ListTasks(ctx context.Context, userID uint, filter repository.TaskFilter) ([]model.Task, error) {
	if filter.Status != "" && !model.ValidStatus(filter.Status) {
		return nil, apperror.Validationf("unknown status %q", filter.Status)
	}
	return s.taskRepo.List(ctx, userID, filter)
}

// GetTask returns a task together with its schedule entries.
func (s *TaskService) GetTask(ctx context.Context, userID, taskID uint) (*model.Task, []model.TaskSchedule, error) {
	task, err := s.taskRepo.FindByID(ctx, userID, taskID)
	if err != nil {
		return nil, nil, err
	}
	schedules, err := s.scheduleRepo.ListByTask(ctx, task.ID)
	if err != nil {
		return nil, nil, err
	}
	return task, schedules, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID uint, upd repository.TaskUpdate) (*model.Task, error) {
	if upd.Empty() {
		return nil, apperror.Validationf("no fields to update")
	}
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, apperror.Validationf("title cannot be empty")
		}
		if len(title) > maxTitleLength {
			return nil, apperror.Validationf("title exceeds %d characters", maxTitleLength)
		}
		upd.Title = &title
	}
	if upd.Status != nil && !model.ValidStatus(*upd.Status) {
		return nil, apperror.Validationf("unknown status %q", *upd.Status)
	}
	if upd.Priority != nil && !model.ValidPriority(*upd.Priority) {
		return nil, apperror.Validationf("unknown priority %q", *upd.Priority)
	}
	if upd.Progress != nil && (*upd.Progress < 0 || *upd.Progress > 100) {
		return nil, apperror.Validationf("progress must be between 0 and 100")
	}
	return s.taskRepo.Update(ctx, userID, taskID, upd)
}

// DeleteTask removes a task, its descendant subtree and their schedules.
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID uint) error {
	return s.taskRepo.Delete(ctx, userID, taskID)
}
