package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"commit-tracker/internal/apperror"
	"commit-tracker/internal/model"
)

// TaskRepository handles CRUD for tasks, including the parent/child forest
// and the commit-keyed upsert the git sync relies on.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// TaskFilter narrows List results.
type TaskFilter struct {
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// TaskUpdate carries an explicit partial field set. A nil pointer leaves the
// column untouched; the Clear flags set nullable columns back to NULL.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	Progress    *int

	ParentID    *uint
	ClearParent bool

	StartDate  *time.Time
	ClearStart bool
	EndDate    *time.Time
	ClearEnd   bool
	DueDate    *time.Time
	ClearDue   bool
}

// Empty reports whether the update would touch nothing.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil &&
		u.Priority == nil && u.Progress == nil &&
		u.ParentID == nil && !u.ClearParent &&
		u.StartDate == nil && !u.ClearStart &&
		u.EndDate == nil && !u.ClearEnd &&
		u.DueDate == nil && !u.ClearDue
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// FindByID fetches a single task scoped to its owner.
func (r *TaskRepository) FindByID(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).First(&task).Error
	switch {
	case err == nil:
		return &task, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperror.ErrNotFound
	default:
		return nil, fmt.Errorf("find task: %w", err)
	}
}

// List returns the owner's tasks newest first, each annotated with the
// number of direct children.
func (r *TaskRepository) List(ctx context.Context, userID uint, filter TaskFilter) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		q = q.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		q = q.Where("created_at <= ?", *filter.CreatedTo)
	}

	var tasks []model.Task
	if err := q.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	counts, err := r.childCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i].ChildrenCount = counts[tasks[i].ID]
	}
	return tasks, nil
}

// ListTree returns the owner's root tasks with their descendants attached.
// The forest is resolved from one flat fetch through a parent-id index.
func (r *TaskRepository) ListTree(ctx context.Context, userID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return buildForest(tasks), nil
}

func buildForest(tasks []model.Task) []model.Task {
	byID := make(map[uint]struct{}, len(tasks))
	for i := range tasks {
		byID[tasks[i].ID] = struct{}{}
	}

	children := make(map[uint][]*model.Task)
	var roots []*model.Task
	for i := range tasks {
		t := &tasks[i]
		if t.ParentID != nil {
			if _, ok := byID[*t.ParentID]; ok {
				children[*t.ParentID] = append(children[*t.ParentID], t)
				continue
			}
		}
		// Tasks whose parent is outside the snapshot render as roots.
		roots = append(roots, t)
	}

	var resolve func(t *model.Task) model.Task
	resolve = func(t *model.Task) model.Task {
		out := *t
		out.Children = nil
		for _, c := range children[t.ID] {
			out.Children = append(out.Children, resolve(c))
		}
		out.ChildrenCount = len(out.Children)
		return out
	}

	result := make([]model.Task, 0, len(roots))
	for _, root := range roots {
		result = append(result, resolve(root))
	}
	return result
}

// Update applies a partial field set and returns the fresh row.
// A parent change that would make the task its own ancestor is rejected.
func (r *TaskRepository) Update(ctx context.Context, userID, taskID uint, upd TaskUpdate) (*model.Task, error) {
	task, err := r.FindByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if upd.ParentID != nil {
		if err := r.checkNoCycle(ctx, userID, taskID, *upd.ParentID); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{}
	if upd.Title != nil {
		updates["title"] = *upd.Title
	}
	if upd.Description != nil {
		updates["description"] = *upd.Description
	}
	if upd.Status != nil {
		updates["status"] = *upd.Status
	}
	if upd.Priority != nil {
		updates["priority"] = *upd.Priority
	}
	if upd.Progress != nil {
		updates["progress"] = *upd.Progress
	}
	switch {
	case upd.ClearParent:
		updates["parent_id"] = nil
	case upd.ParentID != nil:
		updates["parent_id"] = *upd.ParentID
	}
	switch {
	case upd.ClearStart:
		updates["start_date"] = nil
	case upd.StartDate != nil:
		updates["start_date"] = *upd.StartDate
	}
	switch {
	case upd.ClearEnd:
		updates["end_date"] = nil
	case upd.EndDate != nil:
		updates["end_date"] = *upd.EndDate
	}
	switch {
	case upd.ClearDue:
		updates["due_date"] = nil
	case upd.DueDate != nil:
		updates["due_date"] = *upd.DueDate
	}

	if len(updates) == 0 {
		return task, nil
	}

	if err := r.db.WithContext(ctx).Model(task).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return r.FindByID(ctx, userID, taskID)
}

// checkNoCycle walks up from the proposed parent; hitting taskID means the
// change would close a loop.
func (r *TaskRepository) checkNoCycle(ctx context.Context, userID, taskID, parentID uint) error {
	if parentID == taskID {
		return apperror.Validationf("task cannot be its own parent")
	}
	current := parentID
	for current != 0 {
		parent, err := r.FindByID(ctx, userID, current)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return apperror.Validationf("parent task %d not found", parentID)
			}
			return err
		}
		if parent.ParentID == nil {
			return nil
		}
		if *parent.ParentID == taskID {
			return apperror.Validationf("task cannot become its own ancestor")
		}
		current = *parent.ParentID
	}
	return nil
}

// Delete removes a task together with its descendant subtree and every
// schedule entry belonging to the removed tasks.
func (r *TaskRepository) Delete(ctx context.Context, userID, taskID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&model.Task{}).
			Where("user_id = ? AND id = ?", userID, taskID).
			Count(&exists).Error; err != nil {
			return fmt.Errorf("find task: %w", err)
		}
		if exists == 0 {
			return apperror.ErrNotFound
		}

		ids := []uint{taskID}
		frontier := []uint{taskID}
		for len(frontier) > 0 {
			var children []uint
			if err := tx.Model(&model.Task{}).
				Where("user_id = ? AND parent_id IN ?", userID, frontier).
				Pluck("id", &children).Error; err != nil {
				return fmt.Errorf("collect subtree: %w", err)
			}
			ids = append(ids, children...)
			frontier = children
		}

		if err := tx.Where("task_id IN ?", ids).Delete(&model.TaskSchedule{}).Error; err != nil {
			return fmt.Errorf("delete schedules: %w", err)
		}
		if err := tx.Where("id IN ?", ids).Delete(&model.Task{}).Error; err != nil {
			return fmt.Errorf("delete tasks: %w", err)
		}
		return nil
	})
}

// UpsertCommitTask inserts a task for an unseen commit hash; a duplicate
// delivery only refreshes the summary, branch and updated-at. The unique
// index on git_commit_hash is the serialization point for concurrent
// deliveries of the same hash.
func (r *TaskRepository) UpsertCommitTask(ctx context.Context, task *model.Task) error {
	if task.GitCommitHash == nil || *task.GitCommitHash == "" {
		return apperror.Validationf("commit hash is required")
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "git_commit_hash"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"git_summary": task.GitSummary,
			"git_branch":  task.GitBranch,
			"updated_at":  time.Now(),
		}),
	}).Create(task).Error
	if err != nil {
		return fmt.Errorf("upsert commit task: %w", err)
	}
	return nil
}

func (r *TaskRepository) childCounts(ctx context.Context, userID uint) (map[uint]int, error) {
	type row struct {
		ParentID uint
		Cnt      int
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("parent_id, COUNT(*) as cnt").
		Where("user_id = ? AND parent_id IS NOT NULL", userID).
		Group("parent_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count children: %w", err)
	}
	counts := make(map[uint]int, len(rows))
	for _, r := range rows {
		counts[r.ParentID] = r.Cnt
	}
	return counts, nil
}
