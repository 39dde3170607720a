package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"commit-tracker/internal/apperror"
	"commit-tracker/internal/repository"
	"commit-tracker/internal/service"
)

// TaskHandler serves the task CRUD surface consumed by the presenter.
type TaskHandler struct {
	tasks *service.TaskService
}

func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

type createTaskRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Priority      string `json:"priority"`
	ParentID      *uint  `json:"parent_id"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	DueDate       string `json:"due_date"`
	Progress      int    `json:"progress"`
	ScheduledDate string `json:"scheduled_date"`
}

type updateTaskRequest struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Status      *string        `json:"status"`
	Priority    *string        `json:"priority"`
	Progress    *int           `json:"progress"`
	ParentID    optionalUint   `json:"parent_id"`
	StartDate   optionalString `json:"start_date"`
	EndDate     optionalString `json:"end_date"`
	DueDate     optionalString `json:"due_date"`
}

// ListHandler returns the caller's tasks, newest first, annotated with
// direct-children counts. Optional filters: status, created date range.
func (h *TaskHandler) ListHandler(c echo.Context) error {
	userID := currentUser(c)

	filter := repository.TaskFilter{Status: c.QueryParam("status")}
	if t, ok := parseDate(c.QueryParam("start_date")); ok {
		filter.CreatedFrom = &t
	}
	if t, ok := parseDate(c.QueryParam("end_date")); ok {
		filter.CreatedTo = &t
	}

	tasks, err := h.tasks.ListTasks(c.Request().Context(), userID, filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tasks": tasks})
}

// GetHandler returns one task with its schedule entries.
func (h *TaskHandler) GetHandler(c echo.Context) error {
	userID := currentUser(c)
	taskID, err := parseID(c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	task, schedules, err := h.tasks.GetTask(c.Request().Context(), userID, taskID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"task": task, "schedules": schedules})
}

func (h *TaskHandler) CreateHandler(c echo.Context) error {
	userID := currentUser(c)

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apperror.Validationf("invalid request body"))
	}

	input := service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		ParentID:    req.ParentID,
		Progress:    req.Progress,
	}
	if t, ok := parseDate(req.StartDate); ok {
		input.StartDate = &t
	}
	if t, ok := parseDate(req.EndDate); ok {
		input.EndDate = &t
	}
	if t, ok := parseDate(req.DueDate); ok {
		input.DueDate = &t
	}
	if t, ok := parseDate(req.ScheduledDate); ok {
		input.ScheduledDate = &t
	}

	task, err := h.tasks.CreateTask(c.Request().Context(), userID, input)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"task": task})
}

// UpdateHandler applies a partial update. Absent fields are left untouched;
// an explicit null clears nullable fields.
func (h *TaskHandler) UpdateHandler(c echo.Context) error {
	userID := currentUser(c)
	taskID, err := parseID(c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apperror.Validationf("invalid request body"))
	}

	upd := repository.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Progress:    req.Progress,
	}
	if req.ParentID.Set {
		if req.ParentID.Value == nil {
			upd.ClearParent = true
		} else {
			upd.ParentID = req.ParentID.Value
		}
	}
	var convErr error
	if req.StartDate.Set {
		if req.StartDate.Value == nil {
			upd.ClearStart = true
		} else if t, ok := parseDate(*req.StartDate.Value); ok {
			upd.StartDate = &t
		} else {
			convErr = apperror.Validationf("invalid start_date")
		}
	}
	if req.EndDate.Set {
		if req.EndDate.Value == nil {
			upd.ClearEnd = true
		} else if t, ok := parseDate(*req.EndDate.Value); ok {
			upd.EndDate = &t
		} else {
			convErr = apperror.Validationf("invalid end_date")
		}
	}
	if req.DueDate.Set {
		if req.DueDate.Value == nil {
			upd.ClearDue = true
		} else if t, ok := parseDate(*req.DueDate.Value); ok {
			upd.DueDate = &t
		} else {
			convErr = apperror.Validationf("invalid due_date")
		}
	}
	if convErr != nil {
		return writeError(c, convErr)
	}

	task, err := h.tasks.UpdateTask(c.Request().Context(), userID, taskID, upd)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"task": task})
}

func (h *TaskHandler) DeleteHandler(c echo.Context) error {
	userID := currentUser(c)
	taskID, err := parseID(c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	if err := h.tasks.DeleteTask(c.Request().Context(), userID, taskID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperror.Validationf("invalid id %q", raw)
	}
	return uint(id), nil
}
