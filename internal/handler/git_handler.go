package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"commit-tracker/internal/apperror"
	"commit-tracker/internal/repository"
	"commit-tracker/internal/service"
	"commit-tracker/internal/summarize"
)

// GitHandler receives commit events from local scripts or webhooks and
// serves the synchronized commit history.
type GitHandler struct {
	sync       *service.SyncService
	commitRepo *repository.CommitRepository
}

func NewGitHandler(sync *service.SyncService, commitRepo *repository.CommitRepository) *GitHandler {
	return &GitHandler{sync: sync, commitRepo: commitRepo}
}

type commitEventRequest struct {
	Message string `json:"message"`
	Branch  string `json:"branch"`
	Commit  *struct {
		Hash   string                `json:"hash"`
		Branch string                `json:"branch"`
		Date   string                `json:"date"`
		Stats  summarize.ChangeStats `json:"stats"`
	} `json:"commit"`
}

// CommitHandler synchronizes one commit event. Authentication is optional:
// anonymous events are acknowledged with a summary but persist nothing.
func (h *GitHandler) CommitHandler(c echo.Context) error {
	var req commitEventRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apperror.Validationf("invalid request body"))
	}
	if req.Message == "" || req.Commit == nil {
		return writeError(c, apperror.Validationf("commit message and commit info are required"))
	}

	event := service.CommitEvent{
		Message: req.Message,
		Branch:  req.Branch,
		Commit: service.CommitMeta{
			Hash:   req.Commit.Hash,
			Branch: req.Commit.Branch,
			Stats:  req.Commit.Stats,
		},
	}
	// Commit timestamps arrive as ISO-8601; an unparsable one falls back
	// to the arrival time rather than rejecting the whole event.
	if t, ok := parseDate(req.Commit.Date); ok {
		event.Commit.Date = t
	}

	result, err := h.sync.Sync(c.Request().Context(), currentUser(c), event)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"summary": result.Summary,
		"commit":  result.Hash,
	})
}

// ListCommitsHandler returns the caller's synchronized commits, most recent
// first.
func (h *GitHandler) ListCommitsHandler(c echo.Context) error {
	userID := currentUser(c)

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	commits, err := h.commitRepo.ListByUser(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"commits": commits})
}
