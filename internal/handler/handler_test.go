package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"commit-tracker/internal/auth"
	"commit-tracker/internal/model"
	"commit-tracker/internal/repository"
	"commit-tracker/internal/service"
	"commit-tracker/internal/summarize"
)

type testServer struct {
	echo   *echo.Echo
	db     *gorm.DB
	tokens *auth.TokenManager
	userID uint
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := repository.NewDB("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)

	user := &model.User{Email: "handler@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)

	taskRepo := repository.NewTaskRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	commitRepo := repository.NewCommitRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	taskService := service.NewTaskService(taskRepo, scheduleRepo)
	syncService := service.NewSyncService(commitRepo, taskRepo, repository.NewUserRepository(db), summarize.New(nil), time.Second)
	chartService := service.NewChartService(taskRepo, statsRepo, commitRepo)

	tokens := auth.NewTokenManager("test-secret")

	taskHandler := NewTaskHandler(taskService)
	gitHandler := NewGitHandler(syncService, commitRepo)
	chartHandler := NewChartHandler(chartService)

	// Mirrors the bootstrap route table.
	e := echo.New()
	api := e.Group("/api")

	gitGroup := api.Group("/git")
	gitGroup.POST("/commit", gitHandler.CommitHandler, OptionalAuth(tokens))
	gitGroup.GET("/commits", gitHandler.ListCommitsHandler, RequireAuth(tokens))

	taskGroup := api.Group("/tasks", RequireAuth(tokens))
	taskGroup.GET("/list", taskHandler.ListHandler)
	taskGroup.GET("/:id", taskHandler.GetHandler)
	taskGroup.POST("/create", taskHandler.CreateHandler)
	taskGroup.PUT("/:id", taskHandler.UpdateHandler)
	taskGroup.DELETE("/:id", taskHandler.DeleteHandler)

	chartGroup := api.Group("/charts", RequireAuth(tokens))
	chartGroup.GET("/timeline", chartHandler.TimelineHandler)
	chartGroup.GET("/stats", chartHandler.StatsHandler)
	chartGroup.GET("/progress", chartHandler.ProgressHandler)

	return &testServer{echo: e, db: db, tokens: tokens, userID: user.ID}
}

// do performs a request, optionally authenticated as the seeded user.
func (s *testServer) do(t *testing.T, method, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if authed {
		token, err := s.tokens.Issue(s.userID, time.Hour)
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRequireAuthRejectsMissingAndBadTokens(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/tasks/list", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/list", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-token")
	rec2 := httptest.NewRecorder()
	s.echo.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusUnauthorized, rec2.Code)
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/tasks/create",
		`{"title":"Ship timeline view","priority":"high","due_date":"2024-06-30"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	created := decode(t, rec)["task"].(map[string]interface{})
	assert.EqualValues(t, 1, created["id"])
	assert.Equal(t, "Ship timeline view", created["title"])
	assert.Equal(t, "pending", created["status"])

	rec = s.do(t, http.MethodGet, "/api/tasks/list", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	tasks := decode(t, rec)["tasks"].([]interface{})
	require.Len(t, tasks, 1)

	rec = s.do(t, http.MethodPut, "/api/tasks/1",
		`{"status":"in_progress","progress":40,"due_date":null}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode(t, rec)["task"].(map[string]interface{})
	assert.Equal(t, "in_progress", updated["status"])
	assert.EqualValues(t, 40, updated["progress"])
	assert.Nil(t, updated["due_date"], "explicit null clears the due date")
	assert.Equal(t, "Ship timeline view", updated["title"], "absent fields are untouched")

	rec = s.do(t, http.MethodDelete, "/api/tasks/1", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["success"])

	rec = s.do(t, http.MethodGet, "/api/tasks/1", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTaskValidationErrorsOverHTTP(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/tasks/create", `{"title":"   "}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/tasks/create", `{"title":"ok","priority":"urgent"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/tasks/abc", `{"progress":10}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGitCommitEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/git/commit", `{"message":"no commit info"}`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Anonymous delivery: acknowledged with a summary, nothing persisted.
	rec = s.do(t, http.MethodPost, "/api/git/commit",
		`{"message":"Fix login bug","commit":{"hash":"abc123","stats":{"filesChanged":2,"insertions":10,"deletions":3}}}`, false)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Fix login bug", body["summary"])
	assert.Equal(t, "abc123", body["commit"])

	var count int64
	require.NoError(t, s.db.Model(&model.Commit{}).Count(&count).Error)
	assert.Zero(t, count)

	// Authenticated delivery persists the commit and its task.
	rec = s.do(t, http.MethodPost, "/api/git/commit",
		`{"message":"Fix login bug","branch":"main","commit":{"hash":"abc123","date":"2024-05-02T14:30:00Z"}}`, true)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, s.db.Model(&model.Commit{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	rec = s.do(t, http.MethodGet, "/api/git/commits", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	commits := decode(t, rec)["commits"].([]interface{})
	require.Len(t, commits, 1)
}

func TestChartEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/tasks/create",
		`{"title":"Plan release","start_date":"2024-03-04","end_date":"2024-03-22"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/charts/timeline", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	layout := body["layout"].(map[string]interface{})
	assert.EqualValues(t, 6, layout["total_weeks"], "March 2024 spans six Sunday-aligned weeks")
	require.Len(t, body["tasks"].([]interface{}), 1)

	rec = s.do(t, http.MethodGet, "/api/charts/stats", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/charts/progress?days=14", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
}
