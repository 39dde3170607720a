// Package bootstrap wires configuration, storage, services and HTTP routes
// into a runnable application.
package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"commit-tracker/internal/auth"
	"commit-tracker/internal/config"
	"commit-tracker/internal/handler"
	"commit-tracker/internal/logger"
	"commit-tracker/internal/notify"
	"commit-tracker/internal/repository"
	"commit-tracker/internal/service"
	"commit-tracker/internal/summarize"
)

type App struct {
	Echo      *echo.Echo
	DB        *gorm.DB
	Scheduler *service.SchedulerService

	cfg config.Config
}

func NewApp() *App {
	return &App{Echo: echo.New()}
}

func (a *App) Initialize(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger.Init(cfg.LogLevel)
	log.Info().Msg("configuration loaded")

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	a.DB = db

	taskRepo := repository.NewTaskRepository(db)
	commitRepo := repository.NewCommitRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	userRepo := repository.NewUserRepository(db)

	var completer summarize.Completer
	if cfg.OpenAIAPIKey != "" {
		completer = summarize.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.SummaryTimeout)
	} else {
		log.Warn().Msg("OPENAI_API_KEY not set, summaries fall back to truncated commit messages")
	}
	summarizer := summarize.New(completer)

	taskSvc := service.NewTaskService(taskRepo, scheduleRepo)
	syncSvc := service.NewSyncService(commitRepo, taskRepo, userRepo, summarizer, cfg.SummaryTimeout)
	chartSvc := service.NewChartService(taskRepo, statsRepo, commitRepo)

	tm := auth.NewTokenManager(cfg.JWTSecret)

	taskHandler := handler.NewTaskHandler(taskSvc)
	gitHandler := handler.NewGitHandler(syncSvc, commitRepo)
	chartHandler := handler.NewChartHandler(chartSvc)

	a.registerMiddlewares()
	a.registerRoutes(tm, taskHandler, gitHandler, chartHandler)

	if err := a.setupReminders(scheduleRepo); err != nil {
		return err
	}

	return nil
}

func (a *App) registerMiddlewares() {
	a.Echo.HideBanner = true
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

func (a *App) registerRoutes(tm *auth.TokenManager, taskHandler *handler.TaskHandler, gitHandler *handler.GitHandler, chartHandler *handler.ChartHandler) {
	a.Echo.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	api := a.Echo.Group("/api")

	gitGroup := api.Group("/git")
	gitGroup.POST("/commit", gitHandler.CommitHandler, handler.OptionalAuth(tm))
	gitGroup.GET("/commits", gitHandler.ListCommitsHandler, handler.RequireAuth(tm))

	taskGroup := api.Group("/tasks", handler.RequireAuth(tm))
	taskGroup.GET("/list", taskHandler.ListHandler)
	taskGroup.GET("/:id", taskHandler.GetHandler)
	taskGroup.POST("/create", taskHandler.CreateHandler)
	taskGroup.PUT("/:id", taskHandler.UpdateHandler)
	taskGroup.DELETE("/:id", taskHandler.DeleteHandler)

	chartGroup := api.Group("/charts", handler.RequireAuth(tm))
	chartGroup.GET("/timeline", chartHandler.TimelineHandler)
	chartGroup.GET("/stats", chartHandler.StatsHandler)
	chartGroup.GET("/progress", chartHandler.ProgressHandler)
}

// setupReminders starts the periodic reminder sweep when a Telegram token
// is configured; without one due entries simply stay unsent.
func (a *App) setupReminders(scheduleRepo *repository.ScheduleRepository) error {
	if a.cfg.TelegramToken == "" {
		log.Info().Msg("TELEGRAM_TOKEN not set, reminder delivery disabled")
		return nil
	}

	notifier, err := notify.NewTelegram(a.cfg.TelegramToken)
	if err != nil {
		return err
	}
	reminderSvc := service.NewReminderService(scheduleRepo, notifier)

	a.Scheduler = service.NewSchedulerService(time.Local)
	_, err = a.Scheduler.ScheduleInterval(a.cfg.ReminderInterval, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := reminderSvc.SendDue(jobCtx, time.Now()); err != nil {
			log.Error().Err(err).Msg("reminder sweep failed")
		}
	})
	if err != nil {
		return err
	}
	a.Scheduler.Start()
	return nil
}

func (a *App) Run() error {
	return a.Echo.Start(":" + a.cfg.AppPort)
}

// Shutdown stops the scheduler, the HTTP server and the database.
func (a *App) Shutdown(ctx context.Context) error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if err := a.Echo.Shutdown(ctx); err != nil {
		return err
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			return sqlDB.Close()
		}
	}
	return nil
}
