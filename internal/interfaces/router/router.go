package router

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"lokl-mora-backend/internal/application/analytics"
	"lokl-mora-backend/internal/application/arrears"
	"lokl-mora-backend/internal/application/automations"
	"lokl-mora-backend/internal/application/dashboard"
	"lokl-mora-backend/internal/application/emails"
	healthsvc "lokl-mora-backend/internal/application/health"
	"lokl-mora-backend/internal/application/insights"
	"lokl-mora-backend/internal/application/reports"
	"lokl-mora-backend/internal/application/settings"
	"lokl-mora-backend/internal/application/subscriptions"
	"lokl-mora-backend/internal/config"
	"lokl-mora-backend/internal/infrastructure/database"
	"lokl-mora-backend/internal/infrastructure/scheduler"
	analyticshandler "lokl-mora-backend/internal/interfaces/handlers/analytics"
	autohandler "lokl-mora-backend/internal/interfaces/handlers/automations"
	dashhandler "lokl-mora-backend/internal/interfaces/handlers/dashboard"
	healthhandler "lokl-mora-backend/internal/interfaces/handlers/health"
	insightshandler "lokl-mora-backend/internal/interfaces/handlers/insights"
	subhandler "lokl-mora-backend/internal/interfaces/handlers/subscriptions"
	"lokl-mora-backend/internal/middleware"
	"lokl-mora-backend/internal/pkg/apperrors"
	"lokl-mora-backend/internal/pkg/clock"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// App bundles the HTTP app with the resources main must start and release.
type App struct {
	Fiber     *fiber.App
	DB        *gorm.DB
	Rdb       *redis.Client
	Scheduler *scheduler.Scheduler
}

// CreateApp connects to Postgres and Redis from cfg and builds the app.
func CreateApp(cfg *config.Config) (*App, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("%w: DATABASE_URL is required", apperrors.ErrConfiguration)
	}
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w: %v", apperrors.ErrExternalIO, err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w: %v", apperrors.ErrExternalIO, err)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("%w: REDIS_URL: %v", apperrors.ErrConfiguration, err)
		}
		rdb = redis.NewClient(opts)
	} else {
		log.Warn().Msg("REDIS_URL not set; health stats disabled and settings kept in memory")
	}
	return NewApp(cfg, db, rdb)
}

// NewApp wires services, routes and the scheduler on top of open connections. rdb may be nil.
func NewApp(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*App, error) {
	clk := clock.Clock{Location: cfg.Location}
	repo := &database.Repository{DB: db, Location: cfg.Location}
	arrearsSvc := &arrears.Service{Repo: repo, Clock: clk}
	store := &settings.Store{Rdb: rdb, Default: cfg.EmailFrequency}

	autoSvc := &automations.Service{
		Repo:        repo,
		Arrears:     arrearsSvc,
		Reports:     &reports.Service{Arrears: arrearsSvc, Dir: cfg.ReportsDir, Clock: clk},
		Sender:      mailSender(cfg),
		Settings:    store,
		Clock:       clk,
		SendTimeout: cfg.EmailSendTimeout,
	}

	initCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	freq, err := store.EmailFrequency(initCtx)
	if err != nil {
		log.Warn().Err(err).Str("default", cfg.EmailFrequency).Msg("Falling back to configured email frequency")
		freq = cfg.EmailFrequency
	}
	sched, err := scheduler.New(scheduler.Config{
		Location:       cfg.Location,
		ReportSpec:     cfg.CronReport,
		SnapshotSpec:   cfg.CronSnapshot,
		EmailFrequency: freq,
	}, scheduler.Jobs{
		Report:   autoSvc.ReportJob,
		Snapshot: autoSvc.SnapshotJob,
		Email:    autoSvc.EmailJob,
	})
	if err != nil {
		return nil, err
	}
	autoSvc.Scheduler = sched

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler(rdb),
		EnableTrustedProxyCheck: true,
	})
	app.Use(middleware.Tracing())
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}, cfg.IsProduction()))
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		Checker:        &healthsvc.Checker{Rdb: rdb, DB: &database.Pinger{DB: db}},
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	app.Static(reports.PublicRoute, cfg.ReportsDir)

	api := app.Group("/api")

	dh := &dashhandler.Handlers{Service: &dashboard.Service{Repo: repo, Clock: clk}}
	api.Get("/dashboard/stats", dh.Stats)

	ah := &analyticshandler.Handlers{Service: &analytics.Service{Repo: repo, Clock: clk}}
	ag := api.Group("/analytics")
	ag.Get("/expected-vs-actual", ah.ExpectedVsActual)
	ag.Get("/monthly-overdue", ah.MonthlyOverdue)
	ag.Get("/overdue-by-project", ah.OverdueByProject)

	sh := &subhandler.Handlers{Service: &subscriptions.Service{Repo: repo, Clock: clk}}
	api.Get("/subscriptions/active", sh.Active)
	api.Get("/subscriptions", sh.List)

	ih := &insightshandler.Handlers{Service: &insights.Service{Repo: repo, Clock: clk}}
	ig := api.Group("/insights")
	ig.Get("/customer-segmentation", ih.CustomerSegmentation)
	ig.Get("/payment-patterns", ih.PaymentPatterns)

	auh := &autohandler.Handlers{Service: autoSvc}
	aug := api.Group("/automations")
	aug.Get("/generate-report", auh.GenerateReport)
	aug.Post("/send-emails", auh.SendEmails)
	aug.Post("/update-overdue-table", auh.UpdateOverdueTable)
	aug.Get("/execution-history", auh.ExecutionHistory)
	aug.Post("/set-email-frequency", auh.SetEmailFrequency)
	aug.Get("/users-in-mora", auh.UsersInMora)

	return &App{Fiber: app, DB: db, Rdb: rdb, Scheduler: sched}, nil
}

func mailSender(cfg *config.Config) emails.Sender {
	if cfg.SendinblueAPIKey != "" {
		return &emails.BrevoClient{
			APIKey:   cfg.SendinblueAPIKey,
			MailFrom: cfg.MailFrom,
			FromName: cfg.MailFromName,
			Client:   &http.Client{Timeout: cfg.EmailSendTimeout},
		}
	}
	log.Warn().Msg("SENDINBLUE_API_KEY not set; reminders are written as HTML previews")
	return &emails.PreviewSender{
		Dir:       filepath.Join(cfg.ReportsDir, "previews"),
		URLPrefix: reports.PublicRoute + "/previews",
	}
}

// Close releases the scheduler and connections.
func (a *App) Close(ctx context.Context) error {
	if a.Scheduler != nil {
		if err := a.Scheduler.Stop(ctx); err != nil {
			log.Warn().Err(err).Msg("Scheduler did not stop in time")
		}
	}
	if a.Rdb != nil {
		_ = a.Rdb.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			return sqlDB.Close()
		}
	}
	return nil
}
