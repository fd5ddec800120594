package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"lokl-mora-backend/internal/config"
	"lokl-mora-backend/internal/interfaces/router"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	setupLogger(cfg)

	app, err := router.CreateApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("app create")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if app.Rdb != nil {
		if err := app.Rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		log.Info().Msg("Redis connected")
	}
	if cfg.SchedulerEnabled {
		app.Scheduler.Start(ctx)
		log.Info().
			Str("email_frequency", app.Scheduler.EmailFrequency()).
			Time("next_email_run", app.Scheduler.NextEmailRun()).
			Msg("Automations scheduled")
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("timezone", cfg.Timezone).Msg("Server running")
		if err := app.Fiber.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("listen")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Fiber.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown")
	}
	if err := app.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("close resources")
	}
}
