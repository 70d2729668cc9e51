package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"reminder_notifier/internal/infra/httpapi"
	"reminder_notifier/internal/infra/logger"
	"reminder_notifier/internal/infra/scheduler"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler, HTTP API and Telegram bot until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer db.Close()

	stopTracing, err := initTracing(ctx, cfg)
	if err != nil {
		return err
	}
	defer stopTracing()

	e, err := newEngine(cfg, db, true)
	if err != nil {
		return err
	}

	notifScheduler := scheduler.NewNotificationScheduler(e.cycle, e.overdue, scheduler.Config{
		NotificationSchedule: cfg.NotificationSchedule,
		OverdueSchedule:      cfg.OverdueSchedule,
		InitialRunDelay:      cfg.InitialRunDelay,
		Location:             cfg.Location,
	}, logger.Log.WithField("app", "notifier"))
	if err := notifScheduler.Start(); err != nil {
		return fmt.Errorf("could not start scheduler: %w", err)
	}

	if cfg.Environment == "production" || cfg.Environment == "staging" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.NewRouter(httpapi.Deps{
		Cycle:    e.cycle,
		Records:  e.records,
		Status:   e.dispatcher,
		DB:       db,
		Gatherer: e.registry,
		Now:      e.clock.Now,
		Logger:   logger.Component("http"),
	})
	server := httpapi.NewServer(cfg.HTTPAddr, router, logger.Log.WithField("app", "notifier"))
	server.Start()

	e.registerBotHandlers(ctx)
	if e.bot != nil {
		go e.bot.Start()
	}

	logger.Log.Info("Application setup complete. Waiting for shutdown signal...")
	<-ctx.Done()

	logger.Log.Info("Shutting down application...")
	if e.bot != nil {
		e.bot.Stop()
	}
	notifScheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("HTTP server did not shut down cleanly")
	}
	logger.Log.Info("Application shut down gracefully.")
	return nil
}
