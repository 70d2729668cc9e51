package commands

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"reminder_notifier/internal/app"
	domaintg "reminder_notifier/internal/domain/telegram"
	"reminder_notifier/internal/infra/config"
	idb "reminder_notifier/internal/infra/database"
	"reminder_notifier/internal/infra/email"
	"reminder_notifier/internal/infra/logger"
	"reminder_notifier/internal/infra/metrics"
	"reminder_notifier/internal/infra/telegram"
	"reminder_notifier/internal/infra/telemetry"
	"reminder_notifier/internal/infra/webhook"
)

// engine is the fully wired notification core shared by every subcommand.
type engine struct {
	cfg        *config.AppConfig
	db         *sql.DB
	bot        *telebot.Bot // nil without TELEGRAM_TOKEN
	registry   *prometheus.Registry
	persons    *idb.PostgresPersonRepository
	records    *idb.PostgresNotificationRepository
	dispatcher *app.ChannelDispatcher
	overdue    *app.OverdueTransitioner
	cycle      *app.ReviewCycle
	admin      *app.AdminService
	clock      app.Clock
}

// bootstrap loads configuration, initializes logging and connects to the store.
func bootstrap() (*config.AppConfig, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("could not load application configuration: %w", err)
	}
	logger.Init(cfg)
	logger.Log.WithFields(logrus.Fields{
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
		"timezone":    cfg.Location.String(),
	}).Info("Configuration loaded")

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to database: %w", err)
	}
	logger.Log.Info("Database connection established successfully.")
	return cfg, db, nil
}

const tracingShutdownTimeout = 5 * time.Second

// initTracing installs the configured tracer provider. The returned func
// flushes pending spans.
func initTracing(ctx context.Context, cfg *config.AppConfig) (func(), error) {
	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "reminder_notifier",
		ServiceVersion: buildVersion,
		Environment:    cfg.Environment,
		Exporter:       cfg.TraceExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		OTLPInsecure:   cfg.OTLPInsecure,
	})
	if err != nil {
		return nil, fmt.Errorf("could not initialize tracing: %w", err)
	}
	logger.Log.WithField("exporter", cfg.TraceExporter).Info("Tracing initialized")
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), tracingShutdownTimeout)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			logger.Log.WithError(err).Warn("Tracer provider did not shut down cleanly")
		}
	}, nil
}

func newEngine(cfg *config.AppConfig, db *sql.DB, poll bool) (*engine, error) {
	e := &engine{
		cfg:      cfg,
		db:       db,
		registry: prometheus.NewRegistry(),
		persons:  idb.NewPostgresPersonRepository(db, cfg.Location),
		records:  idb.NewPostgresNotificationRepository(db),
		clock:    app.SystemClock(cfg.Location),
	}
	e.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.New(e.registry)
	obligations := idb.NewPostgresObligationRepository(db, cfg.Location)

	var chatClient domaintg.Client
	if cfg.TelegramToken != "" {
		bot, err := newBot(cfg.TelegramToken, poll)
		if err != nil {
			return nil, fmt.Errorf("could not create Telegram bot: %w", err)
		}
		e.bot = bot
		chatClient = telegram.NewTelebotAdapter(bot, cfg.TelegramRatePerSec)
	} else {
		logger.Log.Warn("TELEGRAM_TOKEN not set; chat channel is not ready")
	}

	var sink app.IntegrationSink
	if cfg.WebhookEnabled {
		sink = webhook.NewSink(cfg.WebhookURL, nil)
	}

	emailDriver := email.NewDriver(cfg.Email)
	if !emailDriver.Ready() {
		logger.Log.Warn("EMAIL_USER/EMAIL_PASS not set; email channel is not ready")
	}

	drivers := []app.ChannelDriver{emailDriver, telegram.NewChatDriver(chatClient)}
	ledger := app.NewDeliveryLedger(e.records, e.clock, logger.Component("delivery_ledger"))
	e.dispatcher = app.NewChannelDispatcher(drivers, ledger, sink, collector, logger.Log.WithField("app", "notifier"))

	birthdays := app.NewBirthdayDetector(e.persons, e.dispatcher, cfg.BirthdayAdvanceDays, e.clock, logger.Log.WithField("app", "notifier"))
	payments := app.NewPaymentDetector(obligations, e.dispatcher, cfg.PaymentAdvanceDays, e.clock, logger.Log.WithField("app", "notifier"))
	e.overdue = app.NewOverdueTransitioner(obligations, e.clock, collector, logger.Log.WithField("app", "notifier"))
	e.cycle = app.NewReviewCycle(birthdays, payments, e.overdue, e.clock, collector, logger.Log.WithField("app", "notifier"))
	e.admin = app.NewAdminService(e.persons, e.cycle, e.dispatcher, cfg.AdminTelegramID)
	return e, nil
}

func newBot(token string, poll bool) (*telebot.Bot, error) {
	pref := telebot.Settings{
		Token: token,
		OnError: func(err error, c telebot.Context) { // Global error handler
			entry := logger.Log.WithError(err).WithField("component", "telebot")
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "chat_id": c.Chat().ID, "text": c.Text()})
			}
			entry.Error("Telegram bot error")
		},
	}
	if poll {
		pref.Poller = &telebot.LongPoller{Timeout: 10 * time.Second}
	}
	return telebot.NewBot(pref)
}

// registerBotHandlers wires the admin and start/help commands onto the bot.
func (e *engine) registerBotHandlers(ctx context.Context) {
	if e.bot == nil {
		return
	}
	baseLogger := logger.Component("telegram")
	telegram.RegisterBotCommands(e.bot, telegram.NewBotCommands(ctx, e.cfg.AdminTelegramID, e.persons, baseLogger))
	telegram.RegisterAdminHandlers(e.bot, telegram.NewAdminHandlers(ctx, e.admin, e.clock.Now, baseLogger))
	logger.Log.Info("Telegram command handlers registered.")
}
