package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

// EmailConfig holds SMTP settings for the email channel driver.
type EmailConfig struct {
	Host string `validate:"required"`
	Port int    `validate:"min=1,max=65535"`
	User string
	Pass string
	From string
}

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL  string `validate:"required"`
	LogLevel     string
	Environment  string
	HTTPAddr     string `validate:"required"`
	TimezoneName string
	Location     *time.Location `validate:"required"`

	NotificationSchedule string        `validate:"required"`
	OverdueSchedule      string        `validate:"required"`
	InitialRunDelay      time.Duration `validate:"min=0"`
	BirthdayAdvanceDays  int           `validate:"min=0"`
	PaymentAdvanceDays   int           `validate:"min=0"`

	Email EmailConfig

	TelegramToken      string // Optional. Empty disables the chat channel and the admin bot.
	AdminTelegramID    int64
	TelegramRatePerSec float64 `validate:"gt=0"`

	WebhookEnabled bool
	WebhookURL     string `validate:"required_if=WebhookEnabled true"`

	TraceExporter string `validate:"oneof=none stdout otlp"`
	OTLPEndpoint  string `validate:"required_if=TraceExporter otlp"`
	OTLPInsecure  bool
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getEnv("ENVIRONMENT", "development"))
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":3000")

	cfg.TimezoneName = getEnv("TIMEZONE", "Local")
	cfg.Location, err = time.LoadLocation(cfg.TimezoneName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	cfg.NotificationSchedule = getEnv("NOTIFICATION_SCHEDULE", "0 8 * * *") // Default: 08:00 daily
	cfg.OverdueSchedule = getEnv("OVERDUE_SCHEDULE", "0 0 * * *")           // Default: midnight daily

	if cfg.InitialRunDelay, err = time.ParseDuration(getEnv("INITIAL_RUN_DELAY", "5s")); err != nil {
		return nil, fmt.Errorf("invalid INITIAL_RUN_DELAY: %w", err)
	}
	if cfg.BirthdayAdvanceDays, err = strconv.Atoi(getEnv("BIRTHDAY_ADVANCE_DAYS", "1")); err != nil {
		return nil, fmt.Errorf("invalid BIRTHDAY_ADVANCE_DAYS: %w", err)
	}
	if cfg.PaymentAdvanceDays, err = strconv.Atoi(getEnv("PAYMENT_ADVANCE_DAYS", "3")); err != nil {
		return nil, fmt.Errorf("invalid PAYMENT_ADVANCE_DAYS: %w", err)
	}

	cfg.Email.Host = getEnv("EMAIL_HOST", "smtp.gmail.com")
	if cfg.Email.Port, err = strconv.Atoi(getEnv("EMAIL_PORT", "587")); err != nil {
		return nil, fmt.Errorf("invalid EMAIL_PORT: %w", err)
	}
	cfg.Email.User = os.Getenv("EMAIL_USER")
	cfg.Email.Pass = os.Getenv("EMAIL_PASS")
	cfg.Email.From = getEnv("EMAIL_FROM", cfg.Email.User)

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID"); adminIDStr != "" {
		cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}
	if cfg.TelegramRatePerSec, err = strconv.ParseFloat(getEnv("TELEGRAM_RATE_PER_SEC", "25"), 64); err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_RATE_PER_SEC: %w", err)
	}

	if cfg.WebhookEnabled, err = strconv.ParseBool(getEnv("WEBHOOK_ENABLED", "false")); err != nil {
		return nil, fmt.Errorf("invalid WEBHOOK_ENABLED: %w", err)
	}
	cfg.WebhookURL = os.Getenv("WEBHOOK_URL")

	cfg.TraceExporter = strings.ToLower(getEnv("OTEL_TRACES_EXPORTER", "none"))
	cfg.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	if cfg.OTLPInsecure, err = strconv.ParseBool(getEnv("OTEL_EXPORTER_OTLP_INSECURE", "true")); err != nil {
		return nil, fmt.Errorf("invalid OTEL_EXPORTER_OTLP_INSECURE: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
