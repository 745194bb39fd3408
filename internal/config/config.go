package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"

	"pet-medication-reminder/internal/models"
)

const (
	ModePolling = "polling"
	ModeWebhook = "webhook"

	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// secretsDir is where Docker secrets are mounted.
var secretsDir = "/run/secrets"

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
}

func (t TwilioConfig) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.From != ""
}

type Config struct {
	TelegramToken  string
	TelegramMode   string
	WebhookSecret  string
	AdminJWTSecret string

	StorageBackend string
	DBPath         string
	DBURL          string

	Port      string
	Location  *time.Location
	SweepCron string
	PetName   string
	Registry  models.Registry
	Twilio    TwilioConfig
	LogLevel  string
}

// ConfigurationError is a missing or invalid setting. The process must not start with one.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}

// Load reads settings from the environment (and Docker secrets for credentials).
// Every invalid setting is reported, joined into one error.
func Load() (*Config, error) {
	cfg := &Config{
		TelegramToken:  secret("TELEGRAM_BOT_TOKEN"),
		TelegramMode:   strings.ToLower(getEnv("TELEGRAM_MODE", ModePolling)),
		WebhookSecret:  secret("TELEGRAM_WEBHOOK_SECRET"),
		AdminJWTSecret: secret("ADMIN_JWT_SECRET"),
		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendSQLite)),
		DBPath:         getEnv("DB_PATH", filepath.Join("data", "reminder.db")),
		DBURL:          secret("DB_URL"),
		Port:           getEnv("PORT", "8080"),
		SweepCron:      getEnv("SWEEP_CRON", "0 9 * * *"),
		PetName:        getEnv("PET_NAME", "隊長"),
		Twilio: TwilioConfig{
			AccountSID: secret("TWILIO_ACCOUNT_SID"),
			AuthToken:  secret("TWILIO_AUTH_TOKEN"),
			From:       getEnv("TWILIO_PHONE_NUMBER", ""),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	var errs []error

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "Asia/Taipei"))
	if err != nil {
		errs = append(errs, &ConfigurationError{Field: "TIMEZONE", Reason: err.Error()})
	}
	cfg.Location = loc

	if _, err := cron.ParseStandard(cfg.SweepCron); err != nil {
		errs = append(errs, &ConfigurationError{Field: "SWEEP_CRON", Reason: err.Error()})
	}

	switch cfg.TelegramMode {
	case ModePolling, ModeWebhook:
	default:
		errs = append(errs, &ConfigurationError{Field: "TELEGRAM_MODE", Reason: "must be polling or webhook"})
	}

	switch cfg.StorageBackend {
	case BackendSQLite, BackendMemory:
	case BackendPostgres:
		if cfg.DBURL == "" {
			errs = append(errs, &ConfigurationError{Field: "DB_URL", Reason: "required for postgres backend"})
		}
	default:
		errs = append(errs, &ConfigurationError{Field: "STORAGE_BACKEND", Reason: fmt.Sprintf("unknown backend %q", cfg.StorageBackend)})
	}

	cfg.Registry = models.DefaultRegistry()
	if path := getEnv("MEDICATIONS_FILE", ""); path != "" {
		reg, err := LoadRegistry(path)
		if err != nil {
			errs = append(errs, &ConfigurationError{Field: "MEDICATIONS_FILE", Reason: err.Error()})
		} else {
			cfg.Registry = reg
		}
	}

	return cfg, errors.Join(errs...)
}

// RequireTelegram checks the bot credential needed to reach subscribers.
func (c *Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return &ConfigurationError{Field: "TELEGRAM_BOT_TOKEN", Reason: "not found in Docker secret or environment"}
	}
	return nil
}

// RequireServe checks the credentials needed to run the bot and its HTTP surface.
func (c *Config) RequireServe() error {
	var errs []error
	if err := c.RequireTelegram(); err != nil {
		errs = append(errs, err)
	}
	if c.AdminJWTSecret == "" {
		errs = append(errs, &ConfigurationError{Field: "ADMIN_JWT_SECRET", Reason: "not found in Docker secret or environment"})
	}
	return errors.Join(errs...)
}

// NextSweep is the first sweep time strictly after t.
func (c *Config) NextSweep(t time.Time) (time.Time, error) {
	sched, err := cron.ParseStandard(c.SweepCron)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(t.In(c.Location)), nil
}

// secret reads /run/secrets/<name in lower case> first, then the environment.
func secret(name string) string {
	if data, err := os.ReadFile(filepath.Join(secretsDir, strings.ToLower(name))); err == nil {
		if v := strings.TrimSpace(string(data)); v != "" {
			return v
		}
	}
	return strings.TrimSpace(os.Getenv(name))
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
