package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	HTTPPort string
	LogLevel string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	QueueKey      string

	TelegramToken string

	UploadsDir string
	ReportsDir string

	WorkerPollInterval  time.Duration
	ExternalCallTimeout time.Duration
}

func Load() (*Config, error) {
	// Local development reads a .env file when present; real deployments
	// pass everything through the environment.
	_ = godotenv.Load()

	cfg := &Config{
		Env:           getEnv("APP_ENV", "development"),
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		QueueKey:      getEnv("AUDIT_QUEUE_KEY", "audit_queue"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		UploadsDir:    getEnv("UPLOADS_DIR", "uploads"),
		ReportsDir:    getEnv("REPORTS_DIR", "reports"),
	}

	pollInterval, err := time.ParseDuration(getEnv("WORKER_POLL_INTERVAL", "5s"))
	if err != nil {
		return nil, errors.New("parse WORKER_POLL_INTERVAL: invalid duration")
	}
	cfg.WorkerPollInterval = pollInterval

	callTimeout, err := time.ParseDuration(getEnv("EXTERNAL_CALL_TIMEOUT", "30s"))
	if err != nil {
		return nil, errors.New("parse EXTERNAL_CALL_TIMEOUT: invalid duration")
	}
	cfg.ExternalCallTimeout = callTimeout

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if c.RedisAddr == "" {
		errs = append(errs, "REDIS_ADDR is required")
	}
	if c.TelegramToken == "" && c.Env != "development" {
		errs = append(errs, "TELEGRAM_TOKEN is required outside development")
	}
	if c.QueueKey == "" {
		errs = append(errs, "AUDIT_QUEUE_KEY must not be empty")
	}
	if c.UploadsDir == "" || c.ReportsDir == "" {
		errs = append(errs, "UPLOADS_DIR and REPORTS_DIR must not be empty")
	}
	if c.WorkerPollInterval <= 0 {
		errs = append(errs, "WORKER_POLL_INTERVAL must be > 0")
	}
	if c.ExternalCallTimeout <= 0 {
		errs = append(errs, "EXTERNAL_CALL_TIMEOUT must be > 0")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
