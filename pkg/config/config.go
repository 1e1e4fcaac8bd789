package config

import (
	"time"

	appredis "github.com/Proton-105/voice-journal/pkg/redis"
)

// Config holds runtime configuration for the voice journal.
type Config struct {
	AppEnv  string          `mapstructure:"app_env"`
	Logger  LoggerConfig    `mapstructure:"logger"`
	Sentry  SentryConfig    `mapstructure:"sentry"`
	Storage StorageConfig   `mapstructure:"storage"`
	Redis   appredis.Config `mapstructure:"redis"`
	Journal JournalConfig   `mapstructure:"journal"`
	Bot     BotConfig       `mapstructure:"bot"`
	Server  ServerConfig    `mapstructure:"server"`
}

// LoggerConfig controls the slog handler.
type LoggerConfig struct {
	Level  string        `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string        `mapstructure:"format" validate:"oneof=text json"`
	File   LogFileConfig `mapstructure:"file"`
}

// LogFileConfig enables rotated file output next to stdout.
type LogFileConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path" validate:"required_if=Enabled true"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
	Compress   bool   `mapstructure:"compress"`
}

// SentryConfig controls error reporting.
type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn" validate:"required_if=Enabled true"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// StorageConfig selects the key-value backend for session state.
type StorageConfig struct {
	Driver      string `mapstructure:"driver" validate:"oneof=memory redis postgres sqlite"`
	KeyPrefix   string `mapstructure:"key_prefix" validate:"required"`
	SQLitePath  string `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`
	PostgresDSN string `mapstructure:"postgres_dsn" validate:"required_if=Driver postgres"`
}

// JournalConfig holds conversation settings.
type JournalConfig struct {
	SessionID string `mapstructure:"session_id" validate:"required"`
	Overflow  string `mapstructure:"overflow" validate:"oneof=clamp allow_one"`
}

// BotConfig holds Telegram settings. The token is only required by the telegram command.
type BotConfig struct {
	Token       string          `mapstructure:"token"`
	PollTimeout time.Duration   `mapstructure:"poll_timeout" validate:"gte=0"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig bounds updates per chat in a sliding window. A zero limit disables it.
type RateLimitConfig struct {
	Limit  int           `mapstructure:"limit" validate:"gte=0"`
	Window time.Duration `mapstructure:"window" validate:"required_with=Limit"`
}

// ServerConfig controls the ops HTTP server.
type ServerConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Addr            string        `mapstructure:"addr" validate:"required_if=Enabled true"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}
