// Package config provides configuration loading and validation utilities.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// DefaultDir is where <env>.yaml files are looked up.
	DefaultDir = "./configs"
	envPrefix  = "JOURNAL"
)

// Load reads configuration for APP_ENV from DefaultDir.
func Load() (*Config, *viper.Viper, error) {
	return LoadFrom(DefaultDir, "")
}

// LoadFrom reads dir/<env>.yaml when present, applies JOURNAL_* environment overrides,
// validates the result and returns it. An empty env falls back to APP_ENV, then "development".
func LoadFrom(dir, env string) (*Config, *viper.Viper, error) {
	// Missing env files are fine; the process environment still applies.
	_ = godotenv.Load(".env.local", ".env")

	if env == "" {
		env = os.Getenv("APP_ENV")
	}
	if env == "" {
		env = "development"
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(env)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, nil, err
	}
	cfg.AppEnv = env

	return cfg, v, nil
}

// Watch re-reads the config file on change and passes the validated result to onChange.
// Invalid updates are logged and ignored. It is a no-op when no file was loaded.
func Watch(v *viper.Viper, log *slog.Logger, onChange func(*Config)) {
	if v == nil || onChange == nil || v.ConfigFileUsed() == "" {
		return
	}
	if log == nil {
		log = slog.Default()
	}

	env := v.GetString("app_env")
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		cfg, err := decode(v)
		if err != nil {
			log.Warn("ignoring invalid config update", slog.String("file", e.Name), slog.Any("error", err))
			return
		}
		cfg.AppEnv = env

		log.Info("config reloaded", slog.String("file", e.Name))
		onChange(cfg)
	})
	v.WatchConfig()
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "text")
	v.SetDefault("logger.file.enabled", false)
	v.SetDefault("logger.file.path", "./data/logs/journal.log")
	v.SetDefault("logger.file.max_size_mb", 10)
	v.SetDefault("logger.file.max_backups", 3)
	v.SetDefault("logger.file.max_age_days", 28)
	v.SetDefault("logger.file.compress", false)

	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "")
	v.SetDefault("sentry.sample_rate", 1.0)

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.key_prefix", "journal")
	v.SetDefault("storage.sqlite_path", "./data/journal.db")
	v.SetDefault("storage.postgres_dsn", "")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 0)
	v.SetDefault("redis.pool_timeout", 4*time.Second)
	v.SetDefault("redis.idle_timeout", 5*time.Minute)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.min_retry_backoff", 8*time.Millisecond)
	v.SetDefault("redis.max_retry_backoff", 512*time.Millisecond)

	v.SetDefault("journal.session_id", "local")
	v.SetDefault("journal.overflow", "clamp")

	v.SetDefault("bot.token", "")
	v.SetDefault("bot.poll_timeout", 10*time.Second)
	v.SetDefault("bot.rate_limit.limit", 20)
	v.SetDefault("bot.rate_limit.window", time.Minute)

	v.SetDefault("server.enabled", false)
	v.SetDefault("server.addr", ":9090")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
}
