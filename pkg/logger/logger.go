// Package logger builds the structured slog logger shared by every component.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	slogsentry "github.com/samber/slog-sentry/v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Proton-105/voice-journal/pkg/config"
)

const sentryFlushTimeout = 2 * time.Second

var level = new(slog.LevelVar)

// New returns a logger configured from cfg. Output always goes to stdout; a rotated
// file and Sentry are added when enabled. The returned close func flushes both.
func New(cfg config.Config) (*slog.Logger, func(), error) {
	if err := SetLevel(cfg.Logger.Level); err != nil {
		return nil, nil, err
	}

	var out io.Writer = os.Stdout
	closers := make([]func(), 0, 2)

	if cfg.Logger.File.Enabled {
		file := &lumberjack.Logger{
			Filename:   cfg.Logger.File.Path,
			MaxSize:    cfg.Logger.File.MaxSizeMB,
			MaxBackups: cfg.Logger.File.MaxBackups,
			MaxAge:     cfg.Logger.File.MaxAgeDays,
			Compress:   cfg.Logger.File.Compress,
		}
		out = io.MultiWriter(os.Stdout, file)
		closers = append(closers, func() { _ = file.Close() })
	}

	handlers := []slog.Handler{newHandler(cfg.Logger.Format, out)}

	if cfg.Sentry.Enabled {
		environment := cfg.Sentry.Environment
		if environment == "" {
			environment = cfg.AppEnv
		}
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: environment,
			SampleRate:  cfg.Sentry.SampleRate,
		}); err != nil {
			return nil, nil, fmt.Errorf("init sentry: %w", err)
		}
		handlers = append(handlers, slogsentry.Option{Level: slog.LevelError}.NewSentryHandler())
		closers = append(closers, func() { sentry.Flush(sentryFlushTimeout) })
	}

	var handler slog.Handler = handlers[0]
	if len(handlers) > 1 {
		handler = Fanout(handlers...)
	}

	log := slog.New(NewMaskingHandler(handler)).With(slog.String("env", cfg.AppEnv))

	return log, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}, nil
}

// NewWithWriter returns a masking logger writing to w, mainly for tests and CLI tools.
func NewWithWriter(format string, w io.Writer) *slog.Logger {
	return slog.New(NewMaskingHandler(newHandler(format, w)))
}

// SetLevel changes the level of every logger created by New.
func SetLevel(name string) error {
	switch strings.ToLower(name) {
	case "", "info":
		level.Set(slog.LevelInfo)
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level %q", name)
	}
	return nil
}

// Level reports the current level.
func Level() slog.Level {
	return level.Level()
}

func newHandler(format string, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

type fanout struct {
	handlers []slog.Handler
}

// Fanout duplicates each record to every handler that accepts its level.
func Fanout(handlers ...slog.Handler) slog.Handler {
	return &fanout{handlers: handlers}
}

func (f *fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f *fanout) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range f.handlers {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &fanout{handlers: next}
}

func (f *fanout) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithGroup(name)
	}
	return &fanout{handlers: next}
}
