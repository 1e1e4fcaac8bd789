package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Proton-105/voice-journal/internal/bot"
	"github.com/Proton-105/voice-journal/internal/capture"
	"github.com/Proton-105/voice-journal/internal/conversation"
	"github.com/Proton-105/voice-journal/internal/health"
	"github.com/Proton-105/voice-journal/internal/lifecycle"
	"github.com/Proton-105/voice-journal/internal/ops"
	"github.com/Proton-105/voice-journal/internal/ratelimit"
	"github.com/Proton-105/voice-journal/pkg/metrics"
)

const limiterCleanupInterval = 10 * time.Minute

func newTelegramCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "telegram",
		Short: "Serve one journal per Telegram chat",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTelegram(cmd.Context())
		},
	}
}

func (a *app) runTelegram(ctx context.Context) error {
	b, err := openBackend(ctx, *a.cfg, a.log)
	if err != nil {
		return err
	}

	shutdown := lifecycle.NewShutdown(a.log)
	shutdown.Register("store", func(context.Context) error { return b.close() })
	defer a.runShutdown(shutdown)

	limiter := a.newLimiter(ctx, b)

	build := func(ctx context.Context, sessionID string, speaker conversation.Speaker, status capture.StatusSink) (*conversation.Machine, error) {
		cfg := a.machineConfig(sessionID, b.store)
		cfg.Speaker = speaker
		cfg.Status = status
		return conversation.New(ctx, cfg)
	}

	tg, err := bot.New(a.cfg.Bot, build, bot.Options{
		Log:        a.log.With(slog.String("component", "bot")),
		ErrHandler: a.errHandler,
		Limiter:    limiter,
	})
	if err != nil {
		return err
	}

	checker := health.NewChecker(a.log)
	checker.AddCheck("store", health.NewStoreChecker(b.store))
	checker.AddCheck("telegram", health.NewTelegramChecker(tg.Telebot()))
	a.startOps(ctx, ops.RegistrySessions{Registry: tg.Sessions()}, checker, shutdown)

	go metrics.NewSessionCollector(tg.Sessions(), 0).Run(ctx)

	go tg.Start()
	shutdown.Register("telegram bot", func(context.Context) error {
		tg.Stop()
		return nil
	})

	<-ctx.Done()
	a.log.Info("telegram driver stopping", slog.Int("sessions", tg.Sessions().Len()))
	return nil
}

// newLimiter shares limits through Redis when the store lives there and keeps
// them in memory otherwise.
func (a *app) newLimiter(ctx context.Context, b *backend) ratelimit.Limiter {
	if b.redis != nil {
		return ratelimit.NewRedisLimiter(b.redis.Client, a.log)
	}

	limiter := ratelimit.NewMemoryLimiter(a.log)
	window := a.cfg.Bot.RateLimit.Window

	go func() {
		ticker := time.NewTicker(limiterCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := limiter.Cleanup(window); removed > 0 {
					a.log.Debug("rate limiter cleaned", slog.Int("removed", removed))
				}
			}
		}
	}()

	return limiter
}
