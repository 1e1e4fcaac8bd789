package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Proton-105/voice-journal/internal/kv"
	"github.com/Proton-105/voice-journal/pkg/config"
	appredis "github.com/Proton-105/voice-journal/pkg/redis"
)

// backend is the opened session store. redis is set only for the redis driver.
type backend struct {
	store kv.Store
	redis *appredis.Client
	close func() error
}

func openBackend(ctx context.Context, cfg config.Config, log *slog.Logger) (*backend, error) {
	log = log.With(slog.String("driver", cfg.Storage.Driver))

	switch cfg.Storage.Driver {
	case "memory":
		log.Warn("using in-memory storage, sessions are lost on exit")
		return &backend{store: kv.NewMemoryStore(), close: func() error { return nil }}, nil

	case "redis":
		client, err := appredis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		instrumented := appredis.NewMetricsClient(client)
		return &backend{
			store: kv.NewRedisStore(instrumented, instrumented.Ping, log),
			redis: client,
			close: client.Close,
		}, nil

	case "postgres":
		store, err := kv.OpenSQL(ctx, kv.DialectPostgres, cfg.Storage.PostgresDSN, log)
		if err != nil {
			return nil, err
		}
		return &backend{store: store, close: store.Close}, nil

	case "sqlite":
		store, err := kv.OpenSQL(ctx, kv.DialectSQLite, cfg.Storage.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		return &backend{store: store, close: store.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
