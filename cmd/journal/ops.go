package main

import (
	"context"
	"net/http"
	"time"

	"github.com/Proton-105/voice-journal/internal/health"
	"github.com/Proton-105/voice-journal/internal/lifecycle"
	"github.com/Proton-105/voice-journal/internal/ops"
	"github.com/Proton-105/voice-journal/pkg/graceful"
)

// startOps serves the ops router in the background when enabled and registers
// its shutdown.
func (a *app) startOps(ctx context.Context, sessions ops.Sessions, checker *health.Checker, shutdown *lifecycle.Shutdown) {
	if !a.cfg.Server.Enabled {
		return
	}

	srv := graceful.NewServer(a.log, &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           ops.NewRouter(sessions, checker, a.log),
		ReadHeaderTimeout: 5 * time.Second,
	}, a.cfg.Server.ShutdownTimeout)

	serveCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(serveCtx) }()

	shutdown.Register("ops server", func(ctx context.Context) error {
		cancel()
		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}
