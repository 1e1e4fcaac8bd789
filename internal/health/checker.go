// Package health reports whether the journal's backends are reachable.
package health

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"gopkg.in/telebot.v3"

	"github.com/Proton-105/voice-journal/internal/kv"
)

// StatusOK is the result of a passing check.
const StatusOK = "OK"

// Checkable represents a component that can report its health status.
type Checkable interface {
	HealthCheck(ctx context.Context) error
}

// CheckFunc adapts a function to Checkable.
type CheckFunc func(ctx context.Context) error

// HealthCheck calls f(ctx).
func (f CheckFunc) HealthCheck(ctx context.Context) error {
	return f(ctx)
}

// CheckTimeout bounds a single component check.
const CheckTimeout = 3 * time.Second

// Checker runs named component checks.
type Checker struct {
	mu      sync.RWMutex
	log     *slog.Logger
	checks  map[string]Checkable
	timeout time.Duration
}

func NewChecker(log *slog.Logger) *Checker {
	if log == nil {
		log = slog.Default()
	}
	return &Checker{log: log, checks: map[string]Checkable{}, timeout: CheckTimeout}
}

// AddCheck registers check under name, replacing any previous one.
func (c *Checker) AddCheck(name string, check Checkable) {
	if name == "" || check == nil {
		return
	}
	c.mu.Lock()
	c.checks[name] = check
	c.mu.Unlock()
}

// Check runs every check concurrently and maps each name to StatusOK or its error text.
func (c *Checker) Check(ctx context.Context) map[string]string {
	c.mu.RLock()
	names := make([]string, 0, len(c.checks))
	checks := make([]Checkable, 0, len(c.checks))
	for name, check := range c.checks {
		names = append(names, name)
		checks = append(checks, check)
	}
	c.mu.RUnlock()

	statuses := make([]string, len(checks))
	var wg sync.WaitGroup
	for i := range checks {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			statuses[i] = StatusOK
			if err := checks[i].HealthCheck(cctx); err != nil {
				statuses[i] = err.Error()
				c.log.Error("health check failed", slog.String("component", names[i]), slog.Any("error", err))
			}
		}(i)
	}
	wg.Wait()

	results := make(map[string]string, len(names))
	for i, name := range names {
		results[name] = statuses[i]
	}
	return results
}

// Ready runs Check and reports whether every component passed.
func (c *Checker) Ready(ctx context.Context) (map[string]string, bool) {
	results := c.Check(ctx)
	for _, status := range results {
		if status != StatusOK {
			return results, false
		}
	}
	return results, true
}

// ErrNoPinger is returned when the store cannot report reachability.
var ErrNoPinger = errors.New("store does not support ping")

// StoreChecker verifies connectivity to the session store backend.
type StoreChecker struct {
	store kv.Store
}

func NewStoreChecker(store kv.Store) *StoreChecker {
	return &StoreChecker{store: store}
}

// HealthCheck pings stores that implement kv.Pinger. In-memory stores always pass.
func (c *StoreChecker) HealthCheck(ctx context.Context) error {
	if c == nil || c.store == nil {
		return ErrNoPinger
	}

	pinger, ok := c.store.(kv.Pinger)
	if !ok {
		return nil
	}
	return pinger.Ping(ctx)
}

// TelegramChecker verifies that the Telegram bot API is reachable.
type TelegramChecker struct {
	bot *telebot.Bot
}

func NewTelegramChecker(bot *telebot.Bot) *TelegramChecker {
	return &TelegramChecker{bot: bot}
}

// HealthCheck passes once the bot knows its own account.
func (c *TelegramChecker) HealthCheck(context.Context) error {
	if c == nil || c.bot == nil || c.bot.Me == nil {
		return errors.New("telegram: bot identity unknown")
	}
	return nil
}
