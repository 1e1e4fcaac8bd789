package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"

	"github.com/Proton-105/voice-journal/internal/kv"
	appredis "github.com/Proton-105/voice-journal/pkg/redis"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChecker_Ready(t *testing.T) {
	c := NewChecker(testLogger())
	c.AddCheck("store", NewStoreChecker(kv.NewMemoryStore()))
	c.AddCheck("", CheckFunc(func(context.Context) error { return nil }))
	c.AddCheck("nil", nil)

	results, ok := c.Ready(context.Background())
	assert.True(t, ok)
	assert.Equal(t, map[string]string{"store": StatusOK}, results)

	c.AddCheck("broken", CheckFunc(func(context.Context) error { return errors.New("unreachable") }))

	results, ok = c.Ready(context.Background())
	assert.False(t, ok)
	assert.Equal(t, "unreachable", results["broken"])
}

func TestStoreChecker_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := appredis.New(context.Background(), appredis.Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	checker := NewStoreChecker(kv.NewRedisStore(client, client.Ping, testLogger()))
	assert.NoError(t, checker.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, checker.HealthCheck(context.Background()))
}

func TestStoreChecker_Nil(t *testing.T) {
	assert.ErrorIs(t, NewStoreChecker(nil).HealthCheck(context.Background()), ErrNoPinger)
}

func TestTelegramChecker(t *testing.T) {
	assert.Error(t, NewTelegramChecker(nil).HealthCheck(context.Background()))

	bot, err := telebot.NewBot(telebot.Settings{Offline: true})
	require.NoError(t, err)
	assert.NoError(t, NewTelegramChecker(bot).HealthCheck(context.Background()))
}

func TestChecker_SlowCheckTimesOut(t *testing.T) {
	c := NewChecker(testLogger())
	c.timeout = 20 * time.Millisecond
	c.AddCheck("hung", CheckFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	c.AddCheck("store", NewStoreChecker(kv.NewMemoryStore()))

	results, ok := c.Ready(context.Background())
	assert.False(t, ok)
	assert.Equal(t, context.DeadlineExceeded.Error(), results["hung"])
	assert.Equal(t, StatusOK, results["store"])
}
