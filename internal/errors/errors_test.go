package errors

import (
	"bytes"
	"context"
	stdErrors "errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/voice-journal/pkg/logger"
)

var errBackend = stdErrors.New("backend down")

func TestAppError_Unwrap(t *testing.T) {
	err := NewStorageError("save entries", errBackend)

	assert.ErrorIs(t, err, errBackend)
	assert.Equal(t, CodeStorage, err.Code)
	assert.True(t, err.Retryable)
	assert.Contains(t, err.Error(), "save entries")
}

func TestWithRetry(t *testing.T) {
	t.Run("retries retryable errors until success", func(t *testing.T) {
		attempts := 0
		err := WithRetry(context.Background(), func() error {
			attempts++
			if attempts < 3 {
				return NewStorageError("set", errBackend)
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("stops on non-retryable error", func(t *testing.T) {
		attempts := 0
		err := WithRetry(context.Background(), func() error {
			attempts++
			return NewStateError("bad transition", nil)
		})

		assert.Error(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		attempts := 0
		err := WithRetry(context.Background(), func() error {
			attempts++
			return NewStorageError("set", errBackend)
		})

		assert.ErrorIs(t, err, errBackend)
		assert.Equal(t, MaxRetries+1, attempts)
	})

	t.Run("honours cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := WithRetry(ctx, func() error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCalculateBackoffDuration(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, calculateBackoffDuration(1))
	assert.Equal(t, MaxBackoff, calculateBackoffDuration(10))
}

func TestHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	handler := NewHandler(log, false)

	ctx := logger.WithCorrelationID(context.Background(), "turn-1")

	msg, retryable := handler.Handle(ctx, NewStorageError("set", errBackend))
	assert.Equal(t, "I couldn't save that just now. Please try again.", msg)
	assert.True(t, retryable)
	assert.Contains(t, buf.String(), "code=E200")
	assert.Contains(t, buf.String(), "correlation_id=turn-1")

	msg, retryable = handler.Handle(ctx, errBackend)
	assert.Equal(t, DefaultUserMessage, msg)
	assert.False(t, retryable)

	msg, _ = handler.Handle(ctx, nil)
	assert.Empty(t, msg)
}

func TestSeverityAndCode(t *testing.T) {
	assert.Equal(t, SeverityLow, SeverityOf(NewCaptureError(errBackend)))
	assert.Equal(t, SeverityHigh, SeverityOf(errBackend))
	assert.Equal(t, CodeState, CodeOf(NewStateError("x", nil)))
	assert.Equal(t, "unknown", CodeOf(errBackend))
}
