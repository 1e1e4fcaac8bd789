package capture

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Proton-105/voice-journal/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type statusRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *statusRecorder) Status(s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, s.Text)
}

func TestController_DeliversTranscript(t *testing.T) {
	var got []string
	rec := &statusRecorder{}
	c := NewController(func(_ context.Context, text string) error {
		got = append(got, text)
		return nil
	}, rec, testLogger())

	require.NoError(t, c.Start(context.Background(), Transcript("  I went to the office ")))

	assert.Equal(t, []string{"I went to the office"}, got)
	assert.Equal(t, []string{
		"Listening...",
		`Heard: "I went to the office"`,
		"Tap the mic when you want to speak.",
	}, rec.lines)
	assert.False(t, c.Active())
}

func TestController_FailureReportsStatus(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "generic failure", err: errors.New("mic busy"), expected: "Couldn't capture audio. Try again."},
		{name: "unsupported", err: ErrUnsupported, expected: "Speech recognition is not supported on this device."},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rec := &statusRecorder{}
			var failures []error
			c := NewController(func(context.Context, string) error {
				t.Fatal("handler must not run")
				return nil
			}, rec, testLogger())
			c.OnFailure(func(err error) { failures = append(failures, err) })

			require.NoError(t, c.Start(context.Background(), Failed(tc.err)))

			assert.Equal(t, []string{"Listening...", tc.expected}, rec.lines)
			require.Len(t, failures, 1)
			assert.Equal(t, apperrors.CodeCapture, apperrors.CodeOf(failures[0]))
			assert.ErrorIs(t, failures[0], tc.err)
		})
	}
}

func TestController_BlankTranscriptIsIgnored(t *testing.T) {
	rec := &statusRecorder{}
	calls := 0
	c := NewController(func(context.Context, string) error {
		calls++
		return nil
	}, rec, testLogger())

	require.NoError(t, c.Start(context.Background(), Transcript("   ")))
	assert.Zero(t, calls)
	assert.Equal(t, []string{"Listening...", "Tap the mic when you want to speak."}, rec.lines)
}

func TestController_SecondStartWhileActive(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	calls := 0

	c := NewController(func(context.Context, string) error {
		calls++
		return nil
	}, nil, testLogger())

	blocking := SourceFunc(func(context.Context) (string, error) {
		close(entered)
		<-release
		return "hello", nil
	})

	done := make(chan error, 1)
	go func() { done <- c.Start(context.Background(), blocking) }()
	<-entered

	assert.True(t, c.Active())
	assert.ErrorIs(t, c.Start(context.Background(), Transcript("other")), ErrCaptureActive)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, calls)
	assert.False(t, c.Active())
}

func TestController_ReturnsHandlerError(t *testing.T) {
	boom := errors.New("boom")
	c := NewController(func(context.Context, string) error { return boom }, nil, testLogger())

	assert.ErrorIs(t, c.Start(context.Background(), Transcript("hi")), boom)
	assert.False(t, c.Active())
}
