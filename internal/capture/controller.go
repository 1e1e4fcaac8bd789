package capture

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"

	apperrors "github.com/Proton-105/voice-journal/internal/errors"
)

// Handler consumes a completed transcript.
type Handler func(ctx context.Context, text string) error

// Controller guards capture so only one session runs at a time.
type Controller struct {
	active    atomic.Bool
	handle    Handler
	status    StatusSink
	onFailure func(error)
	log       *slog.Logger
}

// NewController creates a controller delivering transcripts to handle. status may be nil.
func NewController(handle Handler, status StatusSink, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	if status == nil {
		status = StatusFunc(func(Status) {})
	}

	return &Controller{
		handle: handle,
		status: status,
		log:    log,
	}
}

// OnFailure registers a callback for failed capture sessions.
func (c *Controller) OnFailure(fn func(error)) {
	c.onFailure = fn
}

// Active reports whether a session is running.
func (c *Controller) Active() bool {
	return c.active.Load()
}

// Start runs one session over src. A second call while one is running returns
// ErrCaptureActive without side effects. Capture failures are reported through the
// status sink and do not produce an error; handler errors are returned.
func (c *Controller) Start(ctx context.Context, src Source) error {
	if !c.active.CompareAndSwap(false, true) {
		return ErrCaptureActive
	}
	defer c.active.Store(false)

	c.status.Status(NewStatus(StatusListening, ""))

	text, err := src.Capture(ctx)
	if err != nil {
		c.fail(ctx, err)
		return nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		c.status.Status(NewStatus(StatusReady, ""))
		return nil
	}

	c.status.Status(NewStatus(StatusHeard, text))

	handleErr := c.handle(ctx, text)
	c.status.Status(NewStatus(StatusReady, ""))

	return handleErr
}

func (c *Controller) fail(ctx context.Context, err error) {
	kind := StatusFailed
	if errors.Is(err, ErrUnsupported) {
		kind = StatusUnsupported
	}

	appErr := apperrors.NewCaptureError(err)
	c.log.WarnContext(ctx, "capture failed", "kind", string(kind), "error", appErr)
	c.status.Status(NewStatus(kind, ""))

	if c.onFailure != nil {
		c.onFailure(appErr)
	}
}
