package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/voice-journal/internal/bot/handlers"
	"github.com/Proton-105/voice-journal/internal/bot/keyboard"
	apperrors "github.com/Proton-105/voice-journal/internal/errors"
	"github.com/Proton-105/voice-journal/internal/ratelimit"
	"github.com/Proton-105/voice-journal/pkg/logger"
	"github.com/Proton-105/voice-journal/pkg/metrics"
)

// RateLimitedMessage is sent to a chat that exceeded its update budget.
const RateLimitedMessage = "Slow down a little. Try again in a minute."

// knownActions bounds the action label. Anything else becomes "text" or "command".
var knownActions = map[string]bool{
	CommandStart: true, CommandSell: true, CommandCancel: true, CommandStatus: true, CommandHelp: true,
	CallbackSell: true, CallbackCancel: true,
}

// fail records err and tells the chat what went wrong.
func fail(c telebot.Context, errHandler *apperrors.Handler, err error) error {
	metrics.RecordError(apperrors.CodeOf(err), string(apperrors.SeverityOf(err)))

	msg := apperrors.DefaultUserMessage
	if errHandler != nil {
		if m, _ := errHandler.Handle(handlers.Context(c), err); m != "" {
			msg = m
		}
	}
	return c.Send(msg)
}

// RecoveryMiddleware turns a panicking handler into a critical error reply.
func RecoveryMiddleware(log *slog.Logger, errHandler *apperrors.Handler) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		return func(c telebot.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				log.Error("handler panicked", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))

				appErr := apperrors.NewStateError("panic recovered", fmt.Errorf("panic: %v", r))
				appErr.Severity = apperrors.SeverityCritical
				if sendErr := fail(c, errHandler, appErr); sendErr != nil {
					log.Error("panic reply not delivered", slog.Any("error", sendErr))
				}
				err = nil
			}()
			return next(c)
		}
	}
}

// ErrorHandlingMiddleware reports handler errors and swallows them once the chat is told.
func ErrorHandlingMiddleware(errHandler *apperrors.Handler) handlers.Middleware {
	return func(next handlers.Handler) handlers.Handler {
		return func(c telebot.Context) error {
			if err := next(c); err != nil {
				_ = fail(c, errHandler, err)
			}
			return nil
		}
	}
}

// LoggingMiddleware attaches a correlation id to the update and logs its outcome.
// The utterance itself is never logged, only its kind.
func LoggingMiddleware(log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		return func(c telebot.Context) error {
			start := time.Now()
			id := logger.NewCorrelationID()
			ctx := logger.WithCorrelationID(handlers.Context(c), id)
			handlers.WithContext(c, ctx)

			sessionID, _ := handlers.SessionID(c)
			turnLog := log.With(
				slog.String("session_id", sessionID),
				slog.String("action", actionOf(c)),
				slog.String("correlation_id", id),
			)

			turnLog.DebugContext(ctx, "update received")
			err := next(c)
			turnLog.InfoContext(ctx, "update handled", slog.Duration("duration", time.Since(start)), slog.Any("error", err))
			return err
		}
	}
}

// MetricsMiddleware counts updates by action and outcome.
func MetricsMiddleware(next handlers.Handler) handlers.Handler {
	return func(c telebot.Context) error {
		start := time.Now()
		err := next(c)

		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.RecordCommand(actionOf(c), status, time.Since(start))
		return err
	}
}

// RateLimitMiddleware enforces rule per chat. Limiter failures let the update through.
func RateLimitMiddleware(limiter ratelimit.Limiter, rule ratelimit.Rule, log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if limiter == nil || !rule.Enabled() {
			return next
		}

		return func(c telebot.Context) error {
			sessionID, ok := handlers.SessionID(c)
			if !ok {
				return next(c)
			}

			ctx := handlers.Context(c)
			_, err := limiter.Check(ctx, "chat:"+sessionID, rule.Limit, rule.Window)
			if errors.Is(err, ratelimit.ErrLimitExceeded) {
				log.WarnContext(ctx, "chat over rate limit", slog.String("session_id", sessionID))
				return c.Send(RateLimitedMessage)
			}
			if err != nil {
				log.WarnContext(ctx, "rate limiter unavailable", slog.String("session_id", sessionID), slog.Any("error", err))
			}
			return next(c)
		}
	}
}

// actionOf names the update kind for logs and metric labels.
func actionOf(c telebot.Context) string {
	if cb := c.Callback(); cb != nil {
		if unique, _, err := keyboard.DecodeCallback(cb.Data); err == nil && knownActions[unique] {
			return unique
		}
		return "callback"
	}

	if msg := c.Message(); msg != nil && isVoice(msg) {
		return "voice"
	}

	name := commandName(c.Text())
	switch {
	case knownActions[name]:
		return name
	case len(name) > 1 && name[0] == '/':
		return "command"
	}
	return "text"
}
