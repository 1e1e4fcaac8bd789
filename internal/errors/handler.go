package errors

import (
	"context"
	"errors"
	"log/slog"

	"github.com/getsentry/sentry-go"

	"github.com/Proton-105/voice-journal/pkg/logger"
)

const codeUnknown = "unknown"

// Handler turns errors raised while serving a turn into log records,
// Sentry events and a reply for the user.
type Handler struct {
	log           *slog.Logger
	sentryEnabled bool
}

func NewHandler(log *slog.Logger, sentryEnabled bool) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{log: log, sentryEnabled: sentryEnabled}
}

// Handle logs err, reports it to Sentry when severe and returns the message to show the user
// together with whether the operation may be retried.
func (h *Handler) Handle(ctx context.Context, err error) (string, bool) {
	if err == nil {
		return "", false
	}
	if ctx == nil {
		ctx = context.Background()
	}

	appErr := classify(err)

	attrs := []slog.Attr{
		slog.String("code", appErr.Code),
		slog.String("message", appErr.Message),
		slog.String("severity", string(appErr.Severity)),
		slog.Bool("retryable", appErr.Retryable),
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		attrs = append(attrs, slog.String("correlation_id", id))
	}
	h.log.LogAttrs(ctx, levelFor(appErr.Severity), "turn failed", attrs...)

	if h.sentryEnabled && severe(appErr.Severity) {
		capture(err, appErr)
	}

	if appErr.UserMessage == "" {
		return DefaultUserMessage, appErr.Retryable
	}
	return appErr.UserMessage, appErr.Retryable
}

// classify returns the AppError inside err, or a high severity stand-in for foreign errors.
func classify(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr
	}
	stand := &AppError{Code: codeUnknown, Severity: SeverityHigh}
	if err != nil {
		stand.Message = err.Error()
	}
	return stand
}

// SeverityOf returns the severity of err, treating unknown errors as high.
func SeverityOf(err error) Severity {
	return classify(err).Severity
}

// CodeOf returns the AppError code of err or "unknown".
func CodeOf(err error) string {
	if code := classify(err).Code; code != "" {
		return code
	}
	return codeUnknown
}

func severe(s Severity) bool {
	return s == SeverityHigh || s == SeverityCritical
}

func levelFor(s Severity) slog.Level {
	if s == SeverityLow {
		return slog.LevelWarn
	}
	return slog.LevelError
}

func capture(err error, appErr *AppError) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("code", appErr.Code)
		if appErr.Severity != "" {
			scope.SetTag("severity", string(appErr.Severity))
		}
		sentry.CaptureException(err)
	})
}
