// Package handlers holds the Telegram update handlers of the journal bot.
package handlers

import (
	"context"
	"strconv"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/voice-journal/internal/conversation"
	apperrors "github.com/Proton-105/voice-journal/internal/errors"
)

// Handler processes bot commands.
type Handler func(c telebot.Context) error

// CallbackHandler processes inline callback events.
type CallbackHandler func(c telebot.Context) error

// Middleware wraps handlers with additional behavior.
type Middleware func(Handler) Handler

// HandlerFunc adapts ordinary functions to the Handler interface.
type HandlerFunc func(c telebot.Context) error

// Handle executes the underlying function.
func (h HandlerFunc) Handle(c telebot.Context) error {
	return h(c)
}

// Sessions resolves the conversation of a chat. conversation.Registry satisfies it.
type Sessions interface {
	Get(ctx context.Context, sessionID string) (*conversation.Machine, error)
}

const contextKey = "journal_context"

// WithContext stores ctx on the update so later handlers share its values.
func WithContext(c telebot.Context, ctx context.Context) {
	c.Set(contextKey, ctx)
}

// Context returns the context stored by WithContext or context.Background.
func Context(c telebot.Context) context.Context {
	if ctx, ok := c.Get(contextKey).(context.Context); ok && ctx != nil {
		return ctx
	}
	return context.Background()
}

// SessionID derives the session identifier from the update sender.
func SessionID(c telebot.Context) (string, bool) {
	if c == nil || c.Sender() == nil {
		return "", false
	}
	return strconv.FormatInt(c.Sender().ID, 10), true
}

func machineFor(c telebot.Context, sessions Sessions) (*conversation.Machine, context.Context, error) {
	ctx := Context(c)

	id, ok := SessionID(c)
	if !ok {
		return nil, ctx, apperrors.NewValidationError("update has no sender")
	}

	m, err := sessions.Get(ctx, id)
	if err != nil {
		return nil, ctx, err
	}
	return m, ctx, nil
}
