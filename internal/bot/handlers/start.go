package handlers

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/voice-journal/internal/bot/keyboard"
)

// NewStartHandler greets the chat and shows the journal keyboard.
func NewStartHandler(sessions Sessions, kb *keyboard.Builder, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		m, ctx, err := machineFor(c, sessions)
		if err != nil {
			return err
		}

		m.Welcome(ctx)

		snap := m.Snapshot()
		if err := c.Send(snap.Login(), kb.JournalMenu()); err != nil {
			log.ErrorContext(ctx, "failed to send journal menu", slog.String("session_id", m.ID()), slog.Any("error", err))
			return err
		}

		return nil
	}
}
