package handlers

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"
)

// NewCancelHandler declines the current offer without touching the journal.
func NewCancelHandler(sessions Sessions, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		m, ctx, err := machineFor(c, sessions)
		if err != nil {
			return err
		}

		m.Cancel(ctx)
		respond(c, log)
		return nil
	}
}
