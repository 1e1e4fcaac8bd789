package handlers

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"
)

// NewSellHandler sells the session's entries. It serves both /sell and the Sell button.
func NewSellHandler(sessions Sessions, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		m, ctx, err := machineFor(c, sessions)
		if err != nil {
			return err
		}

		offer, err := m.Sell(ctx)
		respond(c, log)
		if err != nil {
			return err
		}

		log.InfoContext(ctx, "sold via chat",
			slog.String("session_id", m.ID()),
			slog.Int("amount", offer.Amount),
		)
		return nil
	}
}

// respond acknowledges a callback query so the client stops its spinner.
func respond(c telebot.Context, log *slog.Logger) {
	if c.Callback() == nil {
		return
	}
	if err := c.Respond(); err != nil {
		log.Warn("failed to answer callback", slog.Any("error", err))
	}
}
