package handlers

import (
	"errors"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/voice-journal/internal/capture"
)

// BusyMessage is sent when a chat speaks while its previous message is still being handled.
const BusyMessage = "Still working on your last message. One moment."

// NewTextHandler treats a plain text message as a finished transcript.
func NewTextHandler(sessions Sessions, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		m, ctx, err := machineFor(c, sessions)
		if err != nil {
			return err
		}

		err = m.Listen(ctx, capture.Transcript(c.Text()))
		if errors.Is(err, capture.ErrCaptureActive) {
			log.DebugContext(ctx, "capture already active", slog.String("session_id", m.ID()))
			return c.Send(BusyMessage)
		}
		return err
	}
}

// NewVoiceHandler handles voice and audio notes. Recognition is not available
// in the chat driver, so the capture fails as unsupported.
func NewVoiceHandler(sessions Sessions, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		m, ctx, err := machineFor(c, sessions)
		if err != nil {
			return err
		}

		err = m.Listen(ctx, capture.Failed(capture.ErrUnsupported))
		if errors.Is(err, capture.ErrCaptureActive) {
			return c.Send(BusyMessage)
		}
		return err
	}
}
