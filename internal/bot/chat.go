package bot

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/voice-journal/internal/capture"
)

// Sender delivers messages to a chat. telebot.Bot satisfies it.
type Sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// chatPlayer "speaks" by sending each assistant line as a chat message.
type chatPlayer struct {
	sender Sender
	chat   telebot.Recipient
	log    *slog.Logger
}

func (p chatPlayer) Play(text string, done func()) {
	defer done()

	if _, err := p.sender.Send(p.chat, text); err != nil {
		p.log.Warn("failed to deliver assistant message", slog.String("chat", p.chat.Recipient()), slog.Any("error", err))
	}
}

// chatStatus forwards capture failures to the chat. Progress lines are noise in a chat.
type chatStatus struct {
	sender Sender
	chat   telebot.Recipient
	log    *slog.Logger
}

func (s chatStatus) Status(st capture.Status) {
	if st.Kind != capture.StatusFailed && st.Kind != capture.StatusUnsupported {
		return
	}

	if _, err := s.sender.Send(s.chat, st.Text); err != nil {
		s.log.Warn("failed to deliver capture status", slog.String("chat", s.chat.Recipient()), slog.Any("error", err))
	}
}
