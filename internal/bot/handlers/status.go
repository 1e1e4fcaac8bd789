package handlers

import (
	"fmt"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/voice-journal/internal/bot/keyboard"
	"github.com/Proton-105/voice-journal/internal/display"
)

// NewStatusHandler replies with the current meter, limit note and entry log.
func NewStatusHandler(sessions Sessions, kb *keyboard.Builder) Handler {
	return func(c telebot.Context) error {
		m, _, err := machineFor(c, sessions)
		if err != nil {
			return err
		}

		return c.Send(FormatSnapshot(m.Snapshot()), kb.JournalMenu())
	}
}

// FormatSnapshot renders a snapshot as a plain chat message.
func FormatSnapshot(s display.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s (%d%%)\n", s.Meter(), int(s.Fraction*100))
	fmt.Fprintf(&b, "%s\n", s.Note())
	fmt.Fprintf(&b, "%s\n", s.Login())
	fmt.Fprintf(&b, "Credits: ₹%d\n\n", s.Credits)
	b.WriteString(strings.Join(display.LogLines(s.Entries), "\n"))

	return b.String()
}

// HelpMessage lists the chat commands.
const HelpMessage = `Send text to talk to your journal. Voice notes are not transcribed here.
/start - greet and show the menu
/status - show the meter and the entry log
/sell - sell your entries for the current offer
/cancel - decline the offer`

// NewHelpHandler replies with HelpMessage.
func NewHelpHandler() Handler {
	return func(c telebot.Context) error {
		return c.Send(HelpMessage)
	}
}
