// Package keyboard builds the inline keyboards of the Telegram driver.
package keyboard

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"
)

// Callback identifiers of the journal buttons.
const (
	CallbackSell   = "journal_sell"
	CallbackCancel = "journal_cancel"
)

// Builder creates the journal keyboards.
type Builder struct {
	log *slog.Logger
}

// NewBuilder returns a new Builder instance.
func NewBuilder(log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{log: log}
}

// JournalMenu builds the Sell / Cancel row shown under journal messages.
func (b *Builder) JournalMenu() *telebot.ReplyMarkup {
	markup, err := NewInlineKeyboard().
		AddRow(
			InlineButton{Text: "Sell 💰", Unique: CallbackSell},
			InlineButton{Text: "Cancel ❌", Unique: CallbackCancel},
		).
		Build()
	if err != nil {
		// Static identifiers always fit; fall back to no keyboard.
		b.log.Error("failed to build journal menu", slog.Any("error", err))
		return &telebot.ReplyMarkup{}
	}
	return markup
}
