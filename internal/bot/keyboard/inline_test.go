package keyboard_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/voice-journal/internal/bot/keyboard"
)

func TestInlineKeyboardBuilder(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		markup, err := keyboard.NewInlineKeyboard().
			AddRow(
				keyboard.InlineButton{Text: "Sell", Unique: "journal_sell"},
				keyboard.InlineButton{Text: "Page", Unique: "log", Data: "2"},
			).
			AddRow().
			AddRow(keyboard.InlineButton{Text: "Cancel", Unique: "journal_cancel"}).
			Build()
		require.NoError(t, err)

		require.Len(t, markup.InlineKeyboard, 2)
		assert.Len(t, markup.InlineKeyboard[0], 2)
		assert.Equal(t, "journal_sell", markup.InlineKeyboard[0][0].Data)
		assert.Equal(t, "log:2", markup.InlineKeyboard[0][1].Data)
		assert.Equal(t, "Cancel", markup.InlineKeyboard[1][0].Text)
	})

	t.Run("callback data overflow", func(t *testing.T) {
		_, err := keyboard.NewInlineKeyboard().
			AddRow(keyboard.InlineButton{
				Text:   "Too big",
				Unique: "overflow",
				Data:   strings.Repeat("x", keyboard.CallbackDataLimitBytes),
			}).
			Build()
		assert.Error(t, err)
	})
}

func TestBuilder_JournalMenu(t *testing.T) {
	markup := keyboard.NewBuilder(nil).JournalMenu()

	require.Len(t, markup.InlineKeyboard, 1)
	row := markup.InlineKeyboard[0]
	require.Len(t, row, 2)
	assert.Equal(t, keyboard.CallbackSell, row[0].Data)
	assert.Equal(t, keyboard.CallbackCancel, row[1].Data)
}
