package bot

import "github.com/Proton-105/voice-journal/internal/bot/keyboard"

// Command constants for Telegram bot commands.
const (
	CommandStart  = "/start"
	CommandSell   = "/sell"
	CommandCancel = "/cancel"
	CommandStatus = "/status"
	CommandHelp   = "/help"
)

// Callback prefix constants for inline button interactions.
const (
	CallbackSell   = keyboard.CallbackSell
	CallbackCancel = keyboard.CallbackCancel
)
