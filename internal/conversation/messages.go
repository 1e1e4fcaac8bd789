package conversation

import "fmt"

// Greetings are spoken after login; the first one also welcomes the user on start.
var Greetings = []string{
	"Welcome back. Tell me about your day.",
	"I'm here to listen. What happened today?",
	"Let's capture your day. Start speaking.",
}

// Fixed replies.
const (
	AnswerAck     = "Got it. Anything else you'd like to say?"
	LimitReached  = "You've reached the daily data limit. You can sell this data or stop for now."
	NothingToSell = "There's no data to sell yet."
	Cancelled     = "Okay, we won't use this data. You can keep journaling or stop anytime."
)

const loginPrefix = "Login complete. Welcome. "

// LoginMessage is spoken when the first utterance logs the user in.
func LoginMessage(greeting string) string {
	return loginPrefix + greeting
}

// SellMessage confirms a credited offer.
func SellMessage(amount int, balance int64) string {
	return fmt.Sprintf("Thanks. ₹%d credited. Your balance is ₹%d. You can withdraw anytime.", amount, balance)
}
