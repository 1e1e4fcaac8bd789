// Package display builds the derived view of a session and renders it.
package display

import (
	"fmt"

	"github.com/Proton-105/voice-journal/internal/domain"
	"github.com/Proton-105/voice-journal/internal/state"
)

// EmptyLog is shown instead of the entry log when nothing has been captured.
const EmptyLog = "No entries yet. Tap the mic to begin."

// Snapshot is everything a view needs after a mutation.
type Snapshot struct {
	SessionID    string         `json:"session_id"`
	State        state.State    `json:"state"`
	Entries      []domain.Entry `json:"entries"`
	Offer        domain.Offer   `json:"offer"`
	Fraction     float64        `json:"fraction"`
	LimitReached bool           `json:"limit_reached"`
	LoggedIn     bool           `json:"logged_in"`
	Credits      int64          `json:"credits"`
	Caption      string         `json:"caption,omitempty"`
}

// MeterLabel describes the offer shown on the value meter.
func MeterLabel(offer domain.Offer) string {
	if offer.Amount == 0 {
		return "₹0 offer"
	}
	return fmt.Sprintf("₹%d offer · %s", offer.Amount, offer.Label)
}

// LimitNote explains the daily limit.
func LimitNote(limitReached bool) string {
	if limitReached {
		return "Daily data limit reached. Further sharing will require a charge."
	}
	return "We only accept a limited amount of data per day."
}

// LoginStatus describes the login flag.
func LoginStatus(loggedIn bool) string {
	if loggedIn {
		return "Logged in. Dashboard stays open."
	}
	return "One-time voice login required. Say: 'Login me' or tell your name."
}

// LogLines formats entries as "{type}: {text}" in insertion order.
func LogLines(entries []domain.Entry) []string {
	if len(entries) == 0 {
		return []string{EmptyLog}
	}

	lines := make([]string, len(entries))
	for i, entry := range entries {
		lines[i] = fmt.Sprintf("%s: %s", entry.Type, entry.Text)
	}
	return lines
}

// Meter returns the offer label.
func (s Snapshot) Meter() string {
	return MeterLabel(s.Offer)
}

// Note returns the limit note.
func (s Snapshot) Note() string {
	return LimitNote(s.LimitReached)
}

// Login returns the login status line.
func (s Snapshot) Login() string {
	return LoginStatus(s.LoggedIn)
}
