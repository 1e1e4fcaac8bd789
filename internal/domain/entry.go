// Package domain holds the journal's core value types.
package domain

import "time"

// EntryType tags an entry with the conversation role it was captured in.
type EntryType string

const (
	// EntryLogin marks the utterance that performed the one-time login.
	EntryLogin EntryType = "Login"
	// EntryFree marks a free-form utterance captured while idle.
	EntryFree EntryType = "Entry"
	// EntryAnswer marks a reply to a follow-up question.
	EntryAnswer EntryType = "Answer"
)

// Valid reports whether t is one of the known entry types.
func (t EntryType) Valid() bool {
	switch t {
	case EntryLogin, EntryFree, EntryAnswer:
		return true
	default:
		return false
	}
}

// Entry is one captured utterance with its role tag and capture time.
type Entry struct {
	Text string    `json:"text"`
	Type EntryType `json:"type"`
	Time time.Time `json:"time"`
}
