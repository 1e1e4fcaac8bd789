package ops

import (
	"github.com/Proton-105/voice-journal/internal/conversation"
	"github.com/Proton-105/voice-journal/internal/display"
)

// RegistrySessions adapts a conversation.Registry to Sessions.
type RegistrySessions struct {
	Registry *conversation.Registry
}

// IDs returns the live session ids.
func (s RegistrySessions) IDs() []string {
	return s.Registry.IDs()
}

// Snapshot returns the view of a live session without creating one.
func (s RegistrySessions) Snapshot(sessionID string) (display.Snapshot, bool) {
	m, ok := s.Registry.Lookup(sessionID)
	if !ok {
		return display.Snapshot{}, false
	}
	return m.Snapshot(), true
}
