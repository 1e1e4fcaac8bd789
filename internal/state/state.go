package state

// State represents a conversation state.
type State string

const (
	// StateLoggedOut indicates that the one-time voice login has not happened yet.
	StateLoggedOut State = "logged_out"
	// StateIdle indicates that the journal is waiting for the next free utterance.
	StateIdle State = "idle"
	// StateAwaitingAnswer indicates that a topical follow-up question was asked.
	StateAwaitingAnswer State = "awaiting_answer"
	// StateFull indicates that the daily entry limit has been reached.
	StateFull State = "full"
)

// States lists every state in display order.
var States = []State{StateLoggedOut, StateIdle, StateAwaitingAnswer, StateFull}

// Session captures the per-user conversation flags.
// LoggedIn and Credits are persisted; the pending question lives for one turn only.
type Session struct {
	ID              string `json:"id"`
	LoggedIn        bool   `json:"logged_in"`
	AwaitingAnswer  bool   `json:"awaiting_answer"`
	CurrentQuestion string `json:"current_question,omitempty"`
	Credits         int64  `json:"credits"`
}

// Current derives the state from the session flags and whether the entry store is full.
// Fullness wins over a pending question.
func (s Session) Current(full bool) State {
	switch {
	case !s.LoggedIn:
		return StateLoggedOut
	case full:
		return StateFull
	case s.AwaitingAnswer:
		return StateAwaitingAnswer
	default:
		return StateIdle
	}
}

// Ask stores a pending question.
func (s *Session) Ask(question string) {
	s.AwaitingAnswer = true
	s.CurrentQuestion = question
}

// ClearQuestion drops the pending question.
func (s *Session) ClearQuestion() {
	s.AwaitingAnswer = false
	s.CurrentQuestion = ""
}
