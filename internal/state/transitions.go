package state

// validTransitions contains the permitted transitions of one conversational turn.
var validTransitions = map[State][]State{
	StateLoggedOut: {
		StateIdle,
		StateFull,
	},
	StateIdle: {
		StateAwaitingAnswer,
		StateFull,
	},
	StateAwaitingAnswer: {
		StateIdle,
		StateFull,
	},
	StateFull: {
		StateIdle,
	},
}

// IsTransitionAllowed reports whether moving from one state to another is valid.
// Staying in the same state is always allowed.
func IsTransitionAllowed(from, to State) bool {
	if from == to {
		return isKnown(from)
	}

	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, state := range allowed {
		if state == to {
			return true
		}
	}

	return false
}

func isKnown(s State) bool {
	_, ok := validTransitions[s]
	return ok
}
