package state

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition_RecordsAllowedMoves(t *testing.T) {
	var recorded [][2]string
	RegisterTransitionRecorder(func(from, to string) {
		recorded = append(recorded, [2]string{from, to})
	})
	t.Cleanup(func() { RegisterTransitionRecorder(nil) })

	require.NoError(t, Transition(StateLoggedOut, StateIdle))
	require.NoError(t, Transition(StateIdle, StateAwaitingAnswer))

	err := Transition(StateFull, StateAwaitingAnswer)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	assert.Equal(t, [][2]string{
		{"logged_out", "idle"},
		{"idle", "awaiting_answer"},
	}, recorded)
}

func TestSession_AskAndClear(t *testing.T) {
	s := Session{LoggedIn: true}

	s.Ask("How was lunch?")
	assert.True(t, s.AwaitingAnswer)
	assert.Equal(t, "How was lunch?", s.CurrentQuestion)

	s.ClearQuestion()
	assert.False(t, s.AwaitingAnswer)
	assert.Empty(t, s.CurrentQuestion)
}
