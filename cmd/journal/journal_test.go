package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Proton-105/voice-journal/internal/conversation"
	"github.com/Proton-105/voice-journal/internal/display"
	"github.com/Proton-105/voice-journal/internal/domain"
	apperrors "github.com/Proton-105/voice-journal/internal/errors"
	"github.com/Proton-105/voice-journal/internal/kv"
	"github.com/Proton-105/voice-journal/internal/speech"
	"github.com/Proton-105/voice-journal/internal/state"
	"github.com/Proton-105/voice-journal/pkg/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestREPL(t *testing.T) (*repl, *bytes.Buffer, *[]error) {
	t.Helper()

	var out bytes.Buffer
	console := display.NewConsole(&out)
	log := testLogger()

	m, err := conversation.New(context.Background(), conversation.Config{
		SessionID: "local",
		Storage:   state.NewRepository(kv.NewMemoryStore(), "test", log),
		Speaker:   speech.NewQueue(speech.NewWriterPlayer(&out, console.Assistant), log),
		Display:   console,
		Status:    console,
		Chooser:   func(int) int { return 0 },
		Log:       log,
	})
	require.NoError(t, err)

	var reported []error
	r := newREPL(m, console, func(_ context.Context, err error) { reported = append(reported, err) })
	return r, &out, &reported
}

func TestREPL_Session(t *testing.T) {
	r, out, reported := newTestREPL(t)

	input := strings.Join([]string{
		"Login me",
		"I had a work meeting today",
		"   ",
		"/log",
		"/sell",
		"/quit",
		"never reached",
	}, "\n")

	require.NoError(t, r.Run(context.Background(), strings.NewReader(input)))

	text := out.String()
	assert.Contains(t, text, conversation.LoginMessage(conversation.Greetings[0]))
	assert.Contains(t, text, "How did that work moment make you feel?")
	assert.Contains(t, text, "Login: ")
	assert.Contains(t, text, "credited")
	assert.NotContains(t, text, "never reached")
	assert.Empty(t, *reported)
	assert.Empty(t, r.machine.Snapshot().Entries)
}

func TestREPL_UnknownCommandShowsHelp(t *testing.T) {
	r, out, _ := newTestREPL(t)

	assert.True(t, r.Handle(context.Background(), "/dance"))
	assert.Contains(t, out.String(), "/sell")
	assert.Empty(t, r.machine.Snapshot().Entries)

	assert.False(t, r.Handle(context.Background(), "/EXIT"))
}

func TestREPL_StopsOnCancel(t *testing.T) {
	r, _, _ := newTestREPL(t)

	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, pr) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("repl did not stop")
	}
}

func TestExport(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	entries := []domain.Entry{
		{Text: "Login me", Type: domain.EntryLogin, Time: at},
		{Text: "Dinner with family", Type: domain.EntryFree, Time: at},
	}
	exported := buildExport("alice", state.Session{LoggedIn: true, Credits: 15}, entries)

	var yamlOut bytes.Buffer
	require.NoError(t, writeExport(&yamlOut, "yaml", exported))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(yamlOut.Bytes(), &decoded))
	assert.Equal(t, "alice", decoded["session_id"])
	assert.Equal(t, true, decoded["logged_in"])
	assert.Len(t, decoded["entries"], 2)

	var jsonOut bytes.Buffer
	require.NoError(t, writeExport(&jsonOut, "json", exported))

	var fromJSON exportedSession
	require.NoError(t, json.Unmarshal(jsonOut.Bytes(), &fromJSON))
	assert.Equal(t, domain.LabelBasic, fromJSON.Offer.Label)
	assert.Equal(t, 5, fromJSON.Offer.Amount)
	assert.Equal(t, "Login", fromJSON.Entries[0].Type)

	assert.Error(t, writeExport(&jsonOut, "xml", exported))
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()

	b, err := openBackend(ctx, config.Config{Storage: config.StorageConfig{Driver: "memory"}}, testLogger())
	require.NoError(t, err)
	assert.Nil(t, b.redis)
	require.NoError(t, b.close())

	b, err = openBackend(ctx, config.Config{Storage: config.StorageConfig{
		Driver:     "sqlite",
		SQLitePath: t.TempDir() + "/journal.db",
	}}, testLogger())
	require.NoError(t, err)
	require.NoError(t, b.store.Set(ctx, "k", "v"))
	require.NoError(t, b.close())

	_, err = openBackend(ctx, config.Config{Storage: config.StorageConfig{Driver: "floppy"}}, testLogger())
	assert.Error(t, err)
}

func TestReportUsesUserMessage(t *testing.T) {
	var out bytes.Buffer
	a := &app{errHandler: apperrors.NewHandler(testLogger(), false)}

	a.report(display.NewConsole(&out))(context.Background(), apperrors.NewStateError("nope", nil))
	assert.Contains(t, out.String(), "That isn't possible right now.")
}
