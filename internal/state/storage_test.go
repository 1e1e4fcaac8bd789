package state

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/voice-journal/internal/domain"
	apperrors "github.com/Proton-105/voice-journal/internal/errors"
	"github.com/Proton-105/voice-journal/internal/kv"
	appredis "github.com/Proton-105/voice-journal/pkg/redis"
)

var errBackendDown = errors.New("backend down")

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockStore) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *mockStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRepository_Key(t *testing.T) {
	assert.Equal(t, "journal:local:entries", NewRepository(nil, "journal", testLogger()).Key("local", "entries"))
	assert.Equal(t, "42:credits", NewRepository(nil, "", testLogger()).Key("42", "credits"))
}

func TestRepository_LoadSession_Defaults(t *testing.T) {
	repo := NewRepository(kv.NewMemoryStore(), "journal", testLogger())

	session, entries, err := repo.LoadSession(context.Background(), "local")
	require.NoError(t, err)

	assert.Equal(t, Session{ID: "local"}, session)
	assert.Empty(t, entries)
}

func TestRepository_RoundTripRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client, err := appredis.New(ctx, appredis.Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	repo := NewRepository(kv.NewRedisStore(client, client.Ping, testLogger()), "journal", testLogger())

	stamp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	entries := []domain.Entry{
		{Text: "Login me", Type: domain.EntryLogin, Time: stamp},
		{Text: "I had a meeting", Type: domain.EntryFree, Time: stamp.Add(time.Minute)},
	}

	require.NoError(t, repo.SaveLoggedIn(ctx, "7", true))
	require.NoError(t, repo.SaveCredits(ctx, "7", 15))
	require.NoError(t, repo.SaveEntries(ctx, "7", entries))

	raw, err := mr.Get("journal:7:entries")
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"text":"Login me","type":"Login","time":"2026-01-02T03:04:05Z"},
		{"text":"I had a meeting","type":"Entry","time":"2026-01-02T03:05:05Z"}
	]`, raw)
	assert.Equal(t, time.Duration(0), mr.TTL("journal:7:credits"))

	session, loaded, err := repo.LoadSession(ctx, "7")
	require.NoError(t, err)
	assert.True(t, session.LoggedIn)
	assert.Equal(t, int64(15), session.Credits)
	assert.Equal(t, entries, loaded)
}

func TestRepository_SaveEntries_EmptyIsArray(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	repo := NewRepository(store, "journal", testLogger())

	require.NoError(t, repo.SaveEntries(ctx, "local", nil))

	raw, err := store.Get(ctx, "journal:local:entries")
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestRepository_LoadSession_CorruptValues(t *testing.T) {
	testCases := []struct {
		name     string
		values   map[string]string
		expected Session
		entries  int
	}{
		{
			name:     "corrupt login flag",
			values:   map[string]string{"journal:s:logged_in": "maybe"},
			expected: Session{ID: "s"},
		},
		{
			name:     "corrupt credits",
			values:   map[string]string{"journal:s:logged_in": "true", "journal:s:credits": "lots"},
			expected: Session{ID: "s", LoggedIn: true},
		},
		{
			name:     "negative credits",
			values:   map[string]string{"journal:s:credits": "-5"},
			expected: Session{ID: "s"},
		},
		{
			name:     "corrupt entries",
			values:   map[string]string{"journal:s:entries": "{not json"},
			expected: Session{ID: "s"},
		},
		{
			name: "invalid entries dropped",
			values: map[string]string{"journal:s:entries": `[
				{"text":"ok","type":"Entry","time":"2026-01-02T03:04:05Z"},
				{"text":"","type":"Entry","time":"2026-01-02T03:04:05Z"},
				{"text":"odd","type":"Note","time":"2026-01-02T03:04:05Z"}
			]`},
			expected: Session{ID: "s"},
			entries:  1,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := kv.NewMemoryStore()
			for key, value := range tc.values {
				require.NoError(t, store.Set(ctx, key, value))
			}

			session, entries, err := NewRepository(store, "journal", testLogger()).LoadSession(ctx, "s")
			require.NoError(t, err)
			assert.Equal(t, tc.expected, session)
			assert.Len(t, entries, tc.entries)
		})
	}
}

func TestRepository_LoadSession_BackendError(t *testing.T) {
	store := &mockStore{}
	store.On("Get", mock.Anything, "journal:s:logged_in").Return("", errBackendDown).Once()

	_, _, err := NewRepository(store, "journal", testLogger()).LoadSession(context.Background(), "s")
	require.Error(t, err)
	assert.ErrorIs(t, err, errBackendDown)
	assert.Equal(t, apperrors.CodeStorage, apperrors.CodeOf(err))

	store.AssertExpectations(t)
}

func TestRepository_Save_RetriesTransientFailures(t *testing.T) {
	store := &mockStore{}
	store.On("Set", mock.Anything, "journal:s:credits", "10").Return(errBackendDown).Once()
	store.On("Set", mock.Anything, "journal:s:credits", "10").Return(nil).Once()

	err := NewRepository(store, "journal", testLogger()).SaveCredits(context.Background(), "s", 10)
	require.NoError(t, err)

	store.AssertExpectations(t)
}

func TestRepository_Save_GivesUp(t *testing.T) {
	store := &mockStore{}
	store.On("Set", mock.Anything, "journal:s:logged_in", "true").Return(errBackendDown).Times(apperrors.MaxRetries + 1)

	err := NewRepository(store, "journal", testLogger()).SaveLoggedIn(context.Background(), "s", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, errBackendDown)

	store.AssertExpectations(t)
}

func TestRepository_Save_StopsOnCancelledContext(t *testing.T) {
	store := &mockStore{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewRepository(store, "journal", testLogger()).SaveCredits(ctx, "s", 1)
	assert.ErrorIs(t, err, context.Canceled)
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}
