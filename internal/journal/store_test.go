package journal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/voice-journal/internal/domain"
)

var errDiskFull = errors.New("disk full")

type mockPersister struct {
	mock.Mock
}

func (m *mockPersister) SaveEntries(ctx context.Context, sessionID string, entries []domain.Entry) error {
	args := m.Called(ctx, sessionID, entries)
	return args.Error(0)
}

func fixedClock() func() time.Time {
	stamp := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		stamp = stamp.Add(time.Second)
		return stamp
	}
}

func TestStore_AppendPreservesOrderAndPersists(t *testing.T) {
	ctx := context.Background()
	p := &mockPersister{}
	p.On("SaveEntries", mock.Anything, "s1", mock.Anything).Return(nil)

	store := NewStore("s1", p, nil, WithClock(fixedClock()))

	ok, err := store.Append(ctx, "  Login me ", domain.EntryLogin)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = store.Append(ctx, "I had lunch", domain.EntryFree)
	require.NoError(t, err)

	entries := store.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Login me", entries[0].Text)
	assert.Equal(t, domain.EntryLogin, entries[0].Type)
	assert.Equal(t, "I had lunch", entries[1].Text)
	assert.True(t, entries[1].Time.After(entries[0].Time))

	p.AssertNumberOfCalls(t, "SaveEntries", 2)
	last := p.Calls[1].Arguments.Get(2).([]domain.Entry)
	assert.Equal(t, entries, last)
}

func TestStore_AppendIgnoresBlank(t *testing.T) {
	p := &mockPersister{}
	store := NewStore("s1", p, nil)

	ok, err := store.Append(context.Background(), "   \t", domain.EntryFree)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, store.Count())
	p.AssertNotCalled(t, "SaveEntries", mock.Anything, mock.Anything, mock.Anything)
}

func TestStore_AppendRollsBackOnFailure(t *testing.T) {
	p := &mockPersister{}
	p.On("SaveEntries", mock.Anything, "s1", mock.Anything).Return(errDiskFull).Once()

	initial := []domain.Entry{{Text: "earlier", Type: domain.EntryFree}}
	store := NewStore("s1", p, initial)

	ok, err := store.Append(context.Background(), "later", domain.EntryFree)
	assert.ErrorIs(t, err, errDiskFull)
	assert.False(t, ok)
	assert.Equal(t, initial, store.Entries())
}

func TestStore_Capacity(t *testing.T) {
	store := NewStore("s1", nil, nil)
	ctx := context.Background()

	for i := 0; i < MaxEntries-1; i++ {
		_, err := store.Append(ctx, "entry", domain.EntryFree)
		require.NoError(t, err)
		assert.False(t, store.IsFull())
	}

	_, err := store.Append(ctx, "last", domain.EntryFree)
	require.NoError(t, err)
	assert.True(t, store.IsFull())
	assert.Equal(t, 1.0, store.Fraction())
	assert.Equal(t, MaxEntries, store.Max())
}

func TestStore_Fraction(t *testing.T) {
	store := NewStore("s1", nil, []domain.Entry{
		{Text: "a", Type: domain.EntryFree},
		{Text: "b", Type: domain.EntryFree},
		{Text: "c", Type: domain.EntryFree},
	}, WithMax(2))

	assert.Equal(t, 1.0, store.Fraction())
	assert.InDelta(t, 0.5, NewStore("s2", nil, []domain.Entry{{Text: "a"}}, WithMax(2)).Fraction(), 1e-9)
	assert.Zero(t, NewStore("s3", nil, nil).Fraction())
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	p := &mockPersister{}
	p.On("SaveEntries", mock.Anything, "s1", []domain.Entry{}).Return(errDiskFull).Once()
	p.On("SaveEntries", mock.Anything, "s1", []domain.Entry{}).Return(nil).Once()

	store := NewStore("s1", p, []domain.Entry{{Text: "keep", Type: domain.EntryFree}})

	require.ErrorIs(t, store.Clear(ctx), errDiskFull)
	assert.Equal(t, 1, store.Count())

	require.NoError(t, store.Clear(ctx))
	assert.Zero(t, store.Count())
	assert.Empty(t, store.Entries())
	p.AssertExpectations(t)
}

func TestStore_EntriesIsACopy(t *testing.T) {
	store := NewStore("s1", nil, []domain.Entry{{Text: "original", Type: domain.EntryFree}})

	entries := store.Entries()
	entries[0].Text = "mutated"

	assert.Equal(t, "original", store.Entries()[0].Text)
}
