// Package journal keeps the ordered, capacity-bounded log of captured entries.
package journal

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Proton-105/voice-journal/internal/domain"
)

// MaxEntries is the daily entry limit.
const MaxEntries = 6

// Persister writes the whole entry list of a session.
type Persister interface {
	SaveEntries(ctx context.Context, sessionID string, entries []domain.Entry) error
}

// Option customizes a Store.
type Option func(*Store)

// WithClock replaces the clock entries are stamped with.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMax overrides the capacity. Values below one are ignored.
func WithMax(max int) Option {
	return func(s *Store) {
		if max > 0 {
			s.max = max
		}
	}
}

// Store is an append-only entry log persisted on every mutation.
type Store struct {
	mu        sync.RWMutex
	sessionID string
	entries   []domain.Entry
	max       int
	persist   Persister
	now       func() time.Time
}

// NewStore returns a store for sessionID seeded with initial entries.
// persist may be nil, in which case nothing is written.
func NewStore(sessionID string, persist Persister, initial []domain.Entry, opts ...Option) *Store {
	s := &Store{
		sessionID: sessionID,
		entries:   append([]domain.Entry(nil), initial...),
		max:       MaxEntries,
		persist:   persist,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append adds an entry stamped with the store clock and persists the list.
// Blank text is ignored and reported as false. On persistence failure the entry is dropped again.
func (s *Store) Append(ctx context.Context, text string, typ domain.EntryType) (bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.entries
	next := make([]domain.Entry, len(previous), len(previous)+1)
	copy(next, previous)
	next = append(next, domain.Entry{Text: text, Type: typ, Time: s.now().UTC()})

	if err := s.save(ctx, next); err != nil {
		return false, err
	}

	s.entries = next
	return true, nil
}

// Clear removes every entry and persists the empty list.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.save(ctx, []domain.Entry{}); err != nil {
		return err
	}

	s.entries = nil
	return nil
}

// Entries returns a copy of the log in insertion order.
func (s *Store) Entries() []domain.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]domain.Entry(nil), s.entries...)
}

// Count returns the number of stored entries.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// Max returns the capacity.
func (s *Store) Max() int {
	return s.max
}

// IsFull reports whether the daily limit has been reached.
func (s *Store) IsFull() bool {
	return s.Count() >= s.max
}

// Fraction returns count/max clamped to [0, 1].
func (s *Store) Fraction() float64 {
	f := float64(s.Count()) / float64(s.max)
	if f > 1 {
		return 1
	}
	return f
}

func (s *Store) save(ctx context.Context, entries []domain.Entry) error {
	if s.persist == nil {
		return nil
	}
	return s.persist.SaveEntries(ctx, s.sessionID, entries)
}
