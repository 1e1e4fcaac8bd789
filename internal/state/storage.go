// Package state holds the conversation states and the persisted session repository.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Proton-105/voice-journal/internal/domain"
	apperrors "github.com/Proton-105/voice-journal/internal/errors"
	"github.com/Proton-105/voice-journal/internal/kv"
)

const (
	loggedInSuffix = "logged_in"
	entriesSuffix  = "entries"
	creditsSuffix  = "credits"
)

// Storage defines the persistence contract for session flags and entries.
type Storage interface {
	// LoadSession returns the persisted session and entries, falling back to defaults.
	LoadSession(ctx context.Context, sessionID string) (Session, []domain.Entry, error)
	// SaveLoggedIn persists the login flag.
	SaveLoggedIn(ctx context.Context, sessionID string, loggedIn bool) error
	// SaveCredits persists the credit balance.
	SaveCredits(ctx context.Context, sessionID string, credits int64) error
	// SaveEntries persists the whole entry list.
	SaveEntries(ctx context.Context, sessionID string, entries []domain.Entry) error
}

// Repository stores sessions in a kv.Store under <prefix>:<session>:<field> keys.
type Repository struct {
	store  kv.Store
	prefix string
	log    *slog.Logger
}

// NewRepository creates a Repository over store.
func NewRepository(store kv.Store, prefix string, log *slog.Logger) *Repository {
	if log == nil {
		log = slog.Default()
	}

	return &Repository{
		store:  store,
		prefix: prefix,
		log:    log,
	}
}

// Key returns the storage key for field of sessionID.
func (r *Repository) Key(sessionID, field string) string {
	if r.prefix == "" {
		return fmt.Sprintf("%s:%s", sessionID, field)
	}
	return fmt.Sprintf("%s:%s:%s", r.prefix, sessionID, field)
}

// LoadSession reads the login flag, credits and entries. Missing or undecodable values
// fall back to defaults; only backend failures are returned.
func (r *Repository) LoadSession(ctx context.Context, sessionID string) (Session, []domain.Entry, error) {
	session := Session{ID: sessionID}

	raw, ok, err := r.get(ctx, sessionID, loggedInSuffix)
	if err != nil {
		return session, nil, err
	}
	if ok {
		loggedIn, parseErr := strconv.ParseBool(raw)
		if parseErr != nil {
			r.log.Warn("ignoring corrupt login flag", "session_id", sessionID, "error", parseErr)
		}
		session.LoggedIn = loggedIn
	}

	raw, ok, err = r.get(ctx, sessionID, creditsSuffix)
	if err != nil {
		return session, nil, err
	}
	if ok {
		credits, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil || credits < 0 {
			r.log.Warn("ignoring corrupt credit balance", "session_id", sessionID, "value", raw)
			credits = 0
		}
		session.Credits = credits
	}

	raw, ok, err = r.get(ctx, sessionID, entriesSuffix)
	if err != nil {
		return session, nil, err
	}

	var entries []domain.Entry
	if ok {
		entries = r.decodeEntries(sessionID, raw)
	}

	return session, entries, nil
}

// SaveLoggedIn persists the login flag.
func (r *Repository) SaveLoggedIn(ctx context.Context, sessionID string, loggedIn bool) error {
	return r.set(ctx, "save login flag", sessionID, loggedInSuffix, strconv.FormatBool(loggedIn))
}

// SaveCredits persists the credit balance.
func (r *Repository) SaveCredits(ctx context.Context, sessionID string, credits int64) error {
	return r.set(ctx, "save credits", sessionID, creditsSuffix, strconv.FormatInt(credits, 10))
}

// SaveEntries persists entries as a JSON array.
func (r *Repository) SaveEntries(ctx context.Context, sessionID string, entries []domain.Entry) error {
	if entries == nil {
		entries = []domain.Entry{}
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}

	return r.set(ctx, "save entries", sessionID, entriesSuffix, string(data))
}

func (r *Repository) get(ctx context.Context, sessionID, field string) (string, bool, error) {
	value, err := r.store.Get(ctx, r.Key(sessionID, field))
	switch {
	case errors.Is(err, kv.ErrNotFound):
		return "", false, nil
	case err != nil:
		r.log.Error("failed to load session field", "session_id", sessionID, "field", field, "error", err)
		return "", false, apperrors.NewStorageError("load "+field, err)
	}
	return value, true, nil
}

func (r *Repository) set(ctx context.Context, op, sessionID, field, value string) error {
	key := r.Key(sessionID, field)

	err := apperrors.WithRetry(ctx, func() error {
		if err := r.store.Set(ctx, key, value); err != nil {
			return apperrors.NewStorageError(op, err)
		}
		return nil
	})
	if err != nil {
		r.log.Error("failed to persist session field", "session_id", sessionID, "field", field, "error", err)
		return err
	}

	return nil
}

func (r *Repository) decodeEntries(sessionID, raw string) []domain.Entry {
	var stored []domain.Entry
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		r.log.Warn("ignoring corrupt entry list", "session_id", sessionID, "error", err)
		return nil
	}

	entries := make([]domain.Entry, 0, len(stored))
	for _, entry := range stored {
		if entry.Text == "" || !entry.Type.Valid() {
			r.log.Warn("dropping invalid stored entry", "session_id", sessionID, "type", string(entry.Type))
			continue
		}
		entries = append(entries, entry)
	}

	return entries
}
