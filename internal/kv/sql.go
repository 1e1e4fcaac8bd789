package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/Proton-105/voice-journal/internal/database"
)

// Dialect selects the SQL flavour used by SQLStore.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

type sqlQueries struct {
	get    string
	upsert string
	delete string
}

var dialectQueries = map[Dialect]sqlQueries{
	DialectPostgres: {
		get: `SELECT value FROM journal_kv WHERE key = $1`,
		upsert: `INSERT INTO journal_kv (key, value, updated_at) VALUES ($1, $2, NOW())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		delete: `DELETE FROM journal_kv WHERE key = $1`,
	},
	DialectSQLite: {
		get: `SELECT value FROM journal_kv WHERE key = ?`,
		upsert: `INSERT INTO journal_kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		delete: `DELETE FROM journal_kv WHERE key = ?`,
	},
}

// SQLStore persists values in a journal_kv table.
type SQLStore struct {
	db      *sql.DB
	queries sqlQueries
	log     *slog.Logger
}

// NewSQLStore wraps an open database whose schema has already been migrated.
func NewSQLStore(db *sql.DB, dialect Dialect, log *slog.Logger) (*SQLStore, error) {
	queries, ok := dialectQueries[dialect]
	if !ok {
		return nil, fmt.Errorf("kv: unsupported sql dialect %q", dialect)
	}
	if log == nil {
		log = slog.Default()
	}

	return &SQLStore{db: db, queries: queries, log: log}, nil
}

// OpenSQL opens the database for dialect, verifies the connection and applies the embedded schema.
// For SQLite dsn is a file path; its directory is created when missing.
func OpenSQL(ctx context.Context, dialect Dialect, dsn string, log *slog.Logger) (*SQLStore, error) {
	if log == nil {
		log = slog.Default()
	}

	driverDSN := dsn
	if dialect == DialectSQLite {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		driverDSN = dsn + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open(string(dialect), driverDSN)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", dialect, err)
	}

	migrations, err := database.Migrations(string(dialect))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := database.NewMigrator(db, log.With(slog.String("dialect", string(dialect)))).Apply(ctx, migrations); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return NewSQLStore(db, dialect, log)
}

// Get returns the stored value or ErrNotFound.
func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.queries.get, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}

		s.log.Error("failed to get value from database", "key", key, "error", err)
		return "", err
	}

	return value, nil
}

// Set inserts or replaces the value under key.
func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, s.queries.upsert, key, value); err != nil {
		s.log.Error("failed to save value in database", "key", key, "error", err)
		return err
	}
	return nil
}

// Delete removes key.
func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.queries.delete, key); err != nil {
		s.log.Error("failed to delete value from database", "key", key, "error", err)
		return err
	}
	return nil
}

// Ping verifies the database connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DB exposes the underlying handle for health checks.
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
