// Package database applies the SQL schema used by the SQL key-value store.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"regexp"
	"sort"
	"strings"
)

//go:embed migrations
var migrationsFS embed.FS

// versionTable records applied migrations. It uses only SQL common to postgres and sqlite.
const versionTable = "journal_schema_versions"

var versionPattern = regexp.MustCompile(`^[0-9A-Za-z_.-]+$`)

// Migrations returns the embedded migrations directory for a dialect ("postgres" or "sqlite").
func Migrations(dialect string) (fs.FS, error) {
	sub, err := fs.Sub(migrationsFS, path.Join("migrations", dialect))
	if err != nil {
		return nil, fmt.Errorf("migrations for %q: %w", dialect, err)
	}
	return sub, nil
}

// Migrator applies .up.sql files in lexical order, each at most once.
type Migrator struct {
	db  *sql.DB
	log *slog.Logger
}

func NewMigrator(db *sql.DB, log *slog.Logger) *Migrator {
	if log == nil {
		log = slog.Default()
	}
	return &Migrator{db: db, log: log}
}

// Apply runs every pending *.up.sql file at the root of fsys and returns how many ran.
func (m *Migrator) Apply(ctx context.Context, fsys fs.FS) (int, error) {
	names, err := ListMigrations(fsys, ".")
	if err != nil {
		return 0, fmt.Errorf("list migrations: %w", err)
	}

	if _, err := m.db.ExecContext(ctx,
		"CREATE TABLE IF NOT EXISTS "+versionTable+" (version TEXT PRIMARY KEY)"); err != nil {
		return 0, fmt.Errorf("create %s: %w", versionTable, err)
	}

	done, err := m.applied(ctx)
	if err != nil {
		return 0, err
	}

	ran := 0
	for _, name := range names {
		if done[name] {
			continue
		}
		if err := m.run(ctx, fsys, name); err != nil {
			return ran, err
		}
		ran++
	}

	m.log.Info("schema up to date", slog.Int("applied", ran), slog.Int("total", len(names)))
	return ran, nil
}

func (m *Migrator) applied(ctx context.Context) (map[string]bool, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT version FROM "+versionTable)
	if err != nil {
		return nil, fmt.Errorf("read applied migrations: %w", err)
	}
	defer rows.Close()

	done := map[string]bool{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		done[v] = true
	}
	return done, rows.Err()
}

// run executes one file and records its version in the same transaction.
func (m *Migrator) run(ctx context.Context, fsys fs.FS, name string) error {
	if !versionPattern.MatchString(name) {
		return fmt.Errorf("migration %q: unsupported file name", name)
	}

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read migration %q: %w", name, err)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %q: %w", name, err)
	}
	defer func() { _ = tx.Rollback() }()

	if stmt := strings.TrimSpace(string(data)); stmt != "" {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute migration %q: %w", name, err)
		}
	} else {
		m.log.Warn("empty migration", slog.String("file", name))
	}

	// name is checked against versionPattern above, so it is safe to inline.
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO "+versionTable+" (version) VALUES ('"+name+"')"); err != nil {
		return fmt.Errorf("record migration %q: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %q: %w", name, err)
	}
	m.log.Info("migration applied", slog.String("file", name))
	return nil
}

// ListMigrations returns all .up.sql files in dir in lexical order.
func ListMigrations(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, path.Join(dir, e.Name()))
		}
	}
	sort.Strings(names)
	return names, nil
}
