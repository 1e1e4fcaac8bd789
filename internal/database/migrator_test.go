package database

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"002_second.up.sql":  {Data: []byte("SELECT 2;")},
		"001_first.up.sql":   {Data: []byte("SELECT 1;")},
		"001_first.down.sql": {Data: []byte("SELECT 0;")},
		"notes.txt":          {Data: []byte("ignored")},
		"nested/003.up.sql":  {Data: []byte("SELECT 3;")},
	}

	names, err := ListMigrations(fsys, ".")
	require.NoError(t, err)
	assert.Equal(t, []string{"001_first.up.sql", "002_second.up.sql"}, names)
}

func TestMigrations_EmbeddedDialects(t *testing.T) {
	for _, dialect := range []string{"postgres", "sqlite"} {
		fsys, err := Migrations(dialect)
		require.NoError(t, err)

		names, err := ListMigrations(fsys, ".")
		require.NoError(t, err)
		assert.NotEmpty(t, names, dialect)
	}
}

func TestMigrator_AppliesEachFileOnce(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	m := NewMigrator(db, slog.New(slog.NewTextHandler(io.Discard, nil)))

	fsys := fstest.MapFS{
		"001_notes.up.sql": {Data: []byte("CREATE TABLE notes (body TEXT)")},
		"002_seed.up.sql":  {Data: []byte("INSERT INTO notes (body) VALUES ('first')")},
	}

	ran, err := m.Apply(ctx, fsys)
	require.NoError(t, err)
	assert.Equal(t, 2, ran)

	ran, err = m.Apply(ctx, fsys)
	require.NoError(t, err)
	assert.Zero(t, ran)

	var rows int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM notes").Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestMigrator_FailedFileIsNotRecorded(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	m := NewMigrator(db, nil)

	_, err := m.Apply(ctx, fstest.MapFS{"001_bad.up.sql": {Data: []byte("CREATE TABLE")}})
	require.Error(t, err)

	var recorded int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+versionTable).Scan(&recorded))
	assert.Zero(t, recorded)
}

func TestMigrator_EmbeddedSQLiteSchema(t *testing.T) {
	fsys, err := Migrations("sqlite")
	require.NoError(t, err)

	ran, err := NewMigrator(openSQLite(t), nil).Apply(context.Background(), fsys)
	require.NoError(t, err)
	assert.Positive(t, ran)
}
