package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// DatabasePath returns a path to a not-yet-existing database file in a
// per-test temporary directory.
func DatabasePath(t testing.TB) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

// RawDB opens path directly with the sqlite driver, bypassing the gate.
// Use it to arrange fixtures and to inspect what sqledit wrote.
func RawDB(t testing.TB, path string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// MustExec runs each statement against db, failing the test on error.
func MustExec(t testing.TB, db *sql.DB, statements ...string) {
	t.Helper()

	for _, stmt := range statements {
		_, err := db.ExecContext(context.Background(), stmt)
		require.NoError(t, err, "exec %q", stmt)
	}
}
