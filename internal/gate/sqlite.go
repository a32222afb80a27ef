package gate

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/leapstack-labs/sqledit/pkg/core"
	"github.com/leapstack-labs/sqledit/pkg/dialect"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// driverName is the database/sql name modernc.org/sqlite registers.
const driverName = "sqlite"

const defaultBusyTimeoutMS = 5000

// openSQLite opens path as a single-connection pool and verifies it.
func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open(driverName, buildDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One connection: the gate owns a single handle, and ":memory:"
	// databases are per-connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// buildDSN appends connection pragmas to path.
func buildDSN(path string) string {
	params := url.Values{}
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", defaultBusyTimeoutMS))
	params.Add("_pragma", "foreign_keys(1)")

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + params.Encode()
}

func credentialsTableExists(ctx context.Context, db *sql.DB) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`,
		core.CredentialsTable,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func verifyCredentials(ctx context.Context, db *sql.DB, username, password string) (bool, error) {
	//nolint:gosec // table name is a constant, values are bound
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE username = ? AND password = ?`,
		dialect.SQLite.QuoteIdentifier(core.CredentialsTable))

	var n int
	if err := db.QueryRowContext(ctx, query, username, password).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
