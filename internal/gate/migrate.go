package gate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/leapstack-labs/sqledit/pkg/core"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// configureGoose points goose at the embedded migrations and the reserved
// version table.
func configureGoose() error {
	goose.SetBaseFS(migrations)
	goose.SetTableName(core.MigrationsTable)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return nil
}

// setupCredentials creates the credentials table with the default account.
func setupCredentials(ctx context.Context, db *sql.DB) error {
	if err := configureGoose(); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// A version table that claims the migration ran while the credentials
	// table is gone leaves goose with nothing to do.
	exists, err := credentialsTableExists(ctx, db)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%s records the credentials migration but %s is missing; drop %s to re-run setup",
			core.MigrationsTable, core.CredentialsTable, core.MigrationsTable)
	}
	return nil
}

// MigrationVersion returns the credentials schema version recorded in db.
func MigrationVersion(ctx context.Context, db *sql.DB) (int64, error) {
	if err := configureGoose(); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, db)
}
