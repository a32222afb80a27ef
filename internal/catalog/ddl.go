package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/sqledit/pkg/core"
)

// CreateTable creates table from its name and column layout. Values are
// ignored. Creating a table that already exists is a no-op, so feeding
// GetColumns output back in is idempotent.
func (a *Accessor) CreateTable(ctx context.Context, table core.Table) error {
	const op = "CreateTable"

	db, err := a.db(op)
	if err != nil {
		return err
	}

	stmt, err := a.buildCreateTable(table)
	if err != nil {
		return core.WithOp(op, err)
	}

	a.logger.Debug("creating table", "table", table.Name, "columns", len(table.Columns))
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return core.EngineError(op, fmt.Sprintf("failed to create table %q", table.Name), err)
	}
	return nil
}

// buildCreateTable validates table and renders its CREATE TABLE statement.
// A single key column is declared inline, a composite key as a table
// constraint ordered by key position.
func (a *Accessor) buildCreateTable(table core.Table) (string, error) {
	if strings.TrimSpace(table.Name) == "" {
		return "", core.ValidationErrorf("", "table name is required")
	}
	quotedTable, err := a.dialect.Identifier(table.Name)
	if err != nil {
		return "", err
	}
	if core.IsHiddenName(table.Name) {
		return "", hiddenTableError("", table.Name)
	}
	if len(table.Columns) == 0 {
		return "", core.ValidationErrorf("", "table %q needs at least one column", table.Name)
	}

	seen := make(map[string]struct{}, len(table.Columns))
	keywords := make([]string, len(table.Columns))
	var keyCols []core.Column
	for i, col := range table.Columns {
		if strings.TrimSpace(col.Name) == "" {
			return "", core.ValidationErrorf("", "column %d of %q has no name", i+1, table.Name)
		}
		if err := a.dialect.ValidateIdentifier(col.Name); err != nil {
			return "", err
		}
		// Column names are case-insensitive in the engine.
		folded := strings.ToLower(col.Name)
		if _, dup := seen[folded]; dup {
			return "", core.ValidationErrorf("", "duplicate column %q in %q", col.Name, table.Name)
		}
		seen[folded] = struct{}{}

		kw, err := col.Type.Keyword()
		if err != nil {
			return "", core.SchemaErrorf("", "column %q: %v", col.Name, err)
		}
		keywords[i] = kw
		if col.PrimaryKey > 0 {
			keyCols = append(keyCols, col)
		}
	}

	defs := make([]string, 0, len(table.Columns)+1)
	for i, col := range table.Columns {
		def := a.dialect.QuoteIdentifier(col.Name) + " " + keywords[i]
		if col.NotNull {
			def += " NOT NULL"
		}
		if len(keyCols) == 1 && col.PrimaryKey > 0 {
			def += " PRIMARY KEY"
		}
		defs = append(defs, def)
	}

	if len(keyCols) > 1 {
		sort.SliceStable(keyCols, func(i, j int) bool {
			return keyCols[i].PrimaryKey < keyCols[j].PrimaryKey
		})
		names := make([]string, len(keyCols))
		for i, c := range keyCols {
			names[i] = a.dialect.QuoteIdentifier(c.Name)
		}
		defs = append(defs, "PRIMARY KEY ("+strings.Join(names, ", ")+")")
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quotedTable, strings.Join(defs, ", ")), nil
}

// DropTable drops table. Dropping a table that does not exist succeeds.
func (a *Accessor) DropTable(ctx context.Context, table core.Table) error {
	const op = "DropTable"

	db, err := a.db(op)
	if err != nil {
		return err
	}
	if strings.TrimSpace(table.Name) == "" {
		return core.ValidationErrorf(op, "table name is required")
	}
	quoted, err := a.tableIdentifier(op, table.Name)
	if err != nil {
		return err
	}
	if core.IsHiddenName(table.Name) {
		return hiddenTableError(op, table.Name)
	}

	a.logger.Debug("dropping table", "table", table.Name)
	if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoted); err != nil {
		return core.EngineError(op, fmt.Sprintf("failed to drop table %q", table.Name), err)
	}
	return nil
}

// InsertRow inserts row into table. Column names are quoted identifiers in
// sorted order; values are bound as parameters. Constraint violations and
// type mismatches come back as EngineError.
func (a *Accessor) InsertRow(ctx context.Context, table string, row core.Row) error {
	const op = "InsertRow"

	db, err := a.db(op)
	if err != nil {
		return err
	}

	stmt, args, err := a.buildInsert(table, row)
	if err != nil {
		return core.WithOp(op, err)
	}

	if _, err := db.ExecContext(ctx, stmt, args...); err != nil {
		return core.EngineError(op, fmt.Sprintf("failed to insert into %q", table), err)
	}
	return nil
}

func (a *Accessor) buildInsert(table string, row core.Row) (string, []any, error) {
	if strings.TrimSpace(table) == "" {
		return "", nil, core.ValidationErrorf("", "table name is required")
	}
	quotedTable, err := a.dialect.Identifier(table)
	if err != nil {
		return "", nil, err
	}
	if core.IsHiddenName(table) {
		return "", nil, hiddenTableError("", table)
	}
	if len(row) == 0 {
		return "", nil, core.ValidationErrorf("", "row for %q has no values", table)
	}

	keys := row.Keys()
	cols, err := a.dialect.IdentifierList(keys)
	if err != nil {
		return "", nil, err
	}
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = row[k]
	}

	//nolint:gosec // identifiers are validated and quoted, values are bound
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quotedTable, cols, a.dialect.Placeholders(len(keys)))
	return stmt, args, nil
}
