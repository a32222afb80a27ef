package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqledit/pkg/core"
)

// listTablesQuery reads table names in byte order. Hidden names are
// filtered in Go: "_" is a LIKE wildcard.
const listTablesQuery = `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`

// columnNamesQuery reads column names without mapping declared types.
const columnNamesQuery = `SELECT name FROM pragma_table_info(?) ORDER BY cid`

// ListTables returns the names of user tables in ascending order. Reserved
// sqledit tables and engine-internal tables are never included.
func (a *Accessor) ListTables(ctx context.Context) ([]string, error) {
	const op = "ListTables"

	db, err := a.db(op)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, listTablesQuery)
	if err != nil {
		return nil, core.EngineError(op, "failed to list tables", err)
	}
	defer func() { _ = rows.Close() }()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, core.EngineError(op, "failed to scan table name", err)
		}
		if core.IsHiddenName(name) {
			continue
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, core.EngineError(op, "error iterating tables", err)
	}

	a.logger.Debug("listed tables", "count", len(tables))
	return tables, nil
}

// GetRows returns every row of table in the engine's natural order.
// NULL becomes core.NullText; every other value is converted to text.
func (a *Accessor) GetRows(ctx context.Context, table string) ([]core.Row, error) {
	const op = "GetRows"

	db, err := a.db(op)
	if err != nil {
		return nil, err
	}
	quoted, err := a.tableIdentifier(op, table)
	if err != nil {
		return nil, err
	}
	if core.IsReservedName(table) {
		return nil, hiddenTableError(op, table)
	}

	names, err := columnNames(ctx, db, table)
	if err != nil {
		return nil, core.EngineError(op, fmt.Sprintf("failed to read columns of %q", table), err)
	}
	query, err := a.selectRows(quoted, names)
	if err != nil {
		return nil, core.WithOp(op, err)
	}

	rs, err := queryResultSet(ctx, db, query)
	if err != nil {
		return nil, core.EngineError(op, fmt.Sprintf("failed to read rows of %q", table), err)
	}
	return rs.Rows, nil
}

// GetTableInfo returns the columns of table joined with its first row only.
// Columns of an empty table keep empty values. Use GetColumns with GetRows to
// display a whole table.
func (a *Accessor) GetTableInfo(ctx context.Context, table string) (*core.Table, error) {
	const op = "GetTableInfo"

	columns, err := a.GetColumns(ctx, table)
	if err != nil {
		return nil, core.WithOp(op, err)
	}

	db, err := a.db(op)
	if err != nil {
		return nil, err
	}
	quoted, err := a.tableIdentifier(op, table)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	query, err := a.selectRows(quoted, names)
	if err != nil {
		return nil, core.WithOp(op, err)
	}

	rs, err := queryResultSet(ctx, db, query+" LIMIT 1")
	if err != nil {
		return nil, core.EngineError(op, fmt.Sprintf("failed to read first row of %q", table), err)
	}

	info := core.Table{Name: table, Columns: columns}
	if len(rs.Rows) > 0 {
		info = info.WithValues(rs.Rows[0])
	}
	return &info, nil
}

// ListTablesWithSchema returns GetTableInfo for every table ListTables
// reports, one round trip per table.
func (a *Accessor) ListTablesWithSchema(ctx context.Context) ([]core.Table, error) {
	const op = "ListTablesWithSchema"

	names, err := a.ListTables(ctx)
	if err != nil {
		return nil, core.WithOp(op, err)
	}

	tables := make([]core.Table, 0, len(names))
	for _, name := range names {
		info, err := a.GetTableInfo(ctx, name)
		if err != nil {
			return nil, core.WithOp(op, err)
		}
		tables = append(tables, *info)
	}
	return tables, nil
}

func columnNames(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	rows, err := db.QueryContext(ctx, columnNamesQuery, table)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// selectRows builds a select of every named column of quotedTable. Each
// column is read as +"c" AS "c": the unary plus leaves the value unchanged
// but drops the declared type, so the driver returns DATE, DATETIME and
// TIMESTAMP text as stored instead of as time.Time. Without names the
// query falls back to SELECT * and the engine reports the missing table.
func (a *Accessor) selectRows(quotedTable string, names []string) (string, error) {
	if len(names) == 0 {
		return "SELECT * FROM " + quotedTable, nil
	}

	exprs := make([]string, len(names))
	for i, name := range names {
		q, err := a.dialect.Identifier(name)
		if err != nil {
			return "", err
		}
		exprs[i] = "+" + q + " AS " + q
	}
	return "SELECT " + strings.Join(exprs, ", ") + " FROM " + quotedTable, nil
}
