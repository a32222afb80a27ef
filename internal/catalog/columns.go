package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/leapstack-labs/sqledit/pkg/core"
)

// The table name is bound as a value; pragma_table_info takes it as a
// string argument, not an identifier.
const columnsQuery = `
	SELECT name, type, "notnull", pk
	FROM pragma_table_info(?)
	ORDER BY cid
`

// describeQuery reads every table's columns in one round trip.
const describeQuery = `
	SELECT m.name, p.name, p.type, p."notnull", p.pk
	FROM sqlite_master AS m
	JOIN pragma_table_info(m.name) AS p
	WHERE m.type = 'table'
	ORDER BY m.name, p.cid
`

// GetColumns returns the ordered columns of table with empty values.
// Declared types are mapped with the accessor's TypePolicy. A table the
// engine does not know is a ValidationError.
func (a *Accessor) GetColumns(ctx context.Context, table string) ([]core.Column, error) {
	const op = "GetColumns"

	db, err := a.db(op)
	if err != nil {
		return nil, err
	}
	if err := a.dialect.ValidateIdentifier(table); err != nil {
		return nil, core.WithOp(op, err)
	}
	if core.IsReservedName(table) {
		return nil, hiddenTableError(op, table)
	}

	rows, err := db.QueryContext(ctx, columnsQuery, table)
	if err != nil {
		return nil, core.EngineError(op, fmt.Sprintf("failed to read columns of %q", table), err)
	}
	defer func() { _ = rows.Close() }()

	var columns []core.Column
	for rows.Next() {
		col, err := a.scanColumn(rows)
		if err != nil {
			return nil, core.WithOp(op, err)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, core.EngineError(op, "error iterating columns", err)
	}

	if len(columns) == 0 {
		return nil, core.ValidationErrorf(op, "table %q does not exist", table)
	}
	return columns, nil
}

// DescribeCatalog returns the column layout of every user table in a single
// query over sqlite_master. Values are empty; filtering and type policy
// match ListTables and GetColumns.
func (a *Accessor) DescribeCatalog(ctx context.Context) ([]core.Table, error) {
	const op = "DescribeCatalog"

	db, err := a.db(op)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, describeQuery)
	if err != nil {
		return nil, core.EngineError(op, "failed to describe catalog", err)
	}
	defer func() { _ = rows.Close() }()

	tables := []core.Table{}
	for rows.Next() {
		var tableName string
		var name, declared string
		var notNull, pk int
		if err := rows.Scan(&tableName, &name, &declared, &notNull, &pk); err != nil {
			return nil, core.EngineError(op, "failed to scan column", err)
		}
		if core.IsHiddenName(tableName) {
			continue
		}

		col, err := a.newColumn(name, declared, notNull, pk)
		if err != nil {
			return nil, core.WithOp(op, err)
		}

		if n := len(tables); n == 0 || tables[n-1].Name != tableName {
			tables = append(tables, core.Table{Name: tableName})
		}
		last := &tables[len(tables)-1]
		last.Columns = append(last.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, core.EngineError(op, "error iterating catalog", err)
	}

	a.logger.Debug("described catalog", "tables", len(tables))
	return tables, nil
}

func (a *Accessor) scanColumn(rows *sql.Rows) (core.Column, error) {
	var name, declared string
	var notNull, pk int
	if err := rows.Scan(&name, &declared, &notNull, &pk); err != nil {
		return core.Column{}, core.EngineError("", "failed to scan column", err)
	}
	return a.newColumn(name, declared, notNull, pk)
}

func (a *Accessor) newColumn(name, declared string, notNull, pk int) (core.Column, error) {
	typ, err := core.ParseColumnType(declared, a.policy)
	if err != nil {
		return core.Column{}, core.SchemaErrorf("", "column %q: unrecognized type %q", name, declared)
	}
	return core.Column{
		Name:         name,
		Type:         typ,
		DeclaredType: declared,
		NotNull:      notNull != 0,
		PrimaryKey:   pk,
	}, nil
}
