package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/leapstack-labs/sqledit/pkg/core"
)

// queryResultSet runs query and converts every value to text with
// core.FormatValue. Duplicate column names keep the last value in each row.
func queryResultSet(ctx context.Context, db *sql.DB, query string, args ...any) (*core.ResultSet, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanResultSet(rows)
}

func scanResultSet(rows *sql.Rows) (*core.ResultSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	rs := &core.ResultSet{Columns: cols, Rows: []core.Row{}}
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(core.Row, len(cols))
		for i, name := range cols {
			row[name] = core.FormatValue(values[i])
		}
		rs.Rows = append(rs.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return rs, nil
}
