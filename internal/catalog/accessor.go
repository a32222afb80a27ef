// Package catalog discovers tables and columns of a SQLite database at
// runtime and reads and writes rows without prior knowledge of its schema.
//
// An Accessor holds no connection of its own. Every call asks its Conn for
// the live handle, so once the gate is closed or unauthenticated every
// operation fails with core.ErrNotInitialized. Results are snapshots rebuilt
// on each call. An Accessor is not safe for concurrent use.
package catalog

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/sqledit/pkg/core"
	"github.com/leapstack-labs/sqledit/pkg/dialect"
)

// Conn yields the authenticated connection, or a NotInitialized error.
// *gate.Gate satisfies it.
type Conn interface {
	DB() (*sql.DB, error)
}

// connFunc adapts a function to Conn.
type connFunc func() (*sql.DB, error)

func (f connFunc) DB() (*sql.DB, error) { return f() }

// FromDB wraps an already open handle as a Conn. A nil db behaves like a
// closed gate.
func FromDB(db *sql.DB) Conn {
	return connFunc(func() (*sql.DB, error) {
		if db == nil {
			return nil, core.NotInitializedError("")
		}
		return db, nil
	})
}

// Accessor performs schema and data operations over a Conn.
type Accessor struct {
	conn    Conn
	policy  core.TypePolicy
	dialect *dialect.Dialect
	logger  *slog.Logger
}

// Option configures an Accessor.
type Option func(*Accessor)

// WithTypePolicy sets how unrecognized declared column types are handled.
// The default is core.PolicyStrict.
func WithTypePolicy(p core.TypePolicy) Option {
	return func(a *Accessor) {
		a.policy = p
	}
}

// WithLogger sets the accessor's logger. nil keeps the discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Accessor) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an Accessor over conn.
func New(conn Conn, opts ...Option) *Accessor {
	a := &Accessor{
		conn:    conn,
		policy:  core.PolicyStrict,
		dialect: dialect.SQLite,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// TypePolicy returns the policy applied when reading column types.
func (a *Accessor) TypePolicy() core.TypePolicy {
	return a.policy
}

// db resolves the live handle for op.
func (a *Accessor) db(op string) (*sql.DB, error) {
	if a.conn == nil {
		return nil, core.NotInitializedError(op)
	}
	db, err := a.conn.DB()
	if err != nil {
		return nil, core.WithOp(op, err)
	}
	if db == nil {
		return nil, core.NotInitializedError(op)
	}
	return db, nil
}

// ExecuteStatement runs a statement that returns no rows and reports the
// number of rows it affected. Parameter names may carry an @, : or $ prefix.
func (a *Accessor) ExecuteStatement(ctx context.Context, query string, params map[string]any) (int64, error) {
	const op = "ExecuteStatement"

	db, err := a.db(op)
	if err != nil {
		return 0, err
	}
	if strings.TrimSpace(query) == "" {
		return 0, core.ValidationErrorf(op, "statement is empty")
	}

	a.logger.Debug("executing statement", "sql", query, "params", len(params))
	res, err := db.ExecContext(ctx, query, namedArgs(params)...)
	if err != nil {
		return 0, core.EngineError(op, "failed to execute statement", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, core.EngineError(op, "failed to read rows affected", err)
	}
	return n, nil
}

// Query runs a statement that returns rows and materializes the full result,
// keeping the engine's column order.
func (a *Accessor) Query(ctx context.Context, query string, params map[string]any) (*core.ResultSet, error) {
	const op = "Query"

	db, err := a.db(op)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, core.ValidationErrorf(op, "query is empty")
	}

	a.logger.Debug("running query", "sql", query, "params", len(params))
	rs, err := queryResultSet(ctx, db, query, namedArgs(params)...)
	if err != nil {
		return nil, core.EngineError(op, "failed to run query", err)
	}
	return rs, nil
}

// namedArgs converts params to sql.Named arguments, stripping any
// parameter prefix from the names.
func namedArgs(params map[string]any) []any {
	if len(params) == 0 {
		return nil
	}
	args := make([]any, 0, len(params))
	for name, v := range params {
		args = append(args, sql.Named(strings.TrimLeft(name, "@:$"), v))
	}
	return args
}

// hiddenTableError rejects operations on reserved or engine-internal tables.
func hiddenTableError(op, table string) error {
	return core.ValidationErrorf(op, "table %q is reserved", table)
}

// tableIdentifier validates and quotes a caller-supplied table name.
func (a *Accessor) tableIdentifier(op, table string) (string, error) {
	quoted, err := a.dialect.Identifier(table)
	if err != nil {
		return "", core.WithOp(op, err)
	}
	return quoted, nil
}
