// Package gate owns the single database connection and the credential
// handshake that must succeed before the catalog accessor can use it.
//
// Credentials live in plaintext in the reserved table __sqledit_credentials.
// The gate decides whether the rest of sqledit may touch the file; it does
// not protect the file from anyone who can read it.
package gate

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/leapstack-labs/sqledit/pkg/core"
)

// State is the position of a Gate in its open/authenticate lifecycle.
type State int

// Gate states.
const (
	StateUnopened State = iota
	StateOpened
	StateSetupPerformed
	StateAuthenticated
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateOpened:
		return "opened"
	case StateSetupPerformed:
		return "setup-performed"
	case StateAuthenticated:
		return "authenticated"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Outcome reports how a successful Open ended.
type Outcome int

const (
	// OutcomeAuthenticated means the credentials matched and the connection is ready.
	OutcomeAuthenticated Outcome = iota + 1
	// OutcomeSetupRequired means the credentials table was missing and has just been
	// created with the default account. The connection stays open but is not
	// authenticated; the caller must tell the operator and authenticate again.
	OutcomeSetupRequired
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAuthenticated:
		return "authenticated"
	case OutcomeSetupRequired:
		return "setup-required"
	default:
		return "unknown"
	}
}

// Gate holds exactly one connection. It is not safe for concurrent use.
type Gate struct {
	db        *sql.DB
	path      string
	state     State
	sessionID string
	logger    *slog.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the gate's logger. nil keeps the discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New creates an unopened gate.
func New(opts ...Option) *Gate {
	g := &Gate{
		state:  StateUnopened,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Open connects to the database file at path and runs the credential handshake.
//
// On a database without the credentials table, Open creates it with the
// default account and returns OutcomeSetupRequired without checking
// username or password. Otherwise it authenticates and returns
// OutcomeAuthenticated. A connection already held by the gate is closed first.
func (g *Gate) Open(ctx context.Context, path, username, password string) (Outcome, error) {
	const op = "Open"

	if strings.TrimSpace(path) == "" {
		return 0, core.ConfigErrorf(op, "database path is not set")
	}

	if g.db != nil {
		g.logger.Debug("closing previous connection before reopening", "session", g.sessionID, "path", g.path)
		if err := g.Close(); err != nil {
			return 0, core.WithOp(op, err)
		}
	}

	db, err := openSQLite(ctx, path)
	if err != nil {
		return 0, core.EngineError(op, "failed to open database "+path, err)
	}

	g.db = db
	g.path = path
	g.state = StateOpened
	g.sessionID = uuid.NewString()
	log := g.logger.With("session", g.sessionID, "path", path)
	log.Debug("database opened")

	exists, err := credentialsTableExists(ctx, db)
	if err != nil {
		_ = g.Close()
		return 0, core.EngineError(op, "failed to inspect credentials table", err)
	}

	if !exists {
		if err := setupCredentials(ctx, db); err != nil {
			_ = g.Close()
			return 0, core.EngineError(op, "failed to initialize credentials table", err)
		}
		g.state = StateSetupPerformed
		log.Warn("credentials table created with default account", "username", core.DefaultUsername)
		return OutcomeSetupRequired, nil
	}

	if err := g.Authenticate(ctx, username, password); err != nil {
		return 0, err
	}
	return OutcomeAuthenticated, nil
}

// Authenticate checks username and password against the credentials table of
// the already open connection. It is how a caller retries after
// OutcomeSetupRequired or a failed attempt without reopening the file.
func (g *Gate) Authenticate(ctx context.Context, username, password string) error {
	const op = "Authenticate"

	if g.db == nil {
		return core.NotInitializedError(op)
	}
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return core.ValidationErrorf(op, "username and password are required")
	}

	ok, err := verifyCredentials(ctx, g.db, username, password)
	if err != nil {
		return core.EngineError(op, "failed to read credentials", err)
	}
	if !ok {
		if g.state == StateAuthenticated {
			g.state = StateOpened
		}
		g.logger.Info("authentication failed", "session", g.sessionID, "username", username)
		return core.AuthErrorf(op, "invalid username or password")
	}

	g.state = StateAuthenticated
	g.logger.Debug("authenticated", "session", g.sessionID, "username", username)
	return nil
}

// Close releases the connection. Closing a gate with no open connection is a no-op.
func (g *Gate) Close() error {
	if g.db == nil {
		return nil
	}

	g.logger.Debug("closing database connection", "session", g.sessionID, "path", g.path)
	err := g.db.Close()
	g.db = nil
	g.state = StateClosed
	g.sessionID = ""
	if err != nil {
		return core.EngineError("Close", "failed to close database", err)
	}
	return nil
}

// DB returns the live connection. It fails with NotInitialized unless the
// gate is authenticated.
func (g *Gate) DB() (*sql.DB, error) {
	if g.db == nil || g.state != StateAuthenticated {
		return nil, core.NotInitializedError("")
	}
	return g.db, nil
}

// State returns the current lifecycle state.
func (g *Gate) State() State {
	return g.state
}

// Path returns the path passed to the last Open.
func (g *Gate) Path() string {
	return g.path
}

// SessionID identifies the current connection in logs. Empty when closed.
func (g *Gate) SessionID() string {
	return g.sessionID
}
