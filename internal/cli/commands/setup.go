package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/leapstack-labs/sqledit/internal/catalog"
	"github.com/leapstack-labs/sqledit/internal/cli/config"
	"github.com/leapstack-labs/sqledit/internal/cli/output"
	"github.com/leapstack-labs/sqledit/internal/gate"
	"github.com/leapstack-labs/sqledit/pkg/core"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// ErrSetupRequired is returned when a command created the credentials table
// and the caller has to log in again with the default account.
var ErrSetupRequired = errors.New("database initialized, log in with the default account")

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Gate     *gate.Gate
	Catalog  *catalog.Accessor
	Renderer *output.Renderer
}

// NewCommandContext opens the configured database and authenticates.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cc, err := NewCommandContextWithoutDB(cmd)
	if err != nil {
		return nil, nil, err
	}

	g := gate.New(gate.WithLogger(cc.Logger))
	cleanup := func() {
		if err := g.Close(); err != nil {
			cc.Logger.Warn("failed to close database", "error", err)
		}
	}

	user, password := cc.Cfg.User, cc.Cfg.Password
	outcome, err := g.Open(cmd.Context(), cc.Cfg.Database, user, password)
	switch {
	case err == nil && outcome == gate.OutcomeSetupRequired:
		cc.Renderer.Notice("Database initialized",
			fmt.Sprintf("A credentials table was created in %s.\nLog in with username %q and password %q.",
				cc.Cfg.Database, core.DefaultUsername, core.DefaultPassword))
		if !canPrompt(cmd) {
			err = ErrSetupRequired
			break
		}
		err = login(cmd, g, user, password)
	case errors.Is(err, core.ErrValidation) && g.State() == gate.StateOpened && canPrompt(cmd):
		// Credentials were not configured; ask for the missing ones.
		err = login(cmd, g, user, password)
	}
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	cc.Gate = g
	cc.Catalog = catalog.New(g,
		catalog.WithTypePolicy(cc.Cfg.TypePolicy),
		catalog.WithLogger(cc.Logger.With("session", g.SessionID())),
	)
	return cc, cleanup, nil
}

// NewCommandContextWithoutDB creates a CommandContext without a database.
// Useful for commands that don't need database access.
func NewCommandContextWithoutDB(cmd *cobra.Command) (*CommandContext, error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, err
	}

	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), format),
	}, nil
}

// getConfig returns the configuration loaded by the root command, loading it
// from the working directory and environment when a command runs on its own.
func getConfig() (*config.Config, error) {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg, nil
	}
	return config.LoadConfig("", nil)
}

// canPrompt reports whether the command reads from an interactive terminal.
var canPrompt = func(cmd *cobra.Command) bool {
	return output.IsTerminal(cmd.InOrStdin())
}

// login prompts for missing credentials and authenticates the open gate.
func login(cmd *cobra.Command, g *gate.Gate, user, password string) error {
	user, password, err := promptCredentials(cmd, user, password)
	if err != nil {
		return err
	}
	return g.Authenticate(cmd.Context(), user, password)
}

// promptCredentials asks for whichever of username and password is empty.
// The password is read without echo.
func promptCredentials(cmd *cobra.Command, user, password string) (string, string, error) {
	if user != "" && password != "" {
		return user, password, nil
	}
	in, ok := cmd.InOrStdin().(*os.File)
	if !ok {
		return "", "", core.ConfigErrorf("", "cannot prompt for credentials without a terminal")
	}
	errOut := cmd.ErrOrStderr()

	if user == "" {
		_, _ = fmt.Fprint(errOut, "Username: ")
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", "", fmt.Errorf("failed to read username: %w", err)
		}
		user = strings.TrimSpace(line)
	}

	if password == "" {
		_, _ = fmt.Fprint(errOut, "Password: ")
		pw, err := term.ReadPassword(int(in.Fd()))
		_, _ = fmt.Fprintln(errOut)
		if err != nil {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		password = string(pw)
	}
	return user, password, nil
}
