package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Check credentials against a database",
		Long: `Open the database and check the configured credentials.

On a database that has never been opened by sqledit, login creates the
credentials table with the default account (admin/admin) and exits with
status 2; run it again with those credentials. Missing credentials are
prompted for when stdin is a terminal.`,
		Example: `  sqledit login -d app.db -u admin --password admin
  SQLEDIT_PASSWORD=admin sqledit login -d app.db -u admin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			cc.Renderer.Success(fmt.Sprintf("authenticated to %s", cc.Gate.Path()))
			cc.Logger.Debug("login succeeded", "session", cc.Gate.SessionID())
			return nil
		},
	}
}
