package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqledit/pkg/core"
	"github.com/spf13/cobra"
)

// NewCreateCommand creates the create command.
func NewCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <table> <column:type[:notnull][:pk]>...",
		Short: "Create a table if it does not exist",
		Long: `Create a table from column specs.

Each spec is name:type with optional :notnull and :pk modifiers. The type
is one of text, integer, real or blob. Primary key columns are numbered in
the order they appear, so several :pk columns make a composite key.

Creating a table that already exists does nothing.`,
		Example: `  sqledit create users id:integer:pk name:text:notnull
  sqledit create memberships user_id:integer:pk group_id:integer:pk since:text`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			columns, err := parseColumnSpecs(args[1:])
			if err != nil {
				return err
			}

			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := cc.Catalog.CreateTable(cmd.Context(), core.Table{Name: args[0], Columns: columns}); err != nil {
				return err
			}
			cc.Renderer.Success(fmt.Sprintf("table %s ready", args[0]))
			return nil
		},
	}
}

// parseColumnSpecs turns name:type[:notnull][:pk] specs into columns.
func parseColumnSpecs(specs []string) ([]core.Column, error) {
	columns := make([]core.Column, 0, len(specs))
	pk := 0
	for _, spec := range specs {
		parts := strings.Split(spec, ":")
		if len(parts) < 2 || parts[0] == "" {
			return nil, core.ValidationErrorf("", "column spec %q: want name:type[:notnull][:pk]", spec)
		}

		typ, err := core.ParseColumnType(parts[1], core.PolicyStrict)
		if err != nil {
			return nil, core.ValidationErrorf("", "column spec %q: unknown type %q", spec, parts[1])
		}

		col := core.Column{Name: parts[0], Type: typ, DeclaredType: strings.ToUpper(parts[1])}
		for _, mod := range parts[2:] {
			switch strings.ToLower(mod) {
			case "notnull":
				col.NotNull = true
			case "pk":
				pk++
				col.PrimaryKey = pk
			default:
				return nil, core.ValidationErrorf("", "column spec %q: unknown modifier %q", spec, mod)
			}
		}
		columns = append(columns, col)
	}
	return columns, nil
}

// DropOptions holds options for the drop command.
type DropOptions struct {
	Yes bool
}

// NewDropCommand creates the drop command.
func NewDropCommand() *cobra.Command {
	opts := &DropOptions{}

	cmd := &cobra.Command{
		Use:   "drop <table>",
		Short: "Drop a table if it exists",
		Long: `Drop a table and all its rows.

Dropping a table that does not exist does nothing. sqledit's own tables
and the engine's sqlite_ tables cannot be dropped. When run from a
terminal the command asks for confirmation unless --yes is given.`,
		Example: `  sqledit drop scratch --yes`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if !opts.Yes && canPrompt(cmd) && !confirm(cmd, fmt.Sprintf("Drop table %s?", args[0])) {
				cc.Renderer.Warning("aborted")
				return nil
			}

			if err := cc.Catalog.DropTable(cmd.Context(), core.Table{Name: args[0]}); err != nil {
				return err
			}
			cc.Renderer.Success(fmt.Sprintf("table %s dropped", args[0]))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

// confirm asks a yes/no question on stderr and reads the answer from stdin.
func confirm(cmd *cobra.Command, question string) bool {
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N] ", question)
	var answer string
	_, _ = fmt.Fscanln(cmd.InOrStdin(), &answer)
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// NewInsertCommand creates the insert command.
func NewInsertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "insert <table> <column=value>...",
		Short: "Insert one row",
		Long: `Insert one row into a table.

Values are bound as text; the column's declared type decides how the
engine stores them. Columns that are not given are left to their default.`,
		Example: `  sqledit insert users id=1 name=Ada`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}

			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := cc.Catalog.InsertRow(cmd.Context(), args[0], row); err != nil {
				return err
			}
			cc.Renderer.Success(fmt.Sprintf("1 row inserted into %s", args[0]))
			return nil
		},
	}
}

// parseAssignments turns column=value arguments into a row.
// Everything after the first '=' is the value, so values may contain '='.
func parseAssignments(args []string) (core.Row, error) {
	row := make(core.Row, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, core.ValidationErrorf("", "assignment %q: want column=value", arg)
		}
		if _, dup := row[name]; dup {
			return nil, core.ValidationErrorf("", "column %q assigned twice", name)
		}
		row[name] = value
	}
	return row, nil
}
