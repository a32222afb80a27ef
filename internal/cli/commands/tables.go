package commands

import (
	"github.com/leapstack-labs/sqledit/pkg/core"
	"github.com/spf13/cobra"
)

// TablesOptions holds options for the tables command.
type TablesOptions struct {
	WithSchema bool
	Bulk       bool
}

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	opts := &TablesOptions{}

	cmd := &cobra.Command{
		Use:     "tables",
		Aliases: []string{"ls"},
		Short:   "List user tables",
		Long: `List the tables of the database.

Tables owned by sqledit (prefixed __sqledit_) and tables the engine
maintains (prefixed sqlite_) are never listed.`,
		Example: `  # Table names only
  sqledit tables

  # Every table with its columns
  sqledit tables --with-schema

  # Same, read in a single catalog query
  sqledit tables --with-schema --bulk -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTables(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.WithSchema, "with-schema", "s", false, "Include each table's columns")
	cmd.Flags().BoolVar(&opts.Bulk, "bulk", false, "Read the whole schema in one query (implies --with-schema)")

	return cmd
}

func runTables(cmd *cobra.Command, opts *TablesOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()

	switch {
	case opts.Bulk:
		tables, err := cc.Catalog.DescribeCatalog(ctx)
		if err != nil {
			return err
		}
		return cc.Renderer.Catalog(tables, false)
	case opts.WithSchema:
		tables, err := cc.Catalog.ListTablesWithSchema(ctx)
		if err != nil {
			return err
		}
		return cc.Renderer.Catalog(tables, false)
	default:
		names, err := cc.Catalog.ListTables(ctx)
		if err != nil {
			return err
		}
		return cc.Renderer.TableNames(names)
	}
}

// NewColumnsCommand creates the columns command.
func NewColumnsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "columns <table>",
		Aliases: []string{"schema"},
		Short:   "Show a table's columns",
		Long: `Show the columns of a table in declaration order with their
type, declared type, NOT NULL flag and primary key position.

With --type-policy strict (the default) a column whose declared type is
not TEXT, INTEGER, REAL or BLOB is an error; use --type-policy lenient
to read such tables.`,
		Example: `  sqledit columns users
  sqledit columns legacy --type-policy lenient -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			columns, err := cc.Catalog.GetColumns(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return cc.Renderer.Columns(core.Table{Name: args[0], Columns: columns}, false)
		},
	}
}

// RowsOptions holds options for the rows command.
type RowsOptions struct {
	Watch bool
}

// NewRowsCommand creates the rows command.
func NewRowsCommand() *cobra.Command {
	opts := &RowsOptions{}

	cmd := &cobra.Command{
		Use:   "rows <table>",
		Short: "Print every row of a table",
		Long: `Print every row of a table in column order.

With --watch the rows are printed again whenever the database file is
written, until interrupted.`,
		Example: `  sqledit rows users
  sqledit rows users -o csv > users.csv
  sqledit rows jobs --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRows(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Print again when the database changes")

	return cmd
}

func runRows(cmd *cobra.Command, table string, opts *RowsOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	render := func() error {
		columns, err := cc.Catalog.GetColumns(ctx, table)
		if err != nil {
			return err
		}
		rows, err := cc.Catalog.GetRows(ctx, table)
		if err != nil {
			return err
		}
		return cc.Renderer.Rows(columns, rows)
	}

	if err := render(); err != nil {
		return err
	}
	if !opts.Watch {
		return nil
	}

	if cc.Gate.Path() == ":memory:" {
		return core.ValidationErrorf("", "cannot watch an in-memory database")
	}
	w, err := newDBWatcher(cc.Gate.Path(), cc.Logger)
	if err != nil {
		return err
	}
	return w.Run(ctx, func() error {
		cc.Renderer.Println()
		return render()
	})
}

// NewInfoCommand creates the info command.
func NewInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <table>",
		Short: "Show a table's columns with the values of its first row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			t, err := cc.Catalog.GetTableInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return cc.Renderer.Columns(*t, true)
		},
	}
}
