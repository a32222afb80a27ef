package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/leapstack-labs/sqledit/internal/catalog"
	"github.com/leapstack-labs/sqledit/internal/cli/output"
	"github.com/spf13/cobra"
)

// ExecOptions holds options for the exec command.
type ExecOptions struct {
	Input  string
	Params []string
}

// NewExecCommand creates the exec command.
func NewExecCommand() *cobra.Command {
	opts := &ExecOptions{}

	cmd := &cobra.Command{
		Use:   "exec [SQL]",
		Short: "Run a SQL statement",
		Long: `Run one SQL statement against the database.

Statements that return rows (SELECT, WITH, PRAGMA, VALUES, EXPLAIN) are
printed in the configured output format. Anything else reports the number
of rows it changed.

Named parameters are written @name, :name or $name in the statement and
given with --param name=value. The SQL is read from the arguments, from
--file, or from stdin when it is piped.`,
		Example: `  sqledit exec "SELECT * FROM users WHERE id = @id" --param id=1
  sqledit exec "DELETE FROM sessions WHERE expires < :now" -p now=2024-01-01
  sqledit exec -f migrate.sql
  echo "SELECT count(*) FROM users" | sqledit exec -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "file", "f", "", "Read SQL from file")
	cmd.Flags().StringArrayVarP(&opts.Params, "param", "p", nil, "Named parameter as name=value (repeatable)")

	return cmd
}

func runExec(cmd *cobra.Command, args []string, opts *ExecOptions) error {
	var query string
	switch {
	case len(args) > 0:
		query = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		query = string(content)
	case !canPrompt(cmd):
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		query = string(content)
	default:
		return fmt.Errorf("no SQL given (pass it as an argument, with --file, or on stdin)")
	}

	params, err := parseParams(opts.Params)
	if err != nil {
		return err
	}

	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	return runStatement(cmd.Context(), cc.Catalog, cc.Renderer, query, params)
}

// runStatement sends query to Query or ExecuteStatement depending on whether
// it returns rows, and renders the result.
func runStatement(ctx context.Context, acc *catalog.Accessor, r *output.Renderer, query string, params map[string]any) error {
	query = strings.TrimSpace(query)
	if returnsRows(query) {
		rs, err := acc.Query(ctx, query, params)
		if err != nil {
			return err
		}
		return r.ResultSet(rs)
	}

	n, err := acc.ExecuteStatement(ctx, query, params)
	if err != nil {
		return err
	}
	r.Success(fmt.Sprintf("%d row(s) affected", n))
	return nil
}

// rowKeywords are the leading keywords of statements that return rows.
var rowKeywords = map[string]bool{
	"select":  true,
	"with":    true,
	"pragma":  true,
	"values":  true,
	"explain": true,
}

// returnsRows reports whether query's leading keyword produces a result set.
// Leading -- and /* */ comments are skipped.
func returnsRows(query string) bool {
	fields := strings.FieldsFunc(stripLeadingComments(query), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '('
	})
	if len(fields) == 0 {
		return false
	}
	return rowKeywords[strings.ToLower(fields[0])]
}

func stripLeadingComments(query string) string {
	for {
		query = strings.TrimSpace(query)
		switch {
		case strings.HasPrefix(query, "--"):
			_, rest, ok := strings.Cut(query, "\n")
			if !ok {
				return ""
			}
			query = rest
		case strings.HasPrefix(query, "/*"):
			_, rest, ok := strings.Cut(query[2:], "*/")
			if !ok {
				return ""
			}
			query = rest
		default:
			return query
		}
	}
}

// parseParams turns name=value flags into named parameters.
func parseParams(specs []string) (map[string]any, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	row, err := parseAssignments(specs)
	if err != nil {
		return nil, err
	}
	params := make(map[string]any, len(row))
	for k, v := range row {
		params[k] = v
	}
	return params, nil
}
