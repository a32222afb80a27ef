package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/sqledit/pkg/core"
	"github.com/spf13/cobra"
)

const (
	shellPrompt         = "sqledit> "
	shellContinuePrompt = "    ...> "
)

// NewShellCommand creates the shell command.
func NewShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive SQL shell",
		Long: `Open an interactive shell on the database.

SQL statements end with a semicolon and may span several lines. Lines
starting with a dot are shell commands; type .help to list them.

When stdin is not a terminal the shell reads a script from it instead,
so it can be driven from files or pipes.`,
		Example: `  sqledit shell -d app.db
  sqledit shell -d app.db < script.sql`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			sh := &shell{cc: cc, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}
			if canPrompt(cmd) {
				return sh.runInteractive(cmd.Context())
			}
			return sh.runScript(cmd.Context(), cmd.InOrStdin())
		},
	}
}

// shell holds the state of one shell session on an authenticated database.
type shell struct {
	cc     *CommandContext
	out    io.Writer
	errOut io.Writer
	buf    strings.Builder
}

func (s *shell) runInteractive(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          shellPrompt,
		HistoryFile:     s.cc.Cfg.HistoryFile,
		AutoComplete:    s.completer(ctx),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(s.out, "sqledit shell (database: %s)\n", s.cc.Gate.Path())
	_, _ = fmt.Fprintln(s.out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(s.out)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			s.buf.Reset()
			rl.SetPrompt(shellPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if s.handleLine(ctx, line) {
			return nil
		}
		if s.buf.Len() > 0 {
			rl.SetPrompt(shellContinuePrompt)
		} else {
			rl.SetPrompt(shellPrompt)
		}
	}
}

// runScript feeds every line of r to the shell. A trailing statement
// without a semicolon still runs.
func (s *shell) runScript(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if s.handleLine(ctx, scanner.Text()) {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	if s.buf.Len() > 0 {
		s.execute(ctx, s.buf.String())
		s.buf.Reset()
	}
	return nil
}

// handleLine processes one input line and reports whether the shell should exit.
func (s *shell) handleLine(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "--") {
		return false
	}

	if s.buf.Len() == 0 && strings.HasPrefix(line, ".") {
		return s.dotCommand(ctx, line)
	}

	// Accumulate multi-line SQL until semicolon
	s.buf.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		s.buf.WriteString("\n")
		return false
	}

	query := strings.TrimSuffix(s.buf.String(), ";")
	s.buf.Reset()
	s.execute(ctx, query)
	return false
}

func (s *shell) execute(ctx context.Context, query string) {
	if err := runStatement(ctx, s.cc.Catalog, s.cc.Renderer, query, nil); err != nil {
		s.printError(err)
	}
}

func (s *shell) printError(err error) {
	_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
}

// dotCommand runs a shell command and reports whether the shell should exit.
func (s *shell) dotCommand(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	needTable := func() (string, bool) {
		if len(args) != 1 {
			_, _ = fmt.Fprintf(s.errOut, "Usage: %s <table>\n", command)
			return "", false
		}
		return args[0], true
	}

	var err error
	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printShellHelp(s.out)

	case ".tables":
		var names []string
		if names, err = s.cc.Catalog.ListTables(ctx); err == nil {
			err = s.cc.Renderer.TableNames(names)
		}

	case ".schema":
		if len(args) == 0 {
			var tables []core.Table
			if tables, err = s.cc.Catalog.DescribeCatalog(ctx); err == nil {
				err = s.cc.Renderer.Catalog(tables, false)
			}
			break
		}
		table := args[0]
		var columns []core.Column
		if columns, err = s.cc.Catalog.GetColumns(ctx, table); err == nil {
			err = s.cc.Renderer.Columns(core.Table{Name: table, Columns: columns}, false)
		}

	case ".info":
		table, ok := needTable()
		if !ok {
			return false
		}
		var t *core.Table
		if t, err = s.cc.Catalog.GetTableInfo(ctx, table); err == nil {
			err = s.cc.Renderer.Columns(*t, true)
		}

	case ".rows":
		table, ok := needTable()
		if !ok {
			return false
		}
		var columns []core.Column
		var rows []core.Row
		if columns, err = s.cc.Catalog.GetColumns(ctx, table); err == nil {
			if rows, err = s.cc.Catalog.GetRows(ctx, table); err == nil {
				err = s.cc.Renderer.Rows(columns, rows)
			}
		}

	case ".drop":
		table, ok := needTable()
		if !ok {
			return false
		}
		if err = s.cc.Catalog.DropTable(ctx, core.Table{Name: table}); err == nil {
			s.cc.Renderer.Success(fmt.Sprintf("table %s dropped", table))
		}

	case ".clear":
		_, _ = fmt.Fprint(s.out, "\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}

	if err != nil {
		s.printError(err)
	}
	return false
}

func printShellHelp(w io.Writer) {
	help := `
Commands:
  .help            Show this help message
  .tables          List user tables
  .schema [table]  Show columns of one table, or of every table
  .info <table>    Show columns with the first row's values
  .rows <table>    Print every row of a table
  .drop <table>    Drop a table
  .clear           Clear the screen
  .quit / .exit    Exit the shell

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completion works for commands and table names
`
	_, _ = fmt.Fprintln(w, help)
}

// completer offers dot-commands, with table names after the commands that take one.
func (s *shell) completer(ctx context.Context) *readline.PrefixCompleter {
	// Completion is best effort; a listing error leaves only the commands.
	names, _ := s.cc.Catalog.ListTables(ctx)

	tables := make([]readline.PrefixCompleterInterface, len(names))
	for i, n := range names {
		tables[i] = readline.PcItem(n)
	}

	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema", tables...),
		readline.PcItem(".info", tables...),
		readline.PcItem(".rows", tables...),
		readline.PcItem(".drop", tables...),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
