package commands

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/leapstack-labs/sqledit/pkg/core"
	"github.com/spf13/cobra"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <table> <file.csv>",
		Short: "Load rows from a CSV file",
		Long: `Load the rows of a CSV file into a table.

The first line of the file names the columns. When the table does not
exist it is created with one TEXT column per header field. Each record is
inserted as one row; a failing record stops the load and reports its
line number.`,
		Example: `  # Create and fill a lookup table
  sqledit seed countries ./data/countries.csv

  # Read from stdin
  cat users.csv | sqledit seed users -`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args[0], args[1])
		},
	}

	return cmd
}

func runSeed(cmd *cobra.Command, table, path string) error {
	var in io.Reader
	if path == "-" {
		in = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open seed file: %w", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	reader := csv.NewReader(in)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return core.ValidationErrorf("", "seed file %s is empty", path)
	}
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()

	exists, err := tableExists(cmd, cc, table)
	if err != nil {
		return err
	}
	if !exists {
		columns := make([]core.Column, len(header))
		for i, name := range header {
			columns[i] = core.Column{Name: name, Type: core.TypeText}
		}
		if err := cc.Catalog.CreateTable(ctx, core.Table{Name: table, Columns: columns}); err != nil {
			return err
		}
		cc.Logger.Info("created seed table", "table", table, "columns", len(columns))
	}

	count := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV: %w", err)
		}

		row := make(core.Row, len(header))
		for i, name := range header {
			row[name] = record[i]
		}
		if err := cc.Catalog.InsertRow(ctx, table, row); err != nil {
			line, _ := reader.FieldPos(0)
			return fmt.Errorf("line %d: %w", line, err)
		}
		count++
	}

	cc.Renderer.Success(fmt.Sprintf("loaded %d row(s) into %s", count, table))
	return nil
}

// tableExists reports whether table is one of the listed user tables.
// Table names are compared case-insensitively, as the engine does.
func tableExists(cmd *cobra.Command, cc *CommandContext, table string) (bool, error) {
	names, err := cc.Catalog.ListTables(cmd.Context())
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if strings.EqualFold(n, table) {
			return true, nil
		}
	}
	return false, nil
}
