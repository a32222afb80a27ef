// Package main provides tests for the sqledit CLI.
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/sqledit/internal/cli"
	"github.com/leapstack-labs/sqledit/internal/cli/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersionCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Cleanup(config.ResetConfig)

	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sqledit v"+cli.Version)
}

func TestHelpCommand(t *testing.T) {
	out, _, err := execute(t, "--help")
	require.NoError(t, err)

	expectedCommands := []string{"login", "tables", "columns", "rows", "info", "create", "drop", "insert", "exec", "seed", "shell"}
	for _, expected := range expectedCommands {
		assert.Contains(t, out, expected)
	}
}

func TestUnknownCommand(t *testing.T) {
	_, _, err := execute(t, "frobnicate")
	require.Error(t, err)
	assert.Equal(t, cli.ExitError, cli.ExitCode(err))
}

func TestInvalidOutputFlag(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Cleanup(config.ResetConfig)

	_, _, err := execute(t, "tables", "-d", "x.db", "-o", "html")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestEndToEnd(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Cleanup(config.ResetConfig)
	db := filepath.Join(dir, "app.db")

	// First contact initializes the credentials table.
	_, errOut, err := execute(t, "login", "-d", db)
	require.Error(t, err)
	assert.Equal(t, cli.ExitSetupRequired, cli.ExitCode(err))
	assert.Contains(t, errOut, "admin")

	auth := []string{"-d", db, "-u", "admin", "--password", "admin"}
	mustExecute := func(args ...string) string {
		t.Helper()
		out, errOut, err := execute(t, append(args, auth...)...)
		require.NoError(t, err, "stderr: %s", errOut)
		return out
	}

	mustExecute("login")
	mustExecute("create", "people", "id:integer:pk", "name:text:notnull", "score:real")
	mustExecute("insert", "people", "id=1", "name=Ada", "score=9.5")
	mustExecute("insert", "people", "id=2", "name=Grace")

	var rows []map[string]string
	require.NoError(t, json.Unmarshal([]byte(mustExecute("rows", "people", "-o", "json")), &rows))
	assert.Equal(t, []map[string]string{
		{"id": "1", "name": "Ada", "score": "9.5"},
		{"id": "2", "name": "Grace", "score": "NULL"},
	}, rows)

	assert.Equal(t, "table\npeople\n", mustExecute("tables", "-o", "csv"))

	out := mustExecute("exec", "SELECT name FROM people WHERE score > @min", "-p", "min=5", "-o", "csv")
	assert.Equal(t, "name\nAda\n", out)

	mustExecute("drop", "people", "--yes")
	assert.Equal(t, "table\n", mustExecute("tables", "-o", "csv"))

	_, _, err = execute(t, "login", "-d", db, "-u", "admin", "--password", "wrong")
	require.Error(t, err)
	assert.Equal(t, cli.ExitError, cli.ExitCode(err))
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Cleanup(config.ResetConfig)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "sqledit.yaml"),
		[]byte("database: data.db\nuser: admin\npassword: admin\noutput: csv\n"), 0o600))

	_, _, err := execute(t, "login")
	require.Equal(t, cli.ExitSetupRequired, cli.ExitCode(err))

	out, _, err := execute(t, "tables")
	require.NoError(t, err)
	assert.Equal(t, "table\n", out)
}
