package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/sqledit/pkg/core"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFlagSet mirrors the root command's persistent flags.
func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.StringP("database", "d", "", "")
	fs.StringP("user", "u", "", "")
	fs.String("password", "", "")
	fs.StringP("output", "o", "", "")
	fs.String("type-policy", "", "")
	fs.BoolP("verbose", "v", false, "")
	fs.String("log-level", "", "")
	return fs
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "sqledit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Cleanup(ResetConfig)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, core.PolicyStrict, cfg.TypePolicy)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, cfg.Database)
	assert.Empty(t, cfg.ConfigFile)
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Cleanup(ResetConfig)

	writeConfig(t, dir, `
database: app.db
user: alice
password: file-secret
output: json
type_policy: lenient
log_level: info
`)

	t.Run("file over defaults", func(t *testing.T) {
		cfg, err := LoadConfig("", nil)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "app.db"), cfg.Database)
		assert.Equal(t, "alice", cfg.User)
		assert.Equal(t, "file-secret", cfg.Password)
		assert.Equal(t, "json", cfg.Output)
		assert.Equal(t, core.PolicyLenient, cfg.TypePolicy)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, filepath.Join(dir, "sqledit.yaml"), cfg.ConfigFile)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("SQLEDIT_USER", "bob")
		t.Setenv("SQLEDIT_TYPE_POLICY", "strict")

		cfg, err := LoadConfig("", nil)
		require.NoError(t, err)
		assert.Equal(t, "bob", cfg.User)
		assert.Equal(t, core.PolicyStrict, cfg.TypePolicy)
		assert.Equal(t, "json", cfg.Output)
	})

	t.Run("flags over env", func(t *testing.T) {
		t.Setenv("SQLEDIT_USER", "bob")

		fs := newFlagSet()
		require.NoError(t, fs.Parse([]string{"-u", "carol", "-o", "csv", "--database", "other.db", "-v"}))

		cfg, err := LoadConfig("", fs)
		require.NoError(t, err)
		assert.Equal(t, "carol", cfg.User)
		assert.Equal(t, "csv", cfg.Output)
		assert.Equal(t, "other.db", cfg.Database, "flag paths stay relative to the working directory")
		assert.True(t, cfg.Verbose)
		assert.Equal(t, "file-secret", cfg.Password, "unset flags do not override")
	})
}

func TestLoadConfig_SearchesUpward(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	writeConfig(t, root, "database: data/app.db\n")
	t.Chdir(nested)
	t.Cleanup(ResetConfig)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "data", "app.db"), cfg.Database)
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Cleanup(ResetConfig)

	other := t.TempDir()
	path := filepath.Join(other, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: \":memory:\"\noutput: yaml\n"), 0o600))

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.Database)
	assert.Equal(t, "yaml", cfg.Output)

	_, err = LoadConfig(filepath.Join(other, "missing.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadConfig_ExpandsEnvVars(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Cleanup(ResetConfig)
	t.Setenv("SQLEDIT_TEST_SECRET", "s3cret")

	writeConfig(t, dir, `
user: admin
password: ${SQLEDIT_TEST_SECRET}
database: ${SQLEDIT_TEST_UNSET}
`)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Password)
	assert.Equal(t, "${SQLEDIT_TEST_UNSET}", cfg.Database, "unknown variables are left as-is")
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errSub  string
	}{
		{name: "output", content: "output: html\n", errSub: "invalid output format"},
		{name: "log level", content: "log_level: loud\n", errSub: "invalid log level"},
		{name: "type policy", content: "type_policy: sloppy\n", errSub: "invalid type policy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)
			t.Cleanup(ResetConfig)
			writeConfig(t, dir, tt.content)

			_, err := LoadConfig("", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSub)
		})
	}
}

func TestValidate_ConfigErrorKind(t *testing.T) {
	cfg := &Config{Output: "xml", LogLevel: "warn"}
	err := cfg.Validate()
	assert.ErrorIs(t, err, core.ErrConfig)
}

func TestLogger(t *testing.T) {
	t.Run("fallback discards", func(t *testing.T) {
		l := GetLogger(context.Background())
		require.NotNil(t, l)
		assert.False(t, l.Enabled(context.Background(), slog.LevelError))
	})

	t.Run("round trip through context", func(t *testing.T) {
		l := slog.New(slog.DiscardHandler)
		ctx := WithLogger(context.Background(), l)
		assert.Same(t, l, GetLogger(ctx))
	})

	t.Run("verbose forces debug", func(t *testing.T) {
		l := NewLogger(&Config{LogLevel: "error", Verbose: true}, os.Stderr)
		assert.True(t, l.Enabled(context.Background(), slog.LevelDebug))
	})

	t.Run("level from config", func(t *testing.T) {
		l := NewLogger(&Config{LogLevel: "error"}, os.Stderr)
		assert.False(t, l.Enabled(context.Background(), slog.LevelWarn))
		assert.True(t, l.Enabled(context.Background(), slog.LevelError))
	})
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SQLEDIT_TEST_A", "alpha")

	assert.Equal(t, "alpha-x", expandEnvVars("${SQLEDIT_TEST_A}-x"))
	assert.Equal(t, "plain", expandEnvVars("plain"))
	assert.Equal(t, "${NOPE_NOT_SET_1}", expandEnvVars("${NOPE_NOT_SET_1}"))
}
