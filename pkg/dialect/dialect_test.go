package dialect

import (
	"strings"
	"testing"

	"github.com/leapstack-labs/sqledit/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLite_Identifier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain", input: "users", want: `"users"`},
		{name: "reserved word", input: "order", want: `"order"`},
		{name: "spaces", input: "first name", want: `"first name"`},
		{name: "embedded quote", input: `a"b`, want: `"a""b"`},
		{name: "injection attempt", input: `x"; DROP TABLE users; --`, want: `"x""; DROP TABLE users; --"`},
		{name: "unicode", input: "café", want: `"café"`},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace", input: "   ", wantErr: true},
		{name: "nul byte", input: "a\x00b", wantErr: true},
		{name: "newline", input: "a\nb", wantErr: true},
		{name: "invalid utf8", input: "a\xffb", wantErr: true},
		{name: "too long", input: strings.Repeat("x", MaxIdentifierLength+1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SQLite.Identifier(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, core.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSQLite_IdentifierList(t *testing.T) {
	got, err := SQLite.IdentifierList([]string{"id", "name"})
	require.NoError(t, err)
	assert.Equal(t, `"id", "name"`, got)

	_, err = SQLite.IdentifierList([]string{"id", ""})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestQuoteIdentifierIfNeeded(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"users", "users"},
		{"user_id2", "user_id2"},
		{"select", `"select"`},
		{"Table", `"Table"`},
		{"2fast", `"2fast"`},
		{"first name", `"first name"`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, SQLite.QuoteIdentifierIfNeeded(tt.input))
		})
	}
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?, ?, ?", SQLite.Placeholders(3))
	assert.Equal(t, "", SQLite.Placeholders(0))

	pg := NewDialect("postgres").Placeholder(PlaceholderDollar).Build()
	assert.Equal(t, "$1, $2", pg.Placeholders(2))
	assert.Equal(t, "$3", pg.FormatPlaceholder(3))
}

func TestCustomQuoting(t *testing.T) {
	d := NewDialect("tsql").Identifiers("[", "]", "]]").Build()
	assert.Equal(t, "[a]]b]", d.QuoteIdentifier("a]b"))
}
