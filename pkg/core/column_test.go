package core

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColumnType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		policy  TypePolicy
		want    ColumnType
		wantErr bool
	}{
		{name: "text lower", input: "text", policy: PolicyStrict, want: TypeText},
		{name: "integer upper", input: "INTEGER", policy: PolicyStrict, want: TypeInteger},
		{name: "real mixed case", input: "ReAl", policy: PolicyStrict, want: TypeReal},
		{name: "blob padded", input: "  blob ", policy: PolicyStrict, want: TypeBlob},
		{name: "unknown strict", input: "varchar(20)", policy: PolicyStrict, wantErr: true},
		{name: "empty strict", input: "", policy: PolicyStrict, wantErr: true},
		{name: "unknown lenient", input: "varchar(20)", policy: PolicyLenient, want: TypeText},
		{name: "empty lenient", input: "", policy: PolicyLenient, want: TypeText},
		{name: "known lenient", input: "Integer", policy: PolicyLenient, want: TypeInteger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColumnType(tt.input, tt.policy)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrSchema), "expected SchemaError, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColumnType_KeywordTableIsExhaustive(t *testing.T) {
	want := map[ColumnType]string{
		TypeText:    "TEXT",
		TypeInteger: "INTEGER",
		TypeReal:    "REAL",
		TypeBlob:    "BLOB",
	}

	for _, ct := range ColumnTypes() {
		kw, err := ct.Keyword()
		require.NoError(t, err, "kind %s", ct)
		assert.Equal(t, want[ct], kw)

		// every keyword parses back to its own kind
		parsed, err := ParseColumnType(kw, PolicyStrict)
		require.NoError(t, err)
		assert.Equal(t, ct, parsed)
	}
	assert.Len(t, ColumnTypes(), len(columnKeywords))
}

func TestColumnType_KeywordRejectsUnknown(t *testing.T) {
	for _, ct := range []ColumnType{0, ColumnType(99)} {
		assert.False(t, ct.Valid())
		_, err := ct.Keyword()
		assert.ErrorIs(t, err, ErrSchema)
	}
}

func TestColumnType_TextEncoding(t *testing.T) {
	b, err := TypeReal.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "real", string(b))

	var ct ColumnType
	require.NoError(t, ct.UnmarshalText([]byte("BLOB")))
	assert.Equal(t, TypeBlob, ct)

	assert.ErrorIs(t, ct.UnmarshalText([]byte("json")), ErrSchema)
}

func TestTypePolicy_UnmarshalText(t *testing.T) {
	tests := []struct {
		input   string
		want    TypePolicy
		wantErr bool
	}{
		{input: "strict", want: PolicyStrict},
		{input: "LENIENT", want: PolicyLenient},
		{input: "", want: PolicyStrict},
		{input: "loose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var p TypePolicy
			err := p.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestTable_WithValues(t *testing.T) {
	table := Table{
		Name: "people",
		Columns: []Column{
			{Name: "id", Type: TypeInteger},
			{Name: "name", Type: TypeText},
			{Name: "nickname", Type: TypeText},
		},
	}

	joined := table.WithValues(Row{"id": "1", "name": "Ada", "stray": "ignored"})

	assert.Equal(t, "1", joined.Columns[0].Value)
	assert.Equal(t, "Ada", joined.Columns[1].Value)
	assert.Empty(t, joined.Columns[2].Value, "column missing from row keeps empty value")
	assert.Nil(t, joined.Column("stray"))
	// original snapshot untouched
	assert.Empty(t, table.Columns[0].Value)
	assert.Equal(t, []string{"id", "name", "nickname"}, joined.ColumnNames())
}

func TestFormatValue(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name  string
		input any
		want  string
	}{
		{name: "nil", input: nil, want: "NULL"},
		{name: "string", input: "hello", want: "hello"},
		{name: "bytes", input: []byte("raw"), want: "raw"},
		{name: "int64", input: int64(-42), want: "-42"},
		{name: "float whole", input: float64(3), want: "3"},
		{name: "float fraction", input: 2.5, want: "2.5"},
		{name: "large float", input: 123456789012.0, want: "123456789012"},
		{name: "bool", input: true, want: "1"},
		{name: "time", input: ts, want: "2024-01-02 03:04:05+00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.input))
		})
	}
}

func TestRow_Keys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Row{"c": "3", "a": "1", "b": "2"}.Keys())
	assert.Empty(t, Row{}.Keys())
}
