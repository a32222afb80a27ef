package core

import (
	"fmt"
	"strings"
)

// ColumnType is the closed set of column kinds sqledit understands.
type ColumnType int

// Recognized column kinds. The zero value is not a valid kind.
const (
	TypeText ColumnType = iota + 1
	TypeInteger
	TypeReal
	TypeBlob
)

// columnKeywords is the exhaustive kind-to-keyword table.
// Every ColumnType constant must have exactly one entry.
var columnKeywords = map[ColumnType]string{
	TypeText:    "TEXT",
	TypeInteger: "INTEGER",
	TypeReal:    "REAL",
	TypeBlob:    "BLOB",
}

// ColumnTypes returns every recognized kind in declaration order.
func ColumnTypes() []ColumnType {
	return []ColumnType{TypeText, TypeInteger, TypeReal, TypeBlob}
}

// Valid reports whether t is one of the recognized kinds.
func (t ColumnType) Valid() bool {
	_, ok := columnKeywords[t]
	return ok
}

// Keyword returns the SQL type keyword for t.
func (t ColumnType) Keyword() (string, error) {
	kw, ok := columnKeywords[t]
	if !ok {
		return "", &Error{Kind: KindSchema, Msg: fmt.Sprintf("unsupported column type %d", int(t))}
	}
	return kw, nil
}

func (t ColumnType) String() string {
	switch t {
	case TypeText:
		return "Text"
	case TypeInteger:
		return "Integer"
	case TypeReal:
		return "Real"
	case TypeBlob:
		return "Blob"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

// MarshalText encodes the kind as its lower-case name.
func (t ColumnType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, &Error{Kind: KindSchema, Msg: fmt.Sprintf("unsupported column type %d", int(t))}
	}
	return []byte(strings.ToLower(t.String())), nil
}

// UnmarshalText decodes a kind name strictly.
func (t *ColumnType) UnmarshalText(text []byte) error {
	parsed, err := ParseColumnType(string(text), PolicyStrict)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseColumnType maps a declared type name to a ColumnType.
// Matching is case-insensitive and ignores surrounding whitespace.
// An unrecognized name is a SchemaError under PolicyStrict and TypeText under PolicyLenient.
func ParseColumnType(name string, policy TypePolicy) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "text":
		return TypeText, nil
	case "integer":
		return TypeInteger, nil
	case "real":
		return TypeReal, nil
	case "blob":
		return TypeBlob, nil
	}
	if policy == PolicyLenient {
		return TypeText, nil
	}
	return 0, &Error{Kind: KindSchema, Msg: fmt.Sprintf("unrecognized column type %q", name)}
}

// TypePolicy decides what happens when a declared column type is not one of
// the four recognized kinds.
type TypePolicy int

const (
	// PolicyStrict rejects unknown declared types with a SchemaError.
	// Required by callers that feed introspected columns back into CreateTable.
	PolicyStrict TypePolicy = iota
	// PolicyLenient maps unknown declared types to TypeText.
	// Suitable for display-only callers.
	PolicyLenient
)

func (p TypePolicy) String() string {
	if p == PolicyLenient {
		return "lenient"
	}
	return "strict"
}

// MarshalText implements encoding.TextMarshaler.
func (p TypePolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so configuration
// decoders can read "strict" or "lenient".
func (p *TypePolicy) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "strict":
		*p = PolicyStrict
	case "lenient":
		*p = PolicyLenient
	default:
		return &Error{Kind: KindConfig, Msg: fmt.Sprintf("invalid type policy %q (want strict or lenient)", string(text))}
	}
	return nil
}

// Column describes one column of a table.
// Value is set only when the column is part of a row projection.
type Column struct {
	Name         string
	Type         ColumnType
	Value        string
	DeclaredType string // type name exactly as the engine reported it
	NotNull      bool
	PrimaryKey   int // 0 = not PK, 1+ = position in the primary key
}

// Table is a snapshot of a table's name and ordered columns.
// It holds no reference to the engine.
type Table struct {
	Name    string
	Columns []Column
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column, or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// WithValues returns a copy of t whose column values are taken from row.
// Columns absent from row keep an empty value; row keys without a matching
// column are ignored.
func (t Table) WithValues(row Row) Table {
	out := Table{Name: t.Name, Columns: make([]Column, len(t.Columns))}
	copy(out.Columns, t.Columns)
	for i := range out.Columns {
		if v, ok := row[out.Columns[i].Name]; ok {
			out.Columns[i].Value = v
		}
	}
	return out
}
