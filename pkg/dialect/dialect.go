// Package dialect describes how identifiers and parameters are written for
// the SQL engine sqledit talks to.
//
// Caller-supplied table and column names never reach SQL text unquoted:
// Identifier validates a name and returns it quoted, and every statement
// builder in sqledit goes through it.
package dialect

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/sqledit/pkg/core"
)

// MaxIdentifierLength bounds identifier size in bytes.
const MaxIdentifierLength = 255

// PlaceholderStyle selects how positional parameters are written.
type PlaceholderStyle int

const (
	// PlaceholderQuestion writes every parameter as "?".
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar writes parameters as "$1", "$2", ...
	PlaceholderDollar
)

// IdentifierConfig holds identifier quoting characters.
type IdentifierConfig struct {
	Quote    string // opening quote, e.g. `"`
	QuoteEnd string // closing quote, e.g. `"`
	Escape   string // replacement for QuoteEnd inside a name, e.g. `""`
}

// Dialect represents a SQL dialect configuration.
type Dialect struct {
	Name        string
	Identifiers IdentifierConfig
	Placeholder PlaceholderStyle

	reservedWords map[string]struct{}
}

// Builder assembles a Dialect.
type Builder struct {
	d *Dialect
}

// NewDialect starts a dialect definition with ANSI double-quote identifiers.
func NewDialect(name string) *Builder {
	return &Builder{d: &Dialect{
		Name: name,
		Identifiers: IdentifierConfig{
			Quote:    `"`,
			QuoteEnd: `"`,
			Escape:   `""`,
		},
		reservedWords: make(map[string]struct{}),
	}}
}

// Identifiers sets the quoting characters.
func (b *Builder) Identifiers(quote, quoteEnd, escape string) *Builder {
	b.d.Identifiers = IdentifierConfig{Quote: quote, QuoteEnd: quoteEnd, Escape: escape}
	return b
}

// Placeholder sets the parameter style.
func (b *Builder) Placeholder(style PlaceholderStyle) *Builder {
	b.d.Placeholder = style
	return b
}

// ReservedWords adds words that must be quoted when used as identifiers.
func (b *Builder) ReservedWords(words ...string) *Builder {
	for _, w := range words {
		b.d.reservedWords[strings.ToUpper(w)] = struct{}{}
	}
	return b
}

// Build returns the finished dialect.
func (b *Builder) Build() *Dialect {
	return b.d
}

// FormatPlaceholder returns a placeholder for the given parameter index (1-based).
func (d *Dialect) FormatPlaceholder(index int) string {
	switch d.Placeholder {
	case PlaceholderDollar:
		return "$" + strconv.Itoa(index)
	default:
		return "?"
	}
}

// Placeholders returns n comma-separated placeholders.
func (d *Dialect) Placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = d.FormatPlaceholder(i + 1)
	}
	return strings.Join(parts, ", ")
}

// IsReservedWord returns true if the word needs quoting when used as an identifier.
func (d *Dialect) IsReservedWord(word string) bool {
	_, ok := d.reservedWords[strings.ToUpper(word)]
	return ok
}

// QuoteIdentifier quotes an identifier using the dialect's quote characters.
// It does not validate; use Identifier for caller-supplied names.
func (d *Dialect) QuoteIdentifier(name string) string {
	escaped := strings.ReplaceAll(name, d.Identifiers.QuoteEnd, d.Identifiers.Escape)
	return d.Identifiers.Quote + escaped + d.Identifiers.QuoteEnd
}

// QuoteIdentifierIfNeeded quotes an identifier only if it is a reserved word
// or contains characters outside [A-Za-z0-9_]. Used for display.
func (d *Dialect) QuoteIdentifierIfNeeded(name string) string {
	if d.IsReservedWord(name) || !isBareword(name) {
		return d.QuoteIdentifier(name)
	}
	return name
}

// ValidateIdentifier rejects names that cannot be used safely as identifiers:
// empty or whitespace-only names, control characters (including NUL),
// invalid UTF-8 and names longer than MaxIdentifierLength bytes.
func (d *Dialect) ValidateIdentifier(name string) error {
	if strings.TrimSpace(name) == "" {
		return core.ValidationErrorf("", "identifier is empty")
	}
	if len(name) > MaxIdentifierLength {
		return core.ValidationErrorf("", "identifier %.32q... exceeds %d bytes", name, MaxIdentifierLength)
	}
	if !utf8.ValidString(name) {
		return core.ValidationErrorf("", "identifier %q is not valid UTF-8", name)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return core.ValidationErrorf("", "identifier %q contains a control character", name)
		}
	}
	return nil
}

// Identifier validates name and returns it quoted.
func (d *Dialect) Identifier(name string) (string, error) {
	if err := d.ValidateIdentifier(name); err != nil {
		return "", err
	}
	return d.QuoteIdentifier(name), nil
}

// IdentifierList validates and quotes each name, joining them with ", ".
func (d *Dialect) IdentifierList(names []string) (string, error) {
	quoted := make([]string, len(names))
	for i, n := range names {
		q, err := d.Identifier(n)
		if err != nil {
			return "", err
		}
		quoted[i] = q
	}
	return strings.Join(quoted, ", "), nil
}

func isBareword(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
