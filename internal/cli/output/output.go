// Package output renders catalog results for the terminal and for scripts.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/sqledit/pkg/core"
)

// Format selects how results are written.
type Format string

// Output formats.
const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatYAML     Format = "yaml"
)

// ParseFormat maps a configured value to a Format. "md" is accepted for markdown.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatCSV, FormatMarkdown, FormatYAML:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", core.ConfigErrorf("", "unknown output format %q", s)
	}
}

// Renderer writes results in one format to Out and status messages to ErrOut.
type Renderer struct {
	Out    io.Writer
	ErrOut io.Writer
	Styles *Styles

	format Format
	isTTY  bool
}

// NewRenderer creates a renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, format Format) *Renderer {
	return NewRendererWithTTY(out, errOut, IsTerminal(out), format)
}

// NewRendererWithTTY creates a renderer with an explicit terminal state.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, format Format) *Renderer {
	if format == "" {
		format = FormatTable
	}
	return &Renderer{
		Out:    out,
		ErrOut: errOut,
		Styles: NewStyles(errOut, isTTY),
		format: format,
		isTTY:  isTTY,
	}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Format returns the renderer's output format.
func (r *Renderer) Format() Format {
	return r.format
}

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool {
	return r.isTTY
}

// Println writes a line to Out.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.Out, a...)
}

// Printf writes formatted text to Out.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.Out, format, a...)
}

// Success writes a status line to ErrOut.
func (r *Renderer) Success(msg string) {
	_, _ = fmt.Fprintln(r.ErrOut, r.Styles.Success.Render("✓ "+msg))
}

// Warning writes a warning line to ErrOut.
func (r *Renderer) Warning(msg string) {
	_, _ = fmt.Fprintln(r.ErrOut, r.Styles.Warning.Render("! "+msg))
}

// Notice writes a boxed message to ErrOut.
func (r *Renderer) Notice(title, body string) {
	content := r.Styles.Bold.Render(title) + "\n" + body
	_, _ = fmt.Fprintln(r.ErrOut, r.Styles.Notice.Render(content))
}

// ResultSet writes rs with its columns in order.
func (r *Renderer) ResultSet(rs *core.ResultSet) error {
	if rs == nil {
		rs = &core.ResultSet{}
	}
	return r.records(rs.Columns, rs.Rows)
}

// Rows writes rows of a table whose column order is columns.
func (r *Renderer) Rows(columns []core.Column, rows []core.Row) error {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return r.records(names, rows)
}

// TableNames writes one table name per row.
func (r *Renderer) TableNames(names []string) error {
	rows := make([]core.Row, len(names))
	for i, n := range names {
		rows[i] = core.Row{"table": n}
	}
	return r.records([]string{"table"}, rows)
}

// columnFields are the attributes shown for each column, in order.
var columnFields = []string{"name", "type", "declared_type", "not_null", "primary_key", "value"}

// Columns writes the column layout of table. withValues adds the value column.
func (r *Renderer) Columns(t core.Table, withValues bool) error {
	fields := columnFields
	if !withValues {
		fields = fields[:len(fields)-1]
	}

	if r.format == FormatJSON || r.format == FormatYAML {
		return r.encode([]tableDoc{newTableDoc(t, withValues)})
	}

	rows := make([]core.Row, len(t.Columns))
	for i, c := range t.Columns {
		rows[i] = columnRow(c)
	}

	switch r.format {
	case FormatTable:
		r.Println(r.Styles.Header.Render(t.Name))
	case FormatMarkdown:
		r.Printf("## %s\n\n", t.Name)
	}
	return r.recordsWithHeaders(fields, titleHeaders(fields), rows)
}

// Catalog writes every table's column layout.
func (r *Renderer) Catalog(tables []core.Table, withValues bool) error {
	if r.format == FormatJSON || r.format == FormatYAML {
		docs := make([]tableDoc, len(tables))
		for i, t := range tables {
			docs[i] = newTableDoc(t, withValues)
		}
		return r.encode(docs)
	}

	if r.format == FormatCSV {
		fields := append([]string{"table"}, columnFields...)
		if !withValues {
			fields = fields[:len(fields)-1]
		}
		var rows []core.Row
		for _, t := range tables {
			for _, c := range t.Columns {
				row := columnRow(c)
				row["table"] = t.Name
				rows = append(rows, row)
			}
		}
		return writeCSV(r.Out, fields, rows)
	}

	for i, t := range tables {
		if i > 0 {
			r.Println()
		}
		if err := r.Columns(t, withValues); err != nil {
			return err
		}
	}
	if len(tables) == 0 && r.format == FormatTable {
		r.Println("(0 tables)")
	}
	return nil
}

func columnRow(c core.Column) core.Row {
	return core.Row{
		"name":          c.Name,
		"type":          c.Type.String(),
		"declared_type": c.DeclaredType,
		"not_null":      strconv.FormatBool(c.NotNull),
		"primary_key":   strconv.Itoa(c.PrimaryKey),
		"value":         c.Value,
	}
}

// titleHeaders turns snake_case field names into display headers.
func titleHeaders(fields []string) []string {
	caser := cases.Title(language.English)
	headers := make([]string, len(fields))
	for i, f := range fields {
		headers[i] = caser.String(strings.ReplaceAll(f, "_", " "))
	}
	return headers
}

type columnDoc struct {
	Name         string  `json:"name" yaml:"name"`
	Type         string  `json:"type" yaml:"type"`
	DeclaredType string  `json:"declared_type" yaml:"declared_type"`
	NotNull      bool    `json:"not_null" yaml:"not_null"`
	PrimaryKey   int     `json:"primary_key" yaml:"primary_key"`
	Value        *string `json:"value,omitempty" yaml:"value,omitempty"`
}

type tableDoc struct {
	Name    string      `json:"name" yaml:"name"`
	Columns []columnDoc `json:"columns" yaml:"columns"`
}

func newTableDoc(t core.Table, withValues bool) tableDoc {
	doc := tableDoc{Name: t.Name, Columns: make([]columnDoc, len(t.Columns))}
	for i, c := range t.Columns {
		cd := columnDoc{
			Name:         c.Name,
			Type:         strings.ToLower(c.Type.String()),
			DeclaredType: c.DeclaredType,
			NotNull:      c.NotNull,
			PrimaryKey:   c.PrimaryKey,
		}
		if withValues {
			v := c.Value
			cd.Value = &v
		}
		doc.Columns[i] = cd
	}
	return doc
}

func (r *Renderer) records(cols []string, rows []core.Row) error {
	return r.recordsWithHeaders(cols, cols, rows)
}

func (r *Renderer) recordsWithHeaders(cols, headers []string, rows []core.Row) error {
	switch r.format {
	case FormatJSON, FormatYAML:
		if rows == nil {
			rows = []core.Row{}
		}
		return r.encode(rows)
	case FormatCSV:
		return writeCSV(r.Out, cols, rows)
	case FormatMarkdown:
		writeMarkdown(r.Out, cols, headers, rows)
		return nil
	default:
		writeTable(r.Out, cols, headers, rows)
		return nil
	}
}

func (r *Renderer) encode(v any) error {
	if r.format == FormatYAML {
		enc := yaml.NewEncoder(r.Out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(r.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(w io.Writer, cols, headers []string, rows []core.Row) {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		tr := make(table.Row, len(cols))
		for i, col := range cols {
			tr[i] = row[col]
		}
		t.AppendRow(tr)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
}

func writeCSV(w io.Writer, cols []string, rows []core.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return err
	}
	for _, row := range rows {
		record := make([]string, len(cols))
		for i, col := range cols {
			record[i] = row[col]
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeMarkdown(w io.Writer, cols, headers []string, rows []core.Row) {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return
	}

	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(escapeMarkdownAll(headers), " | "))
	seps := make([]string, len(cols))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, row := range rows {
		values := make([]string, len(cols))
		for i, col := range cols {
			values[i] = escapeMarkdown(row[col])
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
	}
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", "<br>")
}

func escapeMarkdownAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = escapeMarkdown(s)
	}
	return out
}
