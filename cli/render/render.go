// Package render writes command results as json, yaml or an aligned table.
//
// Without --format, a terminal gets a table and anything else gets json.
// --no-color only concerns table output; the viewer styles itself.
//
// Tables take column names from json tags. Fields tagged table:"-" are
// left out, and map keys are listed in sorted order.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// Format represents an output format.
type Format string

// Supported formats.
const (
	FormatJSON  Format = "json"
	FormatTable Format = "table"
	FormatYAML  Format = "yaml"
)

// ParseFormat parses a --format value. The empty string selects the
// default for the output stream.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatTable, FormatYAML, "":
		return f, nil
	default:
		return "", fmt.Errorf("invalid format: %q (must be json, table, or yaml)", s)
	}
}

// Renderer writes one result per Render call.
type Renderer struct {
	format  Format
	noColor bool
	out     io.Writer
}

// NewRenderer creates a stdout renderer from the --format and --no-color
// flags.
func NewRenderer(c *cli.Context) (*Renderer, error) {
	format, err := ParseFormat(c.String("format"))
	if err != nil {
		return nil, err
	}
	if format == "" {
		format = FormatJSON
		if isTTY(os.Stdout) {
			format = FormatTable
		}
	}
	return NewRendererWithWriter(format, c.Bool("no-color"), os.Stdout), nil
}

// NewRendererWithWriter creates a renderer writing to out.
func NewRendererWithWriter(format Format, noColor bool, out io.Writer) *Renderer {
	return &Renderer{format: format, noColor: noColor, out: out}
}

// Format returns the selected output format.
func (r *Renderer) Format() Format { return r.format }

// Render writes data in the selected format.
func (r *Renderer) Render(data any) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(r.out)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	case FormatTable:
		return r.table(data)
	default:
		return fmt.Errorf("unknown format: %s", r.format)
	}
}

// table writes slices one row per element, and anything else as
// "key: value" lines.
func (r *Renderer) table(data any) error {
	v := indirect(reflect.ValueOf(data))
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			fmt.Fprintln(r.out, "(no results)")
			return nil
		}
		writeRows(w, v)
	case reflect.Struct:
		for _, col := range columnsOf(v.Type()) {
			fmt.Fprintf(w, "%s:\t%s\n", col.name, cell(v.Field(col.index)))
		}
	case reflect.Map:
		for _, k := range sortedKeys(v) {
			fmt.Fprintf(w, "%v:\t%s\n", k.Interface(), cell(v.MapIndex(k)))
		}
	default:
		fmt.Fprintf(w, "%v\n", data)
	}
	return w.Flush()
}

func writeRows(w io.Writer, rows reflect.Value) {
	first := indirect(rows.Index(0))
	switch first.Kind() {
	case reflect.Struct:
		cols := columnsOf(first.Type())
		names := make([]string, len(cols))
		for i, c := range cols {
			names[i] = c.name
		}
		fmt.Fprintln(w, strings.Join(names, "\t"))
		for i := range rows.Len() {
			row := indirect(rows.Index(i))
			cells := make([]string, len(cols))
			if row.IsValid() {
				for j, c := range cols {
					cells[j] = cell(row.Field(c.index))
				}
			}
			fmt.Fprintln(w, strings.Join(cells, "\t"))
		}
	case reflect.Map:
		keys := sortedKeys(first)
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = fmt.Sprint(k.Interface())
		}
		fmt.Fprintln(w, strings.Join(names, "\t"))
		for i := range rows.Len() {
			row := indirect(rows.Index(i))
			cells := make([]string, len(keys))
			if row.IsValid() {
				for j, k := range keys {
					cells[j] = cell(row.MapIndex(k))
				}
			}
			fmt.Fprintln(w, strings.Join(cells, "\t"))
		}
	default:
		fmt.Fprintln(w, "value")
		for i := range rows.Len() {
			fmt.Fprintln(w, cell(rows.Index(i)))
		}
	}
}

type column struct {
	name  string
	index int
}

func columnsOf(t reflect.Type) []column {
	var cols []column
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("table") == "-" {
			continue
		}
		cols = append(cols, column{name: fieldName(f), index: i})
	}
	return cols
}

// fieldName prefers the json tag name.
func fieldName(f reflect.StructField) string {
	if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" && name != "-" {
		return name
	}
	return strings.ToLower(f.Name)
}

func sortedKeys(m reflect.Value) []reflect.Value {
	keys := m.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int {
		return strings.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
	})
	return keys
}

// indirect unwraps pointers and interfaces. A nil one yields the zero Value.
func indirect(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func cell(v reflect.Value) string {
	v = indirect(v)
	if !v.IsValid() {
		return ""
	}
	if v.CanInterface() {
		switch x := v.Interface().(type) {
		case time.Time:
			if x.IsZero() {
				return ""
			}
			return x.Format(time.RFC3339)
		case fmt.Stringer:
			return x.String()
		}
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return "[]"
		}
		return fmt.Sprintf("[%d items]", v.Len())
	case reflect.Map:
		if v.Len() == 0 {
			return "{}"
		}
		return fmt.Sprintf("{%d keys}", v.Len())
	case reflect.Struct:
		return "{...}"
	default:
		return fmt.Sprint(v.Interface())
	}
}

func isTTY(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
