package schema

import (
	"strings"
	"unicode/utf16"

	"csvsql/internal/locale"
	"csvsql/internal/parser/csv"
)

// BuildOptions controls Build.
type BuildOptions struct {
	HasHeader bool
	TableName string
	Locale    locale.Locale
	// NormalizeNames folds header names to lowercase ASCII identifiers.
	NormalizeNames bool
}

// Build materializes the table model in two phases: column descriptors from
// the header (or Column_i names), then one typed vector per data record.
// It is a pure function of its inputs.
func Build(records []csv.Row, types []ColumnType, opt BuildOptions) Table {
	t := Table{
		Name:    opt.TableName,
		Columns: describe(records, types, opt),
	}

	data := records
	if opt.HasHeader && len(data) > 0 {
		data = data[1:]
	}

	t.Rows = make([][]any, 0, len(data))
	for _, rec := range data {
		vals := make([]any, len(types))
		for i := range types {
			if i >= len(rec) {
				continue
			}
			vals[i] = convert(rec[i], types[i], opt.Locale)
		}
		t.Rows = append(t.Rows, vals)
	}

	for i := range t.Columns {
		if t.Columns[i].Type != String {
			continue
		}
		for _, r := range t.Rows {
			s, ok := r[i].(string)
			if !ok {
				continue
			}
			if n := utf16Len(s); n > t.Columns[i].MaxLength {
				t.Columns[i].MaxLength = n
			}
		}
	}
	return t
}

func describe(records []csv.Row, types []ColumnType, opt BuildOptions) []Column {
	var header csv.Row
	if opt.HasHeader && len(records) > 0 {
		header = records[0]
	}

	names := make([]string, len(types))
	for i := range types {
		var name string
		if i < len(header) {
			name = strings.TrimSpace(trimQuotes(header[i]))
			if opt.NormalizeNames {
				name = NormalizeName(name)
			}
		}
		if name == "" {
			name = DefaultColumnName(i)
		}
		names[i] = name
	}
	names = dedupe(names)

	cols := make([]Column, len(types))
	for i, typ := range types {
		cols[i] = Column{Name: names[i], Type: typ}
	}
	return cols
}

// convert turns a raw cell into the column's Go value. Empty cells, and
// whitespace-only cells in a typed column, are nil. Typed cells are trimmed
// first so every cell that counted as evidence in Infer converts.
func convert(raw string, typ ColumnType, loc locale.Locale) any {
	v := trimQuotes(raw)
	if v == "" {
		return nil
	}
	if typ != String {
		v = strings.TrimSpace(v)
	}
	switch typ {
	case Boolean:
		if b, ok := loc.ParseBool(v); ok {
			return b
		}
	case Integer:
		if n, ok := loc.ParseInt32(v); ok {
			return n
		}
	case Double:
		if f, ok := loc.ParseDecimal(v); ok {
			return f
		}
	case DateTime:
		if ts, ok := loc.ParseDateTime(v); ok {
			return ts
		}
	default:
		return v
	}
	return nil
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if w := utf16.RuneLen(r); w > 0 {
			n += w
		} else {
			n++
		}
	}
	return n
}
