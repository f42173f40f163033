package importer

import (
	"fmt"

	"csvsql/internal/ddl"
	"csvsql/internal/locale"
	"csvsql/internal/parser/csv"
	"csvsql/internal/schema"
	"csvsql/internal/storage"
)

// PreviewOptions describes how to read a CSV file for a schema preview.
type PreviewOptions struct {
	Delimiter      rune
	HasHeader      bool
	Encoding       string
	NormalizeNames bool
	Locale         string
	Kind           string // storage kind whose dialect renders the DDL
	Schema         string // "" selects the dialect default
	Table          string
}

// Preview is the inferred schema of one file and the DDL that would create
// it.
type Preview struct {
	Table             string          `json:"table"`
	Schema            string          `json:"schema,omitempty"`
	Columns           []schema.Column `json:"columns"`
	DDL               string          `json:"ddl"`
	Rows              int             `json:"rows"`
	Blank             int             `json:"blank"`
	UnterminatedQuote bool            `json:"unterminated_quote,omitempty"`
}

// BuildPreview runs the parse, infer, build and DDL steps on raw without
// touching a database. An input without columns yields an empty DDL.
func BuildPreview(raw []byte, opt PreviewOptions) (Preview, error) {
	loc, err := locale.Parse(opt.Locale)
	if err != nil {
		return Preview{}, err
	}
	d, err := storage.DialectFor(opt.Kind)
	if err != nil {
		return Preview{}, err
	}
	delim := opt.Delimiter
	if delim == 0 {
		delim = ','
	}

	text, err := csv.Decode(raw, opt.Encoding)
	if err != nil {
		return Preview{}, err
	}
	doc := csv.Parse(text, delim)
	records := doc.Records()

	table := schema.TableName("", opt.Table, "")
	t := schema.Build(records, schema.Infer(records, opt.HasHeader, loc), schema.BuildOptions{
		HasHeader:      opt.HasHeader,
		TableName:      table,
		Locale:         loc,
		NormalizeNames: opt.NormalizeNames,
	})

	p := Preview{
		Table:             table,
		Schema:            opt.Schema,
		Columns:           t.Columns,
		Rows:              len(t.Rows),
		Blank:             len(doc.Rows) - len(records),
		UnterminatedQuote: doc.UnterminatedQuote,
	}
	if p.Schema == "" {
		p.Schema = d.DefaultSchema()
	}
	if p.Columns == nil {
		p.Columns = []schema.Column{}
	}
	if len(t.Columns) == 0 {
		return p, nil
	}
	if p.DDL, err = ddl.Generate(d, p.Schema, p.Table, t); err != nil {
		return p, fmt.Errorf("ddl: %w", err)
	}
	return p, nil
}
