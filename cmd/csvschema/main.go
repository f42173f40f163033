// Command csvschema prints the inferred schema of a local CSV file and the
// DDL that would create it, without touching a database.
//
// Usage:
//
//	csvschema -file people.csv -delimiter ';' -locale de-DE -kind postgres [-json]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"csvsql/internal/importer"
	"csvsql/internal/schema"
	"csvsql/internal/webui"

	_ "csvsql/internal/storage/all"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("csvschema", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		file      = fs.String("file", "", `CSV file to inspect ("-" reads stdin)`)
		delimiter = fs.String("delimiter", ",", `field delimiter (single character, or "tab")`)
		header    = fs.Bool("header", true, "first row holds column names")
		loc       = fs.String("locale", "en-GB", "BCP 47 locale for numbers and dates")
		encoding  = fs.String("encoding", "", "input encoding label (default utf-8; a BOM always wins)")
		kind      = fs.String("kind", "mssql", "storage kind whose SQL dialect renders the DDL")
		schemaFlg = fs.String("schema", "", "target schema (default: the dialect's default)")
		table     = fs.String("table", "", "table name (default: file name without extension)")
		normalize = fs.Bool("normalize", false, "fold column names to lowercase ASCII identifiers")
		asJSON    = fs.Bool("json", false, "print the preview as JSON")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *file == "" {
		fmt.Fprintln(stderr, "csvschema: -file is required")
		fs.Usage()
		return 2
	}
	delim, err := webui.ParseDelimiter(*delimiter)
	if err != nil {
		fmt.Fprintf(stderr, "csvschema: %v\n", err)
		return 2
	}

	var raw []byte
	if *file == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(*file)
	}
	if err != nil {
		fmt.Fprintf(stderr, "csvschema: %v\n", err)
		return 1
	}

	name := *file
	if name == "-" {
		name = ""
	}
	p, err := importer.BuildPreview(raw, importer.PreviewOptions{
		Delimiter:      delim,
		HasHeader:      *header,
		Encoding:       *encoding,
		NormalizeNames: *normalize,
		Locale:         *loc,
		Kind:           *kind,
		Schema:         *schemaFlg,
		Table:          schema.TableName("", *table, name),
	})
	if err != nil {
		fmt.Fprintf(stderr, "csvschema: %v\n", err)
		return 1
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p); err != nil {
			fmt.Fprintf(stderr, "csvschema: %v\n", err)
			return 1
		}
		return 0
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tTYPE\tMAX_LENGTH")
	for _, c := range p.Columns {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", c.Name, c.Type, c.MaxLength)
	}
	_ = tw.Flush()
	fmt.Fprintf(stdout, "\n-- %d rows, %d blank lines\n", p.Rows, p.Blank)
	if p.UnterminatedQuote {
		fmt.Fprintln(stdout, "-- warning: input ends inside a quoted field")
	}
	if p.DDL == "" {
		fmt.Fprintln(stdout, "-- no columns; nothing to create")
		return 0
	}
	fmt.Fprintln(stdout, p.DDL)
	return 0
}
