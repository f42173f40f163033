// Package ddl defines a small, backend-agnostic model for SQL DDL and the
// helpers backends share to render DROP and CREATE TABLE statements.
//
// Backend packages (internal/storage/<kind>/ddl) implement Dialect: they map
// column types, quote identifiers their own way and may wrap the statements
// in dialect-specific guards. Generate is the entry point that turns a table
// model into a script.
package ddl

import (
	"fmt"
	"strings"

	"csvsql/internal/schema"
)

// Quoter quotes one identifier segment.
type Quoter func(ident string) string

// QualifiedName quotes the non-empty parts and joins them with dots.
func QualifiedName(q Quoter, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, q(p))
	}
	return strings.Join(out, ".")
}

// BuildCreateTableSQL renders a CREATE TABLE statement from a TableDef,
// quoting names with q.
//
// Rules:
//
//   - t.Name must be non-empty and at least one column is required.
//
//   - Each column must have a non-empty Name and SQLType and is rendered as:
//
//     <Name> <SQLType> [NOT NULL] [DEFAULT <Default>]
//
//   - Columns with PrimaryKey == true are collected into a trailing
//     PRIMARY KEY (<col1>, <col2>, ...) clause.
func BuildCreateTableSQL(t TableDef, q Quoter) (string, error) {
	if strings.TrimSpace(t.Name) == "" {
		return "", fmt.Errorf("ddl: table name must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}
	fqn := QualifiedName(q, t.Schema, t.Name)

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, len(t.Columns))

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", name)
		}

		var sb strings.Builder
		sb.WriteString(q(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)

		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, q(name))
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n)", fqn, strings.Join(cols, ",\n  ")), nil
}

// BuildDropTableSQL renders DROP TABLE IF EXISTS for the table.
func BuildDropTableSQL(t TableDef, q Quoter) (string, error) {
	if strings.TrimSpace(t.Name) == "" {
		return "", fmt.Errorf("ddl: table name must not be empty")
	}
	return "DROP TABLE IF EXISTS " + QualifiedName(q, t.Schema, t.Name), nil
}

// DropCreate is the common DROP TABLE IF EXISTS + CREATE TABLE pair.
func DropCreate(t TableDef, q Quoter) ([]string, error) {
	drop, err := BuildDropTableSQL(t, q)
	if err != nil {
		return nil, err
	}
	create, err := BuildCreateTableSQL(t, q)
	if err != nil {
		return nil, err
	}
	return []string{drop, create}, nil
}

// Statements returns the DROP and CREATE statements for t in d's dialect.
func Statements(d Dialect, schemaName, tableName string, t schema.Table) ([]string, error) {
	if d == nil {
		return nil, fmt.Errorf("ddl: nil dialect")
	}
	return d.DropCreate(FromTable(d, schemaName, tableName, t))
}

// Generate returns the DROP and CREATE statements as one script, each
// statement terminated by a semicolon.
func Generate(d Dialect, schemaName, tableName string, t schema.Table) (string, error) {
	stmts, err := Statements(d, schemaName, tableName, t)
	if err != nil {
		return "", err
	}
	return strings.Join(stmts, ";\n") + ";", nil
}
