package ddl

import (
	"fmt"
	"strings"

	gddl "csvsql/internal/ddl"
	"csvsql/internal/schema"
)

// Dialect implements ddl.Dialect for Postgres.
type Dialect struct{}

var _ gddl.Dialect = Dialect{}

func (Dialect) MapType(c schema.Column) string { return MapType(c) }

func (Dialect) DefaultSchema() string { return "public" }

// DropCreate renders DROP TABLE IF EXISTS and CREATE TABLE with
// double-quoted identifiers.
func (Dialect) DropCreate(t gddl.TableDef) ([]string, error) {
	stmts, err := gddl.DropCreate(t, quoteIdent)
	if err != nil {
		return nil, fmt.Errorf("postgres ddl: %w", err)
	}
	return stmts, nil
}

// Procedure renders CALL "schema"."name"(). Postgres cannot call across
// databases, so database is ignored; the connection's database is used.
func (Dialect) Procedure(_, schemaName, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("postgres ddl: procedure name must not be empty")
	}
	return "CALL " + gddl.QualifiedName(quoteIdent, schemaName, name) + "()", nil
}

// quoteIdent double-quotes an identifier, escaping embedded quotes.
func quoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }
