package ddl

import (
	"errors"
	"fmt"
	"strings"

	gddl "csvsql/internal/ddl"
	"csvsql/internal/schema"
)

// ErrNoProcedures is returned by Procedure; SQLite has no stored procedures.
var ErrNoProcedures = errors.New("sqlite ddl: stored procedures are not supported")

// Dialect implements ddl.Dialect for SQLite.
type Dialect struct{}

var _ gddl.Dialect = Dialect{}

func (Dialect) MapType(c schema.Column) string { return MapType(c) }

// DefaultSchema is empty; tables go to the main database.
func (Dialect) DefaultSchema() string { return "" }

// DropCreate renders DROP TABLE IF EXISTS and CREATE TABLE. A schema, when
// set, names an attached database such as "main".
func (Dialect) DropCreate(t gddl.TableDef) ([]string, error) {
	stmts, err := gddl.DropCreate(t, quoteIdent)
	if err != nil {
		return nil, fmt.Errorf("sqlite ddl: %w", err)
	}
	return stmts, nil
}

func (Dialect) Procedure(_, _, _ string) (string, error) { return "", ErrNoProcedures }

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
