package ddl

import (
	"fmt"
	"strings"

	gddl "csvsql/internal/ddl"
	"csvsql/internal/schema"
)

// Dialect implements ddl.Dialect for MySQL.
type Dialect struct{}

var _ gddl.Dialect = Dialect{}

func (Dialect) MapType(c schema.Column) string { return MapType(c) }

// DefaultSchema is empty; the DSN's database is used.
func (Dialect) DefaultSchema() string { return "" }

func (Dialect) DropCreate(t gddl.TableDef) ([]string, error) {
	stmts, err := gddl.DropCreate(t, quoteIdent)
	if err != nil {
		return nil, fmt.Errorf("mysql ddl: %w", err)
	}
	return stmts, nil
}

// Procedure renders CALL `database`.`name`(). MySQL schemas are databases,
// so database wins over schemaName when both are set.
func (Dialect) Procedure(database, schemaName, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("mysql ddl: procedure name must not be empty")
	}
	db := database
	if strings.TrimSpace(db) == "" {
		db = schemaName
	}
	return "CALL " + gddl.QualifiedName(quoteIdent, db, name) + "()", nil
}

func quoteIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }
