package ddl

import (
	"fmt"
	"strings"

	gddl "csvsql/internal/ddl"
	"csvsql/internal/schema"
)

// Dialect implements ddl.Dialect for SQL Server.
type Dialect struct{}

var _ gddl.Dialect = Dialect{}

func (Dialect) MapType(c schema.Column) string { return MapType(c) }

func (Dialect) DefaultSchema() string { return "dbo" }

// DropCreate renders:
//
//	DROP TABLE IF EXISTS [schema].[table]
//	CREATE TABLE [schema].[table] (
//	  [col1] TYPE,
//	  ...
//	)
func (Dialect) DropCreate(t gddl.TableDef) ([]string, error) {
	stmts, err := gddl.DropCreate(t, quoteIdent)
	if err != nil {
		return nil, fmt.Errorf("mssql ddl: %w", err)
	}
	return stmts, nil
}

// Procedure renders EXEC [database].[schema].[name]. Empty database or
// schema parts are omitted.
func (Dialect) Procedure(database, schemaName, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("mssql ddl: procedure name must not be empty")
	}
	return "EXEC " + gddl.QualifiedName(quoteIdent, database, schemaName, name), nil
}

// quoteIdent quotes a single identifier segment using bracket syntax,
// escaping any closing brackets.
//
//	name      -> [name]
//	weird]id  -> [weird]]id]
func quoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}
