package ddl

import "csvsql/internal/schema"

// ColumnDef describes a single column in a table definition. It uses simple,
// database-agnostic fields.
//
// Fields:
//   - Name: logical column name (unquoted; quoting happens at render time)
//   - SQLType: target SQL type (e.g., NVARCHAR(40), INTEGER, TIMESTAMP)
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
//   - Default: raw default expression (e.g., 'anon', CURRENT_TIMESTAMP)
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef is an unquoted schema and table name with an ordered column list.
// Schema may be empty for backends without schemas.
type TableDef struct {
	Schema  string
	Name    string
	Columns []ColumnDef
}

// Dialect renders a TableDef for one SQL backend.
type Dialect interface {
	// MapType returns the column's SQL type.
	MapType(c schema.Column) string
	// DropCreate returns the statements that drop the table if present and
	// create it again, in execution order.
	DropCreate(t TableDef) ([]string, error)
	// Procedure returns the statement that runs a stored procedure.
	Procedure(database, schemaName, name string) (string, error)
	// DefaultSchema is the schema used when none is configured.
	DefaultSchema() string
}

// FromTable maps a table model to a TableDef using d's type mapping. Every
// column is nullable.
func FromTable(d Dialect, schemaName, tableName string, t schema.Table) TableDef {
	def := TableDef{
		Schema:  schemaName,
		Name:    tableName,
		Columns: make([]ColumnDef, 0, len(t.Columns)),
	}
	for _, c := range t.Columns {
		def.Columns = append(def.Columns, ColumnDef{
			Name:     c.Name,
			SQLType:  d.MapType(c),
			Nullable: true,
		})
	}
	return def
}
