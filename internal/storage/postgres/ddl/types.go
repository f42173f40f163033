// Package ddl holds the Postgres dialect: type mapping, double-quote
// identifier quoting, DROP/CREATE rendering and CALL for procedures.
package ddl

import (
	"fmt"

	"csvsql/internal/schema"
)

// MapType maps a column to its Postgres type. Strings shorter than 4000
// characters get a sized VARCHAR; longer or unobserved strings are TEXT.
func MapType(c schema.Column) string {
	switch c.Type {
	case schema.Boolean:
		return "BOOLEAN"
	case schema.Integer:
		return "INTEGER"
	case schema.Double:
		return "DOUBLE PRECISION"
	case schema.DateTime:
		return "TIMESTAMP"
	default:
		if c.MaxLength > 0 && c.MaxLength < 4000 {
			return fmt.Sprintf("VARCHAR(%d)", c.MaxLength)
		}
		return "TEXT"
	}
}
