// Package ddl holds the MySQL dialect: type mapping, backtick quoting,
// DROP/CREATE rendering and CALL for stored procedures.
package ddl

import (
	"fmt"

	"csvsql/internal/schema"
)

// maxVarchar is the longest string rendered as VARCHAR; longer or unobserved
// strings become LONGTEXT. It is lower than the 4000 used by the other
// dialects because every VARCHAR counts against MySQL's 65535-byte row limit
// at 4 bytes per character under utf8mb4, so a wide CSV of VARCHAR(4000)
// columns would fail CREATE TABLE. LONGTEXT is stored off-row.
const maxVarchar = 255

// MapType maps an inferred column to a MySQL type.
func MapType(c schema.Column) string {
	switch c.Type {
	case schema.Boolean:
		return "BOOLEAN"
	case schema.Integer:
		return "INT"
	case schema.Double:
		return "DOUBLE"
	case schema.DateTime:
		return "DATETIME"
	default:
		if c.MaxLength > 0 && c.MaxLength <= maxVarchar {
			return fmt.Sprintf("VARCHAR(%d)", c.MaxLength)
		}
		return "LONGTEXT"
	}
}
