// Package ddl holds the SQL Server dialect: column type mapping, bracket
// quoting, DROP/CREATE rendering and stored procedure invocation.
package ddl

import (
	"fmt"

	"csvsql/internal/schema"
)

// maxSized is the first string length rendered as NVARCHAR(MAX) instead of a
// sized NVARCHAR.
const maxSized = 4000

// MapType maps a column to its SQL Server type. Strings are sized to the
// longest observed value when it is in (0, 4000); otherwise NVARCHAR(MAX).
func MapType(c schema.Column) string {
	switch c.Type {
	case schema.Boolean:
		return "BIT"
	case schema.Integer:
		return "INT"
	case schema.Double:
		return "FLOAT"
	case schema.DateTime:
		return "DATETIME"
	default:
		if c.MaxLength > 0 && c.MaxLength < maxSized {
			return fmt.Sprintf("NVARCHAR(%d)", c.MaxLength)
		}
		return "NVARCHAR(MAX)"
	}
}
