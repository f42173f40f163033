// Package ddl contains SQLite-specific helpers for generating DDL.
//
// SQLite uses type affinity rather than strict types, so the mapping favours
// the canonical affinities:
//   - integer and boolean -> INTEGER (booleans stored as 0/1)
//   - double              -> REAL
//   - date/time           -> TEXT (ISO-8601)
//   - string              -> TEXT
package ddl

import "csvsql/internal/schema"

// MapType maps an inferred column to a SQLite column type. String lengths
// are not enforced by SQLite and are not rendered.
func MapType(c schema.Column) string {
	switch c.Type {
	case schema.Integer, schema.Boolean:
		return "INTEGER"
	case schema.Double:
		return "REAL"
	default:
		return "TEXT"
	}
}
