// Package sqlite implements a SQLite-backed storage.Repository.
package sqlite

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:import.db?cache=shared"
	//   ":memory:"
	DSN string

	// Schema is an attached database name such as "main". Empty means the
	// connection's default.
	Schema string

	// Table is the target table name for inserts, unquoted.
	Table string

	// Columns is the ordered list of destination columns.
	Columns []string
}
