// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete storage backend to run,
// which in turn register their repository factories and SQL dialects with
// the storage package.
//
// Importing this package makes the following storage kinds available:
//
//   - "mssql"    (csvsql/internal/storage/mssql)
//   - "mysql"    (csvsql/internal/storage/mysql)
//   - "postgres" (csvsql/internal/storage/postgres)
//   - "sqlite"   (csvsql/internal/storage/sqlite)
//
// A binary that supports only a subset of backends can import the backend
// packages it needs directly instead.
package all

import (
	_ "csvsql/internal/storage/mssql"
	_ "csvsql/internal/storage/mysql"
	_ "csvsql/internal/storage/postgres"
	_ "csvsql/internal/storage/sqlite"
)
