// Package mysql implements a MySQL repository on database/sql with the
// go-sql-driver/mysql driver. Rows are loaded with multi-row INSERT
// statements inside one transaction per batch.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// maxPlaceholders is the server's prepared statement parameter limit.
const maxPlaceholders = 65535

// Config holds MySQL repository configuration.
type Config struct {
	DSN     string // e.g. user:pass@tcp(host:3306)/db?parseTime=true
	Schema  string // database name; empty uses the DSN's database
	Table   string
	Columns []string
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	mc, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql dsn: %w", err)
	}
	mc.ParseTime = true
	connector, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetConnMaxIdleTime(60 * time.Second)
	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(16)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// target returns the backtick-quoted `schema`.`table` name.
func (r *Repository) target() string {
	if r.cfg.Schema == "" {
		return myIdent(r.cfg.Table)
	}
	return myIdent(r.cfg.Schema) + "." + myIdent(r.cfg.Table)
}

// CopyFrom inserts rows with multi-row INSERT statements in one
// transaction, splitting so no statement exceeds the placeholder limit.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}
	perStmt := maxPlaceholders / len(columns)
	if perStmt < 1 {
		return 0, fmt.Errorf("mysql: CopyFrom: %d columns exceed the placeholder limit", len(columns))
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	var total int64
	for start := 0; start < len(rows); start += perStmt {
		end := min(start+perStmt, len(rows))
		chunk := rows[start:end]

		args := make([]any, 0, len(chunk)*len(columns))
		for i, row := range chunk {
			if len(row) != len(columns) {
				_ = tx.Rollback()
				return 0, fmt.Errorf("mysql: row %d has %d values, want %d", start+i, len(row), len(columns))
			}
			args = append(args, row...)
		}
		res, err := tx.ExecContext(ctx, insertSQL(r.target(), columns, len(chunk)), args...)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert rows %d-%d: %w", start, end-1, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		total += n
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return total, nil
}

// Exec executes a SQL statement against the pool.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	_, err := r.db.ExecContext(ctx, sqlText)
	return err
}

// insertSQL renders INSERT INTO target (cols) VALUES (?, ...), ... for n rows.
func insertSQL(target string, columns []string, n int) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = myIdent(c)
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(target)
	b.WriteString(" (")
	b.WriteString(strings.Join(quoted, ", "))
	b.WriteString(") VALUES ")
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(tuple)
	}
	return b.String()
}

// myIdent backtick-quotes an identifier, doubling embedded backticks.
func myIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }
