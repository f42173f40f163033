package storage

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"csvsql/internal/ddl"
	"csvsql/internal/schema"
)

var (
	dialectMu sync.RWMutex
	dialects  = map[string]ddl.Dialect{}
)

// RegisterDialect registers (or replaces) the SQL dialect for a storage kind.
// Backends call it from init so DDL can be previewed without a connection.
func RegisterDialect(kind string, d ddl.Dialect) {
	dialectMu.Lock()
	defer dialectMu.Unlock()
	dialects[kind] = d
}

// DialectFor returns the dialect registered for kind.
func DialectFor(kind string) (ddl.Dialect, error) {
	dialectMu.RLock()
	d, ok := dialects[kind]
	dialectMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no SQL dialect registered for storage.kind=%q", kind)
	}
	return d, nil
}

// Dialects returns the kinds that have a dialect, sorted.
func Dialects() []string {
	dialectMu.RLock()
	defer dialectMu.RUnlock()
	out := make([]string, 0, len(dialects))
	for k := range dialects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// RecreateTable drops and creates the target table for t, executing the
// dialect's statements one at a time through repo.
func RecreateTable(ctx context.Context, repo Repository, d ddl.Dialect, schemaName, tableName string, t schema.Table) error {
	stmts, err := ddl.Statements(d, schemaName, tableName, t)
	if err != nil {
		return fmt.Errorf("build ddl: %w", err)
	}
	for i, stmt := range stmts {
		if err := repo.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("exec ddl statement %d: %w", i+1, err)
		}
	}
	log.Printf("storage: recreated table=%s schema=%s columns=%d", tableName, schemaName, len(t.Columns))
	return nil
}
