package sqlite

import (
	"context"
	"sync"

	"csvsql/internal/storage"
	sqliteddl "csvsql/internal/storage/sqlite/ddl"
)

// Kind is the storage.kind value served by this package.
const Kind = "sqlite"

// newRepository is swapped by tests that must not open a database.
var newRepository = NewRepository

// wrappedRepo gives *Repository the Close method storage.Repository needs.
// Close runs the cleanup from NewRepository at most once; a nil closeFn is
// allowed for repositories whose lifetime is owned elsewhere.
type wrappedRepo struct {
	*Repository
	closeFn func()
	once    sync.Once
}

func (w *wrappedRepo) Close() {
	w.once.Do(func() {
		if w.closeFn != nil {
			w.closeFn()
		}
	})
}

var _ storage.Repository = (*wrappedRepo)(nil)

// configFrom maps the backend-neutral config onto this package's Config.
func configFrom(cfg storage.Config) Config {
	return Config{
		DSN:     cfg.DSN,
		Schema:  cfg.Schema,
		Table:   cfg.Table,
		Columns: cfg.Columns,
	}
}

func open(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	r, closeFn, err := newRepository(ctx, configFrom(cfg))
	if err != nil {
		return nil, err
	}
	return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
}

func init() {
	storage.RegisterDialect(Kind, sqliteddl.Dialect{})
	storage.Register(Kind, open)
}
