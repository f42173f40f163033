package importer

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/zeebo/xxh3"

	"csvsql/internal/config"
	"csvsql/internal/metrics"
	"csvsql/internal/storage"

	_ "csvsql/internal/storage/mssql"
	_ "csvsql/internal/storage/sqlite"
)

// Tests in this package swap package-level seams and must not run in
// parallel.

type fakeRepo struct {
	mu      sync.Mutex
	cfg     storage.Config
	execs   []string
	columns []string
	rows    [][]any
	copyErr error
	closed  bool
}

func (f *fakeRepo) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.copyErr != nil {
		return 0, f.copyErr
	}
	f.columns = columns
	f.rows = append(f.rows, rows...)
	return int64(len(rows)), nil
}

func (f *fakeRepo) Exec(ctx context.Context, sql string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execs = append(f.execs, sql)
	return nil
}

func (f *fakeRepo) Close() { f.closed = true }

func withRepository(t *testing.T, repo *fakeRepo) {
	t.Helper()
	prev := newRepository
	newRepository = func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		repo.cfg = cfg
		return repo, nil
	}
	t.Cleanup(func() { newRepository = prev })
}

func forbidRepository(t *testing.T) {
	t.Helper()
	prev := newRepository
	newRepository = func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		t.Fatalf("newRepository called with %+v", cfg)
		return nil, nil
	}
	t.Cleanup(func() { newRepository = prev })
}

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func testConfig(path, kind string) config.Config {
	c := config.Defaults()
	c.Job = "test"
	c.Source.Kind = "file"
	c.Source.File.Path = path
	c.Parser.Options = config.Options{"delimiter": ",", "has_header": true}
	c.Storage.Kind = kind
	c.Storage.DB.DSN = "unused"
	c.Storage.DB.TablePrefix = "stg_"
	return c
}

const peopleCSV = "id,name,score\n1,Alice,3.5\n\n2,Bob,\n"

func TestRunLoadsRows(t *testing.T) {
	repo := &fakeRepo{}
	withRepository(t, repo)

	cfg := testConfig(writeCSV(t, "people.csv", peopleCSV), "mssql")
	res, err := Run(context.Background(), cfg, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.RunID == "" {
		t.Error("RunID is empty")
	}
	if res.Table != "stg_people" || res.Schema != "dbo" {
		t.Errorf("target = %s.%s, want dbo.stg_people", res.Schema, res.Table)
	}
	if res.Parsed != 2 || res.Blank != 1 {
		t.Errorf("Parsed, Blank = %d, %d, want 2, 1", res.Parsed, res.Blank)
	}
	if res.Inserted != 2 || res.Batches != 1 {
		t.Errorf("Inserted, Batches = %d, %d, want 2, 1", res.Inserted, res.Batches)
	}
	if want := xxh3.Hash([]byte(peopleCSV)); res.Checksum != want {
		t.Errorf("Checksum = %x, want %x", res.Checksum, want)
	}

	if repo.cfg.Table != "stg_people" || repo.cfg.Schema != "dbo" || repo.cfg.Kind != "mssql" {
		t.Errorf("storage config = %+v", repo.cfg)
	}
	if !repo.closed {
		t.Error("repository not closed")
	}
	if len(repo.execs) != 2 {
		t.Fatalf("execs = %q, want drop and create", repo.execs)
	}
	if !strings.HasPrefix(repo.execs[0], "DROP TABLE IF EXISTS [dbo].[stg_people]") {
		t.Errorf("execs[0] = %q", repo.execs[0])
	}
	if !strings.Contains(repo.execs[1], "[score] FLOAT") || !strings.Contains(repo.execs[1], "[id] INT") {
		t.Errorf("execs[1] = %q", repo.execs[1])
	}

	if want := []string{"id", "name", "score"}; !reflect.DeepEqual(repo.columns, want) {
		t.Errorf("columns = %q, want %q", repo.columns, want)
	}
	want := [][]any{
		{int32(1), "Alice", 3.5},
		{int32(2), "Bob", nil},
	}
	if !reflect.DeepEqual(repo.rows, want) {
		t.Errorf("rows = %#v, want %#v", repo.rows, want)
	}
}

func TestRunDryRun(t *testing.T) {
	forbidRepository(t)

	cfg := testConfig(writeCSV(t, "people.csv", peopleCSV), "sqlite")
	var out bytes.Buffer
	res, err := Run(context.Background(), cfg, Options{DryRun: true, Out: &out})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), `CREATE TABLE "stg_people"`) {
		t.Errorf("dry run output = %q", out.String())
	}
	if res.DDL == "" || !strings.HasSuffix(res.DDL, ";") {
		t.Errorf("DDL = %q", res.DDL)
	}
	if res.Inserted != 0 {
		t.Errorf("Inserted = %d, want 0", res.Inserted)
	}
}

func TestRunEmptyInputSkips(t *testing.T) {
	forbidRepository(t)

	cfg := testConfig(writeCSV(t, "empty.csv", ""), "sqlite")
	res, err := Run(context.Background(), cfg, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.Skipped || len(res.Columns) != 0 {
		t.Fatalf("Run() = %+v, want skipped with no columns", res)
	}
}

func TestRunProcedure(t *testing.T) {
	tests := []struct {
		name    string
		proc    config.Procedure
		wantRun bool
		wantSQL string
	}{
		{
			name:    "database and default schema",
			proc:    config.Procedure{Run: true, Database: "Warehouse", Name: "usp_AfterImport"},
			wantRun: true,
			wantSQL: "EXEC [Warehouse].[dbo].[usp_AfterImport]",
		},
		{
			name:    "explicit schema",
			proc:    config.Procedure{Run: true, Schema: "etl", Name: "usp_AfterImport"},
			wantRun: true,
			wantSQL: "EXEC [etl].[usp_AfterImport]",
		},
		{
			name:    "missing name is skipped",
			proc:    config.Procedure{Run: true},
			wantRun: false,
		},
		{
			name:    "not requested",
			proc:    config.Procedure{Name: "usp_AfterImport"},
			wantRun: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{}
			withRepository(t, repo)

			cfg := testConfig(writeCSV(t, "people.csv", peopleCSV), "mssql")
			cfg.Procedure = tt.proc
			res, err := Run(context.Background(), cfg, Options{})
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if res.ProcedureRun != tt.wantRun {
				t.Fatalf("ProcedureRun = %v, want %v", res.ProcedureRun, tt.wantRun)
			}
			last := repo.execs[len(repo.execs)-1]
			if tt.wantRun && last != tt.wantSQL {
				t.Fatalf("last exec = %q, want %q", last, tt.wantSQL)
			}
			if !tt.wantRun && len(repo.execs) != 2 {
				t.Fatalf("execs = %q, want only ddl", repo.execs)
			}
		})
	}
}

func TestRunCopyErrorAborts(t *testing.T) {
	errBoom := errors.New("boom")
	repo := &fakeRepo{copyErr: errBoom}
	withRepository(t, repo)

	cfg := testConfig(writeCSV(t, "people.csv", peopleCSV), "mssql")
	cfg.Runtime.BatchSize = 1
	cfg.Procedure = config.Procedure{Run: true, Name: "usp_AfterImport"}

	res, err := Run(context.Background(), cfg, Options{})
	if !errors.Is(err, errBoom) {
		t.Fatalf("Run() error = %v, want %v", err, errBoom)
	}
	if !strings.HasPrefix(err.Error(), StepLoad+": ") {
		t.Errorf("Run() error = %q, want %s prefix", err, StepLoad)
	}
	if res.ProcedureRun {
		t.Error("procedure ran after failed load")
	}
	if !repo.closed {
		t.Error("repository not closed")
	}
}

func TestRunErrors(t *testing.T) {
	forbidRepository(t)
	path := writeCSV(t, "people.csv", peopleCSV)

	tests := []struct {
		name   string
		mutate func(c *config.Config)
		want   string
	}{
		{name: "unknown storage", mutate: func(c *config.Config) { c.Storage.Kind = "oracle" }, want: "oracle"},
		{name: "bad locale", mutate: func(c *config.Config) { c.Locale = "not a locale!" }, want: "locale"},
		{name: "unknown source", mutate: func(c *config.Config) { c.Source.Kind = "gopher" }, want: "source"},
		{name: "missing file", mutate: func(c *config.Config) { c.Source.File.Path = path + ".missing" }, want: StepFetch + ":"},
		{name: "bad encoding", mutate: func(c *config.Config) { c.Parser.Options["encoding"] = "klingon-8" }, want: StepParse + ":"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(path, "sqlite")
			cfg.Parser.Options = config.Options{"delimiter": ",", "has_header": true}
			tt.mutate(&cfg)
			_, err := Run(context.Background(), cfg, Options{DryRun: true})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Run() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestRunSaveTo(t *testing.T) {
	forbidRepository(t)

	dir := t.TempDir()
	cfg := testConfig(writeCSV(t, "people.csv", peopleCSV), "sqlite")
	cfg.Source.Remote.SaveTo = dir
	if _, err := Run(context.Background(), cfg, Options{DryRun: true}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "people.csv"))
	if err != nil {
		t.Fatalf("saved copy: %v", err)
	}
	if string(b) != peopleCSV {
		t.Fatalf("saved copy = %q, want %q", b, peopleCSV)
	}
}

type recordingBackend struct {
	mu       sync.Mutex
	counters map[string]float64
}

func (r *recordingBackend) IncCounter(name string, delta float64, labels metrics.Labels) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := name
	for _, k := range []string{"step", "status", "kind"} {
		if v, ok := labels[k]; ok {
			key += "|" + v
		}
	}
	r.counters[key] += delta
}

func (r *recordingBackend) ObserveHistogram(name string, value float64, labels metrics.Labels) {}
func (r *recordingBackend) Flush() error                                                     { return nil }

func TestRunRecordsMetrics(t *testing.T) {
	rec := &recordingBackend{counters: map[string]float64{}}
	metrics.SetBackend(rec)

	withRepository(t, &fakeRepo{})
	cfg := testConfig(writeCSV(t, "people.csv", peopleCSV), "mssql")
	if _, err := Run(context.Background(), cfg, Options{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	for _, s := range []string{StepFetch, StepParse, StepInfer, StepBuild, StepLoad} {
		if rec.counters[metrics.StepTotal+"|"+s+"|success"] < 1 {
			t.Errorf("step %s success not recorded: %v", s, rec.counters)
		}
	}
	if got := rec.counters[metrics.RowsTotal+"|inserted"]; got != 2 {
		t.Errorf("inserted rows = %v, want 2", got)
	}
	if got := rec.counters[metrics.RowsTotal+"|blank"]; got != 1 {
		t.Errorf("blank rows = %v, want 1", got)
	}
}

func TestRunSQLiteEndToEnd(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "import.db")
	cfg := testConfig(writeCSV(t, "people.csv", peopleCSV), "sqlite")
	cfg.Storage.DB.DSN = dbPath
	cfg.Runtime.BatchSize = 1

	res, err := Run(context.Background(), cfg, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Batches != 2 {
		t.Errorf("Batches = %d, want 2", res.Batches)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	var n int
	var total float64
	if err := db.QueryRow(`SELECT COUNT(*), COALESCE(SUM("score"), 0) FROM "stg_people"`).Scan(&n, &total); err != nil {
		t.Fatalf("query: %v", err)
	}
	if n != 2 || total != 3.5 {
		t.Fatalf("count, sum = %d, %v, want 2, 3.5", n, total)
	}
}
