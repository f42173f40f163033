// Package importer runs one CSV import end to end: fetch the file, tokenize
// it, infer column types, build the table model, recreate the target table,
// bulk-load the rows and optionally call a stored procedure.
//
// Each step is timed and counted through the metrics package. A failed step
// aborts the run and is returned wrapped with the step name.
package importer

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"csvsql/internal/config"
	"csvsql/internal/datasource"
	"csvsql/internal/ddl"
	"csvsql/internal/locale"
	"csvsql/internal/metrics"
	"csvsql/internal/parser/csv"
	"csvsql/internal/schema"
	"csvsql/internal/storage"
)

// Step names, as reported to metrics and in errors.
const (
	StepFetch     = "fetch"
	StepParse     = "parse"
	StepInfer     = "infer"
	StepBuild     = "build"
	StepDDL       = "ddl"
	StepLoad      = "load"
	StepProcedure = "procedure"
)

const (
	defaultBatchSize = 5000
)

// Function variables used as test seams.
var (
	newSource     = datasource.New
	newRepository = storage.New
)

// Options adjusts a single run.
type Options struct {
	// DryRun stops after DDL generation; the database is never contacted.
	DryRun bool
	// Out receives the DDL script on a dry run. Nil discards it.
	Out io.Writer
}

// Result summarizes a run.
type Result struct {
	RunID    string
	Schema   string
	Table    string
	Columns  []schema.Column
	Parsed   int // data records, header excluded
	Blank    int // blank lines skipped
	Inserted int64
	Batches  int64
	Checksum uint64 // xxh3 of the raw input bytes
	DDL      string
	// Skipped is set when the input produced no columns and nothing was
	// written.
	Skipped bool
	// ProcedureRun is set when the post-load procedure was executed.
	ProcedureRun bool
}

// Run executes cfg. cfg is expected to have passed config.Validate.
func Run(ctx context.Context, cfg config.Config, opt Options) (Result, error) {
	res := Result{RunID: uuid.NewString()}
	job := cfg.Job
	log.Printf("importer: run_id=%s job=%s source=%s storage=%s dry_run=%t",
		res.RunID, job, cfg.Source.Kind, cfg.Storage.Kind, opt.DryRun)

	loc, err := locale.Parse(cfg.Locale)
	if err != nil {
		return res, fmt.Errorf("locale: %w", err)
	}
	dialect, err := storage.DialectFor(cfg.Storage.Kind)
	if err != nil {
		return res, err
	}
	src, err := newSource(cfg.Source)
	if err != nil {
		return res, fmt.Errorf("source: %w", err)
	}
	csvOpt := cfg.Parser.CSVOptions()

	var raw []byte
	if err := step(job, StepFetch, func() error {
		raw, err = fetch(ctx, src, cfg.Source.Remote.SaveTo)
		return err
	}); err != nil {
		return res, err
	}
	res.Checksum = xxh3.Hash(raw)
	log.Printf("importer: fetched name=%s bytes=%d xxh3=%016x", src.Name(), len(raw), res.Checksum)

	var records []csv.Row
	if err := step(job, StepParse, func() error {
		text, err := csv.Decode(raw, csvOpt.Encoding)
		if err != nil {
			return err
		}
		doc := csv.Parse(text, csvOpt.Delimiter)
		if doc.UnterminatedQuote {
			log.Printf("importer: warning: input ends inside a quoted field; last field flushed as-is")
		}
		records = doc.Records()
		res.Blank = len(doc.Rows) - len(records)
		return nil
	}); err != nil {
		return res, err
	}
	res.Parsed = len(records)
	if csvOpt.HasHeader && res.Parsed > 0 {
		res.Parsed--
	}
	metrics.RecordRow(job, "parsed", int64(res.Parsed))
	metrics.RecordRow(job, "blank", int64(res.Blank))

	// Infer and Build cannot fail, so they are timed here rather than by step.
	start := time.Now()
	types := schema.Infer(records, csvOpt.HasHeader, loc)
	metrics.RecordStep(job, StepInfer, nil, time.Since(start))
	metrics.RecordColumns(job, countTypes(types))

	res.Table = schema.TableName(cfg.Storage.DB.TablePrefix, cfg.Storage.DB.TableNameOverride, src.Name())
	res.Schema = cfg.Storage.DB.Schema
	if res.Schema == "" {
		res.Schema = dialect.DefaultSchema()
	}

	start = time.Now()
	table := schema.Build(records, types, schema.BuildOptions{
		HasHeader:      csvOpt.HasHeader,
		TableName:      res.Table,
		Locale:         loc,
		NormalizeNames: csvOpt.NormalizeNames,
	})
	metrics.RecordStep(job, StepBuild, nil, time.Since(start))
	res.Columns = table.Columns
	log.Printf("importer: table=%s schema=%s columns=%d rows=%d blank=%d",
		res.Table, res.Schema, len(table.Columns), len(table.Rows), res.Blank)

	if len(table.Columns) == 0 {
		log.Printf("importer: warning: input has no columns; skipping ddl and load")
		res.Skipped = true
		return res, nil
	}

	if err := step(job, StepDDL, func() error {
		res.DDL, err = ddl.Generate(dialect, res.Schema, res.Table, table)
		return err
	}); err != nil {
		return res, err
	}

	if opt.DryRun {
		if opt.Out != nil {
			fmt.Fprintln(opt.Out, res.DDL)
		}
		log.Printf("importer: dry run; database not contacted")
		return res, nil
	}

	repo, err := newRepository(ctx, storage.Config{
		Kind:    cfg.Storage.Kind,
		DSN:     cfg.Storage.DB.DSN,
		Schema:  res.Schema,
		Table:   res.Table,
		Columns: table.ColumnNames(),
	})
	if err != nil {
		return res, fmt.Errorf("storage: %w", err)
	}
	defer repo.Close()

	if err := step(job, StepDDL, func() error {
		return storage.RecreateTable(ctx, repo, dialect, res.Schema, res.Table, table)
	}); err != nil {
		return res, err
	}

	var stats storage.LoadStats
	if err := step(job, StepLoad, func() error {
		stats, err = load(ctx, repo, table, cfg.Runtime)
		return err
	}); err != nil {
		res.Inserted, res.Batches = stats.Rows, stats.Batches
		metrics.RecordRow(job, "inserted", stats.Rows)
		return res, err
	}
	res.Inserted, res.Batches = stats.Rows, stats.Batches
	metrics.RecordRow(job, "inserted", stats.Rows)
	metrics.RecordBatches(job, stats.Batches)
	log.Printf("importer: loaded rows=%d batches=%d elapsed=%s",
		stats.Rows, stats.Batches, stats.Elapsed.Truncate(time.Millisecond))

	if cfg.Procedure.Run {
		if err := step(job, StepProcedure, func() error {
			res.ProcedureRun, err = runProcedure(ctx, repo, dialect, cfg.Procedure, res.Schema)
			return err
		}); err != nil {
			return res, err
		}
	}
	return res, nil
}

// step runs fn, records its outcome and prefixes any error with name.
func step(job, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RecordStep(job, name, err, time.Since(start))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// fetch reads the whole source and, when saveTo is set, keeps a copy on disk.
func fetch(ctx context.Context, src datasource.Source, saveTo string) ([]byte, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.Name(), err)
	}
	if saveTo != "" {
		path := saveTo
		if fi, err := os.Stat(saveTo); err == nil && fi.IsDir() {
			path = filepath.Join(saveTo, src.Name())
		}
		if err := os.WriteFile(path, raw, 0o644); err != nil {
			return nil, fmt.Errorf("save %s: %w", path, err)
		}
		log.Printf("importer: saved copy path=%s", path)
	}
	return raw, nil
}

// load streams the table rows through a bounded channel into the batched
// loader. A load error cancels the producer.
func load(ctx context.Context, repo storage.Repository, t schema.Table, rt config.RuntimeConfig) (storage.LoadStats, error) {
	batch := rt.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	buf := rt.ChannelBuffer
	if buf < 0 {
		buf = 0
	}

	g, gctx := errgroup.WithContext(ctx)
	rows := make(chan []any, buf)

	g.Go(func() error {
		defer close(rows)
		for _, r := range t.Rows {
			select {
			case rows <- r:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var stats storage.LoadStats
	g.Go(func() error {
		var err error
		stats, err = storage.LoadBatches(gctx, t.ColumnNames(), rows, batch, repo.CopyFrom)
		return err
	})

	err := g.Wait()
	return stats, err
}

// runProcedure executes the configured procedure. A missing name is logged
// and skipped.
func runProcedure(ctx context.Context, repo storage.Repository, d ddl.Dialect, p config.Procedure, tableSchema string) (bool, error) {
	if p.Name == "" {
		log.Printf("importer: warning: procedure.run is set but procedure.name is empty; skipping")
		return false, nil
	}
	schemaName := p.Schema
	if schemaName == "" {
		schemaName = tableSchema
	}
	stmt, err := d.Procedure(p.Database, schemaName, p.Name)
	if err != nil {
		return false, err
	}
	log.Printf("importer: running procedure sql=%q", stmt)
	if err := repo.Exec(ctx, stmt); err != nil {
		return false, err
	}
	return true, nil
}

func countTypes(types []schema.ColumnType) map[string]int {
	out := make(map[string]int, len(types))
	for _, t := range types {
		out[t.String()]++
	}
	return out
}
