// Command csvsql imports one CSV file into a SQL table.
//
// It loads a JSON config, applies .env and CSVSQL_* overrides, validates the
// result, then fetches the file, infers a schema, recreates the target table
// and bulk-loads the rows.
//
// Usage:
//
//	csvsql -config configs/sales.json [-validate] [-dry-run] [-v]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"csvsql/internal/config"
	"csvsql/internal/importer"
	"csvsql/internal/logging"
	"csvsql/internal/metrics"
	"csvsql/internal/metrics/datadog"
	"csvsql/internal/metrics/prompush"

	// register all backends with the storage factory.
	_ "csvsql/internal/storage/all"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv)
	stop()
	os.Exit(code)
}

// run is main without the process exit, so tests can drive it.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	fs := flag.NewFlagSet("csvsql", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		cfgPath        = fs.String("config", "csvsql.json", "config JSON path")
		envFile        = fs.String("env-file", ".env", "dotenv file loaded before CSVSQL_* overrides; a missing default file is ignored")
		validate       = fs.Bool("validate", false, "validate the configuration and exit")
		dryRun         = fs.Bool("dry-run", false, "print the DDL and skip the database")
		verbose        = fs.Bool("v", false, "enable verbose logs")
		metricsBackend = fs.String("metrics-backend", "", "metrics backend: none, pushgateway or datadog (overrides env METRICS_BACKEND)")
		pushGatewayURL = fs.String("pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
		statsdAddr     = fs.String("statsd-addr", "", "DogStatsD address (overrides env DD_DOGSTATSD_ADDR)")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	envFileSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "env-file" {
			envFileSet = true
		}
	})
	if err := config.LoadEnvFile(*envFile, !envFileSet); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	if _, err := config.ApplyEnv(&cfg, getenv); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintln(stderr, iss.Error())
	}
	if config.HasErrors(issues) {
		fmt.Fprintf(stderr, "configuration is invalid: %s\n", *cfgPath)
		return 1
	}
	if *validate {
		fmt.Fprintf(stdout, "configuration is valid: %s\n", *cfgPath)
		return 0
	}

	logPath, closeLog, err := logging.Setup(logging.Options{
		Tool:     "csvsql",
		ToFile:   cfg.Logging.ToFile,
		ToScreen: cfg.Logging.ToScreen,
		Dir:      cfg.Logging.Dir,
		Verbose:  *verbose,
		Screen:   stderr,
	})
	if err != nil {
		fmt.Fprintf(stderr, "logging: %v\n", err)
		return 1
	}
	defer closeLog()
	if logPath != "" {
		log.Printf("logging: file=%s", logPath)
	}

	flush := setupMetrics(cfg.Job, pick(*metricsBackend, getenv("METRICS_BACKEND")),
		pick(*pushGatewayURL, getenv("PUSHGATEWAY_URL")),
		pick(*statsdAddr, getenv("DD_DOGSTATSD_ADDR")), *verbose)
	defer flush()

	start := time.Now()
	res, err := importer.Run(ctx, cfg, importer.Options{DryRun: *dryRun, Out: stdout})
	if err != nil {
		log.Printf("csvsql: run_id=%s failed after %s: %v", res.RunID, time.Since(start).Truncate(time.Millisecond), err)
		return 1
	}
	log.Printf("csvsql: run_id=%s schema=%s table=%s inserted=%d batches=%d procedure=%t completed in %s",
		res.RunID, res.Schema, res.Table, res.Inserted, res.Batches, res.ProcedureRun,
		time.Since(start).Truncate(time.Millisecond))
	return 0
}

// setupMetrics installs the selected backend and returns its flush func.
// Backend failures are logged and leave metrics disabled.
func setupMetrics(job, backendName, gwURL, statsdAddr string, verbose bool) func() {
	nop := func() {}
	switch backendName {
	case "pushgateway":
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(job, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return nop
		}
		log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, job)
		metrics.SetBackend(b)

	case "datadog":
		if statsdAddr == "" {
			statsdAddr = "127.0.0.1:8125"
		}
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       statsdAddr,
			Namespace:  "csvsql.",
			GlobalTags: []string{"job:" + job},
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return nop
		}
		log.Printf("metrics: addr=%v, backend=%v, job_name=%v", statsdAddr, backendName, job)
		metrics.SetBackend(b)

	case "", "none":
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}
		return nop

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
		return nop
	}

	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}
}

func pick(flagValue, envValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return envValue
}
