// Command csvschema-web serves the schema preview UI.
//
// Usage:
//
//	go run ./cmd/csvschema-web -addr :8080 -kind postgres
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"csvsql/internal/webui"

	_ "csvsql/internal/storage/all"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	kind := flag.String("kind", "mssql", "default storage kind for DDL rendering")
	maxBody := flag.Int64("max-body", webui.DefaultMaxBodyBytes, "maximum CSV upload size in bytes")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := webui.NewServer(webui.Config{
		Addr:         *addr,
		MaxBodyBytes: *maxBody,
		DefaultKind:  *kind,
	})
	log.Printf("webui: listening on %s", *addr)
	if err := srv.ListenAndServe(ctx); err != nil {
		log.Fatal(err)
	}
	log.Printf("webui: stopped")
}
