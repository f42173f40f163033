// Package webui exposes a small HTTP service that previews the table a CSV
// file would become: inferred columns and the DDL for a chosen backend.
//
// Routes:
//
//	GET  /            → form
//	POST /api/schema  → CSV request body; returns JSON {table, columns, ddl, rows}
//	GET  /healthz     → liveness check
package webui

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"csvsql/internal/importer"
	"csvsql/internal/storage"
)

// DefaultMaxBodyBytes caps the CSV upload size.
const DefaultMaxBodyBytes = 32 << 20

// Config controls server startup.
type Config struct {
	Addr         string
	MaxBodyBytes int64
	// DefaultKind is the storage kind used when a request names none.
	DefaultKind string
}

// Server wraps a chi router and the preview handlers.
type Server struct {
	cfg    Config
	router *chi.Mux
	tmpl   *template.Template
}

// NewServer constructs a Server with routes and the embedded template.
func NewServer(cfg Config) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.DefaultKind == "" {
		cfg.DefaultKind = "mssql"
	}
	s := &Server{
		cfg:    cfg,
		router: chi.NewRouter(),
		tmpl:   template.Must(template.New("index").Parse(indexHTML)),
	}
	s.routes()
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Get("/", s.handleIndex)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Post("/api/schema", s.handleSchema)
}

// handleIndex renders the input form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Kinds       []string
		DefaultKind string
	}{
		Kinds:       storage.Dialects(),
		DefaultKind: s.cfg.DefaultKind,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, data); err != nil {
		log.Printf("webui: template error: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

// handleSchema reads the CSV body and returns the preview as JSON.
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	opt, err := s.previewOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return
		}
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}

	p, err := importer.BuildPreview(raw, opt)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	log.Printf("webui: preview request_id=%s kind=%s table=%s columns=%d rows=%d",
		middleware.GetReqID(r.Context()), opt.Kind, p.Table, len(p.Columns), p.Rows)
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) previewOptions(r *http.Request) (importer.PreviewOptions, error) {
	q := r.URL.Query()
	opt := importer.PreviewOptions{
		Delimiter: ',',
		HasHeader: true,
		Encoding:  strings.TrimSpace(q.Get("encoding")),
		Locale:    strings.TrimSpace(q.Get("locale")),
		Kind:      strings.TrimSpace(q.Get("kind")),
		Schema:    strings.TrimSpace(q.Get("schema")),
		Table:     strings.TrimSpace(q.Get("table")),
	}
	if opt.Kind == "" {
		opt.Kind = s.cfg.DefaultKind
	}
	if v := q.Get("delimiter"); v != "" {
		d, err := ParseDelimiter(v)
		if err != nil {
			return opt, err
		}
		opt.Delimiter = d
	}
	if v := q.Get("header"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opt, errors.New("header must be true or false")
		}
		opt.HasHeader = b
	}
	if v := q.Get("normalize"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opt, errors.New("normalize must be true or false")
		}
		opt.NormalizeNames = b
	}
	return opt, nil
}

// ParseDelimiter accepts a single character, or "tab" and `\t` for a tab.
func ParseDelimiter(v string) (rune, error) {
	switch strings.ToLower(v) {
	case "tab", `\t`:
		return '\t', nil
	}
	if utf8.RuneCountInString(v) != 1 {
		return 0, errors.New("delimiter must be a single character")
	}
	r, _ := utf8.DecodeRuneInString(v)
	if r == '"' {
		return 0, errors.New("delimiter must not be a double quote")
	}
	return r, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("webui: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

//go:embed index.tmpl.html
var indexHTML string
