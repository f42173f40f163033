package datasource

import (
	"testing"

	"csvsql/internal/config"
	"csvsql/internal/datasource/file"
	"csvsql/internal/datasource/ftp"
	"csvsql/internal/datasource/httpds"
	"csvsql/internal/datasource/sftp"
)

func TestNew(t *testing.T) {
	t.Parallel()

	remote := config.Remote{Host: "h", Path: "/out/sales.csv", Password: "p"}
	tests := []struct {
		name     string
		cfg      config.Source
		wantType any
		wantName string
	}{
		{"file", config.Source{Kind: "file", File: config.SourceFile{Path: "in/Sales.csv"}}, &file.Local{}, "Sales.csv"},
		{"http", config.Source{Kind: "http", HTTP: config.SourceHTTP{URL: "https://x.test/a/b.csv", Headers: map[string]string{"X-Key": "k"}}}, &httpds.Source{}, "b.csv"},
		{"ftp", config.Source{Kind: "ftp", Remote: remote}, &ftp.Source{}, "sales.csv"},
		{"ftps", config.Source{Kind: "ftps", Remote: remote}, &ftp.Source{}, "sales.csv"},
		{"sftp", config.Source{Kind: "sftp", Remote: remote}, &sftp.Source{}, "sales.csv"},
		{"scp", config.Source{Kind: "scp", Remote: remote}, &sftp.Source{}, "sales.csv"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			src, err := New(tt.cfg)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if got, want := typeName(src), typeName(tt.wantType); got != want {
				t.Fatalf("New() type = %s, want %s", got, want)
			}
			if got := src.Name(); got != tt.wantName {
				t.Fatalf("Name() = %q, want %q", got, tt.wantName)
			}
		})
	}
}

func TestNewErrors(t *testing.T) {
	t.Parallel()

	for _, cfg := range []config.Source{
		{Kind: "s3"},
		{Kind: "http", HTTP: config.SourceHTTP{URL: "nope"}},
		{Kind: "ftp"},
		{Kind: "sftp", Remote: config.Remote{Host: "h"}},
	} {
		if _, err := New(cfg); err == nil {
			t.Errorf("New(%+v) error = nil, want error", cfg)
		}
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *file.Local:
		return "file"
	case *httpds.Source:
		return "http"
	case *ftp.Source:
		return "ftp"
	case *sftp.Source:
		return "sftp"
	}
	return "unknown"
}
