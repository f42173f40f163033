// Package datasource opens the input CSV file from wherever the config says
// it lives.
package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"csvsql/internal/config"
	"csvsql/internal/datasource/file"
	"csvsql/internal/datasource/ftp"
	"csvsql/internal/datasource/httpds"
	"csvsql/internal/datasource/sftp"
)

// Source yields the raw bytes of one input file.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	// Name is the file name the default table name is derived from.
	Name() string
}

// New builds the Source selected by cfg.Kind.
func New(cfg config.Source) (Source, error) {
	switch cfg.Kind {
	case "file":
		return file.NewLocal(cfg.File.Path), nil
	case "http":
		h := http.Header{}
		for k, v := range cfg.HTTP.Headers {
			h.Set(k, v)
		}
		return wrap(httpds.New(httpds.Config{
			URL:                cfg.HTTP.URL,
			Headers:            h,
			Timeout:            seconds(cfg.HTTP.TimeoutSeconds),
			MaxRetries:         cfg.HTTP.MaxRetries,
			InsecureSkipVerify: cfg.HTTP.InsecureSkipVerify,
		}))
	case "ftp", "ftps":
		r := cfg.Remote
		return wrap(ftp.New(ftp.Config{
			Host:               r.Host,
			Port:               r.Port,
			Username:           r.Username,
			Password:           r.Password,
			Path:               r.Path,
			TLS:                cfg.Kind == "ftps",
			InsecureSkipVerify: r.InsecureSkipVerify,
			Timeout:            seconds(r.TimeoutSeconds),
		}))
	case "sftp", "scp":
		r := cfg.Remote
		return wrap(sftp.New(sftp.Config{
			Host:               r.Host,
			Port:               r.Port,
			Username:           r.Username,
			Password:           r.Password,
			PrivateKeyPath:     r.PrivateKeyPath,
			HostKeyFingerprint: r.HostKeyFingerprint,
			Path:               r.Path,
			Timeout:            seconds(r.TimeoutSeconds),
		}))
	default:
		return nil, fmt.Errorf("unsupported source.kind=%s", cfg.Kind)
	}
}

// wrap avoids returning a typed nil Source alongside an error.
func wrap[S Source](s S, err error) (Source, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }
