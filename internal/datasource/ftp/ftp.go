// Package ftp downloads a file from an FTP or explicit-TLS FTPS server.
//
// Connections always use passive data transfers (EPSV, falling back to
// PASV); active mode is not supported.
package ftp

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"net"
	"path"
	"strconv"
	"time"

	"github.com/jlaffaye/ftp"
)

// DefaultPort is used when Config.Port is zero.
const DefaultPort = 21

// Config configures one FTP download.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string

	// Path is the remote file path.
	Path string

	// TLS enables explicit FTPS (AUTH TLS on the control connection).
	TLS bool

	// InsecureSkipVerify accepts any server certificate for FTPS.
	InsecureSkipVerify bool

	// Timeout bounds connection setup. Zero means 30s.
	Timeout time.Duration
}

// conn is the part of *ftp.ServerConn used here.
type conn interface {
	Login(user, password string) error
	Retr(path string) (io.ReadCloser, error)
	Quit() error
}

type serverConn struct{ *ftp.ServerConn }

func (c serverConn) Retr(p string) (io.ReadCloser, error) {
	r, err := c.ServerConn.Retr(p)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// dial connects to addr; tests replace it.
var dial = func(ctx context.Context, addr string, opts ...ftp.DialOption) (conn, error) {
	c, err := ftp.Dial(addr, append(opts, ftp.DialWithContext(ctx))...)
	if err != nil {
		return nil, err
	}
	return serverConn{c}, nil
}

// Source downloads Config.Path.
type Source struct{ cfg Config }

// New validates cfg and returns a Source.
func New(cfg Config) (*Source, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("ftp: host must not be empty")
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("ftp: path must not be empty")
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Username == "" {
		cfg.Username = "anonymous"
	}
	return &Source{cfg: cfg}, nil
}

// Name returns the remote file's base name.
func (s *Source) Name() string { return path.Base(s.cfg.Path) }

func (s *Source) addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// tlsConfig returns the FTPS client TLS settings, or nil for plain FTP.
func (s *Source) tlsConfig() *tls.Config {
	if !s.cfg.TLS {
		return nil
	}
	return &tls.Config{
		ServerName:         s.cfg.Host,
		InsecureSkipVerify: s.cfg.InsecureSkipVerify, //nolint:gosec // explicitly configurable
		MinVersion:         tls.VersionTLS12,
	}
}

func (s *Source) dialOptions() []ftp.DialOption {
	opts := []ftp.DialOption{ftp.DialWithTimeout(s.cfg.Timeout)}
	if tc := s.tlsConfig(); tc != nil {
		opts = append(opts, ftp.DialWithExplicitTLS(tc))
	}
	return opts
}

// Open logs in and starts the transfer. Closing the returned reader ends the
// transfer and the session.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := dial(ctx, s.addr(), s.dialOptions()...)
	if err != nil {
		return nil, fmt.Errorf("ftp: dial %s: %w", s.addr(), err)
	}
	if err := c.Login(s.cfg.Username, s.cfg.Password); err != nil {
		_ = c.Quit()
		return nil, fmt.Errorf("ftp: login as %s: %w", s.cfg.Username, err)
	}
	r, err := c.Retr(s.cfg.Path)
	if err != nil {
		_ = c.Quit()
		return nil, fmt.Errorf("ftp: retrieve %s: %w", s.cfg.Path, err)
	}
	log.Printf("ftp: downloading host=%s path=%s tls=%v", s.cfg.Host, s.cfg.Path, s.cfg.TLS)
	return &transfer{ReadCloser: r, conn: c}, nil
}

// transfer closes the data connection before quitting the session.
type transfer struct {
	io.ReadCloser
	conn conn
}

func (t *transfer) Close() error {
	err := t.ReadCloser.Close()
	if qerr := t.conn.Quit(); err == nil {
		err = qerr
	}
	return err
}
