// Package sftp downloads a file over SSH. The "sftp" and "scp" source kinds
// both use the SFTP subsystem of one SSH connection.
package sftp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// DefaultPort is used when Config.Port is zero.
const DefaultPort = 22

// Config configures one SFTP download.
type Config struct {
	Host     string
	Port     int
	Username string

	// Password authenticates the user; it also unlocks an encrypted
	// private key.
	Password string

	// PrivateKeyPath enables public key authentication.
	PrivateKeyPath string

	// HostKeyFingerprint pins the server key. Accepted forms:
	//   SHA256:<base64>                     (ssh-keygen -l)
	//   aa:bb:...:ff                        (legacy MD5)
	//   ssh-ed25519 255 <either of the above>
	// Empty accepts any host key.
	HostKeyFingerprint string

	// Path is the remote file path.
	Path string

	// Timeout bounds connection setup. Zero means 30s.
	Timeout time.Duration
}

// Source downloads Config.Path.
type Source struct{ cfg Config }

// New validates cfg and returns a Source.
func New(cfg Config) (*Source, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("sftp: host must not be empty")
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("sftp: path must not be empty")
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Source{cfg: cfg}, nil
}

// Name returns the remote file's base name.
func (s *Source) Name() string { return path.Base(s.cfg.Path) }

func (s *Source) addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// clientConfig builds the SSH client settings.
func (s *Source) clientConfig() (*ssh.ClientConfig, error) {
	var auth []ssh.AuthMethod
	if s.cfg.PrivateKeyPath != "" {
		signer, err := loadSigner(s.cfg.PrivateKeyPath, s.cfg.Password)
		if err != nil {
			return nil, err
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if s.cfg.Password != "" {
		auth = append(auth, ssh.Password(s.cfg.Password))
	}
	if len(auth) == 0 {
		return nil, fmt.Errorf("sftp: a password or private key is required")
	}

	cb := ssh.InsecureIgnoreHostKey() //nolint:gosec // no fingerprint configured
	if s.cfg.HostKeyFingerprint != "" {
		cb = FingerprintCallback(s.cfg.HostKeyFingerprint)
	}
	return &ssh.ClientConfig{
		User:            s.cfg.Username,
		Auth:            auth,
		HostKeyCallback: cb,
		Timeout:         s.cfg.Timeout,
	}, nil
}

func loadSigner(keyPath, passphrase string) (ssh.Signer, error) {
	pem, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("sftp: read private key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(pem)
	var missing *ssh.PassphraseMissingError
	if errors.As(err, &missing) && passphrase != "" {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(pem, []byte(passphrase))
	}
	if err != nil {
		return nil, fmt.Errorf("sftp: parse private key: %w", err)
	}
	return signer, nil
}

// Open connects, authenticates and opens the remote file. Closing the
// returned reader closes the file and the SSH connection.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	cfg, err := s.clientConfig()
	if err != nil {
		return nil, err
	}
	d := net.Dialer{Timeout: s.cfg.Timeout}
	nc, err := d.DialContext(ctx, "tcp", s.addr())
	if err != nil {
		return nil, fmt.Errorf("sftp: dial %s: %w", s.addr(), err)
	}
	c, chans, reqs, err := ssh.NewClientConn(nc, s.addr(), cfg)
	if err != nil {
		_ = nc.Close()
		return nil, fmt.Errorf("sftp: ssh handshake with %s: %w", s.addr(), err)
	}
	sshClient := ssh.NewClient(c, chans, reqs)

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		return nil, fmt.Errorf("sftp: start subsystem: %w", err)
	}
	f, err := client.Open(s.cfg.Path)
	if err != nil {
		_ = client.Close()
		_ = sshClient.Close()
		return nil, fmt.Errorf("sftp: open %s: %w", s.cfg.Path, err)
	}
	log.Printf("sftp: downloading host=%s path=%s", s.cfg.Host, s.cfg.Path)
	return &remoteFile{File: f, client: client, ssh: sshClient}, nil
}

type remoteFile struct {
	*sftp.File
	client *sftp.Client
	ssh    *ssh.Client
}

func (r *remoteFile) Close() error {
	err := r.File.Close()
	if cerr := r.client.Close(); err == nil {
		err = cerr
	}
	if cerr := r.ssh.Close(); err == nil {
		err = cerr
	}
	return err
}

// FingerprintCallback returns a host key callback that accepts only the key
// matching want. See Config.HostKeyFingerprint for the accepted forms.
func FingerprintCallback(want string) ssh.HostKeyCallback {
	want = normalizeFingerprint(want)
	legacy := !strings.HasPrefix(want, "SHA256:")
	return func(hostname string, _ net.Addr, key ssh.PublicKey) error {
		got := ssh.FingerprintSHA256(key)
		if legacy {
			got = ssh.FingerprintLegacyMD5(key)
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1 {
			return nil
		}
		return fmt.Errorf("sftp: host key for %s has fingerprint %s, want %s", hostname, got, want)
	}
}

// normalizeFingerprint keeps the last field of "type bits fingerprint",
// strips base64 padding and adds the SHA256: prefix to bare base64.
func normalizeFingerprint(fp string) string {
	fields := strings.Fields(fp)
	if len(fields) == 0 {
		return ""
	}
	fp = fields[len(fields)-1]
	if strings.HasPrefix(fp, "MD5:") {
		return strings.ToLower(strings.TrimPrefix(fp, "MD5:"))
	}
	if strings.Count(fp, ":") == 15 {
		return strings.ToLower(fp)
	}
	fp = strings.TrimPrefix(fp, "SHA256:")
	return "SHA256:" + strings.TrimRight(fp, "=")
}
