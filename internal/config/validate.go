package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"csvsql/internal/locale"
	"csvsql/internal/parser/csv"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "source.remote.host"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate performs static validation of a Config. It does not mutate c.
// Callers decide whether warnings are fatal; errors always are.
func Validate(c Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	if _, err := locale.Parse(c.Locale); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "locale",
			Message:  fmt.Sprintf("locale %q is not a valid BCP 47 tag", c.Locale),
		})
	}
	issues = append(issues, validateSource(c.Source)...)
	issues = append(issues, validateParser(c.Parser)...)
	issues = append(issues, validateStorage(c.Storage)...)
	issues = append(issues, validateProcedure(c.Procedure, c.Storage.Kind)...)
	issues = append(issues, validateLogging(c.Logging)...)
	issues = append(issues, validateRuntime(c.Runtime)...)

	return issues
}

// validateSource validates Source configuration.
func validateSource(s Source) []Issue {
	var issues []Issue

	switch s.Kind {
	case "":
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  "source.kind must not be empty",
		})
	case "file":
		if strings.TrimSpace(s.File.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.file.path",
				Message:  "file source requires a non-empty path",
			})
		}
	case "http":
		u := strings.ToLower(strings.TrimSpace(s.HTTP.URL))
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.http.url",
				Message:  "http source requires an http:// or https:// url",
			})
		}
		if s.HTTP.InsecureSkipVerify {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "source.http.insecure_skip_verify",
				Message:  "TLS certificate verification is disabled",
			})
		}
	case "ftp", "ftps", "sftp", "scp":
		issues = append(issues, validateRemote(s.Kind, s.Remote)...)
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unknown source kind %q; want file, http, ftp, ftps, sftp or scp", s.Kind),
		})
	}

	return issues
}

func validateRemote(kind string, r Remote) []Issue {
	var issues []Issue

	if strings.TrimSpace(r.Host) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.remote.host",
			Message:  kind + " source requires a host",
		})
	}
	if strings.TrimSpace(r.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.remote.path",
			Message:  kind + " source requires a remote file path",
		})
	}
	if r.Port < 0 || r.Port > 65535 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.remote.port",
			Message:  fmt.Sprintf("port %d is out of range", r.Port),
		})
	}

	switch kind {
	case "ftp", "ftps":
		if m := strings.ToLower(r.Mode); m != "" && m != "passive" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.remote.mode",
				Message:  fmt.Sprintf("ftp mode %q is not supported; only passive mode is available", r.Mode),
			})
		}
	case "sftp", "scp":
		if strings.TrimSpace(r.HostKeyFingerprint) == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "source.remote.host_key_fingerprint",
				Message:  "no host key fingerprint configured; any host key will be accepted",
			})
		}
		if r.Password == "" && r.PrivateKeyPath == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.remote",
				Message:  kind + " source requires a password or a private_key_path",
			})
		}
	}
	return issues
}

// validateParser validates parser configuration.
func validateParser(p Parser) []Issue {
	var issues []Issue

	if p.Kind != "csv" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  fmt.Sprintf("unknown parser kind %q; only csv is supported", p.Kind),
		})
	}

	if d := p.Options.String("delimiter", ","); d != `\t` && utf8.RuneCountInString(d) != 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.delimiter",
			Message:  fmt.Sprintf("delimiter %q must be a single character", d),
		})
	} else if d == `"` {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.delimiter",
			Message:  "the quote character cannot be the delimiter",
		})
	}
	if enc := p.Options.String("encoding", ""); enc != "" {
		if _, err := csv.Lookup(enc); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "parser.options.encoding",
				Message:  err.Error(),
			})
		}
	}

	return issues
}

// validateStorage validates storage configuration and DB settings.
func validateStorage(s Storage) []Issue {
	var issues []Issue

	switch s.Kind {
	case "mssql", "postgres", "mysql", "sqlite":
	case "":
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  "storage.kind must not be empty",
		})
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}

	if strings.TrimSpace(s.DB.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.dsn",
			Message:  "storage.db.dsn must not be empty",
		})
	}
	return issues
}

func validateProcedure(p Procedure, storageKind string) []Issue {
	var issues []Issue
	if !p.Run {
		return issues
	}
	if strings.TrimSpace(p.Name) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "procedure.name",
			Message:  "procedure.run is true but no name is set; the procedure step will be skipped",
		})
	}
	if storageKind == "sqlite" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "procedure.run",
			Message:  "sqlite has no stored procedures",
		})
	}
	return issues
}

func validateLogging(l Logging) []Issue {
	if !l.ToFile && !l.ToScreen {
		return []Issue{{
			Severity: SeverityWarning,
			Path:     "logging",
			Message:  "both to_file and to_screen are false; the run will not be logged",
		}}
	}
	return nil
}

// validateRuntime validates RuntimeConfig for obvious misconfigurations.
func validateRuntime(r RuntimeConfig) []Issue {
	var issues []Issue

	if r.BatchSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "runtime.batch_size",
			Message:  fmt.Sprintf("batch_size=%d; the whole table will be loaded in one batch", r.BatchSize),
		})
	}
	if r.ChannelBuffer < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.channel_buffer",
			Message:  "channel_buffer must not be negative",
		})
	}

	return issues
}
