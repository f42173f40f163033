// Package config defines the JSON configuration model for csvsql runs.
//
// One file describes one import: where the CSV comes from, how to parse it,
// which database and table it lands in and what to run afterwards. Field
// names in Go mirror the JSON keys.
//
// Example (trimmed):
//
//	{
//	  "job":     "daily-sales",
//	  "locale":  "en-GB",
//	  "source":  { "kind": "sftp", "remote": { "host": "files.example.com", "path": "/out/sales.csv" } },
//	  "parser":  { "kind": "csv", "options": { "delimiter": ";", "has_header": true } },
//	  "storage": { "kind": "mssql", "db": { "dsn": "sqlserver://...", "schema": "dbo", "table_prefix": "stg_" } },
//	  "procedure": { "run": true, "database": "Sales", "schema": "dbo", "name": "usp_MergeSales" }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Config is the top-level object decoded from a config file.
type Config struct {
	// Job names the run in logs and metrics.
	Job string `json:"job"`

	// Locale is a BCP 47 tag ("en-GB", "de-DE") selecting number and date
	// conventions for type inference.
	Locale string `json:"locale"`

	Source    Source        `json:"source"`
	Parser    Parser        `json:"parser"`
	Storage   Storage       `json:"storage"`
	Procedure Procedure     `json:"procedure"`
	Logging   Logging       `json:"logging"`
	Runtime   RuntimeConfig `json:"runtime"`
}

// RuntimeConfig controls load batching.
type RuntimeConfig struct {
	BatchSize     int `json:"batch_size"`
	ChannelBuffer int `json:"channel_buffer"`
}

// Source identifies where the CSV file comes from. Kind is one of "file",
// "http", "ftp", "ftps", "sftp" or "scp".
type Source struct {
	Kind   string     `json:"kind"`
	File   SourceFile `json:"file"`
	HTTP   SourceHTTP `json:"http"`
	Remote Remote     `json:"remote"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	// Path is the local filesystem path to the input file.
	Path string `json:"path"`
}

// SourceHTTP holds configuration for the "http" source kind.
type SourceHTTP struct {
	URL                string            `json:"url"`
	Headers            map[string]string `json:"headers"`
	TimeoutSeconds     int               `json:"timeout_seconds"`
	MaxRetries         int               `json:"max_retries"`
	InsecureSkipVerify bool              `json:"insecure_skip_verify"`
}

// Remote holds configuration shared by the ftp, ftps, sftp and scp kinds.
type Remote struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`

	// Path is the remote file path, e.g. "/exports/sales.csv".
	Path string `json:"path"`

	// Mode is the FTP data connection mode. Only "passive" is supported.
	Mode string `json:"mode"`

	// HostKeyFingerprint pins the SSH host key, either "SHA256:<base64>" or
	// the legacy colon-separated MD5 form. Empty accepts any host key.
	HostKeyFingerprint string `json:"host_key_fingerprint"`

	// PrivateKeyPath enables SSH public key authentication.
	PrivateKeyPath string `json:"private_key_path"`

	TimeoutSeconds     int  `json:"timeout_seconds"`
	InsecureSkipVerify bool `json:"insecure_skip_verify"`

	// SaveTo, when set, keeps a copy of the downloaded file at this local path.
	SaveTo string `json:"save_to"`
}

// Parser selects how to parse the raw source. The only kind is "csv".
type Parser struct {
	Kind string `json:"kind"`

	// Options is interpreted by the parser. CSV keys:
	//   delimiter (string), has_header (bool), encoding (string),
	//   normalize_names (bool)
	Options Options `json:"options"`
}

// Storage selects the database the table is created in.
type Storage struct {
	// Kind is "mssql", "postgres", "mysql" or "sqlite".
	Kind string   `json:"kind"`
	DB   DBConfig `json:"db"`
}

// DBConfig configures the target database and table name.
type DBConfig struct {
	DSN string `json:"dsn"`

	// Schema defaults to the backend's default schema when empty.
	Schema string `json:"schema"`

	// TablePrefix is prepended to the table name.
	TablePrefix string `json:"table_prefix"`

	// TableNameOverride replaces the name derived from the file name.
	TableNameOverride string `json:"table_name_override"`
}

// Procedure configures the stored procedure run after a successful load.
type Procedure struct {
	Run      bool   `json:"run"`
	Database string `json:"database"`
	Schema   string `json:"schema"`
	Name     string `json:"name"`
}

// Logging controls where run logs go.
type Logging struct {
	ToFile   bool   `json:"to_file"`
	ToScreen bool   `json:"to_screen"`
	Dir      string `json:"dir"`
}

// Defaults returns the values used for keys missing from a config file.
func Defaults() Config {
	return Config{
		Job:     "csvsql",
		Locale:  "en-GB",
		Parser:  Parser{Kind: "csv", Options: Options{}},
		Logging: Logging{ToScreen: true},
		Runtime: RuntimeConfig{BatchSize: 5000, ChannelBuffer: 8},
	}
}

// Decode reads one JSON config from r on top of Defaults.
func Decode(r io.Reader) (Config, error) {
	c := Defaults()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if c.Parser.Options == nil {
		c.Parser.Options = Options{}
	}
	return c, nil
}

// Load opens path and decodes it.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// CSV is the typed view of the csv parser options.
type CSV struct {
	Delimiter      rune
	HasHeader      bool
	Encoding       string
	NormalizeNames bool
}

// CSVOptions reads the csv parser options with their defaults.
func (p Parser) CSVOptions() CSV {
	return CSV{
		Delimiter:      p.Options.Rune("delimiter", ','),
		HasHeader:      p.Options.Bool("has_header", false),
		Encoding:       p.Options.String("encoding", ""),
		NormalizeNames: p.Options.Bool("normalize_names", false),
	}
}

// Options is a small helper to fetch typed values from arbitrary JSON maps.
// It performs only minimal type coercion and returns provided defaults when a
// key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers are decoded as
// float64 by encoding/json, so this method accepts float64 and casts to int.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. The escape "\t" written literally selects a tab.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			if s == `\t` {
				return '\t'
			}
			return []rune(s)[0]
		}
	}
	return def
}

// UnmarshalJSON implements json.Unmarshaler so that a missing or null "options"
// object in JSON decodes to a non-nil, empty Options map.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
