package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CSVSQL_"

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error when optional is true.
func LoadEnvFile(path string, optional bool) error {
	if err := godotenv.Load(path); err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// envBinding maps one CSVSQL_* variable onto a config field.
type envBinding struct {
	key string
	set func(c *Config, v string) error
}

var envBindings = []envBinding{
	{"JOB", func(c *Config, v string) error { c.Job = v; return nil }},
	{"LOCALE", func(c *Config, v string) error { c.Locale = v; return nil }},
	{"SOURCE_KIND", func(c *Config, v string) error { c.Source.Kind = v; return nil }},
	{"SOURCE_PATH", func(c *Config, v string) error { c.Source.File.Path = v; return nil }},
	{"SOURCE_URL", func(c *Config, v string) error { c.Source.HTTP.URL = v; return nil }},
	{"REMOTE_HOST", func(c *Config, v string) error { c.Source.Remote.Host = v; return nil }},
	{"REMOTE_PORT", func(c *Config, v string) error { return setInt(&c.Source.Remote.Port, v) }},
	{"REMOTE_USERNAME", func(c *Config, v string) error { c.Source.Remote.Username = v; return nil }},
	{"REMOTE_PASSWORD", func(c *Config, v string) error { c.Source.Remote.Password = v; return nil }},
	{"REMOTE_PATH", func(c *Config, v string) error { c.Source.Remote.Path = v; return nil }},
	{"STORAGE_KIND", func(c *Config, v string) error { c.Storage.Kind = v; return nil }},
	{"DSN", func(c *Config, v string) error { c.Storage.DB.DSN = v; return nil }},
	{"SCHEMA", func(c *Config, v string) error { c.Storage.DB.Schema = v; return nil }},
	{"TABLE_PREFIX", func(c *Config, v string) error { c.Storage.DB.TablePrefix = v; return nil }},
	{"TABLE", func(c *Config, v string) error { c.Storage.DB.TableNameOverride = v; return nil }},
	{"BATCH_SIZE", func(c *Config, v string) error { return setInt(&c.Runtime.BatchSize, v) }},
	{"LOG_DIR", func(c *Config, v string) error { c.Logging.Dir = v; return nil }},
}

// ApplyEnv overrides fields of c from CSVSQL_* variables read through
// getenv. Empty values are ignored. It returns the names that were applied;
// secrets are never logged.
func ApplyEnv(c *Config, getenv func(string) string) ([]string, error) {
	var applied []string
	for _, b := range envBindings {
		name := EnvPrefix + b.key
		v := strings.TrimSpace(getenv(name))
		if v == "" {
			continue
		}
		if err := b.set(c, v); err != nil {
			return applied, fmt.Errorf("%s: %w", name, err)
		}
		applied = append(applied, name)
	}
	if len(applied) > 0 {
		log.Printf("config: env overrides=%s", strings.Join(applied, ","))
	}
	return applied, nil
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("not an integer: %q", v)
	}
	*dst = n
	return nil
}
