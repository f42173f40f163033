package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func fakeEnv(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	c := Defaults()
	c.Storage.DB.DSN = "from-file"
	applied, err := ApplyEnv(&c, fakeEnv(map[string]string{
		"CSVSQL_DSN":             "sqlserver://env",
		"CSVSQL_LOCALE":          "en-US",
		"CSVSQL_REMOTE_PORT":     "2222",
		"CSVSQL_REMOTE_PASSWORD": "s3cret",
		"CSVSQL_TABLE":           "Sales",
		"CSVSQL_BATCH_SIZE":      " 250 ",
		"CSVSQL_SCHEMA":          "",
		"OTHER":                  "ignored",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if c.Storage.DB.DSN != "sqlserver://env" || c.Locale != "en-US" || c.Source.Remote.Port != 2222 ||
		c.Source.Remote.Password != "s3cret" || c.Storage.DB.TableNameOverride != "Sales" || c.Runtime.BatchSize != 250 {
		t.Fatalf("config after ApplyEnv = %+v", c)
	}
	want := []string{"CSVSQL_LOCALE", "CSVSQL_REMOTE_PORT", "CSVSQL_REMOTE_PASSWORD", "CSVSQL_DSN", "CSVSQL_TABLE", "CSVSQL_BATCH_SIZE"}
	if !reflect.DeepEqual(applied, want) {
		t.Fatalf("applied = %v, want %v", applied, want)
	}
}

func TestApplyEnvBadInt(t *testing.T) {
	t.Parallel()

	c := Defaults()
	if _, err := ApplyEnv(&c, fakeEnv(map[string]string{"CSVSQL_BATCH_SIZE": "lots"})); err == nil {
		t.Fatal("ApplyEnv() error = nil, want error")
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("CSVSQL_TEST_LOAD_ENV=hello\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CSVSQL_TEST_LOAD_ENV", "")
	os.Unsetenv("CSVSQL_TEST_LOAD_ENV")

	if err := LoadEnvFile(path, false); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}
	if got := os.Getenv("CSVSQL_TEST_LOAD_ENV"); got != "hello" {
		t.Fatalf("env = %q, want hello", got)
	}

	missing := filepath.Join(dir, "missing.env")
	if err := LoadEnvFile(missing, true); err != nil {
		t.Fatalf("LoadEnvFile(optional missing) error = %v", err)
	}
	if err := LoadEnvFile(missing, false); err == nil {
		t.Fatal("LoadEnvFile(required missing) error = nil, want error")
	}
}
