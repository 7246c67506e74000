package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/mandalnilabja/chatrelay/internal/types"
)

// isolate points config at files inside a temp dir and clears the
// variables Load reads, restoring them afterwards.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(ConfigPathEnv, filepath.Join(dir, "config.toml"))
	t.Setenv(EnvFileEnv, filepath.Join(dir, ".env"))
	for _, key := range []string{"SERVER_PORT", "UPSTREAM_URL", "LOG_LEVEL"} {
		unsetEnv(t, key)
	}
	return dir
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	old, ok := os.LookupEnv(key)
	os.Unsetenv(key)
	t.Cleanup(func() {
		if ok {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ServerPort != ":8080" {
		t.Errorf("ServerPort = %q, want :8080", cfg.ServerPort)
	}
	if cfg.UpstreamURL != DefaultUpstreamURL {
		t.Errorf("UpstreamURL = %q, want %q", cfg.UpstreamURL, DefaultUpstreamURL)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
	if cfg.Defaults != types.StandardDefaults() {
		t.Errorf("Defaults = %+v, want %+v", cfg.Defaults, types.StandardDefaults())
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.toml"), `
server_port = ":9000"
upstream_url = "http://localhost:1234/v1/chat/completions"
log_level = "warn"

[defaults]
model = "gpt-4o-mini"
max_completion_tokens = 512
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ServerPort != ":9000" {
		t.Errorf("ServerPort = %q, want :9000", cfg.ServerPort)
	}
	if cfg.UpstreamURL != "http://localhost:1234/v1/chat/completions" {
		t.Errorf("UpstreamURL = %q", cfg.UpstreamURL)
	}
	if cfg.LogLevel != slog.LevelWarn {
		t.Errorf("LogLevel = %v, want warn", cfg.LogLevel)
	}
	want := types.Defaults{Model: "gpt-4o-mini", Temperature: types.DefaultTemperature, MaxCompletionTokens: 512}
	if cfg.Defaults != want {
		t.Errorf("Defaults = %+v, want %+v", cfg.Defaults, want)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.toml"), `server_port = ":9000"`)
	t.Setenv("SERVER_PORT", "7070")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ServerPort != ":7070" {
		t.Errorf("ServerPort = %q, want :7070", cfg.ServerPort)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".env"), "LOG_LEVEL=debug\nUPSTREAM_URL=http://from-dotenv\n")
	t.Setenv("UPSTREAM_URL", "http://from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug from .env", cfg.LogLevel)
	}
	if cfg.UpstreamURL != "http://from-env" {
		t.Errorf("UpstreamURL = %q, real environment must win over .env", cfg.UpstreamURL)
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	isolate(t)
	t.Setenv("LOG_LEVEL", "chatty")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid log level")
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.toml"), "server_port = [")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed TOML")
	}
}

func TestEnsureConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "nested", "config.toml")
	t.Setenv(ConfigPathEnv, path)

	if err := EnsureConfigFile(); err != nil {
		t.Fatalf("EnsureConfigFile() error: %v", err)
	}
	fc, err := LoadFileFrom(path)
	if err != nil {
		t.Fatalf("generated config does not parse: %v", err)
	}
	if fc.ServerPort != "" || fc.Defaults != nil {
		t.Errorf("generated config should be all comments, got %+v", fc)
	}

	// Existing files are left alone
	writeFile(t, path, `server_port = ":1"`)
	if err := EnsureConfigFile(); err != nil {
		t.Fatalf("EnsureConfigFile() error: %v", err)
	}
	fc, _ = LoadFileFrom(path)
	if fc.ServerPort != ":1" {
		t.Errorf("existing config was overwritten")
	}
}

func TestNormalizePort(t *testing.T) {
	tests := map[string]string{
		"8080":           ":8080",
		":8080":          ":8080",
		"127.0.0.1:8080": "127.0.0.1:8080",
	}
	for in, want := range tests {
		if got := normalizePort(in); got != want {
			t.Errorf("normalizePort(%q) = %q, want %q", in, got, want)
		}
	}
}
