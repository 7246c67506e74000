package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mandalnilabja/chatrelay/internal/types"
)

// DefaultUpstreamURL is the OpenAI chat completions endpoint.
const DefaultUpstreamURL = "https://api.openai.com/v1/chat/completions"

// Config holds application configuration loaded from environment and file.
// Priority: Env vars → .env file → config.toml → defaults
type Config struct {
	// ServerPort is the address to bind the server to (e.g., ":8080")
	ServerPort string

	// UpstreamURL is the chat completions endpoint requests are relayed to
	UpstreamURL string

	// LogLevel is the minimum level written by the logger
	LogLevel slog.Level

	// Defaults fill in missing fields of relayed requests
	Defaults types.Defaults
}

// Load reads configuration from file and environment variables.
// Environment variables override file config values. The provider API key
// is deliberately not part of Config; it is read per request.
func Load() (*Config, error) {
	if err := loadDotEnv(EnvFilePath()); err != nil {
		return nil, err
	}

	fileConfig, err := LoadFile()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ConfigPath(), err)
	}

	level, err := parseLogLevel(getEnvOrFile("LOG_LEVEL", fileConfig.LogLevel, "info"))
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:  normalizePort(getEnvOrFile("SERVER_PORT", fileConfig.ServerPort, ":8080")),
		UpstreamURL: getEnvOrFile("UPSTREAM_URL", fileConfig.UpstreamURL, DefaultUpstreamURL),
		LogLevel:    level,
		Defaults:    fileConfig.Defaults.resolve(),
	}, nil
}

// loadDotEnv merges a .env file into the environment without overriding
// variables that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// getEnvOrFile returns env value, file value, or default (in priority order)
func getEnvOrFile(key, fileValue, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if fileValue != "" {
		return fileValue
	}
	return defaultValue
}

// normalizePort accepts "8080" as shorthand for ":8080".
func normalizePort(port string) string {
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
