// Package config loads chatrelay settings from the environment, an
// optional .env file and an optional TOML file.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Environment variables that relocate the files config reads.
const (
	ConfigPathEnv = "CHATRELAY_CONFIG"
	EnvFileEnv    = "CHATRELAY_ENV_FILE"
)

// DataDir returns the path to the chatrelay data directory.
// - Windows: %APPDATA%\chatrelay
// - Other OS: ~/.chatrelay
func DataDir() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "chatrelay")
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".chatrelay"
	}
	return filepath.Join(home, ".chatrelay")
}

// ConfigPath returns the path to the config file, ~/.chatrelay/config.toml
// unless CHATRELAY_CONFIG is set.
func ConfigPath() string {
	if path := os.Getenv(ConfigPathEnv); path != "" {
		return path
	}
	return filepath.Join(DataDir(), "config.toml")
}

// EnvFilePath returns the .env file to load, ./.env unless
// CHATRELAY_ENV_FILE is set.
func EnvFilePath() string {
	if path := os.Getenv(EnvFileEnv); path != "" {
		return path
	}
	return ".env"
}
