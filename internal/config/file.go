package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/mandalnilabja/chatrelay/internal/types"
)

// FileConfig represents the TOML configuration file structure.
type FileConfig struct {
	ServerPort  string          `toml:"server_port"`
	UpstreamURL string          `toml:"upstream_url"`
	LogLevel    string          `toml:"log_level"`
	Defaults    *DefaultsConfig `toml:"defaults"`
}

// DefaultsConfig overrides the values filled into relayed requests.
type DefaultsConfig struct {
	Model               string   `toml:"model"`
	Temperature         *float64 `toml:"temperature"`
	MaxCompletionTokens *int     `toml:"max_completion_tokens"`
}

// resolve merges the file overrides onto the built-in defaults.
func (d *DefaultsConfig) resolve() types.Defaults {
	defaults := types.StandardDefaults()
	if d == nil {
		return defaults
	}
	if d.Model != "" {
		defaults.Model = d.Model
	}
	if d.Temperature != nil {
		defaults.Temperature = *d.Temperature
	}
	if d.MaxCompletionTokens != nil {
		defaults.MaxCompletionTokens = *d.MaxCompletionTokens
	}
	return defaults
}

// LoadFile loads configuration from the TOML file at ConfigPath.
// Returns an empty FileConfig if the file doesn't exist.
func LoadFile() (*FileConfig, error) {
	return LoadFileFrom(ConfigPath())
}

// LoadFileFrom loads configuration from the TOML file at path.
func LoadFileFrom(path string) (*FileConfig, error) {
	cfg := &FileConfig{}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// EnsureConfigFile creates a default config file with commented examples if none exists.
func EnsureConfigFile() error {
	path := ConfigPath()

	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	defaultConfig := `# chatrelay configuration
# Environment variables (SERVER_PORT, UPSTREAM_URL, LOG_LEVEL) take precedence.
# The API key is only read from OPENAI_API_KEY.

# server_port = ":8080"
# upstream_url = "https://api.openai.com/v1/chat/completions"
# log_level = "info"

# Values used when a request omits them (or sends a falsy value)
# [defaults]
# model = "gpt-5-mini"
# temperature = 1
# max_completion_tokens = 16000
`

	return os.WriteFile(path, []byte(defaultConfig), 0644)
}
