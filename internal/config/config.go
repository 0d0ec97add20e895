// Package config loads dot configuration from file and environment.
//
// Precedence (highest to lowest):
//  1. Environment variables (DOT_*)
//  2. Config file
//  3. Built-in defaults
//
// Config file search order:
//  1. .dot.yaml in current directory
//  2. ~/.config/dot/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all dot configuration.
type Config struct {
	// tmux state
	StateFile     string `yaml:"state_file"`      // snapshot JSON path
	ClaudeMapFile string `yaml:"claude_map_file"` // pane-to-session map path
	ClaudeCommand string `yaml:"claude_command"`  // assistant binary
	TmuxBinary    string `yaml:"tmux_binary"`

	// LLM settings
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	MaxTokens int64  `yaml:"max_tokens"`

	// OTEL
	OTELEndpoint string `yaml:"otel_endpoint"`
	OTELHeaders  string `yaml:"otel_headers"` // Comma-separated key=value pairs

	// ConfigFile is the path to the config file that was loaded (empty if none).
	ConfigFile string `yaml:"-"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		StateFile:     homePath(".tmux-window-state.json"),
		ClaudeMapFile: homePath(".tmux-claude-map"),
		ClaudeCommand: "claude",
		TmuxBinary:    "tmux",
		Provider:      "anthropic",
		MaxTokens:     4096,
	}
}

// Load reads configuration from file and environment variables.
// Environment variables always override file values.
func Load() (*Config, error) {
	cfg := Defaults()

	if path, data, err := findConfigFile(); err == nil {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
		mergeFile(cfg, &fileCfg)
	}

	mergeEnv(cfg)

	if cfg.Model == "" {
		cfg.Model = defaultModel(cfg.Provider)
	}
	return cfg, nil
}

// defaultModel returns the default model for a provider.
func defaultModel(provider string) string {
	if provider == "openai" {
		return "gpt-4o-mini"
	}
	return "claude-sonnet-4-5"
}

// findConfigFile searches for a config file and returns its path and contents.
func findConfigFile() (string, []byte, error) {
	if data, err := os.ReadFile(".dot.yaml"); err == nil {
		return ".dot.yaml", data, nil
	}
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", "dot", "config.yaml")
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
	}
	return "", nil, fmt.Errorf("no config file found")
}

// mergeFile applies non-zero file values onto cfg.
func mergeFile(cfg *Config, file *Config) {
	if file.StateFile != "" {
		cfg.StateFile = file.StateFile
	}
	if file.ClaudeMapFile != "" {
		cfg.ClaudeMapFile = file.ClaudeMapFile
	}
	if file.ClaudeCommand != "" {
		cfg.ClaudeCommand = file.ClaudeCommand
	}
	if file.TmuxBinary != "" {
		cfg.TmuxBinary = file.TmuxBinary
	}
	if file.Provider != "" {
		cfg.Provider = file.Provider
	}
	if file.Model != "" {
		cfg.Model = file.Model
	}
	if file.BaseURL != "" {
		cfg.BaseURL = file.BaseURL
	}
	if file.APIKey != "" {
		cfg.APIKey = file.APIKey
	}
	if file.MaxTokens > 0 {
		cfg.MaxTokens = file.MaxTokens
	}
	if file.OTELEndpoint != "" {
		cfg.OTELEndpoint = file.OTELEndpoint
	}
	if file.OTELHeaders != "" {
		cfg.OTELHeaders = file.OTELHeaders
	}
}

// mergeEnv applies environment variables onto cfg. Env always wins.
func mergeEnv(cfg *Config) {
	if v := os.Getenv("DOT_STATE_FILE"); v != "" {
		cfg.StateFile = v
	}
	if v := os.Getenv("DOT_CLAUDE_MAP_FILE"); v != "" {
		cfg.ClaudeMapFile = v
	}
	if v := os.Getenv("DOT_CLAUDE_COMMAND"); v != "" {
		cfg.ClaudeCommand = v
	}
	if v := os.Getenv("DOT_TMUX_BINARY"); v != "" {
		cfg.TmuxBinary = v
	}
	if v := os.Getenv("DOT_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("DOT_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("DOT_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("DOT_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTELEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); v != "" {
		cfg.OTELHeaders = v
	}

	// API key fallbacks
	if cfg.APIKey == "" {
		if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
			cfg.APIKey = v
		}
	}
	if cfg.APIKey == "" {
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			cfg.APIKey = v
		}
	}
}

// homePath joins name onto the user's home directory, falling back to the
// bare name when the home directory cannot be determined.
func homePath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, name)
}
