package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Host    string `json:"host" yaml:"host" toml:"host"`
	Port    int    `json:"port" yaml:"port" toml:"port"`
	DataDir string `json:"data_dir" yaml:"data_dir" toml:"data_dir"`

	DictionaryDirs     []string `json:"dictionary_dirs" yaml:"dictionary_dirs" toml:"dictionary_dirs"`
	DictionaryPatterns []string `json:"dictionary_patterns" yaml:"dictionary_patterns" toml:"dictionary_patterns"`
	Watch              bool     `json:"watch" yaml:"watch" toml:"watch"`
	// WatchDebounce is a Go duration string, e.g. "500ms".
	WatchDebounce string `json:"watch_debounce" yaml:"watch_debounce" toml:"watch_debounce"`

	LookupLimit     int    `json:"lookup_limit" yaml:"lookup_limit" toml:"lookup_limit"`
	PreferredLimit  int    `json:"preferred_limit" yaml:"preferred_limit" toml:"preferred_limit"`
	PageSize        int    `json:"page_size" yaml:"page_size" toml:"page_size"`
	PreferredPolicy string `json:"preferred_policy" yaml:"preferred_policy" toml:"preferred_policy"`
	Workers         int    `json:"workers" yaml:"workers" toml:"workers"`
	HistorySize     int    `json:"history_size" yaml:"history_size" toml:"history_size"`

	UserStyle     string `json:"user_style" yaml:"user_style" toml:"user_style"`
	MaxAssetBytes int64  `json:"max_asset_bytes" yaml:"max_asset_bytes" toml:"max_asset_bytes"`
	MaxBodyBytes  int64  `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`

	LogLevel     string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat    string `json:"log_format" yaml:"log_format" toml:"log_format"`
	HTTPLogLevel string `json:"http_log_level" yaml:"http_log_level" toml:"http_log_level"`

	CORSEnabled bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	CORSMethods []string `json:"cors_methods" yaml:"cors_methods" toml:"cors_methods"`
	CORSHeaders []string `json:"cors_headers" yaml:"cors_headers" toml:"cors_headers"`
}

// Environment variables that override file values.
const (
	EnvHost    = "AARDD_HOST"
	EnvPort    = "AARDD_PORT"
	EnvDataDir = "AARDD_DATA_DIR"
)

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if _, err := cfg.Debounce(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides host, port and data dir from the environment.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvHost); ok && v != "" {
		c.Host = v
	}
	if v, ok := os.LookupEnv(EnvPort); ok && v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 0 || p > 65535 {
			return fmt.Errorf("%s: invalid port %q", EnvPort, v)
		}
		c.Port = p
	}
	if v, ok := os.LookupEnv(EnvDataDir); ok && v != "" {
		c.DataDir = v
	}
	return nil
}

// Debounce parses WatchDebounce; empty means zero.
func (c Config) Debounce() (time.Duration, error) {
	if c.WatchDebounce == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.WatchDebounce)
	if err != nil {
		return 0, fmt.Errorf("watch_debounce: %w", err)
	}
	return d, nil
}
