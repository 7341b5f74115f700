// ABOUTME: Configuration loading and parsing for grafana-mcp
// ABOUTME: Supports YAML or TOML files with environment variable expansion, env overrides, and duration parsing

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by Load and ResolvePath.
const (
	EnvConfigPath = "GRAFANA_MCP_CONFIG"
	EnvGrafanaURL = "GRAFANA_URL"
	EnvAPIKey     = "GRAFANA_API_KEY"
	EnvAuthToken  = "GRAFANA_MCP_AUTH_TOKEN"
)

// Transports accepted by server.transport. "sse" and "http" both select the
// HTTP server; SSE framing is negotiated per request.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
	TransportHTTP  = "http"
)

// Config represents the complete grafana-mcp configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Grafana  GrafanaConfig  `yaml:"grafana" toml:"grafana"`
	Tools    ToolsConfig    `yaml:"tools" toml:"tools"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
}

// ServerConfig selects the transport and, for HTTP, where to listen
type ServerConfig struct {
	Transport string `yaml:"transport" toml:"transport"`
	Host      string `yaml:"host" toml:"host"`
	Port      int    `yaml:"port" toml:"port"`
	AuthToken string `yaml:"auth_token" toml:"auth_token"` // empty disables bearer auth
}

// GrafanaConfig holds the upstream Grafana connection settings
type GrafanaConfig struct {
	URL      string        `yaml:"url" toml:"url"`
	APIKey   string        `yaml:"api_key" toml:"api_key"`
	Debug    bool          `yaml:"debug" toml:"debug"`
	Timeout  time.Duration `yaml:"-" toml:"-"`
	CacheTTL time.Duration `yaml:"-" toml:"-"`

	// Raw string values for unmarshaling
	TimeoutRaw  string `yaml:"timeout" toml:"timeout"`
	CacheTTLRaw string `yaml:"cache_ttl" toml:"cache_ttl"`
}

// ToolsConfig controls which tool categories are registered
type ToolsConfig struct {
	Disabled []string `yaml:"disabled" toml:"disabled"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// DatabaseConfig holds the tool-call journal location. An empty path
// disables the journal.
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Transport: TransportStdio,
			Host:      "localhost",
			Port:      8000,
		},
		Grafana: GrafanaConfig{
			URL:         "http://localhost:3000",
			Timeout:     30 * time.Second,
			TimeoutRaw:  "30s",
			CacheTTLRaw: "0s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are parsed as TOML, anything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded, then the
// GRAFANA_* overrides are applied. An empty path yields defaults plus overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		// Expand environment variables in the raw content
		expanded := expandEnvVars(string(data))

		if strings.EqualFold(filepath.Ext(path), ".toml") {
			if _, err := toml.Decode(expanded, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		} else if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// ResolvePath picks the config file: the flag value, then GRAFANA_MCP_CONFIG.
// An empty result means no file.
func ResolvePath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	return os.Getenv(EnvConfigPath)
}

// LoadDotEnv loads variables from a .env file if one exists. Variables
// already present in the environment are left untouched.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyEnvOverrides lets the environment win over the file for credentials
// and the upstream URL.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvGrafanaURL); v != "" {
		cfg.Grafana.URL = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.Grafana.APIKey = v
	}
	if v := os.Getenv(EnvAuthToken); v != "" {
		cfg.Server.AuthToken = v
	}
}

// Validate checks that all configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	switch c.Server.Transport {
	case TransportStdio, TransportSSE, TransportHTTP:
	default:
		return fmt.Errorf("server.transport must be one of stdio, sse, http (got %q)", c.Server.Transport)
	}

	if c.UsesHTTP() {
		if c.Server.Host == "" {
			return fmt.Errorf("server.host is required for the %s transport", c.Server.Transport)
		}
		if c.Server.Port < 1 || c.Server.Port > 65535 {
			return fmt.Errorf("server.port must be between 1 and 65535 (got %d)", c.Server.Port)
		}
	}

	if c.Grafana.URL == "" {
		return fmt.Errorf("grafana.url is required")
	}
	u, err := url.Parse(c.Grafana.URL)
	if err != nil {
		return fmt.Errorf("grafana.url is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("grafana.url must use http or https scheme")
	}
	if u.Host == "" {
		return fmt.Errorf("grafana.url must include a host")
	}

	if c.Grafana.Timeout <= 0 {
		return fmt.Errorf("grafana.timeout must be positive")
	}
	if c.Grafana.CacheTTL < 0 {
		return fmt.Errorf("grafana.cache_ttl must not be negative")
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.Logging.Level)) {
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
	if !slices.Contains([]string{"text", "json"}, strings.ToLower(c.Logging.Format)) {
		return fmt.Errorf("logging.format must be text or json (got %q)", c.Logging.Format)
	}

	return nil
}

// UsesHTTP reports whether the configured transport is the HTTP server.
func (c *Config) UsesHTTP() bool {
	return c.Server.Transport == TransportSSE || c.Server.Transport == TransportHTTP
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Grafana.TimeoutRaw != "" {
		cfg.Grafana.Timeout, err = time.ParseDuration(cfg.Grafana.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing grafana.timeout %q: %w", cfg.Grafana.TimeoutRaw, err)
		}
	}

	if cfg.Grafana.CacheTTLRaw != "" {
		cfg.Grafana.CacheTTL, err = time.ParseDuration(cfg.Grafana.CacheTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing grafana.cache_ttl %q: %w", cfg.Grafana.CacheTTLRaw, err)
		}
	}

	return nil
}
