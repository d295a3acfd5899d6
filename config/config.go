// Package config provides loading and parsing of graph-explorer.yaml
// configuration files.
//
// Every section is optional. Getter methods are nil-safe and return the
// documented default for anything unset or unparseable, so callers never
// check for zero values themselves.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ssheladiya/graph-explorer/query"
)

// FileNames are the configuration file names looked up in a directory, in order.
var FileNames = []string{"graph-explorer.yaml", "graph-explorer.yml"}

// ErrNotFound is returned when no configuration file can be located.
var ErrNotFound = errors.New("configuration file not found")

// Config represents a graph-explorer.yaml configuration file.
type Config struct {
	// Dialect is the default query dialect: gremlin, openCypher or sparql.
	Dialect string `yaml:"dialect,omitempty"`

	Logging  *LoggingConfig  `yaml:"logging,omitempty"`
	Cache    *CacheConfig    `yaml:"cache,omitempty"`
	Server   *ServerConfig   `yaml:"server,omitempty"`
	Registry *RegistryConfig `yaml:"registry,omitempty"`
	Metrics  *MetricsConfig  `yaml:"metrics,omitempty"`
}

// GetDialect parses the configured dialect. An empty value selects Gremlin.
func (c *Config) GetDialect() (query.Dialect, error) {
	if c == nil || c.Dialect == "" {
		return query.Gremlin, nil
	}
	return query.ParseDialect(c.Dialect)
}

// Validate reports configuration errors that getters cannot default away.
func (c *Config) Validate() error {
	if _, err := c.GetDialect(); err != nil {
		return fmt.Errorf("dialect: %w", err)
	}
	if c == nil {
		return nil
	}
	if c.Server != nil {
		hasCert := c.Server.TLSCertFile != ""
		hasKey := c.Server.TLSKeyFile != ""
		if hasCert != hasKey {
			return errors.New("server: tls_cert_file and tls_key_file must be set together")
		}
	}
	if _, err := c.Logging.GetLevel(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// CacheConfig configures the Redis response cache.
type CacheConfig struct {
	// Enabled turns response caching on. Default: false
	Enabled bool `yaml:"enabled,omitempty"`

	// URL is the Redis connection string.
	// Default: redis://localhost:6379
	URL string `yaml:"url,omitempty"`

	// Prefix namespaces cache keys.
	// Default: graph-explorer
	Prefix string `yaml:"prefix,omitempty"`

	// TTL is how long responses stay cached.
	// Format: Go duration string (e.g., "5m")
	// Default: 5m
	TTL string `yaml:"ttl,omitempty"`
}

// IsEnabled reports whether caching is configured and enabled.
func (c *CacheConfig) IsEnabled() bool {
	return c != nil && c.Enabled
}

// GetURL returns the Redis URL or the default value.
func (c *CacheConfig) GetURL() string {
	if c == nil || c.URL == "" {
		return "redis://localhost:6379"
	}
	return c.URL
}

// GetPrefix returns the key prefix or the default value.
func (c *CacheConfig) GetPrefix() string {
	if c == nil || c.Prefix == "" {
		return "graph-explorer"
	}
	return c.Prefix
}

// GetTTL parses the TTL string and returns a duration.
// Returns the default value if not set or invalid.
func (c *CacheConfig) GetTTL() time.Duration {
	return parseDuration(c.ttl(), 5*time.Minute)
}

func (c *CacheConfig) ttl() string {
	if c == nil {
		return ""
	}
	return c.TTL
}

// ServerConfig configures the gRPC compiler server.
type ServerConfig struct {
	// Port is the listen port. Default: 50051
	Port int `yaml:"port,omitempty"`

	// GracefulTimeout bounds graceful shutdown.
	// Format: Go duration string (e.g., "30s")
	// Default: 30s
	GracefulTimeout string `yaml:"graceful_timeout,omitempty"`

	// TLSCertFile and TLSKeyFile enable TLS when both are set.
	TLSCertFile string `yaml:"tls_cert_file,omitempty"`
	TLSKeyFile  string `yaml:"tls_key_file,omitempty"`
}

// GetPort returns the configured port or the default value.
func (s *ServerConfig) GetPort() int {
	if s == nil || s.Port <= 0 {
		return 50051
	}
	return s.Port
}

// GetGracefulTimeout parses the graceful timeout string and returns a duration.
// Returns the default value if not set or invalid.
func (s *ServerConfig) GetGracefulTimeout() time.Duration {
	if s == nil {
		return 30 * time.Second
	}
	return parseDuration(s.GracefulTimeout, 30*time.Second)
}

// RegistryConfig configures etcd registration.
type RegistryConfig struct {
	// Endpoints are the etcd endpoints. Empty disables registration.
	Endpoints []string `yaml:"endpoints,omitempty"`

	// Namespace is the etcd key prefix. Default: graph-explorer
	Namespace string `yaml:"namespace,omitempty"`

	// TTL is the registration lease in seconds. Default: 30
	TTL int64 `yaml:"ttl,omitempty"`
}

// IsEnabled reports whether any registry endpoint is configured.
func (r *RegistryConfig) IsEnabled() bool {
	return r != nil && len(r.Endpoints) > 0
}

// GetNamespace returns the namespace or the default value.
func (r *RegistryConfig) GetNamespace() string {
	if r == nil || r.Namespace == "" {
		return "graph-explorer"
	}
	return r.Namespace
}

// GetTTL returns the lease TTL in seconds or the default value.
func (r *RegistryConfig) GetTTL() int64 {
	if r == nil || r.TTL <= 0 {
		return 30
	}
	return r.TTL
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Enabled turns the /metrics endpoint on. Default: false
	Enabled bool `yaml:"enabled,omitempty"`

	// PrometheusPort is the HTTP port serving /metrics. Default: 2223
	PrometheusPort int `yaml:"prometheus_port,omitempty"`
}

// IsEnabled reports whether the metrics endpoint is enabled.
func (m *MetricsConfig) IsEnabled() bool {
	return m != nil && m.Enabled
}

// GetPrometheusPort returns the Prometheus port or the default value.
func (m *MetricsConfig) GetPrometheusPort() int {
	if m == nil || m.PrometheusPort <= 0 {
		return 2223
	}
	return m.PrometheusPort
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// Parse parses configuration YAML.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &config, nil
}

// Load reads and parses a graph-explorer.yaml file from the given path.
// If the path is a directory, it looks for graph-explorer.yaml or
// graph-explorer.yml in that directory.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	configPath := path
	if info.IsDir() {
		configPath = ""
		for _, name := range FileNames {
			candidate := filepath.Join(path, name)
			if _, err := os.Stat(candidate); err == nil {
				configPath = candidate
				break
			}
		}
		if configPath == "" {
			return nil, fmt.Errorf("%w: no %s in %s", ErrNotFound, strings.Join(FileNames, " or "), path)
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// LoadFromDir searches for graph-explorer.yaml starting from the given
// directory and walking up to parent directories until found or root is
// reached.
func LoadFromDir(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	for {
		config, err := Load(absDir)
		if err == nil {
			return config, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}

		parent := filepath.Dir(absDir)
		if parent == absDir {
			return nil, fmt.Errorf("%w in %s or parent directories", ErrNotFound, dir)
		}
		absDir = parent
	}
}
