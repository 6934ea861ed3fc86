package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/alprsearch/internal/domain/edm"
)

// Config holds the alprsearch API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Search   SearchConfig   `yaml:"search"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Recent   RecentConfig   `yaml:"recent"`
	Hotlist  HotlistConfig  `yaml:"hotlist"`
	Audit    AuditConfig    `yaml:"audit"`
	Quality  QualityConfig  `yaml:"quality"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis/Valkey connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SearchConfig holds the entity sets vehicle searches run against.
type SearchConfig struct {
	EntitySetID        string                `yaml:"entity_set_id"`
	Agencies           []edm.AgencyEntitySet `yaml:"agencies"`
	PageSize           int                   `yaml:"page_size"`
	PropertyTypeTTLSec int                   `yaml:"property_type_ttl_sec"`
}

// UpstreamConfig holds the remote search API client settings.
type UpstreamConfig struct {
	BaseURL    string  `yaml:"base_url"`
	Token      string  `yaml:"token"`
	TimeoutSec int     `yaml:"timeout_sec"`
	RateLimit  float64 `yaml:"rate_limit"` // requests per second
	RateBurst  int     `yaml:"rate_burst"`
}

// RecentConfig holds recent-plates settings.
type RecentConfig struct {
	Size int `yaml:"size"`
}

// HotlistConfig holds hotlist settings.
type HotlistConfig struct {
	EntitySetID string `yaml:"entity_set_id"` // empty disables remote loading
	TTLSec      int    `yaml:"ttl_sec"`
}

// AuditConfig holds search audit log settings.
type AuditConfig struct {
	IndexSize     int `yaml:"index_size"`
	RetentionDays int `yaml:"retention_days"` // 0 = keep forever
}

// QualityConfig holds data-quality dashboard settings.
type QualityConfig struct {
	RecordsEntitySetID  string `yaml:"records_entity_set_id"` // default: search.entity_set_id
	AgenciesEntitySetID string `yaml:"agencies_entity_set_id"`
	Concurrency         int    `yaml:"concurrency"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 35
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Search.PageSize <= 0 {
		c.Search.PageSize = 25
	}
	if c.Search.PropertyTypeTTLSec <= 0 {
		c.Search.PropertyTypeTTLSec = 900
	}
	if c.Upstream.TimeoutSec <= 0 {
		c.Upstream.TimeoutSec = 30
	}
	if c.Upstream.RateLimit <= 0 {
		c.Upstream.RateLimit = 10
	}
	if c.Upstream.RateBurst <= 0 {
		c.Upstream.RateBurst = 5
	}
	if c.Recent.Size <= 0 {
		c.Recent.Size = 10
	}
	if c.Hotlist.TTLSec <= 0 {
		c.Hotlist.TTLSec = 900
	}
	if c.Audit.IndexSize <= 0 {
		c.Audit.IndexSize = 10000
	}
	if c.Quality.RecordsEntitySetID == "" {
		c.Quality.RecordsEntitySetID = c.Search.EntitySetID
	}
	if c.Quality.Concurrency <= 0 {
		c.Quality.Concurrency = 5
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Search.EntitySetID == "" {
		return fmt.Errorf("search.entity_set_id is required")
	}
	seen := make(map[string]bool, len(c.Search.Agencies))
	for i, a := range c.Search.Agencies {
		if a.ID == "" || a.Name == "" {
			return fmt.Errorf("search.agencies[%d] needs both id and name", i)
		}
		if seen[a.ID] {
			return fmt.Errorf("search.agencies[%d]: duplicate id %q", i, a.ID)
		}
		seen[a.ID] = true
	}
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.base_url is required")
	}
	u, err := url.Parse(c.Upstream.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("upstream.base_url must be an absolute http(s) URL, got %q", c.Upstream.BaseURL)
	}
	if c.Audit.RetentionDays < 0 {
		return fmt.Errorf("audit.retention_days must not be negative, got %d", c.Audit.RetentionDays)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
