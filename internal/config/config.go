// Package config loads the muncher configuration file.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/rpg-muncher/internal/errors"
	"github.com/KirkDiggler/rpg-muncher/internal/pipeline/selection"
)

const (
	// DefaultConfigDir is the directory holding muncher configuration
	DefaultConfigDir = ".muncher"
	// DefaultConfigFile is the default config file name
	DefaultConfigFile = "config.yaml"
	// MaxConcurrentLimit caps import.max_concurrent
	MaxConcurrentLimit = 64
)

// Environment overrides
const (
	EnvAuthToken     = "MUNCHER_AUTH_TOKEN"
	EnvPatreonKey    = "MUNCHER_PATREON_KEY"
	EnvRedisEndpoint = "MUNCHER_REDIS_ENDPOINT"
)

// Storage backends
const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config is the full muncher configuration
type Config struct {
	Proxy   ProxyConfig   `yaml:"proxy"`
	SRD     SRDConfig     `yaml:"srd,omitempty"`
	Storage StorageConfig `yaml:"storage"`
	Import  ImportConfig  `yaml:"import,omitempty"`
}

// ProxyConfig holds the acquisition settings
type ProxyConfig struct {
	URL        string        `yaml:"url"`
	AuthToken  string        `yaml:"auth_token,omitempty"`
	ScopeID    string        `yaml:"scope_id,omitempty"`
	PatreonKey string        `yaml:"patreon_key,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`
	// DebugDir receives raw payload copies when set
	DebugDir string `yaml:"debug_dir,omitempty"`
}

// SRDConfig holds the reference api settings
type SRDConfig struct {
	Disabled bool          `yaml:"disabled,omitempty"`
	BaseURL  string        `yaml:"base_url,omitempty"`
	CacheTTL time.Duration `yaml:"cache_ttl,omitempty"`
}

// StorageConfig selects the compendium backend
type StorageConfig struct {
	Backend string      `yaml:"backend"`
	Redis   RedisConfig `yaml:"redis,omitempty"`
	SQLite  SQLiteDB    `yaml:"sqlite,omitempty"`
}

// RedisConfig holds the redis connection settings
type RedisConfig struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	Cluster  bool   `yaml:"cluster,omitempty"`
}

// SQLiteDB holds the sqlite database settings
type SQLiteDB struct {
	Path string `yaml:"path,omitempty"`
}

// ImportConfig holds the default run policy
type ImportConfig struct {
	UpdateExisting bool                     `yaml:"update_existing,omitempty"`
	Homebrew       selection.HomebrewPolicy `yaml:"homebrew,omitempty"`
	Sources        []int                    `yaml:"sources,omitempty"`
	Modules        []string                 `yaml:"modules,omitempty"`
	MaxConcurrent  int                      `yaml:"max_concurrent,omitempty"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Proxy: ProxyConfig{
			URL:     "http://localhost:3000",
			Timeout: 60 * time.Second,
		},
		SRD: SRDConfig{
			BaseURL:  "https://www.dnd5eapi.co/api/2014/",
			CacheTTL: 24 * time.Hour,
		},
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Redis:   RedisConfig{Endpoint: "localhost:6379"},
			SQLite:  SQLiteDB{Path: filepath.Join(DefaultConfigDir, "compendium.db")},
		},
		Import: ImportConfig{
			Homebrew:      selection.HomebrewInclude,
			MaxConcurrent: 8,
		},
	}
}

// FilePath returns the default config file location under basePath
func FilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// Load reads the file at path over the defaults and applies environment overrides.
// Returns errors.NotFound when the file does not exist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.NotFoundf("config file not found: %s", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WrapWithCodef(err, errors.CodeInvalidArgument, "failed to parse config file %s", path)
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides settings from the environment
func (c *Config) ApplyEnv() {
	if token := os.Getenv(EnvAuthToken); token != "" {
		c.Proxy.AuthToken = token
	}
	if key := os.Getenv(EnvPatreonKey); key != "" {
		c.Proxy.PatreonKey = key
	}
	if endpoint := os.Getenv(EnvRedisEndpoint); endpoint != "" {
		c.Storage.Redis.Endpoint = endpoint
	}
}

// Validate checks the settings a run needs
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	errors.ValidateRequired("proxy.url", c.Proxy.URL, vb)
	errors.ValidateEnum("storage.backend", c.Storage.Backend, []string{BackendRedis, BackendSQLite}, vb)

	switch c.Storage.Backend {
	case BackendRedis:
		errors.ValidateRequired("storage.redis.endpoint", c.Storage.Redis.Endpoint, vb)
	case BackendSQLite:
		errors.ValidateRequired("storage.sqlite.path", c.Storage.SQLite.Path, vb)
	}

	if err := c.Import.Homebrew.Validate(); err != nil {
		vb.InvalidField("import.homebrew", errors.GetMessage(err))
	}
	if c.Proxy.Timeout < 0 {
		vb.Fieldf("proxy.timeout", "cannot be negative, got %s", c.Proxy.Timeout)
	}
	errors.ValidateRange("import.max_concurrent", c.Import.MaxConcurrent, 0, MaxConcurrentLimit, vb)

	return vb.Build()
}

// Write saves the config to path, creating its directory
func (c *Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create config directory for %s", path)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrapf(err, "failed to write config file %s", path)
	}
	return nil
}
