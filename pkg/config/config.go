// Package config provides configuration loading and validation for the
// version check API server.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Defaults applied when neither the config file nor the environment provide
// a value.
const (
	DefaultAddress             = ":8080"
	DefaultBranch              = "main"
	DefaultManifestPath        = "pubspec.yaml"
	DefaultCacheTTLSeconds     = 60
	DefaultFetchTimeoutSeconds = 10
)

// Config represents the root configuration structure. It is loaded once at
// startup and treated as immutable afterwards.
type Config struct {
	// Address is the listen address for the HTTP server
	Address string `mapstructure:"address"`

	// GitHub configures the upstream manifest source
	GitHub GitHubConfig `mapstructure:"github"`

	// CacheTTLSeconds is how long a fetched version stays fresh.
	// Zero or negative means every request refreshes.
	CacheTTLSeconds int `mapstructure:"cacheTTLSeconds"`

	// FetchTimeoutSeconds bounds a single upstream fetch
	FetchTimeoutSeconds int `mapstructure:"fetchTimeoutSeconds"`
}

// GitHubConfig defines the GitHub Contents API source settings
type GitHubConfig struct {
	// Owner is the repository owner (user or organization)
	Owner string `mapstructure:"owner"`

	// Repo is the repository name
	Repo string `mapstructure:"repo"`

	// Branch is the git ref to read the manifest from
	Branch string `mapstructure:"branch"`

	// ManifestPath is the path of the manifest file within the repository
	ManifestPath string `mapstructure:"manifestPath"`

	// Token is the bearer credential for the API. May be empty, in which
	// case requests run as rate-limited anonymous access.
	Token string `mapstructure:"token"`
}

// Load reads configuration from an optional YAML file and the environment.
// Environment variables override file values. An empty path loads from the
// environment alone.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("address", DefaultAddress)
	v.SetDefault("github.branch", DefaultBranch)
	v.SetDefault("github.manifestPath", DefaultManifestPath)
	v.SetDefault("cacheTTLSeconds", DefaultCacheTTLSeconds)
	v.SetDefault("fetchTimeoutSeconds", DefaultFetchTimeoutSeconds)

	// Environment variable names follow the original deployment contract.
	bindings := map[string]string{
		"address":             "ADDRESS",
		"github.owner":        "GITHUB_OWNER",
		"github.repo":         "GITHUB_REPO",
		"github.branch":       "GITHUB_BRANCH",
		"github.manifestPath": "GITHUB_MANIFEST_PATH",
		"github.token":        "GITHUB_TOKEN",
		"cacheTTLSeconds":     "CACHE_TTL_SECONDS",
		"fetchTimeoutSeconds": "FETCH_TIMEOUT_SECONDS",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration is complete enough to serve requests.
func (c *Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("address cannot be empty")
	}
	if c.GitHub.Owner == "" {
		return fmt.Errorf("github owner is required (GITHUB_OWNER)")
	}
	if c.GitHub.Repo == "" {
		return fmt.Errorf("github repo is required (GITHUB_REPO)")
	}
	if c.GitHub.Branch == "" {
		return fmt.Errorf("github branch cannot be empty")
	}
	if c.GitHub.ManifestPath == "" {
		return fmt.Errorf("github manifest path cannot be empty")
	}
	if c.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %d", c.FetchTimeoutSeconds)
	}
	return nil
}

// CacheTTL returns the cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// FetchTimeout returns the upstream fetch timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}
