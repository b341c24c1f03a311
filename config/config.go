// Package config loads the process configuration from an optional YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// Default values for the service configuration.
const (
	DefaultListen          = ":9090"
	DefaultLocalPath       = "assets/people.json"
	DefaultRemoteURL       = "https://raw.githubusercontent.com/cncf/people/refs/heads/main/people.json"
	DefaultRefreshInterval = 10 * time.Minute
	DefaultFetchTimeout    = 5 * time.Second
	DefaultLogLevel        = "info"
)

// Config holds all settings for the people API process. The core components
// consume these values; they never read configuration themselves.
type Config struct {
	// Listen is the address the HTTP server binds to (default ":9090").
	Listen string `yaml:"listen"`

	// LocalPath is the path of the local people document read once at
	// startup. A missing file falls back to the embedded sample.
	LocalPath string `yaml:"local_path"`

	// RemoteURL is the remote people document refreshed in the background.
	RemoteURL string `yaml:"remote_url"`

	// RefreshInterval is the fixed delay between remote refresh cycles.
	RefreshInterval time.Duration `yaml:"refresh_interval"`

	// FetchTimeout bounds each remote fetch.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// LogLevel is the go-log level applied to all loggers.
	LogLevel string `yaml:"log_level"`
}

// Load reads the config file at path, fills missing fields with defaults,
// applies environment overrides and validates the result. An empty path
// skips the file and uses defaults plus environment only.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Listen:          DefaultListen,
		LocalPath:       DefaultLocalPath,
		RemoteURL:       DefaultRemoteURL,
		RefreshInterval: DefaultRefreshInterval,
		FetchTimeout:    DefaultFetchTimeout,
		LogLevel:        DefaultLogLevel,
	}
}

// applyEnv overrides fields from the environment. PORT carries only the port
// number, matching the container convention.
func (c *Config) applyEnv() error {
	if port := os.Getenv("PORT"); port != "" {
		c.Listen = ":" + port
	}
	if p := os.Getenv("LOCAL_PATH"); p != "" {
		c.LocalPath = p
	}
	if u := os.Getenv("REMOTE_URL"); u != "" {
		c.RemoteURL = u
	}
	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("REFRESH_INTERVAL: %w", err)
		}
		c.RefreshInterval = d
	}
	if v := os.Getenv("FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FETCH_TIMEOUT: %w", err)
		}
		c.FetchTimeout = d
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		c.LogLevel = lvl
	}
	return nil
}

// Validate checks structural constraints, accumulating all failures.
func (c *Config) Validate() error {
	var errs *multierror.Error

	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("listen address %q: %w", c.Listen, err))
	}
	if c.RemoteURL == "" {
		errs = multierror.Append(errs, fmt.Errorf("remote_url must not be empty"))
	} else if u, err := url.Parse(c.RemoteURL); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("remote_url: %w", err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = multierror.Append(errs, fmt.Errorf("remote_url %q: scheme must be http or https", c.RemoteURL))
	}
	if c.RefreshInterval <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("refresh_interval must be positive"))
	}
	if c.FetchTimeout <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("fetch_timeout must be positive"))
	}

	return errs.ErrorOrNil()
}
