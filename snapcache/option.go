package snapcache

import (
	"fmt"
	"net/http"
	"time"
)

const (
	defaultRefreshIn    = 10 * time.Minute
	defaultFetchTimeout = 5 * time.Second
	defaultRetryMax     = 2
)

type config struct {
	httpClient   *http.Client
	refreshIn    time.Duration
	fetchTimeout time.Duration
	retryMax     int
}

// Option is a function that sets a value in a config.
type Option func(*config) error

// getOpts creates a config and applies Options to it.
func getOpts(opts []Option) (config, error) {
	cfg := config{
		refreshIn:    defaultRefreshIn,
		fetchTimeout: defaultFetchTimeout,
		retryMax:     defaultRetryMax,
	}
	for i, opt := range opts {
		if err := opt(&cfg); err != nil {
			return config{}, fmt.Errorf("option %d failed: %s", i, err)
		}
	}
	return cfg, nil
}

// WithClient sets the HTTP client used for remote fetches. When no client
// is given, one that retries transient failures is used.
func WithClient(c *http.Client) Option {
	return func(cfg *config) error {
		if c != nil {
			cfg.httpClient = c
		}
		return nil
	}
}

// WithRetryMax sets how many times the default HTTP client retries a failed
// fetch. It has no effect when WithClient supplies a client.
//
// Default is 2.
func WithRetryMax(retryMax int) Option {
	return func(cfg *config) error {
		if retryMax < 0 {
			return fmt.Errorf("retry max must not be negative")
		}
		cfg.retryMax = retryMax
		return nil
	}
}

// WithRefreshInterval sets the interval to wait between refresh cycles.
//
// Default is 10 minutes.
func WithRefreshInterval(interval time.Duration) Option {
	return func(cfg *config) error {
		if interval <= 0 {
			return fmt.Errorf("refresh interval must be positive")
		}
		cfg.refreshIn = interval
		return nil
	}
}

// WithFetchTimeout bounds each fetch against the remote source. Exceeding
// the timeout is treated as a transport failure.
//
// Default is 5 seconds.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(cfg *config) error {
		if timeout <= 0 {
			return fmt.Errorf("fetch timeout must be positive")
		}
		cfg.fetchTimeout = timeout
		return nil
	}
}
