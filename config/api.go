package config

import (
	"fmt"
	"net/url"
	"time"
)

// APIConfig points the client at the REST backend.
type APIConfig struct {
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// SetDefaults applies fallback values for optional fields.
func (c *APIConfig) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:3000"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}

// Validate checks mandatory fields.
func (c APIConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base_url %q", c.BaseURL)
	}
	return nil
}

// Timeout returns the request timeout as a duration.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheConfig sets the per-key staleness windows.
type CacheConfig struct {
	StationsStaleSeconds  int `json:"stations_stale_seconds"`
	SpotPriceStaleSeconds int `json:"spot_price_stale_seconds"`
	SessionsStaleSeconds  int `json:"sessions_stale_seconds"`
}

// SetDefaults applies the stock staleness windows: one minute for stations
// and sessions, five for the spot price.
func (c *CacheConfig) SetDefaults() {
	if c.StationsStaleSeconds <= 0 {
		c.StationsStaleSeconds = 60
	}
	if c.SpotPriceStaleSeconds <= 0 {
		c.SpotPriceStaleSeconds = 300
	}
	if c.SessionsStaleSeconds <= 0 {
		c.SessionsStaleSeconds = 60
	}
}

// Validate checks the configured windows.
func (c CacheConfig) Validate() error {
	if c.StationsStaleSeconds <= 0 || c.SpotPriceStaleSeconds <= 0 || c.SessionsStaleSeconds <= 0 {
		return fmt.Errorf("stale seconds must be positive")
	}
	return nil
}

// StationsStale returns the stations staleness window.
func (c CacheConfig) StationsStale() time.Duration {
	return time.Duration(c.StationsStaleSeconds) * time.Second
}

// SpotPriceStale returns the spot price staleness window.
func (c CacheConfig) SpotPriceStale() time.Duration {
	return time.Duration(c.SpotPriceStaleSeconds) * time.Second
}

// SessionsStale returns the sessions staleness window.
func (c CacheConfig) SessionsStale() time.Duration {
	return time.Duration(c.SessionsStaleSeconds) * time.Second
}
