package config

import (
	"fmt"
	"time"
)

// PricingConfig drives the mock spot price generator.
type PricingConfig struct {
	// BaseRate is the average per-kWh rate the random factor scales.
	BaseRate float64 `json:"base_rate"`
	// MinFactor and MaxFactor bound the uniform random factor.
	MinFactor float64 `json:"min_factor"`
	MaxFactor float64 `json:"max_factor"`
	// DelayMS simulates feed latency before each sample.
	DelayMS int `json:"delay_ms"`
	// Seed fixes the random sequence; zero seeds from the clock.
	Seed int64 `json:"seed"`
}

// SetDefaults applies the stock mock feed parameters.
func (c *PricingConfig) SetDefaults() {
	if c.BaseRate == 0 {
		c.BaseRate = 0.45
	}
	if c.MinFactor == 0 {
		c.MinFactor = 0.25
	}
	if c.MaxFactor == 0 {
		c.MaxFactor = 0.65
	}
	if c.DelayMS < 0 {
		c.DelayMS = 0
	} else if c.DelayMS == 0 {
		c.DelayMS = 500
	}
}

// Validate checks the configured ranges.
func (c PricingConfig) Validate() error {
	if c.BaseRate <= 0 {
		return fmt.Errorf("base_rate must be positive")
	}
	if c.MinFactor <= 0 || c.MaxFactor <= 0 {
		return fmt.Errorf("factors must be positive")
	}
	if c.MinFactor > c.MaxFactor {
		return fmt.Errorf("min_factor > max_factor")
	}
	return nil
}

// Delay returns the simulated feed latency.
func (c PricingConfig) Delay() time.Duration {
	return time.Duration(c.DelayMS) * time.Millisecond
}
