package config

import (
	"fmt"
	"time"
)

// NotifyConfig configures the optional MQTT event publisher.
type NotifyConfig struct {
	Enabled     bool   `json:"enabled"`
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topic_prefix"`
	QoS         byte   `json:"qos"`
	UseTLS      bool   `json:"use_tls"`
}

// SetDefaults applies fallback values for optional fields.
func (c *NotifyConfig) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "plugpoint"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "plugpoint"
	}
	if c.QoS == 0 {
		c.QoS = 1
	}
}

// Validate checks mandatory fields when the notifier is enabled.
func (c NotifyConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("notify broker is required")
	}
	if c.QoS > 2 {
		return fmt.Errorf("qos must be 0, 1 or 2")
	}
	return nil
}

// WatchConfig controls the background refresh loop of watch mode.
type WatchConfig struct {
	IntervalSeconds int `json:"interval_seconds"`
}

// SetDefaults applies the stock refresh interval.
func (c *WatchConfig) SetDefaults() {
	if c.IntervalSeconds <= 0 {
		c.IntervalSeconds = 60
	}
}

// Interval returns the refresh interval as a duration.
func (c WatchConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}
