package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `api:
  base_url: "http://stations.local:3000"
  timeout_seconds: 5
cache:
  stations_stale_seconds: 120
  spot_price_stale_seconds: 300
  sessions_stale_seconds: 30
pricing:
  base_rate: 0.50
  seed: 42
notify:
  enabled: true
  broker: "tcp://localhost:1883"
  topic_prefix: "garage"
watch:
  interval_seconds: 15
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"api.base_url", cfg.API.BaseURL, "http://stations.local:3000"},
		{"api.timeout", cfg.API.Timeout(), 5 * time.Second},
		{"cache.stations", cfg.Cache.StationsStale(), 2 * time.Minute},
		{"cache.sessions", cfg.Cache.SessionsStale(), 30 * time.Second},
		{"pricing.base_rate", cfg.Pricing.BaseRate, 0.50},
		{"pricing.seed", cfg.Pricing.Seed, int64(42)},
		{"pricing.min_factor default", cfg.Pricing.MinFactor, 0.25},
		{"pricing.max_factor default", cfg.Pricing.MaxFactor, 0.65},
		{"pricing.delay default", cfg.Pricing.Delay(), 500 * time.Millisecond},
		{"notify.enabled", cfg.Notify.Enabled, true},
		{"notify.prefix", cfg.Notify.TopicPrefix, "garage"},
		{"notify.qos default", cfg.Notify.QoS, byte(1)},
		{"watch.interval", cfg.Watch.Interval(), 15 * time.Second},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: got %v want %v", c.name, c.got, c.want)
		}
	}
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	if _, err := Load("config.toml"); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestLoadRejectsBadBaseURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("api:\n  base_url: \"::notaurl\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected base_url validation error")
	}
}

func TestLoadRejectsBadFactors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "pricing:\n  min_factor: 0.8\n  max_factor: 0.4\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected factor validation error")
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.API.Validate(); err != nil {
		t.Errorf("api defaults: %v", err)
	}
	if err := cfg.Cache.Validate(); err != nil {
		t.Errorf("cache defaults: %v", err)
	}
	if err := cfg.Pricing.Validate(); err != nil {
		t.Errorf("pricing defaults: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:3000" {
		t.Errorf("default base_url %q", cfg.API.BaseURL)
	}
}
