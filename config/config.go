package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the full client configuration.
type Config struct {
	API     APIConfig     `json:"api"`
	Cache   CacheConfig   `json:"cache"`
	Pricing PricingConfig `json:"pricing"`
	Metrics MetricsConfig `json:"metrics"`
	Notify  NotifyConfig  `json:"notify"`
	Watch   WatchConfig   `json:"watch"`
}

// Load reads the configuration file (yaml or json, chosen by extension) and
// applies PP_-prefixed environment overrides, "__" standing in for the key
// separator.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("PP_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "pp_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.API.SetDefaults()
	cfg.Cache.SetDefaults()
	cfg.Pricing.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Notify.SetDefaults()
	cfg.Watch.SetDefaults()
	if err := cfg.API.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Cache.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Pricing.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Notify.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a Config with all defaults applied, for use without a
// config file.
func Default() *Config {
	var cfg Config
	cfg.API.SetDefaults()
	cfg.Cache.SetDefaults()
	cfg.Pricing.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Notify.SetDefaults()
	cfg.Watch.SetDefaults()
	return &cfg
}
