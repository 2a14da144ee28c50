// Package config loads the server configuration file (espalier.yaml).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds settings for the serve command. Flags override file values.
type Config struct {
	// Listen is the HTTP listen address, e.g. ":8080".
	Listen string `yaml:"listen"`

	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig configures the optional Redis draft store. An empty Addr keeps
// drafts in memory.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Listen: ":8080",
	}
}

// Load reads a YAML config file on top of the defaults. A missing file is
// not an error; serve works out of the box.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
