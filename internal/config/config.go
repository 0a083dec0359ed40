// Package config loads the serve configuration file. Flags always win over
// file values; the file only provides the baseline.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Redis configures the optional Redis channel. When Address is empty the
// bridge runs over the file channel.
type Redis struct {
	Address  string `yaml:"address" json:"address"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`
}

// Config represents the structure of lathe.yaml.
type Config struct {
	Dir        string `yaml:"dir" json:"dir"`
	Interval   string `yaml:"interval" json:"interval"`
	HTTP       string `yaml:"http" json:"http"`
	LogLevel   string `yaml:"log_level" json:"log_level"`
	DesignName string `yaml:"design_name" json:"design_name"`
	Redis      Redis  `yaml:"redis" json:"redis"`

	interval time.Duration
}

// Load reads a configuration file (YAML or JSON). A missing file at the
// default path is treated as "no config"; an explicitly requested file must
// exist (handled by the caller via explicit).
func Load(path string, explicit bool) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg.withDefaults(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	return cfg.withDefaults(), nil
}

func (c *Config) withDefaults() *Config {
	if c.Interval == "" {
		c.Interval = "1s"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.DesignName == "" {
		c.DesignName = "Untitled"
	}
	return c
}

// Validate checks the fields that need parsing and caches the results.
func (c *Config) Validate() error {
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return fmt.Errorf("invalid interval %q: %w", c.Interval, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid interval %q: must be positive", c.Interval)
	}
	c.interval = d
	return nil
}

// PollInterval returns the parsed interval. Validate must run first.
func (c *Config) PollInterval() time.Duration {
	return c.interval
}
