//
// Copyright 2026 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package config

import (
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/juju/errors"
	"gopkg.in/yaml.v3"

	"go.bug.st/modelfetch"
)

// Config defines configuration for the modelfetch command.
type Config struct {
	Root           string
	UserAgent      string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	LogLevel       string
	Models         []Model
}

// Model is a file to make available in the store.
type Model struct {
	Category modelfetch.Category
	URL      string
	File     string
	MinSize  int64
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		UserAgent:      modelfetch.DefaultUserAgent,
		ConnectTimeout: modelfetch.DefaultConnectTimeout,
		ReadTimeout:    modelfetch.DefaultReadTimeout,
		LogLevel:       "modelfetch=INFO",
	}
}

// yamlConfig is used for YAML unmarshaling with string sizes and durations.
type yamlConfig struct {
	Root           string      `yaml:"root"`
	UserAgent      string      `yaml:"user_agent"`
	ConnectTimeout string      `yaml:"connect_timeout"`
	ReadTimeout    string      `yaml:"read_timeout"`
	LogLevel       string      `yaml:"log_level"`
	Models         []yamlModel `yaml:"models"`
}

type yamlModel struct {
	Category string `yaml:"category"`
	URL      string `yaml:"url"`
	File     string `yaml:"file"`
	MinSize  string `yaml:"min_size"`
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Annotate(err, "read config file")
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, errors.Annotate(err, "parse config file")
	}

	cfg := Default()
	if yc.Root != "" {
		cfg.Root = yc.Root
	}
	if yc.UserAgent != "" {
		cfg.UserAgent = yc.UserAgent
	}
	if yc.ConnectTimeout != "" {
		d, err := time.ParseDuration(yc.ConnectTimeout)
		if err != nil {
			return Config{}, errors.Annotate(err, "parse connect_timeout")
		}
		cfg.ConnectTimeout = d
	}
	if yc.ReadTimeout != "" {
		d, err := time.ParseDuration(yc.ReadTimeout)
		if err != nil {
			return Config{}, errors.Annotate(err, "parse read_timeout")
		}
		cfg.ReadTimeout = d
	}
	if yc.LogLevel != "" {
		cfg.LogLevel = yc.LogLevel
	}
	for i, ym := range yc.Models {
		m, err := ym.model()
		if err != nil {
			return Config{}, errors.Annotatef(err, "models[%d]", i)
		}
		cfg.Models = append(cfg.Models, m)
	}

	return cfg, nil
}

func (ym yamlModel) model() (Model, error) {
	category, err := modelfetch.ParseCategory(ym.Category)
	if err != nil {
		return Model{}, errors.Trace(err)
	}
	m := Model{Category: category, URL: ym.URL, File: ym.File}
	if ym.MinSize != "" {
		if m.MinSize, err = ParseSize(ym.MinSize); err != nil {
			return Model{}, errors.Annotate(err, "parse min_size")
		}
	}
	return m, nil
}

// ParseSize parses a human-readable size such as "100MiB" or "1.5GB".
func ParseSize(s string) (int64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, errors.Trace(err)
	}
	if n > 1<<62 {
		return 0, errors.NotValidf("size %q", s)
	}
	return int64(n), nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the MODELFETCH_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("MODELFETCH_ROOT"); v != "" {
		c.Root = v
	}
	if v := os.Getenv("MODELFETCH_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("MODELFETCH_CONNECT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Annotate(err, "parse MODELFETCH_CONNECT_TIMEOUT")
		}
		c.ConnectTimeout = d
	}
	if v := os.Getenv("MODELFETCH_READ_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Annotate(err, "parse MODELFETCH_READ_TIMEOUT")
		}
		c.ReadTimeout = d
	}
	if v := os.Getenv("MODELFETCH_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Root == "" {
		return errors.New("config: root is required")
	}
	if c.ConnectTimeout <= 0 {
		return errors.New("config: connect_timeout must be positive")
	}
	if c.ReadTimeout <= 0 {
		return errors.New("config: read_timeout must be positive")
	}
	for i, m := range c.Models {
		if m.URL == "" {
			return errors.Errorf("config: models[%d]: url is required", i)
		}
		if err := m.Request(nil).Validate(); err != nil {
			return errors.Annotatef(err, "config: models[%d]", i)
		}
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored; override models are appended.
func (c Config) Merge(override Config) Config {
	if override.Root != "" {
		c.Root = override.Root
	}
	if override.UserAgent != "" {
		c.UserAgent = override.UserAgent
	}
	if override.ConnectTimeout != 0 {
		c.ConnectTimeout = override.ConnectTimeout
	}
	if override.ReadTimeout != 0 {
		c.ReadTimeout = override.ReadTimeout
	}
	if override.LogLevel != "" {
		c.LogLevel = override.LogLevel
	}
	if len(override.Models) > 0 {
		c.Models = append(append([]Model(nil), c.Models...), override.Models...)
	}
	return c
}

// Transfer returns the download configuration.
func (c Config) Transfer() modelfetch.Config {
	return modelfetch.Config{
		UserAgent:      c.UserAgent,
		ConnectTimeout: c.ConnectTimeout,
		ReadTimeout:    c.ReadTimeout,
	}
}

// Request returns the store request for the model.
func (m Model) Request(progress modelfetch.ProgressFunc) modelfetch.Request {
	return modelfetch.Request{
		Category: m.Category,
		URL:      m.URL,
		FileName: m.File,
		MinSize:  m.MinSize,
		Progress: progress,
	}
}
