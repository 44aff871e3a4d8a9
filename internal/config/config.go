// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"github.com/0xsj/sql-analyzer/internal/model"
)

const (
	defaultConcurrency  = 4
	defaultQueryTimeout = 5 * time.Second
)

// ErrUnknownFormat is returned for an output format with no report writer.
var ErrUnknownFormat = errors.New("unknown output format")

var knownFormats = map[string]bool{"json": true, "csv": true, "xlsx": true}

// Config holds the analyzer settings. Values come from a YAML file and are
// overridden by SQLA_* environment variables, then by CLI flags.
type Config struct {
	QueriesFile  string        `yaml:"queries_file" env:"SQLA_QUERIES_FILE" env-default:"queries.sql"`
	MetadataFile string        `yaml:"metadata_file" env:"SQLA_METADATA_FILE"`
	OutputDir    string        `yaml:"output_dir" env:"SQLA_OUTPUT_DIR" env-default:"./analysis-results"`
	Label        string        `yaml:"label" env:"SQLA_LABEL" env-default:"baseline"`
	Formats      []string      `yaml:"formats" env:"SQLA_FORMATS" env-default:"json,csv"`
	Concurrency  int           `yaml:"concurrency" env:"SQLA_CONCURRENCY" env-default:"4"`
	QueryTimeout time.Duration `yaml:"query_timeout" env:"SQLA_QUERY_TIMEOUT" env-default:"5s"`
	LogLevel     string        `yaml:"log_level" env:"SQLA_LOG_LEVEL" env-default:"info"`
	Development  bool          `yaml:"development" env:"SQLA_DEVELOPMENT"`

	Analysis model.AnalysisOptions `yaml:"analysis"`

	// Catalog is the optional live database used for metadata discovery.
	Catalog CatalogConfig `yaml:"catalog"`

	// Created is set when Load wrote a default file.
	Created bool `yaml:"-"`
}

// CatalogConfig selects the database whose information schema supplies
// table metadata.
type CatalogConfig struct {
	Driver string `yaml:"driver" env:"SQLA_CATALOG_DRIVER"`
	DSN    string `yaml:"dsn" env:"SQLA_CATALOG_DSN"`
	Schema string `yaml:"schema" env:"SQLA_CATALOG_SCHEMA"`
}

// Enabled reports whether catalog discovery is configured.
func (c CatalogConfig) Enabled() bool {
	return c.Driver != "" && c.DSN != ""
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		QueriesFile:  "queries.sql",
		OutputDir:    "./analysis-results",
		Label:        "baseline",
		Formats:      []string{"json", "csv"},
		Concurrency:  defaultConcurrency,
		QueryTimeout: defaultQueryTimeout,
		LogLevel:     "info",
		Analysis:     model.DefaultAnalysisOptions(),
	}
}

// Load reads the config file at path with environment overrides. A missing
// file is created with the defaults. An empty path reads the environment only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("error reading environment: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeDefault(path, cfg); err != nil {
			return nil, err
		}
		cfg.Created = true
	}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func writeDefault(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("couldn't create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error creating default config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing default config: %w", err)
	}
	return nil
}

// Validate fills in unusable numeric settings and normalizes the formats.
func (c *Config) Validate() error {
	if c.Concurrency <= 0 {
		c.Concurrency = defaultConcurrency
	}
	if c.QueryTimeout <= 0 {
		c.QueryTimeout = defaultQueryTimeout
	}

	formats := make([]string, 0, len(c.Formats))
	seen := make(map[string]bool)
	for _, f := range c.Formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		if !knownFormats[f] {
			return fmt.Errorf("%w: %s", ErrUnknownFormat, f)
		}
		seen[f] = true
		formats = append(formats, f)
	}
	c.Formats = formats

	return nil
}

// HasFormat reports whether the given report format is enabled.
func (c *Config) HasFormat(format string) bool {
	for _, f := range c.Formats {
		if f == format {
			return true
		}
	}
	return false
}
