// Package config loads pdftables settings: defaults, then a YAML file, then
// .env files and PDFTABLES_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/pyhub-apps/pdftables-golang/pkg/layout"
	"github.com/pyhub-apps/pdftables-golang/pkg/logging"
	"github.com/pyhub-apps/pdftables-golang/pkg/policy"
	"github.com/pyhub-apps/pdftables-golang/pkg/render"
	"github.com/pyhub-apps/pdftables-golang/pkg/table"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "PDFTABLES_"

// TableConfig overrides reconstructor options. Zero values keep the
// policy's or the default setting.
type TableConfig struct {
	MaxLineWidth     float64 `yaml:"max_line_width"`
	HeaderRuleLength float64 `yaml:"header_rule_length"`
	RuleTolerance    float64 `yaml:"rule_tolerance"`
	SeparatorWidth   float64 `yaml:"separator_width"`
	CellTolerance    float64 `yaml:"cell_tolerance"`
}

// Config holds all settings
type Config struct {
	Policy    string `yaml:"policy"`
	Format    string `yaml:"format"`
	LogLevel  string `yaml:"log_level"`
	LogColor  string `yaml:"log_color"`
	LogJSON   bool   `yaml:"log_json"`
	Backend   string `yaml:"backend"`
	Password  string `yaml:"password"`
	Workers   int    `yaml:"workers"`
	ReadAhead int    `yaml:"read_ahead"`

	Table    TableConfig         `yaml:"table"`
	Policies []policy.Definition `yaml:"policies"`
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		Policy:    "caption",
		Format:    "text",
		LogLevel:  "error",
		LogColor:  logging.ColorAuto,
		Backend:   string(layout.BackendAuto),
		Workers:   1,
		ReadAhead: 4,
	}
}

// Load builds the configuration. path may be empty to skip the YAML file.
// envFiles are loaded into the environment without overriding variables
// that are already set; with none given, ./.env is used when present.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.UnmarshalStrict(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if len(envFiles) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			envFiles = []string{".env"}
		}
	}
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Policy = getEnvOrDefault("POLICY", c.Policy)
	c.Format = getEnvOrDefault("FORMAT", c.Format)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	c.LogColor = getEnvOrDefault("LOG_COLOR", c.LogColor)
	c.Backend = getEnvOrDefault("BACKEND", c.Backend)
	c.Password = getEnvOrDefault("PASSWORD", c.Password)

	var errs []error
	var err error
	if c.LogJSON, err = getEnvAsBoolOrDefault("LOG_JSON", c.LogJSON); err != nil {
		errs = append(errs, err)
	}
	if c.Workers, err = getEnvAsIntOrDefault("WORKERS", c.Workers); err != nil {
		errs = append(errs, err)
	}
	if c.ReadAhead, err = getEnvAsIntOrDefault("READ_AHEAD", c.ReadAhead); err != nil {
		errs = append(errs, err)
	}
	if c.Table.HeaderRuleLength, err = getEnvAsFloatOrDefault("HEADER_RULE_LENGTH", c.Table.HeaderRuleLength); err != nil {
		errs = append(errs, err)
	}
	if c.Table.MaxLineWidth, err = getEnvAsFloatOrDefault("MAX_LINE_WIDTH", c.Table.MaxLineWidth); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Policy == "" {
		return fmt.Errorf("policy is required")
	}
	if _, err := render.ParseFormat(c.Format); err != nil {
		return err
	}
	if _, _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogColor {
	case logging.ColorAuto, logging.ColorAlways, logging.ColorNever:
	default:
		return fmt.Errorf("log_color must be auto, always or never, got %q", c.LogColor)
	}
	switch layout.Backend(c.Backend) {
	case layout.BackendAuto, layout.BackendLedongthuc, layout.BackendDslipak:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Workers < 1 || c.Workers > 64 {
		return fmt.Errorf("workers must be between 1 and 64, got %d", c.Workers)
	}
	if c.ReadAhead < 1 {
		return fmt.Errorf("read_ahead must be positive, got %d", c.ReadAhead)
	}
	t := c.Table
	if t.MaxLineWidth < 0 || t.HeaderRuleLength < 0 || t.RuleTolerance < 0 || t.SeparatorWidth < 0 || t.CellTolerance < 0 {
		return fmt.Errorf("table settings must not be negative")
	}
	for _, d := range c.Policies {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Registry returns the preset policies plus the ones defined in the config
func (c *Config) Registry() (*policy.Registry, error) {
	r := policy.NewRegistry()
	for _, d := range c.Policies {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// TableOptions returns base with the configured overrides applied
func (c *Config) TableOptions(base table.Options) table.Options {
	t := c.Table
	if t.MaxLineWidth > 0 {
		base.MaxLineWidth = t.MaxLineWidth
	}
	if t.HeaderRuleLength > 0 {
		base.HeaderRuleLength = t.HeaderRuleLength
	}
	if t.RuleTolerance > 0 {
		base.RuleTolerance = t.RuleTolerance
	}
	if t.SeparatorWidth > 0 {
		base.SeparatorWidth = t.SeparatorWidth
	}
	if t.CellTolerance > 0 {
		base.CellTolerance = t.CellTolerance
	}
	return base
}

// LoggingOptions returns the logger settings
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{Level: c.LogLevel, Color: c.LogColor, JSON: c.LogJSON}
}

// LayoutOptions returns the PDF source settings
func (c *Config) LayoutOptions() layout.Options {
	opts := layout.DefaultOptions()
	opts.Backend = layout.Backend(c.Backend)
	opts.Password = c.Password
	opts.Workers = c.Workers
	opts.ReadAhead = c.ReadAhead
	return opts
}

// getEnvOrDefault gets a prefixed environment variable or returns default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(EnvPrefix + key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return value, nil
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(EnvPrefix + key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return value, nil
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) (bool, error) {
	valueStr := os.Getenv(EnvPrefix + key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return value, nil
}

// OutputFormat returns the parsed output format
func (c *Config) OutputFormat() render.Format {
	f, _ := render.ParseFormat(c.Format)
	return f
}
