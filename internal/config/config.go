// Package config loads the application configuration from YAML with struct
// tag defaults, environment overrides and validation. A missing config file
// is not an error; the defaults describe a fully working setup.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Data     DataConfig     `yaml:"data"`
	Analyzer AnalyzerConfig `yaml:"analyzer"`
	Semafor  SemaforConfig  `yaml:"semafor"`
	Session  SessionConfig  `yaml:"session"`
	Scanner  ScannerConfig  `yaml:"scanner"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=console json"`
}

// DataConfig holds candle data location settings.
type DataConfig struct {
	// Dir is the directory holding per-instrument CSV files.
	Dir string `yaml:"dir" default:"./data"`
	// Limit caps how many recent candles are loaded per instrument;
	// zero loads everything.
	Limit int `yaml:"limit" default:"500" validate:"gte=0"`
}

// AnalyzerConfig holds pipeline settings.
type AnalyzerConfig struct {
	ATRPeriod    int     `yaml:"atr_period" default:"14" validate:"gte=1"`
	ReversalATR  float64 `yaml:"reversal_atr" default:"1.5" validate:"gt=0"`
	MinCandles   int     `yaml:"min_candles" default:"20" validate:"gte=3"`
	SignalWindow int     `yaml:"signal_window" default:"30" validate:"gte=1"`
	ZoneWindow   int     `yaml:"zone_window" default:"50" validate:"gte=1"`
	ZoneLimit    int     `yaml:"zone_limit" default:"10" validate:"gte=1"`
	StopATR      float64 `yaml:"stop_atr" default:"0.8" validate:"gt=0"`
	Snapshot     bool    `yaml:"snapshot" default:"true"`
}

// SemaforConfig holds fractal signal detector settings.
type SemaforConfig struct {
	Spans    []int   `yaml:"spans" default:"[2,5,13]" validate:"len=3,dive,gte=1"`
	DedupATR float64 `yaml:"dedup_atr" default:"0.5" validate:"gte=0"`
}

// SessionConfig holds caching and pacing settings.
type SessionConfig struct {
	RecomputePerSec float64 `yaml:"recompute_per_sec" default:"4" validate:"gte=0"`
	Burst           int     `yaml:"burst" default:"2" validate:"gte=1"`
	CacheSize       int     `yaml:"cache_size" default:"64" validate:"gte=1"`
}

// ScannerConfig holds scan parallelism settings.
type ScannerConfig struct {
	Workers int           `yaml:"workers" default:"8" validate:"gte=1"`
	Timeout time.Duration `yaml:"timeout" default:"60s"`
}

// Load reads configuration from a YAML file. Defaults are applied first so a
// value written in the file, including an explicit false or zero, always
// wins. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("applying config defaults: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values with environment variables if set.
func applyEnv(cfg *Config) {
	if dir := os.Getenv("CRYPTOCLEVER_DATA_DIR"); dir != "" {
		cfg.Data.Dir = dir
	}
	if level := os.Getenv("CRYPTOCLEVER_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	if c.Semafor.Spans[0] > c.Semafor.Spans[1] || c.Semafor.Spans[1] > c.Semafor.Spans[2] {
		return fmt.Errorf("semafor spans must be ascending, got %v", c.Semafor.Spans)
	}
	if c.Scanner.Timeout <= 0 {
		return fmt.Errorf("scanner timeout must be positive")
	}
	return nil
}
