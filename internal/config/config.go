// Package config loads the application configuration from an optional
// YAML file, with environment overrides on top of built-in defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration accepts "30s"-style strings in YAML alongside plain integer
// nanosecond counts.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration value: %w", err)
	}
	*d = Duration(n)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full hintloop.yaml configuration.
type Config struct {
	Storage       StorageConfig       `yaml:"storage"`
	Hints         HintsConfig         `yaml:"hints"`
	Clarification ClarificationConfig `yaml:"clarification"`
	Resilience    ResilienceConfig    `yaml:"resilience"`
	Sessions      SessionsConfig      `yaml:"sessions"`
	Logging       LoggingConfig       `yaml:"logging"`
}

type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

type HintsConfig struct {
	GenerateTimeout Duration `yaml:"generate_timeout"`
	MaxWords        int      `yaml:"max_words"`
	CacheSize       int      `yaml:"cache_size"`
	MetricsWindow   int      `yaml:"metrics_window"`
}

type ClarificationConfig struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	FallbackThreshold float64 `yaml:"fallback_threshold"`
}

type ResilienceConfig struct {
	BreakerThreshold int      `yaml:"breaker_threshold"`
	BreakerRecovery  Duration `yaml:"breaker_recovery"`
	QueueCap         int      `yaml:"queue_cap"`
	QueueMaxAttempts int      `yaml:"queue_max_attempts"`
	SweepInterval    Duration `yaml:"sweep_interval"`
	SweepBatch       int      `yaml:"sweep_batch"`
}

type SessionsConfig struct {
	IdleWindow    Duration `yaml:"idle_window"`
	EvictInterval Duration `yaml:"evict_interval"`
}

type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
}

// Load reads the YAML file at path and returns the parsed configuration.
// An empty path yields the defaults; an explicit path must exist.
// Environment overrides apply last.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		applyEnv(cfg)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse parses raw YAML bytes into a validated Config with defaults and
// environment overrides applied.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(cfg)
	applyEnv(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Hints: HintsConfig{
			GenerateTimeout: Duration(4 * time.Second),
			MaxWords:        60,
			CacheSize:       256,
			MetricsWindow:   500,
		},
		Clarification: ClarificationConfig{
			MaxAttempts:       3,
			FallbackThreshold: 0.6,
		},
		Resilience: ResilienceConfig{
			BreakerThreshold: 5,
			BreakerRecovery:  Duration(30 * time.Second),
			QueueCap:         200,
			QueueMaxAttempts: 3,
			SweepInterval:    Duration(15 * time.Second),
			SweepBatch:       25,
		},
		Sessions: SessionsConfig{
			IdleWindow:    Duration(30 * time.Minute),
			EvictInterval: Duration(5 * time.Minute),
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// applyDefaults backfills zero values left by a partial YAML file.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Hints.GenerateTimeout <= 0 {
		cfg.Hints.GenerateTimeout = def.Hints.GenerateTimeout
	}
	if cfg.Hints.MaxWords <= 0 {
		cfg.Hints.MaxWords = def.Hints.MaxWords
	}
	if cfg.Hints.CacheSize <= 0 {
		cfg.Hints.CacheSize = def.Hints.CacheSize
	}
	if cfg.Hints.MetricsWindow <= 0 {
		cfg.Hints.MetricsWindow = def.Hints.MetricsWindow
	}
	if cfg.Clarification.MaxAttempts <= 0 {
		cfg.Clarification.MaxAttempts = def.Clarification.MaxAttempts
	}
	if cfg.Clarification.FallbackThreshold <= 0 {
		cfg.Clarification.FallbackThreshold = def.Clarification.FallbackThreshold
	}
	if cfg.Resilience.BreakerThreshold <= 0 {
		cfg.Resilience.BreakerThreshold = def.Resilience.BreakerThreshold
	}
	if cfg.Resilience.BreakerRecovery <= 0 {
		cfg.Resilience.BreakerRecovery = def.Resilience.BreakerRecovery
	}
	if cfg.Resilience.QueueCap <= 0 {
		cfg.Resilience.QueueCap = def.Resilience.QueueCap
	}
	if cfg.Resilience.QueueMaxAttempts <= 0 {
		cfg.Resilience.QueueMaxAttempts = def.Resilience.QueueMaxAttempts
	}
	if cfg.Resilience.SweepInterval <= 0 {
		cfg.Resilience.SweepInterval = def.Resilience.SweepInterval
	}
	if cfg.Resilience.SweepBatch <= 0 {
		cfg.Resilience.SweepBatch = def.Resilience.SweepBatch
	}
	if cfg.Sessions.IdleWindow <= 0 {
		cfg.Sessions.IdleWindow = def.Sessions.IdleWindow
	}
	if cfg.Sessions.EvictInterval <= 0 {
		cfg.Sessions.EvictInterval = def.Sessions.EvictInterval
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
}

// applyEnv overrides selected settings from the environment.
func applyEnv(cfg *Config) {
	if v := os.Getenv("HINTLOOP_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("HINTLOOP_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks a Config for logical errors.
func Validate(cfg *Config) error {
	if cfg.Clarification.FallbackThreshold >= 1 {
		return fmt.Errorf("clarification.fallback_threshold must be below 1, got %v", cfg.Clarification.FallbackThreshold)
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", cfg.Logging.Level)
	}
	return nil
}
