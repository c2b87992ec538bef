// Package config handles configuration loading from YAML files and environment variables.
// Configuration precedence: environment variables > config file > defaults.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/curo-sh/curo/internal/models"
)

// Decision modes select the Decider implementation.
const (
	ModeLocal  = "local"
	ModeRemote = "remote"
)

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
// from human-readable strings like "15s", "30s", "1m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
// It accepts string formats like "15s" and "1m30s".
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds all daemon configuration.
type Config struct {
	Daemon     DaemonConfig    `yaml:"daemon"`
	Decision   DecisionConfig  `yaml:"decision"`
	Thresholds ThresholdConfig `yaml:"thresholds"`
	Collector  CollectorConfig `yaml:"collector"`
	Actions    ActionConfig    `yaml:"actions"`
	Logging    LoggingConfig   `yaml:"logging"`
}

// DaemonConfig holds loop timing and audit log settings.
type DaemonConfig struct {
	Interval Duration `yaml:"interval"`
	AuditLog string   `yaml:"audit_log"`
}

// DecisionConfig selects and tunes the decision stage.
type DecisionConfig struct {
	Mode           string   `yaml:"mode"`
	URL            string   `yaml:"url"`
	Prompt         string   `yaml:"prompt"`
	RequestTimeout Duration `yaml:"request_timeout"`
	WaitReady      bool     `yaml:"wait_ready"`
	ReadyTimeout   Duration `yaml:"ready_timeout"`
}

// ThresholdConfig holds the local rule table limits, in percent.
type ThresholdConfig struct {
	CPUPercent    float64 `yaml:"cpu_percent"`
	MemoryPercent float64 `yaml:"memory_percent"`
	DiskPercent   float64 `yaml:"disk_percent"`
}

// CollectorConfig holds metric sampling settings.
type CollectorConfig struct {
	DiskPath string `yaml:"disk_path"`
}

// ActionConfig holds executor settings: per-kind enablement plus the paths
// and ages the filesystem operations work on.
type ActionConfig struct {
	Enabled   map[string]bool `yaml:"enabled"`
	TmpDir    string          `yaml:"tmp_dir"`
	LogDir    string          `yaml:"log_dir"`
	LogMaxAge Duration        `yaml:"log_max_age"`
}

// EnabledFor reports whether an action kind may execute. Kinds absent from
// the map are enabled; only an explicit false disables one.
func (a ActionConfig) EnabledFor(kind string) bool {
	if v, ok := a.Enabled[kind]; ok {
		return v
	}
	return true
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Daemon: DaemonConfig{
			Interval: Duration{120 * time.Second},
			AuditLog: "curo-audit.log",
		},
		Decision: DecisionConfig{
			Mode:           ModeLocal,
			URL:            "http://localhost:8000",
			Prompt:         "Optimize system performance",
			RequestTimeout: Duration{20 * time.Second},
			WaitReady:      false,
			ReadyTimeout:   Duration{60 * time.Second},
		},
		Thresholds: ThresholdConfig{
			CPUPercent:    80,
			MemoryPercent: 85,
			DiskPercent:   90,
		},
		Collector: CollectorConfig{
			DiskPath: "/",
		},
		Actions: ActionConfig{
			Enabled:   map[string]bool{},
			TmpDir:    "/tmp",
			LogDir:    "/var/log",
			LogMaxAge: Duration{168 * time.Hour},
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromBytes parses YAML configuration from a byte slice and merges with defaults.
// Environment variables take highest precedence and override values from the byte slice.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config data: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// Load reads configuration from a YAML file and merges with defaults.
// If path is empty or the file does not exist, only defaults and environment
// variables are used.
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadFromBytes(nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// File doesn't exist — use defaults + env overrides
		return LoadFromBytes(nil)
	}

	return LoadFromBytes(data)
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables have the highest precedence.
func applyEnvOverrides(cfg *Config) {
	if mode := os.Getenv("CURO_DECISION_MODE"); mode != "" {
		cfg.Decision.Mode = mode
	}
	if u := os.Getenv("CURO_DECISION_URL"); u != "" {
		cfg.Decision.URL = u
	}
	if path := os.Getenv("CURO_AUDIT_LOG"); path != "" {
		cfg.Daemon.AuditLog = path
	}
	if level := os.Getenv("CURO_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

// Validate checks that the configuration is usable. It is the only failure
// that may bring the process down, so it runs once at startup before any
// component is built.
func (c *Config) Validate() error {
	if c.Daemon.Interval.Duration <= 0 {
		return fmt.Errorf("daemon interval must be positive")
	}
	if c.Daemon.AuditLog == "" {
		return fmt.Errorf("audit log path is required")
	}

	switch c.Decision.Mode {
	case ModeLocal, ModeRemote:
	default:
		return fmt.Errorf("decision mode must be %q or %q (got %q)", ModeLocal, ModeRemote, c.Decision.Mode)
	}
	if c.Decision.Mode == ModeRemote {
		if c.Decision.URL == "" {
			return fmt.Errorf("decision URL is required in remote mode")
		}
		parsed, err := url.Parse(c.Decision.URL)
		if err != nil {
			return fmt.Errorf("invalid decision URL: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("decision URL must use http or https (got: %s)", c.Decision.URL)
		}
	}
	if c.Decision.RequestTimeout.Duration <= 0 {
		return fmt.Errorf("decision request timeout must be positive")
	}
	if c.Decision.ReadyTimeout.Duration <= 0 {
		return fmt.Errorf("decision ready timeout must be positive")
	}

	for name, v := range map[string]float64{
		"cpu":    c.Thresholds.CPUPercent,
		"memory": c.Thresholds.MemoryPercent,
		"disk":   c.Thresholds.DiskPercent,
	} {
		if v <= 0 || v > 100 {
			return fmt.Errorf("%s threshold must be within (0, 100], got %v", name, v)
		}
	}

	if c.Collector.DiskPath == "" {
		return fmt.Errorf("collector disk path is required")
	}

	for kind := range c.Actions.Enabled {
		if !models.KnownActionKind(kind) {
			return fmt.Errorf("unknown action kind %q in actions.enabled", kind)
		}
	}
	if c.Actions.TmpDir == "" {
		return fmt.Errorf("actions tmp dir is required")
	}
	if c.Actions.LogDir == "" {
		return fmt.Errorf("actions log dir is required")
	}
	if c.Actions.LogMaxAge.Duration <= 0 {
		return fmt.Errorf("actions log max age must be positive")
	}

	return nil
}
