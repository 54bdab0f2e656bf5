package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for the enrichment run.
const (
	DefaultBatchSize    = 25
	DefaultWindowDays   = 90
	DefaultDelaySeconds = 0.1
)

// Config holds run configuration, loaded from an optional YAML file with
// environment overrides on top.
type Config struct {
	InputPath     string  `yaml:"input"`
	OutputPath    string  `yaml:"output"`
	Provider      string  `yaml:"provider"` // yahoo | polygon
	PolygonAPIKey string  `yaml:"polygon_api_key"`
	BatchSize     int     `yaml:"batch_size"`
	DelaySeconds  float64 `yaml:"delay_seconds"` // inter-request pause
	WindowDays    int     `yaml:"window_days"`
	Overwrite     bool    `yaml:"overwrite"`
	Resume        bool    `yaml:"resume"`
	CacheDir      string  `yaml:"cache_dir"`    // when set, fetched windows are persisted here
	CacheFormat   string  `yaml:"cache_format"` // csv | parquet | json
	LogLevel      string  `yaml:"log_level"`    // debug | info | warn | error
}

func defaultConfig() *Config {
	return &Config{
		Provider:     "yahoo",
		BatchSize:    DefaultBatchSize,
		DelaySeconds: DefaultDelaySeconds,
		WindowDays:   DefaultWindowDays,
		CacheFormat:  "csv",
		LogLevel:     "info",
	}
}

// Load reads the optional YAML file then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.InputPath = getEnv("ENRICH_INPUT", c.InputPath)
	c.OutputPath = getEnv("ENRICH_OUTPUT", c.OutputPath)
	c.Provider = getEnv("DATA_PROVIDER", c.Provider)
	c.PolygonAPIKey = getEnv("POLYGON_API_KEY", c.PolygonAPIKey)
	c.CacheDir = getEnv("ENRICH_CACHE_DIR", c.CacheDir)
	c.CacheFormat = getEnv("ENRICH_CACHE_FORMAT", c.CacheFormat)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	if v := os.Getenv("ENRICH_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.BatchSize = n
		}
	}
	if v := os.Getenv("ENRICH_DELAY_SECONDS"); v != "" {
		if d, err := strconv.ParseFloat(v, 64); err == nil && d >= 0 {
			c.DelaySeconds = d
		}
	}
	if v := os.Getenv("ENRICH_WINDOW_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.WindowDays = n
		}
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Validate checks the configuration is runnable.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("input path is required")
	}
	if c.OutputPath == "" {
		return fmt.Errorf("output path is required")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.BatchSize)
	}
	if c.WindowDays <= 0 {
		return fmt.Errorf("window_days must be positive, got %d", c.WindowDays)
	}
	if c.DelaySeconds < 0 {
		return fmt.Errorf("delay_seconds must not be negative, got %g", c.DelaySeconds)
	}
	if c.Overwrite && c.Resume {
		return fmt.Errorf("overwrite and resume are mutually exclusive")
	}
	switch strings.ToLower(c.Provider) {
	case "yahoo", "polygon":
	default:
		return fmt.Errorf("unsupported provider: %s. Options: yahoo, polygon", c.Provider)
	}
	return nil
}

// Delay returns the inter-request pause as a duration.
func (c *Config) Delay() time.Duration {
	return time.Duration(c.DelaySeconds * float64(time.Second))
}

// ProgressPath returns the checkpoint file location next to the output.
func (c *Config) ProgressPath() string {
	return c.OutputPath + ".progress.json"
}

// ReportDir returns where run reports are written.
func (c *Config) ReportDir() string {
	return filepath.Dir(c.OutputPath)
}
