package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"ta-enrich/internal/enrich"
	"ta-enrich/internal/indicator"
	"ta-enrich/internal/provider"
	"ta-enrich/internal/saver"
	"ta-enrich/internal/writer"
)

// Overrides carries command-line values applied on top of config file and
// environment.
type Overrides struct {
	Input     string
	Output    string
	Overwrite bool
	Resume    bool
}

// ProvideConfig loads and validates config (for Wire).
func ProvideConfig(path string, ov Overrides) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if ov.Input != "" {
		cfg.InputPath = ov.Input
	}
	if ov.Output != "" {
		cfg.OutputPath = ov.Output
	}
	if ov.Overwrite {
		cfg.Overwrite = true
	}
	if ov.Resume {
		cfg.Resume = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// ProvideProvider creates the configured DataProvider and wires the window
// packet cache when a cache dir is set (for Wire).
func ProvideProvider(cfg *Config) (provider.DataProvider, error) {
	var ps saver.PacketSaver
	if cfg.CacheDir != "" {
		ps = saver.NewPacketSaver(cfg.CacheFormat)
		if ps == nil {
			return nil, fmt.Errorf("unsupported cache_format %q (use: csv, parquet, json)", cfg.CacheFormat)
		}
	}
	switch strings.ToLower(cfg.Provider) {
	case "yahoo":
		p := provider.NewYahooProvider()
		if ps != nil {
			p.SetPacketCache(filepath.Join(cfg.CacheDir, p.Name()), ps)
		}
		return p, nil
	case "polygon":
		p, err := provider.NewPolygonProvider(cfg.PolygonAPIKey)
		if err != nil {
			return nil, err
		}
		if ps != nil {
			p.SetPacketCache(filepath.Join(cfg.CacheDir, p.Name()), ps)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s. Options: yahoo, polygon", cfg.Provider)
	}
}

// ProvideWriter creates the output table writer (for Wire).
func ProvideWriter(cfg *Config) writer.TableWriter {
	return writer.NewCSV(cfg.OutputPath)
}

// ProvideDriver wires builder, writer and run options together (for Wire).
func ProvideDriver(cfg *Config, dp provider.DataProvider, w writer.TableWriter) *enrich.Driver {
	return &enrich.Driver{
		Builder:   indicator.NewBuilder(dp, cfg.WindowDays),
		Writer:    w,
		BatchSize: cfg.BatchSize,
		Delay:     cfg.Delay(),
		ReportDir: cfg.ReportDir(),
	}
}
