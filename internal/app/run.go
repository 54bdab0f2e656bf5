package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"ta-enrich/internal/enrich"
)

// RunFlow loads requests, guards the destination, and drives the
// enrichment to completion, logging a final summary. An interrupt aborts
// before the next flush; batches flushed so far stay durable.
func RunFlow(ctx context.Context, cfg *Config, d *enrich.Driver) error {
	requests, err := enrich.LoadRequests(cfg.InputPath)
	if err != nil {
		return err
	}
	slog.Info("loaded requests", "count", len(requests), "input", cfg.InputPath)

	outExists := fileExists(cfg.OutputPath)
	switch {
	case outExists && cfg.Resume:
		d.FirstBatchWritten = true
		slog.Info("resuming into existing output", "output", cfg.OutputPath)
	case outExists && !cfg.Overwrite:
		return fmt.Errorf("output %s already exists (pass -overwrite or -resume)", cfg.OutputPath)
	}

	if cfg.Resume {
		cp := enrich.LoadCheckpoint(cfg.ProgressPath())
		slog.Info("loaded progress file", "processed", cp.Len(), "path", cfg.ProgressPath())
		d.Checkpoint = cp
	} else {
		d.Checkpoint = enrich.NewCheckpoint(cfg.ProgressPath())
	}

	slog.Info("starting enrichment",
		"requests", len(requests),
		"batch_size", cfg.BatchSize,
		"delay", cfg.Delay(),
		"window_days", cfg.WindowDays,
		"output", cfg.OutputPath,
	)

	sum, err := d.Run(ctx, requests)
	if err != nil {
		return err
	}
	if sum.Interrupted {
		slog.Warn("run interrupted; completed batches were flushed",
			"processed", sum.Succeeded+sum.Failed+sum.Skipped, "total", sum.Total)
	}
	slog.Info("enrichment complete",
		"total", sum.Total,
		"succeeded", sum.Succeeded,
		"failed", sum.Failed,
		"skipped", sum.Skipped,
		"batches", sum.Batches,
		"success_rate_pct", fmt.Sprintf("%.1f", sum.SuccessRate()),
		"elapsed", sum.Elapsed.Round(time.Second),
	)
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
