package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ta-enrich/internal/indicator"
	"ta-enrich/internal/model"
	"ta-enrich/internal/writer"
)

// DefaultBatchSize is the number of snapshots accumulated before a flush.
const DefaultBatchSize = 25

// SnapshotBuilder produces one snapshot per request.
type SnapshotBuilder interface {
	Build(ctx context.Context, ticker string, date time.Time) (*indicator.Snapshot, error)
}

// Summary is the final run accounting.
type Summary struct {
	Total       int
	Succeeded   int
	Failed      int
	Skipped     int
	Batches     int
	Interrupted bool
	Elapsed     time.Duration
}

// SuccessRate returns the percentage of successful builds among processed
// (non-skipped) requests.
func (s Summary) SuccessRate() float64 {
	processed := s.Succeeded + s.Failed
	if processed == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(processed) * 100
}

// Driver iterates requests strictly in order, batches snapshots and
// flushes each batch to the output table before starting the next, so
// memory stays bounded by BatchSize and a crash loses at most one
// in-flight batch. A failed request is counted and dropped; only writer
// errors abort the run.
type Driver struct {
	Builder   SnapshotBuilder
	Writer    writer.TableWriter
	BatchSize int
	Delay     time.Duration // inter-request pause, applied after every request

	// Checkpoint, when set, records processed requests after each flush
	// and skips requests already recorded.
	Checkpoint *Checkpoint
	// ReportDir, when set, receives .lastrun.success.json / .lastrun.failed.json.
	ReportDir string
	// FirstBatchWritten suppresses the header write when resuming into an
	// existing output.
	FirstBatchWritten bool
}

// Run processes all requests. A canceled context aborts before the next
// flush; batches flushed so far stay durable.
func (d *Driver) Run(ctx context.Context, requests []model.Request) (Summary, error) {
	batchSize := d.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	start := time.Now()
	sum := Summary{Total: len(requests)}
	first := !d.FirstBatchWritten

	var successList []string
	var failedList []failedEntry

outer:
	for off := 0; off < len(requests); off += batchSize {
		end := min(off+batchSize, len(requests))
		batch := requests[off:end]
		sum.Batches++
		slog.Info("batch start", "batch", sum.Batches, "from", off+1, "to", end, "total", sum.Total)

		pending := make([]*indicator.Snapshot, 0, len(batch))
		for _, req := range batch {
			if ctx.Err() != nil {
				sum.Interrupted = true
				break outer
			}
			key := req.Key()
			if d.Checkpoint != nil && d.Checkpoint.Processed(key) {
				sum.Skipped++
				continue
			}

			snap, err := d.Builder.Build(ctx, req.Ticker, req.Date)
			if err != nil {
				sum.Failed++
				failedList = append(failedList, failedEntry{
					Ticker: req.Ticker,
					Date:   req.Date.Format("2006-01-02"),
					Reason: err.Error(),
				})
				if d.Checkpoint != nil {
					d.Checkpoint.Mark(key, "failed")
				}
				slog.Warn("build failed", "ticker", req.Ticker, "date", req.Date.Format("2006-01-02"), "error", err)
			} else {
				sum.Succeeded++
				pending = append(pending, snap)
				successList = appendSuccess(successList, req.Ticker)
				if d.Checkpoint != nil {
					d.Checkpoint.Mark(key, "ok")
				}
			}
			d.pause(ctx)
		}

		if err := d.Writer.Append(pending, first); err != nil {
			return sum, fmt.Errorf("flush batch %d: %w", sum.Batches, err)
		}
		first = false
		if d.Checkpoint != nil {
			if err := d.Checkpoint.Flush(); err != nil {
				slog.Warn("checkpoint write failed", "error", err)
			}
		}
		processed := sum.Succeeded + sum.Failed + sum.Skipped
		slog.Info("batch flushed",
			"batch", sum.Batches,
			"rows", len(pending),
			"processed", processed,
			"total", sum.Total,
			"success_rate_pct", fmt.Sprintf("%.1f", sum.SuccessRate()),
			"elapsed", time.Since(start).Round(time.Second),
		)
	}

	sum.Elapsed = time.Since(start)
	if d.ReportDir != "" && (len(successList) > 0 || len(failedList) > 0) {
		if err := writeRunReport(d.ReportDir, successList, failedList); err != nil {
			slog.Warn("could not write run report", "error", err)
		}
	}
	if len(failedList) > 0 {
		slog.Info("summary failed", "count", len(failedList), "reasons", joinFailedReasons(failedList))
	}
	return sum, nil
}

// pause blocks for the inter-request delay; a canceled context cuts the
// pause short (the cancellation itself is observed before the next
// request).
func (d *Driver) pause(ctx context.Context) {
	if d.Delay <= 0 {
		return
	}
	t := time.NewTimer(d.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
