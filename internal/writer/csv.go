package writer

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"ta-enrich/internal/indicator"
)

// TableWriter appends batches of snapshots to a persistent table. The
// table is append-only: the first batch establishes the schema, later
// batches add rows only. The driver is the sole caller; no locking.
type TableWriter interface {
	Append(snaps []*indicator.Snapshot, first bool) error
}

// CSVWriter appends snapshots to a single CSV file, writing the header
// exactly once on the first batch. The header is written even when the
// first batch has no rows, so the destination always exists with a schema
// after the first flush.
type CSVWriter struct {
	Path string
}

// NewCSV creates a CSVWriter for the given destination path.
func NewCSV(path string) *CSVWriter { return &CSVWriter{Path: path} }

// Append flushes one batch. first=true creates/truncates the destination
// and writes the header; otherwise rows are appended in the established
// column order. An empty non-first batch touches nothing.
func (w *CSVWriter) Append(snaps []*indicator.Snapshot, first bool) error {
	if !first && len(snaps) == 0 {
		return nil
	}
	flags := os.O_CREATE | os.O_WRONLY
	if first {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}
	f, err := os.OpenFile(w.Path, flags, 0644)
	if err != nil {
		return fmt.Errorf("open output %s: %w", w.Path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if first {
		if err := cw.Write(indicator.Header()); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for _, s := range snaps {
		if err := cw.Write(record(s)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

func record(s *indicator.Snapshot) []string {
	row := make([]string, 0, len(indicator.Header()))
	row = append(row,
		s.Ticker,
		s.Date.Format("2006-01-02"),
		floatStr(s.LastOpen),
		floatStr(s.LastHigh),
		floatStr(s.LastLow),
		floatStr(s.LastClose),
		strconv.FormatInt(s.LastVolume, 10),
	)
	for _, name := range indicator.Fields() {
		row = append(row, valueStr(s.Values[name]))
	}
	return row
}

func floatStr(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// valueStr renders unavailable values as empty cells.
func valueStr(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return floatStr(f)
}
