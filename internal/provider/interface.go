package provider

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ta-enrich/internal/model"
	"ta-enrich/internal/saver"
)

// DataProvider is the market-data retrieval collaborator: given a ticker
// and a date range it returns an ascending daily OHLCV series. "No data"
// is an empty series with a nil error; errors are transport or schema
// failures. Implementations are responsible for their own cleanup.
type DataProvider interface {
	Name() string
	FetchDailyBars(ctx context.Context, ticker string, from, to time.Time) ([]model.Bar, error)
	Close() error
}

// packetCache persists fetched windows to disk so reruns can inspect or
// reuse raw data. A zero value is disabled.
type packetCache struct {
	Dir   string
	Saver saver.PacketSaver
}

// save writes one window as <dir>/<TICKER>/<ticker>_<from>_to_<to>.<ext>.
// Cache failures are logged, never propagated: the fetch itself succeeded.
func (c packetCache) save(ticker string, from, to time.Time, bars []model.Bar) {
	if c.Dir == "" || c.Saver == nil || len(bars) == 0 {
		return
	}
	tickerDir := filepath.Join(c.Dir, ticker)
	if err := os.MkdirAll(tickerDir, 0755); err != nil {
		slog.Warn("packet cache: cannot create folder", "dir", tickerDir, "error", err)
		return
	}
	name := fmt.Sprintf("%s_%s_to_%s.%s",
		ticker, from.Format("2006-01-02"), to.Format("2006-01-02"), c.Saver.Extension())
	path := filepath.Join(tickerDir, name)
	if err := c.Saver.Save(bars, path); err != nil {
		slog.Warn("packet cache: write failed", "path", path, "error", err)
		return
	}
	slog.Debug("packet cache: saved window", "path", path, "bars", len(bars))
}
