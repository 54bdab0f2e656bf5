package indicator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"ta-enrich/internal/model"
)

// BarSource supplies the historical window a snapshot is computed from.
// "No data" is an empty series, not an error.
type BarSource interface {
	FetchDailyBars(ctx context.Context, ticker string, from, to time.Time) ([]model.Bar, error)
}

var (
	// ErrNoData marks a request whose retrieval failed, returned nothing,
	// or returned a malformed series.
	ErrNoData = errors.New("no usable price data")
	// ErrInsufficientHistory marks a request with fewer than MinBars bars
	// after truncation to the target date.
	ErrInsufficientHistory = errors.New("insufficient history")
)

// MinBars is the uniform sufficiency floor: most catalog indicators need
// at least 20 periods of history.
const MinBars = 20

// DefaultWindowDays is the historical window length requested per snapshot.
const DefaultWindowDays = 90

// Snapshot is one fully assembled indicator record for a (ticker, date)
// pair. It is created once per successful request and never mutated.
type Snapshot struct {
	Ticker     string
	Date       time.Time
	LastOpen   float64
	LastHigh   float64
	LastLow    float64
	LastClose  float64
	LastVolume int64
	Values     map[string]float64 // catalog field name → value, NaN when unavailable
}

// Header returns the fixed output column order: identification fields,
// last-bar OHLCV, then every catalog field.
func Header() []string {
	cols := []string{"ticker", "date", "last_open", "last_high", "last_low", "last_close", "last_volume"}
	return append(cols, Fields()...)
}

// Builder assembles indicator snapshots from a BarSource.
type Builder struct {
	Source     BarSource
	WindowDays int
}

// NewBuilder creates a Builder; non-positive windowDays falls back to the
// default window.
func NewBuilder(src BarSource, windowDays int) *Builder {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &Builder{Source: src, WindowDays: windowDays}
}

// Build assembles the indicator snapshot for ticker as of date.
// Retrieval failures and thin history fail the whole request; individual
// indicator failures only blank their own fields. There are no retries:
// one retrieval failure fails the snapshot.
func (b *Builder) Build(ctx context.Context, ticker string, date time.Time) (*Snapshot, error) {
	day := date.UTC().Truncate(24 * time.Hour)
	from := day.AddDate(0, 0, -b.WindowDays)
	to := day.AddDate(0, 0, 1)

	bars, err := b.Source.FetchDailyBars(ctx, ticker, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: empty series for %s", ErrNoData, ticker)
	}
	if !validShape(bars) {
		return nil, fmt.Errorf("%w: non-numeric OHLCV for %s", ErrNoData, ticker)
	}
	bars = truncateAfter(bars, day)
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no bars on or before %s", ErrNoData, day.Format("2006-01-02"))
	}
	if len(bars) < MinBars {
		return nil, fmt.Errorf("%w: %d bars < %d", ErrInsufficientHistory, len(bars), MinBars)
	}

	values := make(map[string]float64, len(Fields()))
	for _, e := range Catalog() {
		res := safeCompute(e, bars)
		if e.Sub == nil {
			values[e.Name] = Normalize(res)
			continue
		}
		for i, sub := range e.Sub {
			values[e.Name+"_"+sub] = Normalize(res.Column(i))
		}
	}

	last := bars[len(bars)-1]
	return &Snapshot{
		Ticker:     ticker,
		Date:       day,
		LastOpen:   last.Open,
		LastHigh:   last.High,
		LastLow:    last.Low,
		LastClose:  last.Close,
		LastVolume: last.Volume,
		Values:     values,
	}, nil
}

// truncateAfter drops bars after the target day, keeping the day itself.
func truncateAfter(bars []model.Bar, day time.Time) []model.Bar {
	cutoff := day.AddDate(0, 0, 1)
	n := len(bars)
	for n > 0 && !bars[n-1].Time().Before(cutoff) {
		n--
	}
	return bars[:n]
}

func validShape(bars []model.Bar) bool {
	for _, b := range bars {
		if math.IsNaN(b.Open) || math.IsNaN(b.High) || math.IsNaN(b.Low) || math.IsNaN(b.Close) {
			return false
		}
	}
	return true
}
