package indicator

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"ta-enrich/internal/model"
)

type stubSource struct {
	bars []model.Bar
	err  error
}

func (s *stubSource) FetchDailyBars(ctx context.Context, ticker string, from, to time.Time) ([]model.Bar, error) {
	return s.bars, s.err
}

// dailyBars returns n daily bars with consecutive closes starting at 100,
// the last one landing on lastDay.
func dailyBars(n int, lastDay time.Time) []model.Bar {
	bars := make([]model.Bar, n)
	for i := 0; i < n; i++ {
		c := 100 + float64(i)
		bars[i] = model.Bar{
			Timestamp: lastDay.AddDate(0, 0, i-(n-1)).UnixMilli(),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	return bars
}

var targetDay = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestBuildAssemblesSnapshot(t *testing.T) {
	src := &stubSource{bars: dailyBars(30, targetDay)}
	b := NewBuilder(src, 0)
	snap, err := b.Build(context.Background(), "AAPL", targetDay)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if snap.Ticker != "AAPL" || !snap.Date.Equal(targetDay) {
		t.Fatalf("identity = (%s, %s)", snap.Ticker, snap.Date)
	}
	if snap.LastClose != 129 || snap.LastVolume != 1000 {
		t.Fatalf("last bar = close %v volume %d", snap.LastClose, snap.LastVolume)
	}
	if len(snap.Values) != len(Fields()) {
		t.Fatalf("got %d values, want one per catalog field (%d)", len(snap.Values), len(Fields()))
	}
	for _, f := range Fields() {
		if _, ok := snap.Values[f]; !ok {
			t.Errorf("missing field %q", f)
		}
	}

	if got, want := snap.Values["std_dev"], math.Sqrt(35); math.Abs(got-want) > 1e-9 {
		t.Errorf("std_dev = %v, want %v", got, want)
	}
	if got := snap.Values["price_distance"]; math.IsNaN(got) || got <= 0 {
		t.Errorf("price_distance = %v, want > 0", got)
	}
	if got := snap.Values["ulcer_index"]; math.IsNaN(got) || got > 1e-12 {
		t.Errorf("ulcer_index = %v, want 0", got)
	}
	if snap.Values["hlc3"] != snap.Values["typical_price"] {
		t.Errorf("hlc3 %v != typical_price %v", snap.Values["hlc3"], snap.Values["typical_price"])
	}
}

func TestBuildTruncatesBarsAfterTargetDate(t *testing.T) {
	// five extra bars past the target day must not leak into the snapshot
	src := &stubSource{bars: dailyBars(35, targetDay.AddDate(0, 0, 5))}
	b := NewBuilder(src, 90)
	snap, err := b.Build(context.Background(), "MSFT", targetDay)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if snap.LastClose != 129 {
		t.Fatalf("last close = %v, want 129 (the target-day bar)", snap.LastClose)
	}
}

func TestBuildInsufficientHistory(t *testing.T) {
	src := &stubSource{bars: dailyBars(MinBars-1, targetDay)}
	b := NewBuilder(src, 90)
	_, err := b.Build(context.Background(), "THIN", targetDay)
	if !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("err = %v, want ErrInsufficientHistory", err)
	}
}

func TestBuildNoData(t *testing.T) {
	cases := []struct {
		name string
		src  *stubSource
	}{
		{"fetch error", &stubSource{err: errors.New("connection refused")}},
		{"empty series", &stubSource{}},
		{"non-numeric bar", &stubSource{bars: append(
			dailyBars(25, targetDay),
			model.Bar{Timestamp: targetDay.AddDate(0, 0, 1).UnixMilli(), Close: math.NaN()},
		)}},
	}
	for _, tc := range cases {
		b := NewBuilder(tc.src, 90)
		_, err := b.Build(context.Background(), "X", targetDay)
		if !errors.Is(err, ErrNoData) {
			t.Errorf("%s: err = %v, want ErrNoData", tc.name, err)
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	src := &stubSource{bars: dailyBars(40, targetDay)}
	b := NewBuilder(src, 90)
	first, err := b.Build(context.Background(), "AAPL", targetDay)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, err := b.Build(context.Background(), "AAPL", targetDay)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("two builds of the same input differ")
	}
}

func TestHeaderLayout(t *testing.T) {
	h := Header()
	wantLead := []string{"ticker", "date", "last_open", "last_high", "last_low", "last_close", "last_volume"}
	if len(h) != len(wantLead)+len(Fields()) {
		t.Fatalf("header has %d columns, want %d", len(h), len(wantLead)+len(Fields()))
	}
	for i, w := range wantLead {
		if h[i] != w {
			t.Errorf("header[%d] = %q, want %q", i, h[i], w)
		}
	}
}
