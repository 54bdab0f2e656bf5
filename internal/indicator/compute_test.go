package indicator

import (
	"math"
	"testing"
	"time"

	"ta-enrich/internal/model"
)

// testBars builds daily bars around the given closes: open equals close,
// high/low are close +/- 1, volume is a flat 1000.
func testBars(closes ...float64) []model.Bar {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{
			Timestamp: base.AddDate(0, 0, i).UnixMilli(),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	return bars
}

func consecutiveCloses(n int, start float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)
	}
	return out
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestRollingStdConsecutiveCloses(t *testing.T) {
	// sample stddev of 20 consecutive integers is sqrt(35)
	bars := testBars(consecutiveCloses(25, 100)...)
	got := Normalize(RollingStd(bars, 20))
	want := math.Sqrt(35)
	if !almostEqual(got, want, 1e-9) {
		t.Fatalf("std_dev = %v, want %v", got, want)
	}
}

func TestATRConstantRange(t *testing.T) {
	// flat closes with a fixed 2-point high/low range: every true range is 2
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	bars := testBars(closes...)
	got := Normalize(ATR(bars, 14))
	if !almostEqual(got, 2, 1e-9) {
		t.Fatalf("atr = %v, want 2", got)
	}
}

func TestUlcerIndexMonotonicRise(t *testing.T) {
	bars := testBars(consecutiveCloses(21, 50)...)
	got := Normalize(UlcerIndex(bars, 14))
	if math.IsNaN(got) || got > 1e-12 {
		t.Fatalf("ulcer_index = %v, want 0 for a rising series", got)
	}
}

func TestPriceDistancePositiveOnRise(t *testing.T) {
	bars := testBars(consecutiveCloses(25, 100)...)
	got := Normalize(PriceDistance(bars, 20))
	if math.IsNaN(got) || got <= 0 {
		t.Fatalf("price_distance = %v, want > 0 when close sits above its average", got)
	}
}

func TestOBVDirection(t *testing.T) {
	bars := testBars(10, 11, 11, 9)
	got := Normalize(OBV(bars))
	// 1000 (seed) + 1000 (up) + 0 (flat) - 1000 (down)
	if got != 1000 {
		t.Fatalf("obv = %v, want 1000", got)
	}
}

func TestADLineCloseAtHigh(t *testing.T) {
	bars := []model.Bar{{High: 2, Low: 0, Close: 2, Volume: 1000}}
	got := Normalize(ADLine(bars))
	if got != 1000 {
		t.Fatalf("ad_line = %v, want 1000 when close pins the high", got)
	}
}

func TestADLineSkipsZeroRange(t *testing.T) {
	bars := []model.Bar{
		{High: 2, Low: 0, Close: 2, Volume: 1000},
		{High: 5, Low: 5, Close: 5, Volume: 9999}, // zero range contributes nothing
	}
	got := Normalize(ADLine(bars))
	if got != 1000 {
		t.Fatalf("ad_line = %v, want 1000", got)
	}
}

func TestPVTCumulative(t *testing.T) {
	bars := testBars(100, 110)
	got := Normalize(PVT(bars))
	// (110-100)/100 * 1000
	if !almostEqual(got, 100, 1e-9) {
		t.Fatalf("pvt = %v, want 100", got)
	}
}

func TestForceIndexConstantChange(t *testing.T) {
	// unit close-to-close change at flat volume gives a constant raw force
	// of 1000, which any exponential smoothing must reproduce exactly
	bars := testBars(consecutiveCloses(30, 100)...)
	got := Normalize(ForceIndex(bars, 13))
	if !almostEqual(got, 1000, 1e-6) {
		t.Fatalf("force_index = %v, want 1000", got)
	}
}

func TestHLC3(t *testing.T) {
	bars := []model.Bar{{High: 12, Low: 6, Close: 9}}
	got := Normalize(HLC3(bars))
	if got != 9 {
		t.Fatalf("hlc3 = %v, want 9", got)
	}
}

func TestVWAPSingleBar(t *testing.T) {
	bars := []model.Bar{{High: 12, Low: 6, Close: 9, Volume: 500}}
	got := Normalize(VWAP(bars))
	if got != 9 {
		t.Fatalf("vwap = %v, want the typical price for one bar", got)
	}
}

func TestVolumeCloseExtrema(t *testing.T) {
	bars := testBars(consecutiveCloses(25, 1)...)
	// last 20-bar window covers closes 6..25 at volume 1000
	gotMin := Normalize(VolumeCloseMin(bars, 20))
	gotMax := Normalize(VolumeCloseMax(bars, 20))
	if gotMin != 6000 {
		t.Errorf("volume_close_min = %v, want 6000", gotMin)
	}
	if gotMax != 25000 {
		t.Errorf("volume_close_max = %v, want 25000", gotMax)
	}
}

func TestBBandsShape(t *testing.T) {
	bars := testBars(consecutiveCloses(25, 100)...)
	res := BBands(bars, 20, 2.0)
	if res.Kind() != Table {
		t.Fatalf("bbands kind = %v, want Table", res.Kind())
	}
	lower := Normalize(res.Column(0))
	middle := Normalize(res.Column(1))
	upper := Normalize(res.Column(2))
	width := Normalize(res.Column(3))

	// closes 105..124 in the final window: middle is their mean
	wantMiddle := 114.5
	if !almostEqual(middle, wantMiddle, 1e-9) {
		t.Errorf("middle = %v, want %v", middle, wantMiddle)
	}
	sd := math.Sqrt(35)
	if !almostEqual(lower, wantMiddle-2*sd, 1e-9) {
		t.Errorf("lower = %v, want %v", lower, wantMiddle-2*sd)
	}
	if !almostEqual(upper, wantMiddle+2*sd, 1e-9) {
		t.Errorf("upper = %v, want %v", upper, wantMiddle+2*sd)
	}
	wantWidth := (upper - lower) / wantMiddle * 100
	if !almostEqual(width, wantWidth, 1e-9) {
		t.Errorf("width = %v, want %v", width, wantWidth)
	}
	// table-level normalization falls back to the first (lower) column
	if got := Normalize(res); !almostEqual(got, lower, 1e-12) {
		t.Errorf("Normalize(table) = %v, want lower band %v", got, lower)
	}
}

func TestInsufficientInputYieldsNoResult(t *testing.T) {
	short := testBars(consecutiveCloses(5, 100)...)
	cases := []struct {
		name string
		r    Result
	}{
		{"atr", ATR(short, 14)},
		{"std_dev", RollingStd(short, 20)},
		{"ulcer_index", UlcerIndex(short, 14)},
		{"price_distance", PriceDistance(short, 20)},
		{"volume_close_min", VolumeCloseMin(short, 20)},
		{"bbands", BBands(short, 20, 2.0)},
		{"obv empty", OBV(nil)},
		{"pvt single bar", PVT(testBars(100))},
	}
	for _, tc := range cases {
		if tc.r.Kind() != None {
			t.Errorf("%s: kind = %v, want None", tc.name, tc.r.Kind())
		}
	}
}

func TestSafeComputeRecoversPanic(t *testing.T) {
	e := Entry{Name: "boom", Compute: func([]model.Bar) Result {
		panic("indicator blew up")
	}}
	if got := safeCompute(e, nil); got.Kind() != None {
		t.Fatalf("kind = %v, want None after recovered panic", got.Kind())
	}
}
