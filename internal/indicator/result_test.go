package indicator

import (
	"math"
	"testing"
)

func TestNormalizeNoResult(t *testing.T) {
	if v := Normalize(NoResult()); !math.IsNaN(v) {
		t.Fatalf("expected NaN for no result, got %v", v)
	}
}

func TestNormalizeEmptyShapes(t *testing.T) {
	cases := []struct {
		name string
		r    Result
	}{
		{"empty series", SeriesOf(nil)},
		{"all-NaN series", SeriesOf([]float64{math.NaN(), math.NaN()})},
		{"empty table", TableOf(nil, nil)},
		{"all-NaN table", TableOf([]string{"a"}, [][]float64{{math.NaN()}})},
	}
	for _, tc := range cases {
		if v := Normalize(tc.r); !math.IsNaN(v) {
			t.Errorf("%s: expected NaN, got %v", tc.name, v)
		}
	}
}

func TestNormalizeScalarPassthrough(t *testing.T) {
	if v := Normalize(ScalarOf(42.5)); v != 42.5 {
		t.Fatalf("expected 42.5, got %v", v)
	}
	if v := Normalize(ScalarOf(0)); v != 0 {
		t.Fatalf("scalar zero must survive, got %v", v)
	}
}

func TestNormalizeSeriesTrailingValid(t *testing.T) {
	// single non-missing entry at position k; later entries missing
	s := []float64{math.NaN(), 7.25, math.NaN(), math.NaN()}
	if v := Normalize(SeriesOf(s)); v != 7.25 {
		t.Fatalf("expected 7.25, got %v", v)
	}
	// most recent valid wins
	s = []float64{1, 2, 3, math.NaN()}
	if v := Normalize(SeriesOf(s)); v != 3 {
		t.Fatalf("expected 3, got %v", v)
	}
}

func TestNormalizeTableUsesFirstColumnOnly(t *testing.T) {
	r := TableOf(
		[]string{"first", "second"},
		[][]float64{
			{math.NaN(), 10, math.NaN()},
			{99, 99, 99},
		},
	)
	if v := Normalize(r); v != 10 {
		t.Fatalf("expected first column trailing value 10, got %v", v)
	}
}

func TestColumnExtraction(t *testing.T) {
	r := TableOf([]string{"a", "b"}, [][]float64{{1, 2}, {3, 4}})
	if v := Normalize(r.Column(1)); v != 4 {
		t.Fatalf("expected 4 from column 1, got %v", v)
	}
	if got := r.Column(5).Kind(); got != None {
		t.Fatalf("out-of-range column must be None, got %v", got)
	}
	if got := SeriesOf([]float64{1}).Column(0).Kind(); got != None {
		t.Fatalf("column of non-table must be None, got %v", got)
	}
}
