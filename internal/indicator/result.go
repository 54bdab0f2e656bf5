package indicator

import "math"

// Kind discriminates the shape of an indicator computation outcome.
type Kind int

const (
	// None means the computation produced nothing usable.
	None Kind = iota
	// Scalar is a single bare value.
	Scalar
	// Series is a time-indexed sequence; missing entries are NaN.
	Series
	// Table is a multi-column time-indexed result (banded indicators).
	Table
)

// Result is the outcome of one indicator computation. Indicators return
// structurally different shapes depending on whether they are single-line
// or multi-line (a moving average is one series, a banded indicator a
// table of columns). Modeling the four cases as a tagged variant lets
// Normalize handle all of them without callers special-casing each
// indicator.
type Result struct {
	kind    Kind
	scalar  float64
	series  []float64
	columns []string
	table   [][]float64 // column-major; table[i] belongs to columns[i]
}

// NoResult marks a computation that produced nothing.
func NoResult() Result { return Result{kind: None} }

// ScalarOf wraps a bare value.
func ScalarOf(v float64) Result { return Result{kind: Scalar, scalar: v} }

// SeriesOf wraps a single time-indexed sequence.
func SeriesOf(s []float64) Result { return Result{kind: Series, series: s} }

// TableOf wraps a multi-column result. Columns are ordered; the first
// column is the one Normalize falls back to.
func TableOf(columns []string, cols [][]float64) Result {
	return Result{kind: Table, columns: columns, table: cols}
}

// Kind returns the shape tag of the result.
func (r Result) Kind() Kind { return r.kind }

// Column extracts the i-th column of a table result as a series result,
// so banded indicators can be split into independently named fields.
func (r Result) Column(i int) Result {
	if r.kind != Table || i < 0 || i >= len(r.table) {
		return Result{kind: None}
	}
	return Result{kind: Series, series: r.table[i]}
}

// Normalize reduces a computation outcome to one scalar per indicator:
// the most recent non-missing entry for series (and the first column of
// tables), the value itself for scalars, and NaN when nothing valid
// exists. NaN is the explicit "unavailable" marker throughout the
// pipeline, distinct from zero.
func Normalize(r Result) float64 {
	switch r.kind {
	case Scalar:
		return r.scalar
	case Series:
		return lastValid(r.series)
	case Table:
		if len(r.table) == 0 {
			return math.NaN()
		}
		return lastValid(r.table[0])
	default:
		return math.NaN()
	}
}

func lastValid(s []float64) float64 {
	for i := len(s) - 1; i >= 0; i-- {
		if !math.IsNaN(s[i]) {
			return s[i]
		}
	}
	return math.NaN()
}
