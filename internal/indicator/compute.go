package indicator

import (
	"math"

	"ta-enrich/internal/model"
)

func closes(bars []model.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

func volumeClose(bars []model.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = float64(b.Volume) * b.Close
	}
	return out
}

func nanSeries(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// smaSeries computes a rolling simple moving average; entries before the
// window is full are NaN.
func smaSeries(values []float64, window int) []float64 {
	out := nanSeries(len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// stdSeries computes a rolling sample standard deviation.
func stdSeries(values []float64, window int) []float64 {
	out := nanSeries(len(values))
	for i := window - 1; i < len(values); i++ {
		mean := 0.0
		for j := i - window + 1; j <= i; j++ {
			mean += values[j]
		}
		mean /= float64(window)
		var ss float64
		for j := i - window + 1; j <= i; j++ {
			d := values[j] - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(window-1))
	}
	return out
}

// ATR returns the Wilder-smoothed average true range series.
func ATR(bars []model.Bar, length int) Result {
	if length <= 0 || len(bars) < length {
		return NoResult()
	}
	tr := make([]float64, len(bars))
	tr[0] = bars[0].High - bars[0].Low
	for i := 1; i < len(bars); i++ {
		hl := bars[i].High - bars[i].Low
		hc := math.Abs(bars[i].High - bars[i-1].Close)
		lc := math.Abs(bars[i].Low - bars[i-1].Close)
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	out := nanSeries(len(bars))
	sum := 0.0
	for i := 0; i < length; i++ {
		sum += tr[i]
	}
	out[length-1] = sum / float64(length)
	for i := length; i < len(bars); i++ {
		out[i] = (out[i-1]*float64(length-1) + tr[i]) / float64(length)
	}
	return SeriesOf(out)
}

// RollingStd returns the rolling sample standard deviation of close prices.
func RollingStd(bars []model.Bar, window int) Result {
	cl := closes(bars)
	if window <= 1 || len(cl) < window {
		return NoResult()
	}
	return SeriesOf(stdSeries(cl, window))
}

// UlcerIndex returns the root-mean-square of a rolling window of squared
// percentage drawdowns from the running maximum close. A monotonically
// rising series has no drawdown, so the index stays at zero.
func UlcerIndex(bars []model.Bar, window int) Result {
	if window <= 0 || len(bars) < window {
		return NoResult()
	}
	dd2 := make([]float64, len(bars))
	maxClose := math.Inf(-1)
	for i, b := range bars {
		if b.Close > maxClose {
			maxClose = b.Close
		}
		dd := (b.Close - maxClose) / maxClose * 100
		dd2[i] = dd * dd
	}
	out := nanSeries(len(bars))
	for i := window - 1; i < len(bars); i++ {
		sum := 0.0
		for j := i - window + 1; j <= i; j++ {
			sum += dd2[j]
		}
		out[i] = math.Sqrt(sum / float64(window))
	}
	return SeriesOf(out)
}

// PriceDistance returns the percentage distance of close from its
// window-long simple moving average.
func PriceDistance(bars []model.Bar, window int) Result {
	cl := closes(bars)
	if window <= 0 || len(cl) < window {
		return NoResult()
	}
	sma := smaSeries(cl, window)
	out := nanSeries(len(cl))
	for i := range cl {
		if math.IsNaN(sma[i]) || sma[i] == 0 {
			continue
		}
		out[i] = (cl[i] - sma[i]) / sma[i] * 100
	}
	return SeriesOf(out)
}

// OBV returns the cumulative on-balance volume series.
func OBV(bars []model.Bar) Result {
	if len(bars) == 0 {
		return NoResult()
	}
	out := make([]float64, len(bars))
	out[0] = float64(bars[0].Volume)
	for i := 1; i < len(bars); i++ {
		switch {
		case bars[i].Close > bars[i-1].Close:
			out[i] = out[i-1] + float64(bars[i].Volume)
		case bars[i].Close < bars[i-1].Close:
			out[i] = out[i-1] - float64(bars[i].Volume)
		default:
			out[i] = out[i-1]
		}
	}
	return SeriesOf(out)
}

// ADLine returns the cumulative accumulation/distribution line.
func ADLine(bars []model.Bar) Result {
	if len(bars) == 0 {
		return NoResult()
	}
	out := make([]float64, len(bars))
	cum := 0.0
	for i, b := range bars {
		rng := b.High - b.Low
		if rng != 0 {
			mfm := ((b.Close - b.Low) - (b.High - b.Close)) / rng
			cum += mfm * float64(b.Volume)
		}
		out[i] = cum
	}
	return SeriesOf(out)
}

// PVT returns the cumulative price-volume trend series. The first entry is
// NaN because there is no prior close to diff against.
func PVT(bars []model.Bar) Result {
	if len(bars) < 2 {
		return NoResult()
	}
	out := nanSeries(len(bars))
	cum := 0.0
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		if prev != 0 {
			cum += (bars[i].Close - prev) / prev * float64(bars[i].Volume)
		}
		out[i] = cum
	}
	return SeriesOf(out)
}

// ForceIndex returns an exponentially weighted smoothing (given span) of
// close-to-close change times volume.
func ForceIndex(bars []model.Bar, span int) Result {
	if span <= 0 || len(bars) < 2 {
		return NoResult()
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out := nanSeries(len(bars))
	var num, den float64
	for i := 1; i < len(bars); i++ {
		fi := (bars[i].Close - bars[i-1].Close) * float64(bars[i].Volume)
		num = fi + (1-alpha)*num
		den = 1 + (1-alpha)*den
		out[i] = num / den
	}
	return SeriesOf(out)
}

// HLC3 returns the (high+low+close)/3 typical price series.
func HLC3(bars []model.Bar) Result {
	if len(bars) == 0 {
		return NoResult()
	}
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = (b.High + b.Low + b.Close) / 3
	}
	return SeriesOf(out)
}

// VWAP returns the cumulative volume-weighted average price over the
// window, using the typical price per bar.
func VWAP(bars []model.Bar) Result {
	if len(bars) == 0 {
		return NoResult()
	}
	out := nanSeries(len(bars))
	var pv, vol float64
	for i, b := range bars {
		tp := (b.High + b.Low + b.Close) / 3
		pv += tp * float64(b.Volume)
		vol += float64(b.Volume)
		if vol != 0 {
			out[i] = pv / vol
		}
	}
	return SeriesOf(out)
}

// VolumeCloseMin returns the rolling minimum of volume times close.
func VolumeCloseMin(bars []model.Bar, window int) Result {
	vc := volumeClose(bars)
	if window <= 0 || len(vc) < window {
		return NoResult()
	}
	out := nanSeries(len(vc))
	for i := window - 1; i < len(vc); i++ {
		m := vc[i-window+1]
		for j := i - window + 2; j <= i; j++ {
			if vc[j] < m {
				m = vc[j]
			}
		}
		out[i] = m
	}
	return SeriesOf(out)
}

// VolumeCloseMax returns the rolling maximum of volume times close.
func VolumeCloseMax(bars []model.Bar, window int) Result {
	vc := volumeClose(bars)
	if window <= 0 || len(vc) < window {
		return NoResult()
	}
	out := nanSeries(len(vc))
	for i := window - 1; i < len(vc); i++ {
		m := vc[i-window+1]
		for j := i - window + 2; j <= i; j++ {
			if vc[j] > m {
				m = vc[j]
			}
		}
		out[i] = m
	}
	return SeriesOf(out)
}

// BBands returns a banded table with lower, middle, upper and width
// columns over the given window and multiplier.
func BBands(bars []model.Bar, window int, mult float64) Result {
	cl := closes(bars)
	if window <= 1 || len(cl) < window {
		return NoResult()
	}
	mid := smaSeries(cl, window)
	sd := stdSeries(cl, window)
	lower := nanSeries(len(cl))
	upper := nanSeries(len(cl))
	width := nanSeries(len(cl))
	for i := range cl {
		if math.IsNaN(mid[i]) || math.IsNaN(sd[i]) {
			continue
		}
		upper[i] = mid[i] + mult*sd[i]
		lower[i] = mid[i] - mult*sd[i]
		if mid[i] != 0 {
			width[i] = (upper[i] - lower[i]) / mid[i] * 100
		}
	}
	return TableOf(
		[]string{"lower", "middle", "upper", "width"},
		[][]float64{lower, mid, upper, width},
	)
}
