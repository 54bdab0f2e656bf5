package indicator

import "ta-enrich/internal/model"

// Entry is one catalog indicator: an output name, optional sub-field names
// for multi-column results, and the computation itself.
type Entry struct {
	Name    string
	Sub     []string // table column sub-fields; nil for single-valued entries
	Compute func(bars []model.Bar) Result
}

// Catalog returns the fixed indicator catalog in output column order.
// Lookbacks follow the catalog defaults: 14 for range-based volatility,
// 20 for rolling statistics, span 13 for the force index smoothing.
func Catalog() []Entry {
	return []Entry{
		{Name: "atr", Compute: func(b []model.Bar) Result { return ATR(b, 14) }},
		{Name: "std_dev", Compute: func(b []model.Bar) Result { return RollingStd(b, 20) }},
		{Name: "ulcer_index", Compute: func(b []model.Bar) Result { return UlcerIndex(b, 14) }},
		{Name: "price_distance", Compute: func(b []model.Bar) Result { return PriceDistance(b, 20) }},
		{Name: "obv", Compute: OBV},
		{Name: "ad_line", Compute: ADLine},
		{Name: "pvt", Compute: PVT},
		{Name: "force_index", Compute: func(b []model.Bar) Result { return ForceIndex(b, 13) }},
		{Name: "hlc3", Compute: HLC3},
		// typical_price duplicates hlc3 on purpose: downstream consumers
		// rely on both column names existing.
		{Name: "typical_price", Compute: HLC3},
		{Name: "vwap", Compute: VWAP},
		{Name: "volume_close_min", Compute: func(b []model.Bar) Result { return VolumeCloseMin(b, 20) }},
		{Name: "volume_close_max", Compute: func(b []model.Bar) Result { return VolumeCloseMax(b, 20) }},
		{Name: "bbands", Sub: []string{"lower", "middle", "upper", "width"},
			Compute: func(b []model.Bar) Result { return BBands(b, 20, 2.0) }},
	}
}

// Fields returns the flat output field names the catalog produces, with
// multi-column entries split into name_sub fields.
func Fields() []string {
	var out []string
	for _, e := range Catalog() {
		if e.Sub == nil {
			out = append(out, e.Name)
			continue
		}
		for _, s := range e.Sub {
			out = append(out, e.Name+"_"+s)
		}
	}
	return out
}

// safeCompute evaluates one catalog entry, mapping a panic inside the
// computation to a None result so a single broken indicator never fails
// the whole snapshot.
func safeCompute(e Entry, bars []model.Bar) (r Result) {
	defer func() {
		if rec := recover(); rec != nil {
			r = NoResult()
		}
	}()
	return e.Compute(bars)
}
