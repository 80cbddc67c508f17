package indicator

import (
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pine1990/StockChartViewer/src/series"
)

// Engine computes overlay series lazily and memoizes them per
// (series version, kind, period). Disabled kinds are never computed;
// re-enabling a kind reuses the cached result, so toggles are free.
type Engine struct {
	cache map[cacheKey][]OverlaySeries
}

type cacheKey struct {
	version uint64
	kind    Kind
	period  int
}

func NewEngine() *Engine {
	return &Engine{cache: make(map[cacheKey][]OverlaySeries)}
}

// Overlays returns the derived lines for every enabled price-axis kind.
func (e *Engine) Overlays(s *series.Series, cfg Config) []OverlaySeries {
	return e.collect(s, cfg, func(k Kind) bool { return k.PriceOverlay() })
}

// Oscillators returns the derived lines for every enabled oscillator kind.
func (e *Engine) Oscillators(s *series.Series, cfg Config) []OverlaySeries {
	return e.collect(s, cfg, func(k Kind) bool { return k.Oscillator() })
}

func (e *Engine) collect(s *series.Series, cfg Config, want func(Kind) bool) []OverlaySeries {
	var out []OverlaySeries
	for _, k := range AllKinds {
		set, ok := cfg[k]
		if !ok || !set.Enabled || !want(k) {
			continue
		}
		out = append(out, e.compute(s, k, set)...)
	}
	return out
}

func (e *Engine) compute(s *series.Series, k Kind, set Setting) []OverlaySeries {
	key := cacheKey{version: s.Version(), kind: k, period: set.Period}
	if cached, ok := e.cache[key]; ok {
		return cached
	}
	var out []OverlaySeries
	switch k {
	case MA5, MA20, MA60, MA120:
		vs := SMA(s.Closes(), set.Period)
		out = []OverlaySeries{{Kind: k, Name: set.Label, Color: set.Color, Values: vs, DefinedFrom: firstDefined(vs)}}
	case Bollinger:
		mid, upper, lower := bollinger(s.Closes(), set.Period, 2)
		faint := set.Color
		faint.A = 0xa0
		out = []OverlaySeries{
			{Kind: k, Name: set.Label, Color: set.Color, Values: mid, DefinedFrom: firstDefined(mid)},
			{Kind: k, Name: set.Label + " upper", Color: faint, Values: upper, DefinedFrom: firstDefined(upper)},
			{Kind: k, Name: set.Label + " lower", Color: faint, Values: lower, DefinedFrom: firstDefined(lower)},
		}
	case RSI:
		vs := rsi(s.Closes(), set.Period)
		out = []OverlaySeries{{Kind: k, Name: set.Label, Color: set.Color, Values: vs, DefinedFrom: firstDefined(vs)}}
	case MACD:
		line, signal := macd(s.Closes(), 12, 26, 9)
		sigColor := drawing.Color{R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff}
		out = []OverlaySeries{
			{Kind: k, Name: set.Label, Color: set.Color, Values: line, DefinedFrom: firstDefined(line)},
			{Kind: k, Name: set.Label + " signal", Color: sigColor, Values: signal, DefinedFrom: firstDefined(signal)},
		}
	case Stochastic:
		kLine, dLine := stochastic(s.Slice(0, s.Len()-1), set.Period, 3)
		dColor := drawing.Color{R: 0x8e, G: 0x44, B: 0xad, A: 0xff}
		out = []OverlaySeries{
			{Kind: k, Name: set.Label + " %K", Color: set.Color, Values: kLine, DefinedFrom: firstDefined(kLine)},
			{Kind: k, Name: set.Label + " %D", Color: dColor, Values: dLine, DefinedFrom: firstDefined(dLine)},
		}
	case Volume:
		// rendered from raw volumes by the frame builder, nothing derived
	}
	e.cache[key] = out
	return out
}
