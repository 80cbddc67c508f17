// Package indicator derives overlay series (moving averages, bands,
// oscillators) from a full price series, independent of the viewport. All
// values are aligned to series indices; positions with insufficient history
// are NaN, never zero and never extrapolated.
package indicator

import (
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Kind is the closed set of supported indicators.
type Kind int

const (
	MA5 Kind = iota
	MA20
	MA60
	MA120
	Volume
	Bollinger
	RSI
	MACD
	Stochastic
)

// AllKinds lists every indicator kind in toolbar order.
var AllKinds = []Kind{MA5, MA20, MA60, MA120, Volume, Bollinger, RSI, MACD, Stochastic}

func (k Kind) String() string {
	switch k {
	case MA5:
		return "ma5"
	case MA20:
		return "ma20"
	case MA60:
		return "ma60"
	case MA120:
		return "ma120"
	case Volume:
		return "volume"
	case Bollinger:
		return "bollinger"
	case RSI:
		return "rsi"
	case MACD:
		return "macd"
	case Stochastic:
		return "stochastic"
	}
	return "unknown"
}

// PriceOverlay reports whether the kind draws on the price axis.
func (k Kind) PriceOverlay() bool {
	switch k {
	case MA5, MA20, MA60, MA120, Bollinger:
		return true
	}
	return false
}

// Oscillator reports whether the kind draws in the bottom strip with its own
// normalized scale.
func (k Kind) Oscillator() bool {
	switch k {
	case RSI, MACD, Stochastic:
		return true
	}
	return false
}

// Setting is the per-kind UI state. Toggling Enabled never discards computed
// series; the engine memoizes on (series version, kind, period).
type Setting struct {
	Enabled bool
	Period  int
	Color   drawing.Color
	Label   string
}

// Config maps each kind to its setting.
type Config map[Kind]Setting

// DefaultConfig returns the stock configuration: MA5/MA20 and volume on,
// everything else off.
func DefaultConfig() Config {
	return Config{
		MA5:        {Enabled: true, Period: 5, Color: drawing.Color{R: 0xf2, G: 0xa6, B: 0x00, A: 0xff}, Label: "MA5"},
		MA20:       {Enabled: true, Period: 20, Color: drawing.Color{R: 0x4d, G: 0x9d, B: 0xe0, A: 0xff}, Label: "MA20"},
		MA60:       {Enabled: false, Period: 60, Color: drawing.Color{R: 0x9b, G: 0x59, B: 0xb6, A: 0xff}, Label: "MA60"},
		MA120:      {Enabled: false, Period: 120, Color: drawing.Color{R: 0x7f, G: 0x8c, B: 0x8d, A: 0xff}, Label: "MA120"},
		Volume:     {Enabled: true, Color: drawing.Color{R: 0x5d, G: 0x6d, B: 0x7e, A: 0xff}, Label: "Volume"},
		Bollinger:  {Enabled: false, Period: 20, Color: drawing.Color{R: 0x16, G: 0xa0, B: 0x85, A: 0xff}, Label: "Bollinger"},
		RSI:        {Enabled: false, Period: 14, Color: drawing.Color{R: 0xe6, G: 0x7e, B: 0x22, A: 0xff}, Label: "RSI"},
		MACD:       {Enabled: false, Period: 26, Color: drawing.Color{R: 0x2e, G: 0xcc, B: 0x71, A: 0xff}, Label: "MACD"},
		Stochastic: {Enabled: false, Period: 14, Color: drawing.Color{R: 0xc0, G: 0x39, B: 0x2b, A: 0xff}, Label: "Stoch"},
	}
}

// OverlaySeries is one derived line, aligned 1:1 with the price series.
type OverlaySeries struct {
	Kind        Kind
	Name        string
	Color       drawing.Color
	Values      []float64 // NaN = undefined (insufficient history)
	DefinedFrom int       // first index with a defined value; len(Values) when none
}

// At returns the value at index i and whether it is defined.
func (o OverlaySeries) At(i int) (float64, bool) {
	if i < 0 || i >= len(o.Values) || math.IsNaN(o.Values[i]) {
		return 0, false
	}
	return o.Values[i], true
}

func undefinedSeries(n int) []float64 {
	vs := make([]float64, n)
	for i := range vs {
		vs[i] = math.NaN()
	}
	return vs
}

func firstDefined(vs []float64) int {
	for i, v := range vs {
		if !math.IsNaN(v) {
			return i
		}
	}
	return len(vs)
}
