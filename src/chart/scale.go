package chart

import (
	"math"

	"github.com/pine1990/StockChartViewer/src/series"
)

// Viewport is the contiguous inclusive index range [Start, End] of the price
// series currently rendered.
type Viewport struct {
	Start int
	End   int
}

// Size is the index span End-Start.
func (v Viewport) Size() int { return v.End - v.Start }

// Count is the number of visible sessions.
func (v Viewport) Count() int { return v.End - v.Start + 1 }

// Contains reports whether global index i is visible.
func (v Viewport) Contains(i int) bool { return i >= v.Start && i <= v.End }

// Scale maps between data coordinates (local visible index, price) and pixel
// coordinates for one (viewport, canvas, price-bounds) combination. It is a
// pure value: rebuild it whenever any of those inputs change.
type Scale struct {
	VP       Viewport
	W, H     float64
	Pad      Padding // Bottom includes the volume/oscillator strip
	PriceMin float64
	PriceMax float64
}

func NewScale(vp Viewport, w, h float64, pad Padding, priceMin, priceMax float64) *Scale {
	if priceMax <= priceMin {
		priceMax = priceMin + 1
	}
	return &Scale{VP: vp, W: w, H: h, Pad: pad, PriceMin: priceMin, PriceMax: priceMax}
}

// PlotW is the horizontal extent of the plot area.
func (s *Scale) PlotW() float64 { return s.W - s.Pad.Left - s.Pad.Right }

// PlotH is the vertical extent of the price plot area.
func (s *Scale) PlotH() float64 { return s.H - s.Pad.Top - s.Pad.Bottom }

// PriceToY maps a price to a pixel row; higher prices map to smaller y.
func (s *Scale) PriceToY(price float64) float64 {
	return s.Pad.Top + (s.PriceMax-price)/(s.PriceMax-s.PriceMin)*s.PlotH()
}

// YToPrice is the inverse of PriceToY.
func (s *Scale) YToPrice(y float64) float64 {
	h := s.PlotH()
	if h <= 0 {
		return s.PriceMin
	}
	return s.PriceMax - (y-s.Pad.Top)/h*(s.PriceMax-s.PriceMin)
}

// IndexToX maps a local visible index to a pixel column. The first visible
// point sits on the left plot edge and the last on the right plot edge; a
// single-point window degenerates to the left edge.
func (s *Scale) IndexToX(local int) float64 {
	n := s.VP.Count()
	if n <= 1 {
		return s.Pad.Left
	}
	return s.Pad.Left + float64(local)/float64(n-1)*s.PlotW()
}

// XToIndex is the inverse of IndexToX, rounded to the nearest local index.
// It does NOT clamp; callers clamp to the window they care about.
func (s *Scale) XToIndex(x float64) int {
	n := s.VP.Count()
	if n <= 1 {
		return 0
	}
	w := s.PlotW()
	if w <= 0 {
		return 0
	}
	return int(math.Round((x - s.Pad.Left) / w * float64(n-1)))
}

// CandleWidth is the candle body width: 70% of the per-session slot, clamped
// to [2, 14] px for readability.
func (s *Scale) CandleWidth() float64 {
	n := s.VP.Count()
	if n < 1 {
		n = 1
	}
	w := s.PlotW() / float64(n) * 0.7
	if w < 2 {
		w = 2
	}
	if w > 14 {
		w = 14
	}
	return w
}

// PriceBounds computes the visible price range: [min(low)-margin,
// max(high, highest event stack top)+margin] so stacked markers never clip.
// Invalid sessions are ignored. The margin is 5% of the raw span; a flat
// window is widened by one unit each side.
func PriceBounds(s *series.Series, vp Viewport, placed []PlacedEvent) (float64, float64) {
	lo := math.MaxFloat64
	hi := -math.MaxFloat64
	for _, p := range s.Slice(vp.Start, vp.End) {
		if !p.Valid() {
			continue
		}
		if p.Low < lo {
			lo = p.Low
		}
		if p.High > hi {
			hi = p.High
		}
	}
	if lo == math.MaxFloat64 {
		// nothing valid in the window
		return 0, 1
	}
	for _, e := range placed {
		if !vp.Contains(e.Index) {
			continue
		}
		if top := e.StackTop(); top > hi {
			hi = top
		}
	}
	span := hi - lo
	if span <= 0 {
		return lo - 1, hi + 1
	}
	margin := span * 0.05
	return lo - margin, hi + margin
}
