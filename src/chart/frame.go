package chart

import (
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pine1990/StockChartViewer/src/indicator"
	"github.com/pine1990/StockChartViewer/src/series"
)

// CmdKind is the closed set of draw primitives a frame can emit.
type CmdKind int

const (
	CmdRect CmdKind = iota
	CmdLine
	CmdPolyline
	CmdText
	CmdMarker
)

// Point is a pixel coordinate.
type Point struct {
	X, Y float64
}

// Cmd is one draw command. The renderer walks the frame in order; later
// commands paint over earlier ones.
type Cmd struct {
	Kind   CmdKind
	X1, Y1 float64 // line start / rect min / text baseline / marker center
	X2, Y2 float64 // line end / rect max
	Points []Point // polyline vertices
	Color  drawing.Color
	Fill   bool
	Width  float64 // stroke width; 0 means 1
	Text   string
	Right  bool // right-align text at X1
	Marker *PlacedEvent
}

const maxDateLabels = 8

// BuildFrame projects the chart state into draw commands, in layer order:
// grid, axis labels, candles, price overlays, volume bars, oscillators,
// event markers. It performs no allocation-heavy derivation; everything
// expensive arrives precomputed (overlays, placements, scale).
func BuildFrame(s *series.Series, sc *Scale, overlays, oscillators []indicator.OverlaySeries, placed []PlacedEvent, volumeOn bool, opts *Options) []Cmd {
	var cmds []Cmd
	vp := sc.VP
	visible := s.Slice(vp.Start, vp.End)

	cmds = append(cmds, Cmd{Kind: CmdRect, X1: 0, Y1: 0, X2: sc.W, Y2: sc.H, Color: opts.Colors.Background.Color, Fill: true})

	// horizontal gridlines at nice rounded price levels
	for _, level := range priceGridLevels(sc.PriceMin, sc.PriceMax) {
		y := sc.PriceToY(level)
		cmds = append(cmds,
			Cmd{Kind: CmdLine, X1: sc.Pad.Left, Y1: y, X2: sc.W - sc.Pad.Right, Y2: y, Color: opts.Colors.Grid.Color},
			Cmd{Kind: CmdText, X1: sc.Pad.Left - 6, Y1: y, Text: formatPrice(level), Color: opts.Colors.Axis.Color, Right: true},
		)
	}

	// vertical gridlines under date labels, sampled evenly by index; a
	// degenerate series yields fewer sessions than the window can hold, so
	// sample what is actually visible
	for _, li := range dateLabelIndices(len(visible), maxDateLabels) {
		x := sc.IndexToX(li)
		cmds = append(cmds,
			Cmd{Kind: CmdLine, X1: x, Y1: sc.Pad.Top, X2: x, Y2: sc.H - sc.Pad.Bottom, Color: opts.Colors.Grid.Color},
			Cmd{Kind: CmdText, X1: x, Y1: sc.H - sc.Pad.Bottom + 14, Text: visible[li].Date, Color: opts.Colors.Axis.Color},
		)
	}

	// candles: wick then body; malformed sessions are skipped, not drawn wrong
	half := sc.CandleWidth() / 2
	for li, p := range visible {
		if !p.Valid() {
			continue
		}
		x := sc.IndexToX(li)
		col := opts.Colors.Down.Color
		if p.Bullish() {
			col = opts.Colors.Up.Color
		}
		cmds = append(cmds, Cmd{Kind: CmdLine, X1: x, Y1: sc.PriceToY(p.High), X2: x, Y2: sc.PriceToY(p.Low), Color: col})
		top, bot := p.Open, p.Close
		if bot > top {
			top, bot = bot, top
		}
		y1 := sc.PriceToY(top)
		y2 := sc.PriceToY(bot)
		if y2-y1 < 1 {
			y2 = y1 + 1 // doji bodies stay visible
		}
		cmds = append(cmds, Cmd{Kind: CmdRect, X1: x - half, Y1: y1, X2: x + half, Y2: y2, Color: col, Fill: true})
	}

	// moving average / band polylines; the undefined prefix yields a gap,
	// never a line to the origin
	for _, ov := range overlays {
		cmds = appendPolylines(cmds, ov, sc, func(v float64) float64 { return sc.PriceToY(v) })
	}

	stripTop, stripH := stripGeometry(sc, opts)
	if volumeOn && stripH > 0 {
		maxVol := int64(0)
		for _, p := range visible {
			if p.Valid() && p.Volume > maxVol {
				maxVol = p.Volume
			}
		}
		if maxVol > 0 {
			for li, p := range visible {
				if !p.Valid() || p.Volume <= 0 {
					continue
				}
				x := sc.IndexToX(li)
				h := float64(p.Volume) / float64(maxVol) * stripH * 0.9
				cmds = append(cmds, Cmd{
					Kind: CmdRect,
					X1:   x - half, Y1: stripTop + stripH - h,
					X2: x + half, Y2: stripTop + stripH,
					Color: opts.Colors.Volume.Color, Fill: true,
				})
			}
		}
	}

	// oscillators share the bottom strip, each normalized to it
	for _, ov := range oscillators {
		lo, hi := oscillatorRange(ov, vp)
		if hi <= lo {
			continue
		}
		toY := func(v float64) float64 {
			return stripTop + (hi-v)/(hi-lo)*stripH
		}
		cmds = appendPolylines(cmds, ov, sc, toY)
	}

	// event markers last so they sit above everything
	for i := range placed {
		e := &placed[i]
		if !vp.Contains(e.Index) {
			continue
		}
		cmds = append(cmds, Cmd{
			Kind:   CmdMarker,
			X1:     sc.IndexToX(e.Index - vp.Start),
			Y1:     sc.PriceToY(e.StackTop()),
			Color:  e.Color,
			Marker: e,
		})
	}
	return cmds
}

// appendPolylines emits an overlay as one or more polylines, broken at
// undefined values.
func appendPolylines(cmds []Cmd, ov indicator.OverlaySeries, sc *Scale, toY func(float64) float64) []Cmd {
	vp := sc.VP
	var run []Point
	flush := func() {
		if len(run) >= 2 {
			cmds = append(cmds, Cmd{Kind: CmdPolyline, Points: run, Color: ov.Color, Width: 1.5})
		}
		run = nil
	}
	for li := 0; li < vp.Count(); li++ {
		v, ok := ov.At(vp.Start + li)
		if !ok {
			flush()
			continue
		}
		run = append(run, Point{X: sc.IndexToX(li), Y: toY(v)})
	}
	flush()
	return cmds
}

// stripGeometry returns the top and height of the bottom volume/oscillator
// strip. Scale padding already reserves it below the price plot.
func stripGeometry(sc *Scale, opts *Options) (float64, float64) {
	stripH := opts.VolumeFrac * (sc.H - sc.Pad.Top - opts.Padding.Bottom)
	return sc.H - opts.Padding.Bottom - stripH, stripH
}

// oscillatorRange picks the normalization bounds for an oscillator: fixed
// 0..100 for RSI/Stochastic, visible min/max for MACD.
func oscillatorRange(ov indicator.OverlaySeries, vp Viewport) (float64, float64) {
	if ov.Kind == indicator.RSI || ov.Kind == indicator.Stochastic {
		return 0, 100
	}
	lo := math.MaxFloat64
	hi := -math.MaxFloat64
	for i := vp.Start; i <= vp.End; i++ {
		if v, ok := ov.At(i); ok {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	if lo == math.MaxFloat64 {
		return 0, 0
	}
	return lo, hi
}

// priceGridLevels returns 5-6 rounded price levels inside [min,max], stepped
// by the usual 1/2/2.5/5 pattern.
func priceGridLevels(min, max float64) []float64 {
	span := max - min
	if span <= 0 {
		return nil
	}
	step := niceStep(span / 5)
	start := math.Ceil(min/step) * step
	var out []float64
	for v := start; v <= max+step*1e-9; v += step {
		out = append(out, v)
		if len(out) > 8 {
			break
		}
	}
	return out
}

// niceStep rounds a raw step up to the nearest 1/2/2.5/5 * 10^k value.
func niceStep(raw float64) float64 {
	if raw <= 0 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 2.5, 5, 10} {
		if raw <= m*mag {
			return m * mag
		}
	}
	return 10 * mag
}

// dateLabelIndices samples up to max local indices, evenly spaced, always
// including the first visible session.
func dateLabelIndices(count, max int) []int {
	if count <= 0 {
		return nil
	}
	if count <= max {
		out := make([]int, count)
		for i := range out {
			out[i] = i
		}
		return out
	}
	step := (count + max - 1) / max
	var out []int
	for i := 0; i < count; i += step {
		out = append(out, i)
	}
	return out
}

func formatPrice(v float64) string {
	av := math.Abs(v)
	switch {
	case av >= 100:
		return strconv.FormatInt(int64(math.Round(v)), 10)
	case av >= 10:
		return strconv.FormatFloat(v, 'f', 1, 64)
	default:
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
}
