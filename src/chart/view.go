package chart

import (
	"github.com/pine1990/StockChartViewer/src/indicator"
	"github.com/pine1990/StockChartViewer/src/series"
)

// View composes the series store, viewport controller, indicator engine and
// event layout into one chart, caching each derived product against the exact
// inputs that produced it. All mutation funnels through View methods so the
// caches never go stale; per-frame work is cache checks plus command
// emission.
type View struct {
	opts *Options

	s      *series.Series
	ctrl   *Controller
	eng    *indicator.Engine
	icfg   indicator.Config
	events []series.DomainEvent
	filter series.TypeFilter

	// placed-event cache, keyed by series version + filter
	placed        []PlacedEvent
	placedVersion uint64
	placedFilter  string
	placedOK      bool

	// scale cache, keyed by viewport + canvas size + series version + placements
	sc     *Scale
	scVP   Viewport
	scW    float64
	scH    float64
	scVer  uint64
	scFilt string
	scOK   bool
}

func NewView(s *series.Series, events []series.DomainEvent, opts *Options) *View {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &View{
		opts:   opts,
		s:      s,
		ctrl:   NewController(s.Len(), opts),
		eng:    indicator.NewEngine(),
		icfg:   indicator.DefaultConfig(),
		events: events,
		filter: series.NewTypeFilter(),
	}
}

// Series returns the current price series.
func (v *View) Series() *series.Series { return v.s }

// Controller exposes the viewport controller for input dispatch.
func (v *View) Controller() *Controller { return v.ctrl }

// Options returns the tuning constants.
func (v *View) Options() *Options { return v.opts }

// IndicatorConfig returns the live indicator settings.
func (v *View) IndicatorConfig() indicator.Config { return v.icfg }

// Filter returns the live event-type filter.
func (v *View) Filter() series.TypeFilter { return v.filter }

// ReplaceSeries swaps in a freshly loaded series. The viewport resets to full
// bounds and every cache keyed on the old version is abandoned.
func (v *View) ReplaceSeries(s *series.Series) {
	v.s = s
	v.ctrl.SetSeriesLen(s.Len())
	v.placedOK = false
	v.scOK = false
}

// SetEvents replaces the domain event set.
func (v *View) SetEvents(events []series.DomainEvent) {
	v.events = events
	v.placedOK = false
	v.scOK = false
}

// SetEventTypeEnabled toggles one event kind in the filter.
func (v *View) SetEventTypeEnabled(t series.EventType, enabled bool) {
	v.filter[t] = enabled
	v.placedOK = false
	v.scOK = false
}

// SetIndicatorEnabled toggles one indicator. Previously computed series stay
// cached in the engine; re-enabling is free.
func (v *View) SetIndicatorEnabled(k indicator.Kind, enabled bool) {
	set := v.icfg[k]
	set.Enabled = enabled
	v.icfg[k] = set
}

// Placed returns the current event placements, recomputing only when the
// series or the filter changed.
func (v *View) Placed() []PlacedEvent {
	key := v.filter.Key()
	if v.placedOK && v.placedVersion == v.s.Version() && v.placedFilter == key {
		return v.placed
	}
	v.placed = PlaceEvents(v.s, v.events, v.filter, v.opts)
	v.placedVersion = v.s.Version()
	v.placedFilter = key
	v.placedOK = true
	return v.placed
}

// Scale returns the coordinate mapper for the given canvas size, recomputing
// bounds only when the viewport, canvas, series or placements changed. A
// resize re-derives coordinates but never resets the viewport.
func (v *View) Scale(w, h float64) *Scale {
	vp := v.ctrl.Viewport()
	key := v.filter.Key()
	if v.scOK && v.scVP == vp && v.scW == w && v.scH == h && v.scVer == v.s.Version() && v.scFilt == key {
		return v.sc
	}
	placed := v.Placed()
	pmin, pmax := PriceBounds(v.s, vp, placed)
	pad := v.opts.Padding
	pad.Bottom += v.opts.VolumeFrac * (h - pad.Top - pad.Bottom)
	v.sc = NewScale(vp, w, h, pad, pmin, pmax)
	v.scVP, v.scW, v.scH, v.scVer, v.scFilt = vp, w, h, v.s.Version(), key
	v.scOK = true
	return v.sc
}

// Frame emits the draw commands for one frame at the given canvas size.
func (v *View) Frame(w, h float64) []Cmd {
	sc := v.Scale(w, h)
	overlays := v.eng.Overlays(v.s, v.icfg)
	oscillators := v.eng.Oscillators(v.s, v.icfg)
	volumeOn := v.icfg[indicator.Volume].Enabled
	return BuildFrame(v.s, sc, overlays, oscillators, v.Placed(), volumeOn, v.opts)
}

// Zoom applies a cursor-anchored zoom step at pixel x on a canvas of the
// given size.
func (v *View) Zoom(x float64, zoomIn bool, w, h float64) {
	v.ctrl.Zoom(x, zoomIn, v.Scale(w, h))
}

// Pan shifts the viewport by delta indices.
func (v *View) Pan(delta int) { v.ctrl.Pan(delta) }

// Reset restores the full-series viewport.
func (v *View) Reset() { v.ctrl.Reset() }

// BeginDrag / UpdateDrag / EndDrag forward range selection. EndDrag reports
// whether the viewport changed.
func (v *View) BeginDrag(x float64)  { v.ctrl.BeginDrag(x) }
func (v *View) UpdateDrag(x float64) { v.ctrl.UpdateDrag(x) }
func (v *View) EndDrag(w, h float64) bool {
	return v.ctrl.EndDrag(v.Scale(w, h))
}

// HitTest resolves a pointer position against the placed event markers.
func (v *View) HitTest(x, y, w, h float64) *PlacedEvent {
	return HitTest(v.Placed(), v.Scale(w, h), x, y, v.opts)
}

// CrosshairInfo describes the session under the pointer for the crosshair
// readout.
type CrosshairInfo struct {
	LocalIndex int
	Index      int
	X          float64 // snapped to the session's pixel column
	Price      float64 // price at the pointer's y
	Point      series.PricePoint
}

// Crosshair resolves the hovered pixel to a visible session. ok is false
// when the pointer is outside the plot area.
func (v *View) Crosshair(x, y, w, h float64) (CrosshairInfo, bool) {
	sc := v.Scale(w, h)
	if x < sc.Pad.Left || x > sc.W-sc.Pad.Right || y < sc.Pad.Top || y > sc.H-v.opts.Padding.Bottom {
		return CrosshairInfo{}, false
	}
	vp := sc.VP
	li := sc.XToIndex(x)
	if li < 0 {
		li = 0
	}
	if li > vp.Size() {
		li = vp.Size()
	}
	gi := vp.Start + li
	if gi > v.s.Len()-1 {
		gi = v.s.Len() - 1
		li = gi - vp.Start
	}
	return CrosshairInfo{
		LocalIndex: li,
		Index:      gi,
		X:          sc.IndexToX(li),
		Price:      sc.YToPrice(y),
		Point:      v.s.At(gi),
	}, true
}
