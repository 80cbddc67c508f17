package chart

import (
	"sort"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pine1990/StockChartViewer/src/series"
)

// PlacedEvent is a domain event resolved onto the timeline: anchored to its
// session's close price and vertically offset within its same-date stack.
type PlacedEvent struct {
	series.DomainEvent
	Index       int     // series index of the anchor session
	Close       float64 // close price at the anchor date
	StackOffset float64 // price-space lift above the close
	Color       drawing.Color
}

// StackTop is the marker's anchor price including its stack lift; the price
// bounds use it so stacked markers never clip off-canvas.
func (p PlacedEvent) StackTop() float64 { return p.Close + p.StackOffset }

// PlaceEvents maps events onto the series. Events on non-trading dates are
// dropped (no anchor price). Same-date events stack upward by opts.StackStep
// in a stable total order: date, then type rank, then label, then input
// order — so reloading the same data always yields the same stacks.
func PlaceEvents(s *series.Series, events []series.DomainEvent, filter series.TypeFilter, opts *Options) []PlacedEvent {
	type cand struct {
		ev   series.DomainEvent
		idx  int
		pos  int
	}
	var cs []cand
	for pos, ev := range events {
		if !filter[ev.Type] {
			continue
		}
		idx, ok := s.IndexOfDate(ev.Date)
		if !ok {
			continue
		}
		cs = append(cs, cand{ev: ev, idx: idx, pos: pos})
	}
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.ev.Date != b.ev.Date {
			return a.ev.Date < b.ev.Date
		}
		if a.ev.Type != b.ev.Type {
			return a.ev.Type < b.ev.Type
		}
		if a.ev.Label != b.ev.Label {
			return a.ev.Label < b.ev.Label
		}
		return a.pos < b.pos
	})

	out := make([]PlacedEvent, 0, len(cs))
	prevDate := ""
	stack := 0
	for _, c := range cs {
		if c.ev.Date != prevDate {
			prevDate = c.ev.Date
			stack = 0
		}
		out = append(out, PlacedEvent{
			DomainEvent: c.ev,
			Index:       c.idx,
			Close:       s.At(c.idx).Close,
			StackOffset: float64(stack) * opts.StackStep,
			Color:       opts.Colors.Event(c.ev.Type),
		})
		stack++
	}
	return out
}

// HitTest resolves a pointer position to the nearest placed marker within
// opts.HitRadiusPx, or nil. Only markers inside the viewport participate.
func HitTest(placed []PlacedEvent, sc *Scale, x, y float64, opts *Options) *PlacedEvent {
	r2 := opts.HitRadiusPx * opts.HitRadiusPx
	var best *PlacedEvent
	bestD := r2
	for i := range placed {
		e := &placed[i]
		if !sc.VP.Contains(e.Index) {
			continue
		}
		px := sc.IndexToX(e.Index - sc.VP.Start)
		py := sc.PriceToY(e.StackTop())
		dx, dy := px-x, py-y
		d := dx*dx + dy*dy
		if d <= bestD {
			bestD = d
			best = e
		}
	}
	return best
}
