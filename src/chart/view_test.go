package chart

import (
	"testing"

	"github.com/pine1990/StockChartViewer/src/indicator"
	"github.com/pine1990/StockChartViewer/src/series"
)

func testView(n int) *View {
	s := mkSeries(n)
	evs := []series.DomainEvent{
		{ID: "1", Date: s.At(n / 2).Date, Type: series.EventNote, Label: "memo"},
		{ID: "2", Date: s.At(n / 2).Date, Type: series.EventNews, Label: "flash"},
	}
	return NewView(s, evs, nil)
}

func TestPlacedMemoized(t *testing.T) {
	v := testView(40)
	p1 := v.Placed()
	p2 := v.Placed()
	if len(p1) == 0 || &p1[0] != &p2[0] {
		t.Fatalf("repeated Placed() should return the cached slice")
	}
}

func TestPlacedRecomputesOnFilterChange(t *testing.T) {
	v := testView(40)
	if got := len(v.Placed()); got != 2 {
		t.Fatalf("placed = %d, want 2", got)
	}
	v.SetEventTypeEnabled(series.EventNews, false)
	if got := len(v.Placed()); got != 1 {
		t.Fatalf("filter change not reflected: %d placements", got)
	}
	v.SetEventTypeEnabled(series.EventNews, true)
	if got := len(v.Placed()); got != 2 {
		t.Fatalf("re-enable not reflected: %d placements", got)
	}
}

func TestPlacedRecomputesOnSeriesReplace(t *testing.T) {
	v := testView(40)
	v.Placed()
	s2 := mkSeries(10) // the old anchor date no longer trades
	v.ReplaceSeries(s2)
	for _, p := range v.Placed() {
		if _, ok := s2.IndexOfDate(p.Date); !ok {
			t.Fatalf("stale placement survived the reload: %+v", p)
		}
	}
}

func TestScaleMemoized(t *testing.T) {
	v := testView(40)
	s1 := v.Scale(900, 500)
	s2 := v.Scale(900, 500)
	if s1 != s2 {
		t.Fatalf("same inputs should return the cached scale")
	}
}

func TestScaleRecomputesOnResize(t *testing.T) {
	v := testView(40)
	vp := v.Controller().Viewport()
	s1 := v.Scale(900, 500)
	s2 := v.Scale(1200, 700)
	if s1 == s2 {
		t.Fatalf("resize should rebuild the scale")
	}
	if s2.W != 1200 || s2.H != 700 {
		t.Fatalf("scale kept the old canvas: %vx%v", s2.W, s2.H)
	}
	if v.Controller().Viewport() != vp {
		t.Fatalf("resize reset the viewport: %+v", v.Controller().Viewport())
	}
}

func TestScaleRecomputesOnZoom(t *testing.T) {
	v := testView(120)
	s1 := v.Scale(900, 500)
	v.Zoom(450, true, 900, 500)
	s2 := v.Scale(900, 500)
	if s1 == s2 {
		t.Fatalf("zoom should invalidate the scale")
	}
	if s2.VP == s1.VP {
		t.Fatalf("viewport unchanged after zoom")
	}
}

func TestReplaceSeriesResetsViewport(t *testing.T) {
	v := testView(120)
	v.Zoom(450, true, 900, 500)
	v.Pan(10)
	v.ReplaceSeries(mkSeries(50))
	if got := v.Controller().Viewport(); got != (Viewport{0, 49}) {
		t.Fatalf("viewport after replace = %+v", got)
	}
	// the frame must come out consistent immediately, no stale scale
	if cmds := v.Frame(900, 500); len(cmds) == 0 {
		t.Fatalf("empty frame after replace")
	}
}

func TestIndicatorToggleReflectedInFrame(t *testing.T) {
	v := testView(120)
	count := func() int {
		n := 0
		for _, c := range v.Frame(900, 500) {
			if c.Kind == CmdPolyline {
				n++
			}
		}
		return n
	}
	base := count()
	v.SetIndicatorEnabled(indicator.MA60, true)
	if count() <= base {
		t.Fatalf("enabling an overlay added no polylines")
	}
	v.SetIndicatorEnabled(indicator.MA60, false)
	if count() != base {
		t.Fatalf("disabling an overlay did not restore the frame")
	}
}

func TestCrosshairSnapsToSession(t *testing.T) {
	v := testView(40)
	sc := v.Scale(900, 500)
	x := sc.IndexToX(7) + 2 // slightly off the column
	info, ok := v.Crosshair(x, 200, 900, 500)
	if !ok {
		t.Fatalf("crosshair missed the plot area")
	}
	if info.Index != 7 || info.LocalIndex != 7 {
		t.Fatalf("snapped to %d/%d, want 7", info.Index, info.LocalIndex)
	}
	if info.X != sc.IndexToX(7) {
		t.Fatalf("crosshair x %v not snapped to the column %v", info.X, sc.IndexToX(7))
	}
	if info.Point.Date != v.Series().At(7).Date {
		t.Fatalf("readout shows the wrong session: %s", info.Point.Date)
	}
}

func TestCrosshairOutsidePlot(t *testing.T) {
	v := testView(40)
	for _, p := range [][2]float64{{10, 200}, {890, 200}, {400, 5}, {400, 495}} {
		if _, ok := v.Crosshair(p[0], p[1], 900, 500); ok {
			t.Fatalf("crosshair active outside the plot at %v", p)
		}
	}
}

func TestHitTestThroughView(t *testing.T) {
	v := testView(40)
	sc := v.Scale(900, 500)
	placed := v.Placed()
	if len(placed) != 2 {
		t.Fatalf("placed = %d", len(placed))
	}
	e := placed[1] // the stacked marker
	x := sc.IndexToX(e.Index - sc.VP.Start)
	y := sc.PriceToY(e.StackTop())
	got := v.HitTest(x+2, y+2, 900, 500)
	if got == nil || got.ID != e.ID {
		t.Fatalf("hit = %+v, want %s", got, e.ID)
	}
	if v.HitTest(x, y+100, 900, 500) != nil {
		t.Fatalf("hit far below the marker")
	}
}

func TestFrameSinglePointSeries(t *testing.T) {
	v := NewView(mkSeries(1), nil, nil)
	cmds := v.Frame(900, 500)
	// background plus the lone candle body at the left plot edge
	if got := countKind(cmds, CmdRect); got < 2 {
		t.Fatalf("single-session frame missing its candle: %d rects", got)
	}
	dates := 0
	for _, c := range cmds {
		if c.Kind == CmdText && !c.Right {
			dates++
		}
	}
	if dates != 1 {
		t.Fatalf("single-session frame should label exactly its one session, got %d", dates)
	}
}

func TestFrameEmptySeries(t *testing.T) {
	v := NewView(series.New(nil), nil, nil)
	cmds := v.Frame(900, 500)
	if len(cmds) == 0 {
		t.Fatalf("empty series should still emit the background")
	}
	for _, c := range cmds {
		if c.Kind == CmdMarker || c.Kind == CmdPolyline {
			t.Fatalf("empty series emitted %v content", c.Kind)
		}
	}
}

func TestDegenerateSeriesSurvivesInput(t *testing.T) {
	v := NewView(mkSeries(1), nil, nil)
	v.Zoom(450, true, 900, 500)
	v.Zoom(450, false, 900, 500)
	v.Pan(5)
	v.BeginDrag(100)
	v.UpdateDrag(700)
	v.EndDrag(900, 500)
	if cmds := v.Frame(900, 500); len(cmds) == 0 {
		t.Fatalf("frame lost after input on a one-session series")
	}
	v.ReplaceSeries(series.New(nil))
	if cmds := v.Frame(900, 500); len(cmds) == 0 {
		t.Fatalf("frame lost after replacing with an empty series")
	}
}

func TestEndDragThroughView(t *testing.T) {
	v := testView(120)
	sc := v.Scale(900, 500)
	v.BeginDrag(sc.IndexToX(30))
	v.UpdateDrag(sc.IndexToX(90))
	if !v.EndDrag(900, 500) {
		t.Fatalf("selection did not apply")
	}
	if got := v.Controller().Viewport(); got != (Viewport{30, 90}) {
		t.Fatalf("selected %+v", got)
	}
}
