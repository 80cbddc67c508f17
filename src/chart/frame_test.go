package chart

import (
	"math"
	"testing"

	"github.com/pine1990/StockChartViewer/src/indicator"
	"github.com/pine1990/StockChartViewer/src/series"
)

func frameFor(t *testing.T, s *series.Series, vp Viewport, overlays []indicator.OverlaySeries, placed []PlacedEvent, volumeOn bool) []Cmd {
	t.Helper()
	opts := DefaultOptions()
	lo, hi := PriceBounds(s, vp, placed)
	pad := opts.Padding
	pad.Bottom += opts.VolumeFrac * (500 - pad.Top - pad.Bottom)
	sc := NewScale(vp, 900, 500, pad, lo, hi)
	return BuildFrame(s, sc, overlays, nil, placed, volumeOn, opts)
}

func countKind(cmds []Cmd, k CmdKind) int {
	n := 0
	for _, c := range cmds {
		if c.Kind == k {
			n++
		}
	}
	return n
}

func TestFrameCandlesPerValidSession(t *testing.T) {
	s := mkSeries(20)
	cmds := frameFor(t, s, Viewport{0, 19}, nil, nil, false)
	// one body rect per session plus the background rect
	if got := countKind(cmds, CmdRect); got != 21 {
		t.Fatalf("rect count = %d, want 21", got)
	}
}

func TestFrameSkipsInvalidSessions(t *testing.T) {
	pts := []series.PricePoint{
		{Date: "2024-10-01", Open: 100, High: 110, Low: 95, Close: 105, Volume: 10},
		{Date: "2024-10-02", Open: 0, High: 0, Low: 0, Close: 0, Volume: 0}, // halted, no data
		{Date: "2024-10-03", Open: 104, High: 112, Low: 100, Close: 101, Volume: 12},
	}
	s := series.New(pts)
	cmds := frameFor(t, s, Viewport{0, 2}, nil, nil, true)
	if got := countKind(cmds, CmdRect); got != 5 { // background + 2 bodies + 2 volume bars
		t.Fatalf("rect count = %d, want 5", got)
	}
}

func TestFrameCandleColors(t *testing.T) {
	opts := DefaultOptions()
	pts := []series.PricePoint{
		{Date: "2024-10-01", Open: 100, High: 110, Low: 95, Close: 108, Volume: 10}, // up
		{Date: "2024-10-02", Open: 108, High: 109, Low: 99, Close: 100, Volume: 10}, // down
	}
	s := series.New(pts)
	cmds := frameFor(t, s, Viewport{0, 1}, nil, nil, false)
	var bodies []Cmd
	for _, c := range cmds {
		if c.Kind == CmdRect && c.Y1 != 0 { // skip the background
			bodies = append(bodies, c)
		}
	}
	if len(bodies) != 2 {
		t.Fatalf("body count = %d", len(bodies))
	}
	if bodies[0].Color != opts.Colors.Up.Color {
		t.Fatalf("bullish session not drawn in the up color")
	}
	if bodies[1].Color != opts.Colors.Down.Color {
		t.Fatalf("bearish session not drawn in the down color")
	}
}

func TestFrameOverlayGapsAtUndefined(t *testing.T) {
	s := mkSeries(30)
	ov := indicator.OverlaySeries{
		Kind:        indicator.MA5,
		Values:      make([]float64, 30),
		DefinedFrom: 4,
	}
	for i := range ov.Values {
		if i < 4 {
			ov.Values[i] = math.NaN()
		} else {
			ov.Values[i] = 70000 + float64(i)*100
		}
	}
	cmds := frameFor(t, s, Viewport{0, 29}, []indicator.OverlaySeries{ov}, nil, false)
	var lines []Cmd
	for _, c := range cmds {
		if c.Kind == CmdPolyline {
			lines = append(lines, c)
		}
	}
	if len(lines) != 1 {
		t.Fatalf("polyline count = %d, want 1", len(lines))
	}
	if got := len(lines[0].Points); got != 26 {
		t.Fatalf("polyline spans %d points, want 26 (undefined prefix skipped)", got)
	}
	// the line starts at the first defined session, never at the origin
	sc := NewScale(Viewport{0, 29}, 900, 500, Padding{Top: 16, Bottom: 110, Left: 64, Right: 16}, 0, 1)
	if lines[0].Points[0].X < sc.IndexToX(4)-1 {
		t.Fatalf("polyline starts at x=%v, before the first defined session", lines[0].Points[0].X)
	}
}

func TestFrameOverlayInteriorGapSplits(t *testing.T) {
	s := mkSeries(12)
	vals := make([]float64, 12)
	for i := range vals {
		vals[i] = 71000
	}
	vals[6] = math.NaN()
	ov := indicator.OverlaySeries{Kind: indicator.MA5, Values: vals}
	cmds := frameFor(t, s, Viewport{0, 11}, []indicator.OverlaySeries{ov}, nil, false)
	if got := countKind(cmds, CmdPolyline); got != 2 {
		t.Fatalf("interior gap should split the line in two, got %d segments", got)
	}
}

func TestFrameVolumeScaling(t *testing.T) {
	pts := []series.PricePoint{
		{Date: "2024-10-01", Open: 100, High: 110, Low: 95, Close: 105, Volume: 500},
		{Date: "2024-10-02", Open: 105, High: 112, Low: 101, Close: 110, Volume: 1000},
	}
	s := series.New(pts)
	cmds := frameFor(t, s, Viewport{0, 1}, nil, nil, true)
	opts := DefaultOptions()
	var bars []Cmd
	for _, c := range cmds {
		if c.Kind == CmdRect && c.Color == opts.Colors.Volume.Color {
			bars = append(bars, c)
		}
	}
	if len(bars) != 2 {
		t.Fatalf("volume bar count = %d", len(bars))
	}
	h0 := bars[0].Y2 - bars[0].Y1
	h1 := bars[1].Y2 - bars[1].Y1
	if math.Abs(h1-2*h0) > 1e-6 {
		t.Fatalf("volume bars not proportional: %v vs %v", h0, h1)
	}
}

func TestFrameGridAndLabels(t *testing.T) {
	s := mkSeries(200)
	cmds := frameFor(t, s, Viewport{0, 199}, nil, nil, false)
	dates := 0
	for _, c := range cmds {
		if c.Kind == CmdText && !c.Right {
			dates++
		}
	}
	if dates == 0 || dates > maxDateLabels {
		t.Fatalf("date label count = %d, want 1..%d", dates, maxDateLabels)
	}
}

func TestPriceGridLevelCount(t *testing.T) {
	for _, tc := range [][2]float64{{69000, 81000}, {0, 1}, {99.5, 100.5}, {100, 1e6}} {
		levels := priceGridLevels(tc[0], tc[1])
		if len(levels) < 2 || len(levels) > 9 {
			t.Fatalf("range %v: %d levels", tc, len(levels))
		}
		for _, l := range levels {
			if l < tc[0]-1e-9 || l > tc[1]+1e-6 {
				t.Fatalf("range %v: level %v outside", tc, l)
			}
		}
	}
}

func TestNiceStep(t *testing.T) {
	cases := map[float64]float64{
		0.7:  1,
		1.3:  2,
		2.2:  2.5,
		3:    5,
		7:    10,
		130:  200,
		2400: 2500,
	}
	for raw, want := range cases {
		if got := niceStep(raw); math.Abs(got-want) > 1e-9 {
			t.Fatalf("niceStep(%v) = %v, want %v", raw, got, want)
		}
	}
}

func TestFrameMarkersOnTop(t *testing.T) {
	s := mkSeries(30)
	opts := DefaultOptions()
	evs := []series.DomainEvent{
		{ID: "1", Date: s.At(15).Date, Type: series.EventNews, Label: "flash"},
		{ID: "2", Date: s.At(40 % 30).Date, Type: series.EventNote, Label: "memo"},
	}
	placed := PlaceEvents(s, evs, series.NewTypeFilter(), opts)
	cmds := frameFor(t, s, Viewport{0, 29}, nil, placed, false)
	if got := countKind(cmds, CmdMarker); got != 2 {
		t.Fatalf("marker count = %d", got)
	}
	if cmds[len(cmds)-1].Kind != CmdMarker {
		t.Fatalf("markers must be the last layer")
	}
}

func TestDateLabelIndices(t *testing.T) {
	if got := dateLabelIndices(5, 8); len(got) != 5 || got[0] != 0 {
		t.Fatalf("small window: %v", got)
	}
	got := dateLabelIndices(200, 8)
	if len(got) > 8 || got[0] != 0 {
		t.Fatalf("dense window: %v", got)
	}
	for i := 1; i < len(got); i++ {
		if got[i] <= got[i-1] {
			t.Fatalf("not increasing: %v", got)
		}
	}
}
