package chart

import (
	"fmt"
	"math"
	"testing"

	"github.com/pine1990/StockChartViewer/src/series"
)

func mkSeries(n int) *series.Series {
	pts := make([]series.PricePoint, n)
	for i := range pts {
		c := 70000 + float64(i%40)*250
		pts[i] = series.PricePoint{
			Date:   fmt.Sprintf("2024-%02d-%02d", 1+i/28, 1+i%28),
			Open:   c - 100,
			High:   c + 400,
			Low:    c - 500,
			Close:  c,
			Volume: int64(1000 + i*13),
		}
	}
	return series.New(pts)
}

func testScale(vp Viewport) *Scale {
	return NewScale(vp, 900, 500, Padding{Top: 16, Bottom: 110, Left: 64, Right: 16}, 69000, 81000)
}

func TestIndexToXEndpoints(t *testing.T) {
	for _, vp := range []Viewport{{0, 9}, {5, 117}, {30, 90}} {
		sc := testScale(vp)
		if got := sc.IndexToX(0); got != sc.Pad.Left {
			t.Fatalf("vp %+v: first point at %v, want left edge %v", vp, got, sc.Pad.Left)
		}
		last := vp.Count() - 1
		if got := sc.IndexToX(last); math.Abs(got-(sc.W-sc.Pad.Right)) > 1e-9 {
			t.Fatalf("vp %+v: last point at %v, want right edge %v", vp, got, sc.W-sc.Pad.Right)
		}
	}
}

func TestXToIndexRoundTrips(t *testing.T) {
	sc := testScale(Viewport{10, 109})
	for li := 0; li < 100; li++ {
		if got := sc.XToIndex(sc.IndexToX(li)); got != li {
			t.Fatalf("round trip failed at %d: got %d", li, got)
		}
	}
}

func TestXToIndexDoesNotClamp(t *testing.T) {
	sc := testScale(Viewport{0, 99})
	if got := sc.XToIndex(-200); got >= 0 {
		t.Fatalf("expected negative index for far-left pixel, got %d", got)
	}
	if got := sc.XToIndex(sc.W + 200); got <= 99 {
		t.Fatalf("expected out-of-window index for far-right pixel, got %d", got)
	}
}

func TestSinglePointWindowDegenerates(t *testing.T) {
	sc := testScale(Viewport{4, 4})
	if got := sc.IndexToX(0); got != sc.Pad.Left {
		t.Fatalf("single-point window should map to left padding, got %v", got)
	}
	if got := sc.XToIndex(400); got != 0 {
		t.Fatalf("single-point window should resolve index 0, got %d", got)
	}
}

func TestPriceToYInverted(t *testing.T) {
	sc := testScale(Viewport{0, 50})
	if !(sc.PriceToY(80000) < sc.PriceToY(70000)) {
		t.Fatalf("higher price must map to smaller y")
	}
	if got := sc.PriceToY(sc.PriceMax); math.Abs(got-sc.Pad.Top) > 1e-9 {
		t.Fatalf("max price should sit at top padding, got %v", got)
	}
	if got := sc.PriceToY(sc.PriceMin); math.Abs(got-(sc.H-sc.Pad.Bottom)) > 1e-9 {
		t.Fatalf("min price should sit at bottom of plot, got %v", got)
	}
}

func TestYToPriceInverse(t *testing.T) {
	sc := testScale(Viewport{0, 50})
	for _, p := range []float64{69000, 72345, 81000} {
		if got := sc.YToPrice(sc.PriceToY(p)); math.Abs(got-p) > 1e-6 {
			t.Fatalf("YToPrice inverse drift: %v -> %v", p, got)
		}
	}
}

func TestCandleWidthClamp(t *testing.T) {
	wide := testScale(Viewport{0, 9}) // 10 points over ~820px: would exceed 14
	if got := wide.CandleWidth(); got != 14 {
		t.Fatalf("expected clamp to 14, got %v", got)
	}
	dense := testScale(Viewport{0, 999})
	if got := dense.CandleWidth(); got != 2 {
		t.Fatalf("expected clamp to 2, got %v", got)
	}
}

func TestPriceBoundsCoverEventStacks(t *testing.T) {
	s := mkSeries(30)
	opts := DefaultOptions()
	date := s.At(29).Date
	evs := []series.DomainEvent{
		{ID: "1", Date: date, Type: series.EventNote, Label: "a"},
		{ID: "2", Date: date, Type: series.EventNote, Label: "b"},
		{ID: "3", Date: date, Type: series.EventNote, Label: "c"},
	}
	placed := PlaceEvents(s, evs, series.NewTypeFilter(), opts)
	_, hiWithout := PriceBounds(s, Viewport{0, 29}, nil)
	_, hiWith := PriceBounds(s, Viewport{0, 29}, placed)
	top := s.At(29).Close + 2*opts.StackStep
	if hiWith < top {
		t.Fatalf("bounds %v do not cover stack top %v", hiWith, top)
	}
	if hiWith <= hiWithout {
		t.Fatalf("stacked events should raise the upper bound: %v vs %v", hiWith, hiWithout)
	}
}

func TestPriceBoundsSkipInvalidSessions(t *testing.T) {
	pts := []series.PricePoint{
		{Date: "2024-10-01", Open: 100, High: 110, Low: 95, Close: 105, Volume: 1},
		{Date: "2024-10-02", Open: 100, High: 1e7, Low: -5, Close: 100, Volume: 1}, // malformed
	}
	s := series.New(pts)
	_, hi := PriceBounds(s, Viewport{0, 1}, nil)
	if hi > 200 {
		t.Fatalf("malformed session leaked into bounds: %v", hi)
	}
}

func TestPriceBoundsFlatWindow(t *testing.T) {
	pts := []series.PricePoint{
		{Date: "2024-10-01", Open: 100, High: 100, Low: 100, Close: 100, Volume: 1},
	}
	s := series.New(pts)
	lo, hi := PriceBounds(s, Viewport{0, 0}, nil)
	if hi <= lo {
		t.Fatalf("flat window must widen: [%v,%v]", lo, hi)
	}
}
