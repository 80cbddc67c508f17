package main

import (
	"strings"
	"testing"
	"time"

	"github.com/pine1990/StockChartViewer/src/chart"
	"github.com/pine1990/StockChartViewer/src/series"
)

func TestTruncatePath(t *testing.T) {
	if got := truncatePath("/short/path.jsonl", 60); got != "/short/path.jsonl" {
		t.Fatalf("short path changed: %q", got)
	}
	long := "/very/long/directory/structure/that/keeps/going/and/going/prices.jsonl"
	got := truncatePath(long, 40)
	if len(got) > 44 {
		t.Fatalf("truncated path still long: %q (%d)", got, len(got))
	}
	if !strings.HasSuffix(got, "prices.jsonl") {
		t.Fatalf("base name lost: %q", got)
	}
}

func TestDemoSeriesDeterministic(t *testing.T) {
	a := demoSeries()
	b := demoSeries()
	if a.Len() != 250 || b.Len() != 250 {
		t.Fatalf("demo lengths: %d, %d", a.Len(), b.Len())
	}
	for i := 0; i < a.Len(); i++ {
		if a.At(i) != b.At(i) {
			t.Fatalf("demo series not deterministic at %d: %+v vs %+v", i, a.At(i), b.At(i))
		}
	}
}

func TestDemoSeriesValidSessions(t *testing.T) {
	s := demoSeries()
	for i := 0; i < s.Len(); i++ {
		p := s.At(i)
		if !p.Valid() {
			t.Fatalf("demo session %d invalid: %+v", i, p)
		}
		d, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			t.Fatalf("bad demo date %q: %v", p.Date, err)
		}
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Fatalf("demo session on a weekend: %s", p.Date)
		}
	}
}

func TestDemoEventsAnchorOnTradingDates(t *testing.T) {
	s := demoSeries()
	for _, ev := range demoEvents(s) {
		if _, ok := s.IndexOfDate(ev.Date); !ok {
			t.Fatalf("demo event %s on non-trading date %s", ev.ID, ev.Date)
		}
	}
}

func TestCrosshairText(t *testing.T) {
	info := chart.CrosshairInfo{
		Point: series.PricePoint{
			Date: "2024-03-15", Open: 71500, High: 72400, Low: 70900, Close: 72100, Volume: 1234567,
		},
	}
	got := crosshairText(info)
	for _, want := range []string{"2024-03-15", "71,500", "72,400", "70,900", "72,100", "1,234,567"} {
		if !strings.Contains(got, want) {
			t.Fatalf("readout missing %q:\n%s", want, got)
		}
	}
}

func TestRasterizeSmoke(t *testing.T) {
	opts := chart.DefaultOptions()
	view := chart.NewView(demoSeries(), demoEvents(demoSeries()), opts)
	img, err := rasterize(view.Frame(800, 480), 800, 480, opts)
	if err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 800 || b.Dy() != 480 {
		t.Fatalf("image size %dx%d", b.Dx(), b.Dy())
	}
}

func TestRasterizeRejectsBadCanvas(t *testing.T) {
	if _, err := rasterize(nil, 0, 100, chart.DefaultOptions()); err == nil {
		t.Fatalf("accepted zero-width canvas")
	}
}

func TestBlankSize(t *testing.T) {
	img := blank(120, 40)
	b := img.Bounds()
	if b.Dx() != 120 || b.Dy() != 40 {
		t.Fatalf("blank size %dx%d", b.Dx(), b.Dy())
	}
}

func TestDrawHintKeepsBounds(t *testing.T) {
	img := drawHint(blank(300, 100), "sample hint")
	b := img.Bounds()
	if b.Dx() != 300 || b.Dy() != 100 {
		t.Fatalf("hint changed bounds: %dx%d", b.Dx(), b.Dy())
	}
	if drawHint(nil, "x") != nil {
		t.Fatalf("nil image should pass through")
	}
	base := blank(50, 50)
	if got := drawHint(base, "  "); got != base {
		t.Fatalf("blank hint should be a no-op")
	}
}
