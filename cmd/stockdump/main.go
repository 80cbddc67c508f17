// stockdump prints a headless summary of a prices file (and optionally an
// events file): session count, date range, last close and moving averages,
// plus per-type event counts. Handy for sanity-checking data files without
// opening the viewer.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/pine1990/StockChartViewer/src/indicator"
	"github.com/pine1990/StockChartViewer/src/series"
)

func main() {
	var pricesFile, eventsFile, logLevel string
	flag.StringVar(&pricesFile, "prices", "prices.jsonl", "Path to prices .jsonl")
	flag.StringVar(&eventsFile, "events", "", "Optional path to events .jsonl")
	flag.StringVar(&logLevel, "loglevel", "warn", "Log level: debug, info, warn, error")
	flag.Parse()
	series.SetLogLevel(logLevel)

	s, err := series.LoadPrices(pricesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	last := s.At(s.Len() - 1)
	fmt.Printf("Sessions: %d (%s ~ %s)\n", s.Len(), s.At(0).Date, last.Date)
	fmt.Printf("Last close: %s (volume %s)\n", humanize.Comma(int64(last.Close)), humanize.Comma(last.Volume))

	eng := indicator.NewEngine()
	cfg := indicator.DefaultConfig()
	for _, k := range []indicator.Kind{indicator.MA60, indicator.MA120} {
		set := cfg[k]
		set.Enabled = true
		cfg[k] = set
	}
	for _, ov := range eng.Overlays(s, cfg) {
		if v, ok := ov.At(s.Len() - 1); ok {
			fmt.Printf("%s: %s\n", ov.Name, humanize.CommafWithDigits(v, 1))
		} else {
			fmt.Printf("%s: (insufficient history)\n", ov.Name)
		}
	}

	if eventsFile == "" {
		return
	}
	evs, err := series.LoadEvents(eventsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	counts := map[series.EventType]int{}
	offDate := 0
	for _, ev := range evs {
		counts[ev.Type]++
		if _, ok := s.IndexOfDate(ev.Date); !ok {
			offDate++
		}
	}
	fmt.Printf("Events: %d\n", len(evs))
	for _, et := range series.AllEventTypes {
		if counts[et] > 0 {
			fmt.Printf("  %s: %d\n", et, counts[et])
		}
	}
	if offDate > 0 {
		fmt.Printf("  on non-trading dates: %d\n", offDate)
	}
}
