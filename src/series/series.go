// Package series holds the immutable daily price series and the domain
// events overlaid on it. Prices are daily OHLCV sessions keyed by ISO date
// ("2024-10-31"); values are plain floats (Korean listings quote integer won,
// but nothing here depends on that).
package series

import (
	"sort"
	"sync/atomic"
)

// PricePoint is one trading session.
type PricePoint struct {
	Index  int     `json:"-"`
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// Valid reports whether the session satisfies the OHLC shape constraints:
// positive prices, high >= max(open,close) >= min(open,close) >= low, and a
// non-negative volume. Invalid sessions stay in the series but are skipped at
// render time rather than crashing a frame.
func (p PricePoint) Valid() bool {
	if p.Open <= 0 || p.High <= 0 || p.Low <= 0 || p.Close <= 0 {
		return false
	}
	if p.Volume < 0 {
		return false
	}
	hi, lo := p.Open, p.Close
	if hi < lo {
		hi, lo = lo, hi
	}
	return p.High >= hi && lo >= p.Low
}

// Bullish reports whether the session closed at or above its open; the
// renderer keys candle color off this.
func (p PricePoint) Bullish() bool { return p.Close >= p.Open }

var versionCounter uint64

// Series is an ordered, append-never price series. A reload replaces the
// whole series; nothing mutates points in place. Each Series carries a
// process-unique version used as a memoization key downstream.
type Series struct {
	points  []PricePoint
	byDate  map[string]int
	version uint64
}

// New builds a series from sessions, sorting them by date and assigning
// positional indices.
func New(points []PricePoint) *Series {
	ps := make([]PricePoint, len(points))
	copy(ps, points)
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].Date < ps[j].Date })
	byDate := make(map[string]int, len(ps))
	for i := range ps {
		ps[i].Index = i
		byDate[ps[i].Date] = i
	}
	return &Series{
		points:  ps,
		byDate:  byDate,
		version: atomic.AddUint64(&versionCounter, 1),
	}
}

// Len returns the number of sessions.
func (s *Series) Len() int { return len(s.points) }

// At returns the session at index i.
func (s *Series) At(i int) PricePoint { return s.points[i] }

// Slice returns the sessions in the inclusive index range [start, end].
// The returned slice is a read-only view into the series.
func (s *Series) Slice(start, end int) []PricePoint {
	if start < 0 {
		start = 0
	}
	if end > len(s.points)-1 {
		end = len(s.points) - 1
	}
	if start > end {
		return nil
	}
	return s.points[start : end+1]
}

// IndexOfDate resolves a calendar date to its series index. Events dated on
// non-trading days resolve to ok=false and are dropped by the layout engine.
func (s *Series) IndexOfDate(date string) (int, bool) {
	i, ok := s.byDate[date]
	return i, ok
}

// Version returns the identity of this load, distinct across replacements.
func (s *Series) Version() uint64 { return s.version }

// Closes extracts the close column over the full series.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Close
	}
	return out
}
