package series

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Loaders read JSONL files: one JSON object per line. Malformed lines are
// logged and skipped so a partially corrupt export still renders.

// LoadPrices reads a price series from a JSONL file of sessions
// {"date","open","high","low","close","volume"}.
func LoadPrices(path string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open prices: %w", err)
	}
	defer f.Close()

	var points []PricePoint
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var p PricePoint
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			Warnf("prices %s:%d: skipping malformed line: %v", path, lineNo, err)
			continue
		}
		if p.Date == "" {
			Warnf("prices %s:%d: skipping session without date", path, lineNo)
			continue
		}
		if !p.Valid() {
			// kept: the renderer skips the candle, but indices must stay stable
			Warnf("prices %s:%d: session %s fails OHLC constraints", path, lineNo, p.Date)
		}
		points = append(points, p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read prices: %w", err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("prices %s: no sessions", path)
	}
	Infof("loaded %d sessions from %s", len(points), path)
	return New(points), nil
}

type eventRow struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Type   string `json:"type"`
	Label  string `json:"label"`
	Detail string `json:"detail"`
}

// LoadEvents reads domain events from a JSONL file of
// {"date","type","label","detail"} rows. Rows with an unknown type are
// dropped; rows without an id get a generated one so the viewer can route
// marker activations to a stable record.
func LoadEvents(path string) ([]DomainEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open events: %w", err)
	}
	defer f.Close()

	var out []DomainEvent
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var row eventRow
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			Warnf("events %s:%d: skipping malformed line: %v", path, lineNo, err)
			continue
		}
		t, ok := ParseEventType(row.Type)
		if !ok {
			Warnf("events %s:%d: unknown event type %q", path, lineNo, row.Type)
			continue
		}
		id := row.ID
		if id == "" {
			id = uuid.NewString()
		}
		out = append(out, DomainEvent{
			ID:     id,
			Date:   row.Date,
			Type:   t,
			Label:  row.Label,
			Detail: row.Detail,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	Infof("loaded %d events from %s", len(out), path)
	return out, nil
}
