package series

// EventType is the closed set of domain event kinds that can be anchored to
// the chart. Keeping this a fixed enum (rather than free strings) lets the
// layout engine and renderer switch exhaustively.
type EventType int

const (
	EventNote EventType = iota
	EventNews
	EventTelegram
	EventEarnings
	EventReport
)

// AllEventTypes lists every event kind in stacking-rank order.
var AllEventTypes = []EventType{EventNote, EventNews, EventTelegram, EventEarnings, EventReport}

func (t EventType) String() string {
	switch t {
	case EventNote:
		return "note"
	case EventNews:
		return "news"
	case EventTelegram:
		return "telegram"
	case EventEarnings:
		return "earnings"
	case EventReport:
		return "report"
	}
	return "unknown"
}

// ParseEventType maps the wire name to an EventType.
func ParseEventType(s string) (EventType, bool) {
	switch s {
	case "note":
		return EventNote, true
	case "news":
		return EventNews, true
	case "telegram":
		return EventTelegram, true
	case "earnings":
		return EventEarnings, true
	case "report":
		return EventReport, true
	}
	return 0, false
}

// DomainEvent is an externally supplied record (note, article, filing, ...)
// pinned to a calendar date. The chart never interprets Detail; it only
// reports the event back on marker activation.
type DomainEvent struct {
	ID     string    `json:"id"`
	Date   string    `json:"date"`
	Type   EventType `json:"-"`
	Label  string    `json:"label"`
	Detail string    `json:"detail,omitempty"`
}

// TypeFilter is the externally owned enabled-set for event kinds.
type TypeFilter map[EventType]bool

// NewTypeFilter returns a filter with every kind enabled.
func NewTypeFilter() TypeFilter {
	f := make(TypeFilter, len(AllEventTypes))
	for _, t := range AllEventTypes {
		f[t] = true
	}
	return f
}

// Key renders the filter as a stable string for cache keying.
func (f TypeFilter) Key() string {
	b := make([]byte, len(AllEventTypes))
	for i, t := range AllEventTypes {
		if f[t] {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return string(b)
}
