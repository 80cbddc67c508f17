// Package chart is the interactive candlestick chart engine: coordinate
// mapping between data and pixel space, viewport zoom/pan state, event marker
// layout, and per-frame draw command emission. It renders nothing itself; the
// viewer walks the emitted commands.
package chart

import (
	"fmt"
	"os"

	"github.com/wcharczuk/go-chart/v2/drawing"
	"gopkg.in/yaml.v3"

	"github.com/pine1990/StockChartViewer/src/series"
)

// HexColor is a drawing.Color that unmarshals from "#rrggbb" or "#rrggbbaa".
type HexColor struct {
	drawing.Color
}

func (c *HexColor) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	if len(s) == 0 || s[0] != '#' || (len(s) != 7 && len(s) != 9) {
		return fmt.Errorf("color %q: want #rrggbb or #rrggbbaa", s)
	}
	var r, g, b, a uint8 = 0, 0, 0, 0xff
	if len(s) == 7 {
		if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
			return fmt.Errorf("color %q: %w", s, err)
		}
	} else {
		if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x%02x", &r, &g, &b, &a); err != nil {
			return fmt.Errorf("color %q: %w", s, err)
		}
	}
	c.Color = drawing.Color{R: r, G: g, B: b, A: a}
	return nil
}

func hex(r, g, b, a uint8) HexColor {
	return HexColor{drawing.Color{R: r, G: g, B: b, A: a}}
}

// Padding is the canvas margin outside the plot area, in pixels.
type Padding struct {
	Top    float64 `yaml:"top"`
	Bottom float64 `yaml:"bottom"`
	Left   float64 `yaml:"left"`
	Right  float64 `yaml:"right"`
}

// Colors is the chart palette.
type Colors struct {
	Background HexColor `yaml:"background"`
	Grid       HexColor `yaml:"grid"`
	Axis       HexColor `yaml:"axis"`
	Up         HexColor `yaml:"up"`
	Down       HexColor `yaml:"down"`
	Volume     HexColor `yaml:"volume"`
	Crosshair  HexColor `yaml:"crosshair"`
	Selection  HexColor `yaml:"selection"`
	Note       HexColor `yaml:"note"`
	News       HexColor `yaml:"news"`
	Telegram   HexColor `yaml:"telegram"`
	Earnings   HexColor `yaml:"earnings"`
	Report     HexColor `yaml:"report"`
}

// Event returns the marker color for an event type.
func (c Colors) Event(t series.EventType) drawing.Color {
	switch t {
	case series.EventNote:
		return c.Note.Color
	case series.EventNews:
		return c.News.Color
	case series.EventTelegram:
		return c.Telegram.Color
	case series.EventEarnings:
		return c.Earnings.Color
	case series.EventReport:
		return c.Report.Color
	}
	return c.Axis.Color
}

// Options are the empirically tuned chart constants. They ship with defaults
// and can be overridden from a YAML file; none of them are invariants.
type Options struct {
	ZoomInFactor  float64 `yaml:"zoom_in_factor"`
	ZoomOutFactor float64 `yaml:"zoom_out_factor"`
	MinWindow     int     `yaml:"min_window"`
	StackStep     float64 `yaml:"stack_step"`
	HitRadiusPx   float64 `yaml:"hit_radius_px"`
	MarkerRadius  float64 `yaml:"marker_radius_px"`
	VolumeFrac    float64 `yaml:"volume_frac"`
	Padding       Padding `yaml:"padding"`
	Colors        Colors  `yaml:"colors"`
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() *Options {
	return &Options{
		ZoomInFactor:  0.85,
		ZoomOutFactor: 1.15,
		MinWindow:     10,
		StackStep:     350,
		HitRadiusPx:   10,
		MarkerRadius:  6,
		VolumeFrac:    0.18,
		Padding:       Padding{Top: 16, Bottom: 28, Left: 64, Right: 16},
		Colors: Colors{
			Background: hex(0x12, 0x12, 0x12, 0xff),
			Grid:       hex(0x2a, 0x2a, 0x2a, 0xff),
			Axis:       hex(0x9e, 0x9e, 0x9e, 0xff),
			Up:         hex(0xd6, 0x45, 0x41, 0xff), // Korean convention: red = up
			Down:       hex(0x30, 0x7e, 0xc8, 0xff),
			Volume:     hex(0x5d, 0x6d, 0x7e, 0xb4),
			Crosshair:  hex(0xc8, 0xc8, 0xc8, 0xdc),
			Selection:  hex(0x4d, 0x9d, 0xe0, 0x40),
			Note:       hex(0xf2, 0xa6, 0x00, 0xff),
			News:       hex(0x4d, 0x9d, 0xe0, 0xff),
			Telegram:   hex(0x2e, 0xcc, 0x71, 0xff),
			Earnings:   hex(0x9b, 0x59, 0xb6, 0xff),
			Report:     hex(0xe6, 0x7e, 0x22, 0xff),
		},
	}
}

// LoadOptions reads YAML overrides on top of the defaults. A missing file is
// not an error; the defaults apply.
func LoadOptions(path string) (*Options, error) {
	opts := DefaultOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, nil
		}
		return nil, fmt.Errorf("read options: %w", err)
	}
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("parse options: %w", err)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func (o *Options) validate() error {
	if o.ZoomInFactor <= 0 || o.ZoomInFactor >= 1 {
		return fmt.Errorf("zoom_in_factor %v: want (0,1)", o.ZoomInFactor)
	}
	if o.ZoomOutFactor <= 1 {
		return fmt.Errorf("zoom_out_factor %v: want > 1", o.ZoomOutFactor)
	}
	if o.MinWindow < 2 {
		return fmt.Errorf("min_window %d: want >= 2", o.MinWindow)
	}
	if o.StackStep <= 0 {
		return fmt.Errorf("stack_step %v: want > 0", o.StackStep)
	}
	if o.VolumeFrac < 0 || o.VolumeFrac > 0.5 {
		return fmt.Errorf("volume_frac %v: want [0, 0.5]", o.VolumeFrac)
	}
	return nil
}
