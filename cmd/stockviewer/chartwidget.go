package main

import (
	"fmt"
	"image/color"
	"strings"

	fyne "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/dustin/go-humanize"

	"github.com/pine1990/StockChartViewer/src/chart"
	"github.com/pine1990/StockChartViewer/src/series"
)

// chartWidget hosts the chart image and translates pointer input into view
// operations: wheel zoom anchored at the cursor, drag range selection, hover
// crosshair and marker taps. It re-renders the frame whenever its size or the
// view state changes.
type chartWidget struct {
	widget.BaseWidget
	view *chart.View

	crosshairEnabled bool
	hovering         bool
	mouse            fyne.Position

	// set by main; fired on marker tap and after zoom/pan/select
	onMarkerActivated func(chart.PlacedEvent)
	onViewportChanged func()

	needRender bool
	lastSize   fyne.Size
}

func newChartWidget(view *chart.View) *chartWidget {
	c := &chartWidget{view: view, needRender: true}
	c.ExtendBaseWidget(c)
	return c
}

// markDirty forces a frame re-render on the next refresh; main calls it after
// anything that changes the frame (data load, indicator or filter toggles).
func (c *chartWidget) markDirty() {
	c.needRender = true
	c.Refresh()
}

func (c *chartWidget) canvasSize() (float64, float64) {
	sz := c.Size()
	return float64(sz.Width), float64(sz.Height)
}

// Scrolled implements wheel zoom. The session under the cursor stays put.
func (c *chartWidget) Scrolled(ev *fyne.ScrollEvent) {
	w, h := c.canvasSize()
	if w < 1 || h < 1 {
		return
	}
	c.view.Zoom(float64(ev.Position.X), ev.Scrolled.DY > 0, w, h)
	c.needRender = true
	c.Refresh()
	if c.onViewportChanged != nil {
		c.onViewportChanged()
	}
}

// Dragged tracks a horizontal range selection.
func (c *chartWidget) Dragged(ev *fyne.DragEvent) {
	if !c.view.Controller().Dragging() {
		c.view.BeginDrag(float64(ev.Position.X - ev.Dragged.DX))
	}
	c.view.UpdateDrag(float64(ev.Position.X))
	c.mouse = ev.Position
	c.Refresh()
}

// DragEnd applies the selection; a tiny span is treated as a click upstream.
func (c *chartWidget) DragEnd() {
	w, h := c.canvasSize()
	if c.view.EndDrag(w, h) {
		c.needRender = true
		if c.onViewportChanged != nil {
			c.onViewportChanged()
		}
	}
	c.Refresh()
}

// Tapped resolves marker hits under the pointer.
func (c *chartWidget) Tapped(ev *fyne.PointEvent) {
	w, h := c.canvasSize()
	if e := c.view.HitTest(float64(ev.Position.X), float64(ev.Position.Y), w, h); e != nil {
		if c.onMarkerActivated != nil {
			c.onMarkerActivated(*e)
		}
	}
}

func (c *chartWidget) MouseIn(ev *desktop.MouseEvent) {
	c.hovering = true
	c.mouse = ev.Position
	c.Refresh()
}

func (c *chartWidget) MouseMoved(ev *desktop.MouseEvent) {
	c.hovering = true
	c.mouse = ev.Position
	if !c.crosshairEnabled && !c.view.Controller().Dragging() {
		return
	}
	c.Refresh()
}

// MouseOut finalizes any in-flight drag so the selection is never left
// half-applied, then hides the crosshair.
func (c *chartWidget) MouseOut() {
	c.hovering = false
	w, h := c.canvasSize()
	if c.view.EndDrag(w, h) {
		c.needRender = true
		if c.onViewportChanged != nil {
			c.onViewportChanged()
		}
	}
	c.Refresh()
}

func (c *chartWidget) CreateRenderer() fyne.WidgetRenderer {
	img := canvas.NewImageFromImage(blank(100, 60))
	img.FillMode = canvas.ImageFillStretch
	lineV := canvas.NewLine(color.RGBA{R: 200, G: 200, B: 200, A: 220})
	lineV.StrokeWidth = 1
	lineH := canvas.NewLine(color.RGBA{R: 200, G: 200, B: 200, A: 220})
	lineH.StrokeWidth = 1
	sel := canvas.NewRectangle(color.RGBA{R: 77, G: 157, B: 224, A: 64})
	label := widget.NewRichText()
	label.Wrapping = fyne.TextWrapOff
	labelBG := canvas.NewRectangle(color.RGBA{R: 0, G: 0, B: 0, A: 170})
	objs := []fyne.CanvasObject{img, sel, lineV, lineH, labelBG, label}
	return &chartWidgetRenderer{c: c, img: img, sel: sel, lineV: lineV, lineH: lineH, labelBG: labelBG, label: label, objs: objs}
}

type chartWidgetRenderer struct {
	c       *chartWidget
	img     *canvas.Image
	sel     *canvas.Rectangle
	lineV   *canvas.Line
	lineH   *canvas.Line
	labelBG *canvas.Rectangle
	label   *widget.RichText
	objs    []fyne.CanvasObject
}

func (r *chartWidgetRenderer) Destroy() {}

func (r *chartWidgetRenderer) MinSize() fyne.Size { return fyne.NewSize(400, 260) }

func (r *chartWidgetRenderer) Objects() []fyne.CanvasObject { return r.objs }

func (r *chartWidgetRenderer) Layout(size fyne.Size) {
	if size.Width < 1 || size.Height < 1 {
		return
	}
	if r.c.needRender || size != r.c.lastSize {
		r.c.needRender = false
		r.c.lastSize = size
		w, h := int(size.Width), int(size.Height)
		frame := r.c.view.Frame(float64(w), float64(h))
		img, err := rasterize(frame, w, h, r.c.view.Options())
		if err != nil {
			series.Warnf("frame render failed: %v", err)
			img = blank(w, h)
		}
		r.img.Image = img
		r.img.Refresh()
	}
	r.img.Resize(size)
	r.img.Move(fyne.NewPos(0, 0))
	r.layoutSelection(size)
	r.layoutCrosshair(size)
}

func (r *chartWidgetRenderer) layoutSelection(size fyne.Size) {
	x0, x1, ok := r.c.view.Controller().DragRect()
	if !ok || x1-x0 < 1 {
		r.sel.Resize(fyne.NewSize(0, 0))
		r.sel.Move(fyne.NewPos(-1000, -1000))
		return
	}
	pad := r.c.view.Options().Padding
	r.sel.Move(fyne.NewPos(float32(x0), float32(pad.Top)))
	r.sel.Resize(fyne.NewSize(float32(x1-x0), size.Height-float32(pad.Top+pad.Bottom)))
}

func (r *chartWidgetRenderer) layoutCrosshair(size fyne.Size) {
	hide := func() {
		r.lineV.Position1 = fyne.NewPos(-10, -10)
		r.lineV.Position2 = fyne.NewPos(-10, -10)
		r.lineH.Position1 = fyne.NewPos(-10, -10)
		r.lineH.Position2 = fyne.NewPos(-10, -10)
		r.labelBG.Resize(fyne.NewSize(0, 0))
		r.labelBG.Move(fyne.NewPos(-1000, -1000))
		r.label.Move(fyne.NewPos(-1000, -1000))
	}
	// suppressed during a drag so the selection rectangle stays legible
	if !r.c.crosshairEnabled || !r.c.hovering || r.c.view.Controller().Dragging() {
		hide()
		return
	}
	w, h := float64(size.Width), float64(size.Height)
	info, ok := r.c.view.Crosshair(float64(r.c.mouse.X), float64(r.c.mouse.Y), w, h)
	if !ok {
		hide()
		return
	}
	// vertical line snaps to the hovered session's column; horizontal follows
	// the pointer
	r.lineV.Position1 = fyne.NewPos(float32(info.X), 0)
	r.lineV.Position2 = fyne.NewPos(float32(info.X), size.Height)
	r.lineH.Position1 = fyne.NewPos(0, r.c.mouse.Y)
	r.lineH.Position2 = fyne.NewPos(size.Width, r.c.mouse.Y)

	r.label.Segments = []widget.RichTextSegment{&widget.TextSegment{Text: crosshairText(info)}}
	r.label.Refresh()
	pad := float32(6)
	ts := r.label.MinSize()
	bgW := ts.Width + 2*pad
	bgH := ts.Height + 2*pad
	tx, ty := r.c.mouse.X+8, r.c.mouse.Y+8
	if tx+bgW > size.Width {
		tx = size.Width - bgW
	}
	if ty+bgH > size.Height {
		ty = size.Height - bgH
	}
	r.labelBG.Resize(fyne.NewSize(bgW, bgH))
	r.labelBG.Move(fyne.NewPos(tx, ty))
	r.label.Move(fyne.NewPos(tx+pad, ty+pad))
}

func (r *chartWidgetRenderer) Refresh() {
	r.Layout(r.c.Size())
	r.img.Refresh()
	r.sel.Refresh()
	r.lineV.Refresh()
	r.lineH.Refresh()
	r.labelBG.Refresh()
	r.label.Refresh()
}

// crosshairText builds the hovered-session readout: date, OHLC and volume.
func crosshairText(info chart.CrosshairInfo) string {
	p := info.Point
	lines := []string{
		p.Date,
		fmt.Sprintf("O %s  H %s", humanize.Comma(int64(p.Open)), humanize.Comma(int64(p.High))),
		fmt.Sprintf("L %s  C %s", humanize.Comma(int64(p.Low)), humanize.Comma(int64(p.Close))),
		fmt.Sprintf("Vol %s", humanize.Comma(p.Volume)),
	}
	return strings.Join(lines, "\n")
}

var (
	_ desktop.Hoverable = (*chartWidget)(nil)
	_ fyne.Scrollable   = (*chartWidget)(nil)
	_ fyne.Draggable    = (*chartWidget)(nil)
	_ fyne.Tappable     = (*chartWidget)(nil)
)
