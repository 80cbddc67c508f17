package chart

import "math"

// Controller owns the viewport and the transient drag state. Every operation
// is a synchronous, clamped state transition driven by one input event; there
// are no timers and nothing runs concurrently.
type Controller struct {
	vp        Viewport
	seriesLen int
	opts      *Options

	dragAnchor  float64
	dragCurrent float64
	dragging    bool
}

func NewController(seriesLen int, opts *Options) *Controller {
	c := &Controller{seriesLen: seriesLen, opts: opts}
	c.Reset()
	return c
}

// Viewport returns the current window.
func (c *Controller) Viewport() Viewport { return c.vp }

// Reset sets the viewport to the full series.
func (c *Controller) Reset() {
	c.vp = Viewport{Start: 0, End: maxInt(c.seriesLen-1, 1)}
	c.dragging = false
	c.clamp()
}

// SetSeriesLen re-targets the controller after a series replacement. The
// viewport resets to full bounds; a stale window must never survive a reload.
func (c *Controller) SetSeriesLen(n int) {
	c.seriesLen = n
	c.Reset()
}

// clamp restores the viewport invariants: 0 <= start < end <= len-1 and
// end-start >= MinWindow (when the series is long enough to allow it).
func (c *Controller) clamp() {
	last := c.seriesLen - 1
	if last < 1 {
		c.vp = Viewport{Start: 0, End: 1}
		return
	}
	minWin := c.opts.MinWindow
	if minWin > last {
		minWin = last
	}
	if c.vp.Size() < minWin {
		// widen around the center
		center := (c.vp.Start + c.vp.End) / 2
		c.vp.Start = center - minWin/2
		c.vp.End = c.vp.Start + minWin
	}
	if c.vp.Size() > last {
		c.vp = Viewport{Start: 0, End: last}
	}
	if c.vp.Start < 0 {
		c.vp.End -= c.vp.Start
		c.vp.Start = 0
	}
	if c.vp.End > last {
		c.vp.Start -= c.vp.End - last
		c.vp.End = last
	}
	if c.vp.Start < 0 {
		c.vp.Start = 0
	}
}

// Zoom resizes the window around the data point under the cursor: the index
// under cursorX before the resize stays under cursorX after it, within
// rounding. Wheel-up (zoomIn) shrinks the window, wheel-down grows it.
func (c *Controller) Zoom(cursorX float64, zoomIn bool, sc *Scale) {
	oldSize := c.vp.Size()
	local := sc.XToIndex(cursorX)
	if local < 0 {
		local = 0
	}
	if local > oldSize {
		local = oldSize
	}
	anchor := c.vp.Start + local

	factor := c.opts.ZoomOutFactor
	if zoomIn {
		factor = c.opts.ZoomInFactor
	}
	newSize := int(math.Round(float64(oldSize) * factor))
	if newSize == oldSize {
		// guarantee progress on tiny windows
		if zoomIn {
			newSize--
		} else {
			newSize++
		}
	}
	if newSize < c.opts.MinWindow {
		newSize = c.opts.MinWindow
	}
	if newSize > c.seriesLen-1 {
		newSize = c.seriesLen - 1
	}

	ratio := float64(local) / float64(oldSize)
	newStart := int(math.Round(float64(anchor) - ratio*float64(newSize)))
	if newStart < 0 {
		newStart = 0
	}
	if newStart > c.seriesLen-1-newSize {
		newStart = c.seriesLen - 1 - newSize
	}
	c.vp = Viewport{Start: newStart, End: newStart + newSize}
	c.clamp()
}

// Pan shifts the window by delta indices, clamped to the series bounds.
func (c *Controller) Pan(delta int) {
	size := c.vp.Size()
	start := c.vp.Start + delta
	if start < 0 {
		start = 0
	}
	if start > c.seriesLen-1-size {
		start = c.seriesLen - 1 - size
	}
	c.vp = Viewport{Start: start, End: start + size}
	c.clamp()
}

// BeginDrag starts a horizontal range selection at pixel x.
func (c *Controller) BeginDrag(x float64) {
	c.dragging = true
	c.dragAnchor = x
	c.dragCurrent = x
}

// UpdateDrag tracks the pointer during an active selection. Ignored when no
// drag is active (e.g. a move event after a leave already finalized it).
func (c *Controller) UpdateDrag(x float64) {
	if !c.dragging {
		return
	}
	c.dragCurrent = x
}

// EndDrag finalizes the selection. A local span of at least 3 indices
// replaces the viewport with the selected range (widened to MinWindow when
// necessary); anything narrower is a click and leaves the viewport alone.
// Pointer-leave must call this too so no drag is ever left half-applied.
// Returns whether the viewport changed.
func (c *Controller) EndDrag(sc *Scale) bool {
	if !c.dragging {
		return false
	}
	c.dragging = false
	x0, x1 := c.dragAnchor, c.dragCurrent
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	// clamp to the plot before the click tie-break so off-plot pixels never
	// count toward the span
	oldSize := c.vp.Size()
	a := sc.XToIndex(x0)
	b := sc.XToIndex(x1)
	if a < 0 {
		a = 0
	}
	if b > oldSize {
		b = oldSize
	}
	if b-a < 3 {
		return false
	}
	c.vp = Viewport{Start: c.vp.Start + a, End: c.vp.Start + b}
	c.clamp()
	return true
}

// Dragging reports whether a selection is in progress.
func (c *Controller) Dragging() bool { return c.dragging }

// DragRect returns the current selection pixel range, left before right.
func (c *Controller) DragRect() (float64, float64, bool) {
	if !c.dragging {
		return 0, 0, false
	}
	x0, x1 := c.dragAnchor, c.dragCurrent
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	return x0, x1, true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
