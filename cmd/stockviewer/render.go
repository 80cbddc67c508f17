package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	png "image/png"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/pine1990/StockChartViewer/src/chart"
)

// rasterize walks a frame's draw commands through a go-chart raster renderer
// and returns the finished image. Commands paint in order; the frame builder
// already layered them.
func rasterize(cmds []chart.Cmd, w, h int, opts *chart.Options) (image.Image, error) {
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("rasterize: bad canvas %dx%d", w, h)
	}
	r, err := gochart.PNG(w, h)
	if err != nil {
		return nil, fmt.Errorf("rasterize: %w", err)
	}
	if f, ferr := gochart.GetDefaultFont(); ferr == nil {
		r.SetFont(f)
	}
	r.SetFontSize(10)

	for _, c := range cmds {
		switch c.Kind {
		case chart.CmdRect:
			r.SetStrokeWidth(strokeWidth(c))
			r.MoveTo(int(c.X1), int(c.Y1))
			r.LineTo(int(c.X2), int(c.Y1))
			r.LineTo(int(c.X2), int(c.Y2))
			r.LineTo(int(c.X1), int(c.Y2))
			r.Close()
			if c.Fill {
				r.SetFillColor(c.Color)
				r.Fill()
			} else {
				r.SetStrokeColor(c.Color)
				r.Stroke()
			}
		case chart.CmdLine:
			r.SetStrokeColor(c.Color)
			r.SetStrokeWidth(strokeWidth(c))
			r.MoveTo(int(c.X1), int(c.Y1))
			r.LineTo(int(c.X2), int(c.Y2))
			r.Stroke()
		case chart.CmdPolyline:
			if len(c.Points) < 2 {
				continue
			}
			r.SetStrokeColor(c.Color)
			r.SetStrokeWidth(strokeWidth(c))
			r.MoveTo(int(c.Points[0].X), int(c.Points[0].Y))
			for _, p := range c.Points[1:] {
				r.LineTo(int(p.X), int(p.Y))
			}
			r.Stroke()
		case chart.CmdText:
			r.SetFontColor(c.Color)
			x := int(c.X1)
			if c.Right {
				x -= r.MeasureText(c.Text).Width()
			}
			r.Text(c.Text, x, int(c.Y1)+4)
		case chart.CmdMarker:
			r.SetFillColor(c.Color)
			r.SetStrokeColor(c.Color)
			r.Circle(opts.MarkerRadius, int(c.X1), int(c.Y1))
			r.FillStroke()
		}
	}

	var buf bytes.Buffer
	if err := r.Save(&buf); err != nil {
		return nil, fmt.Errorf("rasterize: %w", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("rasterize: %w", err)
	}
	return img, nil
}

func strokeWidth(c chart.Cmd) float64 {
	if c.Width > 0 {
		return c.Width
	}
	return 1
}

// blank is the fallback image shown when rendering fails or no data is loaded.
func blank(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 18, G: 18, B: 18, A: 255})
		}
	}
	return img
}

// drawHint stamps a short help line onto the bottom-left of a chart image.
func drawHint(img image.Image, text string) image.Image {
	if img == nil || strings.TrimSpace(text) == "" {
		return img
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	pad := 6
	face := basicfont.Face7x13
	textCol := image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	shadowCol := image.NewUniform(color.RGBA{R: 0, G: 0, B: 0, A: 180})
	dr := &font.Drawer{Dst: rgba, Src: textCol, Face: face}
	tw := dr.MeasureString(text).Ceil()
	x := b.Min.X + 8
	y := b.Max.Y - 6
	bg := image.NewUniform(color.RGBA{R: 0, G: 0, B: 0, A: 200})
	rect := image.Rect(x-pad, y-face.Metrics().Ascent.Ceil()-pad, x+tw+pad, y+pad/2)
	draw.Draw(rgba, rect, bg, image.Point{}, draw.Over)
	drShadow := &font.Drawer{Dst: rgba, Src: shadowCol, Face: face, Dot: fixed.Point26_6{X: fixed.I(x + 1), Y: fixed.I(y + 1)}}
	drShadow.DrawString(text)
	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	dr.DrawString(text)
	return rgba
}
