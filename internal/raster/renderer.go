// Package raster paints scenes into bitmaps with the gg software rasterizer.
package raster

import (
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"

	"github.com/gogpu/gg"

	"github.com/scenecraft/scenecraft/internal/document"
	"github.com/scenecraft/scenecraft/internal/engine"
)

const (
	selectionColor  = "#3b82f6"
	placeholderFill = "#f3f4f6"
	placeholderLine = "#d1d5db"
	errorFill       = "#fee2e2"
	errorLine       = "#ef4444"
	handleSize      = 8.0
)

// Renderer is an engine.Renderer that paints into a gg context.
type Renderer struct {
	dc    *gg.Context
	fonts *Fonts
}

// NewRenderer creates a canvas sized and filled from opts.
func NewRenderer(opts document.CanvasOptions, fonts *Fonts) *Renderer {
	opts = opts.Normalize()
	dc := gg.NewContext(int(math.Ceil(opts.Width)), int(math.Ceil(opts.Height)))
	if bg, ok := parseColor(opts.Background, 1); ok {
		dc.ClearWithColor(bg)
	}
	r := &Renderer{dc: dc, fonts: fonts}
	if opts.ShowGrid {
		r.drawGrid(opts)
	}
	return r
}

// Image returns the rendered bitmap.
func (r *Renderer) Image() image.Image {
	return r.dc.Image()
}

// EncodePNG writes the canvas as PNG.
func (r *Renderer) EncodePNG(w io.Writer) error {
	return r.dc.EncodePNG(w)
}

func (r *Renderer) Close() error {
	return r.dc.Close()
}

// RenderPNG paints the engine's scene and writes it as PNG.
func RenderPNG(w io.Writer, e *engine.Engine, fonts *Fonts) error {
	r := NewRenderer(e.CanvasOptions(), fonts)
	defer r.Close()
	e.Paint(r)
	if err := r.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Draw paints one element. Unknown types are skipped.
func (r *Renderer) Draw(el document.Element, _ bool) {
	dc := r.dc
	dc.Push()
	defer dc.Pop()

	switch d := el.Data.(type) {
	case *document.RectangleData:
		dc.DrawRectangle(el.X, el.Y, el.Width, el.Height)
		r.paint(d.Style)
	case *document.CircleData:
		c, radius := engine.CircleGeometry(el)
		dc.DrawCircle(c.X, c.Y, radius)
		r.paint(d.Style)
	case *document.LineData:
		dc.DrawLine(el.X, el.Y, d.EndX, d.EndY)
		r.paint(document.Style{StrokeColor: d.StrokeColor, StrokeWidth: d.StrokeWidth, Opacity: d.Opacity})
	case *document.ShapeData:
		r.shapePath(el, d)
		r.paint(d.Style)
	case *document.TextData:
		r.drawText(el, d)
	case *document.ImageData:
		r.drawImage(el, d)
	case *document.ComponentData:
		r.drawComponent(el, d)
	default:
		slog.Warn("raster: skipping element with unsupported type", "id", el.ID, "type", el.Type)
	}
}

// DrawSelectionOverlay outlines b with a dashed box and square handles.
func (r *Renderer) DrawSelectionOverlay(b engine.Rect) {
	dc := r.dc
	dc.Push()
	defer dc.Pop()

	dc.SetDash(4, 4)
	dc.DrawRectangle(b.X, b.Y, b.Width, b.Height)
	dc.SetHexColor(selectionColor)
	dc.SetLineWidth(1)
	r.stroke()
	dc.SetDash()

	for _, h := range engine.HandlePositions(b.X, b.Y, b.Width, b.Height) {
		dc.DrawRectangle(h.Point.X-handleSize/2, h.Point.Y-handleSize/2, handleSize, handleSize)
		dc.SetHexColor("#ffffff")
		r.fillPreserve()
		dc.SetHexColor(selectionColor)
		r.stroke()
	}
}

// paint fills then strokes the current path. Transparent parts are skipped.
func (r *Renderer) paint(s document.Style) {
	dc := r.dc
	fill, hasFill := parseColor(s.FillColor, s.Opacity)
	stroke, hasStroke := parseColor(s.StrokeColor, s.Opacity)
	hasStroke = hasStroke && s.StrokeWidth > 0

	if hasFill {
		dc.SetColor(fill.Color())
		if hasStroke {
			r.fillPreserve()
		} else {
			r.fill()
		}
	}
	if hasStroke {
		dc.SetColor(stroke.Color())
		dc.SetLineWidth(s.StrokeWidth)
		r.stroke()
	}
	if !hasFill && !hasStroke {
		dc.ClearPath()
	}
}

func (r *Renderer) fill() {
	if err := r.dc.Fill(); err != nil {
		slog.Warn("raster: fill failed", "error", err)
	}
}

func (r *Renderer) fillPreserve() {
	if err := r.dc.FillPreserve(); err != nil {
		slog.Warn("raster: fill failed", "error", err)
	}
}

func (r *Renderer) stroke() {
	if err := r.dc.Stroke(); err != nil {
		slog.Warn("raster: stroke failed", "error", err)
	}
}

func (r *Renderer) shapePath(el document.Element, d *document.ShapeData) {
	dc := r.dc
	switch d.ShapeType {
	case document.ShapeCircle:
		c := engine.Bounds(el).Center()
		dc.DrawCircle(c.X, c.Y, math.Min(el.Width, el.Height)/2)
	case document.ShapeLine:
		dc.DrawLine(el.X, el.Y, el.X+el.Width, el.Y+el.Height)
	case document.ShapePath:
		if len(d.Points) == 0 {
			dc.DrawRectangle(el.X, el.Y, el.Width, el.Height)
			return
		}
		dc.MoveTo(el.X+d.Points[0].X, el.Y+d.Points[0].Y)
		for _, p := range d.Points[1:] {
			dc.LineTo(el.X+p.X, el.Y+p.Y)
		}
		if d.Closed {
			dc.ClosePath()
		}
	default:
		dc.DrawRectangle(el.X, el.Y, el.Width, el.Height)
	}
}

func (r *Renderer) drawText(el document.Element, d *document.TextData) {
	col, ok := parseColor(d.Color, d.Opacity)
	if !ok || d.Content == "" {
		return
	}
	face := r.fonts.Face(d.FontSize, isBold(d.FontWeight))
	r.dc.SetFont(face)
	r.dc.SetColor(col.Color())

	baseline := el.Y + face.Metrics().Ascent
	switch d.TextAlign {
	case "center":
		r.dc.DrawStringAnchored(d.Content, el.X+el.Width/2, baseline, 0.5, 0)
	case "right":
		r.dc.DrawStringAnchored(d.Content, el.X+el.Width, baseline, 1, 0)
	default:
		r.dc.DrawString(d.Content, el.X, baseline)
	}
}

func (r *Renderer) drawImage(el document.Element, d *document.ImageData) {
	switch {
	case d.LoadState == document.ImageFailed:
		r.placeholder(el, errorFill, errorLine, true)
		return
	case d.LoadState != document.ImageLoaded || d.Bitmap == nil:
		r.placeholder(el, placeholderFill, placeholderLine, false)
		return
	}

	b := d.Bitmap.Bounds()
	dst := FitRect(d.Fit, float64(b.Dx()), float64(b.Dy()), engine.Rect{X: el.X, Y: el.Y, Width: el.Width, Height: el.Height})
	opacity := d.Opacity
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}

	dc := r.dc
	dc.ClipRect(el.X, el.Y, el.Width, el.Height)
	dc.DrawImageEx(gg.ImageBufFromImage(d.Bitmap), gg.DrawImageOptions{
		X:         dst.X,
		Y:         dst.Y,
		DstWidth:  dst.Width,
		DstHeight: dst.Height,
		Opacity:   opacity,
	})
}

// placeholder draws a box standing in for an image without a bitmap. Failed
// loads get a cross.
func (r *Renderer) placeholder(el document.Element, fill, line string, cross bool) {
	dc := r.dc
	dc.DrawRectangle(el.X, el.Y, el.Width, el.Height)
	r.paint(document.Style{FillColor: fill, StrokeColor: line, StrokeWidth: 1, Opacity: 1})
	if cross {
		dc.MoveTo(el.X, el.Y)
		dc.LineTo(el.X+el.Width, el.Y+el.Height)
		dc.MoveTo(el.X+el.Width, el.Y)
		dc.LineTo(el.X, el.Y+el.Height)
		r.paint(document.Style{StrokeColor: line, StrokeWidth: 1, Opacity: 1})
	}
}

// FitRect places an image of size iw x ih inside box according to fit.
func FitRect(fit document.ImageFit, iw, ih float64, box engine.Rect) engine.Rect {
	if iw <= 0 || ih <= 0 {
		return box
	}
	scale := 1.0
	switch fit {
	case document.FitFill:
		return box
	case document.FitContain:
		scale = math.Min(box.Width/iw, box.Height/ih)
	case document.FitNone:
		scale = 1
	case document.FitScaleDown:
		scale = math.Min(1, math.Min(box.Width/iw, box.Height/ih))
	default:
		scale = math.Max(box.Width/iw, box.Height/ih)
	}
	w, h := iw*scale, ih*scale
	return engine.Rect{
		X:      box.X + (box.Width-w)/2,
		Y:      box.Y + (box.Height-h)/2,
		Width:  w,
		Height: h,
	}
}

func (r *Renderer) drawGrid(opts document.CanvasOptions) {
	dc := r.dc
	dc.Push()
	defer dc.Pop()
	for x := opts.GridSize; x < opts.Width; x += opts.GridSize {
		dc.DrawLine(x, 0, x, opts.Height)
	}
	for y := opts.GridSize; y < opts.Height; y += opts.GridSize {
		dc.DrawLine(0, y, opts.Width, y)
	}
	dc.SetHexColor("#e5e7eb")
	dc.SetLineWidth(1)
	r.stroke()
}
