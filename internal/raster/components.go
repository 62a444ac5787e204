package raster

import (
	"math"

	"github.com/scenecraft/scenecraft/internal/document"
	"github.com/scenecraft/scenecraft/internal/engine"
)

func (r *Renderer) drawComponent(el document.Element, d *document.ComponentData) {
	s := d.Style
	dc := r.dc

	switch d.ComponentType {
	case document.ComponentCheckbox, document.ComponentToggle, document.ComponentSlider:
		// These draw their own controls instead of a framed box.
	default:
		dc.DrawRoundedRectangle(el.X, el.Y, el.Width, el.Height, s.BorderRadius)
		r.paint(document.Style{
			FillColor:   s.BackgroundColor,
			StrokeColor: s.BorderColor,
			StrokeWidth: s.BorderWidth,
			Opacity:     s.Opacity,
		})
	}

	switch d.ComponentType {
	case document.ComponentButton:
		r.label(d.Text, s.TextColor, s.FontSize, false, el.X+el.Width/2, el.Y+el.Height/2, 0.5, s.Opacity)
	case document.ComponentInput:
		content, color := d.Text, s.TextColor
		if content == "" {
			content, color = d.Placeholder, "#9ca3af"
		}
		r.label(content, color, s.FontSize, false, el.X+s.Padding, el.Y+el.Height/2, 0, s.Opacity)
	case document.ComponentCard:
		top := el.Y + s.Padding
		r.label(d.Title, s.TextColor, s.FontSize+4, true, el.X+s.Padding, top+(s.FontSize+4)/2, 0, s.Opacity)
		r.label(d.Content, s.TextColor, s.FontSize, false, el.X+s.Padding, top+s.FontSize*2.5, 0, s.Opacity)
	case document.ComponentCheckbox:
		r.drawCheckbox(el, d)
	case document.ComponentToggle:
		r.drawToggle(el, d)
	case document.ComponentSlider:
		r.drawSlider(el, d)
	default:
		r.label(engine.ComponentLabel(d), s.TextColor, s.FontSize, false, el.X+el.Width/2, el.Y+el.Height/2, 0.5, s.Opacity)
	}
}

// label draws one line of text vertically centered on cy. ax is the
// horizontal anchor: 0 for left, 0.5 for centered.
func (r *Renderer) label(s, color string, size float64, bold bool, x, cy, ax, opacity float64) {
	col, ok := parseColor(color, opacity)
	if !ok || s == "" {
		return
	}
	face := r.fonts.Face(size, bold)
	m := face.Metrics()
	baseline := cy + (m.Ascent-m.Descent)/2
	r.dc.SetFont(face)
	r.dc.SetColor(col.Color())
	r.dc.DrawStringAnchored(s, x, baseline, ax, 0)
}

func (r *Renderer) drawCheckbox(el document.Element, d *document.ComponentData) {
	s := d.Style
	box := math.Min(16, el.Height)
	y := el.Y + (el.Height-box)/2

	r.dc.DrawRoundedRectangle(el.X, y, box, box, 3)
	fill := "#ffffff"
	if d.Checked {
		fill = selectionColor
	}
	r.paint(document.Style{FillColor: fill, StrokeColor: "#6b7280", StrokeWidth: 1, Opacity: s.Opacity})
	if d.Checked {
		r.dc.MoveTo(el.X+box*0.2, y+box*0.5)
		r.dc.LineTo(el.X+box*0.42, y+box*0.72)
		r.dc.LineTo(el.X+box*0.8, y+box*0.28)
		r.paint(document.Style{StrokeColor: "#ffffff", StrokeWidth: 2, Opacity: s.Opacity})
	}
	r.label(d.Label, s.TextColor, s.FontSize, false, el.X+box+8, el.Y+el.Height/2, 0, s.Opacity)
}

func (r *Renderer) drawToggle(el document.Element, d *document.ComponentData) {
	s := d.Style
	track := s.BackgroundColor
	if d.Checked {
		track = selectionColor
	}
	r.dc.DrawRoundedRectangle(el.X, el.Y, el.Width, el.Height, el.Height/2)
	r.paint(document.Style{FillColor: track, Opacity: s.Opacity})

	knob := el.Height/2 - 2
	cx := el.X + el.Height/2
	if d.Checked {
		cx = el.X + el.Width - el.Height/2
	}
	r.dc.DrawCircle(cx, el.Y+el.Height/2, knob)
	r.paint(document.Style{FillColor: "#ffffff", Opacity: s.Opacity})
}

func (r *Renderer) drawSlider(el document.Element, d *document.ComponentData) {
	s := d.Style
	cy := el.Y + el.Height/2
	r.dc.DrawRoundedRectangle(el.X, cy-2, el.Width, 4, 2)
	r.paint(document.Style{FillColor: "#e5e7eb", Opacity: s.Opacity})

	frac := 0.0
	if d.Max > d.Min {
		frac = math.Max(0, math.Min(1, (d.Value-d.Min)/(d.Max-d.Min)))
	}
	knobX := el.X + frac*el.Width
	r.dc.DrawCircle(knobX, cy, math.Min(8, el.Height/2))
	r.paint(document.Style{FillColor: selectionColor, Opacity: s.Opacity})
}
