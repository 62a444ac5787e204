package engine

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/scenecraft/scenecraft/internal/document"
)

// Renderer draws elements. The engine calls Draw once per element in list
// order and DrawSelectionOverlay last. Elements passed to Draw are already
// normalized.
type Renderer interface {
	Draw(el document.Element, selected bool)
	DrawSelectionOverlay(bounds Rect)
}

// DrawCommand represents a single drawing operation for a browser host to
// execute on a Canvas2D context.
type DrawCommand struct {
	Op            string        `json:"op"`                      // "rect", "ellipse", "path", "text", "image", "component", "selection"
	ElementID     string        `json:"elementId,omitempty"`     // For hit correlation
	Transform     []float64     `json:"transform,omitempty"`     // [a, b, c, d, e, f] affine matrix
	X             float64       `json:"x"`                       // Box origin, or center for ellipses
	Y             float64       `json:"y"`                       // Box origin, or center for ellipses
	Width         float64       `json:"width,omitempty"`         // Box width, or diameter for ellipses
	Height        float64       `json:"height,omitempty"`        // Box height, or diameter for ellipses
	Path          []PathCommand `json:"path,omitempty"`          // Path data for "path" ops
	Fill          string        `json:"fill,omitempty"`          // Fill color
	Stroke        string        `json:"stroke,omitempty"`        // Stroke color
	StrokeWidth   float64       `json:"strokeWidth,omitempty"`   // Stroke width
	Opacity       float64       `json:"opacity,omitempty"`       // Global alpha
	Text          string        `json:"text,omitempty"`          // Text content or component label
	Font          string        `json:"font,omitempty"`          // CSS font shorthand
	Align         string        `json:"align,omitempty"`         // Text alignment
	ImageSrc      string        `json:"imageSrc,omitempty"`      // Source reference for image lookup
	ImageState    string        `json:"imageState,omitempty"`    // "pending", "loaded" or "failed"
	ObjectFit     string        `json:"objectFit,omitempty"`     // Image fit mode
	ComponentType string        `json:"componentType,omitempty"` // Widget kind for component ops
	Selected      bool          `json:"selected,omitempty"`
	Handles       []Point       `json:"handles,omitempty"` // Resize handle positions for "selection"
}

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["Z"].
type PathCommand []interface{}

// CommandRecorder is a Renderer that records draw commands instead of
// touching pixels.
type CommandRecorder struct {
	commands []DrawCommand
}

func NewCommandRecorder() *CommandRecorder {
	return &CommandRecorder{commands: []DrawCommand{}}
}

// Draw records the command for one element.
func (r *CommandRecorder) Draw(el document.Element, selected bool) {
	cmd, ok := compileElement(el)
	if !ok {
		slog.Warn("skipping element with unsupported type", "id", el.ID, "type", el.Type)
		return
	}
	cmd.ElementID = el.ID
	cmd.Selected = selected
	r.commands = append(r.commands, cmd)
}

// DrawSelectionOverlay records the selection box and its handles.
func (r *CommandRecorder) DrawSelectionOverlay(b Rect) {
	handles := HandlePositions(b.X, b.Y, b.Width, b.Height)
	pts := make([]Point, 0, len(handles))
	for _, h := range handles {
		pts = append(pts, h.Point)
	}
	r.commands = append(r.commands, DrawCommand{
		Op:      "selection",
		X:       b.X,
		Y:       b.Y,
		Width:   b.Width,
		Height:  b.Height,
		Handles: pts,
	})
}

// Commands returns the recorded commands in painter's order.
func (r *CommandRecorder) Commands() []DrawCommand {
	return r.commands
}

// Reset discards the recorded commands.
func (r *CommandRecorder) Reset() {
	r.commands = r.commands[:0]
}

func compileElement(el document.Element) (DrawCommand, bool) {
	if !el.Valid() {
		return DrawCommand{}, false
	}
	box := DrawCommand{X: el.X, Y: el.Y, Width: el.Width, Height: el.Height}

	switch d := el.Data.(type) {
	case *document.RectangleData:
		box.Op = "rect"
		applyStyle(&box, d.Style)
	case *document.CircleData:
		c, r := CircleGeometry(el)
		box.Op = "ellipse"
		box.X, box.Y, box.Width, box.Height = c.X, c.Y, 2*r, 2*r
		applyStyle(&box, d.Style)
	case *document.LineData:
		m, length := LineMatrix(el.X, el.Y, d.EndX, d.EndY)
		box = DrawCommand{
			Op:        "path",
			Transform: m.ToSlice(),
			Path:      []PathCommand{{"M", 0.0, 0.0}, {"L", length, 0.0}},
		}
		applyStyle(&box, d.Style)
		box.Fill = ""
	case *document.ShapeData:
		box.Op = "path"
		box.Path = shapePath(el, d)
		applyStyle(&box, d.Style)
	case *document.TextData:
		box.Op = "text"
		box.Text = d.Content
		box.Font = FontShorthand(d.FontStyle, d.FontWeight, d.FontSize, d.FontFamily)
		box.Align = d.TextAlign
		box.Fill = d.Color
		box.Opacity = d.Opacity
	case *document.ImageData:
		box.Op = "image"
		box.ImageSrc = d.Src
		box.ImageState = imageState(d.LoadState)
		box.ObjectFit = string(d.Fit)
		box.Opacity = d.Opacity
	case *document.ComponentData:
		box.Op = "component"
		box.ComponentType = string(d.ComponentType)
		box.Text = ComponentLabel(d)
		box.Fill = d.Style.BackgroundColor
		box.Stroke = d.Style.BorderColor
		box.StrokeWidth = d.Style.BorderWidth
		box.Opacity = d.Style.Opacity
		box.Font = FontShorthand("normal", "normal", d.Style.FontSize, "sans-serif")
	default:
		return DrawCommand{}, false
	}
	return box, true
}

func applyStyle(cmd *DrawCommand, s document.Style) {
	cmd.Fill = s.FillColor
	cmd.Stroke = s.StrokeColor
	cmd.StrokeWidth = s.StrokeWidth
	cmd.Opacity = s.Opacity
}

func shapePath(el document.Element, d *document.ShapeData) []PathCommand {
	switch d.ShapeType {
	case document.ShapeLine:
		return []PathCommand{{"M", el.X, el.Y}, {"L", el.X + el.Width, el.Y + el.Height}}
	case document.ShapePath:
		if len(d.Points) > 0 {
			path := make([]PathCommand, 0, len(d.Points)+1)
			for i, pt := range d.Points {
				op := "L"
				if i == 0 {
					op = "M"
				}
				path = append(path, PathCommand{op, el.X + pt.X, el.Y + pt.Y})
			}
			if d.Closed {
				path = append(path, PathCommand{"Z"})
			}
			return path
		}
	}
	return []PathCommand{
		{"M", el.X, el.Y},
		{"L", el.X + el.Width, el.Y},
		{"L", el.X + el.Width, el.Y + el.Height},
		{"L", el.X, el.Y + el.Height},
		{"Z"},
	}
}

func imageState(s document.ImageLoadState) string {
	switch s {
	case document.ImageLoaded:
		return "loaded"
	case document.ImageFailed:
		return "failed"
	}
	return "pending"
}

// FontShorthand builds a CSS font value such as "italic bold 16px Arial".
func FontShorthand(style, weight string, size float64, family string) string {
	if style == "" {
		style = "normal"
	}
	if weight == "" {
		weight = "normal"
	}
	return fmt.Sprintf("%s %s %gpx %s", style, weight, size, family)
}

// ComponentLabel returns the text a component shows on its face.
func ComponentLabel(d *document.ComponentData) string {
	switch d.ComponentType {
	case document.ComponentButton:
		return d.Text
	case document.ComponentInput:
		if d.Text != "" {
			return d.Text
		}
		return d.Placeholder
	case document.ComponentCard:
		return d.Title
	case document.ComponentSlider:
		return fmt.Sprintf("%g", d.Value)
	}
	if d.Label != "" {
		return d.Label
	}
	return d.Text
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// RectToJSON serializes a Rect to JSON.
func RectToJSON(r Rect) string {
	data, _ := json.Marshal(r)
	return string(data)
}
