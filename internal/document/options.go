package document

import (
	"encoding/json"
	"fmt"
)

type TextStyle struct {
	FontFamily string  `json:"fontFamily"`
	FontSize   float64 `json:"fontSize"`
	FontWeight string  `json:"fontWeight"`
	FontStyle  string  `json:"fontStyle"`
	TextAlign  string  `json:"textAlign"`
	Color      string  `json:"color"`
}

// CanvasOptions is an immutable configuration value: callers replace it
// wholesale rather than editing fields of a shared instance.
type CanvasOptions struct {
	Width       float64   `json:"width"`
	Height      float64   `json:"height"`
	Background  string    `json:"backgroundColor"`
	StrokeColor string    `json:"strokeColor"`
	FillColor   string    `json:"fillColor"`
	StrokeWidth float64   `json:"strokeWidth"`
	Opacity     float64   `json:"opacity"`
	Text        TextStyle `json:"textStyle"`
	Zoom        float64   `json:"zoom"`
	GridSize    float64   `json:"gridSize"`
	ShowGrid    bool      `json:"showGrid"`
}

func DefaultCanvasOptions() CanvasOptions {
	return CanvasOptions{
		Width:       800,
		Height:      600,
		Background:  "#ffffff",
		StrokeColor: "#000000",
		FillColor:   "transparent",
		StrokeWidth: 2,
		Opacity:     1,
		Text: TextStyle{
			FontFamily: "Arial",
			FontSize:   16,
			FontWeight: "normal",
			FontStyle:  "normal",
			TextAlign:  "left",
			Color:      "#000000",
		},
		Zoom:     1,
		GridSize: 20,
		ShowGrid: false,
	}
}

// MaxCanvasExtent bounds canvas width and height. Larger values are clamped.
const MaxCanvasExtent = 8192.0

// Normalize replaces out-of-range values with defaults and clamps the canvas
// size to MaxCanvasExtent.
func (o CanvasOptions) Normalize() CanvasOptions {
	def := DefaultCanvasOptions()
	if o.Zoom <= 0 {
		o.Zoom = def.Zoom
	}
	o.Width = clampExtent(o.Width, def.Width)
	o.Height = clampExtent(o.Height, def.Height)
	if o.GridSize <= 0 {
		o.GridSize = def.GridSize
	}
	if o.StrokeWidth < 0 {
		o.StrokeWidth = def.StrokeWidth
	}
	if o.Opacity < 0 || o.Opacity > 1 {
		o.Opacity = def.Opacity
	}
	if o.Text.FontSize <= 0 {
		o.Text.FontSize = def.Text.FontSize
	}
	return o
}

func clampExtent(v, def float64) float64 {
	switch {
	case !(v > 0):
		return def
	case v > MaxCanvasExtent:
		return MaxCanvasExtent
	}
	return v
}

// DefaultStyle is the style new geometric elements start with.
func (o CanvasOptions) DefaultStyle() Style {
	return Style{
		StrokeColor: o.StrokeColor,
		FillColor:   o.FillColor,
		StrokeWidth: o.StrokeWidth,
		Opacity:     o.Opacity,
	}
}

// Scene is the complete serializable editor state.
type Scene struct {
	Elements      []Element     `json:"elements"`
	CanvasOptions CanvasOptions `json:"canvasOptions"`
}

func NewEmptyScene() *Scene {
	return &Scene{
		Elements:      []Element{},
		CanvasOptions: DefaultCanvasOptions(),
	}
}

// Clone returns a deep copy of the scene.
func (s *Scene) Clone() *Scene {
	return &Scene{
		Elements:      CloneElements(s.Elements),
		CanvasOptions: s.CanvasOptions,
	}
}

// DecodeScene parses a scene, filling absent canvas options with defaults.
func DecodeScene(data []byte) (*Scene, error) {
	scene := NewEmptyScene()
	if err := json.Unmarshal(data, scene); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	if scene.Elements == nil {
		scene.Elements = []Element{}
	}
	scene.CanvasOptions = scene.CanvasOptions.Normalize()
	return scene, nil
}
