package document

import (
	"encoding/json"
	"fmt"
	"image"
)

type ElementType string

const (
	ElementRectangle ElementType = "rectangle"
	ElementCircle    ElementType = "circle"
	ElementLine      ElementType = "line"
	ElementText      ElementType = "text"
	ElementImage     ElementType = "image"
	ElementComponent ElementType = "component"
	ElementShape     ElementType = "shape"
)

// Known reports whether t is one of the element types the editor understands.
func (t ElementType) Known() bool {
	switch t {
	case ElementRectangle, ElementCircle, ElementLine, ElementText,
		ElementImage, ElementComponent, ElementShape:
		return true
	}
	return false
}

type ShapeType string

const (
	ShapeRectangle ShapeType = "rectangle"
	ShapeCircle    ShapeType = "circle"
	ShapeLine      ShapeType = "line"
	ShapePath      ShapeType = "path"
)

type ComponentType string

const (
	ComponentButton   ComponentType = "button"
	ComponentInput    ComponentType = "input"
	ComponentCheckbox ComponentType = "checkbox"
	ComponentCard     ComponentType = "card"
	ComponentSlider   ComponentType = "slider"
	ComponentToggle   ComponentType = "toggle"
)

type ImageFit string

const (
	FitCover     ImageFit = "cover"
	FitContain   ImageFit = "contain"
	FitFill      ImageFit = "fill"
	FitNone      ImageFit = "none"
	FitScaleDown ImageFit = "scale-down"
)

// ImageLoadState tracks the runtime bitmap of an image element. It is never
// serialized.
type ImageLoadState int

const (
	ImagePending ImageLoadState = iota
	ImageLoaded
	ImageFailed
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Style is the stroke/fill block shared by the geometric element types.
type Style struct {
	StrokeColor string  `json:"strokeColor"`
	FillColor   string  `json:"fillColor"`
	StrokeWidth float64 `json:"strokeWidth"`
	Opacity     float64 `json:"opacity"`
}

// Payload is the type-specific data carried by an element. Exactly one
// implementation exists per ElementType.
type Payload interface {
	Kind() ElementType
	clone() Payload
}

type RectangleData struct {
	Style
}

type CircleData struct {
	Style
	Radius float64 `json:"radius"`
}

// LineData holds the absolute end point; the element's X/Y is the start.
type LineData struct {
	Style
	EndX float64 `json:"endX"`
	EndY float64 `json:"endY"`
}

type TextData struct {
	Content    string  `json:"text"`
	FontFamily string  `json:"fontFamily"`
	FontSize   float64 `json:"fontSize"`
	FontWeight string  `json:"fontWeight"`
	FontStyle  string  `json:"fontStyle"`
	TextAlign  string  `json:"textAlign"`
	Color      string  `json:"color"`
	Opacity    float64 `json:"opacity"`
}

type ImageData struct {
	Src     string   `json:"src"`
	Alt     string   `json:"alt,omitempty"`
	Fit     ImageFit `json:"objectFit"`
	Opacity float64  `json:"opacity"`

	Bitmap    image.Image    `json:"-"`
	LoadState ImageLoadState `json:"-"`
}

type ComponentStyle struct {
	BackgroundColor string  `json:"backgroundColor"`
	TextColor       string  `json:"color"`
	BorderColor     string  `json:"borderColor"`
	BorderWidth     float64 `json:"borderWidth"`
	BorderRadius    float64 `json:"borderRadius"`
	FontSize        float64 `json:"fontSize"`
	Padding         float64 `json:"padding"`
	Opacity         float64 `json:"opacity"`
}

type ComponentData struct {
	ComponentType ComponentType  `json:"componentType"`
	Style         ComponentStyle `json:"style"`
	Label         string         `json:"label,omitempty"`
	Text          string         `json:"text,omitempty"`
	Placeholder   string         `json:"placeholder,omitempty"`
	Title         string         `json:"title,omitempty"`
	Content       string         `json:"content,omitempty"`
	Checked       bool           `json:"checked,omitempty"`
	Min           float64        `json:"min,omitempty"`
	Max           float64        `json:"max,omitempty"`
	Value         float64        `json:"value,omitempty"`
}

type ShapeData struct {
	ShapeType ShapeType `json:"shapeType"`
	Style
	Points []Point `json:"points,omitempty"`
	Closed bool    `json:"closed,omitempty"`
}

func (*RectangleData) Kind() ElementType { return ElementRectangle }
func (*CircleData) Kind() ElementType    { return ElementCircle }
func (*LineData) Kind() ElementType      { return ElementLine }
func (*TextData) Kind() ElementType      { return ElementText }
func (*ImageData) Kind() ElementType     { return ElementImage }
func (*ComponentData) Kind() ElementType { return ElementComponent }
func (*ShapeData) Kind() ElementType     { return ElementShape }

func (d *RectangleData) clone() Payload { c := *d; return &c }
func (d *CircleData) clone() Payload    { c := *d; return &c }
func (d *LineData) clone() Payload      { c := *d; return &c }
func (d *TextData) clone() Payload      { c := *d; return &c }
func (d *ImageData) clone() Payload     { c := *d; return &c }
func (d *ComponentData) clone() Payload { c := *d; return &c }

func (d *ShapeData) clone() Payload {
	c := *d
	if d.Points != nil {
		c.Points = append([]Point(nil), d.Points...)
	}
	return &c
}

// Element is one drawable scene object.
type Element struct {
	ID     string      `json:"id"`
	Type   ElementType `json:"type"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Data   Payload     `json:"data"`
}

// Valid reports whether the payload variant matches the element type.
func (e Element) Valid() bool {
	return e.Data != nil && e.Data.Kind() == e.Type
}

// Clone returns a deep copy of the element.
func (e Element) Clone() Element {
	if e.Data != nil {
		e.Data = e.Data.clone()
	}
	return e
}

// Normalized returns the element with non-negative width and height, shifting
// the origin so the covered area is unchanged.
func (e Element) Normalized() Element {
	if e.Width < 0 {
		e.X += e.Width
		e.Width = -e.Width
	}
	if e.Height < 0 {
		e.Y += e.Height
		e.Height = -e.Height
	}
	return e
}

// StyleOf returns the stroke/fill style of geometric elements.
func StyleOf(e Element) (Style, bool) {
	switch d := e.Data.(type) {
	case *RectangleData:
		return d.Style, true
	case *CircleData:
		return d.Style, true
	case *LineData:
		return d.Style, true
	case *ShapeData:
		return d.Style, true
	}
	return Style{}, false
}

// CloneElements deep-copies an element list. A nil input yields an empty,
// non-nil slice so snapshots always serialize as [].
func CloneElements(elements []Element) []Element {
	out := make([]Element, len(elements))
	for i, el := range elements {
		out[i] = el.Clone()
	}
	return out
}

type elementJSON struct {
	ID     string          `json:"id"`
	Type   ElementType     `json:"type"`
	X      float64         `json:"x"`
	Y      float64         `json:"y"`
	Width  float64         `json:"width"`
	Height float64         `json:"height"`
	Data   json.RawMessage `json:"data"`
}

// UnmarshalJSON decodes the payload variant selected by type. Missing data
// fields keep their defaults; an unknown type leaves Data nil.
func (e *Element) UnmarshalJSON(b []byte) error {
	var raw elementJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*e = Element{
		ID:     raw.ID,
		Type:   raw.Type,
		X:      raw.X,
		Y:      raw.Y,
		Width:  raw.Width,
		Height: raw.Height,
	}

	payload := DefaultPayload(raw.Type, DefaultCanvasOptions())
	if payload == nil {
		return nil
	}
	if raw.Type == ElementComponent && len(raw.Data) > 0 {
		var head struct {
			ComponentType ComponentType `json:"componentType"`
		}
		if err := json.Unmarshal(raw.Data, &head); err == nil && head.ComponentType != "" {
			payload = defaultComponentData(head.ComponentType)
		}
	}
	if len(raw.Data) > 0 && string(raw.Data) != "null" {
		if err := json.Unmarshal(raw.Data, payload); err != nil {
			return fmt.Errorf("element %s: decode %s data: %w", raw.ID, raw.Type, err)
		}
	}
	e.Data = payload
	return nil
}

// DefaultPayload returns a payload for t seeded from the canvas defaults, or
// nil for an unknown type.
func DefaultPayload(t ElementType, opts CanvasOptions) Payload {
	style := opts.DefaultStyle()
	switch t {
	case ElementRectangle:
		return &RectangleData{Style: style}
	case ElementCircle:
		return &CircleData{Style: style}
	case ElementLine:
		return &LineData{Style: style}
	case ElementText:
		return &TextData{
			Content:    "Text",
			FontFamily: opts.Text.FontFamily,
			FontSize:   opts.Text.FontSize,
			FontWeight: opts.Text.FontWeight,
			FontStyle:  opts.Text.FontStyle,
			TextAlign:  opts.Text.TextAlign,
			Color:      opts.Text.Color,
			Opacity:    opts.Opacity,
		}
	case ElementImage:
		return &ImageData{Fit: FitCover, Opacity: 1}
	case ElementComponent:
		return defaultComponentData(ComponentButton)
	case ElementShape:
		return &ShapeData{ShapeType: ShapeRectangle, Style: style}
	}
	return nil
}
