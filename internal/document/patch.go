package document

import "image"

// ElementPatch is a structured partial update. Nil fields are left alone;
// fields that do not apply to the target's type are ignored.
type ElementPatch struct {
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`

	StrokeColor *string  `json:"strokeColor,omitempty"`
	FillColor   *string  `json:"fillColor,omitempty"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty"`
	Opacity     *float64 `json:"opacity,omitempty"`

	Radius *float64 `json:"radius,omitempty"`
	EndX   *float64 `json:"endX,omitempty"`
	EndY   *float64 `json:"endY,omitempty"`

	Text       *string  `json:"text,omitempty"`
	FontFamily *string  `json:"fontFamily,omitempty"`
	FontSize   *float64 `json:"fontSize,omitempty"`
	FontWeight *string  `json:"fontWeight,omitempty"`
	FontStyle  *string  `json:"fontStyle,omitempty"`
	TextAlign  *string  `json:"textAlign,omitempty"`
	Color      *string  `json:"color,omitempty"`

	Src *string   `json:"src,omitempty"`
	Alt *string   `json:"alt,omitempty"`
	Fit *ImageFit `json:"objectFit,omitempty"`

	Label           *string  `json:"label,omitempty"`
	Placeholder     *string  `json:"placeholder,omitempty"`
	Title           *string  `json:"title,omitempty"`
	Content         *string  `json:"content,omitempty"`
	Checked         *bool    `json:"checked,omitempty"`
	Min             *float64 `json:"min,omitempty"`
	Max             *float64 `json:"max,omitempty"`
	Value           *float64 `json:"value,omitempty"`
	BackgroundColor *string  `json:"backgroundColor,omitempty"`
	BorderColor     *string  `json:"borderColor,omitempty"`
	BorderWidth     *float64 `json:"borderWidth,omitempty"`
	BorderRadius    *float64 `json:"borderRadius,omitempty"`
	Padding         *float64 `json:"padding,omitempty"`

	ShapeType *ShapeType `json:"shapeType,omitempty"`
	Points    *[]Point   `json:"points,omitempty"`

	Bitmap    image.Image     `json:"-"`
	LoadState *ImageLoadState `json:"-"`
}

// Apply merges the patch into el and reports whether anything changed.
func (p ElementPatch) Apply(el *Element) bool {
	m := merger{}
	m.float(&el.X, p.X)
	m.float(&el.Y, p.Y)
	m.float(&el.Width, p.Width)
	m.float(&el.Height, p.Height)

	switch d := el.Data.(type) {
	case *RectangleData:
		m.style(&d.Style, p)
	case *CircleData:
		m.style(&d.Style, p)
		m.float(&d.Radius, p.Radius)
	case *LineData:
		m.style(&d.Style, p)
		m.float(&d.EndX, p.EndX)
		m.float(&d.EndY, p.EndY)
	case *ShapeData:
		m.style(&d.Style, p)
		if p.ShapeType != nil && *p.ShapeType != d.ShapeType {
			d.ShapeType = *p.ShapeType
			m.changed = true
		}
		if p.Points != nil {
			d.Points = append([]Point(nil), (*p.Points)...)
			m.changed = true
		}
	case *TextData:
		m.str(&d.Content, p.Text)
		m.str(&d.FontFamily, p.FontFamily)
		m.float(&d.FontSize, p.FontSize)
		m.str(&d.FontWeight, p.FontWeight)
		m.str(&d.FontStyle, p.FontStyle)
		m.str(&d.TextAlign, p.TextAlign)
		m.str(&d.Color, p.Color)
		m.float(&d.Opacity, p.Opacity)
	case *ImageData:
		m.str(&d.Src, p.Src)
		m.str(&d.Alt, p.Alt)
		if p.Fit != nil && *p.Fit != d.Fit {
			d.Fit = *p.Fit
			m.changed = true
		}
		m.float(&d.Opacity, p.Opacity)
		if p.Bitmap != nil {
			d.Bitmap = p.Bitmap
			m.changed = true
		}
		if p.LoadState != nil && *p.LoadState != d.LoadState {
			d.LoadState = *p.LoadState
			m.changed = true
		}
	case *ComponentData:
		m.str(&d.Label, p.Label)
		m.str(&d.Text, p.Text)
		m.str(&d.Placeholder, p.Placeholder)
		m.str(&d.Title, p.Title)
		m.str(&d.Content, p.Content)
		if p.Checked != nil && *p.Checked != d.Checked {
			d.Checked = *p.Checked
			m.changed = true
		}
		m.float(&d.Min, p.Min)
		m.float(&d.Max, p.Max)
		m.float(&d.Value, p.Value)
		m.str(&d.Style.BackgroundColor, p.BackgroundColor)
		m.str(&d.Style.TextColor, p.Color)
		m.str(&d.Style.BorderColor, p.BorderColor)
		m.float(&d.Style.BorderWidth, p.BorderWidth)
		m.float(&d.Style.BorderRadius, p.BorderRadius)
		m.float(&d.Style.FontSize, p.FontSize)
		m.float(&d.Style.Padding, p.Padding)
		m.float(&d.Style.Opacity, p.Opacity)
	}
	return m.changed
}

type merger struct {
	changed bool
}

func (m *merger) float(dst *float64, v *float64) {
	if v != nil && *dst != *v {
		*dst = *v
		m.changed = true
	}
}

func (m *merger) str(dst *string, v *string) {
	if v != nil && *dst != *v {
		*dst = *v
		m.changed = true
	}
}

func (m *merger) style(dst *Style, p ElementPatch) {
	m.str(&dst.StrokeColor, p.StrokeColor)
	m.str(&dst.FillColor, p.FillColor)
	m.float(&dst.StrokeWidth, p.StrokeWidth)
	m.float(&dst.Opacity, p.Opacity)
}

// Float64 and String build patch fields inline.
func Float64(v float64) *float64 { return &v }
func String(v string) *string    { return &v }
func Bool(v bool) *bool          { return &v }
