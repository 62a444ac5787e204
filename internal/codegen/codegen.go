// Package codegen compiles a scene into React and plain HTML/CSS markup.
//
// Output is deterministic: the same elements and options always produce
// byte-identical strings, and elements appear in list order.
package codegen

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/scenecraft/scenecraft/internal/document"
	"github.com/scenecraft/scenecraft/internal/engine"
)

// Output holds the three generated sources.
type Output struct {
	React string `json:"react"`
	HTML  string `json:"html"`
	CSS   string `json:"css"`
}

// Generate compiles elements against opts. Elements with an unknown type are
// skipped with a warning.
func Generate(elements []document.Element, opts document.CanvasOptions) Output {
	opts = opts.Normalize()
	items := collect(elements)
	return Output{
		React: generateReact(items, opts),
		HTML:  generateHTML(items),
		CSS:   generateCSS(items, opts),
	}
}

// item is an element paired with its position in the original list, which
// names its CSS class.
type item struct {
	index int
	el    document.Element
}

func (it item) className() string {
	return "element-" + strconv.Itoa(it.index)
}

func collect(elements []document.Element) []item {
	items := make([]item, 0, len(elements))
	for i, el := range elements {
		if !el.Valid() {
			slog.Warn("codegen: skipping element with unsupported type", "id", el.ID, "type", el.Type)
			continue
		}
		items = append(items, item{index: i, el: el.Normalized()})
	}
	return items
}

// prop is one style declaration. Declarations are kept in slices, never
// maps, so their order is stable.
type prop struct {
	name  string // camelCase, as used in React style objects
	value string
}

// boxProps positions an element absolutely by its bounding box.
func boxProps(el document.Element) []prop {
	b := engine.Bounds(el)
	return []prop{
		{"position", "absolute"},
		{"left", px(b.X)},
		{"top", px(b.Y)},
		{"width", px(b.Width)},
		{"height", px(b.Height)},
	}
}

func strokeProps(s document.Style) []prop {
	return []prop{
		{"border", fmt.Sprintf("%s solid %s", px(s.StrokeWidth), colorOr(s.StrokeColor, "transparent"))},
		{"backgroundColor", colorOr(s.FillColor, "transparent")},
		{"opacity", num(s.Opacity)},
	}
}

// lineProps draws a segment as a zero-height box rotated about its top-left
// corner.
func lineProps(x1, y1, x2, y2 float64, s document.Style) []prop {
	dx, dy := x2-x1, y2-y1
	return []prop{
		{"position", "absolute"},
		{"left", px(x1)},
		{"top", px(y1)},
		{"width", px(math.Hypot(dx, dy))},
		{"height", "0px"},
		{"borderTop", fmt.Sprintf("%s solid %s", px(s.StrokeWidth), colorOr(s.StrokeColor, "transparent"))},
		{"transform", fmt.Sprintf("rotate(%srad)", angle(math.Atan2(dy, dx)))},
		{"transformOrigin", "0 0"},
		{"opacity", num(s.Opacity)},
	}
}

// elementProps returns the full React style of an element.
func elementProps(el document.Element) []prop {
	switch d := el.Data.(type) {
	case *document.RectangleData:
		return append(boxProps(el), strokeProps(d.Style)...)
	case *document.CircleData:
		return append(append(boxProps(el), strokeProps(d.Style)...), prop{"borderRadius", "50%"})
	case *document.LineData:
		return lineProps(el.X, el.Y, d.EndX, d.EndY, d.Style)
	case *document.ShapeData:
		switch d.ShapeType {
		case document.ShapeLine:
			return lineProps(el.X, el.Y, el.X+el.Width, el.Y+el.Height, d.Style)
		case document.ShapeCircle:
			return append(append(boxProps(el), strokeProps(d.Style)...), prop{"borderRadius", "50%"})
		}
		return append(boxProps(el), strokeProps(d.Style)...)
	case *document.TextData:
		return append(boxProps(el),
			prop{"fontFamily", d.FontFamily},
			prop{"fontSize", px(d.FontSize)},
			prop{"fontWeight", d.FontWeight},
			prop{"fontStyle", d.FontStyle},
			prop{"color", d.Color},
			prop{"textAlign", d.TextAlign},
			prop{"opacity", num(d.Opacity)},
		)
	case *document.ImageData:
		return append(boxProps(el),
			prop{"objectFit", string(fitOr(d.Fit))},
			prop{"opacity", num(d.Opacity)},
		)
	case *document.ComponentData:
		return append(boxProps(el), componentProps(d.Style)...)
	}
	return boxProps(el)
}

func componentProps(s document.ComponentStyle) []prop {
	return []prop{
		{"backgroundColor", colorOr(s.BackgroundColor, "transparent")},
		{"color", colorOr(s.TextColor, "inherit")},
		{"border", fmt.Sprintf("%s solid %s", px(s.BorderWidth), colorOr(s.BorderColor, "transparent"))},
		{"borderRadius", px(s.BorderRadius)},
		{"fontSize", px(s.FontSize)},
		{"padding", px(s.Padding)},
		{"opacity", num(s.Opacity)},
		{"boxSizing", "border-box"},
	}
}

func fitOr(f document.ImageFit) document.ImageFit {
	switch f {
	case document.FitCover, document.FitContain, document.FitFill, document.FitNone, document.FitScaleDown:
		return f
	}
	return document.FitCover
}

func colorOr(c, fallback string) string {
	if c == "" {
		return fallback
	}
	return c
}

// num formats v with at most two decimals.
func num(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func px(v float64) string {
	return num(v) + "px"
}

func angle(rad float64) string {
	r := math.Round(rad*1e4) / 1e4
	if r == 0 {
		r = 0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}
