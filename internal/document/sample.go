package document

import (
	"github.com/scenecraft/scenecraft/internal/typeid"
)

// NewSampleScene builds a small scene containing one element of each kind.
func NewSampleScene() *Scene {
	opts := DefaultCanvasOptions()

	rect := NewElement(typeid.NewElementID(), ElementRectangle, 40, 40, opts)
	rect.Width, rect.Height = 200, 120
	rect.Data.(*RectangleData).FillColor = "#e94560"

	circle := NewElement(typeid.NewElementID(), ElementCircle, 300, 60, opts)
	circle.Width, circle.Height = 100, 100
	cd := circle.Data.(*CircleData)
	cd.Radius = 50
	cd.FillColor = "#0f3460"
	cd.StrokeColor = "#16213e"

	line := NewElement(typeid.NewElementID(), ElementLine, 40, 220, opts)
	ld := line.Data.(*LineData)
	ld.EndX, ld.EndY = 400, 260
	line.Width, line.Height = 360, 40

	title := NewElement(typeid.NewElementID(), ElementText, 40, 300, opts)
	title.Width, title.Height = 300, 32
	td := title.Data.(*TextData)
	td.Content = "Hello, scene"
	td.FontSize = 24
	td.FontWeight = "bold"

	button := NewComponentElement(typeid.NewElementID(), ComponentButton, 40, 360)
	card := NewComponentElement(typeid.NewElementID(), ComponentCard, 440, 300)

	logo := NewImageElement(typeid.NewElementID(), "/assets/logo.png", 600, 40, 120, 120)
	logo.Data.(*ImageData).Fit = FitContain

	return &Scene{
		Elements:      []Element{rect, circle, line, title, button, card, logo},
		CanvasOptions: opts,
	}
}
