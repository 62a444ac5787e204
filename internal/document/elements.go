package document

// NewElement creates a zero-size element of type t at (x, y) styled with the
// canvas defaults. Lines start and end at (x, y).
func NewElement(id string, t ElementType, x, y float64, opts CanvasOptions) Element {
	el := Element{
		ID:   id,
		Type: t,
		X:    x,
		Y:    y,
		Data: DefaultPayload(t, opts),
	}
	if line, ok := el.Data.(*LineData); ok {
		line.EndX = x
		line.EndY = y
	}
	return el
}

// NewImageElement creates an image element whose bitmap is not loaded yet.
func NewImageElement(id, src string, x, y, width, height float64) Element {
	return Element{
		ID:     id,
		Type:   ElementImage,
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
		Data: &ImageData{
			Src:       src,
			Fit:       FitCover,
			Opacity:   1,
			LoadState: ImagePending,
		},
	}
}

// NewComponentElement creates a component widget with its default size and
// content.
func NewComponentElement(id string, ct ComponentType, x, y float64) Element {
	w, h := DefaultComponentSize(ct)
	return Element{
		ID:     id,
		Type:   ElementComponent,
		X:      x,
		Y:      y,
		Width:  w,
		Height: h,
		Data:   defaultComponentData(ct),
	}
}

// DefaultComponentSize returns the width and height a freshly placed
// component of type ct gets.
func DefaultComponentSize(ct ComponentType) (float64, float64) {
	switch ct {
	case ComponentButton:
		return 120, 40
	case ComponentInput:
		return 200, 40
	case ComponentCheckbox:
		return 150, 24
	case ComponentCard:
		return 300, 200
	case ComponentSlider:
		return 200, 24
	case ComponentToggle:
		return 50, 24
	}
	return 100, 100
}

func defaultComponentData(ct ComponentType) *ComponentData {
	d := &ComponentData{
		ComponentType: ct,
		Style: ComponentStyle{
			BackgroundColor: "#ffffff",
			TextColor:       "#000000",
			BorderColor:     "#cccccc",
			BorderWidth:     1,
			BorderRadius:    4,
			FontSize:        14,
			Padding:         8,
			Opacity:         1,
		},
	}
	switch ct {
	case ComponentButton:
		d.Text = "Button"
		d.Style.BackgroundColor = "#3b82f6"
		d.Style.TextColor = "#ffffff"
		d.Style.BorderColor = "#3b82f6"
	case ComponentInput:
		d.Placeholder = "Enter text..."
	case ComponentCheckbox:
		d.Label = "Checkbox"
		d.Style.BorderWidth = 0
	case ComponentCard:
		d.Title = "Card Title"
		d.Content = "Card content goes here"
		d.Style.BorderRadius = 8
		d.Style.Padding = 16
	case ComponentSlider:
		d.Min = 0
		d.Max = 100
		d.Value = 50
		d.Style.BorderWidth = 0
	case ComponentToggle:
		d.Label = "Toggle"
		d.Style.BackgroundColor = "#e5e7eb"
		d.Style.BorderRadius = 12
	}
	return d
}
