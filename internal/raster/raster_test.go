package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/scenecraft/scenecraft/internal/document"
	"github.com/scenecraft/scenecraft/internal/engine"
)

func loadFonts(t *testing.T) *Fonts {
	t.Helper()
	fonts, err := LoadFonts()
	if err != nil {
		t.Fatalf("LoadFonts() error = %v", err)
	}
	return fonts
}

func smallCanvas() document.CanvasOptions {
	opts := document.DefaultCanvasOptions()
	opts.Width, opts.Height = 100, 80
	return opts
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	r, g, b, a := img.At(x, y).RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

func TestRenderPNGSizeAndFill(t *testing.T) {
	e := engine.NewEngine()
	scene := document.NewEmptyScene()
	scene.CanvasOptions = smallCanvas()

	rect := document.NewElement("r", document.ElementRectangle, 10, 10, scene.CanvasOptions)
	rect.Width, rect.Height = 40, 30
	rect.Data.(*document.RectangleData).FillColor = "#ff0000"
	scene.Elements = append(scene.Elements, rect)
	e.LoadScene(scene)

	var buf bytes.Buffer
	if err := RenderPNG(&buf, e, loadFonts(t)); err != nil {
		t.Fatalf("RenderPNG() error = %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 80 {
		t.Fatalf("size = %dx%d, want 100x80", b.Dx(), b.Dy())
	}
	if got := rgbaAt(img, 30, 25); got.R < 200 || got.G > 50 || got.B > 50 {
		t.Errorf("inside rect = %v, want red", got)
	}
	if got := rgbaAt(img, 80, 70); got.R < 200 || got.G < 200 || got.B < 200 {
		t.Errorf("background = %v, want white", got)
	}
}

func TestRenderSampleSceneDoesNotPanic(t *testing.T) {
	e := engine.NewEngine()
	e.LoadScene(document.NewSampleScene())
	scene := e.Scene()
	scene.Elements = append(scene.Elements, document.Element{ID: "x", Type: "hexagon"})
	e.LoadScene(scene)
	e.AttachBitmap("/assets/logo.png", image.NewRGBA(image.Rect(0, 0, 4, 4)))
	e.Select(scene.Elements[0].ID)

	var buf bytes.Buffer
	if err := RenderPNG(&buf, e, loadFonts(t)); err != nil {
		t.Fatalf("RenderPNG() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Error("empty PNG output")
	}
}

func TestFailedImageDrawsErrorPlaceholder(t *testing.T) {
	r := NewRenderer(smallCanvas(), loadFonts(t))
	defer r.Close()

	el := document.NewImageElement("i", "missing.png", 0, 0, 60, 60)
	el.Data.(*document.ImageData).LoadState = document.ImageFailed
	r.Draw(el, false)

	got := rgbaAt(r.Image(), 30, 10)
	if got.R < 240 || got.G > 240 {
		t.Errorf("placeholder pixel = %v, want error tint", got)
	}
}

func TestFitRect(t *testing.T) {
	box := engine.Rect{X: 0, Y: 0, Width: 100, Height: 50}
	tests := []struct {
		fit  document.ImageFit
		want engine.Rect
	}{
		{document.FitFill, box},
		{document.FitContain, engine.Rect{X: 25, Y: 0, Width: 50, Height: 50}},
		{document.FitCover, engine.Rect{X: 0, Y: -25, Width: 100, Height: 100}},
		{document.FitNone, engine.Rect{X: 30, Y: 5, Width: 40, Height: 40}},
		{document.FitScaleDown, engine.Rect{X: 30, Y: 5, Width: 40, Height: 40}},
	}
	for _, tt := range tests {
		t.Run(string(tt.fit), func(t *testing.T) {
			iw, ih := 200.0, 200.0
			if tt.fit == document.FitNone || tt.fit == document.FitScaleDown {
				iw, ih = 40, 40
			}
			if got := FitRect(tt.fit, iw, ih, box); got != tt.want {
				t.Errorf("FitRect() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		opacity float64
		ok      bool
		alpha   float64
	}{
		{"#ff0000", 1, true, 1},
		{"#f00", 0.5, true, 0.5},
		{"red", 1, true, 1},
		{"rgba(0, 0, 255, 0.25)", 1, true, 0.25},
		{"transparent", 1, false, 0},
		{"", 1, false, 0},
		{"#zzzzzz", 1, false, 0},
		{"#ff0000", 0, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, ok := parseColor(tt.in, tt.opacity)
			if ok != tt.ok {
				t.Fatalf("parseColor(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && c.A != tt.alpha {
				t.Errorf("alpha = %v, want %v", c.A, tt.alpha)
			}
		})
	}
}

func TestFontsMeasureText(t *testing.T) {
	fonts := loadFonts(t)
	short := &document.TextData{Content: "Hi", FontSize: 16}
	long := &document.TextData{Content: "Hello, world", FontSize: 16}
	sw, sh := fonts.MeasureText(short)
	lw, _ := fonts.MeasureText(long)
	if sw <= 0 || sh <= 0 {
		t.Fatalf("MeasureText() = %v, %v, want positive", sw, sh)
	}
	if lw <= sw {
		t.Errorf("longer text measured %v <= %v", lw, sw)
	}
	if fonts.Face(16, false) != fonts.Face(16, false) {
		t.Error("Face() not cached")
	}
}
