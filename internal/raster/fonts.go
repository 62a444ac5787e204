package raster

import (
	"fmt"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/scenecraft/scenecraft/internal/document"
)

// Fonts holds the embedded Go fonts and caches faces by size. Every font
// family in a scene is drawn with these.
type Fonts struct {
	regular *text.FontSource
	bold    *text.FontSource

	mu    sync.Mutex
	faces map[faceKey]text.Face
}

type faceKey struct {
	size float64
	bold bool
}

// LoadFonts parses the embedded font files.
func LoadFonts() (*Fonts, error) {
	regular, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("load regular font: %w", err)
	}
	bold, err := text.NewFontSource(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("load bold font: %w", err)
	}
	return &Fonts{
		regular: regular,
		bold:    bold,
		faces:   make(map[faceKey]text.Face),
	}, nil
}

// Face returns a face of the given size.
func (f *Fonts) Face(size float64, bold bool) text.Face {
	if size <= 0 {
		size = document.DefaultCanvasOptions().Text.FontSize
	}
	key := faceKey{size: size, bold: bold}

	f.mu.Lock()
	defer f.mu.Unlock()
	if face, ok := f.faces[key]; ok {
		return face
	}
	src := f.regular
	if bold {
		src = f.bold
	}
	face := src.Face(size)
	f.faces[key] = face
	return face
}

// MeasureText returns the advance width and line height of a text element's
// content.
func (f *Fonts) MeasureText(d *document.TextData) (float64, float64) {
	face := f.Face(d.FontSize, isBold(d.FontWeight))
	w, h := text.Measure(d.Content, face)
	if h == 0 {
		h = face.Metrics().LineHeight()
	}
	return w, h
}

func isBold(weight string) bool {
	switch weight {
	case "bold", "bolder", "600", "700", "800", "900":
		return true
	}
	return false
}
