package raster

import (
	"strconv"
	"strings"

	"github.com/gogpu/gg"
)

var namedColors = map[string]string{
	"black":  "#000000",
	"white":  "#ffffff",
	"red":    "#ff0000",
	"green":  "#008000",
	"blue":   "#0000ff",
	"gray":   "#808080",
	"grey":   "#808080",
	"yellow": "#ffff00",
	"orange": "#ffa500",
	"purple": "#800080",
}

// parseColor converts a CSS color into a gg color scaled by opacity. It
// reports false for empty, transparent, or unparseable values, which are
// not painted.
func parseColor(s string, opacity float64) (gg.RGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if named, ok := namedColors[s]; ok {
		s = named
	}

	var c gg.RGBA
	switch {
	case s == "" || s == "transparent" || s == "none":
		return gg.RGBA{}, false
	case strings.HasPrefix(s, "#"):
		switch len(s) {
		case 4, 5, 7, 9:
		default:
			return gg.RGBA{}, false
		}
		if _, err := strconv.ParseUint(s[1:], 16, 32); err != nil {
			return gg.RGBA{}, false
		}
		c = gg.Hex(s)
	case strings.HasPrefix(s, "rgb"):
		var ok bool
		if c, ok = parseRGBFunc(s); !ok {
			return gg.RGBA{}, false
		}
	default:
		return gg.RGBA{}, false
	}

	if opacity >= 0 && opacity < 1 {
		c.A *= opacity
	}
	if c.A <= 0 {
		return gg.RGBA{}, false
	}
	return c, true
}

// parseRGBFunc handles rgb(r, g, b) and rgba(r, g, b, a).
func parseRGBFunc(s string) (gg.RGBA, bool) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end <= open {
		return gg.RGBA{}, false
	}
	parts := strings.Split(s[open+1:end], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return gg.RGBA{}, false
	}
	vals := make([]float64, 4)
	vals[3] = 1
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return gg.RGBA{}, false
		}
		vals[i] = v
	}
	return gg.RGBA{R: vals[0] / 255, G: vals[1] / 255, B: vals[2] / 255, A: vals[3]}, true
}
