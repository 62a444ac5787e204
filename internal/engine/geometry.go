package engine

import (
	"math"

	"github.com/scenecraft/scenecraft/internal/document"
)

type Point = document.Point

const (
	// LineTolerance is how far a point may be from a line and still hit it.
	LineTolerance = 5.0
	// HandleTolerance is the half-size of the square around a resize handle.
	HandleTolerance = 8.0
	// MinSize is the smallest width or height a resize can produce.
	MinSize = 10.0
)

// Rect represents an axis-aligned bounding box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains checks if a point is inside the rect, edges included.
func (r Rect) Contains(p Point) bool {
	return PointInAABB(p, r.X, r.Y, r.Width, r.Height)
}

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Center returns the center point of the rect.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Bounds returns the normalized bounding box of an element. A line's box
// spans its two end points.
func Bounds(el document.Element) Rect {
	if ld, ok := el.Data.(*document.LineData); ok {
		return Rect{
			X:      math.Min(el.X, ld.EndX),
			Y:      math.Min(el.Y, ld.EndY),
			Width:  math.Abs(ld.EndX - el.X),
			Height: math.Abs(ld.EndY - el.Y),
		}
	}
	n := el.Normalized()
	return Rect{X: n.X, Y: n.Y, Width: n.Width, Height: n.Height}
}

// CircleGeometry returns the center and radius a circle element is drawn
// with. The radius comes from the payload when set, otherwise from the box.
func CircleGeometry(el document.Element) (Point, float64) {
	b := Bounds(el)
	r := math.Min(b.Width, b.Height) / 2
	if cd, ok := el.Data.(*document.CircleData); ok && cd.Radius > 0 {
		r = cd.Radius
	}
	return b.Center(), r
}

// PointInAABB reports whether p lies inside the box, edges included. Negative
// extents describe a box growing up or left from (x, y).
func PointInAABB(p Point, x, y, w, h float64) bool {
	if w < 0 {
		x += w
	}
	if h < 0 {
		y += h
	}
	w, h = math.Abs(w), math.Abs(h)
	return p.X >= x && p.X <= x+w && p.Y >= y && p.Y <= y+h
}

// PointInCircle reports whether p is within r of (cx, cy).
func PointInCircle(p Point, cx, cy, r float64) bool {
	return math.Hypot(p.X-cx, p.Y-cy) <= r
}

// DistancePointToSegment returns the distance from p to the closest point of
// segment ab.
func DistancePointToSegment(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	cx, cy := a.X+t*dx, a.Y+t*dy
	return math.Hypot(p.X-cx, p.Y-cy)
}

// Handle names one of the eight resize grips of a bounding box.
type Handle string

const (
	HandleNone Handle = ""
	HandleNW   Handle = "nw"
	HandleN    Handle = "n"
	HandleNE   Handle = "ne"
	HandleE    Handle = "e"
	HandleSE   Handle = "se"
	HandleS    Handle = "s"
	HandleSW   Handle = "sw"
	HandleW    Handle = "w"
)

// HandlePoint pairs a handle with its position.
type HandlePoint struct {
	Handle Handle
	Point  Point
}

// HandlePositions returns the handles of the box in the order
// nw, n, ne, e, se, s, sw, w.
func HandlePositions(x, y, w, h float64) [8]HandlePoint {
	return [8]HandlePoint{
		{HandleNW, Point{X: x, Y: y}},
		{HandleN, Point{X: x + w/2, Y: y}},
		{HandleNE, Point{X: x + w, Y: y}},
		{HandleE, Point{X: x + w, Y: y + h/2}},
		{HandleSE, Point{X: x + w, Y: y + h}},
		{HandleS, Point{X: x + w/2, Y: y + h}},
		{HandleSW, Point{X: x, Y: y + h}},
		{HandleW, Point{X: x, Y: y + h/2}},
	}
}
