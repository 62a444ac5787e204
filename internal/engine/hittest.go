package engine

import (
	"math"

	"github.com/scenecraft/scenecraft/internal/document"
)

// handleOrder is the priority in which handles are tested. Corners come
// before edge midpoints.
var handleOrder = [8]Handle{HandleNW, HandleNE, HandleSW, HandleSE, HandleN, HandleE, HandleS, HandleW}

// HitHandle returns the resize handle of el under p, if any. A handle matches
// when p lies within HandleTolerance of it on both axes.
func HitHandle(el document.Element, p Point) (Handle, bool) {
	b := Bounds(el)
	positions := HandlePositions(b.X, b.Y, b.Width, b.Height)

	for _, want := range handleOrder {
		for _, hp := range positions {
			if hp.Handle != want {
				continue
			}
			if math.Abs(p.X-hp.Point.X) <= HandleTolerance && math.Abs(p.Y-hp.Point.Y) <= HandleTolerance {
				return want, true
			}
		}
	}
	return HandleNone, false
}

// HitElement returns the id of the topmost element under p. Elements later in
// the list are on top.
func HitElement(elements []document.Element, p Point) (string, bool) {
	for i := len(elements) - 1; i >= 0; i-- {
		if ElementContains(elements[i], p) {
			return elements[i].ID, true
		}
	}
	return "", false
}

// ElementContains runs the type-specific contains test for el. Elements
// without a payload never match.
func ElementContains(el document.Element, p Point) bool {
	switch d := el.Data.(type) {
	case *document.RectangleData, *document.TextData, *document.ImageData, *document.ComponentData:
		return PointInAABB(p, el.X, el.Y, el.Width, el.Height)
	case *document.CircleData:
		c, r := CircleGeometry(el)
		return PointInCircle(p, c.X, c.Y, r)
	case *document.LineData:
		return DistancePointToSegment(p, Point{X: el.X, Y: el.Y}, Point{X: d.EndX, Y: d.EndY}) <= LineTolerance
	case *document.ShapeData:
		return shapeContains(el, d, p)
	}
	return false
}

func shapeContains(el document.Element, d *document.ShapeData, p Point) bool {
	switch d.ShapeType {
	case document.ShapeCircle:
		b := Bounds(el)
		c := b.Center()
		return PointInCircle(p, c.X, c.Y, math.Min(b.Width, b.Height)/2)
	case document.ShapeLine:
		a := Point{X: el.X, Y: el.Y}
		b := Point{X: el.X + el.Width, Y: el.Y + el.Height}
		return DistancePointToSegment(p, a, b) <= LineTolerance
	case document.ShapePath:
		if d.Closed || len(d.Points) < 2 {
			return PointInAABB(p, el.X, el.Y, el.Width, el.Height)
		}
		for i := 1; i < len(d.Points); i++ {
			a := Point{X: el.X + d.Points[i-1].X, Y: el.Y + d.Points[i-1].Y}
			b := Point{X: el.X + d.Points[i].X, Y: el.Y + d.Points[i].Y}
			if DistancePointToSegment(p, a, b) <= LineTolerance {
				return true
			}
		}
		return false
	}
	return PointInAABB(p, el.X, el.Y, el.Width, el.Height)
}
