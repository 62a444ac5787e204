package engine

import (
	"math"

	"github.com/scenecraft/scenecraft/internal/document"
)

// Matrix2D represents a 2D affine transformation matrix.
// Layout: [a, b, c, d, e, f] representing:
// | a  c  e |
// | b  d  f |
// | 0  0  1 |
type Matrix2D [6]float64

// Identity returns the identity matrix.
func Identity() Matrix2D {
	return Matrix2D{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix2D {
	return Matrix2D{1, 0, 0, 1, tx, ty}
}

// Scale returns a scale matrix.
func Scale(sx, sy float64) Matrix2D {
	return Matrix2D{sx, 0, 0, sy, 0, 0}
}

// Rotate returns a rotation matrix (angle in radians).
func Rotate(radians float64) Matrix2D {
	cos := math.Cos(radians)
	sin := math.Sin(radians)
	return Matrix2D{cos, sin, -sin, cos, 0, 0}
}

// Multiply returns m * other, which applies other first.
func (m Matrix2D) Multiply(other Matrix2D) Matrix2D {
	return Matrix2D{
		m[0]*other[0] + m[2]*other[1],
		m[1]*other[0] + m[3]*other[1],
		m[0]*other[2] + m[2]*other[3],
		m[1]*other[2] + m[3]*other[3],
		m[0]*other[4] + m[2]*other[5] + m[4],
		m[1]*other[4] + m[3]*other[5] + m[5],
	}
}

// TransformPoint applies the matrix to a point.
func (m Matrix2D) TransformPoint(p document.Point) document.Point {
	return document.Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Determinant returns the determinant of the matrix.
func (m Matrix2D) Determinant() float64 {
	return m[0]*m[3] - m[1]*m[2]
}

// Invert returns the inverse of the matrix, or Identity if not invertible.
func (m Matrix2D) Invert() Matrix2D {
	det := m.Determinant()
	if det == 0 {
		return Identity()
	}

	invDet := 1.0 / det
	return Matrix2D{
		m[3] * invDet,
		-m[1] * invDet,
		-m[2] * invDet,
		m[0] * invDet,
		(m[2]*m[5] - m[3]*m[4]) * invDet,
		(m[1]*m[4] - m[0]*m[5]) * invDet,
	}
}

// ToSlice returns the matrix as a float64 slice for JSON serialization.
func (m Matrix2D) ToSlice() []float64 {
	return []float64{m[0], m[1], m[2], m[3], m[4], m[5]}
}

// ViewportMatrix maps canvas space to screen space for the given zoom and
// pan offset.
func ViewportMatrix(zoom, panX, panY float64) Matrix2D {
	if zoom <= 0 {
		zoom = 1
	}
	return Translate(panX, panY).Multiply(Scale(zoom, zoom))
}

// ScreenToCanvas divides a raw screen point by the viewport so it can be fed
// to the engine's pointer entry points.
func ScreenToCanvas(p document.Point, zoom, panX, panY float64) document.Point {
	return ViewportMatrix(zoom, panX, panY).Invert().TransformPoint(p)
}

// LineMatrix places a unit-length x axis along the segment from (x1, y1) to
// (x2, y2), rotating about the start point. It returns the matrix together
// with the segment length.
func LineMatrix(x1, y1, x2, y2 float64) (Matrix2D, float64) {
	dx, dy := x2-x1, y2-y1
	return Translate(x1, y1).Multiply(Rotate(math.Atan2(dy, dx))), math.Hypot(dx, dy)
}
