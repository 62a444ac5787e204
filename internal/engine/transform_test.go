package engine

import (
	"math"
	"testing"

	"github.com/scenecraft/scenecraft/internal/document"
)

func TestResizeBox(t *testing.T) {
	start := Rect{X: 100, Y: 100, Width: 200, Height: 100}
	tests := []struct {
		handle Handle
		dx, dy float64
		want   Rect
	}{
		{HandleSE, 20, 10, Rect{100, 100, 220, 110}},
		{HandleSE, -10000, -10000, Rect{100, 100, 10, 10}},
		{HandleNW, 20, 10, Rect{120, 110, 180, 90}},
		{HandleNW, 10000, 10000, Rect{290, 190, 10, 10}},
		{HandleN, 50, -30, Rect{100, 70, 200, 130}},
		{HandleS, 50, 30, Rect{100, 100, 200, 130}},
		{HandleE, 50, 30, Rect{100, 100, 250, 100}},
		{HandleW, 50, 30, Rect{150, 100, 150, 100}},
		{HandleNE, 10, 10, Rect{100, 110, 210, 90}},
		{HandleSW, 10, 10, Rect{110, 100, 190, 110}},
	}
	for _, tt := range tests {
		t.Run(string(tt.handle), func(t *testing.T) {
			got := ResizeBox(start, tt.handle, tt.dx, tt.dy)
			if got != tt.want {
				t.Errorf("ResizeBox(%s, %v, %v) = %+v, want %+v", tt.handle, tt.dx, tt.dy, got, tt.want)
			}
		})
	}
}

func TestResizeMinimumSizeAnyElement(t *testing.T) {
	opts := document.DefaultCanvasOptions()
	elements := []document.Element{
		rect("r", 10, 20, 100, 50),
		circle("c", 10, 20, 40),
		{ID: "t", Type: document.ElementText, X: 10, Y: 20, Width: 80, Height: 20, Data: document.DefaultPayload(document.ElementText, opts)},
		document.NewComponentElement("k", document.ComponentCard, 10, 20),
		document.NewImageElement("i", "a.png", 10, 20, 64, 64),
	}
	for _, el := range elements {
		t.Run(string(el.Type), func(t *testing.T) {
			store := NewElementStore()
			store.Add(el)
			te := NewTransformEngine(store)
			te.Begin(SessionResize, el.ID, HandleSE, Point{})
			te.Update(Point{X: -10000, Y: -10000})
			te.End()

			got, _ := store.Find(el.ID)
			if got.Width != 10 || got.Height != 10 {
				t.Errorf("size = %vx%v, want 10x10", got.Width, got.Height)
			}
			if got.X != 10 || got.Y != 20 {
				t.Errorf("origin = (%v,%v), want (10,20)", got.X, got.Y)
			}
		})
	}
}

func TestResizeCircleRadiusFollowsBox(t *testing.T) {
	store := NewElementStore()
	store.Add(circle("c", 0, 0, 50))
	te := NewTransformEngine(store)
	te.Begin(SessionResize, "c", HandleE, Point{X: 100, Y: 50})
	te.Update(Point{X: 160, Y: 50})

	got, _ := store.Find("c")
	if r := got.Data.(*document.CircleData).Radius; r != 50 {
		t.Errorf("radius = %v, want 50 (limited by height)", r)
	}
	if got.Width != 160 {
		t.Errorf("width = %v, want 160", got.Width)
	}
}

func TestResizeLineKeepsDirection(t *testing.T) {
	store := NewElementStore()
	store.Add(line("l", 100, 0, 0, 100))
	te := NewTransformEngine(store)
	te.Begin(SessionResize, "l", HandleSE, Point{X: 100, Y: 100})
	te.Update(Point{X: 200, Y: 200})

	got, _ := store.Find("l")
	ld := got.Data.(*document.LineData)
	if got.X != 200 || got.Y != 0 || ld.EndX != 0 || ld.EndY != 200 {
		t.Errorf("line = (%v,%v)->(%v,%v), want (200,0)->(0,200)", got.X, got.Y, ld.EndX, ld.EndY)
	}
}

func TestMoveTranslatesLineEnd(t *testing.T) {
	store := NewElementStore()
	store.Add(line("l", 0, 0, 100, 50))
	te := NewTransformEngine(store)
	te.Begin(SessionMove, "l", HandleNone, Point{X: 10, Y: 10})
	te.Update(Point{X: 40, Y: 30})

	got, _ := store.Find("l")
	ld := got.Data.(*document.LineData)
	if got.X != 30 || got.Y != 20 || ld.EndX != 130 || ld.EndY != 70 {
		t.Errorf("line = (%v,%v)->(%v,%v), want (30,20)->(130,70)", got.X, got.Y, ld.EndX, ld.EndY)
	}
}

func TestMoveKeepsSize(t *testing.T) {
	store := NewElementStore()
	store.Add(rect("a", 10, 10, 100, 50))
	te := NewTransformEngine(store)
	te.Begin(SessionMove, "a", HandleNone, Point{X: 50, Y: 30})
	te.Update(Point{X: 60, Y: 10})
	te.Update(Point{X: 70, Y: 50})

	got, _ := store.Find("a")
	if got.X != 30 || got.Y != 30 || got.Width != 100 || got.Height != 50 {
		t.Errorf("element = %+v, want {30 30 100 50}", Bounds(got))
	}
}

func TestCreateCircleRadius(t *testing.T) {
	store := NewElementStore()
	store.Add(document.NewElement("c", document.ElementCircle, 0, 0, document.DefaultCanvasOptions()))
	te := NewTransformEngine(store)
	te.Begin(SessionCreate, "c", HandleNone, Point{X: 0, Y: 0})
	te.Update(Point{X: 30, Y: 40})

	got, _ := store.Find("c")
	if r := got.Data.(*document.CircleData).Radius; math.Abs(r-50) > 1e-9 {
		t.Errorf("radius = %v, want 50", r)
	}
	if got.Width != 100 || got.Height != 100 {
		t.Errorf("size = %vx%v, want 100x100", got.Width, got.Height)
	}
}

func TestTransformStates(t *testing.T) {
	store := NewElementStore()
	store.Add(rect("a", 0, 0, 10, 10))
	te := NewTransformEngine(store)
	if te.State() != StateIdle {
		t.Fatalf("State() = %s, want idle", te.State())
	}
	if te.Begin(SessionMove, "missing", HandleNone, Point{}) {
		t.Error("Begin() on unknown id succeeded")
	}
	te.Begin(SessionResize, "a", HandleSE, Point{})
	if te.State() != StateResizing {
		t.Errorf("State() = %s, want resizing", te.State())
	}
	s, ok := te.End()
	if !ok || s.Kind != SessionResize || s.Handle != HandleSE {
		t.Errorf("End() = %+v, %v", s, ok)
	}
	if te.Update(Point{X: 5, Y: 5}) {
		t.Error("Update() with no session changed the store")
	}
}
