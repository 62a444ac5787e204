package engine

import (
	"math"

	"github.com/scenecraft/scenecraft/internal/document"
)

// State is the pointer interaction state.
type State int

const (
	StateIdle State = iota
	StateCreating
	StateMoving
	StateResizing
)

func (s State) String() string {
	switch s {
	case StateCreating:
		return "creating"
	case StateMoving:
		return "moving"
	case StateResizing:
		return "resizing"
	}
	return "idle"
}

type SessionKind string

const (
	SessionCreate SessionKind = "create"
	SessionMove   SessionKind = "move"
	SessionResize SessionKind = "resize"
)

// Session is the transient state of one drag. It is never stored in history.
type Session struct {
	Kind     SessionKind
	TargetID string
	Handle   Handle
	Origin   Point
	// Start is the target as it was when the session opened.
	Start document.Element
}

// TransformEngine opens, updates and closes drag sessions against a store.
// At most one session is open at a time.
type TransformEngine struct {
	store   *ElementStore
	session *Session
}

func NewTransformEngine(store *ElementStore) *TransformEngine {
	return &TransformEngine{store: store}
}

// State reports the current interaction state.
func (t *TransformEngine) State() State {
	if t.session == nil {
		return StateIdle
	}
	switch t.session.Kind {
	case SessionCreate:
		return StateCreating
	case SessionMove:
		return StateMoving
	case SessionResize:
		return StateResizing
	}
	return StateIdle
}

// Session returns a copy of the open session.
func (t *TransformEngine) Session() (Session, bool) {
	if t.session == nil {
		return Session{}, false
	}
	return *t.session, true
}

// Begin opens a session of kind on the element id. Unknown ids leave the
// engine idle.
func (t *TransformEngine) Begin(kind SessionKind, id string, handle Handle, origin Point) bool {
	el, ok := t.store.Find(id)
	if !ok {
		return false
	}
	t.session = &Session{
		Kind:     kind,
		TargetID: id,
		Handle:   handle,
		Origin:   origin,
		Start:    el,
	}
	return true
}

// Update recomputes the target's geometry for pointer p and reports whether
// the store changed.
func (t *TransformEngine) Update(p Point) bool {
	s := t.session
	if s == nil {
		return false
	}
	dx, dy := p.X-s.Origin.X, p.Y-s.Origin.Y

	var patch document.ElementPatch
	switch s.Kind {
	case SessionMove:
		patch = movePatch(s.Start, dx, dy)
	case SessionResize:
		patch = resizePatch(s.Start, s.Handle, dx, dy)
	case SessionCreate:
		patch = createPatch(s.Start, p, dx, dy)
	}
	return t.store.UpdateByID(s.TargetID, patch)
}

// End closes the open session and returns it.
func (t *TransformEngine) End() (Session, bool) {
	if t.session == nil {
		return Session{}, false
	}
	s := *t.session
	t.session = nil
	return s, true
}

func movePatch(start document.Element, dx, dy float64) document.ElementPatch {
	patch := document.ElementPatch{
		X: document.Float64(start.X + dx),
		Y: document.Float64(start.Y + dy),
	}
	if ld, ok := start.Data.(*document.LineData); ok {
		patch.EndX = document.Float64(ld.EndX + dx)
		patch.EndY = document.Float64(ld.EndY + dy)
	}
	return patch
}

func createPatch(start document.Element, p Point, dx, dy float64) document.ElementPatch {
	switch start.Data.(type) {
	case *document.CircleData:
		r := math.Hypot(dx, dy)
		return document.ElementPatch{
			Width:  document.Float64(2 * r),
			Height: document.Float64(2 * r),
			Radius: document.Float64(r),
		}
	case *document.LineData:
		return document.ElementPatch{
			Width:  document.Float64(math.Abs(dx)),
			Height: document.Float64(math.Abs(dy)),
			EndX:   document.Float64(p.X),
			EndY:   document.Float64(p.Y),
		}
	}
	return document.ElementPatch{
		Width:  document.Float64(math.Abs(dx)),
		Height: document.Float64(math.Abs(dy)),
	}
}

// ResizeBox applies the rule for handle h to the box r moved by (dx, dy).
// Each side the handle touches follows the pointer; the opposite side stays
// fixed and neither extent drops below MinSize.
func ResizeBox(r Rect, h Handle, dx, dy float64) Rect {
	out := r
	switch h {
	case HandleNE, HandleE, HandleSE:
		out.Width = math.Max(MinSize, r.Width+dx)
	case HandleNW, HandleW, HandleSW:
		out.Width = math.Max(MinSize, r.Width-dx)
		out.X = r.X + r.Width - out.Width
	}
	switch h {
	case HandleSW, HandleS, HandleSE:
		out.Height = math.Max(MinSize, r.Height+dy)
	case HandleNW, HandleN, HandleNE:
		out.Height = math.Max(MinSize, r.Height-dy)
		out.Y = r.Y + r.Height - out.Height
	}
	return out
}

func resizePatch(start document.Element, h Handle, dx, dy float64) document.ElementPatch {
	box := ResizeBox(Bounds(start), h, dx, dy)
	patch := document.ElementPatch{
		X:      document.Float64(box.X),
		Y:      document.Float64(box.Y),
		Width:  document.Float64(box.Width),
		Height: document.Float64(box.Height),
	}

	switch d := start.Data.(type) {
	case *document.CircleData:
		patch.Radius = document.Float64(math.Min(box.Width, box.Height) / 2)
	case *document.LineData:
		// Keep the line running in the same direction across the new box.
		x1, x2 := box.X, box.X+box.Width
		if d.EndX < start.X {
			x1, x2 = x2, x1
		}
		y1, y2 := box.Y, box.Y+box.Height
		if d.EndY < start.Y {
			y1, y2 = y2, y1
		}
		patch.X, patch.EndX = document.Float64(x1), document.Float64(x2)
		patch.Y, patch.EndY = document.Float64(y1), document.Float64(y2)
	case *document.ShapeData:
		if len(d.Points) > 0 {
			old := Bounds(start)
			sx, sy := 1.0, 1.0
			if old.Width > 0 {
				sx = box.Width / old.Width
			}
			if old.Height > 0 {
				sy = box.Height / old.Height
			}
			pts := make([]document.Point, len(d.Points))
			for i, pt := range d.Points {
				pts[i] = document.Point{X: pt.X * sx, Y: pt.Y * sy}
			}
			patch.Points = &pts
		}
	}
	return patch
}
