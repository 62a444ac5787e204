package engine

import (
	"image"
	"log/slog"

	"github.com/scenecraft/scenecraft/internal/document"
	"github.com/scenecraft/scenecraft/internal/typeid"
)

// Tool is the active interaction mode.
type Tool string

const (
	ToolSelect    Tool = "select"
	ToolRectangle Tool = "rectangle"
	ToolCircle    Tool = "circle"
	ToolLine      Tool = "line"
	ToolText      Tool = "text"
	ToolImage     Tool = "image"
	ToolComponent Tool = "component"
)

// Valid reports whether t names a known tool.
func (t Tool) Valid() bool {
	switch t {
	case ToolSelect, ToolRectangle, ToolCircle, ToolLine, ToolText, ToolImage, ToolComponent:
		return true
	}
	return false
}

// creates maps drag-to-create tools to the element type they produce.
var creates = map[Tool]document.ElementType{
	ToolRectangle: document.ElementRectangle,
	ToolCircle:    document.ElementCircle,
	ToolLine:      document.ElementLine,
	ToolText:      document.ElementText,
}

// TextMeasurer sizes a text element from its content and font.
type TextMeasurer interface {
	MeasureText(d *document.TextData) (width, height float64)
}

// approxMeasurer estimates text extents from the font size alone.
type approxMeasurer struct{}

func (approxMeasurer) MeasureText(d *document.TextData) (float64, float64) {
	return float64(len([]rune(d.Content))) * d.FontSize * 0.6, d.FontSize * 1.2
}

// Default size of an image placed with a single click.
const (
	DefaultImageWidth  = 200.0
	DefaultImageHeight = 150.0
)

type pendingImage struct {
	src           string
	width, height float64
}

type bitmapEntry struct {
	img    image.Image
	failed bool
}

// Engine is the editor core. It owns the element store, history, selection
// and the drag state machine, and processes input events one at a time.
// It is not safe for concurrent use.
type Engine struct {
	store     *ElementStore
	history   *History
	transform *TransformEngine
	options   document.CanvasOptions

	tool          Tool
	componentType document.ComponentType
	pending       *pendingImage

	selected string
	editing  string

	// Decoded bitmaps by source, re-attached after undo/redo.
	bitmaps map[string]bitmapEntry

	measurer TextMeasurer
	newID    func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithHistoryLimit caps the number of retained history snapshots.
func WithHistoryLimit(n int) Option {
	return func(e *Engine) {
		e.history = NewHistory(nil, n)
	}
}

// WithTextMeasurer sets the measurer used to size click-created text.
func WithTextMeasurer(m TextMeasurer) Option {
	return func(e *Engine) {
		if m != nil {
			e.measurer = m
		}
	}
}

// WithIDGenerator overrides how element ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// NewEngine creates an engine with an empty scene and default options.
func NewEngine(opts ...Option) *Engine {
	store := NewElementStore()
	e := &Engine{
		store:         store,
		history:       NewHistory(nil, 0),
		transform:     NewTransformEngine(store),
		options:       document.DefaultCanvasOptions(),
		tool:          ToolSelect,
		componentType: document.ComponentButton,
		bitmaps:       make(map[string]bitmapEntry),
		measurer:      approxMeasurer{},
		newID:         typeid.NewElementID,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// --- Scene ---

// LoadScene replaces the whole editor state. History restarts from the
// loaded elements.
func (e *Engine) LoadScene(scene *document.Scene) {
	if scene == nil {
		scene = document.NewEmptyScene()
	}
	e.transform.End()
	e.store.ReplaceAll(e.hydrate(scene.Elements))
	e.options = scene.CanvasOptions.Normalize()
	e.history.Reset(e.store.view())
	e.selected = ""
	e.editing = ""
}

// Scene returns a copy of the serializable state.
func (e *Engine) Scene() *document.Scene {
	return &document.Scene{
		Elements:      e.store.Elements(),
		CanvasOptions: e.options,
	}
}

// Elements returns a copy of the element list.
func (e *Engine) Elements() []document.Element {
	return e.store.Elements()
}

// Element returns a copy of the element with the given id.
func (e *Engine) Element(id string) (document.Element, bool) {
	return e.store.Find(id)
}

// ClearScene removes every element as one undoable step.
func (e *Engine) ClearScene() {
	e.closeSession()
	e.store.ReplaceAll(nil)
	e.selected = ""
	e.editing = ""
	e.commit()
}

func (e *Engine) CanvasOptions() document.CanvasOptions {
	return e.options
}

// SetCanvasOptions replaces the canvas options wholesale.
func (e *Engine) SetCanvasOptions(o document.CanvasOptions) {
	e.options = o.Normalize()
}

// --- Tools ---

func (e *Engine) Tool() Tool {
	return e.tool
}

// SetTool switches the active tool. Leaving the select tool clears the
// selection. Unknown tools are ignored.
func (e *Engine) SetTool(t Tool) {
	if !t.Valid() {
		slog.Warn("ignoring unknown tool", "tool", t)
		return
	}
	e.closeSession()
	e.tool = t
	if t != ToolSelect {
		e.selected = ""
	}
}

// SetComponentType sets the widget placed by the component tool.
func (e *Engine) SetComponentType(ct document.ComponentType) {
	e.componentType = ct
}

// SetPendingImage sets the source placed by the next image-tool click.
func (e *Engine) SetPendingImage(src string, width, height float64) {
	if src == "" {
		e.pending = nil
		return
	}
	if width <= 0 || height <= 0 {
		width, height = DefaultImageWidth, DefaultImageHeight
	}
	e.pending = &pendingImage{src: src, width: width, height: height}
}

// --- Selection ---

func (e *Engine) Selection() (string, bool) {
	return e.selected, e.selected != ""
}

// Select selects id if it exists.
func (e *Engine) Select(id string) bool {
	if _, ok := e.store.Find(id); !ok {
		return false
	}
	e.selected = id
	return true
}

func (e *Engine) Deselect() {
	e.selected = ""
}

// --- Pointer input ---

// State reports the drag state machine's state.
func (e *Engine) State() State {
	return e.transform.State()
}

// OnPointerDown handles a press at canvas point p with the given tool.
func (e *Engine) OnPointerDown(p Point, tool Tool) {
	if tool != e.tool {
		e.SetTool(tool)
	}
	e.closeSession()

	switch e.tool {
	case ToolSelect:
		if sel, ok := e.store.Find(e.selected); ok {
			if h, ok := HitHandle(sel, p); ok {
				e.transform.Begin(SessionResize, sel.ID, h, p)
				return
			}
		}
		if id, ok := HitElement(e.store.view(), p); ok {
			e.selected = id
			e.transform.Begin(SessionMove, id, HandleNone, p)
			return
		}
		e.selected = ""

	case ToolRectangle, ToolCircle, ToolLine, ToolText:
		el := document.NewElement(e.newID(), creates[e.tool], p.X, p.Y, e.options)
		e.store.Add(el)
		e.selected = el.ID
		e.transform.Begin(SessionCreate, el.ID, HandleNone, p)

	case ToolComponent:
		e.InsertComponent(e.componentType, p.X, p.Y)

	case ToolImage:
		if e.pending == nil {
			return
		}
		e.InsertImage(e.pending.src, p.X, p.Y, e.pending.width, e.pending.height)
	}
}

// OnPointerMove updates the open session, if any, and reports whether the
// scene changed.
func (e *Engine) OnPointerMove(p Point) bool {
	return e.transform.Update(p)
}

// OnPointerUp applies the final pointer position and commits the session.
func (e *Engine) OnPointerUp(p Point) {
	e.transform.Update(p)
	e.closeSession()
}

// OnPointerLeave commits the open session with whatever geometry it has.
func (e *Engine) OnPointerLeave() {
	e.closeSession()
}

// OnDoubleClick opens a text edit on the text element under p. It reports
// whether an edit was opened.
func (e *Engine) OnDoubleClick(p Point) bool {
	if e.tool != ToolSelect {
		return false
	}
	id, ok := HitElement(e.store.view(), p)
	if !ok {
		return false
	}
	el, _ := e.store.Find(id)
	if el.Type != document.ElementText {
		return false
	}
	e.selected = id
	e.editing = id
	return true
}

// OnDeleteKey removes the selected element.
func (e *Engine) OnDeleteKey() bool {
	if e.selected == "" {
		return false
	}
	e.closeSession()
	if !e.store.RemoveByID(e.selected) {
		e.selected = ""
		return false
	}
	if e.editing == e.selected {
		e.editing = ""
	}
	e.selected = ""
	e.commit()
	return true
}

// OnUndo restores the previous snapshot. It is a no-op at the oldest entry.
func (e *Engine) OnUndo() bool {
	e.closeSession()
	snapshot, ok := e.history.Undo()
	if !ok {
		return false
	}
	e.restore(snapshot)
	return true
}

// OnRedo restores the next snapshot. It is a no-op at the newest entry.
func (e *Engine) OnRedo() bool {
	e.closeSession()
	snapshot, ok := e.history.Redo()
	if !ok {
		return false
	}
	e.restore(snapshot)
	return true
}

func (e *Engine) CanUndo() bool { return e.history.CanUndo() }
func (e *Engine) CanRedo() bool { return e.history.CanRedo() }

// History exposes the snapshot stack for inspection.
func (e *Engine) History() *History {
	return e.history
}

// --- Text editing ---

// EditingElementID returns the id of the text element being edited.
func (e *Engine) EditingElementID() (string, bool) {
	return e.editing, e.editing != ""
}

// CommitText replaces the content of text element id and closes the edit.
func (e *Engine) CommitText(id, content string) bool {
	if e.editing == id {
		e.editing = ""
	}
	el, ok := e.store.Find(id)
	if !ok || el.Type != document.ElementText {
		return false
	}
	cur, ok := el.Data.(*document.TextData)
	if !ok || cur == nil {
		return false
	}
	td := *cur
	td.Content = content
	w, h := e.measurer.MeasureText(&td)

	patch := document.ElementPatch{Text: document.String(content)}
	if w > el.Width {
		patch.Width = document.Float64(w)
	}
	if h > el.Height {
		patch.Height = document.Float64(h)
	}
	if !e.store.UpdateByID(id, patch) {
		return false
	}
	e.commit()
	return true
}

// CancelTextEdit closes the text edit without changes.
func (e *Engine) CancelTextEdit() {
	e.editing = ""
}

// --- Property edits ---

// UpdateElement applies a property patch as one undoable step.
func (e *Engine) UpdateElement(id string, patch document.ElementPatch) bool {
	patch.Bitmap = nil
	patch.LoadState = nil
	if patch.Src != nil {
		pending := document.ImagePending
		patch.LoadState = &pending
	}
	if !e.store.UpdateByID(id, patch) {
		return false
	}
	if patch.Src != nil {
		e.rehydrate(id)
	}
	e.commit()
	return true
}

// InsertImage places an image element and selects it. The bitmap is attached
// later through AttachBitmap.
func (e *Engine) InsertImage(src string, x, y, width, height float64) string {
	e.closeSession()
	if width <= 0 || height <= 0 {
		width, height = DefaultImageWidth, DefaultImageHeight
	}
	el := document.NewImageElement(e.newID(), src, x, y, width, height)
	e.store.Add(el)
	e.rehydrate(el.ID)
	e.selected = el.ID
	e.commit()
	return el.ID
}

// InsertComponent places a default-size widget and selects it.
func (e *Engine) InsertComponent(ct document.ComponentType, x, y float64) string {
	e.closeSession()
	el := document.NewComponentElement(e.newID(), ct, x, y)
	e.store.Add(el)
	e.selected = el.ID
	e.commit()
	return el.ID
}

// --- Images ---

// PendingImageSources lists the sources of image elements that still need a
// bitmap, in element order without duplicates.
func (e *Engine) PendingImageSources() []string {
	seen := make(map[string]bool)
	var out []string
	for _, el := range e.store.view() {
		d, ok := el.Data.(*document.ImageData)
		if !ok || d.Src == "" || d.LoadState != document.ImagePending || seen[d.Src] {
			continue
		}
		if _, cached := e.bitmaps[d.Src]; cached {
			continue
		}
		seen[d.Src] = true
		out = append(out, d.Src)
	}
	return out
}

// AttachBitmap records the outcome of loading src and updates every image
// element that references it. A nil img marks the source as failed. The
// update is not an undoable step.
func (e *Engine) AttachBitmap(src string, img image.Image) int {
	e.bitmaps[src] = bitmapEntry{img: img, failed: img == nil}
	n := 0
	for _, el := range e.store.view() {
		if d, ok := el.Data.(*document.ImageData); ok && d.Src == src {
			if e.rehydrate(el.ID) {
				n++
			}
		}
	}
	return n
}

func (e *Engine) rehydrate(id string) bool {
	el, ok := e.store.Find(id)
	if !ok {
		return false
	}
	d, ok := el.Data.(*document.ImageData)
	if !ok {
		return false
	}
	entry, ok := e.bitmaps[d.Src]
	if !ok {
		return false
	}
	state := document.ImageLoaded
	if entry.failed {
		state = document.ImageFailed
	}
	return e.store.UpdateByID(id, document.ElementPatch{Bitmap: entry.img, LoadState: &state})
}

func (e *Engine) hydrate(elements []document.Element) []document.Element {
	out := document.CloneElements(elements)
	for i := range out {
		d, ok := out[i].Data.(*document.ImageData)
		if !ok {
			continue
		}
		if entry, ok := e.bitmaps[d.Src]; ok {
			d.Bitmap = entry.img
			d.LoadState = document.ImageLoaded
			if entry.failed {
				d.LoadState = document.ImageFailed
			}
		}
	}
	return out
}

// --- Rendering ---

// Paint draws every element in list order, then the selection overlay.
// Elements with an unknown type are skipped.
func (e *Engine) Paint(r Renderer) {
	var selected *document.Element
	for _, el := range e.store.view() {
		if !el.Valid() {
			slog.Warn("skipping element with unsupported type", "id", el.ID, "type", el.Type)
			continue
		}
		isSelected := el.ID == e.selected
		if isSelected {
			s := el
			selected = &s
		}
		r.Draw(el.Normalized(), isSelected)
	}
	if selected != nil {
		r.DrawSelectionOverlay(Bounds(*selected))
	}
}

// DrawCommands paints into a CommandRecorder and returns the commands.
func (e *Engine) DrawCommands() []DrawCommand {
	rec := NewCommandRecorder()
	e.Paint(rec)
	return rec.Commands()
}

// --- internals ---

// closeSession ends the open drag, if any, and commits the result.
func (e *Engine) closeSession() {
	s, ok := e.transform.End()
	if !ok {
		return
	}
	if s.Kind == SessionCreate {
		e.finishCreate(s.TargetID)
	}
	e.commit()
}

// finishCreate sizes text created by a click without a drag.
func (e *Engine) finishCreate(id string) {
	el, ok := e.store.Find(id)
	if !ok {
		return
	}
	td, ok := el.Data.(*document.TextData)
	if !ok || el.Width != 0 || el.Height != 0 {
		return
	}
	w, h := e.measurer.MeasureText(td)
	e.store.UpdateByID(id, document.ElementPatch{Width: document.Float64(w), Height: document.Float64(h)})
}

// commit records the store in history unless it already matches the head.
func (e *Engine) commit() {
	if e.history.Matches(e.store.view()) {
		return
	}
	e.history.Commit(e.store.view())
}

func (e *Engine) restore(snapshot []document.Element) {
	e.store.ReplaceAll(e.hydrate(snapshot))
	if _, ok := e.store.Find(e.selected); !ok {
		e.selected = ""
	}
	if _, ok := e.store.Find(e.editing); !ok {
		e.editing = ""
	}
}
