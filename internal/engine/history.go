package engine

import (
	"reflect"

	"github.com/scenecraft/scenecraft/internal/document"
)

// History is a linear undo stack of full element-list snapshots. The entry at
// Index always matches the store after the most recent commit.
type History struct {
	snapshots [][]document.Element
	index     int
	limit     int
	rev       uint64
}

// NewHistory creates a history holding initial as its only entry. A positive
// limit caps the number of retained snapshots; the oldest are dropped first.
func NewHistory(initial []document.Element, limit int) *History {
	if limit > 0 && limit < 2 {
		limit = 2
	}
	return &History{
		snapshots: [][]document.Element{snapshotOf(initial)},
		limit:     limit,
	}
}

// Commit records snapshot as the newest entry. Entries after the cursor are
// discarded first, so an abandoned redo branch is lost.
func (h *History) Commit(snapshot []document.Element) {
	h.snapshots = h.snapshots[:h.index+1]
	h.snapshots = append(h.snapshots, snapshotOf(snapshot))
	if h.limit > 0 && len(h.snapshots) > h.limit {
		drop := len(h.snapshots) - h.limit
		h.snapshots = append([][]document.Element(nil), h.snapshots[drop:]...)
	}
	h.index = len(h.snapshots) - 1
	h.rev++
}

// Undo steps the cursor back and returns the snapshot there. It is a no-op
// at the oldest entry.
func (h *History) Undo() ([]document.Element, bool) {
	if h.index == 0 {
		return nil, false
	}
	h.index--
	h.rev++
	return document.CloneElements(h.snapshots[h.index]), true
}

// Redo steps the cursor forward and returns the snapshot there. It is a
// no-op at the newest entry.
func (h *History) Redo() ([]document.Element, bool) {
	if h.index >= len(h.snapshots)-1 {
		return nil, false
	}
	h.index++
	h.rev++
	return document.CloneElements(h.snapshots[h.index]), true
}

// Current returns a copy of the snapshot under the cursor.
func (h *History) Current() []document.Element {
	return document.CloneElements(h.snapshots[h.index])
}

// Matches reports whether elements equal the snapshot under the cursor,
// ignoring runtime-only image state.
func (h *History) Matches(elements []document.Element) bool {
	return reflect.DeepEqual(snapshotOf(elements), h.snapshots[h.index])
}

// Reset discards every entry and starts over from initial.
func (h *History) Reset(initial []document.Element) {
	h.snapshots = [][]document.Element{snapshotOf(initial)}
	h.index = 0
	h.rev++
}

// Revision increases on every commit, undo, redo and reset. Callers compare
// revisions to detect unsaved changes.
func (h *History) Revision() uint64 { return h.rev }

func (h *History) Len() int      { return len(h.snapshots) }
func (h *History) Index() int    { return h.index }
func (h *History) CanUndo() bool { return h.index > 0 }
func (h *History) CanRedo() bool { return h.index < len(h.snapshots)-1 }

// snapshotOf deep-copies elements and drops decoded bitmaps. Bitmaps are
// re-attached from the engine's cache when a snapshot is restored.
func snapshotOf(elements []document.Element) []document.Element {
	out := document.CloneElements(elements)
	for i := range out {
		if img, ok := out[i].Data.(*document.ImageData); ok {
			img.Bitmap = nil
			img.LoadState = document.ImagePending
		}
	}
	return out
}
