package engine

import (
	"image"
	"reflect"
	"testing"

	"github.com/scenecraft/scenecraft/internal/document"
)

func ids(elements []document.Element) []string {
	out := make([]string, 0, len(elements))
	for _, el := range elements {
		out = append(out, el.ID)
	}
	return out
}

func TestHistoryRedoTailTruncation(t *testing.T) {
	a, b, c := rect("A", 0, 0, 10, 10), rect("B", 0, 0, 10, 10), rect("C", 0, 0, 10, 10)

	h := NewHistory(nil, 0)
	h.Commit([]document.Element{a})
	h.Commit([]document.Element{a, b})
	if h.Len() != 3 || h.Index() != 2 {
		t.Fatalf("len, index = %d, %d, want 3, 2", h.Len(), h.Index())
	}

	got, ok := h.Undo()
	if !ok || !reflect.DeepEqual(ids(got), []string{"A"}) {
		t.Fatalf("Undo() = %v, %v, want [A]", ids(got), ok)
	}

	h.Commit([]document.Element{a, c})
	if h.Len() != 3 || h.Index() != 2 {
		t.Fatalf("after commit len, index = %d, %d, want 3, 2", h.Len(), h.Index())
	}
	if !reflect.DeepEqual(ids(h.Current()), []string{"A", "C"}) {
		t.Errorf("Current() = %v, want [A C]", ids(h.Current()))
	}
	if _, ok := h.Redo(); ok {
		t.Error("Redo() after truncating commit succeeded, want no-op")
	}
}

func TestHistoryBoundsAreNoOps(t *testing.T) {
	h := NewHistory([]document.Element{rect("A", 0, 0, 1, 1)}, 0)
	if _, ok := h.Undo(); ok {
		t.Error("Undo() at index 0 succeeded")
	}
	if _, ok := h.Redo(); ok {
		t.Error("Redo() at tail succeeded")
	}
	if h.Index() != 0 || h.Len() != 1 {
		t.Errorf("index, len = %d, %d, want 0, 1", h.Index(), h.Len())
	}
}

func TestHistoryUndoRedoInverse(t *testing.T) {
	h := NewHistory(nil, 0)
	states := [][]document.Element{
		{rect("A", 0, 0, 10, 10)},
		{rect("A", 5, 5, 10, 10)},
		{rect("A", 5, 5, 10, 10), rect("B", 1, 1, 2, 2)},
	}
	for _, s := range states {
		h.Commit(s)
	}
	for h.CanUndo() {
		before := h.Current()
		if _, ok := h.Undo(); !ok {
			t.Fatal("Undo() failed while CanUndo")
		}
		after, ok := h.Redo()
		if !ok {
			t.Fatal("Redo() failed right after Undo")
		}
		if !reflect.DeepEqual(before, after) {
			t.Fatalf("undo+redo changed state: %v != %v", ids(before), ids(after))
		}
		h.Undo()
	}
}

func TestHistorySnapshotsAreIsolated(t *testing.T) {
	live := []document.Element{rect("A", 0, 0, 10, 10)}
	h := NewHistory(nil, 0)
	h.Commit(live)
	live[0].X = 99
	live[0].Data.(*document.RectangleData).FillColor = "#ff0000"

	cur := h.Current()
	if cur[0].X != 0 || cur[0].Data.(*document.RectangleData).FillColor == "#ff0000" {
		t.Error("snapshot shares memory with the live list")
	}
}

func TestHistoryLimitDropsOldest(t *testing.T) {
	h := NewHistory(nil, 3)
	for i := 0; i < 5; i++ {
		h.Commit([]document.Element{rect("A", float64(i), 0, 1, 1)})
	}
	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", h.Len())
	}
	if h.Index() != 2 {
		t.Errorf("Index() = %d, want 2", h.Index())
	}
	h.Undo()
	h.Undo()
	if got := h.Current()[0].X; got != 2 {
		t.Errorf("oldest retained X = %v, want 2", got)
	}
}

func TestHistoryMatchesIgnoresBitmaps(t *testing.T) {
	el := document.NewImageElement("i", "a.png", 0, 0, 10, 10)
	h := NewHistory([]document.Element{el}, 0)

	loaded := el.Clone()
	d := loaded.Data.(*document.ImageData)
	d.Bitmap = image.NewRGBA(image.Rect(0, 0, 1, 1))
	d.LoadState = document.ImageLoaded

	if !h.Matches([]document.Element{loaded}) {
		t.Error("Matches() = false for a list that only differs by bitmap")
	}
	if h.Current()[0].Data.(*document.ImageData).Bitmap != nil {
		t.Error("snapshot retained a bitmap")
	}
}

func TestHistoryRevision(t *testing.T) {
	h := NewHistory(nil, 0)
	start := h.Revision()

	h.Commit([]document.Element{document.NewImageElement("i", "a.png", 0, 0, 1, 1)})
	afterCommit := h.Revision()
	if afterCommit == start {
		t.Fatal("Commit() did not advance Revision()")
	}
	h.Undo()
	h.Redo()
	if h.Revision() != afterCommit+2 {
		t.Errorf("Revision() = %d, want %d", h.Revision(), afterCommit+2)
	}
	rev := h.Revision()
	h.Redo()
	if h.Revision() != rev {
		t.Error("no-op Redo() advanced Revision()")
	}
}

func TestHistoryCommitKeepsDuplicates(t *testing.T) {
	els := []document.Element{document.NewElement("a", document.ElementRectangle, 0, 0, document.DefaultCanvasOptions())}
	h := NewHistory(els, 0)
	h.Commit(els)
	h.Commit(els)
	if h.Len() != 3 || h.Index() != 2 {
		t.Fatalf("Len() = %d, Index() = %d, want 3, 2", h.Len(), h.Index())
	}
}
