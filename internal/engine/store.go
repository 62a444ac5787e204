package engine

import (
	"github.com/scenecraft/scenecraft/internal/document"
)

// ElementStore is the ordered element list. Later elements are drawn on top.
type ElementStore struct {
	elements []document.Element
}

// NewElementStore creates an empty store.
func NewElementStore() *ElementStore {
	return &ElementStore{elements: []document.Element{}}
}

// Add appends el so it becomes the topmost element.
func (s *ElementStore) Add(el document.Element) {
	s.elements = append(s.elements, el)
}

// UpdateByID merges patch into the element with the given id. Unknown ids are
// ignored. It reports whether the element changed.
func (s *ElementStore) UpdateByID(id string, patch document.ElementPatch) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	return patch.Apply(&s.elements[i])
}

// RemoveByID deletes the element with the given id, reporting whether it was
// present.
func (s *ElementStore) RemoveByID(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.elements = append(s.elements[:i], s.elements[i+1:]...)
	return true
}

// ReplaceAll swaps in a copy of elements.
func (s *ElementStore) ReplaceAll(elements []document.Element) {
	s.elements = document.CloneElements(elements)
}

// Find returns a copy of the element with the given id.
func (s *ElementStore) Find(id string) (document.Element, bool) {
	i := s.index(id)
	if i < 0 {
		return document.Element{}, false
	}
	return s.elements[i].Clone(), true
}

// Elements returns a deep copy of the element list.
func (s *ElementStore) Elements() []document.Element {
	return document.CloneElements(s.elements)
}

// Len returns the number of elements.
func (s *ElementStore) Len() int {
	return len(s.elements)
}

// view exposes the backing slice to read-only callers inside the package.
func (s *ElementStore) view() []document.Element {
	return s.elements
}

func (s *ElementStore) index(id string) int {
	for i := range s.elements {
		if s.elements[i].ID == id {
			return i
		}
	}
	return -1
}
