package dashboard

import (
	"slices"

	"github.com/retailops/loadboard/internal/domain/entities"
)

// Selection is the set of task ids picked for a bulk action. Ids that drop
// out of the visible list stay selected until cleared.
type Selection struct {
	ids map[string]struct{}
}

// NewSelection creates an empty selection
func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

// Toggle flips membership of id
func (s *Selection) Toggle(id string) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

// Set adds or removes id
func (s *Selection) Set(id string, selected bool) {
	if selected {
		s.ids[id] = struct{}{}
		return
	}
	delete(s.ids, id)
}

// SelectAll replaces the selection with every visible task
func (s *Selection) SelectAll(visible []entities.Task) {
	s.ids = make(map[string]struct{}, len(visible))
	for i := range visible {
		s.ids[visible[i].ID] = struct{}{}
	}
}

// Clear empties the selection
func (s *Selection) Clear() {
	s.ids = make(map[string]struct{})
}

func (s *Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids in sorted order
func (s *Selection) IDs() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// AllSelected reports whether the selection size equals the visible count
// and is non-zero, which drives the header checkbox.
func (s *Selection) AllSelected(visible []entities.Task) bool {
	return len(visible) > 0 && len(s.ids) == len(visible)
}
