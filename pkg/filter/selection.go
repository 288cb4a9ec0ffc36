package filter

import (
	"slices"

	"tableflip.dev/anispin/pkg/media"
)

// Selection is the ordered set of record ids chosen as wheel candidates.
// It is independent of filter state: ids stay selected while hidden.
type Selection struct {
	order []int
}

// NewSelection returns a selection holding ids in the given order.
func NewSelection(ids ...int) *Selection {
	s := &Selection{}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Has reports whether id is selected.
func (s *Selection) Has(id int) bool {
	return slices.Contains(s.order, id)
}

// Add selects id; it is a no-op when already selected.
func (s *Selection) Add(id int) {
	if !s.Has(id) {
		s.order = append(s.order, id)
	}
}

// Remove deselects id.
func (s *Selection) Remove(id int) {
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
}

// Toggle flips id and reports whether it is selected afterwards.
func (s *Selection) Toggle(id int) bool {
	if s.Has(id) {
		s.Remove(id)
		return false
	}
	s.Add(id)
	return true
}

// SelectAll adds every record, keeping existing order first.
func (s *Selection) SelectAll(records []media.Record) {
	for i := range records {
		s.Add(records[i].ID)
	}
}

// Clear deselects everything.
func (s *Selection) Clear() {
	s.order = nil
}

// Len is the number of selected ids.
func (s *Selection) Len() int {
	return len(s.order)
}

// IDs returns the selected ids in selection order.
func (s *Selection) IDs() []int {
	return append([]int(nil), s.order...)
}

// Prune drops ids that no longer exist in the snapshot.
func (s *Selection) Prune(records []media.Record) {
	known := make(map[int]struct{}, len(records))
	for i := range records {
		known[records[i].ID] = struct{}{}
	}
	s.order = slices.DeleteFunc(s.order, func(id int) bool {
		_, ok := known[id]
		return !ok
	})
}

// Candidates returns the visible records that are selected, in selection
// order. Hidden selections are skipped.
func (s *Selection) Candidates(visible []media.Record) []media.Record {
	byID := make(map[int]int, len(visible))
	for i := range visible {
		byID[visible[i].ID] = i
	}
	out := make([]media.Record, 0, len(s.order))
	for _, id := range s.order {
		if i, ok := byID[id]; ok {
			out = append(out, visible[i])
		}
	}
	return out
}
