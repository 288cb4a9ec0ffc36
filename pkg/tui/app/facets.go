package teaui

import (
	"slices"

	"tableflip.dev/anispin/pkg/filter"
	"tableflip.dev/anispin/pkg/media"
)

type facetKind int

const (
	facetGenre facetKind = iota
	facetFormat
	facetList
)

func (k facetKind) String() string {
	switch k {
	case facetGenre:
		return "genre"
	case facetFormat:
		return "format"
	default:
		return "list"
	}
}

// facetEntry is one toggleable row of the facet picker.
type facetEntry struct {
	kind  facetKind
	label string
	value string
}

func (m *Model) openFacets() {
	facets, err := m.svc.Facets()
	if err != nil {
		m.status = "ERR: " + err.Error()
		return
	}
	entries := make([]facetEntry, 0, len(facets.Genres)+len(facets.Formats)+len(facets.CustomLists))
	for _, g := range facets.Genres {
		entries = append(entries, facetEntry{kind: facetGenre, label: g, value: g})
	}
	// Every known format is offered so a hidden one can be re-enabled.
	for _, f := range media.AllFormats() {
		entries = append(entries, facetEntry{kind: facetFormat, label: f.Label(), value: string(f)})
	}
	for _, l := range facets.CustomLists {
		entries = append(entries, facetEntry{kind: facetList, label: l, value: l})
	}
	m.facets = entries
	if m.facetIndex >= len(entries) {
		m.facetIndex = 0
	}
	m.mode = modeFacets
}

func (m *Model) facetActive(e facetEntry, st filter.State) bool {
	switch e.kind {
	case facetGenre:
		return slices.Contains(st.Genres, e.value)
	case facetFormat:
		return slices.Contains(st.Formats, media.Format(e.value))
	default:
		return slices.Contains(st.CustomLists, e.value)
	}
}

func (m *Model) onFacetKey(key string) {
	switch key {
	case "esc", "q", "f":
		m.mode = modeList
	case "up", "k":
		if m.facetIndex > 0 {
			m.facetIndex--
		}
	case "down", "j":
		if m.facetIndex < len(m.facets)-1 {
			m.facetIndex++
		}
	case "space", " ", "enter":
		if m.facetIndex < 0 || m.facetIndex >= len(m.facets) {
			return
		}
		e := m.facets[m.facetIndex]
		switch e.kind {
		case facetGenre:
			m.dispatch(filter.ToggleGenre{Genre: e.value})
		case facetFormat:
			m.dispatch(filter.ToggleFormat{Format: media.Format(e.value)})
		default:
			m.dispatch(filter.ToggleCustomList{Name: e.value})
		}
	}
}
