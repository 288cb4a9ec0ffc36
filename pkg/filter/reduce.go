package filter

import (
	"slices"
	"strings"

	"tableflip.dev/anispin/pkg/media"
)

// Action is a discrete change to filter or sort parameters.
type Action interface {
	apply(p Params) Params
}

// Reduce returns the parameters after a. It never mutates p.
func Reduce(p Params, a Action) Params {
	next := Params{Filter: p.Filter.Clone(), Sort: p.Sort}
	if a == nil {
		return next
	}
	return a.apply(next)
}

// SetSearch replaces the search text.
type SetSearch struct{ Text string }

func (a SetSearch) apply(p Params) Params {
	p.Filter.Search = a.Text
	return p
}

// ToggleGenre adds or removes a genre from the active set.
type ToggleGenre struct{ Genre string }

func (a ToggleGenre) apply(p Params) Params {
	p.Filter.Genres = toggle(p.Filter.Genres, strings.TrimSpace(a.Genre))
	return p
}

// SetGenres replaces the active genre set.
type SetGenres struct{ Genres []string }

func (a SetGenres) apply(p Params) Params {
	p.Filter.Genres = dedupe(a.Genres)
	return p
}

// SetScoreRange replaces the score window.
type SetScoreRange struct{ From, To float64 }

func (a SetScoreRange) apply(p Params) Params {
	p.Filter.Score = ScoreRange{From: a.From, To: a.To}
	return p
}

// SetShowUnaired toggles inclusion of titles that have not started airing.
type SetShowUnaired bool

func (a SetShowUnaired) apply(p Params) Params {
	p.Filter.ShowUnaired = bool(a)
	return p
}

// SetShowPlanning toggles inclusion of PLANNING entries.
type SetShowPlanning bool

func (a SetShowPlanning) apply(p Params) Params {
	p.Filter.ShowPlanning = bool(a)
	return p
}

// SetShowDropped toggles inclusion of DROPPED entries.
type SetShowDropped bool

func (a SetShowDropped) apply(p Params) Params {
	p.Filter.ShowDropped = bool(a)
	return p
}

// SetShowPaused toggles inclusion of PAUSED entries.
type SetShowPaused bool

func (a SetShowPaused) apply(p Params) Params {
	p.Filter.ShowPaused = bool(a)
	return p
}

// ToggleFormat adds or removes a format from the active set.
type ToggleFormat struct{ Format media.Format }

func (a ToggleFormat) apply(p Params) Params {
	p.Filter.Formats = toggle(p.Filter.Formats, a.Format)
	return p
}

// SetFormats replaces the active format set.
type SetFormats struct{ Formats []media.Format }

func (a SetFormats) apply(p Params) Params {
	p.Filter.Formats = dedupe(a.Formats)
	return p
}

// ToggleCustomList adds or removes a custom list from the active set.
type ToggleCustomList struct{ Name string }

func (a ToggleCustomList) apply(p Params) Params {
	p.Filter.CustomLists = toggle(p.Filter.CustomLists, strings.TrimSpace(a.Name))
	return p
}

// SetCustomLists replaces the active custom list set.
type SetCustomLists struct{ Names []string }

func (a SetCustomLists) apply(p Params) Params {
	p.Filter.CustomLists = dedupe(a.Names)
	return p
}

// SetSort replaces the sort field and order.
type SetSort Sort

func (a SetSort) apply(p Params) Params {
	p.Sort = Sort(a)
	return p
}

// ReverseOrder flips the sort direction.
type ReverseOrder struct{}

func (ReverseOrder) apply(p Params) Params {
	if p.Sort.Order == Ascending {
		p.Sort.Order = Descending
	} else {
		p.Sort.Order = Ascending
	}
	return p
}

// Reset restores DefaultParams.
type Reset struct{}

func (Reset) apply(Params) Params {
	return DefaultParams()
}

// Replace swaps in a complete parameter set, e.g. one built from CLI flags.
type Replace Params

func (a Replace) apply(Params) Params {
	return Params{Filter: a.Filter.Clone(), Sort: a.Sort}
}

func toggle[T comparable](set []T, v T) []T {
	var zero T
	if v == zero {
		return set
	}
	if i := slices.Index(set, v); i >= 0 {
		return slices.Delete(set, i, i+1)
	}
	return append(set, v)
}

func dedupe[T comparable](in []T) []T {
	var zero T
	out := make([]T, 0, len(in))
	for _, v := range in {
		if v == zero || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
