// Package filter derives the visible, sorted media list from a library
// snapshot and the user's filter and sort parameters.
package filter

import (
	"fmt"
	"strings"

	"tableflip.dev/anispin/pkg/media"
)

const (
	// MinScore and MaxScore bound the normalized score range.
	MinScore = 0.0
	MaxScore = 10.0
)

// ScoreRange is an inclusive score window on the 0-10 scale.
type ScoreRange struct {
	From float64 `json:"from" validate:"gte=0,lte=10,ltefield=To"`
	To   float64 `json:"to" validate:"gte=0,lte=10"`
}

// FullScoreRange is the default window that disables score filtering.
func FullScoreRange() ScoreRange {
	return ScoreRange{From: MinScore, To: MaxScore}
}

// IsFull reports whether the range is the default [0,10].
func (r ScoreRange) IsFull() bool {
	return r.From == MinScore && r.To == MaxScore
}

// Contains reports whether score lies inside the inclusive range.
func (r ScoreRange) Contains(score float64) bool {
	return score >= r.From && score <= r.To
}

// State is the complete set of active predicates.
type State struct {
	Search       string         `json:"search,omitempty"`
	Genres       []string       `json:"genres,omitempty"`
	Score        ScoreRange     `json:"score"`
	ShowUnaired  bool           `json:"showUnaired"`
	ShowPlanning bool           `json:"showPlanning"`
	ShowDropped  bool           `json:"showDropped"`
	ShowPaused   bool           `json:"showPaused"`
	Formats      []media.Format `json:"formats,omitempty"`
	CustomLists  []string       `json:"customLists,omitempty"`
}

// DefaultState shows planned titles, hides dropped, paused and unaired
// ones, accepts every score and every known format.
func DefaultState() State {
	return State{
		Score:        FullScoreRange(),
		ShowPlanning: true,
		Formats:      media.AllFormats(),
	}
}

// Clone returns a deep copy so callers can mutate slices freely.
func (s State) Clone() State {
	out := s
	out.Genres = append([]string(nil), s.Genres...)
	out.Formats = append([]media.Format(nil), s.Formats...)
	out.CustomLists = append([]string(nil), s.CustomLists...)
	return out
}

// SortField names the key the visible list is ordered by.
type SortField string

const (
	SortDate  SortField = "date"
	SortTitle SortField = "title"
	SortScore SortField = "score"
)

// ParseSortField validates a sort field name; empty selects date.
func ParseSortField(raw string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return SortDate, nil
	case SortDate, SortTitle, SortScore:
		return f, nil
	default:
		return SortDate, fmt.Errorf("filter: unknown sort field %q", raw)
	}
}

// SortOrder is ascending or descending.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// ParseSortOrder validates a sort order; empty selects descending.
func ParseSortOrder(raw string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(raw))); o {
	case "":
		return Descending, nil
	case Ascending, Descending:
		return o, nil
	default:
		return Descending, fmt.Errorf("filter: unknown sort order %q", raw)
	}
}

func (o SortOrder) sign() int {
	if o == Ascending {
		return 1
	}
	return -1
}

// Sort selects the comparator and direction for the visible list.
type Sort struct {
	Field SortField `json:"field"`
	Order SortOrder `json:"order"`
}

// DefaultSort orders by date added, newest first.
func DefaultSort() Sort {
	return Sort{Field: SortDate, Order: Descending}
}

// Params bundles filter state and sort into the unit the reducer transforms.
type Params struct {
	Filter State `json:"filter"`
	Sort   Sort  `json:"sort"`
}

// DefaultParams returns DefaultState with DefaultSort.
func DefaultParams() Params {
	return Params{Filter: DefaultState(), Sort: DefaultSort()}
}
