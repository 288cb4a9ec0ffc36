package filter

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"tableflip.dev/anispin/pkg/media"
)

// Env carries the ambient inputs a derivation depends on. Nothing in this
// package reads global settings; callers thread them in here.
type Env struct {
	Now         time.Time
	Preferences media.Preferences
	// Collation is the locale used for title comparison.
	Collation language.Tag
}

// DefaultEnv uses the current time, default preferences and English collation.
func DefaultEnv() Env {
	return Env{
		Now:         time.Now(),
		Preferences: media.DefaultPreferences(),
		Collation:   language.English,
	}
}

// Apply filters full by st and sorts the result by s. The input slice is
// never modified. Predicates run in a fixed order: search, genres, unaired,
// score, status, format, custom lists.
func Apply(full []media.Record, st State, s Sort, env Env) []media.Record {
	p := newPredicates(st, env)
	out := make([]media.Record, 0, len(full))
	for i := range full {
		if p.keep(&full[i]) {
			out = append(out, full[i])
		}
	}
	SortRecords(out, s, env)
	return out
}

type predicates struct {
	st      State
	now     time.Time
	search  string
	fold    cases.Caser
	formats map[media.Format]struct{}
}

func newPredicates(st State, env Env) *predicates {
	p := &predicates{
		st:   st,
		now:  env.Now,
		fold: cases.Fold(),
	}
	if st.Search != "" {
		p.search = p.fold.String(st.Search)
	}
	if len(st.Formats) > 0 {
		p.formats = make(map[media.Format]struct{}, len(st.Formats))
		for _, f := range st.Formats {
			p.formats[f] = struct{}{}
		}
	}
	return p
}

func (p *predicates) keep(r *media.Record) bool {
	return p.matchSearch(r) &&
		p.matchGenres(r) &&
		p.matchAired(r) &&
		p.matchScore(r) &&
		p.matchStatus(r) &&
		p.matchFormat(r) &&
		p.matchCustomLists(r)
}

func (p *predicates) matchSearch(r *media.Record) bool {
	if p.search == "" {
		return true
	}
	for _, v := range r.Title.Variants() {
		if strings.Contains(p.fold.String(v), p.search) {
			return true
		}
	}
	return false
}

func (p *predicates) matchGenres(r *media.Record) bool {
	for _, g := range p.st.Genres {
		if !r.HasGenre(g) {
			return false
		}
	}
	return true
}

func (p *predicates) matchAired(r *media.Record) bool {
	return p.st.ShowUnaired || r.Aired(p.now)
}

func (p *predicates) matchScore(r *media.Record) bool {
	if p.st.Score.IsFull() {
		return true
	}
	return r.HasScore() && p.st.Score.Contains(r.Score())
}

func (p *predicates) matchStatus(r *media.Record) bool {
	switch r.Status {
	case media.StatusDropped:
		return p.st.ShowDropped
	case media.StatusPaused:
		return p.st.ShowPaused
	case media.StatusPlanning:
		return p.st.ShowPlanning
	default:
		return true
	}
}

func (p *predicates) matchFormat(r *media.Record) bool {
	if p.formats == nil {
		return true
	}
	if r.Format == media.FormatUnknown {
		return false
	}
	_, ok := p.formats[r.Format]
	return ok
}

func (p *predicates) matchCustomLists(r *media.Record) bool {
	for _, l := range p.st.CustomLists {
		if !r.InCustomList(l) {
			return false
		}
	}
	return true
}
