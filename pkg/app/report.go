package app

import (
	"sort"
	"time"

	"tableflip.dev/anispin/pkg/media"
	"tableflip.dev/anispin/pkg/store"
)

// ReportCount is one bucket of a library report.
type ReportCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ReportResult summarises a library snapshot.
type ReportResult struct {
	Library   store.Ref     `json:"library"`
	FetchedAt time.Time     `json:"fetchedAt"`
	Total     int           `json:"total"`
	Visible   int           `json:"visible"`
	Selected  int           `json:"selected"`
	Unaired   int           `json:"unaired"`
	Minutes   int           `json:"minutes"`
	Statuses  []ReportCount `json:"statuses"`
	Formats   []ReportCount `json:"formats"`
	Genres    []ReportCount `json:"genres"`
}

// Report counts the current library by status, format and genre. Buckets
// are ordered by count, then name.
func (s *Service) Report() (ReportResult, error) {
	lib, err := s.Library()
	if err != nil {
		return ReportResult{}, err
	}
	now := s.now()
	statuses := make(map[string]int)
	formats := make(map[string]int)
	genres := make(map[string]int)

	res := ReportResult{
		Library:   lib.Ref(),
		FetchedAt: lib.FetchedAt,
		Total:     len(lib.Records),
		Visible:   len(s.View().Visible),
		Selected:  len(s.Selected()),
	}
	for i := range lib.Records {
		r := &lib.Records[i]
		statuses[statusName(r.Status)]++
		formats[r.Format.Label()]++
		for _, g := range r.Genres {
			genres[g]++
		}
		if !r.Aired(now) {
			res.Unaired++
		}
		res.Minutes += r.TotalMinutes()
	}
	res.Statuses = buckets(statuses)
	res.Formats = buckets(formats)
	res.Genres = buckets(genres)
	return res, nil
}

func statusName(s media.Status) string {
	if s == media.StatusNone {
		return "NONE"
	}
	return string(s)
}

func buckets(counts map[string]int) []ReportCount {
	out := make([]ReportCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, ReportCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
