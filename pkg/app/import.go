package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	"tableflip.dev/anispin/pkg/media"
	"tableflip.dev/anispin/pkg/store"
)

// Import reads a list snapshot from r, stores it under ref and makes it the
// current library. Three shapes are accepted:
//
//   - an anispin library document, as written by Export with --library;
//   - a bare JSON array of records;
//   - an AniList MediaListCollection GraphQL response.
//
// Scores in the last two shapes are provider-native and are normalised to
// 0-10 using ref.Provider's scale.
func (s *Service) Import(ctx context.Context, r io.Reader, ref store.Ref) (*store.Library, error) {
	if s.Persistence == nil {
		return nil, errors.New("app: no persistence configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("app: read import: %w", err)
	}
	lib, err := DecodeLibrary(data, ref)
	if err != nil {
		return nil, err
	}
	if err := s.Persistence.Save(lib); err != nil {
		return nil, err
	}
	s.setLibrary(lib)
	return lib, nil
}

// DecodeLibrary detects the document shape and builds a library for ref.
func DecodeLibrary(data []byte, ref store.Ref) (*store.Library, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("app: empty import")
	}

	var lib *store.Library
	switch data[0] {
	case '[':
		var records []media.Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("app: decode records: %w", err)
		}
		normalizeScores(records, ref.Provider.ScoreScale())
		lib = &store.Library{Records: records}
	case '{':
		var probe struct {
			Records json.RawMessage `json:"records"`
			Data    json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(data, &probe); err != nil {
			return nil, fmt.Errorf("app: decode import: %w", err)
		}
		switch {
		case probe.Records != nil:
			lib = &store.Library{}
			if err := json.Unmarshal(data, lib); err != nil {
				return nil, fmt.Errorf("app: decode library: %w", err)
			}
		case probe.Data != nil:
			records, err := decodeAniList(probe.Data)
			if err != nil {
				return nil, err
			}
			normalizeScores(records, media.ProviderAniList.ScoreScale())
			lib = &store.Library{Records: records}
		default:
			return nil, errors.New("app: unrecognised import document")
		}
	default:
		return nil, errors.New("app: import must be a JSON object or array")
	}

	lib.Provider, lib.User = ref.Provider, ref.User
	lib.Records = dedupeRecords(lib.Records)
	return lib, nil
}

func normalizeScores(records []media.Record, scale float64) {
	for i := range records {
		if records[i].AverageScore != nil {
			v := media.NormalizeScore(*records[i].AverageScore, scale)
			records[i].AverageScore = &v
		}
	}
}

// dedupeRecords keeps the first record for each id. AniList repeats an
// entry in every custom list it belongs to.
func dedupeRecords(records []media.Record) []media.Record {
	seen := make(map[int]int, len(records))
	out := make([]media.Record, 0, len(records))
	for _, r := range records {
		if i, ok := seen[r.ID]; ok {
			out[i].CustomLists = mergeLists(out[i].CustomLists, r.CustomLists)
			continue
		}
		seen[r.ID] = len(out)
		out = append(out, r)
	}
	return out
}

func mergeLists(a, b []string) []string {
	for _, v := range b {
		found := false
		for _, have := range a {
			if have == v {
				found = true
				break
			}
		}
		if !found {
			a = append(a, v)
		}
	}
	return a
}

type aniListResponse struct {
	MediaListCollection struct {
		Lists []struct {
			Name         string `json:"name"`
			IsCustomList bool   `json:"isCustomList"`
			Entries      []struct {
				Status      media.Status    `json:"status"`
				CreatedAt   *int64          `json:"createdAt"`
				CustomLists map[string]bool `json:"customLists"`
				Media       struct {
					ID           int              `json:"id"`
					Title        media.Title      `json:"title"`
					CoverImage   media.CoverImage `json:"coverImage"`
					Genres       []string         `json:"genres"`
					AverageScore *float64         `json:"averageScore"`
					Episodes     *int             `json:"episodes"`
					Duration     *int             `json:"duration"`
					Format       media.Format     `json:"format"`
					StartDate    *media.FuzzyDate `json:"startDate"`
					EndDate      *media.FuzzyDate `json:"endDate"`
				} `json:"media"`
			} `json:"entries"`
		} `json:"lists"`
	} `json:"MediaListCollection"`
}

func decodeAniList(data []byte) ([]media.Record, error) {
	var resp aniListResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("app: decode anilist response: %w", err)
	}
	var out []media.Record
	for _, list := range resp.MediaListCollection.Lists {
		for _, e := range list.Entries {
			m := e.Media
			r := media.Record{
				ID:           m.ID,
				Title:        m.Title,
				CoverImage:   m.CoverImage,
				Genres:       m.Genres,
				AverageScore: m.AverageScore,
				Episodes:     m.Episodes,
				Duration:     m.Duration,
				Format:       m.Format,
				StartDate:    m.StartDate,
				EndDate:      m.EndDate,
				Status:       media.Status(strings.ToUpper(string(e.Status))),
			}
			if e.CreatedAt != nil {
				// AniList reports seconds.
				ms := *e.CreatedAt * 1000
				r.CreatedAt = &ms
			}
			for name, on := range e.CustomLists {
				if on {
					r.CustomLists = append(r.CustomLists, name)
				}
			}
			if list.IsCustomList && list.Name != "" {
				r.CustomLists = append(r.CustomLists, list.Name)
			}
			sort.Strings(r.CustomLists)
			r.CustomLists = dedupeStrings(r.CustomLists)
			out = append(out, r)
		}
	}
	return out, nil
}

func dedupeStrings(sorted []string) []string {
	if len(sorted) < 2 {
		return sorted
	}
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
