// Package media defines the list records anispin filters, sorts and spins.
package media

import (
	"fmt"
	"strings"
)

// Format is the release format of a title.
type Format string

const (
	FormatTV      Format = "TV"
	FormatTVShort Format = "TV_SHORT"
	FormatMovie   Format = "MOVIE"
	FormatSpecial Format = "SPECIAL"
	FormatOVA     Format = "OVA"
	FormatONA     Format = "ONA"
	FormatMusic   Format = "MUSIC"
	// FormatUnknown marks a record whose provider did not report a format.
	FormatUnknown Format = ""
)

// AllFormats returns every known format in display order.
func AllFormats() []Format {
	return []Format{
		FormatTV,
		FormatTVShort,
		FormatMovie,
		FormatSpecial,
		FormatOVA,
		FormatONA,
		FormatMusic,
	}
}

// ParseFormat converts user input such as "movie" or "tv-short" to a Format.
func ParseFormat(raw string) (Format, error) {
	f := Format(strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(raw)), "-", "_"))
	for _, candidate := range AllFormats() {
		if candidate == f {
			return candidate, nil
		}
	}
	return FormatUnknown, fmt.Errorf("media: unknown format %q", raw)
}

// Label is a human-friendly rendering of the format.
func (f Format) Label() string {
	switch f {
	case FormatTV:
		return "TV"
	case FormatTVShort:
		return "TV Short"
	case FormatMovie:
		return "Movie"
	case FormatSpecial:
		return "Special"
	case FormatOVA:
		return "OVA"
	case FormatONA:
		return "ONA"
	case FormatMusic:
		return "Music"
	default:
		return "Unknown"
	}
}

// Status is the list membership of a record on the user's list.
type Status string

const (
	StatusCurrent   Status = "CURRENT"
	StatusPlanning  Status = "PLANNING"
	StatusCompleted Status = "COMPLETED"
	StatusDropped   Status = "DROPPED"
	StatusPaused    Status = "PAUSED"
	StatusRepeating Status = "REPEATING"
	// StatusNone means list status does not apply to the record.
	StatusNone Status = ""
)

// Provider identifies the tracking service a snapshot came from.
type Provider string

const (
	ProviderAniList     Provider = "anilist"
	ProviderMyAnimeList Provider = "mal"
)

// ParseProvider validates a provider name.
func ParseProvider(raw string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(raw))); p {
	case ProviderAniList, ProviderMyAnimeList:
		return p, nil
	case "myanimelist":
		return ProviderMyAnimeList, nil
	default:
		return "", fmt.Errorf("media: unknown provider %q", raw)
	}
}

// ScoreScale is the maximum of a provider's native score range.
func (p Provider) ScoreScale() float64 {
	if p == ProviderAniList {
		return 100
	}
	return 10
}

// Title holds the localized name variants of a record.
type Title struct {
	English string `json:"english,omitempty"`
	Romaji  string `json:"romaji,omitempty"`
	Native  string `json:"native,omitempty"`
}

// Variants returns the non-empty name variants.
func (t Title) Variants() []string {
	out := make([]string, 0, 3)
	for _, v := range []string{t.English, t.Romaji, t.Native} {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

// CoverImage holds cover art URLs at different sizes.
type CoverImage struct {
	ExtraLarge string `json:"extraLarge,omitempty"`
	Large      string `json:"large,omitempty"`
	Medium     string `json:"medium,omitempty"`
}

// Record is one title on the user's list. Records are treated as immutable
// for the lifetime of a snapshot; ID is unique within a snapshot.
type Record struct {
	ID           int        `json:"id"`
	Title        Title      `json:"title"`
	CoverImage   CoverImage `json:"coverImage,omitempty"`
	Genres       []string   `json:"genres,omitempty"`
	AverageScore *float64   `json:"averageScore,omitempty"`
	Episodes     *int       `json:"episodes,omitempty"`
	Duration     *int       `json:"duration,omitempty"`
	Format       Format     `json:"format,omitempty"`
	StartDate    *FuzzyDate `json:"startDate,omitempty"`
	EndDate      *FuzzyDate `json:"endDate,omitempty"`
	Status       Status     `json:"status,omitempty"`
	CustomLists  []string   `json:"customLists,omitempty"`
	// CreatedAt is when the record was added to the list, in epoch millis.
	CreatedAt *int64 `json:"entryCreatedAt,omitempty"`
}

// Score returns the average score or 0 when absent.
func (r *Record) Score() float64 {
	if r == nil || r.AverageScore == nil {
		return 0
	}
	return *r.AverageScore
}

// HasScore reports whether the record carries a score.
func (r *Record) HasScore() bool {
	return r != nil && r.AverageScore != nil
}

// Created returns the list-added timestamp or 0 when absent.
func (r *Record) Created() int64 {
	if r == nil || r.CreatedAt == nil {
		return 0
	}
	return *r.CreatedAt
}

// HasGenre reports whether genre is present on the record.
func (r *Record) HasGenre(genre string) bool {
	for _, g := range r.Genres {
		if g == genre {
			return true
		}
	}
	return false
}

// InCustomList reports whether the record is filed under the named list.
func (r *Record) InCustomList(name string) bool {
	for _, l := range r.CustomLists {
		if l == name {
			return true
		}
	}
	return false
}

// TotalMinutes is episodes times duration, or 0 when either is unknown.
func (r *Record) TotalMinutes() int {
	if r.Episodes == nil || r.Duration == nil {
		return 0
	}
	return *r.Episodes * *r.Duration
}

// NormalizeScore maps a provider-native score onto the 0-10 scale. Values
// outside the provider range are clamped.
func NormalizeScore(raw float64, scale float64) float64 {
	if scale <= 0 {
		return raw
	}
	v := raw * 10 / scale
	switch {
	case v < 0:
		return 0
	case v > 10:
		return 10
	}
	return v
}
