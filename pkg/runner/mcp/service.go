// Package mcp provides the Model Context Protocol server integration for anispin.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tableflip.dev/anispin/pkg/app"
	"tableflip.dev/anispin/pkg/filter"
	"tableflip.dev/anispin/pkg/media"
)

// Service adapts the application service to MCP shaped requests and DTOs.
type Service struct {
	App *app.Service
}

// ErrNotConfigured is returned when the service has no application behind it.
var ErrNotConfigured = errors.New("mcp: service is not configured")

// MediaDTO is a transport-friendly projection of a record.
type MediaDTO struct {
	ID          int          `json:"id"`
	Title       string       `json:"title"`
	Titles      media.Title  `json:"titles"`
	Format      media.Format `json:"format,omitempty"`
	FormatLabel string       `json:"formatLabel"`
	Status      media.Status `json:"status,omitempty"`
	Score       *float64     `json:"score,omitempty"`
	Genres      []string     `json:"genres,omitempty"`
	CustomLists []string     `json:"customLists,omitempty"`
	StartDate   string       `json:"startDate"`
	Aired       bool         `json:"aired"`
	Episodes    *int         `json:"episodes,omitempty"`
	Cover       string       `json:"cover,omitempty"`
	Selected    bool         `json:"selected"`
}

// ViewDTO is a page of the visible list plus the parameters that made it.
type ViewDTO struct {
	Params  filter.Params `json:"params"`
	Total   int           `json:"total"`
	Visible int           `json:"visible"`
	Media   []MediaDTO    `json:"media"`
}

// FilterOptions are the optional filter changes accepted by set_filter.
// Nil fields are left untouched.
type FilterOptions struct {
	Search       *string
	Genres       []string
	Formats      []media.Format
	CustomLists  []string
	ScoreFrom    *float64
	ScoreTo      *float64
	ShowUnaired  *bool
	ShowPlanning *bool
	ShowDropped  *bool
	ShowPaused   *bool
	Sort         *filter.Sort
	Reset        bool
}

// NewService builds a service wrapper around the application service.
func NewService(a *app.Service) *Service {
	return &Service{App: a}
}

func (s *Service) ready() error {
	if s == nil || s.App == nil {
		return ErrNotConfigured
	}
	if _, err := s.App.Library(); err != nil {
		return err
	}
	return nil
}

// ListMedia returns up to limit visible records. A non-positive limit
// returns everything.
func (s *Service) ListMedia(_ context.Context, limit int) (*ViewDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	v := s.App.View()
	records := v.Visible
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return &ViewDTO{
		Params:  v.Params,
		Total:   v.Total,
		Visible: len(v.Visible),
		Media:   s.toDTOs(records),
	}, nil
}

// SetFilter applies opts as a sequence of filter actions. The first action
// that fails validation stops the sequence; earlier ones stay applied.
func (s *Service) SetFilter(ctx context.Context, opts FilterOptions) (*ViewDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	score := s.App.View().Params.Filter.Score
	if opts.Reset {
		score = filter.FullScoreRange()
	}
	for _, a := range opts.actions(score) {
		if err := s.App.Dispatch(a); err != nil {
			return nil, err
		}
	}
	return s.ListMedia(ctx, 0)
}

// actions converts o to filter actions. A bound left unset keeps its value
// from score.
func (o FilterOptions) actions(score filter.ScoreRange) []filter.Action {
	var out []filter.Action
	if o.Reset {
		out = append(out, filter.Reset{})
	}
	if o.Search != nil {
		out = append(out, filter.SetSearch{Text: *o.Search})
	}
	if o.Genres != nil {
		out = append(out, filter.SetGenres{Genres: o.Genres})
	}
	if o.Formats != nil {
		out = append(out, filter.SetFormats{Formats: o.Formats})
	}
	if o.CustomLists != nil {
		out = append(out, filter.SetCustomLists{Names: o.CustomLists})
	}
	if o.ScoreFrom != nil || o.ScoreTo != nil {
		r := score
		if o.ScoreFrom != nil {
			r.From = *o.ScoreFrom
		}
		if o.ScoreTo != nil {
			r.To = *o.ScoreTo
		}
		out = append(out, filter.SetScoreRange{From: r.From, To: r.To})
	}
	if o.ShowUnaired != nil {
		out = append(out, filter.SetShowUnaired(*o.ShowUnaired))
	}
	if o.ShowPlanning != nil {
		out = append(out, filter.SetShowPlanning(*o.ShowPlanning))
	}
	if o.ShowDropped != nil {
		out = append(out, filter.SetShowDropped(*o.ShowDropped))
	}
	if o.ShowPaused != nil {
		out = append(out, filter.SetShowPaused(*o.ShowPaused))
	}
	if o.Sort != nil {
		out = append(out, filter.SetSort(*o.Sort))
	}
	return out
}

// Facets lists the filterable values of the library.
func (s *Service) Facets(_ context.Context) (app.Facets, error) {
	if err := s.ready(); err != nil {
		return app.Facets{}, err
	}
	return s.App.Facets()
}

// MediaByID fetches one record.
func (s *Service) MediaByID(_ context.Context, id int) (*MediaDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	r, err := s.App.Record(id)
	if err != nil {
		return nil, err
	}
	dto := s.toDTO(&r)
	return &dto, nil
}

// ToggleSelection flips each id and returns the resulting selection.
func (s *Service) ToggleSelection(_ context.Context, ids []int) ([]int, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, err := s.App.ToggleSelection(id); err != nil {
			return nil, err
		}
	}
	return s.App.Selected(), nil
}

// SelectVisible selects every visible record.
func (s *Service) SelectVisible(_ context.Context) ([]int, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	s.App.SelectVisible()
	return s.App.Selected(), nil
}

// ClearSelection empties the selection.
func (s *Service) ClearSelection(_ context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	s.App.ClearSelection()
	return nil
}

// Spin resolves a spin over the visible selection. When ids are given they
// replace the selection first.
func (s *Service) Spin(_ context.Context, ids []int) (*app.SpinResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		for _, id := range ids {
			if _, err := s.App.Record(id); err != nil {
				return nil, err
			}
		}
		s.App.ClearSelection()
		for _, id := range ids {
			if !s.App.IsSelected(id) {
				if _, err := s.App.ToggleSelection(id); err != nil {
					return nil, err
				}
			}
		}
	}
	res, err := s.App.SpinNow()
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// History returns past spins, newest first.
func (s *Service) History(_ context.Context) []app.SpinResult {
	if s == nil || s.App == nil {
		return nil
	}
	return s.App.History()
}

// Report summarises the library.
func (s *Service) Report(_ context.Context) (app.ReportResult, error) {
	if err := s.ready(); err != nil {
		return app.ReportResult{}, err
	}
	return s.App.Report()
}

func (s *Service) toDTOs(records []media.Record) []MediaDTO {
	out := make([]MediaDTO, 0, len(records))
	for i := range records {
		out = append(out, s.toDTO(&records[i]))
	}
	return out
}

func (s *Service) toDTO(r *media.Record) MediaDTO {
	prefs := s.App.Preferences()
	now := s.App.Engine().Env().Now
	return MediaDTO{
		ID:          r.ID,
		Title:       r.DisplayTitle(prefs.TitleLanguage),
		Titles:      r.Title,
		Format:      r.Format,
		FormatLabel: r.Format.Label(),
		Status:      r.Status,
		Score:       r.AverageScore,
		Genres:      r.Genres,
		CustomLists: r.CustomLists,
		StartDate:   r.StartDate.String(),
		Aired:       r.Aired(now),
		Episodes:    r.Episodes,
		Cover:       media.ImageURLWithPreference(r.CoverImage, prefs.ImageQuality),
		Selected:    s.App.IsSelected(r.ID),
	}
}

// ParseIDs reads a comma or space separated list of record ids.
func ParseIDs(input string) ([]int, error) {
	fields := splitList(input)
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", f)
		}
		out = append(out, id)
	}
	return out, nil
}

// ParseFormats reads a comma separated list of formats.
func ParseFormats(input string) ([]media.Format, error) {
	fields := splitList(input)
	out := make([]media.Format, 0, len(fields))
	for _, f := range fields {
		format, err := media.ParseFormat(f)
		if err != nil {
			return nil, err
		}
		out = append(out, format)
	}
	return out, nil
}

func splitList(input string) []string {
	return strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
}
