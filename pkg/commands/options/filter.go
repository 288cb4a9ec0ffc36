package options

import (
	"github.com/spf13/cobra"

	"tableflip.dev/anispin/pkg/filter"
	"tableflip.dev/anispin/pkg/media"
)

// FilterOptions mirror the filter controls of the terminal UI.
type FilterOptions struct {
	Search    string
	Genres    []string
	Formats   []string
	Lists     []string
	ScoreFrom float64
	ScoreTo   float64
	Unaired   bool
	Planning  bool
	Dropped   bool
	Paused    bool
	Sort      string
	Order     string
	Reverse   bool
}

func AddFilterArgs(cmd *cobra.Command, o *FilterOptions) {
	cmd.Flags().StringVarP(&o.Search, "search", "s", "",
		"Only titles containing this text in any language.")
	cmd.Flags().StringSliceVarP(&o.Genres, "genre", "g", nil,
		"Only titles with every one of these genres.")
	cmd.Flags().StringSliceVarP(&o.Formats, "format", "f", nil,
		"Only these formats (tv, tv_short, movie, special, ova, ona, music).")
	cmd.Flags().StringSliceVarP(&o.Lists, "list", "l", nil,
		"Only titles with every one of these custom lists.")
	cmd.Flags().Float64Var(&o.ScoreFrom, "min-score", 0,
		"Lowest mean score, 0 to 10.")
	cmd.Flags().Float64Var(&o.ScoreTo, "max-score", 10,
		"Highest mean score, 0 to 10.")
	cmd.Flags().BoolVar(&o.Unaired, "unaired", false,
		"Include titles that have not started airing.")
	cmd.Flags().BoolVar(&o.Planning, "planning", true,
		"Include planned titles.")
	cmd.Flags().BoolVar(&o.Dropped, "dropped", false,
		"Include dropped titles.")
	cmd.Flags().BoolVar(&o.Paused, "paused", false,
		"Include paused titles.")
	cmd.Flags().StringVar(&o.Sort, "sort", "date",
		"Sort by date, title or score.")
	cmd.Flags().StringVar(&o.Order, "order", "desc",
		"Sort order: asc or desc.")
	cmd.Flags().BoolVarP(&o.Reverse, "reverse", "r", false,
		"Reverse the sort order.")
}

// Actions turns the flags that were set on cmd into filter actions, in the
// order the reducer should see them.
func (o *FilterOptions) Actions(cmd *cobra.Command) ([]filter.Action, error) {
	changed := cmd.Flags().Changed
	var out []filter.Action

	if changed("search") {
		out = append(out, filter.SetSearch{Text: o.Search})
	}
	if changed("genre") {
		out = append(out, filter.SetGenres{Genres: o.Genres})
	}
	if changed("format") {
		formats := make([]media.Format, 0, len(o.Formats))
		for _, raw := range o.Formats {
			f, err := media.ParseFormat(raw)
			if err != nil {
				return nil, err
			}
			formats = append(formats, f)
		}
		out = append(out, filter.SetFormats{Formats: formats})
	}
	if changed("list") {
		out = append(out, filter.SetCustomLists{Names: o.Lists})
	}
	if changed("min-score") || changed("max-score") {
		out = append(out, filter.SetScoreRange{From: o.ScoreFrom, To: o.ScoreTo})
	}
	if changed("unaired") {
		out = append(out, filter.SetShowUnaired(o.Unaired))
	}
	if changed("planning") {
		out = append(out, filter.SetShowPlanning(o.Planning))
	}
	if changed("dropped") {
		out = append(out, filter.SetShowDropped(o.Dropped))
	}
	if changed("paused") {
		out = append(out, filter.SetShowPaused(o.Paused))
	}
	if changed("sort") || changed("order") {
		field, err := filter.ParseSortField(o.Sort)
		if err != nil {
			return nil, err
		}
		order, err := filter.ParseSortOrder(o.Order)
		if err != nil {
			return nil, err
		}
		out = append(out, filter.SetSort(filter.Sort{Field: field, Order: order}))
	}
	if o.Reverse {
		out = append(out, filter.ReverseOrder{})
	}
	return out, nil
}
