package printers

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/anispin/pkg/app"
	"tableflip.dev/anispin/pkg/media"
	"tableflip.dev/anispin/pkg/store"
	"tableflip.dev/anispin/pkg/wheel"
)

type PrettyPrint struct {
	ShowID bool
	Prefs  media.Preferences
	// Selected marks rows; nil means nothing is marked.
	Selected func(id int) bool
	Out      io.Writer
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out())
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count, total int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d of %d", count, total)
	switch total {
	case 1:
		_, _ = c.Fprintln(pp.out(), " title")
	default:
		_, _ = c.Fprintln(pp.out(), " titles")
	}
}

// Records prints one row per record.
func (pp *PrettyPrint) Records(records ...media.Record) {
	if len(records) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}

	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	for i := range records {
		r := &records[i]
		row := make([]interface{}, 0, 7)
		if pp.ShowID {
			row = append(row, y.Sprint(r.ID))
		}
		row = append(row,
			pp.mark(r.ID),
			r.DisplayTitle(pp.Prefs.TitleLanguage),
			r.Format.Label(),
			score(r),
			r.StartDate.String(),
			strings.Join(r.Genres, ", "),
		)
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

func (pp *PrettyPrint) mark(id int) string {
	if pp.Selected != nil && pp.Selected(id) {
		return color.New(color.FgGreen).Sprint("●")
	}
	return "○"
}

func score(r *media.Record) string {
	if !r.HasScore() {
		return "-"
	}
	return strconv.FormatFloat(r.Score(), 'f', 1, 64)
}

// Tick prints a segment crossing during a headless spin.
func (pp *PrettyPrint) Tick(f wheel.Frame[media.Record], items []media.Record) {
	if f.Crossing == nil || f.Crossing.To >= len(items) {
		return
	}
	c := color.New(color.Faint)
	_, _ = c.Fprintf(pp.out(), "\r\033[K  %s", items[f.Crossing.To].DisplayTitle(pp.Prefs.TitleLanguage))
}

// Winner prints the resolved spin.
func (pp *PrettyPrint) Winner(res app.SpinResult) {
	b := color.New(color.Bold, color.FgHiMagenta)
	f := color.New(color.Faint)
	r := res.Winner

	_, _ = fmt.Fprint(pp.out(), "\r\033[K")
	_, _ = b.Fprintln(pp.out(), r.DisplayTitle(pp.Prefs.TitleLanguage))

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(f.Sprint("format"), r.Format.Label())
	tbl.AddRow(f.Sprint("score"), score(&r))
	tbl.AddRow(f.Sprint("aired"), r.StartDate.String())
	if m := r.TotalMinutes(); m > 0 {
		tbl.AddRow(f.Sprint("length"), fmt.Sprintf("%dh%02dm", m/60, m%60))
	}
	if len(r.Genres) > 0 {
		tbl.AddRow(f.Sprint("genres"), strings.Join(r.Genres, ", "))
	}
	if url := media.ImageURLWithPreference(r.CoverImage, pp.Prefs.ImageQuality); url != "" {
		tbl.AddRow(f.Sprint("cover"), url)
	}
	tbl.AddRow(f.Sprint("odds"), fmt.Sprintf("1 in %d", res.Candidates))
	if pp.ShowID {
		tbl.AddRow(f.Sprint("spin"), res.ID)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// History prints past spins, newest first.
func (pp *PrettyPrint) History(results ...app.SpinResult) {
	pp.Title("History")
	if len(results) == 0 {
		_, _ = color.New(color.Faint, color.Italic).Fprint(pp.out(), " none\n\n")
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, res := range results {
		tbl.AddRow(res.At.Format("2006-01-02 15:04"), res.Winner.DisplayTitle(pp.Prefs.TitleLanguage), fmt.Sprintf("1/%d", res.Candidates))
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// Libraries prints stored snapshot names.
func (pp *PrettyPrint) Libraries(refs ...store.Ref) {
	pp.Title("Libraries")
	for _, ref := range refs {
		_, _ = fmt.Fprintf(pp.out(), "  %s\n", ref)
	}
}

// Report prints a library summary.
func (pp *PrettyPrint) Report(r app.ReportResult) {
	pp.TitleWithCount(r.Library.String(), r.Visible, r.Total)

	f := color.New(color.Faint)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(f.Sprint("fetched"), r.FetchedAt.Format("2006-01-02 15:04"))
	tbl.AddRow(f.Sprint("selected"), r.Selected)
	tbl.AddRow(f.Sprint("unaired"), r.Unaired)
	tbl.AddRow(f.Sprint("watch time"), fmt.Sprintf("%dh", r.Minutes/60))
	tbl.AddRow(f.Sprint("status"), joinCounts(r.Statuses, 0))
	tbl.AddRow(f.Sprint("format"), joinCounts(r.Formats, 0))
	tbl.AddRow(f.Sprint("genres"), joinCounts(r.Genres, 8))
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

func joinCounts(counts []app.ReportCount, limit int) string {
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprintf("%s %d", c.Name, c.Count)
	}
	return strings.Join(parts, ", ")
}
