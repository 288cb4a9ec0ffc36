package teaui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/anispin/pkg/filter"
	"tableflip.dev/anispin/pkg/media"
	"tableflip.dev/anispin/pkg/tui/wheelview"
)

const helpText = `space  toggle selection     a  select visible     c  clear selection
s      spin                 /  search             f  genres/formats/lists
u      unaired              p  planning           x  dropped     z  paused
o      cycle sort           r  reverse order      R  reset filter
[ ]    min score            { }  max score        q  quit`

// View renders the list and wheel panes with the footer.
func (m *Model) View() string {
	left := m.theme.Panel.Focused.Render(m.list.View())

	var right string
	switch m.mode {
	case modeFacets:
		right = m.theme.Panel.Focused.Render(m.facetsView())
	case modeHelp:
		right = m.theme.Panel.Frame.Render(m.theme.Panel.Title.Render("Keys") + "\n\n" + helpText)
	default:
		right = m.theme.Panel.Frame.Render(m.wheelView())
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
	if m.mode == modeSearch || m.search.Value() != "" {
		body += "\n" + m.search.View()
	}
	return body + "\n" + m.footerView()
}

func (m *Model) wheelRadius() int {
	r := 6
	if m.termHeight > 0 {
		r = (m.termHeight - 14) / 2
	}
	if m.termWidth > 0 {
		room := (m.termWidth - m.list.Width() - 10) / 4
		if room < r {
			r = room
		}
	}
	if r < 2 {
		r = 2
	}
	if r > 12 {
		r = 12
	}
	return r
}

func (m *Model) wheelView() string {
	items := m.svc.Wheel().Items()
	th := m.theme.Wheel
	radius := m.wheelRadius()
	width := 4*radius + 1

	lines := []string{m.theme.Panel.Title.Render(fmt.Sprintf("Wheel · %d", len(items)))}
	if len(items) == 0 {
		lines = append(lines, "", th.Empty.Render(wordwrap.String("Select titles with space, then press s to spin.", width)))
		return strings.Join(lines, "\n")
	}

	colors := m.colors
	if len(colors) != len(items) {
		colors = wheelview.Palette(len(items))
	}
	lang := m.svc.Preferences().TitleLanguage
	lines = append(lines,
		m.pointer.Render(radius, th.Pointer),
		wheelview.Disc(radius, m.svc.Wheel().Rotation(), colors),
	)
	if m.current >= 0 && m.current < len(items) {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(colors[m.current])).Render("■ ")
		lines = append(lines, swatch+th.Label.Render(wheelview.Label(items[m.current].DisplayTitle(lang), width-2)))
	}

	if m.winner != nil {
		r := m.winner.Winner
		lines = append(lines, "", th.Winner.Render(wordwrap.String(r.DisplayTitle(lang), width)))
		details := []string{r.Format.Label(), r.StartDate.String()}
		if r.HasScore() {
			details = append(details, fmt.Sprintf("%.1f", r.Score()))
		}
		if mins := r.TotalMinutes(); mins > 0 {
			details = append(details, fmt.Sprintf("%dh%02dm", mins/60, mins%60))
		}
		lines = append(lines, th.Detail.Render(strings.Join(details, " · ")))
		if len(r.Genres) > 0 {
			lines = append(lines, th.Detail.Render(wordwrap.String(strings.Join(r.Genres, ", "), width)))
		}
		if url := media.ImageURLWithPreference(r.CoverImage, m.svc.Preferences().ImageQuality); url != "" {
			lines = append(lines, th.Detail.Render(wheelview.Label(url, width)))
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) facetsView() string {
	st := m.params().Filter
	lines := []string{m.theme.Panel.Title.Render("Filter · space toggles, esc closes")}
	if len(m.facets) == 0 {
		return strings.Join(append(lines, m.theme.List.Empty.Render("no facets")), "\n")
	}

	height := m.termHeight - 8
	if height < 5 {
		height = 5
	}
	start := 0
	if m.facetIndex >= height {
		start = m.facetIndex - height + 1
	}
	end := start + height
	if end > len(m.facets) {
		end = len(m.facets)
	}

	var kind facetKind = -1
	for i := start; i < end; i++ {
		e := m.facets[i]
		if e.kind != kind {
			kind = e.kind
			lines = append(lines, m.theme.List.Meta.Render(kind.String()))
		}
		mark := "○"
		if m.facetActive(e, st) {
			mark = m.theme.List.Selected.Render("●")
		}
		row := fmt.Sprintf("  %s %s", mark, e.label)
		if i == m.facetIndex {
			row = m.theme.List.Cursor.Render("→") + row[1:]
		}
		lines = append(lines, row)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) footerView() string {
	ft := m.theme.Footer
	summary := ft.Filter.Render(summarize(m.params()))
	counts := ft.Status.Render(fmt.Sprintf("%d shown · %d selected", len(m.list.Items()), len(m.svc.Selected())))
	status := ft.Status.Render(m.status)
	if strings.HasPrefix(m.status, "ERR:") {
		status = ft.Error.Render(m.status)
	}
	return summary + "\n" + counts + "  " + status
}

// summarize describes the non-default parts of the filter.
func summarize(p filter.Params) string {
	st := p.Filter
	parts := []string{fmt.Sprintf("sort %s %s", p.Sort.Field, p.Sort.Order)}
	if st.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", st.Search))
	}
	if !st.Score.IsFull() {
		parts = append(parts, fmt.Sprintf("score %.1f-%.1f", st.Score.From, st.Score.To))
	}
	var shown []string
	for _, f := range []struct {
		on   bool
		name string
	}{
		{st.ShowPlanning, "planning"},
		{st.ShowPaused, "paused"},
		{st.ShowDropped, "dropped"},
		{st.ShowUnaired, "unaired"},
	} {
		if f.on {
			shown = append(shown, f.name)
		}
	}
	if len(shown) > 0 {
		parts = append(parts, "showing "+strings.Join(shown, "+"))
	}
	if len(st.Genres) > 0 {
		parts = append(parts, "genres "+strings.Join(st.Genres, ","))
	}
	if all := len(media.AllFormats()); len(st.Formats) != all {
		parts = append(parts, fmt.Sprintf("formats %d/%d", len(st.Formats), all))
	}
	if len(st.CustomLists) > 0 {
		parts = append(parts, "lists "+strings.Join(st.CustomLists, ","))
	}
	return strings.Join(parts, " · ")
}
