// Package teaui hosts the Bubble Tea program for the anispin TUI.
package teaui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/rs/zerolog"

	appsvc "tableflip.dev/anispin/pkg/app"
	"tableflip.dev/anispin/pkg/filter"
	"tableflip.dev/anispin/pkg/logging"
	"tableflip.dev/anispin/pkg/media"
	"tableflip.dev/anispin/pkg/store"
	"tableflip.dev/anispin/pkg/tui/theme"
	"tableflip.dev/anispin/pkg/tui/wheelview"
	"tableflip.dev/anispin/pkg/wheel"
)

const (
	searchDebounce = 250 * time.Millisecond
	idleFPS        = 30
	scoreStep      = 0.5
)

type mode int

const (
	modeList mode = iota
	modeSearch
	modeFacets
	modeHelp
)

// mediaItem is one row of the media list.
type mediaItem struct {
	rec      media.Record
	title    string
	selected bool
}

func (it mediaItem) Title() string {
	if it.selected {
		return "● " + it.title
	}
	return "○ " + it.title
}

func (it mediaItem) Description() string {
	parts := []string{it.rec.Format.Label(), it.rec.StartDate.String()}
	if it.rec.HasScore() {
		parts = append(parts, fmt.Sprintf("%.1f", it.rec.Score()))
	}
	return strings.Join(parts, " · ")
}

func (it mediaItem) FilterValue() string { return it.title }

// Model contains UI state
type Model struct {
	svc   *appsvc.Service
	ctx   context.Context
	theme theme.Theme
	log   *zerolog.Logger

	mode   mode
	list   list.Model
	search textinput.Model

	searchGen int

	facets     []facetEntry
	facetIndex int

	pointer wheelview.Pointer
	colors  []string
	spinID  uint64
	current int
	winner  *appsvc.SpinResult

	status string

	termWidth  int
	termHeight int

	events     <-chan store.Event
	now        func() time.Time
	sound      func()
	frameEvery time.Duration
	idleEvery  time.Duration
}

// Option configures a Model.
type Option func(*Model)

// WithClock replaces time.Now for spin planning.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

// WithSound sets the callback run on every segment crossing.
func WithSound(fn func()) Option {
	return func(m *Model) { m.sound = fn }
}

// WithEvents makes the model reload when the watched library changes.
func WithEvents(ch <-chan store.Event) Option {
	return func(m *Model) { m.events = ch }
}

// WithContext sets the context used for store reloads.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// New creates a new UI model backed by the Service.
func New(svc *appsvc.Service, opts ...Option) *Model {
	d := list.NewDefaultDelegate()
	d.ShowDescription = true
	d.SetSpacing(0)

	l := list.New([]list.Item{}, d, 48, 20)
	l.Title = "Planned"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	ti := textinput.New()
	ti.Placeholder = "search titles"
	ti.CharLimit = 128
	ti.Prompt = "/"

	m := &Model{
		svc:        svc,
		ctx:        context.Background(),
		theme:      theme.Default(),
		log:        logging.Component("tui"),
		mode:       modeList,
		list:       l,
		search:     ti,
		pointer:    wheelview.NewPointer(idleFPS),
		current:    -1,
		status:     "space select · s spin · / search · f facets · ? help",
		now:        time.Now,
		frameEvery: wheel.DefaultFrameInterval,
		idleEvery:  time.Second / idleFPS,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.refresh()
	return m
}

// Init starts the idle animation and the store watcher.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(idleCmd(m.idleEvery), waitForStore(m.events))
}

// Update handles messages and keybindings
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		m.applySizes()
		return m, nil
	case errMsg:
		m.status = "ERR: " + msg.err.Error()
		return m, nil
	case frameMsg:
		return m, m.onFrame(msg)
	case idleMsg:
		m.onIdle()
		return m, idleCmd(m.idleEvery)
	case searchMsg:
		if msg.gen == m.searchGen {
			m.dispatch(filter.SetSearch{Text: msg.text})
		}
		return m, nil
	case storeMsg:
		return m, m.onStore(msg.event)
	case storeClosedMsg:
		m.events = nil
		return m, nil
	case tea.KeyPressMsg:
		return m, m.onKey(msg)
	}

	var cmd tea.Cmd
	if m.mode == modeSearch {
		m.search, cmd = m.search.Update(msg)
	}
	return m, cmd
}

func (m *Model) onKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return tea.Quit
	}

	switch m.mode {
	case modeHelp:
		if key == "q" || key == "esc" || key == "?" {
			m.mode = modeList
		}
		return nil
	case modeSearch:
		return m.onSearchKey(msg)
	case modeFacets:
		m.onFacetKey(key)
		return nil
	}

	switch key {
	case "q":
		m.svc.StopSpin()
		return tea.Quit
	case "?":
		m.mode = modeHelp
		return nil
	case "/":
		m.mode = modeSearch
		m.search.CursorEnd()
		return m.search.Focus()
	case "f":
		m.openFacets()
		return nil
	case "space", " ":
		m.toggleCurrent()
		return nil
	case "a":
		n := m.svc.SelectVisible()
		m.status = fmt.Sprintf("%d selected", n)
		m.refresh()
		return nil
	case "c":
		m.svc.ClearSelection()
		m.status = "Selection cleared"
		m.refresh()
		return nil
	case "s", "enter":
		return m.startSpin()
	case "u":
		m.dispatch(filter.SetShowUnaired(!m.params().Filter.ShowUnaired))
		return nil
	case "p":
		m.dispatch(filter.SetShowPlanning(!m.params().Filter.ShowPlanning))
		return nil
	case "x":
		m.dispatch(filter.SetShowDropped(!m.params().Filter.ShowDropped))
		return nil
	case "z":
		m.dispatch(filter.SetShowPaused(!m.params().Filter.ShowPaused))
		return nil
	case "o":
		m.dispatch(filter.SetSort(nextSort(m.params().Sort)))
		return nil
	case "r":
		m.dispatch(filter.ReverseOrder{})
		return nil
	case "R":
		m.search.SetValue("")
		m.searchGen++
		m.dispatch(filter.Reset{})
		return nil
	case "[", "]", "{", "}":
		m.adjustScore(key)
		return nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return cmd
}

func (m *Model) onSearchKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "enter":
		m.mode = modeList
		m.search.Blur()
		return nil
	}
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		m.searchGen++
		return tea.Batch(cmd, searchCmd(m.searchGen, after, searchDebounce))
	}
	return cmd
}

func (m *Model) params() filter.Params {
	return m.svc.View().Params
}

func (m *Model) dispatch(a filter.Action) {
	if err := m.svc.Dispatch(a); err != nil {
		m.status = "ERR: " + err.Error()
		return
	}
	m.refresh()
}

func (m *Model) adjustScore(key string) {
	r := m.params().Filter.Score
	switch key {
	case "[":
		r.From -= scoreStep
	case "]":
		r.From += scoreStep
	case "{":
		r.To -= scoreStep
	case "}":
		r.To += scoreStep
	}
	r.From = clamp(r.From, filter.MinScore, filter.MaxScore)
	r.To = clamp(r.To, filter.MinScore, filter.MaxScore)
	m.dispatch(filter.SetScoreRange{From: r.From, To: r.To})
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func nextSort(s filter.Sort) filter.Sort {
	switch s.Field {
	case filter.SortDate:
		s.Field = filter.SortTitle
	case filter.SortTitle:
		s.Field = filter.SortScore
	default:
		s.Field = filter.SortDate
	}
	return s
}

// refresh rebuilds the list from the engine view and keeps the cursor on
// the same record when it is still visible.
func (m *Model) refresh() {
	if _, err := m.svc.Library(); err != nil {
		m.status = "No library loaded: run anispin import first"
		return
	}
	var keep int
	if it, ok := m.list.SelectedItem().(mediaItem); ok {
		keep = it.rec.ID
	}

	lang := m.svc.Preferences().TitleLanguage
	visible := m.svc.View().Visible
	items := make([]list.Item, 0, len(visible))
	cursor := 0
	for i := range visible {
		r := visible[i]
		if r.ID == keep {
			cursor = i
		}
		items = append(items, mediaItem{
			rec:      r,
			title:    r.DisplayTitle(lang),
			selected: m.svc.IsSelected(r.ID),
		})
	}
	m.list.SetItems(items)
	if len(items) > 0 {
		m.list.Select(cursor)
	}
	m.syncWheel()
}

func (m *Model) syncWheel() {
	w := m.svc.Wheel()
	spinning := w.Spinning()
	candidates := m.svc.SyncWheel()
	if spinning && !w.Spinning() {
		m.spinID = 0
		m.status = "Spin cancelled: the wheel changed"
	}
	if len(candidates) != len(m.colors) {
		m.colors = wheelview.Palette(len(candidates))
	}
	m.current = w.Current()
}

func (m *Model) toggleCurrent() {
	it, ok := m.list.SelectedItem().(mediaItem)
	if !ok {
		return
	}
	if _, err := m.svc.ToggleSelection(it.rec.ID); err != nil {
		m.status = "ERR: " + err.Error()
		return
	}
	m.refresh()
}

func (m *Model) startSpin() tea.Cmd {
	m.syncWheel()
	id, plan, err := m.svc.Wheel().Spin(m.now())
	if err != nil {
		m.status = "Select titles with space before spinning"
		return nil
	}
	m.spinID = id
	m.winner = nil
	m.status = "Spinning…"
	m.log.Debug().Uint64("spin", id).Float64("target", plan.Target).Msg("spin started")
	return frameCmd(id, m.frameEvery)
}

func (m *Model) onFrame(msg frameMsg) tea.Cmd {
	if msg.spin != m.spinID {
		return nil
	}
	f := m.svc.Wheel().Sample(msg.at)
	if f.Spin != msg.spin {
		m.spinID = 0
		return nil
	}
	m.current = f.Index

	var cmds []tea.Cmd
	if f.Crossing != nil {
		m.pointer.Kick()
		cmds = append(cmds, m.soundCmd())
	}
	if f.Done {
		res := m.svc.Resolved(f)
		m.winner = &res
		m.spinID = 0
		m.status = "Winner: " + res.Winner.DisplayTitle(m.svc.Preferences().TitleLanguage)
		m.log.Debug().Int("id", res.Winner.ID).Str("spin", res.ID).Msg("winner")
		return tea.Batch(cmds...)
	}
	cmds = append(cmds, frameCmd(msg.spin, m.frameEvery))
	return tea.Batch(cmds...)
}

func (m *Model) soundCmd() tea.Cmd {
	if m.sound == nil {
		return nil
	}
	sound := m.sound
	return func() tea.Msg {
		sound()
		return nil
	}
}

func (m *Model) onIdle() {
	w := m.svc.Wheel()
	if !w.Spinning() {
		w.Idle()
		m.current = w.Current()
	}
	m.pointer.Step()
}

func (m *Model) onStore(ev store.Event) tea.Cmd {
	lib, err := m.svc.Library()
	if err == nil && (ev.Type == store.EventLibrariesInvalidated || ev.Ref == lib.Ref()) {
		if err := m.svc.Reload(m.ctx); err != nil {
			m.status = "ERR: " + err.Error()
		} else {
			m.status = "Library reloaded"
			m.log.Debug().Str("library", ev.Ref.String()).Msg("reloaded")
			m.refresh()
		}
	}
	return waitForStore(m.events)
}

// applySizes recalculates pane sizes based on current terminal size.
func (m *Model) applySizes() {
	if m.termWidth == 0 || m.termHeight == 0 {
		return
	}
	left := m.termWidth / 2
	if left < 32 {
		left = 32
	}
	if left > 72 {
		left = 72
	}
	height := m.termHeight - 6
	if height < 5 {
		height = 5
	}
	m.list.SetSize(left, height)
}

// Bell writes the terminal bell to stderr.
func Bell() {
	_, _ = fmt.Fprint(os.Stderr, "\a")
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, svc *appsvc.Service, opts ...Option) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	base := []Option{WithContext(ctx), WithSound(Bell)}
	if events, err := svc.Watch(ctx); err == nil {
		base = append(base, WithEvents(events))
	} else {
		logging.Component("tui").Debug().Err(err).Msg("library watcher unavailable")
	}

	p := tea.NewProgram(New(svc, append(base, opts...)...), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	svc.StopSpin()
	return err
}
