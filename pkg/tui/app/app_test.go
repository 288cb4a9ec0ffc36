package teaui

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	appsvc "tableflip.dev/anispin/pkg/app"
	"tableflip.dev/anispin/pkg/media"
	"tableflip.dev/anispin/pkg/store"
	"tableflip.dev/anispin/pkg/wheel"
)

type memoryPersistence struct {
	mu   sync.Mutex
	libs map[store.Ref]*store.Library
}

func (m *memoryPersistence) Save(l *store.Library) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	m.libs[l.Ref()] = &cp
	return nil
}

func (m *memoryPersistence) Load(_ context.Context, ref store.Ref) (*store.Library, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.libs[ref]
	if !ok {
		return nil, store.ErrLibraryNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memoryPersistence) List(context.Context) []store.Ref { return nil }

func (m *memoryPersistence) Delete(store.Ref) error { return nil }

func (m *memoryPersistence) Watch(context.Context) (<-chan store.Event, error) {
	return nil, nil
}

type fixedRandom float64

func (f fixedRandom) Float64() float64 { return float64(f) }

var (
	testNow = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	testRef = store.Ref{Provider: media.ProviderAniList, User: "yui"}
)

func testRecord(id int, title string, status media.Status) media.Record {
	created := int64(id) * 1000
	return media.Record{
		ID:        id,
		Title:     media.Title{English: title},
		Format:    media.FormatTV,
		StartDate: media.NewFuzzyDate(2020, 1, 1),
		Status:    status,
		Genres:    []string{"Action"},
		CreatedAt: &created,
	}
}

func newTestModel(t *testing.T) (*Model, *int) {
	t.Helper()
	lib := &store.Library{
		Provider: testRef.Provider,
		User:     testRef.User,
		Records: []media.Record{
			testRecord(1, "Alpha", media.StatusPlanning),
			testRecord(2, "Bravo", media.StatusPlanning),
			testRecord(3, "Charlie", media.StatusDropped),
			testRecord(4, "Delta", media.StatusPlanning),
		},
	}
	p := &memoryPersistence{libs: map[store.Ref]*store.Library{testRef: lib}}
	svc := appsvc.New(p, nil,
		appsvc.WithClock(func() time.Time { return testNow }),
		appsvc.WithWheelOptions(wheel.WithRandom(fixedRandom(0))),
	)
	if _, err := svc.Open(context.Background(), testRef); err != nil {
		t.Fatalf("open: %v", err)
	}
	bells := 0
	m := New(svc,
		WithClock(func() time.Time { return testNow }),
		WithSound(func() { bells++ }),
	)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, &bells
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyPressMsg
		switch k {
		case "space":
			msg = tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
		case "enter":
			msg = tea.KeyPressMsg{Code: tea.KeyEnter}
		case "esc":
			msg = tea.KeyPressMsg{Code: tea.KeyEscape}
		case "down":
			msg = tea.KeyPressMsg{Code: tea.KeyDown}
		default:
			r := []rune(k)[0]
			msg = tea.KeyPressMsg{Code: r, Text: k}
		}
		_, cmd = m.Update(msg)
	}
	return cmd
}

var ansiRE = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

func stripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

func visibleIDs(m *Model) []int {
	var out []int
	for _, it := range m.list.Items() {
		out = append(out, it.(mediaItem).rec.ID)
	}
	return out
}

func TestListShowsDefaultView(t *testing.T) {
	m, _ := newTestModel(t)
	got := visibleIDs(m)
	want := []int{4, 2, 1}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSpaceTogglesSelection(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "space")
	if !m.svc.IsSelected(4) {
		t.Fatalf("expected first visible record to be selected")
	}
	if it := m.list.Items()[0].(mediaItem); !it.selected || !strings.HasPrefix(it.Title(), "●") {
		t.Fatalf("expected list row to be marked, got %q", it.Title())
	}
	if n := len(m.svc.Wheel().Items()); n != 1 {
		t.Fatalf("expected wheel to hold 1 candidate, got %d", n)
	}

	press(m, "space")
	if m.svc.IsSelected(4) {
		t.Fatalf("expected second toggle to deselect")
	}
}

func TestFilterKeys(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "x")
	if n := len(m.list.Items()); n != 4 {
		t.Fatalf("expected dropped titles to appear, got %d rows", n)
	}
	press(m, "o")
	if got := m.params().Sort.Field; got != "title" {
		t.Fatalf("expected title sort, got %q", got)
	}
	press(m, "R")
	if n := len(m.list.Items()); n != 3 {
		t.Fatalf("expected reset to hide dropped titles, got %d rows", n)
	}
}

func TestSearchIsDebounced(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "/")
	if m.mode != modeSearch {
		t.Fatalf("expected search mode")
	}
	press(m, "b")
	first := m.searchGen
	press(m, "r")

	m.Update(searchMsg{gen: first, text: "b"})
	if got := m.params().Filter.Search; got != "" {
		t.Fatalf("stale debounce applied search %q", got)
	}

	m.Update(searchMsg{gen: m.searchGen, text: m.search.Value()})
	if got := m.params().Filter.Search; got != "br" {
		t.Fatalf("expected search \"br\", got %q", got)
	}
	ids := visibleIDs(m)
	if len(ids) != 1 || ids[0] != 2 {
		t.Fatalf("expected only Bravo, got %v", ids)
	}

	press(m, "esc")
	if m.mode != modeList {
		t.Fatalf("expected esc to leave search mode")
	}
}

func TestSpinWithoutSelection(t *testing.T) {
	m, _ := newTestModel(t)
	if cmd := press(m, "s"); cmd != nil {
		t.Fatalf("expected no frame command")
	}
	if !strings.Contains(m.status, "Select titles") {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestSpinResolvesWinner(t *testing.T) {
	m, bells := newTestModel(t)
	press(m, "a")
	if cmd := press(m, "s"); cmd == nil {
		t.Fatalf("expected a frame command")
	}
	id := m.spinID
	if id == 0 {
		t.Fatalf("expected a spin id")
	}

	cmd := m.onFrame(frameMsg{spin: id, at: testNow.Add(time.Second)})
	if cmd == nil {
		t.Fatalf("expected the next frame to be scheduled")
	}
	if m.winner != nil {
		t.Fatalf("winner resolved early")
	}
	if *bells != 0 {
		// sound runs inside the returned command, never in Update
		t.Fatalf("sound ran synchronously")
	}

	m.onFrame(frameMsg{spin: id, at: testNow.Add(wheel.DefaultDuration)})
	if m.winner == nil {
		t.Fatalf("expected a winner")
	}
	if m.spinID != 0 {
		t.Fatalf("expected spin to finish")
	}
	if got := m.svc.History(); len(got) != 1 || got[0].Winner.ID != m.winner.Winner.ID {
		t.Fatalf("expected winner in history, got %+v", got)
	}
	if !strings.Contains(stripANSI(m.View()), m.winner.Winner.Title.English) {
		t.Fatalf("expected winner in view")
	}
}

func TestStaleFramesAreDropped(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "a")
	press(m, "s")
	first := m.spinID
	press(m, "s")
	second := m.spinID
	if first == second {
		t.Fatalf("expected a new spin id")
	}
	if cmd := m.onFrame(frameMsg{spin: first, at: testNow.Add(time.Hour)}); cmd != nil {
		t.Fatalf("expected stale frame to be ignored")
	}
	if m.winner != nil || m.spinID != second {
		t.Fatalf("stale frame changed state")
	}
}

func TestSelectionChangeCancelsSpin(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "a")
	press(m, "s")
	id := m.spinID
	press(m, "space")
	if m.svc.Wheel().Spinning() {
		t.Fatalf("expected spin to be cancelled")
	}
	if cmd := m.onFrame(frameMsg{spin: id, at: testNow.Add(wheel.DefaultDuration)}); cmd != nil {
		t.Fatalf("expected cancelled spin frames to be dropped")
	}
	if m.winner != nil {
		t.Fatalf("cancelled spin produced a winner")
	}
}

func TestIdleDrifts(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "a")
	before := m.svc.Wheel().Rotation()
	m.Update(idleMsg{at: testNow})
	if after := m.svc.Wheel().Rotation(); after <= before {
		t.Fatalf("expected idle drift, rotation %v -> %v", before, after)
	}
}

func TestFacetPickerTogglesGenre(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "f")
	if m.mode != modeFacets {
		t.Fatalf("expected facet mode")
	}
	if e := m.facets[0]; e.kind != facetGenre || e.value != "Action" {
		t.Fatalf("unexpected first facet %+v", e)
	}
	press(m, "space")
	if g := m.params().Filter.Genres; len(g) != 1 || g[0] != "Action" {
		t.Fatalf("expected Action genre filter, got %v", g)
	}
	if !strings.Contains(stripANSI(m.View()), "genres Action") {
		t.Fatalf("expected filter summary in footer")
	}
	press(m, "esc")
	if m.mode != modeList {
		t.Fatalf("expected esc to close facets")
	}
}

func TestViewRendersPanes(t *testing.T) {
	m, _ := newTestModel(t)
	view := stripANSI(m.View())
	for _, want := range []string{"Planned", "Delta", "Wheel · 0", "Select titles"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view; view=%q", want, view)
		}
	}
	press(m, "a")
	view = stripANSI(m.View())
	if !strings.Contains(view, "Wheel · 3") || !strings.Contains(view, "▼") {
		t.Fatalf("expected wheel with pointer; view=%q", view)
	}
}
