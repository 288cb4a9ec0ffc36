package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"tableflip.dev/anispin/pkg/filter"
	"tableflip.dev/anispin/pkg/media"
	"tableflip.dev/anispin/pkg/store"
	"tableflip.dev/anispin/pkg/wheel"
)

type memoryPersistence struct {
	mu   sync.Mutex
	libs map[store.Ref]*store.Library
}

func newMemoryPersistence(libs ...*store.Library) *memoryPersistence {
	mp := &memoryPersistence{libs: make(map[store.Ref]*store.Library)}
	for _, l := range libs {
		mp.libs[l.Ref()] = l
	}
	return mp
}

func (m *memoryPersistence) Save(l *store.Library) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	cp.Records = append([]media.Record(nil), l.Records...)
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
	cp.Records = append([]media.Record(nil), l.Records...)
	return &cp, nil
}

func (m *memoryPersistence) List(_ context.Context) []store.Ref {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]store.Ref, 0, len(m.libs))
	for ref := range m.libs {
		out = append(out, ref)
	}
	return out
}

func (m *memoryPersistence) Delete(ref store.Ref) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.libs, ref)
	return nil
}

func (m *memoryPersistence) Watch(ctx context.Context) (<-chan store.Event, error) {
	ch := make(chan store.Event)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
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
		CreatedAt: &created,
	}
}

func testLibrary() *store.Library {
	return &store.Library{
		Provider: testRef.Provider,
		User:     testRef.User,
		Records: []media.Record{
			testRecord(1, "Alpha", media.StatusPlanning),
			testRecord(2, "Bravo", media.StatusPlanning),
			testRecord(3, "Charlie", media.StatusDropped),
			testRecord(4, "Delta", media.StatusPlanning),
		},
	}
}

func newTestService(t *testing.T, libs ...*store.Library) *Service {
	t.Helper()
	s := New(newMemoryPersistence(libs...), nil,
		WithClock(func() time.Time { return testNow }),
		WithWheelOptions(wheel.WithRandom(fixedRandom(0)), wheel.WithDuration(20*time.Millisecond)),
		WithFrameInterval(time.Millisecond),
	)
	return s
}

func openTestService(t *testing.T) *Service {
	t.Helper()
	s := newTestService(t, testLibrary())
	if _, err := s.Open(context.Background(), testRef); err != nil {
		t.Fatalf("open: %v", err)
	}
	return s
}

func TestServiceWithoutLibrary(t *testing.T) {
	s := newTestService(t)
	if _, err := s.Library(); !errors.Is(err, ErrNoLibrary) {
		t.Fatalf("expected ErrNoLibrary, got %v", err)
	}
	if _, err := s.Facets(); !errors.Is(err, ErrNoLibrary) {
		t.Fatalf("expected ErrNoLibrary from facets, got %v", err)
	}
	if _, err := s.Open(context.Background(), testRef); !errors.Is(err, store.ErrLibraryNotFound) {
		t.Fatalf("expected ErrLibraryNotFound, got %v", err)
	}
	if _, err := s.SpinNow(); !errors.Is(err, wheel.ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
}

func TestOpenAppliesDefaultFilter(t *testing.T) {
	s := openTestService(t)
	v := s.View()
	if v.Total != 4 {
		t.Fatalf("expected total 4, got %d", v.Total)
	}
	if len(v.Visible) != 3 {
		t.Fatalf("expected dropped record hidden, got %d visible", len(v.Visible))
	}
	// Newest first.
	if v.Visible[0].ID != 4 {
		t.Fatalf("expected record 4 first, got %d", v.Visible[0].ID)
	}
}

func TestSelectionAndCandidates(t *testing.T) {
	s := openTestService(t)

	if _, err := s.ToggleSelection(99); !errors.Is(err, ErrUnknownRecord) {
		t.Fatalf("expected ErrUnknownRecord, got %v", err)
	}
	for _, id := range []int{2, 3, 1} {
		if on, err := s.ToggleSelection(id); err != nil || !on {
			t.Fatalf("toggle %d: on=%v err=%v", id, on, err)
		}
	}

	// 3 is dropped and therefore hidden: selected but not a candidate.
	got := ids(s.Candidates())
	if !equalInts(got, []int{2, 1}) {
		t.Fatalf("candidates = %v, want [2 1]", got)
	}

	if err := s.Dispatch(filter.SetShowDropped(true)); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	got = ids(s.Candidates())
	if !equalInts(got, []int{2, 3, 1}) {
		t.Fatalf("candidates = %v, want [2 3 1]", got)
	}

	if on, _ := s.ToggleSelection(2); on {
		t.Fatal("expected 2 to be deselected")
	}
	s.ClearSelection()
	if n := s.SelectVisible(); n != 4 {
		t.Fatalf("expected 4 selected, got %d", n)
	}
}

func TestSpinNowResolvesAndRecordsHistory(t *testing.T) {
	s := openTestService(t)
	s.SelectVisible()
	candidates := s.Candidates()

	res, err := s.SpinNow()
	if err != nil {
		t.Fatalf("spin: %v", err)
	}
	// fixedRandom(0) travels exactly four turns from 0, so the pointer sits
	// over the last segment.
	want := candidates[len(candidates)-1]
	if res.Winner.ID != want.ID {
		t.Fatalf("winner = %d, want %d", res.Winner.ID, want.ID)
	}
	if res.Candidates != len(candidates) {
		t.Fatalf("candidates = %d, want %d", res.Candidates, len(candidates))
	}
	if res.ID == "" || !res.At.Equal(testNow) {
		t.Fatalf("unexpected result metadata %+v", res)
	}
	if h := s.History(); len(h) != 1 || h[0].ID != res.ID {
		t.Fatalf("unexpected history %+v", h)
	}
}

func TestHistoryIsBounded(t *testing.T) {
	s := openTestService(t)
	s.SelectVisible()
	var last SpinResult
	for i := 0; i < HistoryLimit+5; i++ {
		res, err := s.SpinNow()
		if err != nil {
			t.Fatalf("spin %d: %v", i, err)
		}
		last = res
	}
	h := s.History()
	if len(h) != HistoryLimit {
		t.Fatalf("expected %d history entries, got %d", HistoryLimit, len(h))
	}
	if h[0].ID != last.ID {
		t.Fatal("expected newest spin first")
	}
}

func TestAnimatedSpin(t *testing.T) {
	s := openTestService(t)
	s.SelectVisible()
	frames := 0
	res, err := s.Spin(context.Background(), func(wheel.Frame[media.Record]) { frames++ })
	if err != nil {
		t.Fatalf("spin: %v", err)
	}
	if frames == 0 {
		t.Fatal("expected frames")
	}
	if !s.IsSelected(res.Winner.ID) {
		t.Fatalf("winner %d was not a candidate", res.Winner.ID)
	}
}

func TestImportRecordsArrayNormalizesScores(t *testing.T) {
	s := newTestService(t)
	doc := `[
		{"id": 1, "title": {"romaji": "Mushishi"}, "averageScore": 87, "status": "PLANNING"},
		{"id": 2, "title": {"english": "Frieren"}, "status": "PAUSED"},
		{"id": 1, "title": {"romaji": "Mushishi"}, "customLists": ["Comfy"]}
	]`
	lib, err := s.Import(context.Background(), strings.NewReader(doc), testRef)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(lib.Records) != 2 {
		t.Fatalf("expected duplicates merged, got %d records", len(lib.Records))
	}
	if got := lib.Records[0].Score(); got != 8.7 {
		t.Fatalf("score = %v, want 8.7", got)
	}
	if !lib.Records[0].InCustomList("Comfy") {
		t.Fatal("expected custom lists merged from duplicate")
	}
	if _, err := s.Persistence.Load(context.Background(), testRef); err != nil {
		t.Fatalf("expected import to be saved: %v", err)
	}
	if cur, _ := s.Library(); cur != lib {
		t.Fatal("expected imported library to become current")
	}
}

func TestImportAniListResponse(t *testing.T) {
	doc := `{"data": {"MediaListCollection": {"lists": [
		{"name": "Planning", "isCustomList": false, "entries": [
			{"status": "PLANNING", "createdAt": 1700000000, "customLists": {"Weekend": true, "Later": false},
			 "media": {"id": 5, "title": {"english": null, "romaji": "Kaiju", "native": "怪獣"},
			           "averageScore": 70, "format": "TV", "startDate": {"year": 2024, "month": 4, "day": null}}}
		]},
		{"name": "Weekend", "isCustomList": true, "entries": [
			{"status": "PLANNING", "media": {"id": 5, "title": {"romaji": "Kaiju"}}}
		]}
	]}}}`
	lib, err := DecodeLibrary([]byte(doc), testRef)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(lib.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(lib.Records))
	}
	r := lib.Records[0]
	if r.Score() != 7 {
		t.Fatalf("score = %v, want 7", r.Score())
	}
	if r.Created() != 1700000000*1000 {
		t.Fatalf("created = %d", r.Created())
	}
	if len(r.CustomLists) != 1 || r.CustomLists[0] != "Weekend" {
		t.Fatalf("custom lists = %v", r.CustomLists)
	}
	if r.DisplayTitle(media.TitleEnglish) != "Kaiju" {
		t.Fatalf("title = %q", r.DisplayTitle(media.TitleEnglish))
	}
	if lib.Provider != testRef.Provider || lib.User != testRef.User {
		t.Fatalf("ref not applied: %+v", lib.Ref())
	}
}

func TestDecodeLibraryRejectsGarbage(t *testing.T) {
	for _, doc := range []string{"", "42", `{"other": true}`, "[1,"} {
		if _, err := DecodeLibrary([]byte(doc), testRef); err == nil {
			t.Errorf("expected error for %q", doc)
		}
	}
}

func TestExportRoundTrip(t *testing.T) {
	s := openTestService(t)
	var buf bytes.Buffer
	if err := s.ExportLibrary(&buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	other := newTestService(t)
	lib, err := other.Import(context.Background(), &buf, testRef)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(lib.Records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(lib.Records))
	}

	buf.Reset()
	if err := s.Export(&buf); err != nil {
		t.Fatalf("export view: %v", err)
	}
	var doc ExportDocument
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if doc.Total != 4 || len(doc.Records) != 3 {
		t.Fatalf("unexpected export total=%d visible=%d", doc.Total, len(doc.Records))
	}
}

func TestReport(t *testing.T) {
	s := openTestService(t)
	r, err := s.Report()
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if r.Total != 4 || r.Visible != 3 {
		t.Fatalf("unexpected totals %+v", r)
	}
	if len(r.Statuses) != 2 || r.Statuses[0].Name != "PLANNING" || r.Statuses[0].Count != 3 {
		t.Fatalf("unexpected statuses %+v", r.Statuses)
	}
}

func TestReloadPrunesSelection(t *testing.T) {
	s := openTestService(t)
	if _, err := s.ToggleSelection(4); err != nil {
		t.Fatal(err)
	}
	lib := testLibrary()
	lib.Records = lib.Records[:3]
	if err := s.Persistence.Save(lib); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(s.Selected()) != 0 {
		t.Fatalf("expected selection pruned, got %v", s.Selected())
	}
}

func ids(records []media.Record) []int {
	out := make([]int, len(records))
	for i := range records {
		out[i] = records[i].ID
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
