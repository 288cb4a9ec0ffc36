package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"tableflip.dev/anispin/pkg/filter"
	"tableflip.dev/anispin/pkg/logging"
	"tableflip.dev/anispin/pkg/media"
	"tableflip.dev/anispin/pkg/store"
	"tableflip.dev/anispin/pkg/wheel"
)

// ErrNoLibrary is returned by operations that need a loaded library.
var ErrNoLibrary = errors.New("app: no library loaded")

// ErrUnknownRecord is returned when an id is not part of the loaded library.
var ErrUnknownRecord = errors.New("app: record not in library")

// HistoryLimit bounds the number of remembered spin results.
const HistoryLimit = 20

// SpinResult is one resolved spin.
type SpinResult struct {
	ID         string       `json:"id"`
	Winner     media.Record `json:"winner"`
	Candidates int          `json:"candidates"`
	Rotation   float64      `json:"rotation"`
	At         time.Time    `json:"at"`
}

// Facets are the values the filter controls can offer for a library.
type Facets struct {
	Genres      []string       `json:"genres"`
	CustomLists []string       `json:"customLists"`
	Formats     []media.Format `json:"formats"`
}

// Service ties persistence, the filter engine, the selection and the wheel
// together so the CLI, the TUI and the MCP server share one behaviour.
type Service struct {
	Persistence store.Persistence

	mu        sync.Mutex
	library   *store.Library
	engine    *filter.Engine
	selection *filter.Selection
	wheel     *wheel.Wheel[media.Record]
	animator  *wheel.Animator[media.Record]
	history   []SpinResult
	now       func() time.Time
	provider  media.Provider
	user      string
}

// Option customises a Service.
type Option func(*options)

type options struct {
	wheel  []wheel.Option
	filter []filter.Option
	now    func() time.Time
	frame  time.Duration
}

// WithWheelOptions forwards options to the wheel.
func WithWheelOptions(opts ...wheel.Option) Option {
	return func(o *options) { o.wheel = append(o.wheel, opts...) }
}

// WithClock overrides the time source for the engine and spin timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
			o.filter = append(o.filter, filter.WithClock(now))
		}
	}
}

// WithFrameInterval sets the animator tick.
func WithFrameInterval(d time.Duration) Option {
	return func(o *options) { o.frame = d }
}

// New builds a service. cfg may be nil, in which case defaults are used.
func New(p store.Persistence, cfg store.Config, opts ...Option) *Service {
	o := options{now: time.Now}
	provider := media.ProviderAniList
	var user string
	if cfg != nil {
		provider, user = cfg.Provider(), cfg.User()
		o.filter = append(o.filter, filter.WithPreferences(cfg.Preferences()), filter.WithCollation(cfg.Collation()))
		o.wheel = append(o.wheel, cfg.Spin().Options()...)
	}
	for _, opt := range opts {
		opt(&o)
	}
	w := wheel.New[media.Record](nil, o.wheel...)
	return &Service{
		Persistence: p,
		engine:      filter.NewEngine(o.filter...),
		selection:   filter.NewSelection(),
		wheel:       w,
		animator:    wheel.NewAnimator(w, o.frame),
		now:         o.now,
		provider:    provider,
		user:        user,
	}
}

// DefaultRef is the library named by configuration.
func (s *Service) DefaultRef() store.Ref {
	return store.Ref{Provider: s.provider, User: s.user}
}

// Open loads the library for ref and makes it current. Selected ids that
// are no longer in the snapshot are dropped.
func (s *Service) Open(ctx context.Context, ref store.Ref) (*store.Library, error) {
	if s.Persistence == nil {
		return nil, errors.New("app: no persistence configured")
	}
	lib, err := s.Persistence.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	s.setLibrary(lib)
	return lib, nil
}

func (s *Service) setLibrary(lib *store.Library) {
	s.mu.Lock()
	s.library = lib
	s.selection.Prune(lib.Records)
	s.mu.Unlock()
	s.engine.SetRecords(lib.Records)
	logging.Debug().Str("library", lib.Ref().String()).Int("records", len(lib.Records)).Msg("library opened")
}

// Library returns the current library.
func (s *Service) Library() (*store.Library, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.library == nil {
		return nil, ErrNoLibrary
	}
	return s.library, nil
}

// Libraries lists stored snapshots.
func (s *Service) Libraries(ctx context.Context) ([]store.Ref, error) {
	if s.Persistence == nil {
		return nil, errors.New("app: no persistence configured")
	}
	return s.Persistence.List(ctx), nil
}

// Watch subscribes to persistence change events.
func (s *Service) Watch(ctx context.Context) (<-chan store.Event, error) {
	if s.Persistence == nil {
		return nil, errors.New("app: no persistence configured")
	}
	return s.Persistence.Watch(ctx)
}

// Reload re-reads the current library from persistence.
func (s *Service) Reload(ctx context.Context) error {
	lib, err := s.Library()
	if err != nil {
		return err
	}
	_, err = s.Open(ctx, lib.Ref())
	return err
}

// Engine exposes the filter engine, e.g. for subscriptions.
func (s *Service) Engine() *filter.Engine {
	return s.engine
}

// Dispatch applies a filter action.
func (s *Service) Dispatch(a filter.Action) error {
	return s.engine.Dispatch(a)
}

// View is the current filtered and sorted view.
func (s *Service) View() filter.View {
	return s.engine.View()
}

// SetPreferences changes title and image preferences.
func (s *Service) SetPreferences(p media.Preferences) {
	s.engine.SetPreferences(p)
}

// Preferences returns the active title and image preferences.
func (s *Service) Preferences() media.Preferences {
	return s.engine.Env().Preferences
}

// Facets lists the genres, custom lists and formats present in the library.
func (s *Service) Facets() (Facets, error) {
	lib, err := s.Library()
	if err != nil {
		return Facets{}, err
	}
	return Facets{
		Genres:      media.Genres(lib.Records),
		CustomLists: media.CustomLists(lib.Records),
		Formats:     media.Formats(lib.Records),
	}, nil
}

// Record looks up a record in the current library.
func (s *Service) Record(id int) (media.Record, error) {
	lib, err := s.Library()
	if err != nil {
		return media.Record{}, err
	}
	for i := range lib.Records {
		if lib.Records[i].ID == id {
			return lib.Records[i], nil
		}
	}
	return media.Record{}, fmt.Errorf("%w: %d", ErrUnknownRecord, id)
}

// ToggleSelection flips id and reports whether it is now selected.
func (s *Service) ToggleSelection(id int) (bool, error) {
	if _, err := s.Record(id); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Toggle(id), nil
}

// SelectVisible adds every visible record to the selection.
func (s *Service) SelectVisible() int {
	visible := s.engine.View().Visible
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.SelectAll(visible)
	return s.selection.Len()
}

// ClearSelection deselects everything.
func (s *Service) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.Clear()
}

// Selected returns the selected ids in selection order.
func (s *Service) Selected() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.IDs()
}

// IsSelected reports whether id is selected.
func (s *Service) IsSelected(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Has(id)
}

// Candidates are the selected records that are currently visible, in
// selection order.
func (s *Service) Candidates() []media.Record {
	visible := s.engine.View().Visible
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Candidates(visible)
}

// Wheel exposes the wheel for front ends that drive their own frames.
// Call SyncWheel first so its items match Candidates.
func (s *Service) Wheel() *wheel.Wheel[media.Record] {
	return s.wheel
}

// SyncWheel loads the current candidates onto the wheel. While spinning the
// wheel is only touched when the candidate ids changed, so an in-flight spin
// survives an unrelated refresh.
func (s *Service) SyncWheel() []media.Record {
	candidates := s.Candidates()
	if !s.wheel.Spinning() || !sameIDs(s.wheel.Items(), candidates) {
		s.wheel.SetItems(candidates)
	}
	return candidates
}

// Spin animates a spin over the candidates and blocks until it resolves.
// onFrame, when set, sees every frame. A concurrent Spin supersedes this one.
func (s *Service) Spin(ctx context.Context, onFrame func(wheel.Frame[media.Record])) (SpinResult, error) {
	candidates := s.SyncWheel()
	if len(candidates) == 0 {
		return SpinResult{}, wheel.ErrNoCandidates
	}
	winner, err := s.animator.Spin(ctx, onFrame)
	if err != nil {
		return SpinResult{}, err
	}
	return s.record(winner, len(candidates), s.wheel.Rotation()), nil
}

// SpinNow plans a spin and resolves it immediately at the end of its plan,
// without animation.
func (s *Service) SpinNow() (SpinResult, error) {
	candidates := s.SyncWheel()
	now := s.now()
	_, plan, err := s.wheel.Spin(now)
	if err != nil {
		return SpinResult{}, err
	}
	f := s.wheel.Sample(now.Add(plan.Duration))
	if !f.Done {
		return SpinResult{}, errors.New("app: spin did not resolve")
	}
	return s.record(f.Winner, len(candidates), f.Rotation), nil
}

// Resolved records a winner produced by a front end driving the wheel
// itself.
func (s *Service) Resolved(f wheel.Frame[media.Record]) SpinResult {
	return s.record(f.Winner, len(s.wheel.Items()), f.Rotation)
}

func (s *Service) record(winner media.Record, n int, rotation float64) SpinResult {
	res := SpinResult{
		ID:         uuid.NewString(),
		Winner:     winner,
		Candidates: n,
		Rotation:   rotation,
		At:         s.now(),
	}
	s.mu.Lock()
	s.history = append([]SpinResult{res}, s.history...)
	if len(s.history) > HistoryLimit {
		s.history = s.history[:HistoryLimit]
	}
	s.mu.Unlock()
	logging.Debug().Str("spin", res.ID).Int("winner", winner.ID).Int("candidates", n).Msg("spin resolved")
	return res
}

// History returns past spins, newest first.
func (s *Service) History() []SpinResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SpinResult(nil), s.history...)
}

// StopSpin cancels an in-flight animated spin.
func (s *Service) StopSpin() {
	s.animator.Stop()
}

func sameIDs(a, b []media.Record) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
