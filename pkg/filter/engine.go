package filter

import (
	"sync"
	"time"

	"golang.org/x/text/language"

	"tableflip.dev/anispin/pkg/media"
)

// View is an immutable snapshot of the engine's derived output.
type View struct {
	Params  Params
	Visible []media.Record
	Total   int
}

// Engine holds the full collection and the current parameters, and
// re-derives the visible list on every change. Subscribers are notified
// after each recomputation.
type Engine struct {
	mu      sync.Mutex
	full    []media.Record
	params  Params
	visible []media.Record

	now   func() time.Time
	prefs media.Preferences
	tag   language.Tag

	subs    map[int]func(View)
	nextSub int
}

// Option customises an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for aired checks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithPreferences sets the title preference used for title sort.
func WithPreferences(p media.Preferences) Option {
	return func(e *Engine) { e.prefs = p }
}

// WithCollation sets the locale used for title sort.
func WithCollation(tag language.Tag) Option {
	return func(e *Engine) { e.tag = tag }
}

// WithParams sets the initial parameters.
func WithParams(p Params) Option {
	return func(e *Engine) { e.params = Reduce(p, nil) }
}

// NewEngine returns an engine with DefaultParams and no records.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		params: DefaultParams(),
		now:    time.Now,
		prefs:  media.DefaultPreferences(),
		tag:    language.English,
		subs:   make(map[int]func(View)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetRecords replaces the full collection, e.g. after a refresh.
func (e *Engine) SetRecords(records []media.Record) {
	e.mu.Lock()
	e.full = append([]media.Record(nil), records...)
	v := e.recomputeLocked()
	subs := e.subscribersLocked()
	e.mu.Unlock()
	notify(subs, v)
}

// SetPreferences changes the title preference and re-sorts.
func (e *Engine) SetPreferences(p media.Preferences) {
	e.mu.Lock()
	e.prefs = p
	v := e.recomputeLocked()
	subs := e.subscribersLocked()
	e.mu.Unlock()
	notify(subs, v)
}

// Dispatch applies a to the parameters. An action producing an invalid
// state is rejected and the parameters stay unchanged.
func (e *Engine) Dispatch(a Action) error {
	e.mu.Lock()
	next := Reduce(e.params, a)
	if err := next.Filter.Validate(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.params = next
	v := e.recomputeLocked()
	subs := e.subscribersLocked()
	e.mu.Unlock()
	notify(subs, v)
	return nil
}

// View returns the current derived output.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked()
}

// Records returns a copy of the full collection.
func (e *Engine) Records() []media.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]media.Record(nil), e.full...)
}

// Env returns the environment a derivation would use right now.
func (e *Engine) Env() Env {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.envLocked()
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (e *Engine) Subscribe(fn func(View)) func() {
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.mu.Unlock()
	return func() {
		e.mu.Lock()
		delete(e.subs, id)
		e.mu.Unlock()
	}
}

func (e *Engine) envLocked() Env {
	return Env{Now: e.now(), Preferences: e.prefs, Collation: e.tag}
}

func (e *Engine) recomputeLocked() View {
	e.visible = Apply(e.full, e.params.Filter, e.params.Sort, e.envLocked())
	return e.viewLocked()
}

func (e *Engine) viewLocked() View {
	return View{
		Params:  Reduce(e.params, nil),
		Visible: append([]media.Record(nil), e.visible...),
		Total:   len(e.full),
	}
}

func (e *Engine) subscribersLocked() []func(View) {
	out := make([]func(View), 0, len(e.subs))
	for _, fn := range e.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(View), v View) {
	for _, fn := range subs {
		fn(v)
	}
}
