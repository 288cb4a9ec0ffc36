package wheel

import (
	"errors"
	"sync"
	"time"
)

// ErrNoCandidates is returned when a spin is requested on an empty wheel.
var ErrNoCandidates = errors.New("wheel: no candidates to spin")

// Frame is the result of sampling the wheel at a point in time.
type Frame[T any] struct {
	// Spin identifies the spin the frame belongs to; 0 when idle.
	Spin     uint64
	Rotation float64
	Fraction float64
	Crossing *Crossing
	// Done is set on the single frame that resolves the winner.
	Done   bool
	Winner T
	Index  int
}

type config struct {
	random   Random
	duration time.Duration
	cooldown time.Duration
	idleStep float64
}

// Option customises a Wheel.
type Option func(*config)

// WithRandom sets the randomness source for spin planning.
func WithRandom(r Random) Option {
	return func(c *config) {
		if r != nil {
			c.random = r
		}
	}
}

// WithDuration sets the spin animation length.
func WithDuration(d time.Duration) Option {
	return func(c *config) { c.duration = d }
}

// WithTickCooldown sets the minimum gap between crossing events.
func WithTickCooldown(d time.Duration) Option {
	return func(c *config) { c.cooldown = d }
}

// WithIdleStep sets the per-frame idle drift in degrees.
func WithIdleStep(step float64) Option {
	return func(c *config) { c.idleStep = step }
}

// Wheel owns a rotation accumulator and at most one in-flight spin.
type Wheel[T any] struct {
	mu  sync.Mutex
	cfg config

	items    []T
	segments []Segment
	rotation float64

	spin     uint64
	plan     *Plan
	started  time.Time
	detector *CrossingDetector
}

// New builds a wheel over items in the given order.
func New[T any](items []T, opts ...Option) *Wheel[T] {
	cfg := config{
		random:   globalRandom{},
		duration: DefaultDuration,
		cooldown: DefaultTickCooldown,
		idleStep: DefaultIdleStep,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	w := &Wheel[T]{cfg: cfg}
	w.setItemsLocked(items)
	return w
}

// SetItems replaces the candidates and recomputes segments. An in-flight
// spin is cancelled because its winner would refer to the old layout.
func (w *Wheel[T]) SetItems(items []T) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancelLocked()
	w.setItemsLocked(items)
}

func (w *Wheel[T]) setItemsLocked(items []T) {
	w.items = append([]T(nil), items...)
	w.segments = Segments(len(w.items))
}

// Items returns the candidates in wheel order.
func (w *Wheel[T]) Items() []T {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]T(nil), w.items...)
}

// Segments returns the current layout.
func (w *Wheel[T]) Segments() []Segment {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Segment(nil), w.segments...)
}

// Rotation is the current instantaneous rotation.
func (w *Wheel[T]) Rotation() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rotation
}

// Spinning reports whether a spin is in flight.
func (w *Wheel[T]) Spinning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.plan != nil
}

// Current is the index under the pointer, or -1 on an empty wheel.
func (w *Wheel[T]) Current() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.items) == 0 {
		return -1
	}
	return IndexAt(w.rotation, len(w.items))
}

// Idle advances the rotation by the idle step when nothing is spinning and
// candidates exist. It never resolves a winner.
func (w *Wheel[T]) Idle() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.plan == nil && len(w.items) > 0 {
		w.rotation += w.cfg.idleStep
	}
	return w.rotation
}

// Spin starts a new spin at now and returns its id and plan. A spin already
// in flight is replaced; the new plan starts from the rotation sampled at
// now, not from where the old spin began.
func (w *Wheel[T]) Spin(now time.Time) (uint64, Plan, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.items) == 0 {
		return 0, Plan{}, ErrNoCandidates
	}
	if w.plan != nil {
		w.rotation = w.plan.Rotation(w.plan.Fraction(now.Sub(w.started)))
		w.cancelLocked()
	}
	plan := NewPlan(w.rotation, w.cfg.random, w.cfg.duration)
	w.spin++
	w.plan = &plan
	w.started = now
	w.detector = NewCrossingDetector(len(w.items), w.rotation, w.cfg.cooldown)
	return w.spin, plan, nil
}

// Sample advances the in-flight spin to now. The frame that reaches the
// end of the plan carries the winner; later samples are idle frames.
func (w *Wheel[T]) Sample(now time.Time) Frame[T] {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.plan == nil {
		return Frame[T]{Rotation: w.rotation, Fraction: 1, Index: w.currentLocked()}
	}
	fraction := w.plan.Fraction(now.Sub(w.started))
	w.rotation = w.plan.Rotation(fraction)
	f := Frame[T]{Spin: w.spin, Rotation: w.rotation, Fraction: fraction}
	if c, ok := w.detector.Observe(w.rotation, now); ok {
		f.Crossing = &c
	}
	f.Index = IndexAt(w.rotation, len(w.items))
	if fraction >= 1 {
		f.Done = true
		f.Winner = w.items[f.Index]
		w.cancelLocked()
	}
	return f
}

// Cancel stops the in-flight spin where it is. No winner is resolved.
func (w *Wheel[T]) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancelLocked()
}

// Reset cancels any spin and returns the rotation to 0.
func (w *Wheel[T]) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancelLocked()
	w.rotation = 0
}

func (w *Wheel[T]) cancelLocked() {
	w.plan = nil
	w.detector = nil
}

func (w *Wheel[T]) currentLocked() int {
	if len(w.items) == 0 {
		return -1
	}
	return IndexAt(w.rotation, len(w.items))
}
