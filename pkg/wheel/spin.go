package wheel

import (
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"
)

const (
	// MinSpin is the guaranteed travel of every spin: four full turns.
	MinSpin = 4 * FullTurn
	// ExtraSpin is the upper bound of the uniformly random extra travel.
	ExtraSpin = 4 * FullTurn

	DefaultDuration     = 5 * time.Second
	DefaultTickCooldown = 50 * time.Millisecond
	DefaultIdleStep     = 0.1
)

// Random is the randomness a spin draws from. *rand.Rand satisfies it.
type Random interface {
	Float64() float64
}

type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() }

// BaseRotation draws the travel for a spin, uniform in [MinSpin, MinSpin+ExtraSpin).
func BaseRotation(r Random) float64 {
	return MinSpin + r.Float64()*ExtraSpin
}

// Plan is one spin from Start to Target over Duration.
type Plan struct {
	Start    float64
	Target   float64
	Duration time.Duration
}

// NewPlan plans a spin starting at the current rotation.
func NewPlan(current float64, r Random, d time.Duration) Plan {
	return Plan{Start: current, Target: current + BaseRotation(r), Duration: d}
}

// Ease is a cubic ease-out over [0,1]; inputs outside the range are clamped.
func Ease(f float64) float64 {
	switch {
	case f <= 0:
		return 0
	case f >= 1:
		return 1
	}
	inv := 1 - f
	return 1 - inv*inv*inv
}

// Rotation is the wheel angle after the given elapsed fraction of the spin.
func (p Plan) Rotation(fraction float64) float64 {
	if fraction >= 1 {
		return p.Target
	}
	return p.Start + (p.Target-p.Start)*Ease(fraction)
}

// Fraction converts elapsed time into progress in [0,1].
func (p Plan) Fraction(elapsed time.Duration) float64 {
	if p.Duration <= 0 || elapsed >= p.Duration {
		return 1
	}
	if elapsed <= 0 {
		return 0
	}
	return float64(elapsed) / float64(p.Duration)
}

// Crossing is emitted when the segment under the pointer changes.
type Crossing struct {
	From     int
	To       int
	Rotation float64
}

// CrossingDetector tracks the segment under the pointer and reports
// changes, at most one per cooldown.
type CrossingDetector struct {
	n       int
	last    int
	limiter *rate.Limiter
}

// NewCrossingDetector starts tracking from the segment under start. A
// non-positive cooldown disables throttling.
func NewCrossingDetector(n int, start float64, cooldown time.Duration) *CrossingDetector {
	d := &CrossingDetector{n: n}
	if n > 0 {
		d.last = IndexAt(start, n)
	}
	if cooldown > 0 {
		d.limiter = rate.NewLimiter(rate.Every(cooldown), 1)
	}
	return d
}

// Observe records rotation at time now. The tracked segment always
// advances; the event is only reported when the cooldown allows it.
func (d *CrossingDetector) Observe(rotation float64, now time.Time) (Crossing, bool) {
	if d.n < 2 {
		return Crossing{}, false
	}
	idx := IndexAt(rotation, d.n)
	if idx == d.last {
		return Crossing{}, false
	}
	c := Crossing{From: d.last, To: idx, Rotation: rotation}
	d.last = idx
	if d.limiter != nil && !d.limiter.AllowN(now, 1) {
		return Crossing{}, false
	}
	return c, true
}

// Current is the last observed segment.
func (d *CrossingDetector) Current() int {
	return d.last
}
