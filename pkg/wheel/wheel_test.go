package wheel

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRandom float64

func (f fixedRandom) Float64() float64 { return float64(f) }

var epoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

func TestIndexAtPointerFormula(t *testing.T) {
	// segment angle 90, pointer at 270 lands in the last segment.
	assert.Equal(t, 3, IndexAt(0, 4))
	assert.Equal(t, 2, IndexAt(90, 4))
	assert.Equal(t, 1, IndexAt(180, 4))
	assert.Equal(t, 0, IndexAt(270, 4))
	assert.Equal(t, 3, IndexAt(360, 4))
	assert.Equal(t, 3, IndexAt(-360, 4))
}

func TestResolve(t *testing.T) {
	items := []string{"a", "b", "c", "d"}
	assert.Equal(t, "d", Resolve(items, 0))
	assert.Equal(t, "a", Resolve(items, 270))
	assert.Panics(t, func() { Resolve([]string{}, 0) })
}

func TestSingleCandidate(t *testing.T) {
	items := []string{"only"}
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 200; i++ {
		rot := (r.Float64() - 0.5) * 10000
		assert.Equal(t, "only", Resolve(items, rot))
	}

	d := NewCrossingDetector(1, 0, 0)
	for rot := 0.0; rot < 2880; rot += 7 {
		_, ok := d.Observe(rot, epoch)
		assert.False(t, ok)
	}
}

func TestSegments(t *testing.T) {
	segs := Segments(3)
	require.Len(t, segs, 3)
	for i, s := range segs {
		assert.Equal(t, i, s.Index)
		assert.InDelta(t, 120, s.Span(), 1e-9)
		assert.InDelta(t, float64(i)*120, s.Start, 1e-9)
	}
	assert.InDelta(t, 60, segs[0].Mid(), 1e-9)
	assert.Nil(t, Segments(0))
	assert.Panics(t, func() { SegmentAngle(0) })
}

func TestNormalize(t *testing.T) {
	tests := map[string]struct {
		in, want float64
	}{
		"zero":       {0, 0},
		"full turn":  {360, 0},
		"negative":   {-90, 270},
		"many turns": {1440 + 45, 45},
		"neg turns":  {-720 - 10, 350},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Normalize(tc.in), 1e-9)
		})
	}
}

func TestBaseRotationBounds(t *testing.T) {
	assert.Equal(t, float64(MinSpin), BaseRotation(fixedRandom(0)))
	r := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 1000; i++ {
		b := BaseRotation(r)
		assert.GreaterOrEqual(t, b, 1440.0)
		assert.Less(t, b, 2880.0)
	}
}

func TestPlanRotation(t *testing.T) {
	p := NewPlan(100, fixedRandom(0.5), time.Second)
	assert.Equal(t, 100.0, p.Rotation(0))
	assert.Equal(t, p.Target, p.Rotation(1))
	assert.Equal(t, 100.0+2160, p.Target)
	assert.Greater(t, p.Rotation(0.5), p.Start)
	assert.Less(t, p.Rotation(0.5), p.Target)

	assert.Equal(t, 0.0, p.Fraction(-time.Second))
	assert.Equal(t, 0.5, p.Fraction(500*time.Millisecond))
	assert.Equal(t, 1.0, p.Fraction(2*time.Second))
}

func TestCrossingCooldown(t *testing.T) {
	d := NewCrossingDetector(4, 0, 50*time.Millisecond)
	require.Equal(t, 3, d.Current())

	// Rotating forward moves the pointer backwards through the segments.
	c, ok := d.Observe(10, epoch)
	require.True(t, ok)
	assert.Equal(t, 3, c.From)
	assert.Equal(t, 2, c.To)

	// Suppressed, but the tracked segment still advances.
	_, ok = d.Observe(100, epoch.Add(10*time.Millisecond))
	assert.False(t, ok)
	assert.Equal(t, 1, d.Current())

	c, ok = d.Observe(190, epoch.Add(100*time.Millisecond))
	require.True(t, ok)
	assert.Equal(t, 1, c.From)
	assert.Equal(t, 0, c.To)
}

func TestWheelSpinResolvesOnce(t *testing.T) {
	w := New([]string{"a", "b", "c", "d"}, WithRandom(fixedRandom(0)), WithDuration(time.Second))
	id, plan, err := w.Spin(epoch)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
	assert.Equal(t, 1440.0, plan.Target)
	assert.True(t, w.Spinning())

	f := w.Sample(epoch.Add(500 * time.Millisecond))
	assert.False(t, f.Done)

	f = w.Sample(epoch.Add(time.Second))
	require.True(t, f.Done)
	assert.Equal(t, "d", f.Winner)
	assert.False(t, w.Spinning())

	f = w.Sample(epoch.Add(2 * time.Second))
	assert.False(t, f.Done)
	assert.Equal(t, uint64(0), f.Spin)
}

func TestWheelEmpty(t *testing.T) {
	w := New[string](nil)
	_, _, err := w.Spin(epoch)
	assert.True(t, errors.Is(err, ErrNoCandidates))
	assert.Equal(t, 0.0, w.Idle())
	assert.Equal(t, -1, w.Current())
}

func TestWheelRestartFromInstantaneousRotation(t *testing.T) {
	w := New([]int{1, 2, 3}, WithRandom(fixedRandom(0)), WithDuration(time.Second))
	_, first, err := w.Spin(epoch)
	require.NoError(t, err)

	mid := epoch.Add(300 * time.Millisecond)
	_, second, err := w.Spin(mid)
	require.NoError(t, err)

	assert.InDelta(t, first.Rotation(0.3), second.Start, 1e-9)
	assert.NotEqual(t, first.Start, second.Start)
	assert.InDelta(t, second.Start+1440, second.Target, 1e-9)

	winners := 0
	for at := mid; at.Before(mid.Add(2 * time.Second)); at = at.Add(16 * time.Millisecond) {
		if w.Sample(at).Done {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}

func TestWheelSetItemsCancels(t *testing.T) {
	w := New([]int{1, 2}, WithDuration(time.Second))
	_, _, err := w.Spin(epoch)
	require.NoError(t, err)
	w.SetItems([]int{1, 2, 3})
	assert.False(t, w.Spinning())
	assert.Len(t, w.Segments(), 3)
}

func TestWheelIdle(t *testing.T) {
	w := New([]int{1, 2}, WithIdleStep(0.5))
	assert.Equal(t, 0.5, w.Idle())
	assert.Equal(t, 1.0, w.Idle())

	_, _, err := w.Spin(epoch)
	require.NoError(t, err)
	before := w.Rotation()
	assert.Equal(t, before, w.Idle())

	w.Reset()
	assert.Equal(t, 0.0, w.Rotation())
	assert.False(t, w.Spinning())
}

func TestAnimatorSpin(t *testing.T) {
	w := New([]string{"a", "b", "c"}, WithDuration(30*time.Millisecond), WithTickCooldown(0))
	a := NewAnimator(w, time.Millisecond)

	var frames int
	winner, err := a.Spin(context.Background(), func(f Frame[string]) { frames++ })
	require.NoError(t, err)
	assert.Contains(t, []string{"a", "b", "c"}, winner)
	assert.Greater(t, frames, 0)
	assert.False(t, w.Spinning())
}

func TestAnimatorDoubleSpin(t *testing.T) {
	w := New([]string{"a", "b", "c", "d"}, WithDuration(100*time.Millisecond))
	a := NewAnimator(w, time.Millisecond)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []string
		errs    []error
	)
	run := func() {
		defer wg.Done()
		got, err := a.Spin(context.Background(), nil)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			errs = append(errs, err)
			return
		}
		winners = append(winners, got)
	}

	wg.Add(1)
	go run()
	time.Sleep(20 * time.Millisecond)
	wg.Add(1)
	go run()
	wg.Wait()

	require.Len(t, winners, 1)
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], ErrSuperseded))
}

func TestAnimatorContextCancel(t *testing.T) {
	w := New([]string{"a", "b"}, WithDuration(time.Hour))
	a := NewAnimator(w, time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := a.Spin(ctx, nil)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, w.Spinning())
}
