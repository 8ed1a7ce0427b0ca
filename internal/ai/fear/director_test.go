package fear

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echo-corridor/internal/ai/behavior"
	"echo-corridor/internal/config"
	"echo-corridor/internal/symbols"
)

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

// seqRand replays values in a loop
type seqRand struct {
	vals []float64
	i    int
}

func (s *seqRand) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

type stubPools map[string][]string

func (p stubPools) Messages(pool string) []string { return p[pool] }

func newDirector(rng Rand) *Director {
	return NewDirector(config.DefaultConfig().Events, symbols.Default(), rng, nil)
}

func TestProbabilityFunctions(t *testing.T) {
	cfg := config.DefaultConfig().Events

	assert.InDelta(t, 0.00025, FlickerChance(0), 1e-12)
	assert.InDelta(t, 0.02525, FlickerChance(1), 1e-12)

	assert.Zero(t, BlackoutChance(cfg, 0.95))
	assert.Equal(t, 0.00025, BlackoutChance(cfg, 0.96))

	assert.Zero(t, DistortionChance(cfg, 0.9))
	assert.InDelta(t, 0.0021, DistortionChance(cfg, 1), 1e-12)

	assert.Equal(t, 15.0, MessageCooldown(cfg, 0))
	assert.InDelta(t, 11.5, MessageCooldown(cfg, 0.5), 1e-12)
	assert.Equal(t, 8.0, MessageCooldown(cfg, 1))

	assert.InDelta(t, 0.21, ContradictionChance(1), 1e-12)
}

func TestBlackoutLifecycle(t *testing.T) {
	d := newDirector(fixedRand(0))
	ctx := FrameContext{Dt: 0.25, Factor: 1}

	s := d.Tick(ctx)
	require.True(t, s.BlackoutStarted)
	assert.True(t, s.Blackout)
	assert.False(t, s.Mirage)
	assert.False(t, s.Flicker)
	assert.Nil(t, s.Message)

	mirage := 0
	for i := 1; i < 20; i++ {
		s = d.Tick(ctx)
		require.True(t, s.Blackout, "tick %d", i)
		assert.False(t, s.BlackoutStarted)
		assert.False(t, s.Flicker)
		if s.Mirage {
			mirage++
		}
	}
	// elapsed 0.25, 0.5 and 0.75 fall inside [0.1, 0.8)
	assert.Equal(t, 3, mirage)

	s = d.Tick(ctx)
	assert.False(t, s.Blackout)
	assert.Nil(t, d.Blackout())
}

func TestBlackoutNeedsHighFactor(t *testing.T) {
	d := newDirector(fixedRand(0))
	for i := 0; i < 100; i++ {
		s := d.Tick(FrameContext{Dt: 0.016, Factor: 0.95})
		require.False(t, s.Blackout)
	}
}

func TestDistortionReturnsToZero(t *testing.T) {
	cfg := config.DefaultConfig().Events
	cfg.BlackoutChance = 0
	d := NewDirector(cfg, stubPools{}, fixedRand(0.0001), nil)
	ctx := FrameContext{Dt: 0.016, Factor: 0.96}

	d.Tick(ctx)
	active := d.Distortion()
	require.NotNil(t, active)
	peak := active.Peak
	require.Less(t, peak, 0.0)

	sawTilt := false
	for i := 0; i < 100; i++ {
		s := d.Tick(ctx)
		if s.Distortion != 0 {
			sawTilt = true
			assert.LessOrEqual(t, s.Distortion, 0.0)
			assert.GreaterOrEqual(t, s.Distortion, peak)
			continue
		}
		if sawTilt {
			// the completion tick lands on exactly zero
			assert.Equal(t, 0.0, s.Distortion)
			return
		}
	}
	t.Fatal("distortion never completed")
}

func TestDistortionRegimes(t *testing.T) {
	assert.Less(t, distortionPeak(0.4, 1), subtleTilt+1e-12)
	assert.Greater(t, distortionPeak(0.96, 0), subtleTilt)
	assert.InDelta(t, distortionMinDuration, distortionDuration(1, 0), 1e-12)
	assert.InDelta(t, distortionMinDuration+distortionMaxExtra, distortionDuration(1, 1), 1e-12)
}

func TestFlickerRate(t *testing.T) {
	cfg := config.DefaultConfig().Events
	cfg.BlackoutChance = 0
	d := NewDirector(cfg, stubPools{}, rand.New(rand.NewSource(7)), nil)

	const ticks = 200000
	flickers := 0
	for i := 0; i < ticks; i++ {
		if d.Tick(FrameContext{Dt: 0.016, Factor: 0.5}).Flicker {
			flickers++
		}
	}
	assert.InDelta(t, FlickerChance(0.5), float64(flickers)/ticks, 0.002)
}

func TestMessageCooldown(t *testing.T) {
	d := newDirector(fixedRand(0))
	ctx := FrameContext{
		Dt:      0.1,
		Factor:  0,
		Metrics: behavior.Metrics{StationaryTime: 10},
	}
	cooldown := MessageCooldown(d.cfg, 0)

	var fired []float64
	now := 0.0
	for i := 0; i < 400; i++ {
		now += ctx.Dt
		if s := d.Tick(ctx); s.Message != nil {
			fired = append(fired, now)
			assert.NotEmpty(t, s.Message.Text)
			assert.NotEmpty(t, s.Message.ID)
		}
	}

	require.GreaterOrEqual(t, len(fired), 2)
	for i := 1; i < len(fired); i++ {
		assert.GreaterOrEqual(t, fired[i]-fired[i-1], cooldown-1e-6)
	}
}

func TestChoosePoolPriority(t *testing.T) {
	d := newDirector(nil)

	d.rng = &seqRand{vals: []float64{0.3, 0.5}}
	assert.Equal(t, symbols.PoolHighParanoia, d.choosePool(FrameContext{Factor: 0.8}))

	d.rng = &seqRand{vals: []float64{0.5, 0.2, 0.9}}
	ctx := FrameContext{Factor: 0.8, Metrics: behavior.Metrics{IsLookingBack: true, StationaryTime: 9}}
	assert.Equal(t, symbols.PoolLookBack, d.choosePool(ctx))

	d.rng = &seqRand{vals: []float64{0.1, 0.9}}
	ctx = FrameContext{Factor: 0.2, Metrics: behavior.Metrics{StationaryTime: 9, ForwardTime: 20}}
	assert.Equal(t, symbols.PoolStationary, d.choosePool(ctx))

	d.rng = &seqRand{vals: []float64{0.9}}
	assert.Equal(t, "", d.choosePool(FrameContext{Factor: 0.2}))
}

func TestChoosePoolContradictionOverrides(t *testing.T) {
	d := newDirector(nil)
	d.rng = &seqRand{vals: []float64{0.3, 0.0}}
	assert.Equal(t, symbols.PoolContradiction, d.choosePool(FrameContext{Factor: 0.9}))

	history := make([]int, 15)
	history[14] = history[0]
	d.rng = &seqRand{vals: []float64{0.05, 0.0}}
	ctx := FrameContext{Factor: 0, Metrics: behavior.Metrics{ZoneHistory: history}}
	assert.Equal(t, symbols.PoolContradiction, d.choosePool(ctx))
}

func TestDrawAvoidsRecent(t *testing.T) {
	pool := stubPools{symbols.PoolMovement: {"a", "b", "c", "d", "e", "f"}}
	d := NewDirector(config.DefaultConfig().Events, pool, nil, nil)
	for _, m := range []string{"a", "b", "c", "d", "e"} {
		d.remember(m)
	}

	d.rng = &seqRand{vals: []float64{0.0, 0.1, 0.9}}
	text, ok := d.draw(symbols.PoolMovement)
	require.True(t, ok)
	assert.Equal(t, "f", text)
	assert.ElementsMatch(t, []string{"f", "b", "c", "d", "e"}, d.Recent())

	// every draw collides: the last one wins
	d.rng = &seqRand{vals: []float64{0.2, 0.3, 0.4}}
	text, _ = d.draw(symbols.PoolMovement)
	assert.Equal(t, "c", text)
	assert.Len(t, d.Recent(), 5)
}

func TestDrawEmptyPool(t *testing.T) {
	d := NewDirector(config.DefaultConfig().Events, stubPools{}, fixedRand(0), nil)
	_, ok := d.draw(symbols.PoolMovement)
	assert.False(t, ok)
}

func TestTerminalSuppressesEverything(t *testing.T) {
	d := newDirector(fixedRand(0))
	d.Tick(FrameContext{Dt: 0.016, Factor: 1})
	require.NotNil(t, d.Blackout())

	for i := 0; i < 1000; i++ {
		s := d.Tick(FrameContext{Dt: 0.016, Factor: 1, Terminal: true})
		require.Equal(t, Signals{}, s)
	}
	assert.Nil(t, d.Blackout())
	assert.Nil(t, d.Distortion())
}

func TestClear(t *testing.T) {
	d := newDirector(fixedRand(0))
	d.Tick(FrameContext{Dt: 0.016, Factor: 1})
	d.Clear()
	assert.Nil(t, d.Blackout())
	assert.Nil(t, d.Distortion())
}
