package fear

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echo-corridor/internal/ai/behavior"
	"echo-corridor/internal/config"
)

func newEstimator() *Estimator {
	return NewEstimator(config.DefaultConfig().Paranoia, nil)
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		percent float64
		want    Tier
	}{
		{0, TierStable},
		{19.9, TierStable},
		{20, TierUnsettled},
		{45, TierAgitated},
		{79.9, TierHysteria},
		{80, TierCritical},
		{100, TierCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.percent), "percent %v", tt.percent)
	}
	assert.Equal(t, "hysteria", TierHysteria.String())
}

func TestLevelStaysInBounds(t *testing.T) {
	e := newEstimator()
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 20000; i++ {
		m := behavior.Metrics{
			IsLookingBack: rng.Float64() < 0.5,
			ForwardTime:   rng.Float64() * 6,
		}
		r := e.Tick(m, rng.Float64()*0.5)
		require.GreaterOrEqual(t, r.Level, 0.0)
		require.LessOrEqual(t, r.Level, 100.0)
		require.GreaterOrEqual(t, r.Factor, 0.0)
		require.LessOrEqual(t, r.Factor, 1.0)
	}
}

func TestLookBackIncreasesMonotonically(t *testing.T) {
	e := newEstimator()
	m := behavior.Metrics{IsLookingBack: true}

	prev := e.Level()
	for i := 0; i < 1000; i++ {
		r := e.Tick(m, 0.016)
		if prev < 100 {
			require.Greater(t, r.Level, prev)
		} else {
			require.Equal(t, 100.0, r.Level)
		}
		prev = r.Level
	}
	assert.Equal(t, 100.0, prev)
}

func TestAccrualsAreAdditive(t *testing.T) {
	e := newEstimator()
	e.Tick(behavior.Metrics{IsLookingBack: true, ForwardTime: 4}, 1)
	assert.InDelta(t, 21.0, e.Level(), 1e-9)

	e.Tick(behavior.Metrics{ForwardTime: 2.9}, 2)
	assert.InDelta(t, 20.0, e.Level(), 1e-9)
}

func TestStationaryDecays(t *testing.T) {
	e := newEstimator()
	e.level = 50
	tracker := behavior.NewTracker()

	var m behavior.Metrics
	var at3 float64
	for i := 1; i <= 310; i++ {
		m = tracker.Sample(behavior.Sample{Dt: 0.01}, nil)
		e.Tick(m, 0.01)
		if i == 300 {
			at3 = e.Level()
		}
	}

	assert.Greater(t, m.StationaryTime, 3.0)
	assert.False(t, m.IsLookingBack)
	assert.Less(t, e.Level(), at3)
	assert.InDelta(t, 50-3.1*0.5, e.Level(), 1e-6)
}

func TestEndgameLatchFiresOnce(t *testing.T) {
	e := newEstimator()
	fired := 0
	e.OnEndgame(func() { fired++ })
	e.level = 100

	m := behavior.Metrics{IsLookingBack: true}
	for i := 1; i <= 80; i++ {
		r := e.Tick(m, 0.25)
		if i < 80 {
			require.False(t, r.Endgame, "tick %d", i)
		} else {
			assert.True(t, r.Endgame)
		}
	}
	assert.Equal(t, 1, fired)
	assert.True(t, e.Latched())

	// a held drop to half does not revert or re-fire
	e.level = 50
	for i := 0; i < 400; i++ {
		r := e.Tick(behavior.Metrics{}, 0.25)
		assert.False(t, r.Endgame)
	}
	assert.Equal(t, 1, fired)
	assert.True(t, e.Latched())
}

func TestHoldBleedsAtHalfRate(t *testing.T) {
	e := newEstimator()
	e.level = 100
	m := behavior.Metrics{IsLookingBack: true}
	for i := 0; i < 40; i++ {
		e.Tick(m, 0.25)
	}
	require.InDelta(t, 10.0, e.Hold(), 1e-9)

	// drop below the threshold: hold loses 0.5s per second
	e.level = 80
	for i := 0; i < 8; i++ {
		e.Tick(behavior.Metrics{}, 0.25)
	}
	assert.InDelta(t, 9.0, e.Hold(), 1e-9)
	assert.False(t, e.Latched())
}

func TestResetKeepsLatch(t *testing.T) {
	e := newEstimator()
	e.level = 100
	for i := 0; i < 80; i++ {
		e.Tick(behavior.Metrics{IsLookingBack: true}, 0.25)
	}
	require.True(t, e.Latched())

	e.Reset()
	assert.Zero(t, e.Level())
	assert.True(t, e.Latched())
}

func TestInvalidDtIsIgnored(t *testing.T) {
	e := newEstimator()
	e.level = 10
	e.Tick(behavior.Metrics{IsLookingBack: true}, -1)
	assert.Equal(t, 10.0, e.Level())
}
