package input

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echo-corridor/internal/ai/behavior"
)

func TestScriptAdvancesSteps(t *testing.T) {
	s := &Script{
		Steps: []Step{
			{Duration: 1, Intent: behavior.Intent{Forward: true}},
			{Duration: 1, YawRate: 2},
		},
	}

	f := s.Next(0.5)
	assert.True(t, f.Intent.Forward)
	assert.Equal(t, 0.5, f.Dt)

	s.Next(0.5)
	require.Equal(t, 1, s.Index())

	f = s.Next(0.5)
	assert.False(t, f.Intent.Forward)
	assert.InDelta(t, 1.0, f.Yaw, 1e-9)
}

func TestScriptLoops(t *testing.T) {
	s := &Script{
		Steps: []Step{{Duration: 1}, {Duration: 1}, {Duration: 1}},
		Loop:  1,
	}
	for i := 0; i < 3; i++ {
		s.Next(1)
	}
	assert.Equal(t, 1, s.Index())

	s.Next(1)
	s.Next(1)
	assert.Equal(t, 1, s.Index())
}

func TestScriptCrossesSeveralStepsInOneFrame(t *testing.T) {
	s := &Script{Steps: []Step{{Duration: 0.1}, {Duration: 0.1}, {Duration: 5}}}
	s.Next(0.25)
	assert.Equal(t, 2, s.Index())
}

func TestEmptyScript(t *testing.T) {
	s := &Script{}
	f := s.Next(0.016)
	assert.Equal(t, Frame{Dt: 0.016}, f)
}

func TestDefaultScriptIsWellFormed(t *testing.T) {
	s := DefaultScript()
	require.NotEmpty(t, s.Steps)
	assert.Less(t, s.Loop, len(s.Steps))
	for _, st := range s.Steps {
		assert.Greater(t, st.Duration, 0.0)
	}
}

func TestScriptIgnoresInvalidDt(t *testing.T) {
	for _, dt := range []float64{math.Inf(1), math.Inf(-1), math.NaN(), -1, 0} {
		s := DefaultScript()

		done := make(chan Frame, 1)
		go func() { done <- s.Next(dt) }()

		select {
		case f := <-done:
			assert.True(t, f.Intent.Forward, "dt %v", dt)
			assert.Zero(t, f.Yaw, "dt %v", dt)
		case <-time.After(2 * time.Second):
			t.Fatalf("Next(%v) did not return", dt)
		}
		assert.Zero(t, s.Index(), "dt %v", dt)

		// the script still advances once a valid step arrives
		s.Next(4)
		assert.Equal(t, 1, s.Index(), "dt %v", dt)
	}
}
