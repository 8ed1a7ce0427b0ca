package metamorphosis

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

func TestStepStaysInBounds(t *testing.T) {
	d := NewDrift(DefaultLimits())
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 10000; i++ {
		d.Step(rng)
		if !d.InBounds() {
			t.Fatalf("drift escaped bounds at step %d: %+v", i, d)
		}
	}
	assert.Equal(t, 10000, d.LoopCount)
}

func TestStepClampsAtCeiling(t *testing.T) {
	d := NewDrift(DefaultLimits())

	// always push upward
	for i := 0; i < 500; i++ {
		d.Step(fixedRand(0.999))
	}

	l := DefaultLimits()
	assert.Equal(t, l.Height.Max, d.HeightOffset)
	assert.Equal(t, l.Dimming.Max, d.LightDimming)
	assert.Equal(t, l.Pillar.Max, d.PillarOffset)
}

func TestStepClampsAtFloor(t *testing.T) {
	d := NewDrift(DefaultLimits())
	d.Step(fixedRand(0))

	assert.Equal(t, -0.3, d.HeightOffset)
	assert.Equal(t, 0.0, d.LightDimming)
	assert.Equal(t, 0.0, d.PillarOffset)
}
