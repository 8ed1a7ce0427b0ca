package behavior

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echo-corridor/internal/engine/ecs"
)

const dt = 0.016

func still(t *Tracker, pos ecs.Vector3, frames int) Metrics {
	var m Metrics
	for i := 0; i < frames; i++ {
		m = t.Sample(Sample{Position: pos, Dt: dt}, nil)
	}
	return m
}

func TestStationaryAccumulates(t *testing.T) {
	tr := NewTracker()
	m := still(tr, ecs.Vector3{}, 200)

	assert.InDelta(t, 200*dt, m.StationaryTime, 1e-9)
	assert.Zero(t, m.TotalDistance)
	assert.True(t, m.IsStationary())
}

func TestMovementResetsStationary(t *testing.T) {
	tr := NewTracker()
	still(tr, ecs.Vector3{}, 50)

	m := tr.Sample(Sample{Position: ecs.Vector3{Z: -0.05}, Dt: dt}, nil)
	assert.Zero(t, m.StationaryTime)
	assert.InDelta(t, 0.05, m.TotalDistance, 1e-9)
	assert.InDelta(t, dt, m.MovingTime, 1e-9)

	// sub-epsilon jitter counts as standing still
	m = tr.Sample(Sample{Position: ecs.Vector3{Z: -0.0505}, Dt: dt}, nil)
	assert.InDelta(t, dt, m.StationaryTime, 1e-9)
	assert.InDelta(t, 0.05, m.TotalDistance, 1e-9)
}

func TestLookBackHysteresis(t *testing.T) {
	tr := NewTracker()
	yaw := 0.0
	tr.Sample(Sample{Yaw: yaw, Dt: dt}, nil)

	// a single fast frame does not flip the flag
	yaw += 0.1
	m := tr.Sample(Sample{Yaw: yaw, Dt: dt}, nil)
	assert.False(t, m.IsLookingBack)
	assert.Greater(t, m.LookBack, 0.0)

	for i := 0; i < 30; i++ {
		yaw += 0.1 // 6.25 rad/s
		m = tr.Sample(Sample{Yaw: yaw, Dt: dt}, nil)
	}
	assert.True(t, m.IsLookingBack)

	// accumulator bleeds off at the rate dt contributes
	peak := m.LookBack
	m = tr.Sample(Sample{Yaw: yaw, Dt: dt}, nil)
	assert.InDelta(t, peak-dt, m.LookBack, 1e-9)

	for i := 0; i < 100; i++ {
		m = tr.Sample(Sample{Yaw: yaw, Dt: dt}, nil)
	}
	assert.Zero(t, m.LookBack)
	assert.False(t, m.IsLookingBack)
}

func TestLookBackHandlesWrapAround(t *testing.T) {
	tr := NewTracker()
	tr.Sample(Sample{Yaw: math.Pi - 0.001, Dt: dt}, nil)
	m := tr.Sample(Sample{Yaw: -math.Pi + 0.001, Dt: dt}, nil)

	// crossing the seam is a tiny turn, not a full spin
	assert.Less(t, m.YawRate, LookBackSpeed)
}

func TestForwardTimeIsStrict(t *testing.T) {
	tr := NewTracker()
	pos := ecs.Vector3{}
	var m Metrics
	for i := 0; i < 100; i++ {
		pos.Z -= 0.05
		m = tr.Sample(Sample{Position: pos, Intent: Intent{Forward: true}, Dt: dt}, nil)
	}
	assert.InDelta(t, 100*dt, m.ForwardTime, 1e-9)

	m = tr.Sample(Sample{Position: pos, Intent: Intent{Forward: true, Left: true}, Dt: dt}, nil)
	assert.Zero(t, m.ForwardTime)
}

func TestZoneHistoryRing(t *testing.T) {
	tr := NewTracker()
	var m Metrics
	for s := 0; s < 25; s++ {
		pos := ecs.Vector3{Z: -float64(s) * 5}
		m = tr.Sample(Sample{Position: pos, Dt: 1.0}, nil)
	}

	require.Len(t, m.ZoneHistory, ZoneHistorySize)
	// oldest five were evicted
	assert.Equal(t, -5, m.ZoneHistory[0])
	assert.Equal(t, -24, m.ZoneHistory[ZoneHistorySize-1])
}

func TestZoneBucketsToNearest(t *testing.T) {
	tr := NewTracker()
	m := tr.Sample(Sample{Position: ecs.Vector3{Z: -12.6}, Dt: 1.0}, nil)
	require.Len(t, m.ZoneHistory, 1)
	assert.Equal(t, -3, m.ZoneHistory[0])
}

func TestRevisiting(t *testing.T) {
	history := make([]int, 15)
	for i := range history {
		history[i] = -i
	}
	assert.False(t, Metrics{ZoneHistory: history}.Revisiting())

	history[14] = -3
	assert.True(t, Metrics{ZoneHistory: history}.Revisiting())

	// a repeat outside the oldest ten does not count
	history[14] = -12
	assert.False(t, Metrics{ZoneHistory: history}.Revisiting())

	assert.False(t, Metrics{ZoneHistory: []int{1, 1, 1}}.Revisiting())
}

func TestGazeDuration(t *testing.T) {
	targets := []ecs.Interactable{
		{ID: 7, Center: ecs.Vector3{Z: -10}, Radius: 1},
		{ID: 8, Center: ecs.Vector3{X: 10, Z: 0}, Radius: 1},
	}
	tr := NewTracker()

	var m Metrics
	for i := 0; i < 10; i++ {
		m = tr.Sample(Sample{Dt: dt}, targets)
	}
	assert.Equal(t, ecs.EntityID(7), m.GazeTarget)
	assert.InDelta(t, 9*dt, m.GazeDuration, 1e-9)

	// turn right to face the other target
	m = tr.Sample(Sample{Yaw: -math.Pi / 2, Dt: dt}, targets)
	assert.Equal(t, ecs.EntityID(8), m.GazeTarget)
	assert.Zero(t, m.GazeDuration)

	m = tr.Sample(Sample{Yaw: math.Pi / 2, Dt: dt}, targets)
	assert.Equal(t, ecs.None, m.GazeTarget)
}

func TestRaycastPicksNearest(t *testing.T) {
	targets := []ecs.Interactable{
		{ID: 1, Center: ecs.Vector3{Z: -20}, Radius: 1},
		{ID: 2, Center: ecs.Vector3{Z: -5}, Radius: 1},
		{ID: 3, Center: ecs.Vector3{Z: 5}, Radius: 1},
	}
	got := Raycast(ecs.Vector3{}, ecs.Direction(0, 0), targets, GazeRange)
	assert.Equal(t, ecs.EntityID(2), got)

	assert.Equal(t, ecs.None, Raycast(ecs.Vector3{}, ecs.Direction(0, 0), targets, 3))
}
