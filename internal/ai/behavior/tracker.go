// Package behavior turns raw per-frame motion and orientation samples into
// the stable behavioral signals the fear system feeds on.
package behavior

import (
	"math"

	"echo-corridor/internal/engine/ecs"
)

const (
	// MoveEpsilon is the smallest per-frame displacement counted as movement
	MoveEpsilon = 0.001
	// LookBackSpeed is the yaw rate (rad/s) that counts as a look-back turn
	LookBackSpeed = 3.0
	// LookBackEngage is how much accumulated turning flips IsLookingBack on
	LookBackEngage = 0.2
	// ZoneSize is the width of a longitudinal zone bucket
	ZoneSize = 5.0
	// ZoneInterval is how often (seconds) the current zone is recorded
	ZoneInterval = 1.0
	// ZoneHistorySize caps the zone ring buffer
	ZoneHistorySize = 20
	// GazeRange is the farthest an interactable can be and still be looked at
	GazeRange = 30.0
)

// Intent holds the movement keys held this frame
type Intent struct {
	Forward bool
	Back    bool
	Left    bool
	Right   bool
}

// OnlyForward reports whether forward is the sole active movement input
func (i Intent) OnlyForward() bool {
	return i.Forward && !i.Back && !i.Left && !i.Right
}

// Any reports whether any movement input is active
func (i Intent) Any() bool {
	return i.Forward || i.Back || i.Left || i.Right
}

// Sample is one frame of player state
type Sample struct {
	Position ecs.Vector3
	Yaw      float64 // radians
	Pitch    float64 // radians
	Intent   Intent
	Dt       float64
}

// Metrics is the behavioral snapshot produced every frame. Consumers get a
// copy; only the Tracker mutates the underlying state.
type Metrics struct {
	TotalDistance  float64      `json:"total_distance"`
	MovingTime     float64      `json:"moving_time"`
	StationaryTime float64      `json:"stationary_time"`
	ForwardTime    float64      `json:"forward_time"`
	LookBack       float64      `json:"look_back"`
	IsLookingBack  bool         `json:"is_looking_back"`
	YawRate        float64      `json:"yaw_rate"`
	ZoneHistory    []int        `json:"zone_history"`
	GazeTarget     ecs.EntityID `json:"gaze_target"`
	GazeDuration   float64      `json:"gaze_duration"`
}

// IsStationary reports whether the player did not move last frame
func (m Metrics) IsStationary() bool {
	return m.StationaryTime > 0
}

// Revisiting reports whether the newest recorded zone already appears among
// the oldest ten entries of a well-filled history.
func (m Metrics) Revisiting() bool {
	if len(m.ZoneHistory) < 15 {
		return false
	}
	latest := m.ZoneHistory[len(m.ZoneHistory)-1]
	for _, z := range m.ZoneHistory[:10] {
		if z == latest {
			return true
		}
	}
	return false
}

// Tracker accumulates behavior metrics across frames
type Tracker struct {
	metrics Metrics

	zones     [ZoneHistorySize]int
	zoneHead  int
	zoneCount int
	zoneTimer float64

	lastPosition ecs.Vector3
	lastYaw      float64
	primed       bool
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{}
}

// Sample folds one frame into the metrics and returns the updated snapshot
func (t *Tracker) Sample(s Sample, interactables []ecs.Interactable) Metrics {
	dt := s.Dt
	if dt < 0 || math.IsNaN(dt) {
		dt = 0
	}

	if !t.primed {
		t.lastPosition = s.Position
		t.lastYaw = s.Yaw
		t.primed = true
	}

	t.trackMovement(s.Position, dt)
	t.trackLookBack(s.Yaw, dt)

	if s.Intent.OnlyForward() {
		t.metrics.ForwardTime += dt
	} else {
		t.metrics.ForwardTime = 0
	}

	t.trackZone(s.Position.Z, dt)
	t.trackGaze(s, interactables, dt)

	return t.Metrics()
}

// Metrics returns a copy of the current snapshot
func (t *Tracker) Metrics() Metrics {
	m := t.metrics
	m.ZoneHistory = t.zoneHistory()
	return m
}

func (t *Tracker) trackMovement(pos ecs.Vector3, dt float64) {
	moved := pos.Sub(t.lastPosition)
	moved.Y = 0
	step := moved.Magnitude()
	t.lastPosition = pos

	if step < MoveEpsilon {
		t.metrics.StationaryTime += dt
		return
	}
	t.metrics.TotalDistance += step
	t.metrics.MovingTime += dt
	t.metrics.StationaryTime = 0
}

func (t *Tracker) trackLookBack(yaw, dt float64) {
	delta := wrapAngle(yaw - t.lastYaw)
	t.lastYaw = yaw

	rate := 0.0
	if dt > 0 {
		rate = math.Abs(delta) / dt
	}
	t.metrics.YawRate = rate

	if rate > LookBackSpeed {
		t.metrics.LookBack += dt
	} else {
		t.metrics.LookBack = math.Max(0, t.metrics.LookBack-dt)
	}
	t.metrics.IsLookingBack = t.metrics.LookBack > LookBackEngage
}

func (t *Tracker) trackZone(z, dt float64) {
	t.zoneTimer += dt
	for t.zoneTimer >= ZoneInterval {
		t.zoneTimer -= ZoneInterval
		t.pushZone(int(math.Round(z / ZoneSize)))
	}
}

func (t *Tracker) pushZone(zone int) {
	t.zones[t.zoneHead] = zone
	t.zoneHead = (t.zoneHead + 1) % ZoneHistorySize
	if t.zoneCount < ZoneHistorySize {
		t.zoneCount++
	}
}

// zoneHistory returns the ring oldest first
func (t *Tracker) zoneHistory() []int {
	out := make([]int, t.zoneCount)
	start := (t.zoneHead - t.zoneCount + ZoneHistorySize) % ZoneHistorySize
	for i := 0; i < t.zoneCount; i++ {
		out[i] = t.zones[(start+i)%ZoneHistorySize]
	}
	return out
}

func (t *Tracker) trackGaze(s Sample, interactables []ecs.Interactable, dt float64) {
	target := Raycast(s.Position, ecs.Direction(s.Yaw, s.Pitch), interactables, GazeRange)
	if target != ecs.None && target == t.metrics.GazeTarget {
		t.metrics.GazeDuration += dt
		return
	}
	t.metrics.GazeTarget = target
	t.metrics.GazeDuration = 0
}

// Raycast returns the nearest interactable hit by the ray within maxDist,
// or ecs.None if nothing is hit.
func Raycast(origin, dir ecs.Vector3, targets []ecs.Interactable, maxDist float64) ecs.EntityID {
	best := ecs.None
	bestDist := maxDist
	for _, it := range targets {
		d, ok := intersectSphere(origin, dir, it.Center, it.Radius)
		if ok && d <= bestDist {
			best = it.ID
			bestDist = d
		}
	}
	return best
}

// intersectSphere returns the distance along a unit ray to a sphere
func intersectSphere(origin, dir, center ecs.Vector3, radius float64) (float64, bool) {
	oc := center.Sub(origin)
	along := oc.Dot(dir)
	if along < 0 {
		return 0, false
	}
	perp2 := oc.Dot(oc) - along*along
	r2 := radius * radius
	if perp2 > r2 {
		return 0, false
	}
	return along - math.Sqrt(r2-perp2), true
}

// wrapAngle maps an angle into [-pi, pi]
func wrapAngle(a float64) float64 {
	return math.Remainder(a, 2*math.Pi)
}
