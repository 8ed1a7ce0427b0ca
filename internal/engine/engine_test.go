package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"echo-corridor/internal/engine/ecs"
)

func TestOverlaps(t *testing.T) {
	a := BoxAround(0, 0, 1, 1)

	assert.True(t, a.Overlaps(BoxAround(1.5, 0, 1, 1)))
	assert.False(t, a.Overlaps(BoxAround(2.5, 0, 1, 1)))
	// touching edges do not count as overlap
	assert.False(t, a.Overlaps(BoxAround(2, 0, 1, 1)))
}

func TestResolveMoveSlidesAlongObstacle(t *testing.T) {
	boxes := []AABB{BoxAround(0, -2, 0.5, 0.5)}
	from := ecs.Vector3{X: 0.2, Z: 0}
	to := ecs.Vector3{X: 0.4, Z: -2}

	got := ResolveMove(from, to, 0.3, boxes)

	// X is free, Z would enter the pillar
	assert.Equal(t, 0.4, got.X)
	assert.Equal(t, 0.0, got.Z)
	assert.False(t, Collides(got, 0.3, boxes))
}

func TestResolveMoveUnobstructed(t *testing.T) {
	to := ecs.Vector3{X: 1, Y: 1.6, Z: -3}
	assert.Equal(t, to, ResolveMove(ecs.Vector3{}, to, 0.3, nil))
}

func TestClampLateral(t *testing.T) {
	got := ClampLateral(ecs.Vector3{X: 10}, 0.5, 8)
	assert.Equal(t, 3.5, got.X)

	got = ClampLateral(ecs.Vector3{X: -10}, 0.5, 8)
	assert.Equal(t, -3.5, got.X)
}
