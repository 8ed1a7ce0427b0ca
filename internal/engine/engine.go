package engine

import (
	"math"

	"echo-corridor/internal/engine/ecs"
)

// AABB прямоугольник в плоскости XZ (коллизии только по горизонтали)
type AABB struct {
	MinX, MinZ float64
	MaxX, MaxZ float64
}

// BoxAround строит AABB с центром в точке и половинными размерами
func BoxAround(x, z, halfX, halfZ float64) AABB {
	return AABB{
		MinX: x - halfX,
		MinZ: z - halfZ,
		MaxX: x + halfX,
		MaxZ: z + halfZ,
	}
}

// Overlaps проверяет пересечение двух AABB
func (a AABB) Overlaps(b AABB) bool {
	return a.MinX < b.MaxX &&
		a.MaxX > b.MinX &&
		a.MinZ < b.MaxZ &&
		a.MaxZ > b.MinZ
}

// Collides проверяет, пересекает ли тело радиуса r хотя бы одно препятствие
func Collides(pos ecs.Vector3, r float64, boxes []AABB) bool {
	body := BoxAround(pos.X, pos.Z, r, r)
	for _, b := range boxes {
		if body.Overlaps(b) {
			return true
		}
	}
	return false
}

// ResolveMove перемещает тело от from к to, раздельно по осям X и Z,
// чтобы тело скользило вдоль препятствий, а не застревало в них.
func ResolveMove(from, to ecs.Vector3, r float64, boxes []AABB) ecs.Vector3 {
	result := from

	// Сначала по X
	stepX := result
	stepX.X = to.X
	if !Collides(stepX, r, boxes) {
		result = stepX
	}

	// Затем по Z
	stepZ := result
	stepZ.Z = to.Z
	if !Collides(stepZ, r, boxes) {
		result = stepZ
	}

	result.Y = to.Y
	return result
}

// ClampLateral удерживает тело между стенами коридора шириной width
func ClampLateral(pos ecs.Vector3, r, width float64) ecs.Vector3 {
	limit := width/2 - r
	if limit < 0 {
		limit = 0
	}
	pos.X = math.Max(-limit, math.Min(limit, pos.X))
	return pos
}
