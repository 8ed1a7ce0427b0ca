package player

import (
	"math"

	"echo-corridor/internal/ai/behavior"
	"echo-corridor/internal/config"
	"echo-corridor/internal/engine"
	"echo-corridor/internal/engine/ecs"
)

// maxPitch ограничение наклона камеры вверх и вниз
const maxPitch = 1.5

// Player представляет тело игрока в коридоре
type Player struct {
	id        ecs.EntityID
	transform *ecs.TransformComponent
	cfg       config.PlayerConfig

	corridorWidth float64
	walled        bool // Стены коридора держат игрока по X
}

// NewPlayer создает узел игрока в графе сцены в стартовой точке
func NewPlayer(scene *ecs.World, cfg config.PlayerConfig, corridorWidth float64) *Player {
	transform := ecs.NewTransformComponent(ecs.Vector3{X: 0, Y: cfg.EyeHeight, Z: cfg.StartZ})
	id := scene.Spawn([]string{ecs.TagPlayer}, transform)

	return &Player{
		id:            id,
		transform:     transform,
		cfg:           cfg,
		corridorWidth: corridorWidth,
		walled:        true,
	}
}

// Look задает ориентацию камеры
func (p *Player) Look(yaw, pitch float64) {
	p.transform.Rotation.Y = math.Remainder(yaw, 2*math.Pi)
	p.transform.Rotation.X = math.Max(-maxPitch, math.Min(maxPitch, pitch))
}

// Move сдвигает игрока по нажатым клавишам относительно взгляда.
// Столкновения разрешаются раздельно по осям, затем стены коридора.
func (p *Player) Move(intent behavior.Intent, dt float64, boxes []engine.AABB) ecs.Vector3 {
	if !intent.Any() {
		return p.transform.Position
	}

	moveX, moveZ := 0.0, 0.0
	if intent.Forward {
		moveZ -= 1
	}
	if intent.Back {
		moveZ += 1
	}
	if intent.Left {
		moveX -= 1
	}
	if intent.Right {
		moveX += 1
	}
	if moveX == 0 && moveZ == 0 {
		return p.transform.Position
	}

	// Нормализация движения по диагонали
	if moveX != 0 && moveZ != 0 {
		moveX *= 0.7071 // 1 / sqrt(2)
		moveZ *= 0.7071
	}

	// Поворот локального вектора на угол взгляда
	yaw := p.transform.Rotation.Y
	sin, cos := math.Sincos(yaw)
	step := p.cfg.WalkSpeed * dt
	delta := ecs.Vector3{
		X: (moveX*cos + moveZ*sin) * step,
		Z: (-moveX*sin + moveZ*cos) * step,
	}

	from := p.transform.Position
	to := from.Add(delta)
	next := engine.ResolveMove(from, to, p.cfg.Radius, boxes)
	if p.walled {
		next = engine.ClampLateral(next, p.cfg.Radius, p.corridorWidth)
	}
	p.transform.Position = next
	return next
}

// Attract тянет игрока к точке пустоты со скоростью VoidPull.
// Возвращает оставшееся расстояние по плоскости XZ.
func (p *Player) Attract(target ecs.Vector3, dt float64) float64 {
	pos := p.transform.Position
	toward := ecs.Vector3{X: target.X - pos.X, Z: target.Z - pos.Z}
	dist := toward.Magnitude()
	if dist == 0 {
		return 0
	}

	step := math.Min(dist, p.cfg.VoidPull*dt)
	p.transform.Position = pos.Add(toward.Normalize().Multiply(step))
	return dist - step
}

// SetWalled включает или выключает стены коридора
func (p *Player) SetWalled(walled bool) {
	p.walled = walled
}

// Position возвращает текущую позицию игрока
func (p *Player) Position() ecs.Vector3 {
	return p.transform.Position
}

// Yaw возвращает угол поворота камеры
func (p *Player) Yaw() float64 {
	return p.transform.Rotation.Y
}

// Pitch возвращает угол наклона камеры
func (p *Player) Pitch() float64 {
	return p.transform.Rotation.X
}

// Forward возвращает единичный вектор взгляда
func (p *Player) Forward() ecs.Vector3 {
	return p.transform.Forward()
}

// ID возвращает дескриптор узла игрока
func (p *Player) ID() ecs.EntityID {
	return p.id
}
