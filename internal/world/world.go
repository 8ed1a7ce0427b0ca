package world

import (
	"log/slog"

	"echo-corridor/internal/config"
	"echo-corridor/internal/engine"
	"echo-corridor/internal/engine/ecs"
	"echo-corridor/internal/metamorphosis"
)

// Rand источник случайных чисел; *rand.Rand подходит
type Rand interface {
	Float64() float64
}

// introDepth глубина вступительной комнаты за плоскостью старта коридора
const introDepth = 12.0

// World стример бесконечного коридора. Единственный писатель списка
// препятствий, реестра светильников и графа сцены.
type World struct {
	cfg   config.WorldConfig
	scene *ecs.World
	drift *metamorphosis.Drift
	rng   Rand
	log   *slog.Logger

	chunks        []*Chunk // Упорядочены по созданию, старые первыми
	obstacles     []Obstacle
	lights        []LightRecord
	interactables []ecs.Interactable
	introNodes    []ecs.EntityID

	origin         float64 // Z начала коридора
	generated      int     // Сколько чанков создано всего
	frontier       float64
	frontierReady  bool
	stopGeneration bool

	voidNode     ecs.EntityID
	voidPosition ecs.Vector3
	boundaryNode ecs.EntityID
}

// NewWorld создает пустой мир поверх графа сцены
func NewWorld(cfg config.WorldConfig, scene *ecs.World, rng Rand, logger *slog.Logger) *World {
	if logger == nil {
		logger = slog.Default()
	}
	return &World{
		cfg:   cfg,
		scene: scene,
		drift: metamorphosis.NewDrift(metamorphosis.DefaultLimits()),
		rng:   rng,
		log:   logger.With("component", "world"),
	}
}

// BuildIntro строит вступительную комнату: задняя стена и пара ящиков
func (w *World) BuildIntro(corridorStart float64) {
	half := w.cfg.CorridorWidth / 2
	back := corridorStart + introDepth

	w.addIntroBlock(0, back+0.5, half, 0.5)
	w.addIntroBlock(-half+1, back-3, 0.6, 0.6)
	w.addIntroBlock(half-1.2, back-6, 0.5, 0.8)

	floor := w.scene.Spawn(
		[]string{ecs.TagIntro},
		ecs.NewTransformComponent(ecs.Vector3{X: 0, Y: 0, Z: corridorStart + introDepth/2}),
		ecs.NewRenderComponent("intro_room", ecs.Vector3{X: w.cfg.CorridorWidth, Y: w.cfg.BaseHeight, Z: introDepth}),
	)
	w.introNodes = append(w.introNodes, floor)
}

func (w *World) addIntroBlock(x, z, halfX, halfZ float64) {
	handle := w.scene.Spawn(
		[]string{ecs.TagIntro},
		ecs.NewTransformComponent(ecs.Vector3{X: x, Y: 0.5, Z: z}),
		ecs.NewRenderComponent("intro_wall", ecs.Vector3{X: halfX * 2, Y: w.cfg.BaseHeight, Z: halfZ * 2}),
	)
	w.introNodes = append(w.introNodes, handle)
	w.obstacles = append(w.obstacles, Obstacle{
		Handle: handle,
		Kind:   ObstacleIntro,
		X:      x,
		Z:      z,
		GridZ:  z,
		HalfX:  halfX,
		HalfZ:  halfZ,
	})
}

// TeardownIntro удаляет геометрию вступительной комнаты
func (w *World) TeardownIntro() {
	for _, id := range w.introNodes {
		w.scene.Despawn(id)
	}
	w.introNodes = nil

	w.obstacles = filterObstacles(w.obstacles, func(o Obstacle) bool {
		return o.Kind == ObstacleIntro
	})
}

// InitFrontier ставит границу генерации в начало коридора
func (w *World) InitFrontier(z float64) {
	w.origin = z
	w.generated = 0
	w.frontier = z
	w.frontierReady = true
}

// Advance создает не больше одного чанка за вызов, если игрок подошел
// к границе ближе renderDistance, и затем всегда выполняет Evict.
// Возвращает true, если чанк был создан.
func (w *World) Advance(playerZ float64) bool {
	created := false
	if w.frontierReady && !w.stopGeneration && playerZ-w.frontier < w.cfg.RenderDistance {
		chunk := w.synthesize()
		w.chunks = append(w.chunks, chunk)
		w.generated++
		// Граница считается от начала, чтобы не копить ошибку округления
		w.frontier = w.origin - float64(w.generated)*w.cfg.ChunkSize
		created = true

		w.log.Debug("chunk created",
			"start_z", chunk.StartZ,
			"loop", w.drift.LoopCount,
			"height", chunk.Height,
			"dimming", w.drift.LightDimming)
	}

	w.Evict(playerZ)
	return created
}

// Evict уничтожает чанки, отставшие от игрока больше чем на cleanupBuffer
// плюс длину чанка. Повторный вызов без Advance ничего не меняет.
// Возвращает число уничтоженных чанков.
func (w *World) Evict(playerZ float64) int {
	threshold := w.cfg.CleanupBuffer + w.cfg.ChunkSize
	evicted := 0

	kept := w.chunks[:0]
	for _, c := range w.chunks {
		if c.StartZ-playerZ > threshold {
			w.destroy(c)
			evicted++
			continue
		}
		kept = append(kept, c)
	}
	for i := len(kept); i < len(w.chunks); i++ {
		w.chunks[i] = nil
	}
	w.chunks = kept

	return evicted
}

// destroy снимает чанк с графа сцены и чистит его свет и препятствия
func (w *World) destroy(c *Chunk) {
	w.scene.Despawn(c.Node)
	for _, id := range c.Lights {
		w.scene.Despawn(id)
	}

	lights := w.lights[:0]
	for _, l := range w.lights {
		if l.Owner != c.Node {
			lights = append(lights, l)
		}
	}
	w.lights = lights

	// Свои препятствия плюс любые записи позади чанка с запасом trailingBuffer
	behind := c.StartZ + w.cfg.TrailingBuffer
	removed := make(map[ecs.EntityID]bool)
	w.obstacles = filterObstacles(w.obstacles, func(o Obstacle) bool {
		drop := o.Owner == c.Node || (o.Kind == ObstaclePillar && o.Z > behind)
		if drop {
			removed[o.Handle] = true
			w.scene.Despawn(o.Handle)
		}
		return drop
	})

	interactables := w.interactables[:0]
	for _, it := range w.interactables {
		if !removed[it.ID] {
			interactables = append(interactables, it)
		}
	}
	w.interactables = interactables

	w.log.Debug("chunk evicted", "start_z", c.StartZ, "obstacles", len(removed))
}

// BeginEndgame замораживает генерацию, ставит точку пустоты далеко впереди
// и маркер границы на прежнем краю коридора. Вызывается один раз.
func (w *World) BeginEndgame() ecs.Vector3 {
	if w.stopGeneration {
		return w.voidPosition
	}
	w.stopGeneration = true

	w.voidPosition = ecs.Vector3{X: 0, Y: w.cfg.BaseHeight / 2, Z: w.frontier - w.cfg.VoidDistance}
	w.voidNode = w.scene.Spawn(
		[]string{ecs.TagVoid},
		ecs.NewTransformComponent(w.voidPosition),
		ecs.NewRenderComponent("void", ecs.Vector3{X: 6, Y: 6, Z: 6}),
	)
	w.boundaryNode = w.scene.Spawn(
		[]string{ecs.TagBoundary},
		ecs.NewTransformComponent(ecs.Vector3{X: 0, Y: w.cfg.BaseHeight / 2, Z: w.frontier}),
		ecs.NewRenderComponent("boundary", ecs.Vector3{X: w.cfg.CorridorWidth, Y: w.cfg.BaseHeight, Z: 0.2}),
	)

	w.log.Info("generation stopped", "frontier", w.frontier, "void_z", w.voidPosition.Z)
	return w.voidPosition
}

// VoidPosition возвращает точку пустоты, если эндгейм начался
func (w *World) VoidPosition() (ecs.Vector3, bool) {
	return w.voidPosition, w.stopGeneration
}

// Generating сообщает, идет ли еще генерация
func (w *World) Generating() bool {
	return w.frontierReady && !w.stopGeneration
}

// Frontier возвращает текущую границу генерации
func (w *World) Frontier() float64 {
	return w.frontier
}

// ActiveChunks возвращает живые чанки; только для чтения
func (w *World) ActiveChunks() []*Chunk {
	return w.chunks
}

// Obstacles возвращает общий список препятствий; только для чтения
func (w *World) Obstacles() []Obstacle {
	return w.obstacles
}

// ObstacleBoxes возвращает AABB всех препятствий
func (w *World) ObstacleBoxes() []engine.AABB {
	boxes := make([]engine.AABB, len(w.obstacles))
	for i, o := range w.obstacles {
		boxes[i] = o.Box()
	}
	return boxes
}

// Interactables возвращает цели для проверки взгляда; только для чтения
func (w *World) Interactables() []ecs.Interactable {
	return w.interactables
}

// Drift возвращает копию текущего состояния дрейфа
func (w *World) Drift() metamorphosis.Drift {
	return *w.drift
}

// Scene возвращает граф сцены для внешнего рендера
func (w *World) Scene() *ecs.World {
	return w.scene
}

// Config возвращает параметры мира
func (w *World) Config() config.WorldConfig {
	return w.cfg
}

// filterObstacles удаляет записи, для которых drop вернул true
func filterObstacles(list []Obstacle, drop func(Obstacle) bool) []Obstacle {
	kept := list[:0]
	for _, o := range list {
		if !drop(o) {
			kept = append(kept, o)
		}
	}
	return kept
}
