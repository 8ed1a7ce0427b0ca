package world

import (
	"math"

	"echo-corridor/internal/engine"
	"echo-corridor/internal/engine/ecs"
)

// PillarHalfExtent половина стороны колонны; у всех колонн одинаковая
const PillarHalfExtent = 0.5

// pillarInset отступ колонн от стены
const pillarInset = 1.0

// Виды препятствий
const (
	ObstaclePillar = "pillar"
	ObstacleIntro  = "intro"
)

// Chunk представляет один отрезок коридора. Идентичность - StartZ.
type Chunk struct {
	StartZ float64     // Начало отрезка; отрезок тянется к StartZ - Length
	Length float64     // Длина вдоль Z
	Center ecs.Vector3 // Центр отрезка
	Height float64     // Высота потолка после дрейфа
	Node   ecs.EntityID

	Obstacles []ecs.EntityID // Колонны, которыми владеет чанк
	Lights    []ecs.EntityID // Светильники, которыми владеет чанк
}

// Obstacle позиция препятствия для коллизий по осям
type Obstacle struct {
	Handle   ecs.EntityID
	Owner    ecs.EntityID // Узел чанка-владельца; None для интро
	Kind     string
	X, Z     float64
	GridZ    float64 // Позиция на сетке до дрожания
	HalfX    float64
	HalfZ    float64
	Rotation float64
}

// Box возвращает AABB препятствия
func (o Obstacle) Box() engine.AABB {
	return engine.BoxAround(o.X, o.Z, o.HalfX, o.HalfZ)
}

// gridSlots возвращает позиции сетки колонн внутри (start-length, start].
// Сетка глобальная: позиции кратны spacing независимо от границ чанков.
func gridSlots(start, length, spacing float64) []float64 {
	first := int(math.Floor(start/spacing + 1e-9))
	var slots []float64
	for k := first; float64(k)*spacing > start-length+1e-9; k-- {
		slots = append(slots, float64(k)*spacing)
	}
	return slots
}

// synthesize строит новый чанк на текущей границе генерации
func (w *World) synthesize() *Chunk {
	w.drift.Step(w.rng)

	start := w.frontier
	length := w.cfg.ChunkSize
	height := w.cfg.BaseHeight + w.drift.HeightOffset

	center := ecs.Vector3{X: 0, Y: height / 2, Z: start - length/2}
	chunk := &Chunk{
		StartZ: start,
		Length: length,
		Center: center,
		Height: height,
	}
	chunk.Node = w.scene.Spawn(
		[]string{ecs.TagChunk},
		ecs.NewTransformComponent(center),
		ecs.NewRenderComponent("chunk", ecs.Vector3{X: w.cfg.CorridorWidth, Y: height, Z: length}),
	)

	jitter := w.drift.PillarOffset
	inset := w.cfg.CorridorWidth/2 - pillarInset
	intensity := math.Max(minLightIntensity, w.cfg.BaseLightIntensity-w.drift.LightDimming)

	for _, gridZ := range gridSlots(start, length, w.cfg.PillarSpacing) {
		for _, side := range [2]float64{-1, 1} {
			w.addPillar(chunk, side*inset, gridZ, height, jitter)
		}
		w.addLight(chunk, ecs.Vector3{X: 0, Y: height - 0.1, Z: gridZ}, intensity)
	}

	return chunk
}

// addPillar добавляет колонну с небольшим дрожанием позиции и поворота
func (w *World) addPillar(chunk *Chunk, x, gridZ, height, jitter float64) {
	px := x + (w.rng.Float64()-0.5)*jitter*0.5
	pz := gridZ + (w.rng.Float64()-0.5)*jitter
	rot := (w.rng.Float64() - 0.5) * jitter * 0.3

	tr := ecs.NewTransformComponent(ecs.Vector3{X: px, Y: height / 2, Z: pz})
	tr.Rotation.Y = rot
	handle := w.scene.Spawn(
		[]string{ecs.TagPillar, ecs.TagInteractable},
		tr,
		ecs.NewRenderComponent("pillar", ecs.Vector3{X: PillarHalfExtent * 2, Y: height, Z: PillarHalfExtent * 2}),
	)

	chunk.Obstacles = append(chunk.Obstacles, handle)
	w.obstacles = append(w.obstacles, Obstacle{
		Handle:   handle,
		Owner:    chunk.Node,
		Kind:     ObstaclePillar,
		X:        px,
		Z:        pz,
		GridZ:    gridZ,
		HalfX:    PillarHalfExtent,
		HalfZ:    PillarHalfExtent,
		Rotation: rot,
	})
	w.interactables = append(w.interactables, ecs.Interactable{
		ID:     handle,
		Center: ecs.Vector3{X: px, Y: height / 2, Z: pz},
		Radius: PillarHalfExtent * 1.5,
	})
}

// addLight добавляет светильник над парой колонн
func (w *World) addLight(chunk *Chunk, pos ecs.Vector3, intensity float64) {
	handle := w.scene.Spawn(
		[]string{ecs.TagLight},
		ecs.NewTransformComponent(pos),
		ecs.NewRenderComponent("light", ecs.Vector3{X: 1, Y: 0.1, Z: 0.4}),
	)
	chunk.Lights = append(chunk.Lights, handle)
	w.lights = append(w.lights, LightRecord{
		Handle:   handle,
		Owner:    chunk.Node,
		Position: pos,
		Base:     intensity,
		Current:  intensity,
	})
}
