package ecs

import "math"

// Предопределенные типы компонентов
var (
	TransformComponentID = RegisterComponentType("transform")
	RenderComponentID    = RegisterComponentType("render")
)

// Теги узлов графа сцены
const (
	TagChunk        = "chunk"
	TagPillar       = "pillar"
	TagLight        = "light"
	TagInteractable = "interactable"
	TagIntro        = "intro"
	TagVoid         = "void"
	TagBoundary     = "boundary"
	TagPlayer       = "player"
)

// Vector3 представляет трехмерный вектор
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add складывает два вектора
func (v Vector3) Add(other Vector3) Vector3 {
	return Vector3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Sub вычитает вектор из другого вектора
func (v Vector3) Sub(other Vector3) Vector3 {
	return Vector3{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}

// Multiply умножает вектор на скаляр
func (v Vector3) Multiply(scalar float64) Vector3 {
	return Vector3{
		X: v.X * scalar,
		Y: v.Y * scalar,
		Z: v.Z * scalar,
	}
}

// Magnitude возвращает длину вектора
func (v Vector3) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize возвращает нормализованный вектор
func (v Vector3) Normalize() Vector3 {
	mag := v.Magnitude()
	if mag == 0 {
		return v
	}
	return Vector3{
		X: v.X / mag,
		Y: v.Y / mag,
		Z: v.Z / mag,
	}
}

// Distance возвращает расстояние между двумя векторами
func (v Vector3) Distance(other Vector3) float64 {
	return v.Sub(other).Magnitude()
}

// Dot возвращает скалярное произведение двух векторов
func (v Vector3) Dot(other Vector3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Direction возвращает единичный вектор взгляда для рыскания и тангажа.
// Нулевой yaw смотрит вдоль -Z, в глубину коридора.
func Direction(yaw, pitch float64) Vector3 {
	return Vector3{
		X: -math.Sin(yaw) * math.Cos(pitch),
		Y: math.Sin(pitch),
		Z: -math.Cos(yaw) * math.Cos(pitch),
	}
}

// TransformComponent содержит позицию, вращение и масштаб узла
type TransformComponent struct {
	BaseComponent
	Position Vector3
	Rotation Vector3 // Углы Эйлера в радианах (pitch, yaw, roll)
	Scale    Vector3
}

// NewTransformComponent создает новый компонент трансформации
func NewTransformComponent(position Vector3) *TransformComponent {
	return &TransformComponent{
		BaseComponent: NewBaseComponent(TransformComponentID),
		Position:      position,
		Scale:         Vector3{1, 1, 1},
	}
}

// Forward возвращает вектор направления "вперед"
func (t *TransformComponent) Forward() Vector3 {
	return Direction(t.Rotation.Y, t.Rotation.X)
}

// RenderComponent описывает, что внешний рендер должен построить для узла.
// Сами меши и материалы создаются снаружи ядра.
type RenderComponent struct {
	BaseComponent
	Kind    string  // pillar, light, chunk, void, boundary, intro_wall
	Size    Vector3 // Габариты для примитивной отрисовки
	Visible bool
}

// NewRenderComponent создает новый компонент рендеринга
func NewRenderComponent(kind string, size Vector3) *RenderComponent {
	return &RenderComponent{
		BaseComponent: NewBaseComponent(RenderComponentID),
		Kind:          kind,
		Size:          size,
		Visible:       true,
	}
}

// Interactable сфера, по которой проверяется взгляд игрока
type Interactable struct {
	ID     EntityID
	Center Vector3
	Radius float64
}
