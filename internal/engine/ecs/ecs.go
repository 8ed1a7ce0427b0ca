package ecs

import "sort"

// ComponentID уникально идентифицирует тип компонента
type ComponentID string

// EntityID стабильный целочисленный дескриптор сущности.
// Ноль зарезервирован и означает "нет сущности".
type EntityID uint64

// None пустой дескриптор
const None EntityID = 0

// Component представляет базовый интерфейс для всех компонентов
type Component interface {
	// Type возвращает уникальный ID типа компонента
	Type() ComponentID
}

// Entity представляет узел графа сцены
type Entity struct {
	ID         EntityID
	components map[ComponentID]Component
	tags       map[string]bool
}

// AddComponent добавляет компонент к сущности
func (e *Entity) AddComponent(c Component) {
	e.components[c.Type()] = c
}

// GetComponent возвращает компонент указанного типа
func (e *Entity) GetComponent(id ComponentID) (Component, bool) {
	comp, exists := e.components[id]
	return comp, exists
}

// Transform возвращает компонент трансформации, если он есть
func (e *Entity) Transform() (*TransformComponent, bool) {
	comp, ok := e.GetComponent(TransformComponentID)
	if !ok {
		return nil, false
	}
	t, ok := comp.(*TransformComponent)
	return t, ok
}

// World арена узлов графа сцены. Единственный писатель - стример мира,
// рендер и аудио только читают. Весь доступ однопоточный, блокировки не нужны.
type World struct {
	nextID   EntityID
	entities map[EntityID]*Entity

	// Индекс для быстрого доступа по тегу
	entitiesByTag map[string]map[EntityID]*Entity
}

// NewWorld создает новую пустую арену
func NewWorld() *World {
	return &World{
		entities:      make(map[EntityID]*Entity),
		entitiesByTag: make(map[string]map[EntityID]*Entity),
	}
}

// Spawn создает сущность с тегами и компонентами и возвращает ее дескриптор
func (w *World) Spawn(tags []string, comps ...Component) EntityID {
	w.nextID++
	e := &Entity{
		ID:         w.nextID,
		components: make(map[ComponentID]Component, len(comps)),
		tags:       make(map[string]bool, len(tags)),
	}
	for _, c := range comps {
		e.AddComponent(c)
	}
	for _, tag := range tags {
		e.tags[tag] = true
		w.indexEntityTag(e, tag, true)
	}
	w.entities[e.ID] = e
	return e.ID
}

// Despawn удаляет сущность из мира. Повторное удаление ничего не делает.
func (w *World) Despawn(id EntityID) bool {
	e, exists := w.entities[id]
	if !exists {
		return false
	}
	for tag := range e.tags {
		w.indexEntityTag(e, tag, false)
	}
	delete(w.entities, id)
	return true
}

// GetEntity возвращает сущность по ID
func (w *World) GetEntity(id EntityID) (*Entity, bool) {
	e, exists := w.entities[id]
	return e, exists
}

// Count возвращает число живых сущностей
func (w *World) Count() int {
	return len(w.entities)
}

// GetEntitiesWithTag возвращает все сущности с указанным тегом в порядке создания
func (w *World) GetEntitiesWithTag(tag string) []*Entity {
	tagMap := w.entitiesByTag[tag]
	entities := make([]*Entity, 0, len(tagMap))
	for _, e := range tagMap {
		entities = append(entities, e)
	}
	sort.Slice(entities, func(i, j int) bool { return entities[i].ID < entities[j].ID })
	return entities
}

// CountWithTag возвращает число сущностей с тегом
func (w *World) CountWithTag(tag string) int {
	return len(w.entitiesByTag[tag])
}

// indexEntityTag индексирует сущность по тегу
func (w *World) indexEntityTag(e *Entity, tag string, add bool) {
	if add {
		if _, exists := w.entitiesByTag[tag]; !exists {
			w.entitiesByTag[tag] = make(map[EntityID]*Entity)
		}
		w.entitiesByTag[tag][e.ID] = e
	} else {
		if tagMap, exists := w.entitiesByTag[tag]; exists {
			delete(tagMap, e.ID)
		}
	}
}

// RegisterComponentType регистрирует новый тип компонента и возвращает его ID
func RegisterComponentType(name string) ComponentID {
	return ComponentID(name)
}

// BaseComponent предоставляет базовую реализацию интерфейса Component
type BaseComponent struct {
	TypeID ComponentID
}

// Type возвращает ID типа компонента
func (bc *BaseComponent) Type() ComponentID {
	return bc.TypeID
}

// NewBaseComponent создает новый базовый компонент с указанным ID типа
func NewBaseComponent(typeID ComponentID) BaseComponent {
	return BaseComponent{TypeID: typeID}
}
