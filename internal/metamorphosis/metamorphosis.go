// Package metamorphosis описывает медленный дрейф структуры коридора:
// с каждым новым чанком потолок, свет и колонны чуть смещаются.
package metamorphosis

import "math"

// Rand источник случайных чисел; *rand.Rand подходит
type Rand interface {
	Float64() float64
}

// Range замкнутый диапазон допустимых значений
type Range struct {
	Min, Max float64
}

// Clamp ограничивает значение диапазоном
func (r Range) Clamp(v float64) float64 {
	return math.Max(r.Min, math.Min(r.Max, v))
}

// Contains проверяет, лежит ли значение в диапазоне
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Limits границы и шаги случайного блуждания
type Limits struct {
	Height  Range
	Dimming Range
	Pillar  Range

	HeightStep  float64 // Максимальный шаг за чанк
	DimmingStep float64
	PillarStep  float64
}

// DefaultLimits возвращает стандартные границы дрейфа
func DefaultLimits() Limits {
	return Limits{
		Height:      Range{Min: -1.0, Max: 3.0},
		Dimming:     Range{Min: 0.0, Max: 0.7},
		Pillar:      Range{Min: 0.0, Max: 1.5},
		HeightStep:  0.3,
		DimmingStep: 0.05,
		PillarStep:  0.2,
	}
}

// Drift состояние дрейфа на всё время процесса.
// Сбрасывается только перезапуском.
type Drift struct {
	LoopCount    int     `json:"loop_count"`
	HeightOffset float64 `json:"height_offset"`
	LightDimming float64 `json:"light_dimming"`
	PillarOffset float64 `json:"pillar_offset"`

	limits Limits
}

// NewDrift создает дрейф с заданными границами
func NewDrift(limits Limits) *Drift {
	return &Drift{limits: limits}
}

// Limits возвращает границы дрейфа
func (d *Drift) Limits() Limits {
	return d.limits
}

// Step делает один шаг блуждания; вызывается ровно один раз на каждый новый чанк
func (d *Drift) Step(rng Rand) {
	d.LoopCount++
	d.HeightOffset = d.limits.Height.Clamp(d.HeightOffset + nudge(rng, d.limits.HeightStep))
	d.LightDimming = d.limits.Dimming.Clamp(d.LightDimming + nudge(rng, d.limits.DimmingStep))
	d.PillarOffset = d.limits.Pillar.Clamp(d.PillarOffset + nudge(rng, d.limits.PillarStep))
}

// InBounds проверяет инвариант: все поля в своих диапазонах
func (d *Drift) InBounds() bool {
	return d.limits.Height.Contains(d.HeightOffset) &&
		d.limits.Dimming.Contains(d.LightDimming) &&
		d.limits.Pillar.Contains(d.PillarOffset)
}

// nudge возвращает случайное смещение в [-step, step)
func nudge(rng Rand, step float64) float64 {
	return (rng.Float64()*2 - 1) * step
}
