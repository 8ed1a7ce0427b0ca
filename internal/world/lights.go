package world

import (
	"math"

	"echo-corridor/internal/engine/ecs"
)

// minLightIntensity нижняя граница яркости: один дрейф не гасит свет полностью
const minLightIntensity = 0.1

// LightRecord состояние одного светильника
type LightRecord struct {
	Handle   ecs.EntityID
	Owner    ecs.EntityID
	Position ecs.Vector3
	Base     float64 // Яркость, к которой свет возвращается
	Current  float64 // Текущая яркость
}

// RestoreLights каждый кадр возвращает яркость к базовой по экспоненте.
// Во время блэкаута все светильники сразу гаснут.
func (w *World) RestoreLights(dt float64, blackout bool) {
	if blackout {
		for i := range w.lights {
			w.lights[i].Current = 0
		}
		return
	}

	t := math.Min(1, w.cfg.LightRestoreRate*dt)
	for i := range w.lights {
		l := &w.lights[i]
		l.Current += (l.Base - l.Current) * t
	}
}

// Flicker случайно возмущает примерно FlickerShare светильников.
// Половина возмущенных гаснет полностью, остальные получают 10-120% базы.
// Возвращает число затронутых светильников.
func (w *World) Flicker(rng Rand) int {
	perturbed := 0
	for i := range w.lights {
		if rng.Float64() >= w.cfg.FlickerShare {
			continue
		}
		l := &w.lights[i]
		if rng.Float64() < 0.5 {
			l.Current = 0
		} else {
			l.Current = l.Base * (0.1 + rng.Float64()*1.1)
		}
		perturbed++
	}
	return perturbed
}

// Lights возвращает реестр светильников; только для чтения
func (w *World) Lights() []LightRecord {
	return w.lights
}
