// Package input собирает покадровый ввод: намерения движения и ориентацию
// камеры. Живой ввод собирает платформа, безголовый режим использует сценарий.
package input

import (
	"math"

	"echo-corridor/internal/ai/behavior"
)

// Frame один кадр ввода
type Frame struct {
	Intent   behavior.Intent
	Yaw      float64 // радианы, накопленные
	Pitch    float64 // радианы
	Dt       float64 // секунды; 0 или NaN заменяются номинальным шагом
	GameOver bool    // явный запрос завершения
}

// Source источник кадров ввода
type Source interface {
	Next(dt float64) Frame
}

// Step один шаг сценария
type Step struct {
	Duration float64 // секунды
	Intent   behavior.Intent
	YawRate  float64 // рад/с
}

// Script проигрывает шаги по кругу; после последнего шага повторяет
// шаги начиная с Loop.
type Script struct {
	Steps []Step
	Loop  int

	index   int
	elapsed float64
	yaw     float64
}

// DefaultScript проходит вступление, идет по коридору, затем долго
// оглядывается, чтобы довести паранойю до финала, и идет вперед.
func DefaultScript() *Script {
	forward := behavior.Intent{Forward: true}
	return &Script{
		Steps: []Step{
			{Duration: 4, Intent: forward},
			{Duration: 12, Intent: forward},
			{Duration: 2, Intent: behavior.Intent{}},
			{Duration: 30, YawRate: 4},
			{Duration: 10, Intent: forward},
			{Duration: 1, Intent: forward, YawRate: 3.5},
		},
		Loop: 4,
	}
}

// Next продвигает сценарий на dt. Невалидная дельта не двигает сценарий
// и уходит в кадр как есть, ее чинит симуляция.
func (s *Script) Next(dt float64) Frame {
	step := dt
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		step = 0
	}
	if len(s.Steps) == 0 {
		return Frame{Dt: dt}
	}

	current := s.Steps[s.index]
	s.yaw += current.YawRate * step
	frame := Frame{Intent: current.Intent, Yaw: s.yaw, Dt: dt}

	s.elapsed += step
	for s.elapsed >= s.Steps[s.index].Duration {
		s.elapsed -= s.Steps[s.index].Duration
		s.index++
		if s.index >= len(s.Steps) {
			s.index = s.Loop
			if s.index < 0 || s.index >= len(s.Steps) {
				s.index = 0
			}
		}
		if s.Steps[s.index].Duration <= 0 {
			break
		}
	}
	return frame
}

// Index возвращает текущий шаг сценария
func (s *Script) Index() int {
	return s.index
}
