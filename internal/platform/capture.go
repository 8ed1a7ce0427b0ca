package platform

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"echo-corridor/internal/ai/behavior"
	"echo-corridor/internal/input"
)

// Capture читает клавиатуру и мышь через ebiten
type Capture struct {
	Sensitivity float64 // радиан на пиксель

	yaw, pitch   float64
	lastX, lastY int
	primed       bool
}

// NewCapture создает захват ввода и прячет курсор
func NewCapture(sensitivity float64) *Capture {
	ebiten.SetCursorMode(ebiten.CursorModeCaptured)
	return &Capture{Sensitivity: sensitivity}
}

// Next читает текущее состояние клавиш и смещение курсора
func (c *Capture) Next(dt float64) input.Frame {
	x, y := ebiten.CursorPosition()
	if !c.primed {
		c.lastX, c.lastY = x, y
		c.primed = true
	}
	dx, dy := x-c.lastX, y-c.lastY
	c.lastX, c.lastY = x, y

	// Курсор вправо поворачивает направо, то есть уменьшает yaw
	c.yaw -= float64(dx) * c.Sensitivity
	c.pitch = math.Max(-1.5, math.Min(1.5, c.pitch-float64(dy)*c.Sensitivity))

	return input.Frame{
		Intent: behavior.Intent{
			Forward: ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp),
			Back:    ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown),
			Left:    ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft),
			Right:   ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight),
		},
		Yaw:      c.yaw,
		Pitch:    c.pitch,
		Dt:       dt,
		GameOver: inpututil.IsKeyJustPressed(ebiten.KeyBackspace),
	}
}
