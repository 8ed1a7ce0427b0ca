// Package platform связывает ядро с ebiten: окно и игровой цикл, захват
// клавиатуры и мыши, проигрывание дорожек.
package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"echo-corridor/internal/config"
	"echo-corridor/internal/core"
	"echo-corridor/internal/render"
)

// mouseSensitivity радиан поворота на пиксель курсора
const mouseSensitivity = 0.0025

// Game представляет полную игровую структуру поверх ebiten
type Game struct {
	config   *config.Config
	newSim   func() *core.Sim
	sim      *core.Sim
	capture  *Capture
	renderer *render.Renderer
	log      *slog.Logger

	muted          bool
	resets         int
	lastUpdateTime time.Time
}

// NewGame создает игру; newSim вызывается при старте и после каждого сброса
func NewGame(cfg *config.Config, newSim func() *core.Sim, logger *slog.Logger) *Game {
	if logger == nil {
		logger = slog.Default()
	}
	return &Game{
		config:   cfg,
		newSim:   newSim,
		sim:      newSim(),
		capture:  NewCapture(mouseSensitivity),
		renderer: render.NewRenderer(cfg),
		log:      logger,
	}
}

// Update продвигает симуляцию на кадр. Сброс пересоздает симуляцию целиком.
func (g *Game) Update() error {
	now := time.Now()
	deltaTime := 0.0
	if !g.lastUpdateTime.IsZero() {
		deltaTime = now.Sub(g.lastUpdateTime).Seconds()
	}
	g.lastUpdateTime = now

	// M переключает звук
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		g.muted = !g.muted
	}
	if g.muted {
		g.sim.Audio().Mute()
	} else {
		g.sim.Audio().Unmute()
	}

	frame := g.capture.Next(deltaTime)
	if _, err := g.sim.Tick(frame); err != nil {
		if !errors.Is(err, core.ErrReset) {
			return err
		}
		g.resets++
		g.log.Info("restarting", "cause", err, "resets", g.resets)
		g.sim = g.newSim()
	}
	return nil
}

// Draw отрисовывает последний кадр
func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Render(screen, g.sim.Last(), g.sim.World())
}

// Layout определяет размер экрана
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.config.WindowWidth, g.config.WindowHeight
}

// Run запускает основной цикл игры
func (g *Game) Run() error {
	ebiten.SetWindowSize(g.config.WindowWidth, g.config.WindowHeight)
	ebiten.SetWindowTitle(g.config.Title)
	ebiten.SetFullscreen(g.config.Fullscreen)
	ebiten.SetTPS(g.config.TargetFPS)
	ebiten.SetVsyncEnabled(g.config.EnableVSync)

	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("game loop error: %w", err)
	}
	return nil
}
