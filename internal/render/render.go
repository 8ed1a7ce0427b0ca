package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"echo-corridor/internal/config"
	"echo-corridor/internal/core"
	"echo-corridor/internal/world"
)

const (
	pixelsPerUnit = 6.0
	messageTTL    = 4.0 // секунд на экране
)

var (
	floorColor    = color.RGBA{R: 18, G: 16, B: 14, A: 255}
	wallColor     = color.RGBA{R: 60, G: 54, B: 44, A: 255}
	pillarColor   = color.RGBA{R: 120, G: 110, B: 90, A: 255}
	introColor    = color.RGBA{R: 80, G: 70, B: 60, A: 255}
	playerColor   = color.RGBA{R: 220, G: 40, B: 40, A: 255}
	voidColor     = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	voidRimColor  = color.RGBA{R: 90, G: 0, B: 120, A: 255}
	mirageColor   = color.RGBA{R: 230, G: 230, B: 240, A: 200}
	boundaryColor = color.RGBA{R: 200, G: 0, B: 0, A: 255}
)

// Renderer рисует отладочный вид сверху: коридор, свет, игрока и сигналы.
// Меши и материалы полноценного рендера остаются снаружи ядра.
type Renderer struct {
	config *config.Config
	canvas *ebiten.Image

	message    string
	messageAge float64
}

// NewRenderer создает новый рендерер
func NewRenderer(cfg *config.Config) *Renderer {
	return &Renderer{config: cfg}
}

// Render основной метод отрисовки кадра
func (r *Renderer) Render(screen *ebiten.Image, frame core.Frame, w *world.World) {
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	if r.canvas == nil || r.canvas.Bounds().Dx() != sw || r.canvas.Bounds().Dy() != sh {
		r.canvas = ebiten.NewImage(sw, sh)
	}
	r.canvas.Fill(floorColor)

	r.renderCorridor(r.canvas, frame, w)
	r.renderLights(r.canvas, frame, w)
	r.renderObstacles(r.canvas, frame, w)
	r.renderVoid(r.canvas, frame, w)
	r.renderPlayer(r.canvas, frame)
	if frame.Signals.Mirage {
		r.renderMirage(r.canvas, frame)
	}
	r.renderFog(r.canvas, frame)

	// Искажение камеры поворачивает весь кадр вокруг центра
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-float64(sw)/2, -float64(sh)/2)
	op.GeoM.Rotate(frame.Signals.Distortion)
	op.GeoM.Translate(float64(sw)/2, float64(sh)/2)
	screen.Fill(color.Black)
	screen.DrawImage(r.canvas, op)

	r.renderUI(screen, frame)
}

// toScreen переводит мировые X/Z в экранные координаты вокруг игрока.
// Направление -Z смотрит вверх.
func (r *Renderer) toScreen(x, z float64, frame core.Frame, sw, sh int) (float32, float32) {
	sx := float64(sw)/2 + (x-frame.Position.X)*pixelsPerUnit
	sy := float64(sh)*0.7 + (z-frame.Position.Z)*pixelsPerUnit
	return float32(sx), float32(sy)
}

func (r *Renderer) renderCorridor(dst *ebiten.Image, frame core.Frame, w *world.World) {
	if frame.Zone == core.ZoneEndgame {
		return
	}
	sw, sh := dst.Bounds().Dx(), dst.Bounds().Dy()
	half := w.Config().CorridorWidth / 2
	left, _ := r.toScreen(-half, 0, frame, sw, sh)
	right, _ := r.toScreen(half, 0, frame, sw, sh)
	vector.StrokeLine(dst, left, 0, left, float32(sh), 2, wallColor, false)
	vector.StrokeLine(dst, right, 0, right, float32(sh), 2, wallColor, false)
}

func (r *Renderer) renderLights(dst *ebiten.Image, frame core.Frame, w *world.World) {
	sw, sh := dst.Bounds().Dx(), dst.Bounds().Dy()
	for _, l := range w.Lights() {
		if l.Current <= 0 {
			continue
		}
		x, y := r.toScreen(l.Position.X, l.Position.Z, frame, sw, sh)
		vector.DrawFilledCircle(dst, x, y, float32(4*pixelsPerUnit), lightColor(l.Current), true)
	}
}

// lightColor теплый ореол, альфа пропорциональна яркости
func lightColor(intensity float64) color.RGBA {
	a := uint8(math.Min(1, intensity) * 70)
	return color.RGBA{R: a, G: uint8(float64(a) * 0.85), B: uint8(float64(a) * 0.5), A: a}
}

func (r *Renderer) renderObstacles(dst *ebiten.Image, frame core.Frame, w *world.World) {
	sw, sh := dst.Bounds().Dx(), dst.Bounds().Dy()
	for _, o := range w.Obstacles() {
		box := o.Box()
		x, y := r.toScreen(box.MinX, box.MinZ, frame, sw, sh)
		clr := pillarColor
		if o.Kind == world.ObstacleIntro {
			clr = introColor
		}
		vector.DrawFilledRect(dst, x, y,
			float32((box.MaxX-box.MinX)*pixelsPerUnit),
			float32((box.MaxZ-box.MinZ)*pixelsPerUnit),
			clr, false)
	}
}

func (r *Renderer) renderVoid(dst *ebiten.Image, frame core.Frame, w *world.World) {
	void, ok := w.VoidPosition()
	if !ok {
		return
	}
	sw, sh := dst.Bounds().Dx(), dst.Bounds().Dy()

	_, by := r.toScreen(0, w.Frontier(), frame, sw, sh)
	vector.StrokeLine(dst, 0, by, float32(sw), by, 1, boundaryColor, false)

	x, y := r.toScreen(void.X, void.Z, frame, sw, sh)
	radius := float32(3 * pixelsPerUnit)
	vector.DrawFilledCircle(dst, x, y, radius+3, voidRimColor, true)
	vector.DrawFilledCircle(dst, x, y, radius, voidColor, true)
}

func (r *Renderer) renderPlayer(dst *ebiten.Image, frame core.Frame) {
	sw, sh := dst.Bounds().Dx(), dst.Bounds().Dy()
	x, y := r.toScreen(frame.Position.X, frame.Position.Z, frame, sw, sh)
	vector.DrawFilledCircle(dst, x, y, float32(r.config.Player.Radius*pixelsPerUnit)+2, playerColor, true)

	// Направление взгляда
	dx := -math.Sin(frame.Yaw) * 3 * pixelsPerUnit
	dz := -math.Cos(frame.Yaw) * 3 * pixelsPerUnit
	vector.StrokeLine(dst, x, y, x+float32(dx), y+float32(dz), 1, playerColor, true)
}

func (r *Renderer) renderMirage(dst *ebiten.Image, frame core.Frame) {
	sw, sh := dst.Bounds().Dx(), dst.Bounds().Dy()
	ahead := frame.Position.Z - 12
	x, y := r.toScreen(frame.Position.X, ahead, frame, sw, sh)
	vector.DrawFilledRect(dst, x-3, y-9, 6, 18, mirageColor, false)
}

func (r *Renderer) renderFog(dst *ebiten.Image, frame core.Frame) {
	if frame.Fog <= 0 {
		return
	}
	sw, sh := dst.Bounds().Dx(), dst.Bounds().Dy()
	a := uint8(math.Min(200, frame.Fog*1500))
	vector.DrawFilledRect(dst, 0, 0, float32(sw), float32(sh)*0.35, color.RGBA{R: 10, G: 10, B: 12, A: a}, false)
}

// renderUI отрисовывает отладочный текст и сообщения
func (r *Renderer) renderUI(screen *ebiten.Image, frame core.Frame) {
	if frame.Signals.Message != nil {
		r.message = frame.Signals.Message.Text
		r.messageAge = 0
	} else {
		r.messageAge += frame.Dt
	}

	status := fmt.Sprintf("%s  z=%.1f  paranoia=%.1f (%s)  chunks=%d  lights=%d",
		frame.Zone, frame.Position.Z, frame.Level, frame.Tier, frame.Chunks, frame.Lights)
	ebitenutil.DebugPrintAt(screen, status, 10, 10)
	if frame.HasVoid {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("void: %.1f", frame.VoidDist), 10, 26)
	}
	if frame.Signals.Blackout {
		ebitenutil.DebugPrintAt(screen, "BLACKOUT", 10, 42)
	}

	if r.message != "" && r.messageAge < messageTTL {
		sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
		x := sw/2 - len([]rune(r.message))*3
		ebitenutil.DebugPrintAt(screen, r.message, x, sh-40)
	}
}
