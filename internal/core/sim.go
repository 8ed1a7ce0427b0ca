package core

import (
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"echo-corridor/internal/ai/behavior"
	"echo-corridor/internal/ai/fear"
	"echo-corridor/internal/audio"
	"echo-corridor/internal/config"
	"echo-corridor/internal/engine/ecs"
	"echo-corridor/internal/entities/player"
	"echo-corridor/internal/input"
	"echo-corridor/internal/metamorphosis"
	"echo-corridor/internal/symbols"
	"echo-corridor/internal/world"
)

const (
	// NominalDt шаг, подставляемый вместо невалидной дельты
	NominalDt = 0.016
	// MaxDt верхняя граница шага при подвисаниях
	MaxDt = 0.1
)

// Publisher получатель снимков кадра; Publish не должен блокировать
type Publisher interface {
	Publish(v any) error
}

// Options внешние коллабораторы симуляции; все поля необязательны
type Options struct {
	Logger    *slog.Logger
	Messages  fear.MessagePools
	AudioSink audio.Sink
	Publisher Publisher
}

// Frame снимок одного кадра для рендера, аудио и наблюдателей
type Frame struct {
	RunID    string              `json:"run_id"`
	Tick     uint64              `json:"tick"`
	Elapsed  float64             `json:"elapsed"`
	Dt       float64             `json:"dt"`
	Zone     Zone                `json:"zone"`
	Position ecs.Vector3         `json:"position"`
	Yaw      float64             `json:"yaw"`
	Pitch    float64             `json:"pitch"`
	Facing   ecs.Vector3         `json:"facing"`
	Level    float64             `json:"level"`
	Factor   float64             `json:"factor"`
	Tier     string              `json:"tier"`
	Metrics  behavior.Metrics    `json:"metrics"`
	Signals  fear.Signals        `json:"signals"`
	Fog      float64             `json:"fog"`
	Frontier float64             `json:"frontier"`
	Chunks   int                 `json:"chunks"`
	Lights   int                 `json:"lights"`
	Drift    metamorphosis.Drift `json:"drift"`
	HasVoid  bool                `json:"has_void"`
	VoidDist float64             `json:"void_distance,omitempty"`
	Audio    audio.Mix           `json:"audio"`
}

// Sim кадровый цикл: одна функция Tick продвигает все подсистемы в
// фиксированном порядке. Ничего не блокирует, все ожидания это таймеры.
type Sim struct {
	RunID string

	cfg *config.Config
	log *slog.Logger
	rng *rand.Rand

	scene    *ecs.World
	world    *world.World
	player   *player.Player
	tracker  *behavior.Tracker
	paranoia *fear.Estimator
	director *fear.Director
	zones    *ZoneMachine
	audio    *audio.Manager

	publisher  Publisher
	publishErr bool

	tick     uint64
	elapsed  float64
	gameOver bool
	reset    error
	last     Frame
}

// NewSim собирает симуляцию в начальном состоянии
func NewSim(cfg *config.Config, opts Options) *Sim {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	runID := uuid.NewString()
	logger = logger.With("run_id", runID)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	pools := opts.Messages
	if pools == nil {
		pools = symbols.Default()
	}

	scene := ecs.NewWorld()
	s := &Sim{
		RunID:     runID,
		cfg:       cfg,
		log:       logger,
		rng:       rng,
		scene:     scene,
		world:     world.NewWorld(cfg.World, scene, rng, logger),
		player:    player.NewPlayer(scene, cfg.Player, cfg.World.CorridorWidth),
		tracker:   behavior.NewTracker(),
		paranoia:  fear.NewEstimator(cfg.Paranoia, logger),
		director:  fear.NewDirector(cfg.Events, pools, rng, logger),
		zones:     NewZoneMachine(cfg.Zone, logger),
		audio:     audio.NewManager(cfg.Audio, opts.AudioSink, logger),
		publisher: opts.Publisher,
	}
	s.world.BuildIntro(cfg.Zone.CorridorStartZ)
	s.paranoia.OnEndgame(s.enterEndgame)

	logger.Info("simulation started", "seed", seed)
	return s
}

// SanitizeDt заменяет невалидную дельту номинальным шагом и режет
// слишком длинные кадры
func SanitizeDt(dt float64) float64 {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt <= 0 {
		return NominalDt
	}
	return math.Min(dt, MaxDt)
}

// GameOver запрашивает терминальный сброс на следующем кадре
func (s *Sim) GameOver() {
	s.gameOver = true
}

// Tick продвигает симуляцию на один кадр. Ошибка, оборачивающая ErrReset,
// означает, что симуляцию нужно создать заново; после нее Tick всегда
// возвращает ту же ошибку.
func (s *Sim) Tick(in input.Frame) (Frame, error) {
	if s.reset != nil {
		return s.last, s.reset
	}
	if in.GameOver || s.gameOver {
		return s.fail(&ResetError{Reason: ReasonGameOver})
	}

	dt := SanitizeDt(in.Dt)
	s.tick++
	s.elapsed += dt

	// Движение игрока
	s.player.Look(in.Yaw, in.Pitch)
	pos := s.player.Move(in.Intent, dt, s.world.ObstacleBoxes())
	voidPos, hasVoid := s.world.VoidPosition()
	if hasVoid {
		s.player.Attract(voidPos, dt)
		pos = s.player.Position()
	}

	if s.zones.CheckIntro(pos.Z) {
		s.enterCorridor()
	}
	if err := s.zones.CheckReset(pos, voidPos, hasVoid); err != nil {
		return s.fail(err)
	}

	// Поведение и паранойя
	metrics := s.tracker.Sample(behavior.Sample{
		Position: pos,
		Yaw:      s.player.Yaw(),
		Pitch:    s.player.Pitch(),
		Intent:   in.Intent,
		Dt:       dt,
	}, s.world.Interactables())

	var reading fear.Reading
	if s.zones.Zone() != ZoneIntro {
		reading = s.paranoia.Tick(metrics, dt)
	}

	// Стриминг коридора
	s.world.Advance(pos.Z)

	// События
	var signals fear.Signals
	if s.zones.Zone() != ZoneIntro {
		signals = s.director.Tick(fear.FrameContext{
			Dt:       dt,
			Factor:   s.paranoia.Factor(),
			Metrics:  metrics,
			Terminal: s.zones.Zone() == ZoneEndgame,
		})
	}
	if signals.Flicker {
		s.world.Flicker(s.rng)
	}
	if signals.Message != nil {
		s.log.Info("message", "pool", signals.Message.Pool, "text", signals.Message.Text)
	}
	s.world.RestoreLights(dt, signals.Blackout)

	// Аудио и наблюдатели
	voidDist := math.Inf(1)
	if hasVoid {
		voidDist = pos.Distance(voidPos)
	}
	factor := s.paranoia.Factor()
	mix := s.audio.Update(dt, audio.Input{
		DistanceToVoid: voidDist,
		Metrics:        metrics,
		Factor:         factor,
	})

	frame := Frame{
		RunID:    s.RunID,
		Tick:     s.tick,
		Elapsed:  s.elapsed,
		Dt:       dt,
		Zone:     s.zones.Zone(),
		Position: pos,
		Yaw:      s.player.Yaw(),
		Pitch:    s.player.Pitch(),
		Facing:   s.player.Forward(),
		Level:    s.paranoia.Level(),
		Factor:   factor,
		Tier:     s.paranoia.Tier().String(),
		Metrics:  metrics,
		Signals:  signals,
		Fog:      s.fog(factor),
		Frontier: s.world.Frontier(),
		Chunks:   len(s.world.ActiveChunks()),
		Lights:   len(s.world.Lights()),
		Drift:    s.world.Drift(),
		HasVoid:  hasVoid,
		Audio:    mix,
	}
	if hasVoid {
		frame.VoidDist = voidDist
	}
	if reading.Endgame {
		s.log.Info("endgame reached", "elapsed", s.elapsed)
	}

	s.last = frame
	s.publish(frame)
	return frame, nil
}

// enterCorridor побочные эффекты перехода Intro -> Corridor
func (s *Sim) enterCorridor() {
	s.audio.StopIntroAmbience()
	s.world.TeardownIntro()
	s.world.InitFrontier(s.cfg.Zone.CorridorStartZ)
	s.paranoia.Reset()
	s.audio.FadeInScore()
}

// enterEndgame вызывается защелкой паранойи
func (s *Sim) enterEndgame() {
	if !s.zones.EnterEndgame() {
		return
	}
	s.director.Clear()
	void := s.world.BeginEndgame()
	s.player.SetWalled(false)
	s.log.Info("void spawned", "z", void.Z)
}

// fog плотность тумана: растет с паранойей, в финале исчезает
func (s *Sim) fog(factor float64) float64 {
	if s.zones.Zone() == ZoneEndgame {
		return 0
	}
	return s.cfg.Zone.FogDensity * (1 + factor)
}

func (s *Sim) fail(err error) (Frame, error) {
	s.reset = err
	var re *ResetError
	if errors.As(err, &re) {
		s.log.Warn("simulation reset", "reason", re.Reason, "tick", s.tick)
	}
	return s.last, err
}

func (s *Sim) publish(frame Frame) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(frame); err != nil && !s.publishErr {
		s.publishErr = true
		s.log.Warn("publish frame failed", "error", err)
	}
}

// Zone возвращает текущую зону
func (s *Sim) Zone() Zone {
	return s.zones.Zone()
}

// Last возвращает последний снимок кадра
func (s *Sim) Last() Frame {
	return s.last
}

// World возвращает стример коридора
func (s *Sim) World() *world.World {
	return s.world
}

// Player возвращает тело игрока
func (s *Sim) Player() *player.Player {
	return s.player
}

// Paranoia возвращает оценщик паранойи
func (s *Sim) Paranoia() *fear.Estimator {
	return s.paranoia
}

// Director возвращает планировщик событий
func (s *Sim) Director() *fear.Director {
	return s.director
}

// Audio возвращает аудио менеджер
func (s *Sim) Audio() *audio.Manager {
	return s.audio
}

// Scene возвращает граф сцены
func (s *Sim) Scene() *ecs.World {
	return s.scene
}
