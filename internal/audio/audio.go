package audio

import (
	"log/slog"
	"math"

	"echo-corridor/internal/ai/behavior"
	"echo-corridor/internal/config"
)

// Названия дорожек микса
const (
	TrackIntro     = "intro_ambience"
	TrackDrone     = "drone"
	TrackHeartbeat = "heartbeat"
	TrackWhisper   = "whisper"
	TrackVoid      = "void"
)

// Tracks все дорожки в порядке микширования
var Tracks = []string{TrackIntro, TrackDrone, TrackHeartbeat, TrackWhisper, TrackVoid}

// Input три сигнала, которые ядро передает аудио каждый кадр
type Input struct {
	DistanceToVoid float64 // бесконечность, пока пустоты нет
	Metrics        behavior.Metrics
	Factor         float64
}

// Mix громкости дорожек после общего уровня, 0..1
type Mix struct {
	Gains        map[string]float64 `json:"gains"`
	HeartbeatBPM float64            `json:"heartbeat_bpm"`
}

// Sink внешний синтез или проигрыватель, который применяет микс
type Sink interface {
	Apply(mix Mix)
}

// Manager отвечает за аудио в игре: переводит сигналы ядра в микс.
// Синтез звука остается за Sink.
type Manager struct {
	cfg  config.AudioConfig
	sink Sink
	log  *slog.Logger

	isMuted bool
	volume  float64

	introPlaying bool
	scoreFade    float64
	scoreFading  bool

	last Mix
}

// NewManager создает новый аудио менеджер; sink может быть nil
func NewManager(cfg config.AudioConfig, sink Sink, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:          cfg,
		sink:         sink,
		log:          logger.With("component", "audio"),
		volume:       cfg.Volume,
		introPlaying: true,
	}
}

// StopIntroAmbience глушит звук вступительной комнаты
func (m *Manager) StopIntroAmbience() {
	if m.introPlaying {
		m.introPlaying = false
		m.log.Debug("intro ambience stopped")
	}
}

// FadeInScore начинает плавное появление основной партитуры
func (m *Manager) FadeInScore() {
	if !m.scoreFading {
		m.scoreFading = true
		m.log.Debug("score fade in", "seconds", m.cfg.ScoreFadeIn)
	}
}

// Update пересчитывает микс по сигналам кадра и отдает его в Sink
func (m *Manager) Update(dt float64, in Input) Mix {
	if m.scoreFading && m.scoreFade < 1 {
		if m.cfg.ScoreFadeIn <= 0 {
			m.scoreFade = 1
		} else {
			m.scoreFade = math.Min(1, m.scoreFade+dt/m.cfg.ScoreFadeIn)
		}
	}

	factor := clamp01(in.Factor)
	gains := map[string]float64{
		TrackIntro:     0,
		TrackDrone:     (0.3 + 0.7*factor) * m.scoreFade,
		TrackHeartbeat: 0,
		TrackWhisper:   0,
		TrackVoid:      0,
	}
	if m.introPlaying {
		gains[TrackIntro] = 0.6
	}
	if factor > 0.5 {
		gains[TrackHeartbeat] = (factor - 0.5) * 2 * m.scoreFade
	}
	switch {
	case in.Metrics.IsLookingBack:
		gains[TrackWhisper] = 0.6 * factor
	case in.Metrics.StationaryTime > 5:
		gains[TrackWhisper] = 0.3 * factor
	}
	if m.cfg.VoidHearing > 0 && !math.IsInf(in.DistanceToVoid, 1) {
		gains[TrackVoid] = clamp01(1 - in.DistanceToVoid/m.cfg.VoidHearing)
	}

	level := m.volume
	if m.isMuted {
		level = 0
	}
	for k, g := range gains {
		gains[k] = clamp01(g) * level
	}

	m.last = Mix{Gains: gains, HeartbeatBPM: 60 + 80*factor}
	if m.sink != nil {
		m.sink.Apply(m.last)
	}
	return m.last
}

// Last возвращает последний рассчитанный микс
func (m *Manager) Last() Mix {
	return m.last
}

// SetVolume устанавливает общую громкость
func (m *Manager) SetVolume(volume float64) {
	m.volume = clamp01(volume)
}

// Mute выключает звук
func (m *Manager) Mute() {
	m.isMuted = true
}

// Muted сообщает, выключен ли звук
func (m *Manager) Muted() bool {
	return m.isMuted
}

// Unmute включает звук
func (m *Manager) Unmute() {
	m.isMuted = false
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
