package core

import (
	"errors"
	"log/slog"

	"echo-corridor/internal/config"
	"echo-corridor/internal/engine/ecs"
)

// Zone режим верхнего уровня
type Zone int

const (
	ZoneIntro Zone = iota
	ZoneCorridor
	ZoneEndgame
)

func (z Zone) String() string {
	switch z {
	case ZoneIntro:
		return "intro"
	case ZoneCorridor:
		return "corridor"
	case ZoneEndgame:
		return "endgame"
	}
	return "unknown"
}

// MarshalText кодирует зону строкой для наблюдателей
func (z Zone) MarshalText() ([]byte, error) {
	return []byte(z.String()), nil
}

// ResetReason причина полного перезапуска
type ResetReason string

const (
	ReasonVoidContact ResetReason = "void_contact"
	ReasonOutOfBounds ResetReason = "out_of_bounds"
	ReasonWalkedBack  ResetReason = "walked_back"
	ReasonGameOver    ResetReason = "game_over"
)

// ErrReset терминальный сигнал: состояние бросается целиком, симуляция
// создается заново
var ErrReset = errors.New("simulation reset")

// ResetError несет причину сброса и оборачивает ErrReset
type ResetError struct {
	Reason ResetReason
}

func (e *ResetError) Error() string {
	return ErrReset.Error() + ": " + string(e.Reason)
}

func (e *ResetError) Unwrap() error {
	return ErrReset
}

// ZoneMachine переключатель Intro / Corridor / Endgame.
// Endgame включается только снаружи, защелкой паранойи.
type ZoneMachine struct {
	cfg  config.ZoneConfig
	log  *slog.Logger
	zone Zone
}

// NewZoneMachine создает автомат во вступительной зоне
func NewZoneMachine(cfg config.ZoneConfig, logger *slog.Logger) *ZoneMachine {
	if logger == nil {
		logger = slog.Default()
	}
	return &ZoneMachine{cfg: cfg, log: logger.With("component", "zone")}
}

// Zone возвращает текущую зону
func (m *ZoneMachine) Zone() Zone {
	return m.zone
}

// CheckIntro переводит Intro в Corridor, когда игрок пересек плоскость
// триггера. Возвращает true на кадре перехода.
func (m *ZoneMachine) CheckIntro(playerZ float64) bool {
	if m.zone != ZoneIntro || playerZ >= m.cfg.IntroTriggerZ {
		return false
	}
	m.zone = ZoneCorridor
	m.log.Info("zone transition", "from", ZoneIntro, "to", ZoneCorridor, "z", playerZ)
	return true
}

// EnterEndgame переводит Corridor в Endgame. Возвращает true, если переход
// состоялся; из других зон ничего не происходит.
func (m *ZoneMachine) EnterEndgame() bool {
	if m.zone != ZoneCorridor {
		return false
	}
	m.zone = ZoneEndgame
	m.log.Info("zone transition", "from", ZoneCorridor, "to", ZoneEndgame)
	return true
}

// CheckReset проверяет условия терминального сброса
func (m *ZoneMachine) CheckReset(pos ecs.Vector3, void ecs.Vector3, hasVoid bool) error {
	if pos.X > m.cfg.OutOfBoundsX || pos.X < -m.cfg.OutOfBoundsX {
		return &ResetError{Reason: ReasonOutOfBounds}
	}
	if m.zone == ZoneIntro {
		return nil
	}
	if pos.Z > m.cfg.ResetZ {
		return &ResetError{Reason: ReasonWalkedBack}
	}
	if m.zone == ZoneEndgame && hasVoid {
		flat := ecs.Vector3{X: void.X - pos.X, Z: void.Z - pos.Z}
		if flat.Magnitude() < m.cfg.VoidContactRadius {
			return &ResetError{Reason: ReasonVoidContact}
		}
	}
	return nil
}
