package fear

import (
	"log/slog"
	"math"

	"echo-corridor/internal/ai/behavior"
	"echo-corridor/internal/config"
)

// Tier is a coarse display band for the paranoia level.
// It is never used for game logic.
type Tier int

const (
	TierStable Tier = iota
	TierUnsettled
	TierAgitated
	TierHysteria
	TierCritical
)

// TierName maps tiers to their display names
var TierName = map[Tier]string{
	TierStable:    "stable",
	TierUnsettled: "unsettled",
	TierAgitated:  "agitated",
	TierHysteria:  "hysteria",
	TierCritical:  "critical",
}

func (t Tier) String() string {
	if name, ok := TierName[t]; ok {
		return name
	}
	return "unknown"
}

// TierFor maps a level percentage (0-100) to its band
func TierFor(percent float64) Tier {
	switch {
	case percent < 20:
		return TierStable
	case percent < 40:
		return TierUnsettled
	case percent < 60:
		return TierAgitated
	case percent < 80:
		return TierHysteria
	default:
		return TierCritical
	}
}

// Reading is the estimator output for one tick
type Reading struct {
	Level   float64
	Factor  float64
	Tier    Tier
	Endgame bool // true on the single tick the latch fires
}

// Estimator maintains the bounded paranoia accumulator and the one-way
// endgame latch. It is the only writer of the paranoia level.
type Estimator struct {
	cfg config.ParanoiaConfig
	log *slog.Logger

	level   float64
	hold    float64
	latched bool

	onEndgame func()
}

// NewEstimator creates an estimator at zero paranoia
func NewEstimator(cfg config.ParanoiaConfig, logger *slog.Logger) *Estimator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Estimator{
		cfg: cfg,
		log: logger.With("component", "paranoia"),
	}
}

// OnEndgame registers the handler invoked when the latch fires
func (e *Estimator) OnEndgame(fn func()) {
	e.onEndgame = fn
}

// Tick folds one frame of behavior metrics into the level
func (e *Estimator) Tick(m behavior.Metrics, dt float64) Reading {
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		dt = 0
	}

	increasing := false
	if m.IsLookingBack {
		e.level += e.cfg.LookBackRate * dt
		increasing = true
	}
	if m.ForwardTime > e.cfg.ForwardThreshold {
		e.level += e.cfg.ForwardRate * dt
		increasing = true
	}
	if !increasing {
		e.level -= e.cfg.DecayRate * dt
	}
	e.level = clamp(e.level, 0, e.cfg.Max)

	fired := e.updateHold(dt)

	return Reading{
		Level:   e.level,
		Factor:  e.Factor(),
		Tier:    e.Tier(),
		Endgame: fired,
	}
}

// updateHold advances the held-at-max timer and reports whether the latch
// fired on this tick
func (e *Estimator) updateHold(dt float64) bool {
	if e.latched {
		return false
	}

	if e.Factor() >= e.cfg.EndgameFactor {
		e.hold += dt
	} else {
		e.hold = math.Max(0, e.hold-dt*e.cfg.HoldBleed)
	}

	if e.hold < e.cfg.EndgameHold {
		return false
	}

	e.latched = true
	e.log.Info("endgame latch fired", "level", e.level, "hold", e.hold)
	if e.onEndgame != nil {
		e.onEndgame()
	}
	return true
}

// Reset zeroes the level. The endgame latch is not touched.
func (e *Estimator) Reset() {
	e.level = 0
	e.hold = 0
}

// Level returns the raw accumulator
func (e *Estimator) Level() float64 {
	return e.level
}

// Factor returns the level normalized to [0,1]
func (e *Estimator) Factor() float64 {
	if e.cfg.Max <= 0 {
		return 0
	}
	return clamp(e.level/e.cfg.Max, 0, 1)
}

// Tier returns the display band of the current level
func (e *Estimator) Tier() Tier {
	return TierFor(e.Factor() * 100)
}

// Hold returns the held-at-max timer
func (e *Estimator) Hold() float64 {
	return e.hold
}

// Latched reports whether the endgame latch has fired
func (e *Estimator) Latched() bool {
	return e.latched
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
