package fear

import (
	"log/slog"
	"math"

	"github.com/google/uuid"

	"echo-corridor/internal/ai/behavior"
	"echo-corridor/internal/config"
	"echo-corridor/internal/symbols"
)

// Rand is the random source the director samples from; *rand.Rand fits
type Rand interface {
	Float64() float64
}

// MessagePools provides the text candidates for each message pool
type MessagePools interface {
	Messages(pool string) []string
}

const (
	// retries when a drawn message was shown recently
	messageDraws = 3

	distortionMinDuration = 0.2
	distortionMaxExtra    = 4.0 // seconds added at factor 1.0

	subtleTilt = 0.06 // radians, peak below the severe regime
	severeTilt = 0.45
)

// poolUrgency ranks how loudly a message should be presented
var poolUrgency = map[string]int{
	symbols.PoolHighParanoia:  3,
	symbols.PoolContradiction: 2,
	symbols.PoolReentry:       2,
	symbols.PoolLookBack:      1,
	symbols.PoolStationary:    1,
	symbols.PoolMovement:      0,
}

// Window is an active timed event. A nil *Window means idle.
type Window struct {
	Elapsed  float64
	Duration float64
}

// Advance moves the window forward and reports whether it has completed
func (w *Window) Advance(dt float64) bool {
	w.Elapsed += dt
	return w.Elapsed >= w.Duration
}

// Progress returns elapsed/duration in [0,1]
func (w *Window) Progress() float64 {
	if w.Duration <= 0 {
		return 1
	}
	return clamp(w.Elapsed/w.Duration, 0, 1)
}

// Distortion is an active camera tilt
type Distortion struct {
	Window
	Peak float64 // signed peak roll in radians
}

// Angle returns the eased tilt at the current point in the window
func (d *Distortion) Angle() float64 {
	return d.Peak * math.Sin(math.Pi*d.Progress())
}

// Message is a contextual text event
type Message struct {
	ID      string `json:"id"`
	Pool    string `json:"pool"`
	Text    string `json:"text"`
	Urgency int    `json:"urgency"`
}

// FrameContext is what the director reads each tick
type FrameContext struct {
	Dt       float64
	Factor   float64
	Metrics  behavior.Metrics
	Terminal bool
}

// Signals is the director output consumed by render/audio collaborators
type Signals struct {
	Blackout        bool     `json:"blackout"`
	BlackoutStarted bool     `json:"blackout_started"`
	Mirage          bool     `json:"mirage"`
	Flicker         bool     `json:"flicker"`
	Distortion      float64  `json:"distortion"` // camera roll in radians, exactly 0 when idle
	Message         *Message `json:"message,omitempty"`
}

// BlackoutChance is the per-tick blackout trigger probability
func BlackoutChance(cfg config.EventConfig, factor float64) float64 {
	if factor <= cfg.BlackoutThreshold {
		return 0
	}
	return cfg.BlackoutChance
}

// FlickerChance is the per-tick flicker trigger probability
func FlickerChance(factor float64) float64 {
	return (0.0005 + factor*0.05) * 0.5
}

// DistortionChance is the per-tick camera distortion trigger probability
func DistortionChance(cfg config.EventConfig, factor float64) float64 {
	if factor <= cfg.DistortionThreshold {
		return 0
	}
	return 0.0001 + factor*0.002
}

// MessageCooldown is the wait between contextual messages
func MessageCooldown(cfg config.EventConfig, factor float64) float64 {
	return math.Max(cfg.MessageMinCooldown, cfg.MessageBaseCooldown-factor*cfg.MessageCooldownScale)
}

// ContradictionChance is the probability a message is swapped for a contradiction
func ContradictionChance(factor float64) float64 {
	return 0.01 + factor*0.2
}

// Director schedules blackout, flicker, camera distortion and messages off
// the paranoia factor. Each event kind is its own small state machine.
type Director struct {
	cfg   config.EventConfig
	pools MessagePools
	rng   Rand
	log   *slog.Logger

	blackout     *Window
	distortion   *Distortion
	messageTimer float64

	recent     []string
	recentHead int

	terminal bool
}

// NewDirector creates an idle director
func NewDirector(cfg config.EventConfig, pools MessagePools, rng Rand, logger *slog.Logger) *Director {
	if logger == nil {
		logger = slog.Default()
	}
	size := cfg.RecentMessages
	if size < 1 {
		size = 1
	}
	return &Director{
		cfg:    cfg,
		pools:  pools,
		rng:    rng,
		log:    logger.With("component", "director"),
		recent: make([]string, 0, size),
	}
}

// Tick advances every event state machine by one frame
func (d *Director) Tick(ctx FrameContext) Signals {
	if ctx.Terminal {
		if !d.terminal {
			d.terminal = true
			d.Clear()
		}
		return Signals{}
	}

	dt := ctx.Dt
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		dt = 0
	}

	var s Signals
	d.tickBlackout(ctx.Factor, dt, &s)
	d.advanceDistortion(dt, &s)

	// a running blackout suppresses every other trigger
	if d.blackout != nil {
		return s
	}

	if d.rng.Float64() < FlickerChance(ctx.Factor) {
		s.Flicker = true
	}
	d.triggerDistortion(ctx.Factor, &s)
	s.Message = d.checkMessaging(ctx, dt)

	return s
}

func (d *Director) tickBlackout(factor, dt float64, s *Signals) {
	if d.blackout == nil {
		if d.rng.Float64() >= BlackoutChance(d.cfg, factor) {
			return
		}
		d.blackout = &Window{Duration: d.cfg.BlackoutDuration}
		s.BlackoutStarted = true
		d.log.Debug("blackout started", "factor", factor)
	} else if d.blackout.Advance(dt) {
		d.blackout = nil
		d.log.Debug("blackout ended")
		return
	}

	s.Blackout = true
	e := d.blackout.Elapsed
	s.Mirage = e >= d.cfg.MirageShow && e < d.cfg.MirageHide
}

func (d *Director) advanceDistortion(dt float64, s *Signals) {
	if d.distortion == nil {
		return
	}
	if d.distortion.Advance(dt) {
		d.distortion = nil
		s.Distortion = 0
		return
	}
	s.Distortion = d.distortion.Angle()
}

func (d *Director) triggerDistortion(factor float64, s *Signals) {
	if d.distortion != nil {
		return
	}
	if d.rng.Float64() >= DistortionChance(d.cfg, factor) {
		return
	}

	sign := 1.0
	if d.rng.Float64() < 0.5 {
		sign = -1
	}
	d.distortion = &Distortion{
		Window: Window{Duration: distortionDuration(factor, d.rng.Float64())},
		Peak:   sign * distortionPeak(factor, d.rng.Float64()),
	}
	d.log.Debug("distortion started", "duration", d.distortion.Duration, "peak", d.distortion.Peak)
}

// distortionDuration maps factor and a uniform draw to a hold time, from
// short snaps at low paranoia up to multi-second holds at the top
func distortionDuration(factor, r float64) float64 {
	return distortionMinDuration + r*distortionMaxExtra*clamp(factor, 0, 1)
}

// distortionPeak picks the tilt magnitude from one of two regimes
func distortionPeak(factor, r float64) float64 {
	scale := 0.5 + 0.5*r
	if factor < 0.5 {
		return subtleTilt * factor * 2 * scale
	}
	return severeTilt * factor * scale
}

// checkMessaging fires at most one message per cooldown
func (d *Director) checkMessaging(ctx FrameContext, dt float64) *Message {
	d.messageTimer += dt
	if d.messageTimer < MessageCooldown(d.cfg, ctx.Factor) {
		return nil
	}
	d.messageTimer = 0

	pool := d.choosePool(ctx)
	if pool == "" {
		return nil
	}
	text, ok := d.draw(pool)
	if !ok {
		return nil
	}

	msg := &Message{
		ID:      uuid.NewString(),
		Pool:    pool,
		Text:    text,
		Urgency: poolUrgency[pool],
	}
	d.log.Debug("message", "pool", pool, "factor", ctx.Factor)
	return msg
}

// choosePool applies the priority order, then the contradiction override
func (d *Director) choosePool(ctx FrameContext) string {
	m := ctx.Metrics
	pool := ""
	switch {
	case ctx.Factor > 0.7 && d.rng.Float64() < 0.4:
		pool = symbols.PoolHighParanoia
	case m.Revisiting() && d.rng.Float64() < 0.1:
		pool = symbols.PoolReentry
	case m.IsLookingBack && d.rng.Float64() < 0.3:
		pool = symbols.PoolLookBack
	case m.StationaryTime > 5 && d.rng.Float64() < 0.2:
		pool = symbols.PoolStationary
	case m.ForwardTime > 15 && d.rng.Float64() < 0.2:
		pool = symbols.PoolMovement
	}

	if d.rng.Float64() < ContradictionChance(ctx.Factor) {
		pool = symbols.PoolContradiction
	}
	return pool
}

// draw picks a message avoiding the recency ring when it can
func (d *Director) draw(pool string) (string, bool) {
	if d.pools == nil {
		return "", false
	}
	candidates := d.pools.Messages(pool)
	if len(candidates) == 0 {
		return "", false
	}

	var text string
	for i := 0; i < messageDraws; i++ {
		idx := int(d.rng.Float64() * float64(len(candidates)))
		if idx >= len(candidates) {
			idx = len(candidates) - 1
		}
		text = candidates[idx]
		if !d.recentlyShown(text) {
			break
		}
	}
	d.remember(text)
	return text, true
}

func (d *Director) recentlyShown(text string) bool {
	for _, r := range d.recent {
		if r == text {
			return true
		}
	}
	return false
}

func (d *Director) remember(text string) {
	if len(d.recent) < cap(d.recent) {
		d.recent = append(d.recent, text)
		return
	}
	d.recent[d.recentHead] = text
	d.recentHead = (d.recentHead + 1) % len(d.recent)
}

// Clear drops every active event and restarts the message cooldown
func (d *Director) Clear() {
	d.blackout = nil
	d.distortion = nil
	d.messageTimer = 0
}

// Blackout returns the active blackout window, or nil when idle
func (d *Director) Blackout() *Window {
	return d.blackout
}

// Distortion returns the active distortion, or nil when idle
func (d *Director) Distortion() *Distortion {
	return d.distortion
}

// Recent returns the recency ring contents, unordered
func (d *Director) Recent() []string {
	out := make([]string, len(d.recent))
	copy(out, d.recent)
	return out
}
