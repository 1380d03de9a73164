package emotion

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/normanking/emotive/internal/bus"
	"github.com/normanking/emotive/internal/params"
)

// Config tunes the transition engine. Zero values fall back to defaults.
type Config struct {
	// TransitionSpeed is the base duration for a full-distance transition.
	TransitionSpeed time.Duration `mapstructure:"transition_speed"`
	MinTransition   time.Duration `mapstructure:"min_transition"`
	MaxTransition   time.Duration `mapstructure:"max_transition"`
	// Inertia caps how far momentum may shrink a repeated transition,
	// as a fraction of the computed duration.
	Inertia       float64       `mapstructure:"inertia"`
	GestureWindow time.Duration `mapstructure:"gesture_window"`
	Easing        Easing        `mapstructure:"easing"`
	HistoryWindow time.Duration `mapstructure:"history_window"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		TransitionSpeed: 500 * time.Millisecond,
		MinTransition:   100 * time.Millisecond,
		MaxTransition:   2 * time.Second,
		Inertia:         0.5,
		GestureWindow:   1500 * time.Millisecond,
		Easing:          EaseInOut,
		HistoryWindow:   60 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TransitionSpeed <= 0 {
		c.TransitionSpeed = d.TransitionSpeed
	}
	if c.MinTransition <= 0 {
		c.MinTransition = d.MinTransition
	}
	if c.MaxTransition <= 0 {
		c.MaxTransition = d.MaxTransition
	}
	if c.Inertia <= 0 || c.Inertia > 1 {
		c.Inertia = d.Inertia
	}
	if c.GestureWindow <= 0 {
		c.GestureWindow = d.GestureWindow
	}
	if c.Easing == "" {
		c.Easing = d.Easing
	}
	if c.HistoryWindow <= 0 {
		c.HistoryWindow = d.HistoryWindow
	}
	return c
}

const maxHistory = 10

type transition struct {
	from     State
	to       State
	started  time.Time
	duration time.Duration
}

// Engine owns the authoritative displayed emotion. State is mutated only
// through SetEmotion/SetEmotionImmediate; Update advances any in-flight
// transition each frame.
type Engine struct {
	mu  sync.RWMutex
	cfg Config

	current    State
	trans      *transition
	progress   float64 // eased progress of the active transition
	history    []State
	running    bool
	destroyed  bool

	// momentum: repeated SetEmotion calls to the same target within the
	// gesture window shorten the transition.
	lastTarget  Emotion
	lastSetAt   time.Time
	repeatCount int

	events *bus.Bus
	log    zerolog.Logger
	now    func() time.Time
}

// NewEngine constructs an engine at neutral. events may be nil.
func NewEngine(cfg Config, events *bus.Bus, log zerolog.Logger) *Engine {
	if events == nil {
		events = bus.New(log)
	}
	e := &Engine{
		cfg:    cfg.withDefaults(),
		events: events,
		log:    log,
		now:    time.Now,
	}
	e.current = NewState(Neutral, 0.5, e.now())
	return e
}

// Start enables per-frame updates. Idempotent.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return
	}
	e.running = true
}

// Stop disables per-frame updates. Idempotent.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
}

// Destroy stops the engine and drops retained state. Safe to call
// multiple times.
func (e *Engine) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
	e.destroyed = true
	e.trans = nil
	e.history = nil
}

// SetEmotion records the current state into history and begins a
// transition toward the target. Duration scales with emotional distance
// and shrinks under momentum, clamped to the configured bounds.
func (e *Engine) SetEmotion(target Emotion, intensity float64) {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}

	now := e.now()
	e.pushHistory(e.current, now)

	d := Distance(e.current.Type, target)
	duration := time.Duration(float64(e.cfg.TransitionSpeed) * d)

	if target == e.lastTarget && now.Sub(e.lastSetAt) <= e.cfg.GestureWindow {
		e.repeatCount++
		shrink := 0.15 * float64(e.repeatCount)
		if shrink > e.cfg.Inertia {
			shrink = e.cfg.Inertia
		}
		duration = time.Duration(float64(duration) * (1 - shrink))
	} else {
		e.repeatCount = 0
	}
	e.lastTarget = target
	e.lastSetAt = now

	if duration < e.cfg.MinTransition {
		duration = e.cfg.MinTransition
	}
	if duration > e.cfg.MaxTransition {
		duration = e.cfg.MaxTransition
	}

	e.trans = &transition{
		from:     e.current,
		to:       NewState(target, intensity, now),
		started:  now,
		duration: duration,
	}
	e.progress = 0

	from := e.current.Type
	e.mu.Unlock()

	e.log.Debug().
		Str("from", string(from)).
		Str("to", string(target)).
		Dur("duration", duration).
		Float64("distance", d).
		Msg("emotion transition started")
	e.publish(bus.EventTransitionStarted, map[string]any{
		"from": from, "to": target, "duration": duration,
	})
}

// SetEmotionImmediate snaps state, canceling any in-flight transition.
func (e *Engine) SetEmotionImmediate(target Emotion, intensity float64) {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}

	now := e.now()
	e.pushHistory(e.current, now)
	e.current = NewState(target, intensity, now)
	e.trans = nil
	e.progress = 0
	e.repeatCount = 0
	e.lastTarget = target
	e.lastSetAt = now

	intensitySet := e.current.Intensity
	e.mu.Unlock()

	e.publish(bus.EventEmotionChanged, map[string]any{
		"emotion": target, "intensity": intensitySet,
	})
}

// Update advances the active transition. Called once per frame by the
// scheduler while the engine is started.
func (e *Engine) Update(now time.Time) {
	e.mu.Lock()
	if !e.running || e.trans == nil {
		e.mu.Unlock()
		return
	}

	raw := float64(now.Sub(e.trans.started)) / float64(e.trans.duration)
	if raw >= 1 {
		e.current = e.trans.to
		e.current.Timestamp = now
		e.trans = nil
		e.progress = 0
		done := e.current
		e.mu.Unlock()

		e.publish(bus.EventTransitionCompleted, map[string]any{
			"emotion": done.Type, "intensity": done.Intensity,
		})
		e.publish(bus.EventEmotionChanged, map[string]any{
			"emotion": done.Type, "intensity": done.Intensity,
		})
		return
	}

	e.progress = ease(e.cfg.Easing, raw)
	intensity := params.Lerp(e.trans.from.Intensity, e.trans.to.Intensity, e.progress)
	kind := e.trans.from.Type
	if e.progress >= 0.5 {
		kind = e.trans.to.Type
	}
	e.current = State{Type: kind, Intensity: clamp01(intensity), Timestamp: now}
	e.mu.Unlock()
}

// CurrentState returns a copy of the displayed state.
func (e *Engine) CurrentState() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current
}

// TargetState returns the in-flight target, or the current state when no
// transition is active.
func (e *Engine) TargetState() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.trans != nil {
		return e.trans.to
	}
	return e.current
}

// IsTransitioning reports whether a transition is in flight.
func (e *Engine) IsTransitioning() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.trans != nil
}

// BlendedState derives the primary/secondary weighted snapshot from the
// active transition. Outside a transition the current emotion is the
// sole primary.
func (e *Engine) BlendedState() Blended {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.trans == nil {
		return Blended{
			Primary:       e.current.Type,
			PrimaryWeight: 1,
			BlendProgress: 1,
		}
	}

	p := e.progress
	b := Blended{BlendProgress: p}
	if p >= 0.5 {
		b.Primary, b.PrimaryWeight = e.trans.to.Type, p
		b.Secondary, b.SecondaryWeight = e.trans.from.Type, 1-p
	} else {
		b.Primary, b.PrimaryWeight = e.trans.from.Type, 1-p
		b.Secondary, b.SecondaryWeight = e.trans.to.Type, p
	}
	if b.SecondaryWeight < 0.05 {
		b.Secondary, b.SecondaryWeight = "", 0
		b.PrimaryWeight = 1
	}
	return b
}

// History returns a copy of the recent state history (newest last).
func (e *Engine) History() []State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]State, len(e.history))
	copy(out, e.history)
	return out
}

// pushHistory appends a state and trims by count and age. Caller holds
// the lock.
func (e *Engine) pushHistory(s State, now time.Time) {
	e.history = append(e.history, s)
	cutoff := now.Add(-e.cfg.HistoryWindow)
	trimmed := e.history[:0]
	for _, h := range e.history {
		if h.Timestamp.After(cutoff) {
			trimmed = append(trimmed, h)
		}
	}
	e.history = trimmed
	if len(e.history) > maxHistory {
		e.history = e.history[len(e.history)-maxHistory:]
	}
}

func (e *Engine) publish(t bus.EventType, data map[string]any) {
	e.events.Publish(bus.Event{Type: t, Data: data})
}
