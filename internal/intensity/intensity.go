// Package intensity is the final gain stage on expression strength. It
// multiplies a handful of slow-moving factors (fatigue, time of day,
// conversation pressure, per-emotion character, learned user taste)
// into one clamped multiplier.
package intensity

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/normanking/emotive/internal/emotion"
	"github.com/normanking/emotive/internal/params"
)

// Config bounds the modulator.
type Config struct {
	MinIntensity float64 `mapstructure:"min_intensity"`
	MaxIntensity float64 `mapstructure:"max_intensity"`
	// FatigueTurnCap and FatigueSessionCap bound how much each source
	// can contribute to fatigue.
	FatigueTurnCap    float64 `mapstructure:"fatigue_turn_cap"`
	FatigueSessionCap float64 `mapstructure:"fatigue_session_cap"`
	// RecoveryPerMinute is fatigue shed per idle minute between calls.
	RecoveryPerMinute float64 `mapstructure:"recovery_per_minute"`
}

// DefaultConfig returns the shipped bounds.
func DefaultConfig() Config {
	return Config{
		MinIntensity:      0.1,
		MaxIntensity:      1,
		FatigueTurnCap:    0.25,
		FatigueSessionCap: 0.2,
		RecoveryPerMinute: 0.05,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MinIntensity <= 0 {
		c.MinIntensity = d.MinIntensity
	}
	if c.MaxIntensity <= c.MinIntensity {
		c.MaxIntensity = d.MaxIntensity
	}
	if c.FatigueTurnCap <= 0 {
		c.FatigueTurnCap = d.FatigueTurnCap
	}
	if c.FatigueSessionCap <= 0 {
		c.FatigueSessionCap = d.FatigueSessionCap
	}
	if c.RecoveryPerMinute <= 0 {
		c.RecoveryPerMinute = d.RecoveryPerMinute
	}
	return c
}

// combined multiplier bounds, applied before the base intensity clamp
const (
	minMultiplier = 0.3
	maxMultiplier = 1.5
)

// emotionGain is the built-in per-emotion character: some emotions are
// expressed big, some stay restrained.
var emotionGain = map[emotion.Emotion]float64{
	emotion.Excited:   1.25,
	emotion.Surprised: 1.2,
	emotion.Angry:     1.15,
	emotion.Happy:     1.1,
	emotion.Fear:      1.1,
	emotion.Playful:   1.1,
	emotion.Sad:       0.85,
	emotion.Calm:      0.75,
	emotion.Bored:     0.7,
	emotion.Thinking:  0.8,
	emotion.Neutral:   0.9,
}

// learned tracks a running average of observed intensities for one
// emotion. Only trusted once it has enough samples.
type learned struct {
	sum   float64
	count int
}

// Modulator combines all factors. All methods are safe for concurrent
// use.
type Modulator struct {
	mu  sync.Mutex
	cfg Config

	turns        int
	sessionStart time.Time
	lastCall     time.Time
	fatigue      float64

	urgency         float64
	emotionalWeight float64

	learnedGain map[emotion.Emotion]*learned

	preferred    float64
	hasPreferred bool

	log zerolog.Logger
	now func() time.Time
}

// NewModulator builds a fresh modulator with no session history.
func NewModulator(cfg Config, log zerolog.Logger) *Modulator {
	m := &Modulator{
		cfg:         cfg.withDefaults(),
		learnedGain: make(map[emotion.Emotion]*learned),
		log:         log,
		now:         time.Now,
	}
	m.sessionStart = m.now()
	m.lastCall = m.sessionStart
	return m
}

// SetConversationState feeds externally-assessed urgency and emotional
// weight, both clamped to [0,1].
func (m *Modulator) SetConversationState(urgency, emotionalWeight float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urgency = params.Clamp01(urgency)
	m.emotionalWeight = params.Clamp01(emotionalWeight)
}

// RecordFeedback teaches the preferred-intensity tracker. positive
// feedback pulls the preference toward the shown intensity; negative
// feedback first discounts the remembered value by 20%.
func (m *Modulator) RecordFeedback(shownIntensity float64, positive bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	shown := params.Clamp01(shownIntensity)
	if !positive {
		shown *= 0.8
	}
	if !m.hasPreferred {
		m.preferred = shown
		m.hasPreferred = true
		return
	}
	m.preferred += (shown - m.preferred) * 0.3
}

// Modulate applies the combined multiplier to base for the given
// emotion and advances the per-turn trackers.
func (m *Modulator) Modulate(base float64, emo emotion.Emotion) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.advanceFatigue(now)
	m.turns++
	m.lastCall = now

	mult := m.fatigueFactor() *
		timeOfDayFactor(now) *
		m.conversationalFactor() *
		m.emotionalFactor(emo) *
		m.personalizedFactor(base)

	mult = params.Clamp(mult, minMultiplier, maxMultiplier)
	out := params.Clamp01(base) * mult
	return params.Clamp(out, m.cfg.MinIntensity, m.cfg.MaxIntensity)
}

// Learn records an observed expressed intensity for an emotion; once
// three samples exist the learned average blends into the gain table.
func (m *Modulator) Learn(emo emotion.Emotion, observed float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := m.learnedGain[emo]
	if l == nil {
		l = &learned{}
		m.learnedGain[emo] = l
	}
	l.sum += params.Clamp01(observed)
	l.count++
}

// Fatigue exposes the current fatigue scalar for observability.
func (m *Modulator) Fatigue() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fatigue
}

// Reset clears session state but keeps learned preferences.
func (m *Modulator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = 0
	m.fatigue = 0
	m.sessionStart = m.now()
	m.lastCall = m.sessionStart
	m.urgency = 0
	m.emotionalWeight = 0
}

// advanceFatigue grows fatigue from turn count and session length, both
// capped, then sheds idle-time recovery since the last call.
func (m *Modulator) advanceFatigue(now time.Time) {
	turnPart := params.Clamp(float64(m.turns)*0.004, 0, m.cfg.FatigueTurnCap)
	sessionPart := params.Clamp(now.Sub(m.sessionStart).Hours()*0.15, 0, m.cfg.FatigueSessionCap)
	recovery := now.Sub(m.lastCall).Minutes() * m.cfg.RecoveryPerMinute
	m.fatigue = params.Clamp(turnPart+sessionPart-recovery, 0, 0.5)
}

func (m *Modulator) fatigueFactor() float64 {
	return 1 - m.fatigue
}

// timeOfDayFactor is a deliberate 3-level step: subdued late night,
// full during the day, slightly soft in the evening.
func timeOfDayFactor(now time.Time) float64 {
	switch h := now.Hour(); {
	case h >= 22 || h < 7:
		return 0.85
	case h >= 18:
		return 0.95
	default:
		return 1
	}
}

func (m *Modulator) conversationalFactor() float64 {
	return 1 + m.urgency*0.2 + m.emotionalWeight*0.15
}

func (m *Modulator) emotionalFactor(emo emotion.Emotion) float64 {
	gain, ok := emotionGain[emo]
	if !ok {
		gain = 1
	}
	if l := m.learnedGain[emo]; l != nil && l.count >= 3 {
		avg := l.sum / float64(l.count)
		// learned average in [0,1] recentered around 1 as a gain
		gain = 0.5*gain + 0.5*(0.5+avg)
	}
	return gain
}

// personalizedFactor nudges output toward the learned preferred
// intensity relative to what the caller asked for.
func (m *Modulator) personalizedFactor(base float64) float64 {
	if !m.hasPreferred || base <= 0 {
		return 1
	}
	ratio := m.preferred / params.Clamp(base, 0.05, 1)
	return params.Clamp(ratio, 0.7, 1.3)
}
