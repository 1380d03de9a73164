// Package eyes simulates the involuntary eye behavior that makes a
// gaze read as alive: micro-saccades, asymmetric blinking, and pupil
// and focus responses to light and emotion.
package eyes

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/normanking/emotive/internal/emotion"
	"github.com/normanking/emotive/internal/params"
)

// blinkPhase is the three-step blink state machine.
type blinkPhase int

const (
	blinkIdle blinkPhase = iota
	blinkClosing
	blinkClosed
	blinkOpening
)

// Config tunes the enhancer.
type Config struct {
	SaccadeMinInterval time.Duration `mapstructure:"saccade_min_interval"`
	SaccadeMaxInterval time.Duration `mapstructure:"saccade_max_interval"`
	SaccadeAmplitude   float64       `mapstructure:"saccade_amplitude"`
	SaccadeDecay       float64       `mapstructure:"saccade_decay"` // per second

	BlinkMinInterval time.Duration `mapstructure:"blink_min_interval"`
	BlinkMaxInterval time.Duration `mapstructure:"blink_max_interval"`
	ClosingTime      time.Duration `mapstructure:"closing_time"`
	ClosedTime       time.Duration `mapstructure:"closed_time"`
	OpeningTime      time.Duration `mapstructure:"opening_time"`
	EyeLag           time.Duration `mapstructure:"eye_lag"` // right eye trails left

	PupilRate float64 `mapstructure:"pupil_rate"` // tracker gain per second
	FocusRate float64 `mapstructure:"focus_rate"`
}

// DefaultConfig returns human-plausible timing.
func DefaultConfig() Config {
	return Config{
		SaccadeMinInterval: 400 * time.Millisecond,
		SaccadeMaxInterval: 2 * time.Second,
		SaccadeAmplitude:   0.05,
		SaccadeDecay:       6,
		BlinkMinInterval:   2 * time.Second,
		BlinkMaxInterval:   6 * time.Second,
		ClosingTime:        70 * time.Millisecond,
		ClosedTime:         50 * time.Millisecond,
		OpeningTime:        120 * time.Millisecond,
		EyeLag:             20 * time.Millisecond,
		PupilRate:          4,
		FocusRate:          6,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SaccadeMinInterval <= 0 || c.SaccadeMaxInterval <= c.SaccadeMinInterval {
		c.SaccadeMinInterval = d.SaccadeMinInterval
		c.SaccadeMaxInterval = d.SaccadeMaxInterval
	}
	if c.SaccadeAmplitude <= 0 {
		c.SaccadeAmplitude = d.SaccadeAmplitude
	}
	if c.SaccadeDecay <= 0 {
		c.SaccadeDecay = d.SaccadeDecay
	}
	if c.BlinkMinInterval <= 0 || c.BlinkMaxInterval <= c.BlinkMinInterval {
		c.BlinkMinInterval = d.BlinkMinInterval
		c.BlinkMaxInterval = d.BlinkMaxInterval
	}
	if c.ClosingTime <= 0 {
		c.ClosingTime = d.ClosingTime
	}
	if c.ClosedTime <= 0 {
		c.ClosedTime = d.ClosedTime
	}
	if c.OpeningTime <= 0 {
		c.OpeningTime = d.OpeningTime
	}
	if c.EyeLag < 0 {
		c.EyeLag = d.EyeLag
	}
	if c.PupilRate <= 0 {
		c.PupilRate = d.PupilRate
	}
	if c.FocusRate <= 0 {
		c.FocusRate = d.FocusRate
	}
	return c
}

// Enhancer produces eye-specific parameters independent of the facial
// expression pipeline.
type Enhancer struct {
	mu  sync.Mutex
	cfg Config

	saccadeX, saccadeY float64
	nextSaccade        time.Time

	phase      blinkPhase
	phaseStart time.Time
	nextBlink  time.Time

	pupil, pupilTarget float64
	focus, focusTarget float64
	lightLevel         float64
	emo                emotion.Emotion

	lastUpdate time.Time
	hasLast    bool
	running    bool

	log zerolog.Logger
	rng *rand.Rand
}

// NewEnhancer builds an enhancer at rest: eyes open, pupil mid-size,
// focus at conversational distance.
func NewEnhancer(cfg Config, log zerolog.Logger) *Enhancer {
	return &Enhancer{
		cfg:         cfg.withDefaults(),
		pupil:       0.5,
		pupilTarget: 0.5,
		focus:       1,
		focusTarget: 1,
		lightLevel:  0.5,
		emo:         emotion.Neutral,
		log:         log,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start schedules the first saccade and blink. Idempotent.
func (e *Enhancer) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = true
	e.hasLast = false
}

// Stop freezes the enhancer. Idempotent.
func (e *Enhancer) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
}

// Destroy stops and resets to the neutral pose. Safe to call twice.
func (e *Enhancer) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
	e.phase = blinkIdle
	e.saccadeX, e.saccadeY = 0, 0
}

// SetEmotion biases pupil size and blink cadence.
func (e *Enhancer) SetEmotion(emo emotion.Emotion) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emo = emo
}

// SetLightLevel sets ambient light in [0,1]; brighter light contracts
// the pupil.
func (e *Enhancer) SetLightLevel(level float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lightLevel = params.Clamp01(level)
}

// SetFocusDistance sets the gaze focus target in meters, clamped to a
// usable range.
func (e *Enhancer) SetFocusDistance(meters float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.focusTarget = params.Clamp(meters, 0.1, 10)
}

// TriggerBlink forces a blink now if one is not already in progress.
func (e *Enhancer) TriggerBlink() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase == blinkIdle {
		e.phase = blinkClosing
		e.phaseStart = e.lastUpdate
	}
}

// Update advances saccades, the blink machine, and the pupil/focus
// trackers to now.
func (e *Enhancer) Update(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return
	}
	if !e.hasLast {
		e.lastUpdate = now
		e.hasLast = true
		e.nextSaccade = now.Add(e.randomInterval(e.cfg.SaccadeMinInterval, e.cfg.SaccadeMaxInterval))
		e.nextBlink = now.Add(e.randomInterval(e.cfg.BlinkMinInterval, e.cfg.BlinkMaxInterval))
		return
	}
	dt := now.Sub(e.lastUpdate).Seconds()
	e.lastUpdate = now
	if dt <= 0 {
		return
	}
	if dt > 0.1 {
		dt = 0.1
	}

	e.updateSaccade(now, dt)
	e.updateBlink(now)
	e.updateTrackers(dt)
}

func (e *Enhancer) updateSaccade(now time.Time, dt float64) {
	if !now.Before(e.nextSaccade) {
		e.saccadeX = (e.rng.Float64()*2 - 1) * e.cfg.SaccadeAmplitude
		e.saccadeY = (e.rng.Float64()*2 - 1) * e.cfg.SaccadeAmplitude * 0.6
		e.nextSaccade = now.Add(e.randomInterval(e.cfg.SaccadeMinInterval, e.cfg.SaccadeMaxInterval))
	}
	decay := math.Exp(-e.cfg.SaccadeDecay * dt)
	e.saccadeX *= decay
	e.saccadeY *= decay
}

func (e *Enhancer) updateBlink(now time.Time) {
	switch e.phase {
	case blinkIdle:
		if !now.Before(e.nextBlink) {
			e.phase = blinkClosing
			e.phaseStart = now
		}
	case blinkClosing:
		if now.Sub(e.phaseStart) >= e.cfg.ClosingTime {
			e.phase = blinkClosed
			e.phaseStart = now
		}
	case blinkClosed:
		if now.Sub(e.phaseStart) >= e.cfg.ClosedTime {
			e.phase = blinkOpening
			e.phaseStart = now
		}
	case blinkOpening:
		if now.Sub(e.phaseStart) >= e.cfg.OpeningTime+e.cfg.EyeLag {
			e.phase = blinkIdle
			interval := e.randomInterval(e.cfg.BlinkMinInterval, e.cfg.BlinkMaxInterval)
			// agitated states blink more often, calm ones less
			switch e.emo {
			case emotion.Anxious, emotion.Fear, emotion.Surprised:
				interval = interval * 6 / 10
			case emotion.Calm, emotion.Thinking:
				interval = interval * 14 / 10
			}
			e.nextBlink = now.Add(interval)
		}
	}
}

func (e *Enhancer) updateTrackers(dt float64) {
	e.pupilTarget = pupilTargetFor(e.lightLevel, e.emo)
	e.pupil += (e.pupilTarget - e.pupil) * math.Min(e.cfg.PupilRate*dt, 1)
	e.focus += (e.focusTarget - e.focus) * math.Min(e.cfg.FocusRate*dt, 1)
}

// pupilTargetFor combines light response (dark dilates) with a per
// emotion bias (arousal dilates, disgust contracts).
func pupilTargetFor(light float64, emo emotion.Emotion) float64 {
	base := 0.75 - 0.45*light
	switch emo {
	case emotion.Excited, emotion.Surprised, emotion.Loving, emotion.Fear:
		base += 0.15
	case emotion.Disgust, emotion.Contempt:
		base -= 0.1
	case emotion.Bored:
		base -= 0.05
	}
	return params.Clamp(base, 0.15, 1)
}

// openness returns [0,1] lid openness for one eye, lag-shifted for the
// trailing eye so the blink is slightly asymmetric.
func (e *Enhancer) openness(now time.Time, lag time.Duration) float64 {
	elapsed := now.Sub(e.phaseStart) - lag
	switch e.phase {
	case blinkClosing:
		if elapsed <= 0 {
			return 1
		}
		return params.Clamp01(1 - float64(elapsed)/float64(e.cfg.ClosingTime))
	case blinkClosed:
		return 0
	case blinkOpening:
		if elapsed <= 0 {
			return 0
		}
		return params.Clamp01(float64(elapsed) / float64(e.cfg.OpeningTime))
	default:
		return 1
	}
}

// Params returns the current eye parameter map.
func (e *Enhancer) Params(now time.Time) params.Map {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := params.New()
	out.Set("eyeSaccadeX", e.saccadeX)
	out.Set("eyeSaccadeY", e.saccadeY)
	out.Set("eyeOpenL", e.openness(now, 0))
	out.Set("eyeOpenR", e.openness(now, e.cfg.EyeLag))
	out.Set("pupilSize", e.pupil)
	out.Set("focusDistance", e.focus/10) // normalized for the param map
	return out
}

// IsBlinking reports whether a blink is in progress.
func (e *Enhancer) IsBlinking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase != blinkIdle
}

func (e *Enhancer) randomInterval(min, max time.Duration) time.Duration {
	return min + time.Duration(e.rng.Int63n(int64(max-min)))
}
