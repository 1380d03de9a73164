package context

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/normanking/emotive/internal/bus"
	"github.com/normanking/emotive/internal/emotion"
	"github.com/normanking/emotive/internal/params"
)

// Atmosphere is the coarse mood of the whole conversation.
type Atmosphere string

const (
	AtmosphereWarm       Atmosphere = "warm"
	AtmosphereTense      Atmosphere = "tense"
	AtmosphereCasual     Atmosphere = "casual"
	AtmosphereSerious    Atmosphere = "serious"
	AtmospherePlayful    Atmosphere = "playful"
	AtmosphereMelancholy Atmosphere = "melancholy"
	AtmosphereNeutral    Atmosphere = "neutral"
)

// atmosphereMembers assigns each emotion to an atmosphere. Recomputed by
// membership lookup on every call, never incrementally mutated.
var atmosphereMembers = map[Atmosphere][]emotion.Emotion{
	AtmosphereWarm:       {emotion.Loving, emotion.Grateful, emotion.Happy, emotion.Relieved, emotion.Hopeful},
	AtmosphereTense:      {emotion.Angry, emotion.Fear, emotion.Anxious, emotion.Disgust, emotion.Contempt},
	AtmospherePlayful:    {emotion.Playful, emotion.Amused, emotion.Excited, emotion.Surprised},
	AtmosphereSerious:    {emotion.Thinking, emotion.Determined, emotion.Confused, emotion.Curious},
	AtmosphereMelancholy: {emotion.Sad, emotion.Lonely, emotion.Disappointed, emotion.Embarrassed},
	AtmosphereCasual:     {emotion.Calm, emotion.Bored, emotion.Proud},
}

func atmosphereFor(e emotion.Emotion) Atmosphere {
	for atm, members := range atmosphereMembers {
		for _, m := range members {
			if m == e {
				return atm
			}
		}
	}
	return AtmosphereNeutral
}

// emotionInertia is the per-emotion carry-over constant: strong emotions
// linger; neutral and thinking barely do.
var emotionInertia = map[emotion.Emotion]float64{
	emotion.Sad:          0.8,
	emotion.Angry:        0.75,
	emotion.Fear:         0.75,
	emotion.Lonely:       0.7,
	emotion.Loving:       0.65,
	emotion.Anxious:      0.65,
	emotion.Disappointed: 0.6,
	emotion.Happy:        0.5,
	emotion.Excited:      0.45,
	emotion.Surprised:    0.3,
	emotion.Curious:      0.25,
	emotion.Thinking:     0.15,
	emotion.Neutral:      0.1,
	emotion.Calm:         0.3,
}

func inertiaFor(e emotion.Emotion) float64 {
	if v, ok := emotionInertia[e]; ok {
		return v
	}
	return 0.4
}

// Influence is one weighted vote for an emotion, tagged with its source
// for diagnostics and tests.
type Influence struct {
	Emotion emotion.Emotion
	Weight  float64
	Source  string // "detection", "intent", "topic", "inertia", "tone"
}

// Tone is the running conversation baseline.
type Tone struct {
	BaseEmotion            emotion.Emotion
	Stability              float64 // [0,1]
	TopicStack             []Topic // bounded, max 5, newest last
	LastSignificantEmotion emotion.Emotion
	Atmosphere             Atmosphere
	EngagementLevel        float64 // [0,1]
	LastIntent             Intent
}

// Result is the resolved context-adjusted emotion for one utterance.
type Result struct {
	Emotion    emotion.Emotion
	Intensity  float64
	Intent     Intent
	Topic      Topic
	Atmosphere Atmosphere
	Influences []Influence
}

// Config tunes the context engine.
type Config struct {
	// InertiaWindow is how long a previous emotion keeps influencing
	// resolution, decaying exponentially.
	InertiaWindow time.Duration `mapstructure:"inertia_window"`
	// StabilityDecay multiplies tone stability on each mismatched
	// resolution.
	StabilityDecay float64 `mapstructure:"stability_decay"`
	// SwitchThreshold is the stability below which the baseline may
	// switch.
	SwitchThreshold float64 `mapstructure:"switch_threshold"`
	// ForceThreshold is the resolved intensity that switches the
	// baseline regardless of stability.
	ForceThreshold float64 `mapstructure:"force_threshold"`
	// UpdateThreshold is the minimum resolved intensity that touches
	// the baseline at all.
	UpdateThreshold float64 `mapstructure:"update_threshold"`
}

// DefaultConfig returns the documented thresholds.
func DefaultConfig() Config {
	return Config{
		InertiaWindow:   30 * time.Second,
		StabilityDecay:  0.7,
		SwitchThreshold: 0.3,
		ForceThreshold:  0.7,
		UpdateThreshold: 0.4,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.InertiaWindow <= 0 {
		c.InertiaWindow = d.InertiaWindow
	}
	if c.StabilityDecay <= 0 || c.StabilityDecay >= 1 {
		c.StabilityDecay = d.StabilityDecay
	}
	if c.SwitchThreshold <= 0 {
		c.SwitchThreshold = d.SwitchThreshold
	}
	if c.ForceThreshold <= 0 {
		c.ForceThreshold = d.ForceThreshold
	}
	if c.UpdateThreshold <= 0 {
		c.UpdateThreshold = d.UpdateThreshold
	}
	return c
}

type historyEntry struct {
	emotion   emotion.Emotion
	intensity float64
	at        time.Time
}

// Engine combines extractor output with inertia and topical bias. The
// anti-flicker rule lives here: a sad conversation followed by a filler
// "okay" must not instantly reset tone to neutral.
type Engine struct {
	mu   sync.RWMutex
	cfg  Config
	tone Tone
	last *historyEntry

	events *bus.Bus
	log    zerolog.Logger
	now    func() time.Time
}

// NewEngine constructs a context engine. events may be nil.
func NewEngine(cfg Config, events *bus.Bus, log zerolog.Logger) *Engine {
	if events == nil {
		events = bus.New(log)
	}
	return &Engine{
		cfg: cfg.withDefaults(),
		tone: Tone{
			BaseEmotion:     emotion.Neutral,
			Stability:       0.5,
			Atmosphere:      AtmosphereNeutral,
			EngagementLevel: 0.5,
		},
		events: events,
		log:    log,
		now:    time.Now,
	}
}

// ProcessText resolves one utterance. detected/detectedIntensity come
// from the signal extractors; intensity is clamped on entry.
func (e *Engine) ProcessText(text string, detected emotion.Emotion, detectedIntensity float64) Result {
	e.mu.Lock()

	now := e.now()
	detectedIntensity = params.Clamp01(detectedIntensity)
	intent := ClassifyIntent(text)
	topic := DetectTopic(text)

	influences := e.gatherInfluences(now, detected, detectedIntensity, intent, topic)
	resolved, intensity := resolveInfluences(influences)

	toneChanged := e.updateTone(resolved, intensity, intent, topic)
	e.tone.Atmosphere = atmosphereFor(resolved)

	e.last = &historyEntry{emotion: resolved, intensity: intensity, at: now}

	result := Result{
		Emotion:    resolved,
		Intensity:  intensity,
		Intent:     intent,
		Topic:      topic,
		Atmosphere: e.tone.Atmosphere,
		Influences: influences,
	}
	tone := e.cloneToneLocked()
	e.mu.Unlock()

	e.log.Debug().
		Str("emotion", string(resolved)).
		Float64("intensity", intensity).
		Str("intent", string(intent)).
		Str("atmosphere", string(tone.Atmosphere)).
		Msg("context resolved")
	e.events.Publish(bus.Event{Type: bus.EventIntentClassified, Data: map[string]any{
		"intent": intent, "emotion": resolved, "intensity": intensity,
	}})
	if toneChanged {
		e.events.Publish(bus.Event{Type: bus.EventToneChanged, Data: map[string]any{
			"base": tone.BaseEmotion,
		}})
	}
	return result
}

// gatherInfluences builds the weighted vote list. Caller holds the lock.
func (e *Engine) gatherInfluences(now time.Time, detected emotion.Emotion, detectedIntensity float64, intent Intent, topic Topic) []Influence {
	var out []Influence

	// 1. raw detection, weight growing with detected intensity
	if detected != "" && detectedIntensity > 0 {
		out = append(out, Influence{detected, 0.3 + detectedIntensity*0.7, "detection"})
	}

	// 2. intent bias
	if bias, ok := intentEmotionBias[intent]; ok {
		out = append(out, Influence{bias.emotion, bias.weight, "intent"})
	}

	// 3. topic bias
	if topic != "" {
		if bias, ok := topicEmotionBias[topic]; ok {
			out = append(out, Influence{bias.emotion, bias.weight, "topic"})
		}
	}

	// 4. previous entry, decayed over the inertia window
	if e.last != nil {
		elapsed := now.Sub(e.last.at)
		if elapsed < e.cfg.InertiaWindow && elapsed >= 0 {
			decay := math.Exp(-3 * float64(elapsed) / float64(e.cfg.InertiaWindow))
			w := inertiaFor(e.last.emotion) * e.last.intensity * decay
			if w > 0.01 {
				out = append(out, Influence{e.last.emotion, w, "inertia"})
			}
		}
	}

	// 5. tone baseline, weighted by its own stability
	if e.tone.BaseEmotion != "" {
		out = append(out, Influence{e.tone.BaseEmotion, 0.3 * e.tone.Stability, "tone"})
	}

	return out
}

// resolveInfluences sums weights per emotion; the highest total wins and
// intensity is its share of the whole.
func resolveInfluences(influences []Influence) (emotion.Emotion, float64) {
	if len(influences) == 0 {
		return emotion.Neutral, 0.3
	}
	totals := make(map[emotion.Emotion]float64)
	sum := 0.0
	for _, inf := range influences {
		totals[inf.Emotion] += inf.Weight
		sum += inf.Weight
	}
	best := emotion.Neutral
	bestW := -1.0
	for _, inf := range influences { // iterate the slice for determinism
		if totals[inf.Emotion] > bestW {
			best, bestW = inf.Emotion, totals[inf.Emotion]
		}
	}
	if sum <= 0 {
		return emotion.Neutral, 0.3
	}
	return best, params.Clamp01(bestW / sum)
}

// updateTone applies the anti-flicker baseline rules and reports whether
// the baseline switched. Caller holds the lock.
func (e *Engine) updateTone(resolved emotion.Emotion, intensity float64, intent Intent, topic Topic) bool {
	t := &e.tone
	t.LastIntent = intent

	if topic != "" && (len(t.TopicStack) == 0 || t.TopicStack[len(t.TopicStack)-1] != topic) {
		t.TopicStack = append(t.TopicStack, topic)
		if len(t.TopicStack) > 5 {
			t.TopicStack = t.TopicStack[len(t.TopicStack)-5:]
		}
		// topic change shakes stability
		t.Stability = params.Clamp01(t.Stability * 0.85)
	}

	if delta, ok := engagementDelta[intent]; ok {
		t.EngagementLevel = params.Clamp01(t.EngagementLevel*0.9 + (t.EngagementLevel+delta)*0.1)
	}

	if intensity > e.cfg.ForceThreshold {
		t.LastSignificantEmotion = resolved
	}

	if intensity <= e.cfg.UpdateThreshold {
		return false // too weak to touch the baseline
	}

	if resolved == t.BaseEmotion {
		t.Stability = params.Clamp01(t.Stability + 0.1)
		return false
	}

	// Mismatch: erode stability; only switch once eroded or forced.
	t.Stability *= e.cfg.StabilityDecay
	if t.Stability < e.cfg.SwitchThreshold || intensity > e.cfg.ForceThreshold {
		t.BaseEmotion = resolved
		t.Stability = 0.5
		return true
	}
	return false
}

// CurrentTone returns a copy of the running tone.
func (e *Engine) CurrentTone() Tone {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cloneToneLocked()
}

func (e *Engine) cloneToneLocked() Tone {
	t := e.tone
	t.TopicStack = append([]Topic(nil), e.tone.TopicStack...)
	return t
}

// Reset returns the engine to its initial neutral tone.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.last = nil
	e.tone = Tone{
		BaseEmotion:     emotion.Neutral,
		Stability:       0.5,
		Atmosphere:      AtmosphereNeutral,
		EngagementLevel: 0.5,
	}
}
