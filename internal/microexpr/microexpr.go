// Package microexpr layers small stochastic facial motion on top of the
// base expression: slow random drift of brows, eye wander and mouth
// corners, a low-frequency emotional flutter, and short reactive bursts
// fired off recognized text.
package microexpr

import (
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/normanking/emotive/internal/bus"
	"github.com/normanking/emotive/internal/emotion"
	"github.com/normanking/emotive/internal/params"
)

// subGen is one independent drift channel. It rolls a new random target
// on its own randomized schedule and eases the displayed value toward
// it every frame, which reads as organic wandering instead of jumps.
type subGen struct {
	enabled    bool
	frequency  float64 // target rolls per minute
	amplitude  float64 // max |offset|
	asymmetry  float64 // [0,1], how far left/right may diverge
	smoothness float64 // [0,1), per-frame retention of current value

	paramL, paramR string

	nextRoll           time.Time
	targetL, targetR   float64
	currentL, currentR float64
}

func (g *subGen) roll(now time.Time, rng *rand.Rand) {
	base := (rng.Float64()*2 - 1) * g.amplitude
	split := (rng.Float64()*2 - 1) * g.asymmetry * g.amplitude
	g.targetL = params.ClampSigned(base + split)
	g.targetR = params.ClampSigned(base - split)

	interval := 60000.0 / g.frequency * (0.5 + rng.Float64())
	g.nextRoll = now.Add(time.Duration(interval) * time.Millisecond)
}

func (g *subGen) update(now time.Time, rng *rand.Rand) {
	if !g.enabled {
		return
	}
	if !now.Before(g.nextRoll) {
		g.roll(now, rng)
	}
	k := 1 - g.smoothness
	g.currentL += (g.targetL - g.currentL) * k
	g.currentR += (g.targetR - g.currentR) * k
}

// burst is a queued reactive expression spike.
type burst struct {
	kind     string
	started  time.Time
	duration time.Duration
	deltas   params.Map
}

// envelope is a triangular fade: 20% of the duration ramping in, 20%
// ramping out, full strength between.
func (b *burst) envelope(now time.Time) float64 {
	p := float64(now.Sub(b.started)) / float64(b.duration)
	switch {
	case p < 0, p > 1:
		return 0
	case p < 0.2:
		return p / 0.2
	case p > 0.8:
		return (1 - p) / 0.2
	default:
		return 1
	}
}

// Config tunes the generator.
type Config struct {
	BrowFrequency  float64 `mapstructure:"brow_frequency"`
	EyeFrequency   float64 `mapstructure:"eye_frequency"`
	MouthFrequency float64 `mapstructure:"mouth_frequency"`
	Smoothness     float64 `mapstructure:"smoothness"`
	// FlutterAmplitude scales the sinusoidal emotion wobble.
	FlutterAmplitude float64 `mapstructure:"flutter_amplitude"`
}

// DefaultConfig returns the tuning used in the shipped avatar.
func DefaultConfig() Config {
	return Config{
		BrowFrequency:    10,
		EyeFrequency:     16,
		MouthFrequency:   8,
		Smoothness:       0.88,
		FlutterAmplitude: 0.04,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BrowFrequency <= 0 {
		c.BrowFrequency = d.BrowFrequency
	}
	if c.EyeFrequency <= 0 {
		c.EyeFrequency = d.EyeFrequency
	}
	if c.MouthFrequency <= 0 {
		c.MouthFrequency = d.MouthFrequency
	}
	if c.Smoothness <= 0 || c.Smoothness >= 1 {
		c.Smoothness = d.Smoothness
	}
	if c.FlutterAmplitude <= 0 {
		c.FlutterAmplitude = d.FlutterAmplitude
	}
	return c
}

// Generator owns the drift channels and active bursts.
type Generator struct {
	mu  sync.Mutex
	cfg Config

	gens   []*subGen
	bursts []burst

	emo       emotion.Emotion
	intensity float64
	epoch     time.Time

	running bool

	events *bus.Bus
	log    zerolog.Logger
	rng    *rand.Rand
	now    func() time.Time
}

// NewGenerator builds a generator with brow, eye-wander and mouth
// channels. events may be nil.
func NewGenerator(cfg Config, events *bus.Bus, log zerolog.Logger) *Generator {
	if events == nil {
		events = bus.New(log)
	}
	cfg = cfg.withDefaults()
	g := &Generator{
		cfg:    cfg,
		emo:    emotion.Neutral,
		events: events,
		log:    log,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
	}
	g.epoch = g.now()
	g.gens = []*subGen{
		{enabled: true, frequency: cfg.BrowFrequency, amplitude: 0.15, asymmetry: 0.4,
			smoothness: cfg.Smoothness, paramL: "browL", paramR: "browR"},
		{enabled: true, frequency: cfg.EyeFrequency, amplitude: 0.08, asymmetry: 0.1,
			smoothness: cfg.Smoothness, paramL: "eyeWanderX", paramR: "eyeWanderY"},
		{enabled: true, frequency: cfg.MouthFrequency, amplitude: 0.1, asymmetry: 0.5,
			smoothness: cfg.Smoothness, paramL: "mouthCornerL", paramR: "mouthCornerR"},
	}
	return g
}

// Start enables per-frame updates. Idempotent.
func (g *Generator) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.running = true
}

// Stop freezes the generator in place. Idempotent.
func (g *Generator) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.running = false
}

// Destroy stops the generator and drops queued bursts. Safe to call
// more than once.
func (g *Generator) Destroy() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.running = false
	g.bursts = nil
}

// SetEmotion feeds the current blended emotion into the flutter term.
func (g *Generator) SetEmotion(e emotion.Emotion, intensity float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.emo = e
	g.intensity = params.Clamp01(intensity)
}

// Update advances all channels and expires finished bursts.
func (g *Generator) Update(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.running {
		return
	}
	for _, sg := range g.gens {
		sg.update(now, g.rng)
	}
	kept := g.bursts[:0]
	for _, b := range g.bursts {
		if now.Sub(b.started) < b.duration {
			kept = append(kept, b)
		}
	}
	g.bursts = kept
}

// Params returns the current micro-expression offsets as a fresh map.
func (g *Generator) Params(now time.Time) params.Map {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := params.New()
	for _, sg := range g.gens {
		if !sg.enabled {
			continue
		}
		out.Set(sg.paramL, sg.currentL)
		out.Set(sg.paramR, sg.currentR)
	}

	// low-frequency sinusoidal flutter scaled by emotional intensity
	t := now.Sub(g.epoch).Seconds()
	flutter := math.Sin(t*2*math.Pi*flutterHz(g.emo)) * g.cfg.FlutterAmplitude * g.intensity
	out.Accumulate("browL", flutter)
	out.Accumulate("browR", flutter)

	for i := range g.bursts {
		env := g.bursts[i].envelope(now)
		if env <= 0 {
			continue
		}
		for k, v := range g.bursts[i].deltas {
			out.Accumulate(k, v*env)
		}
	}
	return out
}

// flutterHz is the wobble frequency per emotion. Agitated states
// flutter faster than settled ones.
func flutterHz(e emotion.Emotion) float64 {
	switch e {
	case emotion.Excited, emotion.Surprised, emotion.Fear, emotion.Anxious:
		return 0.9
	case emotion.Angry, emotion.Disgust:
		return 0.7
	case emotion.Calm, emotion.Bored:
		return 0.15
	default:
		return 0.35
	}
}

// reactionDefs maps burst kinds to their parameter deltas and length.
var reactionDefs = map[string]struct {
	duration time.Duration
	deltas   params.Map
}{
	"smile_flash": {600 * time.Millisecond, params.Map{
		"mouthCornerL": 0.5, "mouthCornerR": 0.5, "cheekRaise": 0.3,
	}},
	"brow_raise": {500 * time.Millisecond, params.Map{
		"browL": 0.6, "browR": 0.6, "eyeOpen": 0.2,
	}},
	"frown_flash": {700 * time.Millisecond, params.Map{
		"browL": -0.4, "browR": -0.4, "mouthCornerL": -0.35, "mouthCornerR": -0.35,
	}},
	"eye_widen": {400 * time.Millisecond, params.Map{
		"eyeOpen": 0.6, "browL": 0.3, "browR": 0.3,
	}},
	"wince": {550 * time.Millisecond, params.Map{
		"eyeOpen": -0.5, "noseScrunch": 0.4, "browL": -0.2, "browR": -0.2,
	}},
	"pout": {900 * time.Millisecond, params.Map{
		"mouthPout": 0.6, "browL": -0.15, "browR": -0.15,
	}},
}

// TriggerReaction queues a reactive burst by kind. Unknown kinds are a
// logged no-op.
func (g *Generator) TriggerReaction(kind string) {
	def, ok := reactionDefs[kind]
	if !ok {
		g.log.Debug().Str("kind", kind).Msg("unknown reaction kind")
		return
	}

	g.mu.Lock()
	g.bursts = append(g.bursts, burst{
		kind:     kind,
		started:  g.now(),
		duration: def.duration,
		deltas:   def.deltas,
	})
	g.mu.Unlock()

	g.events.Publish(bus.Event{Type: bus.EventReactionBurst, Data: map[string]any{
		"kind": kind,
	}})
}

// reactionKeywords routes recognized text fragments to burst kinds.
// First match wins.
var reactionKeywords = []struct {
	kind  string
	words []string
}{
	{"smile_flash", []string{"haha", "lol", "funny", "哈哈", "好笑"}},
	{"eye_widen", []string{"wow", "what!", "really", "哇", "真的吗"}},
	{"frown_flash", []string{"terrible", "awful", "hate", "讨厌", "糟糕"}},
	{"wince", []string{"ouch", "hurt", "pain", "疼", "痛"}},
	{"pout", []string{"unfair", "hmph", "不公平", "哼"}},
	{"brow_raise", []string{"hm?", "oh?", "interesting", "有意思"}},
}

// AnalyzeAndReact scans text for burst-worthy fragments and queues the
// first matching reaction. Returns the kind fired, or "".
func (g *Generator) AnalyzeAndReact(text string) string {
	lower := strings.ToLower(text)
	for _, rk := range reactionKeywords {
		for _, w := range rk.words {
			if strings.Contains(lower, w) {
				g.TriggerReaction(rk.kind)
				return rk.kind
			}
		}
	}
	return ""
}
