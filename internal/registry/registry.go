// Package registry assembles the behavior core: it constructs every
// subsystem, wires their event flow, registers them on the shared
// scheduler, and exposes the composed parameter output. It replaces
// hidden singletons with one explicit handle; tests build isolated
// cores and the process default lives behind Default/ResetDefault.
package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/normanking/emotive/internal/bus"
	"github.com/normanking/emotive/internal/config"
	ctxengine "github.com/normanking/emotive/internal/context"
	"github.com/normanking/emotive/internal/emotion"
	"github.com/normanking/emotive/internal/eyes"
	"github.com/normanking/emotive/internal/intensity"
	"github.com/normanking/emotive/internal/lighting"
	"github.com/normanking/emotive/internal/memory"
	"github.com/normanking/emotive/internal/microexpr"
	"github.com/normanking/emotive/internal/params"
	"github.com/normanking/emotive/internal/physics"
	"github.com/normanking/emotive/internal/sched"
	"github.com/normanking/emotive/internal/sense"
	"github.com/normanking/emotive/internal/touch"
)

// Core is the assembled behavior engine.
type Core struct {
	Bus       *bus.Bus
	Emotion   *emotion.Engine
	Context   *ctxengine.Engine
	Touch     *touch.Engine
	Memory    *memory.System
	Micro     *microexpr.Generator
	Eyes      *eyes.Enhancer
	Physics   *physics.Simulator
	Lighting  *lighting.Engine
	Intensity *intensity.Modulator
	Scheduler *sched.Scheduler
	Voice     *sense.VoiceAnalyzer

	mu       sync.Mutex
	weather  lighting.Weather
	renderer sense.RendererBinding

	log zerolog.Logger
	now func() time.Time
}

// New builds and wires a core from configuration. log is the component
// root; each subsystem gets its own tagged sub-logger.
func New(cfg *config.Config, log zerolog.Logger) (*Core, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	b := bus.New(log.With().Str("component", "bus").Logger())
	c := &Core{
		Bus:       b,
		Emotion:   emotion.NewEngine(cfg.Emotion, b, log.With().Str("component", "emotion").Logger()),
		Context:   ctxengine.NewEngine(cfg.Context, b, log.With().Str("component", "context").Logger()),
		Touch:     touch.NewEngine(cfg.Touch, b, log.With().Str("component", "touch").Logger()),
		Memory:    memory.NewSystem(cfg.Memory, b, log.With().Str("component", "memory").Logger()),
		Micro:     microexpr.NewGenerator(cfg.MicroExpr, b, log.With().Str("component", "microexpr").Logger()),
		Eyes:      eyes.NewEnhancer(cfg.Eyes, log.With().Str("component", "eyes").Logger()),
		Physics:   physics.NewSimulator(physics.DefaultConfig(), log.With().Str("component", "physics").Logger()),
		Lighting:  lighting.NewEngine(b, log.With().Str("component", "lighting").Logger()),
		Intensity: intensity.NewModulator(cfg.Intensity, log.With().Str("component", "intensity").Logger()),
		Scheduler: sched.New(cfg.Scheduler.FrameInterval, log.With().Str("component", "sched").Logger()),
		Voice:     sense.NewVoiceAnalyzer(),
		weather:   lighting.Clear,
		log:       log,
		now:       time.Now,
	}

	for _, chain := range cfg.Physics.Chains {
		if _, err := c.Physics.CreateChain(chain.Name, chain.Points, mgl32.Vec3{0, 1.5, 0}, cfg.Physics.Spring); err != nil {
			return nil, fmt.Errorf("building chain %q: %w", chain.Name, err)
		}
	}

	c.wireEvents()
	c.registerTasks()
	return c, nil
}

// wireEvents connects cross-subsystem reactions over the bus.
func (c *Core) wireEvents() {
	// learned transition naturalness
	c.Bus.Subscribe(bus.EventTransitionStarted, func(ev bus.Event) {
		from, _ := ev.Data["from"].(emotion.Emotion)
		to, _ := ev.Data["to"].(emotion.Emotion)
		if from != "" && to != "" {
			c.Memory.RecordTransition(from, to)
		}
	})

	// touch reactions drive the displayed emotion
	c.Bus.Subscribe(bus.EventTouchReaction, func(ev bus.Event) {
		mood, _ := ev.Data["mood"].(touch.Mood)
		if mood == "" || mood == touch.MoodNeutral {
			return
		}
		emo := emotion.Parse(string(mood))
		c.Emotion.SetEmotion(emo, c.Intensity.Modulate(0.6, emo))
		c.Eyes.SetEmotion(emo)
	})

	// the breaker bypasses transitions entirely
	c.Bus.Subscribe(bus.EventExcessiveTouch, func(bus.Event) {
		emo := emotion.Parse("annoyed")
		c.Emotion.SetEmotionImmediate(emo, 0.8)
		c.Micro.TriggerReaction("frown_flash")
		c.Eyes.SetEmotion(emo)
	})

	// tone shifts recolor the scene
	c.Bus.Subscribe(bus.EventToneChanged, func(ev bus.Event) {
		base, _ := ev.Data["base"].(emotion.Emotion)
		if base == "" {
			return
		}
		c.mu.Lock()
		w := c.weather
		c.mu.Unlock()
		c.Lighting.SetConditions(base, lighting.TimeOfDayFor(c.now()), w)
	})
}

// registerTasks puts every animating subsystem on the frame loop.
func (c *Core) registerTasks() {
	c.Scheduler.Register("emotion", c.Emotion.Update)
	c.Scheduler.Register("microexpr", c.Micro.Update)
	c.Scheduler.Register("eyes", c.Eyes.Update)
	c.Scheduler.Register("physics", c.Physics.Update)
	c.Scheduler.Register("touch", c.Touch.Update)
	c.Scheduler.Register("compose", func(now time.Time) {
		c.mu.Lock()
		r := c.renderer
		c.mu.Unlock()
		if r != nil {
			r.Apply(c.Compose(now))
		}
	})
}

// Start brings the whole core online. Idempotent.
func (c *Core) Start() {
	c.Emotion.Start()
	c.Micro.Start()
	c.Eyes.Start()
	c.Physics.Start()
	c.Touch.Start()
	c.Lighting.Start()
	c.Scheduler.Start()
}

// Stop freezes every subsystem. Idempotent.
func (c *Core) Stop() {
	c.Scheduler.Stop()
	c.Emotion.Stop()
	c.Micro.Stop()
	c.Eyes.Stop()
	c.Physics.Stop()
	c.Touch.Stop()
	c.Lighting.Stop()
}

// Destroy tears the core down. Safe to call more than once.
func (c *Core) Destroy() {
	c.Scheduler.Destroy()
	c.Emotion.Destroy()
	c.Micro.Destroy()
	c.Eyes.Destroy()
	c.Physics.Destroy()
	c.Touch.Destroy()
	c.Lighting.Destroy()
	c.Bus.Clear()
}

// Bind attaches the renderer that receives the composed parameter map
// every frame.
func (c *Core) Bind(r sense.RendererBinding) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renderer = r
}

// SetWeather updates the ambient weather input for lighting.
func (c *Core) SetWeather(w lighting.Weather) {
	c.mu.Lock()
	c.weather = w
	c.mu.Unlock()
	tone := c.Context.CurrentTone()
	c.Lighting.SetConditions(tone.BaseEmotion, lighting.TimeOfDayFor(c.now()), w)
}

// ProcessedText is the outcome of running one utterance through the
// full pipeline.
type ProcessedText struct {
	Context  ctxengine.Result
	Applied  float64 // intensity after modulation
	Variant  string
	Reaction string // micro-expression burst fired, if any
}

// ProcessText runs one utterance through detection, context resolution,
// intensity modulation, the transition engine, variant selection and
// scene lighting.
func (c *Core) ProcessText(text string) ProcessedText {
	det := sense.AnalyzeText(text)
	res := c.Context.ProcessText(text, det.Emotion, det.Confidence)

	applied := c.Intensity.Modulate(res.Intensity, res.Emotion)
	c.Emotion.SetEmotion(res.Emotion, applied)
	c.Eyes.SetEmotion(res.Emotion)
	c.Intensity.Learn(res.Emotion, applied)

	reaction := c.Micro.AnalyzeAndReact(text)
	variant := c.Memory.PickVariant(res.Emotion, string(res.Atmosphere))

	c.mu.Lock()
	w := c.weather
	c.mu.Unlock()
	c.Lighting.SetConditions(res.Emotion, lighting.TimeOfDayFor(c.now()), w)

	return ProcessedText{Context: res, Applied: applied, Variant: variant, Reaction: reaction}
}

// ProcessVoice maps voice features to an emotion and feeds it through
// the same downstream path as text.
func (c *Core) ProcessVoice(f sense.VoiceFeatures) (sense.VoiceResult, error) {
	res, err := c.Voice.Analyze(f)
	if err != nil {
		return res, err
	}
	applied := c.Intensity.Modulate(res.Confidence, res.Emotion)
	c.Emotion.SetEmotion(res.Emotion, applied)
	c.Eyes.SetEmotion(res.Emotion)
	return res, nil
}

// HandleTouch routes one raw touch event into the classifier.
func (c *Core) HandleTouch(t sense.RawTouch) {
	switch t.Phase {
	case sense.TouchPress:
		c.Touch.Press(t.Area, mgl64Vec(t.X, t.Y), t.Pressure)
	case sense.TouchMove:
		c.Touch.Move(mgl64Vec(t.X, t.Y))
	case sense.TouchRelease:
		c.Touch.Release(mgl64Vec(t.X, t.Y))
	}
}

// AttachSources subscribes the core to its input collaborators. Any of
// the three may be nil.
func (c *Core) AttachSources(text sense.TextSource, voice sense.VoiceSource, touchSrc sense.TouchSource) {
	if text != nil {
		text.OnText(func(t string) { c.ProcessText(t) })
	}
	if voice != nil {
		voice.OnFeatures(func(f sense.VoiceFeatures) { c.ProcessVoice(f) })
	}
	if touchSrc != nil {
		touchSrc.OnTouch(c.HandleTouch)
	}
}

// Compose merges per-frame subsystem output into the flat parameter map
// the renderer binding consumes.
func (c *Core) Compose(now time.Time) params.Map {
	out := c.Micro.Params(now)
	params.Merge(out, c.Eyes.Params(now))

	state := c.Emotion.CurrentState()
	out.Set("emotionIntensity", state.Intensity)

	for _, id := range c.Physics.ChainIDs() {
		for i, po := range c.Physics.Outputs(id) {
			out.Set(fmt.Sprintf("%s.%d.rotX", id, i), float64(po.Rotation.X()))
			out.Set(fmt.Sprintf("%s.%d.rotY", id, i), float64(po.Rotation.Y()))
			out.Set(fmt.Sprintf("%s.%d.offY", id, i), float64(po.Offset.Y()))
		}
	}
	return out
}

// package-level default core, for hosts that want exactly one

var (
	defaultMu   sync.Mutex
	defaultCore *Core
)

// Default returns the lazily-built process-wide core.
func Default() (*Core, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultCore != nil {
		return defaultCore, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	core, err := New(cfg, zerolog.Nop())
	if err != nil {
		return nil, err
	}
	defaultCore = core
	return defaultCore, nil
}

// ResetDefault destroys the process-wide core so tests start clean.
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultCore != nil {
		defaultCore.Destroy()
		defaultCore = nil
	}
}

func mgl64Vec(x, y float64) mgl64.Vec2 {
	return mgl64.Vec2{x, y}
}
