// Package lighting derives a full scene description from the current
// emotion, time of day and weather. Scenes are rebuilt from tables on
// every change rather than mutated, so there is no drift; only each
// light's animation phase carries state between frames.
package lighting

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"

	"github.com/normanking/emotive/internal/bus"
	"github.com/normanking/emotive/internal/emotion"
)

// TimeOfDay buckets the clock into lighting regimes.
type TimeOfDay string

const (
	Morning TimeOfDay = "morning"
	Daytime TimeOfDay = "day"
	Evening TimeOfDay = "evening"
	Night   TimeOfDay = "night"
)

// TimeOfDayFor buckets an hour-of-day.
func TimeOfDayFor(t time.Time) TimeOfDay {
	switch h := t.Hour(); {
	case h >= 5 && h < 10:
		return Morning
	case h >= 10 && h < 17:
		return Daytime
	case h >= 17 && h < 21:
		return Evening
	default:
		return Night
	}
}

// Weather is the ambient weather input.
type Weather string

const (
	Clear  Weather = "clear"
	Cloudy Weather = "cloudy"
	Rain   Weather = "rain"
	Snow   Weather = "snow"
	Storm  Weather = "storm"
)

// AnimationKind is a per-light motion style.
type AnimationKind string

const (
	AnimPulse   AnimationKind = "pulse"
	AnimFlicker AnimationKind = "flicker"
	AnimSway    AnimationKind = "sway"
	AnimRotate  AnimationKind = "rotate"
)

// Animation describes optional per-light motion.
type Animation struct {
	Kind      AnimationKind
	Speed     float64 // cycles per second
	Amplitude float64
	Phase     float64 // radians offset into the cycle
}

// Light is one scene light.
type Light struct {
	ID        string
	Type      string // ambient, directional, point
	Color     string // #rrggbb
	Intensity float64
	Position  mgl32.Vec3
	Animation *Animation
}

// Scene is a fully-resolved lighting setup.
type Scene struct {
	Lights       []Light
	Exposure     float64
	Contrast     float64
	Saturation   float64
	AmbientColor string
	Filter       string // brightness/contrast/saturate composite
}

// overlay is a partial scene contribution from one lookup table. Zero
// scalar fields mean "no opinion"; empty color means keep prior.
type overlay struct {
	lights       []Light
	exposure     float64
	contrast     float64
	saturation   float64
	ambientColor string
}

func baseScene() Scene {
	return Scene{
		Lights: []Light{
			{ID: "key", Type: "directional", Color: "#ffffff", Intensity: 1, Position: mgl32.Vec3{1, 2, 1}},
			{ID: "ambient", Type: "ambient", Color: "#e8e8f0", Intensity: 0.45},
		},
		Exposure:     1,
		Contrast:     1,
		Saturation:   1,
		AmbientColor: "#e8e8f0",
	}
}

var emotionOverlays = map[emotion.Emotion]overlay{
	emotion.Happy: {
		exposure: 1.1, saturation: 1.15, ambientColor: "#fff2dc",
		lights: []Light{{ID: "warm_fill", Type: "point", Color: "#ffd9a0", Intensity: 0.5,
			Position: mgl32.Vec3{-1, 1, 0.5},
			Animation: &Animation{Kind: AnimPulse, Speed: 0.3, Amplitude: 0.15}}},
	},
	emotion.Excited: {
		exposure: 1.15, contrast: 1.1, saturation: 1.25,
		lights: []Light{{ID: "accent", Type: "point", Color: "#ffc4e1", Intensity: 0.6,
			Position: mgl32.Vec3{0.8, 1.4, -0.3},
			Animation: &Animation{Kind: AnimPulse, Speed: 0.9, Amplitude: 0.25}}},
	},
	emotion.Sad: {
		exposure: 0.85, saturation: 0.7, ambientColor: "#c9d4e4",
		lights: []Light{{ID: "cool_rim", Type: "directional", Color: "#9fb4d9", Intensity: 0.4,
			Position: mgl32.Vec3{-1.5, 1, -1}}},
	},
	emotion.Angry: {
		contrast: 1.2, saturation: 1.1, ambientColor: "#e8d0cc",
		lights: []Light{{ID: "hard_key", Type: "directional", Color: "#ffb3a0", Intensity: 0.55,
			Position: mgl32.Vec3{2, 0.5, 0}}},
	},
	emotion.Fear: {
		exposure: 0.8, contrast: 1.15, saturation: 0.8,
		lights: []Light{{ID: "under", Type: "point", Color: "#b8c4f0", Intensity: 0.35,
			Position: mgl32.Vec3{0, -1, 0.8},
			Animation: &Animation{Kind: AnimFlicker, Speed: 3, Amplitude: 0.3}}},
	},
	emotion.Calm: {
		exposure: 0.95, saturation: 0.9, ambientColor: "#dde8e4",
	},
	emotion.Loving: {
		exposure: 1.05, saturation: 1.1, ambientColor: "#ffe4ec",
		lights: []Light{{ID: "rose_fill", Type: "point", Color: "#ffc9d8", Intensity: 0.45,
			Position: mgl32.Vec3{-0.6, 1.2, 0.8},
			Animation: &Animation{Kind: AnimPulse, Speed: 0.2, Amplitude: 0.1}}},
	},
	emotion.Surprised: {
		exposure: 1.2, contrast: 1.05,
	},
	emotion.Disgust: {
		exposure: 0.9, saturation: 0.8, ambientColor: "#d6dcc8",
	},
	emotion.Thinking: {
		exposure: 0.95, contrast: 1.05, ambientColor: "#dce4ec",
		lights: []Light{{ID: "desk_glow", Type: "point", Color: "#fff4cc", Intensity: 0.3,
			Position: mgl32.Vec3{0.5, 0.8, 0.6}}},
	},
	emotion.Grateful: {
		exposure: 1.05, saturation: 1.05, ambientColor: "#fbeedd",
	},
	emotion.Proud: {
		exposure: 1.1, contrast: 1.08, saturation: 1.05,
		lights: []Light{{ID: "uplight", Type: "point", Color: "#ffe8b8", Intensity: 0.4,
			Position: mgl32.Vec3{0, -0.5, 1}}},
	},
	emotion.Hopeful: {
		exposure: 1.08, saturation: 1.08, ambientColor: "#fdf3e0",
	},
	emotion.Relieved: {
		exposure: 1.02, contrast: 0.95, saturation: 0.95, ambientColor: "#e4ecdf",
	},
	emotion.Amused: {
		exposure: 1.08, saturation: 1.12, ambientColor: "#fdf0d8",
		lights: []Light{{ID: "sparkle", Type: "point", Color: "#ffe9c0", Intensity: 0.35,
			Position:  mgl32.Vec3{0.7, 1.3, 0.4},
			Animation: &Animation{Kind: AnimPulse, Speed: 0.6, Amplitude: 0.2}}},
	},
	emotion.Anxious: {
		exposure: 0.85, contrast: 1.1, saturation: 0.85,
		lights: []Light{{ID: "edge", Type: "directional", Color: "#c4ccdd", Intensity: 0.3,
			Position:  mgl32.Vec3{-2, 0.4, -0.5},
			Animation: &Animation{Kind: AnimFlicker, Speed: 2, Amplitude: 0.2}}},
	},
	emotion.Embarrassed: {
		exposure: 1.02, saturation: 1.08, ambientColor: "#fde4e0",
	},
	emotion.Confused: {
		exposure: 0.95, contrast: 0.95, saturation: 0.92,
	},
	emotion.Bored: {
		exposure: 0.9, contrast: 0.92, saturation: 0.8, ambientColor: "#d8d8d8",
	},
	emotion.Disappointed: {
		exposure: 0.88, saturation: 0.78, ambientColor: "#ccd2da",
	},
	emotion.Lonely: {
		exposure: 0.8, saturation: 0.72, ambientColor: "#bcc6d6",
		lights: []Light{{ID: "far_cool", Type: "directional", Color: "#a8b8d2", Intensity: 0.3,
			Position: mgl32.Vec3{-2, 2, -2}}},
	},
	emotion.Curious: {
		exposure: 1.05, saturation: 1.05, contrast: 1.03,
	},
	emotion.Determined: {
		exposure: 1.05, contrast: 1.15, saturation: 1.02,
		lights: []Light{{ID: "focus_key", Type: "directional", Color: "#fff0d8", Intensity: 0.45,
			Position: mgl32.Vec3{1.5, 1.8, 0.5}}},
	},
	emotion.Playful: {
		exposure: 1.1, saturation: 1.2, ambientColor: "#fde8f0",
		lights: []Light{{ID: "bounce", Type: "point", Color: "#ffd2e6", Intensity: 0.45,
			Position:  mgl32.Vec3{-0.8, 1.1, 0.6},
			Animation: &Animation{Kind: AnimSway, Speed: 0.5, Amplitude: 0.2}}},
	},
	emotion.Contempt: {
		exposure: 0.92, contrast: 1.12, saturation: 0.88, ambientColor: "#d4d0cc",
	},
}

var timeOverlays = map[TimeOfDay]overlay{
	Morning: {exposure: 1.05, saturation: 1.05, ambientColor: "#fdeedd",
		lights: []Light{{ID: "sunrise", Type: "directional", Color: "#ffd7b0", Intensity: 0.5,
			Position: mgl32.Vec3{3, 0.8, 1}}}},
	Daytime: {exposure: 1.1, contrast: 1.02},
	Evening: {exposure: 0.9, saturation: 1.08, ambientColor: "#f5d9c4",
		lights: []Light{{ID: "sunset", Type: "directional", Color: "#ff9f6b", Intensity: 0.55,
			Position: mgl32.Vec3{-3, 0.6, 1}}}},
	Night: {exposure: 0.7, saturation: 0.85, contrast: 1.05, ambientColor: "#b9c2dd",
		lights: []Light{{ID: "moon", Type: "directional", Color: "#c7d3ef", Intensity: 0.35,
			Position: mgl32.Vec3{0.5, 3, -1}}}},
}

var weatherOverlays = map[Weather]overlay{
	Clear:  {},
	Cloudy: {exposure: 0.92, contrast: 0.95, saturation: 0.9},
	Rain: {exposure: 0.85, saturation: 0.8, ambientColor: "#ccd4dc",
		lights: []Light{{ID: "rain_sheen", Type: "ambient", Color: "#c2ccd6", Intensity: 0.25}}},
	Snow: {exposure: 1.08, contrast: 0.92, saturation: 0.85, ambientColor: "#eef2f8"},
	Storm: {exposure: 0.75, contrast: 1.2, saturation: 0.75,
		lights: []Light{{ID: "lightning", Type: "directional", Color: "#e8ecff", Intensity: 0.2,
			Position:  mgl32.Vec3{0, 4, 0},
			Animation: &Animation{Kind: AnimFlicker, Speed: 6, Amplitude: 0.8}}}},
}

func applyOverlay(s Scene, o overlay) Scene {
	s.Lights = append(s.Lights, o.lights...)
	if o.exposure > 0 {
		s.Exposure *= o.exposure
	}
	if o.contrast > 0 {
		s.Contrast *= o.contrast
	}
	if o.saturation > 0 {
		s.Saturation *= o.saturation
	}
	if o.ambientColor != "" {
		s.AmbientColor = o.ambientColor
	}
	return s
}

// BuildScene resolves the three lookup tables into one scene. Pure:
// identical inputs always produce identical output (minus animation,
// which is evaluated separately per frame).
func BuildScene(e emotion.Emotion, tod TimeOfDay, w Weather) Scene {
	s := baseScene()
	s = applyOverlay(s, emotionOverlays[e])
	s = applyOverlay(s, timeOverlays[tod])
	s = applyOverlay(s, weatherOverlays[w])

	// deep-copy lights so callers cannot alias table entries
	lights := make([]Light, len(s.Lights))
	for i, l := range s.Lights {
		if l.Animation != nil {
			a := *l.Animation
			l.Animation = &a
		}
		lights[i] = l
	}
	s.Lights = lights
	s.Filter = filterFor(s)
	return s
}

func filterFor(s Scene) string {
	var b strings.Builder
	fmt.Fprintf(&b, "brightness(%.2f) contrast(%.2f) saturate(%.2f)", s.Exposure, s.Contrast, s.Saturation)
	return b.String()
}

// Engine owns the active scene and animates its lights.
type Engine struct {
	mu sync.Mutex

	emo     emotion.Emotion
	tod     TimeOfDay
	weather Weather
	scene   Scene

	epoch   time.Time
	running bool

	events *bus.Bus
	log    zerolog.Logger
	rng    *rand.Rand
}

// NewEngine starts neutral, daytime, clear. events may be nil.
func NewEngine(events *bus.Bus, log zerolog.Logger) *Engine {
	if events == nil {
		events = bus.New(log)
	}
	e := &Engine{
		emo:     emotion.Neutral,
		tod:     Daytime,
		weather: Clear,
		epoch:   time.Now(),
		events:  events,
		log:     log,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	e.scene = BuildScene(e.emo, e.tod, e.weather)
	return e
}

// Start enables animation. Idempotent.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = true
}

// Stop freezes animation. Idempotent.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
}

// Destroy stops the engine. Safe to call twice.
func (e *Engine) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
}

// SetConditions rebuilds the scene when any input changed and announces
// the change. No-op for identical inputs.
func (e *Engine) SetConditions(emo emotion.Emotion, tod TimeOfDay, w Weather) {
	e.mu.Lock()
	if emo == e.emo && tod == e.tod && w == e.weather {
		e.mu.Unlock()
		return
	}
	e.emo, e.tod, e.weather = emo, tod, w
	e.scene = BuildScene(emo, tod, w)
	filter := e.scene.Filter
	e.mu.Unlock()

	e.events.Publish(bus.Event{Type: bus.EventSceneChanged, Data: map[string]any{
		"emotion": emo, "timeOfDay": tod, "weather": w, "filter": filter,
	}})
}

// Scene returns a copy of the active scene.
func (e *Engine) Scene() Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyScene(e.scene)
}

func copyScene(s Scene) Scene {
	out := s
	out.Lights = make([]Light, len(s.Lights))
	for i, l := range s.Lights {
		if l.Animation != nil {
			a := *l.Animation
			l.Animation = &a
		}
		out.Lights[i] = l
	}
	return out
}

// AnimatedLights evaluates per-light animation at now and returns the
// lights with adjusted intensity/position. While stopped, animation
// holds at the base pose.
func (e *Engine) AnimatedLights(now time.Time) []Light {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Light, len(e.scene.Lights))
	copy(out, e.scene.Lights)
	if !e.running {
		return out
	}

	t := now.Sub(e.epoch).Seconds()
	for i := range out {
		a := out[i].Animation
		if a == nil {
			continue
		}
		arg := t*a.Speed*2*math.Pi + a.Phase
		switch a.Kind {
		case AnimPulse:
			out[i].Intensity *= 1 + a.Amplitude*math.Sin(arg)
		case AnimFlicker:
			out[i].Intensity *= 1 + a.Amplitude*(e.rng.Float64()*2-1)
		case AnimSway:
			out[i].Position = out[i].Position.Add(mgl32.Vec3{
				float32(a.Amplitude * math.Sin(arg)), 0, 0,
			})
		case AnimRotate:
			// orbit in the XZ plane, so the radius must ignore height
			x, z := float64(out[i].Position.X()), float64(out[i].Position.Z())
			r := math.Hypot(x, z)
			out[i].Position = mgl32.Vec3{
				float32(r * math.Cos(arg)),
				out[i].Position.Y(),
				float32(r * math.Sin(arg)),
			}
		}
		if out[i].Intensity < 0 {
			out[i].Intensity = 0
		}
	}
	return out
}

// Filter returns the current composite filter string. Recomputed only
// on scene change, never per frame.
func (e *Engine) Filter() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene.Filter
}
