package lighting

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/emotive/internal/bus"
	"github.com/normanking/emotive/internal/emotion"
)

func TestBuildSceneMergesTables(t *testing.T) {
	s := BuildScene(emotion.Happy, Night, Rain)

	// base two lights + happy warm_fill + night moon + rain sheen
	ids := map[string]bool{}
	for _, l := range s.Lights {
		ids[l.ID] = true
	}
	assert.True(t, ids["key"])
	assert.True(t, ids["warm_fill"])
	assert.True(t, ids["moon"])
	assert.True(t, ids["rain_sheen"])

	// exposure multiplies across overlays: 1 * 1.1 * 0.7 * 0.85
	assert.InDelta(t, 0.6545, s.Exposure, 1e-6)
	// last ambient override wins
	assert.Equal(t, "#ccd4dc", s.AmbientColor)
}

func TestBuildSceneDeterministic(t *testing.T) {
	a := BuildScene(emotion.Sad, Evening, Clear)
	b := BuildScene(emotion.Sad, Evening, Clear)
	assert.Equal(t, a, b)
}

func TestEmotionOverlaysCoverEveryEmotion(t *testing.T) {
	for _, e := range emotion.All {
		if e == emotion.Neutral {
			// neutral renders the untinted base scene
			continue
		}
		o, ok := emotionOverlays[e]
		require.True(t, ok, "no overlay for %s", e)
		touched := o.exposure > 0 || o.contrast > 0 || o.saturation > 0 ||
			o.ambientColor != "" || len(o.lights) > 0
		assert.True(t, touched, "overlay for %s changes nothing", e)
	}
}

func TestBuildSceneUnknownInputsFallBackToBase(t *testing.T) {
	s := BuildScene(emotion.Emotion("stoic"), TimeOfDay("brunch"), Weather("hail"))
	require.Len(t, s.Lights, 2)
	assert.Equal(t, 1.0, s.Exposure)
	assert.Equal(t, "brightness(1.00) contrast(1.00) saturate(1.00)", s.Filter)
}

func TestSceneCopyDoesNotAliasTables(t *testing.T) {
	s := BuildScene(emotion.Happy, Daytime, Clear)
	for i := range s.Lights {
		s.Lights[i].Intensity = 99
		if s.Lights[i].Animation != nil {
			s.Lights[i].Animation.Speed = 99
		}
	}
	fresh := BuildScene(emotion.Happy, Daytime, Clear)
	for _, l := range fresh.Lights {
		assert.NotEqual(t, 99.0, l.Intensity)
		if l.Animation != nil {
			assert.NotEqual(t, 99.0, l.Animation.Speed)
		}
	}
}

func TestTimeOfDayFor(t *testing.T) {
	mk := func(h int) time.Time {
		return time.Date(2026, 3, 14, h, 0, 0, 0, time.UTC)
	}
	assert.Equal(t, Morning, TimeOfDayFor(mk(7)))
	assert.Equal(t, Daytime, TimeOfDayFor(mk(13)))
	assert.Equal(t, Evening, TimeOfDayFor(mk(19)))
	assert.Equal(t, Night, TimeOfDayFor(mk(23)))
	assert.Equal(t, Night, TimeOfDayFor(mk(3)))
}

func TestSetConditionsPublishesOnce(t *testing.T) {
	b := bus.New(zerolog.Nop())
	e := NewEngine(b, zerolog.Nop())

	changes := 0
	b.Subscribe(bus.EventSceneChanged, func(bus.Event) { changes++ })

	e.SetConditions(emotion.Happy, Evening, Clear)
	e.SetConditions(emotion.Happy, Evening, Clear) // identical, no-op
	assert.Equal(t, 1, changes)

	e.SetConditions(emotion.Happy, Evening, Rain)
	assert.Equal(t, 2, changes)
}

func TestPulseAnimationModulatesIntensity(t *testing.T) {
	e := NewEngine(nil, zerolog.Nop())
	e.SetConditions(emotion.Happy, Daytime, Clear)
	e.Start()

	base := 0.0
	for _, l := range e.Scene().Lights {
		if l.ID == "warm_fill" {
			base = l.Intensity
		}
	}
	require.Greater(t, base, 0.0)

	// pulse at 0.3Hz: a quarter period (~833ms) after epoch puts sin at
	// its peak
	at := e.epoch.Add(833 * time.Millisecond)
	var animated float64
	for _, l := range e.AnimatedLights(at) {
		if l.ID == "warm_fill" {
			animated = l.Intensity
		}
	}
	assert.InDelta(t, base*1.15, animated, 0.01)
}

func TestRotateAnimationOrbitsAtConstantRadiusAndHeight(t *testing.T) {
	e := NewEngine(nil, zerolog.Nop())
	e.Start()
	e.scene.Lights = []Light{{
		ID: "orbit", Type: "point", Intensity: 0.5,
		Position:  mgl32.Vec3{1, 2, 0},
		Animation: &Animation{Kind: AnimRotate, Speed: 0.25},
	}}

	for _, dt := range []time.Duration{0, 333 * time.Millisecond, 750 * time.Millisecond} {
		p := e.AnimatedLights(e.epoch.Add(dt))[0].Position
		r := math.Hypot(float64(p.X()), float64(p.Z()))
		assert.InDelta(t, 1.0, r, 1e-5, "radius drifted at %v", dt)
		assert.Equal(t, float32(2), p.Y())
	}
}

func TestAnimationHeldWhileStopped(t *testing.T) {
	e := NewEngine(nil, zerolog.Nop())
	e.SetConditions(emotion.Happy, Daytime, Clear)

	at := e.epoch.Add(1234 * time.Millisecond)
	for _, l := range e.AnimatedLights(at) {
		if l.ID == "warm_fill" {
			assert.Equal(t, 0.5, l.Intensity)
		}
	}
}

func TestFilterRecomputedOnSceneChange(t *testing.T) {
	e := NewEngine(nil, zerolog.Nop())
	before := e.Filter()
	e.SetConditions(emotion.Sad, Night, Storm)
	after := e.Filter()
	assert.NotEqual(t, before, after)
	assert.Contains(t, after, "brightness(")
}
