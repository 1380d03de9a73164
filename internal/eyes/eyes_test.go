package eyes

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/normanking/emotive/internal/emotion"
)

func newTestEnhancer() (*Enhancer, time.Time) {
	e := NewEnhancer(DefaultConfig(), zerolog.Nop())
	e.Start()
	start := time.Unix(1700000000, 0)
	e.Update(start) // primes clocks and schedules
	return e, start
}

func TestBlinkCycle(t *testing.T) {
	e, now := newTestEnhancer()
	e.TriggerBlink()
	assert.True(t, e.IsBlinking())

	// mid-closing: lid partially down, trailing eye more open
	now = now.Add(35 * time.Millisecond)
	e.Update(now)
	p := e.Params(now)
	assert.Less(t, p["eyeOpenL"], 1.0)
	assert.Greater(t, p["eyeOpenL"], 0.0)
	assert.Greater(t, p["eyeOpenR"], p["eyeOpenL"], "right eye should lag")

	// fully closed
	now = now.Add(60 * time.Millisecond)
	e.Update(now)
	now = now.Add(10 * time.Millisecond)
	e.Update(now)
	assert.Equal(t, 0.0, e.Params(now)["eyeOpenL"])

	// run the machine through opening back to idle
	for i := 0; i < 30; i++ {
		now = now.Add(16 * time.Millisecond)
		e.Update(now)
	}
	assert.False(t, e.IsBlinking())
	assert.Equal(t, 1.0, e.Params(now)["eyeOpenL"])
}

func TestTriggerBlinkWhileBlinkingIgnored(t *testing.T) {
	e, now := newTestEnhancer()
	e.TriggerBlink()
	now = now.Add(30 * time.Millisecond)
	e.Update(now)
	before := e.phase
	e.TriggerBlink()
	assert.Equal(t, before, e.phase)
}

func TestSaccadeDecaysTowardZero(t *testing.T) {
	e, now := newTestEnhancer()
	e.saccadeX = 0.05
	e.saccadeY = -0.03
	e.nextSaccade = now.Add(time.Hour) // no new rolls

	for i := 0; i < 60; i++ {
		now = now.Add(16 * time.Millisecond)
		e.Update(now)
	}
	p := e.Params(now)
	assert.Less(t, math.Abs(p["eyeSaccadeX"]), 0.001)
	assert.Less(t, math.Abs(p["eyeSaccadeY"]), 0.001)
}

func TestPupilRespondsToLight(t *testing.T) {
	e, now := newTestEnhancer()

	e.SetLightLevel(0)
	for i := 0; i < 120; i++ {
		now = now.Add(16 * time.Millisecond)
		e.Update(now)
	}
	dark := e.Params(now)["pupilSize"]

	e.SetLightLevel(1)
	for i := 0; i < 120; i++ {
		now = now.Add(16 * time.Millisecond)
		e.Update(now)
	}
	bright := e.Params(now)["pupilSize"]

	assert.Greater(t, dark, bright, "pupil should dilate in the dark")
	assert.InDelta(t, 0.75, dark, 0.03)
	assert.InDelta(t, 0.3, bright, 0.03)
}

func TestPupilEmotionBias(t *testing.T) {
	e, now := newTestEnhancer()
	e.SetLightLevel(0.5)
	e.SetEmotion(emotion.Excited)
	for i := 0; i < 120; i++ {
		now = now.Add(16 * time.Millisecond)
		e.Update(now)
	}
	excited := e.Params(now)["pupilSize"]
	assert.InDelta(t, 0.675, excited, 0.03)
}

func TestFocusTrackerConverges(t *testing.T) {
	e, now := newTestEnhancer()
	e.SetFocusDistance(3)
	for i := 0; i < 120; i++ {
		now = now.Add(16 * time.Millisecond)
		e.Update(now)
	}
	assert.InDelta(t, 0.3, e.Params(now)["focusDistance"], 0.02)
}

func TestFocusDistanceClamped(t *testing.T) {
	e, _ := newTestEnhancer()
	e.SetFocusDistance(500)
	assert.Equal(t, 10.0, e.focusTarget)
	e.SetFocusDistance(-1)
	assert.Equal(t, 0.1, e.focusTarget)
}

func TestUpdateNoOpWhenStopped(t *testing.T) {
	e, now := newTestEnhancer()
	e.Stop()
	e.saccadeX = 0.05
	for i := 0; i < 30; i++ {
		now = now.Add(16 * time.Millisecond)
		e.Update(now)
	}
	assert.Equal(t, 0.05, e.Params(now)["eyeSaccadeX"])
}

func TestDestroyResets(t *testing.T) {
	e, _ := newTestEnhancer()
	e.TriggerBlink()
	e.Destroy()
	e.Destroy()
	assert.False(t, e.IsBlinking())
}
