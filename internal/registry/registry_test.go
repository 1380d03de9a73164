package registry

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/normanking/emotive/internal/bus"
	"github.com/normanking/emotive/internal/config"
	"github.com/normanking/emotive/internal/emotion"
	"github.com/normanking/emotive/internal/lighting"
	"github.com/normanking/emotive/internal/params"
	"github.com/normanking/emotive/internal/sense"
	"github.com/normanking/emotive/internal/touch"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestCore(t *testing.T) *Core {
	t.Helper()
	c, err := New(config.DefaultConfig(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(c.Destroy)
	return c
}

func TestNewBuildsConfiguredChains(t *testing.T) {
	c := newTestCore(t)
	assert.ElementsMatch(t,
		[]string{"hair_left", "hair_right", "hair_back"},
		c.Physics.ChainIDs())
}

func TestProcessTextDrivesEmotion(t *testing.T) {
	c := newTestCore(t)
	res := c.ProcessText("我很难过")

	assert.Equal(t, emotion.Sad, res.Context.Emotion)
	assert.Equal(t, emotion.Sad, c.Emotion.TargetState().Type)
	assert.NotEmpty(t, res.Variant)
	assert.Greater(t, res.Applied, 0.0)
}

func TestTouchReactionDrivesEmotion(t *testing.T) {
	c := newTestCore(t)
	res := c.Touch.Handle(touch.Event{Area: touch.AreaHead, Kind: touch.KindRub, Time: time.Now()})
	require.NotNil(t, res)
	require.NotEqual(t, touch.MoodNeutral, res.Mood)

	assert.NotEqual(t, emotion.Neutral, c.Emotion.TargetState().Type,
		"a touch reaction should start an emotion transition")
}

func TestExcessiveTouchSnapsEmotion(t *testing.T) {
	c := newTestCore(t)
	now := time.Now()
	for i := 0; i < 10; i++ {
		c.Touch.Handle(touch.Event{Area: touch.AreaFace, Kind: touch.KindTap, Time: now})
	}
	assert.Equal(t, emotion.Angry, c.Emotion.CurrentState().Type)
	assert.False(t, c.Emotion.IsTransitioning(), "breaker must snap, not transition")
}

func TestTransitionFeedsMemory(t *testing.T) {
	c := newTestCore(t)
	for i := 0; i < 4; i++ {
		c.Emotion.SetEmotion(emotion.Happy, 0.8)
		c.Emotion.SetEmotionImmediate(emotion.Neutral, 0.5)
	}
	score := c.Memory.Naturalness(emotion.Neutral, emotion.Happy)
	base := emotion.Compatibility(emotion.Neutral, emotion.Happy)
	assert.Greater(t, score, base, "repeated transitions should be learned")
}

func TestComposeMergesAllSources(t *testing.T) {
	c := newTestCore(t)
	c.Start()
	now := time.Now()
	c.Scheduler.Tick(now)
	m := c.Compose(now)

	assert.Contains(t, m, "browL")
	assert.Contains(t, m, "pupilSize")
	assert.Contains(t, m, "emotionIntensity")
	assert.Contains(t, m, "hair_left.0.offY")
	assert.Contains(t, m, "hair_back.7.rotX")
}

func TestBoundRendererReceivesFrames(t *testing.T) {
	c := newTestCore(t)

	var got params.Map
	c.Bind(applyFunc(func(m params.Map) { got = m }))
	c.Scheduler.Tick(time.Now())

	require.NotNil(t, got)
	assert.Contains(t, got, "eyeOpenL")
}

type applyFunc func(params.Map)

func (f applyFunc) Apply(m params.Map) { f(m) }

func TestSetWeatherRecolorsScene(t *testing.T) {
	c := newTestCore(t)
	before := c.Lighting.Filter()
	c.SetWeather(lighting.Storm)
	assert.NotEqual(t, before, c.Lighting.Filter())
}

func TestProcessVoiceRequiresInit(t *testing.T) {
	c := newTestCore(t)
	_, err := c.ProcessVoice(sense.VoiceFeatures{})
	assert.ErrorIs(t, err, sense.ErrNotStarted)

	c.Voice.Init(170)
	res, err := c.ProcessVoice(sense.VoiceFeatures{Pitch: 230, Volume: 0.8, SpeechRate: 5})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Emotion)
}

func TestStartStopDestroyLifecycle(t *testing.T) {
	c := newTestCore(t)
	c.Start()
	c.Start()
	assert.True(t, c.Scheduler.Running())
	c.Stop()
	c.Stop()
	assert.False(t, c.Scheduler.Running())
	c.Destroy()
	c.Destroy()
}

func TestBusEventsFlowAcrossSubsystems(t *testing.T) {
	c := newTestCore(t)

	var types []bus.EventType
	c.Bus.SubscribeMultiple([]bus.EventType{
		bus.EventTransitionStarted,
		bus.EventVariantSelected,
	}, func(ev bus.Event) { types = append(types, ev.Type) })

	c.ProcessText("this is wonderful, haha")
	assert.Contains(t, types, bus.EventTransitionStarted)
	assert.Contains(t, types, bus.EventVariantSelected)
}
