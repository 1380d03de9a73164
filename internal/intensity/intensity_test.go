package intensity

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/normanking/emotive/internal/emotion"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// noon in UTC so the time-of-day factor is the neutral 1.0
func newTestModulator() (*Modulator, *fakeClock) {
	clk := &fakeClock{t: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	m := NewModulator(DefaultConfig(), zerolog.Nop())
	m.now = clk.now
	m.sessionStart = clk.t
	m.lastCall = clk.t
	return m, clk
}

func TestOutputStaysWithinConfiguredRange(t *testing.T) {
	m, _ := newTestModulator()
	for _, base := range []float64{-1, 0, 0.5, 1, 5} {
		out := m.Modulate(base, emotion.Excited)
		assert.GreaterOrEqual(t, out, m.cfg.MinIntensity)
		assert.LessOrEqual(t, out, m.cfg.MaxIntensity)
	}
}

func TestEmotionGainOrdersOutput(t *testing.T) {
	m, _ := newTestModulator()
	excited := m.Modulate(0.5, emotion.Excited)
	m2, _ := newTestModulator()
	calm := m2.Modulate(0.5, emotion.Calm)
	assert.Greater(t, excited, calm)
}

func TestFatigueAccumulatesAndRecovers(t *testing.T) {
	m, clk := newTestModulator()

	for i := 0; i < 80; i++ {
		m.Modulate(0.5, emotion.Neutral)
		clk.advance(5 * time.Second)
	}
	tired := m.Fatigue()
	assert.Greater(t, tired, 0.1)

	// a long idle break sheds fatigue
	clk.advance(30 * time.Minute)
	m.Modulate(0.5, emotion.Neutral)
	assert.Less(t, m.Fatigue(), tired)
}

func TestFatigueTurnContributionCapped(t *testing.T) {
	m, _ := newTestModulator()
	for i := 0; i < 500; i++ {
		m.Modulate(0.5, emotion.Neutral)
	}
	assert.LessOrEqual(t, m.Fatigue(), m.cfg.FatigueTurnCap+m.cfg.FatigueSessionCap)
}

func TestTimeOfDayStepFunction(t *testing.T) {
	assert.Equal(t, 0.85, timeOfDayFactor(time.Date(2026, 1, 1, 3, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1.0, timeOfDayFactor(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0.95, timeOfDayFactor(time.Date(2026, 1, 1, 19, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0.85, timeOfDayFactor(time.Date(2026, 1, 1, 23, 0, 0, 0, time.UTC)))
}

func TestConversationalFactorRaisesOutput(t *testing.T) {
	m, _ := newTestModulator()
	quiet := m.Modulate(0.5, emotion.Neutral)

	m2, _ := newTestModulator()
	m2.SetConversationState(1, 1)
	urgent := m2.Modulate(0.5, emotion.Neutral)
	assert.Greater(t, urgent, quiet)
}

func TestLearnedGainNeedsThreeSamples(t *testing.T) {
	m, _ := newTestModulator()
	m.Learn(emotion.Happy, 0.9)
	m.Learn(emotion.Happy, 0.9)
	assert.Equal(t, emotionGain[emotion.Happy], m.emotionalFactor(emotion.Happy),
		"two samples must not activate the learned average")

	m.Learn(emotion.Happy, 0.9)
	got := m.emotionalFactor(emotion.Happy)
	want := 0.5*emotionGain[emotion.Happy] + 0.5*(0.5+0.9)
	assert.InDelta(t, want, got, 1e-9)
}

func TestFeedbackAdjustsPreference(t *testing.T) {
	m, _ := newTestModulator()
	m.RecordFeedback(0.9, true)
	assert.InDelta(t, 0.9, m.preferred, 1e-9)

	m.RecordFeedback(0.9, false) // discounted to 0.72 then blended
	want := 0.9 + (0.72-0.9)*0.3
	assert.InDelta(t, want, m.preferred, 1e-9)
}

func TestPersonalizedFactorPullsTowardPreference(t *testing.T) {
	m, _ := newTestModulator()
	m.RecordFeedback(0.3, true) // user likes it subtle
	low := m.Modulate(0.8, emotion.Neutral)

	m2, _ := newTestModulator()
	plain := m2.Modulate(0.8, emotion.Neutral)
	assert.Less(t, low, plain)
}

func TestResetKeepsLearnedPreference(t *testing.T) {
	m, clk := newTestModulator()
	m.RecordFeedback(0.4, true)
	for i := 0; i < 100; i++ {
		m.Modulate(0.5, emotion.Neutral)
	}
	clk.advance(time.Minute)
	m.Reset()
	assert.Equal(t, 0.0, m.Fatigue())
	assert.True(t, m.hasPreferred)
	assert.Equal(t, 0, m.turns)
}
