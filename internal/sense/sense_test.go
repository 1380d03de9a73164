package sense

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/emotive/internal/emotion"
)

func TestAnalyzeTextEnglish(t *testing.T) {
	r := AnalyzeText("I'm so happy today!")
	assert.Equal(t, emotion.Happy, r.Emotion)
	assert.Greater(t, r.Confidence, 0.5)
}

func TestAnalyzeTextCJK(t *testing.T) {
	r := AnalyzeText("我很难过")
	assert.Equal(t, emotion.Sad, r.Emotion)
	assert.Greater(t, r.Confidence, 0.3)
}

func TestAnalyzeTextNeutralFallback(t *testing.T) {
	r := AnalyzeText("the meeting is at three")
	assert.Equal(t, emotion.Neutral, r.Emotion)
	assert.Less(t, r.Confidence, 0.4)
}

func TestAnalyzeTextEmpty(t *testing.T) {
	r := AnalyzeText("   ")
	assert.Equal(t, emotion.Neutral, r.Emotion)
	assert.Equal(t, 0.0, r.Confidence)
}

func TestAnalyzeTextExclamationBoostsConfidence(t *testing.T) {
	plain := AnalyzeText("I am happy")
	loud := AnalyzeText("I am happy!!")
	assert.Greater(t, loud.Confidence, plain.Confidence)
}

func TestVoiceAnalyzeBeforeInitFailsLoud(t *testing.T) {
	a := NewVoiceAnalyzer()
	_, err := a.Analyze(VoiceFeatures{})
	require.ErrorIs(t, err, ErrNotStarted)
}

func TestVoiceHighPitchVarianceOverride(t *testing.T) {
	a := NewVoiceAnalyzer()
	a.Init(170)

	r, err := a.Analyze(VoiceFeatures{
		Pitch:         230, // well above baseline
		PitchVariance: 0.8,
		Volume:        0.5,
		SpeechRate:    3,
	})
	require.NoError(t, err)
	assert.Contains(t, []emotion.Emotion{emotion.Surprised, emotion.Excited}, r.Emotion)
	assert.GreaterOrEqual(t, r.Confidence, 0.6)
}

func TestVoiceQuietFlatSilenceReadsSad(t *testing.T) {
	a := NewVoiceAnalyzer()
	a.Init(170)

	r, err := a.Analyze(VoiceFeatures{
		Pitch:         160,
		PitchVariance: 0.1,
		Volume:        0.2,
		SilenceRatio:  0.7,
	})
	require.NoError(t, err)
	assert.Equal(t, emotion.Sad, r.Emotion)
}

func TestVoicePositiveEnergeticReadsExcitedOrHappy(t *testing.T) {
	a := NewVoiceAnalyzer()
	a.Init(170)

	r, err := a.Analyze(VoiceFeatures{
		Pitch:         210,
		Volume:        0.8,
		SpeechRate:    5,
		SpectralFlux:  0.6,
		HighFreqRatio: 0.6,
		LowFreqRatio:  0.2,
	})
	require.NoError(t, err)
	assert.Contains(t, []emotion.Emotion{emotion.Excited, emotion.Happy}, r.Emotion)
	assert.Greater(t, r.Valence, 0.0)
	assert.Greater(t, r.Arousal, 0.5)
}

func TestVoiceOutputsBounded(t *testing.T) {
	a := NewVoiceAnalyzer()
	a.Init(170)

	r, err := a.Analyze(VoiceFeatures{
		Pitch: 10000, PitchVariance: 99, Volume: 99, SpeechRate: 99,
		SpectralFlux: 99, HighFreqRatio: 99,
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, r.Valence, 1.0)
	assert.GreaterOrEqual(t, r.Valence, -1.0)
	assert.LessOrEqual(t, r.Arousal, 1.0)
	assert.LessOrEqual(t, r.Confidence, 1.0)
}
