package sense

import (
	"errors"

	"github.com/normanking/emotive/internal/emotion"
	"github.com/normanking/emotive/internal/params"
)

// ErrNotStarted is returned when Analyze is called before Init. This is
// a programmer-error contract violation, the one failure in this core
// that is allowed to be loud.
var ErrNotStarted = errors.New("sense: voice analyzer not initialized")

// VoiceFeatures is the fixed record supplied by the audio capture layer.
// All spectral extraction happens upstream; this core only maps features
// to emotion.
type VoiceFeatures struct {
	Pitch          float64 // Hz
	PitchVariance  float64
	Volume         float64 // [0,1]
	VolumeVariance float64
	SpeechRate     float64 // syllables/sec
	SpectralFlux   float64
	SilenceRatio   float64 // [0,1]
	HighFreqRatio  float64
	LowFreqRatio   float64
}

// VoiceResult is the mapped emotion with valence/arousal diagnostics.
type VoiceResult struct {
	Emotion    emotion.Emotion
	Confidence float64
	Valence    float64 // [-1,1]
	Arousal    float64 // [0,1]
}

// VoiceAnalyzer projects voice features onto a valence-arousal plane and
// picks the nearest emotion, with special-case pattern overrides.
type VoiceAnalyzer struct {
	baselinePitch float64
	initialized   bool
}

// NewVoiceAnalyzer constructs an analyzer. Init must be called before
// Analyze.
func NewVoiceAnalyzer() *VoiceAnalyzer {
	return &VoiceAnalyzer{}
}

// Init establishes the speaker pitch baseline. baselinePitch <= 0 falls
// back to a generic 170Hz.
func (a *VoiceAnalyzer) Init(baselinePitch float64) {
	if baselinePitch <= 0 {
		baselinePitch = 170
	}
	a.baselinePitch = baselinePitch
	a.initialized = true
}

// Analyze maps features to an emotion. Returns ErrNotStarted before Init.
func (a *VoiceAnalyzer) Analyze(f VoiceFeatures) (VoiceResult, error) {
	if !a.initialized {
		return VoiceResult{}, ErrNotStarted
	}

	pitchOffset := 0.0
	if a.baselinePitch > 0 {
		pitchOffset = (f.Pitch - a.baselinePitch) / a.baselinePitch
	}

	// Valence: higher pitch offset and high-frequency energy lean
	// positive; low-frequency dominance and heavy silence lean negative.
	valence := params.ClampSigned(
		pitchOffset*0.8 + (f.HighFreqRatio-f.LowFreqRatio)*0.5 - f.SilenceRatio*0.4,
	)

	// Arousal: loud, fast, spectrally busy speech is high-arousal.
	arousal := params.Clamp01(
		f.Volume*0.35 + f.VolumeVariance*0.15 +
			params.Clamp01(f.SpeechRate/6)*0.25 + params.Clamp01(f.SpectralFlux)*0.25,
	)

	result := VoiceResult{Valence: valence, Arousal: arousal}
	result.Emotion, result.Confidence = projectVA(valence, arousal)

	// Pattern overrides: strong pitch swings with a raised pitch read as
	// surprise or excitement no matter what the quadrant said.
	if f.PitchVariance > 0.5 && pitchOffset > 0.15 {
		if arousal > 0.6 {
			result.Emotion = emotion.Excited
		} else {
			result.Emotion = emotion.Surprised
		}
		if result.Confidence < 0.6 {
			result.Confidence = 0.6
		}
	}
	// Long silences with flat quiet delivery read as sadness.
	if f.SilenceRatio > 0.6 && f.Volume < 0.3 && f.PitchVariance < 0.2 {
		result.Emotion = emotion.Sad
		if result.Confidence < 0.55 {
			result.Confidence = 0.55
		}
	}

	return result, nil
}

// projectVA picks an emotion from a valence-arousal quadrant.
func projectVA(valence, arousal float64) (emotion.Emotion, float64) {
	// Confidence grows with distance from the origin; the origin itself
	// is indistinct.
	magnitude := params.Clamp01((valence*valence + (arousal-0.5)*(arousal-0.5)*4) / 1.5)
	conf := 0.3 + 0.5*magnitude

	switch {
	case valence >= 0.15 && arousal >= 0.6:
		return emotion.Excited, conf
	case valence >= 0.15 && arousal >= 0.35:
		return emotion.Happy, conf
	case valence >= 0.15:
		return emotion.Calm, conf
	case valence <= -0.15 && arousal >= 0.65:
		return emotion.Angry, conf
	case valence <= -0.15 && arousal >= 0.4:
		return emotion.Anxious, conf
	case valence <= -0.15:
		return emotion.Sad, conf
	case arousal >= 0.7:
		return emotion.Surprised, conf
	case arousal <= 0.25:
		return emotion.Bored, conf
	default:
		return emotion.Neutral, conf
	}
}
