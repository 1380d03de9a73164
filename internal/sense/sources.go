package sense

import "github.com/normanking/emotive/internal/params"

// The collaborators below live outside this core and are specified by
// interface only. The gateway connector, audio plumbing, and touch UI
// implement these; the core never dials a network or reads a device.

// TextSource streams AI-generated or user text into the inference layer.
type TextSource interface {
	// OnText registers a consumer for each plain-text utterance.
	OnText(fn func(text string))
}

// VoiceSource supplies already-extracted spectral/pitch features.
type VoiceSource interface {
	OnFeatures(fn func(f VoiceFeatures))
}

// TouchPhase is the raw press/move/release phase from the input layer.
type TouchPhase int

const (
	TouchPress TouchPhase = iota
	TouchMove
	TouchRelease
)

// RawTouch is one raw input event before classification. Area is a
// free-form string normalized downstream.
type RawTouch struct {
	Phase    TouchPhase
	Area     string
	X, Y     float64
	Pressure float64
}

// TouchSource supplies raw press/move/release events.
type TouchSource interface {
	OnTouch(fn func(t RawTouch))
}

// RendererBinding consumes the final merged parameter map and draws
// pixels. It is the only consumer of params.Map outside tests.
type RendererBinding interface {
	Apply(m params.Map)
}
