// Package emotion owns the avatar's authoritative emotional state: the
// fixed emotion set, the pairwise distance/compatibility graph, and the
// transition engine that interpolates between states every frame.
package emotion

import (
	"strings"
	"time"
)

// Emotion is one of the fixed emotional states. The set is immutable;
// no subsystem may invent new tags at runtime.
type Emotion string

const (
	Neutral      Emotion = "neutral"
	Happy        Emotion = "happy"
	Sad          Emotion = "sad"
	Angry        Emotion = "angry"
	Surprised    Emotion = "surprised"
	Fear         Emotion = "fear"
	Disgust      Emotion = "disgust"
	Excited      Emotion = "excited"
	Calm         Emotion = "calm"
	Thinking     Emotion = "thinking"
	Loving       Emotion = "loving"
	Grateful     Emotion = "grateful"
	Proud        Emotion = "proud"
	Hopeful      Emotion = "hopeful"
	Relieved     Emotion = "relieved"
	Amused       Emotion = "amused"
	Anxious      Emotion = "anxious"
	Embarrassed  Emotion = "embarrassed"
	Confused     Emotion = "confused"
	Bored        Emotion = "bored"
	Disappointed Emotion = "disappointed"
	Lonely       Emotion = "lonely"
	Curious      Emotion = "curious"
	Determined   Emotion = "determined"
	Playful      Emotion = "playful"
	Contempt     Emotion = "contempt"
)

// All lists every canonical emotion.
var All = []Emotion{
	Neutral, Happy, Sad, Angry, Surprised, Fear, Disgust, Excited,
	Calm, Thinking, Loving, Grateful, Proud, Hopeful, Relieved, Amused,
	Anxious, Embarrassed, Confused, Bored, Disappointed, Lonely,
	Curious, Determined, Playful, Contempt,
}

var canonical = func() map[string]Emotion {
	m := make(map[string]Emotion, len(All))
	for _, e := range All {
		m[string(e)] = e
	}
	return m
}()

// aliases resolves emotion tags that appear in reaction/expression tables
// but are not first-class states. Matching is loose: exact first, then
// substring in either direction.
var aliases = map[string]Emotion{
	"delighted":     Happy,
	"joyful":        Happy,
	"cheerful":      Happy,
	"affectionate":  Loving,
	"love":          Loving,
	"empathy":       Sad,
	"melancholy":    Sad,
	"worried":       Anxious,
	"nervous":       Anxious,
	"scared":        Fear,
	"afraid":        Fear,
	"shy":           Embarrassed,
	"annoyed":       Angry,
	"irritated":     Angry,
	"frustrated":    Angry,
	"shocked":       Surprised,
	"amazed":        Surprised,
	"interested":    Curious,
	"content":       Calm,
	"relaxed":       Calm,
	"peaceful":      Calm,
	"thankful":      Grateful,
	"enthusiastic":  Excited,
	"thrilled":      Excited,
	"contemplating": Thinking,
	"pondering":     Thinking,
}

// Parse resolves a free-form tag to a canonical emotion. Unknown tags
// degrade to Neutral rather than failing.
func Parse(s string) Emotion {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Neutral
	}
	if e, ok := canonical[s]; ok {
		return e
	}
	if e, ok := aliases[s]; ok {
		return e
	}
	for name, e := range canonical {
		if strings.Contains(s, name) || strings.Contains(name, s) {
			return e
		}
	}
	for name, e := range aliases {
		if strings.Contains(s, name) {
			return e
		}
	}
	return Neutral
}

// IsCanonical reports whether s names a first-class emotion.
func IsCanonical(s string) bool {
	_, ok := canonical[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// State is a timestamped emotion with intensity. Intensity is clamped to
// [0,1] on every write; use NewState rather than building one by hand.
type State struct {
	Type      Emotion
	Intensity float64
	Timestamp time.Time
}

// NewState builds a State with the intensity clamped.
func NewState(e Emotion, intensity float64, at time.Time) State {
	return State{Type: e, Intensity: clamp01(intensity), Timestamp: at}
}

// Blended is a derived, read-only snapshot of a transition in flight.
// It is computed on demand and never stored as independent truth.
type Blended struct {
	Primary         Emotion
	Secondary       Emotion
	PrimaryWeight   float64
	SecondaryWeight float64
	BlendProgress   float64
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
