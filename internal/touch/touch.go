// Package touch turns raw press/move/release input into classified
// interactions, resolves them through a weighted rule table, and keeps
// the long-lived affection scalar those interactions feed.
package touch

import (
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Area is where on the model the touch landed.
type Area string

const (
	AreaHead     Area = "head"
	AreaHair     Area = "hair"
	AreaFace     Area = "face"
	AreaShoulder Area = "shoulder"
	AreaHand     Area = "hand"
	AreaBody     Area = "body"
	AreaUnknown  Area = "unknown"
)

// areaKeywords maps free-form hit-test names from the renderer onto the
// fixed area set. First match wins.
var areaKeywords = []struct {
	area  Area
	words []string
}{
	{AreaHair, []string{"hair", "bangs", "ponytail", "twintail"}},
	{AreaHead, []string{"head", "forehead", "ear"}},
	{AreaFace, []string{"face", "cheek", "nose", "mouth", "chin"}},
	{AreaShoulder, []string{"shoulder", "neck", "collar"}},
	{AreaHand, []string{"hand", "arm", "finger", "wrist"}},
	{AreaBody, []string{"body", "chest", "back", "waist", "leg"}},
}

// NormalizeArea resolves a renderer hit name to an Area. Unmatched
// names become AreaUnknown rather than erroring.
func NormalizeArea(raw string) Area {
	lower := strings.ToLower(raw)
	for _, ak := range areaKeywords {
		for _, w := range ak.words {
			if strings.Contains(lower, w) {
				return ak.area
			}
		}
	}
	return AreaUnknown
}

// Kind is the classified gesture.
type Kind string

const (
	KindTap       Kind = "tap"
	KindDoubleTap Kind = "double_tap"
	KindLongPress Kind = "long_press"
	KindDrag      Kind = "drag"
	KindRub       Kind = "rub"
)

// Event is one classified touch, transient by design.
type Event struct {
	Area     Area
	Kind     Kind
	Position mgl64.Vec2
	Pressure float64
	Time     time.Time
}

// Mood is the coarse feeling the touch engine reports outward. It is
// deliberately smaller than the full emotion vocabulary; the
// orchestrator maps it onto the transition engine.
type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodExcited Mood = "excited"
	MoodShy     Mood = "shy"
	MoodSad     Mood = "sad"
	MoodAnnoyed Mood = "annoyed"
	MoodNeutral Mood = "neutral"
)

// moodAliases resolves a reaction's free-form expression field to a
// Mood by substring.
var moodAliases = []struct {
	mood  Mood
	words []string
}{
	{MoodHappy, []string{"happy", "delighted", "smile", "joy", "pleased"}},
	{MoodExcited, []string{"excited", "thrilled", "sparkle"}},
	{MoodShy, []string{"shy", "embarrassed", "blush", "bashful"}},
	{MoodSad, []string{"sad", "hurt", "upset", "teary"}},
	{MoodAnnoyed, []string{"annoyed", "angry", "irritated", "pout", "grump"}},
}

func moodFromExpression(expr string) Mood {
	lower := strings.ToLower(expr)
	for _, ma := range moodAliases {
		for _, w := range ma.words {
			if strings.Contains(lower, w) {
				return ma.mood
			}
		}
	}
	return MoodNeutral
}

// Reaction is one possible response to a matched rule.
type Reaction struct {
	Expression      string
	Dialogue        string
	EmotionalChange float64 // applied to affection, may be negative
	Cooldown        time.Duration
	Weight          float64
}

// Rule matches classified events to candidate reactions. A zero
// MaxAffection means "no upper bound".
type Rule struct {
	Area         Area
	Kind         Kind
	MinAffection float64
	MaxAffection float64
	Weight       float64
	Reactions    []Reaction
}

// press tracks an in-flight pointer between Press and Release.
type press struct {
	area    Area
	start   time.Time
	origin  mgl64.Vec2
	maxDist float64
}

// tapRecord remembers the last release for double-tap pairing. consumed
// stops a third rapid tap from chaining another double-tap.
type tapRecord struct {
	area     Area
	at       time.Time
	consumed bool
}
