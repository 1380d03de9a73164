package emotion

import (
	"testing"
	"time"
)

func timeNowForTest() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestParseCanonical(t *testing.T) {
	if got := Parse("happy"); got != Happy {
		t.Errorf("expected happy, got %s", got)
	}
	if got := Parse("  Contempt "); got != Contempt {
		t.Errorf("expected contempt, got %s", got)
	}
}

func TestParseAliases(t *testing.T) {
	cases := map[string]Emotion{
		"delighted":    Happy,
		"affectionate": Loving,
		"empathy":      Sad,
		"annoyed":      Angry,
		"shy":          Embarrassed,
		"shocked":      Surprised,
	}
	for in, want := range cases {
		if got := Parse(in); got != want {
			t.Errorf("Parse(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestParseSubstringFallback(t *testing.T) {
	if got := Parse("very_happy_reaction"); got != Happy {
		t.Errorf("expected happy from substring, got %s", got)
	}
}

func TestParseUnknownDegradesToNeutral(t *testing.T) {
	if got := Parse("xyzzy"); got != Neutral {
		t.Errorf("expected neutral, got %s", got)
	}
	if got := Parse(""); got != Neutral {
		t.Errorf("expected neutral for empty, got %s", got)
	}
}

func TestDistanceDefaults(t *testing.T) {
	if d := Distance(Happy, Happy); d != SameEmotionDistance {
		t.Errorf("same-emotion distance should be %v, got %v", SameEmotionDistance, d)
	}
	if d := Distance(Proud, Lonely); d != DefaultDistance {
		t.Errorf("unconfigured pair should default to %v, got %v", DefaultDistance, d)
	}
}

func TestDistanceTableCoversEveryEmotion(t *testing.T) {
	for _, e := range All {
		row, ok := distanceTable[e]
		if !ok {
			t.Errorf("%s has no configured distances", e)
			continue
		}
		if len(row) < 3 {
			t.Errorf("%s has only %d configured distances", e, len(row))
		}
		for to, d := range row {
			if d <= 0 || d > 1 {
				t.Errorf("distance %s->%s out of range: %v", e, to, d)
			}
		}
	}
}

func TestCompatibilityTableCoversEveryEmotion(t *testing.T) {
	for _, e := range All {
		if e == Neutral {
			// neutral blends at the default rate with everything
			continue
		}
		if _, ok := compatibilityTable[e]; !ok {
			t.Errorf("%s has no configured compatibilities", e)
		}
	}
}

func TestDistanceAsymmetryAllowed(t *testing.T) {
	// happy->sad is a hard jump; it must be at least as far as the
	// near-neighbor hop happy->excited.
	if Distance(Happy, Sad) < Distance(Happy, Excited) {
		t.Error("dissimilar pair should not be closer than similar pair")
	}
}

func TestBlendCollapsesIncompatibleSecondary(t *testing.T) {
	now := timeNowForTest()
	b := Blend([]State{
		NewState(Happy, 0.9, now),
		NewState(Angry, 0.6, now),
	})
	if b.Secondary != "" || b.SecondaryWeight != 0 {
		t.Errorf("happy/angry should collapse to primary only, got %+v", b)
	}
	if b.Primary != Happy || b.PrimaryWeight != 1 {
		t.Errorf("expected sole happy primary, got %+v", b)
	}
}

func TestBlendKeepsCompatibleSecondary(t *testing.T) {
	now := timeNowForTest()
	b := Blend([]State{
		NewState(Happy, 0.8, now),
		NewState(Excited, 0.4, now),
	})
	if b.Primary != Happy || b.Secondary != Excited {
		t.Fatalf("expected happy/excited blend, got %+v", b)
	}
	total := b.PrimaryWeight + b.SecondaryWeight
	if total < 0.999 || total > 1.001 {
		t.Errorf("weights should normalize to 1, got %v", total)
	}
}

func TestBlendEmptyInput(t *testing.T) {
	b := Blend(nil)
	if b.Primary != Neutral {
		t.Errorf("empty blend should be neutral, got %s", b.Primary)
	}
}

func TestEasingEndpoints(t *testing.T) {
	kinds := []Easing{EaseLinear, EaseIn, EaseOut, EaseInOut, EaseSpring, EaseBounce}
	for _, k := range kinds {
		if got := ease(k, 0); got != 0 {
			t.Errorf("%s: ease(0) = %v, want 0", k, got)
		}
		if got := ease(k, 1); got != 1 {
			t.Errorf("%s: ease(1) = %v, want 1", k, got)
		}
	}
}
