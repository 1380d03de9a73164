// Package memory learns which emotional transitions feel natural and
// picks textural expression variants (which "happy" asset to show) by
// weighted random choice informed by history and context.
package memory

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/normanking/emotive/internal/bus"
	"github.com/normanking/emotive/internal/emotion"
)

// Variant is one textural expression asset for an emotion.
type Variant struct {
	Name   string
	Tags   []string // context tags that favor this variant
	Weight float64  // base selection weight, default 1
}

// Candidate is a scored next-expression option.
type Candidate struct {
	Emotion emotion.Emotion
	Score   float64
}

// Config tunes the memory system.
type Config struct {
	// RecentPenalty multiplies the weight of a variant used recently.
	RecentPenalty float64 `mapstructure:"recent_penalty"`
	// RecentWindow is how many recent picks count as "recent".
	RecentWindow int `mapstructure:"recent_window"`
	// TagBonus multiplies the weight of a variant whose tag matches the
	// active context tag.
	TagBonus float64 `mapstructure:"tag_bonus"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{RecentPenalty: 0.35, RecentWindow: 3, TagBonus: 1.6}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.RecentPenalty <= 0 || c.RecentPenalty >= 1 {
		c.RecentPenalty = d.RecentPenalty
	}
	if c.RecentWindow <= 0 {
		c.RecentWindow = d.RecentWindow
	}
	if c.TagBonus <= 1 {
		c.TagBonus = d.TagBonus
	}
	return c
}

// System tracks observed transitions and owns the variant registry.
type System struct {
	mu  sync.RWMutex
	cfg Config

	// transition counts, normalized into naturalness on read
	counts map[emotion.Emotion]map[emotion.Emotion]int
	total  map[emotion.Emotion]int

	variants map[emotion.Emotion][]Variant
	recent   []string // variant names, newest last

	events *bus.Bus
	log    zerolog.Logger
	rng    *rand.Rand
}

// NewSystem constructs a memory system seeded with the default variant
// registry. events may be nil.
func NewSystem(cfg Config, events *bus.Bus, log zerolog.Logger) *System {
	if events == nil {
		events = bus.New(log)
	}
	return &System{
		cfg:      cfg.withDefaults(),
		counts:   make(map[emotion.Emotion]map[emotion.Emotion]int),
		total:    make(map[emotion.Emotion]int),
		variants: defaultVariants(),
		events:   events,
		log:      log,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// RecordTransition notes that from->to was displayed. Frequent pairs
// score as more natural over time.
func (s *System) RecordTransition(from, to emotion.Emotion) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.counts[from] == nil {
		s.counts[from] = make(map[emotion.Emotion]int)
	}
	s.counts[from][to]++
	s.total[from]++
}

// Naturalness returns the learned [0,1] score for from->to. Unseen pairs
// fall back to the static compatibility table so cold starts are sane.
func (s *System) Naturalness(from, to emotion.Emotion) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.naturalnessLocked(from, to)
}

func (s *System) naturalnessLocked(from, to emotion.Emotion) float64 {
	total := s.total[from]
	if total < 3 {
		return emotion.Compatibility(from, to)
	}
	observed := float64(s.counts[from][to]) / float64(total)
	// blend learned frequency with the static prior
	return 0.6*observed + 0.4*emotion.Compatibility(from, to)
}

// ScoreCandidates ranks candidate next-emotions from the current one.
func (s *System) ScoreCandidates(current emotion.Emotion, candidates []emotion.Emotion) []Candidate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, Candidate{Emotion: c, Score: s.naturalnessLocked(current, c)})
	}
	return out
}

// RegisterVariant adds a variant for an emotion at runtime.
func (s *System) RegisterVariant(e emotion.Emotion, v Variant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.Weight <= 0 {
		v.Weight = 1
	}
	s.variants[e] = append(s.variants[e], v)
}

// PickVariant selects a variant for the emotion by weighted random
// choice: base weight, boosted on context-tag match, penalized when
// recently shown. Falls back to the emotion name itself when no
// variants are registered.
func (s *System) PickVariant(e emotion.Emotion, contextTags ...string) string {
	s.mu.Lock()

	vs := s.variants[e]
	if len(vs) == 0 {
		s.mu.Unlock()
		return string(e)
	}

	weights := make([]float64, len(vs))
	sum := 0.0
	for i, v := range vs {
		w := v.Weight
		if w <= 0 {
			w = 1
		}
		for _, tag := range v.Tags {
			for _, ct := range contextTags {
				if tag == ct {
					w *= s.cfg.TagBonus
				}
			}
		}
		if s.recentlyUsed(v.Name) {
			w *= s.cfg.RecentPenalty
		}
		weights[i] = w
		sum += w
	}

	pick := vs[len(vs)-1].Name
	r := s.rng.Float64() * sum
	for i, w := range weights {
		r -= w
		if r <= 0 {
			pick = vs[i].Name
			break
		}
	}

	s.recent = append(s.recent, pick)
	if len(s.recent) > s.cfg.RecentWindow {
		s.recent = s.recent[len(s.recent)-s.cfg.RecentWindow:]
	}
	s.mu.Unlock()

	s.events.Publish(bus.Event{Type: bus.EventVariantSelected, Data: map[string]any{
		"emotion": e, "variant": pick,
	}})
	return pick
}

func (s *System) recentlyUsed(name string) bool {
	for _, r := range s.recent {
		if r == name {
			return true
		}
	}
	return false
}

// Reset drops all learned counts and recent history.
func (s *System) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts = make(map[emotion.Emotion]map[emotion.Emotion]int)
	s.total = make(map[emotion.Emotion]int)
	s.recent = nil
}

// defaultVariants is the built-in asset registry. Names refer to assets
// owned by the renderer binding; this core only picks among them.
func defaultVariants() map[emotion.Emotion][]Variant {
	return map[emotion.Emotion][]Variant{
		emotion.Happy: {
			{Name: "happy_soft_smile", Weight: 3, Tags: []string{"calm", "warm"}},
			{Name: "happy_grin", Weight: 2, Tags: []string{"playful"}},
			{Name: "happy_eyes_closed", Weight: 1.5, Tags: []string{"warm"}},
			{Name: "happy_sparkle", Weight: 1, Tags: []string{"excited"}},
		},
		emotion.Sad: {
			{Name: "sad_downcast", Weight: 3},
			{Name: "sad_teary", Weight: 1.5, Tags: []string{"melancholy"}},
			{Name: "sad_small_frown", Weight: 2},
		},
		emotion.Surprised: {
			{Name: "surprised_wide", Weight: 2},
			{Name: "surprised_blink", Weight: 2},
			{Name: "surprised_gasp", Weight: 1, Tags: []string{"playful"}},
		},
		emotion.Angry: {
			{Name: "angry_frown", Weight: 2.5},
			{Name: "angry_pout", Weight: 2, Tags: []string{"playful"}},
		},
		emotion.Thinking: {
			{Name: "thinking_look_up", Weight: 3},
			{Name: "thinking_hmm", Weight: 2},
		},
		emotion.Loving: {
			{Name: "loving_soft_gaze", Weight: 3, Tags: []string{"warm"}},
			{Name: "loving_blush", Weight: 1.5},
		},
		emotion.Embarrassed: {
			{Name: "embarrassed_blush", Weight: 3},
			{Name: "embarrassed_look_away", Weight: 2},
		},
		emotion.Neutral: {
			{Name: "neutral_rest", Weight: 4},
			{Name: "neutral_soft", Weight: 1.5},
		},
		emotion.Fear: {
			{Name: "fear_wide_eyes", Weight: 2.5},
			{Name: "fear_shrink", Weight: 1.5, Tags: []string{"tense"}},
		},
		emotion.Disgust: {
			{Name: "disgust_wrinkle", Weight: 2.5},
			{Name: "disgust_turn_away", Weight: 1.5},
		},
		emotion.Excited: {
			{Name: "excited_bounce", Weight: 2.5, Tags: []string{"playful", "excited"}},
			{Name: "excited_bright_eyes", Weight: 2},
		},
		emotion.Calm: {
			{Name: "calm_soft_rest", Weight: 3, Tags: []string{"warm"}},
			{Name: "calm_slow_blink", Weight: 1.5},
		},
		emotion.Grateful: {
			{Name: "grateful_bow", Weight: 2},
			{Name: "grateful_warm_smile", Weight: 2.5, Tags: []string{"warm"}},
		},
		emotion.Proud: {
			{Name: "proud_chin_up", Weight: 2.5},
			{Name: "proud_small_smile", Weight: 2},
		},
		emotion.Hopeful: {
			{Name: "hopeful_look_up", Weight: 2.5},
			{Name: "hopeful_soft_eyes", Weight: 2, Tags: []string{"warm"}},
		},
		emotion.Relieved: {
			{Name: "relieved_exhale", Weight: 3},
			{Name: "relieved_slump", Weight: 1.5},
		},
		emotion.Amused: {
			{Name: "amused_smirk", Weight: 2.5, Tags: []string{"playful"}},
			{Name: "amused_chuckle", Weight: 2},
		},
		emotion.Anxious: {
			{Name: "anxious_dart_eyes", Weight: 2.5, Tags: []string{"tense"}},
			{Name: "anxious_fidget", Weight: 2},
		},
		emotion.Confused: {
			{Name: "confused_tilt", Weight: 3},
			{Name: "confused_squint", Weight: 1.5},
		},
		emotion.Bored: {
			{Name: "bored_half_lids", Weight: 3},
			{Name: "bored_drift", Weight: 1.5},
		},
		emotion.Disappointed: {
			{Name: "disappointed_sigh", Weight: 2.5, Tags: []string{"melancholy"}},
			{Name: "disappointed_look_down", Weight: 2},
		},
		emotion.Lonely: {
			{Name: "lonely_distant_gaze", Weight: 2.5, Tags: []string{"melancholy"}},
			{Name: "lonely_small_rest", Weight: 2},
		},
		emotion.Curious: {
			{Name: "curious_lean_in", Weight: 2.5},
			{Name: "curious_head_tilt", Weight: 2, Tags: []string{"playful"}},
		},
		emotion.Determined: {
			{Name: "determined_set_jaw", Weight: 2.5},
			{Name: "determined_narrow_eyes", Weight: 2},
		},
		emotion.Playful: {
			{Name: "playful_wink", Weight: 2.5, Tags: []string{"playful"}},
			{Name: "playful_tongue", Weight: 1.5},
		},
		emotion.Contempt: {
			{Name: "contempt_side_eye", Weight: 2.5},
			{Name: "contempt_raised_brow", Weight: 2},
		},
	}
}
