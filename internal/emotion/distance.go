package emotion

// Pairwise transition distance in [0,1]. Larger distance means a longer,
// harder transition: going happy->angry crosses more ground than
// calm->happy. The table is asymmetric where the source material calls
// for it; missing entries fall back to DefaultDistance.
const (
	// DefaultDistance applies to any pair not in the table.
	DefaultDistance = 0.5
	// SameEmotionDistance is deliberately nonzero so repeated identical
	// SetEmotion calls still animate slightly.
	SameEmotionDistance = 0.05
)

var distanceTable = map[Emotion]map[Emotion]float64{
	Neutral: {
		Happy: 0.3, Sad: 0.3, Angry: 0.4, Surprised: 0.25, Fear: 0.45,
		Calm: 0.15, Thinking: 0.2, Curious: 0.2, Bored: 0.25, Excited: 0.45,
	},
	Happy: {
		Excited: 0.15, Amused: 0.15, Playful: 0.2, Loving: 0.25,
		Grateful: 0.25, Proud: 0.3, Hopeful: 0.25, Relieved: 0.3,
		Calm: 0.35, Neutral: 0.3, Curious: 0.35,
		Sad: 0.85, Angry: 0.9, Fear: 0.85, Disgust: 0.8,
		Disappointed: 0.75, Lonely: 0.8, Contempt: 0.85,
	},
	Sad: {
		Lonely: 0.2, Disappointed: 0.2, Anxious: 0.35, Fear: 0.4,
		Bored: 0.45, Neutral: 0.3, Calm: 0.45, Relieved: 0.55,
		Happy: 0.85, Excited: 0.9, Playful: 0.85, Amused: 0.8,
	},
	Angry: {
		Contempt: 0.2, Disgust: 0.25, Determined: 0.4,
		Neutral: 0.4, Calm: 0.7,
		Happy: 0.9, Loving: 0.95, Playful: 0.85,
	},
	Surprised: {
		Excited: 0.25, Fear: 0.3, Confused: 0.25, Curious: 0.3,
		Happy: 0.4, Neutral: 0.25,
	},
	Fear: {
		Anxious: 0.2, Surprised: 0.3, Sad: 0.4, Neutral: 0.45,
		Calm: 0.7, Happy: 0.85, Relieved: 0.5,
	},
	Excited: {
		Happy: 0.15, Playful: 0.2, Surprised: 0.25, Curious: 0.3,
		Calm: 0.6, Bored: 0.85, Sad: 0.9,
	},
	Calm: {
		Neutral: 0.15, Relieved: 0.2, Thinking: 0.25, Happy: 0.35,
		Bored: 0.3, Angry: 0.7, Excited: 0.6,
	},
	Thinking: {
		Curious: 0.15, Confused: 0.25, Neutral: 0.2, Determined: 0.3,
		Calm: 0.25, Bored: 0.4,
	},
	Loving: {
		Happy: 0.25, Grateful: 0.25, Calm: 0.35, Playful: 0.35,
		Angry: 0.95, Contempt: 0.95, Disgust: 0.9,
	},
	Anxious: {
		Fear: 0.2, Sad: 0.35, Confused: 0.35, Neutral: 0.4,
		Calm: 0.65, Relieved: 0.5,
	},
	Bored: {
		Neutral: 0.25, Curious: 0.5, Excited: 0.85,
	},
	Curious: {
		Thinking: 0.15, Surprised: 0.3, Excited: 0.3, Neutral: 0.2,
		Playful: 0.35, Bored: 0.5,
	},
	Disappointed: {
		Sad: 0.2, Lonely: 0.35, Bored: 0.4, Neutral: 0.35,
		Happy: 0.75, Excited: 0.85,
	},
	Embarrassed: {
		Anxious: 0.3, Sad: 0.4, Amused: 0.45, Neutral: 0.4,
	},
	Contempt: {
		Angry: 0.2, Disgust: 0.2, Bored: 0.45, Neutral: 0.45,
		Loving: 0.95, Happy: 0.85,
	},
	Disgust: {
		Contempt: 0.2, Angry: 0.25, Fear: 0.4, Neutral: 0.45,
		Happy: 0.85, Loving: 0.9, Amused: 0.7,
	},
	Grateful: {
		Happy: 0.2, Loving: 0.25, Relieved: 0.3, Calm: 0.3,
		Neutral: 0.35, Angry: 0.85, Contempt: 0.9,
	},
	Proud: {
		Happy: 0.25, Determined: 0.3, Excited: 0.35, Grateful: 0.4,
		Neutral: 0.4, Embarrassed: 0.75, Sad: 0.7,
	},
	Hopeful: {
		Happy: 0.25, Excited: 0.3, Determined: 0.3, Curious: 0.35,
		Neutral: 0.35, Disappointed: 0.7, Sad: 0.65,
	},
	Relieved: {
		Calm: 0.2, Happy: 0.3, Grateful: 0.3, Neutral: 0.25,
		Anxious: 0.7, Fear: 0.75,
	},
	Amused: {
		Happy: 0.15, Playful: 0.2, Excited: 0.3, Curious: 0.35,
		Neutral: 0.3, Sad: 0.75, Angry: 0.8,
	},
	Confused: {
		Thinking: 0.2, Curious: 0.25, Surprised: 0.3, Anxious: 0.35,
		Neutral: 0.3, Determined: 0.55,
	},
	Lonely: {
		Sad: 0.2, Disappointed: 0.35, Bored: 0.4, Anxious: 0.4,
		Neutral: 0.4, Loving: 0.6, Happy: 0.75,
	},
	Determined: {
		Proud: 0.3, Thinking: 0.3, Excited: 0.35, Angry: 0.4,
		Neutral: 0.35, Bored: 0.7, Confused: 0.55,
	},
	Playful: {
		Happy: 0.2, Amused: 0.2, Excited: 0.25, Curious: 0.3,
		Loving: 0.35, Neutral: 0.35, Sad: 0.85, Angry: 0.85,
	},
}

// Distance returns the transition distance from a to b. Unconfigured
// pairs resolve conservatively to DefaultDistance rather than failing.
func Distance(a, b Emotion) float64 {
	if a == b {
		return SameEmotionDistance
	}
	if row, ok := distanceTable[a]; ok {
		if d, ok := row[b]; ok {
			return d
		}
	}
	return DefaultDistance
}

// Compatibility in [0,1] says how naturally two emotions coexist as a
// primary/secondary blend. Below CompatibilityThreshold the blend
// collapses to the primary alone.
const CompatibilityThreshold = 0.3

var compatibilityTable = map[Emotion]map[Emotion]float64{
	Happy:        {Excited: 0.9, Playful: 0.85, Amused: 0.85, Loving: 0.8, Grateful: 0.8, Surprised: 0.6, Calm: 0.5, Sad: 0.1, Angry: 0.05},
	Sad:          {Lonely: 0.9, Disappointed: 0.85, Anxious: 0.6, Fear: 0.5, Calm: 0.35, Happy: 0.1, Excited: 0.05},
	Angry:        {Contempt: 0.85, Disgust: 0.8, Determined: 0.6, Sad: 0.4, Happy: 0.05, Loving: 0.05},
	Surprised:    {Excited: 0.8, Curious: 0.75, Confused: 0.7, Fear: 0.6, Happy: 0.6},
	Fear:         {Anxious: 0.9, Surprised: 0.6, Sad: 0.5, Happy: 0.1},
	Calm:         {Relieved: 0.85, Neutral: 0.8, Thinking: 0.7, Happy: 0.5, Angry: 0.1},
	Thinking:     {Curious: 0.85, Confused: 0.7, Determined: 0.65, Calm: 0.7},
	Excited:      {Happy: 0.9, Playful: 0.85, Surprised: 0.8, Curious: 0.7, Bored: 0.05},
	Loving:       {Happy: 0.8, Grateful: 0.75, Calm: 0.6, Angry: 0.05},
	Curious:      {Thinking: 0.85, Surprised: 0.75, Playful: 0.6},
	Disgust:      {Contempt: 0.85, Fear: 0.5, Happy: 0.05},
	Grateful:     {Relieved: 0.8, Calm: 0.7, Hopeful: 0.65, Angry: 0.05},
	Proud:        {Determined: 0.8, Happy: 0.75, Excited: 0.7, Embarrassed: 0.1},
	Hopeful:      {Determined: 0.75, Curious: 0.7, Anxious: 0.45, Disappointed: 0.1},
	Relieved:     {Grateful: 0.8, Neutral: 0.7, Anxious: 0.15},
	Amused:       {Playful: 0.9, Surprised: 0.65, Bored: 0.1},
	Anxious:      {Confused: 0.65, Lonely: 0.55, Calm: 0.1},
	Confused:     {Anxious: 0.65, Bored: 0.4},
	Bored:        {Neutral: 0.75, Lonely: 0.5, Excited: 0.05},
	Disappointed: {Lonely: 0.7, Bored: 0.5, Hopeful: 0.1},
	Lonely:       {Bored: 0.5, Anxious: 0.55, Loving: 0.3},
	Embarrassed:  {Amused: 0.55, Anxious: 0.6, Proud: 0.1},
	Determined:   {Hopeful: 0.75, Angry: 0.5, Bored: 0.05},
	Playful:      {Amused: 0.9, Loving: 0.6, Sad: 0.05},
	Contempt:     {Disgust: 0.85, Bored: 0.5, Loving: 0.05},
}

// Compatibility returns how well two emotions blend. Order-insensitive;
// unknown pairs default to a low-but-usable 0.3.
func Compatibility(a, b Emotion) float64 {
	if a == b {
		return 1
	}
	if row, ok := compatibilityTable[a]; ok {
		if c, ok := row[b]; ok {
			return c
		}
	}
	if row, ok := compatibilityTable[b]; ok {
		if c, ok := row[a]; ok {
			return c
		}
	}
	return 0.3
}

// Blend combines candidate states into a primary/secondary snapshot.
// The strongest state wins primary; the runner-up survives as secondary
// only if it is compatible enough with the primary.
func Blend(states []State) Blended {
	if len(states) == 0 {
		return Blended{Primary: Neutral, PrimaryWeight: 1, BlendProgress: 1}
	}
	best, second := states[0], State{}
	hasSecond := false
	for _, s := range states[1:] {
		if s.Intensity > best.Intensity {
			second, hasSecond = best, true
			best = s
		} else if !hasSecond || s.Intensity > second.Intensity {
			second, hasSecond = s, true
		}
	}
	if !hasSecond || Compatibility(best.Type, second.Type) < CompatibilityThreshold {
		return Blended{Primary: best.Type, PrimaryWeight: 1, BlendProgress: 1}
	}
	total := best.Intensity + second.Intensity
	if total <= 0 {
		return Blended{Primary: best.Type, PrimaryWeight: 1, BlendProgress: 1}
	}
	return Blended{
		Primary:         best.Type,
		Secondary:       second.Type,
		PrimaryWeight:   best.Intensity / total,
		SecondaryWeight: second.Intensity / total,
		BlendProgress:   1,
	}
}
