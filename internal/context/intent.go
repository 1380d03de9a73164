// Package context tracks conversation tone, topic, intent, atmosphere
// and engagement, and resolves them with raw detections into a single
// context-adjusted emotion per processed utterance.
package context

import (
	"regexp"
	"strings"

	"github.com/normanking/emotive/internal/emotion"
)

// Intent is the classified purpose of an utterance.
type Intent string

const (
	IntentGreeting     Intent = "greeting"
	IntentFarewell     Intent = "farewell"
	IntentAppreciation Intent = "appreciation"
	IntentComplaint    Intent = "complaint"
	IntentQuestion     Intent = "question"
	IntentRequest      Intent = "request"
	IntentExpression   Intent = "expression"
	IntentAgreement    Intent = "agreement"
	IntentDisagreement Intent = "disagreement"
	IntentStatement    Intent = "statement"
	IntentUnknown      Intent = "unknown"
)

type intentPattern struct {
	intent Intent
	re     *regexp.Regexp
}

// Ordered by priority: the first matching pattern wins.
var intentPatterns = []intentPattern{
	{IntentGreeting, regexp.MustCompile(`(?i)^(hi|hello|hey|good (morning|afternoon|evening))\b|你好|早上好|晚上好|哈喽`)},
	{IntentFarewell, regexp.MustCompile(`(?i)\b(bye|goodbye|good night|see you|later)\b|再见|拜拜|晚安`)},
	{IntentAppreciation, regexp.MustCompile(`(?i)\b(thank|thanks|appreciate|grateful)\b|谢谢|感谢|多谢`)},
	{IntentComplaint, regexp.MustCompile(`(?i)\b(hate|awful|terrible|annoying|worst|sucks)\b|讨厌|糟糕|烦死|差劲`)},
	{IntentQuestion, regexp.MustCompile(`(?i)^(what|who|when|where|why|how|is|are|do|does|can|could|would|will)\b|吗[?？]?$|什么|怎么|为什么|哪`)},
	{IntentRequest, regexp.MustCompile(`(?i)\b(please|can you|could you|would you|help me)\b|请|帮我|可以.*吗`)},
	{IntentExpression, regexp.MustCompile(`(?i)\b(i feel|i'm so|i am so|wow|oh no|yay)\b|我觉得|我好|太.*了`)},
	{IntentAgreement, regexp.MustCompile(`(?i)^(yes|yeah|yep|sure|ok(ay)?|right|exactly|agreed)\b|^(好的|好啊|嗯|是的|没错|对)`)},
	{IntentDisagreement, regexp.MustCompile(`(?i)^(no|nope|nah|wrong|disagree)\b|^(不|不是|不对|没有)`)},
	{IntentStatement, regexp.MustCompile(`\S`)},
}

// ClassifyIntent matches the utterance against the priority-ordered
// pattern list. A trailing question mark forces question when nothing
// more specific matched.
func ClassifyIntent(text string) Intent {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return IntentUnknown
	}
	for _, p := range intentPatterns {
		if p.re.MatchString(trimmed) {
			if p.intent == IntentStatement &&
				(strings.HasSuffix(trimmed, "?") || strings.HasSuffix(trimmed, "？")) {
				return IntentQuestion
			}
			return p.intent
		}
	}
	if strings.HasSuffix(trimmed, "?") || strings.HasSuffix(trimmed, "？") {
		return IntentQuestion
	}
	return IntentUnknown
}

// intentEmotionBias maps an intent to the emotion it pulls toward and
// how hard it pulls.
var intentEmotionBias = map[Intent]struct {
	emotion emotion.Emotion
	weight  float64
}{
	IntentGreeting:     {emotion.Happy, 0.5},
	IntentFarewell:     {emotion.Calm, 0.4},
	IntentAppreciation: {emotion.Grateful, 0.6},
	IntentComplaint:    {emotion.Sad, 0.5},
	IntentQuestion:     {emotion.Curious, 0.45},
	IntentRequest:      {emotion.Thinking, 0.35},
	IntentExpression:   {emotion.Surprised, 0.3},
	IntentAgreement:    {emotion.Happy, 0.25},
	IntentDisagreement: {emotion.Confused, 0.3},
	IntentStatement:    {emotion.Neutral, 0.15},
}

// engagementDelta nudges the engagement level per intent.
var engagementDelta = map[Intent]float64{
	IntentGreeting:     0.15,
	IntentQuestion:     0.1,
	IntentExpression:   0.12,
	IntentAppreciation: 0.1,
	IntentRequest:      0.08,
	IntentAgreement:    0.03,
	IntentComplaint:    0.05,
	IntentStatement:    0.0,
	IntentDisagreement: 0.02,
	IntentFarewell:     -0.2,
	IntentUnknown:      -0.05,
}
