// Package sense holds the leaf signal extractors: pure functions that
// turn raw text or pre-extracted voice features into a candidate emotion
// with a confidence score. Nothing here keeps conversational state; that
// is the context engine's job.
package sense

import (
	"strings"

	"github.com/normanking/emotive/internal/emotion"
	"github.com/normanking/emotive/internal/params"
)

// TextResult is a candidate emotion detected from one utterance.
type TextResult struct {
	Emotion    emotion.Emotion
	Confidence float64
}

// emotionKeywords maps lexical cues to emotions. Both English and CJK
// cues are matched by substring, so no tokenization is required.
var emotionKeywords = map[emotion.Emotion][]string{
	emotion.Happy: {
		"happy", "glad", "great", "wonderful", "awesome", "yay", "haha",
		"love it", "开心", "高兴", "太好了", "棒", "哈哈",
	},
	emotion.Sad: {
		"sad", "unhappy", "depressed", "miss you", "cry", "crying",
		"难过", "伤心", "悲伤", "想哭", "呜呜",
	},
	emotion.Angry: {
		"angry", "furious", "mad at", "hate", "annoying",
		"生气", "愤怒", "讨厌", "烦死",
	},
	emotion.Surprised: {
		"wow", "what?!", "no way", "really?!", "unbelievable",
		"哇", "天哪", "不会吧", "真的吗",
	},
	emotion.Fear: {
		"scared", "afraid", "terrified", "frightening",
		"害怕", "恐怖", "吓",
	},
	emotion.Excited: {
		"excited", "can't wait", "amazing", "let's go",
		"激动", "兴奋", "迫不及待",
	},
	emotion.Grateful: {
		"thank", "thanks", "appreciate", "grateful",
		"谢谢", "感谢", "多谢",
	},
	emotion.Loving: {
		"love you", "adore", "sweetheart", "爱你", "喜欢你", "亲爱的",
	},
	emotion.Confused: {
		"confused", "don't understand", "what do you mean",
		"不懂", "不明白", "什么意思",
	},
	emotion.Bored: {
		"bored", "boring", "无聊", "没意思",
	},
	emotion.Curious: {
		"curious", "wonder", "interesting", "tell me more",
		"好奇", "有意思", "为什么",
	},
	emotion.Anxious: {
		"worried", "anxious", "nervous", "担心", "紧张", "焦虑",
	},
	emotion.Disappointed: {
		"disappointed", "let down", "失望", "可惜",
	},
	emotion.Lonely: {
		"lonely", "alone", "孤独", "寂寞",
	},
	emotion.Calm: {
		"calm", "relax", "peaceful", "平静", "放松",
	},
}

// AnalyzeText scores an utterance against the keyword tables and returns
// the strongest candidate emotion. Neutral with low confidence when
// nothing matches.
func AnalyzeText(text string) TextResult {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return TextResult{Emotion: emotion.Neutral, Confidence: 0}
	}

	best := emotion.Neutral
	bestHits := 0
	for e, words := range emotionKeywords {
		hits := 0
		for _, w := range words {
			if strings.Contains(lower, w) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = e, hits
		}
	}

	if bestHits == 0 {
		return TextResult{Emotion: emotion.Neutral, Confidence: 0.2}
	}

	conf := 0.4 + 0.2*float64(bestHits)

	// Punctuation cues amplify whatever was detected.
	if strings.ContainsAny(text, "!！") {
		conf += 0.15
	}
	if strings.Contains(text, "!!") || strings.Contains(text, "！！") {
		conf += 0.1
	}

	return TextResult{Emotion: best, Confidence: params.Clamp01(conf)}
}
