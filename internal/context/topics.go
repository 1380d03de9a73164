package context

import (
	"strings"

	"github.com/normanking/emotive/internal/emotion"
)

// Topic is a coarse conversational subject detected by keyword match.
type Topic string

const (
	TopicWork     Topic = "work"
	TopicFamily   Topic = "family"
	TopicHealth   Topic = "health"
	TopicHobby    Topic = "hobby"
	TopicFood     Topic = "food"
	TopicWeather  Topic = "weather"
	TopicGames    Topic = "games"
	TopicFeelings Topic = "feelings"
)

var topicKeywords = map[Topic][]string{
	TopicWork:     {"work", "job", "boss", "meeting", "deadline", "工作", "上班", "加班", "老板"},
	TopicFamily:   {"family", "mom", "dad", "sister", "brother", "家人", "妈妈", "爸爸"},
	TopicHealth:   {"sick", "doctor", "tired", "sleep", "hospital", "生病", "医院", "累", "睡"},
	TopicHobby:    {"hobby", "movie", "music", "book", "draw", "电影", "音乐", "画画", "书"},
	TopicFood:     {"food", "eat", "dinner", "lunch", "hungry", "吃", "晚饭", "午饭", "饿"},
	TopicWeather:  {"weather", "rain", "sunny", "snow", "cold", "hot", "天气", "下雨", "下雪"},
	TopicGames:    {"game", "play", "win", "lose", "游戏", "打游戏", "赢", "输"},
	TopicFeelings: {"feel", "feeling", "heart", "心情", "感觉", "心里"},
}

// topicEmotionBias pulls the resolved emotion toward the topic's usual
// affect.
var topicEmotionBias = map[Topic]struct {
	emotion emotion.Emotion
	weight  float64
}{
	TopicWork:     {emotion.Thinking, 0.2},
	TopicFamily:   {emotion.Loving, 0.25},
	TopicHealth:   {emotion.Anxious, 0.25},
	TopicHobby:    {emotion.Happy, 0.2},
	TopicFood:     {emotion.Happy, 0.15},
	TopicWeather:  {emotion.Calm, 0.1},
	TopicGames:    {emotion.Playful, 0.25},
	TopicFeelings: {emotion.Loving, 0.2},
}

var topicOrder = []Topic{
	TopicFeelings, TopicHealth, TopicWork, TopicFamily,
	TopicGames, TopicHobby, TopicFood, TopicWeather,
}

// DetectTopic returns the first topic whose keywords appear, checked in
// a fixed priority order, or "".
func DetectTopic(text string) Topic {
	lower := strings.ToLower(text)
	for _, topic := range topicOrder {
		for _, w := range topicKeywords[topic] {
			if strings.Contains(lower, w) {
				return topic
			}
		}
	}
	return ""
}
