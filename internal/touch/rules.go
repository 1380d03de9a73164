package touch

import "time"

// defaultRules is the shipped interaction table. Affection windows gate
// the warmer reactions behind an established relationship; low-trust
// rules cap out so they stop firing once affection grows past them.
func defaultRules() []Rule {
	return []Rule{
		{
			Area: AreaHead, Kind: KindTap, Weight: 1,
			Reactions: []Reaction{
				{Expression: "happy", Dialogue: "Hehe, that tickles.", EmotionalChange: 1, Weight: 2},
				{Expression: "shy", Dialogue: "Oh! You surprised me.", EmotionalChange: 0.5, Weight: 1},
			},
		},
		{
			Area: AreaHead, Kind: KindRub, MinAffection: 30, Weight: 2,
			Reactions: []Reaction{
				{Expression: "delighted", Dialogue: "Mmm, head pats are the best.", EmotionalChange: 2, Weight: 3},
				{Expression: "blush", Dialogue: "Y-you can keep doing that...", EmotionalChange: 2.5, Weight: 1},
			},
		},
		{
			Area: AreaHead, Kind: KindRub, MaxAffection: 30, Weight: 1,
			Reactions: []Reaction{
				{Expression: "shy", Dialogue: "We barely know each other!", EmotionalChange: 0.5, Weight: 2},
				{Expression: "annoyed", Dialogue: "Please don't mess up my hair.", EmotionalChange: -0.5, Weight: 1},
			},
		},
		{
			Area: AreaHair, Kind: KindRub, Weight: 1,
			Reactions: []Reaction{
				{Expression: "happy", Dialogue: "You like my hair?", EmotionalChange: 1.5, Weight: 2},
				{Expression: "shy", Dialogue: "I brushed it this morning.", EmotionalChange: 1, Weight: 1},
			},
		},
		{
			Area: AreaHair, Kind: KindDrag, Weight: 1,
			Reactions: []Reaction{
				{Expression: "hurt", Dialogue: "Ow! Don't pull!", EmotionalChange: -3, Cooldown: 2 * time.Second, Weight: 1},
			},
		},
		{
			Area: AreaFace, Kind: KindTap, Weight: 1,
			Reactions: []Reaction{
				{Expression: "surprised", Dialogue: "Boop?", EmotionalChange: 0.5, Weight: 2},
				{Expression: "pout", Dialogue: "My face is not a button.", EmotionalChange: -0.5, Weight: 1},
			},
		},
		{
			Area: AreaFace, Kind: KindDoubleTap, Weight: 1,
			Reactions: []Reaction{
				{Expression: "amused", Dialogue: "Double boop!", EmotionalChange: 1, Weight: 1},
			},
		},
		{
			Area: AreaFace, Kind: KindLongPress, MinAffection: 50, Weight: 1,
			Reactions: []Reaction{
				{Expression: "blush", Dialogue: "Your hand is warm...", EmotionalChange: 2, Cooldown: 3 * time.Second, Weight: 1},
			},
		},
		{
			Area: AreaFace, Kind: KindLongPress, MaxAffection: 50, Weight: 1,
			Reactions: []Reaction{
				{Expression: "annoyed", Dialogue: "Um. Personal space?", EmotionalChange: -1, Weight: 1},
			},
		},
		{
			Area: AreaShoulder, Kind: KindTap, Weight: 1,
			Reactions: []Reaction{
				{Expression: "neutral", Dialogue: "Yes? I'm listening.", Weight: 2},
				{Expression: "happy", Dialogue: "Need something?", EmotionalChange: 0.5, Weight: 1},
			},
		},
		{
			Area: AreaHand, Kind: KindTap, Weight: 1,
			Reactions: []Reaction{
				{Expression: "happy", Dialogue: "High five!", EmotionalChange: 1, Weight: 1},
			},
		},
		{
			Area: AreaHand, Kind: KindLongPress, MinAffection: 60, Weight: 1,
			Reactions: []Reaction{
				{Expression: "delighted", Dialogue: "I don't mind holding hands.", EmotionalChange: 3, Cooldown: 5 * time.Second, Weight: 1},
			},
		},
		{
			Area: AreaBody, Kind: KindTap, Weight: 1,
			Reactions: []Reaction{
				{Expression: "surprised", Dialogue: "Eep!", EmotionalChange: -0.5, Weight: 1},
			},
		},
	}
}
