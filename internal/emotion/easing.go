package emotion

import "math"

// Easing selects the interpolation curve a transition advances through.
type Easing string

const (
	EaseLinear    Easing = "linear"
	EaseIn        Easing = "easeIn"
	EaseOut       Easing = "easeOut"
	EaseInOut     Easing = "easeInOut"
	EaseSpring    Easing = "spring"
	EaseBounce    Easing = "bounce"
)

// ease maps raw progress t in [0,1] through the named curve. Spring and
// bounce are closed-form approximations, not physical integration.
func ease(kind Easing, t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	switch kind {
	case EaseIn:
		return t * t * t
	case EaseOut:
		return 1 - math.Pow(1-t, 3)
	case EaseInOut:
		if t < 0.5 {
			return 4 * t * t * t
		}
		return 1 - math.Pow(-2*t+2, 3)/2
	case EaseSpring:
		return springEase(t, 0.3, 8.0)
	case EaseBounce:
		return bounceEase(t)
	default:
		return t
	}
}

func springEase(t, damping, frequency float64) float64 {
	decay := math.Exp(-damping * t * frequency)
	oscillation := math.Cos(frequency * t * (1 - damping))
	return 1 - decay*oscillation
}

func bounceEase(t float64) float64 {
	const n, d = 7.5625, 2.75
	switch {
	case t < 1/d:
		return n * t * t
	case t < 2/d:
		t -= 1.5 / d
		return n*t*t + 0.75
	case t < 2.5/d:
		t -= 2.25 / d
		return n*t*t + 0.9375
	default:
		t -= 2.625 / d
		return n*t*t + 0.984375
	}
}
