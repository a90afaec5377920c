package layout

import "math"

// FadeOpacity is the linear fade-in alpha for a frame: frame / (fps*seconds),
// clamped to [0, 1].
func FadeOpacity(frame, fps int, seconds float64) float64 {
	if seconds <= 0 || fps <= 0 {
		return 1
	}
	return Clamp01(float64(frame) / (float64(fps) * seconds))
}

// EaseInOutSine maps value within [0, max] onto a sine ease curve that starts
// at 1 and settles at 0 once value reaches max.
func EaseInOutSine(value, max float64) float64 {
	if max <= 0 {
		return 0
	}
	x := Clamp01(1 - value/max)
	return -(math.Cos(math.Pi*x) - 1) / 2
}

// Clamp01 limits v to the closed unit interval.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Lerp performs linear interpolation between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
