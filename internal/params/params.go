// Package params defines the flat named-float parameter map consumed by
// the renderer binding. Values are either [0,1] weights or [-1,1] signed
// offsets depending on the parameter.
package params

import "math"

// Map is a flat set of named animation parameters.
type Map map[string]float64

// New returns an empty parameter map.
func New() Map {
	return make(Map)
}

// Clone returns an independent copy so callers never hold an alias into
// internal state.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Set stores a value, dropping NaN/Inf instead of propagating them.
func (m Map) Set(key string, value float64) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return
	}
	m[key] = value
}

// Get returns the value for key, or 0 if unset.
func (m Map) Get(key string) float64 {
	return m[key]
}

// Accumulate adds v onto the existing value for key, clamping the
// result to [-1,1]. NaN/Inf contributions are dropped like Set does.
func (m Map) Accumulate(key string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	m[key] = ClampSigned(m[key] + v)
}

// Merge overlays each src onto dst in order; later sources win on key
// collisions. dst is returned for chaining.
func Merge(dst Map, srcs ...Map) Map {
	for _, src := range srcs {
		for k, v := range src {
			dst.Set(k, v)
		}
	}
	return dst
}

// Accumulate adds each src value onto dst, clamping the result to [-1,1].
func Accumulate(dst Map, srcs ...Map) Map {
	for _, src := range srcs {
		for k, v := range src {
			dst.Set(k, ClampSigned(dst[k]+v))
		}
	}
	return dst
}

// Clamp bounds v to [min,max].
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Clamp01 bounds v to [0,1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// ClampSigned bounds v to [-1,1].
func ClampSigned(v float64) float64 {
	return Clamp(v, -1, 1)
}

// Lerp interpolates from a to b by t in [0,1].
func Lerp(a, b, t float64) float64 {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return a + (b-a)*t
}
