package params

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetDropsNonFinite(t *testing.T) {
	m := New()
	m.Set("a", 0.5)
	m.Set("a", math.NaN())
	m.Set("a", math.Inf(1))
	assert.Equal(t, 0.5, m.Get("a"))
}

func TestCloneIsIndependent(t *testing.T) {
	m := New()
	m.Set("a", 1)
	c := m.Clone()
	c.Set("a", 0)
	assert.Equal(t, 1.0, m.Get("a"))
}

func TestMergeLaterSourcesWin(t *testing.T) {
	dst := Map{"a": 0.1, "b": 0.2}
	Merge(dst, Map{"a": 0.3}, Map{"a": 0.4, "c": 0.5})
	assert.Equal(t, 0.4, dst.Get("a"))
	assert.Equal(t, 0.2, dst.Get("b"))
	assert.Equal(t, 0.5, dst.Get("c"))
}

func TestAccumulateMapsClamps(t *testing.T) {
	dst := Map{"a": 0.8}
	Accumulate(dst, Map{"a": 0.8, "b": -2})
	assert.Equal(t, 1.0, dst.Get("a"))
	assert.Equal(t, -1.0, dst.Get("b"))
}

func TestAccumulateKey(t *testing.T) {
	m := New()
	m.Accumulate("brow", 0.6)
	m.Accumulate("brow", 0.6)
	assert.Equal(t, 1.0, m.Get("brow"))

	m.Accumulate("brow", -0.3)
	assert.InDelta(t, 0.7, m.Get("brow"), 1e-12)

	m.Accumulate("brow", math.NaN())
	m.Accumulate("brow", math.Inf(-1))
	assert.InDelta(t, 0.7, m.Get("brow"), 1e-12)
}

func TestClampAndLerp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-1))
	assert.Equal(t, 1.0, Clamp01(2))
	assert.Equal(t, -1.0, ClampSigned(-3))
	assert.Equal(t, 2.0, Lerp(2, 4, -1))
	assert.Equal(t, 4.0, Lerp(2, 4, 5))
	assert.Equal(t, 3.0, Lerp(2, 4, 0.5))
}
