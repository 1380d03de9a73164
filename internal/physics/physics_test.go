package physics

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSim(t *testing.T) (*Simulator, *Chain) {
	t.Helper()
	s := NewSimulator(DefaultConfig(), zerolog.Nop())
	ch, err := s.CreateChain("hair", 6, mgl32.Vec3{0, 1.5, 0}, SpringConfig{})
	require.NoError(t, err)
	return s, ch
}

func tick(s *Simulator, start time.Time, frames int, frameTime time.Duration) time.Time {
	now := start
	for i := 0; i < frames; i++ {
		now = now.Add(frameTime)
		s.Update(now)
	}
	return now
}

func TestCreateChainValidation(t *testing.T) {
	s := NewSimulator(DefaultConfig(), zerolog.Nop())
	_, err := s.CreateChain("x", 1, mgl32.Vec3{}, SpringConfig{})
	assert.Error(t, err)

	_, err = s.CreateChain("x", 4, mgl32.Vec3{}, SpringConfig{})
	require.NoError(t, err)
	_, err = s.CreateChain("x", 4, mgl32.Vec3{}, SpringConfig{})
	assert.Error(t, err, "duplicate id must be rejected")
}

func TestAddChainRegistersCallerBuiltChain(t *testing.T) {
	s := NewSimulator(DefaultConfig(), zerolog.Nop())

	build := func(id string) *Chain {
		ch := &Chain{ID: id}
		for i := 0; i < 4; i++ {
			ch.Points = append(ch.Points, &Point{
				Position: mgl32.Vec3{0.1 * float32(i), 1.5, 0},
			})
		}
		return ch
	}

	ch := build("tail")
	require.NoError(t, s.AddChain(ch, SpringConfig{}))
	assert.Contains(t, s.ChainIDs(), "tail")

	// current pose becomes the rest pose, first point is the anchor
	assert.True(t, ch.Points[0].Fixed)
	assert.False(t, ch.Points[1].Fixed)
	assert.Equal(t, mgl32.Vec3{0.1, 0, 0}, ch.Points[1].rest)
	assert.Equal(t, float32(1), ch.Points[2].Mass)

	outs := s.Outputs("tail")
	require.Len(t, outs, 4)
	assert.Equal(t, mgl32.Vec3{}, outs[2].Offset)

	assert.Error(t, s.AddChain(build("tail"), SpringConfig{}), "duplicate id must be rejected")
	assert.Error(t, s.AddChain(nil, SpringConfig{}))
	assert.Error(t, s.AddChain(&Chain{ID: "short", Points: []*Point{{}}}, SpringConfig{}))
}

func TestAnchorFollowsDriver(t *testing.T) {
	s, ch := newTestSim(t)
	s.Start()
	start := time.Unix(1700000000, 0)
	s.Update(start)

	target := mgl32.Vec3{0.4, 1.6, -0.1}
	s.SetDriver("hair", target)
	tick(s, start, 3, 16*time.Millisecond)

	assert.Equal(t, target, ch.Points[0].Position)
}

func TestChainSettlesHangingDown(t *testing.T) {
	s, ch := newTestSim(t)
	s.Start()
	start := time.Unix(1700000000, 0)
	s.Update(start)

	// two simulated seconds at 60fps
	tick(s, start, 120, 16667*time.Microsecond)

	anchor := ch.Points[0].Position
	for i := 1; i < len(ch.Points); i++ {
		p := ch.Points[i]
		assert.Less(t, p.Position.Y(), anchor.Y(), "point %d should hang below anchor", i)
		assert.InDelta(t, 0, float64(p.Position.X()), 0.05)
		assert.Less(t, float64(p.Velocity.Len()), 0.5, "point %d should be near rest", i)
	}
}

func TestSegmentStretchBounded(t *testing.T) {
	s, ch := newTestSim(t)
	s.Start()
	start := time.Unix(1700000000, 0)
	s.Update(start)

	// whip the driver around hard
	now := start
	for i := 0; i < 90; i++ {
		now = now.Add(16 * time.Millisecond)
		x := float32(math.Sin(float64(i)*0.5)) * 2
		s.SetDriver("hair", mgl32.Vec3{x, 1.5, 0})
		s.Update(now)
	}

	cfg := ch.cfg
	maxLen := float64(cfg.RestLength * (1 + cfg.MaxStretch))
	for i := 1; i < len(ch.Points); i++ {
		seg := ch.Points[i].Position.Sub(ch.Points[i-1].Position).Len()
		assert.LessOrEqual(t, float64(seg), maxLen+1e-4, "segment %d overstretched", i)
	}
}

func TestFrameDropStaysFinite(t *testing.T) {
	s, ch := newTestSim(t)
	s.Start()
	start := time.Unix(1700000000, 0)
	s.Update(start)
	now := tick(s, start, 30, 16*time.Millisecond)

	// single 500ms stall, then resumed normal ticking
	now = now.Add(500 * time.Millisecond)
	s.SetDriver("hair", mgl32.Vec3{3, 1.5, 2})
	s.Update(now)
	tick(s, now, 60, 16*time.Millisecond)

	for i, p := range ch.Points {
		assert.True(t, finiteVec(p.Position), "point %d position not finite", i)
		assert.True(t, finiteVec(p.Velocity), "point %d velocity not finite", i)
	}
}

func TestWindPerturbsChain(t *testing.T) {
	s, ch := newTestSim(t)
	s.SetWind(mgl32.Vec3{1, 0, 0}, 6)
	s.Start()
	start := time.Unix(1700000000, 0)
	s.Update(start)
	tick(s, start, 120, 16667*time.Microsecond)

	tip := ch.Points[len(ch.Points)-1]
	assert.Greater(t, float64(tip.Position.X()), 0.01, "wind should push the tip sideways")
}

func TestUpdateNoOpWhenStopped(t *testing.T) {
	s, ch := newTestSim(t)
	start := time.Unix(1700000000, 0)
	before := ch.Points[2].Position
	tick(s, start, 30, 16*time.Millisecond)
	assert.Equal(t, before, ch.Points[2].Position)
}

func TestOutputsShape(t *testing.T) {
	s, ch := newTestSim(t)
	s.Start()
	start := time.Unix(1700000000, 0)
	s.Update(start)
	tick(s, start, 30, 16*time.Millisecond)

	out := s.Outputs("hair")
	require.Len(t, out, len(ch.Points))
	assert.Equal(t, mgl32.Vec3{}, out[0].Rotation, "anchor has no bend")
	assert.Nil(t, s.Outputs("nope"))
}

func TestRemoveAndDestroy(t *testing.T) {
	s, _ := newTestSim(t)
	s.RemoveChain("hair")
	s.RemoveChain("hair") // second remove is a no-op
	assert.Empty(t, s.ChainIDs())

	_, err := s.CreateChain("hair", 4, mgl32.Vec3{}, SpringConfig{})
	require.NoError(t, err)
	s.Destroy()
	s.Destroy() // safe twice
	assert.Empty(t, s.ChainIDs())
}
