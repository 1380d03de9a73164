package microexpr

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/normanking/emotive/internal/bus"
	"github.com/normanking/emotive/internal/emotion"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestGenerator() (*Generator, *fakeClock) {
	clk := &fakeClock{t: time.Unix(1700000000, 0)}
	g := NewGenerator(DefaultConfig(), nil, zerolog.Nop())
	g.now = clk.now
	g.epoch = clk.t
	return g, clk
}

func TestUpdateNoOpWhenStopped(t *testing.T) {
	g, clk := newTestGenerator()
	before := g.Params(clk.t)
	clk.advance(5 * time.Second)
	g.Update(clk.t)
	after := g.Params(clk.t)
	assert.Equal(t, before, after)
}

func TestDriftStaysWithinAmplitude(t *testing.T) {
	g, clk := newTestGenerator()
	g.Start()
	for i := 0; i < 600; i++ {
		clk.advance(16 * time.Millisecond)
		g.Update(clk.t)
	}
	p := g.Params(clk.t)
	for k, v := range p {
		assert.False(t, math.IsNaN(v), "param %s is NaN", k)
		assert.LessOrEqual(t, math.Abs(v), 1.0, "param %s out of range", k)
	}
	assert.Contains(t, p, "browL")
	assert.Contains(t, p, "mouthCornerR")
}

func TestDriftIsSmooth(t *testing.T) {
	g, clk := newTestGenerator()
	g.Start()
	prev := g.Params(clk.t)["browL"]
	for i := 0; i < 300; i++ {
		clk.advance(16 * time.Millisecond)
		g.Update(clk.t)
		cur := g.Params(clk.t)["browL"]
		// per-frame movement is bounded by (1-smoothness) of the
		// largest possible target gap; allow flutter on top
		assert.Less(t, math.Abs(cur-prev), 0.2)
		prev = cur
	}
}

func TestTriggerReactionEnvelope(t *testing.T) {
	g, clk := newTestGenerator()
	g.Start()
	g.TriggerReaction("smile_flash")

	clk.advance(300 * time.Millisecond) // mid-burst, full strength
	mid := g.Params(clk.t)["cheekRaise"]
	assert.InDelta(t, 0.3, mid, 0.01)

	clk.advance(280 * time.Millisecond) // fading out
	tail := g.Params(clk.t)["cheekRaise"]
	assert.Greater(t, tail, 0.0)
	assert.Less(t, tail, mid)

	clk.advance(100 * time.Millisecond)
	g.Update(clk.t) // past duration, burst expires
	assert.Equal(t, 0.0, g.Params(clk.t)["cheekRaise"])
}

func TestConcurrentBurstsSum(t *testing.T) {
	g, clk := newTestGenerator()
	g.Start()
	g.TriggerReaction("brow_raise")
	g.TriggerReaction("eye_widen")

	clk.advance(200 * time.Millisecond) // both at full envelope
	p := g.Params(clk.t)
	// brow_raise 0.6 + eye_widen 0.3, plus drift near zero at start
	assert.Greater(t, p["browL"], 0.7)
}

func TestUnknownReactionIgnored(t *testing.T) {
	g, clk := newTestGenerator()
	g.Start()
	g.TriggerReaction("backflip")
	assert.Equal(t, 0.0, g.Params(clk.t)["backflip"])
}

func TestAnalyzeAndReact(t *testing.T) {
	g, _ := newTestGenerator()
	g.Start()

	assert.Equal(t, "smile_flash", g.AnalyzeAndReact("haha that's great"))
	assert.Equal(t, "frown_flash", g.AnalyzeAndReact("这也太糟糕了"))
	assert.Equal(t, "wince", g.AnalyzeAndReact("ouch!"))
	assert.Equal(t, "", g.AnalyzeAndReact("the weather is fine"))
}

func TestAnalyzeAndReactPublishes(t *testing.T) {
	b := bus.New(zerolog.Nop())
	g := NewGenerator(DefaultConfig(), b, zerolog.Nop())
	g.Start()

	var kinds []string
	b.Subscribe(bus.EventReactionBurst, func(ev bus.Event) {
		kinds = append(kinds, ev.Data["kind"].(string))
	})
	g.AnalyzeAndReact("wow really?")
	assert.Equal(t, []string{"eye_widen"}, kinds)
}

func TestFlutterScalesWithIntensity(t *testing.T) {
	g, clk := newTestGenerator()
	g.Start()
	g.SetEmotion(emotion.Excited, 1)

	// sample a quarter period (~278ms) into the excited flutter so the
	// sinusoid is near its peak
	at := clk.t.Add(278 * time.Millisecond)
	with := g.Params(at)["browL"]

	g.SetEmotion(emotion.Excited, 0)
	without := g.Params(at)["browL"]
	assert.NotEqual(t, with, without)
}

func TestDestroyDropsBursts(t *testing.T) {
	g, clk := newTestGenerator()
	g.Start()
	g.TriggerReaction("pout")
	g.Destroy()
	g.Destroy() // safe twice
	clk.advance(100 * time.Millisecond)
	assert.Equal(t, 0.0, g.Params(clk.t)["mouthPout"])
}
