// Package physics simulates 1-D spring chains (hair strands, clothing
// tails, accessories) hanging off a driven anchor. Integration is
// semi-implicit Euler over a fixed-timestep accumulator so the result
// is independent of render rate, with constraint relaxation keeping
// chains from stretching or folding unnaturally.
package physics

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
)

// SpringConfig tunes one chain.
type SpringConfig struct {
	Stiffness    float32 `mapstructure:"stiffness"`     // spring constant toward neighbors
	Damping      float32 `mapstructure:"damping"`       // velocity damping per second
	RestLength   float32 `mapstructure:"rest_length"`   // distance between consecutive points
	MaxStretch   float32 `mapstructure:"max_stretch"`   // allowed fractional deviation from rest length
	MaxAngle     float32 `mapstructure:"max_angle"`     // radians, max bend across three points
	GravityScale float32 `mapstructure:"gravity_scale"` // per-chain multiplier on global gravity
	Inertia      float32 `mapstructure:"inertia"`       // reaction to driver movement
	Iterations   int     `mapstructure:"iterations"`    // constraint relaxation passes
}

// DefaultSpringConfig returns tuning that reads as soft hair.
func DefaultSpringConfig() SpringConfig {
	return SpringConfig{
		Stiffness:    45,
		Damping:      4.5,
		RestLength:   0.12,
		MaxStretch:   0.15,
		MaxAngle:     float32(math.Pi / 3),
		GravityScale: 1,
		Inertia:      0.6,
		Iterations:   2,
	}
}

func (c SpringConfig) withDefaults() SpringConfig {
	d := DefaultSpringConfig()
	if c.Stiffness <= 0 {
		c.Stiffness = d.Stiffness
	}
	if c.Damping <= 0 {
		c.Damping = d.Damping
	}
	if c.RestLength <= 0 {
		c.RestLength = d.RestLength
	}
	if c.MaxStretch <= 0 {
		c.MaxStretch = d.MaxStretch
	}
	if c.MaxAngle <= 0 {
		c.MaxAngle = d.MaxAngle
	}
	if c.GravityScale == 0 {
		c.GravityScale = d.GravityScale
	}
	if c.Iterations <= 0 {
		c.Iterations = d.Iterations
	}
	return c
}

// Point is one mass in a chain.
type Point struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Mass     float32
	Fixed    bool

	rest      mgl32.Vec3 // rest-pose position relative to the anchor
	windPhase [3]float32
}

// Chain is an ordered run of points with point 0 pinned to the driver.
type Chain struct {
	ID     string
	Points []*Point
	cfg    SpringConfig

	driver     mgl32.Vec3
	driverVel  mgl32.Vec3
	prevDriver mgl32.Vec3
	hasDriver  bool
}

// PointOutput is the renderer-facing result for one point: offset from
// rest pose plus the segment's bend expressed as pitch/yaw radians.
type PointOutput struct {
	Offset   mgl32.Vec3
	Rotation mgl32.Vec3
}

// Config tunes the simulator as a whole.
type Config struct {
	Gravity  mgl32.Vec3
	TimeStep time.Duration // fixed integration step
	MaxDelta time.Duration // cap on a single frame's elapsed time
}

// DefaultConfig integrates at 60Hz and refuses frame gaps over 100ms,
// so a debugger pause cannot inject a huge impulse.
func DefaultConfig() Config {
	return Config{
		Gravity:  mgl32.Vec3{0, -9.8, 0},
		TimeStep: 16667 * time.Microsecond,
		MaxDelta: 100 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TimeStep <= 0 {
		c.TimeStep = d.TimeStep
	}
	if c.MaxDelta <= 0 {
		c.MaxDelta = d.MaxDelta
	}
	if c.Gravity == (mgl32.Vec3{}) {
		c.Gravity = d.Gravity
	}
	return c
}

// Simulator owns all chains and the shared wind field.
type Simulator struct {
	mu  sync.Mutex
	cfg Config

	chains map[string]*Chain
	order  []string

	windDir      mgl32.Vec3
	windStrength float32

	accumulator time.Duration
	simTime     float64 // seconds, drives wind turbulence
	lastUpdate  time.Time
	hasLast     bool
	running     bool

	log zerolog.Logger
}

// NewSimulator builds an empty simulator.
func NewSimulator(cfg Config, log zerolog.Logger) *Simulator {
	return &Simulator{
		cfg:     cfg.withDefaults(),
		chains:  make(map[string]*Chain),
		windDir: mgl32.Vec3{1, 0, 0},
		log:     log,
	}
}

// CreateChain builds a chain of pointCount masses hanging straight down
// from origin and registers it. Errors on duplicate id or a chain too
// short to simulate.
func (s *Simulator) CreateChain(id string, pointCount int, origin mgl32.Vec3, cfg SpringConfig) (*Chain, error) {
	if pointCount < 2 {
		return nil, fmt.Errorf("chain %q: need at least 2 points, got %d", id, pointCount)
	}
	cfg = cfg.withDefaults()

	ch := &Chain{ID: id, cfg: cfg, driver: origin, prevDriver: origin}
	for i := 0; i < pointCount; i++ {
		rest := mgl32.Vec3{0, -cfg.RestLength * float32(i), 0}
		p := &Point{
			Position: origin.Add(rest),
			Mass:     1,
			Fixed:    i == 0,
			rest:     rest,
			windPhase: [3]float32{
				float32(i) * 1.3,
				float32(i)*2.1 + 0.7,
				float32(i)*0.9 + 2.4,
			},
		}
		ch.Points = append(ch.Points, p)
	}

	if err := s.register(ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// AddChain registers a caller-constructed chain under the given tuning.
// The first point becomes the pinned anchor and the chain's current pose
// is captured as its rest pose. Errors on duplicate id or a chain too
// short to simulate.
func (s *Simulator) AddChain(ch *Chain, cfg SpringConfig) error {
	if ch == nil || ch.ID == "" {
		return fmt.Errorf("chain must be non-nil and carry an id")
	}
	if len(ch.Points) < 2 {
		return fmt.Errorf("chain %q: need at least 2 points, got %d", ch.ID, len(ch.Points))
	}
	ch.cfg = cfg.withDefaults()

	anchor := ch.Points[0].Position
	ch.driver = anchor
	ch.prevDriver = anchor
	ch.hasDriver = false
	for i, p := range ch.Points {
		if p.Mass <= 0 {
			p.Mass = 1
		}
		p.Fixed = i == 0
		p.rest = p.Position.Sub(anchor)
		if p.windPhase == ([3]float32{}) {
			p.windPhase = [3]float32{
				float32(i) * 1.3,
				float32(i)*2.1 + 0.7,
				float32(i)*0.9 + 2.4,
			}
		}
	}
	return s.register(ch)
}

func (s *Simulator) register(ch *Chain) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.chains[ch.ID]; exists {
		return fmt.Errorf("chain %q already exists", ch.ID)
	}
	s.chains[ch.ID] = ch
	s.order = append(s.order, ch.ID)
	s.log.Debug().Str("chain", ch.ID).Int("points", len(ch.Points)).Msg("chain registered")
	return nil
}

// RemoveChain drops a chain. Unknown ids are a no-op.
func (s *Simulator) RemoveChain(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chains[id]; !ok {
		return
	}
	delete(s.chains, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// SetDriver moves a chain's anchor. Driver velocity is derived from
// consecutive calls and fed back as an inertial reaction on the chain.
func (s *Simulator) SetDriver(id string, pos mgl32.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.chains[id]
	if !ok {
		return
	}
	ch.driver = pos
	ch.hasDriver = true
}

// SetWind sets the global wind field. Direction is normalized; a zero
// vector disables wind.
func (s *Simulator) SetWind(dir mgl32.Vec3, strength float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dir.Len() > 0 {
		s.windDir = dir.Normalize()
	}
	s.windStrength = clampF(strength, 0, 50)
}

// Start begins consuming time on Update. Idempotent.
func (s *Simulator) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	s.hasLast = false
}

// Stop freezes the simulation. Idempotent.
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

// Destroy stops the simulator and drops all chains. Safe to call more
// than once.
func (s *Simulator) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.chains = make(map[string]*Chain)
	s.order = nil
}

// Update advances the simulation to now. Elapsed real time is capped at
// MaxDelta, then consumed in fixed TimeStep increments so frame drops
// cannot destabilize the integration.
func (s *Simulator) Update(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	if !s.hasLast {
		s.lastUpdate = now
		s.hasLast = true
		return
	}

	dt := now.Sub(s.lastUpdate)
	s.lastUpdate = now
	if dt <= 0 {
		return
	}
	if dt > s.cfg.MaxDelta {
		dt = s.cfg.MaxDelta
	}
	s.accumulator += dt

	step := float32(s.cfg.TimeStep.Seconds())
	for s.accumulator >= s.cfg.TimeStep {
		s.accumulator -= s.cfg.TimeStep
		s.simTime += s.cfg.TimeStep.Seconds()
		for _, id := range s.order {
			s.stepChain(s.chains[id], step)
		}
	}
}

func (s *Simulator) stepChain(ch *Chain, dt float32) {
	// anchor snaps to the driver; derive driver velocity for inertia
	anchor := ch.Points[0]
	if ch.hasDriver {
		ch.driverVel = ch.driver.Sub(ch.prevDriver).Mul(1 / dt)
		ch.prevDriver = ch.driver
		anchor.Position = ch.driver
		ch.hasDriver = false
	} else {
		ch.driverVel = mgl32.Vec3{}
	}

	gravity := s.cfg.Gravity.Mul(ch.cfg.GravityScale)

	for i := 1; i < len(ch.Points); i++ {
		p := ch.Points[i]
		if p.Fixed {
			continue
		}

		force := gravity.Mul(p.Mass)

		// bidirectional spring toward both neighbors
		force = force.Add(springForce(p, ch.Points[i-1], ch.cfg))
		if i+1 < len(ch.Points) {
			force = force.Add(springForce(p, ch.Points[i+1], ch.cfg))
		}

		if s.windStrength > 0 {
			force = force.Add(s.windForce(p))
		}

		// points near the anchor react hardest to driver movement
		inertiaScale := ch.cfg.Inertia / float32(i)
		force = force.Sub(ch.driverVel.Mul(inertiaScale))

		// damping
		force = force.Sub(p.Velocity.Mul(ch.cfg.Damping))

		// semi-implicit Euler
		accel := force.Mul(1 / p.Mass)
		p.Velocity = p.Velocity.Add(accel.Mul(dt))
		p.Position = p.Position.Add(p.Velocity.Mul(dt))
	}

	integrated := make([]mgl32.Vec3, len(ch.Points))
	for i, p := range ch.Points {
		integrated[i] = p.Position
	}

	for it := 0; it < ch.cfg.Iterations; it++ {
		relaxDistance(ch)
		relaxAngle(ch)
	}

	// fold constraint corrections back into velocity, otherwise a
	// pinned point would accumulate speed it can never spend
	for i, p := range ch.Points {
		if p.Fixed {
			continue
		}
		p.Velocity = p.Velocity.Add(p.Position.Sub(integrated[i]).Mul(1 / dt))
	}

	sanitize(ch)
}

func springForce(p, neighbor *Point, cfg SpringConfig) mgl32.Vec3 {
	delta := neighbor.Position.Sub(p.Position)
	dist := delta.Len()
	if dist < 1e-6 {
		return mgl32.Vec3{}
	}
	stretch := dist - cfg.RestLength
	return delta.Mul(1 / dist).Mul(stretch * cfg.Stiffness)
}

// windForce is wind direction scaled by strength and a per-point
// turbulence term built from phase-shifted sinusoids, so neighboring
// points do not move in lockstep.
func (s *Simulator) windForce(p *Point) mgl32.Vec3 {
	t := s.simTime
	turb := 0.5*math.Sin(t*1.7+float64(p.windPhase[0])) +
		0.3*math.Sin(t*3.1+float64(p.windPhase[1])) +
		0.2*math.Sin(t*5.3+float64(p.windPhase[2]))
	return s.windDir.Mul(s.windStrength * float32(0.6+0.4*turb))
}

// relaxDistance clamps each segment length into
// [rest*(1-maxStretch), rest*(1+maxStretch)], moving the child point.
func relaxDistance(ch *Chain) {
	minLen := ch.cfg.RestLength * (1 - ch.cfg.MaxStretch)
	maxLen := ch.cfg.RestLength * (1 + ch.cfg.MaxStretch)

	for i := 1; i < len(ch.Points); i++ {
		parent, p := ch.Points[i-1], ch.Points[i]
		delta := p.Position.Sub(parent.Position)
		dist := delta.Len()
		if dist < 1e-6 {
			p.Position = parent.Position.Add(mgl32.Vec3{0, -minLen, 0})
			continue
		}
		clamped := clampF(dist, minLen, maxLen)
		if clamped != dist {
			p.Position = parent.Position.Add(delta.Mul(clamped / dist))
		}
	}
}

// relaxAngle prevents any three consecutive points from bending past
// MaxAngle by rotating the trailing point back toward alignment.
func relaxAngle(ch *Chain) {
	for i := 2; i < len(ch.Points); i++ {
		a, b, c := ch.Points[i-2], ch.Points[i-1], ch.Points[i]
		v1 := b.Position.Sub(a.Position)
		v2 := c.Position.Sub(b.Position)
		l1, l2 := v1.Len(), v2.Len()
		if l1 < 1e-6 || l2 < 1e-6 {
			continue
		}
		cos := v1.Dot(v2) / (l1 * l2)
		angle := float32(math.Acos(float64(clampF(cos, -1, 1))))
		if angle <= ch.cfg.MaxAngle {
			continue
		}

		// rotate v2 toward v1 in their shared plane until the bend
		// sits exactly at MaxAngle
		axis := v1.Cross(v2)
		if axis.Len() < 1e-6 {
			continue
		}
		rot := mgl32.HomogRotate3D(-(angle - ch.cfg.MaxAngle), axis.Normalize())
		corrected := mgl32.TransformCoordinate(v2, rot)
		c.Position = b.Position.Add(corrected.Normalize().Mul(l2))
	}
}

// sanitize resets any point that went non-finite back to rest, so one
// numeric blowup cannot poison the rest of the session.
func sanitize(ch *Chain) {
	anchor := ch.Points[0].Position
	for i, p := range ch.Points {
		if finiteVec(p.Position) && finiteVec(p.Velocity) {
			continue
		}
		p.Position = anchor.Add(ch.Points[i].rest)
		p.Velocity = mgl32.Vec3{}
	}
}

// Outputs returns per-point offsets from rest pose and segment bend
// rotations for the renderer binding. Unknown ids return nil.
func (s *Simulator) Outputs(id string) []PointOutput {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.chains[id]
	if !ok {
		return nil
	}

	anchor := ch.Points[0].Position
	out := make([]PointOutput, len(ch.Points))
	for i, p := range ch.Points {
		out[i].Offset = p.Position.Sub(anchor.Add(p.rest))
		if i == 0 {
			continue
		}
		seg := p.Position.Sub(ch.Points[i-1].Position)
		if seg.Len() < 1e-6 {
			continue
		}
		d := seg.Normalize()
		// bend of the segment away from straight-down rest direction
		out[i].Rotation = mgl32.Vec3{
			float32(math.Atan2(float64(d.Z()), float64(-d.Y()))),
			float32(math.Atan2(float64(d.X()), float64(-d.Y()))),
			0,
		}
	}
	return out
}

// ChainIDs lists registered chains in creation order.
func (s *Simulator) ChainIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func clampF(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func finiteVec(v mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		f := float64(v[i])
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
