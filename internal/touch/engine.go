package touch

import (
	"math/rand"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/normanking/emotive/internal/bus"
	"github.com/normanking/emotive/internal/params"
)

// Config tunes classification and the affection economy.
type Config struct {
	LongPressThreshold time.Duration `mapstructure:"long_press_threshold"`
	DoubleTapThreshold time.Duration `mapstructure:"double_tap_threshold"`
	DragDistance       float64       `mapstructure:"drag_distance"` // units
	RubDistance        float64       `mapstructure:"rub_distance"`

	CooldownMultiplier float64       `mapstructure:"cooldown_multiplier"`
	DefaultCooldown    time.Duration `mapstructure:"default_cooldown"`

	DecayPerHour float64 `mapstructure:"decay_per_hour"` // affection points

	ExcessiveLimit   int           `mapstructure:"excessive_limit"` // events allowed per window
	ExcessiveWindow  time.Duration `mapstructure:"excessive_window"`
	ExcessivePenalty float64       `mapstructure:"excessive_penalty"`
}

// DefaultConfig returns the shipped interaction tuning.
func DefaultConfig() Config {
	return Config{
		LongPressThreshold: 600 * time.Millisecond,
		DoubleTapThreshold: 300 * time.Millisecond,
		DragDistance:       10,
		RubDistance:        3,
		CooldownMultiplier: 1,
		DefaultCooldown:    1000 * time.Millisecond,
		DecayPerHour:       2,
		ExcessiveLimit:     8,
		ExcessiveWindow:    10 * time.Second,
		ExcessivePenalty:   5,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.LongPressThreshold <= 0 {
		c.LongPressThreshold = d.LongPressThreshold
	}
	if c.DoubleTapThreshold <= 0 {
		c.DoubleTapThreshold = d.DoubleTapThreshold
	}
	if c.DragDistance <= 0 {
		c.DragDistance = d.DragDistance
	}
	if c.RubDistance <= 0 || c.RubDistance >= c.DragDistance {
		c.RubDistance = d.RubDistance
	}
	if c.CooldownMultiplier <= 0 {
		c.CooldownMultiplier = d.CooldownMultiplier
	}
	if c.DefaultCooldown <= 0 {
		c.DefaultCooldown = d.DefaultCooldown
	}
	if c.DecayPerHour < 0 {
		c.DecayPerHour = d.DecayPerHour
	}
	if c.ExcessiveLimit <= 0 {
		c.ExcessiveLimit = d.ExcessiveLimit
	}
	if c.ExcessiveWindow <= 0 {
		c.ExcessiveWindow = d.ExcessiveWindow
	}
	if c.ExcessivePenalty <= 0 {
		c.ExcessivePenalty = d.ExcessivePenalty
	}
	return c
}

// Result is what a processed touch produced, for the orchestrator.
type Result struct {
	Event      Event
	Expression string
	Dialogue   string
	Mood       Mood
	Excessive  bool
	Suppressed bool // cooldown swallowed the reaction
}

// Engine classifies touches and runs the rule table.
type Engine struct {
	mu  sync.Mutex
	cfg Config

	rules []Rule

	affection float64
	mood      Mood

	active    *press
	lastTap   *tapRecord
	cooldowns map[string]time.Time
	recent    map[Area][]time.Time

	lastDecay time.Time
	hasDecay  bool
	running   bool

	events *bus.Bus
	log    zerolog.Logger
	rng    *rand.Rand
	now    func() time.Time
}

// NewEngine builds an engine preloaded with the default rule table,
// neutral mood, and mid-scale affection. events may be nil.
func NewEngine(cfg Config, events *bus.Bus, log zerolog.Logger) *Engine {
	if events == nil {
		events = bus.New(log)
	}
	return &Engine{
		cfg:       cfg.withDefaults(),
		rules:     defaultRules(),
		affection: 50,
		mood:      MoodNeutral,
		cooldowns: make(map[string]time.Time),
		recent:    make(map[Area][]time.Time),
		events:    events,
		log:       log,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		now:       time.Now,
	}
}

// Start enables affection decay ticking. Idempotent.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = true
	e.hasDecay = false
}

// Stop halts decay. Touch processing stays available. Idempotent.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
}

// Destroy stops the engine and drops transient interaction state. Safe
// to call more than once.
func (e *Engine) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
	e.active = nil
	e.lastTap = nil
	e.cooldowns = make(map[string]time.Time)
	e.recent = make(map[Area][]time.Time)
}

// Affection returns the current affection scalar in [0,100].
func (e *Engine) Affection() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.affection
}

// SetAffection writes the scalar directly, clamped to [0,100].
func (e *Engine) SetAffection(v float64) {
	e.mu.Lock()
	old := e.affection
	e.affection = params.Clamp(v, 0, 100)
	changed := e.affection != old
	cur := e.affection
	e.mu.Unlock()

	if changed {
		e.publishAffection(old, cur)
	}
}

// Mood returns the engine's current coarse mood.
func (e *Engine) Mood() Mood {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mood
}

// AddRule appends a rule to the table.
func (e *Engine) AddRule(r Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if r.Weight <= 0 {
		r.Weight = 1
	}
	e.rules = append(e.rules, r)
}

// RemoveRules drops all rules for an (area, kind) pair and reports how
// many were removed.
func (e *Engine) RemoveRules(area Area, kind Kind) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	kept := e.rules[:0]
	removed := 0
	for _, r := range e.rules {
		if r.Area == area && r.Kind == kind {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	e.rules = kept
	return removed
}

// Press records the start of a touch. A second press while one is
// active replaces it.
func (e *Engine) Press(rawArea string, pos mgl64.Vec2, pressure float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = &press{
		area:   NormalizeArea(rawArea),
		start:  e.now(),
		origin: pos,
	}
	_ = pressure
}

// Move updates the in-flight touch's travel distance. No-op without an
// active press.
func (e *Engine) Move(pos mgl64.Vec2) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return
	}
	if d := pos.Sub(e.active.origin).Len(); d > e.active.maxDist {
		e.active.maxDist = d
	}
}

// Release classifies the completed gesture and processes it through the
// breaker, rule table and cooldowns. Returns nil when no press was
// active.
func (e *Engine) Release(pos mgl64.Vec2) *Result {
	e.mu.Lock()
	if e.active == nil {
		e.mu.Unlock()
		return nil
	}
	p := e.active
	e.active = nil
	now := e.now()

	if d := pos.Sub(p.origin).Len(); d > p.maxDist {
		p.maxDist = d
	}

	ev := Event{Area: p.area, Position: pos, Time: now}
	switch {
	case p.maxDist > e.cfg.DragDistance:
		ev.Kind = KindDrag
	case p.maxDist > e.cfg.RubDistance:
		ev.Kind = KindRub
	case now.Sub(p.start) >= e.cfg.LongPressThreshold:
		ev.Kind = KindLongPress
	case e.lastTap != nil && !e.lastTap.consumed &&
		e.lastTap.area == p.area &&
		now.Sub(e.lastTap.at) <= e.cfg.DoubleTapThreshold:
		ev.Kind = KindDoubleTap
		e.lastTap.consumed = true
	default:
		ev.Kind = KindTap
		e.lastTap = &tapRecord{area: p.area, at: now}
	}

	return e.processLocked(ev)
}

// Handle processes an already-classified event, for callers that do
// their own gesture recognition.
func (e *Engine) Handle(ev Event) *Result {
	e.mu.Lock()
	if ev.Time.IsZero() {
		ev.Time = e.now()
	}
	return e.processLocked(ev)
}

// processLocked runs the breaker, rule lookup, reaction pick and
// cooldown. Called with e.mu held; unlocks before publishing.
func (e *Engine) processLocked(ev Event) *Result {
	now := ev.Time

	// excessive-touch breaker, always ahead of rule matching
	times := append(e.recent[ev.Area], now)
	cutoff := now.Add(-e.cfg.ExcessiveWindow)
	for len(times) > 0 && times[0].Before(cutoff) {
		times = times[1:]
	}
	e.recent[ev.Area] = times
	if len(times) > e.cfg.ExcessiveLimit {
		old := e.affection
		e.affection = params.Clamp(e.affection-e.cfg.ExcessivePenalty, 0, 100)
		e.mood = MoodAnnoyed
		cur := e.affection
		e.mu.Unlock()

		res := &Result{
			Event:      ev,
			Expression: "annoyed",
			Dialogue:   excessiveDialogue(ev.Area),
			Mood:       MoodAnnoyed,
			Excessive:  true,
		}
		e.events.Publish(bus.Event{Type: bus.EventExcessiveTouch, Data: map[string]any{
			"area": ev.Area, "dialogue": res.Dialogue,
		}})
		e.publishAffection(old, cur)
		return res
	}

	rule := e.pickRule(ev)
	if rule == nil {
		e.mu.Unlock()
		return &Result{Event: ev, Mood: e.Mood(), Suppressed: false}
	}

	key := string(ev.Area) + "|" + string(ev.Kind)
	if until, ok := e.cooldowns[key]; ok && now.Before(until) {
		e.mu.Unlock()
		return &Result{Event: ev, Mood: e.Mood(), Suppressed: true}
	}

	re := e.pickReaction(rule)
	cd := re.Cooldown
	if cd <= 0 {
		cd = e.cfg.DefaultCooldown
	}
	e.cooldowns[key] = now.Add(time.Duration(float64(cd) * e.cfg.CooldownMultiplier))

	old := e.affection
	e.affection = params.Clamp(e.affection+re.EmotionalChange, 0, 100)
	cur := e.affection
	e.mood = moodFromExpression(re.Expression)
	res := &Result{
		Event:      ev,
		Expression: re.Expression,
		Dialogue:   re.Dialogue,
		Mood:       e.mood,
	}
	e.mu.Unlock()

	e.events.Publish(bus.Event{Type: bus.EventTouchReaction, Data: map[string]any{
		"area": ev.Area, "kind": ev.Kind, "expression": res.Expression,
		"dialogue": res.Dialogue, "mood": res.Mood,
	}})
	if cur != old {
		e.publishAffection(old, cur)
	}
	return res
}

// pickRule filters by (area, kind) and the affection window, then
// weighted-random picks a survivor. Nil when nothing matches.
func (e *Engine) pickRule(ev Event) *Rule {
	var candidates []*Rule
	total := 0.0
	for i := range e.rules {
		r := &e.rules[i]
		if r.Area != ev.Area || r.Kind != ev.Kind {
			continue
		}
		if e.affection < r.MinAffection {
			continue
		}
		if r.MaxAffection > 0 && e.affection > r.MaxAffection {
			continue
		}
		candidates = append(candidates, r)
		w := r.Weight
		if w <= 0 {
			w = 1
		}
		total += w
	}
	if len(candidates) == 0 {
		return nil
	}
	pick := e.rng.Float64() * total
	for _, r := range candidates {
		w := r.Weight
		if w <= 0 {
			w = 1
		}
		pick -= w
		if pick <= 0 {
			return r
		}
	}
	return candidates[len(candidates)-1]
}

// pickReaction weighted-random picks within a rule, biased toward
// positive reactions when affection is already high and toward
// reactions matching the current mood.
func (e *Engine) pickReaction(r *Rule) Reaction {
	if len(r.Reactions) == 0 {
		return Reaction{Expression: "neutral"}
	}
	weights := make([]float64, len(r.Reactions))
	total := 0.0
	for i, re := range r.Reactions {
		w := re.Weight
		if w <= 0 {
			w = 1
		}
		if re.EmotionalChange > 0 && e.affection > 60 {
			w *= 1 + e.affection/100
		}
		if moodFromExpression(re.Expression) == e.mood {
			w *= 1.5
		}
		weights[i] = w
		total += w
	}
	pick := e.rng.Float64() * total
	for i, w := range weights {
		pick -= w
		if pick <= 0 {
			return r.Reactions[i]
		}
	}
	return r.Reactions[len(r.Reactions)-1]
}

// Update applies wall-clock affection decay. Driven by the scheduler.
func (e *Engine) Update(now time.Time) {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	if !e.hasDecay {
		e.lastDecay = now
		e.hasDecay = true
		e.mu.Unlock()
		return
	}
	elapsed := now.Sub(e.lastDecay)
	if elapsed <= 0 {
		e.mu.Unlock()
		return
	}
	e.lastDecay = now

	old := e.affection
	e.affection = params.Clamp(e.affection-elapsed.Hours()*e.cfg.DecayPerHour, 0, 100)
	cur := e.affection
	e.mu.Unlock()

	if cur != old {
		e.publishAffection(old, cur)
	}
}

func (e *Engine) publishAffection(old, cur float64) {
	e.events.Publish(bus.Event{Type: bus.EventAffectionChanged, Data: map[string]any{
		"old": old, "new": cur,
	}})
}

func excessiveDialogue(area Area) string {
	switch area {
	case AreaHair, AreaHead:
		return "Hey, easy on the hair!"
	case AreaFace:
		return "Stop poking my face already!"
	default:
		return "Okay okay, that's enough touching!"
	}
}
