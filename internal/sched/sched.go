// Package sched drives every animating subsystem from one cooperative
// frame loop. Subsystems register a tick callback; the scheduler either
// pumps them from its own ticker goroutine or lets a test drive them
// manually through Tick.
package sched

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// TickFunc is one subsystem's per-frame callback.
type TickFunc func(now time.Time)

type task struct {
	name string
	fn   TickFunc
}

// Scheduler owns the frame loop. Callback order follows registration
// order, but subsystems must not rely on it.
type Scheduler struct {
	mu    sync.Mutex
	tasks []task

	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool

	log zerolog.Logger
}

// New builds a scheduler ticking at the given interval. Non-positive
// intervals fall back to ~60Hz.
func New(interval time.Duration, log zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = 16667 * time.Microsecond
	}
	return &Scheduler{interval: interval, log: log}
}

// Register adds a named per-frame callback. Safe while running.
func (s *Scheduler) Register(name string, fn TickFunc) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task{name: name, fn: fn})
}

// Unregister removes all callbacks registered under name.
func (s *Scheduler) Unregister(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.name != name {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
}

// Tick runs every registered callback once at now. A panicking callback
// is logged and skipped; the rest still run.
func (s *Scheduler) Tick(now time.Time) {
	s.mu.Lock()
	tasks := make([]task, len(s.tasks))
	copy(tasks, s.tasks)
	s.mu.Unlock()

	for _, t := range tasks {
		s.invoke(t, now)
	}
}

func (s *Scheduler) invoke(t task, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("task", t.name).Interface("panic", r).Msg("tick callback panicked")
		}
	}()
	t.fn(now)
}

// Start launches the ticker goroutine. Idempotent.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stop, done := s.stopCh, s.doneCh
	s.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				s.Tick(now)
			}
		}
	}()
}

// Stop halts the ticker goroutine and waits for it to exit. Idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stop, done := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stop)
	<-done
}

// Destroy stops the loop and drops all registrations. Safe to call more
// than once.
func (s *Scheduler) Destroy() {
	s.Stop()
	s.mu.Lock()
	s.tasks = nil
	s.mu.Unlock()
}

// Running reports whether the ticker goroutine is live.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
