package sched

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestManualTickRunsAllTasks(t *testing.T) {
	s := New(time.Millisecond, zerolog.Nop())
	var a, b int
	s.Register("a", func(time.Time) { a++ })
	s.Register("b", func(time.Time) { b++ })

	now := time.Unix(1700000000, 0)
	s.Tick(now)
	s.Tick(now.Add(time.Millisecond))
	assert.Equal(t, 2, a)
	assert.Equal(t, 2, b)
}

func TestPanickingTaskDoesNotStopOthers(t *testing.T) {
	s := New(time.Millisecond, zerolog.Nop())
	ran := 0
	s.Register("boom", func(time.Time) { panic("boom") })
	s.Register("ok", func(time.Time) { ran++ })

	s.Tick(time.Now())
	assert.Equal(t, 1, ran)
}

func TestUnregister(t *testing.T) {
	s := New(time.Millisecond, zerolog.Nop())
	ran := 0
	s.Register("x", func(time.Time) { ran++ })
	s.Unregister("x")
	s.Tick(time.Now())
	assert.Equal(t, 0, ran)
}

func TestStartStopLifecycle(t *testing.T) {
	s := New(time.Millisecond, zerolog.Nop())
	var ticks atomic.Int64
	s.Register("count", func(time.Time) { ticks.Add(1) })

	s.Start()
	s.Start() // idempotent
	assert.True(t, s.Running())

	deadline := time.After(time.Second)
	for ticks.Load() < 3 {
		select {
		case <-deadline:
			t.Fatal("ticker never fired")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	s.Stop()
	s.Stop() // idempotent
	assert.False(t, s.Running())

	settled := ticks.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, settled, ticks.Load(), "no ticks after Stop")
}

func TestDestroyDropsTasks(t *testing.T) {
	s := New(time.Millisecond, zerolog.Nop())
	s.Register("x", func(time.Time) {})
	s.Start()
	s.Destroy()
	s.Destroy() // safe twice
	assert.False(t, s.Running())
	s.Tick(time.Now()) // no tasks left, must not panic
}
