// Package bus provides the internal pub/sub channel between subsystems
// and their observers. Handlers run synchronously in subscription order;
// a panicking handler is recovered and logged without preventing the
// remaining handlers from firing.
package bus

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventType identifies different event types.
type EventType string

const (
	// Emotion events
	EventEmotionChanged      EventType = "emotion.changed"
	EventTransitionStarted   EventType = "emotion.transition_started"
	EventTransitionCompleted EventType = "emotion.transition_completed"

	// Context events
	EventToneChanged      EventType = "context.tone_changed"
	EventIntentClassified EventType = "context.intent_classified"

	// Touch events
	EventTouchReaction    EventType = "touch.reaction"
	EventExcessiveTouch   EventType = "touch.excessive"
	EventAffectionChanged EventType = "touch.affection_changed"

	// Expression events
	EventVariantSelected EventType = "expression.variant_selected"
	EventReactionBurst   EventType = "expression.reaction_burst"

	// Lighting events
	EventSceneChanged EventType = "lighting.scene_changed"

	// Config events
	EventConfigReloaded EventType = "config.reloaded"
)

// Event is a bus event with loosely-typed payload.
type Event struct {
	Type EventType
	Data map[string]any
}

// Handler handles events.
type Handler func(Event)

type entry struct {
	id string
	fn Handler
}

// Bus is a synchronous pub/sub event bus.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]entry
	log      zerolog.Logger
}

// New creates a bus. The logger may be a zerolog.Nop().
func New(log zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[EventType][]entry),
		log:      log,
	}
}

// Subscribe adds a handler for an event type and returns a handle for
// Unsubscribe.
func (b *Bus) Subscribe(t EventType, h Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	b.handlers[t] = append(b.handlers[t], entry{id: id, fn: h})
	return id
}

// SubscribeMultiple adds one handler for several event types. The
// returned handles parallel the input slice.
func (b *Bus) SubscribeMultiple(types []EventType, h Handler) []string {
	ids := make([]string, 0, len(types))
	for _, t := range types {
		ids = append(ids, b.Subscribe(t, h))
	}
	return ids
}

// Unsubscribe removes a handler by its handle. Unknown handles are a no-op.
func (b *Bus) Unsubscribe(t EventType, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.handlers[t]
	for i, e := range entries {
		if e.id == id {
			b.handlers[t] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to all subscribers in order, synchronously.
// Each handler runs inside its own recover boundary so one bad observer
// cannot starve the rest.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	entries := make([]entry, len(b.handlers[event.Type]))
	copy(entries, b.handlers[event.Type])
	b.mu.RUnlock()

	for _, e := range entries {
		b.invoke(e, event)
	}
}

func (b *Bus) invoke(e entry, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Str("event", string(event.Type)).
				Str("subscriber", e.id).
				Interface("panic", r).
				Msg("observer panicked; continuing with remaining handlers")
		}
	}()
	e.fn(event)
}

// Clear removes all handlers.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[EventType][]entry)
}
