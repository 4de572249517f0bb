package events

import (
	"sync"

	"github.com/rs/zerolog"
)

// subscriberBuffer is the per-subscriber channel capacity
const subscriberBuffer = 64

type subscriber struct {
	ch    chan Event
	types map[EventType]bool // nil means all types
}

// Bus fans published events out to subscribers. Publish never blocks: a subscriber
// whose buffer is full misses the event.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]*subscriber
	nextID      int
	log         zerolog.Logger
}

// NewBus creates an event bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[int]*subscriber),
		log:         log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe returns a channel receiving events of the given types (all types when none
// are given) and a function that unsubscribes and closes the channel
func (b *Bus) Subscribe(types ...EventType) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, subscriberBuffer)}
	if len(types) > 0 {
		sub.types = make(map[EventType]bool, len(types))
		for _, t := range types {
			sub.types[t] = true
		}
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = sub
	b.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, id)
			b.mu.Unlock()
			close(sub.ch)
		})
	}

	return sub.ch, unsubscribe
}

// Publish delivers an event to every matching subscriber
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subscribers {
		if sub.types != nil && !sub.types[event.Type] {
			continue
		}

		select {
		case sub.ch <- event:
		default:
			b.log.Warn().Str("event_type", string(event.Type)).Msg("Subscriber buffer full, dropping event")
		}
	}
}

// Emit builds an event from typed data and publishes it
func (b *Bus) Emit(module string, data EventData) {
	b.Publish(NewEvent(module, data))
}

// SubscriberCount returns the number of active subscribers
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
