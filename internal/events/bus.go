package events

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
)

// EventListener processes events
type EventListener interface {
	HandleEvent(ctx context.Context, event Event) error
	Priority() int
	ID() string
}

// Bus manages event distribution
type Bus struct {
	listeners map[EventType][]EventListener
	mu        sync.RWMutex
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		listeners: make(map[EventType][]EventListener),
	}
}

// Subscribe adds a listener for specific event types. Listeners with equal
// priority run in subscription order.
func (b *Bus) Subscribe(eventType EventType, listener EventListener) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.listeners[eventType] = append(b.listeners[eventType], listener)
	b.sortLocked(eventType)

	log.Printf("EventBus: Subscribed listener %s to event %s with priority %d",
		listener.ID(), eventType, listener.Priority())
}

// SubscribeFunc adds a function as a listener
func (b *Bus) SubscribeFunc(eventType EventType, id string, priority int, fn func(ctx context.Context, event Event) error) {
	b.Subscribe(eventType, &funcListener{id: id, priority: priority, fn: fn})
}

// Emit sends an event to all registered listeners in priority order. It stops
// at the first listener error or when a listener cancels the event.
func (b *Bus) Emit(ctx context.Context, event Event) error {
	b.mu.RLock()
	listeners := make([]EventListener, len(b.listeners[event.GetType()]))
	copy(listeners, b.listeners[event.GetType()])
	b.mu.RUnlock()

	log.Printf("EventBus: Emitting event %s with %d listeners", event.GetType(), len(listeners))

	for _, listener := range listeners {
		if event.IsCancelled() {
			log.Printf("EventBus: Event %s cancelled, stopping propagation", event.GetType())
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := listener.HandleEvent(ctx, event); err != nil {
			return fmt.Errorf("listener %s failed: %w", listener.ID(), err)
		}
	}

	return nil
}

func (b *Bus) sortLocked(eventType EventType) {
	sort.SliceStable(b.listeners[eventType], func(i, j int) bool {
		return b.listeners[eventType][i].Priority() < b.listeners[eventType][j].Priority()
	})
}

type funcListener struct {
	id       string
	priority int
	fn       func(ctx context.Context, event Event) error
}

func (l *funcListener) HandleEvent(ctx context.Context, event Event) error { return l.fn(ctx, event) }
func (l *funcListener) Priority() int                                      { return l.priority }
func (l *funcListener) ID() string                                         { return l.id }
