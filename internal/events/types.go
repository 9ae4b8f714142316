package events

import (
	"sync"

	"github.com/KirkDiggler/concentration-bot/internal/entities"
)

// EventType represents the type of document lifecycle event
type EventType string

// Event is the base interface for all document events
type Event interface {
	GetType() EventType
	// GetUserID is the user whose action caused the event
	GetUserID() string
	IsCancelled() bool
	Cancel()
}

// BaseEvent provides common implementation for all events
type BaseEvent struct {
	Type      EventType
	UserID    string
	Cancelled bool
}

func (e *BaseEvent) GetType() EventType { return e.Type }
func (e *BaseEvent) GetUserID() string  { return e.UserID }
func (e *BaseEvent) IsCancelled() bool  { return e.Cancelled }
func (e *BaseEvent) Cancel()            { e.Cancelled = true }

// UpdateOperation is one actor update. The same operation is handed to the
// pre-update and post-update listeners so they can pass data to each other.
type UpdateOperation struct {
	ID      string
	ActorID string
	UserID  string
	Patch   *entities.ActorPatch

	mu     sync.Mutex
	values map[string]any
}

// Set stores a value for later listeners of the same operation
func (op *UpdateOperation) Set(key string, value any) {
	op.mu.Lock()
	defer op.mu.Unlock()
	if op.values == nil {
		op.values = make(map[string]any)
	}
	op.values[key] = value
}

// Value returns a value stored by an earlier listener
func (op *UpdateOperation) Value(key string) (any, bool) {
	op.mu.Lock()
	defer op.mu.Unlock()
	v, ok := op.values[key]
	return v, ok
}

// PreCreateChatMessageEvent fires before a message is stored
type PreCreateChatMessageEvent struct {
	BaseEvent
	Message *entities.Message
}

// PreUpdateActorEvent fires before an actor patch is applied. Actor is the current state.
type PreUpdateActorEvent struct {
	BaseEvent
	Actor     *entities.Actor
	Operation *UpdateOperation
}

// UpdateActorEvent fires after an actor patch was applied and stored
type UpdateActorEvent struct {
	BaseEvent
	Actor     *entities.Actor
	Operation *UpdateOperation
}

// PreCreateEffectEvent fires before an effect is stored on an actor
type PreCreateEffectEvent struct {
	BaseEvent
	Actor  *entities.Actor
	Effect *entities.Effect
}

// PreDeleteEffectEvent fires before an effect is removed from an actor
type PreDeleteEffectEvent struct {
	BaseEvent
	Actor  *entities.Actor
	Effect *entities.Effect
}

// ReadyEvent fires once when the bot has finished starting
type ReadyEvent struct {
	BaseEvent
}
