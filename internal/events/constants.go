package events

// Event type constants
const (
	EventTypePreCreateChatMessage EventType = "pre_create_chat_message"
	EventTypePreUpdateActor       EventType = "pre_update_actor"
	EventTypeUpdateActor          EventType = "update_actor"
	EventTypePreCreateEffect      EventType = "pre_create_active_effect"
	EventTypePreDeleteEffect      EventType = "pre_delete_active_effect"
	EventTypeReady                EventType = "ready"
)

// Priority levels for listener order
const (
	PriorityCapture   = 0   // Record state before anything else looks at the event
	PriorityLifecycle = 100 // Create or remove concentration
	PriorityNotify    = 200 // Announce what happened
)
