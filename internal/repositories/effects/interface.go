package effects

//go:generate mockgen -destination=mock/mock.go -package=mockeffects -source=interface.go

import (
	"context"

	"github.com/KirkDiggler/concentration-bot/internal/entities"
)

// Repository stores the effects embedded on actors
type Repository interface {
	// Create stores a new effect. The effect must have an id and an actor id.
	Create(ctx context.Context, effect *entities.Effect) error

	// Get retrieves one effect of an actor
	Get(ctx context.Context, actorID, effectID string) (*entities.Effect, error)

	// ListByActor returns an actor's effects, oldest first
	ListByActor(ctx context.Context, actorID string) ([]*entities.Effect, error)

	// Delete removes an effect
	Delete(ctx context.Context, actorID, effectID string) error
}
