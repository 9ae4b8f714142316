package actors

//go:generate mockgen -destination=mock/mock.go -package=mockactors -source=interface.go

import (
	"context"

	"github.com/KirkDiggler/concentration-bot/internal/entities"
)

// Repository defines the interface for actor persistence
type Repository interface {
	// Create stores a new actor
	Create(ctx context.Context, actor *entities.Actor) error

	// Get retrieves an actor by ID
	Get(ctx context.Context, id string) (*entities.Actor, error)

	// GetByName finds an actor by name, case insensitive
	GetByName(ctx context.Context, name string) (*entities.Actor, error)

	// Update replaces an existing actor
	Update(ctx context.Context, actor *entities.Actor) error

	// Delete removes an actor
	Delete(ctx context.Context, id string) error

	// List returns every actor sorted by name
	List(ctx context.Context) ([]*entities.Actor, error)
}
