package users

//go:generate mockgen -destination=mock/mock.go -package=mockusers -source=interface.go

import (
	"context"

	"github.com/KirkDiggler/concentration-bot/internal/entities"
)

// Repository stores the users taking part in the game
type Repository interface {
	// Upsert creates or replaces a user
	Upsert(ctx context.Context, user *entities.User) error
	Get(ctx context.Context, id string) (*entities.User, error)
	List(ctx context.Context) ([]*entities.User, error)
}
