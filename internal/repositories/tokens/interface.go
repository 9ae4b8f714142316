package tokens

//go:generate mockgen -destination=mock/mock.go -package=mocktokens -source=interface.go

import (
	"context"

	"github.com/KirkDiggler/concentration-bot/internal/entities"
)

// Repository stores tokens placed on scenes
type Repository interface {
	Create(ctx context.Context, token *entities.Token) error
	Get(ctx context.Context, sceneID, tokenID string) (*entities.Token, error)
	ListByActor(ctx context.Context, actorID string) ([]*entities.Token, error)
	Delete(ctx context.Context, sceneID, tokenID string) error
}
