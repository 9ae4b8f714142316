package messages

//go:generate mockgen -destination=mock/mock.go -package=mockmessages -source=interface.go

import (
	"context"

	"github.com/KirkDiggler/concentration-bot/internal/entities"
)

// Repository stores chat messages so their buttons can find them again
type Repository interface {
	Create(ctx context.Context, message *entities.Message) error
	Get(ctx context.Context, id string) (*entities.Message, error)
	Delete(ctx context.Context, id string) error
}
