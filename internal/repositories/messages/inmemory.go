package messages

import (
	"context"
	"sync"

	"github.com/KirkDiggler/concentration-bot/internal/entities"
	dnderr "github.com/KirkDiggler/concentration-bot/internal/errors"
	"github.com/KirkDiggler/concentration-bot/internal/repositories"
)

// InMemoryRepository keeps messages in memory
type InMemoryRepository struct {
	mu           sync.RWMutex
	messages     map[string]*entities.Message
	timeProvider repositories.TimeProvider
}

// NewInMemoryRepository creates a new in-memory message repository
func NewInMemoryRepository() Repository {
	return &InMemoryRepository{
		messages:     make(map[string]*entities.Message),
		timeProvider: repositories.RealTimeProvider{},
	}
}

func (r *InMemoryRepository) Create(_ context.Context, message *entities.Message) error {
	if message == nil || message.ID == "" {
		return dnderr.InvalidArgument("message ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.messages[message.ID]; exists {
		return repositories.NewRecordExistsError("message", message.ID)
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = r.timeProvider.Now()
	}
	stored := *message
	r.messages[message.ID] = &stored
	return nil
}

func (r *InMemoryRepository) Get(_ context.Context, id string) (*entities.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	message, ok := r.messages[id]
	if !ok {
		return nil, repositories.NewRecordNotFoundError("message", id)
	}
	c := *message
	return &c, nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.messages[id]; !ok {
		return repositories.NewRecordNotFoundError("message", id)
	}
	delete(r.messages, id)
	return nil
}
