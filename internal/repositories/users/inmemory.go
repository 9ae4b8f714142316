package users

import (
	"context"
	"sort"
	"sync"

	"github.com/KirkDiggler/concentration-bot/internal/entities"
	dnderr "github.com/KirkDiggler/concentration-bot/internal/errors"
	"github.com/KirkDiggler/concentration-bot/internal/repositories"
)

// InMemoryRepository keeps users in memory
type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[string]entities.User
}

// NewInMemoryRepository creates a new in-memory user repository
func NewInMemoryRepository() Repository {
	return &InMemoryRepository{users: make(map[string]entities.User)}
}

func (r *InMemoryRepository) Upsert(_ context.Context, user *entities.User) error {
	if user == nil || user.ID == "" {
		return dnderr.InvalidArgument("user ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *InMemoryRepository) Get(_ context.Context, id string) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repositories.NewRecordNotFoundError("user", id)
	}
	return &user, nil
}

func (r *InMemoryRepository) List(_ context.Context) ([]*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*entities.User, 0, len(r.users))
	for _, user := range r.users {
		u := user
		result = append(result, &u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}
