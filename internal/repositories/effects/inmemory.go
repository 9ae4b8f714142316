package effects

import (
	"context"
	"sort"
	"sync"

	"github.com/KirkDiggler/concentration-bot/internal/entities"
	dnderr "github.com/KirkDiggler/concentration-bot/internal/errors"
	"github.com/KirkDiggler/concentration-bot/internal/repositories"
)

// InMemoryRepository keeps effects in memory. Useful for testing and development.
type InMemoryRepository struct {
	mu           sync.RWMutex
	effects      map[string]map[string]*entities.Effect
	timeProvider repositories.TimeProvider
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() Repository {
	return &InMemoryRepository{
		effects:      make(map[string]map[string]*entities.Effect),
		timeProvider: repositories.RealTimeProvider{},
	}
}

// Create stores a new effect
func (r *InMemoryRepository) Create(_ context.Context, effect *entities.Effect) error {
	if err := validate(effect); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	byID, ok := r.effects[effect.ActorID]
	if !ok {
		byID = make(map[string]*entities.Effect)
		r.effects[effect.ActorID] = byID
	}
	if _, exists := byID[effect.ID]; exists {
		return repositories.NewRecordExistsError("effect", effect.ID)
	}

	if effect.CreatedAt.IsZero() {
		effect.CreatedAt = r.timeProvider.Now()
	}
	byID[effect.ID] = effect.Clone()
	return nil
}

// Get retrieves one effect of an actor
func (r *InMemoryRepository) Get(_ context.Context, actorID, effectID string) (*entities.Effect, error) {
	if actorID == "" || effectID == "" {
		return nil, dnderr.InvalidArgument("actor ID and effect ID are required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	effect, ok := r.effects[actorID][effectID]
	if !ok {
		return nil, repositories.NewRecordNotFoundError("effect", effectID)
	}
	return effect.Clone(), nil
}

// ListByActor returns an actor's effects, oldest first
func (r *InMemoryRepository) ListByActor(_ context.Context, actorID string) ([]*entities.Effect, error) {
	if actorID == "" {
		return nil, dnderr.InvalidArgument("actor ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*entities.Effect, 0, len(r.effects[actorID]))
	for _, effect := range r.effects[actorID] {
		result = append(result, effect.Clone())
	}
	sortEffects(result)
	return result, nil
}

// Delete removes an effect
func (r *InMemoryRepository) Delete(_ context.Context, actorID, effectID string) error {
	if actorID == "" || effectID == "" {
		return dnderr.InvalidArgument("actor ID and effect ID are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.effects[actorID][effectID]; !ok {
		return repositories.NewRecordNotFoundError("effect", effectID)
	}
	delete(r.effects[actorID], effectID)
	return nil
}

func validate(effect *entities.Effect) error {
	if effect == nil {
		return dnderr.InvalidArgument("effect cannot be nil")
	}
	if effect.ID == "" {
		return dnderr.InvalidArgument("effect ID is required")
	}
	if effect.ActorID == "" {
		return dnderr.InvalidArgument("effect actor ID is required")
	}
	return nil
}

func sortEffects(list []*entities.Effect) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}
