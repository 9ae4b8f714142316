package actors

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/KirkDiggler/concentration-bot/internal/entities"
	dnderr "github.com/KirkDiggler/concentration-bot/internal/errors"
	"github.com/KirkDiggler/concentration-bot/internal/repositories"
)

// InMemoryRepository is an in-memory implementation of the actor repository
type InMemoryRepository struct {
	mu     sync.RWMutex
	actors map[string]*entities.Actor
}

// NewInMemoryRepository creates a new in-memory actor repository
func NewInMemoryRepository() Repository {
	return &InMemoryRepository{
		actors: make(map[string]*entities.Actor),
	}
}

func (r *InMemoryRepository) Create(_ context.Context, actor *entities.Actor) error {
	if err := validate(actor); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.actors[actor.ID]; exists {
		return repositories.NewRecordExistsError("actor", actor.ID)
	}
	r.actors[actor.ID] = actor.Clone()
	return nil
}

func (r *InMemoryRepository) Get(_ context.Context, id string) (*entities.Actor, error) {
	if id == "" {
		return nil, dnderr.InvalidArgument("actor ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	actor, ok := r.actors[id]
	if !ok {
		return nil, repositories.NewRecordNotFoundError("actor", id)
	}
	return actor.Clone(), nil
}

func (r *InMemoryRepository) GetByName(_ context.Context, name string) (*entities.Actor, error) {
	key := nameKey(name)
	if key == "" {
		return nil, dnderr.InvalidArgument("actor name is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, actor := range r.actors {
		if nameKey(actor.Name) == key {
			return actor.Clone(), nil
		}
	}
	return nil, dnderr.NotFoundf("actor named '%s' not found", name).WithMeta("actor_name", name)
}

func (r *InMemoryRepository) Update(_ context.Context, actor *entities.Actor) error {
	if err := validate(actor); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.actors[actor.ID]; !ok {
		return repositories.NewRecordNotFoundError("actor", actor.ID)
	}
	r.actors[actor.ID] = actor.Clone()
	return nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.actors[id]; !ok {
		return repositories.NewRecordNotFoundError("actor", id)
	}
	delete(r.actors, id)
	return nil
}

func (r *InMemoryRepository) List(_ context.Context) ([]*entities.Actor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*entities.Actor, 0, len(r.actors))
	for _, actor := range r.actors {
		result = append(result, actor.Clone())
	}
	sortByName(result)
	return result, nil
}

func validate(actor *entities.Actor) error {
	if actor == nil {
		return dnderr.InvalidArgument("actor cannot be nil")
	}
	if actor.ID == "" {
		return dnderr.InvalidArgument("actor ID is required")
	}
	return nil
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func sortByName(list []*entities.Actor) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
}
