package tokens

import (
	"context"
	"sort"
	"sync"

	"github.com/KirkDiggler/concentration-bot/internal/entities"
	dnderr "github.com/KirkDiggler/concentration-bot/internal/errors"
	"github.com/KirkDiggler/concentration-bot/internal/repositories"
)

// InMemoryRepository keeps tokens in memory
type InMemoryRepository struct {
	mu     sync.RWMutex
	tokens map[string]*entities.Token
}

// NewInMemoryRepository creates a new in-memory token repository
func NewInMemoryRepository() Repository {
	return &InMemoryRepository{
		tokens: make(map[string]*entities.Token),
	}
}

func (r *InMemoryRepository) Create(_ context.Context, token *entities.Token) error {
	if err := validate(token); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := string(token.UUID())
	if _, exists := r.tokens[key]; exists {
		return repositories.NewRecordExistsError("token", token.ID)
	}
	r.tokens[key] = copyToken(token)
	return nil
}

func (r *InMemoryRepository) Get(_ context.Context, sceneID, tokenID string) (*entities.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.tokens[string(entities.TokenAddress(sceneID, tokenID))]
	if !ok {
		return nil, repositories.NewRecordNotFoundError("token", tokenID)
	}
	return copyToken(token), nil
}

func (r *InMemoryRepository) ListByActor(_ context.Context, actorID string) ([]*entities.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*entities.Token
	for _, token := range r.tokens {
		if token.ActorID == actorID {
			result = append(result, copyToken(token))
		}
	}
	sortTokens(result)
	return result, nil
}

func (r *InMemoryRepository) Delete(_ context.Context, sceneID, tokenID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := string(entities.TokenAddress(sceneID, tokenID))
	if _, ok := r.tokens[key]; !ok {
		return repositories.NewRecordNotFoundError("token", tokenID)
	}
	delete(r.tokens, key)
	return nil
}

func validate(token *entities.Token) error {
	if token == nil {
		return dnderr.InvalidArgument("token cannot be nil")
	}
	if token.ID == "" || token.SceneID == "" {
		return dnderr.InvalidArgument("token ID and scene ID are required")
	}
	if token.ActorID == "" {
		return dnderr.InvalidArgument("token actor ID is required")
	}
	return nil
}

// copyToken drops the loaded actor; the repository only stores the reference
func copyToken(token *entities.Token) *entities.Token {
	c := *token
	c.Actor = nil
	return &c
}

func sortTokens(list []*entities.Token) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].UUID() < list[j].UUID()
	})
}
