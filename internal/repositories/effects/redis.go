package effects

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/KirkDiggler/concentration-bot/internal/entities"
	dnderr "github.com/KirkDiggler/concentration-bot/internal/errors"
	"github.com/KirkDiggler/concentration-bot/internal/repositories"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client       redis.UniversalClient
	TimeProvider repositories.TimeProvider
}

type redisRepo struct {
	client       redis.UniversalClient
	timeProvider repositories.TimeProvider
}

// NewRedisRepository creates a new Redis-backed effect repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg == nil {
		panic("RedisRepoConfig cannot be nil")
	}
	if cfg.Client == nil {
		panic("Redis client cannot be nil")
	}
	if cfg.TimeProvider == nil {
		cfg.TimeProvider = repositories.RealTimeProvider{}
	}

	return &redisRepo{
		client:       cfg.Client,
		timeProvider: cfg.TimeProvider,
	}
}

func (r *redisRepo) key(actorID, effectID string) string {
	return fmt.Sprintf("effect:%s:%s", actorID, effectID)
}

func (r *redisRepo) actorEffectsKey(actorID string) string {
	return fmt.Sprintf("actor:%s:effects", actorID)
}

// Create stores a new effect
func (r *redisRepo) Create(ctx context.Context, effect *entities.Effect) error {
	if err := validate(effect); err != nil {
		return err
	}

	exists, err := r.client.Exists(ctx, r.key(effect.ActorID, effect.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check effect existence: %w", err)
	}
	if exists > 0 {
		return repositories.NewRecordExistsError("effect", effect.ID)
	}

	if effect.CreatedAt.IsZero() {
		effect.CreatedAt = r.timeProvider.Now()
	}

	jsonData, err := json.Marshal(effect)
	if err != nil {
		return fmt.Errorf("failed to marshal effect: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.key(effect.ActorID, effect.ID), string(jsonData), 0)
	pipe.SAdd(ctx, r.actorEffectsKey(effect.ActorID), effect.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create effect: %w", err)
	}

	return nil
}

// Get retrieves one effect of an actor
func (r *redisRepo) Get(ctx context.Context, actorID, effectID string) (*entities.Effect, error) {
	if actorID == "" || effectID == "" {
		return nil, dnderr.InvalidArgument("actor ID and effect ID are required")
	}

	jsonData, err := r.client.Get(ctx, r.key(actorID, effectID)).Bytes()
	if err == redis.Nil {
		return nil, repositories.NewRecordNotFoundError("effect", effectID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get effect: %w", err)
	}

	var effect entities.Effect
	if err := json.Unmarshal(jsonData, &effect); err != nil {
		return nil, fmt.Errorf("failed to unmarshal effect: %w", err)
	}
	return &effect, nil
}

// ListByActor returns an actor's effects, oldest first. Index entries whose
// effect is gone are skipped.
func (r *redisRepo) ListByActor(ctx context.Context, actorID string) ([]*entities.Effect, error) {
	if actorID == "" {
		return nil, dnderr.InvalidArgument("actor ID is required")
	}

	ids, err := r.client.SMembers(ctx, r.actorEffectsKey(actorID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list effect IDs: %w", err)
	}

	loaded := make([]*entities.Effect, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			effect, err := r.Get(gctx, actorID, id)
			if dnderr.IsNotFound(err) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to get effect %s: %w", id, err)
			}
			loaded[i] = effect
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make([]*entities.Effect, 0, len(loaded))
	for _, effect := range loaded {
		if effect != nil {
			result = append(result, effect)
		}
	}
	sortEffects(result)
	return result, nil
}

// Delete removes an effect
func (r *redisRepo) Delete(ctx context.Context, actorID, effectID string) error {
	if actorID == "" || effectID == "" {
		return dnderr.InvalidArgument("actor ID and effect ID are required")
	}

	pipe := r.client.Pipeline()
	del := pipe.Del(ctx, r.key(actorID, effectID))
	pipe.SRem(ctx, r.actorEffectsKey(actorID), effectID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete effect: %w", err)
	}

	if del.Val() == 0 {
		return repositories.NewRecordNotFoundError("effect", effectID)
	}
	return nil
}
