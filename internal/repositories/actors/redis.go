package actors

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

const (
	actorsKey = "actors"
	namesKey  = "actor:names"
)

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client redis.UniversalClient
}

type redisRepo struct {
	client redis.UniversalClient
}

// NewRedisRepository creates a new Redis-backed actor repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg == nil {
		panic("RedisRepoConfig cannot be nil")
	}
	if cfg.Client == nil {
		panic("Redis client cannot be nil")
	}

	return &redisRepo{client: cfg.Client}
}

func (r *redisRepo) key(id string) string {
	return fmt.Sprintf("actor:%s", id)
}

func (r *redisRepo) Create(ctx context.Context, actor *entities.Actor) error {
	if err := validate(actor); err != nil {
		return err
	}

	exists, err := r.client.Exists(ctx, r.key(actor.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check actor existence: %w", err)
	}
	if exists > 0 {
		return repositories.NewRecordExistsError("actor", actor.ID)
	}

	jsonData, err := json.Marshal(actor)
	if err != nil {
		return fmt.Errorf("failed to marshal actor: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(actor.ID), string(jsonData), 0)
	pipe.SAdd(ctx, actorsKey, actor.ID)
	if key := nameKey(actor.Name); key != "" {
		pipe.HSet(ctx, namesKey, key, actor.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create actor: %w", err)
	}

	return nil
}

func (r *redisRepo) Get(ctx context.Context, id string) (*entities.Actor, error) {
	if id == "" {
		return nil, dnderr.InvalidArgument("actor ID is required")
	}

	jsonData, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err == redis.Nil {
		return nil, repositories.NewRecordNotFoundError("actor", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}

	var actor entities.Actor
	if err := json.Unmarshal(jsonData, &actor); err != nil {
		return nil, fmt.Errorf("failed to unmarshal actor: %w", err)
	}
	return &actor, nil
}

func (r *redisRepo) GetByName(ctx context.Context, name string) (*entities.Actor, error) {
	key := nameKey(name)
	if key == "" {
		return nil, dnderr.InvalidArgument("actor name is required")
	}

	id, err := r.client.HGet(ctx, namesKey, key).Result()
	if err == redis.Nil {
		return nil, dnderr.NotFoundf("actor named '%s' not found", name).WithMeta("actor_name", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up actor name: %w", err)
	}

	return r.Get(ctx, id)
}

func (r *redisRepo) Update(ctx context.Context, actor *entities.Actor) error {
	if err := validate(actor); err != nil {
		return err
	}

	existing, err := r.Get(ctx, actor.ID)
	if err != nil {
		return err
	}

	jsonData, err := json.Marshal(actor)
	if err != nil {
		return fmt.Errorf("failed to marshal actor: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(actor.ID), string(jsonData), 0)
	if oldKey, newKey := nameKey(existing.Name), nameKey(actor.Name); oldKey != newKey {
		if oldKey != "" {
			pipe.HDel(ctx, namesKey, oldKey)
		}
		if newKey != "" {
			pipe.HSet(ctx, namesKey, newKey, actor.ID)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update actor: %w", err)
	}

	return nil
}

func (r *redisRepo) Delete(ctx context.Context, id string) error {
	existing, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.key(id))
	pipe.SRem(ctx, actorsKey, id)
	if key := nameKey(existing.Name); key != "" {
		pipe.HDel(ctx, namesKey, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete actor: %w", err)
	}

	return nil
}

func (r *redisRepo) List(ctx context.Context) ([]*entities.Actor, error) {
	ids, err := r.client.SMembers(ctx, actorsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list actor IDs: %w", err)
	}

	loaded := make([]*entities.Actor, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			actor, err := r.Get(gctx, id)
			if dnderr.IsNotFound(err) {
				return nil
			}
			if err != nil {
				return err
			}
			loaded[i] = actor
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make([]*entities.Actor, 0, len(loaded))
	for _, actor := range loaded {
		if actor != nil {
			result = append(result, actor)
		}
	}
	sortByName(result)
	return result, nil
}
