package messages

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/KirkDiggler/concentration-bot/internal/entities"
	dnderr "github.com/KirkDiggler/concentration-bot/internal/errors"
	"github.com/KirkDiggler/concentration-bot/internal/repositories"
	"github.com/redis/go-redis/v9"
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

// NewRedisRepository creates a new Redis-backed message repository
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
	return &redisRepo{client: cfg.Client, timeProvider: cfg.TimeProvider}
}

func (r *redisRepo) key(id string) string {
	return fmt.Sprintf("message:%s", id)
}

func (r *redisRepo) Create(ctx context.Context, message *entities.Message) error {
	if message == nil || message.ID == "" {
		return dnderr.InvalidArgument("message ID is required")
	}

	if message.CreatedAt.IsZero() {
		message.CreatedAt = r.timeProvider.Now()
	}

	jsonData, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	created, err := r.client.SetNX(ctx, r.key(message.ID), string(jsonData), 0).Result()
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	if !created {
		return repositories.NewRecordExistsError("message", message.ID)
	}
	return nil
}

func (r *redisRepo) Get(ctx context.Context, id string) (*entities.Message, error) {
	jsonData, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err == redis.Nil {
		return nil, repositories.NewRecordNotFoundError("message", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	var message entities.Message
	if err := json.Unmarshal(jsonData, &message); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	return &message, nil
}

func (r *redisRepo) Delete(ctx context.Context, id string) error {
	deleted, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	if deleted == 0 {
		return repositories.NewRecordNotFoundError("message", id)
	}
	return nil
}
