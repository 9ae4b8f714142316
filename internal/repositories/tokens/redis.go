package tokens

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
	Client redis.UniversalClient
}

type redisRepo struct {
	client redis.UniversalClient
}

// NewRedisRepository creates a new Redis-backed token repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg == nil {
		panic("RedisRepoConfig cannot be nil")
	}
	if cfg.Client == nil {
		panic("Redis client cannot be nil")
	}
	return &redisRepo{client: cfg.Client}
}

func (r *redisRepo) key(sceneID, tokenID string) string {
	return fmt.Sprintf("scene:%s:token:%s", sceneID, tokenID)
}

func (r *redisRepo) actorTokensKey(actorID string) string {
	return fmt.Sprintf("actor:%s:tokens", actorID)
}

func (r *redisRepo) Create(ctx context.Context, token *entities.Token) error {
	if err := validate(token); err != nil {
		return err
	}

	exists, err := r.client.Exists(ctx, r.key(token.SceneID, token.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check token existence: %w", err)
	}
	if exists > 0 {
		return repositories.NewRecordExistsError("token", token.ID)
	}

	jsonData, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(token.SceneID, token.ID), string(jsonData), 0)
	pipe.SAdd(ctx, r.actorTokensKey(token.ActorID), string(token.UUID()))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}
	return nil
}

func (r *redisRepo) Get(ctx context.Context, sceneID, tokenID string) (*entities.Token, error) {
	if sceneID == "" || tokenID == "" {
		return nil, dnderr.InvalidArgument("scene ID and token ID are required")
	}

	jsonData, err := r.client.Get(ctx, r.key(sceneID, tokenID)).Bytes()
	if err == redis.Nil {
		return nil, repositories.NewRecordNotFoundError("token", tokenID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	var token entities.Token
	if err := json.Unmarshal(jsonData, &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	return &token, nil
}

func (r *redisRepo) ListByActor(ctx context.Context, actorID string) ([]*entities.Token, error) {
	addresses, err := r.client.SMembers(ctx, r.actorTokensKey(actorID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}

	var result []*entities.Token
	for _, address := range addresses {
		addr := entities.Address(address)
		sceneID, _ := addr.Find(entities.DocumentScene)
		tokenID, _ := addr.Find(entities.DocumentToken)

		token, err := r.Get(ctx, sceneID, tokenID)
		if dnderr.IsNotFound(err) || dnderr.IsInvalidArgument(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, token)
	}
	sortTokens(result)
	return result, nil
}

func (r *redisRepo) Delete(ctx context.Context, sceneID, tokenID string) error {
	token, err := r.Get(ctx, sceneID, tokenID)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.key(sceneID, tokenID))
	pipe.SRem(ctx, r.actorTokensKey(token.ActorID), string(token.UUID()))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
