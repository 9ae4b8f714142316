package tokens

import (
	"context"
	"testing"

	"github.com/KirkDiggler/concentration-bot/internal/entities"
	dnderr "github.com/KirkDiggler/concentration-bot/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	token := &entities.Token{ID: "t1", SceneID: "s1", ActorID: "a1", Actor: &entities.Actor{ID: "a1"}}
	require.NoError(t, repo.Create(ctx, token))
	assert.NotNil(t, token.Actor, "caller's token is untouched")

	got, err := repo.Get(ctx, "s1", "t1")
	require.NoError(t, err)
	assert.Nil(t, got.Actor)

	list, err := repo.ListByActor(ctx, "a1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, "s1", "t1"))
	assert.True(t, dnderr.IsNotFound(repo.Delete(ctx, "s1", "t1")))
}
