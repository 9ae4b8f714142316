//go:build integration

package services_test

import (
	"testing"

	"github.com/KirkDiggler/concentration-bot/internal/testutils"
)

func TestNewProvider_RedisContainer(t *testing.T) {
	client := testutils.CreateRedisContainerClient(t)
	concentrateAndEnd(t, newRedisProvider(t, client))
}
