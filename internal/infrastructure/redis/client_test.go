package redis_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Copias-api/internal/infrastructure/redis"
	"github.com/jhoicas/Copias-api/pkg/config"
)

func TestNewClient_SinDireccionNoConecta(t *testing.T) {
	client, err := redis.NewClient(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}
