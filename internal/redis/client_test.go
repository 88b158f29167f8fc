package redis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/rpg-muncher/internal/redis"
)

func TestNewClient(t *testing.T) {
	client, err := redis.NewClient("", nil)
	assert.Error(t, err)
	assert.Nil(t, client)

	client, err = redis.NewClient("localhost:6379", &redis.Options{DB: 2})
	assert.NoError(t, err)
	assert.NotNil(t, client)
	_ = client.Close()
}

func TestNewClusterClient(t *testing.T) {
	client, err := redis.NewClusterClient(nil, nil)
	assert.Error(t, err)
	assert.Nil(t, client)

	client, err = redis.NewClusterClient([]string{"localhost:7000", "localhost:7001"}, nil)
	assert.NoError(t, err)
	assert.NotNil(t, client)
	_ = client.Close()
}
