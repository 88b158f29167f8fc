package redis

import (
	"github.com/redis/go-redis/v9"
)

// Client is the redis client surface the compendium store needs
type Client interface {
	redis.UniversalClient
}
