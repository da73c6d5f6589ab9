package config

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis initializes a Redis client and verifies connectivity.
func ConnectRedis(addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0, // default DB
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}

	return client, nil
}
