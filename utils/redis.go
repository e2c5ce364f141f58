package utils

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	RedisClient *redis.Client
	Ctx         = context.Background()
)

// InitRedis connects the shared Redis client. Redis backs the
// password-reset token store and the in-app notification pub/sub stream.
func InitRedis() error {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	RedisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	})

	return RedisClient.Ping(Ctx).Err()
}

// SetToken stores a short-lived token with TTL.
func SetToken(key, value string, ttl time.Duration) error {
	if RedisClient == nil {
		return errors.New("redis not initialized")
	}
	return RedisClient.Set(Ctx, key, value, ttl).Err()
}

// GetToken fetches a token value; a missing key is an error.
func GetToken(key string) (string, error) {
	if RedisClient == nil {
		return "", errors.New("redis not initialized")
	}
	return RedisClient.Get(Ctx, key).Result()
}

// DeleteToken removes a consumed token.
func DeleteToken(key string) error {
	if RedisClient == nil {
		return errors.New("redis not initialized")
	}
	return RedisClient.Del(Ctx, key).Err()
}
