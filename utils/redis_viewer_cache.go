package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Luismorlan/conduit/model"
	"github.com/go-redis/redis/v8"
)

// RedisViewerCache caches the user records the auth middleware resolves from
// token ids, so authenticated requests don't all hit postgres. Entries expire
// after ttl and are invalidated whenever the user is updated. Password hashes
// are never written to redis.
type RedisViewerCache struct {
	inner     *redis.Client
	keyParser RedisKeyParser
	ttl       time.Duration
}

func GetRedisViewerCache(ctx context.Context, ttl time.Duration) (*RedisViewerCache, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
		Password: os.Getenv("REDIS_PASSWD"),
		DB:       0, // use default DB
	})
	_, err := redisClient.Ping(ctx).Result()
	if err != nil {
		return nil, err
	}
	return NewRedisViewerCache(redisClient, ttl), nil
}

func NewRedisViewerCache(client *redis.Client, ttl time.Duration) *RedisViewerCache {
	return &RedisViewerCache{
		inner:     client,
		keyParser: RedisKeyParser{prefix: "viewer", delimiter: "__"},
		ttl:       ttl,
	}
}

type RedisKeyParser struct {
	prefix    string
	delimiter string
}

func (r RedisKeyParser) ValidateId(id string) bool {
	return id != "" && !strings.Contains(id, r.delimiter)
}

func (r RedisKeyParser) EncodeViewerKey(userId string) (string, error) {
	if !r.ValidateId(userId) {
		return "", fmt.Errorf("invalid userId: %q", userId)
	}
	return fmt.Sprintf("%s%s%s", r.prefix, r.delimiter, userId), nil
}

func (r RedisKeyParser) DecodeViewerKey(key string) (string, error) {
	splits := strings.Split(key, r.delimiter)
	if len(splits) != 2 || splits[0] != r.prefix || splits[1] == "" {
		return "", fmt.Errorf("invalid key: %s", key)
	}
	return splits[1], nil
}

// Get returns nil without error on a cache miss.
func (r *RedisViewerCache) Get(ctx context.Context, userId string) (*model.User, error) {
	key, err := r.keyParser.EncodeViewerKey(userId)
	if err != nil {
		return nil, err
	}
	val, err := r.inner.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(val, &user); err != nil {
		// A corrupted entry is dropped and treated as a miss.
		r.inner.Del(ctx, key)
		return nil, nil
	}
	return &user, nil
}

func (r *RedisViewerCache) Set(ctx context.Context, user *model.User) error {
	key, err := r.keyParser.EncodeViewerKey(user.Id)
	if err != nil {
		return err
	}
	val, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return r.inner.Set(ctx, key, val, r.ttl).Err()
}

func (r *RedisViewerCache) Invalidate(ctx context.Context, userId string) error {
	key, err := r.keyParser.EncodeViewerKey(userId)
	if err != nil {
		return err
	}
	return r.inner.Del(ctx, key).Err()
}
