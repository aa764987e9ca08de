// Package blacklist holds revoked bearer tokens until their natural expiry.
package blacklist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Repository interface {
	AddToken(ctx context.Context, token string, expiresAt time.Time) error
	IsTokenBlacklisted(ctx context.Context, token string) (bool, error)
}

type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func (r *RedisRepository) buildKey(token string) string {
	return fmt.Sprintf("blacklist:%s", token)
}

// AddToken revokes a token. The entry expires together with the token, so
// the set never grows past the live token population.
func (r *RedisRepository) AddToken(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, r.buildKey(token), "1", ttl).Err()
}

func (r *RedisRepository) IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	_, err := r.client.Get(ctx, r.buildKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
