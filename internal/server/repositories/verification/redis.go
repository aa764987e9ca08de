// Package verification stores pending second-factor challenges. Entries
// live in Redis under the verification TTL, so an unanswered challenge
// disappears on its own.
package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"secureshare/internal/common"
)

// Challenge is the server side of one pending login verification.
type Challenge struct {
	UserID string `json:"user_id"`
	Code   string `json:"code"`
}

type Repository interface {
	Create(ctx context.Context, id string, ch *Challenge, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Challenge, error)
	Delete(ctx context.Context, id string) error
}

type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func (r *RedisRepository) buildKey(id string) string {
	return fmt.Sprintf("verify:%s", id)
}

func (r *RedisRepository) Create(ctx context.Context, id string, ch *Challenge, ttl time.Duration) error {
	data, err := json.Marshal(ch)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.buildKey(id), data, ttl).Err()
}

// Get returns the pending challenge. A missing key means the verification
// window has closed.
func (r *RedisRepository) Get(ctx context.Context, id string) (*Challenge, error) {
	data, err := r.client.Get(ctx, r.buildKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, common.ErrVerificationExpired
	}
	if err != nil {
		return nil, err
	}

	var ch Challenge
	if err := json.Unmarshal(data, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.buildKey(id)).Err()
}
