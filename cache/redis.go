// Package cache keeps short-lived copies of user roles in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parcel-delivery-api/models"

	"github.com/go-redis/redis/v8"
)

const rolePrefix = "role:"

type RoleCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// Connect parses redisURL, pings the server and returns a role cache whose
// entries expire after ttl
func Connect(ctx context.Context, redisURL string, ttl time.Duration) (*RoleCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return New(rdb, ttl), nil
}

func New(rdb *redis.Client, ttl time.Duration) *RoleCache {
	return &RoleCache{rdb: rdb, ttl: ttl}
}

func (c *RoleCache) Get(ctx context.Context, email string) (models.UserRole, bool, error) {
	val, err := c.rdb.Get(ctx, rolePrefix+email).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get role: %w", err)
	}
	return models.UserRole(val), true, nil
}

func (c *RoleCache) Set(ctx context.Context, email string, role models.UserRole) error {
	return c.rdb.Set(ctx, rolePrefix+email, string(role), c.ttl).Err()
}

func (c *RoleCache) Delete(ctx context.Context, email string) error {
	return c.rdb.Del(ctx, rolePrefix+email).Err()
}

func (c *RoleCache) Close() error {
	return c.rdb.Close()
}
