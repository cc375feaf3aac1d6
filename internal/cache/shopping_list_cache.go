// internal/cache/shopping_list_cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mercadofacil/backend-go/internal/config"
	"github.com/mercadofacil/backend-go/internal/domain"
)

const shoppingListKey = "pantry:shopping_list"

// ShoppingListCache caches the computed shopping list between mutations of
// the backing store. Every mutating operation invalidates it.
type ShoppingListCache interface {
	Get(ctx context.Context) (domain.ShoppingList, bool, error)
	Set(ctx context.Context, list domain.ShoppingList) error
	Invalidate(ctx context.Context) error
}

type redisShoppingListCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopShoppingListCache struct{}

func NewShoppingListCache(cfg config.CacheConfig) (ShoppingListCache, error) {
	if !cfg.Enabled {
		return &noopShoppingListCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisShoppingListCache{client: client, ttl: ttl}, nil
}

func NewNoopShoppingListCache() ShoppingListCache {
	return &noopShoppingListCache{}
}

func (c *redisShoppingListCache) Get(ctx context.Context) (domain.ShoppingList, bool, error) {
	payload, err := c.client.Get(ctx, shoppingListKey).Bytes()
	if err == redis.Nil {
		return domain.ShoppingList{}, false, nil
	}
	if err != nil {
		return domain.ShoppingList{}, false, fmt.Errorf("redis get failed: %w", err)
	}

	var list domain.ShoppingList
	if err := json.Unmarshal(payload, &list); err != nil {
		return domain.ShoppingList{}, false, fmt.Errorf("decode shopping list cache: %w", err)
	}

	return list, true, nil
}

func (c *redisShoppingListCache) Set(ctx context.Context, list domain.ShoppingList) error {
	payload, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode shopping list cache: %w", err)
	}

	if err := c.client.Set(ctx, shoppingListKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisShoppingListCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, shoppingListKey).Err()
}

func (n *noopShoppingListCache) Get(ctx context.Context) (domain.ShoppingList, bool, error) {
	return domain.ShoppingList{}, false, nil
}

func (n *noopShoppingListCache) Set(ctx context.Context, list domain.ShoppingList) error {
	return nil
}

func (n *noopShoppingListCache) Invalidate(ctx context.Context) error {
	return nil
}
