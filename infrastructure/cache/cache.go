package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"agent-hub/domain/repository"
	"agent-hub/infrastructure/configuration"
	"agent-hub/infrastructure/logger"
)

// NewRedisClient builds a client from the loaded configuration and
// verifies connectivity with a ping.
func NewRedisClient() (*redis.Client, error) {
	cfg := configuration.C.RedisClient
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Username: cfg.Username,
		Password: cfg.Password,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error pinging Redis")
		return nil, err
	}
	logger.GetLogger().WithField("addr", client.Options().Addr).Info("Connected to Redis")
	return client, nil
}

// DedupCache is the short-lived duplicate guard for inbound webhooks.
type DedupCache struct {
	client *redis.Client
}

var _ repository.IDedup = (*DedupCache)(nil)

func NewDedupCache(client *redis.Client) *DedupCache {
	return &DedupCache{client: client}
}

// MarkIfNew records the key atomically with SETNX. Returns false when
// the key already existed within its TTL window.
func (c *DedupCache) MarkIfNew(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, dedupKey(key), time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("marking dedup key: %w", err)
	}
	if !ok {
		logger.GetLogger().WithField("key", key).Warn("Duplicate webhook event detected")
	}
	return ok, nil
}

func dedupKey(id string) string {
	return "dedup:msg:" + id
}

// CatalogCache caches store info and product payloads from the tenant
// platform API, JSON encoded.
type CatalogCache struct {
	client *redis.Client
}

var _ repository.ICatalogCache = (*CatalogCache)(nil)

func NewCatalogCache(client *redis.Client) *CatalogCache {
	return &CatalogCache{client: client}
}

func (c *CatalogCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading cache key %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decoding cached value for %s: %w", key, err)
	}
	return true, nil
}

func (c *CatalogCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding cache value for %s: %w", key, err)
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}
