package repository

import (
	"context"
	"time"
)

// IDedup is the short-lived duplicate guard backed by Redis. A message id
// observed within the TTL window is a duplicate and must not be
// reprocessed.
type IDedup interface {
	// MarkIfNew records the key and returns true when it was not already
	// present. False means duplicate.
	MarkIfNew(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// ICatalogCache caches store info and product payloads fetched from the
// tenant platform API.
type ICatalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}
