package kv

import (
	"context"
	"strings"
	"time"
)

// KV is the interface for a persistent key-value store.
// Keys are strings, values are JSON-serializable.
// Get on a missing key returns an error wrapping sql.ErrNoRows.
type KV interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	SetTTL(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
	ListKeys(ctx context.Context) ([]string, error)
}

// ClearNamespace deletes every key under "namespace:". This is the only
// eviction path for namespaced entries besides TTL expiry.
func ClearNamespace(ctx context.Context, store KV, namespace string) error {
	keys, err := store.ListKeys(ctx)
	if err != nil {
		return err
	}
	prefix := namespace + ":"
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if err := store.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}
