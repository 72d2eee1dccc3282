package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/embercortex/embercortex/internal/domain"
)

const (
	collectionCacheKey = "collections:listing"
	collectionCacheTTL = 5 * time.Minute
)

// CollectionCache fronts the RAG server's collection listing with a short
// TTL so the sidebar refresh does not hammer the RAG service.
type CollectionCache struct {
	client *Client
}

// NewCollectionCache creates a new collection cache
func NewCollectionCache(client *Client) *CollectionCache {
	return &CollectionCache{client: client}
}

// Get retrieves the cached listing; a miss returns (nil, nil)
func (c *CollectionCache) Get(ctx context.Context) ([]domain.Collection, error) {
	data, err := c.client.rdb.Get(ctx, collectionCacheKey).Bytes()
	if err != nil {
		return nil, nil // Cache miss
	}

	var collections []domain.Collection
	if err := json.Unmarshal(data, &collections); err != nil {
		return nil, fmt.Errorf("failed to unmarshal collections: %w", err)
	}

	return collections, nil
}

// Set caches the listing
func (c *CollectionCache) Set(ctx context.Context, collections []domain.Collection) error {
	data, err := json.Marshal(collections)
	if err != nil {
		return fmt.Errorf("failed to marshal collections: %w", err)
	}

	return c.client.rdb.Set(ctx, collectionCacheKey, data, collectionCacheTTL).Err()
}

// Invalidate drops the cached listing
func (c *CollectionCache) Invalidate(ctx context.Context) error {
	return c.client.rdb.Del(ctx, collectionCacheKey).Err()
}
