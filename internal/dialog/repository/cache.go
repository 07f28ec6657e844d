package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"sochi_assistant_backend/internal/dialog/domain"
	"sochi_assistant_backend/platform/apperr"
)

const leadCachePrefix = "lead:"

// CachedStore is a read-through, write-through Redis decorator around a
// Store. Cache failures degrade to the inner store, never to an error.
type CachedStore struct {
	inner Store
	rdb   *redis.Client
	ttl   time.Duration
}

// NewCachedStore wraps store with a Redis snapshot cache. ttl should
// match the session TTL so the cache and the registry expire together.
func NewCachedStore(store Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{inner: store, rdb: rdb, ttl: ttl}
}

func (c *CachedStore) UpsertLead(ctx context.Context, sessionKey string, lead domain.Lead) error {
	if err := c.inner.UpsertLead(ctx, sessionKey, lead); err != nil {
		return err
	}
	if payload, err := json.Marshal(lead); err == nil {
		c.rdb.Set(ctx, leadCachePrefix+sessionKey, payload, c.ttl)
	}
	return nil
}

func (c *CachedStore) GetLead(ctx context.Context, sessionKey string) (domain.Lead, error) {
	payload, err := c.rdb.Get(ctx, leadCachePrefix+sessionKey).Bytes()
	if err == nil {
		var lead domain.Lead
		if jsonErr := json.Unmarshal(payload, &lead); jsonErr == nil {
			return lead, nil
		}
		// Corrupt entry: drop it and fall through to the store.
		c.rdb.Del(ctx, leadCachePrefix+sessionKey)
	} else if !errors.Is(err, redis.Nil) {
		// Redis being down must not break reads.
		return c.inner.GetLead(ctx, sessionKey)
	}

	lead, err := c.inner.GetLead(ctx, sessionKey)
	if err != nil {
		return domain.Lead{}, err
	}
	if payload, marshalErr := json.Marshal(lead); marshalErr == nil {
		c.rdb.Set(ctx, leadCachePrefix+sessionKey, payload, c.ttl)
	}
	return lead, nil
}

// ListByTier is a reporting query; it is never cached and goes straight
// to the inner store.
func (c *CachedStore) ListByTier(ctx context.Context, tier domain.Tier, limit int) ([]string, error) {
	lister, ok := c.inner.(Lister)
	if !ok {
		return nil, apperr.New(apperr.KindInternal, "inner store does not support tier listing")
	}
	return lister.ListByTier(ctx, tier, limit)
}
