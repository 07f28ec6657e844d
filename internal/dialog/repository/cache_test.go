package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"sochi_assistant_backend/internal/dialog/domain"
	"sochi_assistant_backend/platform/apperr"
)

type memStore struct {
	leads map[string]domain.Lead
	gets  int
}

func newMemStore() *memStore {
	return &memStore{leads: make(map[string]domain.Lead)}
}

func (s *memStore) UpsertLead(_ context.Context, key string, lead domain.Lead) error {
	s.leads[key] = lead.Clone()
	return nil
}

func (s *memStore) GetLead(_ context.Context, key string) (domain.Lead, error) {
	s.gets++
	lead, ok := s.leads[key]
	if !ok {
		return domain.Lead{}, apperr.NotFound("lead not found")
	}
	return lead.Clone(), nil
}

func newCachedStore(t *testing.T) (*CachedStore, *memStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inner := newMemStore()
	return NewCachedStore(inner, rdb, 24*time.Hour), inner, mr
}

func TestCachedStoreWriteThrough(t *testing.T) {
	cache, inner, mr := newCachedStore(t)
	ctx := context.Background()

	lead := domain.NewLead(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	lead.HomeCity = "Москва"

	if err := cache.UpsertLead(ctx, "user:1", lead); err != nil {
		t.Fatalf("UpsertLead: %v", err)
	}

	if _, ok := inner.leads["user:1"]; !ok {
		t.Error("write should reach the inner store")
	}
	if !mr.Exists("lead:user:1") {
		t.Error("write should populate the cache")
	}
}

func TestCachedStoreReadsFromCache(t *testing.T) {
	cache, inner, _ := newCachedStore(t)
	ctx := context.Background()

	lead := domain.NewLead(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	lead.HomeCity = "Казань"
	if err := cache.UpsertLead(ctx, "user:1", lead); err != nil {
		t.Fatal(err)
	}

	got, err := cache.GetLead(ctx, "user:1")
	if err != nil {
		t.Fatalf("GetLead: %v", err)
	}
	if got.HomeCity != "Казань" {
		t.Errorf("HomeCity = %q, want Казань", got.HomeCity)
	}
	if inner.gets != 0 {
		t.Errorf("inner store reads = %d, want cache hit", inner.gets)
	}
}

func TestCachedStoreFillsOnMiss(t *testing.T) {
	cache, inner, mr := newCachedStore(t)
	ctx := context.Background()

	lead := domain.NewLead(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	inner.leads["user:1"] = lead

	if _, err := cache.GetLead(ctx, "user:1"); err != nil {
		t.Fatalf("GetLead: %v", err)
	}
	if inner.gets != 1 {
		t.Errorf("inner store reads = %d, want 1", inner.gets)
	}
	if !mr.Exists("lead:user:1") {
		t.Error("miss should populate the cache")
	}

	// Second read is served from the cache.
	if _, err := cache.GetLead(ctx, "user:1"); err != nil {
		t.Fatal(err)
	}
	if inner.gets != 1 {
		t.Errorf("inner store reads = %d, want still 1", inner.gets)
	}
}

func TestCachedStoreNotFoundPassesThrough(t *testing.T) {
	cache, _, _ := newCachedStore(t)
	_, err := cache.GetLead(context.Background(), "user:missing")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestCachedStoreCorruptEntryFallsBack(t *testing.T) {
	cache, inner, mr := newCachedStore(t)
	ctx := context.Background()

	lead := domain.NewLead(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	lead.HomeCity = "Сириус"
	inner.leads["user:1"] = lead
	mr.Set("lead:user:1", "{not json")

	got, err := cache.GetLead(ctx, "user:1")
	if err != nil {
		t.Fatalf("GetLead: %v", err)
	}
	if got.HomeCity != "Сириус" {
		t.Errorf("HomeCity = %q, want value from inner store", got.HomeCity)
	}
}
