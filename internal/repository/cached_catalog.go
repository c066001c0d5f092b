package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/arena-tix/service-booking/internal/domain/catalog"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	showListingCacheKey = "catalog:shows"
	showListingCacheTTL = 120 * time.Second
)

// CachedCatalogRepository decorates a catalog.Reader with a redis
// read-through cache on the public listing. Redis being down never fails a
// request: the cache is skipped and the query falls through to the database.
// Point lookups used by the booking core are never cached, since a stale
// price or capacity read would undermine the transactional guarantees.
type CachedCatalogRepository struct {
	catalog.Reader
	rdb    *redis.Client
	logger *zap.Logger
}

// NewCachedCatalogRepository wraps inner with the listing cache.
func NewCachedCatalogRepository(inner catalog.Reader, rdb *redis.Client, logger *zap.Logger) *CachedCatalogRepository {
	return &CachedCatalogRepository{Reader: inner, rdb: rdb, logger: logger}
}

// ListShows serves the listing from redis when fresh, falling back to the
// database and repopulating the cache best effort.
func (r *CachedCatalogRepository) ListShows(ctx context.Context) ([]catalog.ShowListing, error) {
	cached, err := r.rdb.Get(ctx, showListingCacheKey).Result()
	if err == nil {
		var rows []catalog.ShowListing
		if jsonErr := json.Unmarshal([]byte(cached), &rows); jsonErr == nil {
			return rows, nil
		}
		// Corrupt entry: ignore it and recompute.
		r.logger.Warn("discarding corrupt catalog cache entry", zap.String("key", showListingCacheKey))
	} else if err != redis.Nil {
		r.logger.Warn("redis unavailable, skipping catalog cache", zap.Error(err))
	}

	rows, err := r.Reader.ListShows(ctx)
	if err != nil {
		return nil, err
	}

	if payload, jsonErr := json.Marshal(rows); jsonErr == nil {
		if setErr := r.rdb.Set(ctx, showListingCacheKey, payload, showListingCacheTTL).Err(); setErr != nil {
			r.logger.Warn("failed to populate catalog cache", zap.Error(setErr))
		}
	}
	return rows, nil
}
