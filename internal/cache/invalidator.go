// Package cache implements the Redis-backed response cache's
// invalidation side.  Cached responses live under namespaced keys
// ("{prefix}:{namespace}:{hash}"); a mutation drops whole namespaces,
// the explicit equivalent of an evict-all on the affected views.
package cache

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

// Cache namespaces.  The middleware writes response entries under these
// and the services invalidate them after successful mutations.
const (
	NSShows        = "shows"
	NSReservations = "reservations"
	NSStatistics   = "statistics"
)

// scanCount is the COUNT hint passed to Redis SCAN.
const scanCount = 100

// Invalidator deletes cached read views by namespace.  All methods are
// safe on a nil receiver or a nil client so callers can run without
// Redis; invalidation then degrades to a no-op, which is correct since
// nothing was cached either.
type Invalidator struct {
	rdb    *redis.Client
	prefix string
}

// NewInvalidator returns an Invalidator over the given client using the
// same key prefix as the cache middleware.
func NewInvalidator(rdb *redis.Client, prefix string) *Invalidator {
	return &Invalidator{rdb: rdb, prefix: prefix}
}

// InvalidateShows drops every cached show listing and detail view.
func (i *Invalidator) InvalidateShows(ctx context.Context) {
	if _, err := i.Clear(ctx, NSShows); err != nil {
		log.Printf("cache: invalidate %s failed: %v", NSShows, err)
	}
}

// InvalidateReservations drops cached reservation views.
func (i *Invalidator) InvalidateReservations(ctx context.Context) {
	if _, err := i.Clear(ctx, NSReservations); err != nil {
		log.Printf("cache: invalidate %s failed: %v", NSReservations, err)
	}
}

// InvalidateStatistics drops the cached statistics rollup.
func (i *Invalidator) InvalidateStatistics(ctx context.Context) {
	if _, err := i.Clear(ctx, NSStatistics); err != nil {
		log.Printf("cache: invalidate %s failed: %v", NSStatistics, err)
	}
}

// Namespaces lists the configured cache namespaces, for the admin
// surface.
func Namespaces() []string {
	return []string{NSShows, NSReservations, NSStatistics}
}

// Clear removes all keys of one namespace and returns how many entries
// were dropped.  It scans rather than tracking key sets, so it stays
// correct regardless of how many middleware instances write entries.
func (i *Invalidator) Clear(ctx context.Context, namespace string) (int64, error) {
	if i == nil || i.rdb == nil {
		return 0, nil
	}
	match := i.prefix + ":" + namespace + ":*"
	iter := i.rdb.Scan(ctx, 0, match, scanCount).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := i.rdb.Del(ctx, keys...).Result()
	if err != nil {
		return 0, err
	}
	return n, nil
}

// ClearAll drops every namespace and returns the total entries removed.
func (i *Invalidator) ClearAll(ctx context.Context) (int64, error) {
	var total int64
	for _, ns := range Namespaces() {
		n, err := i.Clear(ctx, ns)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
