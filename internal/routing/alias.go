// internal/routing/alias.go
//
// Alias-resolution cache and middleware.
//
// Context
// -------
// Editors register friendly paths (“/discography”) that must be
// rewritten to absolute component paths (“/albums”) before routing.
// The cache holds alias→target pairs from the route_alias table and
// refreshes itself on a TTL; a miss simply falls through to normal
// routing.
//
// Workflow
// --------
//   1. Boot constructs the cache via routing.NewAliasCache().
//   2. cmd/web wires routing.Middleware(cache) early in the chain.
//   3. Middleware rewrites r.URL.Path on cache hit.

package routing

import (
	"context"
	"database/sql"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// AliasCache stores alias→target pairs plus TTL state.  Zero value is
// unusable; construct with NewAliasCache.
type AliasCache struct {
	mu       sync.RWMutex
	data     map[string]string
	loadedAt time.Time
	ttl      time.Duration
	db       *sql.DB
}

// NewAliasCache returns a ready cache with the specified TTL.
func NewAliasCache(db *sql.DB, ttl time.Duration) *AliasCache {
	return &AliasCache{data: map[string]string{}, db: db, ttl: ttl}
}

// Load refreshes all aliases from route_alias.
func (c *AliasCache) Load(ctx context.Context) error {
	rows, err := c.db.QueryContext(ctx, `SELECT alias_path, target_path FROM route_alias`)
	if err != nil {
		return err
	}
	defer rows.Close()

	fresh := make(map[string]string)
	for rows.Next() {
		var alias, target string
		if err := rows.Scan(&alias, &target); err != nil {
			return err
		}
		fresh[alias] = target
	}
	if err := rows.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	c.data = fresh
	c.loadedAt = time.Now()
	c.mu.Unlock()

	zap.L().Debug("alias cache load", zap.Int("count", len(fresh)))
	return nil
}

func (c *AliasCache) lookup(path string) (string, bool) {
	c.mu.RLock()
	target, ok := c.data[path]
	c.mu.RUnlock()
	return target, ok
}

func (c *AliasCache) stale() bool {
	c.mu.RLock()
	s := time.Since(c.loadedAt) > c.ttl
	c.mu.RUnlock()
	return s
}

// Middleware returns a Chi middleware that rewrites alias paths.  A
// reload failure keeps serving the previous snapshot.
func Middleware(cache *AliasCache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cache.stale() {
				if err := cache.Load(r.Context()); err != nil {
					zap.L().Warn("alias cache reload failed", zap.Error(err))
				}
			}

			if target, ok := cache.lookup(r.URL.Path); ok {
				original := r.URL.Path
				r.URL.Path = target
				r.RequestURI = target
				zap.L().Debug("alias rewrite",
					zap.String("from", original),
					zap.String("to", target))
			}

			next.ServeHTTP(w, r)
		})
	}
}
