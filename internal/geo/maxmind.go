// internal/geo/maxmind.go
//
// MaxMind-backed Resolver.
//
// Context
// -------
// Wraps a GeoLite2-City database (oschwald/geoip2-golang) behind the
// Resolver interface.  Three guards sit in front of the raw lookup:
//
//   1. An LRU cache of recently resolved addresses, because the same
//      handful of client IPs dominates any request window.
//   2. A singleflight group so N concurrent requests from one new
//      address cost one lookup.
//   3. A weighted semaphore plus per-lookup timeout bounding in-flight
//      resolutions, so a slow or wedged reader cannot pile up
//      goroutines behind the geofence check.
//
// Notes
// -----
// • The reader is safe for concurrent reads; the mutex below guards
//   only the LRU bookkeeping.
// • A database miss (no location record, or 0,0 coordinates) is
//   reported as ErrUnresolved, never as a zero Point.

package geo

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/oschwald/geoip2-golang"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/cache"
)

const (
	cacheEntries   = 4096
	lookupTimeout  = 2 * time.Second
	maxConcurrency = 32
)

// MaxMind resolves addresses against a local GeoLite2-City database.
type MaxMind struct {
	reader *geoip2.Reader
	sem    *semaphore.Weighted
	sfg    singleflight.Group

	mu  sync.Mutex
	lru *cache.LRU
}

var _ Resolver = (*MaxMind)(nil)

// OpenMaxMind opens the database at dbPath.  Callers own Close.
func OpenMaxMind(dbPath string) (*MaxMind, error) {
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, err
	}
	return &MaxMind{
		reader: r,
		sem:    semaphore.NewWeighted(maxConcurrency),
		lru:    cache.New(cacheEntries),
	}, nil
}

// Close releases the underlying database handle.
func (m *MaxMind) Close() error { return m.reader.Close() }

// Resolve implements Resolver.  Cache hit → immediate answer; otherwise
// one bounded, deduplicated database lookup.
func (m *MaxMind) Resolve(ctx context.Context, ip net.IP) (Point, error) {
	if ip == nil {
		return Point{}, ErrUnresolved
	}
	key := ip.String()

	m.mu.Lock()
	if v, ok := m.lru.Get(key); ok {
		m.mu.Unlock()
		return v.(Point), nil
	}
	m.mu.Unlock()

	v, err, _ := m.sfg.Do(key, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
		defer cancel()

		if err := m.sem.Acquire(ctx, 1); err != nil {
			return Point{}, err
		}
		defer m.sem.Release(1)

		rec, err := m.reader.City(ip)
		if err != nil {
			return Point{}, err
		}
		p := Point{
			Lat: rec.Location.Latitude,
			Lon: rec.Location.Longitude,
		}
		if p.IsZero() {
			return Point{}, ErrUnresolved
		}

		m.mu.Lock()
		m.lru.Add(key, p)
		m.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return Point{}, err
	}
	return v.(Point), nil
}
