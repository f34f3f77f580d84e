// internal/routing/alias_test.go
//
// Unit-tests for the alias-rewrite middleware.
//
// Context
// -------
// Aliases map friendly paths ("/discography") onto component paths
// ("/albums").  The tests cover the hit path, the fall-through miss,
// and the TTL reload against a sqlmock-backed route_alias table.
//
// Run: go test ./internal/routing -v

package routing

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var errTestDown = errors.New("database down")

// seed drops a pair straight into the cache and marks it fresh.
func seed(c *AliasCache, alias, target string) {
	c.mu.Lock()
	c.data[alias] = target
	c.loadedAt = time.Now()
	c.mu.Unlock()
}

func TestAliasRewrite_Hit(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	cache := NewAliasCache(db, time.Minute)
	seed(cache, "/discography", "/albums")

	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/discography", nil)
	rr := httptest.NewRecorder()
	Middleware(cache)(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got != "/albums" {
		t.Fatalf("rewrite failed: path = %q", got)
	}
}

func TestAliasRewrite_MissFallsThrough(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	cache := NewAliasCache(db, time.Minute)
	seed(cache, "/discography", "/albums")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/photos" {
			t.Fatalf("path mutated on miss: %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/photos", nil)
	rr := httptest.NewRecorder()
	Middleware(cache)(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestAliasRewrite_StaleCacheReloads(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT alias_path, target_path FROM route_alias`).
		WillReturnRows(sqlmock.NewRows([]string{"alias_path", "target_path"}).
			AddRow("/discography", "/albums"))

	// Zero TTL: every request sees a stale cache and reloads.
	cache := NewAliasCache(db, 0)

	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/discography", nil)
	rr := httptest.NewRecorder()
	Middleware(cache)(next).ServeHTTP(rr, req)

	if got != "/albums" {
		t.Fatalf("reload-then-rewrite failed: path = %q", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestAliasRewrite_ReloadFailureKeepsSnapshot(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT alias_path, target_path FROM route_alias`).
		WillReturnError(errTestDown)

	cache := NewAliasCache(db, 0)
	seed(cache, "/discography", "/albums")
	// Force staleness despite the fresh seed.
	cache.mu.Lock()
	cache.loadedAt = time.Time{}
	cache.mu.Unlock()

	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/discography", nil)
	rr := httptest.NewRecorder()
	Middleware(cache)(next).ServeHTTP(rr, req)

	if got != "/albums" {
		t.Fatalf("previous snapshot lost on reload failure: path = %q", got)
	}
}
