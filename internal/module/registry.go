// internal/module/registry.go
//
// A super-light registry: modules call Register(path, handler) in an
// init() function.  The core router looks up the exact URL path (no
// wildcards) and, if found, executes the handler.
//
// Handler signature:
//
//	func(rc *requestctx.Context, w http.ResponseWriter, r *http.Request)
//
// giving handlers the assembled per-request context without another
// lookup.
package module

import (
	"net/http"
	"sync"

	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/requestctx"
)

// Handler is what modules register.
type Handler func(*requestctx.Context, http.ResponseWriter, *http.Request)

var (
	mu       sync.RWMutex
	registry = map[string]Handler{}
)

// Register is called from module init() functions.
func Register(path string, h Handler) {
	mu.Lock()
	registry[path] = h
	mu.Unlock()
}

// Lookup returns the handler for an exact path or nil.
func Lookup(path string) Handler {
	mu.RLock()
	defer mu.RUnlock()
	return registry[path]
}
