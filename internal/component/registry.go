// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name> and calls
// component.Register() in an init() function.  Boot code invokes
// Init(info) so components can capture the request assembler and their
// stores, then Routes(r) to register endpoints on the shared router.

package component

import (
	"sync"

	"github.com/go-chi/chi/v5"
)

// Component contract.
//
// Routes(r) should register BOTH page and API endpoints on the shared
// site router, e.g:
//
//	r.Get("/login", getLogin)
//	r.Route("/api", func(api chi.Router) { ... })
type Component interface {
	Name() string
	Init(SiteInfo) error
	Routes(r chi.Router)
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register is invoked from component init() functions.
func Register(c Component) {
	mu.Lock()
	registry[c.Name()] = c
	mu.Unlock()
}

// All returns every registered component in arbitrary order.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	return out
}
