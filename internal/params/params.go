// internal/params/params.go
//
// Ordered parameter map.
//
// Context
// -------
// Every request collapses into one string map merging path captures,
// query values, and body fields.  Handlers address values by name; the
// map additionally remembers first-insertion order so diagnostics and
// round-trip tests are deterministic.  Overwriting a key (body over
// query over path) replaces the value but keeps the original position.

package params

// Params is an insertion-ordered string map.  Not safe for concurrent
// use; each request builds its own.
type Params struct {
	keys []string
	vals map[string]string
}

// New returns an empty Params.
func New() *Params {
	return &Params{vals: make(map[string]string)}
}

// Set stores value under key.  First insertion fixes the key's
// position; later writes replace the value in place.
func (p *Params) Set(key, value string) {
	if _, ok := p.vals[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.vals[key] = value
}

// Get returns the value for key, or "" when absent.
func (p *Params) Get(key string) string { return p.vals[key] }

// Lookup returns the value and whether the key is present.
func (p *Params) Lookup(key string) (string, bool) {
	v, ok := p.vals[key]
	return v, ok
}

// Has reports key presence.
func (p *Params) Has(key string) bool {
	_, ok := p.vals[key]
	return ok
}

// Keys returns the keys in first-insertion order.  The slice is a copy.
func (p *Params) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Len reports the number of distinct keys.
func (p *Params) Len() int { return len(p.keys) }

// Map returns a plain map copy, losing order.  Convenient for logging
// and template data.
func (p *Params) Map() map[string]string {
	out := make(map[string]string, len(p.vals))
	for k, v := range p.vals {
		out[k] = v
	}
	return out
}
