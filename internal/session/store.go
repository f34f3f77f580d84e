// internal/session/store.go
//
// Process-wide session table.
//
// Context
// -------
// The Store is the only shared mutable state in the request-integrity
// layer: identity → *Session, plus a token index so the cookie value
// can find its session without scanning.  All access goes through the
// methods below; critical sections are short map operations only, never
// network or disk I/O, so a slow geolocation or upload call can never
// block unrelated requests.
//
// Notes
// -----
// • Every lock is released via defer, so a panicking caller cannot
//   leave the table wedged.
// • Get and LookupToken hand out deep copies; the one sanctioned
//   in-place mutation is UpdateOrigin, which touches a single string
//   field under the write lock.

package session

import (
	"sync"

	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/metrics"
)

// Store maps identities to live sessions.  The zero value is not
// usable; call NewStore.
type Store struct {
	mu         sync.RWMutex
	byIdentity map[string]*Session
	byToken    map[string]string // token → identity
}

// NewStore returns an empty Store.  An empty table is a valid steady
// state; sessions appear as members sign in.
func NewStore() *Store {
	return &Store{
		byIdentity: make(map[string]*Session),
		byToken:    make(map[string]string),
	}
}

// Get returns a snapshot of the session for identity, or (nil, false).
func (st *Store) Get(identity string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.byIdentity[identity]
	if !ok {
		return nil, false
	}
	return s.clone(), true
}

// LookupToken returns a snapshot of the session linked to the cookie
// token, or (nil, false) when the token is unknown or revoked.
func (st *Store) LookupToken(token string) (*Session, bool) {
	if token == "" {
		return nil, false
	}

	st.mu.RLock()
	defer st.mu.RUnlock()

	id, ok := st.byToken[token]
	if !ok {
		return nil, false
	}
	s, ok := st.byIdentity[id]
	if !ok {
		return nil, false
	}
	return s.clone(), true
}

// Put installs a session, overwriting any existing entry for the same
// identity and retiring that entry's token linkage.
func (st *Store) Put(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if old, ok := st.byIdentity[s.Identity]; ok {
		delete(st.byToken, old.Token)
	} else {
		metrics.SessionsActive.Inc()
	}
	cp := s.clone()
	st.byIdentity[cp.Identity] = cp
	if cp.Token != "" {
		st.byToken[cp.Token] = cp.Identity
	}
}

// UpdateOrigin rewrites only the recorded origin address for identity.
// Absent identities are a no-op; the login coordinates are deliberately
// left untouched so repeated small hops keep measuring against the
// original sign-in location.
func (st *Store) UpdateOrigin(identity, addr string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.byIdentity[identity]; ok {
		s.OriginAddr = addr
	}
}

// Revoke discards the session for identity along with its token
// linkage.  Revoking an absent identity is a no-op, not an error.
func (st *Store) Revoke(identity string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.byIdentity[identity]
	if !ok {
		return
	}
	delete(st.byToken, s.Token)
	delete(st.byIdentity, identity)
	metrics.SessionsActive.Dec()
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.byIdentity)
}
