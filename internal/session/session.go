// internal/session/session.go
//
// In-memory session record.
//
// Context
// -------
// A Session binds an authenticated identity to the network origin it
// logged in from, plus the profile data pages render on every hit
// (display name, capabilities, preferences).  Sessions are built by the
// authenticator, held exclusively by the Store, and mutated only in
// their origin-address field by the geofence guard.  Nothing here is
// persisted; a lost session simply means the next request is anonymous
// until the member signs in again.
//
// Notes
// -----
// • PasswordFP is a fingerprint of the stored password hash, kept so a
//   future password change can invalidate stale sessions.
// • Callers outside this package only ever see clones (§Store), so the
//   exported fields carry no aliasing hazard.

package session

import (
	"time"

	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/geo"
)

// Session is the server-held record for one signed-in member.
type Session struct {
	Identity     string // lowercase username; Store key
	DisplayName  string
	Email        string
	PasswordFP   string // sha256 hex of the stored password hash
	Token        string // opaque cookie linkage value
	OriginAddr   string // last-accepted network address
	Origin       geo.Point
	Capabilities []string
	Prefs        map[string]string
	CreatedAt    time.Time
}

// Can reports whether the session carries the named capability.
func (s *Session) Can(capability string) bool {
	for _, c := range s.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// Pref returns a preference value or the given fallback.
func (s *Session) Pref(key, fallback string) string {
	if v, ok := s.Prefs[key]; ok {
		return v
	}
	return fallback
}

// clone returns a deep copy so callers never alias Store-internal
// state.
func (s *Session) clone() *Session {
	cp := *s
	if s.Capabilities != nil {
		cp.Capabilities = append([]string(nil), s.Capabilities...)
	}
	if s.Prefs != nil {
		cp.Prefs = make(map[string]string, len(s.Prefs))
		for k, v := range s.Prefs {
			cp.Prefs[k] = v
		}
	}
	return &cp
}
