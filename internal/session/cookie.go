// internal/session/cookie.go
//
// Transport-level session linkage.
//
// The cookie carries only an opaque random token; every attribute of
// the session itself stays server-side in the Store.  Stealing the
// cookie therefore steals nothing durable, and the geofence guard
// revokes the linkage the moment the thief's origin diverges.

package session

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"
)

const cookieName = "supercar_session"

// NewToken returns a 32-byte random value, base64url-encoded.
func NewToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// SetCookie installs the linkage cookie after a successful login.
func SetCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(14 * 24 * time.Hour),
	})
}

// ClearCookie removes the linkage cookie on sign-out or revocation.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// TokenFromRequest returns the linkage token, if the cookie is present.
func TokenFromRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
