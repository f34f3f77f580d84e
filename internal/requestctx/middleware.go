// internal/requestctx/middleware.go
//
// Request entry assembler.
//
/*
Context
--------
Every page endpoint is wrapped by Assemble.  For each request it:

  1. Parses the query string (reject on bad encoding, before any
     handler runs).
  2. Resolves the caller's network origin: trusted proxy headers first
     (X-Forwarded-For, then X-Real-Ip), RemoteAddr as fallback, and the
     "unknown" sentinel when nothing parses.
  3. Looks up the caller's session from the linkage cookie and runs the
     geofence guard against it.  The guard's verdict fully resolves
     before anything reads the body; a revoked caller continues as
     anonymous with the cookie cleared.
  4. Runs the body normalizer (urlencoded, multipart, uploads, array
     fields) into the merged parameter map.
  5. Stashes a *Context in the request context for the handler.

Assemble wraps endpoints rather than the mux so chi's URL params are
already populated when the normalizer merges path captures.

Instrumentation
---------------
At debug level each request logs origin, session identity, geofence
verdict, and merged field count.
*/
package requestctx

import (
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/geofence"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/params"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/session"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/ua"
)

// Assembler builds the per-request Context.  One instance serves the
// whole process.
type Assembler struct {
	store      *session.Store
	guard      *geofence.Guard
	normalizer *params.Normalizer
}

// NewAssembler wires the assembler's collaborators.
func NewAssembler(store *session.Store, guard *geofence.Guard, normalizer *params.Normalizer) *Assembler {
	return &Assembler{store: store, guard: guard, normalizer: normalizer}
}

// Assemble wraps an endpoint handler with the full entry pipeline.
func (a *Assembler) Assemble(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rawQuery, err := url.ParseQuery(r.URL.RawQuery)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		origin := originAddr(r)

		// Session lookup and geofence verdict come before the body is
		// touched, so authorization never races the upload path.
		var sess *session.Session
		if token, ok := session.TokenFromRequest(r); ok {
			if s, found := a.store.LookupToken(token); found {
				switch a.guard.Check(r.Context(), s, origin) {
				case geofence.Revoked:
					session.ClearCookie(w)
				case geofence.Updated:
					s.OriginAddr = origin // keep the snapshot current too
					sess = s
				default:
					sess = s
				}
			}
		}

		pathVars := make(map[string]string)
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			for i, k := range rctx.URLParams.Keys {
				if k != "*" {
					pathVars[k] = rctx.URLParams.Values[i]
				}
			}
		}

		merged, err := a.normalizer.Normalize(r, pathVars)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, params.ErrBodyTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			http.Error(w, http.StatusText(status), status)
			return
		}

		rc := &Context{
			Params:     merged,
			Session:    sess,
			OriginAddr: origin,
			Headers:    r.Header,
			URL:        r.URL, // pointer copy; safe for read-only access
			RawQuery:   rawQuery,
			UA:         ua.Parse(r.UserAgent()),
			Timestamp:  time.Now().UTC(),
		}

		zap.S().Debugw("request assembled",
			"path", r.URL.Path,
			"origin", origin,
			"signed_in", rc.SignedIn(),
			"fields", merged.Len(),
		)

		next(w, r.WithContext(withContext(r.Context(), rc)))
	}
}

// originAddr extracts the caller's network origin.  The service sits
// behind a reverse proxy, so the forwarded headers outrank the
// transport peer address.
func originAddr(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip.String()
			}
		}
	}
	if xrip := r.Header.Get("X-Real-Ip"); xrip != "" {
		if ip := net.ParseIP(strings.TrimSpace(xrip)); ip != nil {
			return ip.String()
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		if ip := net.ParseIP(host); ip != nil {
			return ip.String()
		}
	}
	return UnknownOrigin
}
