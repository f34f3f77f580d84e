// internal/geofence/guard.go
//
// Session geofencing.
//
// Context
// -------
// A stolen linkage cookie works from anywhere; the session it points at
// does not.  On every request carrying a session, the guard compares
// the request's network origin to the origin recorded at login.  Same
// address: nothing to do.  New address: resolve it and measure the
// great-circle distance to the login coordinates.  Metro-level churn
// (ISP reassignment, carrier NAT) stays under the allowed radius and
// only refreshes the recorded address; anything farther, or anything
// we cannot resolve at all, revokes the session on the spot.
//
// The recorded coordinates never move.  They stay pinned at the login
// location so a patient attacker cannot walk the session across the
// map in radius-sized hops.
//
// Notes
// -----
// • The guard runs before any authorization decision, on every code
//   path that has loaded a session.
// • Resolution failure is suspicious by policy (fail closed).  The
//   FailOpen knob exists for operators whose geo database coverage is
//   too thin, but the shipped default revokes.

package geofence

import (
	"context"
	"net"

	"go.uber.org/zap"

	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/geo"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/metrics"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/session"
)

// DefaultRadiusKm tolerates ISP and metro-level address reassignment
// without tripping on a genuine cross-country hop.
const DefaultRadiusKm = 150.0

// Decision is the guard's verdict for one request.
type Decision int

const (
	// Unchanged: origin matches the recorded address; session intact.
	Unchanged Decision = iota
	// Updated: benign churn; recorded address refreshed, session intact.
	Updated
	// Revoked: session discarded; the caller is anonymous from here on.
	Revoked
)

// Guard checks request origins against recorded session origins.
type Guard struct {
	resolver geo.Resolver
	store    *session.Store
	radiusKm float64
	failOpen bool
}

// New builds a Guard.  radiusKm <= 0 selects DefaultRadiusKm.
func New(resolver geo.Resolver, store *session.Store, radiusKm float64, failOpen bool) *Guard {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}
	return &Guard{resolver: resolver, store: store, radiusKm: radiusKm, failOpen: failOpen}
}

// Check runs the geofence algorithm for one request.  sess is the
// caller's snapshot; mutations go through the Store so concurrent
// requests observe them.
func (g *Guard) Check(ctx context.Context, sess *session.Session, currentAddr string) Decision {
	if currentAddr == sess.OriginAddr {
		return Unchanged
	}

	ip := net.ParseIP(currentAddr)
	if ip == nil {
		return g.unresolved(sess, currentAddr, nil)
	}

	metrics.GeoLookupsTotal.Inc()
	current, err := g.resolver.Resolve(ctx, ip)
	if err != nil {
		metrics.GeoLookupErrorsTotal.Inc()
		return g.unresolved(sess, currentAddr, err)
	}

	// No reference point was recorded at login (geolocation failed
	// there, softly).  First resolvable origin becomes plain address
	// churn; the login coordinates stay as they are.
	if sess.Origin.IsZero() {
		g.store.UpdateOrigin(sess.Identity, currentAddr)
		return Updated
	}

	dist := geo.DistanceKm(sess.Origin, current)
	if dist <= g.radiusKm {
		g.store.UpdateOrigin(sess.Identity, currentAddr)
		zap.S().Debugw("geofence origin churn accepted",
			"identity", sess.Identity,
			"addr", currentAddr,
			"distance_km", dist,
		)
		return Updated
	}

	g.store.Revoke(sess.Identity)
	metrics.SessionsRevokedTotal.WithLabelValues("distance").Inc()
	zap.S().Warnw("geofence revoked session",
		"identity", sess.Identity,
		"old_addr", sess.OriginAddr,
		"new_addr", currentAddr,
		"distance_km", dist,
		"radius_km", g.radiusKm,
	)
	return Revoked
}

// unresolved applies the fail-closed policy when the new origin cannot
// be located.
func (g *Guard) unresolved(sess *session.Session, currentAddr string, err error) Decision {
	if g.failOpen {
		zap.S().Warnw("geofence unresolved origin allowed (fail-open)",
			"identity", sess.Identity, "addr", currentAddr, "err", err)
		return Unchanged
	}

	g.store.Revoke(sess.Identity)
	metrics.SessionsRevokedTotal.WithLabelValues("unresolved").Inc()
	zap.S().Warnw("geofence revoked session on unresolved origin",
		"identity", sess.Identity,
		"old_addr", sess.OriginAddr,
		"new_addr", currentAddr,
		"err", err,
	)
	return Revoked
}
