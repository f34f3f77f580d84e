// internal/geo/geo.go
//
// Geolocation resolver contract.
//
// Context
// -------
// The session-integrity layer needs one answer from the outside world:
// "where does this IP address appear to be?".  Everything else (MaxMind
// reader, caching, concurrency bounds) hides behind the Resolver
// interface so tests can substitute a fake and the geofence guard never
// sees vendor types.
//
// Notes
// -----
// • A zero Point is the documented "unknown" location.  Login-time
//   resolution failures degrade to it; geofence-time failures do not.

package geo

import (
	"context"
	"errors"
	"net"
)

// ErrUnresolved is returned when no location can be determined for an
// address.  Callers decide whether that is soft (login) or hard
// (geofence) depending on context.
var ErrUnresolved = errors.New("geo: address unresolved")

// Point is a WGS-84 coordinate pair.
type Point struct {
	Lat float64
	Lon float64
}

// IsZero reports whether p is the unknown-location sentinel.
func (p Point) IsZero() bool { return p.Lat == 0 && p.Lon == 0 }

// Resolver maps a network address to an approximate Point.
//
// Resolve must be safe for arbitrary concurrent callers and must honor
// ctx cancellation; implementations may consult local databases or
// remote services.
type Resolver interface {
	Resolve(ctx context.Context, ip net.IP) (Point, error)
}
