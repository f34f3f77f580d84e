// internal/geofence/guard_test.go
//
// Unit-tests for the geofence guard.
//
// Context
// -------
// The resolver is faked with a fixed addr→coordinate table, so each
// test steers the algorithm precisely: same address, metro-level churn,
// a cross-continent hop, and an unresolvable origin under both the
// fail-closed default and the fail-open knob.
//
// Run: go test ./internal/geofence -v

package geofence

import (
	"context"
	"net"
	"testing"

	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/geo"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/session"
)

// tableResolver answers from a fixed addr→Point map; anything else
// errors like a database miss.
type tableResolver struct {
	points map[string]geo.Point
}

func (r *tableResolver) Resolve(_ context.Context, ip net.IP) (geo.Point, error) {
	if p, ok := r.points[ip.String()]; ok {
		return p, nil
	}
	return geo.Point{}, geo.ErrUnresolved
}

var (
	sfPoint      = geo.Point{Lat: 37.7749, Lon: -122.4194} // login location
	oaklandPoint = geo.Point{Lat: 37.8044, Lon: -122.2712} // ~13 km away
	londonPoint  = geo.Point{Lat: 51.5074, Lon: -0.1278}   // ~8600 km away
)

func guardFixture(failOpen bool) (*Guard, *session.Store) {
	resolver := &tableResolver{points: map[string]geo.Point{
		"203.0.113.7":  sfPoint,
		"203.0.113.99": oaklandPoint,
		"198.51.100.1": londonPoint,
	}}
	store := session.NewStore()
	store.Put(&session.Session{
		Identity:   "ana",
		Token:      "tok-1",
		OriginAddr: "203.0.113.7",
		Origin:     sfPoint,
	})
	return New(resolver, store, 0, failOpen), store
}

func snapshot(t *testing.T, store *session.Store) *session.Session {
	t.Helper()
	s, ok := store.Get("ana")
	if !ok {
		t.Fatal("fixture session missing")
	}
	return s
}

func TestCheck_SameAddress(t *testing.T) {
	g, store := guardFixture(false)

	if d := g.Check(context.Background(), snapshot(t, store), "203.0.113.7"); d != Unchanged {
		t.Fatalf("decision = %v, want Unchanged", d)
	}
	if _, ok := store.Get("ana"); !ok {
		t.Fatal("session vanished")
	}
}

func TestCheck_NearbyChurnUpdatesAddressOnly(t *testing.T) {
	g, store := guardFixture(false)

	if d := g.Check(context.Background(), snapshot(t, store), "203.0.113.99"); d != Updated {
		t.Fatalf("decision = %v, want Updated", d)
	}

	after := snapshot(t, store)
	if after.OriginAddr != "203.0.113.99" {
		t.Fatalf("recorded addr = %q", after.OriginAddr)
	}
	// Coordinates stay pinned at the login location, otherwise a
	// patient attacker could hop the session across the map.
	if after.Origin != sfPoint {
		t.Fatalf("login coordinates moved: %+v", after.Origin)
	}
}

func TestCheck_DistantHopRevokes(t *testing.T) {
	g, store := guardFixture(false)

	if d := g.Check(context.Background(), snapshot(t, store), "198.51.100.1"); d != Revoked {
		t.Fatalf("decision = %v, want Revoked", d)
	}
	if _, ok := store.Get("ana"); ok {
		t.Fatal("session survived a cross-continent hop")
	}
	if _, ok := store.LookupToken("tok-1"); ok {
		t.Fatal("token linkage survived revocation")
	}
}

func TestCheck_UnresolvableFailsClosed(t *testing.T) {
	g, store := guardFixture(false)

	if d := g.Check(context.Background(), snapshot(t, store), "192.0.2.200"); d != Revoked {
		t.Fatalf("decision = %v, want Revoked", d)
	}
	if _, ok := store.Get("ana"); ok {
		t.Fatal("session survived an unresolvable origin")
	}
}

func TestCheck_UnparseableAddrFailsClosed(t *testing.T) {
	g, store := guardFixture(false)

	if d := g.Check(context.Background(), snapshot(t, store), "unknown"); d != Revoked {
		t.Fatalf("decision = %v, want Revoked", d)
	}
}

func TestCheck_FailOpenKeepsSession(t *testing.T) {
	g, store := guardFixture(true)

	if d := g.Check(context.Background(), snapshot(t, store), "192.0.2.200"); d != Unchanged {
		t.Fatalf("decision = %v, want Unchanged under fail-open", d)
	}
	if _, ok := store.Get("ana"); !ok {
		t.Fatal("session revoked despite fail-open")
	}
}

func TestCheck_ZeroLoginCoordinates(t *testing.T) {
	resolver := &tableResolver{points: map[string]geo.Point{
		"198.51.100.1": londonPoint,
	}}
	store := session.NewStore()
	store.Put(&session.Session{
		Identity:   "ana",
		Token:      "tok-1",
		OriginAddr: "203.0.113.7",
		// Origin left zero: login geolocation failed softly.
	})
	g := New(resolver, store, 0, false)

	s, _ := store.Get("ana")
	if d := g.Check(context.Background(), s, "198.51.100.1"); d != Updated {
		t.Fatalf("decision = %v, want Updated for first resolvable origin", d)
	}
	after, _ := store.Get("ana")
	if after.OriginAddr != "198.51.100.1" {
		t.Fatalf("recorded addr = %q", after.OriginAddr)
	}
	if !after.Origin.IsZero() {
		t.Fatalf("login coordinates invented after the fact: %+v", after.Origin)
	}
}

func TestNew_RadiusDefault(t *testing.T) {
	g := New(&tableResolver{}, session.NewStore(), 0, false)
	if g.radiusKm != DefaultRadiusKm {
		t.Fatalf("radius = %v, want %v", g.radiusKm, DefaultRadiusKm)
	}
	g = New(&tableResolver{}, session.NewStore(), 42, false)
	if g.radiusKm != 42 {
		t.Fatalf("radius = %v, want 42", g.radiusKm)
	}
}
