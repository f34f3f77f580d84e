// internal/requestctx/middleware_test.go
//
// End-to-end tests for the request assembler.
//
// Context
// -------
// Each test wires the real store, guard, and normalizer behind a chi
// route and fires httptest requests at it, asserting on the Context the
// endpoint receives: merged params, origin resolution, session
// attachment, and mid-flight geofence revocation.
//
// Run: go test ./internal/requestctx -v

package requestctx

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/geo"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/geofence"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/params"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/session"
)

// tableResolver answers from a fixed addr→Point map.
type tableResolver struct {
	points map[string]geo.Point
}

func (r *tableResolver) Resolve(_ context.Context, ip net.IP) (geo.Point, error) {
	if p, ok := r.points[ip.String()]; ok {
		return p, nil
	}
	return geo.Point{}, geo.ErrUnresolved
}

// nullSink satisfies upload.Sink for requests without file parts.
type nullSink struct{}

func (nullSink) Store(context.Context, string, []byte) (string, error) {
	return "stored.bin", nil
}

const sessionCookie = "supercar_session"

type fixture struct {
	store     *session.Store
	assembler *Assembler
}

func newFixture() *fixture {
	resolver := &tableResolver{points: map[string]geo.Point{
		"203.0.113.7":  {Lat: 37.7749, Lon: -122.4194}, // login origin
		"203.0.113.99": {Lat: 37.8044, Lon: -122.2712}, // nearby
		"198.51.100.1": {Lat: 51.5074, Lon: -0.1278},   // far away
	}}
	store := session.NewStore()
	store.Put(&session.Session{
		Identity:   "ana",
		Token:      "tok-1",
		OriginAddr: "203.0.113.7",
		Origin:     geo.Point{Lat: 37.7749, Lon: -122.4194},
	})
	guard := geofence.New(resolver, store, 0, false)
	normalizer := params.NewNormalizer(nullSink{}, 64)
	return &fixture{
		store:     store,
		assembler: NewAssembler(store, guard, normalizer),
	}
}

// serve runs req through a one-route chi router and returns the Context
// the endpoint observed plus the recorder.
func (f *fixture) serve(t *testing.T, pattern string, req *http.Request) (*Context, *httptest.ResponseRecorder) {
	t.Helper()

	var seen *Context
	r := chi.NewRouter()
	handler := f.assembler.Assemble(func(w http.ResponseWriter, req *http.Request) {
		seen = FromContext(req.Context())
		w.WriteHeader(http.StatusOK)
	})
	r.Get(pattern, handler)
	r.Post(pattern, handler)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return seen, rr
}

func TestAssemble_MergesPathQueryBody(t *testing.T) {
	f := newFixture()

	body := strings.NewReader("b=from-body&c=3")
	req := httptest.NewRequest(http.MethodPost, "/albums/highvision?a=1&b=2", body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rc, rr := f.serve(t, "/albums/{slug}", req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if rc == nil {
		t.Fatal("no Context reached the endpoint")
	}

	if got := rc.Params.Get("slug"); got != "highvision" {
		t.Fatalf("slug = %q; path captures missing", got)
	}
	if got := rc.Params.Get("b"); got != "from-body" {
		t.Fatalf("b = %q; body must win", got)
	}
	if len(rc.RawQuery["a"]) != 1 || rc.RawQuery["a"][0] != "1" {
		t.Fatalf("raw query = %v", rc.RawQuery)
	}
	if rc.SignedIn() {
		t.Fatal("anonymous request carries a session")
	}
	if rc.Timestamp.IsZero() {
		t.Fatal("timestamp not stamped")
	}
}

func TestAssemble_OriginPrecedence(t *testing.T) {
	f := newFixture()

	// Leftmost parseable X-Forwarded-For entry wins.
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Forwarded-For", "garbage, 203.0.113.50, 10.0.0.1")
	req.Header.Set("X-Real-Ip", "203.0.113.60")
	rc, _ := f.serve(t, "/x", req)
	if rc.OriginAddr != "203.0.113.50" {
		t.Fatalf("origin = %q, want first parseable XFF hop", rc.OriginAddr)
	}

	// X-Real-Ip is next in line.
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Real-Ip", "203.0.113.60")
	rc, _ = f.serve(t, "/x", req)
	if rc.OriginAddr != "203.0.113.60" {
		t.Fatalf("origin = %q, want X-Real-Ip", rc.OriginAddr)
	}

	// RemoteAddr as fallback; httptest defaults to 192.0.2.1:1234.
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	rc, _ = f.serve(t, "/x", req)
	if rc.OriginAddr != "192.0.2.1" {
		t.Fatalf("origin = %q, want transport peer", rc.OriginAddr)
	}

	// Nothing parseable: the sentinel, and the request still proceeds.
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "not-an-address"
	rc, rr := f.serve(t, "/x", req)
	if rc.OriginAddr != UnknownOrigin {
		t.Fatalf("origin = %q, want %q", rc.OriginAddr, UnknownOrigin)
	}
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestAssemble_SessionAttached(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7") // login address
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "tok-1"})

	rc, _ := f.serve(t, "/x", req)
	if !rc.SignedIn() || rc.Session.Identity != "ana" {
		t.Fatalf("session not attached: %+v", rc.Session)
	}
}

func TestAssemble_NearbyChurnKeepsSession(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.99") // ~13 km away
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "tok-1"})

	rc, _ := f.serve(t, "/x", req)
	if !rc.SignedIn() {
		t.Fatal("session dropped on nearby churn")
	}
	if rc.Session.OriginAddr != "203.0.113.99" {
		t.Fatalf("snapshot addr = %q, want the refreshed address", rc.Session.OriginAddr)
	}

	stored, _ := f.store.Get("ana")
	if stored.OriginAddr != "203.0.113.99" {
		t.Fatalf("stored addr = %q", stored.OriginAddr)
	}
}

func TestAssemble_DistantHopRevokesMidFlight(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.1") // ~8600 km away
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "tok-1"})

	rc, rr := f.serve(t, "/x", req)

	// The request continues as anonymous; it is not rejected.
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if rc.SignedIn() {
		t.Fatal("revoked session still attached")
	}
	if _, ok := f.store.Get("ana"); ok {
		t.Fatal("session survived in the store")
	}

	// The linkage cookie is cleared on the response.
	cleared := false
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("linkage cookie not cleared")
	}
}

func TestAssemble_UnknownTokenIsAnonymous(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "forged"})

	rc, rr := f.serve(t, "/x", req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if rc.SignedIn() {
		t.Fatal("forged token produced a session")
	}
}

func TestAssemble_BadQueryRejected(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.URL.RawQuery = "a=%zz"

	_, rr := f.serve(t, "/x", req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestAssemble_OversizedBodyRejected(t *testing.T) {
	f := newFixture() // normalizer capped at 64 bytes

	body := strings.NewReader("field=" + strings.Repeat("x", 256))
	req := httptest.NewRequest(http.MethodPost, "/x", body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	_, rr := f.serve(t, "/x", req)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rr.Code)
	}
}
