// internal/requestctx/context.go
//
// Per-request context handed to page handlers.
//
// Context
// -------
// The assembler (middleware.go) builds one Context per request after
// the geofence guard and body normalizer have run.  Handlers and
// templates read from it; nothing here points back at live internals,
// so the struct is safe to log or JSON-encode.
//
// Notes
// -----
// • Session is nil for anonymous callers, including callers whose
//   session was revoked moments ago by the geofence guard.
// • Params is the fully merged path/query/body map; RawQuery is kept
//   alongside for handlers that need repeated query values.

package requestctx

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/params"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/session"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/ua"
)

// UnknownOrigin is the sentinel used when neither a trusted proxy
// header nor the transport peer yields a usable address.  Requests
// proceed; the geofence guard treats it as unresolvable.
const UnknownOrigin = "unknown"

// Context carries everything a page handler needs from the request
// entry layer.
type Context struct {
	Params     *params.Params
	Session    *session.Session // nil when anonymous
	OriginAddr string
	Headers    http.Header
	URL        *url.URL
	RawQuery   url.Values
	UA         ua.Info
	Timestamp  time.Time
}

// SignedIn reports whether the caller still holds a live session.
func (c *Context) SignedIn() bool { return c.Session != nil }

type ctxKey struct{} // unexported, collision-proof

// FromContext returns the Context stored by the assembler, or nil if
// it has not run for this request.
func FromContext(ctx context.Context) *Context {
	v, _ := ctx.Value(ctxKey{}).(*Context)
	return v
}

func withContext(ctx context.Context, c *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}
