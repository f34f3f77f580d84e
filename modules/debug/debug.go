// modules/debug/debug.go
//
// Demo module that echoes the assembled request context: merged
// parameters, origin, user-agent data, and session identity.
package debug

import (
	"encoding/json"
	"net/http"

	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/module"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/requestctx"
)

func init() {
	// Register at exact path /debug
	module.Register("/debug", handler)
}

// handler writes a JSON blob with selected context fields.
func handler(rc *requestctx.Context, w http.ResponseWriter, r *http.Request) {
	out := map[string]any{
		"origin":    rc.OriginAddr,
		"path":      rc.URL.Path,
		"raw_query": rc.URL.RawQuery,
		"params":    rc.Params.Map(),
		"ua":        rc.UA,
		"signed_in": rc.SignedIn(),
		"ts":        rc.Timestamp,
	}
	if rc.SignedIn() {
		out["identity"] = rc.Session.Identity
		out["capabilities"] = rc.Session.Capabilities
	}

	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}
