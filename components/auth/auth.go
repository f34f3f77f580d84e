// components/auth/auth.go
//
// Authentication component – login and logout flow.
//
//------------------------------------------------------------------------------

package auth

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	coreauth "github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/auth"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/component"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/params"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/requestctx"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/session"
)

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component encapsulates login and logout.
type Component struct {
	authn     *coreauth.Authenticator
	sessions  *session.Store
	assembler *requestctx.Assembler
}

// Register component at program start.
func init() { component.Register(&Component{}) }

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "auth" }

// Init captures process-wide collaborators.
func (c *Component) Init(info component.SiteInfo) error {
	c.authn = info.GetAuthenticator()
	c.sessions = info.GetSessions()
	c.assembler = info.GetAssembler()
	return nil
}

// Routes registers the login and logout endpoints.
func (c *Component) Routes(r chi.Router) {
	r.Get("/login", c.assembler.Assemble(c.handleLoginGET))
	r.Post("/login", c.assembler.Assemble(c.handleLoginPOST))
	r.Post("/logout", c.assembler.Assemble(c.handleLogoutPOST))
}

/*──────────────────────────── Handlers ─────────────────────────────────────*/

const loginPage = `<!doctype html>
<title>Sign in</title>
<h1>Sign in</h1>
<form method="post" action="/login">
  <label>Username <input name="username" autocomplete="username"></label>
  <label>Password <input name="password" type="password" autocomplete="current-password"></label>
  <button type="submit">Sign in</button>
</form>`

func (c *Component) handleLoginGET(w http.ResponseWriter, r *http.Request) {
	rc := requestctx.FromContext(r.Context())
	if rc != nil && rc.SignedIn() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(loginPage))
}

// loginForm is the typed view of the login submission.
type loginForm struct {
	Username string
	Password string
}

// Build implements params.Builder.
func (f *loginForm) Build(p *params.Params) error {
	var err error
	if f.Username, err = params.Require(p, "username"); err != nil {
		return err
	}
	if f.Password, err = params.Require(p, "password"); err != nil {
		return err
	}
	return nil
}

func (c *Component) handleLoginPOST(w http.ResponseWriter, r *http.Request) {
	rc := requestctx.FromContext(r.Context())

	var form loginForm
	if err := params.Build(rc.Params, &form); err != nil {
		http.Error(w, "Username and password are required.", http.StatusBadRequest)
		return
	}

	sess, err := c.authn.Login(r.Context(), coreauth.Credentials{
		Username:   form.Username,
		Password:   form.Password,
		OriginAddr: rc.OriginAddr,
	})
	if err != nil {
		if errors.Is(err, coreauth.ErrInvalidCredentials) {
			// One message for every failure mode, on purpose.
			http.Error(w, "Incorrect username or password.", http.StatusUnauthorized)
			return
		}
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	session.SetCookie(w, r, sess.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (c *Component) handleLogoutPOST(w http.ResponseWriter, r *http.Request) {
	rc := requestctx.FromContext(r.Context())
	if rc.SignedIn() {
		c.sessions.Revoke(rc.Session.Identity)
	}
	session.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
