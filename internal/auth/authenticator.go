// internal/auth/authenticator.go
//
// Credential verification and session installation.
//
// Context
// -------
// Login is the only place a plaintext password exists, and only for the
// duration of one call.  The flow is: case-insensitive account lookup,
// argon2id verification, best-effort origin geolocation, then a fresh
// Session installed in the Store keyed by the lowercase identity.
//
// Failure shape matters here: unknown username and wrong password both
// come back as ErrInvalidCredentials.  The distinction exists only in
// the debug log, never in anything a client can observe.
//
// Notes
// -----
// • Geolocation failure at login is soft.  The member may be behind a
//   VPN or an address the database has not seen; we record the unknown
//   location and let the geofence guard take over from there.

package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/account"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/geo"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/metrics"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/password"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/session"
)

// ErrInvalidCredentials is the uniform login failure.  It covers
// unknown usernames, wrong passwords, and malformed stored hashes
// alike.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// Credentials is the transient input to Login.  It is never stored.
type Credentials struct {
	Username   string
	Password   string
	OriginAddr string
}

// Authenticator verifies credentials and installs sessions.
type Authenticator struct {
	accounts account.Repo
	resolver geo.Resolver
	store    *session.Store
}

// New wires the authenticator's collaborators.
func New(accounts account.Repo, resolver geo.Resolver, store *session.Store) *Authenticator {
	return &Authenticator{accounts: accounts, resolver: resolver, store: store}
}

// Login verifies creds and, on success, installs and returns a new
// Session.  Every failure path returns ErrInvalidCredentials.
func (a *Authenticator) Login(ctx context.Context, creds Credentials) (*session.Session, error) {
	acct, err := a.accounts.FindByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			zap.S().Debugw("login rejected", "reason", "unknown username", "username", creds.Username)
		} else {
			zap.S().Errorw("login account lookup failed", "err", err)
		}
		metrics.LoginFailuresTotal.Inc()
		return nil, ErrInvalidCredentials
	}

	ok, err := password.Verify(acct.PasswordHash, creds.Password)
	if err != nil {
		zap.S().Errorw("login hash verify failed", "username", acct.Username, "err", err)
		metrics.LoginFailuresTotal.Inc()
		return nil, ErrInvalidCredentials
	}
	if !ok {
		zap.S().Debugw("login rejected", "reason", "password mismatch", "username", acct.Username)
		metrics.LoginFailuresTotal.Inc()
		return nil, ErrInvalidCredentials
	}

	// Advisory geolocation.  The unknown location is acceptable at
	// login time; the geofence guard fails closed later if needed.
	origin := geo.Point{}
	if ip := net.ParseIP(creds.OriginAddr); ip != nil {
		metrics.GeoLookupsTotal.Inc()
		p, err := a.resolver.Resolve(ctx, ip)
		if err != nil {
			metrics.GeoLookupErrorsTotal.Inc()
			zap.S().Warnw("login geolocation failed, using unknown location",
				"addr", creds.OriginAddr, "err", err)
		} else {
			origin = p
		}
	}

	token, err := session.NewToken()
	if err != nil {
		zap.S().Errorw("login token generation failed", "err", err)
		return nil, ErrInvalidCredentials
	}

	sess := &session.Session{
		Identity:     strings.ToLower(acct.Username),
		DisplayName:  acct.DisplayName,
		Email:        acct.Email,
		PasswordFP:   fingerprint(acct.PasswordHash),
		Token:        token,
		OriginAddr:   creds.OriginAddr,
		Origin:       origin,
		Capabilities: acct.Capabilities,
		Prefs:        acct.Prefs,
		CreatedAt:    time.Now().UTC(),
	}
	a.store.Put(sess)

	metrics.LoginsTotal.Inc()
	zap.S().Infow("login ok",
		"identity", sess.Identity,
		"origin", sess.OriginAddr,
		"lat", origin.Lat,
		"lon", origin.Lon,
	)
	return sess, nil
}

// fingerprint hashes the stored password hash so sessions can be
// invalidated after a password change without keeping the hash itself
// in memory.
func fingerprint(storedHash string) string {
	sum := sha256.Sum256([]byte(storedHash))
	return hex.EncodeToString(sum[:])
}
