// internal/account/account.go
//
// Member account lookup for the login flow.
//
// Context
// -------
// The relational store and its per-entity queries are collaborators;
// the only query the session-integrity layer owns is "find the account
// for this username", plus the capability and preference rows the new
// session caches.  Everything hangs off a *sqlx.DB scoped to the site
// schema:
//
//	member            (id PK, username, display_name, email, password_hash)
//	member_capability (member_id, capability)
//	member_pref       (member_id, name, value)
//
// Notes
// -----
// • Lookups are case-insensitive on username; the stored value keeps
//   its original casing for display.

package account

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no account matches the username.  The
// authenticator folds it into a generic credential failure before
// anything reaches the client.
var ErrNotFound = errors.New("account: not found")

// Account is one row of the member table plus its side tables.
type Account struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	DisplayName  string `db:"display_name"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`

	Capabilities []string          `db:"-"`
	Prefs        map[string]string `db:"-"`
}

// Repo answers account lookups.  Implemented by SQLRepo; faked in
// authenticator tests.
type Repo interface {
	FindByUsername(ctx context.Context, username string) (*Account, error)
}

// SQLRepo is the production Repo over the site database.
type SQLRepo struct {
	db *sqlx.DB
}

// NewSQLRepo wraps an open pool.
func NewSQLRepo(db *sqlx.DB) *SQLRepo { return &SQLRepo{db: db} }

// FindByUsername loads the account, its capability set, and its
// preference rows.  Username matching ignores case.
func (r *SQLRepo) FindByUsername(ctx context.Context, username string) (*Account, error) {
	const q = `SELECT id, username, display_name, email, password_hash
	             FROM member
	            WHERE LOWER(username) = LOWER(?)`

	var acct Account
	if err := r.db.GetContext(ctx, &acct, q, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	caps, err := r.capabilities(ctx, acct.ID)
	if err != nil {
		return nil, err
	}
	acct.Capabilities = caps

	prefs, err := r.prefs(ctx, acct.ID)
	if err != nil {
		return nil, err
	}
	acct.Prefs = prefs

	return &acct, nil
}

func (r *SQLRepo) capabilities(ctx context.Context, memberID int64) ([]string, error) {
	const q = `SELECT capability
	             FROM member_capability
	            WHERE member_id = ?
	            ORDER BY capability`

	caps := make([]string, 0, 4)
	if err := r.db.SelectContext(ctx, &caps, q, memberID); err != nil {
		return nil, err
	}
	return caps, nil
}

func (r *SQLRepo) prefs(ctx context.Context, memberID int64) (map[string]string, error) {
	const q = `SELECT name, value
	             FROM member_pref
	            WHERE member_id = ?`

	rows, err := r.db.QueryxContext(ctx, q, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prefs := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		prefs[name] = value
	}
	return prefs, rows.Err()
}
