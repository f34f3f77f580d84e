// internal/component/siteinfo.go
package component

import (
	"github.com/jmoiron/sqlx"

	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/auth"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/requestctx"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/session"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/upload"
)

// SiteInfo exposes process-wide resources to Components during Init.
type SiteInfo interface {
	GetDB() *sqlx.DB
	GetSessions() *session.Store
	GetAuthenticator() *auth.Authenticator
	GetAssembler() *requestctx.Assembler
	GetUploads() upload.Sink
}
