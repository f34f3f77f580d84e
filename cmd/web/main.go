// cmd/web/main.go
//
// Supercar fan site – HTTP entry point.
//
// Request life-cycle
// ------------------
//
//  1. Load env vars (host-wide file → .env fallback).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Load layered config; resolve the DB password through Vault when
//     it is a vault: URI.
//
//  4. Open the site DB, the GeoLite2 resolver, and the upload sink.
//
//  5. Build the session store, geofence guard, body normalizer, and
//     request assembler – the request entry layer every page shares.
//
//  6. Mount components (auth, album, …) on one chi router, wire the
//     alias-rewrite and security middleware, and expose /metrics.
//
//  7. Fallback handler: exact-path module dispatch (/debug), else the
//     home page.
//
// Large comment blocks are framed by blank “//” lines; inline comments
// use a single “//”.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/account"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/auth"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/component"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/config"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/database"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/geo"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/geofence"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/logger"
	mw "github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/middleware"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/module"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/params"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/requestctx"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/routing"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/server"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/session"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/upload"
	"github.com/supercar-band-unofficial/supercar-band-com-sub000/internal/vault"

	_ "github.com/supercar-band-unofficial/supercar-band-com-sub000/components/album"
	_ "github.com/supercar-band-unofficial/supercar-band-com-sub000/components/auth"
	_ "github.com/supercar-band-unofficial/supercar-band-com-sub000/modules/debug"
)

const serverEnvPath = "/usr/local/etc/supercar-band/site.env"

// loadEnv prefers the host-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

// site hands process-wide resources to components during Init.
type site struct {
	db        *sqlx.DB
	sessions  *session.Store
	authn     *auth.Authenticator
	assembler *requestctx.Assembler
	uploads   upload.Sink
}

func (s *site) GetDB() *sqlx.DB                       { return s.db }
func (s *site) GetSessions() *session.Store           { return s.sessions }
func (s *site) GetAuthenticator() *auth.Authenticator { return s.authn }
func (s *site) GetAssembler() *requestctx.Assembler   { return s.assembler }
func (s *site) GetUploads() upload.Sink               { return s.uploads }

func main() {
	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logOut.Fatalf("load config: %v", err)
	}

	ctx := context.Background()

	//
	// ── 1.  Secrets and site DB ─────────────────────────────────────────
	//
	if strings.HasPrefix(cfg.Database.Password, "vault:") {
		cli, err := vault.New(ctx)
		if err != nil {
			logOut.Fatalf("vault client: %v", err)
		}
		pw, err := cli.ResolveURI(ctx, cfg.Database.Password)
		if err != nil {
			logOut.Fatalf("vault resolve db password: %v", err)
		}
		cfg.Database.Password = pw
	}

	db, err := database.Open(cfg.Database.BuildDSN())
	if err != nil {
		logOut.Fatalf("connect site DB: %v", err)
	}
	defer db.Close()
	logOut.Infow("site DB online")

	//
	// ── 2.  Request entry layer ─────────────────────────────────────────
	//
	resolver, err := geo.OpenMaxMind(cfg.Geo.DBPath)
	if err != nil {
		logOut.Fatalf("open geo DB: %v", err)
	}
	defer resolver.Close()

	sink, err := upload.NewDisk(cfg.Uploads.Dir)
	if err != nil {
		logOut.Fatalf("upload dir: %v", err)
	}

	sessions := session.NewStore()
	guard := geofence.New(resolver, sessions, cfg.Geo.RadiusKm, cfg.Geo.FailOpen)
	normalizer := params.NewNormalizer(sink, cfg.Uploads.MaxBodyBytes)
	assembler := requestctx.NewAssembler(sessions, guard, normalizer)
	authn := auth.New(account.NewSQLRepo(db), resolver, sessions)

	//
	// ── 3.  Router: components, alias rewrite, metrics ─────────────────
	//
	aliasCache := routing.NewAliasCache(db.DB, 5*time.Minute)
	if err := aliasCache.Load(ctx); err != nil {
		logOut.Warnw("alias cache warm-up failed", "err", err)
	}

	r := chi.NewRouter()
	r.Use(mw.Security)
	r.Use(routing.Middleware(aliasCache))
	r.Handle("/metrics", promhttp.Handler())

	info := &site{
		db:        db,
		sessions:  sessions,
		authn:     authn,
		assembler: assembler,
		uploads:   sink,
	}
	for _, c := range component.All() {
		if err := c.Init(info); err != nil {
			logOut.Fatalf("init component %s: %v", c.Name(), err)
		}
		c.Routes(r)
		logOut.Infow("component mounted", "name", c.Name())
	}

	//
	// ── 4.  Fallback: module dispatch, then home ────────────────────────
	//
	r.NotFound(assembler.Assemble(func(w http.ResponseWriter, req *http.Request) {
		if h := module.Lookup(req.URL.Path); h != nil {
			h(requestctx.FromContext(req.Context()), w, req)
			return
		}
		if req.URL.Path != "/" {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(homePage))
	}))

	//
	// ── 5.  Serve ───────────────────────────────────────────────────────
	//
	handler := http.Handler(r)
	if cfg.HTTP.ForceHTTPS {
		handler = mw.ForceHTTPS(handler)
	}

	srv := server.New(cfg.HTTP.ListenAddr, handler)
	logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
	if err := srv.ListenAndServe(); err != nil {
		logOut.Fatalf("http server: %v", err)
	}
}

const homePage = `<!doctype html>
<title>Supercar</title>
<h1>Supercar</h1>
<p>Albums, lyrics, tabs, photos, and videos from the band.</p>
<p><a href="/albums/new">Add an album</a> · <a href="/login">Sign in</a></p>`
