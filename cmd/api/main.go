// cmd/api/main.go
//
// Lattice access-control core – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Load layered config (global.yaml → LATTICE_ env overrides) and
//     resolve `vault:` secret references when VAULT_ADDR is set.
//
//  4. Open the global control-plane DB and log active-tenant count.
//
//  5. Build the tenant registry cache (lazy-loads each tenant on the
//     first site-admin login that names its slug).
//
//  6. Open the GeoLite2 database when configured; audit records then
//     carry country codes.
//
//  7. Assemble the route tree and wrap it:
//     requestinfo.Enrich → CORS → Security → ForceHTTPS (outermost).
//
//  8. Serve with hardened timeouts.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/latticecms/lattice/internal/audit"
	"github.com/latticecms/lattice/internal/config"
	"github.com/latticecms/lattice/internal/database"
	"github.com/latticecms/lattice/internal/handlers"
	"github.com/latticecms/lattice/internal/logger"
	"github.com/latticecms/lattice/internal/middleware"
	"github.com/latticecms/lattice/internal/ratelimit"
	"github.com/latticecms/lattice/internal/requestinfo"
	"github.com/latticecms/lattice/internal/server"
	"github.com/latticecms/lattice/internal/tenant"
	"github.com/latticecms/lattice/internal/token"
	"github.com/latticecms/lattice/internal/vault"
)

const serverEnvPath = "/usr/local/etc/lattice/global.env"

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
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

func main() {
	ctx := context.Background()

	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	//
	// ── 1.  Config + secrets ────────────────────────────────────────────
	//
	cfg, err := config.Load()
	if err != nil {
		logOut.Fatalw("load config", "err", err)
	}
	if os.Getenv("VAULT_ADDR") != "" {
		vcli, err := vault.New(ctx)
		if err != nil {
			logOut.Fatalw("vault client", "err", err)
		}
		if err := config.ResolveSecrets(ctx, cfg, vcli); err != nil {
			logOut.Fatalw("resolve secrets", "err", err)
		}
	}

	//
	// ── 2.  Global DB connect ───────────────────────────────────────────
	//
	dsn := fmt.Sprintf(cfg.Database.DSN, cfg.Database.Password)
	logOut.Info("connecting to global DB …")
	globalDB, err := database.Open(ctx, dsn)
	if err != nil {
		logOut.Fatalw("connect global DB", "err", err)
	}
	defer globalDB.Close()
	logOut.Info("global DB online")

	// Log active-tenant count as an early sanity check.
	var active int
	_ = globalDB.Get(&active, `
	    SELECT COUNT(*) FROM tenant
	    WHERE suspended_at IS NULL AND deleted_at IS NULL`)
	logOut.Infof("%d active tenant(s) found", active)

	//
	// ── 3.  Tenant registry cache ───────────────────────────────────────
	//
	registry := tenant.NewCache(globalDB, tenant.IdleTTL, tenant.MaxEntries)

	//
	// ── 4.  Geo enrichment (optional) ───────────────────────────────────
	//
	if cfg.Geo.DBPath != "" {
		if err := requestinfo.InitGeo(cfg.Geo.DBPath); err != nil {
			logOut.Warnw("geo db unavailable, audit records carry IP only",
				"path", cfg.Geo.DBPath, "err", err)
		}
	}

	//
	// ── 5.  Handler assembly ────────────────────────────────────────────
	//
	issuer := token.NewIssuer(cfg.Auth.SigningSecret, cfg.Auth.TokenTTL)
	h := handlers.New(
		globalDB,
		issuer,
		registry,
		audit.NewRecorder(globalDB),
		ratelimit.NewLoginLimiter(),
		token.CookieOptions{
			Domain: cfg.Auth.CookieDomain,
			Secure: cfg.Auth.CookieSecure,
			MaxAge: issuer.TTL(),
		},
	)

	var root http.Handler = requestinfo.Enrich(h.Router())
	root = middleware.CORS(cfg.CORS.AllowedOrigins)(root)
	root = middleware.Security(root)
	if cfg.HTTP.ForceHTTPS {
		root = middleware.ForceHTTPS(root)
	}

	//
	// ── 6.  Serve ───────────────────────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, root)
	logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
	if err := srv.ListenAndServe(); err != nil {
		zap.S().Fatalw("server exit", "err", err)
	}
}
