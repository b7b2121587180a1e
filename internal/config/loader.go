// internal/config/loader.go
//
// Configuration loader and hot-reloader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `.env` file — `<root>/conf/.env`.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `LATTICE_`, where `__` maps to “.”
     (e.g., `LATTICE_HTTP__LISTEN_ADDR → http.listen_addr`).

After merging, the tree is unmarshalled into strongly-typed structs,
validated, enriched with the runtime root path, and cached in an
`atomic.Pointer` for lock-free reads.  `Reload()` simply calls `Load()`
again and swaps the pointer.

Secrets whose value starts with `vault:` are left in place by `Load()`
and replaced by `ResolveSecrets()` once the Vault client is up; boot
order is Load → vault.New → ResolveSecrets → database.Open.

Instrumentation
---------------
  • DEBUG spans — root discovery, YAML read, env overlay.
  • ERROR spans — YAML parse, env overlay, unmarshal, validation failures.
  • INFO  span  — final “config loaded” with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed (bootstrap console).

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/global.yaml`;
    this lets `go run ./cmd/api` work from any sub-directory.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/latticecms/lattice/internal/vault"
)

var current atomic.Pointer[Config]

// DefaultTokenTTL matches the 7-day cookie lifetime of both admin kinds.
const DefaultTokenTTL = 7 * 24 * time.Hour

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves LATTICE_ROOT or climbs directories until conf/global.yaml
// is found.  Falls back to executable heuristic for production layout.
func rootDir() string {
	if r := os.Getenv("LATTICE_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, validates, and caches Config.
func Load() (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// Env overrides: LATTICE_AUTH__SIGNING_SECRET → auth.signing_secret
	if err := k.Load(env.Provider("LATTICE_", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = DefaultTokenTTL
	}
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"force_https", cfg.HTTP.ForceHTTPS,
		"token_ttl", cfg.Auth.TokenTTL,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

/*──────────────────────────── vault resolution ─────────────────────────────*/

// ResolveSecrets replaces every `vault:mount/path#key` value in cfg with
// the secret fetched from Vault.  Plain values pass through untouched.
// The resolved Config is re-stored so Get() observers see final values.
func ResolveSecrets(ctx context.Context, cfg *Config, cli *vault.Client) error {
	fields := []*string{
		&cfg.Database.Password,
		&cfg.Auth.SigningSecret,
	}
	for _, f := range fields {
		val, err := resolveOne(ctx, cli, *f)
		if err != nil {
			return err
		}
		*f = val
	}
	current.Store(cfg)
	return nil
}

// resolveOne fetches a single vault: URI, caching for 5 minutes so a
// config reload does not hammer Vault.
func resolveOne(ctx context.Context, cli *vault.Client, raw string) (string, error) {
	const prefix = "vault:"
	if !strings.HasPrefix(raw, prefix) {
		return raw, nil
	}
	ref := strings.TrimPrefix(raw, prefix)
	path, key, ok := strings.Cut(ref, "#")
	if !ok {
		key = "value"
		path = ref
	}
	return cli.GetKV(ctx, path, key, 5*time.Minute)
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config  { return current.Load() }
func Reload() error { _, err := Load(); return err }
