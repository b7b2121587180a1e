// internal/config/model.go
//
// Typed configuration model for Lattice.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `conf/.env`                      – dotenv values,
//   • `conf/global.yaml`                        – primary static file,
//   • `LATTICE_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *after* unmarshalling (see ResolveSecrets in
// loader.go), so handlers only ever see plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Database section
//

// Database holds the DSN template and its secret.
//
// The *template* (`DSN`) is kept in YAML so operators can tweak host,
// port, or flags without touching Vault.  The *secret* portion
// (`Password`) is normally a `vault:` URI resolved at boot, keeping
// credentials out of flat files and git history.  The DSN must contain
// exactly one %s verb where the password is spliced in.
type Database struct {
	DSN      string `koanf:"dsn"      validate:"required"`
	Password string `koanf:"password" validate:"required"`
}

//
// Auth section
//

// Auth configures token minting and cookie delivery.  SigningSecret is
// the HMAC key shared by central-admin and site-admin tokens; the kind
// claim keeps the two principal populations apart.
type Auth struct {
	SigningSecret string        `koanf:"signing_secret" validate:"required"`
	TokenTTL      time.Duration `koanf:"token_ttl"`
	CookieDomain  string        `koanf:"cookie_domain"`
	CookieSecure  bool          `koanf:"cookie_secure"`
}

//
// Geo section
//

// Geo points at the optional GeoLite2-City database used to enrich
// audit records.  An empty path disables lookups.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// CORS section
//

// CORS lists the cross-origin hosts allowed to call the admin APIs.
type CORS struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or LATTICE_ROOT override) so later code
// can build absolute file paths.
type Paths struct {
	Root string // LATTICE_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Auth     Auth     `koanf:"auth"`
	Geo      Geo      `koanf:"geo"`
	CORS     CORS     `koanf:"cors"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}
