// internal/config/model.go
//
// Typed configuration model.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                           – dotenv values,
//   • `conf/site.yaml`                          – primary static file,
//   • `SUPERCAR_`-prefixed environment overrides – highest precedence.
//
// A database password of the form `vault:<path>#<key>` is resolved
// through the Vault client at boot, so the model never stores Vault
// URIs past startup—only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml`
//     tags unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not set it.

package config

import "fmt"

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
// The template (`DSN`) lives in YAML so operators can tweak host,
// port, or flags without touching Vault.  The secret (`Password`) is
// either a literal or a `vault:` URI resolved at boot.
type Database struct {
	DSN      string `koanf:"dsn"      validate:"required"`
	Password string `koanf:"password" validate:"required"`
}

// BuildDSN substitutes the resolved password into the DSN template.
func (d Database) BuildDSN() string {
	return fmt.Sprintf(d.DSN, d.Password)
}

//
// Geo section
//

// Geo configures the geolocation resolver and the geofence policy.
// RadiusKm <= 0 selects the package default; FailOpen relaxes the
// fail-closed posture on resolver outages.
type Geo struct {
	DBPath   string  `koanf:"db_path" validate:"required"`
	RadiusKm float64 `koanf:"radius_km"`
	FailOpen bool    `koanf:"fail_open"`
}

//
// Uploads section
//

// Uploads configures the local upload sink and the request body cap.
type Uploads struct {
	Dir          string `koanf:"dir" validate:"required"`
	MaxBodyBytes int64  `koanf:"max_body_bytes"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.
type Paths struct {
	Root string // SUPERCAR_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Geo      Geo      `koanf:"geo"`
	Uploads  Uploads  `koanf:"uploads"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}
