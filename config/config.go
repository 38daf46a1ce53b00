package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// App holds the runtime configuration, populated from environment variables.
type App struct {
	// HTTP
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	// Identity assertions issued by the auth gateway
	IdentityJWTSecret string `envconfig:"IDENTITY_JWT_SECRET" required:"true"`
	// Bcrypt hash of the administrative API key. Empty disables admin routes.
	AdminKeyHash string `envconfig:"ADMIN_KEY_HASH" default:""`
	// Avatar proxy
	AvatarFetchTimeout time.Duration `envconfig:"AVATAR_FETCH_TIMEOUT" default:"15s"`
	// Observability
	SentryDSN string `envconfig:"SENTRY_DSN" default:""`
	Env       string `envconfig:"ENV" default:"development"`
}

// Load reads configuration from the process environment.
func Load() (App, error) {
	var c App
	err := envconfig.Process("", &c)
	return c, err
}

// Development reports whether the service runs in development mode, which
// controls how much error detail leaks into HTTP responses.
func (c App) Development() bool {
	return c.Env == "development"
}
