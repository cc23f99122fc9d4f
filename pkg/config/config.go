// Package config holds the application configuration and the dependency
// bundle services are built from.
package config

import (
	"time"
)

// DB holds database connection settings.
type DB struct {
	Url string `envconfig:"URL"`
}

// Jwt holds token signing settings.
type Jwt struct {
	Secret string        `envconfig:"SECRET" required:"true"`
	Expiry time.Duration `envconfig:"EXPIRY" default:"24h"`
}

// Redis holds optional Redis settings for the ticket store. When URL is
// empty the in-memory store is used.
type Redis struct {
	URL       string `envconfig:"URL"`
	KeyPrefix string `envconfig:"KEY_PREFIX" default:"veltris:ticket:"`
}

// RateLimit holds API rate limiting settings.
type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

// Otp holds one-time-code settings. The reference behavior implied a
// 10-minute validity; here it is enforced.
type Otp struct {
	Validity time.Duration `envconfig:"VALIDITY" default:"10m"`
}

// Transfer holds money-movement policy settings.
type Transfer struct {
	// OtpThreshold is the amount (major units) from which transfers require
	// OTP step-up authorization.
	OtpThreshold float64 `envconfig:"OTP_THRESHOLD" default:"1000"`
}

// Settlement holds the background sweep settings. SettleAfter is the age a
// processing transaction must reach before promotion; Schedule is a cron
// spec for the sweep cadence.
type Settlement struct {
	SettleAfter time.Duration `envconfig:"SETTLE_AFTER" default:"10m"`
	Schedule    string        `envconfig:"SCHEDULE" default:"@every 1m"`
}

// Log holds logger settings.
type Log struct {
	Level  int    `envconfig:"LEVEL" default:"0"`
	Format string `envconfig:"FORMAT" default:"json"`
}

// Server holds HTTP listener settings.
type Server struct {
	Host string `envconfig:"HOST" default:"localhost"`
	Port int    `envconfig:"PORT" default:"3000"`
}

// App is the root configuration.
type App struct {
	Env        string      `envconfig:"APP_ENV" default:"development"`
	Server     *Server     `envconfig:"SERVER"`
	Log        *Log        `envconfig:"LOG"`
	DB         *DB         `envconfig:"DATABASE"`
	Jwt        *Jwt        `envconfig:"JWT"`
	Redis      *Redis      `envconfig:"REDIS"`
	RateLimit  *RateLimit  `envconfig:"RATE_LIMIT"`
	Otp        *Otp        `envconfig:"OTP"`
	Transfer   *Transfer   `envconfig:"TRANSFER"`
	Settlement *Settlement `envconfig:"SETTLEMENT"`
}
