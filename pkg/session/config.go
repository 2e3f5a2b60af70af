package session

import "time"

// DefaultIdleTimeout expires sessions nobody touched for twenty minutes.
const DefaultIdleTimeout = 20 * time.Minute

// Config controls the session cookie and expiry.
type Config struct {
	CookieName   string        `env:"SESSION_COOKIENAME" envDefault:".MusicStore.Session"`
	CookiePath   string        `env:"SESSION_COOKIEPATH" envDefault:"/"`
	CookieSecure bool          `env:"SESSION_COOKIESECURE"`
	IdleTimeout  time.Duration `env:"SESSION_IDLETIMEOUT" envDefault:"20m"`
}
