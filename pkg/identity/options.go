package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/musicstore/pkg/config"
)

// Options are bound from the "Identity" configuration section.
type Options struct {
	Password PasswordOptions
	User     UserOptions
	Cookies  CookieOptions
	Tokens   TokenOptions
}

type PasswordOptions struct {
	RequiredLength         int  `env:"IDENTITY_PASSWORD_REQUIREDLENGTH" envDefault:"6"`
	RequireDigit           bool `env:"IDENTITY_PASSWORD_REQUIREDIGIT" envDefault:"true"`
	RequireLowercase       bool `env:"IDENTITY_PASSWORD_REQUIRELOWERCASE" envDefault:"true"`
	RequireUppercase       bool `env:"IDENTITY_PASSWORD_REQUIREUPPERCASE" envDefault:"true"`
	RequireNonAlphanumeric bool `env:"IDENTITY_PASSWORD_REQUIRENONALPHANUMERIC" envDefault:"true"`
}

type UserOptions struct {
	RequireUniqueEmail bool `env:"IDENTITY_USER_REQUIREUNIQUEEMAIL" envDefault:"false"`
}

type CookieOptions struct {
	ApplicationCookieName string        `env:"IDENTITY_COOKIES_APPLICATIONCOOKIENAME" envDefault:".MusicStore.Application"`
	ExternalCookieName    string        `env:"IDENTITY_COOKIES_EXTERNALCOOKIENAME" envDefault:".MusicStore.External"`
	ExpireTimeSpan        time.Duration `env:"IDENTITY_COOKIES_EXPIRETIMESPAN" envDefault:"336h"`
	ExternalExpire        time.Duration `env:"IDENTITY_COOKIES_EXTERNALEXPIRE" envDefault:"5m"`
	LoginPath             string        `env:"IDENTITY_COOKIES_LOGINPATH" envDefault:"/Account/Login"`
	AccessDeniedPath      string        `env:"IDENTITY_COOKIES_ACCESSDENIEDPATH" envDefault:"/Account/AccessDenied"`
	Secure                bool          `env:"IDENTITY_COOKIES_SECURE" envDefault:"false"`
}

type TokenOptions struct {
	// Secret signs data protector tokens. A random secret is generated when empty.
	Secret                string        `env:"IDENTITY_TOKENS_SECRET"`
	DataProtectorLifetime time.Duration `env:"IDENTITY_TOKENS_DATAPROTECTORLIFETIME" envDefault:"24h"`
	CodeStep              time.Duration `env:"IDENTITY_TOKENS_CODESTEP" envDefault:"3m"`
}

// DefaultOptions returns the options used when configuration is silent.
func DefaultOptions() Options {
	var opts Options
	// Binding an empty configuration only applies envDefault tags.
	_ = (&config.Configuration{}).Bind(&opts)
	return opts
}

const defaultCodeStep = 3 * time.Minute

// LoadOptions binds Options from cfg. Code tokens need a step of at least
// one second.
func LoadOptions(cfg *config.Configuration) (Options, error) {
	var opts Options
	if err := cfg.Bind(&opts); err != nil {
		return Options{}, err
	}
	if opts.Tokens.CodeStep < time.Second {
		return Options{}, errors.Join(ErrInvalidOptions, fmt.Errorf("code step %s is below one second", opts.Tokens.CodeStep))
	}
	return opts, nil
}
