package musicstore

import (
	"log/slog"
	"net"
)

// DefaultConfigFile is read from the working directory when present.
const DefaultConfigFile = "config.json"

// Option configures a Startup.
type Option func(*startupOptions)

type startupOptions struct {
	configFile string
	overrides  map[string]string
	logger     *slog.Logger
	listener   net.Listener
}

// WithConfigFile reads configuration from path instead of config.json.
func WithConfigFile(path string) Option {
	return func(o *startupOptions) {
		o.configFile = path
	}
}

// WithConfigValues adds keys that override both the file and the
// environment.
func WithConfigValues(values map[string]string) Option {
	return func(o *startupOptions) {
		if o.overrides == nil {
			o.overrides = make(map[string]string, len(values))
		}
		for k, v := range values {
			o.overrides[k] = v
		}
	}
}

// WithLogger replaces the logger built from the Logging section.
func WithLogger(l *slog.Logger) Option {
	return func(o *startupOptions) {
		o.logger = l
	}
}

// WithListener serves on ln instead of Server:Address.
func WithListener(ln net.Listener) Option {
	return func(o *startupOptions) {
		o.listener = ln
	}
}
