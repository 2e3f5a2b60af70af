// Package config loads layered application configuration.
//
// Sources are registered in order and merged into a single flat key space.
// When two sources define the same key, the source registered last wins, so a
// local config.json can be overridden by environment variables on a deployed
// host.
//
// # Keys
//
// Keys are hierarchical, separated by a colon, and compared case-insensitively:
//
//	Data:DefaultConnection:ConnectionString
//
// Environment variables cannot contain a colon on every platform, so a double
// underscore is accepted as the separator instead:
//
//	DATA__DEFAULTCONNECTION__CONNECTIONSTRING=postgres://...
//
// # Usage
//
//	cfg, err := config.NewBuilder().
//	    AddJSONFile("config.json", false).
//	    AddEnvironmentVariables("").
//	    Build()
//
//	var opts struct {
//	    ConnectionString string `env:"DATA_DEFAULTCONNECTION_CONNECTIONSTRING"`
//	}
//	err = cfg.Bind(&opts)
//
// Bind uses caarlos0/env over the merged key space: each key is upper-cased
// and its separators replaced with a single underscore.
package config
