package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
)

// KeyDelimiter separates hierarchical key segments.
const KeyDelimiter = ":"

// Builder collects configuration sources in registration order.
type Builder struct {
	sources []Source
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add registers a custom source.
func (b *Builder) Add(s Source) *Builder {
	if s != nil {
		b.sources = append(b.sources, s)
	}
	return b
}

// AddJSONFile registers a JSON file source.
func (b *Builder) AddJSONFile(path string, optional bool) *Builder {
	return b.Add(JSONFile(path, optional))
}

// AddYAMLFile registers a YAML file source.
func (b *Builder) AddYAMLFile(path string, optional bool) *Builder {
	return b.Add(YAMLFile(path, optional))
}

// AddEnvironmentVariables registers the process environment.
// All variables in the process flow in as configuration values.
func (b *Builder) AddEnvironmentVariables(prefix string) *Builder {
	return b.Add(Env(prefix))
}

// AddMap registers static values.
func (b *Builder) AddMap(values map[string]string) *Builder {
	return b.Add(Map(values))
}

// Build loads every source in order. A key set by a later source replaces
// the value from an earlier one, including keys that only match by their
// environment name: SERVER_ADDRESS overrides Server:Address.
func (b *Builder) Build() (*Configuration, error) {
	c := newConfiguration()
	for _, s := range b.sources {
		values, err := s.Load()
		if err != nil {
			return nil, err
		}
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			c.set(k, values[k])
		}
	}
	return c, nil
}

// Configuration is an immutable, merged view of all sources.
type Configuration struct {
	values map[string]string
	// env name -> stored key
	names map[string]string
}

func newConfiguration() *Configuration {
	return &Configuration{values: make(map[string]string), names: make(map[string]string)}
}

// set stores v under key. A stored key with the same environment name is
// replaced; the more structured of the two spellings is kept.
func (c *Configuration) set(key, v string) {
	key = NormalizeKey(key)
	name := EnvName(key)
	if prev, ok := c.names[name]; ok && prev != key {
		delete(c.values, prev)
		if strings.Count(prev, KeyDelimiter) > strings.Count(key, KeyDelimiter) {
			key = prev
		}
	}
	c.names[name] = key
	c.values[key] = v
}

// EnvName returns the environment variable spelling of key:
// "Data:DefaultConnection" becomes DATA_DEFAULTCONNECTION.
func EnvName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(NormalizeKey(key), KeyDelimiter, "_"))
}

// NormalizeKey lower-cases a key and converts the environment-friendly
// double underscore separator into KeyDelimiter.
func NormalizeKey(key string) string {
	key = strings.ReplaceAll(key, "__", KeyDelimiter)
	return strings.ToLower(strings.Trim(key, KeyDelimiter))
}

// Get returns the value for key or an empty string.
func (c *Configuration) Get(key string) string {
	v, _ := c.Lookup(key)
	return v
}

// GetOr returns the value for key, or def when the key is unset or empty.
func (c *Configuration) GetOr(key, def string) string {
	if v, ok := c.Lookup(key); ok && v != "" {
		return v
	}
	return def
}

// Lookup returns the value for key and whether it was set by any source.
func (c *Configuration) Lookup(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	if c.values == nil {
		return "", false
	}
	k := NormalizeKey(key)
	if v, ok := c.values[k]; ok {
		return v, true
	}
	if stored, ok := c.names[EnvName(k)]; ok {
		return c.values[stored], true
	}
	return "", false
}

// Section returns the subset of keys under prefix with the prefix removed.
func (c *Configuration) Section(prefix string) *Configuration {
	p := NormalizeKey(prefix) + KeyDelimiter
	sub := newConfiguration()
	for k, v := range c.values {
		if rest, ok := strings.CutPrefix(k, p); ok {
			sub.set(rest, v)
		}
	}
	return sub
}

// Keys returns all normalized keys in sorted order.
func (c *Configuration) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Bind populates target using `env` struct tags resolved against the merged
// values. A key such as "Data:DefaultConnection:ConnectionString" is exposed
// to the tags as DATA_DEFAULTCONNECTION_CONNECTIONSTRING.
func (c *Configuration) Bind(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Environment: c.environment()}); err != nil {
		return errors.Join(ErrBind, fmt.Errorf("%T: %w", target, err))
	}
	return nil
}

func (c *Configuration) environment() map[string]string {
	out := make(map[string]string, len(c.values))
	for k, v := range c.values {
		out[EnvName(k)] = v
	}
	return out
}
