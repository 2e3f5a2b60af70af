package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source provides a flat set of configuration values.
// Keys may use any case; the Builder normalizes them.
type Source interface {
	Load() (map[string]string, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func() (map[string]string, error)

// Load implements Source.
func (f SourceFunc) Load() (map[string]string, error) {
	return f()
}

// JSONFile reads a JSON document and flattens nested objects and arrays
// into colon-separated keys. Missing files are ignored when optional is true.
func JSONFile(path string, optional bool) Source {
	return SourceFunc(func() (map[string]string, error) {
		data, err := readFile(path, optional)
		if err != nil || data == nil {
			return nil, err
		}

		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()

		var doc map[string]any
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Join(ErrParse, fmt.Errorf("%s: %w", path, err))
		}

		out := make(map[string]string)
		flatten("", doc, out)
		return out, nil
	})
}

// YAMLFile reads a YAML document. Behaves like JSONFile otherwise.
func YAMLFile(path string, optional bool) Source {
	return SourceFunc(func() (map[string]string, error) {
		data, err := readFile(path, optional)
		if err != nil || data == nil {
			return nil, err
		}

		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Join(ErrParse, fmt.Errorf("%s: %w", path, err))
		}

		out := make(map[string]string)
		flatten("", doc, out)
		return out, nil
	})
}

// Env reads process environment variables.
// When prefix is set, only variables starting with it are used and the
// prefix is stripped from the key.
func Env(prefix string) Source {
	return envSource(prefix, os.Environ)
}

func envSource(prefix string, environ func() []string) Source {
	return SourceFunc(func() (map[string]string, error) {
		out := make(map[string]string)
		for _, kv := range environ() {
			key, value, ok := strings.Cut(kv, "=")
			if !ok || key == "" {
				continue
			}
			if prefix != "" {
				if !strings.HasPrefix(strings.ToUpper(key), strings.ToUpper(prefix)) {
					continue
				}
				key = key[len(prefix):]
			}
			if key == "" {
				continue
			}
			out[key] = value
		}
		return out, nil
	})
}

// Map returns a source backed by a static map. Useful for defaults and tests.
func Map(values map[string]string) Source {
	return SourceFunc(func() (map[string]string, error) {
		out := make(map[string]string, len(values))
		for k, v := range values {
			out[k] = v
		}
		return out, nil
	})
}

func readFile(path string, optional bool) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if optional {
				return nil, nil
			}
			return nil, errors.Join(ErrFileNotFound, fmt.Errorf("%s: %w", path, err))
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return data, nil
}

// flatten walks a decoded document and writes leaf values under
// colon-joined keys. Array elements are keyed by index.
func flatten(prefix string, v any, out map[string]string) {
	join := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + KeyDelimiter + k
	}

	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			flatten(join(k), child, out)
		}
	case []any:
		for i, child := range val {
			flatten(join(fmt.Sprint(i)), child, out)
		}
	case nil:
		out[prefix] = ""
	case string:
		out[prefix] = val
	default:
		out[prefix] = fmt.Sprint(val)
	}
}
