package mvc

import (
	"fmt"
	"strings"
)

// segment is one path segment of a route template: a literal or a
// parameter.
type segment struct {
	literal string

	name        string
	key         string
	constraints []string
	optional    bool
	inline      string
	hasInline   bool
}

func (s segment) isParam() bool { return s.name != "" }

func (s segment) String() string {
	if !s.isParam() {
		return s.literal
	}
	var b strings.Builder
	b.WriteByte('{')
	b.WriteString(s.name)
	for _, c := range s.constraints {
		b.WriteByte(':')
		b.WriteString(c)
	}
	if s.hasInline {
		b.WriteByte('=')
		b.WriteString(s.inline)
	}
	if s.optional {
		b.WriteByte('?')
	}
	b.WriteByte('}')
	return b.String()
}

// trimTemplate strips the app-relative "~/" marker and outer slashes.
func trimTemplate(s string) string {
	s = strings.TrimPrefix(s, "~")
	return strings.Trim(s, "/")
}

// parseTemplate parses templates such as
// "{area:exists}/{controller}/{action=Index}/{id?}".
func parseTemplate(tmpl string) ([]segment, error) {
	raw := trimTemplate(tmpl)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, "/")
	segs := make([]segment, 0, len(parts))
	seen := map[string]bool{}
	optionalSeen := false

	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: %q has an empty segment", ErrInvalidTemplate, tmpl)
		}
		if !strings.ContainsAny(p, "{}") {
			if optionalSeen {
				return nil, fmt.Errorf("%w: %q has a literal after an optional parameter", ErrInvalidTemplate, tmpl)
			}
			segs = append(segs, segment{literal: p})
			continue
		}
		if p[0] != '{' || p[len(p)-1] != '}' || strings.Count(p, "{") != 1 || strings.Count(p, "}") != 1 {
			return nil, fmt.Errorf("%w: %q: segment %q must be a single parameter", ErrInvalidTemplate, tmpl, p)
		}

		s, err := parseParam(p[1 : len(p)-1])
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidTemplate, tmpl, err)
		}
		if seen[s.key] {
			return nil, fmt.Errorf("%w: %q repeats parameter %q", ErrInvalidTemplate, tmpl, s.name)
		}
		seen[s.key] = true

		if s.optional {
			optionalSeen = true
		} else if optionalSeen && !s.hasInline {
			return nil, fmt.Errorf("%w: %q has a required parameter after an optional one", ErrInvalidTemplate, tmpl)
		}
		segs = append(segs, s)
	}
	return segs, nil
}

func parseParam(body string) (segment, error) {
	var s segment
	if strings.HasSuffix(body, "?") {
		s.optional = true
		body = strings.TrimSuffix(body, "?")
	}
	if name, def, ok := strings.Cut(body, "="); ok {
		if s.optional {
			return s, fmt.Errorf("parameter %q cannot be optional and have a default", name)
		}
		s.inline, s.hasInline = def, true
		body = name
	}
	fields := strings.Split(body, ":")
	s.name = strings.TrimSpace(fields[0])
	if s.name == "" {
		return s, fmt.Errorf("empty parameter name")
	}
	s.key = strings.ToLower(s.name)
	for _, c := range fields[1:] {
		if c == "" {
			return s, fmt.Errorf("parameter %q has an empty constraint", s.name)
		}
		s.constraints = append(s.constraints, c)
	}
	return s, nil
}
