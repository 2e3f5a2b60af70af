package mvc

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrymomot/musicstore/internal"
)

// Constraint reports whether value is acceptable for a route parameter.
type Constraint func(value string) bool

// IntConstraint accepts base-10 integers.
func IntConstraint(value string) bool {
	_, err := strconv.Atoi(value)
	return err == nil
}

// Route is a named URL template with default values.
type Route struct {
	Name     string
	Template string
	Defaults map[string]string

	segments []segment
}

// Match is a route that matched a path, with the values it extracted.
type Match struct {
	Route  *Route
	Values internal.RouteValues
}

// RouteTable is an ordered list of conventional routes. Matching is
// case-insensitive and the first matching route wins.
type RouteTable struct {
	mu          sync.RWMutex
	routes      []*Route
	byName      map[string]*Route
	constraints map[string]Constraint
}

// TableOption configures a RouteTable.
type TableOption func(*RouteTable)

// WithConstraint registers a named parameter constraint.
func WithConstraint(name string, c Constraint) TableOption {
	return func(t *RouteTable) {
		t.constraints[strings.ToLower(name)] = c
	}
}

// NewRouteTable creates an empty table with the "int" constraint.
func NewRouteTable(opts ...TableOption) *RouteTable {
	t := &RouteTable{
		byName:      map[string]*Route{},
		constraints: map[string]Constraint{"int": IntConstraint},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// MapRoute appends a route. Defaults apply to parameters missing from the
// path and may name values the template does not contain.
//
//	t.MapRoute("default", "{controller}/{action}/{id?}",
//	    map[string]string{"controller": "Home", "action": "Index"})
func (t *RouteTable) MapRoute(name, template string, defaults map[string]string) error {
	segs, err := parseTemplate(template)
	if err != nil {
		return err
	}

	defs := make(map[string]string, len(defaults))
	for k, v := range defaults {
		defs[strings.ToLower(k)] = v
	}
	for _, s := range segs {
		if s.hasInline {
			defs[s.key] = s.inline
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range segs {
		for _, c := range s.constraints {
			if _, ok := t.constraints[strings.ToLower(c)]; !ok {
				return fmt.Errorf("%w: %q in %q", ErrUnknownConstraint, c, template)
			}
		}
	}
	key := strings.ToLower(name)
	if _, ok := t.byName[key]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateRoute, name)
	}

	r := &Route{Name: name, Template: template, Defaults: defs, segments: segs}
	t.routes = append(t.routes, r)
	t.byName[key] = r
	return nil
}

// Routes returns the routes in match order.
func (t *RouteTable) Routes() []*Route {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.routes)
}

// Match returns the values of the first route matching path.
func (t *RouteTable) Match(path string) (internal.RouteValues, bool) {
	ms := t.MatchAll(path)
	if len(ms) == 0 {
		return nil, false
	}
	return ms[0].Values, true
}

// MatchAll returns every route matching path, in table order.
func (t *RouteTable) MatchAll(path string) []Match {
	parts, ok := splitPath(path)
	if !ok {
		return nil
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []Match
	for _, r := range t.routes {
		if v, ok := t.match(r, parts); ok {
			out = append(out, Match{Route: r, Values: v})
		}
	}
	return out
}

func splitPath(path string) ([]string, bool) {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil, true
	}
	parts := strings.Split(path, "/")
	for i, p := range parts {
		v, err := url.PathUnescape(p)
		if err != nil || v == "" {
			return nil, false
		}
		parts[i] = v
	}
	return parts, true
}

func (t *RouteTable) match(r *Route, parts []string) (internal.RouteValues, bool) {
	if len(parts) > len(r.segments) {
		return nil, false
	}

	values := internal.RouteValues{}
	for i, s := range r.segments {
		if i < len(parts) {
			if !s.isParam() {
				if !strings.EqualFold(s.literal, parts[i]) {
					return nil, false
				}
				continue
			}
			if !t.accepts(s, parts[i]) {
				return nil, false
			}
			values[s.key] = parts[i]
			continue
		}

		switch def, ok := r.Defaults[s.key]; {
		case !s.isParam():
			return nil, false
		case ok:
			values[s.key] = def
		case s.optional:
		default:
			return nil, false
		}
	}

	for k, v := range r.Defaults {
		if _, ok := values[k]; !ok {
			values[k] = v
		}
	}
	return values, true
}

func (t *RouteTable) accepts(s segment, value string) bool {
	for _, name := range s.constraints {
		c := t.constraints[strings.ToLower(name)]
		if c == nil || !c(value) {
			return false
		}
	}
	return true
}

// Link builds the path of the named route for values. Trailing parameters
// equal to their defaults are left out.
func (t *RouteTable) Link(name string, values map[string]string) (string, error) {
	t.mu.RLock()
	r, ok := t.byName[strings.ToLower(name)]
	t.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRoute, name)
	}

	vals := make(map[string]string, len(values))
	for k, v := range values {
		vals[strings.ToLower(k)] = v
	}

	parts := make([]string, len(r.segments))
	// Index after the last segment that must be emitted.
	keep := 0
	for i, s := range r.segments {
		if !s.isParam() {
			parts[i] = s.literal
			keep = i + 1
			continue
		}
		v, given := vals[s.key]
		def, hasDef := r.Defaults[s.key]
		switch {
		case given && v != "":
			parts[i] = url.PathEscape(v)
			if !hasDef || !strings.EqualFold(v, def) {
				keep = i + 1
			}
		case hasDef:
			parts[i] = url.PathEscape(def)
		case s.optional:
		default:
			return "", fmt.Errorf("%w: %q for route %q", ErrMissingValue, s.name, name)
		}
	}

	// A segment kept because of a later value drags its defaults along.
	out := parts[:keep]
	for i, p := range out {
		if p == "" {
			return "", fmt.Errorf("%w: %q for route %q", ErrMissingValue, r.segments[i].name, name)
		}
	}

	path := "/" + strings.Join(out, "/")
	extra := url.Values{}
	for k, v := range vals {
		if !slices.ContainsFunc(r.segments, func(s segment) bool { return s.key == k }) {
			if _, isDefault := r.Defaults[k]; !isDefault {
				extra.Set(k, v)
			}
		}
	}
	if len(extra) > 0 {
		path += "?" + extra.Encode()
	}
	return path, nil
}
