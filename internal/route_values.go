package internal

import (
	"context"
	"strings"
)

// RouteValues are the values a conventional route matched, keyed by
// lower-case parameter name.
type RouteValues map[string]string

// Get returns the value for name, ignoring case.
func (v RouteValues) Get(name string) string {
	if v == nil {
		return ""
	}
	return v[strings.ToLower(name)]
}

type routeValuesKey struct{}

// WithRouteValues stores v in ctx.
func WithRouteValues(ctx context.Context, v RouteValues) context.Context {
	return context.WithValue(ctx, routeValuesKey{}, v)
}

// RouteValuesFromContext returns the route values stored in ctx, or nil.
func RouteValuesFromContext(ctx context.Context) RouteValues {
	v, _ := ctx.Value(routeValuesKey{}).(RouteValues)
	return v
}
