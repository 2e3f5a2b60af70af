package mvc

import "github.com/dmitrymomot/musicstore/internal"

// Registrar registers its actions on a controller registry.
type Registrar interface {
	Register(c *Controllers)
}

// Router dispatches requests through conventional routes to controller
// actions.
type Router struct {
	routes      *RouteTable
	controllers *Controllers
}

// New creates a Router. The "exists" constraint accepts registered areas.
func New(opts ...TableOption) *Router {
	c := NewControllers()
	opts = append([]TableOption{WithConstraint("exists", c.AreaExists)}, opts...)
	return &Router{routes: NewRouteTable(opts...), controllers: c}
}

func (r *Router) Routes() *RouteTable { return r.routes }

func (r *Router) Controllers() *Controllers { return r.controllers }

// MapRoute appends a conventional route.
func (r *Router) MapRoute(name, template string, defaults map[string]string) error {
	return r.routes.MapRoute(name, template, defaults)
}

// Register adds the actions of every registrar.
func (r *Router) Register(rs ...Registrar) {
	for _, reg := range rs {
		reg.Register(r.controllers)
	}
}

// Link builds a URL for the named route.
func (r *Router) Link(route string, values map[string]string) (string, error) {
	return r.routes.Link(route, values)
}

// Handler returns the fallback handler. A route whose values do not name a
// registered action is skipped in favour of the next matching route.
// Matched route values are available through Context.Param.
func (r *Router) Handler() internal.HandlerFunc {
	return func(c internal.Context) error {
		req := c.Request()
		wrongMethod := false
		for _, m := range r.routes.MatchAll(req.URL.Path) {
			action, res := r.controllers.Resolve(m.Values, req.Method)
			switch res {
			case Found:
				c.SetContext(internal.WithRouteValues(req.Context(), m.Values))
				return internal.Chain(action.Handler, action.Middleware...)(c)
			case MethodNotAllowed:
				wrongMethod = true
			}
		}
		if wrongMethod {
			return internal.ErrMethodNotAllowed("")
		}
		return internal.ErrNotFound("")
	}
}

// CurrentValues returns the route values of the executing action.
func CurrentValues(c internal.Context) internal.RouteValues {
	return internal.RouteValuesFromContext(c.Context())
}
