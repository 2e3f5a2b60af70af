package mvc

import (
	"net/http"
	"slices"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dmitrymomot/musicstore/internal"
)

// cases.Caser is not safe for concurrent use.
func fold(s string) string { return cases.Fold().String(s) }

func title(s string) string { return cases.Title(language.Und).String(s) }

// Action is a controller method reachable through conventional routes.
type Action struct {
	Name       string
	Methods    []string
	Handler    internal.HandlerFunc
	Middleware []internal.Middleware
}

// GET declares an action answering GET and HEAD.
func GET(name string, h internal.HandlerFunc, mw ...internal.Middleware) Action {
	return Action{Name: name, Methods: []string{http.MethodGet, http.MethodHead}, Handler: h, Middleware: mw}
}

// POST declares an action answering POST.
func POST(name string, h internal.HandlerFunc, mw ...internal.Middleware) Action {
	return Action{Name: name, Methods: []string{http.MethodPost}, Handler: h, Middleware: mw}
}

// Any declares an action answering every method.
func Any(name string, h internal.HandlerFunc, mw ...internal.Middleware) Action {
	return Action{Name: name, Handler: h, Middleware: mw}
}

func (a Action) allows(method string) bool {
	return len(a.Methods) == 0 || slices.Contains(a.Methods, method)
}

// Resolution is the outcome of looking up an action.
type Resolution int

const (
	NotFound Resolution = iota
	Found
	MethodNotAllowed
)

type controllerKey struct {
	area       string
	controller string
}

// Controllers maps area, controller and action names to handlers. Names
// compare case-insensitively.
type Controllers struct {
	mu      sync.RWMutex
	actions map[controllerKey]map[string][]Action
	areas   map[string]bool
}

func NewControllers() *Controllers {
	return &Controllers{
		actions: map[controllerKey]map[string][]Action{},
		areas:   map[string]bool{},
	}
}

// Register adds actions to a controller. An empty area registers a
// top-level controller. An action name may be registered once per method.
func (c *Controllers) Register(area, controller string, actions ...Action) {
	key := controllerKey{area: fold(area), controller: fold(controller)}

	c.mu.Lock()
	defer c.mu.Unlock()
	if area != "" {
		c.areas[key.area] = true
	}
	byName, ok := c.actions[key]
	if !ok {
		byName = map[string][]Action{}
		c.actions[key] = byName
	}
	for _, a := range actions {
		name := fold(a.Name)
		byName[name] = append(byName[name], a)
	}
}

// AreaExists reports whether any controller was registered in area.
func (c *Controllers) AreaExists(area string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.areas[fold(area)]
}

// Resolve finds the action for the route values and HTTP method. Routes
// without an action value select the action named after the method, so
// GET /Albums/5 on "{controller}/{id?}" runs Albums.Get.
func (c *Controllers) Resolve(values internal.RouteValues, method string) (Action, Resolution) {
	action := values.Get("action")
	if action == "" {
		action = title(method)
	}
	key := controllerKey{area: fold(values.Get("area")), controller: fold(values.Get("controller"))}

	c.mu.RLock()
	defer c.mu.RUnlock()
	candidates := c.actions[key][fold(action)]
	if len(candidates) == 0 {
		return Action{}, NotFound
	}
	for _, a := range candidates {
		if a.allows(method) {
			return a, Found
		}
	}
	return Action{}, MethodNotAllowed
}
