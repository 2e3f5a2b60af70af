package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
)

// MethodFunc handles an invocation sent by caller.
type MethodFunc func(ctx context.Context, caller *Connection, in Incoming) error

// Built-in hub methods.
const (
	MethodJoinGroup  = "JoinGroup"
	MethodLeaveGroup = "LeaveGroup"
)

// Hub is a named set of connections with groups and callable methods.
type Hub struct {
	name string
	log  *slog.Logger

	mu      sync.RWMutex
	conns   map[string]*Connection
	groups  map[string]map[string]struct{}
	methods map[string]MethodFunc

	onConnect    []func(*Connection)
	onDisconnect []func(*Connection)
}

func newHub(name string, log *slog.Logger) *Hub {
	h := &Hub{
		name:    name,
		log:     log.With(slog.String("hub", name)),
		conns:   map[string]*Connection{},
		groups:  map[string]map[string]struct{}{},
		methods: map[string]MethodFunc{},
	}
	h.On(MethodJoinGroup, func(_ context.Context, c *Connection, in Incoming) error {
		group, err := Arg[string](in, 0)
		if err != nil {
			return err
		}
		h.AddToGroup(c.ID(), group)
		return nil
	})
	h.On(MethodLeaveGroup, func(_ context.Context, c *Connection, in Incoming) error {
		group, err := Arg[string](in, 0)
		if err != nil {
			return err
		}
		h.RemoveFromGroup(c.ID(), group)
		return nil
	})
	return h
}

func (h *Hub) Name() string { return h.name }

// On registers fn for method. Method names are case-insensitive.
func (h *Hub) On(method string, fn MethodFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.methods[strings.ToLower(method)] = fn
}

// OnConnect registers fn to run for every new connection.
func (h *Hub) OnConnect(fn func(*Connection)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onConnect = append(h.onConnect, fn)
}

// OnDisconnect registers fn to run when a connection closes.
func (h *Hub) OnDisconnect(fn func(*Connection)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onDisconnect = append(h.onDisconnect, fn)
}

// Count returns the number of open connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// AddToGroup adds a connection to group. Unknown connections are ignored.
func (h *Hub) AddToGroup(connID, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[connID]; !ok {
		return
	}
	members, ok := h.groups[group]
	if !ok {
		members = map[string]struct{}{}
		h.groups[group] = members
	}
	members[connID] = struct{}{}
}

func (h *Hub) RemoveFromGroup(connID, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leave(connID, group)
}

func (h *Hub) leave(connID, group string) {
	members := h.groups[group]
	delete(members, connID)
	if len(members) == 0 {
		delete(h.groups, group)
	}
}

// Clients selects connections to send to.
func (h *Hub) Clients() Clients { return Clients{hub: h} }

func (h *Hub) add(c *Connection) {
	h.mu.Lock()
	h.conns[c.id] = c
	hooks := slices.Clone(h.onConnect)
	h.mu.Unlock()

	for _, fn := range hooks {
		fn(c)
	}
}

func (h *Hub) remove(c *Connection) {
	h.mu.Lock()
	if _, ok := h.conns[c.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.conns, c.id)
	for group := range h.groups {
		h.leave(c.id, group)
	}
	hooks := slices.Clone(h.onDisconnect)
	h.mu.Unlock()

	for _, fn := range hooks {
		fn(c)
	}
}

func (h *Hub) dispatch(c *Connection, in Incoming) error {
	if in.Method == "" {
		return ErrBadMessage
	}
	if in.Hub != "" && !strings.EqualFold(in.Hub, h.name) {
		return fmt.Errorf("%w: %s", ErrUnknownHub, in.Hub)
	}
	h.mu.RLock()
	fn, ok := h.methods[strings.ToLower(in.Method)]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMethod, in.Method)
	}
	return fn(c.ctx, c, in)
}

func (h *Hub) closeAll() {
	h.mu.RLock()
	conns := slices.Collect(maps.Values(h.conns))
	h.mu.RUnlock()
	for _, c := range conns {
		c.close()
	}
}

// Clients addresses connections of a hub.
type Clients struct {
	hub *Hub
}

// All addresses every connection.
func (cl Clients) All() Target {
	return Target{hub: cl.hub, pick: func(h *Hub) []*Connection {
		return slices.Collect(maps.Values(h.conns))
	}}
}

// Group addresses the members of group.
func (cl Clients) Group(name string) Target {
	return Target{hub: cl.hub, pick: func(h *Hub) []*Connection {
		var out []*Connection
		for id := range h.groups[name] {
			if c, ok := h.conns[id]; ok {
				out = append(out, c)
			}
		}
		return out
	}}
}

// Client addresses a single connection.
func (cl Clients) Client(id string) Target {
	return Target{hub: cl.hub, pick: func(h *Hub) []*Connection {
		if c, ok := h.conns[id]; ok {
			return []*Connection{c}
		}
		return nil
	}}
}

// AllExcept addresses every connection but the listed ones.
func (cl Clients) AllExcept(ids ...string) Target {
	return Target{hub: cl.hub, pick: func(h *Hub) []*Connection {
		var out []*Connection
		for id, c := range h.conns {
			if !slices.Contains(ids, id) {
				out = append(out, c)
			}
		}
		return out
	}}
}

// Target is a selection of connections.
type Target struct {
	hub  *Hub
	pick func(*Hub) []*Connection
}

// Send invokes method with args on every selected connection. Slow
// connections are dropped and reported in the joined error.
func (t Target) Send(method string, args ...any) error {
	data, err := encode(t.hub.name, method, args)
	if err != nil {
		return err
	}
	t.hub.mu.RLock()
	conns := t.pick(t.hub)
	t.hub.mu.RUnlock()

	var errs []error
	for _, c := range conns {
		if err := c.enqueue(data); err != nil && !errors.Is(err, ErrClosed) {
			errs = append(errs, fmt.Errorf("connection %s: %w", c.id, err))
		}
	}
	return errors.Join(errs...)
}
