package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/musicstore/pkg/identity"
)

// DefaultPrefix is the path hubs are served under.
const DefaultPrefix = "/signalr"

const defaultSendBuffer = 256

// Server owns the hubs and upgrades hub requests to websockets.
type Server struct {
	prefix     string
	sendBuffer int
	log        *slog.Logger
	upgrader   websocket.Upgrader

	mu     sync.RWMutex
	hubs   map[string]*Hub
	closed bool
}

// Option configures a Server.
type Option func(*Server)

// WithPrefix sets the path prefix. Defaults to /signalr.
func WithPrefix(prefix string) Option {
	return func(s *Server) {
		if prefix != "" {
			s.prefix = "/" + strings.Trim(prefix, "/")
		}
	}
}

// WithSendBuffer sets the per-connection send queue length.
func WithSendBuffer(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.sendBuffer = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithCheckOrigin overrides the same-origin check of the websocket
// handshake.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(s *Server) {
		s.upgrader.CheckOrigin = fn
	}
}

// AllowOrigins accepts handshakes from the listed origins and from clients
// that send no Origin header. Matching ignores case.
func AllowOrigins(origins ...string) Option {
	return WithCheckOrigin(func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range origins {
			if strings.EqualFold(strings.TrimRight(o, "/"), origin) {
				return true
			}
		}
		return false
	})
}

// New creates a Server.
func New(opts ...Option) *Server {
	s := &Server{
		prefix:     DefaultPrefix,
		sendBuffer: defaultSendBuffer,
		log:        slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		hubs: map[string]*Hub{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(slog.String("component", "realtime"))
	return s
}

// Prefix returns the path prefix hubs are served under.
func (s *Server) Prefix() string { return s.prefix }

// Hub returns the hub registered under name, creating it on first use.
// Hub names are case-insensitive.
func (s *Server) Hub(name string) *Hub {
	key := strings.ToLower(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hubs[key]
	if !ok {
		h = newHub(name, s.log)
		s.hubs[key] = h
	}
	return h
}

func (s *Server) lookup(name string) (*Hub, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hubs[strings.ToLower(name)]
	return h, ok && !s.closed
}

// Middleware serves {prefix}/{hub} and passes every other request on.
func (s *Server) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.hubName(r.URL.Path); ok {
			s.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) hubName(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, s.prefix+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

// ServeHTTP upgrades a request for {prefix}/{hub}. Unknown hubs get 404.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name, ok := s.hubName(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	hub, ok := s.lookup(name)
	if !ok {
		http.NotFound(w, r)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		s.log.WarnContext(r.Context(), "websocket upgrade failed", slog.Any("error", err))
		return
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	c := &Connection{
		id:        uuid.NewString(),
		hub:       hub,
		ws:        ws,
		send:      make(chan []byte, s.sendBuffer),
		principal: identity.PrincipalFromContext(r.Context()),
		ctx:       ctx,
		cancel:    cancel,
	}
	hub.add(c)

	go c.writePump()
	go c.readPump()
}

// Close disconnects every connection and refuses new ones.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	hubs := make([]*Hub, 0, len(s.hubs))
	for _, h := range s.hubs {
		hubs = append(hubs, h)
	}
	s.mu.Unlock()

	for _, h := range hubs {
		h.closeAll()
	}
	return nil
}
