package internal

import "io"

// Handler declares routes on a router.
//
//	func (h *Store) Routes(r internal.Router) {
//		r.GET("/Store/Browse", h.browse)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc handles a request. A returned error travels back up through
// the middleware chain and reaches the error handler if nobody handles it.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc.
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler renders errors that reached the top of the pipeline.
type ErrorHandler func(Context, error) error

// Renderer executes a named view.
type Renderer interface {
	Render(w io.Writer, name string, data any) error
}
