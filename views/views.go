// Package views renders the store pages with html/template and serves the
// static assets they reference.
package views

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"time"
)

//go:embed templates
var templates embed.FS

//go:embed static
var static embed.FS

// ErrUnknownView is returned when a view name has no template.
var ErrUnknownView = errors.New("views: unknown view")

// Page is the data every view receives.
type Page struct {
	Title string
	// User is the signed-in user name, empty for anonymous requests.
	User  string
	Model any
}

// Engine holds one parsed template set per view.
type Engine struct {
	views map[string]*template.Template
}

var funcs = template.FuncMap{
	"price": func(p float64) string { return fmt.Sprintf("$%.2f", p) },
	"date":  func(t time.Time) string { return t.Format("Jan 2, 2006") },
}

// New parses every view under templates against the shared layout. View
// names are paths without the extension, e.g. "store/details".
func New() (*Engine, error) {
	e := &Engine{views: map[string]*template.Template{}}
	err := fs.WalkDir(templates, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || path == "templates/layout.html" {
			return err
		}
		name := strings.TrimSuffix(strings.TrimPrefix(path, "templates/"), ".html")
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templates, "templates/layout.html", path)
		if err != nil {
			return fmt.Errorf("parse view %s: %w", name, err)
		}
		e.views[name] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// MustNew is New that panics on error.
func MustNew() *Engine {
	e, err := New()
	if err != nil {
		panic(err)
	}
	return e
}

// Render executes the named view.
func (e *Engine) Render(w io.Writer, name string, data any) error {
	t, ok := e.views[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownView, name)
	}
	return t.ExecuteTemplate(w, "layout.html", data)
}

// Has reports whether a view exists.
func (e *Engine) Has(name string) bool {
	_, ok := e.views[strings.ToLower(name)]
	return ok
}

// Static returns the static asset tree rooted at its top directory.
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
