package controllers

import (
	"net/http"
	"strings"

	"github.com/dmitrymomot/musicstore/internal"
	"github.com/dmitrymomot/musicstore/views"
)

func render(c internal.Context, code int, view, title string, model any) error {
	return c.Render(code, view, views.Page{
		Title: title,
		User:  c.Principal().Name(),
		Model: model,
	})
}

// localURL returns u when it points into this application and "/"
// otherwise.
func localURL(u string) string {
	if u == "" || !strings.HasPrefix(u, "/") || strings.HasPrefix(u, "//") || strings.HasPrefix(u, "/\\") {
		return "/"
	}
	return u
}

func redirectLocal(c internal.Context, u string) error {
	return c.Redirect(http.StatusFound, localURL(u))
}
