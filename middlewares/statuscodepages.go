package middlewares

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrymomot/musicstore/internal"
)

// StatusCodePagesWithRedirects redirects requests that failed with a 4xx
// or 5xx HTTPError to location, as long as nothing was written yet. A
// leading "~" stands for the application root and "{0}" is replaced by
// the status code.
//
//	middlewares.StatusCodePagesWithRedirects("~/Home/StatusCodePage")
func StatusCodePagesWithRedirects(location string) internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			err := next(c)
			he := internal.AsHTTPError(err)
			if he == nil || he.Code < http.StatusBadRequest || he.Code > 599 || c.Written() {
				return err
			}
			c.LogDebug("status code page redirect",
				"status", he.Code,
				"path", c.Request().URL.Path,
			)
			return c.Redirect(http.StatusFound, StatusCodeLocation(location, he.Code))
		}
	}
}

// StatusCodeLocation expands a status code page location.
func StatusCodeLocation(location string, code int) string {
	loc := strings.ReplaceAll(location, "{0}", strconv.Itoa(code))
	if rest, ok := strings.CutPrefix(loc, "~"); ok {
		loc = "/" + strings.TrimPrefix(rest, "/")
	}
	return loc
}
