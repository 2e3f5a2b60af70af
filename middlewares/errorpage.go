package middlewares

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"runtime"
	"slices"
	"strings"

	"github.com/dmitrymomot/musicstore/internal"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 8192

// ErrorPageOptions selects what the diagnostic page shows.
type ErrorPageOptions struct {
	ShowExceptionDetails bool
	ShowQuery            bool
	ShowCookies          bool
	ShowHeaders          bool
	StackSize            int
}

// ShowAll enables every section of the error page.
func ShowAll() ErrorPageOptions {
	return ErrorPageOptions{
		ShowExceptionDetails: true,
		ShowQuery:            true,
		ShowCookies:          true,
		ShowHeaders:          true,
		StackSize:            DefaultStackSize,
	}
}

// ErrorPage recovers panics and renders a diagnostic page for errors that
// carry no HTTP status. HTTPErrors pass through untouched so status code
// pages can handle them.
func ErrorPage(opts ErrorPageOptions) internal.Middleware {
	if opts.StackSize <= 0 {
		opts.StackSize = DefaultStackSize
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					if r == http.ErrAbortHandler {
						panic(r)
					}
					stack := make([]byte, opts.StackSize)
					stack = stack[:runtime.Stack(stack, false)]
					err = renderErrorPage(c, opts, &PanicError{Value: r, Stack: stack})
				}
			}()

			err = next(c)
			if err == nil || internal.IsHTTPError(err) {
				return err
			}
			return renderErrorPage(c, opts, err)
		}
	}
}

type kv struct {
	Key   string
	Value string
}

type errorPageData struct {
	Title   string
	Message string
	Type    string
	Stack   string
	Chain   []string
	Method  string
	Path    string
	Query   []kv
	Cookies []kv
	Headers []kv
	Opts    ErrorPageOptions
}

func renderErrorPage(c internal.Context, opts ErrorPageOptions, err error) error {
	c.LogError("unhandled error", "error", err)
	if c.Written() {
		return nil
	}

	r := c.Request()
	data := errorPageData{
		Title:   "Internal Server Error",
		Message: "An error occurred while processing your request.",
		Method:  r.Method,
		Path:    r.URL.Path,
		Opts:    opts,
	}
	if opts.ShowExceptionDetails {
		data.Message = err.Error()
		data.Type = errorType(err)
		data.Chain = errorChain(err)
		if pe, ok := AsPanicError(err); ok {
			data.Stack = string(pe.Stack)
		}
	}
	if opts.ShowQuery {
		for k, vs := range r.URL.Query() {
			data.Query = append(data.Query, kv{k, strings.Join(vs, ", ")})
		}
	}
	if opts.ShowCookies {
		for _, ck := range r.Cookies() {
			data.Cookies = append(data.Cookies, kv{ck.Name, ck.Value})
		}
	}
	if opts.ShowHeaders {
		for k, vs := range r.Header {
			data.Headers = append(data.Headers, kv{k, strings.Join(vs, ", ")})
		}
	}
	sortKV(data.Query, data.Cookies, data.Headers)

	var buf bytes.Buffer
	if terr := errorPageTemplate.Execute(&buf, data); terr != nil {
		c.LogError("error page failed", "error", terr)
		return c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
	c.SetHeader("Cache-Control", "no-cache, no-store")
	return c.HTML(http.StatusInternalServerError, buf.String())
}

func sortKV(lists ...[]kv) {
	for _, l := range lists {
		slices.SortFunc(l, func(a, b kv) int { return strings.Compare(a.Key, b.Key) })
	}
}

func errorChain(err error) []string {
	var out []string
	for err != nil {
		out = append(out, err.Error())
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if len(out) > 0 {
		out = out[1:]
	}
	return out
}

func errorType(err error) string {
	if IsPanicError(err) {
		return "panic"
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
}

var errorPageTemplate = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title>
<style>body{font-family:sans-serif;margin:2em}pre{background:#f4f4f4;padding:1em;overflow:auto}table{border-collapse:collapse}td{border:1px solid #ddd;padding:.25em .5em;vertical-align:top}</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="message">{{.Message}}</p>
<p>{{.Method}} {{.Path}}</p>
{{- if .Type}}<h2>{{.Type}}</h2>{{end}}
{{- if .Chain}}<h2>Caused by</h2><ul>{{range .Chain}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{- if .Stack}}<h2>Stack</h2><pre>{{.Stack}}</pre>{{end}}
{{- if .Opts.ShowQuery}}<h2>Query</h2>{{template "table" .Query}}{{end}}
{{- if .Opts.ShowCookies}}<h2>Cookies</h2>{{template "table" .Cookies}}{{end}}
{{- if .Opts.ShowHeaders}}<h2>Headers</h2>{{template "table" .Headers}}{{end}}
</body>
</html>
{{- define "table"}}{{if .}}<table>{{range .}}<tr><td>{{.Key}}</td><td>{{.Value}}</td></tr>{{end}}</table>{{else}}<p>None</p>{{end}}{{end}}`))
