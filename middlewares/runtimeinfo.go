package middlewares

import (
	"bytes"
	"html/template"
	"net/http"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/dmitrymomot/musicstore/internal"
)

// DefaultRuntimeInfoPath serves the runtime information page.
const DefaultRuntimeInfoPath = "/runtimeinfo"

// RuntimeInfo describes the running binary.
type RuntimeInfo struct {
	GoVersion    string
	OS           string
	Arch         string
	NumCPU       int
	NumGoroutine int
	Module       string
	Hostname     string
	Settings     []debug.BuildSetting
	Deps         []*debug.Module
}

// ReadRuntimeInfo collects build and runtime details.
func ReadRuntimeInfo() RuntimeInfo {
	info := RuntimeInfo{
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Arch:         runtime.GOARCH,
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}
	info.Hostname, _ = os.Hostname()
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.Module = bi.Main.Path
		info.Settings = bi.Settings
		info.Deps = bi.Deps
	}
	return info
}

// RuntimeInfoPage answers GET requests for path (default /runtimeinfo)
// with the Go version, platform and module dependencies. Other requests
// pass through.
func RuntimeInfoPage(path string) internal.Middleware {
	if path == "" {
		path = DefaultRuntimeInfoPath
	}
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			r := c.Request()
			if r.Method != http.MethodGet || !strings.EqualFold(r.URL.Path, path) {
				return next(c)
			}
			if r.URL.Query().Get("format") == "json" {
				return c.JSON(http.StatusOK, ReadRuntimeInfo())
			}
			var buf bytes.Buffer
			if err := runtimeInfoTemplate.Execute(&buf, ReadRuntimeInfo()); err != nil {
				return err
			}
			return c.HTML(http.StatusOK, buf.String())
		}
	}
}

var runtimeInfoTemplate = template.Must(template.New("runtimeinfo").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Runtime Information</title></head>
<body>
<h1>Runtime Information</h1>
<table>
<tr><td>Go version</td><td>{{.GoVersion}}</td></tr>
<tr><td>Platform</td><td>{{.OS}}/{{.Arch}}</td></tr>
<tr><td>CPUs</td><td>{{.NumCPU}}</td></tr>
<tr><td>Goroutines</td><td>{{.NumGoroutine}}</td></tr>
<tr><td>Host</td><td>{{.Hostname}}</td></tr>
<tr><td>Module</td><td>{{.Module}}</td></tr>
</table>
<h2>Packages</h2>
<table class="deps">{{range .Deps}}<tr><td>{{.Path}}</td><td>{{.Version}}</td></tr>{{else}}<tr><td>No module information</td></tr>{{end}}</table>
</body>
</html>`))
