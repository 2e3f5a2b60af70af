package middlewares

import (
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// StaticFiles serves files from fsys for GET and HEAD requests whose path
// names an existing file. Directories and misses fall through to next, so
// the rest of the pipeline still sees them.
func StaticFiles(fsys fs.FS) func(http.Handler) http.Handler {
	fileServer := http.FileServerFS(fsys)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
			if name == "" || !fs.ValidPath(name) {
				next.ServeHTTP(w, r)
				return
			}
			info, err := fs.Stat(fsys, name)
			if err != nil || info.IsDir() {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			fileServer.ServeHTTP(w, r)
		})
	}
}
