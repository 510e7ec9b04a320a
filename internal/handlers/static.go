package handlers

import (
	"io/fs"
	"net/http"
	"strings"
)

// SPAHandler serves the embedded frontend for paths the API does not claim,
// and answers everything else with a JSON 404. Registered as the router's
// NotFoundHandler, so API routes always take precedence.
type SPAHandler struct {
	staticFS fs.FS
}

// NewSPAHandler creates a handler over the embedded frontend filesystem
func NewSPAHandler(staticFS fs.FS) *SPAHandler {
	return &SPAHandler{staticFS: staticFS}
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.staticFS != nil && (r.Method == http.MethodGet || r.Method == http.MethodHead) {
		name := strings.TrimPrefix(r.URL.Path, "/")

		// /app is the SPA entry point; client-side routes under it also
		// resolve to the index page
		if name == "app" || strings.HasPrefix(name, "app/") {
			http.ServeFileFS(w, r, h.staticFS, "index.html")
			return
		}

		if info, err := fs.Stat(h.staticFS, name); err == nil && !info.IsDir() {
			http.ServeFileFS(w, r, h.staticFS, name)
			return
		}
	}

	respondError(w, http.StatusNotFound, "Route not found")
}
